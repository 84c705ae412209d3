package linker

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

const wasmPageSize = 65536

// Memory is the growable linear memory collaborator a module's symbol table
// exposes. It is implemented by WazeroMemory in this package; embedders that
// do not run on wazero can provide their own implementation.
type Memory interface {
	PageSize() int
	MaxPageSize() int // -1 = unlimited
	Grow(deltaPages int) bool
	ValidateAddress(base, length uint32) error
	StoreByte(addr uint32, b byte) error
	Zero() error
}

// WazeroMemory adapts a wazero api.Memory to the Memory collaborator
// contract. Grounded on the teacher's internal/memory.Wrapper, which wraps
// the same api.Memory for the canonical-ABI transcoder; here it backs the
// classic linker's memory import/export and data-segment operations instead.
type WazeroMemory struct {
	mem api.Memory
}

// NewWazeroMemory wraps a wazero api.Memory as a Memory collaborator.
func NewWazeroMemory(mem api.Memory) *WazeroMemory {
	return &WazeroMemory{mem: mem}
}

// Unwrap returns the underlying wazero memory, for callers (the execution
// engine, a start function) that need it directly.
func (m *WazeroMemory) Unwrap() api.Memory {
	return m.mem
}

func (m *WazeroMemory) PageSize() int {
	return int(m.mem.Size() / wasmPageSize)
}

func (m *WazeroMemory) MaxPageSize() int {
	if max, ok := m.mem.Definition().Max(); ok {
		return int(max)
	}
	return -1
}

// Grow grows the memory by deltaPages pages. A non-positive delta is a no-op
// success, matching resolveMemoryImport's "grow only if current size is
// smaller" rule.
func (m *WazeroMemory) Grow(deltaPages int) bool {
	if deltaPages <= 0 {
		return true
	}
	_, ok := m.mem.Grow(uint32(deltaPages))
	return ok
}

func (m *WazeroMemory) ValidateAddress(base, length uint32) error {
	size := m.mem.Size()
	end := uint64(base) + uint64(length)
	if end > uint64(size) {
		return fmt.Errorf("memory access [%d, %d) exceeds memory size %d", base, end, size)
	}
	return nil
}

func (m *WazeroMemory) StoreByte(addr uint32, b byte) error {
	if !m.mem.WriteByte(addr, b) {
		return fmt.Errorf("store_i32_8 out of bounds at address %d", addr)
	}
	return nil
}

// Zero overwrites every byte of the memory with 0, used by resetModuleState.
func (m *WazeroMemory) Zero() error {
	size := m.mem.Size()
	if size == 0 {
		return nil
	}
	if !m.mem.Write(0, make([]byte, size)) {
		return fmt.Errorf("failed to zero memory of size %d", size)
	}
	return nil
}
