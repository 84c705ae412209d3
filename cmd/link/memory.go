package main

import "fmt"

// byteMemory is a standalone Memory implementation backed by a plain Go
// slice, for embedders (like this CLI) that decode modules without running
// them through a wazero instance. linker.Memory is an interface precisely so
// such an implementation can stand in for linker.WazeroMemory.
type byteMemory struct {
	data     []byte
	maxPages int // -1 = unlimited
}

const pageSize = 65536

func newByteMemory(initPages, maxPages int) *byteMemory {
	return &byteMemory{data: make([]byte, initPages*pageSize), maxPages: maxPages}
}

func (m *byteMemory) PageSize() int {
	return len(m.data) / pageSize
}

func (m *byteMemory) MaxPageSize() int {
	return m.maxPages
}

func (m *byteMemory) Grow(deltaPages int) bool {
	if deltaPages <= 0 {
		return true
	}
	newPages := m.PageSize() + deltaPages
	if m.maxPages != -1 && newPages > m.maxPages {
		return false
	}
	grown := make([]byte, newPages*pageSize)
	copy(grown, m.data)
	m.data = grown
	return true
}

func (m *byteMemory) ValidateAddress(base, length uint32) error {
	end := uint64(base) + uint64(length)
	if end > uint64(len(m.data)) {
		return fmt.Errorf("memory access [%d, %d) exceeds memory size %d", base, end, len(m.data))
	}
	return nil
}

func (m *byteMemory) StoreByte(addr uint32, b byte) error {
	if int(addr) >= len(m.data) {
		return fmt.Errorf("store_i32_8 out of bounds at address %d", addr)
	}
	m.data[addr] = b
	return nil
}

func (m *byteMemory) Zero() error {
	for i := range m.data {
		m.data[i] = 0
	}
	return nil
}
