package linker

import "fmt"

// GlobalResolution tracks how a module's global at a given index has been
// resolved so far.
type GlobalResolution uint8

const (
	GlobalUnresolved GlobalResolution = iota
	GlobalUnresolvedImport
	GlobalImported
	GlobalLocal
)

// GlobalSlot is the per-index bookkeeping a SymbolTable keeps for a global
// variable, whether declared locally or imported.
type GlobalSlot struct {
	ValueType  ValueType
	Mutable    bool
	Resolution GlobalResolution
	Address    int   // -1 until resolved
	Initial    int64 // declared initial value, replayed by resetModuleState
}

type recordedDataWrite struct {
	baseAddress int
	bytes       []byte
}

// SymbolTable is the per-module registry of declared and imported entities
// a Module exposes to the linker: functions, memory, table and globals.
type SymbolTable struct {
	functions     []Function
	exportedFuncs map[string]int

	memory         Memory
	memoryImport   *ImportDescriptor
	exportedMemory string

	table         Table
	tableImport   *ImportDescriptor
	exportedTable string

	globals         []GlobalSlot
	exportedGlobals map[string]int

	dataWrites []recordedDataWrite
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{exportedFuncs: make(map[string]int), exportedGlobals: make(map[string]int)}
}

// DeclareFunction places fn at its own reported index in the function index
// space, growing the space as needed.
func (t *SymbolTable) DeclareFunction(fn Function) {
	idx := fn.Index()
	if idx >= len(t.functions) {
		grown := make([]Function, idx+1)
		copy(grown, t.functions)
		t.functions = grown
	}
	t.functions[idx] = fn
}

// Function returns the entry at index, or nil if index is out of range.
func (t *SymbolTable) Function(index int) Function {
	if index < 0 || index >= len(t.functions) {
		return nil
	}
	return t.functions[index]
}

// Functions returns the whole function index space.
func (t *SymbolTable) Functions() []Function {
	return t.functions
}

// ExportFunction records that the function at index is exported under
// exportedName.
func (t *SymbolTable) ExportFunction(exportedName string, index int) {
	t.exportedFuncs[exportedName] = index
}

// ExportedFunction looks up a function by its exported name.
func (t *SymbolTable) ExportedFunction(exportedName string) (Function, bool) {
	idx, ok := t.exportedFuncs[exportedName]
	if !ok {
		return nil, false
	}
	return t.functions[idx], true
}

func (t *SymbolTable) Memory() Memory {
	return t.memory
}

// MemoryImport reports the import descriptor this module's memory is (or
// will be) imported under. It is recorded synchronously by
// DeclareMemoryImport at ResolveMemoryImport registration time, so it is
// available immediately -- independent of whether the deferred action that
// actually shares the exporter's Memory object has run yet. Callers that
// need the concrete, validated Memory object must wait for TryLink; callers
// that only need to know an import is pending (ResolveDataSection's
// precondition, ResolveMemoryExport's dependency wiring) can rely on this
// the moment ResolveMemoryImport is called.
func (t *SymbolTable) MemoryImport() (ImportDescriptor, bool) {
	if t.memoryImport == nil {
		return ImportDescriptor{}, false
	}
	return *t.memoryImport, true
}

// DeclareMemory attaches a locally-declared (non-imported) memory.
func (t *SymbolTable) DeclareMemory(mem Memory) {
	t.memory = mem
}

// DeclareMemoryImport records desc as this module's pending memory import.
// ResolveMemoryImport calls this synchronously at registration time, before
// its deferred action runs, so MemoryImport() reflects the pending import
// from the moment the parser registers it rather than from the moment
// TryLink's toposort happens to execute the action.
func (t *SymbolTable) DeclareMemoryImport(desc ImportDescriptor) {
	t.memoryImport = &desc
}

// SetImportedMemory is the setMemory effect ResolveMemoryImport's deferred
// action invokes once the exporter's memory has been validated and grown:
// it shares the resolved Memory object. The import descriptor itself was
// already recorded by DeclareMemoryImport at registration time.
func (t *SymbolTable) SetImportedMemory(mem Memory) {
	t.memory = mem
}

func (t *SymbolTable) ExportMemory(exportedName string) {
	t.exportedMemory = exportedName
}

func (t *SymbolTable) ExportedMemoryName() (string, bool) {
	if t.exportedMemory == "" {
		return "", false
	}
	return t.exportedMemory, true
}

func (t *SymbolTable) Table() Table {
	return t.table
}

func (t *SymbolTable) TableImport() (ImportDescriptor, bool) {
	if t.tableImport == nil {
		return ImportDescriptor{}, false
	}
	return *t.tableImport, true
}

// SetTable attaches a locally-declared table.
func (t *SymbolTable) SetTable(tbl Table) {
	t.table = tbl
}

// SetImportedTable records an imported table's descriptor and the shared
// Table object returned by importTable.
func (t *SymbolTable) SetImportedTable(desc ImportDescriptor, tbl Table) {
	t.tableImport = &desc
	t.table = tbl
}

func (t *SymbolTable) ExportTable(exportedName string) {
	t.exportedTable = exportedName
}

func (t *SymbolTable) ExportedTableName() (string, bool) {
	if t.exportedTable == "" {
		return "", false
	}
	return t.exportedTable, true
}

func (t *SymbolTable) ensureGlobalSlot(index int) {
	if index >= len(t.globals) {
		grown := make([]GlobalSlot, index+1)
		copy(grown, t.globals)
		for i := len(t.globals); i <= index; i++ {
			grown[i].Address = -1
		}
		t.globals = grown
	}
}

// DeclareGlobal records a locally-declared global at index, already resolved
// to address with the given initial value.
func (t *SymbolTable) DeclareGlobal(index int, vt ValueType, mutable bool, address int, initial int64) {
	t.ensureGlobalSlot(index)
	t.globals[index] = GlobalSlot{ValueType: vt, Mutable: mutable, Resolution: GlobalLocal, Address: address, Initial: initial}
}

// RecordGlobalImport records the eager outcome of importGlobal for index.
func (t *SymbolTable) RecordGlobalImport(index int, vt ValueType, mutable bool, resolution GlobalResolution, address int) {
	t.ensureGlobalSlot(index)
	t.globals[index] = GlobalSlot{ValueType: vt, Mutable: mutable, Resolution: resolution, Address: address}
}

// Global returns the slot at index, if declared.
func (t *SymbolTable) Global(index int) (GlobalSlot, bool) {
	if index < 0 || index >= len(t.globals) {
		return GlobalSlot{}, false
	}
	return t.globals[index], true
}

// Globals returns every declared global slot, indexed as in the module.
func (t *SymbolTable) Globals() []GlobalSlot {
	return t.globals
}

// ExportGlobal records that the global at index is exported under
// exportedName, so importGlobal in another module can find it by name. Not
// part of the data model's listed SymbolTable fields, but required for
// named global resolution to be possible at all.
func (t *SymbolTable) ExportGlobal(exportedName string, index int) {
	t.exportedGlobals[exportedName] = index
}

// ExportedGlobal looks up a global's index by its exported name.
func (t *SymbolTable) ExportedGlobal(exportedName string) (int, bool) {
	idx, ok := t.exportedGlobals[exportedName]
	return idx, ok
}

func (t *SymbolTable) recordDataWrite(baseAddress int, data []byte) {
	cp := make([]byte, len(data))
	copy(cp, data)
	t.dataWrites = append(t.dataWrites, recordedDataWrite{baseAddress: baseAddress, bytes: cp})
}

// Module is a named container owned by a Context, exposing a SymbolTable to
// the linker and an optional start function invoked once after link.
type Module struct {
	moduleName string
	table      *SymbolTable
	start      Function
	linked     bool
}

// NewModule creates an empty Module named name.
func NewModule(name string) *Module {
	return &Module{moduleName: name, table: newSymbolTable()}
}

func (m *Module) Name() string {
	return m.moduleName
}

func (m *Module) SymbolTable() *SymbolTable {
	return m.table
}

func (m *Module) Linked() bool {
	return m.linked
}

func (m *Module) setLinked() {
	m.linked = true
}

// SetStartFunction declares fn as the module's start function.
func (m *Module) SetStartFunction(fn Function) {
	m.start = fn
}

func (m *Module) StartFunction() Function {
	return m.start
}

// ReadMember resolves name against this module's exported functions, memory
// or table, failing with a distinguished "unknown identifier" condition when
// absent.
func (m *Module) ReadMember(name string) (any, error) {
	if fn, ok := m.table.ExportedFunction(name); ok {
		return fn, nil
	}
	if exported, ok := m.table.ExportedMemoryName(); ok && exported == name && m.table.memory != nil {
		return m.table.memory, nil
	}
	if exported, ok := m.table.ExportedTableName(); ok && exported == name && m.table.table != nil {
		return m.table.table, nil
	}
	return nil, fmt.Errorf("unknown identifier %q in module %q", name, m.moduleName)
}
