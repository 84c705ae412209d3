package linker

import "github.com/tetratelabs/wazero/api"

// CallTarget is the resolved, callable form of a function: a compiled
// wazero function. Bytecode interpretation and call-target invocation
// machinery are out of scope (spec.md §1); the linker only ever stores and
// hands out this value.
type CallTarget = api.Function

// Function is the external collaborator contract for one entry in a
// module's function index space -- either declared locally or imported.
type Function interface {
	ImportDescriptor() ImportDescriptor
	ImportedModuleName() string
	ImportedFunctionName() string
	IsImported() bool
	Index() int
	ResolveCallTarget() CallTarget
	SetCallTarget(target CallTarget)
}

// FuncEntry is the linker's own Function implementation, populated by
// whatever symbol-table population step (out of scope here) walked the
// module's import and function sections.
type FuncEntry struct {
	desc       ImportDescriptor
	target     CallTarget
	index      int
	isImported bool
}

// NewLocalFunc creates a Function entry for a function declared (not
// imported) at index.
func NewLocalFunc(index int) *FuncEntry {
	return &FuncEntry{index: index}
}

// NewImportedFunc creates a Function entry for a function imported from
// desc.ModuleName/desc.MemberName, occupying index in the importer's
// function index space.
func NewImportedFunc(index int, desc ImportDescriptor) *FuncEntry {
	return &FuncEntry{index: index, desc: desc, isImported: true}
}

func (f *FuncEntry) ImportDescriptor() ImportDescriptor { return f.desc }
func (f *FuncEntry) ImportedModuleName() string         { return f.desc.ModuleName }
func (f *FuncEntry) ImportedFunctionName() string       { return f.desc.MemberName }
func (f *FuncEntry) IsImported() bool                   { return f.isImported }
func (f *FuncEntry) Index() int                         { return f.index }
func (f *FuncEntry) ResolveCallTarget() CallTarget      { return f.target }
func (f *FuncEntry) SetCallTarget(target CallTarget)    { f.target = target }
