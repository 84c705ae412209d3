package linker

import "github.com/wippyai/wasm-linker/linker/internal/dag"

// Type aliases for backwards compatibility with the lower-level
// representation: Sym and its kinds live in linker/internal/dag so the
// ResolutionDag can use them as map keys without importing this package.
type (
	Sym              = dag.Sym
	SymKind          = dag.SymKind
	ImportDescriptor = dag.ImportDescriptor
)

const (
	SymImportFunction = dag.ImportFunction
	SymExportFunction = dag.ExportFunction
	SymCallsite       = dag.Callsite
	SymCodeEntry      = dag.CodeEntry
	SymImportMemory   = dag.ImportMemory
	SymExportMemory   = dag.ExportMemory
	SymData           = dag.Data
)

// ImportFunctionSym identifies a function import in module by desc.
func ImportFunctionSym(module string, desc ImportDescriptor) Sym {
	return dag.ImportFunctionSym(module, desc)
}

// ExportFunctionSym identifies a function export named exportedName from module.
func ExportFunctionSym(module, exportedName string) Sym {
	return dag.ExportFunctionSym(module, exportedName)
}

// CallsiteSym identifies a call instruction at instructionOffset within module.
func CallsiteSym(module string, instructionOffset, controlTableOffset int) Sym {
	return dag.CallsiteSym(module, instructionOffset, controlTableOffset)
}

// CodeEntrySym identifies a local function body by its index within module.
func CodeEntrySym(module string, functionIndex int) Sym {
	return dag.CodeEntrySym(module, functionIndex)
}

// ImportMemorySym identifies a memory import in module by desc.
func ImportMemorySym(module string, desc ImportDescriptor) Sym {
	return dag.ImportMemorySym(module, desc)
}

// ExportMemorySym identifies a memory export named exportedName from module.
func ExportMemorySym(module, exportedName string) Sym {
	return dag.ExportMemorySym(module, exportedName)
}

// DataSym identifies a data segment by id within module.
func DataSym(module string, id int) Sym {
	return dag.DataSym(module, id)
}
