package main

import (
	"bytes"
	"fmt"

	"github.com/wippyai/wasm-linker/linker"
	"github.com/wippyai/wasm-linker/wasm"
)

// loadedModule pairs a decoded wasm.Module with the linker.Module it feeds.
type loadedModule struct {
	name      string
	raw       *wasm.Module
	mod       *linker.Module
	callsites int // count of call instructions wired through ResolveCallsite
}

// declare populates mod's function, memory, table and global entries and
// registers every export, but does not touch imports -- imports are
// processed in a second pass once every module in the set has declared and
// exported its own entities (see populateImports).
func declare(l *linker.Linker, lm *loadedModule) {
	mod := lm.mod
	raw := lm.raw
	table := mod.SymbolTable()

	numImportedFuncs := raw.NumImportedFuncs()
	idx := 0
	for _, imp := range raw.Imports {
		if imp.Desc.Kind != wasm.KindFunc {
			continue
		}
		fn := linker.NewImportedFunc(idx, linker.ImportDescriptor{ModuleName: imp.Module, MemberName: imp.Name})
		table.DeclareFunction(fn)
		idx++
	}
	for i := range raw.Funcs {
		fn := linker.NewLocalFunc(numImportedFuncs + i)
		table.DeclareFunction(fn)
		l.ResolveCodeEntry(mod, fn.Index())
	}

	declareCallsites(l, lm)

	numImportedGlobals := raw.NumImportedGlobals()
	gidx := 0
	for _, g := range raw.Globals {
		initial := evalConstExprInt(g.Init)
		vt := toValueType(g.Type.ValType)
		table.DeclareGlobal(numImportedGlobals+gidx, vt, g.Type.Mutable, l.Context().Globals().Alloc(initial), initial)
		gidx++
	}

	numImportedMemories := raw.NumImportedMemories()
	if numImportedMemories == 0 {
		for _, mt := range raw.Memories {
			mem := newByteMemory(int(mt.Limits.Min), memMax(mt.Limits))
			table.DeclareMemory(mem)
			break // the core spec allows at most one memory per module
		}
	}

	if raw.NumImportedTables() == 0 {
		for _, tt := range raw.Tables {
			tbl := linker.NewSharedTable(int(tt.Limits.Min), tableMax(tt.Limits))
			table.SetTable(tbl)
			break
		}
	}

	for _, exp := range raw.Exports {
		switch exp.Kind {
		case wasm.KindFunc:
			l.ResolveFunctionExport(mod, int(exp.Idx), exp.Name)
		case wasm.KindMemory:
			l.ResolveMemoryExport(mod, exp.Name)
		case wasm.KindTable:
			table.ExportTable(exp.Name)
		case wasm.KindGlobal:
			table.ExportGlobal(exp.Name, int(exp.Idx))
		}
	}

	if raw.Start != nil {
		mod.SetStartFunction(table.Function(int(*raw.Start)))
	}
}

// declareCallsites walks every locally-declared function's decoded code and
// registers a Resolver for each call instruction found, via ResolveCallsite.
// raw.Code is aligned with raw.Funcs: raw.Code[i] is the body of the
// function declared at index numImportedFuncs+i. One Block per function
// body stands in for the control-flow block spec.md's Block collaborator
// patches; each call instruction within it gets its own controlTableOffset
// so repeated calls within one function are still distinct Callsite
// symbols. This only needs the callee's Function entry to already be
// declared (true after the loop above), not resolved -- ResolveCallsite
// only registers a dependency edge, it does not require the callee's
// import to have run yet.
func declareCallsites(l *linker.Linker, lm *loadedModule) {
	mod := lm.mod
	raw := lm.raw
	table := mod.SymbolTable()
	numImportedFuncs := raw.NumImportedFuncs()

	for i, body := range raw.Code {
		fnIdx := numImportedFuncs + i
		instrs, err := wasm.DecodeInstructions(body.Code)
		if err != nil {
			continue // malformed code is a decode-time concern, not a link-time one
		}

		block := linker.NewBlock(fnIdx, func(int) error {
			lm.callsites++
			return nil
		})

		callIdx := 0
		for _, instr := range instrs {
			calleeIdx, ok := instr.GetCallTarget()
			if !ok {
				continue
			}
			callee := table.Function(int(calleeIdx))
			if callee == nil {
				continue
			}
			l.ResolveCallsite(mod, block, callIdx, callee)
			callIdx++
		}
	}
}

// populateImports processes mod's imports. Must run only after declare has
// run for every module taking part in this link, since importTable and
// importGlobal are eager and need the exporter fully populated.
func populateImports(l *linker.Linker, lm *loadedModule) error {
	mod := lm.mod
	raw := lm.raw
	table := mod.SymbolTable()

	funcIdx := 0
	globalIdx := 0
	for _, imp := range raw.Imports {
		switch imp.Desc.Kind {
		case wasm.KindFunc:
			fn := table.Function(funcIdx)
			l.ResolveFunctionImport(mod, fn)
			funcIdx++

		case wasm.KindGlobal:
			vt := toValueType(imp.Desc.Global.ValType)
			if _, err := l.ImportGlobal(mod, globalIdx, imp.Module, imp.Name, vt, imp.Desc.Global.Mutable); err != nil {
				return err
			}
			globalIdx++

		case wasm.KindTable:
			tt := imp.Desc.Table
			if _, err := l.ImportTable(mod, imp.Module, imp.Name, int(tt.Limits.Min), tableMax(tt.Limits)); err != nil {
				return err
			}

		case wasm.KindMemory:
			mt := imp.Desc.Memory
			desc := linker.ImportDescriptor{ModuleName: imp.Module, MemberName: imp.Name}
			l.ResolveMemoryImport(mod, desc, int(mt.Limits.Min), memMax(mt.Limits), func(linker.Memory) {})
		}
	}

	for id, seg := range raw.Data {
		if seg.Flags == 1 {
			continue // passive segment, no memory to link into here
		}
		base := evalConstExprInt(seg.Offset)
		if err := l.ResolveDataSection(mod, id, int(base), len(seg.Init), seg.Init, false); err != nil {
			return err
		}
	}

	return nil
}

func memMax(limits wasm.Limits) int {
	if limits.Max == nil {
		return -1
	}
	return int(*limits.Max)
}

func tableMax(limits wasm.Limits) int {
	if limits.Max == nil {
		return -1
	}
	return int(*limits.Max)
}

func toValueType(vt wasm.ValType) linker.ValueType {
	switch vt {
	case wasm.ValI32:
		return linker.ValueTypeI32
	case wasm.ValI64:
		return linker.ValueTypeI64
	case wasm.ValF32:
		return linker.ValueTypeF32
	case wasm.ValF64:
		return linker.ValueTypeF64
	case wasm.ValExtern:
		return linker.ValueTypeExternref
	default:
		return linker.ValueTypeFuncref
	}
}

// evalConstExprInt evaluates the handful of constant init-expression forms
// the linker cares about (i32.const/i64.const N end); anything else
// (global.get, GC/ref expressions) evaluates to 0, since computing those
// values is bytecode interpretation and out of scope here.
func evalConstExprInt(expr []byte) int64 {
	if len(expr) == 0 {
		return 0
	}
	r := bytes.NewReader(expr)
	op, err := r.ReadByte()
	if err != nil {
		return 0
	}
	switch op {
	case wasm.OpI32Const:
		v, err := wasm.ReadLEB128s(r)
		if err != nil {
			return 0
		}
		return int64(v)
	case wasm.OpI64Const:
		v, err := wasm.ReadLEB128s64(r)
		if err != nil {
			return 0
		}
		return v
	default:
		return 0
	}
}

func describeModule(lm *loadedModule) string {
	t := lm.mod.SymbolTable()
	return fmt.Sprintf("%s: %d functions, memory=%v, table=%v, %d globals, %d callsites resolved",
		lm.name, len(t.Functions()), t.Memory() != nil, t.Table() != nil, len(t.Globals()), lm.callsites)
}
