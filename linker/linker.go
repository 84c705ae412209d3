package linker

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-linker/linker/internal/dag"
)

// LinkState is the Linker's one-shot state machine: notLinked -> inProgress
// -> linked, monotonic, no regression.
type LinkState int32

const (
	StateNotLinked LinkState = iota
	StateInProgress
	StateLinked
)

func (s LinkState) String() string {
	switch s {
	case StateNotLinked:
		return "not_linked"
	case StateInProgress:
		return "in_progress"
	case StateLinked:
		return "linked"
	default:
		return "unknown"
	}
}

// Options configures a Linker.
type Options struct {
	// StrictGlobalImports, if set, makes importGlobal fail immediately when
	// fromModule is unknown instead of recording an unresolved import and
	// returning -1. The spec's documented TODO behavior (return -1) is the
	// default; this is an opt-in deviation for embedders that would rather
	// fail fast than carry a dangling global import.
	StrictGlobalImports bool
}

// DefaultOptions returns the spec-compatible defaults.
func DefaultOptions() Options {
	return Options{}
}

// ResolverTrace records one Resolver's execution during a single TryLink
// call: its Sym, in the order the toposort ran it, and how long its action
// took. Trace() exposes the completed slice after TryLink returns, for
// diagnostics/observability callers such as cmd/link's topological-order
// and per-Resolver-timing display -- it is not consulted by the link
// procedure itself and carries no effect on linking semantics.
type ResolverTrace struct {
	Sym      Sym
	Duration time.Duration
}

// Linker is the facade the parser calls into while walking each module. It
// accumulates eager checks immediately and defers everything else into a
// ResolutionDag, then drives the full link procedure from TryLink.
type Linker struct {
	ctx   *Context
	dag   *dag.Dag
	opts  Options
	state atomic.Int32
	trace []ResolverTrace
}

// New creates a Linker over ctx, not yet linked.
func New(ctx *Context, opts Options) *Linker {
	return &Linker{ctx: ctx, dag: dag.New(), opts: opts}
}

// NewWithDefaults creates a Linker with DefaultOptions.
func NewWithDefaults(ctx *Context) *Linker {
	return New(ctx, DefaultOptions())
}

// State returns the current link state.
func (l *Linker) State() LinkState {
	return LinkState(l.state.Load())
}

// Context returns the Context this Linker was built over.
func (l *Linker) Context() *Context {
	return l.ctx
}

// Trace returns the per-Resolver execution trace from the most recent
// TryLink, in the topological order the resolvers ran in. It is empty
// before the first TryLink call and is not reset by Close.
func (l *Linker) Trace() []ResolverTrace {
	return l.trace
}

// TryLink performs the full link procedure exactly once. If the linker is
// already inProgress or linked, it returns immediately. Re-entry from within
// a Resolver action or a start function is undefined and must be prevented
// by the caller's single-threaded discipline; the atomic guard below only
// protects the top-level entry check.
func (l *Linker) TryLink() error {
	if !l.state.CompareAndSwap(int32(StateNotLinked), int32(StateInProgress)) {
		return nil
	}
	Logger().Debug("link starting", zap.String("phase", StateInProgress.String()))

	if err := l.link(); err != nil {
		// LinkState intentionally stays at inProgress on failure: the spec
		// documents no rollback, and re-running tryLink after a failed link
		// is not a supported recovery path.
		Logger().Warn("link failed", zap.Error(err))
		return err
	}

	l.dag.Clear()
	l.state.Store(int32(StateLinked))
	Logger().Debug("link complete", zap.String("phase", StateLinked.String()))
	return nil
}

func (l *Linker) link() error {
	resolvers, err := l.dag.Toposort()
	if err != nil {
		return errCycle(err)
	}

	l.trace = make([]ResolverTrace, 0, len(resolvers))
	for _, r := range resolvers {
		start := time.Now()
		err := r.Run()
		elapsed := time.Since(start)
		if err != nil {
			Logger().Warn("resolver action failed",
				zap.String("sym", r.Sym.String()),
				zap.String("module", r.Sym.ModuleName),
				zap.Error(err))
			return err
		}
		l.trace = append(l.trace, ResolverTrace{Sym: r.Sym, Duration: elapsed})
		Logger().Debug("resolver action ran",
			zap.String("sym", r.Sym.String()),
			zap.String("module", r.Sym.ModuleName),
			zap.Duration("elapsed", elapsed))
	}

	for _, mod := range l.ctx.Modules() {
		mod.setLinked()
	}

	for _, mod := range l.ctx.Modules() {
		start := mod.StartFunction()
		if start == nil {
			continue
		}
		target := start.ResolveCallTarget()
		if target == nil {
			continue
		}
		Logger().Debug("invoking start function", zap.String("module", mod.Name()))
		if _, err := target.Call(context.Background()); err != nil {
			Logger().Warn("start function failed", zap.String("module", mod.Name()), zap.Error(err))
			return err
		}
	}

	return nil
}

// Close releases the Linker's ResolutionDag. It does not affect the
// Context or its modules; callers that want to discard a failed link and
// start over should build a fresh Linker over the same Context.
func (l *Linker) Close() {
	l.dag.Clear()
}

// ImportGlobal is the eager check the parser calls for each imported global.
// It records the outcome directly on module's symbol table at index and
// returns the resolved address, or -1 if unresolved.
func (l *Linker) ImportGlobal(module *Module, index int, fromModule, name string, valueType ValueType, mutable bool) (addr int, err error) {
	defer func() {
		if err != nil {
			Logger().Warn("importGlobal failed", zap.String("module", module.Name()), zap.String("from", fromModule), zap.String("name", name), zap.Error(err))
		}
	}()

	exporter, ok := l.ctx.Module(fromModule)
	if !ok {
		if l.opts.StrictGlobalImports {
			return -1, errMissingModule(module.Name(), fromModule)
		}
		module.SymbolTable().RecordGlobalImport(index, valueType, mutable, GlobalUnresolvedImport, -1)
		return -1, nil
	}

	exportedIdx, ok := exporter.SymbolTable().ExportedGlobal(name)
	if !ok {
		return -1, errMissingGlobalExport(name, module.Name(), fromModule)
	}
	slot, _ := exporter.SymbolTable().Global(exportedIdx)

	if slot.ValueType != valueType {
		return -1, errGlobalTypeMismatch(name, module.Name(), fromModule, slot.ValueType, valueType)
	}
	if slot.Mutable != mutable {
		return -1, errGlobalMutabilityMismatch(name, module.Name(), fromModule, slot.Mutable, mutable)
	}

	if slot.Resolution == GlobalImported || slot.Resolution == GlobalLocal {
		module.SymbolTable().RecordGlobalImport(index, valueType, mutable, GlobalImported, slot.Address)
		return slot.Address, nil
	}

	module.SymbolTable().RecordGlobalImport(index, valueType, mutable, GlobalUnresolvedImport, -1)
	return -1, nil
}

// ImportTable is the eager check the parser calls for each imported table.
func (l *Linker) ImportTable(module *Module, fromModule, name string, initSize, maxSize int) (result Table, err error) {
	defer func() {
		if err != nil {
			Logger().Warn("importTable failed", zap.String("module", module.Name()), zap.String("from", fromModule), zap.String("name", name), zap.Error(err))
		}
	}()

	exporter, ok := l.ctx.Module(fromModule)
	if !ok {
		return nil, errDeferredTableNotImplemented()
	}

	tbl := exporter.SymbolTable().Table()
	exportedName, hasExport := exporter.SymbolTable().ExportedTableName()
	if tbl == nil || !hasExport {
		return nil, errMissingTableExport(fromModule)
	}
	if exportedName != name {
		return nil, errTableNameMismatch(fromModule, exportedName, module.Name(), name)
	}

	if max := tbl.MaxSize(); max != -1 && (initSize > max || (maxSize != -1 && maxSize > max)) {
		return nil, errTableSizeOverflow(fromModule, max, initSize, maxSize)
	}

	if err := tbl.EnsureSizeAtLeast(initSize); err != nil {
		return nil, err
	}

	module.SymbolTable().SetImportedTable(ImportDescriptor{ModuleName: fromModule, MemberName: name}, tbl)
	return tbl, nil
}

// ResolveFunctionImport registers the dependency edge and action that ties
// an imported function's call target to its exporter's.
func (l *Linker) ResolveFunctionImport(module *Module, fn Function) {
	desc := fn.ImportDescriptor()
	sym := dag.ImportFunctionSym(module.Name(), desc)
	dep := dag.ExportFunctionSym(desc.ModuleName, desc.MemberName)

	l.dag.ResolveLater(sym, []Sym{dep}, func() error {
		exporter, ok := l.ctx.Module(desc.ModuleName)
		if !ok {
			return errMissingModule(module.Name(), desc.ModuleName)
		}
		exportedFn, ok := exporter.SymbolTable().ExportedFunction(desc.MemberName)
		if !ok {
			return errMissingFunctionExport(desc.MemberName, module.Name(), desc.ModuleName)
		}
		fn.SetCallTarget(exportedFn.ResolveCallTarget())
		return nil
	})
}

// ResolveFunctionExport registers the export symbol importers depend on.
func (l *Linker) ResolveFunctionExport(module *Module, index int, exportedName string) {
	fn := module.SymbolTable().Function(index)
	module.SymbolTable().ExportFunction(exportedName, index)

	sym := dag.ExportFunctionSym(module.Name(), exportedName)
	var deps []Sym
	if fn != nil && fn.IsImported() {
		deps = []Sym{dag.ImportFunctionSym(module.Name(), fn.ImportDescriptor())}
	}

	l.dag.ResolveLater(sym, deps, func() error { return nil })
}

// ResolveCallsite registers a callsite's dependency on the callee's import
// or local-declaration symbol, and the action that patches the call node
// once that dependency has run.
func (l *Linker) ResolveCallsite(module *Module, block Block, controlTableOffset int, fn Function) {
	sym := dag.CallsiteSym(module.Name(), block.StartOffset(), controlTableOffset)

	var dep Sym
	if fn.IsImported() {
		dep = dag.ImportFunctionSym(module.Name(), fn.ImportDescriptor())
	} else {
		dep = dag.CodeEntrySym(module.Name(), fn.Index())
	}

	l.dag.ResolveLater(sym, []Sym{dep}, func() error {
		return block.ResolveCallNode(controlTableOffset)
	})
}

// ResolveCodeEntry registers a dependency target for a locally-declared
// function, with no dependencies and a no-op action.
func (l *Linker) ResolveCodeEntry(module *Module, functionIndex int) {
	sym := dag.CodeEntrySym(module.Name(), functionIndex)
	l.dag.ResolveLater(sym, nil, func() error { return nil })
}

// ResolveMemoryImport registers an imported memory's dependency on its
// exporter's ExportMemory symbol, and the action that validates, grows and
// shares the exporter's memory.
func (l *Linker) ResolveMemoryImport(module *Module, desc ImportDescriptor, initSize, maxSize int, setMemory func(Memory)) {
	sym := dag.ImportMemorySym(module.Name(), desc)
	dep := dag.ExportMemorySym(desc.ModuleName, desc.MemberName)

	// Recorded synchronously, not inside the deferred action below: callers
	// like ResolveDataSection and ResolveMemoryExport need to know a memory
	// import is pending as soon as the parser registers it, well before
	// TryLink's toposort ever runs this Resolver's action.
	module.SymbolTable().DeclareMemoryImport(desc)

	l.dag.ResolveLater(sym, []Sym{dep}, func() error {
		exporter, ok := l.ctx.Module(desc.ModuleName)
		if !ok {
			return errMissingModule(module.Name(), desc.ModuleName)
		}
		mem := exporter.SymbolTable().Memory()
		exportedName, hasExport := exporter.SymbolTable().ExportedMemoryName()
		if mem == nil || !hasExport {
			return errMissingMemoryExport(desc.ModuleName)
		}
		if exportedName != desc.MemberName {
			return errMemoryNameMismatch(desc.ModuleName, exportedName, module.Name(), desc.MemberName)
		}
		if max := mem.MaxPageSize(); max != -1 && (initSize > max || maxSize > max) {
			return errMemorySizeOverflow(desc.ModuleName, max, initSize)
		}
		if mem.PageSize() < initSize {
			if !mem.Grow(initSize - mem.PageSize()) {
				return errMemorySizeOverflow(desc.ModuleName, mem.MaxPageSize(), initSize)
			}
		}
		module.SymbolTable().SetImportedMemory(mem)
		setMemory(mem)
		return nil
	})
}

// ResolveMemoryExport registers the export symbol memory importers depend
// on.
func (l *Linker) ResolveMemoryExport(module *Module, exportedName string) {
	module.SymbolTable().ExportMemory(exportedName)

	sym := dag.ExportMemorySym(module.Name(), exportedName)
	var deps []Sym
	if desc, ok := module.SymbolTable().MemoryImport(); ok {
		deps = []Sym{dag.ImportMemorySym(module.Name(), desc)}
	}

	l.dag.ResolveLater(sym, deps, func() error { return nil })
}

// ResolveDataSection registers a data section's write, ordered after the
// module's memory import (if any) and, when priorDataSectionsResolved is
// false, after the previous data section in the same module.
func (l *Linker) ResolveDataSection(module *Module, id int, baseAddress, length int, data []byte, priorDataSectionsResolved bool) error {
	if module.SymbolTable().Memory() == nil {
		if _, imported := module.SymbolTable().MemoryImport(); !imported {
			return errMissingMemoryForData(module.Name(), id)
		}
	}

	var deps []Sym
	if desc, ok := module.SymbolTable().MemoryImport(); ok {
		deps = append(deps, dag.ImportMemorySym(module.Name(), desc))
	}
	if !priorDataSectionsResolved && id > 0 {
		deps = append(deps, dag.DataSym(module.Name(), id-1))
	}

	payload := make([]byte, length)
	copy(payload, data)

	sym := dag.DataSym(module.Name(), id)
	l.dag.ResolveLater(sym, deps, func() error {
		mem := module.SymbolTable().Memory()
		if mem == nil {
			return errMissingMemoryForData(module.Name(), id)
		}
		if err := mem.ValidateAddress(uint32(baseAddress), uint32(length)); err != nil {
			return errAddressValidation(module.Name(), id, err)
		}
		for i, b := range payload {
			if err := mem.StoreByte(uint32(baseAddress+i), b); err != nil {
				return errAddressValidation(module.Name(), id, err)
			}
		}
		module.SymbolTable().recordDataWrite(baseAddress, payload)
		return nil
	})
	return nil
}

// ResetModuleState clears module's memory (if zeroMemory), rewrites the data
// sections written during linking, and re-initializes its globals to their
// declared initial values, for test/benchmark reuse.
// It is outside the link state machine and may be called at any time.
//
// rawBytes is accepted for contract fidelity with the module's original
// parsed bytes, but reset here replays the bookkeeping recorded during
// ResolveDataSection and DeclareGlobal rather than re-decoding rawBytes --
// binary decoding is an external collaborator's job (see the wasm package).
func (l *Linker) ResetModuleState(module *Module, rawBytes []byte, zeroMemory bool) error {
	_ = rawBytes

	table := module.SymbolTable()

	if mem := table.Memory(); mem != nil {
		if zeroMemory {
			if err := mem.Zero(); err != nil {
				return err
			}
		}
		for _, w := range table.dataWrites {
			for i, b := range w.bytes {
				if err := mem.StoreByte(uint32(w.baseAddress+i), b); err != nil {
					return err
				}
			}
		}
	}

	for _, slot := range table.globals {
		if slot.Resolution == GlobalLocal {
			l.ctx.Globals().Store(slot.Address, slot.Initial)
		}
	}

	return nil
}
