// Package dag implements the ResolutionDag: a registry of deferred link
// actions and the dependency edges between them, plus the topological sort
// that turns the registry into an execution order.
//
// Symbols are plain comparable structs, so the map itself provides identity
// and equality for free -- no hand-written equals/hashCode is needed the way
// the source this was ported from required.
package dag

import (
	"fmt"
	"strings"
)

// SymKind tags which linkable entity a Sym identifies.
type SymKind uint8

const (
	ImportFunction SymKind = iota
	ExportFunction
	Callsite
	CodeEntry
	ImportMemory
	ExportMemory
	Data
)

// ImportDescriptor names the (module, member) pair an import refers to.
type ImportDescriptor struct {
	ModuleName string
	MemberName string
}

// Sym is the tagged identity of any linkable entity. Two Syms are equal iff
// every field is equal -- ordinary Go struct equality, so Sym can be used
// directly as a map key.
type Sym struct {
	Kind               SymKind
	ModuleName         string
	Import             ImportDescriptor
	ExportedName       string
	InstructionOffset  int
	ControlTableOffset int
	FunctionIndex      int
	DataSectionID      int
}

func ImportFunctionSym(moduleName string, desc ImportDescriptor) Sym {
	return Sym{Kind: ImportFunction, ModuleName: moduleName, Import: desc}
}

func ExportFunctionSym(moduleName, exportedName string) Sym {
	return Sym{Kind: ExportFunction, ModuleName: moduleName, ExportedName: exportedName}
}

func CallsiteSym(moduleName string, instructionOffset, controlTableOffset int) Sym {
	return Sym{Kind: Callsite, ModuleName: moduleName, InstructionOffset: instructionOffset, ControlTableOffset: controlTableOffset}
}

func CodeEntrySym(moduleName string, functionIndex int) Sym {
	return Sym{Kind: CodeEntry, ModuleName: moduleName, FunctionIndex: functionIndex}
}

func ImportMemorySym(moduleName string, desc ImportDescriptor) Sym {
	return Sym{Kind: ImportMemory, ModuleName: moduleName, Import: desc}
}

func ExportMemorySym(moduleName, exportedName string) Sym {
	return Sym{Kind: ExportMemory, ModuleName: moduleName, ExportedName: exportedName}
}

func DataSym(moduleName string, id int) Sym {
	return Sym{Kind: Data, ModuleName: moduleName, DataSectionID: id}
}

// String renders a stable, human-readable form used in cycle diagnostics.
func (s Sym) String() string {
	switch s.Kind {
	case ImportFunction:
		return fmt.Sprintf("(import func %s from %s into %s)", s.Import.MemberName, s.Import.ModuleName, s.ModuleName)
	case ExportFunction:
		return fmt.Sprintf("(export func %s from %s)", s.ExportedName, s.ModuleName)
	case Callsite:
		return fmt.Sprintf("(callsite at %d in %s)", s.InstructionOffset, s.ModuleName)
	case CodeEntry:
		return fmt.Sprintf("(code entry %d in %s)", s.FunctionIndex, s.ModuleName)
	case ImportMemory:
		return fmt.Sprintf("(import memory %s from %s into %s)", s.Import.MemberName, s.Import.ModuleName, s.ModuleName)
	case ExportMemory:
		return fmt.Sprintf("(export memory %s from %s)", s.ExportedName, s.ModuleName)
	case Data:
		return fmt.Sprintf("(data %d in %s)", s.DataSectionID, s.ModuleName)
	default:
		return fmt.Sprintf("(unknown symbol %+v)", struct{ Sym }{s})
	}
}

// Action is a nullary link-time effect that may fail.
type Action func() error

// Resolver is a registered (symbol, dependencies, action) triple.
type Resolver struct {
	Sym  Sym
	Deps []Sym
	Run  Action
}

// Dag maps each registered Sym to at most one Resolver. An edge
// "sym depends on dep" means dep's action runs before sym's. Dangling
// dependencies -- Syms with no registered Resolver -- are silent no-ops
// during traversal.
type Dag struct {
	resolvers map[Sym]*Resolver
	order     []Sym // insertion order, drives deterministic root iteration
}

// New returns an empty ResolutionDag.
func New() *Dag {
	return &Dag{resolvers: make(map[Sym]*Resolver)}
}

// ResolveLater upserts a Resolver for sym. Re-registration overwrites any
// previously registered Resolver for the same Sym but keeps its original
// insertion-order position, matching invariant 1 in the data model.
func (d *Dag) ResolveLater(sym Sym, deps []Sym, action Action) {
	if _, exists := d.resolvers[sym]; !exists {
		d.order = append(d.order, sym)
	}
	d.resolvers[sym] = &Resolver{Sym: sym, Deps: deps, Run: action}
}

// Clear drops all registered Resolvers.
func (d *Dag) Clear() {
	d.resolvers = make(map[Sym]*Resolver)
	d.order = nil
}

// Len reports how many Resolvers are currently registered.
func (d *Dag) Len() int {
	return len(d.resolvers)
}

type mark uint8

const (
	unmarked mark = iota
	temporary
	permanent
)

// CycleError is returned when Toposort finds a directed cycle among
// registered Resolvers. Chain starts and ends at the same Sym.
type CycleError struct {
	Chain []Sym
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Chain))
	for i, s := range e.Chain {
		parts[i] = s.String()
	}
	return "Detected a cycle in the import dependencies: " + strings.Join(parts, " -> ") + "."
}

// Toposort produces an order in which, for every registered Resolver R and
// every dependency D of R that also has a Resolver, D appears earlier than
// R. Traversal is depth-first with tri-state marks, driven by an explicit
// stack rather than recursion so that deep import chains cannot overflow
// the call stack.
func (d *Dag) Toposort() ([]*Resolver, error) {
	marks := make(map[Sym]mark, len(d.resolvers))
	order := make([]*Resolver, 0, len(d.resolvers))

	for _, root := range d.order {
		if marks[root] != unmarked {
			continue
		}
		if err := d.visit(root, marks, &order); err != nil {
			return nil, err
		}
	}
	return order, nil
}

type frame struct {
	sym    Sym
	depIdx int
}

func (d *Dag) visit(root Sym, marks map[Sym]mark, order *[]*Resolver) error {
	stack := []frame{{sym: root}}
	path := []Sym{root}
	marks[root] = temporary

	for len(stack) > 0 {
		i := len(stack) - 1
		cur := stack[i].sym
		r := d.resolvers[cur]

		var deps []Sym
		if r != nil {
			deps = r.Deps
		}

		if stack[i].depIdx < len(deps) {
			dep := deps[stack[i].depIdx]
			stack[i].depIdx++

			if _, exists := d.resolvers[dep]; !exists {
				continue // dangling dependency: no-op
			}

			switch marks[dep] {
			case permanent:
				continue
			case temporary:
				idx := indexOf(path, dep)
				chain := append(append([]Sym{}, path[idx:]...), dep)
				return &CycleError{Chain: chain}
			default:
				marks[dep] = temporary
				path = append(path, dep)
				stack = append(stack, frame{sym: dep})
			}
			continue
		}

		marks[cur] = permanent
		if r != nil {
			*order = append(*order, r)
		}
		stack = stack[:len(stack)-1]
		path = path[:len(path)-1]
	}
	return nil
}

func indexOf(path []Sym, sym Sym) int {
	for i, s := range path {
		if s == sym {
			return i
		}
	}
	return 0
}
