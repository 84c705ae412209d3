// Package linker resolves every cross-module reference between the
// WebAssembly modules loaded into a shared Context: imported functions,
// imported/exported memories, tables and globals, call-sites, code entries,
// and data-segment initializations.
//
// # Main Types
//
//   - Context: owns the modules taking part in one link and the shared
//     global-variable store
//   - Module: a module's symbol table, as populated by an external parser
//   - Linker: the facade the parser calls into while walking each module;
//     drives the dependency DAG and the link state machine
//
// # Link Procedure
//
// A module's imports, exports, call-sites and data segments are registered
// with the Linker as the parser discovers them. Eager checks (importGlobal,
// importTable) run synchronously at registration time; everything else is
// deferred into a ResolutionDag. Calling (*Linker).TryLink topologically
// sorts the DAG, runs every Resolver's action in dependency order, marks
// every Module linked, invokes every start function in Context map order,
// and clears the DAG.
//
// # Thread Safety
//
// A Linker must be driven by a single logical executor. TryLink uses an
// atomic state guard to reject concurrent re-entry, but the bodies of
// individual Resolver actions are not otherwise synchronized -- the single
// link round is expected to run to completion on one goroutine.
//
// # Example
//
//	ctx := linker.NewContext()
//	env := linker.NewModule("env")
//	main := linker.NewModule("main")
//	ctx.AddModule(env)
//	ctx.AddModule(main)
//
//	l := linker.New(ctx, linker.DefaultOptions())
//	// ... parser calls l.ResolveFunctionExport / l.ResolveFunctionImport / ...
//	if err := l.TryLink(); err != nil {
//		log.Fatal(err)
//	}
package linker
