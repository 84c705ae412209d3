// Package wasmlinker is the root of a multi-module WebAssembly linker: given
// a set of parsed modules sharing an execution Context, it resolves every
// cross-module reference -- imported functions, imported/exported memories,
// tables and globals, call-sites, code entries, and data-segment
// initializations -- in dependency-correct order.
//
// # Architecture Overview
//
//	github.com/wippyai/wasm-linker/
//	├── linker/              Context, Module, Linker facade, link state machine
//	│   └── internal/dag/    ResolutionDag: deferred resolvers + topological sort
//	├── wasm/                Binary module decoder/encoder/validator (the parser
//	│   └── internal/binary/ the linker assumes already exists)
//	├── errors/              Structured Phase/Kind error type shared by the linker
//	└── cmd/link/            CLI that decodes .wasm files and drives the linker
//
// # Quick Start
//
//	ctx := linker.NewContext()
//	env := linker.NewModule("env")
//	main := linker.NewModule("main")
//	ctx.AddModule(env)
//	ctx.AddModule(main)
//
//	l := linker.New(ctx, linker.DefaultOptions())
//	// a parser (see the wasm package) walks each module and calls
//	// l.ResolveFunctionExport / l.ResolveFunctionImport / l.ResolveCallsite /
//	// l.ImportGlobal / l.ImportTable / l.ResolveMemoryImport / ... as it
//	// discovers each import, export, callsite and data segment.
//	if err := l.TryLink(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Scope
//
// Binary module parsing, single-module symbol-table population, bytecode
// interpretation, and call-target invocation are external collaborators:
// the wasm package provides the first, cmd/link's populate.go the second,
// and github.com/tetratelabs/wazero the last two. This repository's own responsibility is strictly the dependency
// DAG, its linearization, and the eager/deferred resolution actions that run
// once it is sorted.
//
// # Thread Safety
//
// A Linker must be driven by a single logical executor per Context: its
// TryLink uses an atomic one-shot guard to reject concurrent re-entry, but
// the resolvers it runs are not otherwise synchronized against each other.
package wasmlinker
