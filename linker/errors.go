package linker

import lerrors "github.com/wippyai/wasm-linker/errors"

// LinkerError is the error type of every diagnostic this package produces
// itself; the message templates below are its only sub-categories. Errors
// from collaborators (a Block, a Table, a Memory during reset, a start
// function) are returned as those collaborators produced them. Detail is always a single,
// complete sentence -- several are specified verbatim for compatibility, so
// never wrap or decorate it further.
type LinkerError = lerrors.Error

func errMissingModule(referencedFrom, missing string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindMissingModule).
		Detail("The module '%s', referenced in the module '%s', does not exist.", missing, referencedFrom).
		Build()
}

func errMissingFunctionExport(name, importer, exporter string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindMissingExport).
		Detail("The imported function '%s', referenced in the module '%s', does not exist in the imported module '%s'.", name, importer, exporter).
		Build()
}

func errMissingGlobalExport(name, importer, exporter string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindMissingExport).
		Detail("Global variable '%s', imported into module '%s', was not exported in the module '%s'.", name, importer, exporter).
		Build()
}

func errMissingMemoryExport(exporter string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindNoExportOfKind).
		Detail("The imported module '%s' does not export any memories.", exporter).
		Build()
}

func errMissingTableExport(exporter string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindNoExportOfKind).
		Detail("The imported module '%s' does not export any tables.", exporter).
		Build()
}

func errMemoryNameMismatch(exporter, exportedName, importer, importedName string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindNameMismatch).
		Detail("The imported module '%s' exports a memory '%s', but module '%s' imports a memory '%s'.", exporter, exportedName, importer, importedName).
		Build()
}

func errTableNameMismatch(exporter, exportedName, importer, importedName string) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindNameMismatch).
		Detail("The imported module '%s' exports a table '%s', but module '%s' imports a table '%s'.", exporter, exportedName, importer, importedName).
		Build()
}

func errGlobalTypeMismatch(name, importer, exporter string, exportedType, requestedType ValueType) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindTypeMismatch).
		Detail("Global variable '%s', imported into module '%s' from module '%s', has type %s but was requested as %s.",
			name, importer, exporter, exportedType, requestedType).
		Build()
}

func errGlobalMutabilityMismatch(name, importer, exporter string, exportedMutable, requestedMutable bool) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindMutabilityMismatch).
		Detail("Global variable '%s', imported into module '%s' from module '%s', is %s but was requested as %s.",
			name, importer, exporter, mutabilityWord(exportedMutable), mutabilityWord(requestedMutable)).
		Build()
}

func mutabilityWord(mutable bool) string {
	if mutable {
		return "mutable"
	}
	return "immutable"
}

func errTableSizeOverflow(exporter string, exporterMax, requestedInit, requestedMax int) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindSizeOverflow).
		Detail("The imported table from module '%s' has a maximum size of %d, which cannot accommodate the requested initial size %d and maximum size %d.",
			exporter, exporterMax, requestedInit, requestedMax).
		Build()
}

func errMemorySizeOverflow(exporter string, exporterMax, requestedInit int) *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindSizeOverflow).
		Detail("The imported memory from module '%s' has a maximum size of %d pages, which cannot accommodate the requested initial size %d pages.",
			exporter, exporterMax, requestedInit).
		Build()
}

func errMissingMemoryForData(module string, dataID int) *LinkerError {
	return lerrors.New(lerrors.PhaseLink, lerrors.KindMissingMemoryForData).
		Detail("Module '%s' declares data section %d but has no memory to write it into.", module, dataID).
		Build()
}

func errAddressValidation(module string, dataID int, cause error) *LinkerError {
	return lerrors.New(lerrors.PhaseLink, lerrors.KindAddressValidation).
		Detail("Module '%s' data section %d failed address validation: %s.", module, dataID, cause).
		Cause(cause).
		Build()
}

func errDeferredTableNotImplemented() *LinkerError {
	return lerrors.New(lerrors.PhaseImport, lerrors.KindDeferredNotImplemented).
		Detail("Postponed table resolution not implemented.").
		Build()
}

func errCycle(cause error) *LinkerError {
	return lerrors.New(lerrors.PhaseLink, lerrors.KindCycle).
		Detail("%s", cause).
		Cause(cause).
		Build()
}
