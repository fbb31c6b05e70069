// Package errors provides the classified error primitives used across the merger.
//
// Errors carry a category (config, structure, catalog, filesystem, ...), a
// severity, and structured context. Fatal errors abort a merge run; warnings
// are logged by the caller and the offending item is skipped.
//
// Example usage:
//
//	err := errors.StructureError("package-frame has no index container").
//		WithContext("page", "com/example/package-frame.html").
//		Build()
package errors
