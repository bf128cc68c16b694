// Package errors provides the classified error primitives used across sitekit.
//
// A ClassifiedError carries a category (config, kit, template, build, ...), a
// severity and optional structured context. Errors are created with the fluent
// builder:
//
//	err := errors.NewError(errors.CategoryKit, "kit checkout failed").
//		WithContext("kit", name).
//		WithCause(cloneErr).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
