// Package forms holds the import-specific form fields. UploadField wraps a
// generic upload field and pins it to a single CSV file stored under the
// csvImports folder, while letting callers redirect the link the widget's
// front-end script talks to.
package forms
