// Package model defines the typed form model consumed by renderers. Upload
// fields project themselves into Field values whose Metadata carries the
// `upload.*` keys (maxFiles, allowedExtensions, folderName, link) while the
// curated UIHints map surfaces renderer-facing directives such as `cssClass`,
// `helpText` and `widget`. Renderers rely on those keys instead of reaching
// back into the upload package.
package model
