package render

// RenderOptions carry per-request data renderers use without mutating the
// form model.
type RenderOptions struct {
	// Errors surfaces server-side validation feedback keyed by field name,
	// for example a rejected file extension.
	Errors map[string][]string
	// ThemeName and ThemeVariant select a theme for renderers configured with
	// a theme selector. Empty values use the renderer defaults.
	ThemeName    string
	ThemeVariant string
}
