package vanilla

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-importexport/pkg/render"
)

// StylesheetAsset is the theme asset key holding the renderer stylesheet.
const StylesheetAsset = "vanilla.stylesheet"

type themeConfig struct {
	partials   map[string]string
	tokens     map[string]string
	stylesheet string
}

func (r *Renderer) resolveTheme(opts render.RenderOptions) (themeConfig, error) {
	if r.selector == nil {
		return themeConfig{}, nil
	}
	name := firstNonEmpty(opts.ThemeName, r.themeName)
	variant := firstNonEmpty(opts.ThemeVariant, r.themeVariant)

	selection, err := r.selector.Select(name, variant)
	if err != nil {
		return themeConfig{}, fmt.Errorf("vanilla renderer: select theme %q: %w", name, err)
	}
	if selection == nil || selection.Manifest == nil {
		return themeConfig{}, nil
	}

	manifest := selection.Manifest
	cfg := themeConfig{
		partials: mergeStrings(nil, manifest.Templates),
		tokens:   mergeStrings(nil, manifest.Tokens),
	}
	prefix := manifest.Assets.Prefix
	files := mergeStrings(nil, manifest.Assets.Files)

	if v, ok := manifest.Variants[selection.Variant]; ok {
		cfg.partials = mergeStrings(cfg.partials, v.Templates)
		cfg.tokens = mergeStrings(cfg.tokens, v.Tokens)
		files = mergeStrings(files, v.Assets.Files)
		if v.Assets.Prefix != "" {
			prefix = v.Assets.Prefix
		}
	}
	if file := strings.TrimSpace(files[StylesheetAsset]); file != "" {
		cfg.stylesheet = assetURL(prefix, file)
	}
	return cfg, nil
}

// cssVars renders tokens as an inline style declaration, keys sorted.
func (c themeConfig) cssVars() string {
	if len(c.tokens) == 0 {
		return ""
	}
	keys := make([]string, 0, len(c.tokens))
	for key := range c.tokens {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		value := strings.TrimSpace(c.tokens[key])
		if value == "" || strings.ContainsAny(value, `;"<>`) {
			continue
		}
		parts = append(parts, "--"+strings.TrimPrefix(key, "--")+": "+value)
	}
	return strings.Join(parts, "; ")
}

func mergeStrings(dst, src map[string]string) map[string]string {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(map[string]string, len(src))
	}
	for key, value := range src {
		dst[key] = value
	}
	return dst
}

func assetURL(prefix, file string) string {
	if strings.Contains(file, "://") || strings.HasPrefix(file, "/") || prefix == "" {
		return file
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(file, "/")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
