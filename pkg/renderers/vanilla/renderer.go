package vanilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-importexport/pkg/model"
	"github.com/goliatone/go-importexport/pkg/render"
	rendertemplate "github.com/goliatone/go-importexport/pkg/render/template"
	"github.com/goliatone/go-importexport/pkg/render/template/pongo"
	"github.com/goliatone/go-importexport/pkg/upload"
	"github.com/goliatone/go-importexport/pkg/widgets"
)

// Theme partial keys, overridable through a theme manifest's Templates map.
const (
	PartialFileUploader = "forms.file-uploader"
	PartialCSVImport    = "forms.csv-import"
)

const (
	formTemplate         = "templates/form.tmpl"
	fileUploaderTemplate = "templates/components/file_uploader.tmpl"
)

var widgetPartials = map[string]string{
	widgets.WidgetFileUploader: PartialFileUploader,
	widgets.WidgetCSVImport:    PartialCSVImport,
}

type Option func(*config)

type config struct {
	templateFS   fs.FS
	templates    rendertemplate.TemplateRenderer
	widgets      *widgets.Registry
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	partials     map[string]string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templates = renderer
		}
	}
}

// WithWidgetRegistry sets the registry used for fields that reach the
// renderer without a widget hint.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(cfg *config) {
		cfg.widgets = registry
	}
}

// WithThemeSelector resolves partials, tokens and the stylesheet from a
// go-theme selector. RenderOptions.ThemeName/ThemeVariant take precedence over
// the defaults given here.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) Option {
	return func(cfg *config) {
		cfg.selector = selector
		cfg.themeName = defaultTheme
		cfg.themeVariant = defaultVariant
	}
}

// WithPartial overrides the template used for a partial key.
func WithPartial(key, templatePath string) Option {
	return func(cfg *config) {
		key = strings.TrimSpace(key)
		templatePath = strings.TrimSpace(templatePath)
		if key == "" || templatePath == "" {
			return
		}
		cfg.partials[key] = templatePath
	}
}

// Renderer emits static HTML holders for upload fields. The interactive
// upload behaviour is left to the front-end script reading data-schema.
type Renderer struct {
	templates    rendertemplate.TemplateRenderer
	widgets      *widgets.Registry
	selector     theme.ThemeSelector
	themeName    string
	themeVariant string
	partials     map[string]string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
		partials: map[string]string{
			PartialFileUploader: fileUploaderTemplate,
			PartialCSVImport:    fileUploaderTemplate,
		},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	templates := cfg.templates
	if templates == nil {
		if cfg.templateFS == nil {
			cfg.templateFS = TemplatesFS()
		}
		engine, err := pongo.New(
			pongo.WithFS(cfg.templateFS),
			pongo.WithExtension(".tmpl"),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		templates = engine
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	return &Renderer{
		templates:    templates,
		widgets:      cfg.widgets,
		selector:     cfg.selector,
		themeName:    cfg.themeName,
		themeVariant: cfg.themeVariant,
		partials:     cfg.partials,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render writes the form holder and one upload holder per field.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	themeCfg, err := r.resolveTheme(opts)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	for _, field := range form.Fields {
		widget := strings.TrimSpace(field.UIHints["widget"])
		if widget == "" {
			widget, _ = r.widgets.Resolve(field)
		}
		key, ok := widgetPartials[widget]
		if !ok {
			return nil, fmt.Errorf("vanilla renderer: field %q: unsupported widget %q", field.Name, widget)
		}
		templatePath := r.partials[key]
		if override := strings.TrimSpace(themeCfg.partials[key]); override != "" {
			templatePath = override
		}

		html, err := r.templates.RenderTemplate(templatePath, map[string]any{
			"field": fieldContext(form, field, widget, opts.Errors[field.Name]),
		})
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: render field %q: %w", field.Name, err)
		}
		body.WriteString(html)
	}

	enctype := form.Metadata["form.enctype"]
	if enctype == "" {
		enctype = "multipart/form-data"
	}
	result, err := r.templates.RenderTemplate(formTemplate, map[string]any{
		"form": map[string]any{
			"id":         form.OperationID,
			"action":     form.Endpoint,
			"method":     strings.ToLower(firstNonEmpty(form.Method, "post")),
			"enctype":    enctype,
			"style":      themeCfg.cssVars(),
			"stylesheet": themeCfg.stylesheet,
		},
		"body": body.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func fieldContext(form model.FormModel, field model.Field, widget string, messages []string) map[string]any {
	meta := field.Metadata
	id := field.Name
	if form.OperationID != "" {
		id = form.OperationID + "_" + field.Name
	}

	maxFiles := meta[model.MetadataUploadMaxFiles]
	multiple := maxFiles != "1"
	inputName := field.Name
	if multiple {
		inputName += "[]"
	}

	label := sanitizeText(field.Label)
	if label == "" {
		label = sanitizeText(model.DefaultLabeler(field.Name))
	}

	items := decodeItems(meta[model.MetadataUploadItems])

	errs := make([]string, 0, len(messages))
	for _, message := range messages {
		if cleaned := sanitizeText(message); cleaned != "" {
			errs = append(errs, cleaned)
		}
	}

	return map[string]any{
		"id":          id,
		"holder_id":   id + "_Holder",
		"name":        field.Name,
		"input_name":  inputName,
		"label":       label,
		"description": sanitizeText(field.Description),
		"classes":     sanitizeClassList(field.UIHints["cssClass"]),
		"widget":      widget,
		"accept":      acceptList(meta[model.MetadataUploadExtensions]),
		"multiple":    multiple,
		"max_files":   maxFiles,
		"required":    field.Required && len(items) == 0,
		"disabled":    field.Disabled,
		"readonly":    field.Readonly,
		"link":        meta[model.MetadataUploadLink],
		"endpoint":    meta[model.MetadataUploadEndpoint],
		"folder":      meta[model.MetadataUploadFolder],
		"schema":      meta[model.MetadataUploadSchema],
		"items":       items,
		"errors":      errs,
	}
}

func acceptList(extensions string) string {
	var dotted []string
	for _, ext := range strings.Split(extensions, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			dotted = append(dotted, "."+ext)
		}
	}
	return strings.Join(dotted, ",")
}

func decodeItems(raw string) []upload.Item {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var items []upload.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}
