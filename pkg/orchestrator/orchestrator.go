package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-importexport/pkg/config"
	"github.com/goliatone/go-importexport/pkg/forms"
	"github.com/goliatone/go-importexport/pkg/model"
	pkgopenapi "github.com/goliatone/go-importexport/pkg/openapi"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/renderers/vanilla"
	"github.com/goliatone/go-importexport/pkg/upload"
	"github.com/goliatone/go-importexport/pkg/widgets"
)

const defaultRendererName = "vanilla"

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithLoader injects the OpenAPI loader used for Request.Source.
func WithLoader(loader *pkgopenapi.Loader) Option {
	return func(o *Orchestrator) {
		o.loader = loader
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithWidgetRegistry replaces the widget registry decorating every form.
func WithWidgetRegistry(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
	}
}

// WithSchemaTransformer registers a Transformer that runs after link
// overrides and before decorators.
func WithSchemaTransformer(t Transformer) Option {
	return func(o *Orchestrator) {
		o.transformer = t
	}
}

// WithUIDecorators registers decorators that run after the widget registry.
func WithUIDecorators(decorators ...model.Decorator) Option {
	return func(o *Orchestrator) {
		o.decorators = append(o.decorators, decorators...)
	}
}

// WithThemeSelector configures the default vanilla renderer with a go-theme
// selector. It has no effect when WithRegistry is used.
func WithThemeSelector(selector theme.ThemeSelector, defaultTheme, defaultVariant string) Option {
	return func(o *Orchestrator) {
		o.themeSelector = selector
		o.themeName = defaultTheme
		o.themeVariant = defaultVariant
	}
}

// Orchestrator builds CSV import forms and renders them.
type Orchestrator struct {
	loader          *pkgopenapi.Loader
	registry        *render.Registry
	defaultRenderer string
	widgets         *widgets.Registry
	transformer     Transformer
	decorators      []model.Decorator
	linkOverrides   map[string]map[string]string
	themeSelector   theme.ThemeSelector
	themeName       string
	themeVariant    string
	initialiseErr   error
}

// New constructs an Orchestrator. Missing dependencies fall back to the
// built-in loader, the vanilla and json renderers and the default widget
// registry.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		defaultRenderer: defaultRendererName,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs of one Generate call. Config takes precedence
// over the OpenAPI inputs.
type Request struct {
	// Config is a parsed form definition.
	Config *config.Document

	// Source identifies an OpenAPI document to load. Optional when Document
	// is supplied.
	Source pkgopenapi.Source

	// Document bypasses the loader.
	Document *pkgopenapi.Document

	// OperationID selects the OpenAPI operation. It may be empty when the
	// document holds a single import operation.
	OperationID string

	// Renderer names the renderer to use, falling back to the default.
	Renderer string

	RenderOptions render.RenderOptions
}

// Generate builds the form described by req and returns the rendered bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	form, err := o.Build(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	output, err := renderer.Render(ctx, form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	return output, nil
}

// Build runs every step of Generate except rendering.
func (o *Orchestrator) Build(ctx context.Context, req Request) (model.FormModel, error) {
	if ctx == nil {
		return model.FormModel{}, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return model.FormModel{}, err
	}
	if err := o.initialiseErr; err != nil {
		return model.FormModel{}, err
	}

	var (
		form   *upload.Form
		fields []*forms.UploadField
		err    error
	)
	if req.Config != nil {
		form, fields, err = buildFromConfig(*req.Config)
	} else {
		form, fields, err = o.buildFromOpenAPI(ctx, req)
	}
	if err != nil {
		return model.FormModel{}, err
	}

	o.applyLinkOverrides(form.Name(), fields)

	out := form.Model()
	if err := o.applyTransformer(ctx, &out); err != nil {
		return model.FormModel{}, err
	}
	if err := o.applyDecorators(&out); err != nil {
		return model.FormModel{}, err
	}
	return out, nil
}

func buildFromConfig(doc config.Document) (*upload.Form, []*forms.UploadField, error) {
	form, err := upload.NewForm(doc.Form.Name, doc.Form.Action)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: build form: %w", err)
	}

	fields := make([]*forms.UploadField, 0, len(doc.Fields))
	for _, fc := range doc.Fields {
		field, err := forms.NewUploadField(fc.Name,
			forms.WithTitle(fc.Title),
			forms.WithItems(fc.Items...),
			forms.WithForm(form),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("orchestrator: build field %q: %w", fc.Name, err)
		}
		if fc.Description != "" {
			if describer, ok := field.Uploader().(interface{ SetDescription(string) }); ok {
				describer.SetDescription(fc.Description)
			}
		}
		field.SetLink(fc.Link)
		fields = append(fields, field)
	}
	return form, fields, nil
}

func (o *Orchestrator) buildFromOpenAPI(ctx context.Context, req Request) (*upload.Form, []*forms.UploadField, error) {
	doc, err := o.resolveDocument(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	op, err := pkgopenapi.FindOperation(ctx, doc, req.OperationID)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: find operation: %w", err)
	}

	form, err := upload.NewForm(op.ID, op.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("orchestrator: build form: %w", err)
	}

	fields := make([]*forms.UploadField, 0, len(op.Fields))
	for _, discovered := range op.Fields {
		field, err := forms.NewUploadField(discovered.Name,
			forms.WithTitle(discovered.Title),
			forms.WithForm(form),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("orchestrator: build field %q: %w", discovered.Name, err)
		}
		if describer, ok := field.Uploader().(interface{ SetDescription(string) }); ok {
			describer.SetDescription(discovered.Description)
		}
		if requirer, ok := field.Uploader().(interface{ SetRequired(bool) }); ok {
			requirer.SetRequired(discovered.Required)
		}
		field.SetLink(discovered.Link)
		fields = append(fields, field)
	}
	return form, fields, nil
}

func (o *Orchestrator) resolveDocument(ctx context.Context, req Request) (pkgopenapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return pkgopenapi.Document{}, errors.New("orchestrator: config, source or document is required")
	}
	doc, err := o.loader.Load(ctx, req.Source)
	if err != nil {
		return pkgopenapi.Document{}, fmt.Errorf("orchestrator: load document: %w", err)
	}
	return doc, nil
}

func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}

	target := strings.TrimSpace(name)
	if target == "" {
		target = o.defaultRenderer
	}
	if target != "" {
		renderer, err := o.registry.Get(target)
		if err == nil {
			return renderer, nil
		}
		if name != "" {
			return nil, fmt.Errorf("orchestrator: renderer %q: %w", name, err)
		}
	}

	renderer, err := o.registry.Resolve("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyTransformer(ctx context.Context, form *model.FormModel) error {
	if o.transformer == nil {
		return nil
	}
	if err := o.transformer.Transform(ctx, form); err != nil {
		return fmt.Errorf("orchestrator: transform form: %w", err)
	}
	return nil
}

func (o *Orchestrator) applyDecorators(form *model.FormModel) error {
	decorators := append([]model.Decorator{o.widgets}, o.decorators...)
	for _, decorator := range decorators {
		if decorator == nil {
			continue
		}
		if err := decorator.Decorate(form); err != nil {
			return fmt.Errorf("orchestrator: decorate form: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = pkgopenapi.NewLoader()
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()

		var opts []vanilla.Option
		if o.themeSelector != nil {
			opts = append(opts, vanilla.WithThemeSelector(o.themeSelector, o.themeName, o.themeVariant))
		}
		renderer, err := vanilla.New(opts...)
		if err != nil {
			o.initialiseErr = errors.Join(o.initialiseErr, fmt.Errorf("orchestrator: default renderer: %w", err))
		} else {
			o.registry.MustRegister(renderer)
		}
		o.registry.MustRegister(render.JSONRenderer{})
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
