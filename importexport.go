// Package importexport builds CSV import upload fields and renders the forms
// that carry them. Most callers only need GenerateHTML or
// GenerateFromConfig; the pkg/ packages expose each step.
package importexport

import (
	"context"
	"io/fs"

	"github.com/goliatone/go-importexport/pkg/config"
	"github.com/goliatone/go-importexport/pkg/forms"
	pkgopenapi "github.com/goliatone/go-importexport/pkg/openapi"
	"github.com/goliatone/go-importexport/pkg/orchestrator"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/renderers/vanilla"
	"github.com/goliatone/go-importexport/pkg/upload"
)

// UploadField is the CSV import field configurator.
type UploadField = forms.UploadField

// LinkOverride replaces the link of one field during generation.
type LinkOverride = orchestrator.LinkOverride

// RenderOptions carries per-request renderer input such as field errors.
type RenderOptions = render.RenderOptions

// NewUploadField creates a CSV import field bound to form. form may be nil.
func NewUploadField(form *upload.Form, name, title string, items ...upload.Item) (*UploadField, error) {
	return forms.NewUploadField(name,
		forms.WithForm(form),
		forms.WithTitle(title),
		forms.WithItems(items...),
	)
}

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// GenerateFromConfig loads a form definition file and renders it.
func GenerateFromConfig(ctx context.Context, path, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	doc, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Config:   &doc,
		Renderer: rendererName,
	})
}

// GenerateHTML loads the OpenAPI source and renders the CSV import fields of
// operationID.
func GenerateHTML(ctx context.Context, source pkgopenapi.Source, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Source:      source,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// GenerateHTMLFromDocument renders a pre-loaded OpenAPI document.
func GenerateHTMLFromDocument(ctx context.Context, doc pkgopenapi.Document, operationID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Document:    &doc,
		OperationID: operationID,
		Renderer:    rendererName,
	})
}

// WithLinkOverrides forwards link overrides to the orchestrator.
func WithLinkOverrides(overrides ...LinkOverride) orchestrator.Option {
	return orchestrator.WithLinkOverrides(overrides...)
}

// EmbeddedTemplates exposes the vanilla renderer templates so callers can
// extend them.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}
