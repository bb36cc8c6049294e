package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/goliatone/go-importexport/pkg/config"
	"github.com/goliatone/go-importexport/pkg/model"
	pkgopenapi "github.com/goliatone/go-importexport/pkg/openapi"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/testsupport"
	"github.com/goliatone/go-importexport/pkg/upload"
	"github.com/goliatone/go-importexport/pkg/widgets"
)

func importConfig() *config.Document {
	return &config.Document{
		Form: config.FormConfig{Name: "ImportForm", Action: "/admin/import/ImportForm"},
		Fields: []config.FieldConfig{
			{Name: "CsvFile", Title: "CSV file", Description: "One file"},
			{Name: "Archive", Link: "/custom/archive"},
		},
	}
}

func TestBuildFromConfig(t *testing.T) {
	t.Parallel()

	form, err := New().Build(context.Background(), Request{Config: importConfig()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if form.OperationID != "ImportForm" || form.Endpoint != "/admin/import/ImportForm" {
		t.Fatalf("unexpected form header %+v", form)
	}
	if len(form.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(form.Fields))
	}

	csv := form.Fields[0]
	got := map[string]string{
		"label":      csv.Label,
		"desc":       csv.Description,
		"maxFiles":   csv.Metadata[model.MetadataUploadMaxFiles],
		"extensions": csv.Metadata[model.MetadataUploadExtensions],
		"folder":     csv.Metadata[model.MetadataUploadFolder],
		"link":       csv.Metadata[model.MetadataUploadLink],
		"class":      csv.UIHints["cssClass"],
		"widget":     csv.UIHints["widget"],
	}
	want := map[string]string{
		"label":      "CSV file",
		"desc":       "One file",
		"maxFiles":   "1",
		"extensions": "csv",
		"folder":     "csvImports",
		"link":       "/admin/import/ImportForm/field/CsvFile",
		"class":      "import-upload-csv-field",
		"widget":     widgets.WidgetCSVImport,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("field mismatch (-want +got):\n%s", diff)
	}

	archive := form.Fields[1]
	if archive.Metadata[model.MetadataUploadLink] != "/custom/archive" {
		t.Fatalf("expected configured link, got %q", archive.Metadata[model.MetadataUploadLink])
	}
	if archive.Metadata[model.MetadataUploadEndpoint] != "/custom/archive" {
		t.Fatalf("expected override to reach the upload endpoint, got %q", archive.Metadata[model.MetadataUploadEndpoint])
	}

	var schema upload.SchemaData
	if err := json.Unmarshal([]byte(archive.Metadata[model.MetadataUploadSchema]), &schema); err != nil {
		t.Fatalf("decode schema: %v", err)
	}
	if schema.Data.CreateFileEndpoint.URL != "/custom/archive" {
		t.Fatalf("expected override in schema data, got %q", schema.Data.CreateFileEndpoint.URL)
	}
}

func TestBuildFromConfigGolden(t *testing.T) {
	t.Parallel()

	const golden = "testdata/import_form.golden.json"

	got, err := New().Build(context.Background(), Request{Config: importConfig()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	testsupport.WriteFormModel(t, golden, got)

	want := testsupport.MustLoadFormModel(t, golden)
	ignoreSchema := cmpopts.IgnoreMapEntries(func(key, _ string) bool {
		return key == model.MetadataUploadSchema
	})
	if diff := cmp.Diff(want, got, ignoreSchema); diff != "" {
		t.Fatalf("form model mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildFromConfigPropagatesFieldErrors(t *testing.T) {
	t.Parallel()

	doc := importConfig()
	doc.Fields = append(doc.Fields, config.FieldConfig{Name: "CsvFile"})

	if _, err := New().Build(context.Background(), Request{Config: doc}); !errors.Is(err, upload.ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
}

func TestLinkOverridesWin(t *testing.T) {
	t.Parallel()

	orch := New(WithLinkOverrides(
		LinkOverride{Form: "ImportForm", Field: "Archive", URL: "/override/archive"},
		LinkOverride{Form: "OtherForm", Field: "CsvFile", URL: "/ignored"},
	))

	form, err := orch.Build(context.Background(), Request{Config: importConfig()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if got := form.Fields[0].Metadata[model.MetadataUploadLink]; got != "/admin/import/ImportForm/field/CsvFile" {
		t.Fatalf("unexpected CsvFile link %q", got)
	}
	if got := form.Fields[1].Metadata[model.MetadataUploadLink]; got != "/override/archive" {
		t.Fatalf("expected override link, got %q", got)
	}
}

func TestInvalidLinkOverride(t *testing.T) {
	t.Parallel()

	orch := New(WithLinkOverrides(LinkOverride{Form: "ImportForm", Field: "CsvFile"}))
	if _, err := orch.Build(context.Background(), Request{Config: importConfig()}); err == nil || !strings.Contains(err.Error(), "missing url") {
		t.Fatalf("expected missing url error, got %v", err)
	}
}

func TestBuildFromOpenAPI(t *testing.T) {
	t.Parallel()

	orch := New(WithLoader(pkgopenapi.NewLoader()))
	form, err := orch.Build(context.Background(), Request{
		Source:      pkgopenapi.SourceFromFile("testdata/imports.yaml"),
		OperationID: "importMembers",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if form.OperationID != "importMembers" || form.Endpoint != "/admin/import/members" {
		t.Fatalf("unexpected form header %+v", form)
	}
	if len(form.Fields) != 1 || form.Fields[0].Name != "CsvFile" {
		t.Fatalf("unexpected fields %+v", form.Fields)
	}
	field := form.Fields[0]
	if field.Label != "Members file" || field.Description != "One CSV file per import" {
		t.Fatalf("unexpected copy %q / %q", field.Label, field.Description)
	}
	if !field.Required {
		t.Fatalf("expected required flag from the request body schema")
	}
	if field.Metadata[model.MetadataUploadLink] != "/admin/import/members" {
		t.Fatalf("expected operation path as link, got %q", field.Metadata[model.MetadataUploadLink])
	}
}

func TestBuildFromPreloadedDocument(t *testing.T) {
	t.Parallel()

	doc := testsupport.LoadDocument(t, "testdata/imports.yaml")
	form, err := New(WithLinkOverrides(LinkOverride{
		Form:  "put:/admin/import/products",
		Field: "Catalogue",
		URL:   "/override/products",
	})).Build(context.Background(), Request{
		Document:    &doc,
		OperationID: "put:/admin/import/products",
	})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	field, ok := form.Field("Catalogue")
	if !ok {
		t.Fatalf("expected Catalogue field, got %+v", form.Fields)
	}
	if field.Label != "Product catalogue" || field.Metadata[model.MetadataUploadLink] != "/override/products" {
		t.Fatalf("unexpected field %+v", field)
	}
	if field.Required {
		t.Fatalf("Catalogue is not listed as required")
	}
}

func TestBuildFromOpenAPIUnknownOperation(t *testing.T) {
	t.Parallel()

	_, err := New().Build(context.Background(), Request{
		Source:      pkgopenapi.SourceFromFile("testdata/imports.yaml"),
		OperationID: "createUser",
	})
	if !errors.Is(err, pkgopenapi.ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound, got %v", err)
	}
}

func TestBuildRequiresInput(t *testing.T) {
	t.Parallel()

	if _, err := New().Build(context.Background(), Request{}); err == nil {
		t.Fatalf("expected error without config or document")
	}
}

func TestGenerateRenderers(t *testing.T) {
	t.Parallel()

	orch := New()

	html, err := orch.Generate(context.Background(), Request{Config: importConfig()})
	if err != nil {
		t.Fatalf("generate html: %v", err)
	}
	if !strings.Contains(string(html), `data-widget="csv-import"`) {
		t.Fatalf("expected vanilla output, got:\n%s", html)
	}

	payload, err := orch.Generate(context.Background(), Request{Config: importConfig(), Renderer: "json"})
	if err != nil {
		t.Fatalf("generate json: %v", err)
	}
	var decoded render.JSONDocument
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("decode json output: %v", err)
	}
	if decoded.Form.ID != "ImportForm" || len(decoded.Fields) != 2 {
		t.Fatalf("unexpected json output %+v", decoded)
	}
	if got := decoded.Fields[1].Data.CreateFileEndpoint.URL; got != "/custom/archive" {
		t.Fatalf("expected configured link in schema, got %q", got)
	}

	if _, err := orch.Generate(context.Background(), Request{Config: importConfig(), Renderer: "pdf"}); err == nil {
		t.Fatalf("expected unknown renderer error")
	}
}

func TestGenerateWithCustomRegistry(t *testing.T) {
	t.Parallel()

	renderer := &captureRenderer{}
	registry := render.NewRegistry()
	registry.MustRegister(renderer)

	orch := New(WithRegistry(registry))
	out, err := orch.Generate(context.Background(), Request{
		Config:        importConfig(),
		RenderOptions: render.RenderOptions{ThemeName: "acme"},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if string(out) != "ImportForm" {
		t.Fatalf("expected fallback renderer output, got %q", out)
	}
	if renderer.options.ThemeName != "acme" {
		t.Fatalf("render options not forwarded")
	}
}

func TestTransformerAndDecoratorsOrder(t *testing.T) {
	t.Parallel()

	var calls []string
	orch := New(
		WithSchemaTransformer(TransformerFunc(func(_ context.Context, form *model.FormModel) error {
			calls = append(calls, "transform")
			if form.Fields[0].UIHints["widget"] != "" {
				t.Errorf("transformer must run before the widget registry")
			}
			return nil
		})),
		WithUIDecorators(model.DecoratorFunc(func(form *model.FormModel) error {
			calls = append(calls, "decorate")
			if form.Fields[0].UIHints["widget"] == "" {
				t.Errorf("custom decorators must run after the widget registry")
			}
			return nil
		})),
	)

	if _, err := orch.Build(context.Background(), Request{Config: importConfig()}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if diff := cmp.Diff([]string{"transform", "decorate"}, calls); diff != "" {
		t.Fatalf("call order mismatch (-want +got):\n%s", diff)
	}

	failing := New(WithUIDecorators(model.DecoratorFunc(func(*model.FormModel) error {
		return errors.New("boom")
	})))
	if _, err := failing.Build(context.Background(), Request{Config: importConfig()}); err == nil || !strings.Contains(err.Error(), "decorate form") {
		t.Fatalf("expected decorator error, got %v", err)
	}
}

func TestPresetTransformer(t *testing.T) {
	t.Parallel()

	raw := []byte(`metadata:
  form.submitLabel: Import
fields:
  CsvFile:
    label: Members CSV
    uiHints:
      cssClass: import-upload-csv-field wide
`)
	transformer, err := NewPresetTransformerFromFS(fstest.MapFS{"preset.yaml": {Data: raw}}, "preset.yaml")
	if err != nil {
		t.Fatalf("load preset: %v", err)
	}

	form, err := New(WithSchemaTransformer(transformer)).Build(context.Background(), Request{Config: importConfig()})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if form.Metadata["form.submitLabel"] != "Import" {
		t.Fatalf("form metadata not applied")
	}
	if form.Fields[0].Label != "Members CSV" || form.Fields[0].UIHints["cssClass"] != "import-upload-csv-field wide" {
		t.Fatalf("field patch not applied: %+v", form.Fields[0])
	}

	missing, err := NewPresetTransformer([]byte(`{"fields": {"Nope": {"label": "x"}}}`))
	if err != nil {
		t.Fatalf("parse preset: %v", err)
	}
	if _, err := New(WithSchemaTransformer(missing)).Build(context.Background(), Request{Config: importConfig()}); err == nil {
		t.Fatalf("expected unknown field error")
	}

	if _, err := NewPresetTransformer([]byte("   ")); err == nil {
		t.Fatalf("expected empty document error")
	}
}

func TestGenerateHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Generate(ctx, Request{Config: importConfig()}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

type captureRenderer struct {
	options render.RenderOptions
}

func (r *captureRenderer) Name() string        { return "capture" }
func (r *captureRenderer) ContentType() string { return "text/plain" }

func (r *captureRenderer) Render(_ context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	r.options = opts
	return []byte(form.OperationID), nil
}
