package render

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-importexport/pkg/model"
	"github.com/goliatone/go-importexport/pkg/upload"
)

// JSONRenderer emits the front-end schema of every upload field, the payload
// the upload widget script boots from.
type JSONRenderer struct{}

var _ Renderer = JSONRenderer{}

// JSONDocument is the payload written by JSONRenderer.
type JSONDocument struct {
	Form   JSONForm            `json:"form"`
	Fields []upload.SchemaData `json:"fields"`
}

// JSONForm carries the form level attributes of a JSONDocument.
type JSONForm struct {
	ID       string            `json:"id"`
	Action   string            `json:"action"`
	Method   string            `json:"method"`
	Summary  string            `json:"summary,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (JSONRenderer) Name() string        { return "json" }
func (JSONRenderer) ContentType() string { return "application/json" }

// Render fails for fields that carry no upload schema.
func (JSONRenderer) Render(ctx context.Context, form model.FormModel, _ RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := JSONDocument{
		Form: JSONForm{
			ID:       form.OperationID,
			Action:   form.Endpoint,
			Method:   form.Method,
			Summary:  form.Summary,
			Metadata: form.Metadata,
		},
		Fields: make([]upload.SchemaData, 0, len(form.Fields)),
	}
	for _, field := range form.Fields {
		schema, err := fieldSchema(field)
		if err != nil {
			return nil, err
		}
		doc.Fields = append(doc.Fields, schema)
	}

	payload, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("render: encode schema document: %w", err)
	}
	return payload, nil
}

// fieldSchema decodes the schema captured when the field was built. Label and
// description come from the model so transformer patches are reflected.
func fieldSchema(field model.Field) (upload.SchemaData, error) {
	raw := strings.TrimSpace(field.Metadata[model.MetadataUploadSchema])
	if raw == "" {
		return upload.SchemaData{}, fmt.Errorf("render: field %q has no upload schema", field.Name)
	}

	var schema upload.SchemaData
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return upload.SchemaData{}, fmt.Errorf("render: decode schema of field %q: %w", field.Name, err)
	}
	if field.Label != "" {
		schema.Title = field.Label
	}
	if field.Description != "" {
		schema.Description = field.Description
	}
	return schema, nil
}
