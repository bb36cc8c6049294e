package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-importexport/pkg/model"
)

// Transformer mutates a FormModel before decorators run.
type Transformer interface {
	Transform(ctx context.Context, form *model.FormModel) error
}

// TransformerFunc adapts plain functions to the Transformer interface.
type TransformerFunc func(ctx context.Context, form *model.FormModel) error

// Transform executes the wrapped function when non-nil.
func (fn TransformerFunc) Transform(ctx context.Context, form *model.FormModel) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, form)
}

// PresetTransformer applies declarative patches read from JSON or YAML:
//
//	metadata: {form.enctype: multipart/form-data}
//	fields:
//	  CsvFile:
//	    label: Members CSV
//	    uiHints: {cssClass: wide}
type PresetTransformer struct {
	document presetDocument
}

type presetDocument struct {
	Metadata map[string]string      `json:"metadata" yaml:"metadata"`
	Fields   map[string]presetPatch `json:"fields" yaml:"fields"`
}

type presetPatch struct {
	Label       string            `json:"label" yaml:"label"`
	Description string            `json:"description" yaml:"description"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
	UIHints     map[string]string `json:"uiHints" yaml:"uiHints"`
}

// NewPresetTransformer parses a preset document.
func NewPresetTransformer(data []byte) (*PresetTransformer, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("preset transformer: document is empty")
	}
	var document presetDocument
	if err := json.Unmarshal(data, &document); err != nil {
		document = presetDocument{}
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("preset transformer: parse document: %w", err)
		}
	}
	return &PresetTransformer{document: document}, nil
}

// NewPresetTransformerFromFS loads a preset document from fsys.
func NewPresetTransformerFromFS(fsys fs.FS, path string) (*PresetTransformer, error) {
	if fsys == nil {
		return nil, errors.New("preset transformer: filesystem is nil")
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("preset transformer: path is required")
	}
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("preset transformer: read %s: %w", path, err)
	}
	return NewPresetTransformer(data)
}

// Transform applies the patches. Unknown fields are an error.
func (t *PresetTransformer) Transform(ctx context.Context, form *model.FormModel) error {
	if form == nil {
		return errors.New("preset transformer: form model is nil")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	form.Metadata = mergeStringMap(form.Metadata, t.document.Metadata)
	for path, patch := range t.document.Fields {
		field := findField(form.Fields, path)
		if field == nil {
			return fmt.Errorf("preset transformer: field %q not found", path)
		}
		if patch.Label != "" {
			field.Label = patch.Label
		}
		if patch.Description != "" {
			field.Description = patch.Description
		}
		field.Metadata = mergeStringMap(field.Metadata, patch.Metadata)
		field.UIHints = mergeStringMap(field.UIHints, patch.UIHints)
	}
	return nil
}

// findField resolves dotted paths through nested fields.
func findField(fields []model.Field, path string) *model.Field {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	head, rest, nested := strings.Cut(path, ".")
	for idx := range fields {
		if fields[idx].Name != head {
			continue
		}
		if !nested {
			return &fields[idx]
		}
		return findField(fields[idx].Nested, rest)
	}
	return nil
}

func mergeStringMap(dst, src map[string]string) map[string]string {
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
