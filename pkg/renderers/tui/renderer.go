// Package tui collects CSV import files on the terminal. Render prompts for a
// local path per upload field and serializes the answers instead of emitting
// markup.
package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-importexport/pkg/model"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/upload"
)

// Renderer implements render.Renderer for terminal sessions.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	theme        Theme
	checkFile    func(path string) error
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver and JSON output.
func New(options ...Option) *Renderer {
	r := &Renderer{
		driver:       SurveyDriver{},
		outputFormat: OutputFormatJSON,
		checkFile:    regularFile,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r
}

func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every upload field of form. Fields with attached items
// ask before replacing them; an empty answer leaves the field unset.
func (r *Renderer) Render(ctx context.Context, form model.FormModel, opts render.RenderOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}

	values := make(map[string]string, len(form.Fields))
	for _, field := range form.Fields {
		if field.Type != model.FieldTypeFile {
			return nil, fmt.Errorf("%w: %q", ErrUnsupportedField, field.Name)
		}
		for _, message := range opts.Errors[field.Name] {
			if err := r.driver.Info(ctx, r.theme.ErrorPrefix+message); err != nil {
				return nil, err
			}
		}

		value, err := r.promptUpload(ctx, field)
		if err != nil {
			return nil, err
		}
		if value != "" {
			values[field.Name] = value
		}
	}
	return r.serialize(values)
}

func (r *Renderer) promptUpload(ctx context.Context, field model.Field) (string, error) {
	label := field.Label
	if label == "" {
		label = model.DefaultLabeler(field.Name)
	}

	if existing := attachedItems(field); len(existing) > 0 {
		current := existing[0].Filename
		if err := r.driver.Info(ctx, r.theme.InfoPrefix+label+": "+current); err != nil {
			return "", err
		}
		replace, err := r.driver.Confirm(ctx, ConfirmConfig{
			Message: fmt.Sprintf("Replace %s?", current),
		})
		if err != nil {
			return "", err
		}
		if !replace {
			return current, nil
		}
	}

	validate := r.validator(field)
	answer, err := r.driver.Input(ctx, InputConfig{
		Message:   label,
		Help:      field.Description,
		Validator: validate,
	})
	if err != nil {
		return "", err
	}
	// Drivers are not required to honour Validator.
	if err := validate(answer); err != nil {
		return "", fmt.Errorf("tui: field %q: %w", field.Name, err)
	}
	return strings.TrimSpace(answer), nil
}

// validator mirrors upload.Field.ValidateUpload against the field metadata
// and checks the file on disk.
func (r *Renderer) validator(field model.Field) func(string) error {
	var allowed []string
	for _, ext := range strings.Split(field.Metadata[model.MetadataUploadExtensions], ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			allowed = append(allowed, strings.ToLower(ext))
		}
	}

	return func(answer string) error {
		path := strings.TrimSpace(answer)
		if path == "" {
			return nil
		}
		if len(allowed) > 0 {
			ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
			ok := false
			for _, candidate := range allowed {
				if candidate == ext {
					ok = true
					break
				}
			}
			if !ok {
				return fmt.Errorf("%w: %q (allowed: %s)", upload.ErrExtensionNotAllowed, ext, strings.Join(allowed, ", "))
			}
		}
		return r.checkFile(path)
	}
}

func attachedItems(field model.Field) []upload.Item {
	raw := field.Metadata[model.MetadataUploadItems]
	if raw == "" {
		return nil
	}
	var items []upload.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	return items
}

func (r *Renderer) serialize(values map[string]string) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		form := url.Values{}
		for key, value := range values {
			form.Set(key, value)
		}
		return []byte(form.Encode()), nil
	case OutputFormatPrettyText:
		keys := make([]string, 0, len(values))
		for key := range values {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, key := range keys {
			fmt.Fprintf(&b, "%s: %s\n", key, values[key])
		}
		return []byte(b.String()), nil
	default:
		payload, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return payload, nil
	}
}
