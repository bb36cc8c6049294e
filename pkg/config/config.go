// Package config reads CSV import form definitions from YAML or JSON files.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-importexport/pkg/upload"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// Document is the root of a form definition file.
type Document struct {
	Form   FormConfig    `json:"form" yaml:"form"`
	Fields []FieldConfig `json:"fields" yaml:"fields"`

	// Source is the file the document was read from.
	Source string `json:"-" yaml:"-"`
}

type FormConfig struct {
	Name   string `json:"name" yaml:"name"`
	Action string `json:"action,omitempty" yaml:"action,omitempty"`
}

// FieldConfig describes one CSV import field. Title, Link and Items are
// optional.
type FieldConfig struct {
	Name        string        `json:"name" yaml:"name"`
	Title       string        `json:"title,omitempty" yaml:"title,omitempty"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Link        string        `json:"link,omitempty" yaml:"link,omitempty"`
	Items       []upload.Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// Load reads and validates the document at path.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes JSON or YAML data and validates the result. source only
// labels errors.
func Parse(data []byte, source string) (Document, error) {
	if strings.TrimSpace(string(data)) == "" {
		return Document{}, fmt.Errorf("config: file %s is empty", source)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		doc = Document{}
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("config: parse %s: invalid JSON or YAML: %w", source, err)
		}
	}
	doc.Source = source
	doc.normalise()

	if err := doc.Validate(); err != nil {
		return Document{}, fmt.Errorf("config: validate %s: %w", source, err)
	}
	return doc, nil
}

// Validate checks the form name and that field names are present, well formed
// and unique.
func (d Document) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Form),
		validation.Field(&d.Fields,
			validation.Required.Error("at least one field is required"),
			validation.By(uniqueFieldNames),
		),
	)
}

func (f FormConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 128)),
	)
}

func (f FieldConfig) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name,
			validation.Required,
			validation.Match(fieldNamePattern).Error("must start with a letter and contain only letters, digits or underscores"),
		),
		validation.Field(&f.Items, validation.Each(validation.By(itemHasFilename))),
	)
}

func uniqueFieldNames(value any) error {
	fields, _ := value.([]FieldConfig)
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.Name == "" {
			continue
		}
		if _, ok := seen[field.Name]; ok {
			return fmt.Errorf("duplicate field name %q", field.Name)
		}
		seen[field.Name] = struct{}{}
	}
	return nil
}

func itemHasFilename(value any) error {
	item, _ := value.(upload.Item)
	if strings.TrimSpace(item.Filename) == "" {
		return errors.New("filename is required")
	}
	return nil
}

func (d *Document) normalise() {
	d.Form.Name = strings.TrimSpace(d.Form.Name)
	d.Form.Action = strings.TrimSpace(d.Form.Action)
	for i := range d.Fields {
		field := &d.Fields[i]
		field.Name = strings.TrimSpace(field.Name)
		field.Title = strings.TrimSpace(field.Title)
		field.Link = strings.TrimSpace(field.Link)
	}
}
