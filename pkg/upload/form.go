package upload

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-importexport/pkg/model"
)

// Form owns a set of upload fields. Field names are unique within a form.
type Form struct {
	name   string
	action string
	fields []*Field
	index  map[string]*Field
}

// NewForm creates a form. action is the URL the form submits to and the base
// of every field link.
func NewForm(name, action string) (*Form, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrFormNameRequired
	}
	return &Form{
		name:   name,
		action: strings.TrimSpace(action),
		index:  make(map[string]*Field),
	}, nil
}

func (f *Form) Name() string       { return f.name }
func (f *Form) FormAction() string { return f.action }

// Add attaches field to the form.
func (f *Form) Add(field *Field) error {
	if field == nil {
		return ErrNameRequired
	}
	if field.form != nil {
		return fmt.Errorf("%w: %q in form %q", ErrFieldAttached, field.name, field.form.name)
	}
	if _, exists := f.index[field.name]; exists {
		return fmt.Errorf("%w: %q in form %q", ErrDuplicateField, field.name, f.name)
	}
	field.form = f
	f.fields = append(f.fields, field)
	f.index[field.name] = field
	return nil
}

// Field looks up a field by name.
func (f *Form) Field(name string) (*Field, bool) {
	field, ok := f.index[name]
	return field, ok
}

// Fields returns the fields in insertion order.
func (f *Form) Fields() []*Field {
	return append([]*Field(nil), f.fields...)
}

// Model projects the form and its fields into a FormModel.
func (f *Form) Model() model.FormModel {
	form := model.FormModel{
		OperationID: f.name,
		Endpoint:    f.action,
		Method:      "POST",
		Fields:      make([]model.Field, 0, len(f.fields)),
		Metadata: map[string]string{
			"form.enctype": "multipart/form-data",
		},
	}
	for _, field := range f.fields {
		form.Fields = append(form.Fields, field.Model())
	}
	return form
}
