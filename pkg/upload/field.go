package upload

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/goliatone/go-importexport/pkg/model"
)

// DefaultFolderName is the folder uploads land in when none is configured.
const DefaultFolderName = "Uploads"

// Linker resolves the URL the front-end script uses for a field action.
type Linker interface {
	Link(action string) string
}

// Field is the generic upload field. The zero value is not usable; construct
// fields with NewField.
type Field struct {
	name        string
	title       string
	description string
	items       []Item
	form        *Form

	maxFiles   int
	extensions []string
	folderName string
	classes    []string
	readonly   bool
	disabled   bool
	required   bool

	linker Linker
}

// NewField creates an upload field. An empty title falls back to a label
// derived from the name.
func NewField(name, title string, items []Item) (*Field, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultLabeler(name)
	}
	return &Field{
		name:       name,
		title:      title,
		items:      cloneItems(items),
		folderName: DefaultFolderName,
	}, nil
}

func (f *Field) Name() string        { return f.name }
func (f *Field) Title() string       { return f.title }
func (f *Field) Description() string { return f.description }
func (f *Field) Form() *Form         { return f.form }

// Items returns a copy of the attached file references.
func (f *Field) Items() []Item {
	return cloneItems(f.items)
}

// ID returns the DOM id of the control, namespaced by the owning form.
func (f *Field) ID() string {
	if f.form == nil {
		return f.name
	}
	return f.form.Name() + "_" + f.name
}

// HolderID returns the DOM id of the element wrapping the control.
func (f *Field) HolderID() string {
	return f.ID() + "_Holder"
}

// SetAllowedMaxFileNumber limits how many files can be attached. Zero or a
// negative value removes the limit.
func (f *Field) SetAllowedMaxFileNumber(n int) {
	if n < 0 {
		n = 0
	}
	f.maxFiles = n
}

// AllowedMaxFileNumber returns the file limit, zero meaning unlimited.
func (f *Field) AllowedMaxFileNumber() int {
	return f.maxFiles
}

// SetAllowedExtensions replaces the extension allow-list. Extensions are
// lower-cased, stripped of a leading dot and de-duplicated. An empty list
// accepts any extension.
func (f *Field) SetAllowedExtensions(exts []string) {
	normalized := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = normalizeExtension(ext)
		if ext == "" || slices.Contains(normalized, ext) {
			continue
		}
		normalized = append(normalized, ext)
	}
	if len(normalized) == 0 {
		normalized = nil
	}
	f.extensions = normalized
}

// AllowedExtensions returns a copy of the extension allow-list.
func (f *Field) AllowedExtensions() []string {
	return slices.Clone(f.extensions)
}

// SetFolderName sets the logical folder uploads are stored under.
func (f *Field) SetFolderName(name string) {
	f.folderName = strings.Trim(strings.TrimSpace(name), "/")
}

func (f *Field) FolderName() string { return f.folderName }

// AddExtraClass appends one or more space separated CSS classes. Classes that
// are already present are ignored.
func (f *Field) AddExtraClass(class string) {
	for _, token := range strings.Fields(class) {
		if slices.Contains(f.classes, token) {
			continue
		}
		f.classes = append(f.classes, token)
	}
}

// ExtraClass returns the extra classes as a single space separated string.
func (f *Field) ExtraClass() string {
	return strings.Join(f.classes, " ")
}

// HasExtraClass reports whether class was added to the field.
func (f *Field) HasExtraClass(class string) bool {
	return slices.Contains(f.classes, strings.TrimSpace(class))
}

func (f *Field) SetDescription(description string) { f.description = strings.TrimSpace(description) }
func (f *Field) SetReadonly(readonly bool)         { f.readonly = readonly }
func (f *Field) SetDisabled(disabled bool)         { f.disabled = disabled }
func (f *Field) SetRequired(required bool)         { f.required = required }
func (f *Field) Required() bool                    { return f.required }

// SetLinker installs the Linker used for links embedded in schema data and
// model metadata. Passing nil restores the field's own Link.
func (f *Field) SetLinker(l Linker) {
	f.linker = l
}

// Link returns the default URL for the supplied field action, built from the
// owning form's action as `<form action>/field/<name>/<action>`.
func (f *Field) Link(action string) string {
	base := ""
	if f.form != nil {
		base = f.form.FormAction()
	}
	return joinLink(base, "field", f.name, action)
}

func (f *Field) resolveLink(action string) string {
	if f.linker != nil {
		return f.linker.Link(action)
	}
	return f.Link(action)
}

// ValidateUpload checks a candidate filename against the extension allow-list
// and the remaining file capacity.
func (f *Field) ValidateUpload(filename string) error {
	if len(f.extensions) > 0 {
		ext := extensionOf(filename)
		if !slices.Contains(f.extensions, ext) {
			return fmt.Errorf("%w: %q (allowed: %s)", ErrExtensionNotAllowed, filename, strings.Join(f.extensions, ", "))
		}
	}
	if f.maxFiles > 0 && len(f.items) >= f.maxFiles {
		return fmt.Errorf("%w: limit is %d", ErrTooManyFiles, f.maxFiles)
	}
	return nil
}

// Attach validates and appends a file reference.
func (f *Field) Attach(item Item) error {
	if err := f.ValidateUpload(item.Filename); err != nil {
		return err
	}
	f.items = append(f.items, item)
	return nil
}

// Detach removes the item with the supplied id, reporting whether one was
// found.
func (f *Field) Detach(id string) bool {
	for idx, item := range f.items {
		if item.ID == id {
			f.items = slices.Delete(f.items, idx, idx+1)
			return true
		}
	}
	return false
}

// Model projects the field into the renderer-facing form model.
func (f *Field) Model() model.Field {
	field := model.Field{
		Name:        f.name,
		Type:        model.FieldTypeFile,
		Format:      "binary",
		Required:    f.required,
		Label:       f.title,
		Description: f.description,
		Readonly:    f.readonly,
		Disabled:    f.disabled,
		Metadata: map[string]string{
			model.MetadataUploadFolder:   f.folderName,
			model.MetadataUploadLink:     f.resolveLink(""),
			model.MetadataUploadEndpoint: f.resolveLink("upload"),
		},
	}
	if f.maxFiles > 0 {
		field.Metadata[model.MetadataUploadMaxFiles] = strconv.Itoa(f.maxFiles)
	}
	if len(f.extensions) > 0 {
		field.Metadata[model.MetadataUploadExtensions] = strings.Join(f.extensions, ",")
	}
	if len(f.items) > 0 {
		if payload, err := json.Marshal(f.items); err == nil {
			field.Metadata[model.MetadataUploadItems] = string(payload)
		}
	}
	if payload, err := json.Marshal(f.SchemaDataDefaults()); err == nil {
		field.Metadata[model.MetadataUploadSchema] = string(payload)
	}
	if classes := f.ExtraClass(); classes != "" {
		field.UIHints = map[string]string{"cssClass": classes}
	}
	return field
}

func joinLink(base string, segments ...string) string {
	var b strings.Builder
	rooted := strings.HasPrefix(base, "/")
	b.WriteString(strings.TrimRight(base, "/"))
	for _, segment := range segments {
		segment = strings.Trim(segment, "/")
		if segment == "" {
			continue
		}
		if b.Len() > 0 || rooted {
			b.WriteByte('/')
		}
		b.WriteString(segment)
	}
	return b.String()
}
