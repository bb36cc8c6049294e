package forms

import (
	"strings"

	"github.com/goliatone/go-importexport/pkg/upload"
)

// Fixed configuration applied to every CSV import field.
const (
	MaxFiles     = 1
	CSVExtension = "csv"
	FolderName   = "csvImports"
	ExtraClass   = "import-upload-csv-field"
)

// Uploader is the capability UploadField needs from the underlying upload
// widget. *upload.Field satisfies it.
type Uploader interface {
	SetAllowedMaxFileNumber(n int)
	SetAllowedExtensions(exts []string)
	SetFolderName(name string)
	AddExtraClass(class string)
	SetLinker(l upload.Linker)
	Link(action string) string
	SchemaDataDefaults() upload.SchemaData
}

var _ Uploader = (*upload.Field)(nil)

// UploaderFactory builds the base widget for a field.
type UploaderFactory func(name, title string, items []upload.Item) (Uploader, error)

// Option customises UploadField construction.
type Option func(*config)

type config struct {
	title   string
	items   []upload.Item
	form    *upload.Form
	factory UploaderFactory
}

// WithTitle sets the display title.
func WithTitle(title string) Option {
	return func(cfg *config) {
		cfg.title = title
	}
}

// WithItems pre-populates previously attached files.
func WithItems(items ...upload.Item) Option {
	return func(cfg *config) {
		cfg.items = append(cfg.items, items...)
	}
}

// WithForm attaches the base field to an owning form. Duplicate names are
// reported by the form.
func WithForm(form *upload.Form) Option {
	return func(cfg *config) {
		cfg.form = form
	}
}

// WithUploaderFactory replaces the base widget constructor. When set, WithForm
// is ignored; the factory is responsible for any form binding.
func WithUploaderFactory(factory UploaderFactory) Option {
	return func(cfg *config) {
		cfg.factory = factory
	}
}

// UploadField is an upload field restricted to one CSV file.
type UploadField struct {
	name string
	base Uploader
	link string
}

// NewUploadField builds the base widget and applies the CSV import
// configuration. Errors from the base widget are returned unchanged.
func NewUploadField(name string, opts ...Option) (*UploadField, error) {
	cfg := config{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	factory := cfg.factory
	if factory == nil {
		factory = defaultFactory(cfg.form)
	}

	base, err := factory(name, cfg.title, cfg.items)
	if err != nil {
		return nil, err
	}

	field := &UploadField{name: strings.TrimSpace(name), base: base}
	base.SetLinker(field)

	base.SetAllowedMaxFileNumber(MaxFiles)
	base.SetAllowedExtensions([]string{CSVExtension})
	base.SetFolderName(FolderName)
	base.AddExtraClass(ExtraClass)

	return field, nil
}

func defaultFactory(form *upload.Form) UploaderFactory {
	return func(name, title string, items []upload.Item) (Uploader, error) {
		field, err := upload.NewField(name, title, items)
		if err != nil {
			return nil, err
		}
		if form != nil {
			if err := form.Add(field); err != nil {
				return nil, err
			}
		}
		return field, nil
	}
}

func (f *UploadField) Name() string { return f.name }

// Uploader exposes the wrapped base widget.
func (f *UploadField) Uploader() Uploader { return f.base }

// SchemaDefaults returns the front-end schema description. It currently
// returns the base widget's schema untouched.
func (f *UploadField) SchemaDefaults() upload.SchemaData {
	return f.base.SchemaDataDefaults()
}

// SetLink overrides the URL returned by Link. An empty string restores the
// base widget's link.
func (f *UploadField) SetLink(link string) *UploadField {
	f.link = link
	return f
}

// Link returns the override when one is set, ignoring action, otherwise the
// base widget's link for action.
func (f *UploadField) Link(action string) string {
	if f.link != "" {
		return f.link
	}
	return f.base.Link(action)
}
