package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-importexport/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetFileUploader = "file-uploader"
	WidgetCSVImport    = "csv-import"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.Field) bool

type rule struct {
	name     string
	priority int
	match    Matcher
	order    int
}

// Registry picks a widget for each field. An explicit widget in the field's
// metadata or UI hints always wins; otherwise the highest priority matcher
// that accepts the field is used, ties going to the earliest registration.
type Registry struct {
	mu    sync.RWMutex
	rules []rule
}

// NewRegistry constructs a registry with the built-in upload matchers.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.Register(WidgetCSVImport, 90, isCSVImport)
	reg.Register(WidgetFileUploader, 50, isUpload)
	return reg
}

// Register adds a matcher. Blank names and nil matchers are ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher) {
	if r == nil || matcher == nil {
		return
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule{
		name:     name,
		priority: priority,
		match:    matcher,
		order:    len(r.rules),
	})
}

// Resolve returns the widget name for field.
func (r *Registry) Resolve(field model.Field) (string, bool) {
	if explicit := explicitWidget(field); explicit != "" {
		return explicit, true
	}
	if r == nil {
		return "", false
	}

	for _, entry := range r.sortedRules() {
		if entry.match(field) {
			return entry.name, true
		}
	}
	return "", false
}

func (r *Registry) sortedRules() []rule {
	r.mu.RLock()
	rules := append([]rule(nil), r.rules...)
	r.mu.RUnlock()

	sort.SliceStable(rules, func(i, j int) bool {
		if rules[i].priority == rules[j].priority {
			return rules[i].order < rules[j].order
		}
		return rules[i].priority > rules[j].priority
	})
	return rules
}

// Decorate implements model.Decorator. Resolved widgets are written to
// UIHints["widget"] unless the field already names one.
func (r *Registry) Decorate(form *model.FormModel) error {
	if r == nil || form == nil {
		return nil
	}
	form.Fields = r.decorateFields(form.Fields)
	return nil
}

func (r *Registry) decorateFields(fields []model.Field) []model.Field {
	if len(fields) == 0 {
		return fields
	}
	decorated := make([]model.Field, len(fields))
	for idx, field := range fields {
		if widget, ok := r.Resolve(field); ok {
			if field.UIHints == nil {
				field.UIHints = make(map[string]string)
			}
			if field.UIHints["widget"] == "" {
				field.UIHints["widget"] = widget
			}
		}
		field.Nested = r.decorateFields(field.Nested)
		decorated[idx] = field
	}
	return decorated
}

func explicitWidget(field model.Field) string {
	if widget := strings.TrimSpace(field.Metadata["widget"]); widget != "" {
		return widget
	}
	return strings.TrimSpace(field.UIHints["widget"])
}

func isUpload(field model.Field) bool {
	return field.Type == model.FieldTypeFile || field.Format == "binary"
}

func isCSVImport(field model.Field) bool {
	if !isUpload(field) {
		return false
	}
	return strings.TrimSpace(field.Metadata[model.MetadataUploadExtensions]) == "csv" &&
		field.Metadata[model.MetadataUploadMaxFiles] == "1"
}
