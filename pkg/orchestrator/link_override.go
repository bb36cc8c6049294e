package orchestrator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-importexport/pkg/forms"
)

// LinkOverride replaces the link of one CSV import field. Overrides win over
// links coming from a definition file or an OpenAPI document.
type LinkOverride struct {
	Form  string
	Field string
	URL   string
}

// WithLinkOverrides registers link overrides. Invalid entries surface from
// Generate.
func WithLinkOverrides(overrides ...LinkOverride) Option {
	return func(o *Orchestrator) {
		for _, override := range overrides {
			override.Form = strings.TrimSpace(override.Form)
			override.Field = strings.TrimSpace(override.Field)
			override.URL = strings.TrimSpace(override.URL)

			if err := validateLinkOverride(override); err != nil {
				o.initialiseErr = errors.Join(o.initialiseErr, err)
				continue
			}
			if o.linkOverrides == nil {
				o.linkOverrides = make(map[string]map[string]string)
			}
			if o.linkOverrides[override.Form] == nil {
				o.linkOverrides[override.Form] = make(map[string]string)
			}
			o.linkOverrides[override.Form][override.Field] = override.URL
		}
	}
}

func validateLinkOverride(override LinkOverride) error {
	if override.Form == "" {
		return errors.New("orchestrator: link override missing form name")
	}
	if override.Field == "" {
		return fmt.Errorf("orchestrator: link override for form %q missing field name", override.Form)
	}
	if override.URL == "" {
		return fmt.Errorf("orchestrator: link override %s.%s missing url", override.Form, override.Field)
	}
	return nil
}

func (o *Orchestrator) applyLinkOverrides(formName string, fields []*forms.UploadField) {
	overrides := o.linkOverrides[formName]
	if len(overrides) == 0 {
		return
	}
	for _, field := range fields {
		if url, ok := overrides[field.Name()]; ok {
			field.SetLink(url)
		}
	}
}
