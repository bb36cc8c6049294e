package upload

import (
	"path"
	"strings"
)

// Item references a file previously attached to a field.
type Item struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Filename string `json:"filename" yaml:"filename"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Size     int64  `json:"size,omitempty" yaml:"size,omitempty"`
	MimeType string `json:"mimeType,omitempty" yaml:"mimeType,omitempty"`
}

// Extension returns the lower-cased extension of the item's filename without
// the leading dot.
func (i Item) Extension() string {
	return extensionOf(i.Filename)
}

func extensionOf(filename string) string {
	ext := path.Ext(strings.TrimSpace(filename))
	return normalizeExtension(ext)
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func cloneItems(items []Item) []Item {
	if len(items) == 0 {
		return nil
	}
	return append([]Item(nil), items...)
}
