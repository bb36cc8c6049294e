package upload

import "strings"

const (
	schemaType      = "Custom"
	schemaComponent = "UploadField"
	schemaFieldType = "file"
)

// Endpoint describes where the front-end script sends a request.
type Endpoint struct {
	URL           string `json:"url"`
	Method        string `json:"method"`
	PayloadFormat string `json:"payloadFormat"`
}

// SchemaPayload holds the upload specific part of the schema.
type SchemaPayload struct {
	CreateFileEndpoint Endpoint `json:"createFileEndpoint"`
	MaxFiles           int      `json:"maxFiles,omitempty"`
	Multi              bool     `json:"multi"`
	FolderName         string   `json:"folderName"`
	AllowedExtensions  []string `json:"allowedExtensions,omitempty"`
	Accept             string   `json:"accept,omitempty"`
	CanUpload          bool     `json:"canUpload"`
	CanAttach          bool     `json:"canAttach"`
}

// SchemaData is the front-end rendering description of an upload field.
type SchemaData struct {
	Name        string        `json:"name"`
	ID          string        `json:"id"`
	HolderID    string        `json:"holderId"`
	Type        string        `json:"type"`
	SchemaType  string        `json:"schemaType"`
	Component   string        `json:"component"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	ExtraClass  string        `json:"extraClass,omitempty"`
	ReadOnly    bool          `json:"readOnly"`
	Disabled    bool          `json:"disabled"`
	Data        SchemaPayload `json:"data"`
	Files       []Item        `json:"files,omitempty"`
}

// SchemaDataDefaults builds the schema description of the field. Links are
// resolved through the installed Linker.
func (f *Field) SchemaDataDefaults() SchemaData {
	editable := !f.readonly && !f.disabled
	return SchemaData{
		Name:        f.name,
		ID:          f.ID(),
		HolderID:    f.HolderID(),
		Type:        schemaFieldType,
		SchemaType:  schemaType,
		Component:   schemaComponent,
		Title:       f.title,
		Description: f.description,
		ExtraClass:  f.ExtraClass(),
		ReadOnly:    f.readonly,
		Disabled:    f.disabled,
		Data: SchemaPayload{
			CreateFileEndpoint: Endpoint{
				URL:           f.resolveLink("upload"),
				Method:        "post",
				PayloadFormat: "urlencoded",
			},
			MaxFiles:          f.maxFiles,
			Multi:             f.maxFiles != 1,
			FolderName:        f.folderName,
			AllowedExtensions: f.AllowedExtensions(),
			Accept:            acceptAttribute(f.extensions),
			CanUpload:         editable,
			CanAttach:         editable,
		},
		Files: f.Items(),
	}
}

func acceptAttribute(exts []string) string {
	if len(exts) == 0 {
		return ""
	}
	dotted := make([]string, len(exts))
	for i, ext := range exts {
		dotted[i] = "." + ext
	}
	return strings.Join(dotted, ",")
}
