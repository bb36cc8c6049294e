package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// ErrOperationNotFound reports an operationId with no CSV import fields.
var ErrOperationNotFound = errors.New("openapi: operation not found")

const (
	multipartMediaType = "multipart/form-data"

	extensionWidget = "x-formgen-widget"
	extensionAccept = "x-formgen-accept"
	extensionLabel  = "x-formgen-label"
	extensionLink   = "x-formgen-link"

	csvImportWidget = "csv-import"
)

// Operation is an OpenAPI operation accepting at least one CSV import field.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	Fields  []Field
}

// Field is a CSV file property of a multipart request body.
type Field struct {
	Name        string
	Title       string
	Description string
	Required    bool
	// Link is the x-formgen-link extension when present, else the
	// operation path.
	Link string
}

// Discover returns every operation in doc that accepts a CSV import field,
// ordered by path then method.
func Discover(ctx context.Context, doc Document) ([]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}

	loader := &openapi3.Loader{Context: ctx}
	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if spec.Paths == nil {
		return nil, nil
	}

	paths := make([]string, 0, spec.Paths.Len())
	for path := range spec.Paths.Map() {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var operations []Operation
	for _, path := range paths {
		item := spec.Paths.Value(path)
		if item == nil {
			continue
		}
		for _, candidate := range []struct {
			method string
			op     *openapi3.Operation
		}{
			{"POST", item.Post},
			{"PUT", item.Put},
			{"PATCH", item.Patch},
		} {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if op, ok := collectOperation(candidate.method, path, candidate.op); ok {
				operations = append(operations, op)
			}
		}
	}
	return operations, nil
}

// FindOperation returns the operation with the given operationId. Operations
// without an id are addressed as "<method>:<path>", lower-cased method.
func FindOperation(ctx context.Context, doc Document, operationID string) (Operation, error) {
	operationID = strings.TrimSpace(operationID)
	operations, err := Discover(ctx, doc)
	if err != nil {
		return Operation{}, err
	}
	if operationID == "" && len(operations) == 1 {
		return operations[0], nil
	}
	for _, op := range operations {
		if op.ID == operationID {
			return op, nil
		}
	}
	return Operation{}, fmt.Errorf("%w: %q", ErrOperationNotFound, operationID)
}

func collectOperation(method, path string, operation *openapi3.Operation) (Operation, bool) {
	if operation == nil || operation.RequestBody == nil || operation.RequestBody.Value == nil {
		return Operation{}, false
	}
	media := operation.RequestBody.Value.Content.Get(multipartMediaType)
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return Operation{}, false
	}

	schema := media.Schema.Value
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	names := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	var fields []Field
	for _, name := range names {
		ref := schema.Properties[name]
		if ref == nil || ref.Value == nil || !isCSVImport(ref.Value) {
			continue
		}
		prop := ref.Value
		link := stringExtension(prop.Extensions, extensionLink)
		if link == "" {
			link = path
		}
		fields = append(fields, Field{
			Name:        name,
			Title:       firstNonEmpty(stringExtension(prop.Extensions, extensionLabel), prop.Title),
			Description: prop.Description,
			Required:    required[name],
			Link:        link,
		})
	}
	if len(fields) == 0 {
		return Operation{}, false
	}

	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	return Operation{
		ID:      id,
		Method:  method,
		Path:    path,
		Summary: operation.Summary,
		Fields:  fields,
	}, true
}

func isCSVImport(schema *openapi3.Schema) bool {
	if strings.EqualFold(stringExtension(schema.Extensions, extensionWidget), csvImportWidget) {
		return true
	}
	if !isBinary(schema) {
		return false
	}
	for _, accepted := range acceptList(schema.Extensions[extensionAccept]) {
		switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(accepted), ".")) {
		case "csv", "text/csv":
			return true
		}
	}
	return false
}

func isBinary(schema *openapi3.Schema) bool {
	if schema.Type != nil && schema.Type.Is(openapi3.TypeArray) && schema.Items != nil && schema.Items.Value != nil {
		schema = schema.Items.Value
	}
	return schema.Format == "binary"
}

func acceptList(value any) []string {
	switch v := value.(type) {
	case string:
		return strings.Split(v, ",")
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return v
	}
	return nil
}

func stringExtension(extensions map[string]any, key string) string {
	if value, ok := extensions[key].(string); ok {
		return strings.TrimSpace(value)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value = strings.TrimSpace(value); value != "" {
			return value
		}
	}
	return ""
}
