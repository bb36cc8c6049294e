package upload

import (
	"errors"
	"testing"
)

func TestNewFormRequiresName(t *testing.T) {
	t.Parallel()

	if _, err := NewForm("", "/import"); !errors.Is(err, ErrFormNameRequired) {
		t.Fatalf("expected ErrFormNameRequired, got %v", err)
	}
}

func TestFormAddRejectsDuplicates(t *testing.T) {
	t.Parallel()

	form, _ := NewForm("ImportForm", "/import")
	first, _ := NewField("CsvFile", "", nil)
	second, _ := NewField("CsvFile", "Other", nil)

	if err := form.Add(first); err != nil {
		t.Fatalf("add first: %v", err)
	}
	if err := form.Add(second); !errors.Is(err, ErrDuplicateField) {
		t.Fatalf("expected ErrDuplicateField, got %v", err)
	}
	if second.Form() != nil {
		t.Fatalf("rejected field must stay detached")
	}

	other, _ := NewForm("OtherForm", "/other")
	if err := other.Add(first); !errors.Is(err, ErrFieldAttached) {
		t.Fatalf("expected ErrFieldAttached, got %v", err)
	}
}

func TestFormModel(t *testing.T) {
	t.Parallel()

	form, _ := NewForm("ImportForm", "/import")
	for _, name := range []string{"CsvFile", "Archive"} {
		field, _ := NewField(name, "", nil)
		if err := form.Add(field); err != nil {
			t.Fatalf("add %s: %v", name, err)
		}
	}

	got := form.Model()
	if got.OperationID != "ImportForm" || got.Endpoint != "/import" || got.Method != "POST" {
		t.Fatalf("unexpected form header: %+v", got)
	}
	if len(got.Fields) != 2 || got.Fields[0].Name != "CsvFile" || got.Fields[1].Name != "Archive" {
		t.Fatalf("fields not in insertion order: %+v", got.Fields)
	}
	if got.Metadata["form.enctype"] != "multipart/form-data" {
		t.Fatalf("missing enctype metadata")
	}
	if _, ok := form.Field("Archive"); !ok {
		t.Fatalf("lookup by name failed")
	}
}
