package model

import (
	"testing"
	"unicode/utf8"
)

func TestDefaultLabeler(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"CsvFile":      "Csv File",
		"import_file":  "Import File",
		"member-list2": "Member List 2",
		"überDatei":    "Über Datei",
		"émigrés_csv":  "Émigrés Csv",
		"ÄrzteListe":   "Ärzte Liste",
		"":             "",
		"  ":           "",
	}
	for input, want := range cases {
		got := DefaultLabeler(input)
		if got != want {
			t.Fatalf("DefaultLabeler(%q) = %q, want %q", input, got, want)
		}
		if !utf8.ValidString(got) {
			t.Fatalf("DefaultLabeler(%q) returned invalid UTF-8 %q", input, got)
		}
	}
}

func TestFormModelField(t *testing.T) {
	t.Parallel()

	form := FormModel{Fields: []Field{{Name: "CsvFile", Type: FieldTypeFile}}}
	if _, ok := form.Field("missing"); ok {
		t.Fatalf("expected missing field lookup to fail")
	}
	field, ok := form.Field("CsvFile")
	if !ok || field.Type != FieldTypeFile {
		t.Fatalf("unexpected lookup result: %+v (ok=%v)", field, ok)
	}
}

func TestDecoratorFuncNil(t *testing.T) {
	t.Parallel()

	var fn DecoratorFunc
	if err := fn.Decorate(&FormModel{}); err != nil {
		t.Fatalf("nil decorator func should be a no-op, got %v", err)
	}
}
