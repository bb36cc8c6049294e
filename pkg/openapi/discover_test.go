package openapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"
)

func loadFixture(t *testing.T) Document {
	t.Helper()

	doc, err := NewLoader().Load(context.Background(), SourceFromFile("testdata/imports.yaml"))
	if err != nil {
		t.Fatalf("load fixture: %v", err)
	}
	return doc
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	got, err := Discover(context.Background(), loadFixture(t))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}

	want := []Operation{
		{
			ID:      "importMembers",
			Method:  "POST",
			Path:    "/admin/import/members",
			Summary: "Import members from CSV",
			Fields: []Field{{
				Name:        "CsvFile",
				Title:       "Members file",
				Description: "One CSV file per import",
				Required:    true,
				Link:        "/admin/import/members",
			}},
		},
		{
			ID:     "put:/admin/import/products",
			Method: "PUT",
			Path:   "/admin/import/products",
			Fields: []Field{{
				Name:  "Catalogue",
				Title: "Product catalogue",
				Link:  "/custom/import/products",
			}},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("operations mismatch (-want +got):\n%s", diff)
	}
}

func TestFindOperation(t *testing.T) {
	t.Parallel()

	doc := loadFixture(t)

	op, err := FindOperation(context.Background(), doc, "importMembers")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if op.Path != "/admin/import/members" {
		t.Fatalf("unexpected operation %+v", op)
	}

	if _, err := FindOperation(context.Background(), doc, "createUser"); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound for non-import operation, got %v", err)
	}
	if _, err := FindOperation(context.Background(), doc, ""); !errors.Is(err, ErrOperationNotFound) {
		t.Fatalf("expected ErrOperationNotFound for ambiguous empty id, got %v", err)
	}
}

func TestFindOperationDefaultsToSingleImport(t *testing.T) {
	t.Parallel()

	const document = `{
  "openapi": "3.0.0",
  "info": { "title": "Single", "version": "1.0.0" },
  "paths": {
    "/import": {
      "post": {
        "requestBody": { "content": { "multipart/form-data": { "schema": {
          "type": "object",
          "properties": { "file": { "type": "string", "format": "binary", "x-formgen-accept": "csv" } }
        } } } },
        "responses": { "204": { "description": "ok" } }
      }
    }
  }
}`

	doc := MustNewDocument(SourceFromFS("single.json"), []byte(document))
	op, err := FindOperation(context.Background(), doc, "")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if op.ID != "post:/import" || len(op.Fields) != 1 || op.Fields[0].Link != "/import" {
		t.Fatalf("unexpected operation %+v", op)
	}
}

func TestDiscoverRejectsInvalidDocument(t *testing.T) {
	t.Parallel()

	doc := MustNewDocument(SourceFromFS("broken.json"), []byte("{not json"))
	if _, err := Discover(context.Background(), doc); err == nil {
		t.Fatalf("expected load error")
	}
}

func TestDiscoverHonoursCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Discover(ctx, loadFixture(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestLoaderSources(t *testing.T) {
	t.Parallel()

	raw, err := os.ReadFile("testdata/imports.yaml")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	t.Run("fs", func(t *testing.T) {
		t.Parallel()

		loader := NewLoader(WithFileSystem(fstest.MapFS{"specs/imports.yaml": {Data: raw}}))
		doc, err := loader.Load(context.Background(), SourceFromFS("specs/imports.yaml"))
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if doc.Source().Kind() != SourceKindFS || len(doc.Raw()) != len(raw) {
			t.Fatalf("unexpected document from fs")
		}
	})

	t.Run("fs not configured", func(t *testing.T) {
		t.Parallel()

		if _, err := NewLoader().Load(context.Background(), SourceFromFS("imports.yaml")); err == nil {
			t.Fatalf("expected error without filesystem")
		}
	})

	t.Run("http", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(raw)
		}))
		defer server.Close()

		src, err := SourceFromURL(server.URL + "/openapi.yaml")
		if err != nil {
			t.Fatalf("source: %v", err)
		}
		if _, err := NewLoader().Load(context.Background(), src); err == nil {
			t.Fatalf("expected http to be disabled by default")
		}

		doc, err := NewLoader(WithHTTPClient(server.Client())).Load(context.Background(), src)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(doc.Raw()) != len(raw) {
			t.Fatalf("unexpected payload size %d", len(doc.Raw()))
		}
	})

	t.Run("invalid url", func(t *testing.T) {
		t.Parallel()

		if _, err := SourceFromURL("ftp://example.com/spec.yaml"); err == nil {
			t.Fatalf("expected unsupported scheme error")
		}
	})
}
