package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-importexport/pkg/model"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/upload"
)

type stubDriver struct {
	inputs       []string
	confirm      []bool
	infoMessages []string
	validators   []func(string) error
	inputPos     int
	confirmPos   int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	s.validators = append(s.validators, cfg.Validator)
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, _ ConfirmConfig) (bool, error) {
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func csvField(t *testing.T, name string, items ...upload.Item) model.Field {
	t.Helper()

	field, err := upload.NewField(name, "", items)
	if err != nil {
		t.Fatalf("new field: %v", err)
	}
	field.SetAllowedMaxFileNumber(1)
	field.SetAllowedExtensions([]string{"csv"})
	return field.Model()
}

func acceptAll(string) error { return nil }

func TestRenderCollectsPaths(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{" /tmp/members.csv "}}
	renderer := New(WithPromptDriver(driver), WithFileCheck(acceptAll))

	form := model.FormModel{Fields: []model.Field{csvField(t, "CsvFile")}}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "{\n  \"CsvFile\": \"/tmp/members.csv\"\n}"
	if string(out) != want {
		t.Fatalf("unexpected output %q", out)
	}
	if renderer.ContentType() != "application/json" {
		t.Fatalf("unexpected content type %q", renderer.ContentType())
	}
}

func TestRenderValidatorEnforcesExtension(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{""}}
	renderer := New(WithPromptDriver(driver), WithFileCheck(acceptAll))

	form := model.FormModel{Fields: []model.Field{csvField(t, "CsvFile")}}
	if _, err := renderer.Render(context.Background(), form, render.RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}

	validate := driver.validators[0]
	if err := validate("members.CSV"); err != nil {
		t.Fatalf("expected csv to pass, got %v", err)
	}
	if err := validate("members.xlsx"); !errors.Is(err, upload.ErrExtensionNotAllowed) {
		t.Fatalf("expected ErrExtensionNotAllowed, got %v", err)
	}
	if err := validate(""); err != nil {
		t.Fatalf("empty answer must be accepted, got %v", err)
	}
}

func TestRenderKeepsAttachedItem(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirm: []bool{false}}
	renderer := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatPrettyText),
		WithTheme(Theme{InfoPrefix: "i ", ErrorPrefix: "! "}),
	)

	form := model.FormModel{Fields: []model.Field{
		csvField(t, "CsvFile", upload.Item{ID: "1", Filename: "members.csv"}),
	}}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{
		Errors: map[string][]string{"CsvFile": {"file is empty"}},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "CsvFile: members.csv\n" {
		t.Fatalf("unexpected output %q", out)
	}
	if driver.inputPos != 0 {
		t.Fatalf("input must not be prompted when keeping the attached file")
	}
	if len(driver.infoMessages) != 2 || driver.infoMessages[0] != "! file is empty" || !strings.HasPrefix(driver.infoMessages[1], "i ") {
		t.Fatalf("unexpected info messages %q", driver.infoMessages)
	}
}

func TestRenderFormEncodedOutput(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{confirm: []bool{true}, inputs: []string{"new file.csv"}}
	renderer := New(
		WithPromptDriver(driver),
		WithOutputFormat(OutputFormatFormURLEncoded),
		WithFileCheck(acceptAll),
	)

	form := model.FormModel{Fields: []model.Field{
		csvField(t, "CsvFile", upload.Item{ID: "1", Filename: "members.csv"}),
	}}
	out, err := renderer.Render(context.Background(), form, render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "CsvFile=new+file.csv" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRenderRejectsNonUploadFields(t *testing.T) {
	t.Parallel()

	renderer := New(WithPromptDriver(&stubDriver{}))
	form := model.FormModel{Fields: []model.Field{{Name: "Title", Type: model.FieldTypeString}}}
	if _, err := renderer.Render(context.Background(), form, render.RenderOptions{}); !errors.Is(err, ErrUnsupportedField) {
		t.Fatalf("expected ErrUnsupportedField, got %v", err)
	}
}

func TestDefaultFileCheck(t *testing.T) {
	t.Parallel()

	if err := regularFile(t.TempDir()); err == nil {
		t.Fatalf("directories must be rejected")
	}
	if err := regularFile("testdata/does-not-exist.csv"); err == nil {
		t.Fatalf("missing files must be rejected")
	}
}

func TestRenderRevalidatesAnswers(t *testing.T) {
	t.Parallel()

	driver := &stubDriver{inputs: []string{"members.xlsx"}}
	renderer := New(WithPromptDriver(driver), WithFileCheck(acceptAll))

	form := model.FormModel{Fields: []model.Field{csvField(t, "CsvFile")}}
	if _, err := renderer.Render(context.Background(), form, render.RenderOptions{}); !errors.Is(err, upload.ErrExtensionNotAllowed) {
		t.Fatalf("expected ErrExtensionNotAllowed, got %v", err)
	}
}
