// Command csvimport-field renders CSV import forms from a definition file, an
// OpenAPI document or command line flags.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/goliatone/go-importexport/pkg/config"
	pkgopenapi "github.com/goliatone/go-importexport/pkg/openapi"
	"github.com/goliatone/go-importexport/pkg/orchestrator"
	"github.com/goliatone/go-importexport/pkg/render"
	"github.com/goliatone/go-importexport/pkg/renderers/tui"
	"github.com/goliatone/go-importexport/pkg/renderers/vanilla"
)

const (
	envFormAction   = "IMPORTEXPORT_FORM_ACTION"
	defaultFormName = "ImportForm"
	httpTimeout     = 30 * time.Second
)

type options struct {
	configPath  string
	openapi     string
	operation   string
	name        string
	title       string
	link        string
	action      string
	renderer    string
	output      string
	interactive bool
	debug       bool
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := run(ctx, opts, tui.SurveyDriver{}, os.Stdout, logger); err != nil {
		if errors.Is(err, tui.ErrAborted) {
			logger.Info("aborted")
			os.Exit(130)
		}
		logger.Error("failed to generate form", "error", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("csvimport-field", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", "", "form definition file (YAML or JSON)")
	fs.StringVar(&opts.openapi, "openapi", "", "OpenAPI document path or URL")
	fs.StringVar(&opts.operation, "operation", "", "OpenAPI operation id")
	fs.StringVar(&opts.name, "name", "", "field name")
	fs.StringVar(&opts.title, "title", "", "field title")
	fs.StringVar(&opts.link, "link", "", "link override for the field")
	fs.StringVar(&opts.action, "action", os.Getenv(envFormAction), "form action URL")
	fs.StringVar(&opts.renderer, "renderer", "vanilla", "renderer to use (vanilla, json, tui)")
	fs.StringVar(&opts.output, "output", "", "output file (stdout if empty)")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for missing values")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func run(ctx context.Context, opts options, driver tui.PromptDriver, stdout io.Writer, logger *slog.Logger) error {
	registry := render.NewRegistry()
	html, err := vanilla.New()
	if err != nil {
		return fmt.Errorf("configure vanilla renderer: %w", err)
	}
	registry.MustRegister(html)
	registry.MustRegister(render.JSONRenderer{})
	registry.MustRegister(tui.New(tui.WithPromptDriver(driver)))

	req := orchestrator.Request{
		OperationID: opts.operation,
		Renderer:    opts.renderer,
	}
	var overrides []orchestrator.LinkOverride
	loader := pkgopenapi.NewLoader(pkgopenapi.WithHTTPTimeout(httpTimeout))

	switch {
	case opts.configPath != "":
		doc, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		logger.Debug("loaded form definition", "source", doc.Source, "fields", len(doc.Fields))
		req.Config = &doc
		if opts.name != "" && opts.link != "" {
			overrides = append(overrides, orchestrator.LinkOverride{Form: doc.Form.Name, Field: opts.name, URL: opts.link})
		}
	case opts.openapi != "":
		src, err := parseSource(opts.openapi)
		if err != nil {
			return err
		}
		logger.Debug("discovering csv imports", "source", src.Location(), "operation", opts.operation)
		doc, err := loader.Load(ctx, src)
		if err != nil {
			return err
		}
		// Resolve the operation here so a -link override targets the form
		// the orchestrator will build, even when -operation is omitted.
		op, err := pkgopenapi.FindOperation(ctx, doc, opts.operation)
		if err != nil {
			return err
		}
		req.Document = &doc
		req.OperationID = op.ID
		if opts.name != "" && opts.link != "" {
			overrides = append(overrides, orchestrator.LinkOverride{Form: op.ID, Field: opts.name, URL: opts.link})
		}
	default:
		doc, err := fieldDocument(ctx, opts, driver)
		if err != nil {
			return err
		}
		req.Config = &doc
	}

	orch := orchestrator.New(
		orchestrator.WithRegistry(registry),
		orchestrator.WithLinkOverrides(overrides...),
	)

	output, err := orch.Generate(ctx, req)
	if err != nil {
		return err
	}

	if opts.output == "" {
		_, err := stdout.Write(append(output, '\n'))
		return err
	}
	if err := os.WriteFile(opts.output, output, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	logger.Info("form written", "path", opts.output, "renderer", opts.renderer, "bytes", len(output))
	return nil
}

// fieldDocument builds a single-field definition from flags, prompting for
// missing values when interactive.
func fieldDocument(ctx context.Context, opts options, driver tui.PromptDriver) (config.Document, error) {
	if opts.interactive {
		prompts := []struct {
			target   *string
			message  string
			required bool
		}{
			{&opts.name, "Field name", true},
			{&opts.title, "Field title", false},
			{&opts.action, "Form action", false},
			{&opts.link, "Link override", false},
		}
		for _, p := range prompts {
			if *p.target != "" {
				continue
			}
			var validate func(string) error
			if p.required {
				validate = requiredValue
			}
			answer, err := driver.Input(ctx, tui.InputConfig{Message: p.message, Validator: validate})
			if err != nil {
				return config.Document{}, err
			}
			*p.target = strings.TrimSpace(answer)
		}
	}

	doc := config.Document{
		Form: config.FormConfig{Name: defaultFormName, Action: strings.TrimSpace(opts.action)},
		Fields: []config.FieldConfig{{
			Name:  strings.TrimSpace(opts.name),
			Title: strings.TrimSpace(opts.title),
			Link:  strings.TrimSpace(opts.link),
		}},
		Source: "flags",
	}
	if err := doc.Validate(); err != nil {
		return config.Document{}, fmt.Errorf("invalid field flags: %w", err)
	}
	return doc, nil
}

func requiredValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.New("value is required")
	}
	return nil
}

func parseSource(raw string) (pkgopenapi.Source, error) {
	path := strings.TrimSpace(raw)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pkgopenapi.SourceFromURL(path)
	}
	return pkgopenapi.SourceFromFile(path), nil
}
