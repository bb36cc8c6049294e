// Package orchestrator turns a form definition file or an OpenAPI operation
// into rendered CSV import forms: build fields, apply link overrides, run
// transformers and decorators, then render.
package orchestrator
