// Package vanilla renders upload forms as plain HTML holders using pongo2
// templates. Each holder carries the upload schema in a data-schema attribute
// for the front-end script; no JavaScript is emitted.
package vanilla
