// Package openapi discovers CSV import fields in OpenAPI 3 documents. A
// property of a multipart/form-data request body is a CSV import when it is a
// binary file whose x-formgen-accept lists csv, or when it carries
// x-formgen-widget: csv-import.
package openapi
