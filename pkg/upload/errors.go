package upload

import "errors"

var (
	ErrNameRequired        = errors.New("upload: field name is required")
	ErrFormNameRequired    = errors.New("upload: form name is required")
	ErrDuplicateField      = errors.New("upload: duplicate field name")
	ErrFieldAttached       = errors.New("upload: field already belongs to a form")
	ErrExtensionNotAllowed = errors.New("upload: file extension not allowed")
	ErrTooManyFiles        = errors.New("upload: maximum number of files reached")
)
