package record

import "errors"

// Domain errors for the record module.
var (
	ErrRecordNotFound   = errors.New("health record not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrInvalidCategory  = errors.New("invalid record category")
	ErrTitleRequired    = errors.New("record title is required")
)
