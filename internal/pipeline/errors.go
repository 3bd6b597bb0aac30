package pipeline

import "errors"

var (
	// ErrSourceNotFound means the input document does not exist.
	ErrSourceNotFound = errors.New("source document not found")
	// ErrBackend means the extraction backend could not open or read the document.
	ErrBackend = errors.New("extraction backend failed")
)
