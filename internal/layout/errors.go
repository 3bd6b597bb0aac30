package layout

import "errors"

// ErrPageRange is returned for a page index outside the document.
var ErrPageRange = errors.New("page index out of range")
