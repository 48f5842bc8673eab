package openlibrary

import "errors"

var (
	// ErrUnavailable indicates the OpenLibrary service could not serve the
	// request. Transport and decode failures wrap this sentinel.
	ErrUnavailable = errors.New("openlibrary service unavailable")
)
