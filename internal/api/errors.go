// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package api

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument reports a violated call precondition, e.g. passing
// both a DOI and a concept DOI to GetRecord.
var ErrInvalidArgument = errors.New("invalid argument")

// StatusError reports a non-200 response from the Zenodo API. Pagination
// callers treat it as transient: the cursor position is preserved so the
// same page can be re-requested.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("zenodo API returned HTTP %d for %s", e.Code, e.URL)
}
