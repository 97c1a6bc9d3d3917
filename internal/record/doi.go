// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// recordURLPattern matches a Zenodo record URL fragment anywhere in a
// string; the record id is capture group 1.
var recordURLPattern = regexp.MustCompile(`zenodo\.org/records?/([0-9]+)`)

// NormalizeDOI converts the accepted identifier forms to the bare DOI:
//
//	10.5281/zenodo.5173799
//	https://doi.org/10.5281/zenodo.5173799
//	https://zenodo.org/doi/10.5281/zenodo.5173799
//	https://zenodo.org/record/5173799 (also "records")
//
// all normalize to "10.5281/zenodo.5173799". Inputs that are neither a
// recognized URL form nor a DOI-shaped string fail with
// ErrInvalidIdentifier.
func NormalizeDOI(input string) (string, error) {
	input = strings.TrimSpace(input)
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, input)
	}

	var doi string
	switch strings.TrimPrefix(u.Host, "www.") {
	case "":
		// No network location: already a bare identifier.
		doi = u.Path
	case "zenodo.org":
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if parts[0] == "doi" && len(parts) > 1 {
			doi = strings.Join(parts[1:], "/")
		} else {
			// Zenodo record URL: the last path segment is the
			// numeric record id.
			doi = fmt.Sprintf(types.ZenodoDOIFormat, parts[len(parts)-1])
			if !zenodoDOIExact.MatchString(doi) {
				return "", fmt.Errorf("%w: %q is not a Zenodo record URL", ErrInvalidIdentifier, input)
			}
		}
	case "doi.org":
		doi = strings.TrimPrefix(u.Path, "/")
	default:
		return "", fmt.Errorf("%w: unsupported host in %q", ErrInvalidIdentifier, input)
	}

	if !validDOI(doi) {
		return "", fmt.Errorf("%w: %q does not look like a DOI", ErrInvalidIdentifier, input)
	}
	return doi, nil
}

// ExtractDOI finds a Zenodo DOI embedded anywhere in a string, e.g. a
// citation line, a download badge, or a record URL mentioned in running
// text. It reports false when the string mentions neither a Zenodo DOI
// nor a record URL.
func ExtractDOI(s string) (string, bool) {
	if m := types.ZenodoDOIPattern.FindString(s); m != "" {
		return m, true
	}
	if m := recordURLPattern.FindStringSubmatch(s); m != nil {
		return fmt.Sprintf(types.ZenodoDOIFormat, m[1]), true
	}
	return "", false
}
