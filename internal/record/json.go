// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// Zenodo records API JSON structures. Fields the API has represented
// inconsistently across generations (license, community entries, parent
// pid values) get flexible decoders instead of bare types.
type hit struct {
	DOI        string      `json:"doi"`
	ConceptDOI string      `json:"conceptdoi"`
	Metadata   hitMetadata `json:"metadata"`
	Files      []hitFile   `json:"files"`
}

type hitMetadata struct {
	Title              string         `json:"title"`
	Keywords           []string       `json:"keywords"`
	AccessRight        string         `json:"access_right"`
	PublicationDate    string         `json:"publication_date"`
	Version            string         `json:"version"`
	License            hitLicense     `json:"license"`
	Creators           []hitCreator   `json:"creators"`
	Communities        []hitCommunity `json:"communities"`
	RelatedIdentifiers []hitRelated   `json:"related_identifiers"`
	Relations          hitRelations   `json:"relations"`
}

type hitCreator struct {
	Name string `json:"name"`
}

type hitRelated struct {
	Relation   string `json:"relation"`
	Identifier string `json:"identifier"`
}

type hitRelations struct {
	Version []struct {
		Parent struct {
			PIDValue flexString `json:"pid_value"`
		} `json:"parent"`
	} `json:"version"`
}

type hitFile struct {
	Links struct {
		Self string `json:"self"`
	} `json:"links"`
}

// hitLicense accepts both the bare-string and the object form
// ({"id": ...} or {"identifier": ...}) the API has used for licenses.
type hitLicense struct {
	ID string
}

func (l *hitLicense) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.ID = s
		return nil
	}
	var obj struct {
		ID         string `json:"id"`
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	l.ID = obj.Identifier
	if l.ID == "" {
		l.ID = obj.ID
	}
	return nil
}

// hitCommunity accepts community entries keyed by "identifier" or "id".
type hitCommunity struct {
	ID string
}

func (c *hitCommunity) UnmarshalJSON(data []byte) error {
	var obj struct {
		ID         string `json:"id"`
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	c.ID = obj.Identifier
	if c.ID == "" {
		c.ID = obj.ID
	}
	return nil
}

// flexString decodes a JSON string or number into a string.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// ParseHit builds the canonical record from one JSON search hit.
func ParseHit(data []byte) (*types.Record, error) {
	var h hit
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parsing record JSON: %w", err)
	}

	rec := types.Record{
		DOI:          h.DOI,
		Title:        h.Metadata.Title,
		Keywords:     h.Metadata.Keywords,
		Version:      h.Metadata.Version,
		License:      h.Metadata.License.ID,
		ClosedAccess: h.Metadata.AccessRight == "closed" || h.Metadata.AccessRight == "restricted",
	}
	if h.Metadata.PublicationDate != "" {
		rec.Year = strings.SplitN(h.Metadata.PublicationDate, "-", 2)[0]
	}
	for _, c := range h.Metadata.Creators {
		rec.Creators = append(rec.Creators, c.Name)
	}
	for _, c := range h.Metadata.Communities {
		rec.Communities = append(rec.Communities, c.ID)
	}
	for _, f := range h.Files {
		if f.Links.Self != "" {
			// One API generation appends "/content" to file
			// self-links.
			rec.DownloadURLs = append(rec.DownloadURLs, strings.TrimSuffix(f.Links.Self, "/content"))
		}
	}
	for _, ri := range h.Metadata.RelatedIdentifiers {
		if ri.Relation != "isSupplementTo" {
			continue
		}
		if gh := ParseGithubURL(ri.Identifier); gh != nil {
			rec.GithubRepos = gh
			break
		}
	}

	conceptDOI, err := conceptDOIFromHit(&h)
	if err != nil {
		return nil, err
	}
	rec.ConceptDOI = conceptDOI

	// Retain the raw metadata object for fields not otherwise modeled.
	var passthrough struct {
		Metadata map[string]any `json:"metadata"`
	}
	if err := json.Unmarshal(data, &passthrough); err == nil {
		rec.Metadata = passthrough.Metadata
	}

	return New(rec)
}

// conceptDOIFromHit prefers the top-level conceptdoi field and falls
// back to the parent record id in the version relations. A hit carrying
// neither is malformed: every versioned deposit names its concept
// record.
func conceptDOIFromHit(h *hit) (string, error) {
	if h.ConceptDOI != "" {
		return h.ConceptDOI, nil
	}
	for _, v := range h.Metadata.Relations.Version {
		if v.Parent.PIDValue != "" {
			return fmt.Sprintf(types.ZenodoDOIFormat, string(v.Parent.PIDValue)), nil
		}
	}
	return "", fmt.Errorf("%w: record %s names no concept record", ErrMissingField, h.DOI)
}
