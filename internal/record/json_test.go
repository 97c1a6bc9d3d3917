// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"errors"
	"testing"
)

const sampleHit = `{
  "doi": "10.5281/zenodo.5173799",
  "conceptdoi": "10.5281/zenodo.3606197",
  "metadata": {
    "title": "WALS Online",
    "publication_date": "2021-08-05",
    "version": "v2020.1",
    "access_right": "open",
    "keywords": ["linguistics", "typology"],
    "license": {"id": "cc-by-4.0"},
    "creators": [{"name": "Dryer, Matthew"}, {"name": "Martin Haspelmath"}],
    "communities": [{"identifier": "cldf-datasets"}],
    "related_identifiers": [
      {"relation": "isSupplementTo", "identifier": "https://github.com/cldf-datasets/wals/tree/v2020.1"}
    ]
  },
  "files": [
    {"links": {"self": "https://zenodo.org/api/records/5173799/files/wals.zip/content"}}
  ]
}`

func TestParseHit(t *testing.T) {
	rec, err := ParseHit([]byte(sampleHit))
	if err != nil {
		t.Fatalf("ParseHit() error = %v", err)
	}

	if rec.DOI != "10.5281/zenodo.5173799" {
		t.Errorf("DOI = %q", rec.DOI)
	}
	if rec.ConceptDOI != "10.5281/zenodo.3606197" {
		t.Errorf("ConceptDOI = %q", rec.ConceptDOI)
	}
	if rec.Year != "2021" {
		t.Errorf("Year = %q", rec.Year)
	}
	if rec.License != "cc-by-4.0" {
		t.Errorf("License = %q", rec.License)
	}
	if len(rec.Creators) != 2 || rec.Creators[1] != "Haspelmath, Martin" {
		t.Errorf("Creators = %v", rec.Creators)
	}
	if len(rec.Communities) != 1 || rec.Communities[0] != "cldf-datasets" {
		t.Errorf("Communities = %v", rec.Communities)
	}
	// The "/content" suffix of the file link is stripped.
	if got := rec.DownloadURL(); got != "https://zenodo.org/api/records/5173799/files/wals.zip" {
		t.Errorf("DownloadURL() = %q", got)
	}
	if rec.GithubRepos == nil || rec.GithubRepos.Tag != "v2020.1" {
		t.Errorf("GithubRepos = %+v", rec.GithubRepos)
	}
	if rec.Metadata == nil {
		t.Error("Metadata passthrough missing")
	} else if rec.Metadata["access_right"] != "open" {
		t.Errorf("Metadata[access_right] = %v", rec.Metadata["access_right"])
	}
}

func TestParseHitConceptDOIFromRelations(t *testing.T) {
	data := `{
	  "doi": "10.5281/zenodo.100",
	  "metadata": {
	    "title": "x",
	    "access_right": "open",
	    "relations": {"version": [{"parent": {"pid_value": 99}}]}
	  },
	  "files": [{"links": {"self": "https://zenodo.org/api/files/a/b.zip"}}]
	}`
	rec, err := ParseHit([]byte(data))
	if err != nil {
		t.Fatalf("ParseHit() error = %v", err)
	}
	if rec.ConceptDOI != "10.5281/zenodo.99" {
		t.Errorf("ConceptDOI = %q, want 10.5281/zenodo.99", rec.ConceptDOI)
	}
}

func TestParseHitNoConceptDOI(t *testing.T) {
	data := `{
	  "doi": "10.5281/zenodo.100",
	  "metadata": {"title": "x", "access_right": "open"},
	  "files": [{"links": {"self": "https://zenodo.org/api/files/a/b.zip"}}]
	}`
	_, err := ParseHit([]byte(data))
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("ParseHit() error = %v, want ErrMissingField", err)
	}
}

func TestParseHitLicenseString(t *testing.T) {
	data := `{
	  "doi": "10.5281/zenodo.100",
	  "conceptdoi": "10.5281/zenodo.99",
	  "metadata": {"title": "x", "access_right": "open", "license": "CC-BY-4.0"},
	  "files": [{"links": {"self": "https://zenodo.org/api/files/a/b.zip"}}]
	}`
	rec, err := ParseHit([]byte(data))
	if err != nil {
		t.Fatalf("ParseHit() error = %v", err)
	}
	if rec.License != "CC-BY-4.0" {
		t.Errorf("License = %q", rec.License)
	}
}

func TestParseHitClosedAccess(t *testing.T) {
	data := `{
	  "doi": "10.5281/zenodo.100",
	  "conceptdoi": "10.5281/zenodo.99",
	  "metadata": {"title": "x", "access_right": "restricted"}
	}`
	rec, err := ParseHit([]byte(data))
	if err != nil {
		t.Fatalf("ParseHit() error = %v", err)
	}
	if !rec.ClosedAccess {
		t.Error("ClosedAccess = false, want true")
	}
}
