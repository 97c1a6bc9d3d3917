// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package record

import (
	"errors"
	"testing"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

func TestNew(t *testing.T) {
	rec, err := New(types.Record{
		DOI:          "https://doi.org/10.5281/zenodo.5173799",
		Title:        "WALS Online",
		Creators:     []string{"Matthew Dryer", "Haspelmath, Martin"},
		Communities:  []string{"cldf-datasets", "", "lexibank"},
		DownloadURLs: []string{"https://zenodo.org/api/files/x/wals.zip"},
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rec.DOI != "10.5281/zenodo.5173799" {
		t.Errorf("DOI = %q, want normalized form", rec.DOI)
	}
	if len(rec.Creators) != 2 || rec.Creators[0] != "Dryer, Matthew" || rec.Creators[1] != "Haspelmath, Martin" {
		t.Errorf("Creators = %v, want inverted forms", rec.Creators)
	}
	if len(rec.Communities) != 2 {
		t.Errorf("Communities = %v, want empty entries dropped", rec.Communities)
	}
}

func TestNewNoDownloadsOpenAccess(t *testing.T) {
	_, err := New(types.Record{DOI: "10.5281/zenodo.1", Title: "x"})
	if !errors.Is(err, ErrMissingField) {
		t.Errorf("New() error = %v, want ErrMissingField", err)
	}
}

func TestNewNoDownloadsClosedAccess(t *testing.T) {
	rec, err := New(types.Record{DOI: "10.5281/zenodo.1", Title: "x", ClosedAccess: true})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !rec.ClosedAccess {
		t.Error("ClosedAccess not preserved")
	}
}

func TestNewInvalidDOI(t *testing.T) {
	_, err := New(types.Record{DOI: "not-a-doi", DownloadURLs: []string{"x"}})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Errorf("New() error = %v, want ErrInvalidIdentifier", err)
	}
}

func TestRecordID(t *testing.T) {
	r := types.Record{DOI: "10.5281/zenodo.5173799"}
	if got := r.ID(); got != "5173799" {
		t.Errorf("ID() = %q, want 5173799", got)
	}
}

func TestVersionTag(t *testing.T) {
	tests := []struct {
		name string
		rec  types.Record
		want string
	}{
		{"explicit version", types.Record{Version: "v1.1"}, "v1.1"},
		{"github tag fallback", types.Record{GithubRepos: &types.GithubRepos{Tag: "v2020"}}, "v2020"},
		{"version wins over tag", types.Record{Version: "v1.1", GithubRepos: &types.GithubRepos{Tag: "v2020"}}, "v1.1"},
		{"neither", types.Record{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.VersionTag(); got != tt.want {
				t.Errorf("VersionTag() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGithubReleaseURL(t *testing.T) {
	g := types.GithubRepos{Org: "cldf-datasets", Name: "wals", Tag: "v2020"}
	want := "https://github.com/cldf-datasets/wals/archive/refs/tags/v2020.zip"
	if got := g.ReleaseURL(); got != want {
		t.Errorf("ReleaseURL() = %q, want %q", got, want)
	}

	g.Tag = ""
	if got := g.ReleaseURL(); got != "" {
		t.Errorf("ReleaseURL() without tag = %q, want empty", got)
	}
}
