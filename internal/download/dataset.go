// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package download

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// Locator finds dataset metadata files inside a downloaded deposit. It
// returns candidate paths in a stable order.
type Locator interface {
	Locate(dir string) ([]string, error)
}

// MetadataLocator locates datasets by their metadata sidecar files,
// matched by filename suffix.
type MetadataLocator struct {
	// Suffix to match; "-metadata.json" when empty.
	Suffix string
}

func (l MetadataLocator) Locate(dir string) ([]string, error) {
	suffix := l.Suffix
	if suffix == "" {
		suffix = "-metadata.json"
	}
	var found []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), suffix) {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	sort.Strings(found)
	return found, nil
}

// DownloadDataset fetches a deposit into a temporary directory, locates
// a dataset in it, and copies the dataset's directory into dest. cond
// selects among candidate metadata paths (nil accepts the first); a
// non-empty mdName renames the metadata file in the copy. Returns
// ErrDatasetNotFound when no candidate matches.
func DownloadDataset(ctx context.Context, client *http.Client, rec *types.Record, dest string, loc Locator, cond func(string) bool, mdName string, opts Options, w io.Writer) error {
	if loc == nil {
		loc = MetadataLocator{}
	}

	tmp, err := os.MkdirTemp("", "zenodo-fetch-")
	if err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(tmp)

	if err := Download(ctx, client, rec, tmp, opts, w); err != nil {
		return err
	}

	candidates, err := loc.Locate(tmp)
	if err != nil {
		return err
	}
	var md string
	for _, c := range candidates {
		if cond == nil || cond(c) {
			md = c
			break
		}
	}
	if md == "" {
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, rec.DOI)
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	if err := copyDir(filepath.Dir(md), dest); err != nil {
		return err
	}
	if mdName != "" && mdName != filepath.Base(md) {
		from := filepath.Join(dest, filepath.Base(md))
		if err := os.Rename(from, filepath.Join(dest, mdName)); err != nil {
			return fmt.Errorf("renaming metadata file: %w", err)
		}
	}
	return nil
}

// copyDir copies the contents of src into dst recursively.
func copyDir(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("reading %s: %w", p, err)
		}
		if err := os.WriteFile(target, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
		return nil
	})
}
