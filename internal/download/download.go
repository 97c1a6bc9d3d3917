// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download materializes Zenodo deposits on disk: fetching a
// record's files (or its GitHub release, when one is linked), unpacking
// zip archives, and locating datasets inside the unpacked tree.
package download

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/zenodo-fetch/internal/httputil"
	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

// ErrNoDownloadableResource reports a record that has nothing to fetch:
// no file URLs and no linked GitHub release.
var ErrNoDownloadableResource = errors.New("record has no downloadable resource")

// ErrDatasetNotFound reports that no dataset matching the locator was
// found in a downloaded deposit.
var ErrDatasetNotFound = errors.New("no dataset found in deposit")

// Options control download behavior.
type Options struct {
	// Unwrap flattens a single wrapping top-level directory after
	// unpacking, so the deposit's contents sit directly in the
	// destination. Applied only when the destination started empty.
	Unwrap bool

	// PreferGithub downloads the linked GitHub release archive instead
	// of the Zenodo files when the record carries a release tag.
	// GitHub's rate limits are far friendlier than Zenodo's.
	PreferGithub bool

	UserAgent  string
	MaxRetries int
}

// DefaultOptions are the options used by the CLI unless overridden.
func DefaultOptions() Options {
	return Options{Unwrap: true, PreferGithub: true, UserAgent: "zenodo-fetch/0.1"}
}

// Download fetches all of a record's files into dest, creating it if
// needed. Zip archives are unpacked in place; other files are written
// under their URL's final path segment. Progress lines go to w.
func Download(ctx context.Context, client *http.Client, rec *types.Record, dest string, opts Options, w io.Writer) error {
	urls := rec.DownloadURLs
	if opts.PreferGithub && rec.GithubRepos != nil {
		if u := rec.GithubRepos.ReleaseURL(); u != "" {
			urls = []string{u}
		}
	}
	// Closed access only blocks the download when it leaves nothing to
	// fetch; listed URLs are attempted and non-200 responses skipped.
	if len(urls) == 0 {
		if rec.ClosedAccess {
			return fmt.Errorf("%w: %s is closed access", ErrNoDownloadableResource, rec.DOI)
		}
		return fmt.Errorf("%w: %s", ErrNoDownloadableResource, rec.DOI)
	}

	wasEmpty, err := isEmptyDir(dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}

	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	for _, u := range urls {
		if err := fetchOne(ctx, client, u, dest, opts, w); err != nil {
			return err
		}
	}

	if opts.Unwrap && wasEmpty {
		if err := unwrap(dest); err != nil {
			return err
		}
	}
	return nil
}

// isEmptyDir reports whether dir does not exist or contains nothing.
func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", dir, err)
	}
	return len(entries) == 0, nil
}

// fetchOne downloads one URL into dest. A non-200 response skips the
// file with a note on w instead of failing the whole deposit; some
// deposits list files that have since gone away.
func fetchOne(ctx context.Context, client *http.Client, rawURL, dest string, opts Options, w io.Writer) error {
	// Newer API responses append a "/content" suffix to file links.
	rawURL = strings.TrimSuffix(rawURL, "/content")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if opts.UserAgent != "" {
		req.Header.Set("User-Agent", opts.UserAgent)
	}

	fmt.Fprintf(w, "Downloading %s\n", rawURL)
	resp, err := httputil.DoWithRetry(ctx, client, req, opts.MaxRetries)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(w, "Skipping %s: HTTP %d\n", rawURL, resp.StatusCode)
		io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading %s: %w", rawURL, err)
	}

	// Name the file after the URL's path, not the raw string: query
	// components (signed tokens, download flags) must not leak into the
	// filename or defeat the zip check.
	namePath := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		namePath = u.Path
	}
	name := path.Base(strings.TrimSuffix(namePath, "/"))
	if strings.HasSuffix(name, ".zip") {
		return unzipInto(body, dest)
	}
	if err := os.WriteFile(filepath.Join(dest, name), body, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// unzipInto unpacks a zip archive held in memory into dest.
func unzipInto(data []byte, dest string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}
	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		rel, err := filepath.Rel(dest, target)
		if err != nil || strings.HasPrefix(rel, "..") {
			return fmt.Errorf("zip entry %q escapes destination", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("creating %s: %w", target, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("opening zip entry %s: %w", f.Name, err)
		}
		out, err := os.Create(target)
		if err != nil {
			rc.Close()
			return fmt.Errorf("creating %s: %w", target, err)
		}
		_, err = io.Copy(out, rc)
		rc.Close()
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

// unwrap flattens dest when it contains exactly one directory and
// nothing else, moving that directory's children up one level. Release
// archives wrap their contents in an "org-repo-tag" directory that
// callers rarely want.
func unwrap(dest string) error {
	entries, err := os.ReadDir(dest)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dest, err)
	}
	if len(entries) != 1 || !entries[0].IsDir() {
		return nil
	}

	// Rename the wrapper aside first: one of its children may share
	// its name.
	wrapper := filepath.Join(dest, entries[0].Name())
	tmp := filepath.Join(dest, ".unwrap-"+entries[0].Name())
	if err := os.Rename(wrapper, tmp); err != nil {
		return fmt.Errorf("unwrapping %s: %w", wrapper, err)
	}

	children, err := os.ReadDir(tmp)
	if err != nil {
		return fmt.Errorf("reading %s: %w", tmp, err)
	}
	for _, c := range children {
		if err := os.Rename(filepath.Join(tmp, c.Name()), filepath.Join(dest, c.Name())); err != nil {
			return fmt.Errorf("unwrapping %s: %w", c.Name(), err)
		}
	}
	return os.Remove(tmp)
}
