// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog keeps a local SQLite registry of downloaded deposits,
// so repeated runs can list what is already on disk and where.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/zenodo-fetch/pkg/types"
)

const dbFile = "catalog.db"

// Deposit is one catalog row: a downloaded record and its on-disk
// location.
type Deposit struct {
	DOI          string    `json:"doi" yaml:"doi"`
	ConceptDOI   string    `json:"concept_doi,omitempty" yaml:"concept_doi,omitempty"`
	Title        string    `json:"title" yaml:"title"`
	Version      string    `json:"version,omitempty" yaml:"version,omitempty"`
	Creators     []string  `json:"creators,omitempty" yaml:"creators,omitempty"`
	Path         string    `json:"path" yaml:"path"`
	DownloadedAt time.Time `json:"downloaded_at" yaml:"downloaded_at"`
}

// Store manages the catalog SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the catalog database at cfg.Dir/catalog.db,
// creating the schema if needed.
func NewStore(cfg types.CatalogConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening catalog database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS deposits (
		doi TEXT PRIMARY KEY,
		concept_doi TEXT,
		title TEXT NOT NULL,
		version TEXT,
		creators TEXT,
		path TEXT NOT NULL,
		downloaded_at TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("executing schema statement: %w", err)
	}
	return nil
}

// Add registers a downloaded record at path, replacing any earlier
// entry for the same DOI.
func (s *Store) Add(ctx context.Context, rec *types.Record, path string) error {
	creators, err := json.Marshal(rec.Creators)
	if err != nil {
		return fmt.Errorf("encoding creators: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO deposits
		(doi, concept_doi, title, version, creators, path, downloaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(doi) DO UPDATE SET
			concept_doi = excluded.concept_doi,
			title = excluded.title,
			version = excluded.version,
			creators = excluded.creators,
			path = excluded.path,
			downloaded_at = excluded.downloaded_at`,
		rec.DOI, rec.ConceptDOI, rec.Title, rec.VersionTag(), string(creators),
		path, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting deposit %s: %w", rec.DOI, err)
	}
	return nil
}

// List returns all cataloged deposits, most recently downloaded first.
func (s *Store) List(ctx context.Context) ([]Deposit, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doi, concept_doi, title, version,
		creators, path, downloaded_at
		FROM deposits ORDER BY downloaded_at DESC, doi`)
	if err != nil {
		return nil, fmt.Errorf("querying deposits: %w", err)
	}
	defer rows.Close()

	var out []Deposit
	for rows.Next() {
		d, err := scanDeposit(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Get returns the cataloged deposit for a DOI, or (nil, nil) when the
// DOI has not been downloaded.
func (s *Store) Get(ctx context.Context, doi string) (*Deposit, error) {
	row := s.db.QueryRowContext(ctx, `SELECT doi, concept_doi, title, version,
		creators, path, downloaded_at
		FROM deposits WHERE doi = ?`, doi)
	d, err := scanDeposit(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDeposit(row scanner) (Deposit, error) {
	var d Deposit
	var creators, downloadedAt string
	if err := row.Scan(&d.DOI, &d.ConceptDOI, &d.Title, &d.Version,
		&creators, &d.Path, &downloadedAt); err != nil {
		if err == sql.ErrNoRows {
			return Deposit{}, err
		}
		return Deposit{}, fmt.Errorf("scanning deposit: %w", err)
	}
	if creators != "" {
		if err := json.Unmarshal([]byte(creators), &d.Creators); err != nil {
			return Deposit{}, fmt.Errorf("decoding creators for %s: %w", d.DOI, err)
		}
	}
	t, err := time.Parse(time.RFC3339, downloadedAt)
	if err != nil {
		return Deposit{}, fmt.Errorf("parsing timestamp for %s: %w", d.DOI, err)
	}
	d.DownloadedAt = t
	return d, nil
}
