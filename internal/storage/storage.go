package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	ManifestFile = "manifest.json"
	IndexFile    = "index.html"
)

// Artifact kinds
const (
	KindCSV  = "csv"
	KindXLSX = "xlsx"
	KindICS  = "ics"
	KindJira = "jira"
)

// Artifact describes one written file.
type Artifact struct {
	Name      string    `json:"name"` // relative to the output directory
	Team      string    `json:"team"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"created_at"`
}

// Manifest lists all known artifacts of an output directory.
type Manifest struct {
	UpdatedAt string     `json:"updated_at"` // RFC3339 timestamp
	Artifacts []Artifact `json:"artifacts"`
}

// Storage owns the output directory of a run.
type Storage struct {
	dir       string
	artifacts []Artifact
}

// New creates the output directory if needed. A leading ~/ is expanded.
func New(dir string) (*Storage, error) {
	if strings.HasPrefix(dir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, dir[2:])
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{dir: dir}, nil
}

// Dir returns the output directory.
func (s *Storage) Dir() string {
	return s.dir
}

// Path returns the absolute location of name inside the output directory.
func (s *Storage) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Create opens name in the output directory for writing, truncating it.
func (s *Storage) Create(name string) (*os.File, error) {
	f, err := os.Create(s.Path(name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return f, nil
}

// Record remembers a written artifact for the manifest.
func (s *Storage) Record(a Artifact) {
	s.artifacts = append(s.artifacts, a)
}

// Artifacts returns the artifacts recorded during this run.
func (s *Storage) Artifacts() []Artifact {
	out := make([]Artifact, len(s.artifacts))
	copy(out, s.artifacts)
	return out
}

// LoadManifest reads the manifest of the output directory.
// A missing manifest yields an empty one.
func (s *Storage) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(s.Path(ManifestFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Manifest{Artifacts: make([]Artifact, 0)}, nil
		}
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Artifacts == nil {
		m.Artifacts = make([]Artifact, 0)
	}
	return &m, nil
}

// SaveManifest merges this run's artifacts into the existing manifest, drops
// entries whose files are gone and writes the result.
func (s *Storage) SaveManifest() (*Manifest, error) {
	prev, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]Artifact, len(prev.Artifacts)+len(s.artifacts))
	for _, a := range prev.Artifacts {
		byName[a.Name] = a
	}
	for _, a := range s.artifacts {
		byName[a.Name] = a
	}

	merged := make([]Artifact, 0, len(byName))
	for name, a := range byName {
		if _, err := os.Stat(s.Path(name)); err != nil {
			continue
		}
		merged = append(merged, a)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Name < merged[j].Name
	})

	m := &Manifest{
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
		Artifacts: merged,
	}

	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := os.WriteFile(s.Path(ManifestFile), data, 0644); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	return m, nil
}
