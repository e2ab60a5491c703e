package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "public", "nested")

	s, err := New(dir)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("output directory not created: %v", err)
	}
	if s.Dir() != dir {
		t.Errorf("Dir() = %q, want %q", s.Dir(), dir)
	}
}

func TestNew_Failure(t *testing.T) {
	// a regular file blocks directory creation
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := New(filepath.Join(blocker, "sub")); err == nil {
		t.Error("New() expected error when a file is in the way")
	}
}

func TestCreate(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	f, err := s.Create("a.csv")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	f.WriteString("hello")
	f.Close()

	data, err := os.ReadFile(s.Path("a.csv"))
	if err != nil || string(data) != "hello" {
		t.Errorf("file content = %q, err = %v", data, err)
	}
}

func TestManifest_RoundTripAndMerge(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	write := func(name string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	// first run
	first, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	write("Spielplan_U13_2025-03-01_12-00-00.csv")
	write("Spielplan_U11_2025-03-01_12-00-00.csv")
	first.Record(Artifact{Name: "Spielplan_U13_2025-03-01_12-00-00.csv", Team: "U13", Kind: KindCSV, CreatedAt: ts})
	first.Record(Artifact{Name: "Spielplan_U11_2025-03-01_12-00-00.csv", Team: "U11", Kind: KindCSV, CreatedAt: ts})
	if _, err := first.SaveManifest(); err != nil {
		t.Fatalf("SaveManifest() error: %v", err)
	}

	// U11 file deleted between runs
	os.Remove(filepath.Join(dir, "Spielplan_U11_2025-03-01_12-00-00.csv"))

	// second run
	second, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	write("Spielplan_U13_2025-03-08_12-00-00.csv")
	second.Record(Artifact{Name: "Spielplan_U13_2025-03-08_12-00-00.csv", Team: "U13", Kind: KindCSV, CreatedAt: ts.AddDate(0, 0, 7)})
	m, err := second.SaveManifest()
	if err != nil {
		t.Fatalf("SaveManifest() error: %v", err)
	}

	if len(m.Artifacts) != 2 {
		t.Fatalf("manifest has %d artifacts, want 2: %+v", len(m.Artifacts), m.Artifacts)
	}
	if m.Artifacts[0].Name != "Spielplan_U13_2025-03-01_12-00-00.csv" || m.Artifacts[1].Name != "Spielplan_U13_2025-03-08_12-00-00.csv" {
		t.Errorf("manifest artifacts = %+v", m.Artifacts)
	}

	loaded, err := second.LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}
	if len(loaded.Artifacts) != 2 || loaded.Artifacts[0].Team != "U13" {
		t.Errorf("loaded manifest = %+v", loaded)
	}
	if loaded.UpdatedAt == "" {
		t.Error("UpdatedAt should be set")
	}
}

func TestLoadManifest_Missing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	m, err := s.LoadManifest()
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}
	if m.Artifacts == nil || len(m.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want empty non-nil slice", m.Artifacts)
	}
}

func TestLoadManifest_Corrupt(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	os.WriteFile(s.Path(ManifestFile), []byte("{not json"), 0644)

	if _, err := s.LoadManifest(); err == nil || !strings.Contains(err.Error(), "parsing manifest") {
		t.Errorf("LoadManifest() error = %v, want parsing error", err)
	}
}

func TestArtifacts_ReturnsCopy(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s.Record(Artifact{Name: "a"})

	got := s.Artifacts()
	got[0].Name = "changed"

	if s.Artifacts()[0].Name != "a" {
		t.Error("Artifacts() should return a copy")
	}
}
