package index

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/pfrederiksen/spielplan/internal/storage"
)

// UnknownTeam is the bucket for files whose team cannot be determined.
const UnknownTeam = "Unbekannt"

// sectionOrder lists the extensions that come first, in this order.
var sectionOrder = []string{"csv", "xlsx", "ics"}

//go:embed index.html.tmpl
var pageTemplate string

var tmpl = template.Must(template.New("index").Parse(pageTemplate))

// File is one listed file.
type File struct {
	Name    string
	Team    string
	Size    int64
	ModTime time.Time
}

// HumanSize renders the file size for display, e.g. "12 kB".
func (f File) HumanSize() string {
	return humanize.Bytes(uint64(f.Size))
}

// TeamFiles are the files of one team within a section.
type TeamFiles struct {
	Team  string
	Files []File
}

// Section groups all files of one extension.
type Section struct {
	Ext   string
	Title string
	Teams []TeamFiles
}

// Page is the data rendered into index.html.
type Page struct {
	Title       string
	GeneratedAt time.Time
	Sections    []Section
	Total       int
}

// Build lists dir and groups its files by extension and team. Teams are taken
// from the manifest when it names the file, then from the file name.
func Build(dir string, manifest *storage.Manifest, now time.Time) (*Page, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	teams := make(map[string]string)
	if manifest != nil {
		for _, a := range manifest.Artifacts {
			if a.Team != "" {
				teams[a.Name] = a.Team
			}
		}
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || e.Name() == storage.IndexFile || e.Name() == storage.ManifestFile {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, File{
			Name:    e.Name(),
			Team:    teamOf(e.Name(), teams),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	byExt := lo.GroupBy(files, func(f File) string { return extOf(f.Name) })

	page := &Page{
		Title:       "Spielpläne",
		GeneratedAt: now,
		Total:       len(files),
	}
	for _, ext := range orderExts(lo.Keys(byExt)) {
		page.Sections = append(page.Sections, Section{
			Ext:   ext,
			Title: sectionTitle(ext),
			Teams: groupTeams(byExt[ext]),
		})
	}

	return page, nil
}

// Render writes page as HTML.
func Render(w io.Writer, page *Page) error {
	if err := tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("rendering index: %w", err)
	}
	return nil
}

// Generate builds the listing of the storage directory and writes it to
// index.html there.
func Generate(s *storage.Storage, now time.Time) (*Page, error) {
	manifest, err := s.LoadManifest()
	if err != nil {
		return nil, err
	}

	page, err := Build(s.Dir(), manifest, now)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := Render(&buf, page); err != nil {
		return nil, err
	}
	if err := os.WriteFile(s.Path(storage.IndexFile), buf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("writing index: %w", err)
	}

	return page, nil
}

func teamOf(name string, manifest map[string]string) string {
	if team, ok := manifest[name]; ok {
		return team
	}
	if parsed, ok := storage.ParseFileName(name); ok {
		return strings.ReplaceAll(parsed.Team, "_", " ")
	}
	return UnknownTeam
}

func extOf(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// orderExts puts the known extensions first, then the rest alphabetically
// with extensionless files last.
func orderExts(exts []string) []string {
	rank := func(ext string) int {
		for i, known := range sectionOrder {
			if ext == known {
				return i
			}
		}
		if ext == "" {
			return len(sectionOrder) + 1
		}
		return len(sectionOrder)
	}

	sort.Slice(exts, func(i, j int) bool {
		ri, rj := rank(exts[i]), rank(exts[j])
		if ri != rj {
			return ri < rj
		}
		return exts[i] < exts[j]
	})
	return exts
}

func sectionTitle(ext string) string {
	if ext == "" {
		return "Sonstige"
	}
	return cases.Upper(language.German).String(ext)
}

// groupTeams groups files by team, teams alphabetically with UnknownTeam
// last, files by name.
func groupTeams(files []File) []TeamFiles {
	byTeam := lo.GroupBy(files, func(f File) string { return f.Team })

	names := lo.Keys(byTeam)
	sort.Slice(names, func(i, j int) bool {
		if names[i] == UnknownTeam {
			return false
		}
		if names[j] == UnknownTeam {
			return true
		}
		return names[i] < names[j]
	})

	out := make([]TeamFiles, 0, len(names))
	for _, name := range names {
		fs := byTeam[name]
		sort.Slice(fs, func(i, j int) bool { return fs[i].Name < fs[j].Name })
		out = append(out, TeamFiles{Team: name, Files: fs})
	}
	return out
}
