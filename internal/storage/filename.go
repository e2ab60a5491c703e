package storage

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// TimestampLayout is the time format embedded in file names.
const TimestampLayout = "2006-01-02_15-04-05"

var (
	umlauts = strings.NewReplacer(
		"ä", "ae", "ö", "oe", "ü", "ue",
		"Ä", "Ae", "Ö", "Oe", "Ü", "Ue",
		"ß", "ss",
	)
	unsafeRun = regexp.MustCompile(`[^A-Za-z0-9-]+`)

	fileNamePattern = regexp.MustCompile(`^([^_]+)_(.+)_(\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2})\.([A-Za-z0-9]+)$`)
)

// SanitizeName turns a team name into a file name component: umlauts are
// transliterated, other accents dropped and every run of characters outside
// [A-Za-z0-9-] becomes a single underscore.
func SanitizeName(name string) string {
	s := umlauts.Replace(name)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if stripped, _, err := transform.String(t, s); err == nil {
		s = stripped
	}

	s = unsafeRun.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return "Team"
	}
	return s
}

// FileName builds <prefix>_<team>_<timestamp>.<ext>.
func FileName(prefix, team string, ts time.Time, ext string) string {
	return prefix + "_" + SanitizeName(team) + "_" + ts.Format(TimestampLayout) + "." + strings.TrimPrefix(ext, ".")
}

// ParsedName holds the parts of a file name that follows the convention.
type ParsedName struct {
	Prefix    string
	Team      string // sanitized form, underscores kept
	Timestamp time.Time
	Ext       string
}

// ParseFileName splits a conventional file name. It reports false for any
// name that does not match.
func ParseFileName(name string) (ParsedName, bool) {
	m := fileNamePattern.FindStringSubmatch(name)
	if m == nil {
		return ParsedName{}, false
	}

	ts, err := time.Parse(TimestampLayout, m[3])
	if err != nil {
		return ParsedName{}, false
	}

	return ParsedName{
		Prefix:    m[1],
		Team:      m[2],
		Timestamp: ts,
		Ext:       strings.ToLower(m[4]),
	}, true
}
