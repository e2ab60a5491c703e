package calendar

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/pfrederiksen/spielplan/internal/match"
)

// DefaultDuration is the event length used when Options.Duration is zero.
const DefaultDuration = 2 * time.Hour

const maxLineOctets = 75

// uidNamespace scopes the deterministic event UIDs.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/pfrederiksen/spielplan"))

// Options controls calendar generation.
type Options struct {
	Name     string         // X-WR-CALNAME, omitted when empty
	Location *time.Location // zone of the kickoff times, UTC when nil
	Duration time.Duration
	Now      func() time.Time // DTSTAMP source
}

// GenerateICS generates an iCalendar document with one VEVENT per record that
// has a valid kickoff date and time. It returns the document and the number of
// records that were skipped.
func GenerateICS(records []match.Record, opts Options) (string, int) {
	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}
	duration := opts.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	stamp := formatICSTime(now())

	var ics strings.Builder
	writeLine(&ics, "BEGIN:VCALENDAR")
	writeLine(&ics, "VERSION:2.0")
	writeLine(&ics, "PRODID:-//spielplan//Spielplan Export//DE")
	writeLine(&ics, "CALSCALE:GREGORIAN")
	writeLine(&ics, "METHOD:PUBLISH")
	if opts.Name != "" {
		writeLine(&ics, "X-WR-CALNAME:"+escapeICS(opts.Name))
	}

	skipped := 0
	for _, rec := range records {
		start, ok := rec.Kickoff(loc)
		if !ok {
			skipped++
			continue
		}

		writeLine(&ics, "BEGIN:VEVENT")
		writeLine(&ics, "UID:"+EventUID(rec))
		writeLine(&ics, "DTSTAMP:"+stamp)
		writeLine(&ics, "DTSTART:"+formatICSTime(start))
		writeLine(&ics, "DTEND:"+formatICSTime(start.Add(duration)))
		writeLine(&ics, "SUMMARY:"+escapeICS(rec.Pairing()))
		writeLine(&ics, "DESCRIPTION:"+escapeICS(description(rec)))
		if rec.Competition != "" {
			writeLine(&ics, "CATEGORIES:"+escapeICS(rec.Competition))
		}
		if rec.PrePublished {
			writeLine(&ics, "STATUS:TENTATIVE")
		} else {
			writeLine(&ics, "STATUS:CONFIRMED")
		}
		writeLine(&ics, "TRANSP:OPAQUE")
		writeLine(&ics, "END:VEVENT")
	}

	writeLine(&ics, "END:VCALENDAR")
	return ics.String(), skipped
}

// EventUID returns a stable UID for rec, scoped to rec.Team so a match listed
// for two teams stays two events in a combined calendar. Within a team the
// match ID identifies the event, otherwise the kickoff and pairing do.
func EventUID(rec match.Record) string {
	key := rec.MatchID
	if key == "" {
		key = strings.Join([]string{rec.Date, rec.Time, rec.Home, rec.Away}, "|")
	}
	return uuid.NewSHA1(uidNamespace, []byte(rec.Team+"|"+key)).String() + "@spielplan"
}

func description(rec match.Record) string {
	var lines []string
	if rec.Team != "" {
		lines = append(lines, "Team: "+rec.Team)
	}
	if rec.Competition != "" {
		comp := rec.Competition
		if rec.CompetitionType != "" {
			comp = fmt.Sprintf("%s (%s)", comp, rec.CompetitionType)
		}
		lines = append(lines, "Wettbewerb: "+comp)
	}
	if rec.Result != "" {
		lines = append(lines, "Ergebnis: "+rec.Result)
	}
	return strings.Join(lines, "\n")
}

// formatICSTime formats a time.Time as an iCalendar UTC datetime string
func formatICSTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

// escapeICS escapes special characters for iCalendar text values
func escapeICS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, ";", "\\;")
	s = strings.ReplaceAll(s, "\r\n", "\\n")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// writeLine writes a content line terminated by CRLF, folding it so that no
// physical line exceeds 75 octets. Folds never split a UTF-8 sequence.
func writeLine(b *strings.Builder, line string) {
	limit := maxLineOctets
	for len(line) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(line[cut]) {
			cut--
		}
		b.WriteString(line[:cut])
		b.WriteString("\r\n ")
		line = line[cut:]
		// the leading space counts toward the limit
		limit = maxLineOctets - 1
	}
	b.WriteString(line)
	b.WriteString("\r\n")
}
