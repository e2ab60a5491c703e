package scraper

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pfrederiksen/spielplan/internal/match"
)

var (
	// "Sa, 15.03.2025" and similar cells carry the date somewhere inside
	pageDatePattern = regexp.MustCompile(`\d{1,2}\.\d{1,2}\.\d{4}`)
	pageTimePattern = regexp.MustCompile(`\d{1,2}:\d{2}`)
)

// parseSchedulePage extracts matches from a team schedule page.
//
// Rows are read from "table.spielplan tbody tr" with the cells
// date, time, competition, home, guest, result. Match ID, competition type and
// the pre-published marker come from data attributes on the row.
func parseSchedulePage(r io.Reader) (*TeamMatches, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tm := &TeamMatches{Matches: make([]match.Raw, 0)}

	if header := doc.Find("[data-team-id]").First(); header.Length() > 0 {
		tm.Team.ID, _ = header.Attr("data-team-id")
		tm.Team.Name = cellText(header.Find(".team-name").First())
		tm.Team.ClubName = cellText(header.Find(".club-name").First())
	}
	if tm.Team.Name == "" {
		tm.Team.Name = cellText(doc.Find("h1").First())
	}

	doc.Find("table.spielplan tbody tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 5 {
			return
		}

		raw := match.Raw{
			KickoffDate:     pageDatePattern.FindString(cellText(cells.Eq(0))),
			KickoffTime:     pageTimePattern.FindString(cellText(cells.Eq(1))),
			CompetitionName: cellText(cells.Eq(2)),
			HomeTeamName:    cellText(cells.Eq(3)),
			GuestTeamName:   cellText(cells.Eq(4)),
		}
		if cells.Length() > 5 {
			raw.Result = cellText(cells.Eq(5))
		}

		raw.MatchID, _ = row.Attr("data-match-id")
		raw.CompetitionType, _ = row.Attr("data-competition-type")
		if v, ok := row.Attr("data-prepublished"); ok {
			raw.PrePublished = strings.EqualFold(v, "true")
		}

		tm.Matches = append(tm.Matches, raw)
	})

	return tm, nil
}

// cellText returns the text of sel with runs of whitespace collapsed.
func cellText(sel *goquery.Selection) string {
	return strings.Join(strings.Fields(sel.Text()), " ")
}
