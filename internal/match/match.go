package match

import "strings"

// Localized renderings of the pre-published flag.
const (
	Yes = "Ja"
	No  = "Nein"
)

// Raw is one match object as returned by the federation API.
// Absent JSON fields decode to their zero value.
type Raw struct {
	MatchID         string `json:"matchId"`
	CompetitionName string `json:"competitionName"`
	CompetitionType string `json:"competitionType"`
	KickoffDate     string `json:"kickoffDate"`
	KickoffTime     string `json:"kickoffTime"`
	HomeTeamName    string `json:"homeTeamName"`
	GuestTeamName   string `json:"guestTeamName"`
	Result          string `json:"result"`
	PrePublished    bool   `json:"prePublished"`
}

// Team describes the team a match list belongs to.
type Team struct {
	ID       string `json:"teamPermanentId"`
	Name     string `json:"teamName"`
	ClubName string `json:"clubName"`
}

// Record is one normalized fixture row.
type Record struct {
	MatchID         string `json:"match_id,omitempty"`
	Team            string `json:"team"`
	Competition     string `json:"competition"`
	CompetitionType string `json:"competition_type"`
	Date            string `json:"date"` // DD.MM.YYYY or empty
	Time            string `json:"time"` // HH:MM or empty
	Home            string `json:"home"`
	Away            string `json:"away"`
	Result          string `json:"result"`
	PrePublished    bool   `json:"pre_published"`
}

// FromRaw maps a raw API match to a Record for the given team display name.
// Nothing is validated; malformed values are carried into the record as they are.
func FromRaw(raw Raw, team string) Record {
	return Record{
		MatchID:         strings.TrimSpace(raw.MatchID),
		Team:            strings.TrimSpace(team),
		Competition:     strings.TrimSpace(raw.CompetitionName),
		CompetitionType: strings.TrimSpace(raw.CompetitionType),
		Date:            strings.TrimSpace(raw.KickoffDate),
		Time:            strings.TrimSpace(raw.KickoffTime),
		Home:            strings.TrimSpace(raw.HomeTeamName),
		Away:            strings.TrimSpace(raw.GuestTeamName),
		Result:          strings.TrimSpace(raw.Result),
		PrePublished:    raw.PrePublished,
	}
}

// FromRawList maps every raw match of one team, keeping API order.
func FromRawList(raws []Raw, team string) []Record {
	records := make([]Record, 0, len(raws))
	for _, raw := range raws {
		records = append(records, FromRaw(raw, team))
	}
	return records
}

// PrePublishedLabel renders the pre-published flag as Yes or No.
func (r Record) PrePublishedLabel() string {
	if r.PrePublished {
		return Yes
	}
	return No
}

// Pairing returns "Home - Away".
func (r Record) Pairing() string {
	return r.Home + " - " + r.Away
}

// Columns is the fixed export schema shared by the CSV and XLSX writers.
var Columns = []string{
	"Team",
	"Wettbewerb",
	"Wettbewerbstyp",
	"Datum",
	"Uhrzeit",
	"Heim",
	"Gast",
	"Ergebnis",
	"Vorveröffentlicht",
}

// Row returns the record's values in Columns order.
func (r Record) Row() []string {
	return []string{
		r.Team,
		r.Competition,
		r.CompetitionType,
		r.Date,
		r.Time,
		r.Home,
		r.Away,
		r.Result,
		r.PrePublishedLabel(),
	}
}
