package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pfrederiksen/spielplan/internal/grouping"
	"github.com/pfrederiksen/spielplan/internal/match"
)

const (
	IssueTypeParent = "Task"
	IssueTypeChild  = "Sub-task"
)

// JiraColumns is the header of the hierarchical import CSV.
var JiraColumns = []string{
	"Summary",
	"Description",
	"Due Date",
	"Issue Type",
	"Issue ID",
	"Parent ID",
}

// JiraRows flattens groups into import rows: every group as a parent task
// first, then every match as a sub-task pointing at its group's ID.
func JiraRows(groups []grouping.TaskGroup) [][]string {
	rows := make([][]string, 0, len(groups)+grouping.Count(groups))

	for _, g := range groups {
		rows = append(rows, []string{
			g.Label,
			fmt.Sprintf("%d Spiele", len(g.Items)),
			lastDueDate(g),
			IssueTypeParent,
			strconv.Itoa(g.ID),
			"",
		})
	}

	for _, g := range groups {
		for _, it := range g.Items {
			rows = append(rows, []string{
				it.Record.Pairing(),
				describe(it.Record),
				dueDate(it.Record),
				IssueTypeChild,
				strconv.Itoa(it.ID),
				strconv.Itoa(g.ID),
			})
		}
	}

	return rows
}

// WriteJiraCSV writes the hierarchical import CSV for groups.
func WriteJiraCSV(w io.Writer, groups []grouping.TaskGroup) error {
	return writeBOMCSV(w, ',', JiraColumns, JiraRows(groups))
}

func dueDate(rec match.Record) string {
	d, ok := match.ParseDate(rec.Date)
	if !ok {
		return ""
	}
	return d.ISO()
}

// lastDueDate is the date of the group's last dated match.
func lastDueDate(g grouping.TaskGroup) string {
	for i := len(g.Items) - 1; i >= 0; i-- {
		if due := dueDate(g.Items[i].Record); due != "" {
			return due
		}
	}
	return ""
}

func describe(rec match.Record) string {
	lines := []string{
		"Team: " + rec.Team,
		"Wettbewerb: " + rec.Competition,
	}
	if rec.CompetitionType != "" {
		lines = append(lines, "Wettbewerbstyp: "+rec.CompetitionType)
	}
	if rec.Date != "" || rec.Time != "" {
		lines = append(lines, "Anstoß: "+strings.TrimSpace(rec.Date+" "+rec.Time))
	}
	if rec.Result != "" {
		lines = append(lines, "Ergebnis: "+rec.Result)
	}
	if rec.PrePublished {
		lines = append(lines, "Vorveröffentlicht: "+match.Yes)
	}
	return strings.Join(lines, "\n")
}
