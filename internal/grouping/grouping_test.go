package grouping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pfrederiksen/spielplan/internal/match"
)

func rec(home, date, clock string) match.Record {
	return match.Record{Home: home, Away: "Gast", Date: date, Time: clock}
}

func homes(g TaskGroup) []string {
	out := make([]string, 0, len(g.Items))
	for _, it := range g.Items {
		out = append(out, it.Record.Home)
	}
	return out
}

func keys(groups []TaskGroup) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Key)
	}
	return out
}

func TestKey(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"15.03.2025", "2025-03"},
		{"1.1.2026", "2026-01"},
		{"31.12.2024", "2024-12"},
		{"", UndatedKey},
		{"15.13.2025", UndatedKey},
		{"15.03", UndatedKey},
		{"xx.03.2025", UndatedKey},
		{"15.März.2025", UndatedKey},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			assert.Equal(t, tt.want, Key(match.Record{Date: tt.date}))
		})
	}
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "März 2025", Label("2025-03"))
	assert.Equal(t, "Januar 2026", Label("2026-01"))
	assert.Equal(t, "Dezember 2024", Label("2024-12"))
	assert.Equal(t, UndatedLabel, Label(UndatedKey))
	assert.Equal(t, "garbage", Label("garbage"))
}

func TestGroup_Example(t *testing.T) {
	records := []match.Record{
		rec("fifteenth", "15.03.2025", ""),
		rec("undated", "", ""),
		rec("first", "01.03.2025", ""),
	}

	groups := Group(records, 1)

	require.Len(t, groups, 2)
	assert.Equal(t, "2025-03", groups[0].Key)
	assert.Equal(t, []string{"first", "fifteenth"}, homes(groups[0]))
	assert.Equal(t, UndatedKey, groups[1].Key)
	assert.True(t, groups[1].Undated())
	assert.Equal(t, []string{"undated"}, homes(groups[1]))
}

func TestGroup_OrderIndependentOfInput(t *testing.T) {
	records := []match.Record{
		rec("a", "", ""),
		rec("b", "03.11.2025", ""),
		rec("c", "bogus", ""),
		rec("d", "20.01.2026", ""),
		rec("e", "09.09.2025", ""),
		rec("f", "10.11.2025", ""),
	}

	want := []string{"2025-09", "2025-11", "2026-01", UndatedKey}

	assert.Equal(t, want, keys(Group(records, 1)))

	reversed := make([]match.Record, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	assert.Equal(t, want, keys(Group(reversed, 1)))
}

func TestGroup_ChildOrder(t *testing.T) {
	records := []match.Record{
		rec("evening", "15.03.2025", "19:00"),
		rec("noon", "15.03.2025", "12:00"),
		rec("no-time", "15.03.2025", ""),
		rec("earlier-day", "14.03.2025", "20:00"),
		rec("tie-1", "16.03.2025", "10:00"),
		rec("tie-2", "16.03.2025", "10:00"),
	}

	groups := Group(records, 1)

	require.Len(t, groups, 1)
	assert.Equal(t,
		[]string{"earlier-day", "no-time", "noon", "evening", "tie-1", "tie-2"},
		homes(groups[0]))
}

func TestGroup_UndatedSortedByTime(t *testing.T) {
	records := []match.Record{
		rec("x", "", "18:00"),
		rec("y", "kaputt", ""),
		rec("z", "", "09:00"),
	}

	groups := Group(records, 1)

	require.Len(t, groups, 1)
	// undated records compare on time only
	assert.Equal(t, []string{"y", "z", "x"}, homes(groups[0]))
}

func TestGroup_IDs(t *testing.T) {
	records := []match.Record{
		rec("apr", "05.04.2025", ""),
		rec("mar-2", "20.03.2025", ""),
		rec("none", "", ""),
		rec("mar-1", "01.03.2025", ""),
	}

	groups := Group(records, 1)
	require.Len(t, groups, 3)

	// groups first
	assert.Equal(t, 1, groups[0].ID)
	assert.Equal(t, 2, groups[1].ID)
	assert.Equal(t, 3, groups[2].ID)

	// then children, group by group
	assert.Equal(t, 4, groups[0].Items[0].ID)
	assert.Equal(t, 5, groups[0].Items[1].ID)
	assert.Equal(t, 6, groups[1].Items[0].ID)
	assert.Equal(t, 7, groups[2].Items[0].ID)

	var all []int
	for _, g := range groups {
		all = append(all, g.ID)
	}
	for _, g := range groups {
		for _, it := range g.Items {
			all = append(all, it.ID)
		}
	}
	for i := 1; i < len(all); i++ {
		assert.Greater(t, all[i], all[i-1], "ids must strictly increase")
	}
}

func TestGroup_StartID(t *testing.T) {
	groups := Group([]match.Record{rec("a", "01.01.2025", "")}, 100)

	require.Len(t, groups, 1)
	assert.Equal(t, 100, groups[0].ID)
	assert.Equal(t, 101, groups[0].Items[0].ID)
}

func TestGroup_EveryRecordOnce(t *testing.T) {
	records := []match.Record{
		rec("1", "01.01.2025", ""),
		rec("2", "", ""),
		rec("3", "01.02.2025", ""),
		rec("4", "99.99.9999", ""),
		rec("5", "01.01.2025", "08:00"),
	}

	groups := Group(records, 1)

	assert.Equal(t, len(records), Count(groups))
	seen := make(map[string]int)
	for _, g := range groups {
		for _, it := range g.Items {
			seen[it.Record.Home]++
		}
	}
	for _, r := range records {
		assert.Equal(t, 1, seen[r.Home], "record %s", r.Home)
	}
}

func TestGroup_Empty(t *testing.T) {
	assert.Empty(t, Group(nil, 1))
	assert.Equal(t, 0, Count(nil))
}
