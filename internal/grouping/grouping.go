package grouping

import (
	"fmt"
	"sort"

	"github.com/pfrederiksen/spielplan/internal/match"
)

const (
	UndatedKey   = "ohne-datum"
	UndatedLabel = "Ohne Datum"
)

var monthNames = [...]string{
	"Januar", "Februar", "März", "April", "Mai", "Juni",
	"Juli", "August", "September", "Oktober", "November", "Dezember",
}

// Item is one record inside a group together with its synthetic ID.
type Item struct {
	ID     int
	Record match.Record
}

// TaskGroup is a synthetic parent entry for one month (or the undated bucket).
type TaskGroup struct {
	ID    int
	Key   string // YYYY-MM or UndatedKey
	Label string
	Items []Item
}

// Undated reports whether g is the bucket for records without a usable date.
func (g TaskGroup) Undated() bool {
	return g.Key == UndatedKey
}

// Key returns the group key of a record: its YYYY-MM month, or UndatedKey
// when the date is empty or not a valid DD.MM.YYYY date.
func Key(rec match.Record) string {
	d, ok := match.ParseDate(rec.Date)
	if !ok {
		return UndatedKey
	}
	return d.MonthKey()
}

// Label returns the human-readable name of a group key, e.g. "März 2025".
func Label(key string) string {
	if key == UndatedKey {
		return UndatedLabel
	}
	var year, month int
	if _, err := fmt.Sscanf(key, "%d-%d", &year, &month); err != nil || month < 1 || month > 12 {
		return key
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// Group partitions records into month groups.
//
// Groups are ordered by key ascending with the undated group last. Records in a
// group are ordered by kickoff ascending; equal kickoffs keep input order.
// IDs start at startID and are handed out to all groups first, then to the
// children group by group, so every ID in the result is unique and increasing.
func Group(records []match.Record, startID int) []TaskGroup {
	buckets := make(map[string][]match.Record)
	for _, rec := range records {
		key := Key(rec)
		buckets[key] = append(buckets[key], rec)
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == UndatedKey {
			return false
		}
		if keys[j] == UndatedKey {
			return true
		}
		return keys[i] < keys[j]
	})

	next := startID
	groups := make([]TaskGroup, 0, len(keys))
	for _, key := range keys {
		groups = append(groups, TaskGroup{
			ID:    next,
			Key:   key,
			Label: Label(key),
		})
		next++
	}

	for i := range groups {
		recs := buckets[groups[i].Key]
		match.SortByKickoff(recs)

		items := make([]Item, 0, len(recs))
		for _, rec := range recs {
			items = append(items, Item{ID: next, Record: rec})
			next++
		}
		groups[i].Items = items
	}

	return groups
}

// Count returns the number of records across all groups.
func Count(groups []TaskGroup) int {
	n := 0
	for _, g := range groups {
		n += len(g.Items)
	}
	return n
}
