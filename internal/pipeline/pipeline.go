package pipeline

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pfrederiksen/spielplan/internal/calendar"
	"github.com/pfrederiksen/spielplan/internal/config"
	"github.com/pfrederiksen/spielplan/internal/export"
	"github.com/pfrederiksen/spielplan/internal/grouping"
	"github.com/pfrederiksen/spielplan/internal/index"
	"github.com/pfrederiksen/spielplan/internal/logger"
	"github.com/pfrederiksen/spielplan/internal/match"
	"github.com/pfrederiksen/spielplan/internal/scraper"
	"github.com/pfrederiksen/spielplan/internal/storage"
)

// Metric names
const (
	MetricTeamsOK     = "teams_ok"
	MetricTeamsFailed = "teams_failed"
	MetricRecords     = "records"
	MetricFiles       = "files_written"
	MetricICSSkipped  = "ics_skipped"
	MetricFetch       = "fetch"
	MetricRun         = "run"

	MetricTeamsConfigured = "teams_configured"
)

// Source fetches the raw match list of one team.
type Source interface {
	FetchTeamMatches(ctx context.Context, teamID string) (*scraper.TeamMatches, error)
}

// Runner executes one export run.
type Runner struct {
	cfg     *config.Config
	source  Source
	log     *logger.Logger
	metrics *logger.Metrics
	now     func() time.Time
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger. The package default logger is used otherwise.
func WithLogger(l *logger.Logger) Option {
	return func(r *Runner) { r.log = l }
}

// WithMetrics sets the metrics tracker. The package default tracker is used otherwise.
func WithMetrics(m *logger.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithClock sets the clock used for file name timestamps and calendar stamps.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) { r.now = now }
}

// New creates a Runner for cfg that reads matches from source.
func New(cfg *config.Config, source Source, opts ...Option) *Runner {
	r := &Runner{
		cfg:     cfg,
		source:  source,
		log:     logger.Default(),
		metrics: logger.DefaultMetrics(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Summary describes the outcome of a run.
type Summary struct {
	TeamsOK     int
	TeamsFailed []string // IDs of teams whose fetch failed
	Records     int
	Files       []string
}

// run holds the state of one Run call.
type run struct {
	*Runner
	store   *storage.Storage
	stamp   time.Time
	summary *Summary

	// team parts of file names already used in this run
	fileTeams map[string]bool
}

// Run fetches every configured team, writes the per-team and combined
// exports, saves the manifest and regenerates index.html.
//
// A failed fetch is logged and the team skipped. Any other error aborts the run.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	started := time.Now()

	store, err := storage.New(r.cfg.OutputDir)
	if err != nil {
		return nil, err
	}

	rn := &run{
		Runner:    r,
		store:     store,
		stamp:     r.now(),
		summary:   &Summary{},
		fileTeams: make(map[string]bool),
	}
	r.metrics.SetGauge(MetricTeamsConfigured, float64(len(r.cfg.Teams)))

	// the combined export keeps its configured name, teams colliding with it are renamed
	combinedName := strings.ReplaceAll(r.cfg.Export.CombinedName, "_", " ")
	combinedFile := rn.claimFileTeam(combinedName)

	var combined []match.Record
	for _, team := range r.cfg.Teams {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		records, name, ok := rn.fetch(ctx, team)
		if !ok {
			continue
		}

		if err := rn.exportAll(name, rn.claimFileTeam(name), records); err != nil {
			return nil, fmt.Errorf("exporting team %s: %w", name, err)
		}
		combined = append(combined, records...)
	}

	if len(combined) > 0 {
		if err := rn.exportAll(combinedName, combinedFile, combined); err != nil {
			return nil, fmt.Errorf("exporting combined schedule: %w", err)
		}
	} else {
		r.log.Warn("No matches fetched, skipping combined export", logger.Fields{
			"teams": len(r.cfg.Teams),
		})
	}

	for _, a := range store.Artifacts() {
		rn.summary.Files = append(rn.summary.Files, a.Name)
	}

	if _, err := store.SaveManifest(); err != nil {
		return nil, err
	}
	if _, err := index.Generate(store, r.now()); err != nil {
		return nil, err
	}

	r.metrics.RecordTiming(MetricRun, time.Since(started))
	r.log.Info("Run complete", logger.Fields{
		"teams_ok":     rn.summary.TeamsOK,
		"teams_failed": len(rn.summary.TeamsFailed),
		"records":      rn.summary.Records,
		"files":        len(rn.summary.Files),
		"output_dir":   store.Dir(),
		"metrics":      r.metrics.GetSnapshot(),
	})

	return rn.summary, nil
}

// fetch loads one team. ok is false when the fetch failed and the team should be skipped.
func (rn *run) fetch(ctx context.Context, team config.Team) ([]match.Record, string, bool) {
	started := time.Now()
	tm, err := rn.source.FetchTeamMatches(ctx, team.ID)
	rn.metrics.RecordTiming(MetricFetch, time.Since(started))

	if err != nil {
		rn.log.Error("Failed to fetch team", logger.Fields{
			"team_id":   team.ID,
			"team_name": team.Name,
		}, err)
		rn.metrics.IncrCounter(MetricTeamsFailed)
		rn.summary.TeamsFailed = append(rn.summary.TeamsFailed, team.ID)
		return nil, "", false
	}

	name := displayName(team, tm.Team)
	records := match.FromRawList(tm.Matches, name)

	rn.log.Info("Fetched team", logger.Fields{
		"team_id":   team.ID,
		"team_name": name,
		"matches":   len(records),
	})
	rn.metrics.IncrCounter(MetricTeamsOK)
	rn.metrics.AddCounter(MetricRecords, int64(len(records)))
	rn.summary.TeamsOK++
	rn.summary.Records += len(records)

	return records, name, true
}

// displayName prefers the configured name, then the API name, then the ID.
func displayName(team config.Team, api match.Team) string {
	if name := strings.TrimSpace(team.Name); name != "" {
		return name
	}
	if name := strings.TrimSpace(api.Name); name != "" {
		return name
	}
	return team.ID
}

// claimFileTeam returns the file name part for team, unique within the run.
// A name that sanitizes to an already used part gets a numeric suffix.
func (rn *run) claimFileTeam(team string) string {
	base := storage.SanitizeName(team)
	name := base
	for n := 2; rn.fileTeams[name]; n++ {
		name = fmt.Sprintf("%s_%d", base, n)
	}
	rn.fileTeams[name] = true

	if name != base {
		rn.log.Warn("Team file name already in use, adding suffix", logger.Fields{
			"team":      team,
			"file_team": name,
		})
	}
	return name
}

// exportAll writes the CSV, XLSX, ICS and Jira exports for one team.
// fileTeam is the team part of the file names, team the display name.
func (rn *run) exportAll(team, fileTeam string, records []match.Record) error {
	exp := rn.cfg.Export

	delim := []rune(exp.CSVDelimiter)[0]
	if err := rn.write(exp.Prefix, team, fileTeam, "csv", storage.KindCSV, func(w io.Writer) error {
		return export.WriteCSV(w, records, export.CSVOptions{Delimiter: delim})
	}); err != nil {
		return err
	}

	if err := rn.write(exp.Prefix, team, fileTeam, "xlsx", storage.KindXLSX, func(w io.Writer) error {
		return export.WriteXLSX(w, records)
	}); err != nil {
		return err
	}

	ics, skipped := calendar.GenerateICS(records, calendar.Options{
		Name:     team,
		Location: rn.cfg.Location(),
		Duration: exp.EventDuration,
		Now:      rn.now,
	})
	if skipped > 0 {
		rn.log.Info("Matches without kickoff left out of calendar", logger.Fields{
			"team":    team,
			"skipped": skipped,
		})
		rn.metrics.AddCounter(MetricICSSkipped, int64(skipped))
	}
	if err := rn.write(exp.Prefix, team, fileTeam, "ics", storage.KindICS, func(w io.Writer) error {
		_, err := io.WriteString(w, ics)
		return err
	}); err != nil {
		return err
	}

	groups := grouping.Group(records, exp.JiraStartID)
	for _, g := range groups {
		if g.Undated() {
			rn.log.Debug("Undated matches grouped separately", logger.Fields{
				"team":  team,
				"count": len(g.Items),
			})
		}
	}
	return rn.write(exp.JiraPrefix, team, fileTeam, "csv", storage.KindJira, func(w io.Writer) error {
		return export.WriteJiraCSV(w, groups)
	})
}

// write creates one output file through fn and records it in the manifest.
func (rn *run) write(prefix, team, fileTeam, ext, kind string, fn func(io.Writer) error) (err error) {
	name := storage.FileName(prefix, fileTeam, rn.stamp, ext)

	f, err := rn.store.Create(name)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", name, cerr)
		}
	}()

	if err := fn(f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}

	rn.store.Record(storage.Artifact{
		Name:      name,
		Team:      team,
		Kind:      kind,
		CreatedAt: rn.stamp,
	})
	rn.metrics.IncrCounter(MetricFiles)

	rn.log.Debug("Wrote file", logger.Fields{
		"file": name,
		"kind": kind,
	})
	return nil
}
