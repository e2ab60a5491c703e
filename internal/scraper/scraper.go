package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pfrederiksen/spielplan/internal/logger"
	"github.com/pfrederiksen/spielplan/internal/match"
)

const (
	DefaultBaseURL = "https://widget-prod.bfv.de"
	UserAgent      = "spielplan/1.0 (github.com/pfrederiksen/spielplan)"
	Timeout        = 30 * time.Second

	SourceWidget = "widget"
	SourcePage   = "page"

	// Metric names recorded on the default metrics tracker
	MetricRequests      = "http_requests"
	MetricRequestErrors = "http_errors"
	MetricRequestTiming = "http_request"

	widgetMatchesPath = "/api/service/widget/v1/team/%s/matches"
	schedulePagePath  = "/mannschaften/%s/spielplan"
)

// StatusError is returned when the federation answers with a non-200 status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d from %s", e.StatusCode, e.URL)
}

// TeamMatches is the result of one "list matches for a team" call.
type TeamMatches struct {
	Team    match.Team
	Matches []match.Raw
}

// Options configures a Scraper. Zero values fall back to package defaults.
type Options struct {
	BaseURL           string
	Source            string
	Timeout           time.Duration
	RequestsPerSecond float64
	HTTPClient        *http.Client
}

// Scraper fetches match lists from the widget API or the schedule pages.
type Scraper struct {
	client  *http.Client
	baseURL string
	source  string
	limiter *rate.Limiter
}

// New creates a Scraper.
func New(opts Options) *Scraper {
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = Timeout
		}
		client = &http.Client{Timeout: timeout}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	source := opts.Source
	if source == "" {
		source = SourceWidget
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Scraper{
		client:  client,
		baseURL: baseURL,
		source:  source,
		limiter: rate.NewLimiter(limit, 1),
	}
}

// widgetResponse is the envelope of the widget API.
type widgetResponse struct {
	State   string  `json:"state"`
	Message *string `json:"message"`
	Data    struct {
		Team    match.Team  `json:"team"`
		Matches []match.Raw `json:"matches"`
	} `json:"data"`
}

// FetchTeamMatches lists the matches of the team with the given permanent ID.
func (s *Scraper) FetchTeamMatches(ctx context.Context, teamID string) (*TeamMatches, error) {
	teamID = strings.TrimSpace(teamID)
	if teamID == "" {
		return nil, fmt.Errorf("empty team id")
	}

	switch s.source {
	case SourceWidget:
		return s.fetchWidget(ctx, teamID)
	case SourcePage:
		return s.fetchPage(ctx, teamID)
	default:
		return nil, fmt.Errorf("unknown source: %s", s.source)
	}
}

func (s *Scraper) fetchWidget(ctx context.Context, teamID string) (*TeamMatches, error) {
	body, err := s.get(ctx, fmt.Sprintf(widgetMatchesPath, url.PathEscape(teamID)), "application/json")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return parseWidget(body)
}

func parseWidget(r io.Reader) (*TeamMatches, error) {
	var resp widgetResponse
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	if !strings.EqualFold(resp.State, "OK") {
		msg := ""
		if resp.Message != nil {
			msg = *resp.Message
		}
		return nil, fmt.Errorf("API state %q: %s", resp.State, msg)
	}

	matches := resp.Data.Matches
	if matches == nil {
		matches = []match.Raw{}
	}
	return &TeamMatches{Team: resp.Data.Team, Matches: matches}, nil
}

func (s *Scraper) fetchPage(ctx context.Context, teamID string) (*TeamMatches, error) {
	body, err := s.get(ctx, fmt.Sprintf(schedulePagePath, url.PathEscape(teamID)), "text/html")
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tm, err := parseSchedulePage(body)
	if err != nil {
		return nil, err
	}
	if tm.Team.ID == "" {
		tm.Team.ID = teamID
	}
	return tm, nil
}

// get waits for the rate limiter and performs a GET against baseURL+path.
// The caller closes the returned body.
func (s *Scraper) get(ctx context.Context, path, accept string) (io.ReadCloser, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for rate limiter: %w", err)
	}

	reqURL := s.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", accept)

	started := time.Now()
	resp, err := s.client.Do(req)
	logger.RecordTiming(MetricRequestTiming, time.Since(started))
	logger.IncrCounter(MetricRequests)
	if err != nil {
		logger.IncrCounter(MetricRequestErrors)
		return nil, fmt.Errorf("fetching %s: %w", reqURL, err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.IncrCounter(MetricRequestErrors)
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: reqURL}
	}

	return resp.Body, nil
}
