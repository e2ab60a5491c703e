package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pfrederiksen/spielplan/internal/logger"
)

const widgetBody = `{
  "state": "OK",
  "message": null,
  "data": {
    "team": {"teamPermanentId": "016PBQB78C000000VV0AG80NVV8OQVTB", "teamName": "SV Lerchenau U13", "clubName": "SV Lerchenau"},
    "matches": [
      {"matchId": "m1", "competitionName": "Kreisliga", "competitionType": "Meisterschaft",
       "kickoffDate": "15.03.2025", "kickoffTime": "15:00", "homeTeamName": "SV Lerchenau",
       "guestTeamName": "FC Schwabing", "result": "2:1", "prePublished": false},
      {"matchId": "m2", "competitionName": "Kreispokal", "competitionType": "Pokal",
       "kickoffDate": "22.03.2025", "kickoffTime": null, "homeTeamName": "TSV Milbertshofen",
       "guestTeamName": "SV Lerchenau", "prePublished": true}
    ]
  }
}`

func TestFetchTeamMatches_Widget(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		statusCode  int
		wantError   bool
		wantStatus  int
		wantMatches int
	}{
		{
			name:        "successful fetch",
			body:        widgetBody,
			statusCode:  http.StatusOK,
			wantMatches: 2,
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "API state error",
			body:       `{"state":"ERROR","message":"team unknown","data":{}}`,
			statusCode: http.StatusOK,
			wantError:  true,
		},
		{
			name:       "malformed JSON",
			body:       `{"state":`,
			statusCode: http.StatusOK,
			wantError:  true,
		},
		{
			name:        "no matches",
			body:        `{"state":"OK","data":{"team":{"teamName":"U7"},"matches":null}}`,
			statusCode:  http.StatusOK,
			wantMatches: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if ua := r.Header.Get("User-Agent"); !strings.Contains(ua, "spielplan") {
					t.Errorf("User-Agent = %q, should contain 'spielplan'", ua)
				}
				if want := "/api/service/widget/v1/team/016PBQB78C000000VV0AG80NVV8OQVTB/matches"; r.URL.Path != want {
					t.Errorf("path = %q, want %q", r.URL.Path, want)
				}
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			s := New(Options{BaseURL: server.URL})
			tm, err := s.FetchTeamMatches(context.Background(), "016PBQB78C000000VV0AG80NVV8OQVTB")

			if tt.wantError {
				if err == nil {
					t.Fatal("FetchTeamMatches() expected error, got nil")
				}
				if tt.wantStatus != 0 {
					var se *StatusError
					if !errors.As(err, &se) {
						t.Fatalf("error %v is not a *StatusError", err)
					}
					if se.StatusCode != tt.wantStatus {
						t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.wantStatus)
					}
				}
				return
			}

			if err != nil {
				t.Fatalf("FetchTeamMatches() unexpected error: %v", err)
			}
			if len(tm.Matches) != tt.wantMatches {
				t.Errorf("FetchTeamMatches() returned %d matches, want %d", len(tm.Matches), tt.wantMatches)
			}
			if tm.Matches == nil {
				t.Error("Matches should never be nil")
			}
		})
	}
}

func TestFetchTeamMatches_WidgetFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(widgetBody))
	}))
	defer server.Close()

	tm, err := New(Options{BaseURL: server.URL + "/"}).FetchTeamMatches(context.Background(), "016PBQB78C000000VV0AG80NVV8OQVTB")
	if err != nil {
		t.Fatalf("FetchTeamMatches() error: %v", err)
	}

	if tm.Team.Name != "SV Lerchenau U13" {
		t.Errorf("Team.Name = %q", tm.Team.Name)
	}
	if tm.Team.ClubName != "SV Lerchenau" {
		t.Errorf("Team.ClubName = %q", tm.Team.ClubName)
	}

	first := tm.Matches[0]
	if first.MatchID != "m1" || first.KickoffDate != "15.03.2025" || first.KickoffTime != "15:00" || first.Result != "2:1" {
		t.Errorf("first match = %+v", first)
	}

	second := tm.Matches[1]
	if second.KickoffTime != "" {
		t.Errorf("null kickoffTime = %q, want empty", second.KickoffTime)
	}
	if second.Result != "" {
		t.Errorf("missing result = %q, want empty", second.Result)
	}
	if !second.PrePublished {
		t.Error("second match should be pre-published")
	}
	if second.GuestTeamName != "SV Lerchenau" {
		t.Errorf("GuestTeamName = %q", second.GuestTeamName)
	}
}

func TestFetchTeamMatches_EmptyID(t *testing.T) {
	s := New(Options{BaseURL: "http://127.0.0.1:0"})
	if _, err := s.FetchTeamMatches(context.Background(), "  "); err == nil {
		t.Error("expected error for empty team id")
	}
}

func TestFetchTeamMatches_UnknownSource(t *testing.T) {
	s := New(Options{BaseURL: "http://127.0.0.1:0", Source: "ftp"})
	if _, err := s.FetchTeamMatches(context.Background(), "abc"); err == nil {
		t.Error("expected error for unknown source")
	}
}

func TestFetchTeamMatches_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(widgetBody))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New(Options{BaseURL: server.URL}).FetchTeamMatches(ctx, "abc"); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestFetchTeamMatches_RateLimited(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []time.Time
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, time.Now())
		mu.Unlock()
		w.Write([]byte(widgetBody))
	}))
	defer server.Close()

	s := New(Options{BaseURL: server.URL, RequestsPerSecond: 10})
	for i := 0; i < 3; i++ {
		if _, err := s.FetchTeamMatches(context.Background(), "abc"); err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	// burst of 1 at 10 rps: three calls need at least ~200ms
	if elapsed := calls[2].Sub(calls[0]); elapsed < 150*time.Millisecond {
		t.Errorf("three calls took %v, expected rate limiting", elapsed)
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Options{})

	if s.client == nil {
		t.Fatal("client is nil")
	}
	if s.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", s.client.Timeout, Timeout)
	}
	if s.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", s.baseURL, DefaultBaseURL)
	}
	if s.source != SourceWidget {
		t.Errorf("source = %q, want %q", s.source, SourceWidget)
	}
}

func TestStatusError(t *testing.T) {
	err := &StatusError{StatusCode: 503, URL: "https://example.test/x"}
	if !strings.Contains(err.Error(), "503") || !strings.Contains(err.Error(), "https://example.test/x") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func counter(name string) int64 {
	return logger.DefaultMetrics().GetSnapshot()["counters"].(map[string]int64)[name]
}

func TestFetchTeamMatches_RecordsMetrics(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/bad/") {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(widgetBody))
	}))
	defer server.Close()

	requests, errs := counter(MetricRequests), counter(MetricRequestErrors)

	s := New(Options{BaseURL: server.URL, RequestsPerSecond: 100})
	if _, err := s.FetchTeamMatches(context.Background(), "good"); err != nil {
		t.Fatalf("FetchTeamMatches() error: %v", err)
	}
	if _, err := s.FetchTeamMatches(context.Background(), "bad"); err == nil {
		t.Fatal("FetchTeamMatches() expected error for HTTP 500")
	}

	if got := counter(MetricRequests) - requests; got != 2 {
		t.Errorf("%s grew by %d, want 2", MetricRequests, got)
	}
	if got := counter(MetricRequestErrors) - errs; got != 1 {
		t.Errorf("%s grew by %d, want 1", MetricRequestErrors, got)
	}
	timings := logger.DefaultMetrics().GetSnapshot()["timings"].(map[string]map[string]interface{})
	if _, ok := timings[MetricRequestTiming]; !ok {
		t.Errorf("timing %s not recorded", MetricRequestTiming)
	}
}
