package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
	"github.com/omarshaarawi/hoopsbot/internal/service"
)

// MockService implements Service for handler tests.
type MockService struct {
	err         error
	weekArgs    []int
	refreshSeen bool
	team        string
	opponent    string
	exports     int
	panicOnWeek bool
}

func (m *MockService) ListWeeks(context.Context) ([]int, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []int{1, 2, 3}, nil
}

func (m *MockService) GetWeek(_ context.Context, n int, refresh bool) (*analytics.WeekSnapshot, error) {
	if m.panicOnWeek {
		panic("boom")
	}
	m.weekArgs = append(m.weekArgs, n)
	m.refreshSeen = refresh
	if m.err != nil {
		return nil, m.err
	}
	return &analytics.WeekSnapshot{MatchupPeriod: n, Teams: []analytics.TeamWeekResult{}}, nil
}

func (m *MockService) GetLeagueSummary(context.Context) (*models.LeagueSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.LeagueSummary{LeagueName: "Hoops League", CurrentMatchupPeriod: 3}, nil
}

func (m *MockService) GetSeasonReport(_ context.Context, refresh bool) (*analytics.SeasonReport, error) {
	m.refreshSeen = refresh
	if m.err != nil {
		return nil, m.err
	}
	return &analytics.SeasonReport{WeeksAnalyzed: []int{1, 2}}, nil
}

func (m *MockService) GetUpcomingPreview(context.Context) (*models.UpcomingPreview, error) {
	return &models.UpcomingPreview{MatchupPeriod: 4}, m.err
}

func (m *MockService) GetPredictions(_ context.Context, team, opponent string) (*models.PredictionsReport, error) {
	m.team, m.opponent = team, opponent
	return &models.PredictionsReport{MatchupPeriod: 3}, m.err
}

func (m *MockService) GetRosterTotals(context.Context) ([]models.RosterTotals, error) {
	return []models.RosterTotals{{TeamID: 1, TeamName: "Dunkers"}}, m.err
}

func (m *MockService) GetPlayers(context.Context) (*models.PlayersExport, error) {
	return &models.PlayersExport{Season: 2026}, m.err
}

func (m *MockService) Compare(_ context.Context, t1, t2 string) (*models.TeamComparison, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeamComparison{
		MatchupPeriod: 2,
		Team1:         analytics.TeamWeekResult{TeamWeekTotals: analytics.TeamWeekTotals{TeamName: t1}},
		Team2:         analytics.TeamWeekResult{TeamWeekTotals: analytics.TeamWeekTotals{TeamName: t2}},
	}, nil
}

func (m *MockService) ChatContext(context.Context) models.ChatContext {
	return models.ChatContext{LeagueSummary: &models.LeagueSummary{LeagueName: "Hoops League"}}
}

func (m *MockService) Export(context.Context) (*models.ExportResult, error) {
	m.exports++
	return &models.ExportResult{MatchupPeriods: []int{1, 2}}, m.err
}

type mockChat struct {
	query string
	data  any
}

func (c *mockChat) Answer(_ context.Context, query string, data any) string {
	c.query, c.data = query, data
	return "Dunkers are on top."
}

func newTestServer(svc *MockService, chat *mockChat) http.Handler {
	mcp := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	return New(svc, chat, Options{Port: "0", CORSOrigins: []string{"*"}, MCP: mcp}).Handler()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

func TestHealth(t *testing.T) {
	w := doRequest(t, newTestServer(&MockService{}, &mockChat{}), http.MethodGet, "/api/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["status"] != "ok" || resp["timestamp"] == nil {
		t.Errorf("Unexpected health response %v", resp)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("Expected a generated request id")
	}
}

func TestRequestIDPropagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	newTestServer(&MockService{}, &mockChat{}).ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != "abc-123" {
		t.Errorf("Expected request id echoed, got %q", got)
	}
}

func TestGetWeek(t *testing.T) {
	svc := &MockService{}
	h := newTestServer(svc, &mockChat{})

	w := doRequest(t, h, http.MethodGet, "/api/week/2?refresh=true", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var week analytics.WeekSnapshot
	if err := json.NewDecoder(w.Body).Decode(&week); err != nil {
		t.Fatalf("Failed to decode week: %v", err)
	}
	if week.MatchupPeriod != 2 || !svc.refreshSeen {
		t.Errorf("Expected week 2 with refresh, got %d refresh=%v", week.MatchupPeriod, svc.refreshSeen)
	}

	w = doRequest(t, h, http.MethodGet, "/api/week/abc", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for a non-numeric week, got %d", w.Code)
	}
}

func TestServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not found", &service.Error{Kind: service.ErrDataNotFound, Op: "GetWeek", Err: errors.New("no data for matchup period 9")}, http.StatusNotFound},
		{"upstream", &service.Error{Kind: service.ErrUpstreamUnavailable, Op: "GetWeek", Err: errors.New("dial tcp: refused")}, http.StatusServiceUnavailable},
		{"invalid", &service.Error{Kind: service.ErrInvalidInput, Op: "Compare", Err: errors.New("same team")}, http.StatusBadRequest},
		{"wrapped not found", fmt.Errorf("outer: %w", &service.Error{Kind: service.ErrDataNotFound, Op: "GetWeek"}), http.StatusNotFound},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(&MockService{err: tt.err}, &mockChat{})
			w := doRequest(t, h, http.MethodGet, "/api/week/9", "")

			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := decodeError(t, w)
			if resp.Code != tt.wantStatus || resp.Error != http.StatusText(tt.wantStatus) {
				t.Errorf("Unexpected error body %+v", resp)
			}
		})
	}
}

func TestErrorMessages(t *testing.T) {
	h := newTestServer(&MockService{err: &service.Error{
		Kind: service.ErrDataNotFound, Op: "Compare", Err: errors.New("one or both teams not found"),
	}}, &mockChat{})

	w := doRequest(t, h, http.MethodGet, "/api/compare/Dunkers/Nobody", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", w.Code)
	}
	if resp := decodeError(t, w); resp.Message != "one or both teams not found" {
		t.Errorf("Expected the cause as message, got %q", resp.Message)
	}

	h = newTestServer(&MockService{err: errors.New("secret path /var/data")}, &mockChat{})
	w = doRequest(t, h, http.MethodGet, "/api/league/summary", "")
	if resp := decodeError(t, w); strings.Contains(resp.Message, "/var/data") {
		t.Errorf("Expected internal details hidden, got %q", resp.Message)
	}
}

func TestCompare(t *testing.T) {
	h := newTestServer(&MockService{}, &mockChat{})
	w := doRequest(t, h, http.MethodGet, "/api/compare/Dunkers/Breakers", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	for _, key := range []string{"team1", "team2", "week"} {
		if _, ok := resp[key]; !ok {
			t.Errorf("Expected %q in compare response", key)
		}
	}
}

func TestPredictionsFilter(t *testing.T) {
	svc := &MockService{}
	h := newTestServer(svc, &mockChat{})

	w := doRequest(t, h, http.MethodGet, "/api/predictions?team=Dunkers&opponent=Breakers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if svc.team != "Dunkers" || svc.opponent != "Breakers" {
		t.Errorf("Expected filters passed through, got %q %q", svc.team, svc.opponent)
	}
}

func TestChatbot(t *testing.T) {
	chat := &mockChat{}
	h := newTestServer(&MockService{}, chat)

	w := doRequest(t, h, http.MethodPost, "/api/chatbot", `{"query": "who is winning?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["response"] != "Dunkers are on top." {
		t.Errorf("Unexpected chat response %q", resp["response"])
	}
	if chat.query != "who is winning?" {
		t.Errorf("Expected query forwarded, got %q", chat.query)
	}
	if ctx, ok := chat.data.(models.ChatContext); !ok || ctx.LeagueSummary == nil {
		t.Errorf("Expected stored league context passed to chat, got %#v", chat.data)
	}

	for _, body := range []string{`{"query": ""}`, `{}`, `not json`} {
		w := doRequest(t, h, http.MethodPost, "/api/chatbot", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400 for %s, got %d", body, w.Code)
		}
		if resp := decodeError(t, w); resp.Message != "No query provided" {
			t.Errorf("Unexpected message %q", resp.Message)
		}
	}
}

func TestExport(t *testing.T) {
	svc := &MockService{}
	h := newTestServer(svc, &mockChat{})

	if w := doRequest(t, h, http.MethodGet, "/api/export", ""); w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405 for GET export, got %d", w.Code)
	}
	w := doRequest(t, h, http.MethodPost, "/api/export", "")
	if w.Code != http.StatusOK || svc.exports != 1 {
		t.Errorf("Expected one export, got status %d exports %d", w.Code, svc.exports)
	}
}

func TestRecoverer(t *testing.T) {
	h := newTestServer(&MockService{panicOnWeek: true}, &mockChat{})
	w := doRequest(t, h, http.MethodGet, "/api/week/1", "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("Expected status 500 after a panic, got %d", w.Code)
	}
}

func TestMCPMounted(t *testing.T) {
	h := newTestServer(&MockService{}, &mockChat{})
	w := doRequest(t, h, http.MethodPost, "/mcp", `{}`)
	if w.Code != http.StatusTeapot {
		t.Errorf("Expected the MCP handler to serve /mcp, got %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/weeks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	newTestServer(&MockService{}, &mockChat{}).ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Expected CORS headers on preflight")
	}
}
