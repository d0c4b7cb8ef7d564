package espn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/config"
)

const leagueFixture = `{
  "id": 12345,
  "seasonId": 2026,
  "scoringPeriodId": 17,
  "status": {"currentMatchupPeriod": 3, "firstScoringPeriod": 1, "finalScoringPeriod": 160, "isActive": true},
  "settings": {
    "name": "Hoops League",
    "scheduleSettings": {
      "matchupPeriodCount": 20,
      "matchupPeriods": {"1": [1,2,3,4,5,6,7], "3": [17,15,16], "bad": [9]}
    }
  },
  "teams": [
    {
      "id": 1, "abbrev": "DNK", "name": "Dunkers", "logo": "//g.espncdn.com/logo.png",
      "record": {"overall": {"wins": 1, "losses": 1, "ties": 0, "pointsFor": 10}},
      "roster": {"entries": [
        {"playerId": 101, "lineupSlotId": 0, "playerPoolEntry": {"id": 101, "player": {
          "id": 101, "fullName": "Guard One", "defaultPositionId": 1, "proTeamId": 13, "injuryStatus": "ACTIVE",
          "stats": [
            {"seasonId": 2026, "statSourceId": 0, "statSplitTypeId": 0, "stats": {"0": 200, "42": 10}, "averageStats": {"0": 20, "13": 8, "14": 16, "42": 1}},
            {"seasonId": 2026, "statSourceId": 1, "statSplitTypeId": 0, "averageStats": {"0": 99}}
          ]}}}
      ]}
    },
    {
      "id": 2, "abbrev": "BRK", "location": "Glass", "nickname": "Breakers", "logo": "breakers.png",
      "record": {"overall": {"wins": 2, "losses": 0, "ties": 0, "pointsFor": 8}}
    }
  ]
}`

const scoreboardFixture = `{
  "schedule": [
    {
      "matchupPeriodId": 3, "winner": "UNDECIDED",
      "home": {"teamId": 1, "cumulativeScore": {"wins": 5, "losses": 3, "ties": 1, "scoreByStat": {
        "0": {"score": 300}, "13": {"score": 110}, "14": {"score": 220}, "19": {"score": 0.9},
        "20": {"score": 0.75}, "11": {"score": 40}
      }},
      "rosterForCurrentScoringPeriod": {"entries": [
        {"playerId": 101, "lineupSlotId": 0, "playerPoolEntry": {"player": {"id": 101, "fullName": "Guard One", "proTeamId": 13,
          "stats": [{"statSourceId": 0, "statSplitTypeId": 5, "scoringPeriodId": 17, "stats": {"0": 31, "40": 36}}]}}},
        {"playerId": 102, "lineupSlotId": 12, "playerPoolEntry": {"player": {"id": 102, "fullName": "Bench Guy", "proTeamId": 2,
          "stats": [{"statSourceId": 0, "statSplitTypeId": 5, "scoringPeriodId": 17, "stats": {"0": 12}}]}}}
      ]}},
      "away": {"teamId": 2, "cumulativeScore": {"wins": 3, "losses": 5, "ties": 1}}
    },
    {"matchupPeriodId": 4, "home": {"teamId": 3}, "away": {"teamId": 4}}
  ]
}`

const proScheduleFixture = `{
  "settings": {"proTeams": [
    {"id": 13, "abbrev": "LAL", "proGamesByScoringPeriod": {"17": [{"id": 1}], "18": [], "19": [{"id": 2}]}}
  ]}
}`

func newTestAPI(t *testing.T, handler http.HandlerFunc) *API {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.ESPNAPI{Year: "2026", LeagueID: "12345", BaseURL: server.URL})
	return NewAPI(client)
}

func fixtureHandler(t *testing.T, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Cookie") != "" {
			t.Errorf("Expected no cookie without credentials, got %q", r.Header.Get("Cookie"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestGetLeagueMetadata(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2026/segments/0/leagues/12345" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		views := r.URL.Query()["view"]
		if len(views) != 2 {
			t.Errorf("Expected two views, got %v", views)
		}
		w.Write([]byte(leagueFixture))
	})

	meta, err := api.GetLeagueMetadata(context.Background())
	if err != nil {
		t.Fatalf("GetLeagueMetadata() error = %v", err)
	}
	if meta.Name != "Hoops League" || meta.CurrentMatchupPeriod != 3 || meta.CurrentScoringPeriod != 17 {
		t.Errorf("Unexpected metadata: %+v", meta)
	}
	if got := meta.ScoringPeriods(3); len(got) != 3 || got[0] != 15 || got[2] != 17 {
		t.Errorf("Expected sorted scoring periods [15 16 17], got %v", got)
	}
	if len(meta.MatchupPeriods) != 2 {
		t.Errorf("Expected non-numeric keys skipped, got %v", meta.MatchupPeriods)
	}
}

func TestGetTeams(t *testing.T) {
	api := newTestAPI(t, fixtureHandler(t, leagueFixture))

	teams, standings, err := api.GetTeams(context.Background())
	if err != nil {
		t.Fatalf("GetTeams() error = %v", err)
	}
	if len(teams) != 2 {
		t.Fatalf("Expected 2 teams, got %d", len(teams))
	}

	dunkers := teams[0]
	if dunkers.LogoURL != "https://g.espncdn.com/logo.png" {
		t.Errorf("Expected protocol-relative logo normalized, got %q", dunkers.LogoURL)
	}
	if teams[1].Name != "Glass Breakers" {
		t.Errorf("Expected location+nickname fallback, got %q", teams[1].Name)
	}

	p := dunkers.Roster[0]
	if p.Position != "PG" || p.ProTeam != "LAL" || p.LineupSlot != "PG" || p.FantasyTeam != "Dunkers" {
		t.Errorf("Unexpected player mapping: %+v", p)
	}
	if p.Averages.PTS != 20 || p.Averages.Shooting.FGA != 16 {
		t.Errorf("Expected actual season averages, got %+v", p.Averages)
	}
	if p.Totals.PTS != 200 || p.Totals.Games != 10 {
		t.Errorf("Expected season totals, got %+v", p.Totals)
	}

	if standings[0].TeamID != 2 || standings[0].Rank != 1 {
		t.Errorf("Expected undefeated team first, got %+v", standings[0])
	}
	if standings[1].WinPercentage != 50 {
		t.Errorf("Expected 50.0 win percentage, got %v", standings[1].WinPercentage)
	}
}

func TestGetBoxScores(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		filter := r.Header.Get("x-fantasy-filter")
		if !strings.Contains(filter, `"filterMatchupPeriodIds":{"value":[3]}`) {
			t.Errorf("Unexpected filter header %q", filter)
		}
		if got := r.URL.Query().Get("scoringPeriodId"); got != "17" {
			t.Errorf("Expected scoringPeriodId 17, got %q", got)
		}
		w.Write([]byte(scoreboardFixture))
	})

	boxes, err := api.GetBoxScores(context.Background(), 3, 17)
	if err != nil {
		t.Fatalf("GetBoxScores() error = %v", err)
	}
	if len(boxes) != 1 {
		t.Fatalf("Expected other periods filtered out, got %d box scores", len(boxes))
	}

	home := boxes[0].Home
	if home.Totals[analytics.PTS] != 300 || home.Totals[analytics.TO] != 40 {
		t.Errorf("Unexpected counting totals: %v", home.Totals)
	}
	if home.Totals[analytics.FGPct] != 0.5 {
		t.Errorf("Expected FG%% from makes/attempts, got %v", home.Totals[analytics.FGPct])
	}
	if home.Totals[analytics.FTPct] != 0.75 {
		t.Errorf("Expected FT%% from ratio score, got %v", home.Totals[analytics.FTPct])
	}
	if home.Wins != 5 || home.Losses != 3 || home.Ties != 1 {
		t.Errorf("Unexpected category record %d-%d-%d", home.Wins, home.Losses, home.Ties)
	}
	if boxes[0].Winner != "UNDECIDED" {
		t.Errorf("Expected UNDECIDED matchup, got %q", boxes[0].Winner)
	}

	if len(home.Lineup) != 2 || !home.Lineup[0].Active || home.Lineup[1].Active {
		t.Fatalf("Unexpected lineup activity: %+v", home.Lineup)
	}
	line := home.LineupLine()
	if line.PTS != 31 || line.Minutes != 36 {
		t.Errorf("Expected only the active player's line, got %+v", line)
	}
}

func TestGetProSchedule(t *testing.T) {
	api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/seasons/2026" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(proScheduleFixture))
	})

	schedule, err := api.GetProSchedule(context.Background())
	if err != nil {
		t.Fatalf("GetProSchedule() error = %v", err)
	}
	if !schedule.HasGame(13, 17) || !schedule.HasGame(13, 19) {
		t.Error("Expected game days 17 and 19")
	}
	if schedule.HasGame(13, 18) {
		t.Error("Expected an empty game list to mean no game")
	}
}

func TestGet_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		check  func(error) bool
	}{
		{"unauthorized", http.StatusUnauthorized, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{"forbidden", http.StatusForbidden, func(err error) bool { return errors.Is(err, ErrUnauthorized) }},
		{"server error", http.StatusBadGateway, func(err error) bool {
			var se *StatusError
			return errors.As(err, &se) && se.StatusCode == http.StatusBadGateway
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newTestAPI(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})
			_, _, err := api.GetTeams(context.Background())
			if err == nil || !tt.check(err) {
				t.Errorf("Unexpected error %v", err)
			}
		})
	}
}

func TestGet_SendsCookies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Cookie"); got != "SWID={abc}; espn_s2=s2" {
			t.Errorf("Unexpected cookie %q", got)
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(config.ESPNAPI{Year: "2026", LeagueID: "1", SWID: "{abc}", ESPNS2: "s2", BaseURL: server.URL})
	if _, err := NewAPI(client).GetSchedule(context.Background()); err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
}

func TestNormalizeLogoURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"//g.espncdn.com/a.png", "https://g.espncdn.com/a.png"},
		{"/i/teamlogos/nba/500/lal.png", "https://a.espncdn.com/i/teamlogos/nba/500/lal.png"},
		{"lal.png", "https://a.espncdn.com/i/teamlogos/nba/500/lal.png"},
	}
	for _, tt := range tests {
		if got := NormalizeLogoURL(tt.in); got != tt.want {
			t.Errorf("NormalizeLogoURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsActiveSlot(t *testing.T) {
	if !IsActiveSlot(11) || IsActiveSlot(12) || IsActiveSlot(13) {
		t.Error("Expected UT active, bench and IR inactive")
	}
}
