package analytics

import (
	"math"
	"reflect"
	"testing"
	"time"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func avgLine(pts float64, fgm, fga float64) StatLine {
	return StatLine{PTS: pts, REB: 5, AST: 3, STL: 1, BLK: 1, ThreePM: 2, TO: 2,
		Shooting: Shooting{FGM: fgm, FGA: fga, FTM: 2, FTA: 3}, Minutes: 30}
}

func fixedProjector(t *testing.T, day time.Time) *Projector {
	t.Helper()
	p := NewProjector(3)
	p.Now = func() time.Time { return day }
	return p
}

// ---------------------------------------------------------------------------
// ProjectTeam
// ---------------------------------------------------------------------------

func TestProjectTeam_InjuryGate(t *testing.T) {
	schedule := ProSchedule{7: {100: true}}
	side := MatchupSide{
		TeamID:   1,
		TeamName: "A",
		Lineup: []RosterPlayer{
			{PlayerID: 1, Name: "Out Guy", ProTeamID: 7, InjuryStatus: "OUT", Averages: avgLine(30, 10, 20)},
			{PlayerID: 2, Name: "DTD Guy", ProTeamID: 7, InjuryStatus: "DAY_TO_DAY", Averages: avgLine(20, 8, 16)},
		},
	}

	got := ProjectTeam(side, []int{100}, schedule)
	if got.Projected[PTS] != 20 {
		t.Errorf("projected PTS = %v, want 20 (only the day-to-day player)", got.Projected[PTS])
	}
	if got.RemainingGames != 1 {
		t.Errorf("RemainingGames = %d, want 1", got.RemainingGames)
	}
}

func TestProjectTeam_OutIsCaseInsensitive(t *testing.T) {
	p := RosterPlayer{InjuryStatus: " out "}
	if !p.Out() {
		t.Error("lower-case out should be treated as out")
	}
	for _, status := range []string{"", "QUESTIONABLE", "DAY_TO_DAY", "ACTIVE", "unknown"} {
		if (RosterPlayer{InjuryStatus: status}).Out() {
			t.Errorf("status %q treated as out", status)
		}
	}
}

func TestProjectTeam_OnlyGameDays(t *testing.T) {
	schedule := ProSchedule{
		7: {100: true, 101: true},
		9: {101: true},
	}
	side := MatchupSide{
		Accumulated: StatLine{PTS: 50},
		Lineup: []RosterPlayer{
			{PlayerID: 1, ProTeamID: 7, Averages: avgLine(10, 4, 8)},
			{PlayerID: 2, ProTeamID: 9, Averages: avgLine(5, 2, 4)},
			{PlayerID: 3, ProTeamID: 0, Averages: avgLine(40, 10, 10)},
			{PlayerID: 4, ProTeamID: 11, Averages: avgLine(40, 10, 10)},
			{PlayerID: 5, ProTeamID: 7},
		},
	}

	got := ProjectTeam(side, []int{100, 101}, schedule)
	// 50 + 10*2 + 5*1
	if got.Projected[PTS] != 75 {
		t.Errorf("projected PTS = %v, want 75", got.Projected[PTS])
	}
	if got.Current[PTS] != 50 {
		t.Errorf("current PTS = %v, want 50", got.Current[PTS])
	}
	if got.RemainingGames != 3 {
		t.Errorf("RemainingGames = %d, want 3", got.RemainingGames)
	}
}

func TestProjectTeam_PercentagesFromMakesAndAttempts(t *testing.T) {
	schedule := ProSchedule{7: {100: true}}
	side := MatchupSide{
		Accumulated: StatLine{Shooting: Shooting{FGM: 10, FGA: 25, FTM: 4, FTA: 5}},
		Lineup:      []RosterPlayer{{PlayerID: 1, ProTeamID: 7, Averages: avgLine(10, 5, 10)}},
	}

	got := ProjectTeam(side, []int{100}, schedule)
	if want := 15.0 / 35.0; math.Abs(got.Projected[FGPct]-want) > 1e-9 {
		t.Errorf("FG%% = %v, want %v", got.Projected[FGPct], want)
	}
	if want := 6.0 / 8.0; math.Abs(got.Projected[FTPct]-want) > 1e-9 {
		t.Errorf("FT%% = %v, want %v", got.Projected[FTPct], want)
	}
}

func TestProjectTeam_SettledRatiosWithoutAttempts(t *testing.T) {
	settled := CategoryTotals{PTS: 50, FGPct: 0.48, FTPct: 0.8}

	idle := ProjectTeam(MatchupSide{Accumulated: StatLine{PTS: 50}, Settled: settled}, []int{100}, ProSchedule{})
	if idle.Current[FGPct] != 0.48 || idle.Current[FTPct] != 0.8 {
		t.Errorf("current FG%%/FT%% = %v/%v, want 0.48/0.8", idle.Current[FGPct], idle.Current[FTPct])
	}
	if idle.Projected[FGPct] != 0.48 || idle.Projected[FTPct] != 0.8 {
		t.Errorf("projected FG%%/FT%% = %v/%v, want settled values when nothing is added",
			idle.Projected[FGPct], idle.Projected[FTPct])
	}

	// Known attempts win over the settled ratio.
	withAttempts := MatchupSide{
		Accumulated: StatLine{Shooting: Shooting{FGM: 10, FGA: 20, FTM: 3, FTA: 4}},
		Settled:     settled,
	}
	got := ProjectTeam(withAttempts, nil, nil)
	if got.Current[FGPct] != 0.5 || got.Current[FTPct] != 0.75 {
		t.Errorf("current FG%%/FT%% = %v/%v, want 0.5/0.75", got.Current[FGPct], got.Current[FTPct])
	}
}

func TestUnprojected_KeepsSettledRatios(t *testing.T) {
	home := MatchupSide{TeamID: 1, TeamName: "Home", Settled: CategoryTotals{FGPct: 0.48, FTPct: 0.8}}
	away := MatchupSide{TeamID: 2, TeamName: "Away", Settled: CategoryTotals{FGPct: 0.45, FTPct: 0.7}}

	pred := Unprojected(5, home, away)
	if pred.HomeWins != 2 || pred.Ties != 7 {
		t.Errorf("score = %d-%d-%d, want home winning both percentages", pred.HomeWins, pred.AwayWins, pred.Ties)
	}
}

func TestProjectTeam_NilScheduleContributesNothing(t *testing.T) {
	side := MatchupSide{
		Accumulated: StatLine{PTS: 12},
		Lineup:      []RosterPlayer{{PlayerID: 1, ProTeamID: 7, Averages: avgLine(10, 5, 10)}},
	}
	got := ProjectTeam(side, []int{100, 101}, nil)
	if got.Projected[PTS] != 12 {
		t.Errorf("projected PTS = %v, want 12", got.Projected[PTS])
	}
}

// ---------------------------------------------------------------------------
// RemainingPeriods
// ---------------------------------------------------------------------------

func TestRemainingPeriods_FromMatchupList(t *testing.T) {
	p := NewProjector(3)
	got := p.RemainingPeriods([]int{10, 11, 12, 13, 14, 15, 16}, 13, 150)
	if want := []int{13, 14, 15, 16}; !reflect.DeepEqual(got, want) {
		t.Errorf("RemainingPeriods = %v, want %v", got, want)
	}
}

func TestRemainingPeriods_StaleListUsesCalendar(t *testing.T) {
	friday := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	p := fixedProjector(t, friday)

	got := p.RemainingPeriods([]int{15, 16, 17, 18, 19, 20, 21}, 30, 150)
	if want := []int{30, 31, 32}; !reflect.DeepEqual(got, want) {
		t.Errorf("RemainingPeriods = %v, want %v", got, want)
	}
}

func TestRemainingPeriods_PastFinalPeriod(t *testing.T) {
	p := fixedProjector(t, time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC))
	got := p.RemainingPeriods([]int{1, 2, 3}, 151, 150)
	if len(got) != 0 {
		t.Errorf("RemainingPeriods = %v, want none", got)
	}
}

func TestRemainingPeriods_CalendarFallback(t *testing.T) {
	monday := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	sunday := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		day     time.Time
		current int
		final   int
		want    []int
	}{
		{"monday is capped", monday, 40, 150, []int{40, 41, 42}},
		{"friday runs through sunday", friday, 40, 150, []int{40, 41, 42}},
		{"sunday is one day", sunday, 40, 150, []int{40}},
		{"final period caps", monday, 40, 41, []int{40, 41}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := fixedProjector(t, tt.day)
			got := p.RemainingPeriods(nil, tt.current, tt.final)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("RemainingPeriods = %v, want %v", got, tt.want)
			}
			if len(got) > p.MaxCalendarDays {
				t.Errorf("got %d days, limit %d", len(got), p.MaxCalendarDays)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// Predict
// ---------------------------------------------------------------------------

func TestPredict(t *testing.T) {
	schedule := ProSchedule{7: {100: true}, 9: {100: true}}
	home := MatchupSide{
		TeamID:      1,
		TeamName:    "Home",
		Accumulated: avgLine(100, 40, 80),
		Lineup:      []RosterPlayer{{PlayerID: 1, ProTeamID: 7, Averages: avgLine(25, 9, 18)}},
	}
	away := MatchupSide{
		TeamID:      2,
		TeamName:    "Away",
		Accumulated: StatLine{PTS: 60, TO: 1},
		Lineup:      []RosterPlayer{{PlayerID: 2, ProTeamID: 9, InjuryStatus: "OUT", Averages: avgLine(40, 15, 20)}},
	}

	p := NewProjector(3)
	pred := p.Predict(5, home, away, []int{100}, schedule)

	if !pred.Projected {
		t.Error("Projected = false")
	}
	if pred.Home.Projected[PTS] != 125 || pred.Away.Projected[PTS] != 60 {
		t.Errorf("PTS = %v vs %v, want 125 vs 60", pred.Home.Projected[PTS], pred.Away.Projected[PTS])
	}
	if pred.HomeWins+pred.AwayWins+pred.Ties != len(Categories) {
		t.Errorf("scores do not cover all categories: %d-%d-%d", pred.HomeWins, pred.AwayWins, pred.Ties)
	}
	// Away only wins TO.
	if pred.HomeWins != 8 || pred.AwayWins != 1 {
		t.Errorf("score = %d-%d, want 8-1", pred.HomeWins, pred.AwayWins)
	}
	if pred.PredictedWinner != "Home" {
		t.Errorf("PredictedWinner = %q, want Home", pred.PredictedWinner)
	}
	if pred.Confidence < 50 || pred.Confidence > 95 {
		t.Errorf("Confidence = %v, want within [50, 95]", pred.Confidence)
	}
}

func TestUnprojected(t *testing.T) {
	home := MatchupSide{TeamID: 1, TeamName: "Home", Accumulated: StatLine{PTS: 10},
		Lineup: []RosterPlayer{{PlayerID: 1, ProTeamID: 7, Averages: avgLine(25, 9, 18)}}}
	away := MatchupSide{TeamID: 2, TeamName: "Away", Accumulated: StatLine{PTS: 10}}

	pred := Unprojected(5, home, away)
	if pred.Projected {
		t.Error("Projected = true for accumulated-only prediction")
	}
	if pred.Home.Projected[PTS] != 10 {
		t.Errorf("home PTS = %v, want 10", pred.Home.Projected[PTS])
	}
	if pred.Ties != len(Categories) || pred.PredictedWinner != "" {
		t.Errorf("identical lines should tie everywhere, got %d ties winner %q", pred.Ties, pred.PredictedWinner)
	}
	if pred.Confidence != 50 {
		t.Errorf("Confidence = %v, want 50", pred.Confidence)
	}
}

func TestConfidenceClamped(t *testing.T) {
	tests := []struct {
		edge   int
		margin float64
		want   float64
	}{
		{0, 0, 50},
		{9, 1, 95},
		{-9, 1, 95},
		{3, 0.1, 71.7},
	}
	for _, tt := range tests {
		if got := Confidence(tt.edge, tt.margin); got != tt.want {
			t.Errorf("Confidence(%d, %v) = %v, want %v", tt.edge, tt.margin, got, tt.want)
		}
	}
}
