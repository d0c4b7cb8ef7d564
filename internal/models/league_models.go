package models

import (
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
)

type LeagueMetadata struct {
	LeagueID             int           `json:"league_id"`
	Name                 string        `json:"name"`
	CurrentMatchupPeriod int           `json:"current_matchup_period"`
	CurrentScoringPeriod int           `json:"current_scoring_period"`
	SeasonID             int           `json:"season"`
	FirstScoringPeriod   int           `json:"first_scoring_period"`
	FinalScoringPeriod   int           `json:"final_scoring_period"`
	MatchupPeriodCount   int           `json:"matchup_period_count"`
	MatchupPeriods       map[int][]int `json:"matchup_periods"`
	IsActive             bool          `json:"is_active"`
	LastUpdated          time.Time     `json:"last_updated"`
}

// ScoringPeriods returns the scoring periods of a matchup period, if known.
func (m *LeagueMetadata) ScoringPeriods(matchupPeriod int) []int {
	if m == nil || m.MatchupPeriods == nil {
		return nil
	}
	return m.MatchupPeriods[matchupPeriod]
}

type TeamStanding struct {
	Rank          int     `json:"rank"`
	TeamID        int     `json:"team_id"`
	TeamName      string  `json:"name"`
	Abbreviation  string  `json:"abbrev"`
	LogoURL       string  `json:"logo_url"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	Ties          int     `json:"ties"`
	PointsFor     float64 `json:"points_for"`
	PointsAgainst float64 `json:"points_against"`
	WinPercentage float64 `json:"win_percentage"`
	PlayoffSeed   int     `json:"playoff_seed"`
}

func (s TeamStanding) Record() analytics.Record {
	return analytics.Record{Wins: s.Wins, Losses: s.Losses, Ties: s.Ties}
}

type Player struct {
	PlayerID      int                `json:"player_id"`
	Name          string             `json:"name"`
	Position      string             `json:"position"`
	ProTeamID     int                `json:"pro_team_id"`
	ProTeam       string             `json:"pro_team"`
	InjuryStatus  string             `json:"injury_status"`
	FantasyTeamID int                `json:"fantasy_team_id"`
	FantasyTeam   string             `json:"fantasy_team"`
	LineupSlot    string             `json:"lineup_slot"`
	Averages      analytics.StatLine `json:"averages"`
	Totals        analytics.StatLine `json:"totals"`
}

// RosterPlayer narrows the player to what the projector needs.
func (p Player) RosterPlayer() analytics.RosterPlayer {
	return analytics.RosterPlayer{
		PlayerID:     p.PlayerID,
		Name:         p.Name,
		ProTeamID:    p.ProTeamID,
		InjuryStatus: p.InjuryStatus,
		Averages:     p.Averages,
	}
}

// InLineup reports whether the player occupies an active lineup slot.
func (p Player) InLineup() bool {
	return p.LineupSlot != "BE" && p.LineupSlot != "IR"
}

type FantasyTeam struct {
	TeamID       int      `json:"team_id"`
	Name         string   `json:"name"`
	Abbreviation string   `json:"abbrev"`
	LogoURL      string   `json:"logo_url"`
	Roster       []Player `json:"roster"`
}

type LineupPlayer struct {
	PlayerID     int                `json:"player_id"`
	Name         string             `json:"name"`
	ProTeamID    int                `json:"pro_team_id"`
	InjuryStatus string             `json:"injury_status"`
	LineupSlot   string             `json:"lineup_slot"`
	Active       bool               `json:"active"`
	Line         analytics.StatLine `json:"line"`
}

type BoxScoreSide struct {
	TeamID int `json:"team_id"`
	// Totals are the provider's settled category values.
	Totals analytics.CategoryTotals `json:"totals"`
	// Line holds the counting stats and makes/attempts behind Totals.
	Line   analytics.StatLine `json:"line"`
	Wins   int                `json:"wins"`
	Losses int                `json:"losses"`
	Ties   int                `json:"ties"`
	Lineup []LineupPlayer     `json:"lineup"`
}

// LineupLine sums the active lineup's stat lines.
func (s BoxScoreSide) LineupLine() analytics.StatLine {
	var total analytics.StatLine
	for _, p := range s.Lineup {
		if p.Active {
			total.Add(p.Line)
		}
	}
	return total
}

type BoxScore struct {
	MatchupPeriod int          `json:"matchup_period"`
	ScoringPeriod int          `json:"scoring_period"`
	Winner        string       `json:"winner"`
	Home          BoxScoreSide `json:"home"`
	Away          BoxScoreSide `json:"away"`
}

// League is the cached league handle.
type League struct {
	Metadata    LeagueMetadata        `json:"metadata"`
	Teams       []FantasyTeam         `json:"teams"`
	Standings   []TeamStanding        `json:"standings"`
	Schedule    []ScheduledMatchup    `json:"schedule"`
	ProSchedule analytics.ProSchedule `json:"pro_schedule"`
	FetchedAt   time.Time             `json:"fetched_at"`
}

// ScheduledMatchup is one pairing of the league schedule.
type ScheduledMatchup struct {
	MatchupPeriod int `json:"matchup_period"`
	HomeTeamID    int `json:"home_team_id"`
	AwayTeamID    int `json:"away_team_id"`
}

func (l *League) Team(teamID int) (*FantasyTeam, bool) {
	for i := range l.Teams {
		if l.Teams[i].TeamID == teamID {
			return &l.Teams[i], true
		}
	}
	return nil, false
}

func (l *League) TeamNames() map[int]string {
	names := make(map[int]string, len(l.Teams))
	for _, t := range l.Teams {
		names[t.TeamID] = t.Name
	}
	return names
}

func (l *League) Records() map[int]analytics.Record {
	records := make(map[int]analytics.Record, len(l.Standings))
	for _, s := range l.Standings {
		records[s.TeamID] = s.Record()
	}
	return records
}

// Pairings returns the scheduled pairings of a matchup period.
func (l *League) Pairings(matchupPeriod int) []analytics.Pairing {
	var out []analytics.Pairing
	for _, m := range l.Schedule {
		if m.MatchupPeriod == matchupPeriod && m.AwayTeamID != 0 {
			out = append(out, analytics.Pairing{HomeID: m.HomeTeamID, AwayID: m.AwayTeamID})
		}
	}
	return out
}

// RemainingOpponents lists each team's opponents after the given period.
func (l *League) RemainingOpponents(afterPeriod int) map[int][]int {
	out := make(map[int][]int, len(l.Teams))
	for _, m := range l.Schedule {
		if m.MatchupPeriod <= afterPeriod || m.AwayTeamID == 0 {
			continue
		}
		out[m.HomeTeamID] = append(out[m.HomeTeamID], m.AwayTeamID)
		out[m.AwayTeamID] = append(out[m.AwayTeamID], m.HomeTeamID)
	}
	return out
}

func (l *League) Players() []Player {
	var out []Player
	for _, t := range l.Teams {
		out = append(out, t.Roster...)
	}
	return out
}

type LeagueSummary struct {
	LeagueName           string         `json:"league_name"`
	Season               int            `json:"season"`
	CurrentWeek          int            `json:"current_week"`
	CurrentMatchupPeriod int            `json:"current_matchup_period"`
	Teams                []TeamStanding `json:"teams"`
	ExportDate           time.Time      `json:"export_date"`
}

type PlayersExport struct {
	Season     int       `json:"season"`
	Players    []Player  `json:"players"`
	ExportDate time.Time `json:"export_date"`
}

// RosterTotals sums a fantasy team's player season totals.
type RosterTotals struct {
	TeamID   int                      `json:"team_id"`
	TeamName string                   `json:"name"`
	LogoURL  string                   `json:"logo_url"`
	Players  int                      `json:"players"`
	Line     analytics.StatLine       `json:"line"`
	Totals   analytics.CategoryTotals `json:"category_totals"`
}

// TeamComparison puts two teams of one stored week side by side.
type TeamComparison struct {
	MatchupPeriod int                      `json:"week"`
	Team1         analytics.TeamWeekResult `json:"team1"`
	Team2         analytics.TeamWeekResult `json:"team2"`
	HeadToHead    analytics.MatchupOutcome `json:"head_to_head"`
}

type ExportResult struct {
	MatchupPeriods []int     `json:"matchup_periods"`
	Failed         []int     `json:"failed,omitempty"`
	ExportDate     time.Time `json:"export_date"`
}

// ChatContext is the stored league data handed to the chatbot.
type ChatContext struct {
	LeagueSummary *LeagueSummary          `json:"league_summary,omitempty"`
	LatestWeek    *analytics.WeekSnapshot `json:"latest_week,omitempty"`
	Players       *PlayersExport          `json:"players,omitempty"`
}

type UpcomingPreview struct {
	MatchupPeriod int                        `json:"matchup_period"`
	Matchups      []analytics.PreviewMatchup `json:"matchups"`
}

type PredictionsReport struct {
	MatchupPeriod int                    `json:"matchup_period"`
	ScoringPeriod int                    `json:"scoring_period"`
	Predictions   []analytics.Prediction `json:"predictions"`
}
