package analytics

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"
)

// TeamWeekTotals is one team's accumulated values for one matchup period.
type TeamWeekTotals struct {
	TeamID        int            `json:"team_id"`
	TeamName      string         `json:"name"`
	LogoURL       string         `json:"logo_url"`
	MatchupPeriod int            `json:"matchup_period"`
	Totals        CategoryTotals `json:"category_totals"`
	Shooting      Shooting       `json:"shooting"`
	MinutesPlayed float64        `json:"minutes_played"`
	GamesPlayed   float64        `json:"games_played"`
	OpponentID    int            `json:"opponent_id,omitempty"`
}

// MatchupOutcome is the category comparison of one team against one opponent.
type MatchupOutcome struct {
	OpponentID     int        `json:"opponent_id"`
	OpponentName   string     `json:"opponent_name"`
	Won            int        `json:"won"`
	Lost           int        `json:"lost"`
	Tied           int        `json:"tied"`
	WonCategories  []Category `json:"won_cats"`
	LostCategories []Category `json:"lost_cats"`
}

// Beat reports whether the team won a majority of the nine categories.
func (o MatchupOutcome) Beat() bool {
	return o.Won >= BeatThreshold
}

// TeamWeekResult is a team's all-play result for one matchup period.
type TeamWeekResult struct {
	TeamWeekTotals
	OpponentName       string           `json:"opponent_name,omitempty"`
	TeamsBeaten        int              `json:"total_teams_beaten"`
	CategoryWins       int              `json:"total_category_wins"`
	CategoryWinCounts  map[Category]int `json:"category_wins"`
	BeatenTeams        []string         `json:"beaten_teams"`
	MinutesVsOpponent  *float64         `json:"minutes_vs_opponent"`
	MinutesVsLeagueAvg float64          `json:"minutes_vs_league_avg"`
	Outcomes           MatchupDetails   `json:"matchup_details"`
}

// MatchupDetails holds a team's outcomes ordered by opponent name. It is
// serialized as an object keyed by opponent name.
type MatchupDetails []MatchupOutcome

func (d MatchupDetails) MarshalJSON() ([]byte, error) {
	byName := make(map[string]MatchupOutcome, len(d))
	for _, o := range d {
		key := o.OpponentName
		if _, dup := byName[key]; dup || key == "" {
			key = fmt.Sprintf("%s #%d", o.OpponentName, o.OpponentID)
		}
		byName[key] = o
	}
	return json.Marshal(byName)
}

func (d *MatchupDetails) UnmarshalJSON(data []byte) error {
	var byName map[string]MatchupOutcome
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("decoding matchup details: %w", err)
	}
	out := make(MatchupDetails, 0, len(byName))
	for _, o := range byName {
		out = append(out, o)
	}
	out.sortByOpponent()
	*d = out
	return nil
}

func (d MatchupDetails) sortByOpponent() {
	sort.Slice(d, func(i, j int) bool {
		if d[i].OpponentName != d[j].OpponentName {
			return d[i].OpponentName < d[j].OpponentName
		}
		return d[i].OpponentID < d[j].OpponentID
	})
}

// Outcome returns the comparison against the given opponent.
func (r *TeamWeekResult) Outcome(opponentID int) (MatchupOutcome, bool) {
	for _, o := range r.Outcomes {
		if o.OpponentID == opponentID {
			return o, true
		}
	}
	return MatchupOutcome{}, false
}

// ScheduledOutcome returns the comparison against the scheduled opponent.
func (r *TeamWeekResult) ScheduledOutcome() (MatchupOutcome, bool) {
	if r.OpponentID == 0 {
		return MatchupOutcome{}, false
	}
	return r.Outcome(r.OpponentID)
}

// WeekSnapshot is the all-play result of every team for one matchup period.
type WeekSnapshot struct {
	MatchupPeriod    int              `json:"matchup_period"`
	ExportDate       time.Time        `json:"export_date"`
	Live             bool             `json:"live"`
	LeagueAvgMinutes float64          `json:"league_avg_minutes"`
	Teams            []TeamWeekResult `json:"teams"`
}

// Team looks up a team's result by id.
func (w *WeekSnapshot) Team(teamID int) (*TeamWeekResult, bool) {
	for i := range w.Teams {
		if w.Teams[i].TeamID == teamID {
			return &w.Teams[i], true
		}
	}
	return nil, false
}

// ComparePair compares a against b in every category.
func ComparePair(a, b TeamWeekTotals) MatchupOutcome {
	out := MatchupOutcome{
		OpponentID:     b.TeamID,
		OpponentName:   b.TeamName,
		WonCategories:  []Category{},
		LostCategories: []Category{},
	}
	for _, c := range Categories {
		switch CompareCategory(c, a.Totals.Get(c), b.Totals.Get(c)) {
		case Win:
			out.Won++
			out.WonCategories = append(out.WonCategories, c)
		case Loss:
			out.Lost++
			out.LostCategories = append(out.LostCategories, c)
		default:
			out.Tied++
		}
	}
	return out
}

// CompareWeek runs the all-play comparison: every team against every other
// team in the league, not only the scheduled opponent. Teams with no recorded
// totals still take part.
func CompareWeek(matchupPeriod int, teams []TeamWeekTotals) *WeekSnapshot {
	snap := &WeekSnapshot{
		MatchupPeriod: matchupPeriod,
		Teams:         make([]TeamWeekResult, 0, len(teams)),
	}

	names := make(map[int]string, len(teams))
	minutes := make(map[int]float64, len(teams))
	var totalMinutes float64
	for _, t := range teams {
		names[t.TeamID] = t.TeamName
		minutes[t.TeamID] = t.MinutesPlayed
		totalMinutes += t.MinutesPlayed
	}
	if len(teams) > 0 {
		snap.LeagueAvgMinutes = totalMinutes / float64(len(teams))
	}

	for _, team := range teams {
		team.MatchupPeriod = matchupPeriod
		team.Totals = team.Totals.Clone()
		res := TeamWeekResult{
			TeamWeekTotals:     team,
			OpponentName:       names[team.OpponentID],
			CategoryWinCounts:  make(map[Category]int, len(Categories)),
			BeatenTeams:        []string{},
			Outcomes:           make(MatchupDetails, 0, max(len(teams)-1, 0)),
			MinutesVsLeagueAvg: team.MinutesPlayed - snap.LeagueAvgMinutes,
		}
		for _, c := range Categories {
			res.CategoryWinCounts[c] = 0
		}

		for _, opp := range teams {
			if opp.TeamID == team.TeamID {
				continue
			}
			outcome := ComparePair(team, opp)
			res.Outcomes = append(res.Outcomes, outcome)
			for _, c := range outcome.WonCategories {
				res.CategoryWinCounts[c]++
			}
			res.CategoryWins += outcome.Won
			if outcome.Beat() {
				res.TeamsBeaten++
				res.BeatenTeams = append(res.BeatenTeams, opp.TeamName)
			}
		}

		if oppMinutes, ok := minutes[team.OpponentID]; ok && team.OpponentID != 0 {
			m := oppMinutes
			res.MinutesVsOpponent = &m
		}

		res.Outcomes.sortByOpponent()
		sort.Strings(res.BeatenTeams)
		snap.Teams = append(snap.Teams, res)
	}

	sort.SliceStable(snap.Teams, func(i, j int) bool {
		a, b := snap.Teams[i], snap.Teams[j]
		if a.TeamsBeaten != b.TeamsBeaten {
			return a.TeamsBeaten > b.TeamsBeaten
		}
		if a.CategoryWins != b.CategoryWins {
			return a.CategoryWins > b.CategoryWins
		}
		return a.TeamID < b.TeamID
	})

	return snap
}

// AllZero reports whether every team's every category total is exactly zero,
// which is how an unsettled provider stat line for the active period looks.
func AllZero(teams []TeamWeekTotals) bool {
	if len(teams) == 0 {
		return false
	}
	for _, t := range teams {
		if !t.Totals.IsZero() {
			return false
		}
	}
	return true
}
