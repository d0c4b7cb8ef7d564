package analytics

import "sort"

const (
	PreviewLookbackWeeks = 4

	neutralWinPct = 0.5
)

// Pairing is a scheduled home/away matchup.
type Pairing struct {
	HomeID int `json:"home_team_id"`
	AwayID int `json:"away_team_id"`
}

type PreviewSide struct {
	TeamID        int            `json:"team_id"`
	TeamName      string         `json:"name"`
	WeeksAveraged int            `json:"weeks_averaged"`
	Averages      CategoryTotals `json:"averages"`
}

type PreviewMatchup struct {
	MatchupPeriod   int                  `json:"matchup_period"`
	Home            PreviewSide          `json:"home"`
	Away            PreviewSide          `json:"away"`
	HomeWins        int                  `json:"home_wins"`
	AwayWins        int                  `json:"away_wins"`
	Ties            int                  `json:"ties"`
	Categories      []CategoryProjection `json:"categories"`
	PredictedWinner string               `json:"predicted_winner"`
	Confidence      float64              `json:"confidence"`
}

// AverageTeamWeeks averages a team's last lookback weeks of category totals.
// Counting categories are averaged per week; FG% and FT% come from the
// summed makes and attempts.
func AverageTeamWeeks(teamID int, history []*WeekSnapshot, lookback int) PreviewSide {
	if lookback <= 0 {
		lookback = PreviewLookbackWeeks
	}
	side := PreviewSide{TeamID: teamID, Averages: CategoryTotals{}}

	weeks := orderedWeeks(history)
	sums := CategoryTotals{}
	var shooting Shooting
	for i := len(weeks) - 1; i >= 0 && side.WeeksAveraged < lookback; i-- {
		t, ok := weeks[i].Team(teamID)
		if !ok {
			continue
		}
		if side.TeamName == "" {
			side.TeamName = t.TeamName
		}
		for _, c := range Categories {
			if !c.IsRatio() {
				sums[c] += t.Totals.Get(c)
			}
		}
		shooting.Add(t.Shooting)
		side.WeeksAveraged++
	}

	for _, c := range Categories {
		side.Averages[c] = 0
		if !c.IsRatio() && side.WeeksAveraged > 0 {
			side.Averages[c] = sums[c] / float64(side.WeeksAveraged)
		}
	}
	side.Averages[FGPct] = shooting.FGPct()
	side.Averages[FTPct] = shooting.FTPct()
	return side
}

// PreviewMatchups predicts each pairing of the upcoming period from recent form.
func PreviewMatchups(matchupPeriod int, pairings []Pairing, history []*WeekSnapshot, names map[int]string, lookback int) []PreviewMatchup {
	out := make([]PreviewMatchup, 0, len(pairings))
	for _, p := range pairings {
		home := AverageTeamWeeks(p.HomeID, history, lookback)
		away := AverageTeamWeeks(p.AwayID, history, lookback)
		if n, ok := names[p.HomeID]; ok {
			home.TeamName = n
		}
		if n, ok := names[p.AwayID]; ok {
			away.TeamName = n
		}

		h := ProjectedTeam{TeamID: home.TeamID, TeamName: home.TeamName}
		a := ProjectedTeam{TeamID: away.TeamID, TeamName: away.TeamName}
		pred := comparePrediction(matchupPeriod, h, a, home.Averages, away.Averages)

		out = append(out, PreviewMatchup{
			MatchupPeriod:   matchupPeriod,
			Home:            home,
			Away:            away,
			HomeWins:        pred.HomeWins,
			AwayWins:        pred.AwayWins,
			Ties:            pred.Ties,
			Categories:      pred.Categories,
			PredictedWinner: pred.PredictedWinner,
			Confidence:      pred.Confidence,
		})
	}
	return out
}

type DifficultyEntry struct {
	TeamID            int     `json:"team_id"`
	TeamName          string  `json:"name"`
	RemainingGames    int     `json:"remaining_games"`
	AvgOpponentWinPct float64 `json:"avg_opponent_win_pct"`
	Difficulty        string  `json:"difficulty"`
}

// DifficultyLabel buckets an average opponent win percentage.
func DifficultyLabel(avg float64) string {
	switch {
	case avg > 0.6:
		return "Very Hard"
	case avg > 0.45:
		return "Medium"
	default:
		return "Easy"
	}
}

// ScheduleDifficulty averages the win percentage of each team's remaining
// opponents. Teams without a record count as 0.5, as do teams with no
// remaining games. Results are sorted hardest first.
func ScheduleDifficulty(remaining map[int][]int, records map[int]Record, names map[int]string) []DifficultyEntry {
	strength := func(id int) float64 {
		rec, ok := records[id]
		if !ok || rec.Games() == 0 {
			return neutralWinPct
		}
		return float64(rec.Wins) / float64(rec.Games())
	}

	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]DifficultyEntry, 0, len(ids))
	for _, id := range ids {
		e := DifficultyEntry{TeamID: id, TeamName: names[id], AvgOpponentWinPct: neutralWinPct}
		var sum float64
		for _, opp := range remaining[id] {
			if opp == id || opp == 0 {
				continue
			}
			sum += strength(opp)
			e.RemainingGames++
		}
		if e.RemainingGames > 0 {
			e.AvgOpponentWinPct = sum / float64(e.RemainingGames)
		}
		e.Difficulty = DifficultyLabel(e.AvgOpponentWinPct)
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgOpponentWinPct > out[j].AvgOpponentWinPct })
	return out
}
