package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

// buildWeek computes a matchup period's snapshot from ESPN box scores. Live
// weeks read the cumulative score as of the current scoring period, take
// minutes from the daily lineups and run the all-zero fallback.
func (s *FantasyService) buildWeek(ctx context.Context, league *models.League, matchupPeriod int, live bool) (*analytics.WeekSnapshot, error) {
	scoringPeriod := 0
	if live {
		scoringPeriod = league.Metadata.CurrentScoringPeriod
	}

	boxes, err := s.provider.GetBoxScores(ctx, matchupPeriod, scoringPeriod)
	if err != nil {
		return nil, fmt.Errorf("fetching box scores for matchup period %d: %w", matchupPeriod, err)
	}
	if len(boxes) == 0 {
		return nil, fmt.Errorf("no box scores for matchup period %d", matchupPeriod)
	}

	teams := weekTotals(league, matchupPeriod, boxes)

	if live {
		var daily map[int]analytics.StatLine
		elapsed := elapsedPeriods(league.Metadata, matchupPeriod)
		byPeriod, err := s.provider.GetBoxScoresByPeriods(ctx, matchupPeriod, elapsed)
		if err != nil {
			slog.Warn("daily box scores unavailable, using matchup lineup minutes",
				"matchup_period", matchupPeriod, "error", err)
		} else {
			daily = lineupSums(byPeriod)
			for i := range teams {
				line := daily[teams[i].TeamID]
				teams[i].MinutesPlayed = line.Minutes
				teams[i].GamesPlayed = line.Games
			}
		}

		if analytics.AllZero(teams) {
			teams = s.zeroFallback(ctx, league, matchupPeriod, teams, daily)
		}
	}

	week := analytics.CompareWeek(matchupPeriod, teams)
	week.ExportDate = s.now()
	week.Live = live
	return week, nil
}

// weekTotals lays out one entry per league team, in league order. Teams
// without a box score (byes) keep zero totals and still take part.
func weekTotals(league *models.League, matchupPeriod int, boxes []models.BoxScore) []analytics.TeamWeekTotals {
	type sideInfo struct {
		side       models.BoxScoreSide
		opponentID int
	}
	sides := make(map[int]sideInfo, len(boxes)*2)
	for _, box := range boxes {
		if box.Home.TeamID != 0 {
			sides[box.Home.TeamID] = sideInfo{side: box.Home, opponentID: box.Away.TeamID}
		}
		if box.Away.TeamID != 0 {
			sides[box.Away.TeamID] = sideInfo{side: box.Away, opponentID: box.Home.TeamID}
		}
	}

	teams := make([]analytics.TeamWeekTotals, 0, len(league.Teams))
	for _, team := range league.Teams {
		t := analytics.TeamWeekTotals{
			TeamID:        team.TeamID,
			TeamName:      team.Name,
			LogoURL:       team.LogoURL,
			MatchupPeriod: matchupPeriod,
			Totals:        analytics.CategoryTotals{},
		}
		if info, ok := sides[team.TeamID]; ok {
			line := info.side.LineupLine()
			t.Totals = info.side.Totals
			t.Shooting = info.side.Line.Shooting
			t.MinutesPlayed = line.Minutes
			t.GamesPlayed = line.Games
			t.OpponentID = info.opponentID
		}
		teams = append(teams, t)
	}
	return teams
}

// lineupSums adds up every team's active lineup lines across scoring periods.
func lineupSums(byPeriod map[int][]models.BoxScore) map[int]analytics.StatLine {
	sums := make(map[int]analytics.StatLine)
	for _, boxes := range byPeriod {
		for _, box := range boxes {
			for _, side := range []models.BoxScoreSide{box.Home, box.Away} {
				if side.TeamID == 0 {
					continue
				}
				line := sums[side.TeamID]
				line.Add(side.LineupLine())
				sums[side.TeamID] = line
			}
		}
	}
	return sums
}

// elapsedPeriods lists the matchup's scoring periods up to and including
// the current one.
func elapsedPeriods(meta models.LeagueMetadata, matchupPeriod int) []int {
	current := meta.CurrentScoringPeriod
	var elapsed []int
	for _, sp := range meta.ScoringPeriods(matchupPeriod) {
		if sp <= current {
			elapsed = append(elapsed, sp)
		}
	}
	if len(elapsed) == 0 && current > 0 {
		elapsed = []int{current}
	}
	return elapsed
}

// zeroFallback replaces an all-zero live stat line. It first tries the
// cumulative score as of earlier scoring periods of the same matchup, then
// sums the daily lineup lines. Minutes are kept from teams.
func (s *FantasyService) zeroFallback(ctx context.Context, league *models.League, matchupPeriod int, teams []analytics.TeamWeekTotals, daily map[int]analytics.StatLine) []analytics.TeamWeekTotals {
	current := league.Metadata.CurrentScoringPeriod
	periods := league.Metadata.ScoringPeriods(matchupPeriod)

	for back := 1; back <= s.zeroLookback; back++ {
		sp := current - back
		if sp < 1 || (len(periods) > 0 && !slices.Contains(periods, sp)) {
			break
		}
		boxes, err := s.provider.GetBoxScores(ctx, matchupPeriod, sp)
		if err != nil {
			slog.Warn("prior scoring period unavailable", "matchup_period", matchupPeriod, "scoring_period", sp, "error", err)
			continue
		}
		prior := weekTotals(league, matchupPeriod, boxes)
		if analytics.AllZero(prior) {
			continue
		}
		slog.Info("all-zero stat line, using prior scoring period", "matchup_period", matchupPeriod, "scoring_period", sp)
		for i := range prior {
			prior[i].MinutesPlayed = teams[i].MinutesPlayed
			prior[i].GamesPlayed = teams[i].GamesPlayed
		}
		return prior
	}

	if daily == nil {
		slog.Warn("all-zero stat line and no lineup data", "matchup_period", matchupPeriod)
		return teams
	}

	slog.Info("all-zero stat line, summing lineup stats", "matchup_period", matchupPeriod)
	out := make([]analytics.TeamWeekTotals, len(teams))
	for i, t := range teams {
		line := daily[t.TeamID]
		if !line.IsZero() {
			t.Totals = line.Totals()
			t.Shooting = line.Shooting
		}
		out[i] = t
	}
	return out
}
