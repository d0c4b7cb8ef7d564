package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

func (s *FantasyService) GetStandings(ctx context.Context) (string, error) {
	summary, err := s.GetLeagueSummary(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching standings: %w", err)
	}
	return formatStandings(summary), nil
}

func formatStandings(summary *models.LeagueSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏆 *%s Standings*\n\n", summary.LeagueName))
	for _, team := range summary.Teams {
		sb.WriteString(fmt.Sprintf("%d. *%s*\n", team.Rank, team.TeamName))
		sb.WriteString(fmt.Sprintf("   Record: %d-%d-%d (%.1f%%)\n", team.Wins, team.Losses, team.Ties, team.WinPercentage))
	}
	return sb.String()
}

// GetWeekReport renders a matchup period's all-play results. A period of
// zero means the current one.
func (s *FantasyService) GetWeekReport(ctx context.Context, matchupPeriod int) (string, error) {
	if matchupPeriod == 0 {
		current, err := s.GetCurrentWeek(ctx)
		if err != nil {
			return "", fmt.Errorf("error fetching current week: %w", err)
		}
		matchupPeriod = current
	}

	week, err := s.GetWeek(ctx, matchupPeriod, false)
	if err != nil {
		return "", fmt.Errorf("error fetching week %d: %w", matchupPeriod, err)
	}
	return formatWeek(week), nil
}

func formatWeek(week *analytics.WeekSnapshot) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🏀 *Week %d All-Play*", week.MatchupPeriod))
	if week.Live {
		sb.WriteString(" (in progress)")
	}
	sb.WriteString("\n\n")

	others := max(len(week.Teams)-1, 0)
	for i, team := range week.Teams {
		sb.WriteString(fmt.Sprintf("%d. *%s* beat %d/%d teams (%d cats)\n",
			i+1, team.TeamName, team.TeamsBeaten, others, team.CategoryWins))
		if outcome, ok := team.ScheduledOutcome(); ok {
			sb.WriteString(fmt.Sprintf("   vs %s: %d-%d-%d\n", outcome.OpponentName, outcome.Won, outcome.Lost, outcome.Tied))
		}
	}
	return sb.String()
}

func (s *FantasyService) GetSeasonSummary(ctx context.Context) (string, error) {
	report, err := s.GetSeasonReport(ctx, false)
	if err != nil {
		return "", fmt.Errorf("error fetching season report: %w", err)
	}
	return formatSeason(report), nil
}

func formatSeason(report *analytics.SeasonReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📊 *Season Report* (%d weeks)\n\n", len(report.WeeksAnalyzed)))

	for i, team := range report.Teams {
		sb.WriteString(fmt.Sprintf("%d. *%s* %d beaten (avg %.1f)", i+1, team.TeamName, team.TotalTeamsBeaten, team.AvgTeamsBeaten))
		if team.CurrentStreak > 1 {
			sb.WriteString(fmt.Sprintf(" 🔥%d", team.CurrentStreak))
		}
		sb.WriteString("\n")
	}

	leaders := []struct {
		label  string
		leader *analytics.Leader
		format string
	}{
		{"Most Dominant", report.Leaders.MostDominant, "%.2f avg beaten"},
		{"Most Consistent", report.Leaders.MostConsistent, "%.2f ratio"},
		{"Most Balanced", report.Leaders.MostBalanced, "%.2f std dev"},
		{"Best Record", report.Leaders.BestWinPct, "%.3f"},
	}
	sb.WriteString("\n🏅 *Leaders:*\n")
	for _, l := range leaders {
		if l.leader == nil {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s: %s (%s)\n", l.label, l.leader.TeamName, fmt.Sprintf(l.format, l.leader.Value)))
	}
	if report.MostImproved != nil {
		sb.WriteString(fmt.Sprintf("Most Improved: %s (%+.1f)\n", report.MostImproved.TeamName, report.MostImproved.Value))
	}

	if len(report.HotTeams) > 0 {
		sb.WriteString("\n🔥 *Hot:* ")
		sb.WriteString(trendNames(report.HotTeams))
		sb.WriteString("\n")
	}
	if len(report.ColdTeams) > 0 {
		sb.WriteString("🧊 *Cold:* ")
		sb.WriteString(trendNames(report.ColdTeams))
		sb.WriteString("\n")
	}
	return sb.String()
}

func trendNames(entries []analytics.TrendEntry) string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = fmt.Sprintf("%s (%.1f)", e.TeamName, e.RecentForm)
	}
	return strings.Join(names, ", ")
}

func (s *FantasyService) GetPredictionsReport(ctx context.Context, team string) (string, error) {
	report, err := s.GetPredictions(ctx, team, "")
	if err != nil {
		return "", fmt.Errorf("error fetching predictions: %w", err)
	}
	return formatPredictions(report), nil
}

func formatPredictions(report *models.PredictionsReport) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🔮 *Week %d Projections*\n\n", report.MatchupPeriod))

	if len(report.Predictions) == 0 {
		sb.WriteString("No matchups to project.")
		return sb.String()
	}

	for _, p := range report.Predictions {
		sb.WriteString(fmt.Sprintf("*%s* %d-%d-%d *%s*\n", p.Home.TeamName, p.HomeWins, p.AwayWins, p.Ties, p.Away.TeamName))
		winner := p.Home.TeamName
		switch p.PredictedWinner {
		case "away":
			winner = p.Away.TeamName
		case "tie":
			winner = "Toss-up"
		}
		sb.WriteString(fmt.Sprintf("Pick: %s (%.0f%%)", winner, p.Confidence))
		if !p.Projected {
			sb.WriteString(" (current totals)")
		}
		sb.WriteString("\n\n")
	}
	return sb.String()
}

func (s *FantasyService) GetPreviewReport(ctx context.Context) (string, error) {
	preview, err := s.GetUpcomingPreview(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching preview: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 *Week %d Preview*\n\n", preview.MatchupPeriod))
	for _, m := range preview.Matchups {
		sb.WriteString(fmt.Sprintf("*%s* vs *%s*\n", m.Home.TeamName, m.Away.TeamName))
		sb.WriteString(fmt.Sprintf("Expected: %d-%d-%d (%.0f%%)\n\n", m.HomeWins, m.AwayWins, m.Ties, m.Confidence))
	}
	return sb.String(), nil
}

func (s *FantasyService) GetTeamRoster(ctx context.Context, teamName string) (string, error) {
	team, err := s.FindTeam(ctx, teamName)
	if err != nil {
		return "", fmt.Errorf("error fetching team roster: %w", err)
	}

	roster := append([]models.Player{}, team.Roster...)
	sort.SliceStable(roster, func(i, j int) bool {
		return roster[i].Averages.PTS > roster[j].Averages.PTS
	})

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *%s's Roster*\n\n", team.Name))

	sb.WriteString("*Lineup:*\n")
	for _, player := range roster {
		if player.InLineup() {
			sb.WriteString(rosterLine(player))
		}
	}

	sb.WriteString("\n*Bench:*\n")
	for _, player := range roster {
		if !player.InLineup() {
			sb.WriteString(rosterLine(player))
		}
	}

	return sb.String(), nil
}

func rosterLine(player models.Player) string {
	injuryStr := ""
	if abbr, ok := map[string]string{
		"QUESTIONABLE": "Q",
		"DAY_TO_DAY":   "DTD",
		"OUT":          "O",
	}[strings.ToUpper(player.InjuryStatus)]; ok {
		injuryStr = fmt.Sprintf(" (%s)", abbr)
	}

	avg := player.Averages
	return fmt.Sprintf("▫️ %s %s%s - %.1f/%.1f/%.1f\n",
		player.Position, player.Name, injuryStr, avg.PTS, avg.REB, avg.AST)
}

func (s *FantasyService) WhoHas(ctx context.Context, playerName string) (string, error) {
	player, err := s.FindPlayer(ctx, playerName)
	if errors.Is(err, ErrDataNotFound) {
		return fmt.Sprintf("🔍 No player found matching '%s'.", playerName), nil
	}
	if err != nil {
		return "", fmt.Errorf("error checking who has player: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("*%s* (%s - %s)\n", player.Name, player.Position, player.ProTeam))
	sb.WriteString("━━━━━━━━━━━━━━━━\n")
	sb.WriteString(fmt.Sprintf("*%s*\n", player.FantasyTeam))
	if player.InLineup() {
		sb.WriteString("Starting\n")
	} else {
		sb.WriteString(fmt.Sprintf("%s\n", player.LineupSlot))
	}

	avg := player.Averages
	sb.WriteString(fmt.Sprintf("\n%.1f pts, %.1f reb, %.1f ast, %.1f stl, %.1f blk, %.1f 3pm\n",
		avg.PTS, avg.REB, avg.AST, avg.STL, avg.BLK, avg.ThreePM))
	sb.WriteString(fmt.Sprintf("FG%% %.3f, FT%% %.3f", avg.Shooting.FGPct(), avg.Shooting.FTPct()))

	return sb.String(), nil
}

// GetWeeklyDigest reports the most recently completed week.
func (s *FantasyService) GetWeeklyDigest(ctx context.Context) (string, error) {
	current, err := s.GetCurrentWeek(ctx)
	if err != nil {
		return "", fmt.Errorf("error fetching current week: %w", err)
	}
	if current <= 1 {
		return "", notFoundErr("GetWeeklyDigest", "no completed weeks yet")
	}
	return s.GetWeekReport(ctx, current-1)
}
