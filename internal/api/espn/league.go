package espn

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

type API struct {
	client *Client
}

func NewAPI(client *Client) *API {
	return &API{client: client}
}

func (a *API) season() int {
	year, _ := strconv.Atoi(a.client.Config.Year)
	return year
}

func (a *API) GetLeagueMetadata(ctx context.Context) (*models.LeagueMetadata, error) {
	var espnResponse models.LeagueResponse
	params := map[string]string{
		"view": "mSettings,mStatus",
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, nil, &espnResponse); err != nil {
		return nil, fmt.Errorf("fetching league metadata: %w", err)
	}

	periods := make(map[int][]int, len(espnResponse.Settings.ScheduleSettings.MatchupPeriods))
	for key, scoringPeriods := range espnResponse.Settings.ScheduleSettings.MatchupPeriods {
		id, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		sorted := append([]int{}, scoringPeriods...)
		sort.Ints(sorted)
		periods[id] = sorted
	}

	metadata := &models.LeagueMetadata{
		LeagueID:             espnResponse.ID,
		Name:                 espnResponse.Settings.Name,
		CurrentMatchupPeriod: espnResponse.Status.CurrentMatchupPeriod,
		CurrentScoringPeriod: espnResponse.ScoringPeriodID,
		SeasonID:             espnResponse.SeasonID,
		FirstScoringPeriod:   espnResponse.Status.FirstScoringPeriod,
		FinalScoringPeriod:   espnResponse.Status.FinalScoringPeriod,
		MatchupPeriodCount:   espnResponse.Settings.ScheduleSettings.MatchupPeriodCount,
		MatchupPeriods:       periods,
		IsActive:             espnResponse.Status.IsActive,
		LastUpdated:          time.Now(),
	}

	return metadata, nil
}

// GetTeams returns every fantasy team with its roster and standings row.
func (a *API) GetTeams(ctx context.Context) ([]models.FantasyTeam, []models.TeamStanding, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view": "mTeam,mRoster,mStandings",
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, nil, &leagueResponse); err != nil {
		return nil, nil, fmt.Errorf("fetching teams: %w", err)
	}

	season := a.season()
	teams := make([]models.FantasyTeam, 0, len(leagueResponse.Teams))
	for _, team := range leagueResponse.Teams {
		ft := models.FantasyTeam{
			TeamID:       team.ID,
			Name:         team.DisplayName(),
			Abbreviation: team.Abbreviation,
			LogoURL:      NormalizeLogoURL(team.Logo),
			Roster:       make([]models.Player, 0, len(team.Roster.Entries)),
		}
		for _, entry := range team.Roster.Entries {
			ft.Roster = append(ft.Roster, rosterPlayer(entry, ft, season))
		}
		teams = append(teams, ft)
	}

	return teams, buildStandings(leagueResponse.Teams), nil
}

func buildStandings(teams []models.Team) []models.TeamStanding {
	standings := make([]models.TeamStanding, len(teams))
	for i, team := range teams {
		overall := team.Record.Overall
		games := overall.Wins + overall.Losses + overall.Ties
		winPct := 0.0
		if games > 0 {
			winPct = math.Round(float64(overall.Wins)/float64(games)*1000) / 10
		}
		standings[i] = models.TeamStanding{
			TeamID:        team.ID,
			TeamName:      team.DisplayName(),
			Abbreviation:  team.Abbreviation,
			LogoURL:       NormalizeLogoURL(team.Logo),
			Wins:          overall.Wins,
			Losses:        overall.Losses,
			Ties:          overall.Ties,
			PointsFor:     overall.PointsFor,
			PointsAgainst: overall.PointsAgainst,
			WinPercentage: winPct,
			PlayoffSeed:   team.PlayoffSeed,
		}
	}

	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].WinPercentage != standings[j].WinPercentage {
			return standings[i].WinPercentage > standings[j].WinPercentage
		}
		return standings[i].PointsFor > standings[j].PointsFor
	})

	for i := range standings {
		standings[i].Rank = i + 1
	}

	return standings
}

// GetSchedule returns every pairing of the season.
func (a *API) GetSchedule(ctx context.Context) ([]models.ScheduledMatchup, error) {
	var leagueResponse models.LeagueResponse
	params := map[string]string{
		"view": "mMatchupScore",
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, nil, &leagueResponse); err != nil {
		return nil, fmt.Errorf("fetching schedule: %w", err)
	}

	schedule := make([]models.ScheduledMatchup, 0, len(leagueResponse.Schedule))
	for _, match := range leagueResponse.Schedule {
		schedule = append(schedule, models.ScheduledMatchup{
			MatchupPeriod: match.MatchupPeriodID,
			HomeTeamID:    match.Home.TeamID,
			AwayTeamID:    match.Away.TeamID,
		})
	}
	return schedule, nil
}

// GetBoxScores fetches the category box scores of a matchup period. When
// scoringPeriod is positive the lineups carry that day's stats, otherwise
// they carry the whole matchup period.
func (a *API) GetBoxScores(ctx context.Context, matchupPeriod, scoringPeriod int) ([]models.BoxScore, error) {
	var scoreboardResponse models.ScoreboardResponse

	params := map[string]string{
		"view": "mMatchupScore,mScoreboard",
	}
	if scoringPeriod > 0 {
		params["scoringPeriodId"] = strconv.Itoa(scoringPeriod)
	}

	filters := map[string]interface{}{
		"schedule": map[string]interface{}{
			"filterMatchupPeriodIds": map[string]interface{}{
				"value": []int{matchupPeriod},
			},
		},
	}

	headers, err := filterHeader(filters)
	if err != nil {
		return nil, err
	}

	if err := a.client.Get(ctx, a.client.leagueEndpoint(), params, headers, &scoreboardResponse); err != nil {
		return nil, fmt.Errorf("fetching box scores for matchup period %d: %w", matchupPeriod, err)
	}

	var boxScores []models.BoxScore
	for _, match := range scoreboardResponse.Schedule {
		if match.MatchupPeriodID != 0 && match.MatchupPeriodID != matchupPeriod {
			continue
		}
		boxScores = append(boxScores, models.BoxScore{
			MatchupPeriod: matchupPeriod,
			ScoringPeriod: scoringPeriod,
			Winner:        match.Winner,
			Home:          boxScoreSide(match.Home, scoringPeriod),
			Away:          boxScoreSide(match.Away, scoringPeriod),
		})
	}
	return boxScores, nil
}

func boxScoreSide(score models.TeamScore, scoringPeriod int) models.BoxScoreSide {
	totals, line := categoryTotals(score.CumulativeScore.ScoreByStat)
	side := models.BoxScoreSide{
		TeamID: score.TeamID,
		Totals: totals,
		Line:   line,
		Wins:   score.CumulativeScore.Wins,
		Losses: score.CumulativeScore.Losses,
		Ties:   score.CumulativeScore.Ties,
	}

	entries := score.RosterForMatchupPeriod.Entries
	if scoringPeriod > 0 || len(entries) == 0 {
		entries = score.RosterForCurrentScoringPeriod.Entries
	}
	for _, entry := range entries {
		player := entry.PlayerPoolEntry.Player
		side.Lineup = append(side.Lineup, models.LineupPlayer{
			PlayerID:     playerID(entry),
			Name:         player.FullName,
			ProTeamID:    player.ProTeamID,
			InjuryStatus: player.InjuryStatus,
			LineupSlot:   LineupSlotName(entry.LineupSlotID),
			Active:       IsActiveSlot(entry.LineupSlotID),
			Line:         periodLine(player, scoringPeriod),
		})
	}
	return side
}

// GetProSchedule maps every pro team to the scoring periods it plays in.
func (a *API) GetProSchedule(ctx context.Context) (analytics.ProSchedule, error) {
	var scheduleResponse models.ProScheduleResponse

	endpoint := fmt.Sprintf("/seasons/%s", a.client.Config.Year)
	params := map[string]string{
		"view": "proTeamSchedules_wl",
	}

	if err := a.client.Get(ctx, endpoint, params, nil, &scheduleResponse); err != nil {
		return nil, fmt.Errorf("fetching pro schedule: %w", err)
	}

	schedule := make(analytics.ProSchedule)
	for _, team := range scheduleResponse.Settings.ProTeams {
		days := make(map[int]bool, len(team.ProGamesByScoringPeriod))
		for key, games := range team.ProGamesByScoringPeriod {
			sp, err := strconv.Atoi(key)
			if err != nil || len(games) == 0 {
				continue
			}
			days[sp] = true
		}
		schedule[team.ID] = days
	}

	return schedule, nil
}

func playerID(entry models.RosterEntry) int {
	if entry.PlayerID != 0 {
		return entry.PlayerID
	}
	return entry.PlayerPoolEntry.Player.ID
}

func rosterPlayer(entry models.RosterEntry, team models.FantasyTeam, season int) models.Player {
	player := entry.PlayerPoolEntry.Player
	averages, totals := seasonLines(player, season)
	return models.Player{
		PlayerID:      playerID(entry),
		Name:          player.FullName,
		Position:      PositionName(player.DefaultPositionID),
		ProTeamID:     player.ProTeamID,
		ProTeam:       ProTeamName(player.ProTeamID),
		InjuryStatus:  player.InjuryStatus,
		FantasyTeamID: team.TeamID,
		FantasyTeam:   team.Name,
		LineupSlot:    LineupSlotName(entry.LineupSlotID),
		Averages:      averages,
		Totals:        totals,
	}
}
