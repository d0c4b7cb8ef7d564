package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
	"github.com/omarshaarawi/hoopsbot/internal/repository/snapshot"
)

// LeagueProvider is the slice of the fantasy API the service reads from.
type LeagueProvider interface {
	League(ctx context.Context) (*models.League, error)
	RefreshLeague(ctx context.Context) (*models.League, error)
	GetBoxScores(ctx context.Context, matchupPeriod, scoringPeriod int) ([]models.BoxScore, error)
	GetBoxScoresByPeriods(ctx context.Context, matchupPeriod int, scoringPeriods []int) (map[int][]models.BoxScore, error)
}

type Options struct {
	MaxCalendarDays int
	// ZeroLookback is how many earlier scoring periods are tried when the
	// active period's stat line comes back all zero.
	ZeroLookback int
}

type FantasyService struct {
	provider     LeagueProvider
	store        snapshot.Store
	projector    *analytics.Projector
	zeroLookback int
	now          func() time.Time
}

func NewFantasyService(provider LeagueProvider, store snapshot.Store, opts Options) *FantasyService {
	return &FantasyService{
		provider:     provider,
		store:        store,
		projector:    analytics.NewProjector(opts.MaxCalendarDays),
		zeroLookback: opts.ZeroLookback,
		now:          time.Now,
	}
}

func (s *FantasyService) loadLeague(ctx context.Context, refresh bool) (*models.League, error) {
	if refresh {
		return s.provider.RefreshLeague(ctx)
	}
	return s.provider.League(ctx)
}

func (s *FantasyService) GetCurrentWeek(ctx context.Context) (int, error) {
	league, err := s.provider.League(ctx)
	if err != nil {
		return 0, upstreamErr("GetCurrentWeek", err)
	}
	return league.Metadata.CurrentMatchupPeriod, nil
}

// ListWeeks returns every stored matchup period plus the current one.
func (s *FantasyService) ListWeeks(ctx context.Context) ([]int, error) {
	stored, err := s.store.ListWeeks(ctx)
	if err != nil {
		slog.Warn("listing stored weeks failed", "error", err)
	}

	seen := make(map[int]bool, len(stored)+1)
	weeks := make([]int, 0, len(stored)+1)
	for _, n := range stored {
		if !seen[n] {
			seen[n] = true
			weeks = append(weeks, n)
		}
	}

	league, err := s.provider.League(ctx)
	if err != nil {
		slog.Warn("league unavailable, listing stored weeks only", "error", err)
		return weeks, nil
	}
	if current := league.Metadata.CurrentMatchupPeriod; current > 0 && !seen[current] {
		weeks = insertSorted(weeks, current)
	}
	return weeks, nil
}

func insertSorted(weeks []int, n int) []int {
	i := 0
	for i < len(weeks) && weeks[i] < n {
		i++
	}
	weeks = append(weeks, 0)
	copy(weeks[i+1:], weeks[i:])
	weeks[i] = n
	return weeks
}

// GetWeek returns the all-play snapshot of a matchup period. The current
// period is always computed live and never stored. Completed periods are
// served from the store and computed (then stored) when missing or when
// refresh is set.
func (s *FantasyService) GetWeek(ctx context.Context, matchupPeriod int, refresh bool) (*analytics.WeekSnapshot, error) {
	const op = "GetWeek"
	if matchupPeriod < 1 {
		return nil, notFoundErr(op, "no data for matchup period %d", matchupPeriod)
	}

	league, err := s.loadLeague(ctx, refresh)
	if err != nil {
		slog.Warn("league unavailable, falling back to stored week", "matchup_period", matchupPeriod, "error", err)
		return s.storedWeek(ctx, op, matchupPeriod)
	}

	current := league.Metadata.CurrentMatchupPeriod
	switch {
	case matchupPeriod > current:
		return nil, notFoundErr(op, "matchup period %d has not started", matchupPeriod)
	case matchupPeriod == current:
		week, err := s.buildWeek(ctx, league, matchupPeriod, true)
		if err != nil {
			slog.Warn("live week unavailable", "matchup_period", matchupPeriod, "error", err)
			return s.storedWeek(ctx, op, matchupPeriod)
		}
		return week, nil
	}

	if !refresh {
		week, err := s.store.LoadWeek(ctx, matchupPeriod)
		if err == nil {
			return week, nil
		}
		if !errors.Is(err, snapshot.ErrNotFound) {
			slog.Warn("loading stored week failed", "matchup_period", matchupPeriod, "error", err)
		}
	}

	week, err := s.buildWeek(ctx, league, matchupPeriod, false)
	if err != nil {
		slog.Warn("computing week failed", "matchup_period", matchupPeriod, "error", err)
		return s.storedWeek(ctx, op, matchupPeriod)
	}
	if err := s.store.SaveWeek(ctx, week); err != nil {
		slog.Warn("saving week failed", "matchup_period", matchupPeriod, "error", err)
	}
	return week, nil
}

func (s *FantasyService) storedWeek(ctx context.Context, op string, matchupPeriod int) (*analytics.WeekSnapshot, error) {
	week, err := s.store.LoadWeek(ctx, matchupPeriod)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil, notFoundErr(op, "no data for matchup period %d", matchupPeriod)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: loading week %d: %w", op, matchupPeriod, err)
	}
	return week, nil
}

// storedHistory loads the stored weeks before the given period, or every
// stored week when before is not positive.
func (s *FantasyService) storedHistory(ctx context.Context, before int) []*analytics.WeekSnapshot {
	periods, err := s.store.ListWeeks(ctx)
	if err != nil {
		slog.Warn("listing stored weeks failed", "error", err)
		return nil
	}

	var history []*analytics.WeekSnapshot
	for _, n := range periods {
		if before > 0 && n >= before {
			continue
		}
		week, err := s.store.LoadWeek(ctx, n)
		if err != nil {
			slog.Warn("skipping unreadable stored week", "matchup_period", n, "error", err)
			continue
		}
		history = append(history, week)
	}
	return history
}

func (s *FantasyService) GetLeagueSummary(ctx context.Context) (*models.LeagueSummary, error) {
	const op = "GetLeagueSummary"

	league, err := s.provider.League(ctx)
	if err != nil {
		slog.Warn("league unavailable, falling back to stored summary", "error", err)
		var stored models.LeagueSummary
		if lerr := s.store.LoadDocument(ctx, snapshot.DocLeagueSummary, &stored); lerr != nil {
			return nil, notFoundErr(op, "no league summary available")
		}
		return &stored, nil
	}
	return leagueSummary(league, s.now()), nil
}

func leagueSummary(league *models.League, now time.Time) *models.LeagueSummary {
	return &models.LeagueSummary{
		LeagueName:           league.Metadata.Name,
		Season:               league.Metadata.SeasonID,
		CurrentWeek:          league.Metadata.CurrentScoringPeriod,
		CurrentMatchupPeriod: league.Metadata.CurrentMatchupPeriod,
		Teams:                league.Standings,
		ExportDate:           now,
	}
}

// GetSeasonReport aggregates the stored completed weeks. The current week is
// added live when refresh is set or when nothing is stored yet.
func (s *FantasyService) GetSeasonReport(ctx context.Context, refresh bool) (*analytics.SeasonReport, error) {
	const op = "GetSeasonReport"

	league, lerr := s.loadLeague(ctx, refresh)
	current := 0
	if lerr != nil {
		slog.Warn("league unavailable, aggregating stored weeks only", "error", lerr)
	} else {
		current = league.Metadata.CurrentMatchupPeriod
	}

	history := s.storedHistory(ctx, current)
	if lerr == nil && current > 0 && (refresh || len(history) == 0) {
		week, err := s.buildWeek(ctx, league, current, true)
		if err != nil {
			slog.Warn("live week unavailable for season report", "matchup_period", current, "error", err)
		} else {
			history = append(history, week)
		}
	}

	if len(history) == 0 {
		return nil, notFoundErr(op, "no weeks available")
	}

	in := analytics.SeasonInput{Weeks: history, CurrentPeriod: current}
	if lerr == nil {
		in.Records = league.Records()
	}
	report := analytics.AggregateSeason(in)

	if lerr == nil {
		report.ScheduleDifficulty = analytics.ScheduleDifficulty(
			league.RemainingOpponents(current), league.Records(), league.TeamNames())
	}
	return report, nil
}

// GetUpcomingPreview previews next matchup period's pairings from each
// team's recent stored weeks.
func (s *FantasyService) GetUpcomingPreview(ctx context.Context) (*models.UpcomingPreview, error) {
	const op = "GetUpcomingPreview"

	league, err := s.provider.League(ctx)
	if err != nil {
		return nil, upstreamErr(op, err)
	}

	current := league.Metadata.CurrentMatchupPeriod
	next := current + 1
	pairings := league.Pairings(next)
	if len(pairings) == 0 {
		return nil, notFoundErr(op, "no matchups scheduled for matchup period %d", next)
	}

	history := s.storedHistory(ctx, current)
	return &models.UpcomingPreview{
		MatchupPeriod: next,
		Matchups:      analytics.PreviewMatchups(next, pairings, history, league.TeamNames(), analytics.PreviewLookbackWeeks),
	}, nil
}

// GetPredictions projects every current matchup, or only the one involving
// team (and opponent) when given.
func (s *FantasyService) GetPredictions(ctx context.Context, team, opponent string) (*models.PredictionsReport, error) {
	const op = "GetPredictions"

	league, err := s.provider.League(ctx)
	if err != nil {
		return nil, upstreamErr(op, err)
	}

	names := league.TeamNames()
	var teamID, opponentID int
	if team != "" {
		id, ok := matchTeam(team, names)
		if !ok {
			return nil, notFoundErr(op, "no team matching %q", team)
		}
		teamID = id
	}
	if opponent != "" {
		id, ok := matchTeam(opponent, names)
		if !ok {
			return nil, notFoundErr(op, "no team matching %q", opponent)
		}
		opponentID = id
	}

	mp := league.Metadata.CurrentMatchupPeriod
	sp := league.Metadata.CurrentScoringPeriod
	boxes, err := s.provider.GetBoxScores(ctx, mp, sp)
	if err != nil {
		return nil, upstreamErr(op, err)
	}

	remaining := s.projector.RemainingPeriods(league.Metadata.ScoringPeriods(mp), sp, league.Metadata.FinalScoringPeriod)
	shooting := s.elapsedShooting(ctx, league, mp, boxes)

	report := &models.PredictionsReport{MatchupPeriod: mp, ScoringPeriod: sp, Predictions: []analytics.Prediction{}}
	for _, box := range boxes {
		if box.Away.TeamID == 0 {
			continue
		}
		if !involves(box, teamID) || !involves(box, opponentID) {
			continue
		}
		home := matchupSide(league, box.Home, shooting)
		away := matchupSide(league, box.Away, shooting)
		report.Predictions = append(report.Predictions, s.predict(mp, home, away, remaining, league.ProSchedule))
	}

	if (teamID != 0 || opponentID != 0) && len(report.Predictions) == 0 {
		return nil, notFoundErr(op, "no current matchup for %q vs %q", team, opponent)
	}
	return report, nil
}

func involves(box models.BoxScore, teamID int) bool {
	return teamID == 0 || box.Home.TeamID == teamID || box.Away.TeamID == teamID
}

// elapsedShooting sums makes and attempts from the daily lineups of the
// elapsed scoring periods. It only fetches when a box score reports FG% or
// FT% as a bare ratio, and returns nil when the lineups are unavailable.
func (s *FantasyService) elapsedShooting(ctx context.Context, league *models.League, mp int, boxes []models.BoxScore) map[int]analytics.Shooting {
	missing := false
	for _, box := range boxes {
		for _, side := range []models.BoxScoreSide{box.Home, box.Away} {
			if side.TeamID != 0 && (side.Line.Shooting.FGA == 0 || side.Line.Shooting.FTA == 0) {
				missing = true
			}
		}
	}
	if !missing {
		return nil
	}

	byPeriod, err := s.provider.GetBoxScoresByPeriods(ctx, mp, elapsedPeriods(league.Metadata, mp))
	if err != nil {
		slog.Warn("daily box scores unavailable, using settled percentages", "matchup_period", mp, "error", err)
		return nil
	}
	out := make(map[int]analytics.Shooting)
	for teamID, line := range lineupSums(byPeriod) {
		out[teamID] = line.Shooting
	}
	return out
}

// matchupSide seeds the projection from the box score. Makes and attempts
// missing from the cumulative score are taken from the lineup sums.
func matchupSide(league *models.League, side models.BoxScoreSide, shooting map[int]analytics.Shooting) analytics.MatchupSide {
	ms := analytics.MatchupSide{
		TeamID:      side.TeamID,
		Accumulated: side.Line,
		Settled:     side.Totals,
	}
	if daily, ok := shooting[side.TeamID]; ok {
		acc := &ms.Accumulated.Shooting
		if acc.FGA == 0 && daily.FGA > 0 {
			acc.FGM, acc.FGA = daily.FGM, daily.FGA
		}
		if acc.FTA == 0 && daily.FTA > 0 {
			acc.FTM, acc.FTA = daily.FTM, daily.FTA
		}
	}
	team, ok := league.Team(side.TeamID)
	if !ok {
		slog.Warn("box score team missing from league", "team_id", side.TeamID)
		return ms
	}
	ms.TeamName = team.Name
	for _, p := range team.Roster {
		if p.InLineup() {
			ms.Lineup = append(ms.Lineup, p.RosterPlayer())
		}
	}
	return ms
}

// predict serves the accumulated totals unprojected when the projection
// cannot run.
func (s *FantasyService) predict(mp int, home, away analytics.MatchupSide, remaining []int, schedule analytics.ProSchedule) (pred analytics.Prediction) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("projection failed, serving accumulated totals", "home", home.TeamID, "away", away.TeamID, "panic", r)
			pred = analytics.Unprojected(mp, home, away)
		}
	}()

	if schedule == nil {
		slog.Warn("no pro schedule, serving accumulated totals", "home", home.TeamID, "away", away.TeamID)
		return analytics.Unprojected(mp, home, away)
	}
	return s.projector.Predict(mp, home, away, remaining, schedule)
}

// GetRosterTotals sums each fantasy team's player season totals.
func (s *FantasyService) GetRosterTotals(ctx context.Context) ([]models.RosterTotals, error) {
	league, err := s.provider.League(ctx)
	if err != nil {
		return nil, upstreamErr("GetRosterTotals", err)
	}

	totals := make([]models.RosterTotals, 0, len(league.Teams))
	for _, team := range league.Teams {
		var line analytics.StatLine
		for _, p := range team.Roster {
			line.Add(p.Totals)
		}
		totals = append(totals, models.RosterTotals{
			TeamID:   team.TeamID,
			TeamName: team.Name,
			LogoURL:  team.LogoURL,
			Players:  len(team.Roster),
			Line:     line,
			Totals:   line.Totals(),
		})
	}
	return totals, nil
}

func (s *FantasyService) GetPlayers(ctx context.Context) (*models.PlayersExport, error) {
	league, err := s.provider.League(ctx)
	if err != nil {
		slog.Warn("league unavailable, falling back to stored players", "error", err)
		var stored models.PlayersExport
		if lerr := s.store.LoadDocument(ctx, snapshot.DocPlayers, &stored); lerr != nil {
			return nil, notFoundErr("GetPlayers", "no player data available")
		}
		return &stored, nil
	}
	return playersExport(league, s.now()), nil
}

func playersExport(league *models.League, now time.Time) *models.PlayersExport {
	players := league.Players()
	if players == nil {
		players = []models.Player{}
	}
	return &models.PlayersExport{
		Season:     league.Metadata.SeasonID,
		Players:    players,
		ExportDate: now,
	}
}

// Compare puts two teams of the latest stored week side by side.
func (s *FantasyService) Compare(ctx context.Context, team1, team2 string) (*models.TeamComparison, error) {
	const op = "Compare"

	periods, err := s.store.ListWeeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: listing weeks: %w", op, err)
	}
	if len(periods) == 0 {
		return nil, notFoundErr(op, "no stored weeks")
	}

	latest := periods[len(periods)-1]
	week, err := s.storedWeek(ctx, op, latest)
	if err != nil {
		return nil, err
	}

	names := make(map[int]string, len(week.Teams))
	for _, t := range week.Teams {
		names[t.TeamID] = t.TeamName
	}
	id1, ok1 := matchTeam(team1, names)
	id2, ok2 := matchTeam(team2, names)
	if !ok1 || !ok2 {
		return nil, notFoundErr(op, "one or both teams not found")
	}
	if id1 == id2 {
		return nil, invalidErr(op, "%q and %q are the same team", team1, team2)
	}

	r1, _ := week.Team(id1)
	r2, _ := week.Team(id2)
	h2h, _ := r1.Outcome(id2)
	return &models.TeamComparison{
		MatchupPeriod: latest,
		Team1:         *r1,
		Team2:         *r2,
		HeadToHead:    h2h,
	}, nil
}

// Export stores the league summary, the players document and every
// completed matchup period. A week that cannot be computed is logged and
// listed as failed without stopping the export.
func (s *FantasyService) Export(ctx context.Context) (*models.ExportResult, error) {
	const op = "Export"

	league, err := s.provider.RefreshLeague(ctx)
	if err != nil {
		return nil, upstreamErr(op, err)
	}

	now := s.now()
	if err := s.store.SaveDocument(ctx, snapshot.DocLeagueSummary, leagueSummary(league, now)); err != nil {
		return nil, fmt.Errorf("%s: saving league summary: %w", op, err)
	}
	if err := s.store.SaveDocument(ctx, snapshot.DocPlayers, playersExport(league, now)); err != nil {
		return nil, fmt.Errorf("%s: saving players: %w", op, err)
	}

	result := &models.ExportResult{MatchupPeriods: []int{}, ExportDate: now}
	for mp := 1; mp < league.Metadata.CurrentMatchupPeriod; mp++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		week, err := s.buildWeek(ctx, league, mp, false)
		if err != nil {
			slog.Warn("exporting week failed", "matchup_period", mp, "error", err)
			result.Failed = append(result.Failed, mp)
			continue
		}
		week.ExportDate = now
		if err := s.store.SaveWeek(ctx, week); err != nil {
			slog.Warn("saving exported week failed", "matchup_period", mp, "error", err)
			result.Failed = append(result.Failed, mp)
			continue
		}
		result.MatchupPeriods = append(result.MatchupPeriods, mp)
	}

	slog.Info("export complete", "weeks", len(result.MatchupPeriods), "failed", len(result.Failed))
	return result, nil
}

// ChatContext gathers the stored documents the chatbot answers from.
func (s *FantasyService) ChatContext(ctx context.Context) models.ChatContext {
	var out models.ChatContext

	var summary models.LeagueSummary
	if err := s.store.LoadDocument(ctx, snapshot.DocLeagueSummary, &summary); err == nil {
		out.LeagueSummary = &summary
	}

	if periods, err := s.store.ListWeeks(ctx); err == nil && len(periods) > 0 {
		if week, err := s.store.LoadWeek(ctx, periods[len(periods)-1]); err == nil {
			out.LatestWeek = week
		}
	}

	var players models.PlayersExport
	if err := s.store.LoadDocument(ctx, snapshot.DocPlayers, &players); err == nil {
		out.Players = &players
	}
	return out
}

// FindPlayer looks up a rostered player by approximate name.
func (s *FantasyService) FindPlayer(ctx context.Context, name string) (*models.Player, error) {
	const op = "FindPlayer"
	if name == "" {
		return nil, invalidErr(op, "player name required")
	}
	league, err := s.provider.League(ctx)
	if err != nil {
		return nil, upstreamErr(op, err)
	}
	player, ok := matchPlayer(name, league.Players())
	if !ok {
		return nil, notFoundErr(op, "no player matching %q", name)
	}
	return &player, nil
}

// FindTeam looks up a fantasy team and its roster by approximate name.
func (s *FantasyService) FindTeam(ctx context.Context, name string) (*models.FantasyTeam, error) {
	const op = "FindTeam"
	if name == "" {
		return nil, invalidErr(op, "team name required")
	}
	league, err := s.provider.League(ctx)
	if err != nil {
		return nil, upstreamErr(op, err)
	}
	id, ok := matchTeam(name, league.TeamNames())
	if !ok {
		return nil, notFoundErr(op, "no team matching %q", name)
	}
	team, _ := league.Team(id)
	return team, nil
}
