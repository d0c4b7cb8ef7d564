package fantasy

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/omarshaarawi/hoopsbot/internal/api/espn"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

// LeagueCache stores the assembled league handle between requests.
type LeagueCache interface {
	GetLeague(ctx context.Context) (*models.League, bool)
	SaveLeague(ctx context.Context, league *models.League, ttl time.Duration) error
}

type API struct {
	espnAPI *espn.API
	cache   LeagueCache
	ttl     time.Duration
	workers int

	// serializes refreshes so concurrent misses fetch once
	refreshMu sync.Mutex
}

func NewAPI(espnAPI *espn.API, cache LeagueCache, ttl time.Duration, workers int) *API {
	if workers < 1 {
		workers = 1
	}
	return &API{espnAPI: espnAPI, cache: cache, ttl: ttl, workers: workers}
}

// League returns the cached league handle, fetching it on a miss.
func (a *API) League(ctx context.Context) (*models.League, error) {
	if league, ok := a.cache.GetLeague(ctx); ok {
		return league, nil
	}

	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()

	if league, ok := a.cache.GetLeague(ctx); ok {
		return league, nil
	}
	return a.fetchLeague(ctx)
}

// RefreshLeague bypasses the cache and stores the fresh handle.
func (a *API) RefreshLeague(ctx context.Context) (*models.League, error) {
	a.refreshMu.Lock()
	defer a.refreshMu.Unlock()
	return a.fetchLeague(ctx)
}

func (a *API) fetchLeague(ctx context.Context) (*models.League, error) {
	g, gCtx := errgroup.WithContext(ctx)

	var (
		metadata  *models.LeagueMetadata
		teams     []models.FantasyTeam
		standings []models.TeamStanding
		schedule  []models.ScheduledMatchup
	)

	g.Go(func() error {
		var err error
		metadata, err = a.espnAPI.GetLeagueMetadata(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		teams, standings, err = a.espnAPI.GetTeams(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		schedule, err = a.espnAPI.GetSchedule(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetching league: %w", err)
	}

	// Without the pro schedule projections degrade to current totals, so a
	// failure here is not fatal.
	proSchedule, err := a.espnAPI.GetProSchedule(ctx)
	if err != nil {
		slog.Warn("pro schedule unavailable", "error", err)
	}

	league := &models.League{
		Metadata:    *metadata,
		Teams:       teams,
		Standings:   standings,
		Schedule:    schedule,
		ProSchedule: proSchedule,
		FetchedAt:   time.Now(),
	}

	if err := a.cache.SaveLeague(ctx, league, a.ttl); err != nil {
		slog.Warn("caching league failed", "error", err)
	}
	return league, nil
}

func (a *API) GetBoxScores(ctx context.Context, matchupPeriod, scoringPeriod int) ([]models.BoxScore, error) {
	return a.espnAPI.GetBoxScores(ctx, matchupPeriod, scoringPeriod)
}

// GetBoxScoresByPeriods fetches one box score set per scoring period with
// at most workers requests in flight. Results are keyed by scoring period.
func (a *API) GetBoxScoresByPeriods(ctx context.Context, matchupPeriod int, scoringPeriods []int) (map[int][]models.BoxScore, error) {
	results := make([][]models.BoxScore, len(scoringPeriods))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, sp := range scoringPeriods {
		g.Go(func() error {
			boxes, err := a.espnAPI.GetBoxScores(gCtx, matchupPeriod, sp)
			if err != nil {
				return fmt.Errorf("scoring period %d: %w", sp, err)
			}
			results[i] = boxes
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	byPeriod := make(map[int][]models.BoxScore, len(scoringPeriods))
	for i, sp := range scoringPeriods {
		byPeriod[sp] = results[i]
	}
	return byPeriod, nil
}
