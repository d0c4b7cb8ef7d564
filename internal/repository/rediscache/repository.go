package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/omarshaarawi/hoopsbot/internal/models"
)

const leagueKey = "hoopsbot:league"

// Repository shares the league handle between processes through Redis.
type Repository struct {
	client *redis.Client
	key    string
}

func NewRepository(redisURL string) (*Repository, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &Repository{client: client, key: leagueKey}, nil
}

func (r *Repository) SaveLeague(ctx context.Context, league *models.League, ttl time.Duration) error {
	data, err := json.Marshal(league)
	if err != nil {
		return fmt.Errorf("encoding league: %w", err)
	}
	return r.client.Set(ctx, r.key, data, ttl).Err()
}

// GetLeague treats any redis or decode failure as a miss so the caller
// refetches from ESPN.
func (r *Repository) GetLeague(ctx context.Context) (*models.League, bool) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("redis league lookup failed", "error", err)
		}
		return nil, false
	}

	var league models.League
	if err := json.Unmarshal(data, &league); err != nil {
		slog.Warn("discarding undecodable cached league", "error", err)
		return nil, false
	}
	return &league, true
}

func (r *Repository) Close() error {
	return r.client.Close()
}
