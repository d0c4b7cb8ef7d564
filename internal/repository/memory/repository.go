package memory

import (
	"context"
	"sync"
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/models"
)

// Repository keeps the league handle in process memory until it expires.
type Repository struct {
	league  *models.League
	expires time.Time
	now     func() time.Time
	mu      sync.RWMutex
}

func NewRepository() *Repository {
	return &Repository{now: time.Now}
}

func (r *Repository) SaveLeague(_ context.Context, league *models.League, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.league = league
	r.expires = r.now().Add(ttl)
	return nil
}

func (r *Repository) GetLeague(_ context.Context) (*models.League, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.league == nil || !r.now().Before(r.expires) {
		return nil, false
	}
	return r.league, true
}

