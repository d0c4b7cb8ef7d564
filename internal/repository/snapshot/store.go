package snapshot

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
)

// ErrNotFound is returned when no snapshot or document is stored under the
// requested key.
var ErrNotFound = errors.New("snapshot not found")

const (
	DocLeagueSummary = "league_summary"
	DocPlayers       = "players"
)

// Store persists finalized week snapshots and the export documents. A saved
// week replaces any earlier snapshot of the same matchup period.
type Store interface {
	SaveWeek(ctx context.Context, week *analytics.WeekSnapshot) error
	LoadWeek(ctx context.Context, matchupPeriod int) (*analytics.WeekSnapshot, error)
	ListWeeks(ctx context.Context) ([]int, error)
	SaveDocument(ctx context.Context, name string, v any) error
	LoadDocument(ctx context.Context, name string, v any) error
	Close() error
}

// New opens the configured backend.
func New(backend, dataDir, dbPath string) (Store, error) {
	switch backend {
	case "", "file":
		return NewFileStore(dataDir)
	case "sqlite":
		return NewSQLiteStore(dbPath)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}

func validateWeek(week *analytics.WeekSnapshot) error {
	if week == nil {
		return errors.New("nil week snapshot")
	}
	if week.MatchupPeriod < 1 {
		return fmt.Errorf("invalid matchup period %d", week.MatchupPeriod)
	}
	return nil
}

func validateDocument(name string) error {
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}
