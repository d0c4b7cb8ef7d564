package snapshot

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore keeps snapshots as JSON payloads in a goose-migrated sqlite
// database.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	slog.Info("opening snapshot database", "path", path)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := optimizeSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to optimize SQLite: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to run goose migrations: %w", err)
	}
	return nil
}

func optimizeSQLite(db *sql.DB) error {
	pragmas := []struct {
		name  string
		value string
	}{
		{"journal_mode", "WAL"},
		{"synchronous", "NORMAL"},
		{"busy_timeout", "5000"},
		{"temp_store", "MEMORY"},
	}

	for _, pragma := range pragmas {
		query := fmt.Sprintf("PRAGMA %s = %s", pragma.name, pragma.value)
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to set PRAGMA %s: %w", pragma.name, err)
		}
		slog.Debug("sqlite pragma set", "pragma", pragma.name, "value", pragma.value)
	}
	return nil
}

func (s *SQLiteStore) SaveWeek(ctx context.Context, week *analytics.WeekSnapshot) error {
	if err := validateWeek(week); err != nil {
		return err
	}
	payload, err := json.Marshal(week)
	if err != nil {
		return fmt.Errorf("encoding week %d: %w", week.MatchupPeriod, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO week_snapshots (matchup_period, exported_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(matchup_period) DO UPDATE SET
			exported_at = excluded.exported_at,
			payload = excluded.payload`,
		week.MatchupPeriod, week.ExportDate.UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("saving week %d: %w", week.MatchupPeriod, err)
	}
	return nil
}

func (s *SQLiteStore) LoadWeek(ctx context.Context, matchupPeriod int) (*analytics.WeekSnapshot, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM week_snapshots WHERE matchup_period = ?`, matchupPeriod).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading week %d: %w", matchupPeriod, err)
	}

	var week analytics.WeekSnapshot
	if err := json.Unmarshal([]byte(payload), &week); err != nil {
		return nil, fmt.Errorf("decoding week %d: %w", matchupPeriod, err)
	}
	return &week, nil
}

func (s *SQLiteStore) ListWeeks(ctx context.Context) ([]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT matchup_period FROM week_snapshots ORDER BY matchup_period`)
	if err != nil {
		return nil, fmt.Errorf("listing weeks: %w", err)
	}
	defer rows.Close()

	var weeks []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		weeks = append(weeks, n)
	}
	return weeks, rows.Err()
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, name string, v any) error {
	if err := validateDocument(name); err != nil {
		return err
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", name, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (name, updated_at, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			updated_at = excluded.updated_at,
			payload = excluded.payload`,
		name, time.Now().UTC(), string(payload))
	if err != nil {
		return fmt.Errorf("saving %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) LoadDocument(ctx context.Context, name string, v any) error {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("decoding %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
