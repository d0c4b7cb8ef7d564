package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
)

// FileStore keeps one pretty-printed JSON file per week and per document
// under Root.
type FileStore struct {
	Root string
}

func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &FileStore{Root: root}, nil
}

func weekFile(matchupPeriod int) string {
	return fmt.Sprintf("week%d.json", matchupPeriod)
}

func (s *FileStore) path(rel string) string {
	return filepath.Join(s.Root, rel)
}

func (s *FileStore) SaveWeek(_ context.Context, week *analytics.WeekSnapshot) error {
	if err := validateWeek(week); err != nil {
		return err
	}
	return s.writeJSON(weekFile(week.MatchupPeriod), week)
}

func (s *FileStore) LoadWeek(_ context.Context, matchupPeriod int) (*analytics.WeekSnapshot, error) {
	var week analytics.WeekSnapshot
	if err := s.readJSON(weekFile(matchupPeriod), &week); err != nil {
		return nil, err
	}
	return &week, nil
}

func (s *FileStore) ListWeeks(_ context.Context) ([]int, error) {
	matches, err := filepath.Glob(s.path("week*.json"))
	if err != nil {
		return nil, err
	}

	weeks := make([]int, 0, len(matches))
	for _, m := range matches {
		name := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(m), "week"), ".json")
		n, err := strconv.Atoi(name)
		if err != nil || n < 1 {
			continue
		}
		weeks = append(weeks, n)
	}
	sort.Ints(weeks)
	return weeks, nil
}

func (s *FileStore) SaveDocument(_ context.Context, name string, v any) error {
	if err := validateDocument(name); err != nil {
		return err
	}
	return s.writeJSON(name+".json", v)
}

func (s *FileStore) LoadDocument(_ context.Context, name string, v any) error {
	if err := validateDocument(name); err != nil {
		return err
	}
	return s.readJSON(name+".json", v)
}

func (s *FileStore) Close() error { return nil }

// writeJSON replaces the file through a rename so readers never observe a
// partial write.
func (s *FileStore) writeJSON(rel string, v any) error {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", rel, err)
	}

	tmp, err := os.CreateTemp(s.Root, rel+".*.tmp")
	if err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", rel, err)
	}
	return os.Rename(tmp.Name(), s.path(rel))
}

func (s *FileStore) readJSON(rel string, v any) error {
	body, err := os.ReadFile(s.path(rel))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding %s: %w", rel, err)
	}
	return nil
}
