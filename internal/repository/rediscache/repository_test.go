package rediscache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	repo, err := NewRepository(url)
	if err != nil {
		t.Fatalf("NewRepository() error = %v", err)
	}
	repo.key = "hoopsbot:test:" + t.Name()
	t.Cleanup(func() {
		repo.client.Del(context.Background(), repo.key)
		repo.Close()
	})
	return repo
}

func TestRepository_RoundTrip(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	league := &models.League{
		Metadata:    models.LeagueMetadata{Name: "Hoops", MatchupPeriods: map[int][]int{1: {1, 2, 3}}},
		ProSchedule: analytics.ProSchedule{13: {17: true}},
	}
	if err := repo.SaveLeague(ctx, league, time.Minute); err != nil {
		t.Fatalf("SaveLeague() error = %v", err)
	}

	got, ok := repo.GetLeague(ctx)
	if !ok {
		t.Fatal("Expected cached league")
	}
	if got.Metadata.Name != "Hoops" || len(got.Metadata.ScoringPeriods(1)) != 3 {
		t.Errorf("Unexpected metadata %+v", got.Metadata)
	}
	if !got.ProSchedule.HasGame(13, 17) {
		t.Error("Expected pro schedule to survive the round trip")
	}
}

func TestNewRepository_BadURL(t *testing.T) {
	if _, err := NewRepository("not a url"); err == nil {
		t.Error("Expected error for malformed redis url")
	}
}
