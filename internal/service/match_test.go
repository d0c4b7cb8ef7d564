package service

import (
	"errors"
	"fmt"
	"testing"

	"github.com/omarshaarawi/hoopsbot/internal/models"
)

func TestMatchTeam(t *testing.T) {
	names := map[int]string{
		1: "Dunkers",
		2: "Breakers",
		3: "Swish Kings",
		4: "Swish Queens",
	}

	tests := []struct {
		query  string
		wantID int
		wantOK bool
	}{
		{"Dunkers", 1, true},
		{"  breakers ", 2, true},
		{"dunkrs", 1, true},
		{"kings", 3, true},
		{"Breakerz", 2, true},
		{"swish", 0, false},
		{"", 0, false},
		{"Completely Different", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			id, ok := matchTeam(tt.query, names)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("matchTeam(%q) = %d, %v; want %d, %v", tt.query, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestMatchPlayer(t *testing.T) {
	players := []models.Player{
		{PlayerID: 1, Name: "Nikola Jokic"},
		{PlayerID: 2, Name: "Jalen Brunson"},
	}

	if p, ok := matchPlayer("nikola jokic", players); !ok || p.PlayerID != 1 {
		t.Errorf("Expected exact match on player 1, got %d, %v", p.PlayerID, ok)
	}
	if p, ok := matchPlayer("Nikola Jokić", players); !ok || p.PlayerID != 1 {
		t.Errorf("Expected close match on player 1, got %d, %v", p.PlayerID, ok)
	}
	if _, ok := matchPlayer("Stephen Curry", players); ok {
		t.Error("Expected no match for an unrostered player")
	}
}

func TestErrorKinds(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("handler: %w", upstreamErr("GetWeek", cause))

	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Error("Expected upstream kind to match")
	}
	if errors.Is(err, ErrDataNotFound) {
		t.Error("Expected upstream error not to match not-found")
	}
	if !errors.Is(err, cause) {
		t.Error("Expected the cause to stay reachable")
	}

	var svcErr *Error
	if !errors.As(err, &svcErr) || svcErr.Op != "GetWeek" {
		t.Errorf("Expected *Error with op GetWeek, got %v", err)
	}

	if !errors.Is(notFoundErr("Compare", "team %q missing", "x"), ErrDataNotFound) {
		t.Error("Expected not-found kind to match")
	}
	if !errors.Is(invalidErr("Compare", "same team"), ErrInvalidInput) {
		t.Error("Expected invalid-input kind to match")
	}
}
