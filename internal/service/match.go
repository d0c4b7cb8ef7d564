package service

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/omarshaarawi/hoopsbot/internal/models"
)

const matchThreshold = 0.7

func similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	maxLen := max(len(a), len(b))
	if maxLen == 0 {
		return 0
	}
	distance := fuzzy.LevenshteinDistance(a, b)
	return 1 - float64(distance)/float64(maxLen)
}

// matchTeam resolves a user-typed team name. An exact case-insensitive match
// wins, then a unique in-order character match, then the closest name above
// the similarity threshold. Lower team ids win ties.
func matchTeam(query string, names map[int]string) (int, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, false
	}

	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		if strings.EqualFold(names[id], query) {
			return id, true
		}
	}

	var partial []int
	for _, id := range ids {
		if fuzzy.MatchFold(query, names[id]) {
			partial = append(partial, id)
		}
	}
	if len(partial) == 1 {
		return partial[0], true
	}

	bestID, bestScore := 0, matchThreshold
	for _, id := range ids {
		if score := similarity(query, names[id]); score > bestScore {
			bestID, bestScore = id, score
		}
	}
	return bestID, bestID != 0
}

// matchPlayer finds the rostered player whose name is closest to query.
func matchPlayer(query string, players []models.Player) (models.Player, bool) {
	query = strings.TrimSpace(query)
	var best models.Player
	bestScore := matchThreshold
	found := false

	for _, p := range players {
		if strings.EqualFold(p.Name, query) {
			return p, true
		}
		if score := similarity(query, p.Name); score > bestScore {
			best, bestScore, found = p, score, true
		}
	}
	return best, found
}
