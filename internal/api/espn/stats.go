package espn

import (
	"strings"

	"github.com/omarshaarawi/hoopsbot/internal/analytics"
	"github.com/omarshaarawi/hoopsbot/internal/models"
)

const (
	statPTS   = "0"
	statBLK   = "1"
	statSTL   = "2"
	statAST   = "3"
	statREB   = "6"
	statTO    = "11"
	statFGM   = "13"
	statFGA   = "14"
	statFTM   = "15"
	statFTA   = "16"
	stat3PM   = "17"
	statFGPct = "19"
	statFTPct = "20"
	statMIN   = "40"
	statGP    = "42"
)

const logoHost = "https://a.espncdn.com"

func statLine(stats map[string]float64) analytics.StatLine {
	return analytics.StatLine{
		PTS:     stats[statPTS],
		REB:     stats[statREB],
		AST:     stats[statAST],
		STL:     stats[statSTL],
		BLK:     stats[statBLK],
		ThreePM: stats[stat3PM],
		TO:      stats[statTO],
		Shooting: analytics.Shooting{
			FGM: stats[statFGM],
			FGA: stats[statFGA],
			FTM: stats[statFTM],
			FTA: stats[statFTA],
		},
		Minutes: stats[statMIN],
		Games:   stats[statGP],
	}
}

// categoryTotals reads a matchup's scoreByStat. Percentages come from the
// makes and attempts when present, otherwise from the settled ratio score.
func categoryTotals(scores map[string]models.StatScore) (analytics.CategoryTotals, analytics.StatLine) {
	values := make(map[string]float64, len(scores))
	for id, s := range scores {
		values[id] = s.Score
	}
	line := statLine(values)
	totals := line.Totals()
	if line.Shooting.FGA == 0 {
		totals[analytics.FGPct] = values[statFGPct]
	}
	if line.Shooting.FTA == 0 {
		totals[analytics.FTPct] = values[statFTPct]
	}
	return totals, line
}

// seasonLines returns the per-game averages and totals of the actual
// full-season split.
func seasonLines(player models.PlayerInfo, season int) (analytics.StatLine, analytics.StatLine) {
	for _, stat := range player.Stats {
		if stat.SeasonID == season && stat.StatSourceID == 0 && stat.StatSplitTypeID == 0 {
			return statLine(stat.AverageStats), statLine(stat.Stats)
		}
	}
	return analytics.StatLine{}, analytics.StatLine{}
}

// periodLine returns the actual stats a player put up during a scoring
// period, or the sum of every daily entry when scoringPeriod is zero.
func periodLine(player models.PlayerInfo, scoringPeriod int) analytics.StatLine {
	var line analytics.StatLine
	for _, stat := range player.Stats {
		if stat.StatSourceID != 0 || stat.StatSplitTypeID == 0 || stat.ScoringPeriodID == 0 {
			continue
		}
		if scoringPeriod > 0 && stat.ScoringPeriodID != scoringPeriod {
			continue
		}
		line.Add(statLine(stat.Stats))
	}
	return line
}

// NormalizeLogoURL turns protocol-relative and host-relative logo paths into
// absolute URLs.
func NormalizeLogoURL(logo string) string {
	switch {
	case logo == "":
		return ""
	case strings.HasPrefix(logo, "http://"), strings.HasPrefix(logo, "https://"):
		return logo
	case strings.HasPrefix(logo, "//"):
		return "https:" + logo
	case strings.HasPrefix(logo, "/"):
		return logoHost + logo
	default:
		return logoHost + "/i/teamlogos/nba/500/" + logo
	}
}

func PositionName(positionID int) string {
	positions := map[int]string{
		1: "PG", 2: "SG", 3: "SF", 4: "PF", 5: "C",
	}
	if pos, ok := positions[positionID]; ok {
		return pos
	}
	return "Unknown"
}

func ProTeamName(proTeamID int) string {
	teams := map[int]string{
		1: "ATL", 2: "BOS", 3: "NOP", 4: "CHI", 5: "CLE", 6: "DAL", 7: "DEN", 8: "DET",
		9: "GSW", 10: "HOU", 11: "IND", 12: "LAC", 13: "LAL", 14: "MIA", 15: "MIL", 16: "MIN",
		17: "BKN", 18: "NYK", 19: "ORL", 20: "PHI", 21: "PHX", 22: "POR", 23: "SAC", 24: "SAS",
		25: "OKC", 26: "UTA", 27: "WAS", 28: "TOR", 29: "MEM", 30: "CHA",
	}

	if team, ok := teams[proTeamID]; ok {
		return team
	}

	return "FA"
}

func LineupSlotName(slotID int) string {
	switch slotID {
	case 0:
		return "PG"
	case 1:
		return "SG"
	case 2:
		return "SF"
	case 3:
		return "PF"
	case 4:
		return "C"
	case 5:
		return "G"
	case 6:
		return "F"
	case 7:
		return "SG/SF"
	case 8:
		return "G/F"
	case 9:
		return "PF/C"
	case 10:
		return "F/C"
	case 11:
		return "UT"
	case 12:
		return "BE"
	case 13:
		return "IR"
	default:
		return "Unknown"
	}
}

// IsActiveSlot reports whether a lineup slot counts toward the team's stats.
func IsActiveSlot(slotID int) bool {
	return slotID >= 0 && slotID <= 11
}
