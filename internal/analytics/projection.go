package analytics

import (
	"math"
	"strings"
	"time"
)

const (
	DefaultMaxCalendarDays = 3

	minConfidence = 50.0
	maxConfidence = 95.0
)

// InjuryOut is the only designation that keeps a player out of a projection.
const InjuryOut = "OUT"

// RosterPlayer is a lineup entry with the player's season per-game averages.
type RosterPlayer struct {
	PlayerID     int      `json:"player_id"`
	Name         string   `json:"name"`
	ProTeamID    int      `json:"pro_team_id"`
	InjuryStatus string   `json:"injury_status"`
	Averages     StatLine `json:"averages"`
}

// Out reports whether the player is confirmed out. Questionable and
// day-to-day players still project.
func (p RosterPlayer) Out() bool {
	return strings.EqualFold(strings.TrimSpace(p.InjuryStatus), InjuryOut)
}

// ProSchedule maps a pro team id to the scoring periods it plays in.
type ProSchedule map[int]map[int]bool

func (s ProSchedule) HasGame(proTeamID, scoringPeriod int) bool {
	if s == nil {
		return false
	}
	return s[proTeamID][scoringPeriod]
}

// MatchupSide is one team's side of an in-progress matchup.
type MatchupSide struct {
	TeamID      int            `json:"team_id"`
	TeamName    string         `json:"name"`
	Accumulated StatLine       `json:"accumulated"`
	// Settled holds the provider's category values. FG% and FT% fall back
	// to it when Accumulated has no attempts.
	Settled     CategoryTotals `json:"settled,omitempty"`
	Lineup      []RosterPlayer `json:"lineup"`
}

type ProjectedTeam struct {
	TeamID         int            `json:"team_id"`
	TeamName       string         `json:"name"`
	Current        CategoryTotals `json:"current"`
	Projected      CategoryTotals `json:"projected"`
	Line           StatLine       `json:"projected_line"`
	RemainingGames int            `json:"remaining_games"`
}

type CategoryProjection struct {
	Category Category `json:"category"`
	Home     float64  `json:"home"`
	Away     float64  `json:"away"`
	Winner   string   `json:"winner"`
}

type Prediction struct {
	MatchupPeriod    int                  `json:"matchup_period"`
	Home             ProjectedTeam        `json:"home"`
	Away             ProjectedTeam        `json:"away"`
	HomeWins         int                  `json:"home_wins"`
	AwayWins         int                  `json:"away_wins"`
	Ties             int                  `json:"ties"`
	Categories       []CategoryProjection `json:"categories"`
	PredictedWinner  string               `json:"predicted_winner"`
	Confidence       float64              `json:"confidence"`
	Projected        bool                 `json:"projected"`
	RemainingPeriods []int                `json:"remaining_periods"`
}

type Projector struct {
	// MaxCalendarDays bounds the calendar fallback for remaining periods.
	MaxCalendarDays int
	Now             func() time.Time
}

func NewProjector(maxCalendarDays int) *Projector {
	if maxCalendarDays <= 0 {
		maxCalendarDays = DefaultMaxCalendarDays
	}
	return &Projector{MaxCalendarDays: maxCalendarDays, Now: time.Now}
}

// RemainingPeriods returns the scoring periods of the matchup still to be
// played, current one included. When the period list is empty or holds no
// period from current on, it falls back to the days left until Sunday,
// capped at MaxCalendarDays and finalPeriod.
func (p *Projector) RemainingPeriods(matchupPeriods []int, current, finalPeriod int) []int {
	if current <= 0 {
		return []int{}
	}
	remaining := []int{}
	for _, sp := range matchupPeriods {
		if sp >= current && (finalPeriod <= 0 || sp <= finalPeriod) {
			remaining = append(remaining, sp)
		}
	}
	if len(remaining) > 0 {
		return remaining
	}

	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	limit := p.MaxCalendarDays
	if limit <= 0 {
		limit = DefaultMaxCalendarDays
	}

	// Monday is day zero of the matchup week.
	weekday := (int(now().Weekday()) + 6) % 7
	days := min(6-weekday+1, limit)
	end := current + days - 1
	if finalPeriod > 0 {
		end = min(end, finalPeriod)
	}
	for sp := current; sp <= end; sp++ {
		remaining = append(remaining, sp)
	}
	return remaining
}

// ProjectTeam adds each eligible player's per-game averages to the
// accumulated line for every remaining period their pro team plays.
func ProjectTeam(side MatchupSide, remaining []int, schedule ProSchedule) ProjectedTeam {
	line := side.Accumulated
	games := 0
	for _, sp := range remaining {
		for _, player := range side.Lineup {
			if player.Out() || player.ProTeamID == 0 || player.Averages.IsZero() {
				continue
			}
			if !schedule.HasGame(player.ProTeamID, sp) {
				continue
			}
			avg := player.Averages
			avg.Games = 1
			line.Add(avg)
			games++
		}
	}
	return ProjectedTeam{
		TeamID:         side.TeamID,
		TeamName:       side.TeamName,
		Current:        withSettledRatios(side.Accumulated, side.Settled),
		Projected:      withSettledRatios(line, side.Settled),
		Line:           line,
		RemainingGames: games,
	}
}

// withSettledRatios converts line to totals, keeping the settled FG% or FT%
// for a ratio the line has no attempts for.
func withSettledRatios(line StatLine, settled CategoryTotals) CategoryTotals {
	totals := line.Totals()
	if line.Shooting.FGA == 0 {
		totals[FGPct] = settled.Get(FGPct)
	}
	if line.Shooting.FTA == 0 {
		totals[FTPct] = settled.Get(FTPct)
	}
	return totals
}

// Predict projects both sides and compares the projected totals.
func (p *Projector) Predict(matchupPeriod int, home, away MatchupSide, remaining []int, schedule ProSchedule) Prediction {
	h := ProjectTeam(home, remaining, schedule)
	a := ProjectTeam(away, remaining, schedule)
	pred := comparePrediction(matchupPeriod, h, a, h.Projected, a.Projected)
	pred.Projected = true
	pred.RemainingPeriods = append([]int{}, remaining...)
	return pred
}

// Unprojected compares the accumulated totals only.
func Unprojected(matchupPeriod int, home, away MatchupSide) Prediction {
	h := ProjectTeam(MatchupSide{TeamID: home.TeamID, TeamName: home.TeamName, Accumulated: home.Accumulated, Settled: home.Settled}, nil, nil)
	a := ProjectTeam(MatchupSide{TeamID: away.TeamID, TeamName: away.TeamName, Accumulated: away.Accumulated, Settled: away.Settled}, nil, nil)
	pred := comparePrediction(matchupPeriod, h, a, h.Current, a.Current)
	pred.RemainingPeriods = []int{}
	return pred
}

func comparePrediction(matchupPeriod int, h, a ProjectedTeam, ht, at CategoryTotals) Prediction {
	pred := Prediction{
		MatchupPeriod: matchupPeriod,
		Home:          h,
		Away:          a,
		Categories:    make([]CategoryProjection, 0, len(Categories)),
	}
	var margin float64
	for _, c := range Categories {
		hv, av := ht.Get(c), at.Get(c)
		cp := CategoryProjection{Category: c, Home: hv, Away: av, Winner: "tie"}
		switch CompareCategory(c, hv, av) {
		case Win:
			pred.HomeWins++
			cp.Winner = "home"
		case Loss:
			pred.AwayWins++
			cp.Winner = "away"
		default:
			pred.Ties++
		}
		margin += relativeMargin(hv, av)
		pred.Categories = append(pred.Categories, cp)
	}

	switch {
	case pred.HomeWins > pred.AwayWins:
		pred.PredictedWinner = h.TeamName
	case pred.AwayWins > pred.HomeWins:
		pred.PredictedWinner = a.TeamName
	}
	pred.Confidence = Confidence(pred.HomeWins-pred.AwayWins, margin/float64(len(Categories)))
	return pred
}

// Confidence scales with the category edge and the mean relative margin,
// clamped to [50, 95] and rounded to one decimal.
func Confidence(edge int, meanMargin float64) float64 {
	c := minConfidence + 35*math.Abs(float64(edge))/float64(len(Categories)) + 100*meanMargin
	c = math.Max(minConfidence, math.Min(maxConfidence, c))
	return math.Round(c*10) / 10
}

func relativeMargin(a, b float64) float64 {
	denom := math.Max(math.Abs(a), math.Abs(b))
	if denom == 0 {
		return 0
	}
	return math.Abs(a-b) / denom
}
