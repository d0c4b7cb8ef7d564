package analytics

import (
	"math"
	"sort"
)

const (
	recentFormWeeks      = 4
	recentFormMinWeeks   = 3
	improvementWindow    = 4
	improvementMinWeeks  = 8
	trendListSize        = 3
	matchupMinMeetings   = 2
	bestMatchupWinRate   = 0.8
	worstMatchupWinRate  = 0.2
	consistencyMinDivide = 1.0
)

// Record is a win/loss/tie record.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Ties   int `json:"ties"`
}

func (r Record) Games() int { return r.Wins + r.Losses + r.Ties }

// WinPct counts ties as half a win.
func (r Record) WinPct() float64 {
	return safeDiv(float64(r.Wins)+0.5*float64(r.Ties), float64(r.Games()))
}

type ScheduledResult string

const (
	ResultWin  ScheduledResult = "W"
	ResultLoss ScheduledResult = "L"
	ResultTie  ScheduledResult = "T"
)

type Margin string

const (
	MarginNone        Margin = ""
	MarginCloseWin    Margin = "close_win"
	MarginCloseLoss   Margin = "close_loss"
	MarginBlowoutWin  Margin = "blowout_win"
	MarginBlowoutLoss Margin = "blowout_loss"
)

// ClassifyScheduled turns a scheduled-opponent outcome into a result and a
// margin class. Every outcome gets exactly one class, possibly MarginNone.
func ClassifyScheduled(o MatchupOutcome) (ScheduledResult, Margin) {
	switch {
	case o.Won >= BeatThreshold:
		return ResultWin, marginFor(o.Won, o.Lost, MarginCloseWin, MarginBlowoutWin)
	case o.Lost >= BeatThreshold:
		return ResultLoss, marginFor(o.Lost, o.Won, MarginCloseLoss, MarginBlowoutLoss)
	default:
		return ResultTie, MarginNone
	}
}

func marginFor(winner, loser int, closeClass, blowoutClass Margin) Margin {
	switch {
	case winner >= 7 || loser <= 2:
		return blowoutClass
	case (winner == 5 && loser == 4) || (winner == 6 && loser == 3):
		return closeClass
	default:
		return MarginNone
	}
}

// SeasonInput is everything the aggregator needs for one report.
type SeasonInput struct {
	Weeks         []*WeekSnapshot
	CurrentPeriod int
	// Records are the provider standings keyed by team id.
	Records map[int]Record
}

type TeamSeasonStats struct {
	TeamID            int                  `json:"team_id"`
	TeamName          string               `json:"name"`
	LogoURL           string               `json:"logo_url"`
	WeeksPlayed       int                  `json:"weeks_played"`
	TotalTeamsBeaten  int                  `json:"total_teams_beaten"`
	AvgTeamsBeaten    float64              `json:"avg_teams_beaten"`
	Variance          float64              `json:"variance"`
	StdDev            float64              `json:"std_dev"`
	Consistency       float64              `json:"consistency_ratio"`
	AllPlayWinPct     float64              `json:"all_play_win_pct"`
	TotalCategoryWins int                  `json:"total_category_wins"`
	CategoryWins      map[Category]int     `json:"category_wins"`
	CategoryWinRates  map[Category]float64 `json:"category_win_rates"`
	CategoryBalance   float64              `json:"category_balance"`
	CurrentStreak     int                  `json:"current_streak"`
	LongestStreak     int                  `json:"longest_streak"`
	ScheduledRecord   Record               `json:"scheduled_record"`
	CloseWins         int                  `json:"close_wins"`
	CloseLosses       int                  `json:"close_losses"`
	BlowoutWins       int                  `json:"blowout_wins"`
	BlowoutLosses     int                  `json:"blowout_losses"`
	RecentForm        float64              `json:"recent_form"`
	RecentWeeks       int                  `json:"recent_weeks"`
	Improvement       *float64             `json:"improvement,omitempty"`
	Record            Record               `json:"record"`
	WinPct            float64              `json:"win_pct"`
}

type Leader struct {
	TeamID   int     `json:"team_id"`
	TeamName string  `json:"name"`
	Value    float64 `json:"value"`
}

type Leaders struct {
	MostTeamsBeaten *Leader `json:"most_teams_beaten"`
	BestWinPct      *Leader `json:"best_win_pct"`
	MostDominant    *Leader `json:"most_dominant"`
	MostConsistent  *Leader `json:"most_consistent"`
	MostBalanced    *Leader `json:"most_balanced"`
}

type CategoryLeader struct {
	Category Category `json:"category"`
	Leader
}

type TrendEntry struct {
	TeamID     int     `json:"team_id"`
	TeamName   string  `json:"name"`
	RecentForm float64 `json:"recent_form"`
	Weeks      int     `json:"weeks"`
}

// MatchupRecord is one team's scheduled record against one opponent.
type MatchupRecord struct {
	TeamID       int     `json:"team_id"`
	TeamName     string  `json:"name"`
	OpponentID   int     `json:"opponent_id"`
	OpponentName string  `json:"opponent_name"`
	Record
	Meetings int     `json:"meetings"`
	WinRate  float64 `json:"win_rate"`
}

type SeasonReport struct {
	CurrentPeriod       int               `json:"current_matchup_period"`
	WeeksAnalyzed       []int             `json:"weeks_analyzed"`
	Teams               []TeamSeasonStats `json:"teams"`
	Leaders             Leaders           `json:"leaders"`
	CategoryLeaders     []CategoryLeader  `json:"category_leaders"`
	CategorySpecialists []CategoryLeader  `json:"category_specialists"`
	HotTeams            []TrendEntry      `json:"hot_teams"`
	ColdTeams           []TrendEntry      `json:"cold_teams"`
	MostImproved        *Leader           `json:"most_improved"`
	BestMatchups        []MatchupRecord   `json:"best_matchups"`
	WorstMatchups       []MatchupRecord   `json:"worst_matchups"`
	HeadToHead          []MatchupRecord   `json:"head_to_head"`
	ScheduleDifficulty  []DifficultyEntry `json:"schedule_difficulty,omitempty"`
}

// Team looks up a team's season stats by id.
func (r *SeasonReport) Team(teamID int) (*TeamSeasonStats, bool) {
	for i := range r.Teams {
		if r.Teams[i].TeamID == teamID {
			return &r.Teams[i], true
		}
	}
	return nil, false
}

type finalWeek struct {
	period      int
	teamsBeaten int
	result      ScheduledResult
	hasResult   bool
}

type teamAcc struct {
	stats       TeamSeasonStats
	beaten      []float64
	final       []finalWeek
	comparisons int
}

type pairKey struct{ team, opponent int }

// AggregateSeason derives the season report from weekly snapshots. The
// current period still counts toward all-play totals but is left out of every
// scheduled-opponent metric, recent form and improvement.
func AggregateSeason(in SeasonInput) *SeasonReport {
	weeks := orderedWeeks(in.Weeks)

	report := &SeasonReport{
		CurrentPeriod:       in.CurrentPeriod,
		WeeksAnalyzed:       make([]int, 0, len(weeks)),
		CategoryLeaders:     []CategoryLeader{},
		CategorySpecialists: []CategoryLeader{},
		HotTeams:            []TrendEntry{},
		ColdTeams:           []TrendEntry{},
		BestMatchups:        []MatchupRecord{},
		WorstMatchups:       []MatchupRecord{},
		HeadToHead:          []MatchupRecord{},
	}

	accs := map[int]*teamAcc{}
	acc := func(id int, name, logo string) *teamAcc {
		a, ok := accs[id]
		if !ok {
			a = &teamAcc{stats: TeamSeasonStats{
				TeamID:           id,
				CategoryWins:     make(map[Category]int, len(Categories)),
				CategoryWinRates: make(map[Category]float64, len(Categories)),
			}}
			for _, c := range Categories {
				a.stats.CategoryWins[c] = 0
				a.stats.CategoryWinRates[c] = 0
			}
			accs[id] = a
		}
		if name != "" {
			a.stats.TeamName = name
		}
		if logo != "" {
			a.stats.LogoURL = logo
		}
		return a
	}

	names := map[int]string{}
	h2h := map[pairKey]*MatchupRecord{}

	for _, w := range weeks {
		report.WeeksAnalyzed = append(report.WeeksAnalyzed, w.MatchupPeriod)
		final := in.CurrentPeriod <= 0 || w.MatchupPeriod < in.CurrentPeriod

		for i := range w.Teams {
			t := &w.Teams[i]
			names[t.TeamID] = t.TeamName
			a := acc(t.TeamID, t.TeamName, t.LogoURL)

			a.beaten = append(a.beaten, float64(t.TeamsBeaten))
			a.stats.TotalTeamsBeaten += t.TeamsBeaten
			a.stats.TotalCategoryWins += t.CategoryWins
			a.comparisons += len(t.Outcomes)
			for _, c := range Categories {
				a.stats.CategoryWins[c] += t.CategoryWinCounts[c]
			}

			if !final {
				continue
			}
			fw := finalWeek{period: w.MatchupPeriod, teamsBeaten: t.TeamsBeaten}
			if o, ok := t.ScheduledOutcome(); ok {
				result, margin := ClassifyScheduled(o)
				fw.result, fw.hasResult = result, true
				a.applyResult(result, margin)

				key := pairKey{t.TeamID, o.OpponentID}
				rec, ok := h2h[key]
				if !ok {
					rec = &MatchupRecord{TeamID: t.TeamID, OpponentID: o.OpponentID}
					h2h[key] = rec
				}
				rec.OpponentName = o.OpponentName
				switch result {
				case ResultWin:
					rec.Wins++
				case ResultLoss:
					rec.Losses++
				default:
					rec.Ties++
				}
			}
			a.final = append(a.final, fw)
		}
	}

	for id, rec := range in.Records {
		a := acc(id, "", "")
		a.stats.Record = rec
	}

	ids := make([]int, 0, len(accs))
	for id := range accs {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		accs[id].finish()
	}

	report.Teams = make([]TeamSeasonStats, 0, len(ids))
	for _, id := range ids {
		report.Teams = append(report.Teams, accs[id].stats)
	}

	report.Leaders = pickLeaders(report.Teams)
	report.CategoryLeaders, report.CategorySpecialists = pickCategoryLeaders(report.Teams)
	report.HotTeams, report.ColdTeams = pickTrends(report.Teams)
	report.MostImproved = pickMostImproved(report.Teams)
	report.HeadToHead, report.BestMatchups, report.WorstMatchups = matchupRecords(h2h, names)

	sort.SliceStable(report.Teams, func(i, j int) bool {
		return report.Teams[i].TotalTeamsBeaten > report.Teams[j].TotalTeamsBeaten
	})

	return report
}

// orderedWeeks drops nil snapshots and keeps the last snapshot supplied for
// each period, sorted by period.
func orderedWeeks(in []*WeekSnapshot) []*WeekSnapshot {
	byPeriod := map[int]*WeekSnapshot{}
	for _, w := range in {
		if w == nil {
			continue
		}
		byPeriod[w.MatchupPeriod] = w
	}
	out := make([]*WeekSnapshot, 0, len(byPeriod))
	for _, w := range byPeriod {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MatchupPeriod < out[j].MatchupPeriod })
	return out
}

func (a *teamAcc) applyResult(result ScheduledResult, margin Margin) {
	switch result {
	case ResultWin:
		a.stats.ScheduledRecord.Wins++
	case ResultLoss:
		a.stats.ScheduledRecord.Losses++
	default:
		a.stats.ScheduledRecord.Ties++
	}
	switch margin {
	case MarginCloseWin:
		a.stats.CloseWins++
	case MarginCloseLoss:
		a.stats.CloseLosses++
	case MarginBlowoutWin:
		a.stats.BlowoutWins++
	case MarginBlowoutLoss:
		a.stats.BlowoutLosses++
	}
}

func (a *teamAcc) finish() {
	s := &a.stats
	s.WeeksPlayed = len(a.beaten)
	s.AvgTeamsBeaten = mean(a.beaten)
	s.Variance = variance(a.beaten)
	s.StdDev = math.Sqrt(s.Variance)
	s.Consistency = s.Variance / math.Max(s.AvgTeamsBeaten, consistencyMinDivide)
	s.AllPlayWinPct = safeDiv(float64(s.TotalTeamsBeaten), float64(a.comparisons))

	counts := make([]float64, 0, len(Categories))
	for _, c := range Categories {
		counts = append(counts, float64(s.CategoryWins[c]))
		s.CategoryWinRates[c] = safeDiv(float64(s.CategoryWins[c]), float64(a.comparisons))
	}
	s.CategoryBalance = math.Sqrt(variance(counts))

	s.CurrentStreak, s.LongestStreak = streaks(a.final)

	if n := len(a.final); n >= recentFormMinWeeks {
		recent := a.final[max(0, n-recentFormWeeks):]
		s.RecentForm = meanBeaten(recent)
		s.RecentWeeks = len(recent)
	}
	if n := len(a.final); n >= improvementMinWeeks {
		delta := meanBeaten(a.final[n-improvementWindow:]) - meanBeaten(a.final[:improvementWindow])
		s.Improvement = &delta
	}

	if s.Record.Games() > 0 {
		s.WinPct = s.Record.WinPct()
	} else {
		s.WinPct = s.ScheduledRecord.WinPct()
	}
}

// streaks returns the current and longest runs of scheduled wins. Weeks
// without a scheduled opponent neither extend nor break a run.
func streaks(weeks []finalWeek) (current, longest int) {
	run := 0
	for _, w := range weeks {
		if !w.hasResult {
			continue
		}
		if w.result == ResultWin {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	for i := len(weeks) - 1; i >= 0; i-- {
		if !weeks[i].hasResult {
			continue
		}
		if weeks[i].result != ResultWin {
			break
		}
		current++
	}
	return current, longest
}

func pickLeaders(teams []TeamSeasonStats) Leaders {
	var l Leaders
	for _, t := range teams {
		l.MostTeamsBeaten = better(l.MostTeamsBeaten, t, float64(t.TotalTeamsBeaten), true)
		l.BestWinPct = better(l.BestWinPct, t, t.WinPct, true)
		l.MostDominant = better(l.MostDominant, t, float64(t.TotalCategoryWins), true)
		if t.WeeksPlayed > 0 {
			l.MostConsistent = better(l.MostConsistent, t, t.Consistency, false)
			l.MostBalanced = better(l.MostBalanced, t, t.CategoryBalance, false)
		}
	}
	return l
}

// better keeps the current leader unless t is strictly better, so the first
// team reaching the extreme wins ties.
func better(cur *Leader, t TeamSeasonStats, v float64, higher bool) *Leader {
	if cur != nil {
		if higher && v <= cur.Value {
			return cur
		}
		if !higher && v >= cur.Value {
			return cur
		}
	}
	return &Leader{TeamID: t.TeamID, TeamName: t.TeamName, Value: v}
}

func pickCategoryLeaders(teams []TeamSeasonStats) (leaders, specialists []CategoryLeader) {
	leaders = make([]CategoryLeader, 0, len(Categories))
	specialists = make([]CategoryLeader, 0, len(Categories))
	for _, c := range Categories {
		var byCount, byRate *Leader
		for _, t := range teams {
			if t.WeeksPlayed == 0 {
				continue
			}
			byCount = better(byCount, t, float64(t.CategoryWins[c]), true)
			byRate = better(byRate, t, t.CategoryWinRates[c], true)
		}
		if byCount != nil {
			leaders = append(leaders, CategoryLeader{Category: c, Leader: *byCount})
		}
		if byRate != nil {
			specialists = append(specialists, CategoryLeader{Category: c, Leader: *byRate})
		}
	}
	return leaders, specialists
}

func pickTrends(teams []TeamSeasonStats) (hot, cold []TrendEntry) {
	var qualified []TrendEntry
	for _, t := range teams {
		if t.RecentWeeks < recentFormMinWeeks {
			continue
		}
		qualified = append(qualified, TrendEntry{
			TeamID:     t.TeamID,
			TeamName:   t.TeamName,
			RecentForm: t.RecentForm,
			Weeks:      t.RecentWeeks,
		})
	}

	hot = append([]TrendEntry{}, qualified...)
	sort.SliceStable(hot, func(i, j int) bool { return hot[i].RecentForm > hot[j].RecentForm })
	cold = append([]TrendEntry{}, qualified...)
	sort.SliceStable(cold, func(i, j int) bool { return cold[i].RecentForm < cold[j].RecentForm })

	return hot[:min(trendListSize, len(hot))], cold[:min(trendListSize, len(cold))]
}

func pickMostImproved(teams []TeamSeasonStats) *Leader {
	var best *Leader
	for _, t := range teams {
		if t.Improvement == nil {
			continue
		}
		best = better(best, t, *t.Improvement, true)
	}
	return best
}

func matchupRecords(h2h map[pairKey]*MatchupRecord, names map[int]string) (all, best, worst []MatchupRecord) {
	all = make([]MatchupRecord, 0, len(h2h))
	for _, rec := range h2h {
		r := *rec
		r.TeamName = names[r.TeamID]
		if r.OpponentName == "" {
			r.OpponentName = names[r.OpponentID]
		}
		r.Meetings = r.Games()
		r.WinRate = safeDiv(float64(r.Wins), float64(r.Meetings))
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].TeamID != all[j].TeamID {
			return all[i].TeamID < all[j].TeamID
		}
		return all[i].OpponentID < all[j].OpponentID
	})

	best, worst = []MatchupRecord{}, []MatchupRecord{}
	for _, r := range all {
		if r.Meetings < matchupMinMeetings {
			continue
		}
		if r.WinRate >= bestMatchupWinRate {
			best = append(best, r)
		}
		if r.WinRate <= worstMatchupWinRate {
			worst = append(worst, r)
		}
	}
	sort.SliceStable(best, func(i, j int) bool { return best[i].WinRate > best[j].WinRate })
	sort.SliceStable(worst, func(i, j int) bool { return worst[i].WinRate < worst[j].WinRate })
	return all, best, worst
}

func meanBeaten(weeks []finalWeek) float64 {
	vals := make([]float64, len(weeks))
	for i, w := range weeks {
		vals[i] = float64(w.teamsBeaten)
	}
	return mean(vals)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// variance is the population variance.
func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return sum / float64(len(vals))
}
