package analytics

// Shooting carries the makes and attempts behind the percentage categories.
type Shooting struct {
	FGM float64 `json:"fgm"`
	FGA float64 `json:"fga"`
	FTM float64 `json:"ftm"`
	FTA float64 `json:"fta"`
}

func (s *Shooting) Add(o Shooting) {
	s.FGM += o.FGM
	s.FGA += o.FGA
	s.FTM += o.FTM
	s.FTA += o.FTA
}

func (s Shooting) FGPct() float64 { return safeDiv(s.FGM, s.FGA) }
func (s Shooting) FTPct() float64 { return safeDiv(s.FTM, s.FTA) }

// StatLine is an additive stat record: counting categories plus the
// makes/attempts needed to derive FG% and FT%. Percentages are never stored
// on a StatLine, only computed from it.
type StatLine struct {
	PTS      float64  `json:"pts"`
	REB      float64  `json:"reb"`
	AST      float64  `json:"ast"`
	STL      float64  `json:"stl"`
	BLK      float64  `json:"blk"`
	ThreePM  float64  `json:"3pm"`
	TO       float64  `json:"to"`
	Shooting Shooting `json:"shooting"`
	Minutes  float64  `json:"minutes"`
	Games    float64  `json:"games"`
}

// Add accumulates o into s.
func (s *StatLine) Add(o StatLine) {
	s.PTS += o.PTS
	s.REB += o.REB
	s.AST += o.AST
	s.STL += o.STL
	s.BLK += o.BLK
	s.ThreePM += o.ThreePM
	s.TO += o.TO
	s.Shooting.Add(o.Shooting)
	s.Minutes += o.Minutes
	s.Games += o.Games
}

// IsZero reports whether the line carries no stats at all.
func (s StatLine) IsZero() bool {
	return s == StatLine{}
}

// Totals converts the line to category values, recomputing FG% and FT% from
// the summed makes and attempts.
func (s StatLine) Totals() CategoryTotals {
	return CategoryTotals{
		PTS:     s.PTS,
		REB:     s.REB,
		AST:     s.AST,
		STL:     s.STL,
		BLK:     s.BLK,
		FGPct:   s.Shooting.FGPct(),
		FTPct:   s.Shooting.FTPct(),
		ThreePM: s.ThreePM,
		TO:      s.TO,
	}
}

// SumLines adds every line together.
func SumLines(lines ...StatLine) StatLine {
	var total StatLine
	for _, l := range lines {
		total.Add(l)
	}
	return total
}

func safeDiv(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
