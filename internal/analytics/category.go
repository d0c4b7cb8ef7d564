package analytics

// Category is one of the nine head-to-head statistical measures.
type Category string

const (
	PTS     Category = "PTS"
	REB     Category = "REB"
	AST     Category = "AST"
	STL     Category = "STL"
	BLK     Category = "BLK"
	FGPct   Category = "FG%"
	FTPct   Category = "FT%"
	ThreePM Category = "3PM"
	TO      Category = "TO"
)

// Categories lists the nine categories in display order.
var Categories = [...]Category{PTS, REB, AST, STL, BLK, FGPct, FTPct, ThreePM, TO}

// BeatThreshold is the number of categories needed to beat an opponent.
const BeatThreshold = 5

// LowerIsBetter reports whether a smaller value wins the category.
func (c Category) LowerIsBetter() bool {
	return c == TO
}

// IsRatio reports whether the category is a makes/attempts percentage.
func (c Category) IsRatio() bool {
	return c == FGPct || c == FTPct
}

type Result int

const (
	Tie Result = iota
	Win
	Loss
)

func (r Result) String() string {
	switch r {
	case Win:
		return "WIN"
	case Loss:
		return "LOSS"
	default:
		return "TIE"
	}
}

// CompareCategory compares a against b in category c. Ties only occur on
// exact equality.
func CompareCategory(c Category, a, b float64) Result {
	if a == b {
		return Tie
	}
	better := a > b
	if c.LowerIsBetter() {
		better = a < b
	}
	if better {
		return Win
	}
	return Loss
}

// CategoryTotals holds one value per category. Missing categories read as zero.
type CategoryTotals map[Category]float64

// Get returns the value for c without creating an entry.
func (t CategoryTotals) Get(c Category) float64 {
	if t == nil {
		return 0
	}
	return t[c]
}

// IsZero reports whether every category is exactly zero.
func (t CategoryTotals) IsZero() bool {
	for _, c := range Categories {
		if t.Get(c) != 0 {
			return false
		}
	}
	return true
}

// Clone returns a copy restricted to the nine categories.
func (t CategoryTotals) Clone() CategoryTotals {
	out := make(CategoryTotals, len(Categories))
	for _, c := range Categories {
		out[c] = t.Get(c)
	}
	return out
}
