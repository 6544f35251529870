package marketdata

import (
	"fmt"

	"github.com/meenmo/shortrate/utils"
)

// VolGrid is a swaption Black volatility matrix; rows are option expiries and
// columns are underlying swap lengths.
type VolGrid struct {
	Expiries []utils.Period `json:"expiries"`
	Lengths  []utils.Period `json:"lengths"`
	Vols     [][]float64    `json:"vols"`
}

// Cell is one grid point.
type Cell struct {
	Expiry utils.Period `json:"expiry"`
	Length utils.Period `json:"length"`
	Vol    float64      `json:"vol"`
}

// Validate checks that Vols is len(Expiries) x len(Lengths) with positive entries.
func (g VolGrid) Validate() error {
	if len(g.Vols) != len(g.Expiries) {
		return fmt.Errorf("VolGrid: %d rows for %d expiries", len(g.Vols), len(g.Expiries))
	}
	for i, row := range g.Vols {
		if len(row) != len(g.Lengths) {
			return fmt.Errorf("VolGrid: row %s has %d vols for %d lengths", g.Expiries[i], len(row), len(g.Lengths))
		}
		for j, v := range row {
			if !(v > 0) {
				return fmt.Errorf("VolGrid: %sx%s vol %g must be positive", g.Expiries[i], g.Lengths[j], v)
			}
		}
	}
	return nil
}

// Vol looks up the quote for expiry x length.
func (g VolGrid) Vol(expiry, length utils.Period) (float64, error) {
	for i, e := range g.Expiries {
		if e != expiry {
			continue
		}
		for j, l := range g.Lengths {
			if l == length {
				return g.Vols[i][j], nil
			}
		}
	}
	return 0, fmt.Errorf("Vol: %sx%s: %w", expiry, length, ErrQuoteNotFound)
}

// CoTerminal returns the cells whose expiry plus length equals maturity,
// shortest expiry first.
func (g VolGrid) CoTerminal(maturity utils.Period) []Cell {
	target := maturity.Months()
	var out []Cell
	for i, e := range g.Expiries {
		for j, l := range g.Lengths {
			if e.Months()+l.Months() == target {
				out = append(out, Cell{Expiry: e, Length: l, Vol: g.Vols[i][j]})
			}
		}
	}
	return out
}
