// Package marketdata supplies rate and volatility quotes to curve and
// calibration builders.
package marketdata

import (
	"errors"
	"fmt"
	"sort"

	"github.com/meenmo/shortrate/calendar"
	"github.com/meenmo/shortrate/curve"
	"github.com/meenmo/shortrate/utils"
)

// ErrQuoteNotFound is returned when a feed has no quote for a key.
var ErrQuoteNotFound = errors.New("quote not found")

// QuoteKind tells builders which instrument a quote refers to.
type QuoteKind int

const (
	QuoteDeposit QuoteKind = iota + 1
	QuoteOIS
	QuoteSwaptionVol
)

func (k QuoteKind) String() string {
	switch k {
	case QuoteDeposit:
		return "Deposit"
	case QuoteOIS:
		return "OIS"
	case QuoteSwaptionVol:
		return "SwaptionVol"
	default:
		return "Unknown"
	}
}

// RateQuote is one market observation. Rates and vols are decimals.
type RateQuote struct {
	Tenor utils.Period `json:"tenor"`
	Value float64      `json:"value"`
	Kind  QuoteKind    `json:"kind"`
}

// HelperConventions carries the settlement terms applied to every curve quote.
type HelperConventions struct {
	SettlementDays int
	Calendar       calendar.CalendarID
	Convention     calendar.BusinessDayConvention
	DayCount       string
}

// EoniaConventions are the OIS terms of the Euribor data set.
func EoniaConventions() HelperConventions {
	return HelperConventions{
		SettlementDays: 2,
		Calendar:       calendar.TARGET,
		Convention:     calendar.ModifiedFollowing,
		DayCount:       utils.Act360,
	}
}

// Helper converts a deposit or OIS quote into a bootstrap helper.
func (q RateQuote) Helper(conv HelperConventions) (*curve.RateHelper, error) {
	switch q.Kind {
	case QuoteDeposit:
		return curve.NewDepositHelper(q.Value, q.Tenor, conv.SettlementDays, conv.Calendar, conv.Convention, conv.DayCount), nil
	case QuoteOIS:
		return curve.NewOISHelper(q.Value, q.Tenor, conv.SettlementDays, conv.Calendar, conv.DayCount), nil
	default:
		return nil, fmt.Errorf("Helper: %s quote %s is not a curve instrument", q.Kind, q.Tenor)
	}
}

// QuoteFeed supplies curve quotes by kind and tenor.
type QuoteFeed interface {
	Quote(kind QuoteKind, tenor utils.Period) (RateQuote, bool)
	Quotes(kind QuoteKind) []RateQuote
}

// MapQuoteFeed is a static map-backed implementation for development/testing.
type MapQuoteFeed struct {
	quotes map[QuoteKind]map[string]RateQuote
}

// NewMapQuoteFeed indexes quotes by kind and tenor; later duplicates win.
func NewMapQuoteFeed(quotes []RateQuote) *MapQuoteFeed {
	m := &MapQuoteFeed{quotes: make(map[QuoteKind]map[string]RateQuote)}
	for _, q := range quotes {
		byTenor, ok := m.quotes[q.Kind]
		if !ok {
			byTenor = make(map[string]RateQuote)
			m.quotes[q.Kind] = byTenor
		}
		byTenor[q.Tenor.String()] = q
	}
	return m
}

func (m *MapQuoteFeed) Quote(kind QuoteKind, tenor utils.Period) (RateQuote, bool) {
	q, ok := m.quotes[kind][tenor.String()]
	return q, ok
}

// Quotes returns every quote of kind, shortest tenor first.
func (m *MapQuoteFeed) Quotes(kind QuoteKind) []RateQuote {
	out := make([]RateQuote, 0, len(m.quotes[kind]))
	for _, q := range m.quotes[kind] {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tenor.Years() < out[j].Tenor.Years() })
	return out
}

// CurveHelpers builds bootstrap helpers from every deposit and OIS quote in feed.
func CurveHelpers(feed QuoteFeed, conv HelperConventions) ([]*curve.RateHelper, error) {
	var out []*curve.RateHelper
	for _, kind := range []QuoteKind{QuoteDeposit, QuoteOIS} {
		for _, q := range feed.Quotes(kind) {
			h, err := q.Helper(conv)
			if err != nil {
				return nil, fmt.Errorf("CurveHelpers: %w", err)
			}
			out = append(out, h)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("CurveHelpers: %w", ErrQuoteNotFound)
	}
	return out, nil
}
