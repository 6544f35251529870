package marketdata

import (
	"time"

	"github.com/meenmo/shortrate/utils"
)

// Bundled Euribor market of 15 February 2002.
var (
	EuriborToday      = utils.Date(2002, time.February, 15)
	EuriborSettlement = utils.Date(2002, time.February, 19)
)

// EuriborFlatRate is the continuously compounded ACT/365F flat rate quoted from settlement.
const EuriborFlatRate = 0.04875825

// EoniaQuotes are OIS par rates with two settlement days.
var EoniaQuotes = []RateQuote{
	{Tenor: utils.MustParsePeriod("3M"), Value: 0.0517, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("6M"), Value: 0.0484, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("1Y"), Value: 0.0436, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("2Y"), Value: 0.0388, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("5Y"), Value: 0.0362, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("10Y"), Value: 0.0379, Kind: QuoteOIS},
	{Tenor: utils.MustParsePeriod("30Y"), Value: 0.0411, Kind: QuoteOIS},
}

var oneToFive = []utils.Period{
	utils.MustParsePeriod("1Y"),
	utils.MustParsePeriod("2Y"),
	utils.MustParsePeriod("3Y"),
	utils.MustParsePeriod("4Y"),
	utils.MustParsePeriod("5Y"),
}

// EuriborSwaptionVols is the 5x5 Black vol matrix, expiries 1Y-5Y by lengths 1Y-5Y.
func EuriborSwaptionVols() VolGrid {
	return VolGrid{
		Expiries: append([]utils.Period(nil), oneToFive...),
		Lengths:  append([]utils.Period(nil), oneToFive...),
		Vols: [][]float64{
			{0.1490, 0.1340, 0.1228, 0.1189, 0.1148},
			{0.1290, 0.1201, 0.1146, 0.1108, 0.1040},
			{0.1149, 0.1112, 0.1070, 0.1010, 0.0957},
			{0.1047, 0.1021, 0.0980, 0.0951, 0.1270},
			{0.1000, 0.0950, 0.0900, 0.1230, 0.1160},
		},
	}
}

// DefaultQuoteFeed serves the bundled Eonia quotes.
func DefaultQuoteFeed() QuoteFeed {
	return NewMapQuoteFeed(EoniaQuotes)
}
