package model

// ConvertedRecord is an ExchangeRecord with its USD-denominated figures.
// YTDPercent is currency-neutral and carried over from the embedded record.
type ConvertedRecord struct {
	ExchangeRecord
	MarketCapUSD Amount   `json:"market_cap_usd"`
	ADTVUSD      Amount   `json:"adtv_usd"`
	Quote        FxQuote  `json:"fx_quote"`
	Notes        []string `json:"conversion_notes"`
}

// YTD returns the year-to-date change as an Amount.
func (c ConvertedRecord) YTD() Amount { return Optional(c.YTDPercent) }
