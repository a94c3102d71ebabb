// Package converter turns local-currency exchange figures into USD.
// It is pure: all FX work has already happened by the time Convert is called.
package converter

import (
	"fmt"

	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// Convert applies quote to the record's local-currency fields.
func Convert(rec model.ExchangeRecord, quote model.FxQuote) model.ConvertedRecord {
	out := model.ConvertedRecord{
		ExchangeRecord: rec,
		Quote:          quote,
		Notes:          []string{},
	}
	if quote.Currency != rec.LocalCurrency {
		quote = model.Unavailable(rec.LocalCurrency, quote.AsOf,
			fmt.Sprintf("FX quote for %s does not match record currency %s", quote.Currency, rec.LocalCurrency))
		out.Quote = quote
	}
	out.MarketCapUSD = convertField(&out.Notes, model.BasisMarketCap, rec.MarketCapLocal, quote)
	out.ADTVUSD = convertField(&out.Notes, model.BasisADTV, rec.ADTVLocal, quote)
	fxNeeded := rec.MarketCapLocal != nil || rec.ADTVLocal != nil
	if fxNeeded && !quote.Available() && quote.Note != "" {
		out.Notes = append(out.Notes, quote.Note)
	}
	return out
}

func convertField(notes *[]string, field string, local *decimal.Decimal, quote model.FxQuote) model.Amount {
	switch {
	case local == nil:
		*notes = append(*notes, field+": source value missing")
		return model.NA()
	case !quote.Available():
		*notes = append(*notes, fmt.Sprintf("%s: FX rate unavailable for %s", field, quote.Currency))
		return model.NA()
	}
	return model.Some(local.Mul(quote.RateToUSD.Value))
}

// ConvertAll converts records with a quote lookup, preserving input order.
func ConvertAll(records []model.ExchangeRecord, quote func(currency string) model.FxQuote) []model.ConvertedRecord {
	out := make([]model.ConvertedRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, Convert(rec, quote(rec.LocalCurrency)))
	}
	return out
}
