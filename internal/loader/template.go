package loader

import (
	"encoding/csv"
	"fmt"
	"io"

	"BourseLens/internal/model"
)

// WriteTemplate writes a records CSV with one row per catalogue entry and the
// numeric cells left blank for the operator to fill in.
func WriteTemplate(w io.Writer, exchanges []model.ExchangeInfo) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecordColumns); err != nil {
		return fmt.Errorf("write template header: %w", err)
	}
	for _, e := range exchanges {
		if err := cw.Write([]string{e.Region, e.Exchange, e.IndexName, e.LocalCurrency, "", "", ""}); err != nil {
			return fmt.Errorf("write template row %s: %w", e.Exchange, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
