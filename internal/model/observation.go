package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is one historical rate sample: USD per 1 unit of Currency on Date.
type Observation struct {
	Date     time.Time
	Currency string
	Rate     decimal.Decimal
}
