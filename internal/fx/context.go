package fx

import (
	"BourseLens/internal/model"

	"github.com/shopspring/decimal"
)

// Context carries the mode-specific inputs of a resolution. It is a closed set:
// Live, Manual and Average are the only implementations.
type Context interface {
	Mode() model.Mode
	sealed()
}

// Live resolves through pegs, then the primary and secondary live sources.
type Live struct{}

// Manual resolves from user-entered rates, then pegs.
type Manual struct {
	Rates map[string]decimal.Decimal
}

// Average resolves to the mean of observed rates inside Window.
type Average struct {
	Observations []model.Observation
	Window       model.DateRange
}

func (Live) Mode() model.Mode    { return model.ModeLive }
func (Manual) Mode() model.Mode  { return model.ModeManual }
func (Average) Mode() model.Mode { return model.ModeAverage }

func (Live) sealed()    {}
func (Manual) sealed()  {}
func (Average) sealed() {}
