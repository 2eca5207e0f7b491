// Package pricing estimates margins and derives sell prices from buy prices.
package pricing

import (
	"math"
	"strings"

	"github.com/wonny/dropscout/internal/contracts"
)

// MinViableMargin is the minimum acceptable margin percent
const MinViableMargin = 30.0

// DefaultAdCost is the per-sale advertising cost when none is given
const DefaultAdCost = 10.0

// DefaultMultiplier applies to unknown categories
const DefaultMultiplier = 3.5

// Band factors applied to buy × multiplier
const (
	ConservativeFactor = 0.8
	OptimalFactor      = 1.0
	AggressiveFactor   = 1.2
)

// ⭐ SSOT: category markup table
var categoryMultipliers = map[string]float64{
	"electronics": 3.5,
	"fashion":     4.0,
	"home":        3.5,
	"beauty":      4.5,
	"sports":      3.5,
	"toys":        4.0,
	"accessories": 4.5,
	"health":      4.0,
	"general":     3.5,
}

// Margin is the profitability of one price point
type Margin struct {
	Profit        float64 `json:"profit"`
	MarginPercent float64 `json:"margin"`
	IsViable      bool    `json:"isViable"`
}

// CalculateMargin computes profit and margin percent, both rounded to cents
func CalculateMargin(buyPrice, sellPrice, adCost float64) (Margin, error) {
	if sellPrice <= 0 || math.IsNaN(sellPrice) {
		return Margin{}, &contracts.InvalidPriceError{Field: "sellPrice", Value: sellPrice}
	}
	if buyPrice <= 0 || math.IsNaN(buyPrice) {
		return Margin{}, &contracts.InvalidPriceError{Field: "buyPrice", Value: buyPrice}
	}
	if adCost < 0 || math.IsNaN(adCost) {
		return Margin{}, &contracts.InvalidPriceError{Field: "adCost", Value: adCost}
	}

	profit := sellPrice - buyPrice - adCost
	margin := profit / sellPrice * 100

	return Margin{
		Profit:        round2(profit),
		MarginPercent: round2(margin),
		IsViable:      margin >= MinViableMargin,
	}, nil
}

// CategoryMultiplier returns the markup for category, case-insensitive
func CategoryMultiplier(category string) float64 {
	if m, ok := categoryMultipliers[strings.ToLower(strings.TrimSpace(category))]; ok {
		return m
	}
	return DefaultMultiplier
}

// MarginRecommendation describes a margin percent
func MarginRecommendation(marginPercent float64) string {
	switch {
	case marginPercent >= 50:
		return "Excellent margin: price is competitive and profitable"
	case marginPercent >= 40:
		return "Good margin: strong profitability"
	case marginPercent >= MinViableMargin:
		return "Acceptable margin: minimum viable profit"
	default:
		return "Poor margin: increase price or reduce costs"
	}
}

// roundHalfUp rounds to the nearest integer, ties toward +Inf
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func round2(x float64) float64 {
	return roundHalfUp(x*100) / 100
}
