package pricing

import (
	"math"

	"github.com/wonny/dropscout/internal/contracts"
)

// PricePoints are the three whole-unit price bands
type PricePoints struct {
	Conservative float64 `json:"conservative"`
	Optimal      float64 `json:"optimal"`
	Aggressive   float64 `json:"aggressive"`
}

// BandMargins holds the margin at each band
type BandMargins struct {
	Conservative Margin `json:"conservative"`
	Optimal      Margin `json:"optimal"`
	Aggressive   Margin `json:"aggressive"`
}

// Suggestion is the category-markup pricing for one buy price
type Suggestion struct {
	BuyPrice       float64     `json:"buyPrice"`
	Category       string      `json:"category"`
	Multiplier     float64     `json:"multiplier"`
	SuggestedPrice float64     `json:"suggestedPrice"` // buy × multiplier, unrounded
	PricePoints    PricePoints `json:"pricePoints"`
	Margins        BandMargins `json:"margins"`
	Recommendation string      `json:"recommendation"`
}

// SuggestPrices derives the conservative/optimal/aggressive bands from the category multiplier
func SuggestPrices(buyPrice float64, category string, adCost float64) (Suggestion, error) {
	if buyPrice <= 0 || math.IsNaN(buyPrice) || math.IsInf(buyPrice, 0) {
		return Suggestion{}, &contracts.InvalidPriceError{Field: "buyPrice", Value: buyPrice}
	}
	if category == "" {
		category = "general"
	}

	mult := CategoryMultiplier(category)
	base := buyPrice * mult

	s := Suggestion{
		BuyPrice:       buyPrice,
		Category:       category,
		Multiplier:     mult,
		SuggestedPrice: base,
		PricePoints: PricePoints{
			Conservative: roundHalfUp(base * ConservativeFactor),
			Optimal:      roundHalfUp(base * OptimalFactor),
			Aggressive:   roundHalfUp(base * AggressiveFactor),
		},
	}

	var err error
	if s.Margins.Conservative, err = marginAt(buyPrice, s.PricePoints.Conservative, adCost); err != nil {
		return Suggestion{}, err
	}
	if s.Margins.Optimal, err = marginAt(buyPrice, s.PricePoints.Optimal, adCost); err != nil {
		return Suggestion{}, err
	}
	if s.Margins.Aggressive, err = marginAt(buyPrice, s.PricePoints.Aggressive, adCost); err != nil {
		return Suggestion{}, err
	}

	s.Recommendation = MarginRecommendation(s.Margins.Optimal.MarginPercent)
	return s, nil
}

// marginAt tolerates a band that rounds to zero for sub-unit buy prices
func marginAt(buy, sell, adCost float64) (Margin, error) {
	if sell <= 0 {
		return Margin{}, nil
	}
	return CalculateMargin(buy, sell, adCost)
}

// MarketConditions adjust an optimal price. Zero values mean "not reported".
type MarketConditions struct {
	DemandScore        float64                    `json:"demandScore,omitempty"`
	CompetitionLevel   contracts.CompetitionLevel `json:"competitionLevel,omitempty"`
	SeasonalMultiplier float64                    `json:"seasonalMultiplier,omitempty"`
}

// AdjustByMarket applies demand, competition and seasonal rules in that order.
// Each rule recomputes from base, so a later matching rule replaces an earlier one.
func AdjustByMarket(base float64, mc MarketConditions) float64 {
	adjusted := base

	if mc.DemandScore != 0 {
		switch {
		case mc.DemandScore > 80:
			adjusted = roundHalfUp(base * 1.1)
		case mc.DemandScore < 40:
			adjusted = roundHalfUp(base * 0.9)
		}
	}

	switch mc.CompetitionLevel {
	case contracts.CompetitionHigh:
		adjusted = roundHalfUp(base * 0.95)
	case contracts.CompetitionLow:
		adjusted = roundHalfUp(base * 1.05)
	}

	if mc.SeasonalMultiplier != 0 {
		adjusted = roundHalfUp(base * mc.SeasonalMultiplier)
	}

	return adjusted
}

// Plan is the complete pricing picture for one product
type Plan struct {
	Suggestion
	RecommendedPrice float64            `json:"recommendedPrice"`
	PriceRange       PriceRange         `json:"priceRange"`
	Competitors      CompetitorAnalysis `json:"competitorAnalysis"`
}

// PriceRange spans the bands
type PriceRange struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	SweetSpot float64 `json:"sweetSpot"`
}

// Optimize combines band suggestion, market adjustment and competitor analysis
func Optimize(buyPrice float64, category string, adCost float64, mc MarketConditions, competitorPrices []float64) (Plan, error) {
	s, err := SuggestPrices(buyPrice, category, adCost)
	if err != nil {
		return Plan{}, err
	}

	return Plan{
		Suggestion:       s,
		RecommendedPrice: AdjustByMarket(s.PricePoints.Optimal, mc),
		PriceRange: PriceRange{
			Min:       s.PricePoints.Conservative,
			Max:       s.PricePoints.Aggressive,
			SweetSpot: s.PricePoints.Optimal,
		},
		Competitors: AnalyzeCompetitors(buyPrice, competitorPrices),
	}, nil
}
