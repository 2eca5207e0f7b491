package pricing

import "math"

// Positioning names
const (
	PositionNoData      = "no_data"
	PositionPremium     = "premium"
	PositionCompetitive = "competitive"
	PositionValue       = "value"
)

// Positioning is a pricing strategy relative to competitors
type Positioning struct {
	Strategy    string  `json:"strategy"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Reason      string  `json:"reason"`
	Target      float64 `json:"target"`
}

// CompetitorAnalysis summarizes competitor prices
type CompetitorAnalysis struct {
	Position       string       `json:"pricePosition"`
	Average        float64      `json:"averageCompetitorPrice,omitempty"`
	Min            float64      `json:"minCompetitorPrice,omitempty"`
	Max            float64      `json:"maxCompetitorPrice,omitempty"`
	Range          float64      `json:"priceRange,omitempty"`
	Recommendation string       `json:"recommendation"`
	Strategy       *Positioning `json:"positioningStrategy,omitempty"`
}

// AnalyzeCompetitors positions buyPrice against competitor prices.
// Non-positive prices are ignored.
func AnalyzeCompetitors(buyPrice float64, prices []float64) CompetitorAnalysis {
	var valid []float64
	for _, p := range prices {
		if p > 0 && !math.IsInf(p, 0) {
			valid = append(valid, p)
		}
	}
	if len(valid) == 0 {
		return CompetitorAnalysis{Position: PositionNoData, Recommendation: "Use standard markup"}
	}

	lo, hi, sum := valid[0], valid[0], 0.0
	for _, p := range valid {
		sum += p
		lo = math.Min(lo, p)
		hi = math.Max(hi, p)
	}
	avg := sum / float64(len(valid))

	impliedMargin := (avg - buyPrice) / avg * 100
	strategy := positioningFor(avg, impliedMargin)

	return CompetitorAnalysis{
		Position:       strategy.Strategy,
		Average:        roundHalfUp(avg),
		Min:            lo,
		Max:            hi,
		Range:          round2(hi - lo),
		Recommendation: MarginRecommendation(impliedMargin),
		Strategy:       &strategy,
	}
}

func positioningFor(avg, impliedMargin float64) Positioning {
	switch {
	case impliedMargin >= 50:
		return Positioning{
			Strategy:    PositionPremium,
			Name:        "Premium Positioning",
			Description: "Price 10-20% above competitors",
			Reason:      "Position as high-quality alternative",
			Target:      roundHalfUp(avg * 1.15),
		}
	case impliedMargin >= 35:
		return Positioning{
			Strategy:    PositionCompetitive,
			Name:        "Competitive Positioning",
			Description: "Price at or slightly below competitors",
			Reason:      "Attract price-sensitive customers",
			Target:      roundHalfUp(avg * 0.95),
		}
	default:
		return Positioning{
			Strategy:    PositionValue,
			Name:        "Value Positioning",
			Description: "Price 5-10% below competitors",
			Reason:      "Offer best value proposition",
			Target:      roundHalfUp(avg * 0.90),
		}
	}
}
