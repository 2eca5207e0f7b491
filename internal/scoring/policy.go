// Package scoring maps each signal category to a signed point contribution.
// Every scorer is a pure function of its slice of the normalized signal.
package scoring

// Policy holds the scorer thresholds and point values
// ⭐ SSOT: the tunable validation policy lives here
type Policy struct {
	Reviews     ReviewPolicy
	Rating      RatingPolicy
	Demand      DemandPolicy
	Trend       TrendPolicy
	Competition CompetitionPolicy
	Social      SocialPolicy
}

// ReviewPolicy scores review counts. SweetMin..SweetMax is inclusive.
type ReviewPolicy struct {
	Min      int // below: lacks social proof
	Max      int // above: oversaturated
	SweetMin int
	SweetMax int

	LowPoints       int
	SaturatedPoints int
	SweetPoints     int
	BorderPoints    int
}

// RatingPolicy scores average customer rating
type RatingPolicy struct {
	Excellent float64
	Good      float64

	ExcellentPoints int
	GoodPoints      int
	PoorPoints      int
}

// DemandPolicy scores monthly order volume
type DemandPolicy struct {
	High     int
	Moderate int

	HighPoints     int
	ModeratePoints int
	LowPoints      int
}

// TrendPolicy scores search-interest direction
type TrendPolicy struct {
	StrongScore int // rising with TrendScore above this is "strong"

	StrongRisingPoints int
	RisingPoints       int
	StablePoints       int
	DecliningPoints    int
}

// CompetitionPolicy scores the effective competition tier
type CompetitionPolicy struct {
	LowPoints    int
	MediumPoints int
	HighPoints   int
}

// SocialPolicy scales the optional social bonus
type SocialPolicy struct {
	FacebookHighEngagement int
	FacebookMidEngagement  int
	TikTokHighRate         float64 // percent
	TikTokMidRate          float64

	HighPoints int
	MidPoints  int
	BasePoints int
	MaxBonus   int
}

// DefaultPolicy returns the production thresholds
func DefaultPolicy() Policy {
	return Policy{
		Reviews: ReviewPolicy{
			Min:             3000,
			Max:             10000,
			SweetMin:        4000,
			SweetMax:        7000,
			LowPoints:       -30,
			SaturatedPoints: -25,
			SweetPoints:     30,
			BorderPoints:    10,
		},
		Rating: RatingPolicy{
			Excellent:       4.5,
			Good:            4.0,
			ExcellentPoints: 20,
			GoodPoints:      5,
			PoorPoints:      -20,
		},
		Demand: DemandPolicy{
			High:           10000,
			Moderate:       5000,
			HighPoints:     25,
			ModeratePoints: 10,
			LowPoints:      -15,
		},
		Trend: TrendPolicy{
			StrongScore:        70,
			StrongRisingPoints: 25,
			RisingPoints:       15,
			StablePoints:       5,
			DecliningPoints:    -20,
		},
		Competition: CompetitionPolicy{
			LowPoints:    20,
			MediumPoints: 8,
			HighPoints:   -15,
		},
		Social: SocialPolicy{
			FacebookHighEngagement: 1000,
			FacebookMidEngagement:  500,
			TikTokHighRate:         5,
			TikTokMidRate:          2,
			HighPoints:             10,
			MidPoints:              5,
			BasePoints:             2,
			MaxBonus:               20,
		},
	}
}
