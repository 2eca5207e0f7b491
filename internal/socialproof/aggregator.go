// Package socialproof combines partial evidence from four external platforms
// into one proof score and a "currently selling" verdict.
package socialproof

import (
	"math"

	"github.com/wonny/dropscout/internal/contracts"
)

// Source names
const (
	SourceFacebook     = "facebook"
	SourceTikTok       = "tiktok"
	SourceAmazon       = "amazon"
	SourceGoogleTrends = "googleTrends"
)

// SourceWeight is the equal share each source holds. The four weights sum to 100.
const SourceWeight = 25.0

// MinSellingSources is the proof count at which a product counts as currently selling
const MinSellingSources = 2

// Recommendation thresholds on OverallScore
const (
	StrongProofThreshold   = 70
	ModerateProofThreshold = 50
)

// FacebookProof is the ad-library view of a product
type FacebookProof struct {
	IsBeingAdvertised bool    `json:"isBeingAdvertised"`
	ActiveAds         int     `json:"activeAds"`
	EngagementScore   float64 `json:"engagementScore"` // 0-100
	Engagement        int     `json:"engagement"`      // raw interactions, optional
}

// TikTokProof is the short-video view of a product
type TikTokProof struct {
	IsTrending     bool                     `json:"isTrending"`
	TotalViews     int                      `json:"totalViews"`
	VideoCount     int                      `json:"videoCount"`
	EngagementRate float64                  `json:"engagementRate"` // percent, 0-10 typical
	GrowthTrend    contracts.TrendDirection `json:"growthTrend"`
}

// AmazonProof is the marketplace best-seller view of a product
type AmazonProof struct {
	IsBestSeller    bool `json:"isAmazonBestSeller"`
	Rank            int  `json:"amazonRank"`
	Reviews         int  `json:"reviews"`
	CompetitorCount int  `json:"competitorCount"`
}

// GoogleTrendsProof is the search-interest view of a product.
// HasScore is false when the provider did not report an interest score.
type GoogleTrendsProof struct {
	SearchVolume int                      `json:"searchVolume"`
	Trend        contracts.TrendDirection `json:"trend"`
	Score        int                      `json:"score"`
	HasScore     bool                     `json:"-"`
}

// Input holds the four source payloads
type Input struct {
	Facebook     FacebookProof     `json:"facebook"`
	TikTok       TikTokProof       `json:"tiktok"`
	Amazon       AmazonProof       `json:"amazon"`
	GoogleTrends GoogleTrendsProof `json:"googleTrends"`
}

// SourceScore is one source's share of the proof score
type SourceScore struct {
	Source   string  `json:"source"`
	Active   bool    `json:"active"`
	Strength float64 `json:"strength"` // 0-1
	Points   float64 `json:"points"`   // Strength * SourceWeight
}

// Report is the aggregated social proof
type Report struct {
	OverallScore       int           `json:"overallScore"`
	ProofSourceCount   int           `json:"proofSources"`
	IsCurrentlySelling bool          `json:"isCurrentlySelling"`
	Recommendation     string        `json:"recommendation"`
	Sources            []SourceScore `json:"sources"`
	Timing             TimingScore   `json:"timing"`
	Input              Input         `json:"details"`
}

// Aggregate scores the four sources.
// OverallScore is the mean weighted contribution of the active sources,
// so it never exceeds SourceWeight.
func Aggregate(in Input) Report {
	sources := []SourceScore{
		score(SourceFacebook, in.Facebook.IsBeingAdvertised, in.Facebook.EngagementScore/100),
		score(SourceTikTok, in.TikTok.IsTrending, in.TikTok.EngagementRate*10/100),
		score(SourceAmazon, in.Amazon.IsBestSeller, 1),
		score(SourceGoogleTrends, in.GoogleTrends.Trend == contracts.TrendRising, 1),
	}

	total := 0.0
	count := 0
	for _, s := range sources {
		if s.Active {
			total += s.Points
			count++
		}
	}

	overall := 0
	if count > 0 {
		overall = int(math.Round(total / float64(count)))
	}

	return Report{
		OverallScore:       overall,
		ProofSourceCount:   count,
		IsCurrentlySelling: count >= MinSellingSources,
		Recommendation:     recommendation(overall),
		Sources:            sources,
		Timing:             Timing(in.GoogleTrends.Trend, in.TikTok.GrowthTrend, in.Facebook.IsBeingAdvertised),
		Input:              in,
	}
}

func score(source string, active bool, strength float64) SourceScore {
	if !active {
		return SourceScore{Source: source}
	}
	strength = math.Max(0, math.Min(1, strength))
	return SourceScore{
		Source:   source,
		Active:   true,
		Strength: strength,
		Points:   strength * SourceWeight,
	}
}

func recommendation(score int) string {
	switch {
	case score >= StrongProofThreshold:
		return "Strong proof of demand"
	case score >= ModerateProofThreshold:
		return "Moderate proof of demand"
	default:
		return "Weak proof of demand"
	}
}

// Signal converts the report into the typed social signal read by the trend scorer.
// TrendScore falls back to the timing score when Google reported no interest score.
func (r Report) Signal() contracts.SocialSignal {
	trend := r.Input.GoogleTrends.Trend
	if trend == "" {
		trend = contracts.TrendStable
	}

	trendScore := r.Timing.Score
	if r.Input.GoogleTrends.HasScore {
		trendScore = r.Input.GoogleTrends.Score
	}

	return contracts.SocialSignal{
		FacebookActive:       r.Input.Facebook.IsBeingAdvertised,
		FacebookEngagement:   r.Input.Facebook.Engagement,
		TikTokTrending:       r.Input.TikTok.IsTrending,
		TikTokEngagementRate: r.Input.TikTok.EngagementRate,
		AmazonBestSeller:     r.Input.Amazon.IsBestSeller,
		GoogleTrendDirection: trend,
		TrendScore:           trendScore,
	}
}
