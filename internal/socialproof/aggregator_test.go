package socialproof

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
)

func TestAggregate_NoSources(t *testing.T) {
	r := Aggregate(Input{})

	assert.Equal(t, 0, r.OverallScore)
	assert.Equal(t, 0, r.ProofSourceCount)
	assert.False(t, r.IsCurrentlySelling)
	assert.Equal(t, "Weak proof of demand", r.Recommendation)
	require.Len(t, r.Sources, 4)
	for _, s := range r.Sources {
		assert.False(t, s.Active)
		assert.Zero(t, s.Points)
	}
}

func TestAggregate_TwoSourcesCurrentlySelling(t *testing.T) {
	r := Aggregate(Input{
		Amazon:       AmazonProof{IsBestSeller: true},
		GoogleTrends: GoogleTrendsProof{Trend: contracts.TrendRising},
	})

	assert.Equal(t, 2, r.ProofSourceCount)
	assert.True(t, r.IsCurrentlySelling)
	assert.Equal(t, 25, r.OverallScore)
	assert.Equal(t, "Weak proof of demand", r.Recommendation)
}

func TestAggregate_WeightedPartialCredit(t *testing.T) {
	tests := []struct {
		name      string
		in        Input
		wantScore int
		wantCount int
		wantRec   string
	}{
		{
			name:      "facebook engagement only",
			in:        Input{Facebook: FacebookProof{IsBeingAdvertised: true, EngagementScore: 80}},
			wantScore: 20,
			wantCount: 1,
			wantRec:   "Weak proof of demand",
		},
		{
			name:      "tiktok rate scaled by ten",
			in:        Input{TikTok: TikTokProof{IsTrending: true, EngagementRate: 4}},
			wantScore: 10,
			wantCount: 1,
			wantRec:   "Weak proof of demand",
		},
		{
			name: "facebook and tiktok averaged",
			in: Input{
				Facebook: FacebookProof{IsBeingAdvertised: true, EngagementScore: 80},
				TikTok:   TikTokProof{IsTrending: true, EngagementRate: 4},
			},
			wantScore: 15,
			wantCount: 2,
			wantRec:   "Weak proof of demand",
		},
		{
			name:      "inactive flag ignores engagement",
			in:        Input{Facebook: FacebookProof{IsBeingAdvertised: false, EngagementScore: 99}},
			wantScore: 0,
			wantCount: 0,
			wantRec:   "Weak proof of demand",
		},
		{
			name:      "strength clamps at one",
			in:        Input{TikTok: TikTokProof{IsTrending: true, EngagementRate: 25}},
			wantScore: 25,
			wantCount: 1,
			wantRec:   "Weak proof of demand",
		},
		{
			name:      "flat google trend is not proof",
			in:        Input{GoogleTrends: GoogleTrendsProof{Trend: contracts.TrendStable}},
			wantScore: 0,
			wantCount: 0,
			wantRec:   "Weak proof of demand",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Aggregate(tt.in)
			assert.Equal(t, tt.wantScore, r.OverallScore)
			assert.Equal(t, tt.wantCount, r.ProofSourceCount)
			assert.Equal(t, tt.wantCount >= 2, r.IsCurrentlySelling)
			assert.Equal(t, tt.wantRec, r.Recommendation)
		})
	}
}

func TestAggregate_AllSourcesFullStrength(t *testing.T) {
	r := Aggregate(Input{
		Facebook:     FacebookProof{IsBeingAdvertised: true, EngagementScore: 100},
		TikTok:       TikTokProof{IsTrending: true, EngagementRate: 10},
		Amazon:       AmazonProof{IsBestSeller: true},
		GoogleTrends: GoogleTrendsProof{Trend: contracts.TrendRising},
	})

	assert.Equal(t, 4, r.ProofSourceCount)
	assert.Equal(t, int(SourceWeight), r.OverallScore)
	assert.Equal(t, "Weak proof of demand", r.Recommendation)
}

func TestRecommendation_Thresholds(t *testing.T) {
	assert.Equal(t, "Strong proof of demand", recommendation(StrongProofThreshold))
	assert.Equal(t, "Moderate proof of demand", recommendation(StrongProofThreshold-1))
	assert.Equal(t, "Moderate proof of demand", recommendation(ModerateProofThreshold))
	assert.Equal(t, "Weak proof of demand", recommendation(ModerateProofThreshold-1))
}

func TestReport_Signal(t *testing.T) {
	in := Input{
		Facebook:     FacebookProof{IsBeingAdvertised: true, Engagement: 1500},
		TikTok:       TikTokProof{IsTrending: true, EngagementRate: 3.5, GrowthTrend: contracts.TrendRising},
		GoogleTrends: GoogleTrendsProof{Trend: contracts.TrendRising},
	}

	sig := Aggregate(in).Signal()

	assert.True(t, sig.FacebookActive)
	assert.Equal(t, 1500, sig.FacebookEngagement)
	assert.True(t, sig.TikTokTrending)
	assert.Equal(t, 3.5, sig.TikTokEngagementRate)
	assert.False(t, sig.AmazonBestSeller)
	assert.Equal(t, contracts.TrendRising, sig.GoogleTrendDirection)
	// both rising + advertised: 90 + 10
	assert.Equal(t, 100, sig.TrendScore)
	require.NoError(t, sig.Validate())
}

func TestReport_SignalPrefersReportedScore(t *testing.T) {
	sig := Aggregate(Input{
		GoogleTrends: GoogleTrendsProof{Trend: contracts.TrendRising, Score: 42, HasScore: true},
	}).Signal()

	assert.Equal(t, 42, sig.TrendScore)
}

func TestReport_SignalDefaultsTrend(t *testing.T) {
	sig := Aggregate(Input{}).Signal()
	assert.Equal(t, contracts.TrendStable, sig.GoogleTrendDirection)
	assert.Equal(t, timingFlat, sig.TrendScore)
}
