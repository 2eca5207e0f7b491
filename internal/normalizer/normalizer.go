// Package normalizer coerces raw upstream payloads into typed signals.
// It performs no scoring.
package normalizer

import (
	"strings"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/socialproof"
)

// NormalizeProduct coerces a marketplace payload.
// Missing numerics default to 0. Out-of-range values are rejected.
func NormalizeProduct(raw contracts.RawPayload) (contracts.ProductSignal, error) {
	var p contracts.ProductSignal
	var err error

	if p.ReviewCount, _, err = intField(raw, "reviewCount", "reviews", "review_count"); err != nil {
		return p, err
	}
	if p.Rating, _, err = floatField(raw, "rating"); err != nil {
		return p, err
	}
	if p.MonthlyOrders, _, err = intField(raw, "monthlyOrders", "orders", "sales"); err != nil {
		return p, err
	}
	if p.BuyPrice, _, err = floatField(raw, "buyPrice", "price", "cost"); err != nil {
		return p, err
	}
	if p.Category, err = stringField(raw, "category"); err != nil {
		return p, err
	}
	p.Category = strings.ToLower(strings.TrimSpace(p.Category))

	if err := p.Validate(); err != nil {
		return contracts.ProductSignal{}, err
	}
	return p, nil
}

// NormalizeSocialProof coerces the four-source payload
// {facebook, tiktok, amazon, googleTrends}. Missing sources count as inactive.
func NormalizeSocialProof(raw contracts.RawPayload) (socialproof.Input, error) {
	var in socialproof.Input
	var err error

	if fb, ok := nested(raw, "facebook"); ok {
		if in.Facebook.IsBeingAdvertised, err = boolField(fb, "facebook.isBeingAdvertised", "isBeingAdvertised", "active"); err != nil {
			return in, err
		}
		if in.Facebook.ActiveAds, _, err = intField(fb, "facebook.activeAds", "activeAds"); err != nil {
			return in, err
		}
		if in.Facebook.EngagementScore, _, err = floatField(fb, "facebook.engagementScore", "engagementScore"); err != nil {
			return in, err
		}
		if in.Facebook.Engagement, _, err = intField(fb, "facebook.engagement", "engagement"); err != nil {
			return in, err
		}
	}

	if tt, ok := nested(raw, "tiktok"); ok {
		if in.TikTok.IsTrending, err = boolField(tt, "tiktok.isTrending", "isTrending", "trending"); err != nil {
			return in, err
		}
		if in.TikTok.TotalViews, _, err = intField(tt, "tiktok.totalViews", "totalViews"); err != nil {
			return in, err
		}
		if in.TikTok.VideoCount, _, err = intField(tt, "tiktok.videoCount", "videoCount"); err != nil {
			return in, err
		}
		if in.TikTok.EngagementRate, _, err = floatField(tt, "tiktok.engagementRate", "engagementRate"); err != nil {
			return in, err
		}
		if in.TikTok.GrowthTrend, err = trendField(tt, "tiktok.growthTrend", "growthTrend"); err != nil {
			return in, err
		}
	}

	if az, ok := nested(raw, "amazon"); ok {
		if in.Amazon.IsBestSeller, err = boolField(az, "amazon.isAmazonBestSeller", "isAmazonBestSeller", "isBestSeller"); err != nil {
			return in, err
		}
		if in.Amazon.Rank, _, err = intField(az, "amazon.amazonRank", "amazonRank", "rank"); err != nil {
			return in, err
		}
		if in.Amazon.Reviews, _, err = intField(az, "amazon.reviews", "reviews"); err != nil {
			return in, err
		}
		if in.Amazon.CompetitorCount, _, err = intField(az, "amazon.competitorCount", "competitorCount"); err != nil {
			return in, err
		}
	}

	in.GoogleTrends.Trend = contracts.TrendStable
	if gt, ok := nested(raw, "googleTrends"); ok {
		if in.GoogleTrends, err = normalizeGoogleTrends(gt); err != nil {
			return in, err
		}
	}

	if in.Facebook.EngagementScore < 0 || in.Facebook.EngagementScore > 100 {
		return in, contracts.NewInvalidSignalError("facebook.engagementScore", in.Facebook.EngagementScore, "must be between 0 and 100")
	}
	if in.TikTok.EngagementRate < 0 {
		return in, contracts.NewInvalidSignalError("tiktok.engagementRate", in.TikTok.EngagementRate, "must not be negative")
	}

	return in, nil
}

// normalizeGoogleTrends accepts either {trend: "rising", score: 80}
// or {trend: 80, trendDirection: "rising"}.
func normalizeGoogleTrends(gt contracts.RawPayload) (socialproof.GoogleTrendsProof, error) {
	var out socialproof.GoogleTrendsProof
	var err error

	if out.SearchVolume, _, err = intField(gt, "googleTrends.searchVolume", "searchVolume"); err != nil {
		return out, err
	}

	scoreKeys := []string{"score", "interest"}
	if _, isString := gt["trend"].(string); isString {
		out.Trend, err = trendField(gt, "googleTrends.trend", "trend")
	} else {
		out.Trend, err = trendField(gt, "googleTrends.trendDirection", "trendDirection", "direction")
		scoreKeys = append(scoreKeys, "trend")
	}
	if err != nil {
		return out, err
	}

	score, present, err := intField(gt, "googleTrends.score", scoreKeys...)
	if err != nil {
		return out, err
	}
	if score > 100 {
		return out, contracts.NewInvalidSignalError("googleTrends.score", score, "must be between 0 and 100")
	}
	out.Score, out.HasScore = score, present
	return out, nil
}

// NormalizeSocial produces the scorer's social signal.
// Nested four-source payloads go through the social-proof aggregator; flat payloads are read directly.
func NormalizeSocial(raw contracts.RawPayload) (contracts.SocialSignal, error) {
	if isNestedSocial(raw) {
		in, err := NormalizeSocialProof(raw)
		if err != nil {
			return contracts.SocialSignal{}, err
		}
		return socialproof.Aggregate(in).Signal(), nil
	}

	var s contracts.SocialSignal
	var err error

	if s.FacebookActive, err = boolField(raw, "facebookActive"); err != nil {
		return s, err
	}
	if s.FacebookEngagement, _, err = intField(raw, "facebookEngagement"); err != nil {
		return s, err
	}
	if s.TikTokTrending, err = boolField(raw, "tiktokTrending"); err != nil {
		return s, err
	}
	if s.TikTokEngagementRate, _, err = floatField(raw, "tiktokEngagementRate"); err != nil {
		return s, err
	}
	if s.AmazonBestSeller, err = boolField(raw, "amazonBestSeller"); err != nil {
		return s, err
	}
	if s.GoogleTrendDirection, err = trendField(raw, "googleTrendDirection", "trendDirection", "trend"); err != nil {
		return s, err
	}
	if s.TrendScore, _, err = intField(raw, "trendScore"); err != nil {
		return s, err
	}

	if err := s.Validate(); err != nil {
		return contracts.SocialSignal{}, err
	}
	return s, nil
}

// SocialProofInput reports whether raw is a four-source payload and, if so, coerces it
func SocialProofInput(raw contracts.RawPayload) (socialproof.Input, bool, error) {
	if !isNestedSocial(raw) {
		return socialproof.Input{}, false, nil
	}
	in, err := NormalizeSocialProof(raw)
	if err != nil {
		return socialproof.Input{}, true, err
	}
	return in, true, nil
}

func isNestedSocial(raw contracts.RawPayload) bool {
	for _, k := range []string{"facebook", "tiktok", "amazon", "googleTrends"} {
		if _, ok := nested(raw, k); ok {
			return true
		}
	}
	return false
}

// NormalizeCompetition coerces a competition payload.
// A missing level defaults to medium; a missing store count is recorded as unknown.
func NormalizeCompetition(raw contracts.RawPayload) (contracts.CompetitionSignal, error) {
	var c contracts.CompetitionSignal

	levelStr, err := stringField(raw, "level")
	if err != nil {
		return c, err
	}
	level, ok := contracts.ParseCompetitionLevel(levelStr)
	if !ok {
		return c, contracts.NewInvalidSignalError("level", levelStr, "unknown competition level")
	}
	c.Level = level

	if c.StoreCount, c.StoreCountKnown, err = intField(raw, "storeCount", "stores"); err != nil {
		return contracts.CompetitionSignal{}, err
	}

	return c, nil
}

// Normalize coerces all three payloads. Nil payloads are treated as empty.
func Normalize(product, social, competition contracts.RawPayload) (contracts.Signals, error) {
	p, err := NormalizeProduct(product)
	if err != nil {
		return contracts.Signals{}, err
	}
	s, err := NormalizeSocial(social)
	if err != nil {
		return contracts.Signals{}, err
	}
	c, err := NormalizeCompetition(competition)
	if err != nil {
		return contracts.Signals{}, err
	}
	return contracts.Signals{Product: p, Social: s, Competition: c}, nil
}
