package normalizer

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/dropscout/internal/contracts"
)

func decode(t *testing.T, s string) contracts.RawPayload {
	t.Helper()
	var raw contracts.RawPayload
	require.NoError(t, json.Unmarshal([]byte(s), &raw))
	return raw
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	var sigErr *contracts.InvalidSignalError
	require.True(t, errors.As(err, &sigErr), "expected InvalidSignalError, got %T", err)
	assert.Equal(t, field, sigErr.Field)
}

func TestNormalizeProduct(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want contracts.ProductSignal
	}{
		{
			name: "canonical keys",
			raw:  `{"reviewCount": 5000, "rating": 4.7, "monthlyOrders": 12000, "buyPrice": 8.5, "category": "Beauty"}`,
			want: contracts.ProductSignal{ReviewCount: 5000, Rating: 4.7, MonthlyOrders: 12000, BuyPrice: 8.5, Category: "beauty"},
		},
		{
			name: "marketplace aliases with numeric strings",
			raw:  `{"reviews": 3200, "rating": "4.1", "orders": 6100, "price": "23.40"}`,
			want: contracts.ProductSignal{ReviewCount: 3200, Rating: 4.1, MonthlyOrders: 6100, BuyPrice: 23.4},
		},
		{
			name: "missing fields default to zero",
			raw:  `{}`,
			want: contracts.ProductSignal{},
		},
		{
			name: "null treated as missing",
			raw:  `{"reviewCount": null, "rating": null}`,
			want: contracts.ProductSignal{},
		},
		{
			name: "fractional counts truncate",
			raw:  `{"reviewCount": 4000.9}`,
			want: contracts.ProductSignal{ReviewCount: 4000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeProduct(decode(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeProduct_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"non-numeric reviews", `{"reviewCount": "lots"}`, "reviewCount"},
		{"boolean rating", `{"rating": true}`, "rating"},
		{"object orders", `{"orders": {"n": 1}}`, "monthlyOrders"},
		{"negative reviews", `{"reviews": -5}`, "reviewCount"},
		{"rating above five", `{"rating": 7}`, "rating"},
		{"numeric category", `{"category": 12}`, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeProduct(decode(t, tt.raw))
			requireField(t, err, tt.field)
			assert.ErrorIs(t, err, contracts.ErrInvalidSignal)
		})
	}
}

func TestNormalizeProduct_GoNumerics(t *testing.T) {
	got, err := NormalizeProduct(contracts.RawPayload{
		"reviewCount":   int64(4500),
		"rating":        float32(4.5),
		"monthlyOrders": json.Number("10000"),
		"buyPrice":      12,
	})
	require.NoError(t, err)
	assert.Equal(t, 4500, got.ReviewCount)
	assert.InDelta(t, 4.5, got.Rating, 1e-6)
	assert.Equal(t, 10000, got.MonthlyOrders)
	assert.Equal(t, 12.0, got.BuyPrice)
}

func TestNormalizeSocial_Flat(t *testing.T) {
	got, err := NormalizeSocial(decode(t, `{
		"facebookActive": true,
		"facebookEngagement": 1200,
		"tiktokTrending": "true",
		"tiktokEngagementRate": "6.5",
		"googleTrendDirection": "flat",
		"trendScore": 55
	}`))
	require.NoError(t, err)

	assert.Equal(t, contracts.SocialSignal{
		FacebookActive:       true,
		FacebookEngagement:   1200,
		TikTokTrending:       true,
		TikTokEngagementRate: 6.5,
		GoogleTrendDirection: contracts.TrendStable,
		TrendScore:           55,
	}, got)
}

func TestNormalizeSocial_NumericFlags(t *testing.T) {
	body := `{"facebookActive": 1, "tiktokTrending": 0, "amazonBestSeller": 1}`

	dec := json.NewDecoder(strings.NewReader(body))
	dec.UseNumber()
	var withNumbers contracts.RawPayload
	require.NoError(t, dec.Decode(&withNumbers))

	for name, raw := range map[string]contracts.RawPayload{
		"float64":     decode(t, body),
		"json.Number": withNumbers,
	} {
		t.Run(name, func(t *testing.T) {
			got, err := NormalizeSocial(raw)
			require.NoError(t, err)
			assert.True(t, got.FacebookActive)
			assert.False(t, got.TikTokTrending)
			assert.True(t, got.AmazonBestSeller)
		})
	}

	dec = json.NewDecoder(strings.NewReader(`{"facebookActive": 2}`))
	dec.UseNumber()
	var bad contracts.RawPayload
	require.NoError(t, dec.Decode(&bad))
	_, err := NormalizeSocial(bad)
	requireField(t, err, "facebookActive")
}

func TestNormalizeSocial_Defaults(t *testing.T) {
	got, err := NormalizeSocial(nil)
	require.NoError(t, err)
	assert.Equal(t, contracts.TrendStable, got.GoogleTrendDirection)
	assert.False(t, got.FacebookActive)
	assert.Zero(t, got.TrendScore)
}

func TestNormalizeSocial_Nested(t *testing.T) {
	got, err := NormalizeSocial(decode(t, `{
		"facebook": {"isBeingAdvertised": true, "activeAds": 12, "engagementScore": 64, "engagement": 800},
		"tiktok": {"isTrending": false, "engagementRate": "3.10", "growthTrend": "rising"},
		"amazon": {"isAmazonBestSeller": true, "amazonRank": 120},
		"googleTrends": {"trend": "rising", "searchVolume": 54000}
	}`))
	require.NoError(t, err)

	assert.True(t, got.FacebookActive)
	assert.Equal(t, 800, got.FacebookEngagement)
	assert.False(t, got.TikTokTrending)
	assert.Equal(t, 3.1, got.TikTokEngagementRate)
	assert.True(t, got.AmazonBestSeller)
	assert.Equal(t, contracts.TrendRising, got.GoogleTrendDirection)
	// no Google score: timing score both rising (90) + advertised (10)
	assert.Equal(t, 100, got.TrendScore)
}

func TestNormalizeSocialProof_GoogleNumericTrend(t *testing.T) {
	in, err := NormalizeSocialProof(decode(t, `{"googleTrends": {"trend": 83, "trendDirection": "declining"}}`))
	require.NoError(t, err)

	assert.Equal(t, contracts.TrendDeclining, in.GoogleTrends.Trend)
	assert.Equal(t, 83, in.GoogleTrends.Score)
	assert.True(t, in.GoogleTrends.HasScore)
}

func TestNormalizeSocialProof_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		field string
	}{
		{"bad bool", `{"facebook": {"isBeingAdvertised": "maybe"}}`, "facebook.isBeingAdvertised"},
		{"bad rate", `{"tiktok": {"engagementRate": "high"}}`, "tiktok.engagementRate"},
		{"unknown growth", `{"tiktok": {"growthTrend": "viral"}}`, "tiktok.growthTrend"},
		{"engagement score range", `{"facebook": {"engagementScore": 140}}`, "facebook.engagementScore"},
		{"google score range", `{"googleTrends": {"trend": "rising", "score": 180}}`, "googleTrends.score"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSocialProof(decode(t, tt.raw))
			requireField(t, err, tt.field)
		})
	}
}

func TestNormalizeCompetition(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want contracts.CompetitionSignal
	}{
		{"missing level is medium", `{}`, contracts.CompetitionSignal{Level: contracts.CompetitionMedium}},
		{"level and stores", `{"level": "low", "stores": 75}`, contracts.CompetitionSignal{Level: contracts.CompetitionLow, StoreCount: 75, StoreCountKnown: true}},
		{"zero stores is known", `{"storeCount": 0}`, contracts.CompetitionSignal{Level: contracts.CompetitionMedium, StoreCountKnown: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCompetition(decode(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := NormalizeCompetition(decode(t, `{"level": "brutal"}`))
	requireField(t, err, "level")

	_, err = NormalizeCompetition(decode(t, `{"stores": "many"}`))
	requireField(t, err, "storeCount")
}

func TestNormalize(t *testing.T) {
	sig, err := Normalize(
		decode(t, `{"reviews": 5000, "rating": 4.7, "orders": 12000}`),
		decode(t, `{"googleTrendDirection": "rising", "trendScore": 85}`),
		decode(t, `{"level": "low"}`),
	)
	require.NoError(t, err)
	require.NoError(t, sig.Validate())
	assert.Equal(t, 5000, sig.Product.ReviewCount)
	assert.Equal(t, contracts.TrendRising, sig.Social.GoogleTrendDirection)
	assert.Equal(t, contracts.CompetitionLow, sig.Competition.Level)

	_, err = Normalize(decode(t, `{"rating": "five"}`), nil, nil)
	requireField(t, err, "rating")
}
