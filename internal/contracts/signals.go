package contracts

import (
	"fmt"
	"math"
	"strings"
)

// TrendDirection is the direction of search/social interest
type TrendDirection string

const (
	TrendRising    TrendDirection = "rising"
	TrendStable    TrendDirection = "stable"
	TrendDeclining TrendDirection = "declining"
)

// ParseTrendDirection accepts "flat" as an alias of stable.
// Empty input yields TrendStable.
func ParseTrendDirection(s string) (TrendDirection, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rising", "up":
		return TrendRising, true
	case "", "stable", "flat":
		return TrendStable, true
	case "declining", "down":
		return TrendDeclining, true
	default:
		return "", false
	}
}

// CompetitionLevel is the saturation of the storefront market
type CompetitionLevel string

const (
	CompetitionLow    CompetitionLevel = "low"
	CompetitionMedium CompetitionLevel = "medium"
	CompetitionHigh   CompetitionLevel = "high"
)

// ParseCompetitionLevel yields CompetitionMedium for empty input
func ParseCompetitionLevel(s string) (CompetitionLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return CompetitionLow, true
	case "", "medium":
		return CompetitionMedium, true
	case "high":
		return CompetitionHigh, true
	default:
		return "", false
	}
}

// Store-count overrides for competition tier
const (
	LowCompetitionStoreCount  = 50
	HighCompetitionStoreCount = 200
)

// ProductSignal holds one product's validated marketplace inputs
// ⭐ SSOT: scorers only ever see this typed form
type ProductSignal struct {
	ReviewCount   int     `json:"reviewCount"`
	Rating        float64 `json:"rating"`
	MonthlyOrders int     `json:"monthlyOrders"`
	BuyPrice      float64 `json:"buyPrice"`
	Category      string  `json:"category,omitempty"` // pricing multiplier lookup only
}

// Validate rejects values outside the canonical ranges
func (p ProductSignal) Validate() error {
	if p.ReviewCount < 0 {
		return NewInvalidSignalError("reviewCount", p.ReviewCount, "must not be negative")
	}
	if !finite(p.Rating) || p.Rating < 0 || p.Rating > 5 {
		return NewInvalidSignalError("rating", p.Rating, "must be between 0 and 5")
	}
	if p.MonthlyOrders < 0 {
		return NewInvalidSignalError("monthlyOrders", p.MonthlyOrders, "must not be negative")
	}
	if !finite(p.BuyPrice) {
		return NewInvalidSignalError("buyPrice", p.BuyPrice, "must be a finite number")
	}
	if p.BuyPrice < 0 {
		return NewInvalidSignalError("buyPrice", p.BuyPrice, "must not be negative")
	}
	return nil
}

// finite is false for NaN and ±Inf, which slip through plain range comparisons
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// SocialSignal is the aggregated external proof feeding the trend scorer
type SocialSignal struct {
	FacebookActive       bool           `json:"facebookActive"`
	FacebookEngagement   int            `json:"facebookEngagement"`
	TikTokTrending       bool           `json:"tiktokTrending"`
	TikTokEngagementRate float64        `json:"tiktokEngagementRate"`
	AmazonBestSeller     bool           `json:"amazonBestSeller"`
	GoogleTrendDirection TrendDirection `json:"googleTrendDirection"`
	TrendScore           int            `json:"trendScore"` // 0-100
}

// Validate rejects values outside the canonical ranges
func (s SocialSignal) Validate() error {
	if s.FacebookEngagement < 0 {
		return NewInvalidSignalError("facebookEngagement", s.FacebookEngagement, "must not be negative")
	}
	if !finite(s.TikTokEngagementRate) {
		return NewInvalidSignalError("tiktokEngagementRate", s.TikTokEngagementRate, "must be a finite number")
	}
	if s.TikTokEngagementRate < 0 {
		return NewInvalidSignalError("tiktokEngagementRate", s.TikTokEngagementRate, "must not be negative")
	}
	if s.TrendScore < 0 || s.TrendScore > 100 {
		return NewInvalidSignalError("trendScore", s.TrendScore, "must be between 0 and 100")
	}
	switch s.GoogleTrendDirection {
	case TrendRising, TrendStable, TrendDeclining:
	default:
		return NewInvalidSignalError("googleTrendDirection", string(s.GoogleTrendDirection), "unknown trend direction")
	}
	return nil
}

// CompetitionSignal describes storefront competition.
// StoreCountKnown separates "zero stores" from "not reported".
type CompetitionSignal struct {
	Level           CompetitionLevel `json:"level"`
	StoreCount      int              `json:"storeCount"`
	StoreCountKnown bool             `json:"storeCountKnown"`
}

// Validate rejects values outside the canonical ranges
func (c CompetitionSignal) Validate() error {
	if c.StoreCount < 0 {
		return NewInvalidSignalError("storeCount", c.StoreCount, "must not be negative")
	}
	switch c.Level {
	case CompetitionLow, CompetitionMedium, CompetitionHigh:
	default:
		return NewInvalidSignalError("level", string(c.Level), "unknown competition level")
	}
	return nil
}

// EffectiveLevel applies the store-count override on top of the reported level
func (c CompetitionSignal) EffectiveLevel() CompetitionLevel {
	if c.StoreCountKnown {
		switch {
		case c.StoreCount < LowCompetitionStoreCount:
			return CompetitionLow
		case c.StoreCount >= HighCompetitionStoreCount:
			return CompetitionHigh
		}
	}
	return c.Level
}

// Signals bundles the normalized input triple for one product
type Signals struct {
	Product     ProductSignal     `json:"product"`
	Social      SocialSignal      `json:"social"`
	Competition CompetitionSignal `json:"competition"`
}

// Validate checks every part of the triple
func (s Signals) Validate() error {
	if err := s.Product.Validate(); err != nil {
		return err
	}
	if err := s.Social.Validate(); err != nil {
		return err
	}
	return s.Competition.Validate()
}

// ProductRef identifies a product to validate
type ProductRef struct {
	ID       string `json:"productId"`
	Name     string `json:"productName"`
	Category string `json:"category,omitempty"`
}

// Key returns "name:id", with "unknown" standing in for a missing id
func (r ProductRef) Key() string {
	id := r.ID
	if id == "" {
		id = "unknown"
	}
	return fmt.Sprintf("%s:%s", r.Name, id)
}

// RawPayload is an untyped upstream response decoded from JSON
type RawPayload map[string]interface{}
