package socialproof

import "github.com/wonny/dropscout/internal/contracts"

// Timing scores
const (
	timingBothRising = 90
	timingOneRising  = 70
	timingFlat       = 50
	timingDeclining  = 20
	advertisedBoost  = 10
)

// LaunchWindow is the suggested launch timing for a trend
type LaunchWindow struct {
	Action  string `json:"action"`
	Urgency string `json:"urgency"`
	Window  string `json:"window"`
	Reason  string `json:"reason"`
}

// TimingScore describes whether a product is rising, flat or declining
type TimingScore struct {
	Trend          contracts.TrendDirection `json:"trend"`
	Score          int                      `json:"score"`
	Recommendation string                   `json:"recommendation"`
	Window         LaunchWindow             `json:"window"`
}

var windows = map[contracts.TrendDirection]LaunchWindow{
	contracts.TrendRising: {
		Action:  "Launch immediately",
		Urgency: "High",
		Window:  "1-2 weeks",
		Reason:  "Catch the wave before saturation",
	},
	contracts.TrendStable: {
		Action:  "Can launch anytime",
		Urgency: "Medium",
		Window:  "2-4 weeks",
		Reason:  "Stable demand allows flexible timing",
	},
	contracts.TrendDeclining: {
		Action:  "Do not launch",
		Urgency: "Low",
		Window:  "N/A",
		Reason:  "Product is losing popularity",
	},
}

// Timing combines the Google and TikTok trend directions into a launch timing score.
// Any rising source beats a declining one.
func Timing(google, tiktok contracts.TrendDirection, advertised bool) TimingScore {
	var trend contracts.TrendDirection
	var score int

	switch {
	case google == contracts.TrendRising && tiktok == contracts.TrendRising:
		trend, score = contracts.TrendRising, timingBothRising
	case google == contracts.TrendRising || tiktok == contracts.TrendRising:
		trend, score = contracts.TrendRising, timingOneRising
	case google == contracts.TrendDeclining || tiktok == contracts.TrendDeclining:
		trend, score = contracts.TrendDeclining, timingDeclining
	default:
		trend, score = contracts.TrendStable, timingFlat
	}

	if advertised {
		score = min(100, score+advertisedBoost)
	}

	return TimingScore{
		Trend:          trend,
		Score:          score,
		Recommendation: timingRecommendation(trend, score),
		Window:         windows[trend],
	}
}

func timingRecommendation(trend contracts.TrendDirection, score int) string {
	switch {
	case trend == contracts.TrendRising && score >= 80:
		return "Perfect timing: product is rising, launch now"
	case trend == contracts.TrendRising:
		return "Good timing: product is gaining momentum"
	case trend == contracts.TrendStable && score >= 60:
		return "Stable: product has consistent demand"
	case trend == contracts.TrendStable:
		return "Caution: limited demand signals"
	default:
		return "Avoid: product is losing momentum"
	}
}
