package scoring

import (
	"fmt"

	"github.com/wonny/dropscout/internal/contracts"
)

// Alert texts
const (
	AlertLacksSocialProof = "Product lacks social proof (too few reviews)"
	AlertOversaturated    = "Market may be oversaturated (too many reviews)"
	AlertLowSatisfaction  = "Low customer satisfaction (rating below 4.0)"
	AlertLowDemand        = "Insufficient demand (low monthly orders)"
	AlertTrendDeclining   = "Market interest declining"
	AlertHighCompetition  = "Very competitive market"
)

// ScoreReviews scores the review count
func (p Policy) ScoreReviews(count int) contracts.ScoreContribution {
	r := p.Reviews
	c := contracts.ScoreContribution{Category: contracts.CategoryReviews}

	switch {
	case count < r.Min:
		c.Points, c.Tag = r.LowPoints, contracts.TagUnfavorable
		c.Message = fmt.Sprintf("Only %d reviews: not enough social proof", count)
		c.Alert = AlertLacksSocialProof
	case count > r.Max:
		c.Points, c.Tag = r.SaturatedPoints, contracts.TagUnfavorable
		c.Message = fmt.Sprintf("%d reviews: market is oversaturated", count)
		c.Alert = AlertOversaturated
	case count >= r.SweetMin && count <= r.SweetMax:
		c.Points, c.Tag = r.SweetPoints, contracts.TagFavorable
		c.Message = fmt.Sprintf("Perfect review range (%d reviews)", count)
	default:
		c.Points, c.Tag = r.BorderPoints, contracts.TagNeutral
		c.Message = fmt.Sprintf("Borderline reviews (%d): acceptable but not ideal", count)
	}
	return c
}

// ScoreRating scores the average customer rating
func (p Policy) ScoreRating(rating float64) contracts.ScoreContribution {
	r := p.Rating
	c := contracts.ScoreContribution{Category: contracts.CategoryRating}

	switch {
	case rating >= r.Excellent:
		c.Points, c.Tag = r.ExcellentPoints, contracts.TagFavorable
		c.Message = fmt.Sprintf("Excellent rating (%.1f stars)", rating)
	case rating >= r.Good:
		c.Points, c.Tag = r.GoodPoints, contracts.TagNeutral
		c.Message = fmt.Sprintf("Good rating (%.1f stars)", rating)
	default:
		c.Points, c.Tag = r.PoorPoints, contracts.TagUnfavorable
		c.Message = fmt.Sprintf("Rating of %.1f stars is below 4.0", rating)
		c.Alert = AlertLowSatisfaction
	}
	return c
}

// ScoreDemand scores the monthly order volume
func (p Policy) ScoreDemand(orders int) contracts.ScoreContribution {
	d := p.Demand
	c := contracts.ScoreContribution{Category: contracts.CategoryDemand}

	switch {
	case orders >= d.High:
		c.Points, c.Tag = d.HighPoints, contracts.TagFavorable
		c.Message = fmt.Sprintf("High demand (%d monthly orders)", orders)
	case orders >= d.Moderate:
		c.Points, c.Tag = d.ModeratePoints, contracts.TagNeutral
		c.Message = fmt.Sprintf("Moderate demand (%d monthly orders)", orders)
	default:
		c.Points, c.Tag = d.LowPoints, contracts.TagUnfavorable
		c.Message = fmt.Sprintf("Low demand (%d monthly orders)", orders)
		c.Alert = AlertLowDemand
	}
	return c
}

// TrendCompetition holds the two sub-scores of the trend/competition scorer
type TrendCompetition struct {
	Trend       contracts.ScoreContribution
	Competition contracts.ScoreContribution
}

// Combined folds both sub-scores into one contribution.
// Alerts are joined in trend, competition order.
func (tc TrendCompetition) Combined() contracts.ScoreContribution {
	c := contracts.ScoreContribution{
		Category: contracts.CategoryTrend,
		Points:   tc.Trend.Points + tc.Competition.Points,
		Message:  tc.Trend.Message + "; " + tc.Competition.Message,
	}

	switch {
	case c.Points > 0:
		c.Tag = contracts.TagFavorable
	case c.Points < 0:
		c.Tag = contracts.TagUnfavorable
	default:
		c.Tag = contracts.TagNeutral
	}

	switch {
	case tc.Trend.Alert != "" && tc.Competition.Alert != "":
		c.Alert = tc.Trend.Alert + "; " + tc.Competition.Alert
	case tc.Trend.Alert != "":
		c.Alert = tc.Trend.Alert
	default:
		c.Alert = tc.Competition.Alert
	}
	return c
}

// ScoreTrendCompetition scores search-interest direction and storefront competition
func (p Policy) ScoreTrendCompetition(social contracts.SocialSignal, competition contracts.CompetitionSignal) TrendCompetition {
	return TrendCompetition{
		Trend:       p.scoreTrend(social),
		Competition: p.scoreCompetition(competition),
	}
}

func (p Policy) scoreTrend(social contracts.SocialSignal) contracts.ScoreContribution {
	t := p.Trend
	c := contracts.ScoreContribution{Category: contracts.CategoryTrend}

	switch social.GoogleTrendDirection {
	case contracts.TrendRising:
		if social.TrendScore > t.StrongScore {
			c.Points, c.Tag = t.StrongRisingPoints, contracts.TagFavorable
			c.Message = fmt.Sprintf("Strong rising trend (score %d)", social.TrendScore)
		} else {
			c.Points, c.Tag = t.RisingPoints, contracts.TagFavorable
			c.Message = "Trend is rising"
		}
	case contracts.TrendDeclining:
		c.Points, c.Tag = t.DecliningPoints, contracts.TagUnfavorable
		c.Message = "Trend is declining"
		c.Alert = AlertTrendDeclining
	default:
		c.Points, c.Tag = t.StablePoints, contracts.TagNeutral
		c.Message = "Trend is stable"
	}
	return c
}

func (p Policy) scoreCompetition(competition contracts.CompetitionSignal) contracts.ScoreContribution {
	cp := p.Competition
	c := contracts.ScoreContribution{Category: contracts.CategoryCompetition}

	stores := "store count not reported"
	if competition.StoreCountKnown {
		stores = fmt.Sprintf("%d stores", competition.StoreCount)
	}

	switch competition.EffectiveLevel() {
	case contracts.CompetitionLow:
		c.Points, c.Tag = cp.LowPoints, contracts.TagFavorable
		c.Message = "Low competition (" + stores + ")"
	case contracts.CompetitionHigh:
		c.Points, c.Tag = cp.HighPoints, contracts.TagUnfavorable
		c.Message = "High competition (" + stores + ")"
		c.Alert = AlertHighCompetition
	default:
		c.Points, c.Tag = cp.MediumPoints, contracts.TagNeutral
		c.Message = "Medium competition (" + stores + ")"
	}
	return c
}

// ScoreSocial computes the optional social bonus (0..MaxBonus).
// It never raises an alert. The aggregator caps it further so it cannot flip status alone.
func (p Policy) ScoreSocial(social contracts.SocialSignal) contracts.ScoreContribution {
	sp := p.Social
	c := contracts.ScoreContribution{Category: contracts.CategorySocial, Tag: contracts.TagNeutral}

	points := 0
	var parts []string

	if social.FacebookActive {
		switch {
		case social.FacebookEngagement > sp.FacebookHighEngagement:
			points += sp.HighPoints
		case social.FacebookEngagement > sp.FacebookMidEngagement:
			points += sp.MidPoints
		default:
			points += sp.BasePoints
		}
		parts = append(parts, "active Facebook ads")
	}

	if social.TikTokTrending {
		switch {
		case social.TikTokEngagementRate >= sp.TikTokHighRate:
			points += sp.HighPoints
		case social.TikTokEngagementRate >= sp.TikTokMidRate:
			points += sp.MidPoints
		default:
			points += sp.BasePoints
		}
		parts = append(parts, "trending on TikTok")
	}

	c.Points = min(points, sp.MaxBonus)
	switch len(parts) {
	case 0:
		c.Message = "No active social presence"
	case 1:
		c.Message = "Social presence: " + parts[0]
	default:
		c.Message = "Social presence: " + parts[0] + " and " + parts[1]
	}
	if c.Points > 0 {
		c.Tag = contracts.TagFavorable
	}
	return c
}
