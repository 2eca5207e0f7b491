// Package aggregator sums scorer contributions into a composite score and status.
package aggregator

import (
	"github.com/wonny/dropscout/internal/contracts"
)

// Status thresholds on the unclamped sum
const (
	GreenThreshold = 70
	AmberThreshold = 30
	MaxReported    = 100
)

// Tiers maps the raw sum to a status, highest first
var Tiers = []struct {
	MinScore int
	Status   contracts.Status
}{
	{GreenThreshold, contracts.StatusGreen},
	{AmberThreshold, contracts.StatusAmber},
}

// StatusFor maps a raw sum to its status
func StatusFor(raw int) contracts.Status {
	for _, t := range Tiers {
		if raw >= t.MinScore {
			return t.Status
		}
	}
	return contracts.StatusRed
}

// Outcome is the aggregated reading of a contribution list
type Outcome struct {
	RawScore       int
	CompositeScore int
	Status         contracts.Status
	Alerts         []string
	Contributions  []contracts.ScoreContribution
}

// Aggregate sums points and collects alerts in evaluation order.
// The input slice is not modified.
func Aggregate(contributions []contracts.ScoreContribution) Outcome {
	out := Outcome{
		Contributions: make([]contracts.ScoreContribution, len(contributions)),
		Alerts:        []string{},
	}
	copy(out.Contributions, contributions)

	for _, c := range out.Contributions {
		out.RawScore += c.Points
		if c.Alert != "" {
			out.Alerts = append(out.Alerts, c.Alert)
		}
	}

	out.CompositeScore = min(out.RawScore, MaxReported)
	out.Status = StatusFor(out.RawScore)
	return out
}

// CapSocialBonus limits bonus so that base+bonus stays inside base's status tier.
// A negative cap is floored at zero.
func CapSocialBonus(base, bonus int) int {
	if bonus <= 0 {
		return 0
	}
	for i := len(Tiers) - 1; i >= 0; i-- {
		next := Tiers[i].MinScore
		if base < next {
			return max(0, min(bonus, next-1-base))
		}
	}
	return bonus
}

// Assemble aggregates contributions after capping the social bonus.
// Alerts on the social contribution are dropped; the bonus is supplementary only.
func Assemble(contributions []contracts.ScoreContribution) Outcome {
	adjusted := make([]contracts.ScoreContribution, len(contributions))
	copy(adjusted, contributions)

	base := 0
	socialIdx := -1
	for i, c := range adjusted {
		if c.Category == contracts.CategorySocial {
			socialIdx = i
			continue
		}
		base += c.Points
	}

	if socialIdx >= 0 {
		s := &adjusted[socialIdx]
		s.Points = CapSocialBonus(base, s.Points)
		s.Alert = ""
		if s.Points == 0 {
			s.Tag = contracts.TagNeutral
		}
	}

	return Aggregate(adjusted)
}
