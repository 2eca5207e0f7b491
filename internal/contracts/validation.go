package contracts

import "time"

// Tag is the qualitative reading of one contribution
type Tag string

const (
	TagFavorable   Tag = "favorable"
	TagNeutral     Tag = "neutral"
	TagUnfavorable Tag = "unfavorable"
)

// Category names a scorer. Evaluation order is the order of AllCategories.
type Category string

const (
	CategoryReviews     Category = "reviews"
	CategoryRating      Category = "rating"
	CategoryDemand      Category = "demand"
	CategorySocial      Category = "social"
	CategoryTrend       Category = "trend"
	CategoryCompetition Category = "competition"
)

// AllCategories lists categories in evaluation order
var AllCategories = []Category{
	CategoryReviews,
	CategoryRating,
	CategoryDemand,
	CategorySocial,
	CategoryTrend,
	CategoryCompetition,
}

// ScoreContribution is one scorer's output
type ScoreContribution struct {
	Category Category `json:"category"`
	Points   int      `json:"points"`
	Tag      Tag      `json:"tag"`
	Message  string   `json:"message"`
	Alert    string   `json:"alert,omitempty"`
}

// Status is the tri-state verdict
type Status string

const (
	StatusGreen Status = "GREEN"
	StatusAmber Status = "AMBER"
	StatusRed   Status = "RED"
)

// Recommendation is the action attached to a status
type Recommendation struct {
	Action          string   `json:"action"`
	Message         string   `json:"message"`
	ConfidenceLevel string   `json:"confidenceLevel"`
	NextSteps       []string `json:"nextSteps"`
}

// ValidationResult is the terminal artifact of one evaluation
// ⭐ SSOT: never mutated after the evaluator returns it
type ValidationResult struct {
	ProductID      string              `json:"productId,omitempty"`
	ProductName    string              `json:"productName,omitempty"`
	CompositeScore int                 `json:"compositeScore"` // capped at 100
	RawScore       int                 `json:"rawScore"`       // unclamped sum, drives Status
	Status         Status              `json:"status"`
	Contributions  []ScoreContribution `json:"contributions"`
	Alerts         []string            `json:"alerts"`
	Recommendation Recommendation      `json:"recommendation"`
	EvaluatedAt    time.Time           `json:"evaluatedAt"`
}

// Contribution returns the contribution for a category
func (r ValidationResult) Contribution(c Category) (ScoreContribution, bool) {
	for _, sc := range r.Contributions {
		if sc.Category == c {
			return sc, true
		}
	}
	return ScoreContribution{}, false
}

// HistoryRecord is one persisted validation
type HistoryRecord struct {
	ID          int64            `json:"id"`
	Ref         ProductRef       `json:"ref"`
	Signals     Signals          `json:"signals"`
	Result      ValidationResult `json:"result"`
	SocialScore int              `json:"socialProofScore"`
	CreatedAt   time.Time        `json:"createdAt"`
}
