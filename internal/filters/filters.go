// Package filters holds the advanced product research presets and checks products against them.
package filters

import (
	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/pricing"
)

// Range is an inclusive bound
type Range struct {
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Description string  `json:"description"`
}

// Contains reports whether v lies within the range
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Threshold is a single-valued preset
type Threshold struct {
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// Flag is a boolean preset
type Flag struct {
	Value       bool   `json:"value"`
	Description string `json:"description"`
}

// Advanced is the advanced research filter set
type Advanced struct {
	ReviewCount         Range     `json:"reviewCount"`
	Rating              Range     `json:"rating"`
	Price               Range     `json:"price"`
	SellPrice           Range     `json:"sellPrice"`
	MinMargin           Threshold `json:"minMargin"`
	CurrentlySelling    Flag      `json:"currentlySelling"`
	SocialProofRequired Flag      `json:"socialProofRequired"`
}

// Defaults returns the built-in presets
func Defaults() Advanced {
	return Advanced{
		ReviewCount:         Range{Min: 1000, Max: 7000, Description: "Sweet spot for demand validation"},
		Rating:              Range{Min: 4.0, Max: 5.0, Description: "Product quality indicator"},
		Price:               Range{Min: 2, Max: 50, Description: "Buy price range"},
		SellPrice:           Range{Min: 20, Max: 300, Description: "Target sell price range"},
		MinMargin:           Threshold{Value: pricing.MinViableMargin, Description: "Minimum profit margin percentage"},
		CurrentlySelling:    Flag{Value: true, Description: "Must show signs of current sales"},
		SocialProofRequired: Flag{Value: true, Description: "Must be trending on social media"},
	}
}

// Check is one filter's verdict
type Check struct {
	Filter string `json:"filter"`
	Passed bool   `json:"passed"`
}

// Result lists every check; Passes is true when all passed
type Result struct {
	Passes bool    `json:"passes"`
	Checks []Check `json:"checks"`
}

// Candidate is what the filters inspect
type Candidate struct {
	Product          contracts.ProductSignal `json:"product"`
	SellPrice        float64                 `json:"sellPrice"`
	CurrentlySelling bool                    `json:"currentlySelling"`
	SocialProof      bool                    `json:"socialProof"`
}

// Apply checks c against f. The margin check uses the default ad cost and
// fails when no sell price is given.
func (f Advanced) Apply(c Candidate) Result {
	marginOK := false
	if c.SellPrice > 0 && c.Product.BuyPrice > 0 {
		if m, err := pricing.CalculateMargin(c.Product.BuyPrice, c.SellPrice, pricing.DefaultAdCost); err == nil {
			marginOK = m.MarginPercent >= f.MinMargin.Value
		}
	}

	checks := []Check{
		{"reviewCount", f.ReviewCount.Contains(float64(c.Product.ReviewCount))},
		{"rating", f.Rating.Contains(c.Product.Rating)},
		{"price", f.Price.Contains(c.Product.BuyPrice)},
		{"sellPrice", f.SellPrice.Contains(c.SellPrice)},
		{"minMargin", marginOK},
		{"currentlySelling", !f.CurrentlySelling.Value || c.CurrentlySelling},
		{"socialProofRequired", !f.SocialProofRequired.Value || c.SocialProof},
	}

	passes := true
	for _, ch := range checks {
		passes = passes && ch.Passed
	}
	return Result{Passes: passes, Checks: checks}
}
