package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/pricing"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// Every command prints through these helpers
// ═══════════════════════════════════════════════════════════

var statusIcons = map[contracts.Status]string{
	contracts.StatusGreen: "🟢",
	contracts.StatusAmber: "🟠",
	contracts.StatusRed:   "🔴",
}

// PrintSeparator prints a visual separator
func PrintSeparator() {
	fmt.Println("───────────────────────────────────────────────────────────")
}

// PrintDoubleSeparator prints a double-line separator
func PrintDoubleSeparator() {
	fmt.Println("═══════════════════════════════════════════════════════════")
}

// PrintSuccess prints a success message
func PrintSuccess(message string) {
	fmt.Println()
	fmt.Printf("✅ %s\n", message)
}

// PrintResult prints a validation verdict with each contribution and alert
func PrintResult(r contracts.ValidationResult) {
	fmt.Println()
	PrintDoubleSeparator()
	name := r.ProductName
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("  %s %s\n", statusIcons[r.Status], name)
	PrintSeparator()
	fmt.Printf("  Status    : %s\n", r.Status)
	fmt.Printf("  Score     : %d (raw %d)\n", r.CompositeScore, r.RawScore)
	PrintSeparator()
	for _, c := range r.Contributions {
		fmt.Printf("  %-12s %+4d  %-8s %s\n", c.Category, c.Points, c.Tag, c.Message)
	}
	if len(r.Alerts) > 0 {
		PrintSeparator()
		for _, a := range r.Alerts {
			fmt.Printf("  ⚠️  %s\n", a)
		}
	}
	PrintSeparator()
	fmt.Printf("  %s: %s\n", r.Recommendation.Action, r.Recommendation.Message)
	for _, step := range r.Recommendation.NextSteps {
		fmt.Printf("    - %s\n", step)
	}
	PrintDoubleSeparator()
}

// PrintSuggestion prints the three price bands with their margins
func PrintSuggestion(s pricing.Suggestion) {
	fmt.Println()
	PrintDoubleSeparator()
	fmt.Printf("  Pricing   : buy %.2f, %s ×%.1f\n", s.BuyPrice, s.Category, s.Multiplier)
	PrintSeparator()
	fmt.Printf("  Conservative %6.0f  margin %6.2f%%\n", s.PricePoints.Conservative, s.Margins.Conservative.MarginPercent)
	fmt.Printf("  Optimal      %6.0f  margin %6.2f%%\n", s.PricePoints.Optimal, s.Margins.Optimal.MarginPercent)
	fmt.Printf("  Aggressive   %6.0f  margin %6.2f%%\n", s.PricePoints.Aggressive, s.Margins.Aggressive.MarginPercent)
	PrintSeparator()
	fmt.Printf("  %s\n", s.Recommendation)
	PrintDoubleSeparator()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func readAll(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}
