package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/pricing"
)

var marginCmd = &cobra.Command{
	Use:   "margin",
	Short: "Calculate profit and margin",
	Long: `Calculates profit and margin percent for a buy/sell price pair.

Example:
  go run ./cmd/dropscout margin --buy 10 --sell 45
  go run ./cmd/dropscout margin --buy 10 --sell 45 --ad-cost 0`,
	RunE: runMargin,
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Suggest sell prices for a buy price",
	Long: `Derives conservative, optimal and aggressive sell prices from the
category markup. With --optimize, market conditions and competitor prices
adjust the recommended price.

Example:
  go run ./cmd/dropscout price --buy 10 --category beauty
  go run ./cmd/dropscout price --buy 10 --optimize --demand 85 --competition low --competitor 39.9 --competitor 44`,
	RunE: runPrice,
}

var (
	buyPrice    float64
	sellPrice   float64
	adCost      float64
	category    string
	optimize    bool
	demand      float64
	competition string
	seasonal    float64
	competitors []float64
)

func init() {
	rootCmd.AddCommand(marginCmd)
	rootCmd.AddCommand(priceCmd)

	marginCmd.Flags().Float64Var(&buyPrice, "buy", 0, "buy price")
	marginCmd.Flags().Float64Var(&sellPrice, "sell", 0, "sell price")
	marginCmd.Flags().Float64Var(&adCost, "ad-cost", pricing.DefaultAdCost, "advertising cost per sale")
	_ = marginCmd.MarkFlagRequired("buy")
	_ = marginCmd.MarkFlagRequired("sell")

	priceCmd.Flags().Float64Var(&buyPrice, "buy", 0, "buy price")
	priceCmd.Flags().StringVar(&category, "category", "general", "product category")
	priceCmd.Flags().Float64Var(&adCost, "ad-cost", pricing.DefaultAdCost, "advertising cost per sale")
	priceCmd.Flags().BoolVar(&optimize, "optimize", false, "apply market conditions and competitor prices")
	priceCmd.Flags().Float64Var(&demand, "demand", 0, "demand score 0-100")
	priceCmd.Flags().StringVar(&competition, "competition", "", "competition level (low|medium|high)")
	priceCmd.Flags().Float64Var(&seasonal, "seasonal", 0, "seasonal multiplier")
	priceCmd.Flags().Float64SliceVar(&competitors, "competitor", nil, "competitor price (repeatable)")
	_ = priceCmd.MarkFlagRequired("buy")
}

func runMargin(cmd *cobra.Command, args []string) error {
	m, err := pricing.CalculateMargin(buyPrice, sellPrice, adCost)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(m)
	}

	PrintDoubleSeparator()
	fmt.Printf("  Buy %.2f  Sell %.2f  Ad %.2f\n", buyPrice, sellPrice, adCost)
	PrintSeparator()
	fmt.Printf("  Profit    : %.2f\n", m.Profit)
	fmt.Printf("  Margin    : %.2f%%\n", m.MarginPercent)
	fmt.Printf("  Viable    : %t\n", m.IsViable)
	fmt.Printf("  Advice    : %s\n", pricing.MarginRecommendation(m.MarginPercent))
	PrintDoubleSeparator()
	return nil
}

func runPrice(cmd *cobra.Command, args []string) error {
	if !optimize {
		s, err := pricing.SuggestPrices(buyPrice, category, adCost)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(s)
		}
		PrintSuggestion(s)
		return nil
	}

	mc := pricing.MarketConditions{DemandScore: demand, SeasonalMultiplier: seasonal}
	if competition != "" {
		level, ok := contracts.ParseCompetitionLevel(competition)
		if !ok {
			return contracts.NewInvalidSignalError("competition", competition, "must be low, medium or high")
		}
		mc.CompetitionLevel = level
	}

	plan, err := pricing.Optimize(buyPrice, category, adCost, mc, competitors)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(plan)
	}

	PrintSuggestion(plan.Suggestion)
	fmt.Printf("  Recommended : %.0f (range %.0f - %.0f)\n", plan.RecommendedPrice, plan.PriceRange.Min, plan.PriceRange.Max)
	fmt.Printf("  Competitors : %s - %s\n", plan.Competitors.Position, plan.Competitors.Recommendation)
	PrintDoubleSeparator()
	return nil
}
