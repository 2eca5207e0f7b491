package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/normalizer"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate one product",
	Long: `Fetches marketplace, social and competition signals for one product
and scores it.

Example:
  go run ./cmd/dropscout validate --name "LED Strip"
  go run ./cmd/dropscout validate --id 1005001234 --name "LED Strip" --category home --json`,
	RunE: runValidate,
}

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Validate a batch of products from a JSON file",
	Long: `Validates up to VALIDATION_MAX_BATCH products. The file holds either
an array of {productId, productName, category} or {"products": [...]}.
Use "-" to read standard input.

Example:
  go run ./cmd/dropscout batch products.json`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [file]",
	Short: "Score caller-supplied signals without fetching",
	Long: `Scores {product, social, competition} payloads read from a JSON file.
No upstream is called and nothing is cached.

Example:
  go run ./cmd/dropscout evaluate signals.json`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

var (
	productID       string
	productName     string
	productCategory string
)

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(evaluateCmd)

	validateCmd.Flags().StringVar(&productID, "id", "", "marketplace product id")
	validateCmd.Flags().StringVar(&productName, "name", "", "product name (required)")
	validateCmd.Flags().StringVar(&productCategory, "category", "", "product category")
	_ = validateCmd.MarkFlagRequired("name")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.ValidateProduct(cmd.Context(), contracts.ProductRef{
		ID:       strings.TrimSpace(productID),
		Name:     strings.TrimSpace(productName),
		Category: strings.TrimSpace(productCategory),
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}
	PrintResult(report.Result)
	if report.Pricing != nil {
		PrintSuggestion(*report.Pricing)
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}
	refs, err := parseRefs(data)
	if err != nil {
		return err
	}

	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	report, err := a.service.ValidateBatch(cmd.Context(), refs)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(report)
	}

	PrintDoubleSeparator()
	fmt.Printf("  Batch %s\n", report.BatchID)
	PrintSeparator()
	for i, e := range report.Results {
		if e.Err != nil {
			fmt.Printf("  [%d/%d] %-30s ERROR  %v\n", i+1, len(report.Results), e.Ref.Name, e.Err)
			continue
		}
		r := e.Report.Result
		fmt.Printf("  [%d/%d] %-30s %-5s  %3d\n", i+1, len(report.Results), e.Ref.Name, r.Status, r.CompositeScore)
	}
	PrintSeparator()
	s := report.Summary
	fmt.Printf("  total=%d green=%d amber=%d red=%d failed=%d\n", s.Total, s.Green, s.Amber, s.Red, s.Failed)
	PrintDoubleSeparator()
	return nil
}

// parseRefs accepts a bare array or a {"products": [...]} wrapper
func parseRefs(data []byte) ([]contracts.ProductRef, error) {
	var refs []contracts.ProductRef
	if err := json.Unmarshal(data, &refs); err == nil {
		return refs, nil
	}

	var wrapped struct {
		Products []contracts.ProductRef `json:"products"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	return wrapped.Products, nil
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	data, err := readInput(args[0])
	if err != nil {
		return err
	}

	var in struct {
		ProductID   string               `json:"productId"`
		ProductName string               `json:"productName"`
		Product     contracts.RawPayload `json:"product"`
		Social      contracts.RawPayload `json:"social"`
		Competition contracts.RawPayload `json:"competition"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("parse signals file: %w", err)
	}

	signals, err := normalizer.Normalize(in.Product, in.Social, in.Competition)
	if err != nil {
		return err
	}

	a, err := appFromFlags(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.service.Evaluator().Evaluate(contracts.ProductRef{ID: in.ProductID, Name: in.ProductName}, signals)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(result)
	}
	PrintResult(result)
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		return readAll(os.Stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
