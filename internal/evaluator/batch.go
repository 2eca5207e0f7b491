package evaluator

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/pkg/metrics"
)

// BatchItem is one product in a batch
type BatchItem struct {
	ID      string               `json:"id"`
	Ref     contracts.ProductRef `json:"ref"`
	Signals contracts.Signals    `json:"signals"`
}

// BatchResult is one item's outcome; exactly one of Result and Err is set
type BatchResult struct {
	ID     string
	Result *contracts.ValidationResult
	Err    error
}

// MarshalJSON renders Err as a string
func (r BatchResult) MarshalJSON() ([]byte, error) {
	out := struct {
		ID     string                      `json:"id"`
		Result *contracts.ValidationResult `json:"result,omitempty"`
		Error  string                      `json:"error,omitempty"`
	}{ID: r.ID, Result: r.Result}
	if r.Err != nil {
		out.Error = r.Err.Error()
	}
	return json.Marshal(out)
}

// CheckBatchSize fails with BatchTooLargeError when n exceeds the limit
func (e *Evaluator) CheckBatchSize(n int) error {
	if n > e.maxBatch {
		metrics.RecordBatchRejected()
		return &contracts.BatchTooLargeError{Size: n, Limit: e.maxBatch}
	}
	return nil
}

// EvaluateBatch scores items concurrently and returns results in input order.
// An oversized batch fails before any item is scored.
func (e *Evaluator) EvaluateBatch(ctx context.Context, items []BatchItem) ([]BatchResult, error) {
	if err := e.CheckBatchSize(len(items)); err != nil {
		return nil, err
	}
	metrics.RecordBatch(len(items))

	results := make([]BatchResult, len(items))

	var g errgroup.Group
	g.SetLimit(e.parallelism)

	for i, item := range items {
		g.Go(func() error {
			results[i] = BatchResult{ID: item.ID}
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}
			if e.beforeItem != nil {
				e.beforeItem(i)
			}

			res, err := e.Evaluate(item.Ref, item.Signals)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Result = &res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger.WithFields(map[string]interface{}{
		"total":  len(items),
		"failed": failed,
	}).Debug("Batch evaluation completed")

	return results, nil
}
