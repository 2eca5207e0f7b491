package validation

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/pkg/metrics"
	"github.com/wonny/dropscout/pkg/redis"
)

// BatchEntry is one product's outcome; exactly one of Report and Err is set
type BatchEntry struct {
	Ref    contracts.ProductRef
	Report *Report
	Err    error
}

// MarshalJSON renders Err as a string
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	out := struct {
		ProductID   string  `json:"productId,omitempty"`
		ProductName string  `json:"productName"`
		Report      *Report `json:"report,omitempty"`
		Error       string  `json:"error,omitempty"`
	}{ProductID: e.Ref.ID, ProductName: e.Ref.Name, Report: e.Report}
	if e.Err != nil {
		out.Error = e.Err.Error()
	}
	return json.Marshal(out)
}

// Summary counts batch outcomes by status
type Summary struct {
	Total  int `json:"total"`
	Green  int `json:"green"`
	Amber  int `json:"amber"`
	Red    int `json:"red"`
	Failed int `json:"failed"`
}

// BatchReport is the outcome of ValidateBatch, entries in input order
type BatchReport struct {
	BatchID     string       `json:"batchId"`
	Results     []BatchEntry `json:"results"`
	Summary     Summary      `json:"summary"`
	CompletedAt time.Time    `json:"completedAt"`
}

// ValidateBatch validates refs concurrently.
// An oversized batch fails with *contracts.BatchTooLargeError before any fetch;
// per-product failures are reported in their entry.
func (s *Service) ValidateBatch(ctx context.Context, refs []contracts.ProductRef) (*BatchReport, error) {
	if err := s.evaluator.CheckBatchSize(len(refs)); err != nil {
		return nil, err
	}
	metrics.RecordBatch(len(refs))

	report := &BatchReport{
		BatchID: uuid.New().String(),
		Results: make([]BatchEntry, len(refs)),
	}
	hits := s.prefetch(ctx, refs)

	var g errgroup.Group
	g.SetLimit(s.evaluator.Parallelism())

	for i, ref := range refs {
		g.Go(func() error {
			report.Results[i] = BatchEntry{Ref: ref}
			if err := ctx.Err(); err != nil {
				report.Results[i].Err = err
				return nil
			}
			if cached, ok := hits[i]; ok {
				report.Results[i].Report = &Report{Result: cached, Cached: true}
				return nil
			}

			r, err := s.ValidateProduct(ctx, ref)
			if err != nil {
				report.Results[i].Err = err
				return nil
			}
			report.Results[i].Report = r
			return nil
		})
	}
	_ = g.Wait()

	report.Summary = summarize(report.Results)
	report.CompletedAt = s.now().UTC()

	s.logger.WithFields(map[string]interface{}{
		"batch_id": report.BatchID,
		"total":    report.Summary.Total,
		"green":    report.Summary.Green,
		"amber":    report.Summary.Amber,
		"red":      report.Summary.Red,
		"failed":   report.Summary.Failed,
	}).Info("Batch validation completed")

	return report, nil
}

// prefetch reads the cached results of a batch in one round trip when the cache supports it.
// Hits are keyed by input index. Any failure yields no hits; each product then goes through the normal path.
func (s *Service) prefetch(ctx context.Context, refs []contracts.ProductRef) map[int]contracts.ValidationResult {
	bc, ok := s.deps.Cache.(contracts.BatchResultCache)
	if !ok || len(refs) == 0 {
		return nil
	}

	day := s.now()
	keys := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref.Name != "" {
			keys = append(keys, redis.ValidationKey(ref, day))
		}
	}
	if len(keys) == 0 {
		return nil
	}

	found, err := bc.GetMany(ctx, keys)
	if err != nil {
		s.logger.WithError(err).Warn("Batch cache read failed")
		return nil
	}

	hits := make(map[int]contracts.ValidationResult, len(found))
	for i, ref := range refs {
		if ref.Name == "" {
			continue
		}
		if res, ok := found[redis.ValidationKey(ref, day)]; ok {
			hits[i] = res
			metrics.RecordCacheHit()
		}
	}
	return hits
}

func summarize(entries []BatchEntry) Summary {
	sum := Summary{Total: len(entries)}
	for _, e := range entries {
		if e.Err != nil || e.Report == nil {
			sum.Failed++
			continue
		}
		switch e.Report.Result.Status {
		case contracts.StatusGreen:
			sum.Green++
		case contracts.StatusAmber:
			sum.Amber++
		case contracts.StatusRed:
			sum.Red++
		}
	}
	return sum
}
