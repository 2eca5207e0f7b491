package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/scheduler"
	"github.com/wonny/dropscout/internal/validation"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/logger"
)

// revalidationParallelism bounds concurrent re-runs
const revalidationParallelism = 4

// Validator is the slice of validation.Service the job needs
type Validator interface {
	History(ctx context.Context, since time.Time, limit int) ([]contracts.HistoryRecord, error)
	ValidateProduct(ctx context.Context, ref contracts.ProductRef) (*validation.Report, error)
}

// RevalidationJob re-runs validation for products validated within the lookback window.
// Results land in the cache, history and live feed through the normal pipeline.
type RevalidationJob struct {
	validator Validator
	schedule  string
	lookback  time.Duration
	limit     int
	logger    *logger.Logger
	now       func() time.Time
}

// NewRevalidationJob creates a new revalidation job
func NewRevalidationJob(v Validator, cfg config.SchedulerConfig, log *logger.Logger) *RevalidationJob {
	return &RevalidationJob{
		validator: v,
		schedule:  cfg.RevalidationSchedule,
		lookback:  cfg.RevalidationLookback,
		limit:     cfg.RevalidationLimit,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *RevalidationJob) Name() string {
	return "revalidation"
}

// Schedule returns the cron schedule
func (j *RevalidationJob) Schedule() string {
	return j.schedule
}

// Run revalidates each distinct product once
func (j *RevalidationJob) Run(ctx context.Context) error {
	_, err := j.RunWithReport(ctx)
	return err
}

// RunWithReport is Run with per-product counts.
// It fails only when products were found and none could be revalidated.
func (j *RevalidationJob) RunWithReport(ctx context.Context) (scheduler.RunReport, error) {
	since := j.now().Add(-j.lookback)
	records, err := j.validator.History(ctx, since, j.limit)
	if err != nil {
		return scheduler.RunReport{}, fmt.Errorf("failed to load validation history: %w", err)
	}

	refs := distinctRefs(records)
	if len(refs) == 0 {
		j.logger.Debug("No products to revalidate")
		return scheduler.RunReport{}, nil
	}

	var ok, failed atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(revalidationParallelism)

	for _, ref := range refs {
		g.Go(func() error {
			if _, err := j.validator.ValidateProduct(gctx, ref); err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				failed.Add(1)
				j.logger.WithError(err).WithField("product", ref.Key()).Warn("Revalidation failed")
				return nil
			}
			ok.Add(1)
			return nil
		})
	}
	report := func() scheduler.RunReport {
		return scheduler.RunReport{Items: len(refs), Succeeded: int(ok.Load()), Failed: int(failed.Load())}
	}
	if err := g.Wait(); err != nil {
		return report(), err
	}

	j.logger.WithFields(map[string]interface{}{
		"products":  len(refs),
		"succeeded": ok.Load(),
		"failed":    failed.Load(),
	}).Info("Revalidation completed")

	if ok.Load() == 0 {
		return report(), fmt.Errorf("all %d revalidations failed", len(refs))
	}
	return report(), nil
}

// distinctRefs keeps the first occurrence of each product, preserving order
func distinctRefs(records []contracts.HistoryRecord) []contracts.ProductRef {
	seen := make(map[string]struct{}, len(records))
	refs := make([]contracts.ProductRef, 0, len(records))
	for _, r := range records {
		k := r.Ref.Key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		refs = append(refs, r.Ref)
	}
	return refs
}
