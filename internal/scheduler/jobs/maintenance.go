package jobs

import (
	"context"
	"time"

	"github.com/wonny/dropscout/internal/realtime/cache"
	"github.com/wonny/dropscout/internal/scheduler"
	"github.com/wonny/dropscout/pkg/logger"
)

// DefaultFeedRetention is how long a result stays in the live feed snapshot
const DefaultFeedRetention = 24 * time.Hour

// FeedPruneJob drops stale results from the live feed cache
type FeedPruneJob struct {
	recent    *cache.RecentResults
	retention time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

// NewFeedPruneJob creates a new feed prune job
func NewFeedPruneJob(recent *cache.RecentResults, retention time.Duration, log *logger.Logger) *FeedPruneJob {
	if retention <= 0 {
		retention = DefaultFeedRetention
	}
	return &FeedPruneJob{
		recent:    recent,
		retention: retention,
		logger:    log,
		now:       time.Now,
	}
}

// Name returns the job name
func (j *FeedPruneJob) Name() string {
	return "feed_prune"
}

// Schedule returns the cron schedule (every 5 minutes)
func (j *FeedPruneJob) Schedule() string {
	return "0 */5 * * * *"
}

// Run executes the prune
func (j *FeedPruneJob) Run(ctx context.Context) error {
	_, err := j.RunWithReport(ctx)
	return err
}

// RunWithReport prunes and reports how many feed entries were removed
func (j *FeedPruneJob) RunWithReport(ctx context.Context) (scheduler.RunReport, error) {
	j.logger.Debug("Starting scheduled feed prune")

	count := j.recent.Prune(j.now().Add(-j.retention))

	if count > 0 {
		j.logger.WithField("removed", count).Info("Feed prune completed")
	}

	return scheduler.RunReport{Items: count, Succeeded: count}, nil
}
