package scheduler

import (
	"context"
	"time"
)

// historyLimit is how many runs each job keeps
const historyLimit = 100

// Job is a unit of background work on a cron schedule.
// Schedules use six fields with seconds ("0 0 3 * * *") or a descriptor ("@hourly").
// ⭐ SSOT: the job interface is defined here only
type Job interface {
	Name() string
	Run(ctx context.Context) error
	Schedule() string
}

// RunReport counts what one run touched: products revalidated, feed entries pruned
type RunReport struct {
	Items     int `json:"items"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// ReportingJob is a Job that also reports per-run item counts.
// The scheduler prefers RunWithReport when a job implements it.
type ReportingJob interface {
	Job
	RunWithReport(ctx context.Context) (RunReport, error)
}

// JobResult is the outcome of one scheduled or manual run, retries included
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Report    RunReport     `json:"report"`
}

// JobHistory keeps the last historyLimit results of one job, oldest first
type JobHistory struct {
	Results []JobResult
}

// Add appends a result, dropping the oldest beyond historyLimit
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if len(h.Results) > historyLimit {
		h.Results = h.Results[len(h.Results)-historyLimit:]
	}
}

// Latest returns up to n most recent results
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(n, len(h.Results))
	if n <= 0 {
		return []JobResult{}
	}
	return h.Results[len(h.Results)-n:]
}

// Failures returns failed runs
func (h *JobHistory) Failures() []JobResult {
	failed := make([]JobResult, 0)
	for _, r := range h.Results {
		if !r.Success {
			failed = append(failed, r)
		}
	}
	return failed
}

// SuccessRate is successful runs over all kept runs (0.0 - 1.0)
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-len(h.Failures())) / float64(len(h.Results))
}

// ItemTotals sums the run reports of every kept run
func (h *JobHistory) ItemTotals() RunReport {
	var total RunReport
	for _, r := range h.Results {
		total.Items += r.Report.Items
		total.Succeeded += r.Report.Succeeded
		total.Failed += r.Report.Failed
	}
	return total
}
