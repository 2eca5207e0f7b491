package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dropscout/internal/api"
	"github.com/wonny/dropscout/internal/api/handlers"
	"github.com/wonny/dropscout/internal/scheduler"
	"github.com/wonny/dropscout/internal/scheduler/jobs"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Starts the REST API server and the live validation feed.

Endpoints:
  GET  /health
  POST /api/validation/validate-product
  POST /api/validation/validate-batch
  POST /api/validation/evaluate
  GET  /api/validation/history
  POST /api/pricing/margin
  GET  /api/pricing/suggest
  POST /api/pricing/competitors
  POST /api/pricing/optimize
  GET  /api/products/search
  POST /api/social-proof
  GET  /api/filters/advanced
  POST /api/filters/check
  GET  /ws/validations
  GET  /metrics              (METRICS_ENABLED=true)

Example:
  go run ./cmd/dropscout serve
  go run ./cmd/dropscout serve --port 9090 --with-scheduler`,
	RunE: runServe,
}

var (
	servePort          string
	serveWithScheduler bool
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&servePort, "port", "", "API server port (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveWithScheduler, "with-scheduler", false, "run scheduled jobs in the same process")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}

	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	pricingHandler := handlers.NewPricingHandler(cfg.Validation.AdCost, a.log)
	if a.cache != nil {
		pricingHandler.WithCache(a.cache)
	}

	router := api.NewRouter(api.Handlers{
		Validation: handlers.NewValidationHandler(a.service, a.log),
		Pricing:    pricingHandler,
		Research:   handlers.NewResearchHandler(a.market, a.log),
		Stream:     a.hub,
		Metrics:    cfg.MetricsEnabled,
	}, a.log)
	server := api.New(cfg, a.log, router)

	var sched *scheduler.Scheduler
	if serveWithScheduler {
		if sched, err = newScheduler(a); err != nil {
			return err
		}
		sched.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-quit:
	}

	a.log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sched != nil {
		sched.Stop()
	}
	if err := a.hub.Shutdown(ctx); err != nil {
		a.log.WithError(err).Warn("Live feed shutdown incomplete")
	}
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.log.Info("Server stopped")
	return nil
}

// newScheduler registers the revalidation and feed prune jobs
func newScheduler(a *app) (*scheduler.Scheduler, error) {
	sched := scheduler.New(a.log)

	if err := sched.AddJob(jobs.NewRevalidationJob(a.service, a.cfg.Scheduler, a.log)); err != nil {
		return nil, err
	}
	if err := sched.AddJob(jobs.NewFeedPruneJob(a.recent, jobs.DefaultFeedRetention, a.log)); err != nil {
		return nil, err
	}
	return sched, nil
}
