package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/dropscout/internal/contracts"
	"github.com/wonny/dropscout/internal/data/repos"
	"github.com/wonny/dropscout/internal/evaluator"
	"github.com/wonny/dropscout/internal/external/aliexpress"
	"github.com/wonny/dropscout/internal/external/social"
	"github.com/wonny/dropscout/internal/external/storefront"
	"github.com/wonny/dropscout/internal/realtime"
	"github.com/wonny/dropscout/internal/realtime/cache"
	"github.com/wonny/dropscout/internal/validation"
	"github.com/wonny/dropscout/pkg/config"
	"github.com/wonny/dropscout/pkg/database"
	"github.com/wonny/dropscout/pkg/httputil"
	"github.com/wonny/dropscout/pkg/logger"
	"github.com/wonny/dropscout/pkg/redis"
)

const (
	memoryHistoryCapacity = 1000
	recentCapacity        = 200
	cachePrefix           = "dropscout"
)

// searcher is implemented by both marketplace providers
type searcher interface {
	contracts.MarketDataFetcher
	SearchProducts(ctx context.Context, keyword string, page, pageSize int) (*aliexpress.SearchResult, error)
}

// app holds the wired components shared by every command
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	service  *validation.Service
	market   searcher
	hub      *realtime.Hub
	recent   *cache.RecentResults
	closers  []func()
	redis    *redis.Client
	cache    *redis.Cache // nil when redis is disabled
}

// Close releases connections in reverse order of creation
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// newApp wires providers, cache, history and the live feed from cfg.
// Redis and PostgreSQL are optional; without them results are not cached
// and history is kept in memory.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.New(cfg)
	a := &app{cfg: cfg, log: log}

	rc, err := redis.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without result cache")
		rc = redis.Disabled()
	}
	a.redis = rc
	a.closers = append(a.closers, func() { _ = rc.Close() })

	deps := validation.Deps{}
	if rc.Enabled() {
		a.cache = redis.NewCache(rc, cachePrefix)
		deps.Cache = redis.NewResultCache(a.cache)
	}

	history, err := a.history(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	deps.History = history

	a.market, deps.Social, deps.Competition = a.providers()
	deps.Market = a.market

	a.recent = cache.NewRecentResults(recentCapacity, log)
	a.hub = realtime.NewHub(a.recent, log)
	deps.Publisher = a.hub

	ev := evaluator.New(
		evaluator.WithMaxBatch(cfg.Validation.MaxBatch),
		evaluator.WithParallelism(cfg.Validation.Parallelism),
		evaluator.WithLogger(log),
	)
	a.service = validation.NewService(ev, deps,
		validation.WithLogger(log),
		validation.WithCacheTTL(cfg.Validation.CacheTTL),
		validation.WithAdCost(cfg.Validation.AdCost),
	)

	log.WithFields(map[string]interface{}{
		"market_mode": cfg.Marketplace.Mode,
		"social_mode": cfg.Social.Mode,
		"storefront":  cfg.Storefront.SearchURL != "",
		"cache":       rc.Enabled(),
		"database":    cfg.Database.Enabled(),
	}).Debug("Application wired")

	return a, nil
}

func (a *app) history(ctx context.Context) (contracts.HistoryRepository, error) {
	if !a.cfg.Database.Enabled() {
		return repos.NewMemoryHistory(memoryHistoryCapacity), nil
	}

	db, err := database.New(ctx, a.cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	a.closers = append(a.closers, db.Close)

	repo := repos.NewHistoryRepository(db.Pool)
	if err := repo.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrate validation history: %w", err)
	}
	a.log.Info("Connected to database")
	return repo, nil
}

// providers picks live clients or simulated sources per upstream
func (a *app) providers() (searcher, contracts.SocialSignalFetcher, contracts.CompetitionFetcher) {
	cfg := a.cfg

	var market searcher = aliexpress.NewSimulated()
	if cfg.Marketplace.Mode == config.ModeAPI {
		hc := httputil.New(a.log, cfg.Marketplace.Timeout).WithLocalLimit(cfg.Marketplace.RateLimit)
		if a.redis.Enabled() {
			hc = hc.WithRateLimiter(redis.NewRateLimiter(a.redis, cachePrefix), redis.RateLimitConfig{
				Key:    aliexpress.Source,
				Limit:  cfg.Marketplace.RateLimit,
				Window: time.Second,
			})
		}
		market = aliexpress.NewClient(hc, cfg.Marketplace, a.log)
	}

	var soc contracts.SocialSignalFetcher = social.NewSimulated()
	if cfg.Social.Mode == config.ModeAPI {
		soc = social.NewClient(httputil.New(a.log, cfg.Social.Timeout), cfg.Social, a.log)
	}

	var comp contracts.CompetitionFetcher = storefront.NewSimulated()
	if cfg.Storefront.SearchURL != "" {
		comp = storefront.NewAnalyzer(httputil.New(a.log, 0), cfg.Storefront, a.log)
	}

	return market, soc, comp
}

// appFromFlags loads config and wires the application for a one-shot command
func appFromFlags(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return newApp(cmd.Context(), cfg)
}
