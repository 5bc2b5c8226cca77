// Package pricesync refreshes the popular discounted games and records their daily price.
package pricesync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/metrics"
)

const (
	jobName = "sync_prices"

	DefaultLimit = 100
)

type Result struct {
	Synced int `json:"synced"`
	Errors int `json:"errors"`
	Total  int `json:"total"`
}

// Recorder persists fetched details: upserts the game and appends today's snapshot.
type Recorder interface {
	SyncDetails(ctx context.Context, appID int64, d *steam.AppDetails) (*models.Game, bool, error)
}

type Service struct {
	source      steam.PriceSource
	recorder    Recorder
	log         *zap.SugaredLogger
	limit       int
	country     string
	concurrency int64
}

func NewService(cfg *config.Config, source steam.PriceSource, recorder Recorder, log *zap.SugaredLogger) *Service {
	s := &Service{
		source:      source,
		recorder:    recorder,
		log:         log,
		limit:       cfg.Steam.PopularLimit,
		country:     cfg.Steam.DefaultCountry,
		concurrency: int64(cfg.Steam.Concurrency),
	}
	if s.limit <= 0 {
		s.limit = DefaultLimit
	}
	if s.country == "" {
		s.country = steam.DefaultCountry
	}
	if s.concurrency <= 0 {
		s.concurrency = 1
	}
	return s
}

type fetched struct {
	appID   int64
	details *steam.AppDetails
	err     error
}

// SyncPrices runs one sync pass. Only the work list fetch can fail the run; per-game
// failures are counted in Result.Errors.
func (s *Service) SyncPrices(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer metrics.ObserveJob(jobName, start)
	log := logctx.FromCtx(ctx, s.log)

	games, err := s.source.GetPopularGamesOnSale(ctx, s.limit, s.country)
	if err != nil {
		return nil, fmt.Errorf("fetch popular games: %w", err)
	}

	results := s.fetchAll(ctx, games)

	res := &Result{Total: len(games)}
	for _, f := range results {
		if f.err == nil {
			_, _, f.err = s.recorder.SyncDetails(ctx, f.appID, f.details)
		}
		if f.err != nil {
			res.Errors++
			metrics.JobItem(jobName, metrics.OutcomeError)
			log.Errorw("price_sync_failed", "app_id", f.appID, "err", f.err)
			continue
		}
		res.Synced++
		metrics.JobItem(jobName, metrics.OutcomeSynced)
	}

	log.Infow("price_sync_done",
		"synced", res.Synced,
		"errors", res.Errors,
		"total", res.Total,
		"elapsed_ms", metrics.MillisecondsSince(start),
	)
	return res, nil
}

// fetchAll loads app details with bounded concurrency. Results keep the input order.
func (s *Service) fetchAll(ctx context.Context, games []*steam.PopularGame) []*fetched {
	out := make([]*fetched, len(games))
	sem := semaphore.NewWeighted(s.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	for i, game := range games {
		out[i] = &fetched{appID: game.AppID}
		if err := sem.Acquire(ctx, 1); err != nil {
			out[i].err = err
			continue
		}
		g.Go(func() error {
			defer sem.Release(1)
			out[i].details, out[i].err = s.source.GetAppDetails(gctx, game.AppID, s.country)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

var Module = fx.Options(
	fx.Provide(func(c *catalog.Service) Recorder { return c }),
	fx.Provide(NewService),
)
