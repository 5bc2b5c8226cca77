// Package catalog owns the game and price history tables and the public catalog queries.
package catalog

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logctx"
)

type Service struct {
	db             *gorm.DB
	source         steam.PriceSource
	log            *zap.SugaredLogger
	defaultCountry string
	now            func() time.Time
}

func NewService(cfg *config.Config, db *gorm.DB, source steam.PriceSource, log *zap.SugaredLogger) *Service {
	cc := strings.ToLower(cfg.Steam.DefaultCountry)
	if cc == "" {
		cc = steam.DefaultCountry
	}
	return &Service{db: db, source: source, log: log, defaultCountry: cc, now: time.Now}
}

// Search matches names case-insensitively by substring and ranks the hits by fuzzy score,
// breaking ties by most recently updated.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]*SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []*SearchResult{}, nil
	}
	limit = clampLimit(limit, DefaultSearchLimit, MaxSearchLimit)

	var games []*models.Game
	err := s.db.WithContext(ctx).
		Where(`LOWER(name) LIKE ? ESCAPE '\'`, "%"+escapeLike(q)+"%").
		Order("updated_at DESC").
		Limit(limit * searchScanFactor).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("search games: %w", err)
	}

	ranked := rank(q, games)
	ranked = lo.Slice(ranked, 0, limit)

	out := make([]*SearchResult, 0, len(ranked))
	for _, g := range ranked {
		snaps, err := s.latestSnapshots(ctx, g.ID, 1)
		if err != nil {
			return nil, fmt.Errorf("current price for %s: %w", g.ID, err)
		}
		out = append(out, &SearchResult{
			ID:           g.ID,
			SteamAppID:   g.SteamAppID,
			Name:         g.Name,
			HeaderImage:  g.HeaderImage,
			CurrentPrice: currentPriceOf(lo.FirstOr(snaps, nil)),
		})
	}
	return out, nil
}

type gameNames []*models.Game

func (g gameNames) String(i int) string { return strings.ToLower(g[i].Name) }
func (g gameNames) Len() int            { return len(g) }

// rank orders games by fuzzy score, keeping the incoming recency order among equal scores.
func rank(q string, games []*models.Game) []*models.Game {
	matches := fuzzy.FindFrom(q, gameNames(games))
	score := make([]int, len(games))
	for i := range score {
		score[i] = math.MinInt
	}
	for _, m := range matches {
		score[m.Index] = m.Score
	}
	idx := lo.Range(len(games))
	sort.SliceStable(idx, func(a, b int) bool { return score[idx[a]] > score[idx[b]] })
	return lo.Map(idx, func(i int, _ int) *models.Game { return games[i] })
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// GetByAppID returns a stored game with its newest snapshots. A missing game, or sync=true,
// fetches it from the store first and records today's price.
func (s *Service) GetByAppID(ctx context.Context, appID int64, sync bool, countryCode string) (*GameDetail, error) {
	game, err := s.gameByAppID(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", appID, err)
	}
	if game == nil || sync {
		if game, _, err = s.sync(ctx, appID, countryCode); err != nil {
			return nil, err
		}
	}
	history, err := s.latestSnapshots(ctx, game.ID, detailHistoryLimit)
	if err != nil {
		return nil, fmt.Errorf("price history for %d: %w", appID, err)
	}
	return &GameDetail{Game: game, PriceHistory: history}, nil
}

// SyncGame refreshes one game from the store in the default region.
func (s *Service) SyncGame(ctx context.Context, appID int64) (*SyncResult, error) {
	game, recorded, err := s.sync(ctx, appID, s.defaultCountry)
	if err != nil {
		return nil, err
	}
	return &SyncResult{GameID: game.ID, Recorded: recorded}, nil
}

// SyncDetails persists already fetched details. Used by the batch sync.
func (s *Service) SyncDetails(ctx context.Context, appID int64, d *steam.AppDetails) (*models.Game, bool, error) {
	game, err := s.UpsertGame(ctx, appID, d)
	if err != nil {
		return nil, false, err
	}
	recorded, err := s.RecordSnapshot(ctx, game.ID, d.PriceOverview)
	if err != nil {
		return game, false, fmt.Errorf("record snapshot for %d: %w", appID, err)
	}
	return game, recorded, nil
}

func (s *Service) sync(ctx context.Context, appID int64, countryCode string) (*models.Game, bool, error) {
	if countryCode == "" {
		countryCode = s.defaultCountry
	}
	details, err := s.source.GetAppDetails(ctx, appID, strings.ToLower(countryCode))
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("steam_app_details_failed", "app_id", appID, "cc", countryCode, "err", err)
		return nil, false, fmt.Errorf("app %d: %w", appID, ErrGameNotFound)
	}
	return s.SyncDetails(ctx, appID, details)
}

// GetPriceHistory lists snapshots of a game, newest first.
func (s *Service) GetPriceHistory(ctx context.Context, gameID string, limit int) ([]*models.PriceSnapshot, error) {
	snaps, err := s.latestSnapshots(ctx, gameID, clampLimit(limit, DefaultHistoryLimit, MaxHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("price history for %s: %w", gameID, err)
	}
	return snaps, nil
}

// ListPopularOnSale returns discounted featured games, priced for countryCode when given.
func (s *Service) ListPopularOnSale(ctx context.Context, limit int, countryCode string) ([]*steam.PopularGame, error) {
	cc := strings.ToLower(countryCode)
	if cc == "" {
		cc = s.defaultCountry
	}
	games, err := s.source.GetPopularGamesOnSale(ctx, clampLimit(limit, DefaultPopularLimit, MaxPopularLimit), cc)
	if err != nil {
		return nil, fmt.Errorf("popular games on sale: %w", err)
	}
	return games, nil
}
