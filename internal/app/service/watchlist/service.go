// Package watchlist manages email subscriptions to price alerts.
package watchlist

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/token"
	"github.com/fatflowers/steamwatch/pkg/tool"
	"github.com/fatflowers/steamwatch/pkg/types"
)

type Service struct {
	db    *gorm.DB
	unsub *token.Unsubscribe
	log   *zap.SugaredLogger
}

func NewService(db *gorm.DB, unsub *token.Unsubscribe, log *zap.SugaredLogger) *Service {
	return &Service{db: db, unsub: unsub, log: log}
}

// NormalizeEmail trims and lowercases an address after validating it.
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

// Subscribe creates or reactivates the (email, game) entry and overwrites its thresholds.
func (s *Service) Subscribe(ctx context.Context, req *SubscribeRequest) (*models.Watchlist, error) {
	email, err := NormalizeEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if p := req.MinDiscountPercent; p != nil && (*p < 0 || *p > 100) {
		return nil, ErrInvalidThreshold
	}

	var games int64
	if err := s.db.WithContext(ctx).Model(&models.Game{}).Where("id = ?", req.GameID).Count(&games).Error; err != nil {
		return nil, fmt.Errorf("check game %s: %w", req.GameID, err)
	}
	if games == 0 {
		return nil, catalog.ErrGameNotFound
	}

	entry := &models.Watchlist{
		ID:                 tool.GenerateUUIDV7(),
		Email:              email,
		GameID:             req.GameID,
		IsActive:           true,
		NotifyOnSale:       true,
		MinDiscountPercent: req.MinDiscountPercent,
		TargetPrice:        req.TargetPrice,
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}, {Name: "game_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"is_active", "notify_on_sale", "min_discount_percent", "target_price", "updated_at",
		}),
	}).Create(entry).Error
	if err != nil {
		return nil, fmt.Errorf("upsert watchlist: %w", err)
	}

	var stored models.Watchlist
	if err := s.db.WithContext(ctx).Where("email = ? AND game_id = ?", email, req.GameID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload watchlist: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("watchlist_subscribed", "watchlist_id", stored.ID, "game_id", stored.GameID)
	return &stored, nil
}

// Unsubscribe deletes the entry. Deleting a missing entry is not an error.
func (s *Service) Unsubscribe(ctx context.Context, gameID, email string) error {
	email, err := NormalizeEmail(email)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).
		Where("email = ? AND game_id = ?", email, gameID).
		Delete(&models.Watchlist{}).Error
	if err != nil {
		return fmt.Errorf("delete watchlist: %w", err)
	}
	return nil
}

// UnsubscribeByToken deletes the entry named by a signed link from an alert email.
func (s *Service) UnsubscribeByToken(ctx context.Context, tok string) error {
	claims, err := s.unsub.Parse(tok)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Warnw("unsubscribe_token_rejected", "err", err)
		return ErrInvalidToken
	}
	return s.Unsubscribe(ctx, claims.GameID, claims.Email)
}

// Status reports whether email actively watches gameID. An empty email is never watching.
func (s *Service) Status(ctx context.Context, gameID, email string) (*Status, error) {
	if strings.TrimSpace(email) == "" {
		return &Status{}, nil
	}
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	var entry models.Watchlist
	err = s.db.WithContext(ctx).
		Where("game_id = ? AND email = ? AND is_active = ?", gameID, email, true).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Status{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("watchlist status: %w", err)
	}
	return &Status{
		IsWatching: true,
		Watchlist: &Settings{
			ID:                 entry.ID,
			MinDiscountPercent: entry.MinDiscountPercent,
			TargetPrice:        entry.TargetPrice,
		},
	}, nil
}

// ListByEmail returns active entries, newest first.
func (s *Service) ListByEmail(ctx context.Context, email string) ([]*Entry, error) {
	email, err := NormalizeEmail(email)
	if err != nil {
		return nil, err
	}
	var entries []*models.Watchlist
	err = s.db.WithContext(ctx).
		Preload("Game").
		Where("email = ? AND is_active = ?", email, true).
		Order("created_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	out := make([]*Entry, 0, len(entries))
	for _, e := range entries {
		item := &Entry{
			ID:                 e.ID,
			GameID:             e.GameID,
			MinDiscountPercent: e.MinDiscountPercent,
			TargetPrice:        e.TargetPrice,
			CreatedAt:          e.CreatedAt,
		}
		if e.Game != nil {
			item.Game = &GameSummary{ID: e.Game.ID, SteamAppID: e.Game.SteamAppID, Name: e.Game.Name, HeaderImage: e.Game.HeaderImage}
		}
		var snaps []*models.PriceSnapshot
		err := s.db.WithContext(ctx).Where("game_id = ?", e.GameID).Order("recorded_at DESC").Limit(1).Find(&snaps).Error
		if err != nil {
			return nil, fmt.Errorf("current price for %s: %w", e.GameID, err)
		}
		if cur, ok := lo.First(snaps); ok {
			item.CurrentPrice = &Price{
				Currency:        cur.Currency,
				FinalPrice:      cur.FinalPrice,
				DiscountPercent: cur.DiscountPercent,
				IsOnSale:        cur.IsOnSale,
			}
		}
		out = append(out, item)
	}
	return out, nil
}

// Scan implements the paginated admin listing with filters.
func (s *Service) Scan(ctx context.Context, req *ScanRequest) (*ScanResponse, error) {
	if req == nil {
		return nil, fmt.Errorf("nil request")
	}
	if req.Size <= 0 {
		req.Size = 10
	}
	if req.From < 0 {
		req.From = 0
	}
	for _, f := range req.Filters {
		if err := f.Validate(scanFields); err != nil {
			return nil, err
		}
	}
	if req.SortBy != "" && !lo.Contains(scanFields, req.SortBy) {
		return nil, fmt.Errorf("unsupported sort field: %q", req.SortBy)
	}

	tx := s.db.WithContext(ctx).Model(&models.Watchlist{})
	if len(req.Filters) > 0 {
		tx = tx.Where(clause.Where{Exprs: []clause.Expression{types.FiltersAnd(req.Filters)}})
	}

	var total int64
	if err := tx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count watchlist: %w", err)
	}

	var rows []*models.Watchlist
	q := tx.Preload("Game").Limit(req.Size)
	if req.From > 0 {
		q = q.Offset(req.From)
	}
	if req.SortBy != "" {
		q = q.Order(clause.OrderBy{Columns: []clause.OrderByColumn{{Column: clause.Column{Name: req.SortBy}, Desc: req.SortOrder != "asc"}}})
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	return &ScanResponse{Items: rows, Total: total}, nil
}

var Module = fx.Options(
	fx.Provide(NewService),
)
