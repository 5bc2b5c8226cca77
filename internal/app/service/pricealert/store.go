package pricealert

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/fatflowers/steamwatch/internal/models"
)

// Store loads evaluation candidates and records deliveries.
type Store interface {
	ListCandidates(ctx context.Context) ([]*Candidate, error)
	MarkNotified(ctx context.Context, watchlistID string, at time.Time) error
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) ListCandidates(ctx context.Context) ([]*Candidate, error) {
	var entries []*models.Watchlist
	err := s.db.WithContext(ctx).
		Preload("Game").
		Where("is_active = ?", true).
		Order("created_at").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("list active watchlist: %w", err)
	}

	latest := make(map[string][]*models.PriceSnapshot)
	for _, gameID := range lo.Uniq(lo.Map(entries, func(e *models.Watchlist, _ int) string { return e.GameID })) {
		var snaps []*models.PriceSnapshot
		err := s.db.WithContext(ctx).
			Where("game_id = ?", gameID).
			Order("recorded_at DESC").
			Limit(2).
			Find(&snaps).Error
		if err != nil {
			return nil, fmt.Errorf("latest snapshots for game %s: %w", gameID, err)
		}
		latest[gameID] = snaps
	}

	return lo.Map(entries, func(e *models.Watchlist, _ int) *Candidate {
		c := &Candidate{Entry: e}
		snaps := latest[e.GameID]
		if len(snaps) > 0 {
			c.Current = snaps[0]
		}
		if len(snaps) > 1 {
			c.Previous = snaps[1]
		}
		return c
	}), nil
}

// MarkNotified stamps only last_notified_at; no other watchlist column is written by the job.
func (s *gormStore) MarkNotified(ctx context.Context, watchlistID string, at time.Time) error {
	return s.db.WithContext(ctx).
		Model(&models.Watchlist{}).
		Where("id = ?", watchlistID).
		UpdateColumn("last_notified_at", at).Error
}
