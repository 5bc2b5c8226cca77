package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/tool"
)

func gameFromDetails(appID int64, d *steam.AppDetails) *models.Game {
	g := &models.Game{
		ID:         tool.GenerateUUIDV7(),
		SteamAppID: appID,
		Name:       d.Name,
		Type:       d.Type,
		Developers: d.Developers,
		Publishers: d.Publishers,
		Genres: lo.Map(d.Genres, func(g steam.Genre, _ int) models.Genre {
			return models.Genre{ID: g.ID.String(), Description: g.Description}
		}),
	}
	if d.SteamAppID != 0 {
		g.SteamAppID = d.SteamAppID
	}
	if d.HeaderImage != "" {
		g.HeaderImage = lo.ToPtr(d.HeaderImage)
	}
	if d.ShortDescription != "" {
		g.ShortDescription = lo.ToPtr(d.ShortDescription)
	}
	if d.ReleaseDate != nil && d.ReleaseDate.Date != "" {
		g.ReleaseDate = lo.ToPtr(d.ReleaseDate.Date)
	}
	return g
}

// UpsertGame inserts or refreshes the game keyed by its app id and returns the stored row.
func (s *Service) UpsertGame(ctx context.Context, appID int64, d *steam.AppDetails) (*models.Game, error) {
	if d == nil {
		return nil, fmt.Errorf("app %d: %w", appID, ErrGameNotFound)
	}
	g := gameFromDetails(appID, d)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "steam_app_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "type", "header_image", "release_date", "short_description",
			"developers", "publishers", "genres", "updated_at",
		}),
	}).Create(g).Error
	if err != nil {
		return nil, fmt.Errorf("upsert game %d: %w", g.SteamAppID, err)
	}

	var stored models.Game
	if err := s.db.WithContext(ctx).Where("steam_app_id = ?", g.SteamAppID).First(&stored).Error; err != nil {
		return nil, fmt.Errorf("reload game %d: %w", g.SteamAppID, err)
	}
	return &stored, nil
}

// RecordSnapshot appends today's price for gameID unless one already exists. A nil price
// records nothing. It reports whether a row was written.
func (s *Service) RecordSnapshot(ctx context.Context, gameID string, po *steam.PriceOverview) (bool, error) {
	if po == nil {
		return false, nil
	}
	now := s.now()
	day := tool.LocalDate(now)

	var existing int64
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Where("game_id = ? AND snapshot_date = ?", gameID, day).
		Count(&existing).Error
	if err != nil {
		return false, fmt.Errorf("check today's snapshot: %w", err)
	}
	if existing > 0 {
		return false, nil
	}

	snap := &models.PriceSnapshot{
		ID:              tool.GenerateUUIDV7(),
		GameID:          gameID,
		SnapshotDate:    day,
		RecordedAt:      now,
		Currency:        strings.ToUpper(po.Currency),
		InitialPrice:    po.Initial,
		FinalPrice:      po.Final,
		DiscountPercent: lo.ToPtr(po.DiscountPercent),
		IsOnSale:        po.OnSale(),
	}
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// a concurrent writer recorded today first
			return false, nil
		}
		return false, fmt.Errorf("insert snapshot: %w", err)
	}
	return true, nil
}

func (s *Service) latestSnapshots(ctx context.Context, gameID string, limit int) ([]*models.PriceSnapshot, error) {
	var snaps []*models.PriceSnapshot
	err := s.db.WithContext(ctx).
		Where("game_id = ?", gameID).
		Order("recorded_at DESC").
		Limit(limit).
		Find(&snaps).Error
	return snaps, err
}

func (s *Service) gameByAppID(ctx context.Context, appID int64) (*models.Game, error) {
	var g models.Game
	err := s.db.WithContext(ctx).Where("steam_app_id = ?", appID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
