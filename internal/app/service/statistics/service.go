package statistics

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/pkg/types"
)

// PriceStats summarizes the recorded history of one game. Prices are minor units.
type PriceStats struct {
	GameID   string `json:"game_id"`
	Currency string `json:"currency"`
	Lowest   int64  `json:"lowest"`
	Highest  int64  `json:"highest"`
	// Average is rounded to the nearest minor unit.
	Average int64 `json:"average"`
	Count   int64 `json:"count"`
}

type StatisticType string

const (
	StatisticTypeDailySnapshotCount     StatisticType = "daily_snapshot_count"
	StatisticTypeDailyOnSaleCount       StatisticType = "daily_on_sale_count"
	StatisticTypeDailyNotificationCount StatisticType = "daily_notification_count"
	StatisticTypeActiveWatchlistCount   StatisticType = "active_watchlist_count"
)

// Filter fields accepted per statistic; anything else is rejected.
var allowedFilters = map[StatisticType][]string{
	StatisticTypeDailySnapshotCount:     {"game_id", "snapshot_date", "currency"},
	StatisticTypeDailyOnSaleCount:       {"game_id", "snapshot_date", "currency"},
	StatisticTypeDailyNotificationCount: {"game_id", "email", "status", "created_at"},
	StatisticTypeActiveWatchlistCount:   {"game_id", "email"},
}

type DataItem struct {
	ID StatisticType `json:"id"`
}

type Request struct {
	Filters   []*types.CommonFilter `json:"filters"`
	DataItems []*DataItem           `json:"data_items"`
}

type ResponseDataItem struct {
	Date  string `json:"date,omitempty"`
	Value int64  `json:"value"`
}

type Response struct {
	DataItems map[StatisticType][]ResponseDataItem `json:"data_items"`
}

type Service struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Service { return &Service{db: db} }

// GetPriceStats aggregates every snapshot of gameID. A game with no snapshots yields Count 0.
func (s *Service) GetPriceStats(ctx context.Context, gameID string) (*PriceStats, error) {
	var row struct {
		Lowest  *int64
		Highest *int64
		Average *float64
		Count   int64
	}
	err := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Select("MIN(final_price) AS lowest, MAX(final_price) AS highest, AVG(final_price) AS average, COUNT(*) AS count").
		Where("game_id = ?", gameID).
		Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("price stats for %s: %w", gameID, err)
	}
	stats := &PriceStats{GameID: gameID, Count: row.Count}
	if row.Count == 0 {
		return stats, nil
	}
	stats.Lowest = lo.FromPtr(row.Lowest)
	stats.Highest = lo.FromPtr(row.Highest)
	stats.Average = decimal.NewFromFloat(lo.FromPtr(row.Average)).Round(0).IntPart()

	var latest models.PriceSnapshot
	err = s.db.WithContext(ctx).Where("game_id = ?", gameID).Order("recorded_at DESC").Limit(1).Find(&latest).Error
	if err != nil {
		return nil, fmt.Errorf("latest currency for %s: %w", gameID, err)
	}
	stats.Currency = latest.Currency
	return stats, nil
}

func (s *Service) dayOf(column string) string {
	if s.db.Dialector.Name() == "postgres" {
		return fmt.Sprintf("TO_CHAR(%s, 'YYYY-MM-DD')", column)
	}
	return fmt.Sprintf("strftime('%%Y-%%m-%%d', %s)", column)
}

func where(filters []*types.CommonFilter) clause.Expression {
	return clause.Where{Exprs: []clause.Expression{types.FiltersAnd(filters)}}
}

func (s *Service) getDailySnapshotCount(ctx context.Context, filters []*types.CommonFilter, onSaleOnly bool) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	q := s.db.WithContext(ctx).Model(&models.PriceSnapshot{}).
		Select("snapshot_date AS date, COUNT(*) AS value").
		Where(where(filters))
	if onSaleOnly {
		q = q.Where("is_on_sale = ?", true)
	}
	if err := q.Group("snapshot_date").Order("snapshot_date DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getDailyNotificationCount(ctx context.Context, filters []*types.CommonFilter) ([]ResponseDataItem, error) {
	var results []ResponseDataItem
	day := s.dayOf("created_at")
	err := s.db.WithContext(ctx).Model(&models.NotificationLog{}).
		Select(day + " AS date, COUNT(*) AS value").
		Where(where(filters)).
		Group(day).
		Order("date DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (s *Service) getActiveWatchlistCount(ctx context.Context, filters []*types.CommonFilter) ([]ResponseDataItem, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Watchlist{}).
		Where("is_active = ?", true).
		Where(where(filters)).
		Count(&n).Error
	if err != nil {
		return nil, err
	}
	return []ResponseDataItem{{Value: n}}, nil
}

func (s *Service) getStatistic(ctx context.Context, filters []*types.CommonFilter, item *DataItem) ([]ResponseDataItem, error) {
	switch item.ID {
	case StatisticTypeDailySnapshotCount:
		return s.getDailySnapshotCount(ctx, filters, false)
	case StatisticTypeDailyOnSaleCount:
		return s.getDailySnapshotCount(ctx, filters, true)
	case StatisticTypeDailyNotificationCount:
		return s.getDailyNotificationCount(ctx, filters)
	case StatisticTypeActiveWatchlistCount:
		return s.getActiveWatchlistCount(ctx, filters)
	default:
		return nil, fmt.Errorf("invalid data item id: %s", item.ID)
	}
}

// GetStatistics computes every requested data item concurrently.
func (s *Service) GetStatistics(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || len(req.DataItems) == 0 {
		return &Response{DataItems: map[StatisticType][]ResponseDataItem{}}, nil
	}
	for _, item := range req.DataItems {
		allowed, ok := allowedFilters[item.ID]
		if !ok {
			return nil, fmt.Errorf("invalid data item id: %s", item.ID)
		}
		for _, f := range req.Filters {
			if err := f.Validate(allowed); err != nil {
				return nil, fmt.Errorf("%s: %w", item.ID, err)
			}
		}
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make(map[StatisticType][]ResponseDataItem, len(req.DataItems))
	for _, item := range req.DataItems {
		wg.Add(1)
		go func(di *DataItem) {
			defer wg.Done()
			res, err := s.getStatistic(ctx, req.Filters, di)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			results[di.ID] = res
		}(item)
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return &Response{DataItems: results}, nil
}

var Module = fx.Options(
	fx.Provide(New),
)
