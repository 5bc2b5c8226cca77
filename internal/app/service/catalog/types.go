package catalog

import (
	"errors"

	"github.com/fatflowers/steamwatch/internal/models"
)

var ErrGameNotFound = errors.New("game not found")

const (
	DefaultSearchLimit  = 20
	MaxSearchLimit      = 50
	DefaultHistoryLimit = 100
	MaxHistoryLimit     = 500
	DefaultPopularLimit = 50
	MaxPopularLimit     = 100

	// detailHistoryLimit is how many snapshots GetByAppID returns.
	detailHistoryLimit = 100
	// searchScanFactor widens the LIKE scan so fuzzy ranking has candidates to reorder.
	searchScanFactor = 5
)

// CurrentPrice is the newest snapshot of a game, without identifiers.
type CurrentPrice struct {
	Currency        string `json:"currency"`
	InitialPrice    int64  `json:"initial_price"`
	FinalPrice      int64  `json:"final_price"`
	DiscountPercent *int   `json:"discount_percent"`
	IsOnSale        bool   `json:"is_on_sale"`
}

func currentPriceOf(s *models.PriceSnapshot) *CurrentPrice {
	if s == nil {
		return nil
	}
	return &CurrentPrice{
		Currency:        s.Currency,
		InitialPrice:    s.InitialPrice,
		FinalPrice:      s.FinalPrice,
		DiscountPercent: s.DiscountPercent,
		IsOnSale:        s.IsOnSale,
	}
}

type SearchResult struct {
	ID           string        `json:"id"`
	SteamAppID   int64         `json:"steam_app_id"`
	Name         string        `json:"name"`
	HeaderImage  *string       `json:"header_image"`
	CurrentPrice *CurrentPrice `json:"current_price"`
}

// GameDetail is a game with its newest snapshots, newest first.
type GameDetail struct {
	*models.Game
	PriceHistory []*models.PriceSnapshot `json:"price_history"`
}

type SyncResult struct {
	GameID string `json:"game_id"`
	// Recorded is false when today's snapshot already existed or the game has no price.
	Recorded bool `json:"recorded"`
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
