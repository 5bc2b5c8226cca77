package watchlist

import (
	"errors"
	"time"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/pkg/types"
)

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrInvalidThreshold = errors.New("min discount percent must be between 0 and 100")
	ErrInvalidToken     = errors.New("invalid unsubscribe token")
)

type SubscribeRequest struct {
	GameID             string `json:"game_id" binding:"required"`
	Email              string `json:"email" binding:"required"`
	MinDiscountPercent *int   `json:"min_discount_percent"`
	// TargetPrice is in minor currency units.
	TargetPrice *int64 `json:"target_price"`
}

type Settings struct {
	ID                 string `json:"id"`
	MinDiscountPercent *int   `json:"min_discount_percent"`
	TargetPrice        *int64 `json:"target_price"`
}

type Status struct {
	IsWatching bool      `json:"is_watching"`
	Watchlist  *Settings `json:"watchlist"`
}

type GameSummary struct {
	ID          string  `json:"id"`
	SteamAppID  int64   `json:"steam_app_id"`
	Name        string  `json:"name"`
	HeaderImage *string `json:"header_image"`
}

type Price struct {
	Currency        string `json:"currency"`
	FinalPrice      int64  `json:"final_price"`
	DiscountPercent *int   `json:"discount_percent"`
	IsOnSale        bool   `json:"is_on_sale"`
}

// Entry is an active subscription with its game and the game's newest price.
type Entry struct {
	ID                 string       `json:"id"`
	GameID             string       `json:"game_id"`
	Game               *GameSummary `json:"game"`
	CurrentPrice       *Price       `json:"current_price"`
	MinDiscountPercent *int         `json:"min_discount_percent"`
	TargetPrice        *int64       `json:"target_price"`
	CreatedAt          time.Time    `json:"created_at"`
}

// ScanRequest drives the admin listing.
type ScanRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

type ScanResponse struct {
	Items []*models.Watchlist `json:"items"`
	Total int64               `json:"total"`
}

var scanFields = []string{
	"id", "email", "game_id", "is_active", "min_discount_percent", "target_price",
	"last_notified_at", "created_at", "updated_at",
}
