package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/app/service/pricealert"
	"github.com/fatflowers/steamwatch/internal/app/service/pricesync"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/response"
)

// GameCatalog is the catalog surface the game routes use.
type GameCatalog interface {
	Search(ctx context.Context, query string, limit int) ([]*catalog.SearchResult, error)
	GetByAppID(ctx context.Context, appID int64, sync bool, countryCode string) (*catalog.GameDetail, error)
	SyncGame(ctx context.Context, appID int64) (*catalog.SyncResult, error)
	GetPriceHistory(ctx context.Context, gameID string, limit int) ([]*models.PriceSnapshot, error)
	ListPopularOnSale(ctx context.Context, limit int, countryCode string) ([]*steam.PopularGame, error)
}

type PriceStatistics interface {
	GetPriceStats(ctx context.Context, gameID string) (*statistics.PriceStats, error)
}

type Watchlists interface {
	Subscribe(ctx context.Context, req *watchlist.SubscribeRequest) (*models.Watchlist, error)
	Unsubscribe(ctx context.Context, gameID, email string) error
	UnsubscribeByToken(ctx context.Context, tok string) error
	Status(ctx context.Context, gameID, email string) (*watchlist.Status, error)
	ListByEmail(ctx context.Context, email string) ([]*watchlist.Entry, error)
}

type WatchlistScanner interface {
	Scan(ctx context.Context, req *watchlist.ScanRequest) (*watchlist.ScanResponse, error)
}

type AdminStatistics interface {
	GetStatistics(ctx context.Context, req *statistics.Request) (*statistics.Response, error)
}

type PriceSyncer interface {
	SyncPrices(ctx context.Context) (*pricesync.Result, error)
}

type PriceDropChecker interface {
	CheckPriceDrops(ctx context.Context) (*pricealert.Result, error)
}

// errorCode maps service errors to envelope codes.
func errorCode(err error) response.APIResponseCode {
	switch {
	case errors.Is(err, catalog.ErrGameNotFound):
		return response.APIResponseCodeNotFound
	case errors.Is(err, watchlist.ErrInvalidEmail),
		errors.Is(err, watchlist.ErrInvalidThreshold),
		errors.Is(err, watchlist.ErrInvalidToken):
		return response.APIResponseCodeBadRequest
	default:
		return response.APIResponseCodeError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(http.StatusOK, response.ErrorT[any](errorCode(err), err.Error()))
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, msg))
}
