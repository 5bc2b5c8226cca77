package handlers

import (
	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/currency"
	"github.com/fatflowers/steamwatch/pkg/response"
)

// Envelope shapes for the generated API docs. Handlers build the real bodies with response.OKT.

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespSearchGames struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []catalog.SearchResult   `json:"data"`
}

type RespPopularGames struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []steam.PopularGame      `json:"data"`
}

type RespGameDetail struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    catalog.GameDetail       `json:"data"`
}

type RespSyncGame struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    catalog.SyncResult       `json:"data"`
}

type RespPriceHistory struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.PriceSnapshot   `json:"data"`
}

type RespPriceStats struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.PriceStats    `json:"data"`
}

type RespSubscribe struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SubscribeResponse        `json:"data"`
}

type RespWatchStatus struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    watchlist.Status         `json:"data"`
}

type RespWatchlist struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []watchlist.Entry        `json:"data"`
}

type RespRegions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []currency.Region        `json:"data"`
}

type RespScanWatchlist struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    watchlist.ScanResponse   `json:"data"`
}

type RespStatistics struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Response      `json:"data"`
}

// SyncPricesSummary documents the flat body of the sync trigger.
type SyncPricesSummary struct {
	Success bool `json:"success"`
	Synced  int  `json:"synced"`
	Errors  int  `json:"errors"`
	Total   int  `json:"total"`
}

// CheckPriceDropsSummary documents the flat body of the alert trigger.
type CheckPriceDropsSummary struct {
	Success           bool `json:"success"`
	Checked           int  `json:"checked"`
	NotificationsSent int  `json:"notificationsSent"`
	Errors            int  `json:"errors"`
	Total             int  `json:"total"`
}
