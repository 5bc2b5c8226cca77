package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/app/service/pricealert"
	"github.com/fatflowers/steamwatch/internal/app/service/pricesync"
	"github.com/fatflowers/steamwatch/internal/app/service/statistics"
	"github.com/fatflowers/steamwatch/internal/app/service/watchlist"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
)

type stubCatalog struct {
	searchQuery string
	searchLimit int
	popularCC   string
	getSync     bool
	err         error
}

func (s *stubCatalog) Search(_ context.Context, query string, limit int) ([]*catalog.SearchResult, error) {
	s.searchQuery, s.searchLimit = query, limit
	return []*catalog.SearchResult{{ID: "g1", SteamAppID: 620, Name: "Portal 2"}}, s.err
}

func (s *stubCatalog) GetByAppID(_ context.Context, appID int64, sync bool, _ string) (*catalog.GameDetail, error) {
	s.getSync = sync
	if s.err != nil {
		return nil, s.err
	}
	return &catalog.GameDetail{Game: &models.Game{ID: "g1", SteamAppID: appID, Name: "Portal 2"}}, nil
}

func (s *stubCatalog) SyncGame(_ context.Context, _ int64) (*catalog.SyncResult, error) {
	return &catalog.SyncResult{GameID: "g1", Recorded: true}, s.err
}

func (s *stubCatalog) GetPriceHistory(_ context.Context, gameID string, _ int) ([]*models.PriceSnapshot, error) {
	return []*models.PriceSnapshot{{GameID: gameID, FinalPrice: 999}}, s.err
}

func (s *stubCatalog) ListPopularOnSale(_ context.Context, _ int, cc string) ([]*steam.PopularGame, error) {
	s.popularCC = cc
	return []*steam.PopularGame{{AppID: 620, DiscountPercent: 50}}, s.err
}

type stubStats struct{ req *statistics.Request }

func (s *stubStats) GetPriceStats(_ context.Context, gameID string) (*statistics.PriceStats, error) {
	return &statistics.PriceStats{GameID: gameID, Lowest: 499, Highest: 1999, Count: 3}, nil
}

func (s *stubStats) GetStatistics(_ context.Context, req *statistics.Request) (*statistics.Response, error) {
	s.req = req
	return &statistics.Response{DataItems: map[statistics.StatisticType][]statistics.ResponseDataItem{
		statistics.StatisticTypeActiveWatchlistCount: {{Value: 7}},
	}}, nil
}

type stubWatchlists struct {
	subscribed *watchlist.SubscribeRequest
	removed    [2]string
	token      string
	err        error
}

func (s *stubWatchlists) Subscribe(_ context.Context, req *watchlist.SubscribeRequest) (*models.Watchlist, error) {
	s.subscribed = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.Watchlist{ID: "w1", GameID: req.GameID, Email: req.Email}, nil
}

func (s *stubWatchlists) Unsubscribe(_ context.Context, gameID, email string) error {
	s.removed = [2]string{gameID, email}
	return s.err
}

func (s *stubWatchlists) UnsubscribeByToken(_ context.Context, tok string) error {
	s.token = tok
	return s.err
}

func (s *stubWatchlists) Status(_ context.Context, _ string, email string) (*watchlist.Status, error) {
	if email == "" {
		return &watchlist.Status{}, nil
	}
	return &watchlist.Status{IsWatching: true, Watchlist: &watchlist.Settings{ID: "w1"}}, nil
}

func (s *stubWatchlists) ListByEmail(_ context.Context, _ string) ([]*watchlist.Entry, error) {
	return []*watchlist.Entry{{ID: "w1", GameID: "g1"}}, s.err
}

func (s *stubWatchlists) Scan(_ context.Context, req *watchlist.ScanRequest) (*watchlist.ScanResponse, error) {
	return &watchlist.ScanResponse{Items: []*models.Watchlist{{ID: "w1"}}, Total: 1}, s.err
}

type stubJobs struct {
	syncErr, checkErr error
	calls             int
}

func (s *stubJobs) SyncPrices(context.Context) (*pricesync.Result, error) {
	s.calls++
	if s.syncErr != nil {
		return nil, s.syncErr
	}
	return &pricesync.Result{Synced: 4, Errors: 1, Total: 5}, nil
}

func (s *stubJobs) CheckPriceDrops(context.Context) (*pricealert.Result, error) {
	s.calls++
	if s.checkErr != nil {
		return nil, s.checkErr
	}
	return &pricealert.Result{Checked: 3, NotificationsSent: 1, Total: 3}, nil
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func do(t *testing.T, r http.Handler, method, target, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}
