package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/steamwatch/pkg/config"
)

const featuredJSON = `{
  "specials": {"id": "cat_specials", "name": "Specials", "items": [
    {"id": 10, "type": 0, "name": "Ten", "discounted": true, "discount_percent": 20, "original_price": 1000, "final_price": 800, "currency": "USD"},
    {"id": 20, "type": 0, "name": "Twenty", "discounted": true, "discount_percent": 75, "original_price": 4000, "final_price": 1000, "currency": "USD"},
    {"id": 30, "type": 1, "name": "DLC", "discounted": true, "discount_percent": 90, "original_price": 500, "final_price": 50, "currency": "USD"},
    {"id": 40, "type": 0, "name": "Full price", "discounted": false, "discount_percent": 0, "original_price": 500, "final_price": 500, "currency": "USD"}
  ]},
  "top_sellers": {"id": "cat_topsellers", "name": "Top Sellers", "items": [
    {"id": 20, "type": 0, "name": "Twenty", "discounted": true, "discount_percent": 75, "original_price": 4000, "final_price": 1000, "currency": "USD"},
    {"id": 50, "type": 0, "name": "Fifty", "discounted": true, "discount_percent": 50, "original_price": 2000, "final_price": 1000, "currency": "USD"}
  ]}
}`

func newTestClient(t *testing.T, h http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := newClient(cfgpkg.SteamConfig{
		BaseURL:     srv.URL,
		CacheSize:   16,
		CacheTTL:    5 * time.Minute,
		Concurrency: 2,
	}, srv.Client(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return c
}

func TestGetAppDetails_DecodesAndCaches(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.Equal(t, "/api/appdetails", r.URL.Path)
		require.Equal(t, "570", r.URL.Query().Get("appids"))
		require.Equal(t, "gb", r.URL.Query().Get("cc"))
		_, _ = w.Write([]byte(`{"570": {"success": true, "data": {
			"type": "game", "name": "Dota", "steam_appid": 570,
			"genres": [{"id": "1", "description": "Action"}],
			"release_date": {"coming_soon": false, "date": "9 Jul, 2013"},
			"price_overview": {"currency": "GBP", "initial": 1999, "final": 999, "discount_percent": 50}
		}}}`))
	}))

	ctx := context.Background()
	d, err := c.GetAppDetails(ctx, 570, "gb")
	require.NoError(t, err)
	require.Equal(t, "Dota", d.Name)
	require.Equal(t, "1", d.Genres[0].ID.String())
	require.True(t, d.PriceOverview.OnSale())
	require.EqualValues(t, 999, d.PriceOverview.Final)

	_, err = c.GetAppDetails(ctx, 570, "gb")
	require.NoError(t, err)
	require.EqualValues(t, 1, calls.Load())

	c.now = func() time.Time { return time.Now().Add(10 * time.Minute) }
	_, err = c.GetAppDetails(ctx, 570, "gb")
	require.NoError(t, err)
	require.EqualValues(t, 2, calls.Load())
}

func TestGetAppDetails_Unavailable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"1": {"success": false}}`))
	}))
	_, err := c.GetAppDetails(context.Background(), 1, "")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestGetAppDetails_HTTPError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	_, err := c.GetAppDetails(context.Background(), 1, "us")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestFetchSnapshot_FreeApp(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"440": {"success": true, "data": {"name": "TF2", "steam_appid": 440, "is_free": true}}}`))
	}))
	po, err := c.FetchSnapshot(context.Background(), 440, "us")
	require.NoError(t, err)
	require.Nil(t, po)
}

func TestGetPopularGamesOnSale_DefaultRegion(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/featuredcategories", r.URL.Path)
		_, _ = w.Write([]byte(featuredJSON))
	}))

	games, err := c.GetPopularGamesOnSale(context.Background(), 10, "us")
	require.NoError(t, err)
	require.Len(t, games, 3)
	require.EqualValues(t, 20, games[0].AppID)
	require.EqualValues(t, 50, games[1].AppID)
	require.EqualValues(t, 10, games[2].AppID)

	games, err = c.GetPopularGamesOnSale(context.Background(), 2, "us")
	require.NoError(t, err)
	require.Len(t, games, 2)
}

func TestGetPopularGamesOnSale_RegionalRepricing(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/featuredcategories":
			_, _ = w.Write([]byte(featuredJSON))
		case "/api/appdetails":
			require.Equal(t, "de", r.URL.Query().Get("cc"))
			switch r.URL.Query().Get("appids") {
			case "10":
				_, _ = w.Write([]byte(`{"10": {"success": true, "data": {"name": "Ten", "steam_appid": 10,
					"price_overview": {"currency": "EUR", "initial": 1000, "final": 100, "discount_percent": 90}}}}`))
			case "50":
				w.WriteHeader(http.StatusInternalServerError)
			default:
				_, _ = w.Write([]byte(`{"20": {"success": true, "data": {"name": "Twenty", "steam_appid": 20,
					"price_overview": {"currency": "EUR", "initial": 4000, "final": 2000, "discount_percent": 50}}}}`))
			}
		}
	}))

	games, err := c.GetPopularGamesOnSale(context.Background(), 10, "de")
	require.NoError(t, err)
	require.Len(t, games, 3)

	require.EqualValues(t, 10, games[0].AppID)
	require.Equal(t, "EUR", games[0].Currency)
	require.Equal(t, 90, games[0].DiscountPercent)

	// 50 failed to re-price and keeps its default-region entry; stable sort keeps 20 first.
	require.EqualValues(t, 20, games[1].AppID)
	require.Equal(t, "EUR", games[1].Currency)
	require.EqualValues(t, 50, games[2].AppID)
	require.Equal(t, "USD", games[2].Currency)
}
