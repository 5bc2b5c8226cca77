package steam

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/net/http2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	cfgpkg "github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/metrics"
)

// ErrUnavailable means the store returned no usable data for the request.
var ErrUnavailable = errors.New("steam: data unavailable")

const DefaultCountry = "us"

// PriceSource is the store surface the jobs and the catalog depend on.
type PriceSource interface {
	GetAppDetails(ctx context.Context, appID int64, countryCode string) (*AppDetails, error)
	GetPopularGamesOnSale(ctx context.Context, limit int, countryCode string) ([]*PopularGame, error)
}

type cachedDetails struct {
	details   *AppDetails
	fetchedAt time.Time
}

type Client struct {
	baseURL     string
	http        *http.Client
	log         *zap.SugaredLogger
	cache       *lru.Cache
	cacheTTL    time.Duration
	concurrency int64
	now         func() time.Time
}

var _ PriceSource = (*Client)(nil)

func NewClient(cfg *cfgpkg.Config, log *zap.SugaredLogger) (*Client, error) {
	sc := cfg.Steam
	httpClient, err := newHTTPClient(sc.Timeout)
	if err != nil {
		return nil, fmt.Errorf("unable to create steam http client: %w", err)
	}
	return newClient(sc, httpClient, log)
}

func newClient(sc cfgpkg.SteamConfig, httpClient *http.Client, log *zap.SugaredLogger) (*Client, error) {
	size := sc.CacheSize
	if size <= 0 {
		size = 1
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	concurrency := int64(sc.Concurrency)
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Client{
		baseURL:     strings.TrimRight(sc.BaseURL, "/"),
		http:        httpClient,
		log:         log,
		cache:       cache,
		cacheTTL:    sc.CacheTTL,
		concurrency: concurrency,
		now:         time.Now,
	}, nil
}

func newHTTPClient(timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	tr := &http.Transport{
		ResponseHeaderTimeout: timeout,
		Proxy:                 http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			KeepAlive: 30 * time.Second,
			Timeout:   15 * time.Second,
		}).DialContext,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		MaxIdleConnsPerHost:   10,
		ExpectContinueTimeout: 5 * time.Second,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, err
	}
	return &http.Client{Transport: tr, Timeout: timeout}, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(path, metrics.OutcomeError, start)
		return fmt.Errorf("steam request %s: %w", path, err)
	}
	defer resp.Body.Close()
	metrics.ObserveUpstream(path, strconv.Itoa(resp.StatusCode), start)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steam api error: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode steam response %s: %w", path, err)
	}
	return nil
}

// GetAppDetails fetches one app priced for countryCode. Responses are cached for the
// configured TTL per (app, region).
func (c *Client) GetAppDetails(ctx context.Context, appID int64, countryCode string) (*AppDetails, error) {
	if countryCode == "" {
		countryCode = DefaultCountry
	}
	key := strconv.FormatInt(appID, 10) + ":" + countryCode
	if v, ok := c.cache.Get(key); ok {
		if entry := v.(cachedDetails); c.now().Sub(entry.fetchedAt) < c.cacheTTL {
			return entry.details, nil
		}
	}

	var body map[string]*appDetailsEnvelope
	q := url.Values{"appids": {strconv.FormatInt(appID, 10)}, "cc": {countryCode}}
	if err := c.getJSON(ctx, "/api/appdetails", q, &body); err != nil {
		return nil, err
	}
	env := body[strconv.FormatInt(appID, 10)]
	if env == nil || !env.Success || env.Data == nil {
		return nil, fmt.Errorf("app %d: %w", appID, ErrUnavailable)
	}
	c.cache.Add(key, cachedDetails{details: env.Data, fetchedAt: c.now()})
	return env.Data, nil
}

// FetchSnapshot returns the normalized price of an app in a region. A nil overview with a
// nil error means the app is free or not purchasable there.
func (c *Client) FetchSnapshot(ctx context.Context, appID int64, countryCode string) (*PriceOverview, error) {
	details, err := c.GetAppDetails(ctx, appID, countryCode)
	if err != nil {
		return nil, err
	}
	return details.PriceOverview, nil
}

// GetFeaturedCategories fetches the featured lists (specials, top sellers).
func (c *Client) GetFeaturedCategories(ctx context.Context) (*FeaturedCategories, error) {
	var out FeaturedCategories
	if err := c.getJSON(ctx, "/api/featuredcategories", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetPopularGamesOnSale returns discounted base games from specials then top sellers,
// deduplicated by app id, sorted by discount descending and truncated to limit. For
// regions other than the default each game is re-priced through app details; games
// that fail to re-price keep their default-region price.
func (c *Client) GetPopularGamesOnSale(ctx context.Context, limit int, countryCode string) ([]*PopularGame, error) {
	cats, err := c.GetFeaturedCategories(ctx)
	if err != nil {
		return nil, err
	}

	games := collectPopular(cats)

	if countryCode != "" && countryCode != DefaultCountry {
		games = lo.Slice(games, 0, limit)
		c.reprice(ctx, games, countryCode)
	}

	sort.SliceStable(games, func(i, j int) bool { return games[i].DiscountPercent > games[j].DiscountPercent })
	return lo.Slice(games, 0, limit), nil
}

func collectPopular(cats *FeaturedCategories) []*PopularGame {
	var games []*PopularGame
	seen := map[int64]bool{}
	for _, cat := range []*FeaturedCategory{cats.Specials, cats.TopSellers} {
		if cat == nil {
			continue
		}
		for _, it := range cat.Items {
			if it == nil || !it.Discounted || it.Type != itemTypeGame || seen[it.ID] {
				continue
			}
			seen[it.ID] = true
			games = append(games, &PopularGame{
				AppID:             it.ID,
				Name:              it.Name,
				DiscountPercent:   it.DiscountPercent,
				OriginalPrice:     it.OriginalPrice,
				FinalPrice:        it.FinalPrice,
				Currency:          it.Currency,
				HeaderImage:       it.HeaderImage,
				LargeCapsuleImage: it.LargeCapsuleImage,
			})
		}
	}
	return games
}

// reprice updates games in place. Each goroutine owns one element, so no locking is needed.
func (c *Client) reprice(ctx context.Context, games []*PopularGame, countryCode string) {
	sem := semaphore.NewWeighted(c.concurrency)
	g, gctx := errgroup.WithContext(ctx)
	for _, game := range games {
		if err := sem.Acquire(gctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			details, err := c.GetAppDetails(gctx, game.AppID, countryCode)
			if err != nil || details.PriceOverview == nil {
				if err != nil {
					logctx.FromCtx(ctx, c.log).Debugw("steam_reprice_fallback", "app_id", game.AppID, "cc", countryCode, "err", err)
				}
				return nil
			}
			po := details.PriceOverview
			game.OriginalPrice = po.Initial
			game.FinalPrice = po.Final
			game.DiscountPercent = po.DiscountPercent
			game.Currency = po.Currency
			return nil
		})
	}
	_ = g.Wait()
}

var Module = fx.Options(
	fx.Provide(NewClient),
	fx.Provide(func(c *Client) PriceSource { return c }),
)
