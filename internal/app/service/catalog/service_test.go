package catalog

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/db"
	"github.com/fatflowers/steamwatch/internal/platform/steam"
	"github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/tool"
)

type stubSource struct {
	details map[int64]*steam.AppDetails
	popular []*steam.PopularGame
	calls   []string
}

func (s *stubSource) GetAppDetails(_ context.Context, appID int64, cc string) (*steam.AppDetails, error) {
	s.calls = append(s.calls, cc)
	d, ok := s.details[appID]
	if !ok {
		return nil, steam.ErrUnavailable
	}
	return d, nil
}

func (s *stubSource) GetPopularGamesOnSale(_ context.Context, limit int, cc string) ([]*steam.PopularGame, error) {
	s.calls = append(s.calls, cc)
	if limit < len(s.popular) {
		return s.popular[:limit], nil
	}
	return s.popular, nil
}

func details(appID int64, name string, final int64, discount int) *steam.AppDetails {
	return &steam.AppDetails{
		Type:        "game",
		Name:        name,
		SteamAppID:  appID,
		HeaderImage: "https://cdn/header.jpg",
		Developers:  []string{"Team Cherry"},
		Genres:      []steam.Genre{{ID: json.Number("25"), Description: "Adventure"}},
		ReleaseDate: &steam.ReleaseDate{Date: "24 Feb, 2017"},
		PriceOverview: &steam.PriceOverview{
			Currency:        "usd",
			Initial:         1499,
			Final:           final,
			DiscountPercent: discount,
		},
	}
}

var day1 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.Local)

func newTestService(t *testing.T, src *stubSource) *Service {
	t.Helper()
	s := NewService(&config.Config{}, db.NewTestDB(t), src, zap.NewNop().Sugar())
	s.now = func() time.Time { return day1 }
	return s
}

func TestGetByAppID_FetchesMissingGame(t *testing.T) {
	src := &stubSource{details: map[int64]*steam.AppDetails{367520: details(367520, "Hollow Knight", 749, 50)}}
	s := newTestService(t, src)
	ctx := context.Background()

	g, err := s.GetByAppID(ctx, 367520, false, "")
	require.NoError(t, err)
	require.Equal(t, "Hollow Knight", g.Name)
	require.Equal(t, []string{"Team Cherry"}, []string(g.Developers))
	require.Equal(t, "25", g.Genres[0].ID)
	require.Equal(t, "24 Feb, 2017", *g.ReleaseDate)
	require.Len(t, g.PriceHistory, 1)
	require.Equal(t, "USD", g.PriceHistory[0].Currency)
	require.True(t, g.PriceHistory[0].IsOnSale)
	require.Equal(t, []string{"us"}, src.calls)

	// stored now: no upstream call without sync
	_, err = s.GetByAppID(ctx, 367520, false, "")
	require.NoError(t, err)
	require.Len(t, src.calls, 1)

	// forced sync the same day keeps one snapshot
	g, err = s.GetByAppID(ctx, 367520, true, "BR")
	require.NoError(t, err)
	require.Len(t, g.PriceHistory, 1)
	require.Equal(t, "br", src.calls[1])
}

func TestGetByAppID_NotFound(t *testing.T) {
	s := newTestService(t, &stubSource{})
	_, err := s.GetByAppID(context.Background(), 1, false, "")
	require.ErrorIs(t, err, ErrGameNotFound)
}

func TestRecordSnapshot_OnePerDay(t *testing.T) {
	src := &stubSource{details: map[int64]*steam.AppDetails{10: details(10, "Ten", 1499, 0)}}
	s := newTestService(t, src)
	ctx := context.Background()

	res, err := s.SyncGame(ctx, 10)
	require.NoError(t, err)
	require.True(t, res.Recorded)

	src.details[10] = details(10, "Ten", 999, 33)
	res, err = s.SyncGame(ctx, 10)
	require.NoError(t, err)
	require.False(t, res.Recorded)

	s.now = func() time.Time { return day1.Add(24 * time.Hour) }
	res, err = s.SyncGame(ctx, 10)
	require.NoError(t, err)
	require.True(t, res.Recorded)

	history, err := s.GetPriceHistory(ctx, res.GameID, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.EqualValues(t, 999, history[0].FinalPrice)
	require.EqualValues(t, 1499, history[1].FinalPrice)
}

func TestPriceSnapshot_UniqueIndexPerDay(t *testing.T) {
	s := newTestService(t, &stubSource{})
	ctx := context.Background()
	g, err := s.UpsertGame(ctx, 5, details(5, "Five", 100, 0))
	require.NoError(t, err)

	// a row for today written behind the pre-check's back
	require.NoError(t, s.db.Create(&models.PriceSnapshot{
		ID: tool.GenerateUUIDV7(), GameID: g.ID, SnapshotDate: tool.LocalDate(day1), RecordedAt: day1, Currency: "USD",
	}).Error)

	var n int64
	require.NoError(t, s.db.Model(&models.PriceSnapshot{}).Where("game_id = ?", g.ID).Count(&n).Error)
	require.EqualValues(t, 1, n)

	err = s.db.Create(&models.PriceSnapshot{
		ID: tool.GenerateUUIDV7(), GameID: g.ID, SnapshotDate: tool.LocalDate(day1), RecordedAt: day1, Currency: "USD",
	}).Error
	require.Error(t, err)

	recorded, err := s.RecordSnapshot(ctx, g.ID, details(5, "Five", 90, 10).PriceOverview)
	require.NoError(t, err)
	require.False(t, recorded)
}

func TestRecordSnapshot_NoPrice(t *testing.T) {
	d := details(440, "Team Fortress 2", 0, 0)
	d.PriceOverview = nil
	src := &stubSource{details: map[int64]*steam.AppDetails{440: d}}
	s := newTestService(t, src)

	res, err := s.SyncGame(context.Background(), 440)
	require.NoError(t, err)
	require.False(t, res.Recorded)

	history, err := s.GetPriceHistory(context.Background(), res.GameID, 10)
	require.NoError(t, err)
	require.Empty(t, history)
}

func TestUpsertGame_UpdatesByAppID(t *testing.T) {
	s := newTestService(t, &stubSource{})
	ctx := context.Background()

	first, err := s.UpsertGame(ctx, 7, details(7, "Old name", 100, 0))
	require.NoError(t, err)
	second, err := s.UpsertGame(ctx, 7, details(7, "New name", 100, 0))
	require.NoError(t, err)

	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "New name", second.Name)

	var n int64
	require.NoError(t, s.db.Model(&models.Game{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestSearch(t *testing.T) {
	src := &stubSource{details: map[int64]*steam.AppDetails{
		1: details(1, "Hollow Knight", 749, 50),
		2: details(2, "Knights of Honor", 999, 0),
		3: details(3, "Celeste", 499, 0),
		4: details(4, "100%_Orange", 100, 0),
	}}
	s := newTestService(t, src)
	ctx := context.Background()
	for id := range src.details {
		_, err := s.SyncGame(ctx, id)
		require.NoError(t, err)
	}

	res, err := s.Search(ctx, "KNIGHT", 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	for _, r := range res {
		require.Contains(t, []int64{1, 2}, r.SteamAppID)
		require.NotNil(t, r.CurrentPrice)
	}

	res, err = s.Search(ctx, "celeste", 1)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.EqualValues(t, 499, res[0].CurrentPrice.FinalPrice)

	// LIKE wildcards in the query are literal
	res, err = s.Search(ctx, "%_", 10)
	require.NoError(t, err)
	require.Len(t, res, 1)
	require.EqualValues(t, 4, res[0].SteamAppID)

	res, err = s.Search(ctx, "   ", 10)
	require.NoError(t, err)
	require.Empty(t, res)
}

func TestRank_PrefersTighterMatch(t *testing.T) {
	games := []*models.Game{{Name: "The Knight Witch"}, {Name: "Knight"}}
	ranked := rank("knight", games)
	require.Equal(t, "Knight", ranked[0].Name)
}

func TestListPopularOnSale_DefaultsAndClamp(t *testing.T) {
	src := &stubSource{popular: make([]*steam.PopularGame, 150)}
	s := newTestService(t, src)

	games, err := s.ListPopularOnSale(context.Background(), 0, "")
	require.NoError(t, err)
	require.Len(t, games, DefaultPopularLimit)

	games, err = s.ListPopularOnSale(context.Background(), 500, "DE")
	require.NoError(t, err)
	require.Len(t, games, MaxPopularLimit)
	require.Equal(t, []string{"us", "de"}, src.calls)
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, 20, clampLimit(0, 20, 50))
	require.Equal(t, 50, clampLimit(51, 20, 50))
	require.Equal(t, 7, clampLimit(7, 20, 50))
}
