package watchlist

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/steamwatch/internal/app/service/catalog"
	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/db"
	"github.com/fatflowers/steamwatch/pkg/token"
	"github.com/fatflowers/steamwatch/pkg/tool"
	"github.com/fatflowers/steamwatch/pkg/types"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	gdb := db.NewTestDB(t)
	return NewService(gdb, token.NewUnsubscribe("secret"), zap.NewNop().Sugar()), gdb
}

func seedGame(t *testing.T, gdb *gorm.DB, appID int64, name string) *models.Game {
	t.Helper()
	g := &models.Game{ID: tool.GenerateUUIDV7(), SteamAppID: appID, Name: name}
	require.NoError(t, gdb.Create(g).Error)
	return g
}

func TestNormalizeEmail(t *testing.T) {
	e, err := NormalizeEmail("  Foo@Example.COM ")
	require.NoError(t, err)
	require.Equal(t, "foo@example.com", e)

	for _, bad := range []string{"", "not-an-email", "Foo <foo@example.com>", "a@"} {
		_, err := NormalizeEmail(bad)
		require.ErrorIs(t, err, ErrInvalidEmail, bad)
	}
}

func TestSubscribe_UpsertsPair(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")

	first, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "A@x.io", MinDiscountPercent: lo.ToPtr(30)})
	require.NoError(t, err)
	require.True(t, first.IsActive)
	require.True(t, first.NotifyOnSale)
	require.Equal(t, "a@x.io", first.Email)

	// deactivate, then subscribing again reactivates and overwrites thresholds
	require.NoError(t, gdb.Model(first).Update("is_active", false).Error)
	second, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io", TargetPrice: lo.ToPtr[int64](999)})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.True(t, second.IsActive)
	require.Nil(t, second.MinDiscountPercent)
	require.EqualValues(t, 999, *second.TargetPrice)

	var n int64
	require.NoError(t, gdb.Model(&models.Watchlist{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestSubscribe_Validation(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")

	_, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "nope"})
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io", MinDiscountPercent: lo.ToPtr(101)})
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io", MinDiscountPercent: lo.ToPtr(-1)})
	require.ErrorIs(t, err, ErrInvalidThreshold)

	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: "missing", Email: "a@x.io"})
	require.ErrorIs(t, err, catalog.ErrGameNotFound)

	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io", MinDiscountPercent: lo.ToPtr(100)})
	require.NoError(t, err)
}

func TestUnsubscribe_HardDeletes(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")
	_, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io"})
	require.NoError(t, err)

	require.NoError(t, s.Unsubscribe(ctx, g.ID, "A@X.io"))
	var n int64
	require.NoError(t, gdb.Model(&models.Watchlist{}).Count(&n).Error)
	require.Zero(t, n)

	// idempotent
	require.NoError(t, s.Unsubscribe(ctx, g.ID, "a@x.io"))
}

func TestUnsubscribeByToken(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")
	_, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io"})
	require.NoError(t, err)

	require.ErrorIs(t, s.UnsubscribeByToken(ctx, "garbage"), ErrInvalidToken)

	tok, err := token.NewUnsubscribe("secret").Sign("a@x.io", g.ID)
	require.NoError(t, err)
	require.NoError(t, s.UnsubscribeByToken(ctx, tok))

	st, err := s.Status(ctx, g.ID, "a@x.io")
	require.NoError(t, err)
	require.False(t, st.IsWatching)
}

func TestStatus(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")

	st, err := s.Status(ctx, g.ID, "")
	require.NoError(t, err)
	require.Equal(t, &Status{}, st)

	w, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: "a@x.io", TargetPrice: lo.ToPtr[int64](500)})
	require.NoError(t, err)

	st, err = s.Status(ctx, g.ID, "a@x.io")
	require.NoError(t, err)
	require.True(t, st.IsWatching)
	require.Equal(t, w.ID, st.Watchlist.ID)
	require.EqualValues(t, 500, *st.Watchlist.TargetPrice)

	require.NoError(t, gdb.Model(w).Update("is_active", false).Error)
	st, err = s.Status(ctx, g.ID, "a@x.io")
	require.NoError(t, err)
	require.False(t, st.IsWatching)
	require.Nil(t, st.Watchlist)
}

func TestListByEmail(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	older := seedGame(t, gdb, 1, "Hades")
	newer := seedGame(t, gdb, 2, "Celeste")
	other := seedGame(t, gdb, 3, "Inside")

	w1, err := s.Subscribe(ctx, &SubscribeRequest{GameID: older.ID, Email: "a@x.io"})
	require.NoError(t, err)
	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: newer.ID, Email: "a@x.io"})
	require.NoError(t, err)
	_, err = s.Subscribe(ctx, &SubscribeRequest{GameID: other.ID, Email: "b@x.io"})
	require.NoError(t, err)
	require.NoError(t, gdb.Model(w1).UpdateColumn("created_at", time.Now().Add(-time.Hour)).Error)

	at := time.Now()
	require.NoError(t, gdb.Create(&models.PriceSnapshot{
		ID: tool.GenerateUUIDV7(), GameID: newer.ID, SnapshotDate: tool.LocalDate(at), RecordedAt: at,
		Currency: "USD", InitialPrice: 1999, FinalPrice: 999, DiscountPercent: lo.ToPtr(50), IsOnSale: true,
	}).Error)

	entries, err := s.ListByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "Celeste", entries[0].Game.Name)
	require.EqualValues(t, 999, entries[0].CurrentPrice.FinalPrice)
	require.Equal(t, "Hades", entries[1].Game.Name)
	require.Nil(t, entries[1].CurrentPrice)

	_, err = s.ListByEmail(ctx, "bad")
	require.ErrorIs(t, err, ErrInvalidEmail)
}

func TestScan(t *testing.T) {
	s, gdb := newTestService(t)
	ctx := context.Background()
	g := seedGame(t, gdb, 1, "Hades")
	for _, e := range []string{"a@x.io", "b@x.io", "c@y.io"} {
		_, err := s.Subscribe(ctx, &SubscribeRequest{GameID: g.ID, Email: e})
		require.NoError(t, err)
	}

	res, err := s.Scan(ctx, &ScanRequest{
		Filters: []*types.CommonFilter{{Field: "email", Operator: types.CommonFilterOperatorIn, Values: []any{"a@x.io", "b@x.io"}}},
		Size:    1,
		SortBy:  "email",
	})
	require.NoError(t, err)
	require.EqualValues(t, 2, res.Total)
	require.Len(t, res.Items, 1)
	require.Equal(t, "b@x.io", res.Items[0].Email)
	require.Equal(t, "Hades", res.Items[0].Game.Name)

	_, err = s.Scan(ctx, &ScanRequest{Filters: []*types.CommonFilter{{Field: "password", Operator: types.CommonFilterOperatorEq, Values: []any{"x"}}}})
	require.Error(t, err)
	_, err = s.Scan(ctx, &ScanRequest{SortBy: "1; DROP TABLE watchlist"})
	require.Error(t, err)
}
