package notification_log

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/db"
	"github.com/fatflowers/steamwatch/internal/platform/email"
	"github.com/fatflowers/steamwatch/pkg/logctx"
)

func TestRecord_PersistsAttempt(t *testing.T) {
	gdb := db.NewTestDB(t)
	s := NewSync(gdb, zap.NewNop().Sugar())

	entry := &models.Watchlist{ID: "w1", Email: "a@b.c", GameID: "g1"}
	msg := &email.PriceDropEmail{GameName: "Hades", Reason: email.ReasonPriceDrop, Reasons: []string{email.ReasonSaleStarted, email.ReasonPriceDrop}}
	ctx := logctx.WithTraceID(context.Background(), "trace-1")

	s.Record(ctx, entry, msg, true)
	s.Record(ctx, entry, msg, false)

	var logs []*models.NotificationLog
	require.NoError(t, gdb.Order("id").Find(&logs).Error)
	require.Len(t, logs, 2)
	require.Equal(t, models.NotificationLogStatusSent, logs[0].Status)
	require.Equal(t, models.NotificationLogStatusFailed, logs[1].Status)
	require.Equal(t, "trace-1", logs[0].TraceID)
	require.Equal(t, []string{email.ReasonSaleStarted, email.ReasonPriceDrop}, []string(logs[0].Reasons))
	require.Contains(t, string(logs[0].Payload), `"game_name":"Hades"`)
}

func TestRecord_IgnoresNil(t *testing.T) {
	gdb := db.NewTestDB(t)
	s := NewSync(gdb, zap.NewNop().Sugar())
	s.Record(context.Background(), nil, &email.PriceDropEmail{}, true)
	s.Record(context.Background(), &models.Watchlist{ID: "w"}, nil, true)

	var n int64
	require.NoError(t, gdb.Model(&models.NotificationLog{}).Count(&n).Error)
	require.Zero(t, n)
}
