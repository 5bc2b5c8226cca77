package notification_log

import (
	"context"
	"encoding/json"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/email"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/tool"
)

type Service struct {
	db    *gorm.DB
	log   *zap.SugaredLogger
	async bool
}

func New(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log, async: true}
}

// NewSync returns a Service whose writes complete before Record returns.
func NewSync(db *gorm.DB, log *zap.SugaredLogger) *Service {
	return &Service{db: db, log: log}
}

// Record stores one delivery attempt for a watchlist entry. Failures are logged, never returned.
func (s *Service) Record(ctx context.Context, entry *models.Watchlist, msg *email.PriceDropEmail, sent bool) {
	if entry == nil || msg == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		logctx.FromCtx(ctx, s.log).Errorw("notification_log_marshal_failed", "watchlist_id", entry.ID, "err", err)
		return
	}
	status := models.NotificationLogStatusSent
	if !sent {
		status = models.NotificationLogStatusFailed
	}
	s.Save(ctx, &models.NotificationLog{
		WatchlistID: entry.ID,
		Email:       entry.Email,
		GameID:      entry.GameID,
		Reasons:     msg.Reasons,
		Payload:     payload,
		Status:      status,
		TraceID:     logctx.TraceID(ctx),
	})
}

// Save persists a notification log, asynchronously unless built with NewSync. Nil input is ignored.
func (s *Service) Save(ctx context.Context, log *models.NotificationLog) {
	if log == nil {
		return
	}
	if log.ID == "" {
		log.ID = tool.GenerateUUIDV7()
	}
	if !s.async {
		s.save(ctx, log)
		return
	}
	go s.save(context.WithoutCancel(ctx), log)
}

func (s *Service) save(ctx context.Context, log *models.NotificationLog) {
	if err := s.db.WithContext(ctx).Create(log).Error; err != nil {
		logctx.FromCtx(ctx, s.log).Errorf("failed to save notification log: %v", err)
	}
}

var Module = fx.Options(
	fx.Provide(New),
)
