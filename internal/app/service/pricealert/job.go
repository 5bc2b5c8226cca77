// Package pricealert decides which watchlist entries get a price alert and sends them.
package pricealert

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/email"
	"github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logctx"
	"github.com/fatflowers/steamwatch/pkg/metrics"
	"github.com/fatflowers/steamwatch/pkg/token"
)

const (
	jobName = "check_price_drops"

	DefaultCooldown       = 24 * time.Hour
	DefaultMinDropPercent = 10

	storeAppURL = "https://store.steampowered.com/app/"
)

type Config struct {
	AppURL         string
	Cooldown       time.Duration
	MinDropPercent int64
}

func ConfigFrom(cfg *config.Config) Config {
	c := Config{
		AppURL:         strings.TrimRight(cfg.Jobs.AppURL, "/"),
		Cooldown:       cfg.Jobs.Cooldown,
		MinDropPercent: cfg.Jobs.MinDropPercent,
	}
	if c.Cooldown <= 0 {
		c.Cooldown = DefaultCooldown
	}
	if c.MinDropPercent <= 0 {
		c.MinDropPercent = DefaultMinDropPercent
	}
	return c
}

// Result summarizes one run. Checked counts every examined entry, including skipped ones.
type Result struct {
	Checked           int `json:"checked"`
	NotificationsSent int `json:"notificationsSent"`
	Errors            int `json:"errors"`
	Total             int `json:"total"`
}

// DeliveryRecorder keeps an audit trail of delivery attempts.
type DeliveryRecorder interface {
	Record(ctx context.Context, entry *models.Watchlist, msg *email.PriceDropEmail, sent bool)
}

type Service struct {
	cfg      Config
	store    Store
	notifier email.Notifier
	recorder DeliveryRecorder
	unsub    *token.Unsubscribe
	log      *zap.SugaredLogger
	now      func() time.Time
}

func NewService(cfg Config, store Store, notifier email.Notifier, recorder DeliveryRecorder, unsub *token.Unsubscribe, log *zap.SugaredLogger) *Service {
	return &Service{
		cfg:      cfg,
		store:    store,
		notifier: notifier,
		recorder: recorder,
		unsub:    unsub,
		log:      log,
		now:      time.Now,
	}
}

// CheckPriceDrops evaluates every active watchlist entry once. Only loading the entries can
// fail the run; per-entry faults are counted in Result.Errors.
func (s *Service) CheckPriceDrops(ctx context.Context) (*Result, error) {
	start := time.Now()
	defer metrics.ObserveJob(jobName, start)
	log := logctx.FromCtx(ctx, s.log)

	candidates, err := s.store.ListCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("load watchlist: %w", err)
	}

	res := &Result{Total: len(candidates)}
	now := s.now()
	for _, c := range candidates {
		res.Checked++
		outcome, err := s.process(ctx, c, now)
		if err != nil {
			res.Errors++
			metrics.JobItem(jobName, metrics.OutcomeError)
			log.Errorw("price_alert_failed", "watchlist_id", entryID(c), "err", err)
			continue
		}
		if outcome == metrics.OutcomeSent {
			res.NotificationsSent++
		}
		metrics.JobItem(jobName, outcome)
	}

	log.Infow("price_alert_done",
		"checked", res.Checked,
		"sent", res.NotificationsSent,
		"errors", res.Errors,
		"total", res.Total,
		"elapsed_ms", metrics.MillisecondsSince(start),
	)
	return res, nil
}

func (s *Service) process(ctx context.Context, c *Candidate, now time.Time) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	d := Evaluate(c, now, s.cfg)
	if !d.Notify {
		return metrics.OutcomeSkipped, nil
	}

	msg := s.buildEmail(c, d)
	sent := s.notifier.Send(ctx, c.Entry.Email, msg)
	if s.recorder != nil {
		s.recorder.Record(ctx, c.Entry, msg, sent)
	}
	if !sent {
		return "", fmt.Errorf("notification to %s not delivered", c.Entry.Email)
	}
	if err := s.store.MarkNotified(ctx, c.Entry.ID, now); err != nil {
		return "", fmt.Errorf("stamp last_notified_at: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("price_alert_sent", "watchlist_id", c.Entry.ID, "reason", d.Reason, "reasons", d.Reasons)
	return metrics.OutcomeSent, nil
}

func (s *Service) buildEmail(c *Candidate, d Decision) *email.PriceDropEmail {
	entry, cur := c.Entry, c.Current
	var (
		name  string
		appID string
	)
	if entry.Game != nil {
		name = entry.Game.Name
		appID = strconv.FormatInt(entry.Game.SteamAppID, 10)
	}
	msg := &email.PriceDropEmail{
		GameName:           name,
		GameURL:            s.cfg.AppURL + "/game/" + appID,
		StoreURL:           storeAppURL + appID,
		CurrentPrice:       cur.FinalPrice,
		Currency:           cur.Currency,
		DiscountPercent:    cur.Discount(),
		TargetPrice:        entry.TargetPrice,
		MinDiscountPercent: entry.MinDiscountPercent,
		Reason:             d.Reason,
		Reasons:            d.Reasons,
		UnsubscribeURL:     s.unsub.URL(s.cfg.AppURL, entry.Email, entry.GameID),
	}
	if c.Previous != nil {
		prev := c.Previous.FinalPrice
		msg.PreviousPrice = &prev
	}
	return msg
}

func entryID(c *Candidate) string {
	if c == nil || c.Entry == nil {
		return ""
	}
	return c.Entry.ID
}
