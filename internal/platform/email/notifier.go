// Package email delivers price alert emails through Resend.
package email

import (
	"context"
	"strings"

	"github.com/resend/resend-go/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/steamwatch/pkg/config"
	"github.com/fatflowers/steamwatch/pkg/logctx"
)

// Reason tags, in rule evaluation order.
const (
	ReasonSaleStarted = "sale_started"
	ReasonThreshold   = "threshold_reached"
	ReasonTargetPrice = "target_price_reached"
	ReasonPriceDrop   = "price_drop"
)

// PriceDropEmail is everything a price alert email shows. Prices are minor units.
type PriceDropEmail struct {
	GameName           string   `json:"game_name"`
	GameURL            string   `json:"game_url"`
	StoreURL           string   `json:"store_url"`
	CurrentPrice       int64    `json:"current_price"`
	Currency           string   `json:"currency"`
	DiscountPercent    int      `json:"discount_percent"`
	PreviousPrice      *int64   `json:"previous_price"`
	TargetPrice        *int64   `json:"target_price"`
	MinDiscountPercent *int     `json:"min_discount_percent"`
	Reason             string   `json:"reason"`
	Reasons            []string `json:"reasons"`
	UnsubscribeURL     string   `json:"unsubscribe_url,omitempty"`
}

// Notifier sends one alert. It reports false on any failure, including missing configuration.
type Notifier interface {
	Send(ctx context.Context, to string, m *PriceDropEmail) bool
}

type sender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendNotifier struct {
	from   string
	emails sender
	log    *zap.SugaredLogger
}

var _ Notifier = (*ResendNotifier)(nil)

func NewResendNotifier(cfg *cfgpkg.Config, log *zap.SugaredLogger) *ResendNotifier {
	n := &ResendNotifier{from: strings.TrimSpace(cfg.Email.From), log: log}
	if key := strings.TrimSpace(cfg.Email.ResendAPIKey); key != "" {
		n.emails = resend.NewClient(key).Emails
	}
	return n
}

func (n *ResendNotifier) configured() bool {
	return n.emails != nil && n.from != ""
}

func (n *ResendNotifier) Send(ctx context.Context, to string, m *PriceDropEmail) bool {
	log := logctx.FromCtx(ctx, n.log)
	if !n.configured() {
		log.Warnw("email_not_configured", "hint", "set APP_EMAIL_RESEND_API_KEY and APP_EMAIL_FROM")
		return false
	}
	if m == nil {
		return false
	}
	subject, html, text, err := render(m)
	if err != nil {
		log.Errorw("email_render_failed", "err", err)
		return false
	}
	resp, err := n.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
		Text:    text,
	})
	if err != nil {
		log.Errorw("email_send_failed", "to", to, "game", m.GameName, "err", err)
		return false
	}
	log.Infow("email_sent", "to", to, "game", m.GameName, "id", resp.Id)
	return true
}

var Module = fx.Options(
	fx.Provide(NewResendNotifier),
	fx.Provide(func(n *ResendNotifier) Notifier { return n }),
)
