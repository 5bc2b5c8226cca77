package pricealert

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/steamwatch/internal/models"
	"github.com/fatflowers/steamwatch/internal/platform/email"
)

// Candidate is an active watchlist entry with the two newest snapshots of its game.
// Previous is nil when the game has a single snapshot; Current is nil when it has none.
type Candidate struct {
	Entry    *models.Watchlist
	Current  *models.PriceSnapshot
	Previous *models.PriceSnapshot
}

type Decision struct {
	Notify bool
	// Reason is the last matching rule.
	Reason  string
	Reasons []string
	// Cooldown is set when rules matched but a recent notification suppressed them.
	Cooldown bool
}

// Evaluate applies every rule to c in order. It never short-circuits, so Reasons lists all
// rules that matched. The cooldown only ever turns a positive decision negative.
func Evaluate(c *Candidate, now time.Time, cfg Config) Decision {
	var d Decision
	if c == nil || c.Entry == nil || c.Current == nil {
		return d
	}
	cur, prev, entry := c.Current, c.Previous, c.Entry

	if cur.IsOnSale && (prev == nil || !prev.IsOnSale) {
		d.Reasons = append(d.Reasons, email.ReasonSaleStarted)
	}

	if minDiscount := entry.MinDiscountPercent; minDiscount != nil && cur.DiscountPercent != nil && *cur.DiscountPercent >= *minDiscount &&
		(prev == nil || prev.DiscountPercent == nil || *prev.DiscountPercent < *minDiscount) {
		d.Reasons = append(d.Reasons, email.ReasonThreshold)
	}

	if target := entry.TargetPrice; target != nil && cur.FinalPrice <= *target &&
		(prev == nil || prev.FinalPrice > *target) {
		d.Reasons = append(d.Reasons, email.ReasonTargetPrice)
	}

	if prev != nil && cur.FinalPrice < prev.FinalPrice && cur.IsOnSale &&
		DropPercent(prev.FinalPrice, cur.FinalPrice).GreaterThanOrEqual(decimal.NewFromInt(cfg.MinDropPercent)) {
		d.Reasons = append(d.Reasons, email.ReasonPriceDrop)
	}

	if len(d.Reasons) == 0 {
		return d
	}
	d.Notify = true
	d.Reason = d.Reasons[len(d.Reasons)-1]

	if last := entry.LastNotifiedAt; last != nil && now.Sub(*last) < cfg.Cooldown {
		d.Notify = false
		d.Cooldown = true
	}
	return d
}

// DropPercent is (previous - current) / previous * 100. A non-positive previous yields zero.
func DropPercent(previous, current int64) decimal.Decimal {
	if previous <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(previous - current).Mul(decimal.NewFromInt(100)).Div(decimal.NewFromInt(previous))
}
