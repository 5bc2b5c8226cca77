package models

import "time"

// PriceSnapshot is one recorded price observation. At most one row exists per game per
// local calendar day, enforced by the (game_id, snapshot_date) unique index.
type PriceSnapshot struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	GameID string `gorm:"column:game_id;type:uuid;not null;uniqueIndex:idx_game_id_snapshot_date,priority:1;index:idx_game_id_recorded_at,priority:1" json:"game_id"`
	// SnapshotDate is the insertion day in server-local time, YYYY-MM-DD.
	SnapshotDate string    `gorm:"column:snapshot_date;type:varchar(10);not null;uniqueIndex:idx_game_id_snapshot_date,priority:2" json:"snapshot_date"`
	RecordedAt   time.Time `gorm:"column:recorded_at;not null;index:idx_game_id_recorded_at,priority:2,sort:desc" json:"recorded_at"`
	Currency     string    `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	// InitialPrice and FinalPrice are minor currency units (cents).
	InitialPrice    int64     `gorm:"column:initial_price;type:bigint;not null" json:"initial_price"`
	FinalPrice      int64     `gorm:"column:final_price;type:bigint;not null" json:"final_price"`
	DiscountPercent *int      `gorm:"column:discount_percent" json:"discount_percent"`
	IsOnSale        bool      `gorm:"column:is_on_sale;not null;default:false" json:"is_on_sale"`
	CreatedAt       time.Time `json:"created_at"`
}

func (PriceSnapshot) TableName() string {
	return "price_snapshot"
}

// Discount returns the discount percent, treating a missing value as 0.
func (p *PriceSnapshot) Discount() int {
	if p == nil || p.DiscountPercent == nil {
		return 0
	}
	return *p.DiscountPercent
}
