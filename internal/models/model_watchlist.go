package models

import "time"

// Watchlist is a subscription from an email address to price alerts for one game.
type Watchlist struct {
	ID     string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email  string `gorm:"column:email;type:varchar(320);not null;uniqueIndex:unique_email_game_id,priority:1" json:"email"`
	GameID string `gorm:"column:game_id;type:uuid;not null;uniqueIndex:unique_email_game_id,priority:2;index" json:"game_id"`
	Game   *Game  `gorm:"foreignKey:GameID" json:"game,omitempty"`
	// IsActive entries are the only ones the price-drop job looks at.
	IsActive     bool `gorm:"column:is_active;not null;default:true;index" json:"is_active"`
	NotifyOnSale bool `gorm:"column:notify_on_sale;not null;default:true" json:"notify_on_sale"`
	// MinDiscountPercent is 0-100 when set.
	MinDiscountPercent *int `gorm:"column:min_discount_percent" json:"min_discount_percent"`
	// TargetPrice is in minor currency units when set.
	TargetPrice    *int64     `gorm:"column:target_price;type:bigint" json:"target_price"`
	LastNotifiedAt *time.Time `gorm:"column:last_notified_at;default:null" json:"last_notified_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (Watchlist) TableName() string {
	return "watchlist"
}
