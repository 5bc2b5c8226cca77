package models

import (
	"time"

	"gorm.io/datatypes"
)

type NotificationLogStatus string

const (
	NotificationLogStatusSent   NotificationLogStatus = "sent"
	NotificationLogStatusFailed NotificationLogStatus = "failed"
)

// NotificationLog records every price alert delivery attempt.
// Use case: troubleshooting "why did / didn't I get an email".
type NotificationLog struct {
	ID          string                      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	WatchlistID string                      `gorm:"column:watchlist_id;type:uuid;not null;index" json:"watchlist_id"`
	Email       string                      `gorm:"column:email;type:varchar(320);not null" json:"email"`
	GameID      string                      `gorm:"column:game_id;type:uuid;not null" json:"game_id"`
	Reasons     datatypes.JSONSlice[string] `gorm:"column:reasons;type:jsonb" json:"reasons"`
	Payload     datatypes.JSON              `gorm:"column:payload;type:jsonb" json:"payload"`
	Status      NotificationLogStatus       `gorm:"column:status;type:varchar(32);not null" json:"status"`
	TraceID     string                      `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	CreatedAt   time.Time                   `json:"created_at"`
}

func (NotificationLog) TableName() string { return "notification_log" }
