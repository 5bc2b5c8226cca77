package models

import (
	"time"

	"gorm.io/datatypes"
)

// Genre is a store genre tag as reported by the app details endpoint.
type Genre struct {
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Game is a store title keyed by its external app id.
type Game struct {
	ID               string                      `gorm:"column:id;type:uuid;primary_key" json:"id"`
	SteamAppID       int64                       `gorm:"column:steam_app_id;not null;uniqueIndex" json:"steam_app_id"`
	Name             string                      `gorm:"column:name;type:varchar(512);not null" json:"name"`
	Type             string                      `gorm:"column:type;type:varchar(64)" json:"type"`
	HeaderImage      *string                     `gorm:"column:header_image;type:text" json:"header_image"`
	ReleaseDate      *string                     `gorm:"column:release_date;type:varchar(64)" json:"release_date"`
	ShortDescription *string                     `gorm:"column:short_description;type:text" json:"short_description"`
	Developers       datatypes.JSONSlice[string] `gorm:"column:developers;type:jsonb" json:"developers"`
	Publishers       datatypes.JSONSlice[string] `gorm:"column:publishers;type:jsonb" json:"publishers"`
	Genres           datatypes.JSONSlice[Genre]  `gorm:"column:genres;type:jsonb" json:"genres"`
	PriceSnapshots   []*PriceSnapshot            `gorm:"foreignKey:GameID" json:"-"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

func (Game) TableName() string {
	return "game"
}
