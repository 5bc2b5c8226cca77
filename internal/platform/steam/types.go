package steam

import "encoding/json"

// PriceOverview is the store's price block. All amounts are minor units.
type PriceOverview struct {
	Currency         string `json:"currency"`
	Initial          int64  `json:"initial"`
	Final            int64  `json:"final"`
	DiscountPercent  int    `json:"discount_percent"`
	InitialFormatted string `json:"initial_formatted"`
	FinalFormatted   string `json:"final_formatted"`
}

// OnSale reports whether the store currently applies a discount.
func (p *PriceOverview) OnSale() bool {
	return p != nil && p.DiscountPercent > 0
}

type Genre struct {
	// ID arrives as a quoted number.
	ID          json.Number `json:"id"`
	Description string      `json:"description"`
}

type ReleaseDate struct {
	ComingSoon bool   `json:"coming_soon"`
	Date       string `json:"date"`
}

// AppDetails is the subset of the appdetails payload this service stores.
type AppDetails struct {
	Type             string         `json:"type"`
	Name             string         `json:"name"`
	SteamAppID       int64          `json:"steam_appid"`
	IsFree           bool           `json:"is_free"`
	ShortDescription string         `json:"short_description"`
	HeaderImage      string         `json:"header_image"`
	Developers       []string       `json:"developers"`
	Publishers       []string       `json:"publishers"`
	PriceOverview    *PriceOverview `json:"price_overview"`
	Genres           []Genre        `json:"genres"`
	ReleaseDate      *ReleaseDate   `json:"release_date"`
}

type appDetailsEnvelope struct {
	Success bool        `json:"success"`
	Data    *AppDetails `json:"data"`
}

// FeaturedItem is an entry of a featured category list.
type FeaturedItem struct {
	ID                 int64  `json:"id"`
	Type               int    `json:"type"`
	Name               string `json:"name"`
	Discounted         bool   `json:"discounted"`
	DiscountPercent    int    `json:"discount_percent"`
	OriginalPrice      int64  `json:"original_price"`
	FinalPrice         int64  `json:"final_price"`
	Currency           string `json:"currency"`
	HeaderImage        string `json:"header_image"`
	LargeCapsuleImage  string `json:"large_capsule_image"`
	DiscountExpiration int64  `json:"discount_expiration,omitempty"`
}

type FeaturedCategory struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Items []*FeaturedItem `json:"items"`
}

type FeaturedCategories struct {
	Specials   *FeaturedCategory `json:"specials"`
	TopSellers *FeaturedCategory `json:"top_sellers"`
}

// PopularGame is a discounted game surfaced by the featured lists.
type PopularGame struct {
	AppID             int64  `json:"app_id"`
	Name              string `json:"name"`
	DiscountPercent   int    `json:"discount_percent"`
	OriginalPrice     int64  `json:"original_price"`
	FinalPrice        int64  `json:"final_price"`
	Currency          string `json:"currency"`
	HeaderImage       string `json:"header_image"`
	LargeCapsuleImage string `json:"large_capsule_image,omitempty"`
}

// itemTypeGame is the featured item type for base games (DLC, bundles etc. differ).
const itemTypeGame = 0
