// Package currency maps countries to storefront regions and formats minor-unit prices.
package currency

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

//go:embed regions.yaml
var regionsYAML []byte

type Region struct {
	Country    string `yaml:"country" json:"country"`
	SteamCC    string `yaml:"steam_cc" json:"country_code"`
	Currency   string `yaml:"currency" json:"currency"`
	Name       string `yaml:"name" json:"name"`
	Symbol     string `yaml:"symbol" json:"symbol"`
	Selectable bool   `yaml:"selectable" json:"-"`
}

type table struct {
	Default string   `yaml:"default"`
	Regions []Region `yaml:"regions"`
}

var (
	loadOnce  sync.Once
	loaded    table
	byCountry map[string]Region
)

func regions() (table, map[string]Region) {
	loadOnce.Do(func() {
		if err := yaml.Unmarshal(regionsYAML, &loaded); err != nil {
			panic(fmt.Sprintf("currency: invalid embedded regions.yaml: %v", err))
		}
		byCountry = lo.SliceToMap(loaded.Regions, func(r Region) (string, Region) { return r.Country, r })
	})
	return loaded, byCountry
}

// Lookup resolves a country or storefront code (case-insensitive) to its region,
// falling back to the default region.
func Lookup(code string) Region {
	t, m := regions()
	if r, ok := m[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return r
	}
	return m[t.Default]
}

// SteamCountryCode returns the storefront "cc" parameter for a country code.
func SteamCountryCode(code string) string {
	return Lookup(code).SteamCC
}

// Selectable lists the regions offered in the region picker.
func Selectable() []Region {
	t, _ := regions()
	return lo.Filter(t.Regions, func(r Region, _ int) bool { return r.Selectable })
}

// Amount converts minor units (cents) to a decimal amount. The store reports every
// currency, including zero-decimal ones, multiplied by 100.
func Amount(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}

// Format renders a minor-unit price, e.g. Format(1999, "USD") == "$19.99".
// Unknown currencies render as "19.99 XYZ".
func Format(minor int64, code string) string {
	amount := Amount(minor).StringFixed(2)
	t, _ := regions()
	for _, r := range t.Regions {
		if strings.EqualFold(r.Currency, code) {
			return r.Symbol + amount
		}
	}
	return amount + " " + strings.ToUpper(code)
}
