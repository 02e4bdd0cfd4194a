package models

import "strings"

// Card is a single Magic card as supplied by the card catalog.
// Values are immutable once fetched: the application persists cards by
// reference and never rewrites catalog data.
type Card struct {
	// ID is the catalog identifier, stable per physical printing.
	ID string `json:"id"`

	// Name is the full card name.
	Name string `json:"name"`

	// Image is the small image URL, ImageLarge the display-size URL and
	// ImageArt the art-crop URL. Any of them may be empty.
	Image      string `json:"image"`
	ImageLarge string `json:"imageLarge"`
	ImageArt   string `json:"imageArt"`

	// ColorIdentity is a subset of {W,U,B,R,G}. Order carries no
	// meaning; an empty slice means colorless.
	ColorIdentity []string `json:"colorIdentity"`

	TypeLine string  `json:"typeLine"`
	ManaCost string  `json:"manaCost"`
	CMC      float64 `json:"cmc"`

	// ScryfallURI links to the card's catalog page.
	ScryfallURI string `json:"scryfallUri,omitempty"`

	OracleText string `json:"oracleText"`

	// Power and Toughness are present on creatures only. They stay
	// strings because the catalog uses non-numeric values such as "*".
	Power     string `json:"power,omitempty"`
	Toughness string `json:"toughness,omitempty"`

	Keywords []string `json:"keywords,omitempty"`
	Rarity   string   `json:"rarity,omitempty"`
	SetName  string   `json:"setName,omitempty"`

	// Prices are decimal strings as reported by the catalog; nil when
	// the catalog has no listing.
	PriceUSD     *string `json:"priceUsd,omitempty"`
	PriceUSDFoil *string `json:"priceUsdFoil,omitempty"`
	PriceEUR     *string `json:"priceEur,omitempty"`

	// PurchaseURIs maps retailer keys to storefront URLs.
	PurchaseURIs map[string]string `json:"purchaseUris,omitempty"`
}

// IsBasicLand reports whether the card's type line denotes a basic
// land. Basic lands are exempt from the deck duplicate rule.
func (c Card) IsBasicLand() bool {
	return strings.Contains(strings.ToLower(c.TypeLine), "basic land")
}
