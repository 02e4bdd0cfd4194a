package catalog

import "github.com/tobeck/manasink/models"

// scryfallCard is the subset of the catalog's card object we consume.
// Double-faced cards carry their imagery and oracle text on card_faces
// instead of the top level.
type scryfallCard struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	ImageURIs     *scryfallImages   `json:"image_uris,omitempty"`
	CardFaces     []scryfallFace    `json:"card_faces,omitempty"`
	ColorIdentity []string          `json:"color_identity"`
	TypeLine      string            `json:"type_line"`
	ManaCost      string            `json:"mana_cost"`
	CMC           float64           `json:"cmc"`
	ScryfallURI   string            `json:"scryfall_uri"`
	OracleText    string            `json:"oracle_text"`
	Power         string            `json:"power"`
	Toughness     string            `json:"toughness"`
	Keywords      []string          `json:"keywords"`
	Rarity        string            `json:"rarity"`
	SetName       string            `json:"set_name"`
	Prices        scryfallPrices    `json:"prices"`
	PurchaseURIs  map[string]string `json:"purchase_uris"`
}

type scryfallFace struct {
	ImageURIs  *scryfallImages `json:"image_uris,omitempty"`
	OracleText string          `json:"oracle_text"`
}

type scryfallImages struct {
	Small   string `json:"small"`
	Normal  string `json:"normal"`
	Large   string `json:"large"`
	ArtCrop string `json:"art_crop"`
}

type scryfallPrices struct {
	USD     *string `json:"usd"`
	USDFoil *string `json:"usd_foil"`
	EUR     *string `json:"eur"`
}

type scryfallList struct {
	Data       []scryfallCard `json:"data"`
	HasMore    bool           `json:"has_more"`
	TotalCards int            `json:"total_cards"`
}

// transformCard maps a catalog card onto the application model,
// falling back to the front face for imagery and oracle text on
// double-faced cards.
func transformCard(card scryfallCard) models.Card {
	images := card.ImageURIs
	if images == nil && len(card.CardFaces) > 0 {
		images = card.CardFaces[0].ImageURIs
	}
	if images == nil {
		images = &scryfallImages{}
	}

	large := images.Large
	if large == "" {
		large = images.Normal
	}

	oracle := card.OracleText
	if oracle == "" && len(card.CardFaces) > 0 {
		oracle = card.CardFaces[0].OracleText
	}

	colorIdentity := card.ColorIdentity
	if colorIdentity == nil {
		colorIdentity = []string{}
	}

	return models.Card{
		ID:            card.ID,
		Name:          card.Name,
		Image:         images.Small,
		ImageLarge:    large,
		ImageArt:      images.ArtCrop,
		ColorIdentity: colorIdentity,
		TypeLine:      card.TypeLine,
		ManaCost:      card.ManaCost,
		CMC:           card.CMC,
		ScryfallURI:   card.ScryfallURI,
		OracleText:    oracle,
		Power:         card.Power,
		Toughness:     card.Toughness,
		Keywords:      card.Keywords,
		Rarity:        card.Rarity,
		SetName:       card.SetName,
		PriceUSD:      card.Prices.USD,
		PriceUSDFoil:  card.Prices.USDFoil,
		PriceEUR:      card.Prices.EUR,
		PurchaseURIs:  card.PurchaseURIs,
	}
}
