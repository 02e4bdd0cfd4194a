package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
)

func newClientForTest(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.Catalog{
		BaseURL:         server.URL,
		RequestInterval: time.Millisecond,
	}, logger.Nop())
}

func TestBuildCommanderQuery(t *testing.T) {
	tests := []struct {
		name         string
		colorFilters []string
		want         string
	}{
		{
			name:         "no filters means no identity clause",
			colorFilters: nil,
			want:         "is:commander game:paper",
		},
		{
			name:         "full selection means no identity clause",
			colorFilters: []string{"W", "U", "B", "R", "G", "C"},
			want:         "is:commander game:paper",
		},
		{
			name:         "colorless only pins identity to colorless",
			colorFilters: []string{"C"},
			want:         "is:commander game:paper id=c",
		},
		{
			name:         "colors restrict identity to subset",
			colorFilters: []string{"U", "W", "B"},
			want:         "is:commander game:paper id<=WUB",
		},
		{
			name:         "colorless alongside colors falls back to the colors",
			colorFilters: []string{"R", "C"},
			want:         "is:commander game:paper id<=R",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildCommanderQuery(tt.colorFilters))
		})
	}
}

func TestRandomCommander(t *testing.T) {
	var gotQuery string
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/random", r.URL.Path)
		gotQuery = r.URL.Query().Get("q")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "c1",
			"name": "Atraxa, Praetors' Voice",
			"image_uris": {"small": "s.jpg", "large": "l.jpg", "art_crop": "a.jpg"},
			"color_identity": ["W", "U", "B", "G"],
			"type_line": "Legendary Creature — Phyrexian Angel Horror",
			"mana_cost": "{G}{W}{U}{B}",
			"cmc": 4,
			"oracle_text": "Flying, vigilance, deathtouch, lifelink",
			"power": "4",
			"toughness": "4",
			"prices": {"usd": "18.03", "usd_foil": null, "eur": "15.50"},
			"purchase_uris": {"tcgplayer": "https://tcgplayer.example/atraxa"}
		}`))
	})

	card, err := client.RandomCommander(context.Background(), []string{"W", "U", "B", "G"})

	require.NoError(t, err)
	assert.Equal(t, "is:commander game:paper id<=WUBG", gotQuery)
	assert.Equal(t, "Atraxa, Praetors' Voice", card.Name)
	assert.Equal(t, "s.jpg", card.Image)
	assert.Equal(t, "l.jpg", card.ImageLarge)
	require.NotNil(t, card.PriceUSD)
	assert.Equal(t, "18.03", *card.PriceUSD)
	assert.Nil(t, card.PriceUSDFoil)
	assert.Equal(t, "https://tcgplayer.example/atraxa", card.PurchaseURIs["tcgplayer"])
}

func TestRandomCommander_DoubleFacedCard(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "c2",
			"name": "Valki, God of Lies // Tibalt, Cosmic Impostor",
			"card_faces": [
				{"image_uris": {"small": "front-s.jpg", "normal": "front-n.jpg"}, "oracle_text": "front text"},
				{"image_uris": {"small": "back-s.jpg"}, "oracle_text": "back text"}
			],
			"color_identity": ["B", "R"],
			"type_line": "Legendary Creature — God // Legendary Planeswalker — Tibalt"
		}`))
	})

	card, err := client.RandomCommander(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, "front-s.jpg", card.Image)
	assert.Equal(t, "front-n.jpg", card.ImageLarge)
	assert.Equal(t, "front text", card.OracleText)
}

func TestSearchCards(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "t:artifact", q.Get("q"))
		assert.Equal(t, "edhrec", q.Get("order"))
		assert.Equal(t, "desc", q.Get("dir"))
		assert.Equal(t, "2", q.Get("page"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"data": [{"id": "x1", "name": "Sol Ring", "type_line": "Artifact"}],
			"has_more": true,
			"total_cards": 431
		}`))
	})

	result, err := client.SearchCards(context.Background(), "t:artifact", SearchOptions{Page: 2})

	require.NoError(t, err)
	require.Len(t, result.Cards, 1)
	assert.Equal(t, "Sol Ring", result.Cards[0].Name)
	assert.True(t, result.HasMore)
	assert.Equal(t, 431, result.TotalCards)
}

func TestSearchCards_NoHitsIsEmptyResult(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"object": "error", "code": "not_found"}`, http.StatusNotFound)
	})

	result, err := client.SearchCards(context.Background(), "name:zzzznope", SearchOptions{})

	require.NoError(t, err)
	assert.Empty(t, result.Cards)
	assert.False(t, result.HasMore)
	assert.Zero(t, result.TotalCards)
}

func TestSearchCards_ServerErrorPropagates(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog down", http.StatusInternalServerError)
	})

	_, err := client.SearchCards(context.Background(), "t:artifact", SearchOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestCardByName(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cards/named", r.URL.Path)
		assert.Equal(t, "Sol Ring", r.URL.Query().Get("exact"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x1", "name": "Sol Ring", "type_line": "Artifact"}`))
	})

	card, err := client.CardByName(context.Background(), "Sol Ring")

	require.NoError(t, err)
	assert.Equal(t, "x1", card.ID)
}

func TestCardByName_NotFound(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := client.CardByName(context.Background(), "Not A Card")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRequestsAreRateLimited(t *testing.T) {
	client := newClientForTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": "x1", "name": "Sol Ring"}`))
	})
	client.limiter.SetLimit(20) // 50ms interval, measurable but quick
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.CardByName(ctx, "Sol Ring")
		require.NoError(t, err)
	}

	// first request is free, the next two wait one interval each
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond)
}

func TestTransformCard_Defaults(t *testing.T) {
	card := transformCard(scryfallCard{ID: "c9", Name: "Unknown"})

	assert.NotNil(t, card.ColorIdentity)
	assert.Empty(t, card.ColorIdentity)
	assert.Empty(t, card.Image)
	assert.Empty(t, card.OracleText)
	assert.Nil(t, card.PriceUSD)
}
