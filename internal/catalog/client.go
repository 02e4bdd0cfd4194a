// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package catalog is the read-only client for the Scryfall card
// catalog. It wraps the raw HTTP API behind three calls the rest of
// the application needs: a random commander draw, a card search and an
// exact-name lookup. All calls share a single rate limiter because
// Scryfall asks clients to keep 50-100ms between requests.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/tobeck/manasink/internal/config"
	"github.com/tobeck/manasink/internal/logger"
	"github.com/tobeck/manasink/models"
)

// ErrNotFound is returned when the catalog has no card matching the
// request. Searches swallow it and return an empty result instead.
var ErrNotFound = errors.New("card not found in catalog")

// colorSymbols in WUBRG order, the order Scryfall expects inside an
// identity clause.
var colorSymbols = []string{"W", "U", "B", "R", "G"}

// Client talks to the card catalog.
type Client struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *logger.Logger
}

// NewClient builds a catalog client from configuration. The request
// interval drives the shared rate limiter; one request may run ahead
// of the clock so the first call never waits.
func NewClient(cfg config.Catalog, log *logger.Logger) *Client {
	interval := cfg.RequestInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(15 * time.Second)

	return &Client{
		client:  cli,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  log,
	}
}

// SearchOptions tune a catalog search. Zero values fall back to the
// catalog defaults used for deck building: EDHREC rank, descending.
type SearchOptions struct {
	Order string
	Dir   string
	Page  int
}

// SearchResult is one page of a card search.
type SearchResult struct {
	Cards      []models.Card
	HasMore    bool
	TotalCards int
}

// RandomCommander draws one random commander-legal card matching the
// given color identity filters.
func (c *Client) RandomCommander(ctx context.Context, colorFilters []string) (models.Card, error) {
	resp, err := c.limitedRequest(ctx).
		SetQueryParam("q", buildCommanderQuery(colorFilters)).
		Get("/cards/random")
	if err != nil {
		return models.Card{}, fmt.Errorf("random commander request: %w", err)
	}
	if err = mapCatalogError(resp); err != nil {
		return models.Card{}, err
	}

	var card scryfallCard
	if err = json.Unmarshal(resp.Body(), &card); err != nil {
		return models.Card{}, fmt.Errorf("decode random commander response: %w", err)
	}
	return transformCard(card), nil
}

// SearchCards runs a full-text catalog search. A search with no hits
// is an empty result, not an error.
func (c *Client) SearchCards(ctx context.Context, query string, opts SearchOptions) (SearchResult, error) {
	if opts.Order == "" {
		opts.Order = "edhrec"
	}
	if opts.Dir == "" {
		opts.Dir = "desc"
	}

	req := c.limitedRequest(ctx).
		SetQueryParam("q", query).
		SetQueryParam("order", opts.Order).
		SetQueryParam("dir", opts.Dir)
	if opts.Page > 0 {
		req.SetQueryParam("page", strconv.Itoa(opts.Page))
	}

	resp, err := req.Get("/cards/search")
	if err != nil {
		return SearchResult{}, fmt.Errorf("search request: %w", err)
	}
	if err = mapCatalogError(resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return SearchResult{Cards: []models.Card{}}, nil
		}
		return SearchResult{}, err
	}

	var page scryfallList
	if err = json.Unmarshal(resp.Body(), &page); err != nil {
		return SearchResult{}, fmt.Errorf("decode search response: %w", err)
	}

	result := SearchResult{
		Cards:      make([]models.Card, 0, len(page.Data)),
		HasMore:    page.HasMore,
		TotalCards: page.TotalCards,
	}
	for _, card := range page.Data {
		result.Cards = append(result.Cards, transformCard(card))
	}
	return result, nil
}

// CardByName looks a card up by its exact name.
func (c *Client) CardByName(ctx context.Context, name string) (models.Card, error) {
	resp, err := c.limitedRequest(ctx).
		SetQueryParam("exact", name).
		Get("/cards/named")
	if err != nil {
		return models.Card{}, fmt.Errorf("card by name request: %w", err)
	}
	if err = mapCatalogError(resp); err != nil {
		return models.Card{}, err
	}

	var card scryfallCard
	if err = json.Unmarshal(resp.Body(), &card); err != nil {
		return models.Card{}, fmt.Errorf("decode card by name response: %w", err)
	}
	return transformCard(card), nil
}

func (c *Client) limitedRequest(ctx context.Context) *resty.Request {
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Debug().Err(err).Str("func", "Client.limitedRequest").Msg("rate limiter wait interrupted")
	}
	return c.client.R().SetContext(ctx)
}

// buildCommanderQuery renders the color filter selection as a catalog
// query. All-six or empty selections add no identity clause; colorless
// alone pins identity to exactly colorless; otherwise the identity must
// fit inside the chosen colors.
func buildCommanderQuery(colorFilters []string) string {
	query := "is:commander game:paper"

	if len(colorFilters) == 0 || len(colorFilters) >= 6 {
		return query
	}

	selected := make(map[string]bool, len(colorFilters))
	for _, symbol := range colorFilters {
		selected[symbol] = true
	}

	var colors strings.Builder
	for _, symbol := range colorSymbols {
		if selected[symbol] {
			colors.WriteString(symbol)
		}
	}

	switch {
	case colors.Len() == 0 && selected[models.ColorColorless]:
		query += " id=c"
	case colors.Len() > 0:
		query += " id<=" + colors.String()
	}
	return query
}

func mapCatalogError(resp *resty.Response) error {
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	if resp.StatusCode() == http.StatusNotFound {
		return ErrNotFound
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(resp.StatusCode())
	}
	return fmt.Errorf("catalog http %d: %s", resp.StatusCode(), body)
}
