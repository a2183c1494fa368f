package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MarketLine is a sportsbook's decimal-odds price for one game, with the
// vig-free implied home win probability derived from both sides.
type MarketLine struct {
	GameID          string          `json:"game_id"`
	HomeDecimalOdds decimal.Decimal `json:"home_decimal_odds"`
	AwayDecimalOdds decimal.Decimal `json:"away_decimal_odds"`
	ImpliedHomeProb float64         `json:"implied_home_prob"`
}

// MarketLineProvider fetches the market price for a game. A nil line with
// a nil error means no book has priced the game.
type MarketLineProvider interface {
	MarketLine(ctx context.Context, gameID string) (*MarketLine, error)
}

// HTTPMarketProvider reads market lines from an odds feed.
type HTTPMarketProvider struct {
	client  *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	log     *logrus.Entry
}

// NewHTTPMarketProvider creates a market line provider backed by an HTTP
// odds feed. An empty apiKey sends unauthenticated requests.
func NewHTTPMarketProvider(client *RateLimitedHTTPClient, baseURL, apiKey string, log *logrus.Logger) *HTTPMarketProvider {
	return &HTTPMarketProvider{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log.WithField("component", "market_provider"),
	}
}

type marketResponse struct {
	GameID   string `json:"game_id"`
	HomeOdds string `json:"home_odds"`
	AwayOdds string `json:"away_odds"`
}

// MarketLine fetches and normalizes the price for a game. Unpriced games
// return nil without an error.
func (p *HTTPMarketProvider) MarketLine(ctx context.Context, gameID string) (*MarketLine, error) {
	url := fmt.Sprintf("%s/games/%s/odds", p.baseURL, gameID)
	resp, err := p.client.GetWithKey(ctx, url, p.apiKey)
	if err != nil {
		return nil, fmt.Errorf("fetching market line for %s: %w", gameID, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		p.log.WithField("game_id", gameID).Debug("game not priced by market")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds feed returned %d for %s", resp.StatusCode, gameID)
	}

	var body marketResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding market line for %s: %w", gameID, err)
	}

	homeOdds, err := decimal.NewFromString(body.HomeOdds)
	if err != nil {
		return nil, fmt.Errorf("parsing home odds %q: %w", body.HomeOdds, err)
	}
	awayOdds, err := decimal.NewFromString(body.AwayOdds)
	if err != nil {
		return nil, fmt.Errorf("parsing away odds %q: %w", body.AwayOdds, err)
	}

	implied, err := ImpliedHomeProbability(homeOdds, awayOdds)
	if err != nil {
		return nil, fmt.Errorf("normalizing odds for %s: %w", gameID, err)
	}

	return &MarketLine{
		GameID:          gameID,
		HomeDecimalOdds: homeOdds,
		AwayDecimalOdds: awayOdds,
		ImpliedHomeProb: implied,
	}, nil
}

// ImpliedHomeProbability converts two-sided decimal odds into the
// vig-free home win probability: each side's raw implied probability is
// 1/odds, then both are normalized to sum to 1. Odds must exceed 1.
func ImpliedHomeProbability(homeOdds, awayOdds decimal.Decimal) (float64, error) {
	one := decimal.NewFromInt(1)
	if homeOdds.LessThanOrEqual(one) || awayOdds.LessThanOrEqual(one) {
		return 0, fmt.Errorf("decimal odds must be greater than 1, got home=%s away=%s", homeOdds, awayOdds)
	}

	homeRaw := one.Div(homeOdds)
	awayRaw := one.Div(awayOdds)
	overround := homeRaw.Add(awayRaw)

	implied, _ := homeRaw.Div(overround).Float64()
	return implied, nil
}

// StaticMarketProvider serves lines from a fixed map. Used in tests and
// offline runs.
type StaticMarketProvider struct {
	Lines map[string]MarketLine
}

// MarketLine returns the stored line, or nil when the game is unpriced.
func (p *StaticMarketProvider) MarketLine(ctx context.Context, gameID string) (*MarketLine, error) {
	if line, ok := p.Lines[gameID]; ok {
		l := line
		return &l, nil
	}
	return nil, nil
}
