package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func testClient() *RateLimitedHTTPClient {
	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	return NewRateLimitedHTTPClient(cfg, testLogger())
}

func TestImpliedHomeProbability(t *testing.T) {
	// Even odds both sides normalize to exactly 50%.
	even := decimal.NewFromFloat(2.0)
	p, err := ImpliedHomeProbability(even, even)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, p, 1e-12)

	// A 1.50 / 2.75 line: home raw 0.6667, away raw 0.3636.
	home := decimal.NewFromFloat(1.50)
	away := decimal.NewFromFloat(2.75)
	p, err = ImpliedHomeProbability(home, away)
	require.NoError(t, err)
	assert.InDelta(t, 0.6471, p, 0.001)

	// The vig is stripped: probabilities from both perspectives sum to 1.
	q, err := ImpliedHomeProbability(away, home)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, p+q, 1e-9)
}

func TestImpliedHomeProbabilityRejectsBadOdds(t *testing.T) {
	_, err := ImpliedHomeProbability(decimal.NewFromFloat(0.9), decimal.NewFromFloat(2.0))
	assert.Error(t, err)
	_, err = ImpliedHomeProbability(decimal.NewFromFloat(2.0), decimal.NewFromInt(1))
	assert.Error(t, err)
}

func TestCompositeProviderAbsenceIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewHTTPCompositeProvider(testClient(), server.URL, "", testLogger())
	score, err := p.CompositeScore(context.Background(), "MEM")
	require.NoError(t, err)
	assert.Nil(t, score)
}

func TestCompositeProviderParsesScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/teams/MEM/composite", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"team_id":"MEM","score":0.73}`))
	}))
	defer server.Close()

	p := NewHTTPCompositeProvider(testClient(), server.URL, "", testLogger())
	score, err := p.CompositeScore(context.Background(), "MEM")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.InDelta(t, 0.73, *score, 1e-12)
}

func TestCompositeProviderRejectsOutOfRangeScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"team_id":"MEM","score":1.4}`))
	}))
	defer server.Close()

	p := NewHTTPCompositeProvider(testClient(), server.URL, "", testLogger())
	_, err := p.CompositeScore(context.Background(), "MEM")
	assert.Error(t, err)
}

func TestCompositeProviderSendsAPIKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sekrit", r.Header.Get("X-API-Key"))
		_, _ = w.Write([]byte(`{"team_id":"MEM","score":0.5}`))
	}))
	defer server.Close()

	p := NewHTTPCompositeProvider(testClient(), server.URL, "sekrit", testLogger())
	_, err := p.CompositeScore(context.Background(), "MEM")
	require.NoError(t, err)
}

func TestMarketProviderParsesLine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/games/g1/odds", r.URL.Path)
		_, _ = w.Write([]byte(`{"game_id":"g1","home_odds":"1.80","away_odds":"2.10"}`))
	}))
	defer server.Close()

	p := NewHTTPMarketProvider(testClient(), server.URL, "", testLogger())
	line, err := p.MarketLine(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, line)
	assert.Equal(t, "g1", line.GameID)
	assert.Greater(t, line.ImpliedHomeProb, 0.5)
	assert.Less(t, line.ImpliedHomeProb, 1.0)
}

func TestMarketProviderUnpricedGame(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	p := NewHTTPMarketProvider(testClient(), server.URL, "", testLogger())
	line, err := p.MarketLine(context.Background(), "g1")
	require.NoError(t, err)
	assert.Nil(t, line)
}

func TestCircuitBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	server.Close() // immediately closed so every request fails

	cfg := DefaultHTTPClientConfig()
	cfg.MaxRetries = 0
	cfg.RateLimit = 1000
	cfg.CircuitBreakerMax = 2
	client := NewRateLimitedHTTPClient(cfg, testLogger())

	ctx := context.Background()
	_, err := client.Get(ctx, server.URL)
	require.Error(t, err)
	_, err = client.Get(ctx, server.URL)
	require.Error(t, err)

	_, err = client.Get(ctx, server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

func TestClientHonorsCancelledContext(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testClient().Get(ctx, server.URL)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(0), calls.Load())
}

func TestStaticProviders(t *testing.T) {
	composite := &StaticCompositeProvider{Scores: map[string]float64{"MEM": 0.8}}
	score, err := composite.CompositeScore(context.Background(), "MEM")
	require.NoError(t, err)
	assert.Equal(t, 0.8, *score)
	missing, err := composite.CompositeScore(context.Background(), "DAL")
	require.NoError(t, err)
	assert.Nil(t, missing)

	market := &StaticMarketProvider{Lines: map[string]MarketLine{
		"g1": {GameID: "g1", ImpliedHomeProb: 0.6},
	}}
	line, err := market.MarketLine(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 0.6, line.ImpliedHomeProb)
}
