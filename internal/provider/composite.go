package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
)

// CompositeScoreProvider fetches an externally computed composite rating
// for a team. A nil score with a nil error means the feed had no rating
// for the team; the caller treats that as a neutral input.
type CompositeScoreProvider interface {
	CompositeScore(ctx context.Context, teamID string) (*float64, error)
}

// HTTPCompositeProvider reads composite scores from a JSON feed.
type HTTPCompositeProvider struct {
	client  *RateLimitedHTTPClient
	baseURL string
	apiKey  string
	log     *logrus.Entry
}

// NewHTTPCompositeProvider creates a composite score provider backed by an
// HTTP feed. An empty apiKey sends unauthenticated requests.
func NewHTTPCompositeProvider(client *RateLimitedHTTPClient, baseURL, apiKey string, log *logrus.Logger) *HTTPCompositeProvider {
	return &HTTPCompositeProvider{
		client:  client,
		baseURL: baseURL,
		apiKey:  apiKey,
		log:     log.WithField("component", "composite_provider"),
	}
}

type compositeResponse struct {
	TeamID string  `json:"team_id"`
	Score  float64 `json:"score"`
}

// CompositeScore fetches a team's composite rating. A 404 from the feed is
// not an error: the team simply has no external rating yet.
func (p *HTTPCompositeProvider) CompositeScore(ctx context.Context, teamID string) (*float64, error) {
	url := fmt.Sprintf("%s/teams/%s/composite", p.baseURL, teamID)
	resp, err := p.client.GetWithKey(ctx, url, p.apiKey)
	if err != nil {
		return nil, fmt.Errorf("fetching composite score for %s: %w", teamID, err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		p.log.WithField("team_id", teamID).Debug("no composite score on feed")
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("composite feed returned %d for %s", resp.StatusCode, teamID)
	}

	var body compositeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding composite score for %s: %w", teamID, err)
	}
	if body.Score < 0 || body.Score > 1 {
		return nil, fmt.Errorf("composite score %f for %s out of range", body.Score, teamID)
	}
	return &body.Score, nil
}

// StaticCompositeProvider serves composite scores from a fixed map. Used
// in tests and offline runs.
type StaticCompositeProvider struct {
	Scores map[string]float64
}

// CompositeScore returns the stored score, or nil when the team is absent.
func (p *StaticCompositeProvider) CompositeScore(ctx context.Context, teamID string) (*float64, error) {
	if score, ok := p.Scores[teamID]; ok {
		s := score
		return &s, nil
	}
	return nil, nil
}
