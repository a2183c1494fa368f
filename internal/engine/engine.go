package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/blazesportsintel/prediction-engine/internal/metrics"
	"github.com/blazesportsintel/prediction-engine/internal/mlmodel"
	"github.com/blazesportsintel/prediction-engine/internal/models"
	"github.com/blazesportsintel/prediction-engine/internal/provider"
	"github.com/blazesportsintel/prediction-engine/internal/psychology"
	"github.com/blazesportsintel/prediction-engine/internal/repository"
	"github.com/blazesportsintel/prediction-engine/internal/simulation"
)

// Config holds the orchestrator's tunables. The three blend weights must
// sum to at most 1.
type Config struct {
	MonteCarloWeight float64
	ModelWeight      float64
	PsychologyWeight float64
	CacheTTL         time.Duration
	CacheMaxSize     int
	BatchParallelism int
	Simulation       simulation.Config
}

// DefaultConfig returns the production blend and cache settings.
func DefaultConfig() Config {
	return Config{
		MonteCarloWeight: 0.35,
		ModelWeight:      0.50,
		PsychologyWeight: 0.15,
		CacheTTL:         time.Hour,
		CacheMaxSize:     10000,
		BatchParallelism: 8,
		Simulation: simulation.Config{
			Iterations: simulation.DefaultIterations,
			HomeEdge:   0.04,
		},
	}
}

// PredictionRequest identifies one matchup to predict.
type PredictionRequest struct {
	HomeTeamID string                  `json:"home_team_id" validate:"required"`
	AwayTeamID string                  `json:"away_team_id" validate:"required"`
	Game       models.GameContext      `json:"game"`
	Tier       models.SubscriptionTier `json:"tier"`
}

// Engine runs the prediction pipeline end to end.
type Engine struct {
	cfg       Config
	repos     repository.Repositories
	cache     *PredictionCache
	composite provider.CompositeScoreProvider
	market    provider.MarketLineProvider
	log       *logrus.Entry
	now       func() time.Time
}

// NewEngine creates a prediction engine. The composite and market
// providers are optional; a nil clock defaults to time.Now.
func NewEngine(cfg Config, repos repository.Repositories, composite provider.CompositeScoreProvider, market provider.MarketLineProvider, log *logrus.Logger, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{
		cfg:       cfg,
		repos:     repos,
		cache:     NewPredictionCache(cfg.CacheTTL, cfg.CacheMaxSize),
		composite: composite,
		market:    market,
		log:       log.WithField("component", "engine"),
		now:       now,
	}
}

// signals carries the outputs of the three parallel predictors.
type signals struct {
	simulation simulation.AggregatedSimulation
	model      mlmodel.ModelPrediction
	psychAdj   float64
	marketLine *provider.MarketLine
}

// PredictGame runs the full pipeline for one game: cache check, state
// load, feature extraction, parallel signal computation, blending,
// derivation, persistence. The returned record is redacted by tier.
func (e *Engine) PredictGame(ctx context.Context, req PredictionRequest) (*models.GamePrediction, error) {
	if err := validateRequest(req); err != nil {
		metrics.RecordPredictionError("validation")
		return nil, err
	}

	key := CacheKey{GameID: req.Game.GameID, ModelVersion: mlmodel.ModelVersion}
	if cached := e.cache.Get(key); cached != nil {
		metrics.RecordCacheHit()
		e.log.WithField("game_id", req.Game.GameID).Debug("prediction cache hit")
		return RedactForTier(cached, req.Tier), nil
	}
	metrics.RecordCacheMiss()

	started := e.now()

	home, err := e.loadTeamState(ctx, req.HomeTeamID, req.Game.Sport, req.Game.Season)
	if err != nil {
		metrics.RecordPredictionError("team_state")
		return nil, fmt.Errorf("loading home team %s: %w", req.HomeTeamID, err)
	}
	away, err := e.loadTeamState(ctx, req.AwayTeamID, req.Game.Sport, req.Game.Season)
	if err != nil {
		metrics.RecordPredictionError("team_state")
		return nil, fmt.Errorf("loading away team %s: %w", req.AwayTeamID, err)
	}

	homeComposite := e.fetchComposite(ctx, req.HomeTeamID)
	awayComposite := e.fetchComposite(ctx, req.AwayTeamID)
	features := mlmodel.ExtractFeatures(home, away, req.Game, homeComposite, awayComposite)

	sig, err := e.computeSignals(ctx, home, away, req.Game, features)
	if err != nil {
		metrics.RecordPredictionError("signals")
		return nil, err
	}

	probability := e.blend(sig)
	prediction := e.assemble(req, home, away, features, sig, probability, homeComposite, awayComposite)
	prediction.ComputeTimeMS = e.now().Sub(started).Milliseconds()

	// A storage hiccup must not cost the caller the computed record, but
	// it cannot pass silently either: the record is handed back alongside
	// ErrNotPersisted so the caller decides whether to retry the save.
	// It is not cached, so a retry recomputes and persists.
	if err := e.repos.Predictions.Insert(ctx, prediction); err != nil {
		metrics.RecordPredictionError("persist")
		e.log.WithField("game_id", req.Game.GameID).WithError(err).Warn("failed to persist prediction")
		return RedactForTier(prediction, req.Tier), fmt.Errorf("%w: game %s: %v", models.ErrNotPersisted, req.Game.GameID, err)
	}
	e.cache.Set(key, prediction)

	metrics.RecordPrediction(string(req.Game.Sport), e.now().Sub(started).Seconds())
	e.log.WithFields(logrus.Fields{
		"game_id":     req.Game.GameID,
		"sport":       req.Game.Sport,
		"probability": prediction.HomeWinProbability,
		"latency_ms":  prediction.ComputeTimeMS,
	}).Info("prediction computed")

	return RedactForTier(prediction, req.Tier), nil
}

// PredictBatch predicts a set of games concurrently, preserving input
// order in the result. The first failure cancels the remaining work.
func (e *Engine) PredictBatch(ctx context.Context, requests []PredictionRequest) ([]*models.GamePrediction, error) {
	results := make([]*models.GamePrediction, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.BatchParallelism)
	for i, req := range requests {
		i, req := i, req
		g.Go(func() error {
			prediction, err := e.PredictGame(gctx, req)
			if err != nil {
				return fmt.Errorf("game %s: %w", req.Game.GameID, err)
			}
			results[i] = prediction
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// UpdateTeamStateAfterGame folds a completed game into the team's record
// and psychology and persists the new state.
func (e *Engine) UpdateTeamStateAfterGame(ctx context.Context, teamID string, sport models.Sport, season int, outcome models.GameOutcome) (*models.TeamState, error) {
	state, err := e.loadTeamState(ctx, teamID, sport, season)
	if err != nil {
		return nil, fmt.Errorf("loading team %s: %w", teamID, err)
	}

	before := state.Psych.Confidence
	state.Psych = psychology.UpdateState(state.Psych, outcome)
	psychology.ApplyGameToRecord(state, outcome)

	if err := e.repos.TeamStates.Upsert(ctx, state); err != nil {
		return nil, fmt.Errorf("saving team %s: %w", teamID, err)
	}

	metrics.RecordStateUpdate()
	e.log.WithFields(logrus.Fields{
		"team_id":          teamID,
		"won":              outcome.Won(),
		"was_upset":        outcome.WasUpset,
		"confidence_delta": state.Psych.Confidence - before,
	}).Info("team state updated")

	return state, nil
}

// RecordGameOutcome stores the real result against every prediction made
// for a game so calibration can score them.
func (e *Engine) RecordGameOutcome(ctx context.Context, gameID string, homeWon bool) error {
	return e.repos.Predictions.RecordOutcome(ctx, gameID, homeWon)
}

// CacheStats exposes cache hit statistics.
func (e *Engine) CacheStats() (hits, misses uint64, ratio float64) {
	return e.cache.Stats()
}

// computeSignals runs the three predictors concurrently. The market fetch
// rides along but its failure only logs; predictions never depend on a
// sportsbook being reachable.
func (e *Engine) computeSignals(ctx context.Context, home, away *models.TeamState, gameCtx models.GameContext, features models.MLFeatures) (signals, error) {
	var sig signals

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		simStart := e.now()
		sig.simulation = simulation.SimulateGame(home, away, gameCtx, e.cfg.Simulation)
		metrics.SimulationDuration.Observe(e.now().Sub(simStart).Seconds())
		return nil
	})
	g.Go(func() error {
		sig.model = mlmodel.PredictWithConfidence(features)
		return nil
	})
	g.Go(func() error {
		sig.psychAdj = psychology.Adjustment(home.Psych, away.Psych, gameCtx)
		return nil
	})
	if e.market != nil {
		g.Go(func() error {
			line, err := e.market.MarketLine(gctx, gameCtx.GameID)
			if err != nil {
				e.log.WithField("game_id", gameCtx.GameID).WithError(err).Warn("market line unavailable")
				return nil
			}
			sig.marketLine = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return signals{}, err
	}
	return sig, nil
}

// blend combines the three signals into the final home win probability.
// The psychology term is a probability-shaped nudge around 0.5 so that
// neutral psychology contributes exactly its weight's share of a coin
// flip. The result is clamped into [0.03, 0.97]: no game is ever certain.
func (e *Engine) blend(sig signals) float64 {
	psychSignal := 0.5 + sig.psychAdj
	p := e.cfg.MonteCarloWeight*sig.simulation.HomeWinProbability +
		e.cfg.ModelWeight*sig.model.Probability +
		e.cfg.PsychologyWeight*psychSignal
	return clampProbability(p)
}

func (e *Engine) assemble(req PredictionRequest, home, away *models.TeamState, features models.MLFeatures, sig signals, probability float64, homeComposite, awayComposite *float64) *models.GamePrediction {
	attributions := mlmodel.CalculateShapValues(features)

	prediction := &models.GamePrediction{
		ID:                 uuid.New(),
		GameID:             req.Game.GameID,
		Sport:              req.Game.Sport,
		PredictedAt:        e.now(),
		Home:               snapshot(home, homeComposite),
		Away:               snapshot(away, awayComposite),
		HomeWinProbability: probability,
		AwayWinProbability: clampProbability(1 - probability),
		Interval:           simulation.ConfidenceInterval(probability, sig.simulation.Iterations),
		PredictedSpread:    mlmodel.PredictSpread(probability, req.Game.Sport),
		SpreadConfidence:   spreadConfidence(sig.simulation),
		PredictedTotal:     mlmodel.PredictTotal(home, away, req.Game),
		Explanation:        buildExplanation(home.TeamID, away.TeamID, probability, attributions),
		ShapSummary:        attributions,
		ModelVersion:       mlmodel.ModelVersion,
		SimulationCount:    sig.simulation.Iterations,
		RatingDiff:         features.RatingDiff,
	}
	if sig.marketLine != nil {
		implied := sig.marketLine.ImpliedHomeProb
		prediction.MarketProbability = &implied
	}
	return prediction
}

func (e *Engine) loadTeamState(ctx context.Context, teamID string, sport models.Sport, season int) (*models.TeamState, error) {
	state, err := e.repos.TeamStates.GetByTeamAndSeason(ctx, teamID, sport, season)
	if errors.Is(err, models.ErrNotFound) {
		// First sighting of a team starts from the neutral baseline.
		return models.NewTeamState(teamID, sport, season), nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// fetchComposite asks the external feed for a team's composite score.
// Absence and feed failures both yield nil; the feature extractor treats
// nil as neutral.
func (e *Engine) fetchComposite(ctx context.Context, teamID string) *float64 {
	if e.composite == nil {
		return nil
	}
	score, err := e.composite.CompositeScore(ctx, teamID)
	if err != nil {
		e.log.WithField("team_id", teamID).WithError(err).Warn("composite score unavailable")
		return nil
	}
	return score
}

func validateRequest(req PredictionRequest) error {
	if req.HomeTeamID == "" || req.AwayTeamID == "" {
		return fmt.Errorf("%w: both team ids are required", models.ErrInvalidInput)
	}
	if req.HomeTeamID == req.AwayTeamID {
		return fmt.Errorf("%w: a team cannot play itself", models.ErrInvalidInput)
	}
	if req.Game.GameID == "" {
		return fmt.Errorf("%w: game id is required", models.ErrInvalidInput)
	}
	if !req.Game.Sport.Valid() {
		return fmt.Errorf("%w: %q", models.ErrUnknownSport, req.Game.Sport)
	}
	return nil
}

func snapshot(team *models.TeamState, composite *float64) models.TeamSnapshot {
	return models.TeamSnapshot{
		TeamID:                 team.TeamID,
		Record:                 fmt.Sprintf("%d-%d", team.Wins, team.Losses),
		Psych:                  team.Psych,
		PythagoreanExpectation: team.PythagoreanExpectation,
		CompositeScore:         composite,
	}
}

// spreadConfidence maps simulated spread dispersion into (0,1]: tighter
// score distributions make the spread estimate more trustworthy.
func spreadConfidence(sim simulation.AggregatedSimulation) float64 {
	if sim.SpreadStdDev <= 0 {
		return 1
	}
	return 1 / (1 + sim.SpreadStdDev/10)
}

func buildExplanation(homeID, awayID string, probability float64, attributions []models.FactorAttribution) string {
	favored, other, p := homeID, awayID, probability
	if probability < 0.5 {
		favored, other, p = awayID, homeID, 1-probability
	}
	top := mlmodel.TopFactors(attributions, 1)
	if len(top) == 0 || top[0].Magnitude == 0 {
		return fmt.Sprintf("%s favored at %.1f%% over %s in an even matchup.", favored, p*100, other)
	}
	return fmt.Sprintf("%s favored at %.1f%% over %s; biggest factor: %s.", favored, p*100, other, top[0].DisplayName)
}

func clampProbability(p float64) float64 {
	if p < models.MinProbability {
		return models.MinProbability
	}
	if p > models.MaxProbability {
		return models.MaxProbability
	}
	return p
}
