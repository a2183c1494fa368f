package calibration

import (
	"sort"

	"github.com/blazesportsintel/prediction-engine/internal/models"
)

// highlightCount is how many best and worst predictions a backtest
// surfaces for review.
const highlightCount = 5

// Backtest replays a historical sample window and surfaces the five most
// confident correct calls and the five most confident misses alongside the
// full calibration result.
func (e *Engine) Backtest(window string, samples []models.PredictionSample) (models.BacktestReport, error) {
	result, err := e.Evaluate(samples)
	if err != nil {
		return models.BacktestReport{}, err
	}

	var hits, misses []models.BacktestHighlight
	for _, s := range samples {
		h := models.BacktestHighlight{
			GameID:               s.GameID,
			PredictedProbability: s.PredictedProbability,
			Confidence:           s.Confidence,
			HomeWon:              s.HomeWon,
			Correct:              predictedCorrectly(s),
		}
		if h.Correct {
			hits = append(hits, h)
		} else {
			misses = append(misses, h)
		}
	}

	byConfidence := func(list []models.BacktestHighlight) func(a, b int) bool {
		return func(a, b int) bool { return list[a].Confidence > list[b].Confidence }
	}
	sort.SliceStable(hits, byConfidence(hits))
	sort.SliceStable(misses, byConfidence(misses))

	return models.BacktestReport{
		Window:      window,
		Result:      result,
		Best:        truncate(hits, highlightCount),
		Worst:       truncate(misses, highlightCount),
		GeneratedAt: e.now(),
	}, nil
}

func truncate(list []models.BacktestHighlight, n int) []models.BacktestHighlight {
	if len(list) <= n {
		return list
	}
	return list[:n]
}
