package predict

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lox/raincheck/internal/metrics"
	"github.com/lox/raincheck/internal/models"
)

// Cached memoizes predictions. The artifacts never change after startup, so an
// identical observation always yields the same prediction. Hits still count
// towards raincheck_predictions_total; misses are counted by next.
type Cached struct {
	next  Service
	cache *lru.Cache[models.Observation, models.Prediction]
}

func NewCached(next Service, size int) (*Cached, error) {
	cache, err := lru.New[models.Observation, models.Prediction](size)
	if err != nil {
		return nil, fmt.Errorf("create prediction cache: %w", err)
	}
	return &Cached{next: next, cache: cache}, nil
}

func (c *Cached) Predict(ctx context.Context, obs models.Observation) (models.Prediction, error) {
	if pred, ok := c.cache.Get(obs); ok {
		metrics.PredictionCache.WithLabelValues("hit").Inc()
		metrics.PredictionsTotal.WithLabelValues(pred.Text()).Inc()
		return pred, nil
	}
	metrics.PredictionCache.WithLabelValues("miss").Inc()

	pred, err := c.next.Predict(ctx, obs)
	if err != nil {
		return models.Prediction{}, err
	}
	c.cache.Add(obs, pred)
	return pred, nil
}

// Len reports the number of cached predictions.
func (c *Cached) Len() int { return c.cache.Len() }
