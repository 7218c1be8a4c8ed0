// Package predict runs the encoder and classifier for one observation.
package predict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/classifier"
	"github.com/lox/raincheck/internal/features"
	"github.com/lox/raincheck/internal/metrics"
	"github.com/lox/raincheck/internal/models"
)

// Service is anything that turns an observation into a prediction.
type Service interface {
	Predict(ctx context.Context, obs models.Observation) (models.Prediction, error)
}

// Predictor holds the loaded artifacts. It is read-only and safe for
// concurrent use.
type Predictor struct {
	encoder *features.Encoder
	model   classifier.Model
	logger  *zap.Logger
}

func New(encoder *features.Encoder, model classifier.Model, logger *zap.Logger) *Predictor {
	return &Predictor{encoder: encoder, model: model, logger: logger}
}

// Predict encodes obs and classifies it. Unknown categorical labels are logged
// and left out of the vector.
func (p *Predictor) Predict(ctx context.Context, obs models.Observation) (models.Prediction, error) {
	if err := ctx.Err(); err != nil {
		return models.Prediction{}, err
	}
	start := time.Now()

	v, misses := p.encoder.Encode(obs)
	for _, m := range misses {
		metrics.EncodeUnknownCategory.WithLabelValues(m.Category).Inc()
		p.logger.Warn("unknown category label, one-hot left empty",
			zap.String("category", m.Category),
			zap.String("label", m.Label))
	}

	probs, err := p.model.PredictProba(v.Slice())
	if err != nil {
		metrics.PredictionErrors.Inc()
		return models.Prediction{}, fmt.Errorf("classify: %w", err)
	}
	if len(probs) != 2 {
		metrics.PredictionErrors.Inc()
		return models.Prediction{}, fmt.Errorf("classify: got %d class probabilities, want 2", len(probs))
	}

	pred := models.NewPrediction([2]float64{probs[models.NoRain], probs[models.Rain]})
	metrics.PredictionLatency.Observe(time.Since(start).Seconds())
	metrics.PredictionsTotal.WithLabelValues(pred.Text()).Inc()

	p.logger.Debug("prediction",
		zap.String("location", obs.Location),
		zap.String("date", obs.Date().Format(time.DateOnly)),
		zap.String("label", pred.Text()),
		zap.Float64("confidence", pred.Confidence))
	return pred, nil
}
