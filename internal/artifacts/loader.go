// Package artifacts downloads, caches and decodes the fitted scaler and the
// trained classifier. Both are loaded once at startup.
package artifacts

import (
	"context"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/lox/raincheck/internal/classifier"
	"github.com/lox/raincheck/internal/config"
	"github.com/lox/raincheck/internal/features"
	"github.com/lox/raincheck/internal/metrics"
)

// Set is the pair of read-only artifacts the predictor needs.
type Set struct {
	Scaler     *features.Scaler
	Model      classifier.Model
	ScalerPath string
	ModelPath  string
	LoadedAt   time.Time
}

// Loader fetches artifacts into the cache and decodes them.
type Loader struct {
	cfg     config.Artifacts
	cache   *Cache
	fetcher Fetcher
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewLoader prepares the cache and, unless offline, the fetcher.
func NewLoader(cfg config.Artifacts, clock clockwork.Clock, logger *zap.Logger) (*Loader, error) {
	if err := cfg.Check(); err != nil {
		return nil, err
	}
	cache, err := NewCache(cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	l := &Loader{cfg: cfg, cache: cache, clock: clock, logger: logger}
	if !cfg.Offline {
		f, err := NewFetcher(cfg.URL, cfg.FetchTimeout, cfg.FetchRetries, logger)
		if err != nil {
			return nil, err
		}
		l.fetcher = f
	}
	return l, nil
}

// WithFetcher replaces the fetcher, for tests and alternative stores.
func (l *Loader) WithFetcher(f Fetcher) *Loader {
	l.fetcher = f
	return l
}

// Download fetches both artifacts into the cache.
func (l *Loader) Download(ctx context.Context) error {
	if l.fetcher == nil {
		return fmt.Errorf("no artifact store configured (offline)")
	}
	if err := l.download(ctx, "scaler", l.cfg.ScalerID, l.cfg.ScalerFile); err != nil {
		return err
	}
	return l.download(ctx, "model", l.cfg.ModelID, l.cfg.ModelFile)
}

func (l *Loader) download(ctx context.Context, artifact, id, file string) error {
	l.logger.Info("downloading artifact", zap.String("artifact", artifact), zap.String("id", id), zap.String("file", l.cache.Path(file)))
	start := l.clock.Now()

	data, err := l.fetcher.Fetch(ctx, id)
	metrics.ArtifactFetchLatency.WithLabelValues(artifact).Observe(l.clock.Since(start).Seconds())
	if err != nil {
		metrics.ArtifactFetchTotal.WithLabelValues(artifact, "error").Inc()
		return fmt.Errorf("download %s: %w", artifact, err)
	}
	metrics.ArtifactFetchTotal.WithLabelValues(artifact, "ok").Inc()

	if err := l.cache.Write(file, data); err != nil {
		return err
	}
	l.logger.Info("artifact downloaded", zap.String("artifact", artifact), zap.Int("bytes", len(data)))
	return nil
}

// Load downloads the artifacts unless offline, then decodes them from the cache.
func (l *Loader) Load(ctx context.Context) (*Set, error) {
	if !l.cfg.Offline {
		if err := l.Download(ctx); err != nil {
			return nil, err
		}
	}

	scalerData, err := l.cache.Read(l.cfg.ScalerFile)
	if err != nil {
		return nil, err
	}
	scaler, err := DecodeScaler(l.cfg.ScalerFile, scalerData)
	if err != nil {
		return nil, err
	}

	modelData, err := l.cache.Read(l.cfg.ModelFile)
	if err != nil {
		return nil, err
	}
	model, err := DecodeModel(l.cfg.ModelFile, modelData)
	if err != nil {
		return nil, err
	}

	set := &Set{
		Scaler:     scaler,
		Model:      model,
		ScalerPath: l.cache.Path(l.cfg.ScalerFile),
		ModelPath:  l.cache.Path(l.cfg.ModelFile),
		LoadedAt:   l.clock.Now(),
	}
	l.logger.Info("artifacts loaded", zap.String("model_kind", model.Kind()), zap.String("model", set.ModelPath), zap.String("scaler", set.ScalerPath))
	return set, nil
}
