// Package store keeps the optional prediction history in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/lox/raincheck/internal/models"
)

// MaxHistory caps the number of records one query returns.
const MaxHistory = 500

type Store struct {
	db     *sql.DB
	clock  clockwork.Clock
	logger *zap.Logger
}

func New(db *sql.DB, clock clockwork.Clock, logger *zap.Logger) *Store {
	return &Store{db: db, clock: clock, logger: logger}
}

// Open opens the database at path and migrates it.
func Open(path string, clock clockwork.Clock, logger *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	s := New(db, clock, logger)
	if err := s.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// InsertPrediction records a served prediction. CreatedAt defaults to now.
func (s *Store) InsertPrediction(ctx context.Context, rec models.PredictionRecord) (int64, error) {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = s.clock.Now()
	}
	obsJSON, err := json.Marshal(rec.Observation)
	if err != nil {
		return 0, fmt.Errorf("encode observation: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO predictions (observation_date, location, observation_json, label, prob_no_rain, prob_rain, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.Observation.Date().Format("2006-01-02"), rec.Observation.Location, string(obsJSON),
		rec.Prediction.Label, rec.Prediction.Probabilities[models.NoRain], rec.Prediction.Probabilities[models.Rain],
		rec.Source, rec.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("insert prediction: %w", err)
	}
	return res.LastInsertId()
}

// RecentPredictions returns up to limit records, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]models.PredictionRecord, error) {
	if limit <= 0 || limit > MaxHistory {
		limit = MaxHistory
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, observation_json, prob_no_rain, prob_rain, source, created_at
		FROM predictions
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query predictions: %w", err)
	}
	defer rows.Close()

	var records []models.PredictionRecord
	for rows.Next() {
		var (
			rec     models.PredictionRecord
			obsJSON string
			noRain  float64
			rain    float64
		)
		if err := rows.Scan(&rec.ID, &obsJSON, &noRain, &rain, &rec.Source, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(obsJSON), &rec.Observation); err != nil {
			return nil, fmt.Errorf("decode observation %d: %w", rec.ID, err)
		}
		rec.Prediction = models.NewPrediction([2]float64{noRain, rain})
		records = append(records, rec)
	}
	return records, rows.Err()
}

// LocationStats summarises stored predictions for one location.
type LocationStats struct {
	Location    string  `json:"location"`
	Predictions int     `json:"predictions"`
	RainShare   float64 `json:"rain_share"`
}

// StatsByLocation counts predictions and the share that forecast rain.
func (s *Store) StatsByLocation(ctx context.Context) ([]LocationStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT location, COUNT(*), AVG(CASE WHEN label = 1 THEN 1.0 ELSE 0.0 END)
		FROM predictions
		GROUP BY location
		ORDER BY location
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	var stats []LocationStats
	for rows.Next() {
		var st LocationStats
		if err := rows.Scan(&st.Location, &st.Predictions, &st.RainShare); err != nil {
			return nil, err
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}
