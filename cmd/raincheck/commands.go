package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lox/raincheck/internal/api"
	"github.com/lox/raincheck/internal/artifacts"
	"github.com/lox/raincheck/internal/config"
	"github.com/lox/raincheck/internal/features"
	"github.com/lox/raincheck/internal/i18n"
	"github.com/lox/raincheck/internal/models"
	"github.com/lox/raincheck/internal/narrative"
	"github.com/lox/raincheck/internal/predict"
	"github.com/lox/raincheck/internal/store"
)

// loadPredictor fetches and decodes the artifacts and wires the encoder and
// classifier together.
func loadPredictor(ctx context.Context, cfg config.Artifacts, clock clockwork.Clock, logger *zap.Logger) (*predict.Predictor, *artifacts.Set, error) {
	loader, err := artifacts.NewLoader(cfg, clock, logger)
	if err != nil {
		return nil, nil, err
	}
	set, err := loader.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	return predict.New(features.NewEncoder(set.Scaler), set.Model, logger), set, nil
}

type ServeCmd struct {
	Artifacts config.Artifacts `embed:""`
	Server    config.Server    `embed:""`
}

func (c *ServeCmd) Run(ctx context.Context, clock clockwork.Clock, logger *zap.Logger) error {
	if err := c.Server.Check(); err != nil {
		return err
	}

	predictor, set, err := loadPredictor(ctx, c.Artifacts, clock, logger)
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}
	cached, err := predict.NewCached(predictor, c.Server.CacheSize)
	if err != nil {
		return err
	}

	var history *store.Store
	if c.Server.HistoryDB != "" {
		history, err = store.Open(c.Server.HistoryDB, clock, logger)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer history.Close()
		logger.Info("prediction history enabled", zap.String("path", c.Server.HistoryDB))
	}

	var narrator narrative.Narrator = narrative.Template{}
	if c.Server.OpenAIKey != "" {
		narrator = narrative.NewOpenAI(c.Server.OpenAIKey, c.Server.OpenAIModel, narrative.Template{}, logger)
		logger.Info("LLM narratives enabled", zap.String("model", c.Server.OpenAIModel))
	}

	server := api.NewServer(api.Options{
		Predictor: cached,
		Narrator:  narrator,
		History:   history,
		Artifacts: api.ArtifactInfo{
			ModelKind:  set.Model.Kind(),
			ModelPath:  set.ModelPath,
			ScalerPath: set.ScalerPath,
			LoadedAt:   set.LoadedAt,
		},
		Clock:  clock,
		Logger: logger,
	})
	return server.Run(ctx, c.Server.Addr, c.Server.ShutdownTimeout)
}

type PredictCmd struct {
	Artifacts config.Artifacts `embed:""`

	Date          string  `help:"Observation date (YYYY-MM-DD); defaults to today."`
	Location      string  `help:"Weather station." default:"Adelaide"`
	RainToday     bool    `help:"It rained today."`
	MinTemp       float64 `help:"Minimum temperature (°C)." default:"10"`
	MaxTemp       float64 `help:"Maximum temperature (°C)." default:"20"`
	Rainfall      float64 `help:"Rainfall (mm)." default:"0"`
	WindGustDir   string  `help:"Wind gust direction." default:"E"`
	WindGustSpeed float64 `help:"Wind gust speed (km/h)." default:"40"`
	WindDir9am    string  `name:"wind-dir-9am" help:"Wind direction at 9am." default:"E"`
	WindDir3pm    string  `name:"wind-dir-3pm" help:"Wind direction at 3pm." default:"E"`
	WindSpeed9am  float64 `name:"wind-speed-9am" help:"Wind speed at 9am (km/h)." default:"20"`
	WindSpeed3pm  float64 `name:"wind-speed-3pm" help:"Wind speed at 3pm (km/h)." default:"20"`
	Humidity9am   int     `name:"humidity-9am" help:"Humidity at 9am (%)." default:"70"`
	Humidity3pm   int     `name:"humidity-3pm" help:"Humidity at 3pm (%)." default:"50"`
	Pressure9am   float64 `name:"pressure-9am" help:"Pressure at 9am (hPa)." default:"1010"`
	Pressure3pm   float64 `name:"pressure-3pm" help:"Pressure at 3pm (hPa)." default:"1005"`
	Temp9am       float64 `name:"temp-9am" help:"Temperature at 9am (°C)." default:"15"`
	Temp3pm       float64 `name:"temp-3pm" help:"Temperature at 3pm (°C)." default:"25"`

	Lang string `help:"Language of the explanation." default:"en" enum:"en,id"`
	JSON bool   `name:"json" help:"Print the result as JSON."`
}

// Observation builds the record described by the flags.
func (c *PredictCmd) Observation(today time.Time) (models.Observation, error) {
	obs := models.Observation{
		MinTemp:       c.MinTemp,
		MaxTemp:       c.MaxTemp,
		Rainfall:      c.Rainfall,
		WindGustSpeed: c.WindGustSpeed,
		WindSpeed9am:  c.WindSpeed9am,
		WindSpeed3pm:  c.WindSpeed3pm,
		Humidity9am:   c.Humidity9am,
		Humidity3pm:   c.Humidity3pm,
		Pressure9am:   c.Pressure9am,
		Pressure3pm:   c.Pressure3pm,
		Temp9am:       c.Temp9am,
		Temp3pm:       c.Temp3pm,
		Location:      c.Location,
		WindGustDir:   c.WindGustDir,
		WindDir9am:    c.WindDir9am,
		WindDir3pm:    c.WindDir3pm,
	}
	if c.RainToday {
		obs.RainToday = 1
	}

	date := today
	if c.Date != "" {
		d, err := time.Parse(time.DateOnly, c.Date)
		if err != nil {
			return obs, fmt.Errorf("--date: %w", err)
		}
		date = d
	}
	obs.SetDate(date)
	return obs, models.Validate(obs)
}

func (c *PredictCmd) Run(ctx context.Context, clock clockwork.Clock, logger *zap.Logger) error {
	obs, err := c.Observation(clock.Now())
	if err != nil {
		return err
	}

	predictor, _, err := loadPredictor(ctx, c.Artifacts, clock, logger)
	if err != nil {
		return fmt.Errorf("load artifacts: %w", err)
	}
	pred, err := predictor.Predict(ctx, obs)
	if err != nil {
		return err
	}

	lang := i18n.Match(c.Lang, "")
	text, _ := narrative.Template{}.Narrate(ctx, lang, obs, pred)
	return writePrediction(os.Stdout, c.JSON, lang, obs, pred, text)
}

func writePrediction(w io.Writer, asJSON bool, lang language.Tag, obs models.Observation, pred models.Prediction, text string) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{
			"input":      obs,
			"prediction": pred,
			"label":      pred.Text(),
			"percent":    pred.Percent(),
			"narrative":  text,
		})
	}
	p := i18n.Printer(lang)
	_, err := fmt.Fprintf(w, "%s\n%s\n%s\n",
		p.Sprintf("Tomorrow: %s", p.Sprintf(pred.Text())),
		p.Sprintf("Probability: %s%%", pred.Percent()),
		text)
	return err
}

type FetchCmd struct {
	Artifacts config.Artifacts `embed:""`
}

func (c *FetchCmd) Run(ctx context.Context, clock clockwork.Clock, logger *zap.Logger) error {
	if c.Artifacts.Offline {
		return fmt.Errorf("fetch cannot run with --offline")
	}
	_, set, err := loadPredictor(ctx, c.Artifacts, clock, logger)
	if err != nil {
		return err
	}
	fmt.Printf("model:  %s (%s)\nscaler: %s\n", set.ModelPath, set.Model.Kind(), set.ScalerPath)
	return nil
}

type SlotsCmd struct{}

func (c *SlotsCmd) Run() error {
	return writeSlots(os.Stdout)
}

func writeSlots(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tSCALED")
	for i, name := range features.SlotNames() {
		fmt.Fprintf(tw, "%d\t%s\t%t\n", i, name, i < features.NumDirect)
	}
	return tw.Flush()
}
