// Package config holds the flag groups shared by raincheck commands. Every
// flag can also be set from the environment or a .env file.
package config

import (
	"errors"
	"strings"
	"time"
)

// Default artifact settings.
const (
	DefaultArtifactURL = "https://drive.google.com/uc?id=%s&export=download"
	DefaultModelFile   = "random_forest_model.json"
	DefaultScalerFile  = "standard_scaler.json"
)

// Logging configures the zap logger.
type Logging struct {
	Level     string `name:"log-level" help:"Minimum log level." env:"LOG_LEVEL" default:"info" enum:"debug,info,warn,error"`
	Format    string `name:"log-format" help:"Log encoding." env:"LOG_FORMAT" default:"json" enum:"json,console"`
	File      string `name:"log-file" help:"Also write logs to this file, rotated by size." env:"LOG_FILE"`
	MaxSizeMB int    `name:"log-max-size-mb" help:"Rotate the log file after this many megabytes." env:"LOG_MAX_SIZE_MB" default:"50"`
}

// Artifacts configures where the scaler and classifier come from.
type Artifacts struct {
	URL          string        `name:"artifact-url" help:"URL template for artifact downloads; %s is replaced by the artifact id. http(s) and ftp are supported." env:"ARTIFACT_URL" default:"${artifact_url}"`
	ModelID      string        `name:"model-id" help:"Remote identifier of the trained classifier." env:"MODEL_ID"`
	ScalerID     string        `name:"scaler-id" help:"Remote identifier of the fitted scaler." env:"SCALER_ID"`
	CacheDir     string        `name:"cache-dir" help:"Directory the artifacts are downloaded into." env:"ARTIFACT_CACHE_DIR" default:"data"`
	ModelFile    string        `name:"model-file" help:"Local filename of the classifier." env:"MODEL_FILE" default:"${model_file}"`
	ScalerFile   string        `name:"scaler-file" help:"Local filename of the scaler." env:"SCALER_FILE" default:"${scaler_file}"`
	Offline      bool          `name:"offline" help:"Skip downloading and load the cached files." env:"ARTIFACT_OFFLINE"`
	FetchRetries uint64        `name:"fetch-retries" help:"Retries for rate-limited or failing downloads." env:"ARTIFACT_FETCH_RETRIES" default:"3"`
	FetchTimeout time.Duration `name:"fetch-timeout" help:"Timeout for a single download." env:"ARTIFACT_FETCH_TIMEOUT" default:"60s"`
}

// Vars supplies the ${...} defaults used in the flag tags above.
func Vars() map[string]string {
	return map[string]string{
		"artifact_url": DefaultArtifactURL,
		"model_file":   DefaultModelFile,
		"scaler_file":  DefaultScalerFile,
	}
}

// Check reports configuration that cannot work.
func (a Artifacts) Check() error {
	if a.CacheDir == "" {
		return errors.New("--cache-dir is required")
	}
	if a.ModelFile == "" || a.ScalerFile == "" {
		return errors.New("--model-file and --scaler-file are required")
	}
	if a.Offline {
		return nil
	}
	if a.ModelID == "" {
		return errors.New("MODEL_ID is required unless --offline is set")
	}
	if a.ScalerID == "" {
		return errors.New("SCALER_ID is required unless --offline is set")
	}
	if strings.Count(a.URL, "%s") != 1 {
		return errors.New("ARTIFACT_URL must contain exactly one %s")
	}
	if a.FetchTimeout <= 0 {
		return errors.New("ARTIFACT_FETCH_TIMEOUT must be positive")
	}
	return nil
}

// Server configures the web front end.
type Server struct {
	Addr            string        `name:"addr" help:"HTTP listen address." env:"HTTP_ADDR" default:":8080"`
	ShutdownTimeout time.Duration `name:"shutdown-timeout" help:"Grace period for in-flight requests on shutdown." env:"SHUTDOWN_TIMEOUT" default:"5s"`
	HistoryDB       string        `name:"history-db" help:"SQLite file for the prediction history; empty disables it." env:"HISTORY_DB"`
	CacheSize       int           `name:"cache-size" help:"Number of predictions kept in memory." env:"PREDICTION_CACHE_SIZE" default:"256"`
	OpenAIKey       string        `name:"openai-api-key" help:"Enables LLM narratives." env:"OPENAI_API_KEY"`
	OpenAIModel     string        `name:"openai-model" help:"Chat model used for narratives." env:"OPENAI_MODEL" default:"gpt-4o-mini"`
}

// Check reports configuration that cannot work.
func (s Server) Check() error {
	if s.Addr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if s.ShutdownTimeout <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if s.CacheSize <= 0 {
		return errors.New("PREDICTION_CACHE_SIZE must be positive")
	}
	return nil
}
