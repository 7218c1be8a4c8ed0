package config

import (
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCLI struct {
	Logging   Logging   `embed:""`
	Artifacts Artifacts `embed:""`
	Server    Server    `embed:""`
}

func parse(t *testing.T, args ...string) *testCLI {
	t.Helper()
	var cli testCLI
	parser, err := kong.New(&cli, kong.Vars(Vars()), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	_, err = parser.Parse(args)
	require.NoError(t, err)
	return &cli
}

func TestDefaults(t *testing.T) {
	cli := parse(t)

	assert.Equal(t, "info", cli.Logging.Level)
	assert.Equal(t, "json", cli.Logging.Format)
	assert.Empty(t, cli.Logging.File)
	assert.Equal(t, 50, cli.Logging.MaxSizeMB)

	assert.Equal(t, DefaultArtifactURL, cli.Artifacts.URL)
	assert.Equal(t, "data", cli.Artifacts.CacheDir)
	assert.Equal(t, DefaultModelFile, cli.Artifacts.ModelFile)
	assert.Equal(t, DefaultScalerFile, cli.Artifacts.ScalerFile)
	assert.False(t, cli.Artifacts.Offline)
	assert.Equal(t, uint64(3), cli.Artifacts.FetchRetries)
	assert.Equal(t, 60*time.Second, cli.Artifacts.FetchTimeout)

	assert.Equal(t, ":8080", cli.Server.Addr)
	assert.Equal(t, 5*time.Second, cli.Server.ShutdownTimeout)
	assert.Empty(t, cli.Server.HistoryDB)
	assert.Equal(t, 256, cli.Server.CacheSize)
	assert.Equal(t, "gpt-4o-mini", cli.Server.OpenAIModel)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "console")
	t.Setenv("MODEL_ID", "model-abc")
	t.Setenv("SCALER_ID", "scaler-def")
	t.Setenv("ARTIFACT_URL", "ftp://example.com/models/%s")
	t.Setenv("ARTIFACT_FETCH_TIMEOUT", "5s")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("HISTORY_DB", "history.db")
	t.Setenv("PREDICTION_CACHE_SIZE", "10")

	cli := parse(t)

	assert.Equal(t, "debug", cli.Logging.Level)
	assert.Equal(t, "console", cli.Logging.Format)
	assert.Equal(t, "model-abc", cli.Artifacts.ModelID)
	assert.Equal(t, "scaler-def", cli.Artifacts.ScalerID)
	assert.Equal(t, "ftp://example.com/models/%s", cli.Artifacts.URL)
	assert.Equal(t, 5*time.Second, cli.Artifacts.FetchTimeout)
	assert.Equal(t, ":9090", cli.Server.Addr)
	assert.Equal(t, "history.db", cli.Server.HistoryDB)
	assert.Equal(t, 10, cli.Server.CacheSize)
	require.NoError(t, cli.Artifacts.Check())
	require.NoError(t, cli.Server.Check())
}

func TestFlagsBeatEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9090")
	cli := parse(t, "--addr=:7070", "--offline")
	assert.Equal(t, ":7070", cli.Server.Addr)
	assert.True(t, cli.Artifacts.Offline)
}

func TestArtifactsCheck(t *testing.T) {
	valid := Artifacts{
		URL:          DefaultArtifactURL,
		ModelID:      "m",
		ScalerID:     "s",
		CacheDir:     "data",
		ModelFile:    DefaultModelFile,
		ScalerFile:   DefaultScalerFile,
		FetchTimeout: time.Second,
	}
	require.NoError(t, valid.Check())

	tests := []struct {
		name string
		edit func(*Artifacts)
		msg  string
	}{
		{"missing model id", func(a *Artifacts) { a.ModelID = "" }, "MODEL_ID"},
		{"missing scaler id", func(a *Artifacts) { a.ScalerID = "" }, "SCALER_ID"},
		{"template without placeholder", func(a *Artifacts) { a.URL = "https://example.com/file" }, "ARTIFACT_URL"},
		{"zero timeout", func(a *Artifacts) { a.FetchTimeout = 0 }, "ARTIFACT_FETCH_TIMEOUT"},
		{"no cache dir", func(a *Artifacts) { a.CacheDir = "" }, "--cache-dir"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := valid
			tt.edit(&a)
			err := a.Check()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	offline := valid
	offline.Offline = true
	offline.ModelID = ""
	offline.ScalerID = ""
	assert.NoError(t, offline.Check())
}

func TestServerCheck(t *testing.T) {
	s := Server{Addr: ":8080", ShutdownTimeout: time.Second, CacheSize: 1}
	require.NoError(t, s.Check())

	s.CacheSize = 0
	assert.ErrorContains(t, s.Check(), "PREDICTION_CACHE_SIZE")
}
