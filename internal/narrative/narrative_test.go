package narrative

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/openai/openai-go/v3/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/lox/raincheck/internal/models"
)

func observation() models.Observation {
	obs := models.DefaultObservation(time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	obs.Location = "Sydney"
	return obs
}

func TestTemplate(t *testing.T) {
	obs := observation()
	obs.RainToday = 1
	obs.Humidity9am, obs.Humidity3pm = 60, 85
	obs.Pressure9am, obs.Pressure3pm = 1015, 1008.5

	text, err := Template{}.Narrate(context.Background(), language.English, obs, models.NewPrediction([2]float64{0.2, 0.8}))
	require.NoError(t, err)
	assert.Equal(t, "It rained today in Sydney. Humidity rose from 60% to 85% through the day and pressure fell 6.5 hPa. Rain is likely tomorrow (80.00%).", text)
}

func TestTemplateDryIndonesian(t *testing.T) {
	obs := observation()
	obs.Humidity9am, obs.Humidity3pm = 50, 50
	obs.Pressure9am, obs.Pressure3pm = 1010, 1010.4

	text, err := Template{}.Narrate(context.Background(), language.Indonesian, obs, models.NewPrediction([2]float64{0.9, 0.1}))
	require.NoError(t, err)
	assert.Equal(t, "Hari ini tidak hujan di Sydney. Kelembapan bertahan di 50% dan tekanan udara stabil. Besok kemungkinan tidak hujan (keyakinan 90.00%).", text)
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(language.Indonesian, observation(), models.NewPrediction([2]float64{0.4, 0.6}))
	assert.Contains(t, prompt, "Answer in Indonesian.")
	assert.Contains(t, prompt, "Station: Sydney, date: Monday 3 June 2024")
	assert.Contains(t, prompt, "rain with 60.00% probability")
}

func chatServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		assert.Contains(t, string(body), `"model":"test-model"`)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"invalid_request_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 0,
			"model":   "test-model",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		})
	}))
}

func TestOpenAI(t *testing.T) {
	srv := chatServer(t, http.StatusOK, "  Showers are on the way.  ")
	defer srv.Close()

	n := NewOpenAI("key", "test-model", Template{}, zap.NewNop(), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	text, err := n.Narrate(context.Background(), language.English, observation(), models.NewPrediction([2]float64{0.3, 0.7}))
	require.NoError(t, err)
	assert.Equal(t, "Showers are on the way.", text)
}

func TestOpenAIFallsBack(t *testing.T) {
	for _, tt := range []struct {
		name    string
		status  int
		content string
	}{
		{"api error", http.StatusBadRequest, ""},
		{"empty content", http.StatusOK, "   "},
	} {
		t.Run(tt.name, func(t *testing.T) {
			srv := chatServer(t, tt.status, tt.content)
			defer srv.Close()

			n := NewOpenAI("key", "test-model", Template{}, zap.NewNop(), option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
			text, err := n.Narrate(context.Background(), language.English, observation(), models.NewPrediction([2]float64{0.3, 0.7}))
			require.NoError(t, err)
			assert.Contains(t, text, "It stayed dry today in Sydney.")
		})
	}
}
