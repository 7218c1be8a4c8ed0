package narrative

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"

	"github.com/lox/raincheck/internal/metrics"
	"github.com/lox/raincheck/internal/models"
)

const systemPrompt = `You are a friendly weather presenter. Given today's observations for one
Australian weather station and a model's rain-tomorrow prediction, write two or three plain
sentences explaining the result. Mention the most telling readings. Do not invent readings,
do not contradict the prediction, and do not use markdown.`

// OpenAI asks a chat model for the paragraph and falls back to another
// Narrator when the call fails.
type OpenAI struct {
	client   openai.Client
	model    string
	timeout  time.Duration
	fallback Narrator
	logger   *zap.Logger
}

// NewOpenAI creates a narrator using the given API key and chat model. Extra
// request options, such as a base URL, are passed to the client.
func NewOpenAI(apiKey, model string, fallback Narrator, logger *zap.Logger, opts ...option.RequestOption) *OpenAI {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &OpenAI{
		client:   openai.NewClient(opts...),
		model:    model,
		timeout:  20 * time.Second,
		fallback: fallback,
		logger:   logger,
	}
}

func (n *OpenAI) Narrate(ctx context.Context, lang language.Tag, obs models.Observation, pred models.Prediction) (string, error) {
	text, err := n.complete(ctx, lang, obs, pred)
	if err == nil {
		metrics.NarrativesTotal.WithLabelValues("openai", "ok").Inc()
		return text, nil
	}
	metrics.NarrativesTotal.WithLabelValues("openai", "error").Inc()
	n.logger.Warn("narrative generation failed, using template", zap.Error(err))
	return n.fallback.Narrate(ctx, lang, obs, pred)
}

func (n *OpenAI) complete(ctx context.Context, lang language.Tag, obs models.Observation, pred models.Prediction) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	resp, err := n.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(n.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(buildPrompt(lang, obs, pred)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("chat completion returned empty content")
	}
	return text, nil
}

func buildPrompt(lang language.Tag, obs models.Observation, pred models.Prediction) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Answer in %s.\n", display.English.Languages().Name(lang))
	fmt.Fprintf(&b, "Station: %s, date: %s\n", obs.Location, obs.Date().Format("Monday 2 January 2006"))
	fmt.Fprintf(&b, "Temperature: min %.1f°C, max %.1f°C, 9am %.1f°C, 3pm %.1f°C\n", obs.MinTemp, obs.MaxTemp, obs.Temp9am, obs.Temp3pm)
	fmt.Fprintf(&b, "Rainfall today: %.1f mm (rain today: %t)\n", obs.Rainfall, obs.RainToday == 1)
	fmt.Fprintf(&b, "Humidity: 9am %d%%, 3pm %d%%\n", obs.Humidity9am, obs.Humidity3pm)
	fmt.Fprintf(&b, "Pressure: 9am %.1f hPa, 3pm %.1f hPa\n", obs.Pressure9am, obs.Pressure3pm)
	fmt.Fprintf(&b, "Wind: gusts %s at %.0f km/h, 9am %s at %.0f km/h, 3pm %s at %.0f km/h\n",
		obs.WindGustDir, obs.WindGustSpeed, obs.WindDir9am, obs.WindSpeed9am, obs.WindDir3pm, obs.WindSpeed3pm)
	fmt.Fprintf(&b, "Prediction for tomorrow: %s with %s%% probability\n", pred.Text(), pred.Percent())
	return b.String()
}
