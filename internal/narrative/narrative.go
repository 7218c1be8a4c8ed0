// Package narrative explains a prediction in a short paragraph.
package narrative

import (
	"context"
	"math"
	"strings"

	"golang.org/x/text/language"

	"github.com/lox/raincheck/internal/i18n"
	"github.com/lox/raincheck/internal/metrics"
	"github.com/lox/raincheck/internal/models"
)

// Narrator writes the explanation shown under a prediction.
type Narrator interface {
	Narrate(ctx context.Context, lang language.Tag, obs models.Observation, pred models.Prediction) (string, error)
}

// Template builds the paragraph from the observation alone. It never fails.
type Template struct{}

// pressureSteady is the day's pressure change treated as no change, in hPa.
const pressureSteady = 1.0

func (Template) Narrate(_ context.Context, lang language.Tag, obs models.Observation, pred models.Prediction) (string, error) {
	p := i18n.Printer(lang)
	var b strings.Builder

	if obs.RainToday == 1 {
		b.WriteString(p.Sprintf("It rained today in %s.", obs.Location))
	} else {
		b.WriteString(p.Sprintf("It stayed dry today in %s.", obs.Location))
	}
	b.WriteString(" ")

	switch {
	case obs.Humidity3pm < obs.Humidity9am:
		b.WriteString(p.Sprintf("Humidity fell from %d%% to %d%% through the day", obs.Humidity9am, obs.Humidity3pm))
	case obs.Humidity3pm > obs.Humidity9am:
		b.WriteString(p.Sprintf("Humidity rose from %d%% to %d%% through the day", obs.Humidity9am, obs.Humidity3pm))
	default:
		b.WriteString(p.Sprintf("Humidity held at %d%%", obs.Humidity3pm))
	}

	delta := obs.Pressure3pm - obs.Pressure9am
	switch {
	case delta <= -pressureSteady:
		b.WriteString(p.Sprintf(" and pressure fell %.1f hPa.", math.Abs(delta)))
	case delta >= pressureSteady:
		b.WriteString(p.Sprintf(" and pressure rose %.1f hPa.", delta))
	default:
		b.WriteString(p.Sprintf(" and pressure was steady."))
	}
	b.WriteString(" ")

	if pred.WillRain {
		b.WriteString(p.Sprintf("Rain is likely tomorrow (%s%%).", pred.Percent()))
	} else {
		b.WriteString(p.Sprintf("Tomorrow should stay dry (%s%% confidence).", pred.Percent()))
	}

	metrics.NarrativesTotal.WithLabelValues("template", "ok").Inc()
	return b.String(), nil
}
