package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FlagTempOutOfRange      = "temp_out_of_range"
	FlagRainfallOutOfRange  = "rainfall_out_of_range"
	FlagWindSpeedOutOfRange = "wind_speed_out_of_range"
	FlagHumidityInvalid     = "humidity_invalid"
	FlagPressureOutOfRange  = "pressure_out_of_range"
	FlagRainTodayInvalid    = "rain_today_invalid"
	FlagDateInvalid         = "date_invalid"
	FlagUnknownLocation     = "unknown_location"
	FlagUnknownWindDir      = "unknown_wind_dir"
)

// Accepted observation years, inclusive. The model was trained on 2007 to
// 2017 records; years far outside that are rejected rather than scaled.
const (
	MinYear = 1990
	MaxYear = 2100
)

// ErrValidation is matched by every *ValidationError.
var ErrValidation = errors.New("invalid observation")

// Bound is an inclusive numeric range for one input field.
type Bound struct {
	Field   string  `json:"field"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Default float64 `json:"default"`
	Unit    string  `json:"unit"`
	flag    string
	value   func(Observation) float64
}

// Bounds lists the numeric input fields in form order.
var Bounds = []Bound{
	{Field: "min_temp", Min: -10, Max: 50, Default: 10, Unit: "°C", flag: FlagTempOutOfRange, value: func(o Observation) float64 { return o.MinTemp }},
	{Field: "max_temp", Min: -10, Max: 50, Default: 20, Unit: "°C", flag: FlagTempOutOfRange, value: func(o Observation) float64 { return o.MaxTemp }},
	{Field: "rainfall", Min: 0, Max: 400, Default: 0, Unit: "mm", flag: FlagRainfallOutOfRange, value: func(o Observation) float64 { return o.Rainfall }},
	{Field: "wind_gust_speed", Min: 0, Max: 150, Default: 40, Unit: "km/h", flag: FlagWindSpeedOutOfRange, value: func(o Observation) float64 { return o.WindGustSpeed }},
	{Field: "wind_speed_9am", Min: 0, Max: 100, Default: 20, Unit: "km/h", flag: FlagWindSpeedOutOfRange, value: func(o Observation) float64 { return o.WindSpeed9am }},
	{Field: "wind_speed_3pm", Min: 0, Max: 100, Default: 20, Unit: "km/h", flag: FlagWindSpeedOutOfRange, value: func(o Observation) float64 { return o.WindSpeed3pm }},
	{Field: "humidity_9am", Min: 0, Max: 100, Default: 70, Unit: "%", flag: FlagHumidityInvalid, value: func(o Observation) float64 { return float64(o.Humidity9am) }},
	{Field: "humidity_3pm", Min: 0, Max: 100, Default: 50, Unit: "%", flag: FlagHumidityInvalid, value: func(o Observation) float64 { return float64(o.Humidity3pm) }},
	{Field: "pressure_9am", Min: 980, Max: 1050, Default: 1010, Unit: "hPa", flag: FlagPressureOutOfRange, value: func(o Observation) float64 { return o.Pressure9am }},
	{Field: "pressure_3pm", Min: 970, Max: 1040, Default: 1005, Unit: "hPa", flag: FlagPressureOutOfRange, value: func(o Observation) float64 { return o.Pressure3pm }},
	{Field: "temp_9am", Min: -10, Max: 50, Default: 15, Unit: "°C", flag: FlagTempOutOfRange, value: func(o Observation) float64 { return o.Temp9am }},
	{Field: "temp_3pm", Min: -10, Max: 50, Default: 25, Unit: "°C", flag: FlagTempOutOfRange, value: func(o Observation) float64 { return o.Temp3pm }},
}

// Contains reports whether v lies inside the bound. NaN never does.
func (b Bound) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// Problem describes one rejected field.
type Problem struct {
	Field string `json:"field"`
	Flag  string `json:"flag"`
	Value string `json:"value"`
}

// ValidationError collects every problem found in an observation.
type ValidationError struct {
	Problems []Problem
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		parts[i] = fmt.Sprintf("%s=%s (%s)", p.Field, p.Value, p.Flag)
	}
	return "invalid observation: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// Fields returns the names of the rejected fields.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		out[i] = p.Field
	}
	return out
}

// ValidateObservation checks every input-surface constraint and returns the
// problems found, in form order.
func ValidateObservation(obs Observation) []Problem {
	var problems []Problem

	if obs.Year < MinYear || obs.Year > MaxYear || obs.Month < 1 || obs.Month > 12 || obs.Day < 1 || obs.Day > 31 || obs.Weekday < 0 || obs.Weekday > 6 {
		problems = append(problems, Problem{Field: "date", Flag: FlagDateInvalid, Value: fmt.Sprintf("%04d-%02d-%02d", obs.Year, obs.Month, obs.Day)})
	}
	if obs.RainToday != 0 && obs.RainToday != 1 {
		problems = append(problems, Problem{Field: "rain_today", Flag: FlagRainTodayInvalid, Value: fmt.Sprint(obs.RainToday)})
	}

	for _, b := range Bounds {
		if v := b.value(obs); !b.Contains(v) {
			problems = append(problems, Problem{Field: b.Field, Flag: b.flag, Value: fmt.Sprint(v)})
		}
	}

	if !IsLocation(obs.Location) {
		problems = append(problems, Problem{Field: "location", Flag: FlagUnknownLocation, Value: obs.Location})
	}
	for _, f := range []struct {
		name, value string
	}{
		{"wind_gust_dir", obs.WindGustDir},
		{"wind_dir_9am", obs.WindDir9am},
		{"wind_dir_3pm", obs.WindDir3pm},
	} {
		if !IsWindDirection(f.value) {
			problems = append(problems, Problem{Field: f.name, Flag: FlagUnknownWindDir, Value: f.value})
		}
	}

	return problems
}

// Validate wraps ValidateObservation in an error. It returns nil when the
// observation is acceptable.
func Validate(obs Observation) error {
	problems := ValidateObservation(obs)
	if len(problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: problems}
}
