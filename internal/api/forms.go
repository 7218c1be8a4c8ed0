package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/lox/raincheck/internal/models"
)

// FlagNotANumber marks a numeric field that could not be parsed.
const FlagNotANumber = "not_a_number"

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

var errDecode = errors.New("malformed request")

// parseValues builds an observation from form or query values. Missing fields
// take the form defaults, and a missing date means today.
func parseValues(values url.Values, today time.Time) (models.Observation, error) {
	obs := models.DefaultObservation(today)
	var problems []models.Problem

	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		d, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			problems = append(problems, models.Problem{Field: "date", Flag: models.FlagDateInvalid, Value: raw})
		} else {
			obs.SetDate(d)
		}
	}

	if raw := values.Get("rain_today"); raw != "" {
		switch strings.ToLower(raw) {
		case "yes", "1", "true":
			obs.RainToday = 1
		case "no", "0", "false":
			obs.RainToday = 0
		default:
			problems = append(problems, models.Problem{Field: "rain_today", Flag: models.FlagRainTodayInvalid, Value: raw})
		}
	}

	floats := map[string]*float64{
		"min_temp":        &obs.MinTemp,
		"max_temp":        &obs.MaxTemp,
		"rainfall":        &obs.Rainfall,
		"wind_gust_speed": &obs.WindGustSpeed,
		"wind_speed_9am":  &obs.WindSpeed9am,
		"wind_speed_3pm":  &obs.WindSpeed3pm,
		"pressure_9am":    &obs.Pressure9am,
		"pressure_3pm":    &obs.Pressure3pm,
		"temp_9am":        &obs.Temp9am,
		"temp_3pm":        &obs.Temp3pm,
	}
	ints := map[string]*int{
		"humidity_9am": &obs.Humidity9am,
		"humidity_3pm": &obs.Humidity3pm,
	}
	for _, b := range models.Bounds {
		raw := strings.TrimSpace(values.Get(b.Field))
		if raw == "" {
			continue
		}
		if p, ok := floats[b.Field]; ok {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				problems = append(problems, models.Problem{Field: b.Field, Flag: FlagNotANumber, Value: raw})
				continue
			}
			*p = v
		}
		if p, ok := ints[b.Field]; ok {
			v, err := strconv.Atoi(raw)
			if err != nil {
				problems = append(problems, models.Problem{Field: b.Field, Flag: FlagNotANumber, Value: raw})
				continue
			}
			*p = v
		}
	}

	for field, p := range map[string]*string{
		"location":      &obs.Location,
		"wind_gust_dir": &obs.WindGustDir,
		"wind_dir_9am":  &obs.WindDir9am,
		"wind_dir_3pm":  &obs.WindDir3pm,
	} {
		if raw, ok := values[field]; ok && len(raw) > 0 {
			*p = strings.TrimSpace(raw[0])
		}
	}

	if len(problems) > 0 {
		return obs, &models.ValidationError{Problems: problems}
	}
	return obs, nil
}

// predictRequest is the JSON body of /api/predict and of socket messages.
// Fields left out keep the form defaults. Date, when given, overrides the
// calendar fields.
type predictRequest struct {
	Date string `json:"date"`
	models.Observation
}

// decodeObservation reads one JSON observation. Unknown keys are rejected so a
// misspelled field cannot silently fall back to its default.
func decodeObservation(r io.Reader, today time.Time) (models.Observation, error) {
	req := predictRequest{Observation: models.DefaultObservation(today)}
	dec := json.NewDecoder(io.LimitReader(r, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return models.Observation{}, fmt.Errorf("%w: %v", errDecode, err)
	}
	return req.toObservation()
}

func (req predictRequest) toObservation() (models.Observation, error) {
	obs := req.Observation
	if req.Date != "" {
		d, err := time.Parse(time.DateOnly, req.Date)
		if err != nil {
			return obs, &models.ValidationError{Problems: []models.Problem{{Field: "date", Flag: models.FlagDateInvalid, Value: req.Date}}}
		}
		obs.SetDate(d)
		return obs, nil
	}

	// Calendar fields given directly must name a real day; the weekday is
	// always derived.
	d := obs.Date()
	if d.Year() != obs.Year || int(d.Month()) != obs.Month || d.Day() != obs.Day {
		value := fmt.Sprintf("%04d-%02d-%02d", obs.Year, obs.Month, obs.Day)
		return obs, &models.ValidationError{Problems: []models.Problem{{Field: "date", Flag: models.FlagDateInvalid, Value: value}}}
	}
	obs.SetDate(d)
	return obs, nil
}
