package models

import "time"

// Observation is one day of raw weather readings as entered on the form.
// Calendar fields are derived from a date with SetDate.
type Observation struct {
	Year    int `json:"year"`
	Month   int `json:"month"`
	Day     int `json:"day"`
	Weekday int `json:"weekday"` // Monday=0 ... Sunday=6

	MinTemp       float64 `json:"min_temp"`
	MaxTemp       float64 `json:"max_temp"`
	Rainfall      float64 `json:"rainfall"`
	WindGustSpeed float64 `json:"wind_gust_speed"`
	WindSpeed9am  float64 `json:"wind_speed_9am"`
	WindSpeed3pm  float64 `json:"wind_speed_3pm"`
	Humidity9am   int     `json:"humidity_9am"`
	Humidity3pm   int     `json:"humidity_3pm"`
	Pressure9am   float64 `json:"pressure_9am"`
	Pressure3pm   float64 `json:"pressure_3pm"`
	Temp9am       float64 `json:"temp_9am"`
	Temp3pm       float64 `json:"temp_3pm"`
	RainToday     int     `json:"rain_today"` // 0 or 1

	Location    string `json:"location"`
	WindGustDir string `json:"wind_gust_dir"`
	WindDir9am  string `json:"wind_dir_9am"`
	WindDir3pm  string `json:"wind_dir_3pm"`
}

// SetDate fills the calendar fields from t. Weekday counts from Monday.
func (o *Observation) SetDate(t time.Time) {
	o.Year = t.Year()
	o.Month = int(t.Month())
	o.Day = t.Day()
	o.Weekday = (int(t.Weekday()) + 6) % 7
}

// Date reconstructs the calendar date of the observation in UTC.
func (o Observation) Date() time.Time {
	return time.Date(o.Year, time.Month(o.Month), o.Day, 0, 0, 0, 0, time.UTC)
}

// DefaultObservation returns the form defaults for the given day.
func DefaultObservation(today time.Time) Observation {
	obs := Observation{
		MinTemp:       10,
		MaxTemp:       20,
		Rainfall:      0,
		WindGustSpeed: 40,
		WindSpeed9am:  20,
		WindSpeed3pm:  20,
		Humidity9am:   70,
		Humidity3pm:   50,
		Pressure9am:   1010,
		Pressure3pm:   1005,
		Temp9am:       15,
		Temp3pm:       25,
		RainToday:     0,
		Location:      Locations[0],
		WindGustDir:   WindDirections[0],
		WindDir9am:    WindDirections[0],
		WindDir3pm:    WindDirections[0],
	}
	obs.SetDate(today)
	return obs
}

// Class labels produced by the classifier.
const (
	NoRain = 0
	Rain   = 1
)

// Prediction is the classifier's answer for one observation.
type Prediction struct {
	Label         int        `json:"label"`
	WillRain      bool       `json:"will_rain"`
	Probabilities [2]float64 `json:"probabilities"` // [no rain, rain]
	Confidence    float64    `json:"confidence"`    // probability of Label
}

// NewPrediction picks the most probable class, preferring no-rain on a tie.
func NewPrediction(probs [2]float64) Prediction {
	label := NoRain
	if probs[Rain] > probs[NoRain] {
		label = Rain
	}
	return Prediction{
		Label:         label,
		WillRain:      label == Rain,
		Probabilities: probs,
		Confidence:    probs[label],
	}
}

// Percent formats the confidence as a percentage with two decimals, e.g. "73.25".
func (p Prediction) Percent() string {
	return formatPercent(p.Confidence)
}

// Text is the plain output label.
func (p Prediction) Text() string {
	if p.WillRain {
		return "rain"
	}
	return "no rain"
}

// PredictionRecord is a stored prediction from the history log.
type PredictionRecord struct {
	ID          int64
	Observation Observation
	Prediction  Prediction
	Source      string // "form", "api"
	CreatedAt   time.Time
}
