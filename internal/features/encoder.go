package features

import "github.com/lox/raincheck/internal/models"

// Miss records a categorical label that matched no slot.
type Miss struct {
	Category string
	Label    string
}

// Encoder builds classifier vectors. It holds only the read-only scaler and
// is safe for concurrent use.
type Encoder struct {
	scaler *Scaler
}

// NewEncoder returns an Encoder using scaler for the direct slots.
func NewEncoder(scaler *Scaler) *Encoder {
	return &Encoder{scaler: scaler}
}

// Raw fills the direct slots and one-hot blocks without scaling.
func Raw(obs models.Observation) (Vector, []Miss) {
	var v Vector

	v[MinTemp] = obs.MinTemp
	v[MaxTemp] = obs.MaxTemp
	v[Rainfall] = obs.Rainfall
	v[WindGustSpeed] = obs.WindGustSpeed
	v[WindSpeed9am] = obs.WindSpeed9am
	v[WindSpeed3pm] = obs.WindSpeed3pm
	v[Humidity9am] = float64(obs.Humidity9am)
	v[Humidity3pm] = float64(obs.Humidity3pm)
	v[Pressure9am] = obs.Pressure9am
	v[Pressure3pm] = obs.Pressure3pm
	v[Temp9am] = obs.Temp9am
	v[Temp3pm] = obs.Temp3pm
	v[RainToday] = float64(obs.RainToday)
	v[Year] = float64(obs.Year)
	v[Month] = float64(obs.Month)
	v[Day] = float64(obs.Day)
	v[Weekday] = float64(obs.Weekday)

	var misses []Miss
	for _, c := range Categories {
		label := c.label(obs)
		slot, ok := c.Slot(label)
		if !ok {
			misses = append(misses, Miss{Category: c.Name, Label: label})
			continue
		}
		v[slot] = 1
	}
	return v, misses
}

// Encode returns the scaled vector for obs and any labels that could not be
// one-hot encoded.
func (e *Encoder) Encode(obs models.Observation) (Vector, []Miss) {
	v, misses := Raw(obs)
	e.scaler.Transform(&v)
	return v, misses
}
