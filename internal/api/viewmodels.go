package api

import (
	"fmt"
	"html/template"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lox/raincheck/internal/models"
)

// fieldLabels maps input names to their English labels, which double as
// translation keys.
var fieldLabels = map[string]string{
	"date":            "Date",
	"location":        "Location",
	"rain_today":      "Did it rain today?",
	"min_temp":        "Minimum temperature (°C)",
	"max_temp":        "Maximum temperature (°C)",
	"rainfall":        "Rainfall (mm)",
	"wind_gust_dir":   "Wind gust direction",
	"wind_gust_speed": "Wind gust speed (km/h)",
	"wind_dir_9am":    "Wind direction 9am",
	"wind_dir_3pm":    "Wind direction 3pm",
	"wind_speed_9am":  "Wind speed 9am (km/h)",
	"wind_speed_3pm":  "Wind speed 3pm (km/h)",
	"humidity_9am":    "Humidity 9am (%%)",
	"humidity_3pm":    "Humidity 3pm (%%)",
	"pressure_9am":    "Pressure 9am (hPa)",
	"pressure_3pm":    "Pressure 3pm (hPa)",
	"temp_9am":        "Temperature 9am (°C)",
	"temp_3pm":        "Temperature 3pm (°C)",
}

type numberField struct {
	Name  string
	Label string
	Value string
	Min   float64
	Max   float64
	Step  string
}

type selectField struct {
	Name     string
	Label    string
	Options  []string
	Selected string
}

type resultView struct {
	Label     string
	Percent   string
	WillRain  bool
	Narrative string
	BadgeURL  template.URL
}

type indexPage struct {
	Lang       string
	Date       string
	MinDate    string
	MaxDate    string
	RainToday  bool
	Location   selectField
	Directions []selectField
	Numbers    []numberField
	Result     *resultView
	Errors     []string
	printer    *message.Printer
}

// T translates a UI string for the page language.
func (p indexPage) T(key string, args ...any) string {
	return p.printer.Sprintf(key, args...)
}

func newIndexPage(lang language.Tag, printer *message.Printer, obs models.Observation) indexPage {
	page := indexPage{
		Lang:      lang.String(),
		Date:      obs.Date().Format(time.DateOnly),
		MinDate:   fmt.Sprintf("%04d-01-01", models.MinYear),
		MaxDate:   fmt.Sprintf("%04d-12-31", models.MaxYear),
		RainToday: obs.RainToday == 1,
		Location: selectField{
			Name:     "location",
			Label:    printer.Sprintf(fieldLabels["location"]),
			Options:  models.Locations,
			Selected: obs.Location,
		},
		printer: printer,
	}

	for _, d := range []struct{ name, value string }{
		{"wind_gust_dir", obs.WindGustDir},
		{"wind_dir_9am", obs.WindDir9am},
		{"wind_dir_3pm", obs.WindDir3pm},
	} {
		page.Directions = append(page.Directions, selectField{
			Name:     d.name,
			Label:    printer.Sprintf(fieldLabels[d.name]),
			Options:  models.WindDirections,
			Selected: d.value,
		})
	}

	values := observationValues(obs)
	for _, b := range models.Bounds {
		step := "0.1"
		if b.Field == "humidity_9am" || b.Field == "humidity_3pm" {
			step = "1"
		}
		page.Numbers = append(page.Numbers, numberField{
			Name:  b.Field,
			Label: printer.Sprintf(fieldLabels[b.Field]),
			Value: values[b.Field],
			Min:   b.Min,
			Max:   b.Max,
			Step:  step,
		})
	}
	return page
}

func formatNumber(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func observationValues(obs models.Observation) map[string]string {
	f := formatNumber
	return map[string]string{
		"min_temp":        f(obs.MinTemp),
		"max_temp":        f(obs.MaxTemp),
		"rainfall":        f(obs.Rainfall),
		"wind_gust_speed": f(obs.WindGustSpeed),
		"wind_speed_9am":  f(obs.WindSpeed9am),
		"wind_speed_3pm":  f(obs.WindSpeed3pm),
		"humidity_9am":    strconv.Itoa(obs.Humidity9am),
		"humidity_3pm":    strconv.Itoa(obs.Humidity3pm),
		"pressure_9am":    f(obs.Pressure9am),
		"pressure_3pm":    f(obs.Pressure3pm),
		"temp_9am":        f(obs.Temp9am),
		"temp_3pm":        f(obs.Temp3pm),
	}
}

// problemMessages turns validation problems into translated sentences.
func problemMessages(printer *message.Printer, problems []models.Problem) []string {
	bounds := make(map[string]models.Bound, len(models.Bounds))
	for _, b := range models.Bounds {
		bounds[b.Field] = b
	}

	out := make([]string, 0, len(problems))
	for _, p := range problems {
		label := p.Field
		if l, ok := fieldLabels[p.Field]; ok {
			label = printer.Sprintf(l)
		}
		if b, ok := bounds[p.Field]; ok && p.Flag != FlagNotANumber {
			out = append(out, printer.Sprintf("%s must be between %s and %s", label, formatNumber(b.Min), formatNumber(b.Max)))
			continue
		}
		out = append(out, printer.Sprintf("%s is not a known value", label)+fmt.Sprintf(" (%q)", p.Value))
	}
	return out
}

// badgeURL links to the PNG card for obs.
func badgeURL(obs models.Observation, lang language.Tag) template.URL {
	q := url.Values{}
	for k, v := range observationValues(obs) {
		q.Set(k, v)
	}
	q.Set("date", obs.Date().Format(time.DateOnly))
	q.Set("rain_today", strconv.Itoa(obs.RainToday))
	q.Set("location", obs.Location)
	q.Set("wind_gust_dir", obs.WindGustDir)
	q.Set("wind_dir_9am", obs.WindDir9am)
	q.Set("wind_dir_3pm", obs.WindDir3pm)
	q.Set("lang", lang.String())
	return template.URL("/badge.png?" + q.Encode())
}
