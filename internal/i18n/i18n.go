// Package i18n holds the English and Indonesian strings shown to users.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Supported languages, English first as the fallback.
var Supported = []language.Tag{language.English, language.Indonesian}

var (
	matcher = language.NewMatcher(Supported)
	cat     = newCatalog()
)

// Message keys are the English text.
var indonesian = map[string]string{
	"Will it rain tomorrow?":          "Apakah besok akan hujan?",
	"Predict":                         "Prediksi",
	"Date":                            "Tanggal",
	"Location":                        "Lokasi",
	"Did it rain today?":              "Apakah hari ini hujan?",
	"No":                              "Tidak",
	"Yes":                             "Ya",
	"Minimum temperature (°C)":        "Suhu minimum (°C)",
	"Maximum temperature (°C)":        "Suhu maksimum (°C)",
	"Rainfall (mm)":                   "Curah hujan (mm)",
	"Wind gust direction":             "Arah hembusan angin",
	"Wind gust speed (km/h)":          "Kecepatan hembusan angin (km/j)",
	"Wind direction 9am":              "Arah angin jam 9 pagi",
	"Wind direction 3pm":              "Arah angin jam 3 sore",
	"Wind speed 9am (km/h)":           "Kecepatan angin jam 9 pagi (km/j)",
	"Wind speed 3pm (km/h)":           "Kecepatan angin jam 3 sore (km/j)",
	"Humidity 9am (%%)":               "Kelembapan jam 9 pagi (%%)",
	"Humidity 3pm (%%)":               "Kelembapan jam 3 sore (%%)",
	"Pressure 9am (hPa)":              "Tekanan udara jam 9 pagi (hPa)",
	"Pressure 3pm (hPa)":              "Tekanan udara jam 3 sore (hPa)",
	"Temperature 9am (°C)":            "Suhu jam 9 pagi (°C)",
	"Temperature 3pm (°C)":            "Suhu jam 3 sore (°C)",
	"Prediction":                      "Hasil prediksi",
	"rain":                            "hujan",
	"no rain":                         "tidak hujan",
	"Tomorrow: %s":                    "Besok: %s",
	"Probability: %s%%":               "Probabilitas: %s%%",
	"Please fix the following fields": "Mohon perbaiki isian berikut",
	"%s must be between %s and %s":    "%s harus di antara %s dan %s",
	"%s is not a known value":         "%s bukan nilai yang dikenal",

	"It rained today in %s.":                          "Hari ini hujan di %s.",
	"It stayed dry today in %s.":                      "Hari ini tidak hujan di %s.",
	"Humidity fell from %d%% to %d%% through the day": "Kelembapan turun dari %d%% menjadi %d%% sepanjang hari",
	"Humidity rose from %d%% to %d%% through the day": "Kelembapan naik dari %d%% menjadi %d%% sepanjang hari",
	"Humidity held at %d%%":                           "Kelembapan bertahan di %d%%",
	" and pressure fell %.1f hPa.":                    " dan tekanan udara turun %.1f hPa.",
	" and pressure rose %.1f hPa.":                    " dan tekanan udara naik %.1f hPa.",
	" and pressure was steady.":                       " dan tekanan udara stabil.",
	"Rain is likely tomorrow (%s%%).":                 "Besok kemungkinan hujan (%s%%).",
	"Tomorrow should stay dry (%s%% confidence).":     "Besok kemungkinan tidak hujan (keyakinan %s%%).",
}

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range indonesian {
		if err := b.SetString(language.Indonesian, key, msg); err != nil {
			panic(err)
		}
		if err := b.SetString(language.English, key, key); err != nil {
			panic(err)
		}
	}
	return b
}

// Match picks the best supported language for an explicit choice (such as a
// ?lang= parameter) or an Accept-Language header. Unknown input falls back to
// English.
func Match(explicit, acceptLanguage string) language.Tag {
	tag, _ := language.MatchStrings(matcher, explicit, acceptLanguage)
	base, _ := tag.Base()
	for _, s := range Supported {
		if sb, _ := s.Base(); sb == base {
			return s
		}
	}
	return language.English
}

// Printer returns a printer for tag backed by the catalog.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(tag, message.Catalog(cat))
}
