package models

// Locations is the closed set of weather stations, sorted.
var Locations = []string{
	"Adelaide", "Albany", "Albury", "AliceSprings", "BadgerysCreek", "Ballarat", "Bendigo",
	"Brisbane", "Cairns", "Canberra", "Cobar", "CoffsHarbour", "Dartmoor", "Darwin",
	"GoldCoast", "Hobart", "Katherine", "Launceston", "Melbourne", "MelbourneAirport",
	"Mildura", "Moree", "MountGambier", "MountGinini", "Newcastle", "Nhil", "NorahHead",
	"NorfolkIsland", "Nuriootpa", "PearceRAAF", "Penrith", "Perth", "PerthAirport",
	"Portland", "Richmond", "Sale", "SalmonGums", "Sydney", "SydneyAirport", "Townsville",
	"Tuggeranong", "Uluru", "WaggaWagga", "Walpole", "Watsonia", "Williamtown",
	"Witchcliffe", "Wollongong", "Woomera",
}

// WindDirections is the 16-point compass, sorted. WindGustDir, WindDir9am
// and WindDir3pm all draw from it.
var WindDirections = []string{
	"E", "ENE", "ESE", "N", "NE", "NNE", "NNW", "NW",
	"S", "SE", "SSE", "SSW", "SW", "W", "WNW", "WSW",
}

var (
	locationSet  = toSet(Locations)
	directionSet = toSet(WindDirections)
)

func toSet(vals []string) map[string]bool {
	m := make(map[string]bool, len(vals))
	for _, v := range vals {
		m[v] = true
	}
	return m
}

// IsLocation reports whether name is a known location.
func IsLocation(name string) bool { return locationSet[name] }

// IsWindDirection reports whether dir is one of the 16 compass points.
func IsWindDirection(dir string) bool { return directionSet[dir] }
