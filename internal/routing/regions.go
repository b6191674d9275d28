package routing

import "strings"

// Region names
const (
	RegionSouthAsia    = "SOUTH_ASIA"
	RegionOceania      = "OCEANIA"
	RegionEuropeWest   = "EUROPE_WEST"
	RegionEuropeEast   = "EUROPE_EAST"
	RegionNorthAmerica = "NORTH_AMERICA"
	RegionMiddleEast   = "MIDDLE_EAST"
	RegionSEAsia       = "SE_ASIA"
	RegionEastAsia     = "EAST_ASIA"
	RegionUnknown      = "UNKNOWN"
)

var airportRegions = map[string]string{
	// South Asia
	"DEL": RegionSouthAsia, "BOM": RegionSouthAsia, "BLR": RegionSouthAsia, "MAA": RegionSouthAsia, "HYD": RegionSouthAsia,
	// Oceania
	"SYD": RegionOceania, "MEL": RegionOceania, "BNE": RegionOceania, "AKL": RegionOceania, "PER": RegionOceania,
	// Europe
	"LHR": RegionEuropeWest, "CDG": RegionEuropeWest, "FRA": RegionEuropeWest, "AMS": RegionEuropeWest, "MUC": RegionEuropeWest,
	"IST": RegionEuropeEast,
	// North America
	"JFK": RegionNorthAmerica, "EWR": RegionNorthAmerica, "SFO": RegionNorthAmerica, "LAX": RegionNorthAmerica, "ORD": RegionNorthAmerica, "YYZ": RegionNorthAmerica,
	// Middle East
	"DXB": RegionMiddleEast, "DOH": RegionMiddleEast, "AUH": RegionMiddleEast,
	// SE Asia
	"SIN": RegionSEAsia, "BKK": RegionSEAsia, "KUL": RegionSEAsia, "HAN": RegionSEAsia, "SGN": RegionSEAsia,
	// East Asia
	"HND": RegionEastAsia, "NRT": RegionEastAsia, "ICN": RegionEastAsia, "KIX": RegionEastAsia, "HKG": RegionEastAsia,
}

type regionPair struct {
	origin, dest string
}

// Preferred layover regions per ordered region pair, following how carriers
// actually route these markets.
var routeTable = map[regionPair][]string{
	// South Asia <-> SE Asia
	{RegionSouthAsia, RegionSEAsia}: {RegionSEAsia},
	{RegionSEAsia, RegionSouthAsia}: {RegionSEAsia},

	// South Asia <-> Oceania
	{RegionSouthAsia, RegionOceania}: {RegionSEAsia},
	{RegionOceania, RegionSouthAsia}: {RegionSEAsia},

	// Oceania <-> East Asia
	{RegionOceania, RegionEastAsia}: {RegionSEAsia},
	{RegionEastAsia, RegionOceania}: {RegionSEAsia},

	// South Asia <-> East Asia
	{RegionSouthAsia, RegionEastAsia}: {RegionSEAsia, RegionEastAsia},
	{RegionEastAsia, RegionSouthAsia}: {RegionSEAsia, RegionEastAsia},

	// South Asia <-> North America / Europe
	{RegionSouthAsia, RegionNorthAmerica}: {RegionMiddleEast, RegionEuropeWest},
	{RegionNorthAmerica, RegionSouthAsia}: {RegionMiddleEast, RegionEuropeWest},
	{RegionSouthAsia, RegionEuropeWest}:   {RegionMiddleEast, RegionEuropeEast},
	{RegionEuropeWest, RegionSouthAsia}:   {RegionMiddleEast, RegionEuropeEast},

	// Europe <-> Oceania (the Kangaroo Route)
	{RegionEuropeWest, RegionOceania}: {RegionMiddleEast, RegionSEAsia},
	{RegionOceania, RegionEuropeWest}: {RegionMiddleEast, RegionSEAsia},
}

var fallbackRegions = []string{RegionMiddleEast}

// RegionOf returns the region of an airport code, or UNKNOWN
func RegionOf(code string) string {
	if r, ok := airportRegions[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return r
	}
	return RegionUnknown
}

// TargetRegions returns the ordered preferred layover regions for a region pair.
// The returned slice is a copy.
func TargetRegions(originRegion, destRegion string) []string {
	regions, ok := routeTable[regionPair{originRegion, destRegion}]
	if !ok || len(regions) == 0 {
		regions = fallbackRegions
	}
	out := make([]string, len(regions))
	copy(out, regions)
	return out
}

var cityToCode = map[string]string{
	"delhi":         "DEL",
	"new delhi":     "DEL",
	"mumbai":        "BOM",
	"bombay":        "BOM",
	"bangalore":     "BLR",
	"bengaluru":     "BLR",
	"chennai":       "MAA",
	"hyderabad":     "HYD",
	"london":        "LHR",
	"heathrow":      "LHR",
	"dubai":         "DXB",
	"doha":          "DOH",
	"hamad":         "DOH",
	"abu dhabi":     "AUH",
	"singapore":     "SIN",
	"changi":        "SIN",
	"bangkok":       "BKK",
	"suvarnabhumi":  "BKK",
	"kuala lumpur":  "KUL",
	"tokyo":         "HND",
	"haneda":        "HND",
	"narita":        "NRT",
	"seoul":         "ICN",
	"incheon":       "ICN",
	"hong kong":     "HKG",
	"osaka":         "KIX",
	"istanbul":      "IST",
	"sydney":        "SYD",
	"melbourne":     "MEL",
	"brisbane":      "BNE",
	"perth":         "PER",
	"auckland":      "AKL",
	"new york":      "JFK",
	"ny":            "JFK",
	"newark":        "EWR",
	"san francisco": "SFO",
	"los angeles":   "LAX",
	"chicago":       "ORD",
	"toronto":       "YYZ",
	"paris":         "CDG",
	"amsterdam":     "AMS",
	"schiphol":      "AMS",
	"frankfurt":     "FRA",
	"munich":        "MUC",
}

// ResolveAirportCode maps a free-form city or airport name to an IATA code.
// Unknown input is returned upper-cased.
func ResolveAirportCode(input string) string {
	clean := strings.ToLower(strings.TrimSpace(input))
	if code, ok := cityToCode[clean]; ok {
		return code
	}
	return strings.ToUpper(clean)
}
