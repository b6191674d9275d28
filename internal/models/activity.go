package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Zone identifies which side of passport control an activity sits on
type Zone string

const (
	ZoneAirside  Zone = "AIRSIDE"
	ZoneLandside Zone = "LANDSIDE"
)

// ParseZone converts "airside"/"LANDSIDE" to a Zone
func ParseZone(s string) (Zone, bool) {
	switch Zone(strings.ToUpper(strings.TrimSpace(s))) {
	case ZoneAirside:
		return ZoneAirside, true
	case ZoneLandside:
		return ZoneLandside, true
	}
	return "", false
}

// ActivityType is the coarse category of an activity and doubles as an intent label
type ActivityType string

const (
	TypeFood      ActivityType = "FOOD"
	TypeRelax     ActivityType = "RELAX"
	TypeSleep     ActivityType = "SLEEP"
	TypeCulture   ActivityType = "CULTURE"
	TypeSights    ActivityType = "SIGHTS"
	TypeShopping  ActivityType = "SHOPPING"
	TypeAdventure ActivityType = "ADVENTURE"
)

// ActivityTypes lists every known activity type in catalog order
var ActivityTypes = []ActivityType{
	TypeFood, TypeRelax, TypeSleep, TypeCulture, TypeSights, TypeShopping, TypeAdventure,
}

// ParseActivityType converts a string like "food" to its ActivityType
func ParseActivityType(s string) (ActivityType, bool) {
	want := ActivityType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range ActivityTypes {
		if t == want {
			return t, true
		}
	}
	return "", false
}

// Location is where an activity happens
type Location struct {
	Zone Zone    `json:"zone"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

// HasCoordinates reports whether the location carries real coordinates
func (l Location) HasCoordinates() bool {
	return l.Lat != 0 || l.Lon != 0
}

// TimeConstraints describes how long an activity takes and when it is open
type TimeConstraints struct {
	MinDurationHours float64 `json:"min_duration_hours"`
	Is24h            bool    `json:"is_24h"`
	OpeningHour24    float64 `json:"opening_hour_24,omitempty"` // 0-24
	ClosingHour24    float64 `json:"closing_hour_24,omitempty"` // may exceed 24 or be < opening for overnight windows
	BestTime         string  `json:"best_time,omitempty"`       // DAY, DINNER, ANY
}

// Activity is a single catalog entry for a hub. Immutable once loaded.
type Activity struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Type            ActivityType    `json:"type"`
	Description     string          `json:"description"`
	Location        Location        `json:"location"`
	TimeConstraints TimeConstraints `json:"time_constraints"`
	CostTier        string          `json:"cost_tier,omitempty"` // FREE, CHEAP, LOW, MEDIUM, HIGH, VARIES
	FoundersTip     string          `json:"founders_tip,omitempty"`
	Synthetic       bool            `json:"synthetic,omitempty"` // injected fallback, not from the catalog
}

// IsLandside reports whether reaching the activity requires immigration
func (a *Activity) IsLandside() bool {
	return a.Location.Zone == ZoneLandside
}

// EmbeddingText is the text used to embed the activity for semantic matching
func (a *Activity) EmbeddingText() string {
	return strings.TrimSpace(fmt.Sprintf("%s %s %s %s", a.Title, a.Type, a.Description, a.FoundersTip))
}

// UnmarshalJSON normalizes zone and type casing from hand-edited data files
func (a *Activity) UnmarshalJSON(data []byte) error {
	type rawActivity Activity
	var raw rawActivity
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*a = Activity(raw)
	if z, ok := ParseZone(string(a.Location.Zone)); ok {
		a.Location.Zone = z
	}
	if t, ok := ParseActivityType(string(a.Type)); ok {
		a.Type = t
	}
	return nil
}
