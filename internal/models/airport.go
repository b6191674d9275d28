package models

import "strings"

// RiskMultipliers scale immigration time in congested or quiet windows
type RiskMultipliers struct {
	RushHour  float64 `json:"rush_hour"`
	LateNight float64 `json:"late_night"`
}

// IntelligenceFactors are the measured logistics costs of a hub
type IntelligenceFactors struct {
	ImmigrationAvgMins   float64         `json:"immigration_avg_mins"`
	SecurityCheckMins    float64         `json:"security_check_mins"`
	TransitToCityMins    float64         `json:"transit_to_city_mins"`
	TransportReliability float64         `json:"transport_reliability_score,omitempty"`
	RiskMultipliers      RiskMultipliers `json:"risk_multipliers"`
}

// VisaRule describes entry rules for one passport class
type VisaRule struct {
	Type         string `json:"type"`
	Details      string `json:"details"`
	AllowedHours int    `json:"allowed_hours,omitempty"`
}

// AirportProfile is the full record of a hub as provisioned by the data layer
type AirportProfile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Timezone string `json:"timezone,omitempty"`

	// Terminal coordinates, used to report how far landside activities are
	Lat float64 `json:"lat,omitempty"`
	Lon float64 `json:"lon,omitempty"`

	IntelligenceFactors *IntelligenceFactors `json:"intelligence_factors,omitempty"`
	VisaPolicy          map[string]VisaRule  `json:"visa_policy,omitempty"`
	Activities          []Activity           `json:"activities"`
}

// HasIntelligence reports whether the hub carries measured logistics factors.
// Profiles provisioned before the factor upgrade only carry the legacy
// efficiency/safety keys, which decode to an all-zero struct.
func (p *AirportProfile) HasIntelligence() bool {
	if p == nil || p.IntelligenceFactors == nil {
		return false
	}
	f := p.IntelligenceFactors
	return f.ImmigrationAvgMins > 0 || f.SecurityCheckMins > 0 || f.TransitToCityMins > 0
}

// NormalizeHubID lower-cases and trims a hub identifier
func NormalizeHubID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

// HubMeta is the routing and scoring metadata of a hub
type HubMeta struct {
	ID                string  `json:"id" db:"id"`
	Name              string  `json:"name" db:"name"`
	Code              string  `json:"code" db:"code"`
	Region            string  `json:"region" db:"region"`
	Popularity        float64 `json:"popularity" db:"popularity"`                   // 0-1
	Friction          float64 `json:"friction" db:"friction"`                       // 0-1, higher is worse
	LateNightStrength float64 `json:"late_night_strength" db:"late_night_strength"` // 0-1
	AirsideStrength   float64 `json:"airside_strength" db:"airside_strength"`       // 0-1
	LandsideStrength  float64 `json:"landside_strength" db:"landside_strength"`     // 0-1
}

// HubScore is one entry of a hub ranking
type HubScore struct {
	HubID   string   `json:"hub_id"`
	Name    string   `json:"name,omitempty"`
	Code    string   `json:"code"`
	Region  string   `json:"region"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}

// VisaStatus is the resolved entry status for a passport at a hub
type VisaStatus struct {
	HubID    string `json:"hub_id"`
	Passport string `json:"passport"`
	Valid    bool   `json:"valid"`
	Title    string `json:"title"`
	Details  string `json:"details"`
}
