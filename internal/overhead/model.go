// Package overhead converts a raw layover into safe exploration time by
// subtracting immigration, city transit and security costs.
package overhead

import (
	"math"
	"time"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Policy holds the time windows and multipliers of the overhead model
type Policy struct {
	SafetyPadHours float64 `yaml:"safety_pad_hours"`

	ImmigrationRushStartHour int `yaml:"immigration_rush_start_hour"`
	ImmigrationRushEndHour   int `yaml:"immigration_rush_end_hour"` // inclusive
	LateNightStartHour       int `yaml:"late_night_start_hour"`
	LateNightEndHour         int `yaml:"late_night_end_hour"` // inclusive, window may wrap midnight

	WeekendTransitFactor float64  `yaml:"weekend_transit_factor"`
	RushTransitFactor    float64  `yaml:"rush_transit_factor"`
	TransitRushWindows   [][2]int `yaml:"transit_rush_windows"` // inclusive [start, end] hours

	// Weekend days per hub id; hubs not listed use DefaultWeekend
	HubWeekends    map[string][]time.Weekday `yaml:"hub_weekends"`
	DefaultWeekend []time.Weekday            `yaml:"default_weekend"`

	// Flat fallback when a hub has no intelligence factors. The components
	// add up to StaticOverheadHours.
	StaticOverheadHours      float64 `yaml:"static_overhead_hours"`
	StaticImmigrationMinutes float64 `yaml:"static_immigration_minutes"`
	StaticTransitMinutes     float64 `yaml:"static_transit_minutes"` // one way
	StaticSecurityMinutes    float64 `yaml:"static_security_minutes"`
}

// DefaultPolicy returns the calibrated overhead constants
func DefaultPolicy() Policy {
	return Policy{
		SafetyPadHours:           0.5,
		ImmigrationRushStartHour: 17,
		ImmigrationRushEndHour:   20,
		LateNightStartHour:       22,
		LateNightEndHour:         5,
		WeekendTransitFactor:     0.85,
		RushTransitFactor:        1.6,
		TransitRushWindows:       [][2]int{{7, 9}, {17, 19}},
		HubWeekends: map[string][]time.Weekday{
			"doh": {time.Friday, time.Saturday},
			"ruh": {time.Friday, time.Saturday},
			"jed": {time.Friday, time.Saturday},
			"kwi": {time.Friday, time.Saturday},
		},
		DefaultWeekend:           []time.Weekday{time.Saturday, time.Sunday},
		StaticOverheadHours:      2.5,
		StaticImmigrationMinutes: 45,
		StaticTransitMinutes:     30,
		StaticSecurityMinutes:    15,
	}
}

// Model computes logistics overhead. It is stateless; the same inputs always
// produce the same breakdown.
type Model struct {
	policy Policy
}

// NewModel creates an overhead model with the given policy
func NewModel(policy Policy) *Model {
	return &Model{policy: policy}
}

// Policy returns the model's policy
func (m *Model) Policy() Policy {
	return m.policy
}

// IsLateNight reports whether an hour falls in the late-night window
func (m *Model) IsLateNight(hour int) bool {
	return inWindow(hour, m.policy.LateNightStartHour, m.policy.LateNightEndHour)
}

// ImmigrationMinutes is the expected immigration time at an arrival hour
func (m *Model) ImmigrationMinutes(f *models.IntelligenceFactors, arrivalHour int) float64 {
	if f == nil {
		return m.policy.StaticImmigrationMinutes
	}
	base := f.ImmigrationAvgMins
	switch {
	case inWindow(arrivalHour, m.policy.ImmigrationRushStartHour, m.policy.ImmigrationRushEndHour):
		return base * multiplier(f.RiskMultipliers.RushHour)
	case m.IsLateNight(arrivalHour):
		return base * multiplier(f.RiskMultipliers.LateNight)
	}
	return base
}

// TransitMinutesOneWay is the expected airport-to-city transit time
func (m *Model) TransitMinutesOneWay(hubID string, f *models.IntelligenceFactors, arrivalHour int, day time.Weekday) float64 {
	if f == nil {
		return m.policy.StaticTransitMinutes
	}
	base := f.TransitToCityMins
	if m.IsWeekend(hubID, day) {
		return base * m.policy.WeekendTransitFactor
	}
	for _, w := range m.policy.TransitRushWindows {
		if inWindow(arrivalHour, w[0], w[1]) {
			return base * m.policy.RushTransitFactor
		}
	}
	return base
}

// SecurityMinutes is the fixed security screening buffer
func (m *Model) SecurityMinutes(f *models.IntelligenceFactors) float64 {
	if f == nil {
		return m.policy.StaticSecurityMinutes
	}
	return f.SecurityCheckMins
}

// IsWeekend applies the hub's weekend definition
func (m *Model) IsWeekend(hubID string, day time.Weekday) bool {
	days, ok := m.policy.HubWeekends[models.NormalizeHubID(hubID)]
	if !ok {
		days = m.policy.DefaultWeekend
	}
	for _, d := range days {
		if d == day {
			return true
		}
	}
	return false
}

// Compute returns the overhead breakdown for a hub profile. A nil profile or
// one without intelligence factors yields the STATIC fallback.
func (m *Model) Compute(profile *models.AirportProfile, layoverHours float64, arrivalHour int, day time.Weekday) models.OverheadBreakdown {
	if !profile.HasIntelligence() {
		return m.static(layoverHours)
	}

	f := profile.IntelligenceFactors
	immigration := m.ImmigrationMinutes(f, arrivalHour)
	oneWay := m.TransitMinutesOneWay(profile.ID, f, arrivalHour, day)
	security := m.SecurityMinutes(f)

	total := (immigration+2*oneWay+security)/60 + m.policy.SafetyPadHours
	return models.OverheadBreakdown{
		ImmigrationMinutes:      immigration,
		TransitMinutesOneWay:    oneWay,
		TransitMinutesRoundTrip: 2 * oneWay,
		SecurityMinutes:         security,
		SafetyPaddingHours:      m.policy.SafetyPadHours,
		TotalOverheadHours:      total,
		SafeExplorationHours:    SafeExplorationHours(layoverHours, total),
		Method:                  models.OverheadDynamic,
	}
}

func (m *Model) static(layoverHours float64) models.OverheadBreakdown {
	p := m.policy
	return models.OverheadBreakdown{
		ImmigrationMinutes:      p.StaticImmigrationMinutes,
		TransitMinutesOneWay:    p.StaticTransitMinutes,
		TransitMinutesRoundTrip: 2 * p.StaticTransitMinutes,
		SecurityMinutes:         p.StaticSecurityMinutes,
		SafetyPaddingHours:      p.SafetyPadHours,
		TotalOverheadHours:      p.StaticOverheadHours,
		SafeExplorationHours:    SafeExplorationHours(layoverHours, p.StaticOverheadHours),
		Method:                  models.OverheadStatic,
	}
}

// SafeExplorationHours is max(0, layover - overhead)
func SafeExplorationHours(layoverHours, overheadHours float64) float64 {
	return math.Max(0, layoverHours-overheadHours)
}

// multiplier treats an unset multiplier as neutral
func multiplier(v float64) float64 {
	if v <= 0 {
		return 1
	}
	return v
}

// inWindow checks an inclusive hour window that may wrap midnight
func inWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}
