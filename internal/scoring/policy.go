// Package scoring filters a hub's activities against the traveler's time and
// visa constraints and ranks the survivors.
package scoring

import (
	"fmt"
	"math"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Weights of the multi-factor score. Must sum to 1.0.
type Weights struct {
	Semantic float64 `yaml:"semantic"`
	Intent   float64 `yaml:"intent"`
	Friction float64 `yaml:"friction"`
	Open     float64 `yaml:"open"`
}

// Sum of all weights
func (w Weights) Sum() float64 {
	return w.Semantic + w.Intent + w.Friction + w.Open
}

// LegacyPolicy holds the constants of the single-factor scorer
type LegacyPolicy struct {
	KeywordBoost      float64 `yaml:"keyword_boost"`
	LandsidePenalty   float64 `yaml:"landside_penalty"`
	TightBufferHours  float64 `yaml:"tight_buffer_hours"`
	LandsideOverhead  float64 `yaml:"landside_overhead_hours"`
	AirsideOverhead   float64 `yaml:"airside_overhead_hours"`
	HighRiskLayover   float64 `yaml:"high_risk_layover_hours"`
	HighRiskBuffer    float64 `yaml:"high_risk_buffer_hours"`
	MediumRiskLayover float64 `yaml:"medium_risk_layover_hours"`
	MediumRiskBuffer  float64 `yaml:"medium_risk_buffer_hours"`

	Keywords map[models.ActivityType][]string `yaml:"keywords"`
}

// Policy holds every tunable of filtering and scoring
type Policy struct {
	Weights Weights `yaml:"weights"`
	Model   string  `yaml:"model"` // registered scorer name

	GateBufferHours float64 `yaml:"gate_buffer_hours"`
	// In STATIC mode the flat overhead is the only estimate available, so
	// airside activities are held to the same budget as landside ones.
	StaticAppliesToAirside bool `yaml:"static_applies_to_airside"`

	ClosingSoonHours   float64 `yaml:"closing_soon_hours"`
	ClosingSoonFactor  float64 `yaml:"closing_soon_factor"`
	OpensSoonLeadHours float64 `yaml:"opens_soon_lead_hours"`
	OpensSoonFactor    float64 `yaml:"opens_soon_factor"`

	ZombieStartHour int `yaml:"zombie_start_hour"`
	ZombieEndHour   int `yaml:"zombie_end_hour"` // inclusive

	TightSafeHours         float64               `yaml:"tight_safe_hours"`
	LandsideFrictionTight  float64               `yaml:"landside_friction_tight"`
	LandsideFrictionNormal float64               `yaml:"landside_friction_normal"`
	SleepModeEnabled       bool                  `yaml:"sleep_mode_enabled"`
	SleepModeFactor        float64               `yaml:"sleep_mode_factor"`
	SleepModeTypes         []models.ActivityType `yaml:"sleep_mode_types"`

	RestOverlapIntent float64 `yaml:"rest_overlap_intent"`
	ZombieRestIntent  float64 `yaml:"zombie_rest_intent"`

	NeutralSemantic float64 `yaml:"neutral_semantic"`
	LowRiskFriction float64 `yaml:"low_risk_friction"`
	StrongSemantic  float64 `yaml:"strong_semantic"`

	MaxReasons   int `yaml:"max_reasons"`
	MaxTradeoffs int `yaml:"max_tradeoffs"`

	FailsafeEnabled bool           `yaml:"failsafe_enabled"`
	Failsafes       []FailsafeRule `yaml:"failsafes"`

	Legacy LegacyPolicy `yaml:"legacy"`
}

// DefaultPolicy returns the tuned scoring constants
func DefaultPolicy() Policy {
	return Policy{
		Weights:                Weights{Semantic: 0.45, Intent: 0.25, Friction: 0.15, Open: 0.15},
		Model:                  ModelMultiFactor,
		GateBufferHours:        1.0,
		StaticAppliesToAirside: true,
		ClosingSoonHours:       1.0,
		ClosingSoonFactor:      0.6,
		OpensSoonLeadHours:     1.0,
		OpensSoonFactor:        0.8,
		ZombieStartHour:        22,
		ZombieEndHour:          5,
		TightSafeHours:         2.0,
		LandsideFrictionTight:  0.4,
		LandsideFrictionNormal: 0.7,
		SleepModeEnabled:       true,
		SleepModeFactor:        0.3,
		SleepModeTypes:         []models.ActivityType{models.TypeSights, models.TypeCulture, models.TypeShopping},
		RestOverlapIntent:      0.8,
		ZombieRestIntent:       0.75,
		NeutralSemantic:        0.5,
		LowRiskFriction:        0.6,
		StrongSemantic:         0.75,
		MaxReasons:             3,
		MaxTradeoffs:           3,
		FailsafeEnabled:        true,
		Failsafes:              DefaultFailsafes(),
		Legacy: LegacyPolicy{
			KeywordBoost:      0.25,
			LandsidePenalty:   0.2,
			TightBufferHours:  1.5,
			LandsideOverhead:  2.5,
			AirsideOverhead:   0.5,
			HighRiskLayover:   6,
			HighRiskBuffer:    1.25,
			MediumRiskLayover: 8,
			MediumRiskBuffer:  2.0,
			Keywords: map[models.ActivityType][]string{
				models.TypeFood:     {"food", "eat", "hungry", "lunch", "dinner", "snack"},
				models.TypeRelax:    {"relax", "sleep", "nap", "shower", "lounge", "tired"},
				models.TypeShopping: {"shop", "shopping", "buy", "mall", "souvenir"},
				models.TypeCulture:  {"culture", "museum", "history", "temple"},
				models.TypeSights:   {"sight", "sightseeing", "view", "photo", "landmark"},
			},
		},
	}
}

// Validate checks weight and factor ranges
func (p Policy) Validate() error {
	if math.Abs(p.Weights.Sum()-1.0) > 1e-6 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", p.Weights.Sum())
	}
	for name, v := range map[string]float64{
		"closing_soon_factor":      p.ClosingSoonFactor,
		"opens_soon_factor":        p.OpensSoonFactor,
		"sleep_mode_factor":        p.SleepModeFactor,
		"landside_friction_tight":  p.LandsideFrictionTight,
		"landside_friction_normal": p.LandsideFrictionNormal,
		"neutral_semantic":         p.NeutralSemantic,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if p.GateBufferHours < 0 {
		return fmt.Errorf("gate_buffer_hours must be >= 0")
	}
	if _, ok := scorerRegistry[p.Model]; !ok {
		return fmt.Errorf("unknown scoring model %q", p.Model)
	}
	return nil
}

// IsZombieHour reports whether an arrival hour is in the late-night window
// when cities are assumed effectively closed
func (p Policy) IsZombieHour(hour int) bool {
	if p.ZombieStartHour <= p.ZombieEndHour {
		return hour >= p.ZombieStartHour && hour <= p.ZombieEndHour
	}
	return hour >= p.ZombieStartHour || hour <= p.ZombieEndHour
}

func (p Policy) sleepModeType(t models.ActivityType) bool {
	for _, s := range p.SleepModeTypes {
		if s == t {
			return true
		}
	}
	return false
}
