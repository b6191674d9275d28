package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jengzang/layover-backend-go/internal/overhead"
	"github.com/jengzang/layover-backend-go/internal/routing"
	"github.com/jengzang/layover-backend-go/internal/schedule"
	"github.com/jengzang/layover-backend-go/internal/scoring"
	"github.com/jengzang/layover-backend-go/internal/vibe"
)

// Policy gathers every tunable heuristic of the engine
type Policy struct {
	Routing  routing.Policy  `yaml:"routing"`
	Overhead overhead.Policy `yaml:"overhead"`
	Vibe     vibe.Config     `yaml:"vibe"`
	Scoring  scoring.Policy  `yaml:"scoring"`
	Schedule schedule.Policy `yaml:"schedule"`
}

// DefaultPolicy returns the tuned defaults of every component
func DefaultPolicy() Policy {
	return Policy{
		Routing:  routing.DefaultPolicy(),
		Overhead: overhead.DefaultPolicy(),
		Vibe:     vibe.DefaultConfig(),
		Scoring:  scoring.DefaultPolicy(),
		Schedule: schedule.DefaultPolicy(),
	}
}

// LoadPolicy overlays a YAML file on the defaults. Keys missing from the
// file keep their default values. An empty path returns the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	if strings.TrimSpace(path) == "" {
		return p, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("failed to read policy: %w", err)
	}
	return ParsePolicy(data)
}

// ParsePolicy overlays YAML bytes on the defaults and validates the result
func ParsePolicy(data []byte) (Policy, error) {
	p := DefaultPolicy()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("failed to parse policy: %w", err)
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks cross-field constraints
func (p Policy) Validate() error {
	if err := p.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	if p.Vibe.Threshold < -1 || p.Vibe.Threshold > 1 {
		return fmt.Errorf("vibe: threshold must be within [-1,1], got %v", p.Vibe.Threshold)
	}
	r := p.Routing
	if r.ShortLayoverHours > r.LongLayoverHours {
		return fmt.Errorf("routing: short_layover_hours must not exceed long_layover_hours")
	}
	for _, h := range []int{
		r.LateNightStartHour, r.LateNightEndHour,
		p.Overhead.LateNightStartHour, p.Overhead.LateNightEndHour,
		p.Overhead.ImmigrationRushStartHour, p.Overhead.ImmigrationRushEndHour,
		p.Scoring.ZombieStartHour, p.Scoring.ZombieEndHour,
	} {
		if h < 0 || h > 23 {
			return fmt.Errorf("hour windows must use hours 0-23, got %d", h)
		}
	}
	if p.Overhead.SafetyPadHours < 0 || p.Overhead.StaticOverheadHours < 0 {
		return fmt.Errorf("overhead: hours must be >= 0")
	}
	if p.Schedule.BoardingBufferMinutes < 0 || p.Schedule.AirsideArrivalMinutes < 0 {
		return fmt.Errorf("schedule: minutes must be >= 0")
	}
	return nil
}
