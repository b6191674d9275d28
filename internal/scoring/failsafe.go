package scoring

import "github.com/jengzang/layover-backend-go/internal/models"

// FailsafeRule synthesizes a generic airside activity when the traveler asks
// for something common and the catalog has nothing left that serves it
type FailsafeRule struct {
	Triggers    []models.ActivityType `yaml:"triggers"`
	SatisfiedBy []models.ActivityType `yaml:"satisfied_by"`

	ID            string              `yaml:"id"`
	Title         string              `yaml:"title"`
	Type          models.ActivityType `yaml:"type"`
	Description   string              `yaml:"description"`
	Tip           string              `yaml:"tip"`
	DurationHours float64             `yaml:"duration_hours"`
	CostTier      string              `yaml:"cost_tier"`
}

// Activity builds the synthetic activity of the rule
func (r FailsafeRule) Activity() models.Activity {
	return models.Activity{
		ID:          r.ID,
		Title:       r.Title,
		Type:        r.Type,
		Description: r.Description,
		FoundersTip: r.Tip,
		Location:    models.Location{Zone: models.ZoneAirside},
		TimeConstraints: models.TimeConstraints{
			MinDurationHours: r.DurationHours,
			Is24h:            true,
		},
		CostTier:  r.CostTier,
		Synthetic: true,
	}
}

// DefaultFailsafes covers food, shopping and rest asks
func DefaultFailsafes() []FailsafeRule {
	return []FailsafeRule{
		{
			Triggers:      []models.ActivityType{models.TypeFood},
			SatisfiedBy:   []models.ActivityType{models.TypeFood},
			ID:            "failsafe_food",
			Title:         "Terminal Food Court",
			Type:          models.TypeFood,
			Description:   "Various international dining options in the transit area. Quick and convenient.",
			Tip:           "Check the terminal map for the nearest food court. Usually open around the clock.",
			DurationHours: 1.0,
			CostTier:      "VARIES",
		},
		{
			Triggers:      []models.ActivityType{models.TypeShopping},
			SatisfiedBy:   []models.ActivityType{models.TypeShopping},
			ID:            "failsafe_shopping",
			Title:         "Duty Free Shopping",
			Type:          models.TypeShopping,
			Description:   "Perfumes, chocolates and electronics available airside.",
			Tip:           "Good for killing 30-60 minutes.",
			DurationHours: 0.5,
			CostTier:      "VARIES",
		},
		{
			Triggers:      []models.ActivityType{models.TypeSleep},
			SatisfiedBy:   []models.ActivityType{models.TypeSleep},
			ID:            "failsafe_rest",
			Title:         "Quiet Rest Zone",
			Type:          models.TypeRelax,
			Description:   "Designated quiet areas with reclining chairs near the gates.",
			Tip:           "Bring an eye mask and earplugs.",
			DurationHours: 1.0,
			CostTier:      "FREE",
		},
	}
}

// InjectFailsafes appends synthetic activities for triggered rules that no
// candidate satisfies. Synthetic activities go through the same hard filters
// and are indexed after the catalog so real entries win ties.
func (p Policy) InjectFailsafes(cands []Candidate, triggers []models.ActivityType, catalogLen int, b Budget) []Candidate {
	if !p.FailsafeEnabled || len(triggers) == 0 {
		return cands
	}

	asked := make(map[models.ActivityType]bool, len(triggers))
	for _, t := range triggers {
		asked[t] = true
	}

	next := catalogLen
	for _, rule := range p.Failsafes {
		if !anyIn(rule.Triggers, asked) || satisfied(cands, rule.SatisfiedBy) {
			continue
		}
		act := rule.Activity()
		c, reason := p.Admit(&act, next, b)
		if reason != "" {
			continue
		}
		cands = append(cands, c)
		next++
	}
	return cands
}

func anyIn(types []models.ActivityType, set map[models.ActivityType]bool) bool {
	for _, t := range types {
		if set[t] {
			return true
		}
	}
	return false
}

func satisfied(cands []Candidate, by []models.ActivityType) bool {
	for _, c := range cands {
		for _, t := range by {
			if c.Activity.Type == t {
				return true
			}
		}
	}
	return false
}
