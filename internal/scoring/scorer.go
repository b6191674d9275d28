package scoring

import (
	"math"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// MultiFactorScorer combines semantic match, intent match, friction and
// opening hours into one weighted score
type MultiFactorScorer struct {
	policy Policy
}

// NewMultiFactorScorer creates the default scorer
func NewMultiFactorScorer(p Policy) Scorer {
	return &MultiFactorScorer{policy: p}
}

func (s *MultiFactorScorer) GetName() string {
	return ModelMultiFactor
}

// Rank scores every candidate and sorts best first
func (s *MultiFactorScorer) Rank(in Input) []models.RankedActivity {
	p := s.policy
	zombie := p.IsZombieHour(in.Budget.ArrivalHour)
	intents := typeSet(in.Intents)

	out := make([]models.RankedActivity, 0, len(in.Candidates))
	for i, c := range in.Candidates {
		a := c.Activity

		comp := models.ScoreComponents{
			Semantic:    s.semantic(in.Similarities, i),
			IntentMatch: s.intentMatch(a, intents, zombie),
			Friction:    s.friction(a, in.Budget.SafeHours, zombie),
			OpenFactor:  c.Window.Factor(p),
		}

		raw := p.Weights.Semantic*comp.Semantic +
			p.Weights.Intent*comp.IntentMatch +
			p.Weights.Friction*comp.Friction +
			p.Weights.Open*comp.OpenFactor

		risk := models.RiskMedium
		if comp.Friction > p.LowRiskFriction {
			risk = models.RiskLow
		}

		out = append(out, models.RankedActivity{
			Activity:   a,
			Score:      round1(clamp01(raw) * 100),
			RiskLevel:  risk,
			Components: comp,
			Explain: models.Explanation{
				Reasons:   explainReasons(p, c, comp, intents, zombie),
				Tradeoffs: explainTradeoffs(p, c, in, zombie),
				Overhead:  in.Overhead,
			},
		})
	}

	sortRanked(out)
	return out
}

// semantic rescales cosine from [-1,1] to [0,1]
func (s *MultiFactorScorer) semantic(sims []float64, i int) float64 {
	if i >= len(sims) {
		return s.policy.NeutralSemantic
	}
	return clamp01((sims[i] + 1) / 2)
}

func (s *MultiFactorScorer) intentMatch(a *models.Activity, intents map[models.ActivityType]bool, zombie bool) float64 {
	score := 0.0
	if intents[a.Type] {
		score = 1.0
	}
	if !isRest(a.Type) {
		return score
	}
	// sleep and relax serve each other
	if intents[models.TypeSleep] || intents[models.TypeRelax] {
		score = math.Max(score, s.policy.RestOverlapIntent)
	}
	if zombie && !a.IsLandside() {
		score = math.Max(score, s.policy.ZombieRestIntent)
	}
	return score
}

func (s *MultiFactorScorer) friction(a *models.Activity, safeHours float64, zombie bool) float64 {
	if !a.IsLandside() {
		return 1.0
	}
	f := s.policy.LandsideFrictionNormal
	if safeHours < s.policy.TightSafeHours {
		f = s.policy.LandsideFrictionTight
	}
	if sleepMode(s.policy, a, zombie) {
		f *= s.policy.SleepModeFactor
	}
	return f
}

func sleepMode(p Policy, a *models.Activity, zombie bool) bool {
	return p.SleepModeEnabled && zombie && a.IsLandside() && p.sleepModeType(a.Type)
}

func isRest(t models.ActivityType) bool {
	return t == models.TypeSleep || t == models.TypeRelax
}

func typeSet(types []models.ActivityType) map[models.ActivityType]bool {
	set := make(map[models.ActivityType]bool, len(types))
	for _, t := range types {
		set[t] = true
	}
	return set
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func init() {
	RegisterScorer(ModelMultiFactor, NewMultiFactorScorer)
}
