package scoring

import (
	"math"

	"github.com/jengzang/layover-backend-go/internal/models"
	"github.com/jengzang/layover-backend-go/internal/vibe"
)

// LegacyScorer is the single-factor model: raw query similarity plus a
// keyword category boost, penalized for tight landside trips
type LegacyScorer struct {
	policy Policy
}

// NewLegacyScorer creates the legacy scorer
func NewLegacyScorer(p Policy) Scorer {
	return &LegacyScorer{policy: p}
}

func (s *LegacyScorer) GetName() string {
	return ModelLegacy
}

func (s *LegacyScorer) Rank(in Input) []models.RankedActivity {
	lp := s.policy.Legacy
	boosted := typeSet(vibe.MatchKeywords(in.Query, lp.Keywords))

	out := make([]models.RankedActivity, 0, len(in.Candidates))
	for i, c := range in.Candidates {
		a := c.Activity

		raw := 0.0
		if i < len(in.Similarities) {
			raw = in.Similarities[i]
		}

		boost := 0.0
		if boosted[a.Type] {
			boost = lp.KeywordBoost
		}
		buffer := s.Buffer(a, in.Budget.LayoverHours)
		if a.IsLandside() && buffer < lp.TightBufferHours {
			boost -= lp.LandsidePenalty
		}

		final := math.Min(1.0, raw+boost)

		risk := models.RiskLow
		if a.IsLandside() {
			risk = LegacyRisk(lp, in.Budget.LayoverHours, buffer)
		}

		intent := 0.0
		if boosted[a.Type] {
			intent = 1.0
		}
		friction := 1.0
		if a.IsLandside() {
			friction = clamp01(buffer / lp.MediumRiskBuffer)
		}

		out = append(out, models.RankedActivity{
			Activity:  a,
			Score:     round1(math.Max(0, final) * 100),
			RiskLevel: risk,
			Components: models.ScoreComponents{
				Semantic:    clamp01((raw + 1) / 2),
				IntentMatch: intent,
				Friction:    friction,
				OpenFactor:  c.Window.Factor(s.policy),
			},
			Explain: models.Explanation{
				Reasons:   explainReasons(s.policy, c, models.ScoreComponents{Semantic: clamp01((raw + 1) / 2)}, boosted, false),
				Tradeoffs: explainTradeoffs(s.policy, c, in, false),
				Overhead:  in.Overhead,
			},
		})
	}

	sortRanked(out)
	return out
}

// Buffer is the slack left after the activity and its zone's flat overhead
func (s *LegacyScorer) Buffer(a *models.Activity, layoverHours float64) float64 {
	overhead := s.policy.Legacy.AirsideOverhead
	if a.IsLandside() {
		overhead = s.policy.Legacy.LandsideOverhead
	}
	return layoverHours - (a.TimeConstraints.MinDurationHours + overhead)
}

// LegacyRisk grades a landside plan by layover length and remaining buffer
func LegacyRisk(lp LegacyPolicy, layoverHours, buffer float64) models.RiskLevel {
	switch {
	case layoverHours < lp.HighRiskLayover || buffer < lp.HighRiskBuffer:
		return models.RiskHigh
	case layoverHours < lp.MediumRiskLayover || buffer < lp.MediumRiskBuffer:
		return models.RiskMedium
	}
	return models.RiskLow
}

func init() {
	RegisterScorer(ModelLegacy, NewLegacyScorer)
}
