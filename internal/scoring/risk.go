package scoring

import (
	"fmt"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// PlanRiskWindow is how many of the top results a plan is judged on
const PlanRiskWindow = 3

// ComputePlanRisk grades the plan formed by the top of a ranking. A plan that
// leaves the airport is graded by the tightest landside activity among the
// top results; an airside plan is low risk.
func (p Policy) ComputePlanRisk(ranked []models.RankedActivity, layoverHours float64, visaValid bool) models.PlanRisk {
	if len(ranked) == 0 {
		return models.PlanRisk{Level: models.RiskUnknown, Reason: "no feasible activities for this layover"}
	}

	top := ranked
	if len(top) > PlanRiskWindow {
		top = top[:PlanRiskWindow]
	}

	var worst *models.RankedActivity
	worstBuffer := 0.0
	for i := range top {
		r := &top[i]
		if !r.Activity.IsLandside() {
			continue
		}
		buffer := r.Explain.Overhead.SafeExplorationHours - r.Activity.TimeConstraints.MinDurationHours
		if worst == nil || buffer < worstBuffer {
			worst, worstBuffer = r, buffer
		}
	}

	if worst == nil {
		if !visaValid {
			return models.PlanRisk{Level: models.RiskLow, Reason: "airside plan, no visa needed"}
		}
		return models.PlanRisk{Level: models.RiskLow, Reason: "airside plan, no immigration needed"}
	}

	level := LegacyRisk(p.Legacy, layoverHours, worstBuffer)
	return models.PlanRisk{
		Level:  level,
		Reason: fmt.Sprintf("city trip to %s leaves %.1fh of buffer on a %.1fh layover", worst.Activity.Title, worstBuffer, layoverHours),
	}
}
