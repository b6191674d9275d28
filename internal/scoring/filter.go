package scoring

import (
	"fmt"
	"math"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Budget is the time and visa context every hard filter checks against
type Budget struct {
	LayoverHours    float64
	SafeHours       float64 // safe exploration time after overhead
	ArrivalHour     int
	LandsideAllowed bool
	Method          models.OverheadMethod
}

// Candidate is an activity that passed every hard filter
type Candidate struct {
	Activity    *models.Activity
	Index       int // catalog position, used as the tie-break
	Window      Window
	BudgetHours float64
}

// Rejection records why an activity was filtered out
type Rejection struct {
	ActivityID string `json:"activity_id"`
	Reason     string `json:"reason"`
}

// Rejection reasons
const (
	RejectNoVisa   = "landside requires a valid visa"
	RejectDuration = "does not fit the available time"
	RejectClosed   = "closed at arrival"
)

// BudgetHours is the time available for an activity in its zone
func (p Policy) BudgetHours(a *models.Activity, b Budget) float64 {
	if a.IsLandside() {
		return b.SafeHours
	}
	if b.Method == models.OverheadStatic && p.StaticAppliesToAirside {
		return b.SafeHours
	}
	return math.Max(0, b.LayoverHours-p.GateBufferHours)
}

// Admit runs the hard filters on one activity. The reason is empty when the
// activity is admitted.
func (p Policy) Admit(a *models.Activity, index int, b Budget) (Candidate, string) {
	if a.IsLandside() && !b.LandsideAllowed {
		return Candidate{}, RejectNoVisa
	}

	w := CheckWindow(a.TimeConstraints, b.ArrivalHour, p)
	if w.Status == WindowClosed {
		return Candidate{}, RejectClosed
	}

	budget := p.BudgetHours(a, b)
	// an activity that opens later eats the wait from the budget
	if a.TimeConstraints.MinDurationHours+w.HoursUntilOpen > budget {
		return Candidate{}, RejectDuration
	}

	return Candidate{Activity: a, Index: index, Window: w, BudgetHours: budget}, ""
}

// Filter returns the admitted activities in catalog order along with the
// rejections. The returned candidates point into acts.
func (p Policy) Filter(acts []models.Activity, b Budget) ([]Candidate, []Rejection) {
	var (
		out      []Candidate
		rejected []Rejection
	)
	for i := range acts {
		c, reason := p.Admit(&acts[i], i, b)
		if reason != "" {
			rejected = append(rejected, Rejection{ActivityID: activityKey(&acts[i], i), Reason: reason})
			continue
		}
		out = append(out, c)
	}
	return out, rejected
}

func activityKey(a *models.Activity, i int) string {
	if a.ID != "" {
		return a.ID
	}
	return fmt.Sprintf("#%d", i)
}
