// Package schedule packs ranked activities into a layover timeline bounded
// by a must-return deadline.
package schedule

import (
	"time"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Policy holds the scheduler constants
type Policy struct {
	BoardingBufferMinutes float64 `yaml:"boarding_buffer_minutes"`
	AirsideArrivalMinutes float64 `yaml:"airside_arrival_minutes"`
	MaxActivities         int     `yaml:"max_activities"`
	// A plan goes landside when any of the first LandsideLookahead results is landside
	LandsideLookahead int `yaml:"landside_lookahead"`
}

// DefaultPolicy returns the standard scheduler constants
func DefaultPolicy() Policy {
	return Policy{
		BoardingBufferMinutes: 15,
		AirsideArrivalMinutes: 20,
		MaxActivities:         3,
		LandsideLookahead:     3,
	}
}

// Block labels
const (
	TaskImmigration   = "Immigration"
	TaskTransitToCity = "Transit to City"
	TaskArrival       = "Arrival & Transfer"
	TaskFreeTime      = "Free Time"
	TaskReturnTransit = "Return Transit"
	TaskBoarding      = "Security & Boarding"
)

// Timeline is a built schedule
type Timeline struct {
	Blocks     []models.ScheduleBlock `json:"blocks"`
	Landside   bool                   `json:"landside"`
	Departure  time.Time              `json:"departure"`
	MustReturn time.Time              `json:"must_return"`
	Warnings   []string               `json:"warnings,omitempty"`
}

// Scheduler is a greedy timeline builder. It is stateless.
type Scheduler struct {
	policy Policy
}

// NewScheduler creates a scheduler with the given policy
func NewScheduler(policy Policy) *Scheduler {
	return &Scheduler{policy: policy}
}

// Build lays out the ranked activities between arrival and departure.
// Blocks are contiguous, the last one ends at departure, and no activity
// crosses the must-return time.
func (s *Scheduler) Build(ranked []models.RankedActivity, arrival time.Time, layoverHours float64, ov models.OverheadBreakdown) Timeline {
	departure := arrival.Add(hoursToDuration(layoverHours))
	tl := Timeline{Blocks: []models.ScheduleBlock{}, Departure: departure, MustReturn: departure}
	if len(ranked) == 0 {
		return tl
	}

	immigration := minutesToDuration(ov.ImmigrationMinutes)
	transit := minutesToDuration(ov.TransitMinutesOneWay)
	security := minutesToDuration(ov.SecurityMinutes)
	boarding := minutesToDuration(s.policy.BoardingBufferMinutes)

	landside := s.wantsLandside(ranked)
	if landside {
		mustReturn := departure.Add(-(security + transit + boarding))
		if arrival.Add(immigration + transit).After(mustReturn) {
			landside = false
			tl.Warnings = append(tl.Warnings, "not enough time to reach the city and return, staying airside")
		}
	}

	reserve := security + boarding
	if landside {
		reserve += transit
	}
	mustReturn := departure.Add(-reserve)
	if mustReturn.Before(arrival) {
		mustReturn = arrival
	}
	tl.Landside = landside
	tl.MustReturn = mustReturn

	cursor := arrival
	emit := func(task string, typ models.BlockType, end time.Time, activityID string) {
		if !end.After(cursor) {
			return
		}
		tl.Blocks = append(tl.Blocks, models.ScheduleBlock{Task: task, Type: typ, Start: cursor, End: end, ActivityID: activityID})
		cursor = end
	}

	if landside {
		emit(TaskImmigration, models.BlockLogistics, cursor.Add(immigration), "")
		emit(TaskTransitToCity, models.BlockLogistics, cursor.Add(transit), "")
	} else {
		emit(TaskArrival, models.BlockLogistics, minTime(cursor.Add(minutesToDuration(s.policy.AirsideArrivalMinutes)), mustReturn), "")
	}

	placed := 0
	for _, r := range ranked {
		if s.policy.MaxActivities > 0 && placed >= s.policy.MaxActivities {
			break
		}
		a := r.Activity
		if a == nil || a.IsLandside() != landside {
			continue
		}
		end := cursor.Add(hoursToDuration(a.TimeConstraints.MinDurationHours))
		if end.After(mustReturn) || !end.After(cursor) {
			// a shorter one further down may still fit
			continue
		}
		emit(a.Title, models.BlockActivity, end, a.ID)
		placed++
	}

	emit(TaskFreeTime, models.BlockBuffer, mustReturn, "")
	if landside {
		emit(TaskReturnTransit, models.BlockLogistics, cursor.Add(transit), "")
	}

	tl.Blocks = append(tl.Blocks, models.ScheduleBlock{Task: TaskBoarding, Type: models.BlockLogistics, Start: cursor, End: departure})
	return tl
}

func (s *Scheduler) wantsLandside(ranked []models.RankedActivity) bool {
	n := s.policy.LandsideLookahead
	if n <= 0 || n > len(ranked) {
		n = len(ranked)
	}
	for _, r := range ranked[:n] {
		if r.Activity != nil && r.Activity.IsLandside() {
			return true
		}
	}
	return false
}

// ArrivalTime places an arrival hour on a calendar day
func ArrivalTime(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}

func hoursToDuration(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

func minutesToDuration(m float64) time.Duration {
	return time.Duration(m * float64(time.Minute))
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
