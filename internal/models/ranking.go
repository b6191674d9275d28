package models

import "time"

// OverheadMethod tags how an overhead breakdown was derived
type OverheadMethod string

const (
	OverheadDynamic OverheadMethod = "DYNAMIC" // from measured intelligence factors
	OverheadStatic  OverheadMethod = "STATIC"  // flat fallback, lower confidence
)

// OverheadBreakdown is the logistics cost subtracted from a layover
type OverheadBreakdown struct {
	ImmigrationMinutes      float64        `json:"immigration_minutes"`
	TransitMinutesOneWay    float64        `json:"transit_minutes_one_way"`
	TransitMinutesRoundTrip float64        `json:"transit_minutes_round_trip"`
	SecurityMinutes         float64        `json:"security_minutes"`
	SafetyPaddingHours      float64        `json:"safety_padding"`
	TotalOverheadHours      float64        `json:"total_overhead_hours"`
	SafeExplorationHours    float64        `json:"safe_exploration_hours"`
	Method                  OverheadMethod `json:"method"`
}

// RiskLevel grades how likely a plan is to endanger the onward flight
type RiskLevel string

const (
	RiskLow     RiskLevel = "LOW"
	RiskMedium  RiskLevel = "MED"
	RiskHigh    RiskLevel = "HIGH"
	RiskUnknown RiskLevel = "UNKNOWN"
)

// Explanation is the display bundle attached to each ranked activity
type Explanation struct {
	Reasons   []string          `json:"reasons"`
	Tradeoffs []string          `json:"tradeoffs"`
	Overhead  OverheadBreakdown `json:"overhead"`
}

// ScoreComponents are the normalized factors behind a score
type ScoreComponents struct {
	Semantic    float64 `json:"semantic"`
	IntentMatch float64 `json:"intent_match"`
	Friction    float64 `json:"friction"`
	OpenFactor  float64 `json:"open_factor"`
}

// RankedActivity is a scored activity that passed every hard filter
type RankedActivity struct {
	Activity   *Activity       `json:"activity"`
	Score      float64         `json:"score"` // 0-100, one decimal
	RiskLevel  RiskLevel       `json:"risk_level"`
	Explain    Explanation     `json:"explain"`
	Components ScoreComponents `json:"components"`
}

// PlanRisk is the overall risk of following a ranking
type PlanRisk struct {
	Level  RiskLevel `json:"level"`
	Reason string    `json:"reason"`
}

// BlockType classifies a timeline block
type BlockType string

const (
	BlockLogistics BlockType = "Logistics"
	BlockActivity  BlockType = "Activity"
	BlockBuffer    BlockType = "Buffer"
)

// ScheduleBlock is one contiguous slot of the layover timeline
type ScheduleBlock struct {
	Task       string    `json:"task"`
	Type       BlockType `json:"type"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	ActivityID string    `json:"activity_id,omitempty"`
}

// Duration is End - Start
func (b ScheduleBlock) Duration() time.Duration {
	return b.End.Sub(b.Start)
}

// Plan bundles the full result of a planning request
type Plan struct {
	HubID      string            `json:"hub_id"`
	Intents    []ActivityType    `json:"intents"`
	Overhead   OverheadBreakdown `json:"overhead"`
	Activities []RankedActivity  `json:"activities"`
	Risk       PlanRisk          `json:"risk"`
	Timeline   []ScheduleBlock   `json:"timeline"`
	Warnings   []string          `json:"warnings,omitempty"`
}
