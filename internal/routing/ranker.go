package routing

import (
	"math"
	"sort"
	"strings"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Policy holds the hub ranking weights and thresholds
type Policy struct {
	PopularityWeight float64 `yaml:"popularity_weight"`
	EaseWeightShort  float64 `yaml:"ease_weight_short"` // layover < ShortLayoverHours
	EaseWeightMedium float64 `yaml:"ease_weight_medium"`
	EaseWeightLong   float64 `yaml:"ease_weight_long"` // layover >= LongLayoverHours
	NightWeight      float64 `yaml:"night_weight"`
	AccessWeight     float64 `yaml:"access_weight"`
	DaytimeBaseline  float64 `yaml:"daytime_baseline"`

	ShortLayoverHours float64 `yaml:"short_layover_hours"`
	LongLayoverHours  float64 `yaml:"long_layover_hours"`
	MediumFactor      float64 `yaml:"medium_length_factor"`
	LongFactor        float64 `yaml:"long_length_factor"`

	LateNightStartHour int `yaml:"late_night_start_hour"`
	LateNightEndHour   int `yaml:"late_night_end_hour"` // inclusive

	MaxResults int `yaml:"max_results"`
	MaxReasons int `yaml:"max_reasons"`
}

// DefaultPolicy returns the tuned ranking constants
func DefaultPolicy() Policy {
	return Policy{
		PopularityWeight:   0.35,
		EaseWeightShort:    0.40,
		EaseWeightMedium:   0.30,
		EaseWeightLong:     0.25,
		NightWeight:        0.20,
		AccessWeight:       0.20,
		DaytimeBaseline:    0.60,
		ShortLayoverHours:  5,
		LongLayoverHours:   8,
		MediumFactor:       0.9,
		LongFactor:         0.8,
		LateNightStartHour: 22,
		LateNightEndHour:   5,
		MaxResults:         5,
		MaxReasons:         3,
	}
}

// HubQuery is the input of a hub ranking
type HubQuery struct {
	Origin       string
	Destination  string
	LayoverHours float64
	ArrivalHour  int
	VisaValid    bool
	Query        string
}

// Ranker scores candidate layover hubs for a route
type Ranker struct {
	policy Policy
}

// NewRanker creates a ranker with the given policy
func NewRanker(policy Policy) *Ranker {
	return &Ranker{policy: policy}
}

// IsLateNight reports whether an arrival hour falls in the late-night window
func (p Policy) IsLateNight(hour int) bool {
	return inWrappedWindow(hour, p.LateNightStartHour, p.LateNightEndHour)
}

func inWrappedWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour <= end
	}
	return hour >= start || hour <= end
}

// Candidates returns the hubs eligible for a route in hub-id order
func (r *Ranker) Candidates(origin, destination string, hubs map[string]models.HubMeta) []models.HubMeta {
	origin = strings.ToUpper(strings.TrimSpace(origin))
	destination = strings.ToUpper(strings.TrimSpace(destination))

	targets := TargetRegions(RegionOf(origin), RegionOf(destination))
	allowed := make(map[string]bool, len(targets))
	for _, t := range targets {
		allowed[t] = true
	}

	ids := make([]string, 0, len(hubs))
	for id := range hubs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []models.HubMeta
	for _, id := range ids {
		h := hubs[id]
		if !allowed[h.Region] {
			continue
		}
		code := strings.ToUpper(h.Code)
		if code == "" {
			code = strings.ToUpper(h.ID)
		}
		if code == origin || code == destination {
			continue
		}
		out = append(out, h)
	}
	return out
}

// Rank scores the eligible hubs and returns the best ones, highest first
func (r *Ranker) Rank(q HubQuery, hubs map[string]models.HubMeta) []models.HubScore {
	candidates := r.Candidates(q.Origin, q.Destination, hubs)
	if len(candidates) == 0 {
		return []models.HubScore{}
	}

	late := r.policy.IsLateNight(q.ArrivalHour)
	easeWeight := r.easeWeight(q.LayoverHours)
	lengthFactor := r.lengthFactor(q.LayoverHours)

	scores := make([]models.HubScore, 0, len(candidates))
	for _, h := range candidates {
		frictionGood := clamp01(1 - h.Friction)

		night := r.policy.DaytimeBaseline
		if late {
			night = clamp01(h.LateNightStrength)
		}

		access := clamp01(h.AirsideStrength)
		if q.VisaValid {
			access = (clamp01(h.AirsideStrength) + clamp01(h.LandsideStrength)) / 2
		}

		raw := r.policy.PopularityWeight*clamp01(h.Popularity) +
			easeWeight*frictionGood +
			r.policy.NightWeight*night +
			r.policy.AccessWeight*access
		raw = clamp01(raw)

		code := h.Code
		if code == "" {
			code = strings.ToUpper(h.ID)
		}
		scores = append(scores, models.HubScore{
			HubID:   h.ID,
			Name:    h.Name,
			Code:    code,
			Region:  h.Region,
			Score:   round1(raw * 100 * lengthFactor),
			Reasons: r.reasons(h, frictionGood, late, q),
		})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if r.policy.MaxResults > 0 && len(scores) > r.policy.MaxResults {
		scores = scores[:r.policy.MaxResults]
	}
	return scores
}

func (r *Ranker) easeWeight(layoverHours float64) float64 {
	switch {
	case layoverHours < r.policy.ShortLayoverHours:
		return r.policy.EaseWeightShort
	case layoverHours < r.policy.LongLayoverHours:
		return r.policy.EaseWeightMedium
	default:
		return r.policy.EaseWeightLong
	}
}

func (r *Ranker) lengthFactor(layoverHours float64) float64 {
	switch {
	case layoverHours < r.policy.ShortLayoverHours:
		return 1.0
	case layoverHours < r.policy.LongLayoverHours:
		return r.policy.MediumFactor
	default:
		return r.policy.LongFactor
	}
}

func (r *Ranker) reasons(h models.HubMeta, frictionGood float64, late bool, q HubQuery) []string {
	var out []string
	add := func(s string) {
		if r.policy.MaxReasons <= 0 || len(out) < r.policy.MaxReasons {
			out = append(out, s)
		}
	}

	if frictionGood >= 0.75 {
		add("low airport friction")
	}
	if h.Popularity >= 0.85 {
		add("popular, well-connected hub")
	}
	if late && h.LateNightStrength >= 0.7 {
		add("strong late-night options")
	}
	if q.VisaValid && h.LandsideStrength >= 0.75 {
		add("easy city access with your visa")
	}
	if !q.VisaValid && h.AirsideStrength >= 0.8 {
		add("great airside amenities without a visa")
	}
	if len(out) == 0 {
		add("on a common routing for this trip")
	}
	return out
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
