package scoring

import (
	"sort"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// Registered scorer names
const (
	ModelMultiFactor = "multi_factor"
	ModelLegacy      = "legacy"
)

// Input is everything a scorer needs for one ranking
type Input struct {
	Candidates []Candidate
	// Cosine similarity of the query to each candidate, aligned with
	// Candidates. Nil when embedding was unavailable.
	Similarities []float64
	Intents      []models.ActivityType
	Query        string
	Budget       Budget
	Overhead     models.OverheadBreakdown

	// Terminal coordinates, zero when unknown
	HubLat, HubLon float64
}

// Scorer ranks filtered candidates
type Scorer interface {
	Rank(in Input) []models.RankedActivity
	GetName() string
}

// ScorerFactory creates a scorer for a policy
type ScorerFactory func(p Policy) Scorer

var scorerRegistry = make(map[string]ScorerFactory)

// RegisterScorer registers a scorer factory under a model name
func RegisterScorer(name string, factory ScorerFactory) {
	scorerRegistry[name] = factory
}

// GetScorer returns the scorer for a model name, or nil if unknown
func GetScorer(name string, p Policy) Scorer {
	factory, ok := scorerRegistry[name]
	if !ok {
		return nil
	}
	return factory(p)
}

// ScorerNames lists the registered model names
func ScorerNames() []string {
	names := make([]string, 0, len(scorerRegistry))
	for n := range scorerRegistry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// sortRanked orders by score descending; equal scores keep input order,
// which is catalog order.
func sortRanked(out []models.RankedActivity) {
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
}
