// Package vibe maps a free-text travel query to activity intent labels.
package vibe

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jengzang/layover-backend-go/internal/embedding"
	"github.com/jengzang/layover-backend-go/internal/models"
)

// Anchor is a label with the phrases that represent it
type Anchor struct {
	Label   models.ActivityType `yaml:"label"`
	Phrases []string            `yaml:"phrases"`
}

// DefaultAnchors is the fixed anchor set, in tie-break order
func DefaultAnchors() []Anchor {
	return []Anchor{
		{models.TypeFood, []string{"local food", "restaurants and street food", "something to eat"}},
		{models.TypeSights, []string{"sightseeing tour", "famous landmarks and views", "city skyline viewpoints"}},
		{models.TypeCulture, []string{"museums and history", "temples and heritage", "local culture"}},
		{models.TypeRelax, []string{"relaxing lounge", "spa and massage", "quiet place to unwind"}},
		{models.TypeSleep, []string{"sleep", "nap in a rest pod", "transit hotel bed"}},
		{models.TypeShopping, []string{"shopping", "duty free stores", "souvenirs and boutiques"}},
		{models.TypeAdventure, []string{"adventure activities", "outdoor thrills", "hiking and nature walks"}},
	}
}

// DefaultKeywords trigger intents from raw query words. Used when embedding
// is unavailable and to decide failsafe injection.
func DefaultKeywords() map[models.ActivityType][]string {
	return map[models.ActivityType][]string{
		models.TypeFood:     {"food", "eat", "eating", "hungry", "lunch", "dinner", "snack", "breakfast"},
		models.TypeRelax:    {"relax", "shower", "lounge", "tired", "spa", "chill"},
		models.TypeSleep:    {"sleep", "nap", "rest", "bed"},
		models.TypeShopping: {"shop", "shopping", "buy", "mall", "souvenir"},
		models.TypeCulture:  {"culture", "museum", "history", "temple", "heritage"},
		models.TypeSights:   {"sight", "sightseeing", "view", "photo", "landmark"},
	}
}

// Config tunes the analyzer
type Config struct {
	Threshold float64 `yaml:"threshold"`
	MaxLabels int     `yaml:"max_labels"`

	Anchors  []Anchor                         `yaml:"anchors"`
	Keywords map[models.ActivityType][]string `yaml:"keywords"`
}

// DefaultConfig returns the standard threshold and anchor set
func DefaultConfig() Config {
	return Config{
		Threshold: 0.35,
		MaxLabels: 3,
		Anchors:   DefaultAnchors(),
		Keywords:  DefaultKeywords(),
	}
}

// LabelScore is the similarity of a query to one label
type LabelScore struct {
	Label      models.ActivityType `json:"label"`
	Similarity float64             `json:"similarity"`
}

// Analyzer detects intents by cosine similarity against anchor phrases.
// A label's similarity is the best match among its phrases.
type Analyzer struct {
	embedder embedding.Embedder
	cfg      Config

	mu      sync.Mutex
	anchors [][][]float32 // per anchor, per phrase
}

// NewAnalyzer creates an analyzer; anchor vectors are computed on first use
func NewAnalyzer(embedder embedding.Embedder, cfg Config) *Analyzer {
	if cfg.MaxLabels <= 0 {
		cfg.MaxLabels = 3
	}
	if len(cfg.Anchors) == 0 {
		cfg.Anchors = DefaultAnchors()
	}
	if cfg.Keywords == nil {
		cfg.Keywords = DefaultKeywords()
	}
	return &Analyzer{embedder: embedder, cfg: cfg}
}

// Scores returns the similarity of the query to every label, best first.
// Ties keep anchor order.
func (a *Analyzer) Scores(ctx context.Context, query string) ([]LabelScore, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}
	anchors, err := a.anchorVectors(ctx)
	if err != nil {
		return nil, err
	}
	qv, err := embedding.EmbedOne(ctx, a.embedder, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	scores := make([]LabelScore, 0, len(a.cfg.Anchors))
	for i, anc := range a.cfg.Anchors {
		best := -1.0
		for _, pv := range anchors[i] {
			if s := embedding.Cosine(qv, pv); s > best {
				best = s
			}
		}
		scores = append(scores, LabelScore{Label: anc.Label, Similarity: best})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Similarity > scores[j].Similarity
	})
	return scores, nil
}

// Analyze returns up to MaxLabels labels above the threshold, best first.
// When none clears the threshold the single best label is returned.
func (a *Analyzer) Analyze(ctx context.Context, query string) ([]models.ActivityType, error) {
	scores, err := a.Scores(ctx, query)
	if err != nil || len(scores) == 0 {
		return nil, err
	}

	var out []models.ActivityType
	for _, s := range scores {
		if s.Similarity <= a.cfg.Threshold {
			break
		}
		out = append(out, s.Label)
		if len(out) == a.cfg.MaxLabels {
			break
		}
	}
	if len(out) == 0 {
		out = append(out, scores[0].Label)
	}
	return out, nil
}

// Keywords returns the labels whose trigger words appear in the query, in
// catalog order.
func (a *Analyzer) Keywords(query string) []models.ActivityType {
	return MatchKeywords(query, a.cfg.Keywords)
}

// MatchKeywords finds labels whose trigger words occur as whole query tokens
func MatchKeywords(query string, keywords map[models.ActivityType][]string) []models.ActivityType {
	tokens := make(map[string]bool)
	for _, t := range embedding.Tokenize(query) {
		tokens[t] = true
	}

	var out []models.ActivityType
	for _, label := range models.ActivityTypes {
		for _, w := range keywords[label] {
			if tokens[w] {
				out = append(out, label)
				break
			}
		}
	}
	return out
}

func (a *Analyzer) anchorVectors(ctx context.Context) ([][][]float32, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.anchors != nil {
		return a.anchors, nil
	}

	var phrases []string
	for _, anc := range a.cfg.Anchors {
		phrases = append(phrases, anc.Phrases...)
	}
	vecs, err := a.embedder.Embed(ctx, phrases)
	if err != nil {
		return nil, fmt.Errorf("embed anchors: %w", err)
	}
	if len(vecs) != len(phrases) {
		return nil, fmt.Errorf("embed anchors: got %d vectors for %d phrases", len(vecs), len(phrases))
	}

	out := make([][][]float32, len(a.cfg.Anchors))
	k := 0
	for i, anc := range a.cfg.Anchors {
		out[i] = vecs[k : k+len(anc.Phrases)]
		k += len(anc.Phrases)
	}
	a.anchors = out
	return out, nil
}
