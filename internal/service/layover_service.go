package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jengzang/layover-backend-go/internal/apierr"
	"github.com/jengzang/layover-backend-go/internal/config"
	"github.com/jengzang/layover-backend-go/internal/embedding"
	"github.com/jengzang/layover-backend-go/internal/logger"
	"github.com/jengzang/layover-backend-go/internal/models"
	"github.com/jengzang/layover-backend-go/internal/overhead"
	"github.com/jengzang/layover-backend-go/internal/routing"
	"github.com/jengzang/layover-backend-go/internal/schedule"
	"github.com/jengzang/layover-backend-go/internal/scoring"
	"github.com/jengzang/layover-backend-go/internal/vibe"
)

// HubStore provides already-provisioned hub records. A missing hub is
// (nil, nil), never an error.
type HubStore interface {
	GetHub(ctx context.Context, id string) (*models.AirportProfile, error)
	ListHubMeta(ctx context.Context) (map[string]models.HubMeta, error)
}

// Vectors embeds queries and activity texts; satisfied by *embedding.Cache
type Vectors interface {
	embedding.Embedder
	HubVectors(ctx context.Context, hubID string, texts []string) ([][]float32, error)
}

// failsafeVectorKey groups synthetic activity vectors in the cache
const failsafeVectorKey = "_failsafe"

// LayoverService orchestrates hub ranking, activity ranking and scheduling
type LayoverService struct {
	store     HubStore
	vectors   Vectors
	analyzer  *vibe.Analyzer
	overhead  *overhead.Model
	ranker    *routing.Ranker
	scheduler *schedule.Scheduler
	policy    scoring.Policy
	scorer    scoring.Scorer
	log       *logger.Logger
	now       func() time.Time
}

// NewLayoverService creates the service. vectors may be nil, in which case
// semantic scores are neutral and intents come from keywords.
func NewLayoverService(store HubStore, vectors Vectors, policy config.Policy, log *logger.Logger) (*LayoverService, error) {
	if err := policy.Validate(); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	scorer := scoring.GetScorer(policy.Scoring.Model, policy.Scoring)
	if scorer == nil {
		return nil, fmt.Errorf("unknown scoring model: %s", policy.Scoring.Model)
	}

	s := &LayoverService{
		store:     store,
		vectors:   vectors,
		overhead:  overhead.NewModel(policy.Overhead),
		ranker:    routing.NewRanker(policy.Routing),
		scheduler: schedule.NewScheduler(policy.Schedule),
		policy:    policy.Scoring,
		scorer:    scorer,
		log:       log.With("service", "LayoverService"),
		now:       time.Now,
	}
	s.analyzer = vibe.NewAnalyzer(vectors, policy.Vibe)
	return s, nil
}

// ScorerName is the active scoring model
func (s *LayoverService) ScorerName() string {
	return s.scorer.GetName()
}

// Hubs returns the routing metadata of every hub, falling back to the
// builtin table when the store has none.
func (s *LayoverService) Hubs(ctx context.Context) map[string]models.HubMeta {
	if s.store == nil {
		return routing.DefaultHubMeta()
	}
	metas, err := s.store.ListHubMeta(ctx)
	if err != nil {
		s.log.Warn("hub metadata unavailable, using builtin table", "error", err)
		return routing.DefaultHubMeta()
	}
	if len(metas) == 0 {
		return routing.DefaultHubMeta()
	}
	return metas
}

// RankHubs scores candidate hubs for a route
func (s *LayoverService) RankHubs(ctx context.Context, q routing.HubQuery) ([]models.HubScore, error) {
	if math.IsNaN(q.LayoverHours) || math.IsInf(q.LayoverHours, 0) {
		return nil, apierr.InvalidInput("layover_hours must be a finite number")
	}
	if q.LayoverHours < 0 {
		return nil, apierr.InvalidInput("layover_hours must be >= 0, got %v", q.LayoverHours)
	}
	if q.ArrivalHour < 0 || q.ArrivalHour > 23 {
		return nil, apierr.InvalidInput("arrival_hour must be within 0-23, got %d", q.ArrivalHour)
	}
	q.Origin = routing.ResolveAirportCode(q.Origin)
	q.Destination = routing.ResolveAirportCode(q.Destination)
	return s.ranker.Rank(q, s.Hubs(ctx)), nil
}

// rankResult carries the intermediate products of one activity ranking
type rankResult struct {
	profile  *models.AirportProfile
	intents  []models.ActivityType
	overhead models.OverheadBreakdown
	ranked   []models.RankedActivity
	warnings []string
}

// RankActivities filters and scores a hub's catalog for a trip
func (s *LayoverService) RankActivities(ctx context.Context, req models.TripRequest) ([]models.RankedActivity, error) {
	res, err := s.rank(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.ranked, nil
}

func (s *LayoverService) rank(ctx context.Context, req models.TripRequest) (*rankResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	hubID := models.NormalizeHubID(req.HubID)
	if hubID == "" {
		return nil, apierr.InvalidInput("hub_id is required")
	}
	log := s.log.With("hub", hubID)

	profile := s.loadProfile(ctx, hubID)
	ov := s.overhead.Compute(profile, req.LayoverHours, req.ArrivalHour, req.DayOfWeek)
	res := &rankResult{profile: profile, overhead: ov, ranked: []models.RankedActivity{}}
	if ov.Method == models.OverheadStatic {
		res.warnings = append(res.warnings, "live airport data unavailable, using a flat overhead estimate")
	}
	if profile == nil {
		log.Warn("hub not provisioned")
		res.warnings = append(res.warnings, "no activity catalog for this hub")
		return res, nil
	}

	query := req.EffectiveQuery()
	budget := scoring.Budget{
		LayoverHours:    req.LayoverHours,
		SafeHours:       ov.SafeExplorationHours,
		ArrivalHour:     req.ArrivalHour,
		LandsideAllowed: req.LandsideAllowed(),
		Method:          ov.Method,
	}

	// Intents, query vector and catalog vectors are independent. A failed
	// embedding must not cancel intent detection, so no shared context.
	var (
		intents    []models.ActivityType
		queryVec   []float32
		catalogVec [][]float32
		g          errgroup.Group
	)
	g.Go(func() error {
		intents = s.detectIntents(ctx, log, query)
		return nil
	})
	if s.vectors != nil && strings.TrimSpace(query) != "" {
		g.Go(func() error {
			v, err := embedding.EmbedOne(ctx, s.vectors, query)
			if err != nil {
				return fmt.Errorf("embed query: %w", err)
			}
			queryVec = v
			return nil
		})
		g.Go(func() error {
			texts := make([]string, len(profile.Activities))
			for i := range profile.Activities {
				texts[i] = profile.Activities[i].EmbeddingText()
			}
			v, err := s.vectors.HubVectors(ctx, hubID, texts)
			if err != nil {
				return fmt.Errorf("embed catalog: %w", err)
			}
			catalogVec = v
			return nil
		})
	}
	embedErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res.intents = intents

	candidates, rejected := s.policy.Filter(profile.Activities, budget)
	log.Debug("hard filters applied", "kept", len(candidates), "rejected", len(rejected))
	triggers := unionTypes(intents, s.analyzer.Keywords(query))
	candidates = s.policy.InjectFailsafes(candidates, triggers, len(profile.Activities), budget)

	var sims []float64
	if embedErr != nil {
		log.Warn("embedding unavailable, semantic score neutral", "error", embedErr)
	} else if queryVec != nil {
		sims = s.similarities(ctx, log, candidates, queryVec, catalogVec)
	}

	res.ranked = s.scorer.Rank(scoring.Input{
		Candidates:   candidates,
		Similarities: sims,
		Intents:      intents,
		Query:        query,
		Budget:       budget,
		Overhead:     ov,
		HubLat:       profile.Lat,
		HubLon:       profile.Lon,
	})
	if res.ranked == nil {
		res.ranked = []models.RankedActivity{}
	}
	log.Info("activities ranked",
		"scorer", s.scorer.GetName(),
		"candidates", len(candidates),
		"intents", intents,
		"method", ov.Method,
	)
	return res, nil
}

// similarities aligns cosine similarities with candidates. Synthetic
// candidates are embedded on demand; nil means neutral scoring.
func (s *LayoverService) similarities(ctx context.Context, log *logger.Logger, cands []scoring.Candidate, queryVec []float32, catalogVec [][]float32) []float64 {
	var synthTexts []string
	for _, c := range cands {
		if c.Activity.Synthetic {
			synthTexts = append(synthTexts, c.Activity.EmbeddingText())
		}
	}
	var synthVec [][]float32
	if len(synthTexts) > 0 {
		v, err := s.vectors.HubVectors(ctx, failsafeVectorKey, synthTexts)
		if err != nil {
			log.Warn("failsafe embedding failed, semantic score neutral", "error", err)
			return nil
		}
		synthVec = v
	}

	sims := make([]float64, len(cands))
	next := 0
	for i, c := range cands {
		var v []float32
		switch {
		case c.Activity.Synthetic:
			if next < len(synthVec) {
				v = synthVec[next]
			}
			next++
		case c.Index < len(catalogVec):
			v = catalogVec[c.Index]
		}
		if v == nil {
			return nil
		}
		sims[i] = embedding.Cosine(queryVec, v)
	}
	return sims
}

func (s *LayoverService) detectIntents(ctx context.Context, log *logger.Logger, query string) []models.ActivityType {
	if s.vectors == nil {
		return s.analyzer.Keywords(query)
	}
	intents, err := s.analyzer.Analyze(ctx, query)
	if err != nil {
		log.Warn("intent detection failed, using keywords", "error", err)
		return s.analyzer.Keywords(query)
	}
	return intents
}

// unionTypes keeps the order of a, then appends unseen labels of b
func unionTypes(a, b []models.ActivityType) []models.ActivityType {
	seen := make(map[models.ActivityType]bool, len(a)+len(b))
	out := make([]models.ActivityType, 0, len(a)+len(b))
	for _, list := range [][]models.ActivityType{a, b} {
		for _, t := range list {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func (s *LayoverService) loadProfile(ctx context.Context, hubID string) *models.AirportProfile {
	if s.store == nil {
		return nil
	}
	profile, err := s.store.GetHub(ctx, hubID)
	if err != nil {
		s.log.Warn("hub profile unavailable", "hub", hubID, "error", err)
		return nil
	}
	return profile
}

// PlanRisk grades the overall risk of following a ranking
func (s *LayoverService) PlanRisk(ranked []models.RankedActivity, layoverHours float64, visaValid bool) models.PlanRisk {
	return s.policy.ComputePlanRisk(ranked, layoverHours, visaValid)
}

// BuildTimeline packs a ranking into a timeline starting today at the
// arrival hour. The overhead carried by the ranking sizes logistics blocks.
func (s *LayoverService) BuildTimeline(ranked []models.RankedActivity, arrivalHour int, layoverHours float64) []models.ScheduleBlock {
	var ov models.OverheadBreakdown
	if len(ranked) > 0 {
		ov = ranked[0].Explain.Overhead
	}
	arrival := schedule.ArrivalTime(s.now(), arrivalHour)
	return s.scheduler.Build(ranked, arrival, layoverHours, ov).Blocks
}

// Plan ranks activities for a trip and lays them out on a timeline
func (s *LayoverService) Plan(ctx context.Context, req models.TripRequest) (*models.Plan, error) {
	res, err := s.rank(ctx, req)
	if err != nil {
		return nil, err
	}

	arrival := schedule.ArrivalTime(s.now(), req.ArrivalHour)
	tl := s.scheduler.Build(res.ranked, arrival, req.LayoverHours, res.overhead)

	plan := &models.Plan{
		HubID:      models.NormalizeHubID(req.HubID),
		Intents:    res.intents,
		Overhead:   res.overhead,
		Activities: res.ranked,
		Risk:       s.PlanRisk(res.ranked, req.LayoverHours, req.VisaValid),
		Timeline:   tl.Blocks,
		Warnings:   append(res.warnings, tl.Warnings...),
	}
	plan.Warnings = append(plan.Warnings, s.lateArrivalWarnings(req.ArrivalHour, len(res.ranked))...)
	if plan.Intents == nil {
		plan.Intents = []models.ActivityType{}
	}
	return plan, nil
}

// minLateOptions is the result count under which a late arrival is steered
// to stay airside
const minLateOptions = 4

func (s *LayoverService) lateArrivalWarnings(arrivalHour, results int) []string {
	if !s.policy.IsZombieHour(arrivalHour) {
		return nil
	}
	out := []string{"late arrival: many city attractions may be closed at this hour"}
	if results < minLateOptions {
		out = append(out, "few options this late, consider staying airside and resting before your next flight")
	}
	return out
}

// passportAliases maps common country names to the keys used by visa rules
var passportAliases = map[string]string{
	"india":     "indian",
	"usa":       "us",
	"american":  "us",
	"britain":   "uk",
	"british":   "uk",
	"europe":    "eu",
	"european":  "eu",
	"australia": "australian",
	"japan":     "japanese",
	"canada":    "canadian",
	"china":     "chinese",
	"russia":    "russian",
	"brazil":    "brazilian",
}

// VisaStatus resolves the entry rule for a passport at a hub. Missing hubs
// or rules resolve to an invalid "Unknown" status.
func (s *LayoverService) VisaStatus(ctx context.Context, hubID, passport string) models.VisaStatus {
	key := strings.ToLower(strings.TrimSpace(passport))
	if alias, ok := passportAliases[key]; ok {
		key = alias
	}
	status := models.VisaStatus{
		HubID:    models.NormalizeHubID(hubID),
		Passport: key,
		Title:    "Unknown",
		Details:  "no entry rule on file for this passport, check before you travel",
	}

	profile := s.loadProfile(ctx, status.HubID)
	if profile == nil {
		return status
	}
	rule, ok := profile.VisaPolicy[key]
	if !ok {
		return status
	}
	status.Title = rule.Type
	status.Details = rule.Details
	status.Valid = visaAllowsEntry(rule.Type)
	return status
}

func visaAllowsEntry(ruleType string) bool {
	t := strings.ToLower(ruleType)
	if strings.Contains(t, "required") || strings.Contains(t, "conditional") {
		return false
	}
	for _, ok := range []string{"free", "freedom", "on arrival", "eta"} {
		if strings.Contains(t, ok) {
			return true
		}
	}
	return false
}
