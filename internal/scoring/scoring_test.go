package scoring

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/layover-backend-go/internal/models"
)

func act(id string, typ models.ActivityType, zone models.Zone, dur float64) models.Activity {
	return models.Activity{
		ID:              id,
		Title:           id,
		Type:            typ,
		Location:        models.Location{Zone: zone},
		TimeConstraints: models.TimeConstraints{MinDurationHours: dur, Is24h: true},
	}
}

func hours(a models.Activity, open, close float64) models.Activity {
	a.TimeConstraints.Is24h = false
	a.TimeConstraints.OpeningHour24 = open
	a.TimeConstraints.ClosingHour24 = close
	return a
}

func ids(cands []Candidate) []string {
	var out []string
	for _, c := range cands {
		out = append(out, c.Activity.ID)
	}
	return out
}

func TestCheckWindow(t *testing.T) {
	p := DefaultPolicy()
	for _, tc := range []struct {
		name        string
		open, close float64
		hour        int
		want        WindowStatus
	}{
		{"overnight wrap open", 20, 4, 2, WindowOpen},
		{"overnight wrap evening", 20, 4, 21, WindowOpen},
		{"overnight wrap closing", 20, 4, 3, WindowClosingSoon},
		{"overnight wrap closed", 20, 4, 12, WindowClosed},
		{"past midnight notation", 18, 26, 1, WindowClosingSoon},
		{"past midnight notation open", 18, 26, 23, WindowOpen},
		{"daytime open", 8, 20, 14, WindowOpen},
		{"daytime closing soon", 8, 20, 19, WindowClosingSoon},
		{"daytime closed at close", 8, 20, 20, WindowClosed},
		{"opens within the hour", 8, 20, 7, WindowOpensSoon},
		{"opens across midnight", 0, 6, 23, WindowOpensSoon},
		{"too early", 8, 20, 5, WindowClosed},
		{"equal hours never close", 0, 0, 3, WindowOpen},
	} {
		t.Run(tc.name, func(t *testing.T) {
			tcs := models.TimeConstraints{OpeningHour24: tc.open, ClosingHour24: tc.close}
			assert.Equal(t, tc.want, CheckWindow(tcs, tc.hour, p).Status)
		})
	}

	assert.Equal(t, WindowOpen, CheckWindow(models.TimeConstraints{Is24h: true, OpeningHour24: 8, ClosingHour24: 9}, 3, p).Status)
}

func TestWindowFactor(t *testing.T) {
	p := DefaultPolicy()
	assert.Equal(t, 1.0, Window{Status: WindowOpen}.Factor(p))
	assert.Equal(t, 0.6, Window{Status: WindowClosingSoon}.Factor(p))
	assert.Equal(t, 0.8, Window{Status: WindowOpensSoon}.Factor(p))
	assert.Equal(t, 0.0, Window{Status: WindowClosed}.Factor(p))
}

func TestFilterStaticShortLayover(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("lounge", models.TypeRelax, models.ZoneAirside, 0.5),
		act("spa", models.TypeRelax, models.ZoneAirside, 1.0),
		hours(act("cafe", models.TypeFood, models.ZoneAirside, 0.5), 8, 20),
		hours(act("bar", models.TypeFood, models.ZoneAirside, 0.5), 16, 22),
		act("city", models.TypeSights, models.ZoneLandside, 0.5),
		hours(act("museum", models.TypeCulture, models.ZoneAirside, 0.5), 15, 20),
	}
	b := Budget{LayoverHours: 3, SafeHours: 0.5, ArrivalHour: 14, Method: models.OverheadStatic}

	got, rejected := p.Filter(catalog, b)
	assert.Equal(t, []string{"lounge", "cafe"}, ids(got))

	reasons := map[string]string{}
	for _, r := range rejected {
		reasons[r.ActivityID] = r.Reason
	}
	assert.Equal(t, RejectDuration, reasons["spa"])
	assert.Equal(t, RejectClosed, reasons["bar"])
	assert.Equal(t, RejectNoVisa, reasons["city"])
	// opens in an hour, and the wait does not fit
	assert.Equal(t, RejectDuration, reasons["museum"])
}

func TestFilterDynamicAirsideUsesGateBuffer(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("airside", models.TypeRelax, models.ZoneAirside, 2.5),
		act("landside", models.TypeSights, models.ZoneLandside, 2.5),
	}
	b := Budget{LayoverHours: 4, SafeHours: 1.5, ArrivalHour: 12, LandsideAllowed: true, Method: models.OverheadDynamic}

	got, _ := p.Filter(catalog, b)
	require.Len(t, got, 1)
	assert.Equal(t, "airside", got[0].Activity.ID)
	assert.Equal(t, 3.0, got[0].BudgetHours)
}

func TestFilterOvernightWindow(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{hours(act("night market", models.TypeFood, models.ZoneLandside, 1), 20, 4)}
	b := Budget{LayoverHours: 8, SafeHours: 5, ArrivalHour: 2, LandsideAllowed: true, Method: models.OverheadDynamic}

	got, rejected := p.Filter(catalog, b)
	assert.Empty(t, rejected)
	require.Len(t, got, 1)
	assert.Equal(t, WindowOpen, got[0].Window.Status)
}

func TestFilterNeverAdmitsViolators(t *testing.T) {
	p := DefaultPolicy()
	rng := rand.New(rand.NewSource(42))
	types := models.ActivityTypes
	zones := []models.Zone{models.ZoneAirside, models.ZoneLandside}

	for round := 0; round < 300; round++ {
		var catalog []models.Activity
		for i := 0; i < 12; i++ {
			a := act("a", types[rng.Intn(len(types))], zones[rng.Intn(2)], float64(rng.Intn(12)+1)/2)
			if rng.Intn(2) == 0 {
				a = hours(a, float64(rng.Intn(24)), float64(rng.Intn(30)))
			}
			catalog = append(catalog, a)
		}
		layover := rng.Float64() * 14
		overhead := 1 + rng.Float64()*3
		method := models.OverheadDynamic
		if rng.Intn(3) == 0 {
			method = models.OverheadStatic
		}
		b := Budget{
			LayoverHours:    layover,
			SafeHours:       maxf(0, layover-overhead),
			ArrivalHour:     rng.Intn(24),
			LandsideAllowed: rng.Intn(2) == 0,
			Method:          method,
		}

		got, _ := p.Filter(catalog, b)
		got = p.InjectFailsafes(got, []models.ActivityType{models.TypeFood, models.TypeShopping, models.TypeSleep}, len(catalog), b)
		for _, c := range got {
			a := c.Activity
			dur := a.TimeConstraints.MinDurationHours
			switch {
			case a.IsLandside():
				assert.True(t, b.LandsideAllowed)
				assert.LessOrEqual(t, dur+overhead, layover+1e-9)
			case method == models.OverheadStatic:
				assert.LessOrEqual(t, dur+overhead, layover+1e-9)
			default:
				assert.LessOrEqual(t, dur+p.GateBufferHours, layover+1e-9)
			}
			assert.NotEqual(t, WindowClosed, c.Window.Status)
		}
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func TestInjectFailsafes(t *testing.T) {
	p := DefaultPolicy()
	b := Budget{LayoverHours: 3, SafeHours: 0.5, ArrivalHour: 14, Method: models.OverheadStatic}

	// food court needs an hour, duty free fits in half an hour
	got := p.InjectFailsafes(nil, []models.ActivityType{models.TypeFood, models.TypeShopping}, 4, b)
	require.Len(t, got, 1)
	assert.Equal(t, "failsafe_shopping", got[0].Activity.ID)
	assert.True(t, got[0].Activity.Synthetic)
	assert.Equal(t, 4, got[0].Index)

	b = Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 14, Method: models.OverheadDynamic}
	got = p.InjectFailsafes(nil, []models.ActivityType{models.TypeFood, models.TypeSleep}, 0, b)
	assert.Equal(t, []string{"failsafe_food", "failsafe_rest"}, ids(got))
	assert.Equal(t, models.TypeRelax, got[1].Activity.Type)
}

func TestInjectFailsafesSkipsSatisfiedIntents(t *testing.T) {
	p := DefaultPolicy()
	b := Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 14, Method: models.OverheadDynamic}
	catalog := []models.Activity{act("pod", models.TypeSleep, models.ZoneAirside, 1)}
	cands, _ := p.Filter(catalog, b)

	got := p.InjectFailsafes(cands, []models.ActivityType{models.TypeSleep}, len(catalog), b)
	assert.Equal(t, []string{"pod"}, ids(got))

	// a spa does not answer an explicit ask for sleep
	catalog = []models.Activity{act("spa", models.TypeRelax, models.ZoneAirside, 1)}
	cands, _ = p.Filter(catalog, b)
	got = p.InjectFailsafes(cands, []models.ActivityType{models.TypeSleep}, len(catalog), b)
	assert.Equal(t, []string{"spa", "failsafe_rest"}, ids(got))

	p.FailsafeEnabled = false
	assert.Empty(t, p.InjectFailsafes(nil, []models.ActivityType{models.TypeFood}, 0, b))
}

func TestMultiFactorScore(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{act("noodles", models.TypeFood, models.ZoneAirside, 1)}
	b := Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 12, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)

	got := NewMultiFactorScorer(p).Rank(Input{
		Candidates:   cands,
		Similarities: []float64{0.6},
		Intents:      []models.ActivityType{models.TypeFood},
		Budget:       b,
	})
	require.Len(t, got, 1)
	// 0.45*0.8 + 0.25*1 + 0.15*1 + 0.15*1
	assert.Equal(t, 91.0, got[0].Score)
	assert.Equal(t, models.RiskLow, got[0].RiskLevel)
	assert.Contains(t, got[0].Explain.Reasons, "matches your food intent")
	assert.LessOrEqual(t, len(got[0].Explain.Reasons), 3)
}

func TestMultiFactorNeutralSemanticWithoutEmbeddings(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{act("shop", models.TypeShopping, models.ZoneAirside, 1)}
	b := Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 12, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)

	got := NewMultiFactorScorer(p).Rank(Input{Candidates: cands, Budget: b})
	require.Len(t, got, 1)
	assert.Equal(t, 0.5, got[0].Components.Semantic)
	assert.InDelta(t, (0.45*0.5+0.15+0.15)*100, got[0].Score, 0.05)
}

func TestMultiFactorLateNightSleepMode(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("skyline", models.TypeSights, models.ZoneLandside, 2),
		act("pods", models.TypeSleep, models.ZoneAirside, 2),
		act("food street", models.TypeFood, models.ZoneLandside, 1),
	}
	b := Budget{LayoverHours: 10, SafeHours: 7.43, ArrivalHour: 23, LandsideAllowed: true, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)
	require.Len(t, cands, 3)

	got := NewMultiFactorScorer(p).Rank(Input{Candidates: cands, Budget: b})
	byID := map[string]models.RankedActivity{}
	for _, r := range got {
		byID[r.Activity.ID] = r
	}

	assert.InDelta(t, 0.21, byID["skyline"].Components.Friction, 1e-9)
	assert.Equal(t, models.RiskMedium, byID["skyline"].RiskLevel)
	assert.Contains(t, byID["skyline"].Explain.Tradeoffs, "most of the city is closed at this hour")

	assert.Equal(t, 1.0, byID["pods"].Components.Friction)
	assert.Equal(t, 0.75, byID["pods"].Components.IntentMatch)
	assert.Equal(t, models.RiskLow, byID["pods"].RiskLevel)

	// food is not dampened at night
	assert.InDelta(t, 0.7, byID["food street"].Components.Friction, 1e-9)

	assert.Equal(t, "pods", got[0].Activity.ID)
}

func TestMultiFactorTightLandsideFriction(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{act("temple", models.TypeCulture, models.ZoneLandside, 1)}
	b := Budget{LayoverHours: 5, SafeHours: 1.5, ArrivalHour: 10, LandsideAllowed: true, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)

	got := NewMultiFactorScorer(p).Rank(Input{Candidates: cands, Budget: b})
	require.Len(t, got, 1)
	assert.Equal(t, 0.4, got[0].Components.Friction)
	assert.Contains(t, got[0].Explain.Tradeoffs, "tight return window")
}

func TestRestIntentOverlap(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{act("lounge", models.TypeRelax, models.ZoneAirside, 1)}
	b := Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 12, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)

	got := NewMultiFactorScorer(p).Rank(Input{Candidates: cands, Budget: b, Intents: []models.ActivityType{models.TypeSleep}})
	require.Len(t, got, 1)
	assert.Equal(t, 0.8, got[0].Components.IntentMatch)
}

func TestRankStableTieBreak(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("first", models.TypeShopping, models.ZoneAirside, 1),
		act("second", models.TypeShopping, models.ZoneAirside, 1),
		act("third", models.TypeShopping, models.ZoneAirside, 1),
	}
	b := Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 12, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)

	for _, name := range ScorerNames() {
		got := GetScorer(name, p).Rank(Input{Candidates: cands, Similarities: []float64{0.2, 0.2, 0.2}, Budget: b})
		require.Len(t, got, 3, name)
		assert.Equal(t, "first", got[0].Activity.ID, name)
		assert.Equal(t, "second", got[1].Activity.ID, name)
		assert.Equal(t, "third", got[2].Activity.ID, name)
	}
}

func TestRankDeterministic(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("a", models.TypeFood, models.ZoneAirside, 1),
		act("b", models.TypeSights, models.ZoneLandside, 2),
		act("c", models.TypeRelax, models.ZoneAirside, 0.5),
	}
	b := Budget{LayoverHours: 9, SafeHours: 5, ArrivalHour: 9, LandsideAllowed: true, Method: models.OverheadDynamic}
	in := func() Input {
		cands, _ := p.Filter(catalog, b)
		return Input{Candidates: cands, Similarities: []float64{0.1, 0.5, 0.3}, Intents: []models.ActivityType{models.TypeSights}, Budget: b}
	}
	s := GetScorer(ModelMultiFactor, p)
	assert.Equal(t, s.Rank(in()), s.Rank(in()))
}

func TestLandsideDistanceTradeoff(t *testing.T) {
	p := DefaultPolicy()
	a := act("marina", models.TypeSights, models.ZoneLandside, 2)
	a.Location.Lat, a.Location.Lon = 1.2834, 103.8607
	b := Budget{LayoverHours: 9, SafeHours: 5, ArrivalHour: 10, LandsideAllowed: true, Method: models.OverheadDynamic}
	cands, _ := p.Filter([]models.Activity{a}, b)

	got := NewMultiFactorScorer(p).Rank(Input{
		Candidates: cands,
		Budget:     b,
		Overhead:   models.OverheadBreakdown{TransitMinutesRoundTrip: 80},
		HubLat:     1.3644,
		HubLon:     103.9915,
	})
	require.Len(t, got, 1)
	assert.Equal(t, []string{
		"requires immigration and about 80 min of round-trip transit",
		"about 17 km south-west of the terminal",
	}, got[0].Explain.Tradeoffs)
}

func TestLegacyScorer(t *testing.T) {
	p := DefaultPolicy()
	catalog := []models.Activity{
		act("hawker", models.TypeFood, models.ZoneLandside, 1),
		act("lounge", models.TypeRelax, models.ZoneAirside, 1),
	}
	b := Budget{LayoverHours: 4.5, SafeHours: 2, ArrivalHour: 12, LandsideAllowed: true, Method: models.OverheadDynamic}
	cands, _ := p.Filter(catalog, b)
	require.Len(t, cands, 2)

	s := GetScorer(ModelLegacy, p)
	require.NotNil(t, s)
	got := s.Rank(Input{Candidates: cands, Similarities: []float64{0.5, 0.4}, Query: "hungry for street food", Budget: b})

	byID := map[string]models.RankedActivity{}
	for _, r := range got {
		byID[r.Activity.ID] = r
	}
	// buffer 4.5 - (1 + 2.5) = 1.0: boost 0.25, landside penalty 0.2
	assert.InDelta(t, 55.0, byID["hawker"].Score, 0.05)
	assert.Equal(t, models.RiskHigh, byID["hawker"].RiskLevel)
	assert.InDelta(t, 40.0, byID["lounge"].Score, 0.05)
	assert.Equal(t, models.RiskLow, byID["lounge"].RiskLevel)
}

func TestLegacyScoreCapped(t *testing.T) {
	p := DefaultPolicy()
	cands, _ := p.Filter([]models.Activity{act("mall", models.TypeShopping, models.ZoneAirside, 1)},
		Budget{LayoverHours: 6, SafeHours: 3, ArrivalHour: 12, Method: models.OverheadDynamic})

	got := GetScorer(ModelLegacy, p).Rank(Input{Candidates: cands, Similarities: []float64{0.95}, Query: "shop", Budget: Budget{LayoverHours: 6}})
	require.Len(t, got, 1)
	assert.Equal(t, 100.0, got[0].Score)
}

func TestLegacyRisk(t *testing.T) {
	lp := DefaultPolicy().Legacy
	assert.Equal(t, models.RiskHigh, LegacyRisk(lp, 5, 3))
	assert.Equal(t, models.RiskHigh, LegacyRisk(lp, 10, 1.0))
	assert.Equal(t, models.RiskMedium, LegacyRisk(lp, 7, 3))
	assert.Equal(t, models.RiskMedium, LegacyRisk(lp, 10, 1.5))
	assert.Equal(t, models.RiskLow, LegacyRisk(lp, 10, 3))
}

func TestRegistry(t *testing.T) {
	assert.Equal(t, []string{ModelLegacy, ModelMultiFactor}, ScorerNames())
	assert.Nil(t, GetScorer("nope", DefaultPolicy()))
	assert.Equal(t, ModelLegacy, GetScorer(ModelLegacy, DefaultPolicy()).GetName())
}

func TestPolicyValidate(t *testing.T) {
	p := DefaultPolicy()
	require.NoError(t, p.Validate())

	p.Weights.Semantic = 0.5
	assert.ErrorContains(t, p.Validate(), "sum to 1.0")

	p = DefaultPolicy()
	p.SleepModeFactor = 1.5
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.Model = "v9"
	assert.ErrorContains(t, p.Validate(), "unknown scoring model")
}

func TestComputePlanRisk(t *testing.T) {
	p := DefaultPolicy()

	empty := p.ComputePlanRisk(nil, 6, true)
	assert.Equal(t, models.RiskUnknown, empty.Level)

	airside := act("lounge", models.TypeRelax, models.ZoneAirside, 1)
	landside := act("temple", models.TypeCulture, models.ZoneLandside, 2)
	overhead := models.OverheadBreakdown{SafeExplorationHours: 5}

	got := p.ComputePlanRisk([]models.RankedActivity{{Activity: &airside, Explain: models.Explanation{Overhead: overhead}}}, 9, false)
	assert.Equal(t, models.RiskLow, got.Level)

	ranked := []models.RankedActivity{
		{Activity: &airside, Explain: models.Explanation{Overhead: overhead}},
		{Activity: &landside, Explain: models.Explanation{Overhead: overhead}},
	}
	// buffer 5 - 2 = 3 on a 9h layover
	assert.Equal(t, models.RiskLow, p.ComputePlanRisk(ranked, 9, true).Level)
	// same buffer on a 7h layover
	assert.Equal(t, models.RiskMedium, p.ComputePlanRisk(ranked, 7, true).Level)

	tight := models.OverheadBreakdown{SafeExplorationHours: 3}
	ranked[1].Explain.Overhead = tight
	got = p.ComputePlanRisk(ranked, 9, true)
	assert.Equal(t, models.RiskHigh, got.Level)
	assert.Contains(t, got.Reason, "temple")
}
