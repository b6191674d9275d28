package overhead

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/layover-backend-go/internal/models"
)

func sinProfile() *models.AirportProfile {
	return &models.AirportProfile{
		ID: "sin",
		IntelligenceFactors: &models.IntelligenceFactors{
			ImmigrationAvgMins: 30,
			SecurityCheckMins:  20,
			TransitToCityMins:  40,
			RiskMultipliers:    models.RiskMultipliers{RushHour: 1.5, LateNight: 0.8},
		},
	}
}

func TestComputeStaticFallback(t *testing.T) {
	m := NewModel(DefaultPolicy())

	for _, p := range []*models.AirportProfile{
		nil,
		{ID: "xyz"},
		{ID: "old", IntelligenceFactors: &models.IntelligenceFactors{}},
	} {
		got := m.Compute(p, 3.0, 14, time.Wednesday)
		assert.Equal(t, models.OverheadStatic, got.Method)
		assert.InDelta(t, 2.5, got.TotalOverheadHours, 1e-9)
		assert.InDelta(t, 0.5, got.SafeExplorationHours, 1e-9)
	}
}

func TestStaticComponentsAddUp(t *testing.T) {
	p := DefaultPolicy()
	sum := (p.StaticImmigrationMinutes+2*p.StaticTransitMinutes+p.StaticSecurityMinutes)/60 + p.SafetyPadHours
	assert.InDelta(t, p.StaticOverheadHours, sum, 1e-9)
}

func TestStaticIgnoresArrivalAndDay(t *testing.T) {
	m := NewModel(DefaultPolicy())
	a := m.Compute(nil, 6, 8, time.Saturday)
	b := m.Compute(nil, 6, 23, time.Tuesday)
	assert.Equal(t, a, b)
}

func TestImmigrationMultipliers(t *testing.T) {
	m := NewModel(DefaultPolicy())
	f := sinProfile().IntelligenceFactors

	for _, tc := range []struct {
		hour int
		want float64
	}{
		{14, 30},
		{17, 45},
		{20, 45},
		{21, 30},
		{23, 24},
		{0, 24},
		{3, 24},
		{5, 24},
		{6, 30},
	} {
		assert.InDelta(t, tc.want, m.ImmigrationMinutes(f, tc.hour), 1e-9, "hour %d", tc.hour)
	}
}

func TestUnsetMultiplierIsNeutral(t *testing.T) {
	m := NewModel(DefaultPolicy())
	f := &models.IntelligenceFactors{ImmigrationAvgMins: 30}
	assert.InDelta(t, 30, m.ImmigrationMinutes(f, 18), 1e-9)
	assert.InDelta(t, 30, m.ImmigrationMinutes(f, 2), 1e-9)
}

func TestTransitFactors(t *testing.T) {
	m := NewModel(DefaultPolicy())
	f := sinProfile().IntelligenceFactors

	assert.InDelta(t, 40, m.TransitMinutesOneWay("sin", f, 12, time.Wednesday), 1e-9)
	assert.InDelta(t, 64, m.TransitMinutesOneWay("sin", f, 8, time.Wednesday), 1e-9)
	assert.InDelta(t, 64, m.TransitMinutesOneWay("sin", f, 18, time.Wednesday), 1e-9)
	// weekend wins over rush hour
	assert.InDelta(t, 34, m.TransitMinutesOneWay("sin", f, 8, time.Sunday), 1e-9)
}

func TestHubSpecificWeekend(t *testing.T) {
	m := NewModel(DefaultPolicy())

	assert.True(t, m.IsWeekend("DOH", time.Friday))
	assert.False(t, m.IsWeekend("doh", time.Sunday))
	assert.True(t, m.IsWeekend("sin", time.Sunday))
	assert.False(t, m.IsWeekend("sin", time.Friday))
}

func TestComputeDynamicLateNight(t *testing.T) {
	m := NewModel(DefaultPolicy())
	got := m.Compute(sinProfile(), 10, 23, time.Wednesday)

	require.Equal(t, models.OverheadDynamic, got.Method)
	assert.InDelta(t, 24, got.ImmigrationMinutes, 1e-9)
	assert.InDelta(t, 40, got.TransitMinutesOneWay, 1e-9)
	assert.InDelta(t, 80, got.TransitMinutesRoundTrip, 1e-9)
	assert.InDelta(t, 20, got.SecurityMinutes, 1e-9)

	wantTotal := (24.0+80+20)/60 + 0.5
	assert.InDelta(t, wantTotal, got.TotalOverheadHours, 1e-9)
	assert.InDelta(t, 10-wantTotal, got.SafeExplorationHours, 1e-9)
}

func TestSafeExplorationNeverNegative(t *testing.T) {
	m := NewModel(DefaultPolicy())
	rng := rand.New(rand.NewSource(7))

	profiles := []*models.AirportProfile{nil, sinProfile()}
	for i := 0; i < 500; i++ {
		layover := rng.Float64() * 16
		hour := rng.Intn(24)
		day := time.Weekday(rng.Intn(7))
		for _, p := range profiles {
			got := m.Compute(p, layover, hour, day)
			assert.GreaterOrEqual(t, got.SafeExplorationHours, 0.0)
			assert.InDelta(t, SafeExplorationHours(layover, got.TotalOverheadHours), got.SafeExplorationHours, 1e-12)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	m := NewModel(DefaultPolicy())
	assert.Equal(t, m.Compute(sinProfile(), 7.5, 8, time.Monday), m.Compute(sinProfile(), 7.5, 8, time.Monday))
}
