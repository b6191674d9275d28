package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/jengzang/layover-backend-go/internal/models"
	"github.com/jengzang/layover-backend-go/internal/spatial"
)

type limited struct {
	max int
	out []string
}

func (l *limited) add(s string) {
	if l.max <= 0 || len(l.out) < l.max {
		l.out = append(l.out, s)
	}
}

func (l *limited) list() []string {
	if l.out == nil {
		return []string{}
	}
	return l.out
}

func explainReasons(p Policy, c Candidate, comp models.ScoreComponents, intents map[models.ActivityType]bool, zombie bool) []string {
	a := c.Activity
	r := &limited{max: p.MaxReasons}

	if intents[a.Type] {
		r.add(fmt.Sprintf("matches your %s intent", strings.ToLower(string(a.Type))))
	}
	if comp.Semantic >= p.StrongSemantic {
		r.add("close match to what you asked for")
	}
	if zombie && !a.IsLandside() && isRest(a.Type) {
		r.add("good way to spend a night arrival")
	}
	if !a.IsLandside() {
		r.add("airside, no immigration needed")
	}
	if a.TimeConstraints.Is24h {
		r.add("open around the clock")
	} else if c.Window.Status == WindowOpen {
		r.add("open when you arrive")
	}
	switch strings.ToUpper(a.CostTier) {
	case "FREE":
		r.add("free")
	case "CHEAP", "LOW":
		r.add("budget friendly")
	}
	return r.list()
}

func explainTradeoffs(p Policy, c Candidate, in Input, zombie bool) []string {
	a := c.Activity
	t := &limited{max: p.MaxTradeoffs}

	if a.IsLandside() {
		t.add(fmt.Sprintf("requires immigration and about %.0f min of round-trip transit", in.Overhead.TransitMinutesRoundTrip))
		if in.Budget.SafeHours < p.TightSafeHours {
			t.add("tight return window")
		}
		if sleepMode(p, a, zombie) {
			t.add("most of the city is closed at this hour")
		}
		if a.Location.HasCoordinates() && (in.HubLat != 0 || in.HubLon != 0) {
			km := spatial.DistanceKm(in.HubLat, in.HubLon, a.Location.Lat, a.Location.Lon)
			dir := spatial.CompassDirection(spatial.Bearing(in.HubLat, in.HubLon, a.Location.Lat, a.Location.Lon))
			t.add(fmt.Sprintf("about %.0f km %s of the terminal", math.Round(km), dir))
		}
	}
	switch c.Window.Status {
	case WindowClosingSoon:
		t.add(fmt.Sprintf("closes in %.1f h", c.Window.HoursLeft))
	case WindowOpensSoon:
		t.add(fmt.Sprintf("opens in %.1f h", c.Window.HoursUntilOpen))
	}
	if a.Synthetic {
		t.add("generic suggestion, check the terminal map")
	}
	if in.Overhead.Method == models.OverheadStatic {
		t.add("time estimate uses a flat overhead, live airport data unavailable")
	}
	return t.list()
}
