package scoring

import (
	"math"

	"github.com/jengzang/layover-backend-go/internal/models"
)

// WindowStatus classifies an activity's opening hours relative to arrival
type WindowStatus string

const (
	WindowOpen        WindowStatus = "OPEN"
	WindowClosingSoon WindowStatus = "CLOSING_SOON"
	WindowOpensSoon   WindowStatus = "OPENS_SOON"
	WindowClosed      WindowStatus = "CLOSED"
)

// Window is the result of an opening-hours check
type Window struct {
	Status         WindowStatus
	HoursUntilOpen float64 // > 0 only when OPENS_SOON
	HoursLeft      float64 // hours until closing when open; +Inf for 24h
}

// CheckWindow evaluates opening hours at an arrival hour. Windows may run
// past midnight either as close > 24 (20-28) or close < open (20-4); equal
// open and close hours mean the place never closes.
func CheckWindow(tc models.TimeConstraints, hour int, p Policy) Window {
	opens, closes := tc.OpeningHour24, tc.ClosingHour24
	if tc.Is24h || opens == closes || closes-opens >= 24 {
		return Window{Status: WindowOpen, HoursLeft: math.Inf(1)}
	}
	if closes < opens {
		closes += 24
	}

	h := float64(hour)
	for _, t := range []float64{h, h + 24} {
		if t >= opens && t < closes {
			left := closes - t
			if left <= p.ClosingSoonHours {
				return Window{Status: WindowClosingSoon, HoursLeft: left}
			}
			return Window{Status: WindowOpen, HoursLeft: left}
		}
	}

	wait := math.Mod(opens-h+48, 24)
	if wait > 0 && wait <= p.OpensSoonLeadHours {
		return Window{Status: WindowOpensSoon, HoursUntilOpen: wait, HoursLeft: closes - opens}
	}
	return Window{Status: WindowClosed}
}

// Factor is the open_factor of a window status
func (w Window) Factor(p Policy) float64 {
	switch w.Status {
	case WindowOpen:
		return 1.0
	case WindowClosingSoon:
		return p.ClosingSoonFactor
	case WindowOpensSoon:
		return p.OpensSoonFactor
	}
	return 0
}
