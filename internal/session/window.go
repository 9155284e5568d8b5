package session

import (
	"fmt"
	"sort"
	"time"
)

// OffSession labels a time outside every window.
const OffSession = "Off-session"

// Window is a half-open [Start, End) time-of-day range in hours, e.g. 17.5 = 17:30.
type Window struct {
	Name  string  `yaml:"name"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether hour falls inside the window.
func (w Window) Contains(hour float64) bool {
	return hour >= w.Start && hour < w.End
}

// Gate decides whether a moment lies in an active trading session.
type Gate struct {
	Location *time.Location
	Windows  []Window
}

// NewGate loads the timezone and validates the windows.
func NewGate(timezone string, windows []Window) (*Gate, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	if err := ValidateWindows(windows); err != nil {
		return nil, err
	}
	return &Gate{Location: loc, Windows: windows}, nil
}

// ValidateWindows checks bounds and that no two windows overlap.
func ValidateWindows(windows []Window) error {
	if len(windows) == 0 {
		return fmt.Errorf("at least one session window is required")
	}
	sorted := make([]Window, len(windows))
	copy(sorted, windows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	for i, w := range sorted {
		if w.Start < 0 || w.End > 24 || w.Start >= w.End {
			return fmt.Errorf("session %q: invalid range [%g, %g)", w.Name, w.Start, w.End)
		}
		if i > 0 && w.Start < sorted[i-1].End {
			return fmt.Errorf("session %q overlaps %q", w.Name, sorted[i-1].Name)
		}
	}
	return nil
}

// HourOfDay converts t to fractional hours in loc.
func HourOfDay(t time.Time, loc *time.Location) float64 {
	lt := t.In(loc)
	return float64(lt.Hour()) + float64(lt.Minute())/60 + float64(lt.Second())/3600
}

// Active returns the window containing t, if any.
func (g *Gate) Active(t time.Time) (Window, bool) {
	h := HourOfDay(t, g.Location)
	for _, w := range g.Windows {
		if w.Contains(h) {
			return w, true
		}
	}
	return Window{}, false
}

// Label names the session at t, or OffSession.
func (g *Gate) Label(t time.Time) string {
	if w, ok := g.Active(t); ok {
		return w.Name
	}
	return OffSession
}
