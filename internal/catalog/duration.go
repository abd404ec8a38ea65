package catalog

import (
	"fmt"
	"strings"
)

// RouteDuration is the nominal flight time in minutes for one route
type RouteDuration struct {
	Route   string
	Minutes int
}

// DefaultRouteDurations is the nominal duration table in display order
var DefaultRouteDurations = []RouteDuration{
	{Route: "Jakarta-Padang", Minutes: 110},
	{Route: "Jakarta-Surabaya", Minutes: 80},
	{Route: "Jakarta-Bali", Minutes: 170},
	{Route: "Jakarta-Makassar", Minutes: 200},
}

// DurationTable maps "Origin-Destination" route keys to nominal duration.
// Routes keep the order they were given in.
// It is immutable after construction and safe for concurrent reads.
type DurationTable struct {
	minutes map[string]int
	keys    []string
}

// NewDurationTable validates and copies the given route durations
func NewDurationTable(routes []RouteDuration) (*DurationTable, error) {
	if len(routes) == 0 {
		return nil, fmt.Errorf("duration table is empty")
	}

	t := &DurationTable{
		minutes: make(map[string]int, len(routes)),
		keys:    make([]string, 0, len(routes)),
	}

	for _, r := range routes {
		if _, _, ok := SplitRoute(r.Route); !ok {
			return nil, fmt.Errorf("invalid route key %q: expected Origin-Destination", r.Route)
		}
		if r.Minutes <= 0 {
			return nil, fmt.Errorf("invalid duration %d for route %s", r.Minutes, r.Route)
		}
		if _, dup := t.minutes[r.Route]; dup {
			return nil, fmt.Errorf("route %s listed twice", r.Route)
		}
		t.minutes[r.Route] = r.Minutes
		t.keys = append(t.keys, r.Route)
	}

	return t, nil
}

// Duration returns the nominal minutes for route
func (t *DurationTable) Duration(route string) (int, bool) {
	mins, ok := t.minutes[route]
	return mins, ok
}

// Has reports whether route is supported
func (t *DurationTable) Has(route string) bool {
	_, ok := t.minutes[route]
	return ok
}

// Routes returns the supported route keys in table order
func (t *DurationTable) Routes() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// Len returns the number of supported routes
func (t *DurationTable) Len() int {
	return len(t.keys)
}

// RouteKey joins origin and destination into a route key
func RouteKey(origin, destination string) string {
	return origin + "-" + destination
}

// SplitRoute splits a route key into origin and destination.
// Keys with other than exactly one separator are rejected.
func SplitRoute(route string) (origin, destination string, ok bool) {
	parts := strings.Split(route, "-")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
