// Package aggregate derives the dashboard views from an incident snapshot.
// Every function is pure: the input slice is never modified and the same input
// always yields the same output.
package aggregate

import (
	"sort"
	"time"

	"incidents-dashboard/core/incidents"
)

const (
	DateWindow = 10
	AgentLimit = 8

	UnassignedAgent = "Sin asignar"
	NoLocation      = "Sin punto"

	dateLabelLayout = "02/01/2006"
)

type Counters struct {
	Total    int `json:"total" yaml:"total"`
	Critical int `json:"criticas" yaml:"criticas"`
	Active   int `json:"activas" yaml:"activas"`
	Resolved int `json:"resueltas" yaml:"resueltas"`
}

type DatePoint struct {
	Day   time.Time `json:"day" yaml:"day"`
	Label string    `json:"fecha" yaml:"fecha"`
	Count int       `json:"cantidad" yaml:"cantidad"`
}

type Bucket struct {
	Name  string `json:"name" yaml:"name"`
	Count int    `json:"value" yaml:"value"`
}

// Count computes the four indicators. Active is every incident not RESUELTO,
// so unknown status values are never silently dropped.
func Count(list []incidents.Incident) Counters {
	c := Counters{Total: len(list)}
	for _, inc := range list {
		if inc.Priority == incidents.PriorityCritical {
			c.Critical++
		}
		if inc.Status == incidents.StatusResolved {
			c.Resolved++
		} else {
			c.Active++
		}
	}
	return c
}

// ByDate groups by calendar day in loc and keeps the DateWindow most recent
// days in chronological order. Incidents without a date are not plotted.
func ByDate(list []incidents.Incident, loc *time.Location) []DatePoint {
	if loc == nil {
		loc = time.UTC
	}
	index := map[int64]int{}
	out := []DatePoint{}
	for _, inc := range list {
		if inc.CreatedAt == nil {
			continue
		}
		local := inc.CreatedAt.In(loc)
		day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
		if i, ok := index[day.Unix()]; ok {
			out[i].Count++
			continue
		}
		index[day.Unix()] = len(out)
		out = append(out, DatePoint{Day: day, Label: day.Format(dateLabelLayout), Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	if len(out) > DateWindow {
		out = out[len(out)-DateWindow:]
	}
	return out
}

// ByAgent returns the AgentLimit agents with most incidents.
func ByAgent(list []incidents.Incident) []Bucket {
	buckets := group(list, func(inc incidents.Incident) string {
		return orSentinel(inc.Agent, UnassignedAgent)
	})
	if len(buckets) > AgentLimit {
		buckets = buckets[:AgentLimit]
	}
	return buckets
}

func ByLocation(list []incidents.Incident) []Bucket {
	return group(list, func(inc incidents.Incident) string {
		return orSentinel(inc.Point, NoLocation)
	})
}

// group counts by key, most frequent first, ties in first-seen order.
func group(list []incidents.Incident, key func(incidents.Incident) string) []Bucket {
	index := map[string]int{}
	out := []Bucket{}
	for _, inc := range list {
		k := key(inc)
		if i, ok := index[k]; ok {
			out[i].Count++
			continue
		}
		index[k] = len(out)
		out = append(out, Bucket{Name: k, Count: 1})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

func orSentinel(v, sentinel string) string {
	if v == "" {
		return sentinel
	}
	return v
}

// View bundles every derived series for one snapshot.
type View struct {
	Counters  Counters    `json:"counters" yaml:"counters"`
	Dates     []DatePoint `json:"dates" yaml:"dates"`
	Agents    []Bucket    `json:"agents" yaml:"agents"`
	Locations []Bucket    `json:"locations" yaml:"locations"`
}

func Build(list []incidents.Incident, loc *time.Location) View {
	return View{
		Counters:  Count(list),
		Dates:     ByDate(list, loc),
		Agents:    ByAgent(list),
		Locations: ByLocation(list),
	}
}
