package aggregate

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"incidents-dashboard/core/incidents"
)

func at(t time.Time) *time.Time { return &t }

func scenarioTwelve() []incidents.Incident {
	var list []incidents.Incident
	statuses := []string{}
	for i := 0; i < 5; i++ {
		statuses = append(statuses, incidents.StatusResolved)
	}
	for i := 0; i < 4; i++ {
		statuses = append(statuses, incidents.StatusOpen)
	}
	for i := 0; i < 3; i++ {
		statuses = append(statuses, incidents.StatusInProgress)
	}
	for i, st := range statuses {
		prio := incidents.PriorityMedium
		if i%4 == 0 {
			prio = incidents.PriorityCritical
		}
		list = append(list, incidents.Incident{ID: fmt.Sprintf("i%d", i), Status: st, Priority: prio})
	}
	return list
}

func TestCountScenario(t *testing.T) {
	got := Count(scenarioTwelve())
	want := Counters{Total: 12, Critical: 3, Resolved: 5, Active: 7}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("counters mismatch (-want +got):\n%s", diff)
	}
}

func TestCountNeverExceedsTotal(t *testing.T) {
	list := []incidents.Incident{
		{ID: "a", Status: "DESCONOCIDO", Priority: incidents.PriorityCritical},
		{ID: "b", Status: incidents.StatusResolved, Priority: incidents.PriorityCritical},
		{ID: "c"},
	}
	c := Count(list)
	if c.Active+c.Resolved != c.Total {
		t.Fatalf("active+resolved must cover total: %+v", c)
	}
	if c.Critical > c.Total {
		t.Fatalf("critical exceeds total: %+v", c)
	}
	if c.Active != 2 {
		t.Fatalf("unknown status must count as active: %+v", c)
	}
}

func TestByDateKeepsTenMostRecentDaysInOrder(t *testing.T) {
	base := time.Date(2024, 1, 25, 9, 0, 0, 0, time.UTC)
	var list []incidents.Incident
	for d := 0; d < 15; d++ {
		list = append(list, incidents.Incident{ID: fmt.Sprint(d), CreatedAt: at(base.AddDate(0, 0, d))})
	}
	list = append(list, incidents.Incident{ID: "nodate"})
	got := ByDate(list, time.UTC)
	if len(got) != DateWindow {
		t.Fatalf("expected %d points, got %d", DateWindow, len(got))
	}
	if got[0].Label != "30/01/2024" || got[len(got)-1].Label != "08/02/2024" {
		t.Fatalf("unexpected window %s..%s", got[0].Label, got[len(got)-1].Label)
	}
	for i := 1; i < len(got); i++ {
		if !got[i-1].Day.Before(got[i].Day) {
			t.Fatalf("series not chronological at %d: %s then %s", i, got[i-1].Label, got[i].Label)
		}
	}
}

func TestByDateOrdersAcrossMonthBoundaryChronologically(t *testing.T) {
	list := []incidents.Incident{
		{ID: "a", CreatedAt: at(time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC))},
		{ID: "b", CreatedAt: at(time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC))},
		{ID: "c", CreatedAt: at(time.Date(2023, 12, 15, 10, 0, 0, 0, time.UTC))},
		{ID: "d", CreatedAt: at(time.Date(2024, 2, 1, 18, 0, 0, 0, time.UTC))},
	}
	got := ByDate(list, time.UTC)
	labels := make([]string, 0, len(got))
	for _, p := range got {
		labels = append(labels, p.Label)
	}
	want := []string{"15/12/2023", "31/01/2024", "01/02/2024"}
	if diff := cmp.Diff(want, labels); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if got[2].Count != 2 {
		t.Fatalf("expected two incidents on 01/02/2024, got %d", got[2].Count)
	}
}

func TestByDateUsesLocationCalendarDay(t *testing.T) {
	madrid, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}
	list := []incidents.Incident{{ID: "late", CreatedAt: at(time.Date(2024, 3, 31, 23, 30, 0, 0, time.UTC))}}
	got := ByDate(list, madrid)
	if len(got) != 1 || got[0].Label != "01/04/2024" {
		t.Fatalf("expected local day 01/04/2024, got %+v", got)
	}
}

func TestByAgentTopEightWithSentinelAndStableTies(t *testing.T) {
	var list []incidents.Incident
	add := func(agent string, n int) {
		for i := 0; i < n; i++ {
			list = append(list, incidents.Incident{ID: fmt.Sprintf("%s-%d", agent, i), Agent: agent})
		}
	}
	add("Carla", 1)
	add("Beto", 3)
	add("", 2)
	add("Ana", 3)
	for _, name := range []string{"D", "E", "F", "G", "H", "I"} {
		add(name, 1)
	}

	full := group(list, func(inc incidents.Incident) string { return orSentinel(inc.Agent, UnassignedAgent) })
	total := 0
	for _, b := range full {
		total += b.Count
	}
	if total != len(list) {
		t.Fatalf("buckets must account for every incident: %d != %d", total, len(list))
	}

	got := ByAgent(list)
	if len(got) != AgentLimit {
		t.Fatalf("expected %d agents, got %d", AgentLimit, len(got))
	}
	if diff := cmp.Diff(full[:AgentLimit], got); diff != "" {
		t.Fatalf("truncation reordered entries (-want +got):\n%s", diff)
	}
	head := []Bucket{{"Beto", 3}, {"Ana", 3}, {UnassignedAgent, 2}, {"Carla", 1}}
	if diff := cmp.Diff(head, got[:4]); diff != "" {
		t.Fatalf("unexpected head (-want +got):\n%s", diff)
	}
}

func TestByLocationIsNotTruncated(t *testing.T) {
	var list []incidents.Incident
	for i := 0; i < 12; i++ {
		list = append(list, incidents.Incident{ID: fmt.Sprint(i), Point: fmt.Sprintf("P%02d", i)})
	}
	list = append(list, incidents.Incident{ID: "x", Point: "P05"}, incidents.Incident{ID: "y"})
	got := ByLocation(list)
	if len(got) != 13 {
		t.Fatalf("expected 13 locations, got %d", len(got))
	}
	if got[0] != (Bucket{"P05", 2}) {
		t.Fatalf("expected P05 first, got %+v", got[0])
	}
	if got[len(got)-1] != (Bucket{NoLocation, 1}) {
		t.Fatalf("expected sentinel last, got %+v", got[len(got)-1])
	}
}

func TestBuildIsIdempotent(t *testing.T) {
	list := scenarioTwelve()
	list[0].CreatedAt = at(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	first := Build(list, time.UTC)
	second := Build(list, time.UTC)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("build not idempotent:\n%s", diff)
	}
}
