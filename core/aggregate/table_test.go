package aggregate

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"incidents-dashboard/core/incidents"
)

func ids(list []incidents.Incident) []string {
	out := make([]string, 0, len(list))
	for _, inc := range list {
		out = append(out, inc.ID)
	}
	return out
}

func tableFixture() []incidents.Incident {
	return []incidents.Incident{
		{ID: "n", Point: "Zona Norte", Agent: "Óscar", CreatedAt: at(time.Date(2024, 2, 3, 0, 0, 0, 0, time.UTC))},
		{ID: "s", Point: "Zona Sur", Agent: "ana", Note: "puerta abierta", CreatedAt: at(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))},
		{ID: "x", Agent: "Bruno", Note: "Ruido en el NORTE"},
		{ID: "z", Agent: "zoe", CreatedAt: at(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC))},
	}
}

func TestFilterCaseInsensitive(t *testing.T) {
	got := ids(Filter(tableFixture(), "norte"))
	if diff := cmp.Diff([]string{"n", "x"}, got); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}
	for _, id := range got {
		if id == "s" {
			t.Fatalf("Zona Sur must not match")
		}
	}
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	if got := Filter(tableFixture(), "   "); len(got) != 4 {
		t.Fatalf("expected all incidents, got %d", len(got))
	}
}

func TestSortByCreatedAtTreatsMissingAsEarliest(t *testing.T) {
	got := ids(Sort(tableFixture(), SortState{Key: SortCreatedAt, Order: Asc}))
	if diff := cmp.Diff([]string{"x", "s", "z", "n"}, got); diff != "" {
		t.Fatalf("asc mismatch (-want +got):\n%s", diff)
	}
	got = ids(Sort(tableFixture(), DefaultSort()))
	if diff := cmp.Diff([]string{"n", "z", "s", "x"}, got); diff != "" {
		t.Fatalf("desc mismatch (-want +got):\n%s", diff)
	}
}

func TestSortByAgentIsLocaleAware(t *testing.T) {
	got := ids(Sort(tableFixture(), SortState{Key: SortAgent, Order: Asc}))
	// Óscar sorts with O, lowercase names are not pushed after uppercase ones
	if diff := cmp.Diff([]string{"s", "x", "n", "z"}, got); diff != "" {
		t.Fatalf("collation mismatch (-want +got):\n%s", diff)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	list := tableFixture()
	before := ids(list)
	_ = Sort(list, SortState{Key: SortPoint, Order: Desc})
	if diff := cmp.Diff(before, ids(list)); diff != "" {
		t.Fatalf("input mutated:\n%s", diff)
	}
}

func TestFilterCommutesWithSort(t *testing.T) {
	for _, key := range []SortKey{SortCreatedAt, SortAgent, SortPoint, SortNote} {
		for _, order := range []SortOrder{Asc, Desc} {
			st := SortState{Key: key, Order: order}
			a := ids(Sort(Filter(tableFixture(), "NOR"), st))
			b := ids(Filter(Sort(tableFixture(), st), "NOR"))
			if diff := cmp.Diff(a, b); diff != "" {
				t.Fatalf("%s %s: filter/sort do not commute:\n%s", key, order, diff)
			}
		}
	}
}

func TestToggleCycles(t *testing.T) {
	st := DefaultSort().Toggle(SortPoint)
	if st != (SortState{Key: SortPoint, Order: Asc}) {
		t.Fatalf("new key must start ascending, got %+v", st)
	}
	st = st.Toggle(SortPoint)
	if st.Order != Desc {
		t.Fatalf("expected desc after second toggle, got %+v", st)
	}
	st = st.Toggle(SortPoint)
	if st.Order != Asc {
		t.Fatalf("expected asc after third toggle, got %+v", st)
	}
}

func TestParseSortKey(t *testing.T) {
	if _, err := ParseSortKey("prioridad"); err == nil {
		t.Fatalf("expected error for unsupported key")
	}
	k, err := ParseSortKey("observacion")
	if err != nil || k != SortNote {
		t.Fatalf("unexpected %v %v", k, err)
	}
}
