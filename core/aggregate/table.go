package aggregate

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"incidents-dashboard/core/incidents"
)

type SortKey string

const (
	SortCreatedAt SortKey = "createdAt"
	SortAgent     SortKey = "nombreAgente"
	SortPoint     SortKey = "punto"
	SortNote      SortKey = "observacion"
)

type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortCreatedAt, SortAgent, SortPoint, SortNote:
		return k, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

type SortState struct {
	Key   SortKey   `json:"key"`
	Order SortOrder `json:"order"`
}

// DefaultSort shows the newest incidents first.
func DefaultSort() SortState {
	return SortState{Key: SortCreatedAt, Order: Desc}
}

// Toggle flips the order when key is already selected; a new key starts ascending.
func (s SortState) Toggle(key SortKey) SortState {
	if s.Key == key {
		if s.Order == Asc {
			return SortState{Key: key, Order: Desc}
		}
		return SortState{Key: key, Order: Asc}
	}
	return SortState{Key: key, Order: Asc}
}

// Filter keeps incidents whose agent, point or note contains term, ignoring case.
func Filter(list []incidents.Incident, term string) []incidents.Incident {
	needle := strings.ToLower(strings.TrimSpace(term))
	out := make([]incidents.Incident, 0, len(list))
	for _, inc := range list {
		if needle == "" || matches(inc, needle) {
			out = append(out, inc)
		}
	}
	return out
}

func matches(inc incidents.Incident, needle string) bool {
	for _, field := range []string{inc.Agent, inc.Point, inc.Note} {
		if field != "" && strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Spanish)
)

func compareStrings(a, b string) int {
	// collate.Collator keeps internal buffers and is not safe for concurrent use
	collatorMu.Lock()
	defer collatorMu.Unlock()
	return collator.CompareString(a, b)
}

// Sort returns a sorted copy. Unknown dates sort as the earliest possible value.
func Sort(list []incidents.Incident, state SortState) []incidents.Incident {
	out := make([]incidents.Incident, len(list))
	copy(out, list)
	cmp := comparator(state.Key)
	desc := state.Order == Desc
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func comparator(key SortKey) func(a, b incidents.Incident) int {
	switch key {
	case SortAgent:
		return func(a, b incidents.Incident) int { return compareStrings(a.Agent, b.Agent) }
	case SortPoint:
		return func(a, b incidents.Incident) int { return compareStrings(a.Point, b.Point) }
	case SortNote:
		return func(a, b incidents.Incident) int { return compareStrings(a.Note, b.Note) }
	default:
		return func(a, b incidents.Incident) int {
			x, y := a.CreatedUnix(), b.CreatedUnix()
			switch {
			case x < y:
				return -1
			case x > y:
				return 1
			default:
				return 0
			}
		}
	}
}

// Table applies the search term, then the sort.
func Table(list []incidents.Incident, term string, state SortState) []incidents.Incident {
	return Sort(Filter(list, term), state)
}
