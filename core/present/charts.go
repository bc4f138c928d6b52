package present

import (
	"time"

	"incidents-dashboard/core/aggregate"
	"incidents-dashboard/core/incidents"
)

// Palette is reused cyclically when a chart has more categories than colours.
var Palette = []string{"#667eea", "#764ba2", "#f093fb", "#f5576c", "#4facfe", "#00f2fe", "#43e97b", "#38f9d7"}

const (
	lineColor   = "#667eea"
	placeholder = "N/A"
)

func ColorAt(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}

type Kind string

const (
	KindLine     Kind = "line"
	KindBar      Kind = "bar"
	KindDoughnut Kind = "doughnut"
)

type Slot string

const (
	SlotDates     Slot = "dates"
	SlotAgents    Slot = "agents"
	SlotLocations Slot = "locations"
)

// Chart is the widget-ready form of one series.
type Chart struct {
	Slot    Slot     `json:"slot"`
	Kind    Kind     `json:"kind"`
	Title   string   `json:"title"`
	Labels  []string `json:"labels"`
	Values  []int    `json:"values"`
	Colors  []string `json:"colors"`
	Version uint64   `json:"version"`
}

func (c Chart) Empty() bool {
	return len(c.Values) == 0
}

func LineChart(points []aggregate.DatePoint, version uint64) Chart {
	c := Chart{Slot: SlotDates, Kind: KindLine, Title: "Incidencias por Fecha de Creación", Version: version}
	c.Labels = make([]string, 0, len(points))
	c.Values = make([]int, 0, len(points))
	for _, p := range points {
		c.Labels = append(c.Labels, p.Label)
		c.Values = append(c.Values, p.Count)
	}
	c.Colors = []string{lineColor}
	return c
}

func BarChart(buckets []aggregate.Bucket, version uint64) Chart {
	c := bucketChart(buckets, version)
	c.Slot, c.Kind, c.Title = SlotAgents, KindBar, "Incidencias por Agente"
	return c
}

func DoughnutChart(buckets []aggregate.Bucket, version uint64) Chart {
	c := bucketChart(buckets, version)
	c.Slot, c.Kind, c.Title = SlotLocations, KindDoughnut, "Incidencias por Punto de Marcación"
	return c
}

func bucketChart(buckets []aggregate.Bucket, version uint64) Chart {
	c := Chart{Version: version}
	c.Labels = make([]string, 0, len(buckets))
	c.Values = make([]int, 0, len(buckets))
	c.Colors = make([]string, 0, len(buckets))
	for i, b := range buckets {
		c.Labels = append(c.Labels, b.Name)
		c.Values = append(c.Values, b.Count)
		c.Colors = append(c.Colors, ColorAt(i))
	}
	return c
}

type Indicator struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
}

func Indicators(c aggregate.Counters) []Indicator {
	return []Indicator{
		{Key: "total", Label: "Total Incidencias", Value: c.Total},
		{Key: "criticas", Label: "Críticas", Value: c.Critical},
		{Key: "activas", Label: "Activas", Value: c.Active},
		{Key: "resueltas", Label: "Resueltas", Value: c.Resolved},
	}
}

// Dashboard is everything the dashboard tab renders for one snapshot version.
type Dashboard struct {
	Version    uint64      `json:"version"`
	Indicators []Indicator `json:"indicators"`
	Charts     []Chart     `json:"charts"`
}

func BuildDashboard(view aggregate.View, version uint64) Dashboard {
	return Dashboard{
		Version:    version,
		Indicators: Indicators(view.Counters),
		Charts: []Chart{
			LineChart(view.Dates, version),
			BarChart(view.Agents, version),
			DoughnutChart(view.Locations, version),
		},
	}
}

type Row struct {
	ID          string `json:"id"`
	Date        string `json:"fecha"`
	Agent       string `json:"nombreAgente"`
	Point       string `json:"punto"`
	Note        string `json:"observacion"`
	Status      string `json:"estado"`
	Priority    string `json:"prioridad"`
	HasEvidence bool   `json:"evidencia"`
}

func Rows(list []incidents.Incident, loc *time.Location) []Row {
	if loc == nil {
		loc = time.UTC
	}
	out := make([]Row, 0, len(list))
	for _, inc := range list {
		date := placeholder
		if inc.CreatedAt != nil {
			date = inc.CreatedAt.In(loc).Format("02/01/2006")
		}
		out = append(out, Row{
			ID:          inc.ID,
			Date:        date,
			Agent:       orPlaceholder(inc.Agent),
			Point:       orPlaceholder(inc.Point),
			Note:        orPlaceholder(inc.Note),
			Status:      orPlaceholder(inc.Status),
			Priority:    orPlaceholder(inc.Priority),
			HasEvidence: inc.HasEvidence(),
		})
	}
	return out
}

func orPlaceholder(v string) string {
	if v == "" {
		return placeholder
	}
	return v
}
