package present

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	svgWidth  = 600
	svgHeight = 260
)

// chartText keeps markup characters out of the text nodes go-chart writes.
var chartText = strings.NewReplacer("<", "‹", ">", "›", "&", "＆", `"`, "”", "'", "’").Replace

// SVG renders a chart as inline markup. The doughnut gets an HTML legend
// listing every category.
func SVG(c Chart) template.HTML {
	if c.Empty() {
		return template.HTML(`<p class="chart-empty">Sin datos</p>`)
	}
	var buf bytes.Buffer
	var err error
	switch c.Kind {
	case KindLine:
		err = lineGraph(c).Render(chart.SVG, &buf)
	case KindBar:
		err = barGraph(c).Render(chart.SVG, &buf)
	case KindDoughnut:
		err = donutGraph(c).Render(chart.SVG, &buf)
	default:
		return template.HTML("")
	}
	if err != nil {
		return template.HTML(`<p class="chart-empty">` + esc(err.Error()) + `</p>`)
	}
	out := scalable(buf.String())
	if c.Kind == KindDoughnut {
		out += legend(c)
	}
	return template.HTML(out)
}

// SVGRender adapts SVG to Board.Mount.
func SVGRender(c Chart) (any, func()) {
	return SVG(c), nil
}

func maxValue(values []int) int {
	m := 0
	for _, v := range values {
		if v > m {
			m = v
		}
	}
	if m == 0 {
		return 1
	}
	return m
}

func esc(s string) string {
	return template.HTMLEscapeString(s)
}

func color(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return strconv.Itoa(int(f))
	}
	return ""
}

// countRange leaves one unit of headroom above the tallest value.
func countRange(values []int) *chart.ContinuousRange {
	return &chart.ContinuousRange{Min: 0, Max: float64(maxValue(values) + 1)}
}

func lineGraph(c Chart) chart.Chart {
	xs := make([]float64, len(c.Values))
	ys := make([]float64, len(c.Values))
	ticks := make([]chart.Tick, len(c.Values))
	for i, v := range c.Values {
		xs[i], ys[i] = float64(i), float64(v)
		ticks[i] = chart.Tick{Value: float64(i), Label: chartText(c.Labels[i])}
	}
	stroke := color(c.Colors[0])
	return chart.Chart{
		Width:  svgWidth,
		Height: svgHeight,
		XAxis: chart.XAxis{
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(c.Values)) - 0.5},
		},
		YAxis: chart.YAxis{Range: countRange(c.Values), ValueFormatter: countFormatter},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    chartText(c.Title),
				Style:   chart.Style{StrokeColor: stroke, StrokeWidth: 3, DotColor: stroke, DotWidth: 5},
				XValues: xs,
				YValues: ys,
			},
		},
	}
}

func barGraph(c Chart) chart.BarChart {
	bars := make([]chart.Value, len(c.Values))
	for i, v := range c.Values {
		fill := color(c.Colors[i])
		bars[i] = chart.Value{
			Label: chartText(c.Labels[i]),
			Value: float64(v),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		}
	}
	return chart.BarChart{
		Width:      svgWidth,
		Height:     svgHeight,
		BarWidth:   36,
		BarSpacing: 20,
		YAxis:      chart.YAxis{Range: countRange(c.Values), ValueFormatter: countFormatter},
		Bars:       bars,
	}
}

func donutGraph(c Chart) chart.DonutChart {
	values := make([]chart.Value, len(c.Values))
	for i, v := range c.Values {
		values[i] = chart.Value{
			Label: strconv.Itoa(v),
			Value: float64(v),
			Style: chart.Style{FillColor: color(c.Colors[i]), StrokeColor: drawing.ColorWhite, StrokeWidth: 2},
		}
	}
	return chart.DonutChart{Width: svgWidth, Height: svgHeight, Values: values}
}

func legend(c Chart) string {
	var b strings.Builder
	b.WriteString(`<ul class="chart-legend">`)
	for i, v := range c.Values {
		fmt.Fprintf(&b, `<li><span class="swatch" style="background:%s"></span>%s: %d</li>`, esc(c.Colors[i]), esc(c.Labels[i]), v)
	}
	b.WriteString(`</ul>`)
	return b.String()
}

// scalable adds a viewBox so the pixel-sized canvas scales with its card.
func scalable(svg string) string {
	return strings.Replace(svg, "<svg ", fmt.Sprintf(`<svg viewBox="0 0 %d %d" `, svgWidth, svgHeight), 1)
}
