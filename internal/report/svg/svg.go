// Package svg renders the report charts as inline SVG markup, sized for the
// PDF page.
package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Series is one bar per label. Opts.SecondLabel plus a second Series turns
// the chart into grouped bars.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

// Opts customises the bar chart renderer.
type Opts struct {
	Title     string
	AxisColor string
	GridColor string
	Padding   float64
	TickCount int
}

// Defaults for the report charts.
const (
	DefaultWidth   = 720
	DefaultHeight  = 260
	DefaultPadding = 28.0
	DefaultTicks   = 5
)

// Bars renders labelled bars for one or two series sharing the same labels.
func Bars(width, height int, labels []string, series []Series, opts Opts) (template.HTML, error) {
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	if len(series) == 0 || len(series) > 2 {
		return "", fmt.Errorf("svg: one or two series required")
	}
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	tickCount := opts.TickCount
	if tickCount <= 0 {
		tickCount = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#cbd5f5")

	chartWidth := float64(width) - 2*padding
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	maxVal := 0.0
	for _, s := range series {
		for _, v := range s.Values {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	scale := chartHeight / maxVal
	baseY := padding + chartHeight

	groupWidth := chartWidth / float64(len(labels))
	barWidth := groupWidth / float64(len(series)+1)

	var b strings.Builder
	fmt.Fprintf(&b, "<svg xmlns=\"http://www.w3.org/2000/svg\" viewBox=\"0 0 %d %d\" role=\"img\">", width, height)
	fmt.Fprintf(&b, "<title>%s</title>", template.HTMLEscapeString(fallback(opts.Title, "Bar chart")))

	for i := 0; i <= tickCount; i++ {
		ratio := float64(i) / float64(tickCount)
		value := maxVal * ratio
		y := baseY - ratio*chartHeight
		fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"0.5\" stroke-dasharray=\"2,4\"></line>",
			padding, y, padding+chartWidth, y, gridColor)
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"end\">%s</text>",
			padding-6, y+4, axisColor, template.HTMLEscapeString(formatTick(value)))
	}

	fmt.Fprintf(&b, "<g stroke=\"%s\">", axisColor)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, padding, padding, baseY)
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke-width=\"1\"></line>", padding, baseY, padding+chartWidth, baseY)
	b.WriteString("</g>")

	for i, label := range labels {
		baseX := padding + float64(i)*groupWidth
		for j, s := range series {
			h := s.Values[i] * scale
			if h < 0 {
				h = 0
			}
			x := baseX + barWidth*(0.5+float64(j))
			fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" fill=\"%s\" aria-label=\"%s %s\"></rect>",
				x, baseY-h, barWidth*0.9, h, fallback(s.Color, "#0ea5e9"),
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label))
		}
		center := baseX + groupWidth/2
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"middle\">%s</text>",
			center, baseY+14, axisColor, template.HTMLEscapeString(label))
	}

	legendY := padding - 12
	if legendY < 12 {
		legendY = 12
	}
	legendX := padding
	for _, s := range series {
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"10\" height=\"10\" fill=\"%s\"></rect>", legendX, legendY-8, fallback(s.Color, "#0ea5e9"))
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", legendX+14, legendY, axisColor, template.HTMLEscapeString(s.Label))
		legendX += 120
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}

func formatTick(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}

func fallback(value, def string) string {
	if strings.TrimSpace(value) == "" {
		return def
	}
	return value
}
