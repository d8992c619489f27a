// Package charts renders championship standings as PNG images.
package charts

import (
	"fmt"
	"io"

	"github.com/Dosada05/championship-system/models"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	chartHeight   = 420
	minChartWidth = 640
	barWidth      = 40
	barSpacing    = 24
	maxLabelRunes = 12
	noDataMessage = "Nenhum resultado registrado"
)

var (
	backgroundColor = drawing.ColorFromHex("0F172A")
	barColor        = drawing.ColorFromHex("3B82F6")
	leaderColor     = drawing.ColorFromHex("22C55E")
	textColor       = drawing.ColorFromHex("E2E8F0")
)

// RenderStandingsPNG draws one bar per team with its points, in table order.
// An empty table or one where nobody has played renders a placeholder.
func RenderStandingsPNG(w io.Writer, standings []models.Standing) error {
	maxPoints, played := 0, 0
	for _, s := range standings {
		if s.Points > maxPoints {
			maxPoints = s.Points
		}
		played += s.Played
	}
	if len(standings) == 0 || played == 0 {
		return renderPlaceholder(w)
	}

	bars := make([]chart.Value, 0, len(standings))
	for i, s := range standings {
		fill := barColor
		if i == 0 {
			fill = leaderColor
		}
		bars = append(bars, chart.Value{
			Value: float64(s.Points),
			Label: fmt.Sprintf("%d. %s", s.Position, shorten(s.TeamName)),
			Style: chart.Style{FillColor: fill, StrokeColor: fill},
		})
	}

	width := len(standings)*(barWidth+barSpacing) + 120
	if width < minChartWidth {
		width = minChartWidth
	}

	graph := chart.BarChart{
		Title:      "Pontos",
		TitleStyle: chart.Style{FontColor: textColor},
		Width:      width,
		Height:     chartHeight,
		BarWidth:   barWidth,
		BarSpacing: barSpacing,
		Background: chart.Style{
			FillColor: backgroundColor,
			Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		Canvas: chart.Style{FillColor: backgroundColor},
		XAxis:  chart.Style{FontColor: textColor, FontSize: 9},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: textColor},
			// Points are never negative; pin the axis at zero.
			Range: &chart.ContinuousRange{Min: 0, Max: float64(maxPoints + 1)},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%.0f", f)
				}
				return ""
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering standings chart: %w", err)
	}
	return nil
}

func renderPlaceholder(w io.Writer) error {
	const width, height = minChartWidth / 2, chartHeight / 2

	r, err := chart.PNG(width, height)
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("loading font: %w", err)
	}

	chart.Draw.Box(r, chart.Box{Top: 0, Left: 0, Right: width, Bottom: height}, chart.Style{
		FillColor:   backgroundColor,
		StrokeColor: backgroundColor,
	})

	r.SetFont(font)
	r.SetFontColor(textColor)
	r.SetFontSize(12.0)
	tb := r.MeasureText(noDataMessage)
	r.Text(noDataMessage, (width-tb.Width())/2, (height+tb.Height())/2)

	if err := r.Save(w); err != nil {
		return fmt.Errorf("rendering placeholder chart: %w", err)
	}
	return nil
}

func shorten(name string) string {
	r := []rune(name)
	if len(r) <= maxLabelRunes {
		return name
	}
	return string(r[:maxLabelRunes-1]) + "…"
}
