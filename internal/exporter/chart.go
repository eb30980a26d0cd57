package exporter

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	chart "github.com/wcharczuk/go-chart/v2"

	"salesdash/pkg/contracts/domain"
)

// ErrEmptySeries is returned when a series has no points to draw.
var ErrEmptySeries = errors.New("series has no data to chart")

// ChartOptions sets the output image size in pixels.
type ChartOptions struct {
	Width  int
	Height int
}

// DefaultChartOptions returns a 1024x576 canvas.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 1024, Height: 576}
}

func (o ChartOptions) normalized() ChartOptions {
	def := DefaultChartOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	return o
}

// RenderPNG draws series to w as a PNG image.
func RenderPNG(w io.Writer, series *domain.Series, opts ChartOptions) error {
	if series == nil || series.Empty() {
		return ErrEmptySeries
	}
	opts = opts.normalized()

	var err error
	switch series.Metric.Kind {
	case domain.ChartLine:
		err = lineChart(series, opts).Render(chart.PNG, w)
	default:
		err = barChart(series, opts).Render(chart.PNG, w)
	}
	if err != nil {
		return fmt.Errorf("failed to render %s chart: %w", series.Metric.ID, err)
	}
	return nil
}

func barChart(series *domain.Series, opts ChartOptions) chart.BarChart {
	bars := make([]chart.Value, 0, len(series.Points))
	values := make([]float64, 0, len(series.Points))
	for _, p := range series.Points {
		v := p.Value.InexactFloat64()
		bars = append(bars, chart.Value{Label: p.Label, Value: v})
		values = append(values, v)
	}

	bc := chart.BarChart{
		Title:  series.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 20},
		},
		YAxis: chart.YAxis{
			Name:           series.YLabel,
			ValueFormatter: moneyTick,
			Range:          valueRange(values),
		},
		Bars: bars,
	}
	if series.XLabel != "" {
		bc.Background.Padding.Bottom = 40
		bc.Elements = []chart.Renderable{axisCaption(series.XLabel)}
	}
	return bc
}

func lineChart(series *domain.Series, opts ChartOptions) chart.Chart {
	xs := make([]float64, 0, len(series.Points))
	ys := make([]float64, 0, len(series.Points))
	ticks := make([]chart.Tick, 0, len(series.Points))
	for i, p := range series.Points {
		x, err := strconv.ParseFloat(p.Label, 64)
		if err != nil {
			x = float64(i + 1)
		}
		xs = append(xs, x)
		ys = append(ys, p.Value.InexactFloat64())
		ticks = append(ticks, chart.Tick{Value: x, Label: p.Label})
	}

	// go-chart derives the x range from the ticks, so unlabeled ticks pad
	// both ends and keep a single point from collapsing the domain.
	lo, hi := xs[0]-1, xs[len(xs)-1]+1
	ticks = append([]chart.Tick{{Value: lo}}, ticks...)
	ticks = append(ticks, chart.Tick{Value: hi})
	xRange := &chart.ContinuousRange{Min: lo, Max: hi}

	return chart.Chart{
		Title:  series.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  series.XLabel,
			Ticks: ticks,
			Range: xRange,
		},
		YAxis: chart.YAxis{
			Name:           series.YLabel,
			ValueFormatter: moneyTick,
			Range:          valueRange(ys),
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    series.Title,
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeWidth: 2,
					StrokeColor: chart.ColorBlue,
					DotWidth:    4,
					DotColor:    chart.ColorBlue,
				},
			},
		},
	}
}

// valueRange spans zero and the data with headroom above the maximum. It is
// never degenerate, so all-zero series still render.
func valueRange(values []float64) *chart.ContinuousRange {
	lo, hi := 0.0, 0.0
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi > 0 {
		hi *= 1.1
	}
	if lo < 0 {
		lo *= 1.1
	}
	if hi == lo {
		hi = 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// axisCaption writes a centered caption along the bottom of the chart box.
func axisCaption(text string) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		style := chart.Style{FontSize: 10, FontColor: chart.ColorBlack}.InheritFrom(defaults)
		style.WriteTextOptionsToRenderer(r)
		tb := r.MeasureText(text)
		chart.Draw.Text(r, text, box.Left+(box.Width()-tb.Width())/2, box.Bottom-8, style)
	}
}
