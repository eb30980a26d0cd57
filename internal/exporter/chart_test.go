package exporter

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/pkg/contracts/domain"
)

func newSeries(kind domain.ChartKind, xlabel string, points ...domain.SeriesPoint) *domain.Series {
	return &domain.Series{
		Metric: domain.Metric{ID: domain.MetricByHour, Label: "Ventas por hora", Kind: kind},
		Title:  "Ventas por hora",
		XLabel: xlabel,
		YLabel: "Ventas ($)",
		Points: points,
	}
}

func point(label string, v int64) domain.SeriesPoint {
	return domain.SeriesPoint{Label: label, Value: decimal.NewFromInt(v)}
}

func TestRenderPNG(t *testing.T) {
	tests := []struct {
		name   string
		series *domain.Series
	}{
		{"bar", newSeries(domain.ChartBar, "Hora del día", point("9", 100), point("10", 2500), point("11", 300))},
		{"bar without caption", newSeries(domain.ChartBar, "", point("Efectivo", 1200), point("Mercado Pago", 0))},
		{"single bar", newSeries(domain.ChartBar, "", point("Ana", 700))},
		{"all zero bars", newSeries(domain.ChartBar, "", point("Lunes", 0), point("Martes", 0))},
		{"line", newSeries(domain.ChartLine, "Día del mes", point("1", 100), point("5", 400), point("30", 250))},
		{"single point line", newSeries(domain.ChartLine, "Día del mes", point("14", 600))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, RenderPNG(&buf, tt.series, ChartOptions{Width: 640, Height: 360}))

			img, err := png.Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, 640, img.Bounds().Dx())
			assert.Equal(t, 360, img.Bounds().Dy())
		})
	}
}

func TestRenderPNGDefaultSize(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderPNG(&buf, newSeries(domain.ChartBar, "", point("9", 1)), ChartOptions{}))

	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 576, cfg.Height)
}

func TestRenderPNGEmptySeries(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, RenderPNG(&buf, newSeries(domain.ChartBar, ""), DefaultChartOptions()), ErrEmptySeries)
	assert.ErrorIs(t, RenderPNG(&buf, nil, DefaultChartOptions()), ErrEmptySeries)
	assert.Zero(t, buf.Len())
}

func TestValueRange(t *testing.T) {
	r := valueRange([]float64{0, 0})
	assert.Equal(t, 0.0, r.Min)
	assert.Equal(t, 1.0, r.Max)

	r = valueRange([]float64{100, 50})
	assert.Equal(t, 0.0, r.Min)
	assert.InDelta(t, 110.0, r.Max, 1e-9)

	r = valueRange([]float64{-100, 20})
	assert.InDelta(t, -110.0, r.Min, 1e-9)
	assert.InDelta(t, 22.0, r.Max, 1e-9)
}
