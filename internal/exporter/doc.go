// Package exporter renders aggregated sales series as PNG charts.
//
// Bar metrics are drawn with a go-chart BarChart and the day metric as a
// line with point markers. Monetary axes use thousands separators and no
// decimals:
//
//	err := exporter.RenderPNG(w, series, exporter.DefaultChartOptions())
//	if errors.Is(err, exporter.ErrEmptySeries) {
//	    // nothing to draw
//	}
package exporter
