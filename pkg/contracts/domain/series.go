package domain

import "github.com/shopspring/decimal"

// MetricID is the stable, URL-safe identifier of a dashboard metric.
type MetricID string

const (
	MetricByProduct       MetricID = "producto"
	MetricByDay           MetricID = "dia"
	MetricByHour          MetricID = "hora"
	MetricByWeekday       MetricID = "dia-semana"
	MetricByEmployee      MetricID = "empleada"
	MetricByPaymentMethod MetricID = "forma-pago"
)

// ChartKind selects how a series is drawn.
type ChartKind string

const (
	ChartBar  ChartKind = "bar"
	ChartLine ChartKind = "line"
)

// Metric describes one entry of the metric catalog.
type Metric struct {
	ID    MetricID  `json:"id"`
	Label string    `json:"label"`
	Kind  ChartKind `json:"kind"`
}

// SeriesPoint is one group of an aggregate. Missing marks a category that
// exists in a fixed reindex order but had no rows; its Value is zero.
type SeriesPoint struct {
	Label   string          `json:"label"`
	Value   decimal.Decimal `json:"value"`
	Missing bool            `json:"missing,omitempty"`
}

// Series is the result of aggregating a table for one metric.
type Series struct {
	Metric Metric          `json:"metric"`
	Title  string          `json:"title"`
	XLabel string          `json:"x_label,omitempty"`
	YLabel string          `json:"y_label"`
	Points []SeriesPoint   `json:"points"`
	Total  decimal.Decimal `json:"total"`
}

// Empty reports whether the series has nothing to draw.
func (s *Series) Empty() bool {
	return len(s.Points) == 0
}
