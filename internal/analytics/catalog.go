package analytics

import (
	"errors"

	"salesdash/pkg/contracts/domain"
)

// ErrMetricUnavailable is returned when a metric is not part of the catalog
// computed for the current table.
var ErrMetricUnavailable = errors.New("metric not available for this table")

var productMetric = domain.Metric{ID: domain.MetricByProduct, Label: "Ventas por producto", Kind: domain.ChartBar}

// baseMetrics are always offered, in menu order.
var baseMetrics = []domain.Metric{
	{ID: domain.MetricByDay, Label: "Ventas por día", Kind: domain.ChartLine},
	{ID: domain.MetricByHour, Label: "Ventas por hora", Kind: domain.ChartBar},
	{ID: domain.MetricByWeekday, Label: "Ventas por día de la semana", Kind: domain.ChartBar},
	{ID: domain.MetricByEmployee, Label: "Ventas por empleada", Kind: domain.ChartBar},
	{ID: domain.MetricByPaymentMethod, Label: "Ventas por forma de pago", Kind: domain.ChartBar},
}

// Catalog returns the metrics available for table. The product metric is
// prepended only when the table has a product column. The first entry is the
// default selection.
func Catalog(table *domain.TransactionTable) []domain.Metric {
	metrics := make([]domain.Metric, 0, len(baseMetrics)+1)
	if table != nil && table.HasProductColumn() {
		metrics = append(metrics, productMetric)
	}
	return append(metrics, baseMetrics...)
}

// Lookup resolves id against the catalog of table.
func Lookup(table *domain.TransactionTable, id domain.MetricID) (domain.Metric, error) {
	for _, m := range Catalog(table) {
		if m.ID == id {
			return m, nil
		}
	}
	return domain.Metric{}, ErrMetricUnavailable
}

// Default returns the first metric of the catalog.
func Default(table *domain.TransactionTable) domain.Metric {
	return Catalog(table)[0]
}
