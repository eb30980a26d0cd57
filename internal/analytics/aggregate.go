package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"salesdash/internal/dataprocessing"
	"salesdash/pkg/contracts/domain"
)

// Axis and bucket labels.
const (
	SalesAxisLabel    = "Ventas ($)"
	DayAxisLabel      = "Día del mes"
	HourAxisLabel     = "Hora del día"
	CashBucket        = "Efectivo"
	MercadoPagoBucket = "Mercado Pago"
)

// paymentBucket is a substring match on the payment method. Buckets may
// overlap and a row may match none.
type paymentBucket struct {
	label  string
	needle string
}

var paymentBuckets = []paymentBucket{
	{label: CashBucket, needle: "efectivo"},
	{label: MercadoPagoBucket, needle: "mercado pago"},
}

type recipe func(table *domain.TransactionTable) []domain.SeriesPoint

var recipes = map[domain.MetricID]recipe{
	domain.MetricByProduct:       byProduct,
	domain.MetricByDay:           byDay,
	domain.MetricByHour:          byHour,
	domain.MetricByWeekday:       byWeekday,
	domain.MetricByEmployee:      byEmployee,
	domain.MetricByPaymentMethod: byPaymentMethod,
}

// Aggregate groups and sums table for the metric id. It fails with
// ErrMetricUnavailable when id is not in the table's catalog.
func Aggregate(table *domain.TransactionTable, id domain.MetricID) (*domain.Series, error) {
	metric, err := Lookup(table, id)
	if err != nil {
		return nil, err
	}

	points := recipes[metric.ID](table)
	total := decimal.Zero
	for _, p := range points {
		total = total.Add(p.Value)
	}

	series := &domain.Series{
		Metric: metric,
		Title:  metric.Label,
		YLabel: SalesAxisLabel,
		Points: points,
		Total:  total,
	}
	switch metric.ID {
	case domain.MetricByDay:
		series.XLabel = DayAxisLabel
	case domain.MetricByHour:
		series.XLabel = HourAxisLabel
	}
	return series, nil
}

// groups accumulates sums per key while remembering first appearance.
type groups struct {
	order []string
	sums  map[string]decimal.Decimal
}

func newGroups() *groups {
	return &groups{sums: make(map[string]decimal.Decimal)}
}

func (g *groups) add(key string, amount decimal.Decimal) {
	sum, ok := g.sums[key]
	if !ok {
		g.order = append(g.order, key)
	}
	g.sums[key] = sum.Add(amount)
}

func (g *groups) points() []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, 0, len(g.order))
	for _, key := range g.order {
		points = append(points, domain.SeriesPoint{Label: key, Value: g.sums[key]})
	}
	return points
}

func byProduct(table *domain.TransactionTable) []domain.SeriesPoint {
	g := newGroups()
	for _, tx := range table.Transactions {
		if tx.Product == "" {
			continue
		}
		g.add(tx.Product, tx.Amount)
	}
	points := g.points()
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Value.GreaterThan(points[j].Value)
	})
	return points
}

func byDay(table *domain.TransactionTable) []domain.SeriesPoint {
	sums := make(map[int]decimal.Decimal)
	for _, tx := range table.Transactions {
		sums[tx.DayOfMonth] = sums[tx.DayOfMonth].Add(tx.Amount)
	}
	return numericPoints(sums)
}

func byHour(table *domain.TransactionTable) []domain.SeriesPoint {
	sums := make(map[int]decimal.Decimal)
	for _, tx := range table.Transactions {
		if !tx.HasHour() {
			continue
		}
		sums[*tx.Hour] = sums[*tx.Hour].Add(tx.Amount)
	}
	return numericPoints(sums)
}

// numericPoints orders integer keys ascending, keeping only keys present.
func numericPoints(sums map[int]decimal.Decimal) []domain.SeriesPoint {
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	points := make([]domain.SeriesPoint, 0, len(keys))
	for _, k := range keys {
		points = append(points, domain.SeriesPoint{Label: strconv.Itoa(k), Value: sums[k]})
	}
	return points
}

func byWeekday(table *domain.TransactionTable) []domain.SeriesPoint {
	sums := make(map[string]decimal.Decimal, 7)
	for _, tx := range table.Transactions {
		sums[tx.Weekday] = sums[tx.Weekday].Add(tx.Amount)
	}

	order := dataprocessing.WeekdayOrder()
	points := make([]domain.SeriesPoint, 0, len(order))
	for _, label := range order {
		sum, ok := sums[label]
		points = append(points, domain.SeriesPoint{Label: label, Value: sum, Missing: !ok})
	}
	return points
}

func byEmployee(table *domain.TransactionTable) []domain.SeriesPoint {
	g := newGroups()
	for _, tx := range table.Transactions {
		if tx.Employee == "" {
			continue
		}
		g.add(tx.Employee, tx.Amount)
	}
	return g.points()
}

func byPaymentMethod(table *domain.TransactionTable) []domain.SeriesPoint {
	points := make([]domain.SeriesPoint, len(paymentBuckets))
	for i, b := range paymentBuckets {
		points[i] = domain.SeriesPoint{Label: b.label, Value: decimal.Zero}
	}
	for _, tx := range table.Transactions {
		method := strings.ToLower(tx.PaymentMethod)
		for i, b := range paymentBuckets {
			if strings.Contains(method, b.needle) {
				points[i].Value = points[i].Value.Add(tx.Amount)
			}
		}
	}
	return points
}
