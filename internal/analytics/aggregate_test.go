package analytics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salesdash/internal/dataprocessing"
	"salesdash/pkg/contracts/domain"
)

func hour(h int) *int {
	return &h
}

func tx(date time.Time, h *int, amount int64, employee, payment, product string) domain.Transaction {
	label, _ := dataprocessing.WeekdayLabel(date)
	return domain.Transaction{
		Date:          date,
		Hour:          h,
		DayOfMonth:    date.Day(),
		Weekday:       label,
		Amount:        decimal.NewFromInt(amount),
		Employee:      employee,
		PaymentMethod: payment,
		Product:       product,
	}
}

func day(d int) time.Time {
	return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC)
}

func sampleTable() *domain.TransactionTable {
	return &domain.TransactionTable{
		ProductColumn: "Producto",
		Transactions: []domain.Transaction{
			tx(day(15), hour(9), 100, "Ana", "Efectivo", "Café"),
			tx(day(15), hour(10), 200, "Bea", "Mercado Pago QR", "Alfajor"),
			tx(day(16), nil, 300, "Ana", "Tarjeta", "Café"),
			tx(day(20), hour(9), 400, "Caro", "Efectivo y Mercado Pago combinados", "Agua"),
			tx(day(3), hour(22), 50, "Bea", "EFECTIVO", "Alfajor"),
		},
	}
}

func values(points []domain.SeriesPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Value.String()
	}
	return out
}

func labels(points []domain.SeriesPoint) []string {
	out := make([]string, len(points))
	for i, p := range points {
		out[i] = p.Label
	}
	return out
}

func TestAggregateThreeRowScenario(t *testing.T) {
	input := "Fecha,Hora,Total,Empleado,Forma de Pago\n" +
		"10/02/2024,09:00,100,Ana,Efectivo\n" +
		"10/02/2024,10:30,200,Ana,Efectivo\n" +
		"10/02/2024,11:45,300,Ana,Efectivo\n"
	loader := dataprocessing.NewLoader(dataprocessing.DefaultLoadOptions(), nil)
	table, err := loader.Load(context.Background(), strings.NewReader(input), "caja.csv")
	require.NoError(t, err)

	byHour, err := Aggregate(table, domain.MetricByHour)
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "11"}, labels(byHour.Points))
	assert.Equal(t, []string{"100", "200", "300"}, values(byHour.Points))
	assert.Equal(t, HourAxisLabel, byHour.XLabel)

	byDay, err := Aggregate(table, domain.MetricByDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"10"}, labels(byDay.Points))
	assert.Equal(t, []string{"600"}, values(byDay.Points))
	assert.Equal(t, domain.ChartLine, byDay.Metric.Kind)
	assert.Equal(t, SalesAxisLabel, byDay.YLabel)
}

func TestAggregateByProduct(t *testing.T) {
	series, err := Aggregate(sampleTable(), domain.MetricByProduct)
	require.NoError(t, err)
	assert.Equal(t, []string{"Café", "Agua", "Alfajor"}, labels(series.Points))
	assert.Equal(t, []string{"400", "400", "250"}, values(series.Points))
	assert.Equal(t, "Ventas por producto", series.Title)
}

func TestAggregateByProductUnavailable(t *testing.T) {
	table := sampleTable()
	table.ProductColumn = ""
	_, err := Aggregate(table, domain.MetricByProduct)
	assert.ErrorIs(t, err, ErrMetricUnavailable)
}

func TestAggregateByDayAscending(t *testing.T) {
	series, err := Aggregate(sampleTable(), domain.MetricByDay)
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "15", "16", "20"}, labels(series.Points))
	assert.Equal(t, []string{"50", "300", "300", "400"}, values(series.Points))
	assert.Equal(t, DayAxisLabel, series.XLabel)
}

func TestAggregateUnknownHourDifferentialInclusion(t *testing.T) {
	table := sampleTable()

	byHour, err := Aggregate(table, domain.MetricByHour)
	require.NoError(t, err)
	assert.Equal(t, []string{"9", "10", "22"}, labels(byHour.Points))
	assert.Equal(t, "750", byHour.Total.String())

	byDay, err := Aggregate(table, domain.MetricByDay)
	require.NoError(t, err)
	assert.True(t, table.Total().Equal(byDay.Total))

	byWeekday, err := Aggregate(table, domain.MetricByWeekday)
	require.NoError(t, err)
	assert.True(t, table.Total().Equal(byWeekday.Total))
}

func TestAggregateByWeekdayCanonicalOrder(t *testing.T) {
	series, err := Aggregate(sampleTable(), domain.MetricByWeekday)
	require.NoError(t, err)

	require.Len(t, series.Points, 7)
	assert.Equal(t, dataprocessing.WeekdayOrder(), labels(series.Points))
	for _, p := range series.Points {
		assert.True(t, dataprocessing.IsWeekdayLabel(p.Label))
	}

	// 15th Monday, 16th Tuesday, 20th Saturday, 3rd Wednesday.
	assert.Equal(t, []string{"300", "300", "50", "0", "0", "400", "0"}, values(series.Points))
	missing := make([]bool, 0, 7)
	for _, p := range series.Points {
		missing = append(missing, p.Missing)
	}
	assert.Equal(t, []bool{false, false, false, true, true, false, true}, missing)
}

func TestAggregateByEmployeeFirstAppearance(t *testing.T) {
	series, err := Aggregate(sampleTable(), domain.MetricByEmployee)
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "Bea", "Caro"}, labels(series.Points))
	assert.Equal(t, []string{"400", "250", "400"}, values(series.Points))
	assert.Empty(t, series.XLabel)
}

func TestAggregateByPaymentMethodOverlaps(t *testing.T) {
	table := sampleTable()
	series, err := Aggregate(table, domain.MetricByPaymentMethod)
	require.NoError(t, err)

	assert.Equal(t, []string{CashBucket, MercadoPagoBucket}, labels(series.Points))
	// The combined row counts in both buckets; the card row counts in neither.
	assert.Equal(t, []string{"550", "600"}, values(series.Points))
	assert.False(t, table.Total().Equal(series.Total))
}

func TestAggregateByPaymentMethodNoMatches(t *testing.T) {
	table := &domain.TransactionTable{Transactions: []domain.Transaction{
		tx(day(1), hour(8), 100, "Ana", "Tarjeta", ""),
	}}
	series, err := Aggregate(table, domain.MetricByPaymentMethod)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "0"}, values(series.Points))
	assert.False(t, series.Empty())
}

func TestAggregateHourSeriesEmptyWhenNoHours(t *testing.T) {
	table := &domain.TransactionTable{Transactions: []domain.Transaction{
		tx(day(1), nil, 100, "Ana", "Efectivo", ""),
	}}
	series, err := Aggregate(table, domain.MetricByHour)
	require.NoError(t, err)
	assert.True(t, series.Empty())
	assert.True(t, series.Total.IsZero())
}

func TestAggregatePartitionsSumToTotal(t *testing.T) {
	table := sampleTable()
	for _, id := range []domain.MetricID{domain.MetricByDay, domain.MetricByWeekday, domain.MetricByEmployee, domain.MetricByProduct} {
		t.Run(string(id), func(t *testing.T) {
			series, err := Aggregate(table, id)
			require.NoError(t, err)
			sum := decimal.Zero
			for _, p := range series.Points {
				sum = sum.Add(p.Value)
			}
			assert.True(t, table.Total().Equal(sum), "sum %s, total %s", sum, table.Total())
		})
	}
}
