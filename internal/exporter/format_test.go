package exporter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0"},
		{name: "below thousand", input: 999, expected: "999"},
		{name: "thousands", input: 1234, expected: "1,234"},
		{name: "millions", input: 1234567, expected: "1,234,567"},
		{name: "drops decimals", input: 1500.2, expected: "1,500"},
		{name: "negative", input: -2500, expected: "-2,500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatMoney(tt.input))
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "12,346", FormatAmount(decimal.RequireFromString("12345.99")))
	assert.Equal(t, "100", FormatAmount(decimal.NewFromInt(100)))
}

func TestMoneyTick(t *testing.T) {
	assert.Equal(t, "10,000", moneyTick(10000.0))
	assert.Equal(t, "42", moneyTick(42))
	assert.Empty(t, moneyTick("x"))
}
