package dataprocessing

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

var errEmptyCell = errors.New("empty cell")

var (
	dayFirstDates = []string{
		"2/1/2006", "2-1-2006", "2.1.2006", "2/1/06",
		"2006-1-2", "2006/1/2",
	}
	monthFirstDates = []string{
		"1/2/2006", "1-2-2006", "1.2.2006", "1/2/06",
		"2006-1-2", "2006/1/2",
	}
	clockLayouts = []string{
		"15:04:05", "15:04",
		"3:04:05 PM", "3:04 PM", "3:04:05PM", "3:04PM",
		"15:04:05.000",
	}
)

// DateLayouts expands the base date layouts with optional time suffixes, in
// the order they are tried. dayFirst selects between dd/mm and mm/dd.
func DateLayouts(dayFirst bool) []string {
	base := monthFirstDates
	if dayFirst {
		base = dayFirstDates
	}
	layouts := make([]string, 0, len(base)*3+2)
	for _, b := range base {
		layouts = append(layouts, b, b+" 15:04:05", b+" 15:04")
	}
	return append(layouts, time.RFC3339, "2006-01-02T15:04:05")
}

// TimeLayouts returns clock layouts followed by full date-time layouts.
func TimeLayouts(dayFirst bool) []string {
	layouts := append([]string{}, clockLayouts...)
	for _, l := range DateLayouts(dayFirst) {
		if strings.Contains(l, "15") {
			layouts = append(layouts, l)
		}
	}
	return layouts
}

// parseDate coerces a Fecha cell to a calendar date at midnight UTC.
// Spreadsheet cells holding a number are Excel serial dates.
func parseDate(raw string, spreadsheet bool, layouts []string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errEmptyCell
	}
	if spreadsheet {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			t, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, err
			}
			return calendarDate(t), nil
		}
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return calendarDate(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseHour extracts the hour of a Hora cell. ok is false when the value
// cannot be read as a time of day.
func parseHour(raw string, spreadsheet bool, layouts []string) (hour int, ok bool) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return 0, false
	}
	if spreadsheet {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			if serial < 0 {
				return 0, false
			}
			seconds := math.Round((serial - math.Floor(serial)) * 86400)
			return int(seconds/3600) % 24, true
		}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Hour(), true
		}
	}
	return 0, false
}

// parseAmount coerces a Total cell. The right-most of '.' and ',' is the
// decimal mark when both appear; a single ',' is a decimal mark only when it
// is followed by one or two digits.
func parseAmount(raw string) (decimal.Decimal, error) {
	value := strings.TrimSpace(raw)
	value = strings.NewReplacer("$", "", "ARS", "", " ", "", "\u00a0", "").Replace(value)
	if value == "" {
		return decimal.Zero, nil
	}

	negative := false
	if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
		negative = true
		value = value[1 : len(value)-1]
	}

	dot := strings.LastIndex(value, ".")
	comma := strings.LastIndex(value, ",")
	switch {
	case dot >= 0 && comma >= 0:
		if comma > dot {
			value = strings.ReplaceAll(value, ".", "")
			value = strings.Replace(value, ",", ".", 1)
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	case comma >= 0:
		if strings.Count(value, ",") == 1 && len(value)-comma-1 <= 2 {
			value = strings.Replace(value, ",", ".", 1)
		} else {
			value = strings.ReplaceAll(value, ",", "")
		}
	case strings.Count(value, ".") > 1:
		value = strings.ReplaceAll(value, ".", "")
	}

	amount, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func calendarDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
