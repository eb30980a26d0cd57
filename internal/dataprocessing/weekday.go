package dataprocessing

import (
	"fmt"
	"time"
)

// weekdayLabels maps English weekday names to the dashboard's labels.
var weekdayLabels = map[string]string{
	"Monday":    "Lunes",
	"Tuesday":   "Martes",
	"Wednesday": "Miércoles",
	"Thursday":  "Jueves",
	"Friday":    "Viernes",
	"Saturday":  "Sábado",
	"Sunday":    "Domingo",
}

// weekdayOrder is the canonical Monday..Sunday order of the labels.
var weekdayOrder = []string{"Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado", "Domingo"}

// WeekdayOrder returns the canonical Monday..Sunday label sequence.
func WeekdayOrder() []string {
	out := make([]string, len(weekdayOrder))
	copy(out, weekdayOrder)
	return out
}

// IsWeekdayLabel reports whether label is one of the seven canonical labels.
func IsWeekdayLabel(label string) bool {
	for _, l := range weekdayOrder {
		if l == label {
			return true
		}
	}
	return false
}

// WeekdayLabel returns the localized weekday label of a date.
func WeekdayLabel(date time.Time) (string, error) {
	name := date.Weekday().String()
	label, ok := weekdayLabels[name]
	if !ok {
		return "", fmt.Errorf("no weekday label for %q", name)
	}
	return label, nil
}
