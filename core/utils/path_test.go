package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatPath(t *testing.T) {
	date := time.Date(2024, 3, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		pattern  string
		expected string
	}{
		{"IB/F5678557_Position_%Y%m%d.csv", "IB/F5678557_Position_20240307.csv"},
		{"formidium/Reporting Package %Y-%m-%d.xlsx", "formidium/Reporting Package 2024-03-07.xlsx"},
		{"rjo/%y%m%d_100%%.csv", "rjo/240307_100%.csv"},
		{"Anar_%Y-%m-%d.xlsx", "Anar_2024-03-07.xlsx"},
		{"static.csv", "static.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatPath(tt.pattern, date))
		})
	}
}

func TestLastBusinessDay(t *testing.T) {
	friday := time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"Friday", friday, friday},
		{"Saturday", friday.AddDate(0, 0, 1), friday},
		{"Sunday", friday.AddDate(0, 0, 2), friday},
		{"Monday", friday.AddDate(0, 0, 3), friday.AddDate(0, 0, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LastBusinessDay(tt.date))
		})
	}
}
