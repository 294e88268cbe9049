package booking

import (
	"testing"

	"kartbook/models"
	"kartbook/settings"
	"kartbook/timeslot"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
)

func date(t *testing.T, s string) civil.Date {
	t.Helper()
	d, err := civil.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func TestCalendarResolve(t *testing.T) {
	s := settings.Defaults()
	s.Holidays = []models.Holiday{
		{ID: "h1", Date: "2025-06-03", Description: "Staff day"},
		{ID: "h2", Date: "2025-06-04T00:00:00Z", Description: "Stored with a time part"},
	}
	cal := Calendar{Settings: s}

	tests := []struct {
		name string
		date string
		want Day
	}{
		{"weekday", "2025-06-02", Day{Open: true, OpenTime: 9 * 60, CloseTime: 18 * 60}},
		{"saturday", "2025-06-07", Day{Open: true, OpenTime: 10 * 60, CloseTime: 16 * 60}},
		{"sunday closed", "2025-06-08", Day{}},
		{"holiday", "2025-06-03", Day{}},
		{"holiday with time part", "2025-06-04", Day{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cal.Resolve(date(t, tt.date)))
		})
	}
}

func TestCalendarDayNamesIgnoreCase(t *testing.T) {
	s := &models.Settings{WorkingHours: []models.WorkingDay{
		{Day: " Monday ", IsOpen: true, OpenTime: "08:30", CloseTime: "12:00"},
	}}
	day := Calendar{Settings: s}.Resolve(date(t, "2025-06-02"))
	assert.True(t, day.Open)
	assert.Equal(t, timeslot.Minute(8*60+30), day.OpenTime)
}

func TestCalendarBadConfigMeansClosed(t *testing.T) {
	tests := []struct {
		name  string
		hours []models.WorkingDay
	}{
		{"no entry for the day", []models.WorkingDay{{Day: "tuesday", IsOpen: true, OpenTime: "09:00", CloseTime: "18:00"}}},
		{"unparseable open", []models.WorkingDay{{Day: "monday", IsOpen: true, OpenTime: "9am", CloseTime: "18:00"}}},
		{"unparseable close", []models.WorkingDay{{Day: "monday", IsOpen: true, OpenTime: "09:00", CloseTime: "25:00"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := Calendar{Settings: &models.Settings{WorkingHours: tt.hours}}.Resolve(date(t, "2025-06-02"))
			assert.False(t, day.Open)
		})
	}
}

func TestCalendarNilSettings(t *testing.T) {
	assert.False(t, Calendar{}.Resolve(date(t, "2025-06-02")).Open)
}
