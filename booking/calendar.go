package booking

import (
	"strings"
	"time"

	"kartbook/models"
	"kartbook/timeslot"

	"github.com/golang-sql/civil"
)

// Day is the resolved opening window of one date.
type Day struct {
	Open      bool
	OpenTime  timeslot.Minute
	CloseTime timeslot.Minute
}

// Calendar answers whether the business is open on a date.
type Calendar struct {
	Settings *models.Settings
}

// Resolve looks up the weekly hours for date's weekday and applies holidays.
// Missing or unparseable configuration means closed.
func (c Calendar) Resolve(date civil.Date) Day {
	if c.Settings == nil || c.IsHoliday(date) {
		return Day{}
	}
	weekday := date.In(time.UTC).Weekday().String()
	for _, wd := range c.Settings.WorkingHours {
		if !strings.EqualFold(strings.TrimSpace(wd.Day), weekday) {
			continue
		}
		if !wd.IsOpen {
			return Day{}
		}
		open, err := timeslot.ParseClock(strings.TrimSpace(wd.OpenTime))
		if err != nil {
			return Day{}
		}
		close, err := timeslot.ParseClock(strings.TrimSpace(wd.CloseTime))
		if err != nil {
			return Day{}
		}
		return Day{Open: true, OpenTime: open, CloseTime: close}
	}
	return Day{}
}

// IsHoliday compares calendar dates only. Holiday values carrying a time
// part ("2025-12-24T00:00:00Z") are matched on their date prefix.
func (c Calendar) IsHoliday(date civil.Date) bool {
	for _, h := range c.Settings.Holidays {
		hd, ok := holidayDate(h.Date)
		if ok && hd == date {
			return true
		}
	}
	return false
}

func holidayDate(s string) (civil.Date, bool) {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		s = s[:10]
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, false
	}
	return d, true
}
