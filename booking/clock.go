package booking

import (
	"time"

	"kartbook/timeslot"

	"github.com/golang-sql/civil"
)

// Clock supplies the current instant. Dates and wall-clock minutes are taken
// in the location of the returned time, so implementations should return
// times in the business time zone.
type Clock interface {
	Now() time.Time
}

type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns T.
type FixedClock struct {
	T time.Time
}

func (c FixedClock) Now() time.Time { return c.T }

func dateOf(t time.Time) civil.Date { return civil.DateOf(t) }

func minuteOf(t time.Time) timeslot.Minute {
	return timeslot.Minute(t.Hour()*60 + t.Minute())
}
