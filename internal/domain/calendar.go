package domain

import (
	"fmt"
	"math"
	"time"
	_ "time/tzdata" // бизнес-таймзона не должна зависеть от tzdata хоста
)

// TimeBucket положение бронирования относительно текущей даты
type TimeBucket string

const (
	BucketPast    TimeBucket = "PAST"
	BucketCurrent TimeBucket = "CURRENT"
	BucketFuture  TimeBucket = "FUTURE"
)

// Calendar даты в фиксированной бизнес-таймзоне
type Calendar struct {
	loc *time.Location
}

// NewCalendar создает календарь для таймзоны name
func NewCalendar(name string) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q: %v", ErrInvalidInput, name, err)
	}
	return &Calendar{loc: loc}, nil
}

// CalendarIn календарь для уже загруженной таймзоны
func CalendarIn(loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	return &Calendar{loc: loc}
}

// Location бизнес-таймзона
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DateOf полночь календарного дня t в бизнес-таймзоне
func (c *Calendar) DateOf(t time.Time) time.Time {
	y, m, d := t.In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, c.loc)
}

// Date полночь указанного дня в бизнес-таймзоне
func (c *Calendar) Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, c.loc)
}

// At момент времени в указанный день в бизнес-таймзоне
func (c *Calendar) At(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, c.loc)
}

// ParseDate разбирает дату YYYY-MM-DD в бизнес-таймзоне
func (c *Calendar) ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, c.loc)
}

// Combine дата day + время HH:MM в бизнес-таймзоне
func (c *Calendar) Combine(day time.Time, hhmm string) (time.Time, error) {
	clock, err := time.Parse(TimeFormat, hhmm)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := day.In(c.loc).Date()
	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, c.loc), nil
}

// DaysBetween количество календарных дней между датами (end - start)
func (c *Calendar) DaysBetween(start, end time.Time) int {
	d := c.DateOf(end).Sub(c.DateOf(start)).Hours() / 24
	return int(math.Round(d))
}

// SameDay t приходится на календарный день day
func (c *Calendar) SameDay(t, day time.Time) bool {
	return c.DateOf(t).Equal(c.DateOf(day))
}

// Bucket PAST, если дата возврата раньше сегодняшней; FUTURE, если выдача позже;
// иначе CURRENT.
func (c *Calendar) Bucket(r Reservation, now time.Time) TimeBucket {
	today := c.DateOf(now)
	switch {
	case c.DateOf(r.EndDate).Before(today):
		return BucketPast
	case c.DateOf(r.StartDate).After(today):
		return BucketFuture
	default:
		return BucketCurrent
	}
}
