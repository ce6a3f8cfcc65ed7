package booking

import (
	"errors"
	"strings"
)

var ErrInvalidWeekday = errors.New("invalid weekday")

// Weekday is one of the seven fixed schedule days, Monday-anchored.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdays = [7]Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

func Weekdays() [7]Weekday {
	return weekdays
}

func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(strings.ToLower(strings.TrimSpace(s)))
	for _, w := range weekdays {
		if d == w {
			return w, nil
		}
	}
	return "", ErrInvalidWeekday
}

// Index returns the offset from Monday (Monday = 0, Sunday = 6).
func (d Weekday) Index() int {
	for i, w := range weekdays {
		if d == w {
			return i
		}
	}
	return -1
}

func (d Weekday) String() string {
	return string(d)
}
