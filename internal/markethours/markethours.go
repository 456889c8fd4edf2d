// Package markethours answers whether US equity markets are trading.
package markethours

import (
	"time"
	// Embed the zone database so DST-correct session bounds do not depend
	// on host tzdata.
	_ "time/tzdata"
)

// Eastern is the NYSE/Nasdaq trading timezone.
var Eastern = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("loading America/New_York: " + err.Error())
	}
	return loc
}

// Regular session bounds.
const (
	OpenHour    = 9
	OpenMinute  = 30
	CloseHour   = 16
	CloseMinute = 0
)

// holidays lists full-day US market closures, keyed YYYY-MM-DD in ET.
var holidays = map[string]struct{}{
	"2026-01-01": {}, // New Year's Day
	"2026-01-19": {}, // Martin Luther King Jr. Day
	"2026-02-16": {}, // Washington's Birthday
	"2026-04-03": {}, // Good Friday
	"2026-05-25": {}, // Memorial Day
	"2026-06-19": {}, // Juneteenth
	"2026-07-03": {}, // Independence Day (observed)
	"2026-09-07": {}, // Labor Day
	"2026-11-26": {}, // Thanksgiving
	"2026-12-25": {}, // Christmas
}

// IsHoliday reports whether t falls on a full-day closure.
func IsHoliday(t time.Time) bool {
	_, closed := holidays[t.In(Eastern).Format("2006-01-02")]
	return closed
}

// IsTradingDay reports whether t is a weekday and not a holiday.
func IsTradingDay(t time.Time) bool {
	et := t.In(Eastern)
	wd := et.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	return !IsHoliday(et)
}

// IsMarketOpen reports whether t falls within the regular session
// (9:30–16:00 ET, Mon–Fri, excluding holidays).
func IsMarketOpen(t time.Time) bool {
	if !IsTradingDay(t) {
		return false
	}
	et := t.In(Eastern)
	hm := et.Hour()*60 + et.Minute()
	return hm >= OpenHour*60+OpenMinute && hm < CloseHour*60+CloseMinute
}

// NextOpen returns the next regular-session open at or after t.
func NextOpen(t time.Time) time.Time {
	et := t.In(Eastern)

	todayOpen := time.Date(et.Year(), et.Month(), et.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
	if et.Before(todayOpen) && IsTradingDay(et) {
		return todayOpen
	}

	d := et.AddDate(0, 0, 1)
	for i := 0; i < 10; i++ {
		if IsTradingDay(d) {
			return time.Date(d.Year(), d.Month(), d.Day(), OpenHour, OpenMinute, 0, 0, Eastern)
		}
		d = d.AddDate(0, 0, 1)
	}
	return time.Date(et.Year(), et.Month(), et.Day()+1, OpenHour, OpenMinute, 0, 0, Eastern)
}
