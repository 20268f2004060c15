package utils

import (
	"time"

	"trading-backend/src/logger"
	"trading-backend/src/models"

	"github.com/scmhub/calendar"
)

// NSE cash session, local time.
const (
	sessionOpenHour    = 9
	sessionOpenMinute  = 15
	sessionCloseHour   = 15
	sessionCloseMinute = 30
)

// TradingCalendar calculates NSE trading days using scmhub/calendar.
type TradingCalendar struct {
	Calendar *calendar.Calendar
	Fallback bool
	Timezone *time.Location
}

// -----------------------------------------------------------------------------

// NewTradingCalendar loads the calendar for a MIC code ("xnse", "xbom").
// When the library has no calendar for it, a Mon-Fri calendar in
// Asia/Kolkata is used.
func NewTradingCalendar(mic string, l *logger.Logger) *TradingCalendar {
	cal := calendar.GetCalendar(mic)
	if cal == nil {
		l.Warning("No calendar for MIC '%s'. Using simple fallback (Mon-Fri 09:15-15:30 IST).", mic)
		return NewFallbackCalendar()
	}
	return &TradingCalendar{Calendar: cal, Timezone: cal.Loc}
}

// NewFallbackCalendar returns the weekday-only calendar.
func NewFallbackCalendar() *TradingCalendar {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		loc = time.FixedZone("IST", 5*3600+1800)
	}
	return &TradingCalendar{Fallback: true, Timezone: loc}
}

// -----------------------------------------------------------------------------

func (tc *TradingCalendar) IsTradingDay(date time.Time) bool {
	if tc.Timezone != nil {
		date = date.In(tc.Timezone)
	}

	if tc.Fallback {
		weekday := date.Weekday()
		return weekday != time.Saturday && weekday != time.Sunday
	}
	return tc.Calendar.IsBusinessDay(date)
}

// -----------------------------------------------------------------------------

// IsOpenOnMinute checks if the market is open at a specific minute.
func (tc *TradingCalendar) IsOpenOnMinute(t time.Time) bool {
	if tc.Timezone != nil {
		t = t.In(tc.Timezone)
	}

	if tc.Fallback {
		if !tc.IsTradingDay(t) {
			return false
		}
		minutes := t.Hour()*60 + t.Minute()
		return minutes >= sessionOpenHour*60+sessionOpenMinute &&
			minutes < sessionCloseHour*60+sessionCloseMinute
	}

	return tc.Calendar.IsOpen(t)
}

// -----------------------------------------------------------------------------

// sessionOpen returns the session open on the calendar day of t.
func (tc *TradingCalendar) sessionOpen(t time.Time) time.Time {
	loc := tc.Timezone
	if loc == nil {
		loc = time.UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), sessionOpenHour, sessionOpenMinute, 0, 0, loc)
}

// CandleWindow returns the [from, to] range covering the scale's lookback in
// trading days, ending at now. The current day counts once its session has
// opened; before that the count starts on the previous day.
func (tc *TradingCalendar) CandleWindow(now time.Time, scale models.Scale) (time.Time, time.Time) {
	days := scale.LookbackDays()
	if days < 1 {
		days = 1
	}

	day := tc.sessionOpen(now)
	if now.Before(day) {
		day = day.AddDate(0, 0, -1)
	}
	counted := 0
	// Bounded so a broken calendar cannot loop forever.
	for i := 0; i < days*3+30; i++ {
		if tc.IsTradingDay(day) {
			counted++
			if counted == days {
				break
			}
		}
		day = day.AddDate(0, 0, -1)
	}
	if day.After(now) {
		day = now
	}
	return day, now
}

// SessionOpen is the local hour and minute of the regular session open.
func (tc *TradingCalendar) SessionOpen() (int, int) {
	return sessionOpenHour, sessionOpenMinute
}
