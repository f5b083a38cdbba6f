package domain

import (
	"fmt"
	"time"
)

// Window is an hour range [StartHour, EndHour) in a time zone.
type Window struct {
	StartHour int
	EndHour   int
	Location  *time.Location
}

// IsWithinWindow converts now to loc and tests startHour <= hour < endHour.
// Minutes are ignored: 10:59 is inside a 10–11 window, 11:00 is not.
func IsWithinWindow(now time.Time, startHour, endHour int, loc *time.Location) bool {
	if loc == nil {
		loc = time.Local
	}
	hour := now.In(loc).Hour()
	return hour >= startHour && hour < endHour
}

// Allows reports whether now falls inside the window.
func (w Window) Allows(now time.Time) bool {
	return IsWithinWindow(now, w.StartHour, w.EndHour, w.Location)
}

// String renders the window like "10:00 AM - 11:00 AM IST".
func (w Window) String() string {
	zone := "local time"
	if w.Location != nil {
		zone = zoneAbbrev(w.Location)
	}
	return fmt.Sprintf("%s - %s %s", hourLabel(w.StartHour), hourLabel(w.EndHour), zone)
}

// DayBounds returns the start and end instants of now's calendar day in the window's zone.
func (w Window) DayBounds(now time.Time) (time.Time, time.Time) {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// WindowStatus is the payment window projection returned to clients.
type WindowStatus struct {
	IsAllowed     bool   `json:"isAllowed"`
	CurrentTime   string `json:"currentTime"`
	CurrentHour   int    `json:"currentHour"`
	AllowedWindow string `json:"allowedWindow"`
	Message       string `json:"message"`
}

// Status describes the window at now.
func (w Window) Status(now time.Time) WindowStatus {
	loc := w.Location
	if loc == nil {
		loc = time.Local
	}
	local := now.In(loc)
	allowed := w.Allows(now)
	msg := "Payments are currently allowed"
	if !allowed {
		msg = "Payments are only allowed between " + w.String()
	}
	return WindowStatus{
		IsAllowed:     allowed,
		CurrentTime:   local.Format("02/01/2006, 03:04:05 PM"),
		CurrentHour:   local.Hour(),
		AllowedWindow: w.String(),
		Message:       msg,
	}
}

func hourLabel(h int) string {
	suffix := "AM"
	if h >= 12 && h < 24 {
		suffix = "PM"
	}
	display := h % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:00 %s", display, suffix)
}

func zoneAbbrev(loc *time.Location) string {
	if loc.String() == "Asia/Kolkata" {
		return "IST"
	}
	name, _ := time.Now().In(loc).Zone()
	return name
}
