// Package datetime provides the opaque date-time scalar carried by TOML
// value trees. A Datetime is any of the four TOML date-time forms: offset
// date-time, local date-time, local date, and local time. The value layer
// round-trips Datetimes without interpreting them; only this package knows
// their textual grammar.
package datetime

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SentinelKey is the reserved map key used to smuggle a Datetime through a
// generic map-shaped event stream. A decoder materializing a value tree
// probes the first key of every incoming map against this constant; on a
// match the map carries exactly one string value, the canonical text of a
// Datetime, and is rebuilt as a native Datetime instead of a table.
//
// The key starts with characters that can never begin a TOML bare or quoted
// key produced by a real document, so no genuine table can collide with it.
const SentinelKey = "$__janus_private_datetime"

// Date is the calendar portion of a Datetime.
type Date struct {
	Year  int
	Month int // 1-12
	Day   int // 1-31, checked against the month
}

// Time is the clock portion of a Datetime.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// Offset is a UTC offset. Zero minutes with Z=true renders as "Z".
type Offset struct {
	Z       bool
	Minutes int // offset from UTC, may be negative
}

// Datetime is one of the four TOML date-time forms. At least one of Date
// and Time is set; Offset requires both.
type Datetime struct {
	Date   *Date
	Time   *Time
	Offset *Offset
}

// String renders the canonical RFC 3339-style text form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// String renders the clock as HH:MM:SS with any sub-second digits trimmed
// of trailing zeros.
func (t Time) String() string {
	s := fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Minute, t.Second)
	if t.Nanosecond != 0 {
		frac := strings.TrimRight(fmt.Sprintf("%09d", t.Nanosecond), "0")
		s += "." + frac
	}
	return s
}

// String renders "Z" or a signed "+HH:MM" offset.
func (o Offset) String() string {
	if o.Z {
		return "Z"
	}
	m := o.Minutes
	sign := "+"
	if m < 0 {
		sign = "-"
		m = -m
	}
	return fmt.Sprintf("%s%02d:%02d", sign, m/60, m%60)
}

// String returns the canonical text form of the datetime.
func (d Datetime) String() string {
	var sb strings.Builder
	if d.Date != nil {
		sb.WriteString(d.Date.String())
	}
	if d.Time != nil {
		if d.Date != nil {
			sb.WriteByte('T')
		}
		sb.WriteString(d.Time.String())
	}
	if d.Offset != nil {
		sb.WriteString(d.Offset.String())
	}
	return sb.String()
}

// Equal reports whether two datetimes have the same parts. Two instants
// that differ only in offset representation are not equal.
func (d Datetime) Equal(other Datetime) bool {
	return eqPart(d.Date, other.Date) &&
		eqPart(d.Time, other.Time) &&
		eqPart(d.Offset, other.Offset)
}

func eqPart[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// IsValid reports whether the parts form one of the four TOML date-time
// shapes with in-range fields.
func (d Datetime) IsValid() bool {
	if d.Date == nil && d.Time == nil {
		return false
	}
	if d.Offset != nil && (d.Date == nil || d.Time == nil) {
		return false
	}
	if d.Date != nil && !d.Date.valid() {
		return false
	}
	if d.Time != nil && !d.Time.valid() {
		return false
	}
	return true
}

func (d Date) valid() bool {
	if d.Month < 1 || d.Month > 12 {
		return false
	}
	return d.Day >= 1 && d.Day <= daysIn(d.Year, d.Month)
}

func (t Time) valid() bool {
	return t.Hour >= 0 && t.Hour < 24 &&
		t.Minute >= 0 && t.Minute < 60 &&
		t.Second >= 0 && t.Second < 60 &&
		t.Nanosecond >= 0 && t.Nanosecond < 1e9
}

func daysIn(year, month int) int {
	switch month {
	case 1, 3, 5, 7, 8, 10, 12:
		return 31
	case 4, 6, 9, 11:
		return 30
	}
	if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
		return 29
	}
	return 28
}

// ParseError describes a failed Parse.
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid datetime %q: %s", e.Input, e.Reason)
}

// Parse reads any of the four TOML date-time forms from their canonical
// text. The date and time parts may be separated by 'T', 't' or a space.
func Parse(s string) (Datetime, error) {
	var dt Datetime
	rest := s

	if len(rest) >= 10 && rest[4] == '-' {
		d, err := parseDate(rest[:10], s)
		if err != nil {
			return Datetime{}, err
		}
		dt.Date = &d
		rest = rest[10:]
		if rest == "" {
			return dt, nil
		}
		switch rest[0] {
		case 'T', 't', ' ':
			rest = rest[1:]
		default:
			return Datetime{}, &ParseError{s, "expected date-time separator"}
		}
	}

	t, offRest, err := parseTime(rest, s)
	if err != nil {
		return Datetime{}, err
	}
	dt.Time = &t

	if offRest != "" {
		if dt.Date == nil {
			return Datetime{}, &ParseError{s, "offset requires a full date-time"}
		}
		off, err := parseOffset(offRest, s)
		if err != nil {
			return Datetime{}, err
		}
		dt.Offset = &off
	}
	if !dt.IsValid() {
		return Datetime{}, &ParseError{s, "field out of range"}
	}
	return dt, nil
}

func parseDate(s, input string) (Date, error) {
	if len(s) != 10 || s[4] != '-' || s[7] != '-' {
		return Date{}, &ParseError{input, "malformed date"}
	}
	year, err1 := strconv.Atoi(s[:4])
	month, err2 := strconv.Atoi(s[5:7])
	day, err3 := strconv.Atoi(s[8:])
	if err1 != nil || err2 != nil || err3 != nil {
		return Date{}, &ParseError{input, "malformed date"}
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

// parseTime returns the clock and any unconsumed offset suffix.
func parseTime(s, input string) (Time, string, error) {
	if len(s) < 8 || s[2] != ':' || s[5] != ':' {
		return Time{}, "", &ParseError{input, "malformed time"}
	}
	hour, err1 := strconv.Atoi(s[:2])
	min, err2 := strconv.Atoi(s[3:5])
	sec, err3 := strconv.Atoi(s[6:8])
	if err1 != nil || err2 != nil || err3 != nil {
		return Time{}, "", &ParseError{input, "malformed time"}
	}
	t := Time{Hour: hour, Minute: min, Second: sec}
	rest := s[8:]
	if strings.HasPrefix(rest, ".") {
		i := 1
		for i < len(rest) && rest[i] >= '0' && rest[i] <= '9' {
			i++
		}
		frac := rest[1:i]
		if frac == "" {
			return Time{}, "", &ParseError{input, "empty fractional second"}
		}
		// Nanosecond precision; further digits are truncated.
		if len(frac) > 9 {
			frac = frac[:9]
		}
		n, err := strconv.Atoi(frac)
		if err != nil {
			return Time{}, "", &ParseError{input, "malformed fractional second"}
		}
		for i := len(frac); i < 9; i++ {
			n *= 10
		}
		t.Nanosecond = n
		rest = rest[i:]
	}
	return t, rest, nil
}

func parseOffset(s, input string) (Offset, error) {
	if s == "Z" || s == "z" {
		return Offset{Z: true}, nil
	}
	if len(s) != 6 || (s[0] != '+' && s[0] != '-') || s[3] != ':' {
		return Offset{}, &ParseError{input, "malformed offset"}
	}
	hours, err1 := strconv.Atoi(s[1:3])
	mins, err2 := strconv.Atoi(s[4:])
	if err1 != nil || err2 != nil || hours > 23 || mins > 59 {
		return Offset{}, &ParseError{input, "malformed offset"}
	}
	total := hours*60 + mins
	if s[0] == '-' {
		total = -total
	}
	return Offset{Minutes: total}, nil
}

// FromTime converts a time.Time into an offset date-time.
func FromTime(t time.Time) Datetime {
	_, offSec := t.Zone()
	var off Offset
	if offSec == 0 {
		off = Offset{Z: true}
	} else {
		off = Offset{Minutes: offSec / 60}
	}
	return Datetime{
		Date: &Date{Year: t.Year(), Month: int(t.Month()), Day: t.Day()},
		Time: &Time{
			Hour:       t.Hour(),
			Minute:     t.Minute(),
			Second:     t.Second(),
			Nanosecond: t.Nanosecond(),
		},
		Offset: &off,
	}
}

// AsTime converts to a time.Time. Local (offset-less) forms are interpreted
// in the supplied location; a date-only form gets a midnight clock and a
// time-only form the zero date.
func (d Datetime) AsTime(local *time.Location) time.Time {
	date := Date{Year: 1, Month: 1, Day: 1}
	if d.Date != nil {
		date = *d.Date
	}
	var clock Time
	if d.Time != nil {
		clock = *d.Time
	}
	loc := local
	if d.Offset != nil {
		if d.Offset.Z {
			loc = time.UTC
		} else {
			loc = time.FixedZone("", d.Offset.Minutes*60)
		}
	}
	return time.Date(date.Year, time.Month(date.Month), date.Day,
		clock.Hour, clock.Minute, clock.Second, clock.Nanosecond, loc)
}
