package dsl

import (
	"fmt"
	"time"
)

// Value is one typed term value. The implementations in this package are
// the only ones.
type Value interface {
	Kind() Kind
	appendLiteral(dst []byte) []byte
}

type (
	Text    string
	Bool    bool
	Int16   int16
	Int32   int32
	Int64   int64
	Float32 float32
	Float64 float64
)

func (Text) Kind() Kind    { return KindText }
func (Bool) Kind() Kind    { return KindBool }
func (Int16) Kind() Kind   { return KindInt16 }
func (Int32) Kind() Kind   { return KindInt32 }
func (Int64) Kind() Kind   { return KindInt64 }
func (Float32) Kind() Kind { return KindFloat32 }
func (Float64) Kind() Kind { return KindFloat64 }

func (v Text) appendLiteral(dst []byte) []byte    { return appendString(dst, string(v)) }
func (v Bool) appendLiteral(dst []byte) []byte    { return appendBool(dst, bool(v)) }
func (v Int16) appendLiteral(dst []byte) []byte   { return appendInt(dst, int64(v)) }
func (v Int32) appendLiteral(dst []byte) []byte   { return appendInt(dst, int64(v)) }
func (v Int64) appendLiteral(dst []byte) []byte   { return appendInt(dst, int64(v)) }
func (v Float32) appendLiteral(dst []byte) []byte { return appendFloat(dst, float64(v), 32) }
func (v Float64) appendLiteral(dst []byte) []byte { return appendFloat(dst, float64(v), 64) }

// Date is a calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func (Date) Kind() Kind { return KindDate }

func (v Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", v.Year, int(v.Month), v.Day)
}

func (v Date) appendLiteral(dst []byte) []byte {
	return appendString(dst, v.String())
}

// Time is a time of day without a zone.
type Time struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// TimeOf returns the wall clock of t in t's location.
func TimeOf(t time.Time) Time {
	return Time{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(), Nanosecond: t.Nanosecond()}
}

func (Time) Kind() Kind { return KindTime }

func (v Time) appendLiteral(dst []byte) []byte {
	return appendString(dst, formatClock(v.Hour, v.Minute, v.Second, v.Nanosecond)+"Z")
}

func (v Time) secondsOfDay() int {
	return v.Hour*3600 + v.Minute*60 + v.Second
}

// TimeTZ is a time of day with a UTC offset in seconds east of UTC.
type TimeTZ struct {
	Time
	Offset int
}

// TimeTZOf returns the wall clock and zone offset of t.
func TimeTZOf(t time.Time) TimeTZ {
	_, offset := t.Zone()
	return TimeTZ{Time: TimeOf(t), Offset: offset}
}

func (TimeTZ) Kind() Kind { return KindTimeTZ }

// UTC converts the clock to UTC, wrapping around midnight.
func (v TimeTZ) UTC() Time {
	const day = 24 * 3600
	secs := ((v.secondsOfDay()-v.Offset)%day + day) % day
	return Time{Hour: secs / 3600, Minute: secs % 3600 / 60, Second: secs % 60, Nanosecond: v.Nanosecond}
}

func (v TimeTZ) appendLiteral(dst []byte) []byte {
	return v.UTC().appendLiteral(dst)
}

// Timestamp is a date and time of day without a zone. Only the wall clock
// of the wrapped time is used.
type Timestamp struct {
	wall time.Time
}

// NewTimestamp keeps the wall clock of t and drops its location.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{wall: time.Date(t.Year(), t.Month(), t.Day(),
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)}
}

func (Timestamp) Kind() Kind { return KindTimestamp }

// Time returns the wall clock as a UTC time.
func (v Timestamp) Time() time.Time { return v.wall }

func (v Timestamp) appendLiteral(dst []byte) []byte {
	return appendString(dst, formatTimestamp(v.wall))
}

// TimestampTZ is an absolute instant.
type TimestampTZ struct {
	instant time.Time
}

// NewTimestampTZ wraps the instant t.
func NewTimestampTZ(t time.Time) TimestampTZ {
	return TimestampTZ{instant: t.UTC()}
}

func (TimestampTZ) Kind() Kind { return KindTimestampTZ }

// Time returns the instant in UTC.
func (v TimestampTZ) Time() time.Time { return v.instant }

func (v TimestampTZ) appendLiteral(dst []byte) []byte {
	return appendString(dst, formatTimestamp(v.instant))
}
