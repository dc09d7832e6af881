package dsl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidLiteral is returned when text cannot be parsed as the requested
// kind.
var ErrInvalidLiteral = errors.New("invalid literal")

var (
	dateRE  = regexp.MustCompile(`^(\d{2}|\d{4})-(\d{1,2})-(\d{1,2})$`)
	clockRE = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2})(?:\.(\d{1,9}))?)?$`)
	zoneRE  = regexp.MustCompile(`^([+-])(\d{1,2})(?::?(\d{2}))?$`)
)

// ParseValue parses the textual form of a value of the given kind.
//
// Zone-less kinds (time, timestamp) accept a trailing UTC offset and
// discard it. Zone-aware kinds (timetz, timestamptz) apply it; when it is
// absent the value is taken as UTC.
func ParseValue(kind Kind, s string) (Value, error) {
	v, err := parseValue(kind, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrInvalidLiteral, kind, s, err)
	}
	return v, nil
}

func parseValue(kind Kind, s string) (Value, error) {
	if kind != KindText {
		s = strings.TrimSpace(s)
	}
	switch kind {
	case KindText:
		return Text(s), nil
	case KindBool:
		b, err := parseBool(s)
		return Bool(b), err
	case KindInt16:
		n, err := strconv.ParseInt(s, 10, 16)
		return Int16(n), unwrapNum(err)
	case KindInt32:
		n, err := strconv.ParseInt(s, 10, 32)
		return Int32(n), unwrapNum(err)
	case KindInt64:
		n, err := strconv.ParseInt(s, 10, 64)
		return Int64(n), unwrapNum(err)
	case KindFloat32:
		f, err := strconv.ParseFloat(s, 32)
		return Float32(f), unwrapNum(err)
	case KindFloat64:
		f, err := strconv.ParseFloat(s, 64)
		return Float64(f), unwrapNum(err)
	case KindDate:
		return parseDate(s)
	case KindTime:
		t, _, err := parseClockZone(s)
		return t, err
	case KindTimeTZ:
		t, offset, err := parseClockZone(s)
		return TimeTZ{Time: t, Offset: offset}, err
	case KindTimestamp:
		d, t, _, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		return NewTimestamp(wall(d, t, 0)), nil
	case KindTimestampTZ:
		d, t, offset, err := parseTimestamp(s)
		if err != nil {
			return nil, err
		}
		return NewTimestampTZ(wall(d, t, offset)), nil
	default:
		return nil, ErrUnknownKind
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "t", "true", "y", "yes", "on", "1":
		return true, nil
	case "f", "false", "n", "no", "off", "0":
		return false, nil
	}
	return false, errors.New("not a boolean")
}

func unwrapNum(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}

func parseDate(s string) (Date, error) {
	m := dateRE.FindStringSubmatch(s)
	if m == nil {
		return Date{}, errors.New("expected YYYY-MM-DD")
	}
	year, _ := strconv.Atoi(m[1])
	if len(m[1]) == 2 {
		// Two digit years pivot at 70 like the relational default.
		if year < 70 {
			year += 2000
		} else {
			year += 1900
		}
	}
	month, _ := strconv.Atoi(m[2])
	day, _ := strconv.Atoi(m[3])
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return Date{}, errors.New("date out of range")
	}
	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// parseClockZone parses "HH:MM[:SS[.frac]]" with an optional trailing zone,
// returning the clock and the offset in seconds east of UTC.
func parseClockZone(s string) (Time, int, error) {
	clock, zone := splitZone(s)
	t, err := parseClock(clock)
	if err != nil {
		return Time{}, 0, err
	}
	offset, err := parseZone(zone)
	return t, offset, err
}

func splitZone(s string) (clock, zone string) {
	if i := strings.IndexAny(s, "+-"); i > 0 {
		return strings.TrimSpace(s[:i]), s[i:]
	}
	if strings.HasSuffix(s, "Z") {
		return strings.TrimSpace(strings.TrimSuffix(s, "Z")), "Z"
	}
	if clock, ok := strings.CutSuffix(s, "UTC"); ok {
		return strings.TrimSpace(clock), "Z"
	}
	return s, ""
}

func parseClock(s string) (Time, error) {
	m := clockRE.FindStringSubmatch(s)
	if m == nil {
		return Time{}, errors.New("expected HH:MM:SS")
	}
	var t Time
	t.Hour, _ = strconv.Atoi(m[1])
	t.Minute, _ = strconv.Atoi(m[2])
	if m[3] != "" {
		t.Second, _ = strconv.Atoi(m[3])
	}
	if m[4] != "" {
		frac := m[4] + strings.Repeat("0", 9-len(m[4]))
		t.Nanosecond, _ = strconv.Atoi(frac)
	}
	if t.Hour > 23 || t.Minute > 59 || t.Second > 59 {
		return Time{}, errors.New("time out of range")
	}
	return t, nil
}

func parseZone(s string) (int, error) {
	if s == "" || s == "Z" {
		return 0, nil
	}
	m := zoneRE.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("bad zone %q", s)
	}
	hours, _ := strconv.Atoi(m[2])
	var minutes int
	if m[3] != "" {
		minutes, _ = strconv.Atoi(m[3])
	}
	if hours > 15 || minutes > 59 {
		return 0, fmt.Errorf("zone out of range %q", s)
	}
	offset := hours*3600 + minutes*60
	if m[1] == "-" {
		offset = -offset
	}
	return offset, nil
}

func parseTimestamp(s string) (Date, Time, int, error) {
	i := strings.IndexAny(s, " T")
	if i < 0 {
		d, err := parseDate(s)
		return d, Time{}, 0, err
	}
	d, err := parseDate(s[:i])
	if err != nil {
		return Date{}, Time{}, 0, err
	}
	t, offset, err := parseClockZone(strings.TrimSpace(s[i+1:]))
	return d, t, offset, err
}

// wall builds the instant for a local wall clock at the given offset.
func wall(d Date, t Time, offset int) time.Time {
	return time.Date(d.Year, d.Month, d.Day, t.Hour, t.Minute, t.Second, t.Nanosecond,
		time.FixedZone("", offset))
}
