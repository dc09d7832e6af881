// Package dsl compiles typed values into canonical search query documents.
//
// Every builder is pure: the same inputs always yield byte-identical
// output, and no builder touches the catalog or the network.
package dsl

import "time"

// Boost is an optional relevance weight. The zero value means no boost.
type Boost struct {
	Value float32
	Valid bool
}

// NoBoost omits the boost key.
var NoBoost = Boost{}

// WithBoost returns a present boost.
func WithBoost(v float32) Boost {
	return Boost{Value: v, Valid: true}
}

// Term builds an exact-match predicate:
//
//	{"term":{"<field>":{"value":<literal>[,"boost":<boost>]}}}
//
// The field name is emitted verbatim (JSON-escaped). The boost key is
// present only when boost is valid.
func Term(field string, value Value, boost Boost) Query {
	buf := make([]byte, 0, 48+len(field))
	buf = append(buf, `{"term":{`...)
	buf = appendString(buf, field)
	buf = append(buf, `:{"value":`...)
	buf = value.appendLiteral(buf)
	if boost.Valid {
		buf = append(buf, `,"boost":`...)
		buf = appendFloat(buf, float64(boost.Value), 32)
	}
	buf = append(buf, "}}}"...)
	return Query(buf)
}

func TermString(field, value string, boost Boost) Query {
	return Term(field, Text(value), boost)
}

func TermBool(field string, value bool, boost Boost) Query {
	return Term(field, Bool(value), boost)
}

func TermInt16(field string, value int16, boost Boost) Query {
	return Term(field, Int16(value), boost)
}

func TermInt32(field string, value int32, boost Boost) Query {
	return Term(field, Int32(value), boost)
}

func TermInt64(field string, value int64, boost Boost) Query {
	return Term(field, Int64(value), boost)
}

func TermFloat32(field string, value float32, boost Boost) Query {
	return Term(field, Float32(value), boost)
}

func TermFloat64(field string, value float64, boost Boost) Query {
	return Term(field, Float64(value), boost)
}

func TermDate(field string, value time.Time, boost Boost) Query {
	return Term(field, DateOf(value), boost)
}

// TermTime uses the wall clock of value and ignores its location.
func TermTime(field string, value time.Time, boost Boost) Query {
	return Term(field, TimeOf(value), boost)
}

// TermTimeTZ normalizes the clock of value to UTC using its zone offset.
func TermTimeTZ(field string, value time.Time, boost Boost) Query {
	return Term(field, TimeTZOf(value), boost)
}

// TermTimestamp uses the wall clock of value and ignores its location.
func TermTimestamp(field string, value time.Time, boost Boost) Query {
	return Term(field, NewTimestamp(value), boost)
}

func TermTimestampTZ(field string, value time.Time, boost Boost) Query {
	return Term(field, NewTimestampTZ(value), boost)
}
