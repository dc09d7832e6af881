package dsl

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"text", KindText},
		{"VARCHAR", KindText},
		{"boolean", KindBool},
		{"smallint", KindInt16},
		{"integer", KindInt32},
		{"bigint", KindInt64},
		{"real", KindFloat32},
		{"double  precision", KindFloat64},
		{"date", KindDate},
		{"time without time zone", KindTime},
		{"timetz", KindTimeTZ},
		{"timestamp", KindTimestamp},
		{"Timestamp With Time Zone", KindTimestampTZ},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseKind("geometry")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestKind_StringRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		require.NoError(t, err, k.String())
		assert.Equal(t, k, got)
	}
	assert.Equal(t, "kind(99)", Kind(99).String())
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		kind Kind
		in   string
		want string
	}{
		{KindText, " spaced ", `" spaced "`},
		{KindBool, "t", `true`},
		{KindBool, "off", `false`},
		{KindInt16, "123", `123`},
		{KindInt32, "-2147483648", `-2147483648`},
		{KindInt64, "9000000000", `9000000000`},
		{KindFloat32, "infinity", `Infinity`},
		{KindFloat32, "-Infinity", `-Infinity`},
		{KindFloat64, "nan", `NaN`},
		{KindFloat64, "42", `42.0`},
		{KindDate, "2020-01-01", `"2020-01-01"`},
		{KindDate, "99-12-31", `"1999-12-31"`},
		{KindTime, "08:15", `"08:15:00Z"`},
		{KindTime, "12:59:35.567 -1200", `"12:59:35.567Z"`},
		{KindTime, "12:59:35.5670Z", `"12:59:35.567Z"`},
		{KindTimeTZ, "01:00:00+02", `"23:00:00Z"`},
		{KindTimeTZ, "10:00:00 UTC", `"10:00:00Z"`},
		{KindTimestamp, "2012-12-12T13:15:35.000001+05:30", `"2012-12-12T13:15:35.000001Z"`},
		{KindTimestamp, "2012-12-12", `"2012-12-12T00:00:00Z"`},
		{KindTimestampTZ, "2012-12-12 23:15:35 -0700", `"2012-12-13T06:15:35Z"`},
		{KindTimestampTZ, "2012-12-12 13:15:35", `"2012-12-12T13:15:35Z"`},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.in, func(t *testing.T) {
			v, err := ParseValue(tt.kind, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.kind, v.Kind())
			assert.Equal(t, `{"term":{"f":{"value":`+tt.want+`}}}`, Term("f", v, NoBoost).String())
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	tests := []struct {
		kind Kind
		in   string
	}{
		{KindBool, "maybe"},
		{KindInt16, "40000"},
		{KindInt32, "1.5"},
		{KindInt64, ""},
		{KindFloat32, "1e999"},
		{KindDate, "2020-02-30"},
		{KindDate, "01/02/2020"},
		{KindTime, "24:00:00"},
		{KindTime, "12:00:00 +99"},
		{KindTimestamp, "2020-01-01 noon"},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.in, func(t *testing.T) {
			_, err := ParseValue(tt.kind, tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidLiteral))
		})
	}

	_, err := ParseValue(Kind(42), "x")
	assert.ErrorIs(t, err, ErrInvalidLiteral)
}

func TestParseValue_FloatPrecision(t *testing.T) {
	v, err := ParseValue(KindFloat32, "4.6")
	require.NoError(t, err)
	assert.Equal(t, Float32(4.6), v)

	v, err = ParseValue(KindFloat64, "-0")
	require.NoError(t, err)
	assert.True(t, math.Signbit(float64(v.(Float64))))
}
