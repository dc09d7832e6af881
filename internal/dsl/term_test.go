package dsl

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func mustParse(t *testing.T, kind Kind, s string) Value {
	t.Helper()
	v, err := ParseValue(kind, s)
	require.NoError(t, err)
	return v
}

func TestTerm_Golden(t *testing.T) {
	cases := []struct {
		name  string
		query func(t *testing.T) Query
	}{
		{"term_string", func(*testing.T) Query {
			return TermString("f", "test value", NoBoost)
		}},
		{"term_bool_boost", func(*testing.T) Query {
			return TermBool("f", true, WithBoost(42))
		}},
		{"term_int32_min_boost", func(*testing.T) Query {
			return TermInt32("f", math.MinInt32, WithBoost(42))
		}},
		{"term_float32_infinity", func(*testing.T) Query {
			return TermFloat32("f", float32(math.Inf(1)), NoBoost)
		}},
		{"term_time_boost", func(t *testing.T) Query {
			return Term("f", mustParse(t, KindTime, "12:59:35.567 -1200"), WithBoost(42))
		}},
		{"term_timestamp", func(t *testing.T) Query {
			return Term("f", mustParse(t, KindTimestamp, "12-12-12 13:15:35 -0700"), NoBoost)
		}},
		{"term_date", func(*testing.T) Query {
			return TermDate("f", time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), NoBoost)
		}},
		{"term_timetz", func(t *testing.T) Query {
			return Term("f", mustParse(t, KindTimeTZ, "12:59:35.567 -1200"), NoBoost)
		}},
		{"term_timestamptz", func(t *testing.T) Query {
			return Term("f", mustParse(t, KindTimestampTZ, "12-12-12 13:15:35 -0700"), NoBoost)
		}},
		{"term_float64_boost", func(*testing.T) Query {
			return TermFloat64("f", 5.6, WithBoost(4.6))
		}},
		{"term_field_escaped", func(*testing.T) Query {
			return TermString(`a.b "c" <d>`, "x&y", NoBoost)
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGoldie(t)
			g.Assert(t, tc.name, tc.query(t))
		})
	}
}

func TestTerm_BoostKeyPresence(t *testing.T) {
	without := TermInt64("f", 7, NoBoost)
	assert.False(t, without.Get("term.f.boost").Exists())
	assert.NotContains(t, without.String(), "null")

	with := TermInt64("f", 7, WithBoost(0))
	require.True(t, with.Get("term.f.boost").Exists())
	assert.Equal(t, "0.0", with.Get("term.f.boost").Raw)
}

func TestTerm_Deterministic(t *testing.T) {
	ts := time.Date(2021, 6, 1, 10, 0, 0, 123000000, time.FixedZone("", 3600))
	a := TermTimestampTZ("created", ts, WithBoost(1.5))
	b := TermTimestampTZ("created", ts, WithBoost(1.5))
	assert.Equal(t, a.Bytes(), b.Bytes())
	assert.Equal(t, `{"term":{"created":{"value":"2021-06-01T09:00:00.123Z","boost":1.5}}}`, a.String())
}

func TestTerm_PerKindEntryPoints(t *testing.T) {
	at := time.Date(2019, 3, 4, 23, 30, 15, 0, time.FixedZone("", -2*3600))

	cases := []struct {
		name  string
		query Query
		want  string
	}{
		{"int16", TermInt16("f", -32768, NoBoost), `-32768`},
		{"int64", TermInt64("f", math.MaxInt64, NoBoost), `9223372036854775807`},
		{"float32", TermFloat32("f", 4.6, NoBoost), `4.6`},
		{"float32 integral", TermFloat32("f", 3, NoBoost), `3.0`},
		{"float64 negative infinity", TermFloat64("f", math.Inf(-1), NoBoost), `-Infinity`},
		{"float64 nan", TermFloat64("f", math.NaN(), NoBoost), `NaN`},
		{"float64 tiny", TermFloat64("f", 1e-7, NoBoost), `1e-7`},
		{"bool false", TermBool("f", false, NoBoost), `false`},
		{"date", TermDate("f", at, NoBoost), `"2019-03-04"`},
		{"time ignores zone", TermTime("f", at, NoBoost), `"23:30:15Z"`},
		{"timetz wraps midnight", TermTimeTZ("f", at, NoBoost), `"01:30:15Z"`},
		{"timestamp ignores zone", TermTimestamp("f", at, NoBoost), `"2019-03-04T23:30:15Z"`},
		{"timestamptz converts", TermTimestampTZ("f", at, NoBoost), `"2019-03-05T01:30:15Z"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, `{"term":{"f":{"value":`+tc.want+`}}}`, tc.query.String())
		})
	}
}

func TestQuery_Inspect(t *testing.T) {
	q := TermString("a.b", "x", WithBoost(3))
	assert.Equal(t, "a.b", q.Field())
	assert.Equal(t, `"x"`, q.Value())
	assert.Equal(t, "x", q.Get(`term.a\.b.value`).String())
	assert.InDelta(t, 3, q.Get(`term.a\.b.boost`).Float(), 0)
}

func TestQuery_Pretty(t *testing.T) {
	q := TermString("title", "go", WithBoost(2))
	out := string(q.Pretty())
	assert.Contains(t, out, "\n")
	assert.Contains(t, out, `"boost": 2.0`)
}

func TestTerm_FloatNotation(t *testing.T) {
	cases := []struct {
		name  string
		query Query
		want  string
	}{
		{"float64 largest plain", TermFloat64("f", 1e15, NoBoost), `1000000000000000.0`},
		{"float64 switches at 1e16", TermFloat64("f", 1e16, NoBoost), `1e16`},
		{"float64 no plus sign", TermFloat64("f", 1e21, NoBoost), `1e21`},
		{"float64 long mantissa", TermFloat64("f", 1.5e300, NoBoost), `1.5e300`},
		{"float64 negative exponent", TermFloat64("f", -2.5e-10, NoBoost), `-2.5e-10`},
		{"float64 smallest plain", TermFloat64("f", 1e-5, NoBoost), `0.00001`},
		{"float64 1e-6", TermFloat64("f", 1e-6, NoBoost), `1e-6`},
		{"float64 zero", TermFloat64("f", 0, NoBoost), `0.0`},
		{"float64 negative zero", TermFloat64("f", math.Copysign(0, -1), NoBoost), `-0.0`},
		{"float32 largest plain", TermFloat32("f", 1e12, NoBoost), `1000000000000.0`},
		{"float32 switches at 1e13", TermFloat32("f", 1e13, NoBoost), `1e13`},
		{"float32 1e14", TermFloat32("f", 1e14, NoBoost), `1e14`},
		{"float32 smallest plain", TermFloat32("f", 1e-6, NoBoost), `0.000001`},
		{"float32 1e-7", TermFloat32("f", 1e-7, NoBoost), `1e-7`},
		{"float32 max", TermFloat32("f", math.MaxFloat32, NoBoost), `3.4028235e38`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, `{"term":{"f":{"value":`+tc.want+`}}}`, tc.query.String())
		})
	}
}

func TestTerm_StringEscaping(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"quote and backslash", `say "hi" \o/`, `"say \"hi\" \\o/"`},
		{"short escapes", "a\nb\rc\td\be\ff", `"a\nb\rc\td\be\ff"`},
		{"other control characters", "\x00\x1f", `"\u0000\u001f"`},
		{"html is not escaped", "<a href='x'>&</a>", `"<a href='x'>&</a>"`},
		{"line separators pass through", "a\u2028b\u2029c", "\"a\u2028b\u2029c\""},
		{"invalid utf8 replaced", "ok\xffok", "\"ok\uFFFDok\""},
		{"multibyte", "café ☕", `"café ☕"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := TermString("f", tc.in, NoBoost)
			assert.Equal(t, `{"term":{"f":{"value":`+tc.want+`}}}`, q.String())
			assert.Equal(t, strings.ToValidUTF8(tc.in, "\uFFFD"), q.Get("term.f.value").String())
		})
	}
}
