package dsl

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// appendString writes s as a JSON string. Only quotes, backslashes and
// control characters are escaped; invalid UTF-8 becomes U+FFFD.
func appendString(dst []byte, s string) []byte {
	const hex = "0123456789abcdef"
	dst = append(dst, '"')
	for _, r := range s {
		switch {
		case r == '"' || r == '\\':
			dst = append(dst, '\\', byte(r))
		case r == '\n':
			dst = append(dst, `\n`...)
		case r == '\r':
			dst = append(dst, `\r`...)
		case r == '\t':
			dst = append(dst, `\t`...)
		case r == '\b':
			dst = append(dst, `\b`...)
		case r == '\f':
			dst = append(dst, `\f`...)
		case r < 0x20:
			dst = append(dst, '\\', 'u', '0', '0', hex[r>>4], hex[r&0xf])
		default:
			dst = utf8.AppendRune(dst, r)
		}
	}
	return append(dst, '"')
}

func appendBool(dst []byte, b bool) []byte {
	return strconv.AppendBool(dst, b)
}

func appendInt(dst []byte, n int64) []byte {
	return strconv.AppendInt(dst, n, 10)
}

// appendFloat writes the shortest decimal form that round-trips at the given
// bit size. Integral values keep a ".0" suffix. Non-finite values are the
// bare tokens Infinity, -Infinity and NaN.
//
// Plain notation is used for decimal exponents in [-5, 15] at 64 bits and
// [-6, 12] at 32 bits; outside that range the exponent has no '+' and no
// leading zeros, so 1e16 stays 1e16 and 1e-7 stays 1e-7.
func appendFloat(dst []byte, f float64, bits int) []byte {
	switch {
	case math.IsNaN(f):
		return append(dst, "NaN"...)
	case math.IsInf(f, 1):
		return append(dst, "Infinity"...)
	case math.IsInf(f, -1):
		return append(dst, "-Infinity"...)
	}

	sci := strconv.AppendFloat(nil, f, 'e', -1, bits)
	mant, exp := splitExponent(sci)
	lo, hi := -5, 15
	if bits == 32 {
		lo, hi = -6, 12
	}
	if exp < lo || exp > hi {
		dst = append(dst, mant...)
		dst = append(dst, 'e')
		return strconv.AppendInt(dst, int64(exp), 10)
	}

	start := len(dst)
	dst = strconv.AppendFloat(dst, f, 'f', -1, bits)
	if !bytes.ContainsRune(dst[start:], '.') {
		dst = append(dst, ".0"...)
	}
	return dst
}

// splitExponent splits strconv's 'e' output, such as "1.5e+16", into its
// mantissa and decimal exponent.
func splitExponent(sci []byte) ([]byte, int) {
	i := bytes.IndexByte(sci, 'e')
	exp, err := strconv.Atoi(string(sci[i+1:]))
	if err != nil {
		panic("dsl: malformed float exponent " + string(sci))
	}
	return sci[:i], exp
}

// formatClock renders HH:MM:SS with a fractional part only when the
// nanoseconds are non-zero, trailing zeros trimmed.
func formatClock(hour, minute, second, nanos int) string {
	var b strings.Builder
	b.Grow(18)
	pad2(&b, hour)
	b.WriteByte(':')
	pad2(&b, minute)
	b.WriteByte(':')
	pad2(&b, second)
	if nanos > 0 {
		frac := strconv.Itoa(nanos + 1e9)[1:]
		b.WriteByte('.')
		b.WriteString(strings.TrimRight(frac, "0"))
	}
	return b.String()
}

func pad2(b *strings.Builder, n int) {
	if n < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(n))
}

func formatTimestamp(t time.Time) string {
	return DateOf(t).String() + "T" + formatClock(t.Hour(), t.Minute(), t.Second(), t.Nanosecond()) + "Z"
}
