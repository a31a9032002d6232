// Package calculator evaluates the four-operator arithmetic language accepted
// by the service and serves the calculation endpoints.
package calculator

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidExpression is returned for anything that cannot be evaluated to a
// finite number: empty input, syntax errors, division by zero, overflow.
var ErrInvalidExpression = errors.New("invalid mathematical expression")

// Sanitize drops every character outside 0-9 + - * / . ( ) and space.
// Disallowed characters are removed, not rejected: "2+abc*3" becomes "2+*3".
func Sanitize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if allowed(raw[i]) {
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

func allowed(c byte) bool {
	switch c {
	case '+', '-', '*', '/', '.', '(', ')', ' ':
		return true
	}
	return isDigit(c)
}

// Evaluate sanitizes raw and evaluates it with float64 arithmetic and the
// usual precedence. The result is always finite.
func Evaluate(raw string) (float64, error) {
	s := Sanitize(raw)
	if strings.TrimSpace(s) == "" {
		return 0, ErrInvalidExpression
	}

	tokens, err := tokenize(s)
	if err != nil {
		return 0, err
	}

	p := &parser{tokens: tokens}
	v, err := p.parse()
	if err != nil {
		return 0, err
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ErrInvalidExpression
	}
	return v, nil
}

// FormatResult renders v the way the service always has: the shortest digits
// that round-trip, plain notation for 1e-6 <= |v| < 1e21 and exponent notation
// ("1e+21", "1.5e-7") outside that range. Negative zero prints as "0".
func FormatResult(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	// 'e' pads the exponent to two digits ("1.5e-07"); strip the padding.
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + exp[:1] + digits
}
