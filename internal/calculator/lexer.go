package calculator

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNumber
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokLParen
	tokRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokNumber:
		return "number"
	case tokPlus:
		return "'+'"
	case tokMinus:
		return "'-'"
	case tokStar:
		return "'*'"
	case tokSlash:
		return "'/'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	}
	return "unknown"
}

type token struct {
	kind  tokenKind
	pos   int
	value float64
}

// tokenize splits a sanitized expression into tokens. It expects input that
// already passed Sanitize, so any byte outside the whitelist is a bug in the
// caller and is reported as an invalid expression.
func tokenize(s string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == ' ':
			i++
		case isDigit(c) || c == '.':
			tok, next, err := scanNumber(s, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		case c == '+' || c == '-':
			// "++" and "--" are increment/decrement operators in the grammar
			// this service has always accepted, never two signs.
			if i+1 < len(s) && s[i+1] == c {
				return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidExpression, s[i:i+2], i)
			}
			kind := tokPlus
			if c == '-' {
				kind = tokMinus
			}
			tokens = append(tokens, token{kind: kind, pos: i})
			i++
		case c == '*':
			tokens = append(tokens, token{kind: tokStar, pos: i})
			i++
		case c == '/':
			tokens = append(tokens, token{kind: tokSlash, pos: i})
			i++
		case c == '(':
			tokens = append(tokens, token{kind: tokLParen, pos: i})
			i++
		case c == ')':
			tokens = append(tokens, token{kind: tokRParen, pos: i})
			i++
		default:
			return nil, fmt.Errorf("%w: unexpected character %q at offset %d", ErrInvalidExpression, c, i)
		}
	}
	return append(tokens, token{kind: tokEOF, pos: len(s)}), nil
}

// scanNumber reads DIGITS ['.' [DIGITS]] | '.' DIGITS starting at start.
func scanNumber(s string, start int) (token, int, error) {
	i := start
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intPart := s[start:i]
	if len(intPart) > 1 && intPart[0] == '0' {
		return token{}, 0, fmt.Errorf("%w: leading zero in %q at offset %d", ErrInvalidExpression, intPart, start)
	}

	if i < len(s) && s[i] == '.' {
		i++
		fracStart := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if intPart == "" && i == fracStart {
			return token{}, 0, fmt.Errorf("%w: lone '.' at offset %d", ErrInvalidExpression, start)
		}
	}

	text := s[start:i]
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		// ParseFloat only fails here on range; the literal is too large to be finite.
		return token{}, 0, fmt.Errorf("%w: number %q out of range", ErrInvalidExpression, text)
	}
	return token{kind: tokNumber, pos: start, value: v}, i, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
