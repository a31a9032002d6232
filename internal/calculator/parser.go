package calculator

import (
	"fmt"
	"math"
)

// maxDepth bounds parenthesis and unary-operator nesting.
const maxDepth = 256

// parser is a recursive-descent evaluator over the token stream:
//
//	expr    := term (('+' | '-') term)*
//	term    := unary (('*' | '/') unary)*
//	unary   := ('-' | '+') unary | primary
//	primary := NUMBER | '(' expr ')'
//
// Values are computed while parsing; there is no intermediate tree.
type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) parse() (float64, error) {
	v, err := p.expr()
	if err != nil {
		return 0, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return 0, unexpected(tok)
	}
	return v, nil
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokPlus && op.kind != tokMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op.kind == tokPlus {
			left += right
		} else {
			left -= right
		}
		if err := checkFinite(left, op); err != nil {
			return 0, err
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek()
		if op.kind != tokStar && op.kind != tokSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op.kind == tokStar {
			left *= right
		} else {
			if right == 0 {
				return 0, fmt.Errorf("%w: division by zero at offset %d", ErrInvalidExpression, op.pos)
			}
			left /= right
		}
		if err := checkFinite(left, op); err != nil {
			return 0, err
		}
	}
}

func (p *parser) unary() (float64, error) {
	tok := p.peek()
	if tok.kind != tokMinus && tok.kind != tokPlus {
		return p.primary()
	}
	if err := p.enter(); err != nil {
		return 0, err
	}
	defer p.leave()

	p.next()
	v, err := p.unary()
	if err != nil {
		return 0, err
	}
	if tok.kind == tokMinus {
		return -v, nil
	}
	return v, nil
}

func (p *parser) primary() (float64, error) {
	tok := p.next()
	switch tok.kind {
	case tokNumber:
		return tok.value, nil
	case tokLParen:
		if err := p.enter(); err != nil {
			return 0, err
		}
		defer p.leave()

		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.kind != tokRParen {
			return 0, fmt.Errorf("%w: expected ')' at offset %d, found %s", ErrInvalidExpression, closing.pos, closing.kind)
		}
		return v, nil
	default:
		return 0, unexpected(tok)
	}
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fmt.Errorf("%w: nesting deeper than %d", ErrInvalidExpression, maxDepth)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func unexpected(tok token) error {
	return fmt.Errorf("%w: unexpected %s at offset %d", ErrInvalidExpression, tok.kind, tok.pos)
}

func checkFinite(v float64, op token) error {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Errorf("%w: %s at offset %d produced a non-finite value", ErrInvalidExpression, op.kind, op.pos)
	}
	return nil
}
