package regex

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnterminatedGroup    = errors.New("missing closing ')'")
	ErrUnterminatedClass    = errors.New("missing closing ']'")
	ErrMissingOperand       = errors.New("quantifier without operand")
	ErrRepeatedQuantifier   = errors.New("quantifier applied to a quantified expression")
	ErrQuantifiedAnchor     = errors.New("quantifier applied to an anchor")
	ErrInvalidEscape        = errors.New("invalid escape sequence")
	ErrTrailingBackslash    = errors.New("trailing backslash")
	ErrUnexpectedToken      = errors.New("unexpected token")
	ErrInvalidBackReference = errors.New("invalid backreference")
)

// ParseError reports a structural problem in a pattern. Pos is the byte
// offset of the offending token.
type ParseError struct {
	Pos int
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parser error at %d: %v", e.Pos, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func newParseError(pos int, err error) *ParseError {
	return &ParseError{Pos: pos, Err: err}
}

// Parse tokenizes and parses re into an expression tree. The root is always a
// Sequence.
func Parse(re string) (Expr, error) {
	tokens, err := Tokenize(re)
	if err != nil {
		return nil, err
	}
	return parseTokens(tokens)
}

type parser struct {
	tokens []Token
	pos    int
	groups int
}

func parseTokens(tokens []Token) (Expr, error) {
	p := &parser{tokens: tokens}

	children := []Expr{}
	for !p.done() {
		e, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		children = append(children, e)
	}

	return Sequence{Children: children}, nil
}

func (p *parser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *parser) peek() Token {
	return p.tokens[p.pos]
}

func (p *parser) next() Token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func isQuantifier(k tokenKind) bool {
	return k == tokStar || k == tokPlus || k == tokQuestion
}

// operand followed by at most one of '*', '+', '?'
func (p *parser) parseQuantified() (Expr, error) {
	start := p.pos
	t := p.next()
	if isQuantifier(t.Kind) {
		return nil, newParseError(start, ErrMissingOperand)
	}

	e, err := p.parseBase(t, start)
	if err != nil {
		return nil, err
	}

	if p.done() || !isQuantifier(p.peek().Kind) {
		return e, nil
	}

	switch e.(type) {
	case BeginningOfLine, EndOfLine:
		return nil, newParseError(p.pos, ErrQuantifiedAnchor)
	}

	switch p.next().Kind {
	case tokStar:
		e = Repeat{Inner: e}
	case tokPlus:
		// one mandatory occurrence followed by zero or more
		e = Sequence{Children: []Expr{e, Repeat{Inner: e}}}
	case tokQuestion:
		e = Optional{Inner: e}
	}

	if !p.done() && isQuantifier(p.peek().Kind) {
		return nil, newParseError(p.pos, ErrRepeatedQuantifier)
	}
	return e, nil
}

func (p *parser) parseBase(t Token, start int) (Expr, error) {
	switch t.Kind {
	case tokLiteral:
		return Literal{Char: t.Char}, nil
	case tokCaret:
		return BeginningOfLine{}, nil
	case tokDollar:
		return EndOfLine{}, nil
	case tokDot:
		return Wildcard{}, nil
	case tokBackslash:
		return p.parseEscape(start)
	case tokOpenBracket:
		return p.parseCharGroup(start)
	case tokOpenParen:
		return p.parseGroup(start)
	}
	return nil, newParseError(start, fmt.Errorf("%w %v", ErrUnexpectedToken, t))
}

// \d, \w, \\, \<digits> and \<metacharacter>
func (p *parser) parseEscape(start int) (Expr, error) {
	if p.done() {
		return nil, newParseError(start, ErrTrailingBackslash)
	}

	t := p.next()
	switch {
	case t.Kind == tokLiteral && digitChars.contains(t.Char):
		num := []byte{t.Char}
		for !p.done() && p.peek().Kind == tokLiteral && digitChars.contains(p.peek().Char) {
			num = append(num, p.next().Char)
		}
		index, err := strconv.Atoi(string(num))
		if err != nil {
			return nil, newParseError(start, fmt.Errorf("%w: %w", ErrInvalidBackReference, err))
		}
		return BackReference{Index: index}, nil
	case t.Kind == tokLiteral && escapeChars.contains(t.Char):
		return Escape{Class: t.Char}, nil
	case t.Kind == tokBackslash:
		return Escape{Class: '\\'}, nil
	case t.Kind != tokLiteral:
		// escaped metacharacter
		return Literal{Char: t.Char}, nil
	}
	return nil, newParseError(start+1, fmt.Errorf("%w %q", ErrInvalidEscape, `\`+string(t.Char)))
}

// [...] and [^...]; metacharacters are plain members inside the brackets
func (p *parser) parseCharGroup(start int) (Expr, error) {
	negate := false
	if !p.done() && p.peek().Kind == tokCaret {
		negate = true
		p.pos++
	}

	var members charSet
	for {
		if p.done() {
			return nil, newParseError(start, ErrUnterminatedClass)
		}
		t := p.next()
		if t.Kind == tokCloseBracket {
			break
		}
		members[t.Char] = true
	}

	var chars strings.Builder
	for c := range members {
		if members[c] {
			chars.WriteByte(byte(c))
		}
	}
	return CharGroup{Negate: negate, Chars: chars.String()}, nil
}

// (...|...|...)
func (p *parser) parseGroup(start int) (Expr, error) {
	p.groups++
	index := p.groups

	var branches []Expr
	var current []Expr
	endBranch := func() {
		if len(current) == 0 {
			branches = append(branches, Empty{})
		} else {
			branches = append(branches, Sequence{Children: current})
		}
		current = nil
	}

	for {
		if p.done() {
			return nil, newParseError(start, ErrUnterminatedGroup)
		}

		switch p.peek().Kind {
		case tokCloseParen:
			p.pos++
			endBranch()
			return Capture{Index: index, Inner: Alternation{Branches: branches}}, nil
		case tokPipe:
			p.pos++
			endBranch()
			continue
		}

		e, err := p.parseQuantified()
		if err != nil {
			return nil, err
		}
		current = append(current, e)
	}
}
