package regex

import (
	"fmt"
	"strings"
)

// Expr is a node of a parsed pattern. Trees are never modified after parsing.
type Expr interface {
	fmt.Stringer
	expr()
}

// Empty matches the empty string.
type Empty struct{}

// Sequence matches its children one after another.
type Sequence struct {
	Children []Expr
}

// Literal matches exactly one occurrence of Char.
type Literal struct {
	Char byte
}

// Wildcard matches one character of the pattern alphabet.
type Wildcard struct{}

// Escape matches one character of the class named by Class ('d', 'w' or '\\').
type Escape struct {
	Class byte
}

// CharGroup matches one character that is (or with Negate, is not) in Chars.
type CharGroup struct {
	Negate bool
	// sorted, without duplicates
	Chars string
}

type BeginningOfLine struct{}

type EndOfLine struct{}

// Capture records what Inner matched in slot Index.
type Capture struct {
	Index int
	Inner Expr
}

// Repeat matches Inner zero or more times, greedily.
type Repeat struct {
	Inner Expr
}

// Optional matches Inner zero or one time.
type Optional struct {
	Inner Expr
}

// Alternation matches the first branch that succeeds.
type Alternation struct {
	Branches []Expr
}

// BackReference matches the text most recently captured by group Index.
type BackReference struct {
	Index int
}

func (Empty) expr()           {}
func (Sequence) expr()        {}
func (Literal) expr()         {}
func (Wildcard) expr()        {}
func (Escape) expr()          {}
func (CharGroup) expr()       {}
func (BeginningOfLine) expr() {}
func (EndOfLine) expr()       {}
func (Capture) expr()         {}
func (Repeat) expr()          {}
func (Optional) expr()        {}
func (Alternation) expr()     {}
func (BackReference) expr()   {}

func (Empty) String() string { return "empty" }

func (s Sequence) String() string {
	return "(seq" + joinExprs(s.Children) + ")"
}

func (l Literal) String() string { return fmt.Sprintf("%q", l.Char) }

func (Wildcard) String() string { return "any" }

func (e Escape) String() string { return `\` + string(e.Class) }

func (g CharGroup) String() string {
	if g.Negate {
		return fmt.Sprintf("[^%s]", g.Chars)
	}
	return fmt.Sprintf("[%s]", g.Chars)
}

func (BeginningOfLine) String() string { return "bol" }

func (EndOfLine) String() string { return "eol" }

func (c Capture) String() string {
	return fmt.Sprintf("(cap %d %s)", c.Index, c.Inner)
}

func (r Repeat) String() string { return fmt.Sprintf("(star %s)", r.Inner) }

func (o Optional) String() string { return fmt.Sprintf("(opt %s)", o.Inner) }

func (a Alternation) String() string {
	return "(alt" + joinExprs(a.Branches) + ")"
}

func (b BackReference) String() string { return fmt.Sprintf(`\%d`, b.Index) }

func joinExprs(exprs []Expr) string {
	var sb strings.Builder
	for _, e := range exprs {
		sb.WriteByte(' ')
		sb.WriteString(e.String())
	}
	return sb.String()
}
