package regex

import (
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
)

// prefilter rejects inputs that lack a literal every match must contain.
// Each factor is a set of alternatives of which at least one has to occur.
type prefilter struct {
	factors []*ahocorasick.Automaton
	// set when the whole pattern is one literal string
	literal *ahocorasick.Automaton
}

func newPrefilter(e Expr) (*prefilter, error) {
	seq, ok := e.(Sequence)
	if !ok {
		return nil, nil
	}

	sets := literalFactors(seq.Children)
	if len(sets) == 0 {
		return nil, nil
	}

	p := &prefilter{}
	for _, set := range sets {
		auto, err := buildAutomaton(set)
		if err != nil {
			return nil, err
		}
		p.factors = append(p.factors, auto)
	}
	if isPureLiteral(seq) {
		p.literal = p.factors[0]
	}
	return p, nil
}

func buildAutomaton(patterns []string) (*ahocorasick.Automaton, error) {
	builder := ahocorasick.NewBuilder()
	for _, pat := range patterns {
		builder.AddPattern([]byte(pat))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build literal automaton for %q: %w", patterns, err)
	}
	return auto, nil
}

// literalFactors returns, for the children of a top-level sequence, every
// maximal run of literals and every group whose branches are all literal.
func literalFactors(children []Expr) [][]string {
	var factors [][]string
	var run strings.Builder
	flush := func() {
		if run.Len() > 0 {
			factors = append(factors, []string{run.String()})
			run.Reset()
		}
	}

	for _, child := range children {
		switch c := child.(type) {
		case Literal:
			run.WriteByte(c.Char)
			continue
		case Capture:
			flush()
			if alts, ok := literalAlternatives(c.Inner); ok {
				factors = append(factors, alts)
			}
			continue
		}
		flush()
	}
	flush()
	return factors
}

func literalAlternatives(e Expr) ([]string, bool) {
	alt, ok := e.(Alternation)
	if !ok {
		return nil, false
	}

	var alts []string
	for _, branch := range alt.Branches {
		seq, ok := branch.(Sequence)
		if !ok || !isPureLiteral(seq) {
			return nil, false
		}
		var sb strings.Builder
		for _, c := range seq.Children {
			sb.WriteByte(c.(Literal).Char)
		}
		alts = append(alts, sb.String())
	}
	return alts, true
}

func isPureLiteral(seq Sequence) bool {
	if len(seq.Children) == 0 {
		return false
	}
	for _, c := range seq.Children {
		if _, ok := c.(Literal); !ok {
			return false
		}
	}
	return true
}

func (p *prefilter) accepts(s string) bool {
	if p == nil {
		return true
	}
	haystack := []byte(s)
	for _, f := range p.factors {
		if !f.IsMatch(haystack) {
			return false
		}
	}
	return true
}

// findLiteral is only valid when p.literal is set.
func (p *prefilter) findLiteral(s string, at int) (Submatch, bool) {
	if at >= len(s) {
		return Submatch{}, false
	}
	m := p.literal.Find([]byte(s), at)
	if m == nil {
		return Submatch{}, false
	}
	return Submatch{Offset: m.Start, Str: s[m.Start:m.End]}, true
}
