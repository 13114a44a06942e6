package regex

import (
	"strings"
	"unicode/utf8"
)

// span marks the region of the wrapped input a node consumed.
type span struct {
	start int
	end   int
	ok    bool
}

// captures holds one slot per group number. It is never written in place, so
// a state can be kept as a backtracking point by copying it.
type captures []span

func (c captures) with(index int, s span) captures {
	next := make(captures, max(len(c), index+1))
	copy(next, c)
	next[index] = s
	return next
}

func (c captures) get(index int) (span, bool) {
	if index >= len(c) || !c[index].ok {
		return span{}, false
	}
	return c[index], true
}

type state struct {
	pos  int
	caps captures
}

// matcher walks an expression tree over the input wrapped in a leading and a
// trailing newline. Anchors match by consuming those newlines.
type matcher struct {
	in string
}

func newMatcher(input string) *matcher {
	return &matcher{in: "\n" + strings.TrimSuffix(input, "\n") + "\n"}
}

// text is what a span contributes to a match. Newlines are only consumed by
// anchors, which contribute nothing.
func (m *matcher) text(s span) string {
	return strings.ReplaceAll(m.in[s.start:s.end], "\n", "")
}

// submatch translates s to offsets of the unwrapped input.
func (m *matcher) submatch(s span) Submatch {
	if !s.ok {
		return Submatch{Offset: -1}
	}
	start := s.start
	for start < s.end && m.in[start] == '\n' {
		start++
	}
	offset := min(max(start-1, 0), len(m.in)-2)
	return Submatch{Offset: offset, Str: m.text(s)}
}

// end is the offset in the unwrapped input just past s. It differs from
// Offset+len(Str) when an anchor consumed an interior newline.
func (m *matcher) end(s span) int {
	return min(max(s.end-1, 0), len(m.in)-2)
}

// next is the offset of the character after the one at pos.
func (m *matcher) next(pos int) int {
	_, width := utf8.DecodeRuneInString(m.in[pos:])
	return pos + max(width, 1)
}

// search tries every start offset from `from` onwards, or only the start of
// input for patterns that begin with '^'.
func (m *matcher) search(e Expr, from int) (span, captures, bool) {
	anchored := startsWithBeginningOfLine(e)
	for off := from; off < len(m.in); off = m.next(off) {
		if anchored && off > 0 {
			break
		}
		end, ok := m.eval(e, state{pos: off})
		if ok {
			return span{start: off, end: end.pos, ok: true}, end.caps, true
		}
	}
	return span{}, nil, false
}

func startsWithBeginningOfLine(e Expr) bool {
	if seq, ok := e.(Sequence); ok {
		if len(seq.Children) == 0 {
			return false
		}
		e = seq.Children[0]
	}
	_, ok := e.(BeginningOfLine)
	return ok
}

func (m *matcher) eval(e Expr, st state) (state, bool) {
	switch e := e.(type) {
	case Empty:
		return st, true
	case Sequence:
		return m.evalSequence(e.Children, st)
	case Repeat:
		return m.evalSequence([]Expr{e}, st)
	case Literal:
		return m.step(st, func(r rune) bool { return r == rune(e.Char) })
	case Wildcard:
		return m.step(st, func(r rune) bool { return r < utf8.RuneSelf && patternChars.contains(byte(r)) })
	case Escape:
		return m.step(st, func(r rune) bool { return r < utf8.RuneSelf && matchesEscape(e.Class, byte(r)) })
	case CharGroup:
		return m.step(st, func(r rune) bool {
			member := r < utf8.RuneSelf && strings.IndexByte(e.Chars, byte(r)) >= 0
			if e.Negate {
				return !member && r != '\n'
			}
			return member
		})
	case BeginningOfLine, EndOfLine:
		return m.step(st, func(r rune) bool { return r == '\n' })
	case Capture:
		end, ok := m.eval(e.Inner, st)
		if !ok {
			return st, false
		}
		end.caps = end.caps.with(e.Index, span{start: st.pos, end: end.pos, ok: true})
		return end, true
	case Optional:
		if end, ok := m.eval(e.Inner, st); ok {
			return end, true
		}
		return st, true
	case Alternation:
		// the first branch that matches is final
		for _, branch := range e.Branches {
			if end, ok := m.eval(branch, st); ok {
				return end, true
			}
		}
		return st, false
	case BackReference:
		captured, ok := st.caps.get(e.Index)
		if !ok {
			return st, false
		}
		text := m.text(captured)
		if !strings.HasPrefix(m.in[st.pos:], text) {
			return st, false
		}
		st.pos += len(text)
		return st, true
	default:
		panic("unexpected expression type")
	}
}

// step consumes one input character if it satisfies accept. Bytes that are
// not valid UTF-8 are consumed one at a time as utf8.RuneError.
func (m *matcher) step(st state, accept func(rune) bool) (state, bool) {
	if st.pos >= len(m.in) {
		return st, false
	}
	r, width := utf8.DecodeRuneInString(m.in[st.pos:])
	if !accept(r) {
		return st, false
	}
	st.pos += width
	return st, true
}

func (m *matcher) evalSequence(children []Expr, st state) (state, bool) {
	for i, child := range children {
		if r, ok := child.(Repeat); ok {
			return m.evalRepeat(r, children[i+1:], st)
		}

		end, ok := m.eval(child, st)
		if !ok {
			return st, false
		}
		st = end
	}
	return st, true
}

// evalRepeat matches r.Inner as often as possible, then retries the rest of
// the sequence from the longest repetition down to zero repetitions.
func (m *matcher) evalRepeat(r Repeat, rest []Expr, st state) (state, bool) {
	stack := []state{st}
	cur := st
	for {
		end, ok := m.eval(r.Inner, cur)
		if !ok || end.pos == cur.pos {
			break
		}
		stack = append(stack, end)
		cur = end
	}

	for i := len(stack) - 1; i >= 0; i-- {
		if end, ok := m.evalSequence(rest, stack[i]); ok {
			return end, true
		}
	}
	return st, false
}

// Evaluate searches input for the leftmost match of e and returns the
// matched text.
func Evaluate(e Expr, input string) (string, bool) {
	m := newMatcher(input)
	whole, _, ok := m.search(e, 0)
	if !ok {
		return "", false
	}
	return m.text(whole), true
}
