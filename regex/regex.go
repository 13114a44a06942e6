package regex

// Supported syntax: literals, '.', \d, \w, \\, [...] and [^...], groups with
// '|', the postfix quantifiers '*', '+' and '?', the anchors '^' and '$', and
// backreferences \N. Quantifiers are greedy and matching backtracks.

import (
	"fmt"
	"strings"
	"unicode"
)

type Regex struct {
	pattern string
	root    Expr
	groups  int
	pf      *prefilter
}

// Submatch is one captured region. Offset is -1 for a group that did not
// take part in the match.
type Submatch struct {
	Offset int
	Str    string
}

func Compile(re string) (*Regex, error) {
	root, err := Parse(re)
	if err != nil {
		return nil, fmt.Errorf("failed to construct regex from %q: %w", re, err)
	}

	pf, err := newPrefilter(root)
	if err != nil {
		return nil, fmt.Errorf("failed to construct regex from %q: %w", re, err)
	}

	return &Regex{
		pattern: re,
		root:    root,
		groups:  countGroups(root),
		pf:      pf,
	}, nil
}

func MustCompile(re string) *Regex {
	r, err := Compile(re)
	if err != nil {
		panic(err)
	}
	return r
}

func countGroups(e Expr) int {
	n := 0
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case Sequence:
			for _, c := range e.Children {
				walk(c)
			}
		case Alternation:
			for _, b := range e.Branches {
				walk(b)
			}
		case Capture:
			n = max(n, e.Index)
			walk(e.Inner)
		case Repeat:
			walk(e.Inner)
		case Optional:
			walk(e.Inner)
		}
	}
	walk(e)
	return n
}

func (re *Regex) String() string {
	return re.pattern
}

// Expr returns the parsed expression tree.
func (re *Regex) Expr() Expr {
	return re.root
}

// NumGroups returns the number of capture groups in the pattern.
func (re *Regex) NumGroups() int {
	return re.groups
}

// FindAllSubmatches finds up to maxCount matches of the pattern in the given string
// To return all matches pass a maxCount of -1
func (re *Regex) FindAllSubmatches(s string, maxCount int) [][]Submatch {
	var all [][]Submatch
	for _, f := range re.findAll(s, maxCount) {
		all = append(all, f.submatches)
	}
	return all
}

// found is one match together with the offset just past it in the searched
// string.
type found struct {
	submatches []Submatch
	end        int
}

func (re *Regex) findAll(s string, maxCount int) []found {
	if !re.pf.accepts(s) {
		return nil
	}
	if re.pf != nil && re.pf.literal != nil {
		return re.findAllLiteral(s, maxCount)
	}

	var all []found
	m := newMatcher(s)
	prevEnd := -1
	for from := 0; from < len(m.in); {
		if maxCount != -1 && len(all) >= maxCount {
			break
		}

		whole, caps, ok := m.search(re.root, from)
		if !ok {
			break
		}
		if whole.end > whole.start {
			from = whole.end
		} else {
			from = m.next(whole.start)
		}

		match := m.submatch(whole)
		// an empty match right after the previous one is not a new match
		if match.Str == "" && match.Offset == prevEnd {
			continue
		}
		prevEnd = m.end(whole)

		submatches := make([]Submatch, 0, re.groups+1)
		submatches = append(submatches, match)
		for i := 1; i <= re.groups; i++ {
			sp, _ := caps.get(i)
			submatches = append(submatches, m.submatch(sp))
		}
		all = append(all, found{submatches: submatches, end: prevEnd})
	}
	return all
}

func (re *Regex) findAllLiteral(s string, maxCount int) []found {
	var all []found
	for at := 0; at < len(s); {
		if maxCount != -1 && len(all) >= maxCount {
			break
		}
		match, ok := re.pf.findLiteral(s, at)
		if !ok {
			break
		}
		at = match.Offset + len(match.Str)
		all = append(all, found{submatches: []Submatch{match}, end: at})
	}
	return all
}

func (re *Regex) FindSubmatch(s string) []Submatch {
	submatch := re.FindAllSubmatches(s, 1)
	if len(submatch) < 1 {
		return nil
	}
	return submatch[0]
}

// Find returns the text of the leftmost match.
func (re *Regex) Find(s string) (string, bool) {
	submatch := re.FindSubmatch(s)
	if submatch == nil {
		return "", false
	}
	return submatch[0].Str, true
}

func (re *Regex) Match(s string) bool {
	return len(re.FindSubmatch(s)) > 0
}

// Replace replaces the leftmost match in s with the template with, in which
// $N stands for the text of group N ($0 being the whole match).
func (re *Regex) Replace(s string, with string) string {
	all := re.findAll(s, 1)
	if len(all) == 0 {
		return s
	}
	submatches := all[0].submatches

	out := strings.Builder{}
	for i := 0; i < len(with); i++ {
		if with[i] == '$' && i+1 < len(with) && unicode.IsDigit(rune(with[i+1])) {
			num := 0
			for j := i + 1; j < len(with) && unicode.IsDigit(rune(with[j])); j++ {
				num *= 10
				num += int(with[j] - '0')
				i++
			}

			if num < len(submatches) {
				out.WriteString(submatches[num].Str)
			}
		} else {
			out.WriteByte(with[i])
		}
	}

	return s[:submatches[0].Offset] + out.String() + s[all[0].end:]
}
