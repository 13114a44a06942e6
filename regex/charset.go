package regex

// charSet is a membership table over single bytes.
type charSet [256]bool

func newCharSet(ranges ...charRange) *charSet {
	var cs charSet
	for _, r := range ranges {
		for c := int(r.from); c <= int(r.to); c++ {
			cs[c] = true
		}
	}
	return &cs
}

func (cs *charSet) contains(c byte) bool {
	return cs[c]
}

type charRange struct {
	from byte
	to   byte
}

var (
	digitChars = newCharSet(charRange{'0', '9'})

	wordChars = newCharSet(
		charRange{'a', 'z'},
		charRange{'A', 'Z'},
		charRange{'0', '9'},
		charRange{'_', '_'},
	)

	// printable ASCII, used by '.' and by the tokenizer for bare literals
	patternChars = newCharSet(charRange{0x20, 0x7e})

	// letters that may follow '\' to name a class
	escapeChars = newCharSet(
		charRange{'d', 'd'},
		charRange{'w', 'w'},
		charRange{'\\', '\\'},
	)
)

// matchesEscape reports whether c belongs to the class named by an escape letter.
func matchesEscape(class, c byte) bool {
	switch class {
	case 'd':
		return digitChars.contains(c)
	case 'w':
		return wordChars.contains(c)
	case '\\':
		return c == '\\'
	}
	return false
}
