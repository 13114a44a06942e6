package regex

import "fmt"

type tokenKind uint8

const (
	tokLiteral tokenKind = iota
	tokBackslash
	tokOpenParen
	tokCloseParen
	tokOpenBracket
	tokCloseBracket
	tokStar
	tokPlus
	tokQuestion
	tokPipe
	tokCaret
	tokDollar
	tokDot
)

// Token is one lexical unit of a pattern. Every token stems from exactly one
// pattern byte, so a token's index in the sequence is also its byte offset.
type Token struct {
	Kind tokenKind
	Char byte
}

func (t Token) String() string {
	if t.Kind == tokLiteral {
		return fmt.Sprintf("literal %q", t.Char)
	}
	return fmt.Sprintf("%q", t.Char)
}

var metaTokens = map[byte]tokenKind{
	'\\': tokBackslash,
	'(':  tokOpenParen,
	')':  tokCloseParen,
	'[':  tokOpenBracket,
	']':  tokCloseBracket,
	'*':  tokStar,
	'+':  tokPlus,
	'?':  tokQuestion,
	'|':  tokPipe,
	'^':  tokCaret,
	'$':  tokDollar,
	'.':  tokDot,
}

// LexError reports a pattern byte that is neither a metacharacter nor part of
// the pattern alphabet.
type LexError struct {
	Pos  int
	Char byte
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at %d: unrecognized character %q", e.Pos, e.Char)
}

// Tokenize classifies each byte of re independently.
func Tokenize(re string) ([]Token, error) {
	tokens := make([]Token, 0, len(re))
	for i := 0; i < len(re); i++ {
		c := re[i]
		if kind, ok := metaTokens[c]; ok {
			tokens = append(tokens, Token{Kind: kind, Char: c})
			continue
		}
		if !patternChars.contains(c) {
			return nil, &LexError{Pos: i, Char: c}
		}
		tokens = append(tokens, Token{Kind: tokLiteral, Char: c})
	}
	return tokens, nil
}
