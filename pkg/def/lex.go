package def

import "strings"

// token is one lexical unit of a DEF file. Offsets are byte positions in the
// source.
type token struct {
	text   string
	off    int
	quoted bool
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }

// isPunct reports characters that always form a token of their own.
func isPunct(c byte) bool { return c == '(' || c == ')' || c == ';' }

// lex splits src into whitespace separated words. Parentheses and semicolons
// are split off even when they touch a word, quoted strings keep their
// spaces, and '#' at the start of a word begins a comment.
func lex(src []byte) ([]token, error) {
	var toks []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case isSpace(c):
			i++
		case c == '#':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case isPunct(c):
			toks = append(toks, token{text: string(c), off: i})
			i++
		case c == '"':
			s, n, err := lexQuoted(src, i)
			if err != nil {
				return nil, err
			}
			toks = append(toks, token{text: s, off: i, quoted: true})
			i = n
		default:
			start := i
			for i < len(src) && !isSpace(src[i]) && !isPunct(src[i]) {
				i++
			}
			toks = append(toks, token{text: string(src[start:i]), off: start})
		}
	}
	return toks, nil
}

// lexQuoted reads the string starting at the quote at src[start] and returns
// its unescaped value and the offset just past the closing quote.
func lexQuoted(src []byte, start int) (string, int, error) {
	var b strings.Builder
	for i := start + 1; i < len(src); i++ {
		switch c := src[i]; c {
		case '"':
			return b.String(), i + 1, nil
		case '\\':
			if i+1 >= len(src) {
				break
			}
			i++
			switch src[i] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte(src[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return "", 0, &SyntaxError{Offset: start, Msg: "unterminated string"}
}
