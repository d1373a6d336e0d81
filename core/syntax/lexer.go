package syntax

import (
	"fmt"
	"strings"
)

// LexError is an error in the input text itself, like an unterminated quote.
type LexError struct {
	Pos int
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.Msg)
}

// Lexer breaks input text into tokens. It reads the text exactly once, left
// to right, producing a token per call to Next.
type Lexer struct {
	src string
	pos int
}

// NewLexer creates a lexer over src.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r'
}

func isOperatorStart(c byte) bool {
	return strings.IndexByte("|&;<>\n", c) >= 0
}

// Next returns the next token, or a token of kind EOF once the input is
// drained.
func (l *Lexer) Next() (Token, error) {
	for {
		for l.pos < len(l.src) && isBlank(l.src[l.pos]) {
			l.pos++
		}
		if l.pos >= len(l.src) {
			return Token{Kind: EOF, Pos: l.pos}, nil
		}
		if l.src[l.pos] != '#' {
			break
		}
		// Comments run to the end of the line.
		if end := strings.IndexByte(l.src[l.pos:], '\n'); end >= 0 {
			l.pos += end
		} else {
			l.pos = len(l.src)
		}
	}

	start := l.pos
	for _, op := range operators {
		if strings.HasPrefix(l.src[l.pos:], op.text) {
			l.pos += len(op.text)
			return Token{Kind: op.kind, Text: op.text, Pos: start}, nil
		}
	}

	word, err := l.word()
	if err != nil {
		return Token{}, err
	}

	if lit, ok := word.Literal(); ok && allDigits(lit) && l.pos < len(l.src) {
		if c := l.src[l.pos]; c == '<' || c == '>' {
			return Token{Kind: IONumber, Text: lit, Pos: start}, nil
		}
	}

	return Token{Kind: WordTok, Word: word, Pos: start}, nil
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func (l *Lexer) word() (*Word, error) {
	word := &Word{}
	var lit strings.Builder
	flush := func(parts *[]WordPart) {
		if lit.Len() > 0 {
			*parts = append(*parts, &Lit{Value: lit.String()})
			lit.Reset()
		}
	}

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case isBlank(c) || isOperatorStart(c):
			flush(&word.Parts)
			return word, nil

		case c == '\\':
			l.pos++
			if l.pos >= len(l.src) {
				lit.WriteByte('\\')
				continue
			}
			flush(&word.Parts)
			word.Parts = appendEscaped(word.Parts, l.src[l.pos])
			l.pos++

		case c == '\'':
			end := strings.IndexByte(l.src[l.pos+1:], '\'')
			if end < 0 {
				return nil, &LexError{Pos: l.pos, Msg: "unterminated single quote"}
			}
			flush(&word.Parts)
			word.Parts = append(word.Parts, &SglQuoted{Value: l.src[l.pos+1 : l.pos+1+end]})
			l.pos += end + 2

		case c == '"':
			flush(&word.Parts)
			dq, err := l.dblQuoted()
			if err != nil {
				return nil, err
			}
			word.Parts = append(word.Parts, dq)

		case c == '$':
			param, err := l.param()
			if err != nil {
				return nil, err
			}
			if param == nil {
				lit.WriteByte('$')
				l.pos++
				continue
			}
			flush(&word.Parts)
			word.Parts = append(word.Parts, param)

		default:
			lit.WriteByte(c)
			l.pos++
		}
	}

	flush(&word.Parts)
	return word, nil
}

// appendEscaped adds c to the escaped literal ending parts, starting one if
// needed.
func appendEscaped(parts []WordPart, c byte) []WordPart {
	if n := len(parts); n > 0 {
		if lit, ok := parts[n-1].(*Lit); ok && lit.Escaped {
			lit.Value += string(c)
			return parts
		}
	}
	return append(parts, &Lit{Value: string(c), Escaped: true})
}

func (l *Lexer) dblQuoted() (*DblQuoted, error) {
	start := l.pos
	l.pos++

	dq := &DblQuoted{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			dq.Parts = append(dq.Parts, &Lit{Value: lit.String()})
			lit.Reset()
		}
	}

	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch c {
		case '"':
			flush()
			l.pos++
			return dq, nil

		case '\\':
			if l.pos+1 < len(l.src) && strings.IndexByte(dblQuotedSpecial, l.src[l.pos+1]) >= 0 {
				lit.WriteByte(l.src[l.pos+1])
				l.pos += 2
				continue
			}
			lit.WriteByte(c)
			l.pos++

		case '$':
			param, err := l.param()
			if err != nil {
				return nil, err
			}
			if param == nil {
				lit.WriteByte('$')
				l.pos++
				continue
			}
			flush()
			dq.Parts = append(dq.Parts, param)

		default:
			lit.WriteByte(c)
			l.pos++
		}
	}

	return nil, &LexError{Pos: start, Msg: "unterminated double quote"}
}

// param reads a parameter reference at a '$'. It returns nil without
// consuming anything if the '$' is literal.
func (l *Lexer) param() (*Param, error) {
	start := l.pos
	next := l.pos + 1
	if next >= len(l.src) {
		return nil, nil
	}

	c := l.src[next]
	switch {
	case c == '{':
		end := strings.IndexByte(l.src[next:], '}')
		if end < 0 {
			return nil, &LexError{Pos: start, Msg: "unterminated ${"}
		}
		name := l.src[next+1 : next+end]
		if !IsName(name) && !isSpecialParam(name) {
			return nil, &LexError{Pos: start, Msg: fmt.Sprintf("${%s}: bad substitution", name)}
		}
		l.pos = next + end + 1
		return &Param{Name: name}, nil

	case isSpecialParam(string(c)):
		l.pos = next + 1
		return &Param{Name: string(c)}, nil

	case isNameStart(c):
		end := next
		for end < len(l.src) && isNameChar(l.src[end]) {
			end++
		}
		l.pos = end
		return &Param{Name: l.src[next:end]}, nil
	}

	return nil, nil
}
