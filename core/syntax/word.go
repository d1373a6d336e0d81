package syntax

import (
	"strings"
)

// WordPart is one piece of a word.
type WordPart interface {
	wordPart()
}

// Lit is literal text with quotes and escapes already removed. Escaped
// literals came from backslash escapes outside quotes and are quoted text:
// they never start an assignment, a tilde or an alias.
type Lit struct {
	Value   string
	Escaped bool
}

// SglQuoted is text inside single quotes.
type SglQuoted struct {
	Value string
}

// DblQuoted is text inside double quotes. Its parts are *Lit and *Param.
type DblQuoted struct {
	Parts []WordPart
}

// Param is a parameter reference like $name, ${name} or $?.
type Param struct {
	Name string
}

func (*Lit) wordPart()       {}
func (*SglQuoted) wordPart() {}
func (*DblQuoted) wordPart() {}
func (*Param) wordPart()     {}

// Word is a shell word, expanded when the command runs.
type Word struct {
	Parts []WordPart
}

// NewLitWord creates a word holding a single literal.
func NewLitWord(value string) *Word {
	return &Word{Parts: []WordPart{&Lit{Value: value}}}
}

// Expander provides parameter values for expansion.
type Expander interface {
	// Param returns the value of a parameter, empty if it is unset.
	Param(name string) string
}

// Literal returns the text of a word made of one unquoted literal.
func (w *Word) Literal() (string, bool) {
	if w == nil || len(w.Parts) != 1 {
		return "", false
	}
	lit, ok := w.Parts[0].(*Lit)
	if !ok || lit.Escaped {
		return "", false
	}
	return lit.Value, true
}

// Expand resolves parameters and a leading tilde, returning the word's
// final text. Unset parameters expand to nothing.
func (w *Word) Expand(e Expander) string {
	var sb strings.Builder
	for i, part := range w.Parts {
		switch part := part.(type) {
		case *Lit:
			value := part.Value
			if i == 0 && !part.Escaped && (value == "~" || strings.HasPrefix(value, "~/")) {
				value = e.Param("HOME") + value[1:]
			}
			sb.WriteString(value)
		case *SglQuoted:
			sb.WriteString(part.Value)
		case *DblQuoted:
			for _, sub := range part.Parts {
				switch sub := sub.(type) {
				case *Lit:
					sb.WriteString(sub.Value)
				case *Param:
					sb.WriteString(e.Param(sub.Name))
				}
			}
		case *Param:
			sb.WriteString(e.Param(part.Name))
		}
	}
	return sb.String()
}

// Fields expands the word into the argument list it contributes. A word made
// only of unquoted parameters that expands to nothing contributes no
// argument at all.
func (w *Word) Fields(e Expander) []string {
	value := w.Expand(e)
	if value == "" && w.onlyParams() {
		return nil
	}
	return []string{value}
}

func (w *Word) onlyParams() bool {
	if len(w.Parts) == 0 {
		return false
	}
	for _, part := range w.Parts {
		if _, ok := part.(*Param); !ok {
			return false
		}
	}
	return true
}

// String prints the word in a form the lexer reads back as the same word.
func (w *Word) String() string {
	var sb strings.Builder
	for _, part := range w.Parts {
		switch part := part.(type) {
		case *Lit:
			if part.Escaped {
				for i := 0; i < len(part.Value); i++ {
					sb.WriteByte('\\')
					sb.WriteByte(part.Value[i])
				}
				continue
			}
			sb.WriteString(escapeLit(part.Value, unquotedSpecial))
		case *SglQuoted:
			sb.WriteString("'" + part.Value + "'")
		case *DblQuoted:
			sb.WriteByte('"')
			for _, sub := range part.Parts {
				switch sub := sub.(type) {
				case *Lit:
					sb.WriteString(escapeLit(sub.Value, dblQuotedSpecial))
				case *Param:
					sb.WriteString(sub.String())
				}
			}
			sb.WriteByte('"')
		case *Param:
			sb.WriteString(part.String())
		}
	}
	return sb.String()
}

func (p *Param) String() string {
	if isSpecialParam(p.Name) {
		return "$" + p.Name
	}
	return "${" + p.Name + "}"
}

const (
	unquotedSpecial  = " \t\n|&;<>()'\"\\$#`"
	dblQuotedSpecial = "\\\"$`"
)

func escapeLit(value, special string) string {
	if !strings.ContainsAny(value, special) {
		return value
	}
	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		if strings.IndexByte(special, value[i]) >= 0 {
			sb.WriteByte('\\')
		}
		sb.WriteByte(value[i])
	}
	return sb.String()
}

func isSpecialParam(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return strings.IndexByte("?$#@*", c) >= 0 || isDigit(c)
}

func isNameStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isNameChar(c byte) bool {
	return isNameStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// IsName reports whether s is a valid variable name.
func IsName(s string) bool {
	if s == "" || !isNameStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isNameChar(s[i]) {
			return false
		}
	}
	return true
}
