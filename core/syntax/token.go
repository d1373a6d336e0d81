package syntax

import "fmt"

// TokenKind classifies a token.
type TokenKind int

const (
	EOF TokenKind = iota
	WordTok
	IONumber
	Pipe     // |
	OrIf     // ||
	Amp      // &
	AndIf    // &&
	Semi     // ;
	Newline  // \n
	Less     // <
	Great    // >
	DGreat   // >>
	LessAnd  // <&
	GreatAnd // >&
)

var tokenNames = map[TokenKind]string{
	EOF:      "end of input",
	WordTok:  "word",
	IONumber: "io number",
	Pipe:     "|",
	OrIf:     "||",
	Amp:      "&",
	AndIf:    "&&",
	Semi:     ";",
	Newline:  "newline",
	Less:     "<",
	Great:    ">",
	DGreat:   ">>",
	LessAnd:  "<&",
	GreatAnd: ">&",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsRedirect reports whether the token is a redirection operator.
func (k TokenKind) IsRedirect() bool {
	switch k {
	case Less, Great, DGreat, LessAnd, GreatAnd:
		return true
	}
	return false
}

// operators is ordered longest first so matching is greedy.
var operators = []struct {
	text string
	kind TokenKind
}{
	{"||", OrIf},
	{"&&", AndIf},
	{">>", DGreat},
	{"<&", LessAnd},
	{">&", GreatAnd},
	{"|", Pipe},
	{"&", Amp},
	{";", Semi},
	{"\n", Newline},
	{"<", Less},
	{">", Great},
}

// Token is a lexical unit. Word tokens carry the parsed word, every other
// token carries its source text.
type Token struct {
	Kind TokenKind
	Word *Word
	Text string
	// Pos is the byte offset of the token in the source.
	Pos int
}

func (t Token) String() string {
	switch t.Kind {
	case WordTok:
		return t.Word.String()
	case EOF:
		return "EOF"
	case Newline:
		return "newline"
	}
	return t.Text
}
