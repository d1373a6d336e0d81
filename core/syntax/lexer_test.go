package syntax

import (
	"testing"

	"github.com/anmitsu/go-shlex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lexAll(t *testing.T, src string) []Token {
	t.Helper()

	lx := NewLexer(src)
	var out []Token
	for {
		tok, err := lx.Next()
		require.NoError(t, err)
		if tok.Kind == EOF {
			return out
		}
		out = append(out, tok)
	}
}

func kinds(toks []Token) []TokenKind {
	var out []TokenKind
	for _, tok := range toks {
		out = append(out, tok.Kind)
	}
	return out
}

func TestLexer_operators(t *testing.T) {
	cases := map[string][]TokenKind{
		"a|b":        {WordTok, Pipe, WordTok},
		"a||b":       {WordTok, OrIf, WordTok},
		"a&&b":       {WordTok, AndIf, WordTok},
		"a&":         {WordTok, Amp},
		"a;b\nc":     {WordTok, Semi, WordTok, Newline, WordTok},
		"a<b>c>>d":   {WordTok, Less, WordTok, Great, WordTok, DGreat, WordTok},
		"a 2>&1 <&0": {WordTok, IONumber, GreatAnd, WordTok, LessAnd, WordTok},
		"a 2 >f":     {WordTok, WordTok, Great, WordTok},
		"a '|' \\;":  {WordTok, WordTok, WordTok},
		"a\"&&\"b":   {WordTok},
		"  \t ":      nil,
	}

	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			assert.Equal(t, expected, kinds(lexAll(t, src)))
		})
	}
}

func TestLexer_ioNumber(t *testing.T) {
	toks := lexAll(t, "cmd 12>out")

	require.Len(t, toks, 4)
	assert.Equal(t, IONumber, toks[1].Kind)
	assert.Equal(t, "12", toks[1].Text)
	assert.Equal(t, 4, toks[1].Pos)
	assert.Equal(t, 6, toks[2].Pos)
}

func TestLexer_comments(t *testing.T) {
	cases := map[string]int{
		"# only a comment":      0,
		"echo hi # trailing":    2,
		"echo a#b":              2,
		"echo '#' \\# x":        4,
		"echo a # one\necho b":  5,
		"echo hi #\n# another\n": 4,
	}

	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			assert.Len(t, lexAll(t, src), expected)
		})
	}
}

func TestLexer_wordParts(t *testing.T) {
	toks := lexAll(t, `pre'sq'"dq $x"$HOME${y}$?$`)
	require.Len(t, toks, 1)

	expected := &Word{Parts: []WordPart{
		&Lit{Value: "pre"},
		&SglQuoted{Value: "sq"},
		&DblQuoted{Parts: []WordPart{&Lit{Value: "dq "}, &Param{Name: "x"}}},
		&Param{Name: "HOME"},
		&Param{Name: "y"},
		&Param{Name: "?"},
		&Lit{Value: "$"},
	}}
	assert.Equal(t, expected, toks[0].Word)
}

func TestLexer_escapes(t *testing.T) {
	cases := map[string]*Word{
		`a\ b`:     {Parts: []WordPart{&Lit{Value: "a"}, &Lit{Value: " ", Escaped: true}, &Lit{Value: "b"}}},
		`\$x`:      {Parts: []WordPart{&Lit{Value: "$", Escaped: true}, &Lit{Value: "x"}}},
		`"\$x"`:    {Parts: []WordPart{&DblQuoted{Parts: []WordPart{&Lit{Value: "$x"}}}}},
		`"a\b"`:    {Parts: []WordPart{&DblQuoted{Parts: []WordPart{&Lit{Value: `a\b`}}}}},
		`'a\b'`:    {Parts: []WordPart{&SglQuoted{Value: `a\b`}}},
		`trail\`:   NewLitWord(`trail\`),
		`"\"q\""`:  {Parts: []WordPart{&DblQuoted{Parts: []WordPart{&Lit{Value: `"q"`}}}}},
		`a$`:       NewLitWord("a$"),
		`$-`:       NewLitWord("$-"),
		`x\|y\;z`:  {Parts: []WordPart{&Lit{Value: "x"}, &Lit{Value: "|", Escaped: true}, &Lit{Value: "y"}, &Lit{Value: ";", Escaped: true}, &Lit{Value: "z"}}},
		`\'\"\\`:   {Parts: []WordPart{&Lit{Value: `'"\`, Escaped: true}}},
		`\~`:       {Parts: []WordPart{&Lit{Value: "~", Escaped: true}}},
		`''`:       {Parts: []WordPart{&SglQuoted{}}},
		`"$1$#"`:   {Parts: []WordPart{&DblQuoted{Parts: []WordPart{&Param{Name: "1"}, &Param{Name: "#"}}}}},
		`${_a1}b`:  {Parts: []WordPart{&Param{Name: "_a1"}, &Lit{Value: "b"}}},
		`$12`:      {Parts: []WordPart{&Param{Name: "1"}, &Lit{Value: "2"}}},
		`"${@}"`:   {Parts: []WordPart{&DblQuoted{Parts: []WordPart{&Param{Name: "@"}}}}},
	}

	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			toks := lexAll(t, src)
			require.Len(t, toks, 1)
			assert.Equal(t, expected, toks[0].Word)
		})
	}
}

func TestLexer_errors(t *testing.T) {
	cases := map[string]string{
		`echo 'abc`:    "syntax error: unterminated single quote",
		`echo "abc`:    "syntax error: unterminated double quote",
		`echo "a'b`:    "syntax error: unterminated double quote",
		`echo ${abc`:   "syntax error: unterminated ${",
		`echo ${a-b}`:  "syntax error: ${a-b}: bad substitution",
		`echo ${}`:     "syntax error: ${}: bad substitution",
		`echo "${1x}"`: "syntax error: ${1x}: bad substitution",
	}

	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			lx := NewLexer(src)
			var err error
			for err == nil {
				var tok Token
				tok, err = lx.Next()
				if tok.Kind == EOF && err == nil {
					t.Fatal("expected an error")
				}
			}

			var lexErr *LexError
			assert.ErrorAs(t, err, &lexErr)
			assert.EqualError(t, err, expected)
		})
	}
}

// Words without parameters or operators split the same way a POSIX shlex
// does.
func TestLexer_matchesShlex(t *testing.T) {
	cases := []string{
		"a b   c",
		"'a b' c",
		`"a b" 'c d'`,
		`a\ b c`,
		`'a'"b"c`,
		`x 'it'"'"'s'`,
		`ls -l --color=auto /tmp`,
	}

	for _, src := range cases {
		t.Run(src, func(t *testing.T) {
			expected, err := shlex.Split(src, true)
			require.NoError(t, err)

			var actual []string
			for _, tok := range lexAll(t, src) {
				actual = append(actual, tok.Word.Expand(mapExpander{}))
			}
			assert.Equal(t, expected, actual)
		})
	}
}

func TestWord_Expand(t *testing.T) {
	env := mapExpander{"HOME": "/home/ada", "x": "1"}

	cases := map[string]string{
		`~`:      "/home/ada",
		`~/src`:  "/home/ada/src",
		`\~`:     "~",
		`\~/src`: "~/src",
		`"~"`:    "~",
		`~ada`:   "~ada",
		`a\ $x`:  "a 1",
		`\$x`:    "$x",
		`x=~`:    "x=~",
	}

	for src, expected := range cases {
		t.Run(src, func(t *testing.T) {
			toks := lexAll(t, src)
			require.Len(t, toks, 1)
			assert.Equal(t, expected, toks[0].Word.Expand(env))
		})
	}
}

type mapExpander map[string]string

func (m mapExpander) Param(name string) string {
	return m[name]
}
