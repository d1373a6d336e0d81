package syntax

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MaxFd is the highest descriptor number a redirection may name.
const MaxFd = 9

// ParseError is a grammar error, reported with the token it was found at.
type ParseError struct {
	Pos  int
	Near string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Msg != "" {
		return "syntax error: " + e.Msg
	}
	return fmt.Sprintf("syntax error near unexpected token `%s'", e.Near)
}

// AliasTable resolves alias names while parsing. A nil command with ok set
// is an alias bound to nothing.
type AliasTable interface {
	LookupAlias(name string) (cmd Command, ok bool)
}

// Parser builds command trees from the tokens of a Lexer.
type Parser struct {
	lx      *Lexer
	aliases AliasTable

	// expanding holds the aliases whose replacement text is being parsed.
	expanding map[string]bool

	tok    Token
	peeked bool
}

// NewParser creates a parser reading from lx. aliases may be nil to disable
// alias expansion.
func NewParser(lx *Lexer, aliases AliasTable) *Parser {
	return &Parser{lx: lx, aliases: aliases}
}

// Parse parses all of src as a single command.
func Parse(src string, aliases AliasTable) (Command, error) {
	return NewParser(NewLexer(src), aliases).ParseAll()
}

func (p *Parser) peek() (Token, error) {
	if !p.peeked {
		tok, err := p.lx.Next()
		if err != nil {
			return Token{}, err
		}
		p.tok = tok
		p.peeked = true
	}
	return p.tok, nil
}

func (p *Parser) next() (Token, error) {
	tok, err := p.peek()
	p.peeked = false
	return tok, err
}

func (p *Parser) skipNewlines() error {
	for {
		tok, err := p.peek()
		if err != nil {
			return err
		}
		if tok.Kind != Newline {
			return nil
		}
		p.next()
	}
}

func unexpected(tok Token) *ParseError {
	near := tok.Text
	switch tok.Kind {
	case EOF, Newline:
		near = "newline"
	case WordTok:
		near = tok.Word.String()
	}
	return &ParseError{Pos: tok.Pos, Near: near}
}

// ParseCommand parses the next command up to a ';', a newline or the end of
// input, consuming the terminator. It returns io.EOF once the input holds no
// more commands, and a nil command if alias expansion removed every word.
func (p *Parser) ParseCommand() (Command, error) {
	if err := p.skipNewlines(); err != nil {
		return nil, err
	}
	tok, err := p.peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == EOF {
		return nil, io.EOF
	}

	cmd, err := p.andOr()
	if err != nil {
		return nil, err
	}

	tok, err = p.peek()
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case Semi, Newline:
		p.next()
	case EOF:
	case Amp:
		return nil, &ParseError{Pos: tok.Pos, Near: tok.Text, Msg: "background execution is not supported"}
	default:
		return nil, unexpected(tok)
	}
	return cmd, nil
}

// ParseAll parses the remaining input as one command. Empty input gives a
// nil command.
func (p *Parser) ParseAll() (Command, error) {
	var items []*ListItem
	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		items = appendItem(items, SepSemi, cmd)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return collapse(items), nil
}

// appendItem adds cmd to a list, flattening a sequence an alias expanded to
// so its items join the surrounding list the way the text would.
func appendItem(items []*ListItem, op Separator, cmd Command) []*ListItem {
	if cmd == nil {
		return items
	}
	seq, ok := cmd.(*Sequence)
	if !ok {
		return append(items, &ListItem{Op: op, Cmd: cmd})
	}
	for i, item := range seq.Items {
		itemOp := item.Op
		if i == 0 {
			itemOp = op
		}
		items = append(items, &ListItem{Op: itemOp, Cmd: item.Cmd})
	}
	return items
}

func collapse(items []*ListItem) Command {
	if len(items) == 1 {
		return items[0].Cmd
	}
	items[0].Op = SepSemi
	return &Sequence{Items: items}
}

// andOr parses pipelines joined by && and ||. A nil command is returned when
// alias expansion left nothing to run.
func (p *Parser) andOr() (Command, error) {
	var items []*ListItem
	op := SepSemi
	for {
		cmd, err := p.pipeline()
		if err != nil {
			return nil, err
		}
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}
		if cmd == nil {
			if len(items) > 0 || tok.Kind == AndIf || tok.Kind == OrIf {
				return nil, unexpected(tok)
			}
			return nil, nil
		}
		items = appendItem(items, op, cmd)

		switch tok.Kind {
		case AndIf:
			op = SepAnd
		case OrIf:
			op = SepOr
		default:
			return collapse(items), nil
		}
		p.next()
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) pipeline() (Command, error) {
	var stages []*SimpleCommand
	for {
		start, err := p.peek()
		if err != nil {
			return nil, err
		}
		cmd, err := p.simple()
		if err != nil {
			return nil, err
		}
		next, err := p.peek()
		if err != nil {
			return nil, err
		}
		last := next.Kind != Pipe

		switch cmd := cmd.(type) {
		case nil:
			if len(stages) > 0 || !last {
				return nil, unexpected(next)
			}
			return nil, nil
		case *SimpleCommand:
			stages = append(stages, cmd)
		case *Pipeline:
			stages = append(stages, cmd.Stages...)
		case *Sequence:
			if len(stages) > 0 || !last {
				return nil, &ParseError{Pos: start.Pos, Msg: "alias expands to a list inside a pipeline"}
			}
			return cmd, nil
		}

		if last {
			break
		}
		p.next()
		if err := p.skipNewlines(); err != nil {
			return nil, err
		}
	}

	if len(stages) == 1 {
		return stages[0], nil
	}
	return &Pipeline{Stages: stages}, nil
}

func (p *Parser) simple() (Command, error) {
	cmd := &SimpleCommand{}
	for {
		tok, err := p.peek()
		if err != nil {
			return nil, err
		}

		switch {
		case tok.Kind == WordTok:
			p.next()
			if len(cmd.Args) == 0 {
				if assign := toAssign(tok.Word); assign != nil {
					cmd.Assigns = append(cmd.Assigns, assign)
					continue
				}
			}
			cmd.Args = append(cmd.Args, tok.Word)

		case tok.Kind == IONumber:
			p.next()
			n, err := strconv.Atoi(tok.Text)
			if err != nil || n > MaxFd {
				return nil, &ParseError{Pos: tok.Pos, Msg: fmt.Sprintf("%s: bad file descriptor", tok.Text)}
			}
			redir, err := p.redirect(n)
			if err != nil {
				return nil, err
			}
			cmd.Redirs = append(cmd.Redirs, redir)

		case tok.Kind.IsRedirect():
			redir, err := p.redirect(-1)
			if err != nil {
				return nil, err
			}
			cmd.Redirs = append(cmd.Redirs, redir)

		default:
			if cmd.Empty() {
				return nil, unexpected(tok)
			}
			return p.expandAlias(cmd)
		}
	}
}

var redirOps = map[TokenKind]RedirOp{
	Less:     RedirIn,
	Great:    RedirOut,
	DGreat:   RedirAppend,
	LessAnd:  DupIn,
	GreatAnd: DupOut,
}

// redirect parses an operator and its target. n is the descriptor number
// given before the operator, or -1.
func (p *Parser) redirect(n int) (*Redirect, error) {
	opTok, err := p.next()
	if err != nil {
		return nil, err
	}
	op, ok := redirOps[opTok.Kind]
	if !ok {
		return nil, unexpected(opTok)
	}
	if n < 0 {
		n = op.DefaultFd()
	}

	target, err := p.next()
	if err != nil {
		return nil, err
	}
	if target.Kind != WordTok {
		return nil, unexpected(target)
	}

	if op == DupIn || op == DupOut {
		lit, ok := target.Word.Literal()
		if m, err := strconv.Atoi(lit); !ok || !allDigits(lit) || err != nil || m > MaxFd {
			return nil, &ParseError{Pos: target.Pos, Msg: fmt.Sprintf("%s: bad file descriptor", target.Word)}
		}
	}

	return &Redirect{N: n, Op: op, Target: target.Word}, nil
}

// toAssign splits a NAME=value word, returning nil for other words.
func toAssign(w *Word) *Assign {
	if len(w.Parts) == 0 {
		return nil
	}
	lit, ok := w.Parts[0].(*Lit)
	if !ok || lit.Escaped {
		return nil
	}
	eq := strings.IndexByte(lit.Value, '=')
	if eq <= 0 || !IsName(lit.Value[:eq]) {
		return nil
	}

	var parts []WordPart
	if rest := lit.Value[eq+1:]; rest != "" {
		parts = append(parts, &Lit{Value: rest})
	}
	parts = append(parts, w.Parts[1:]...)
	return &Assign{Name: lit.Value[:eq], Value: &Word{Parts: parts}}
}
