package syntax

import (
	"strconv"
	"strings"
)

// Command is a node of the command tree: *SimpleCommand, *Pipeline or
// *Sequence.
//
// String prints the node back as a command line that parses to an
// equivalent tree.
type Command interface {
	String() string
	commandNode()
}

// Assign is a NAME=value word preceding a command.
type Assign struct {
	Name  string
	Value *Word
}

func (a *Assign) String() string {
	return a.Name + "=" + a.Value.String()
}

// RedirOp is a redirection operator.
type RedirOp int

const (
	RedirIn     RedirOp = iota // <
	RedirOut                   // >
	RedirAppend                // >>
	DupIn                      // <&
	DupOut                     // >&
)

var redirOpText = map[RedirOp]string{
	RedirIn:     "<",
	RedirOut:    ">",
	RedirAppend: ">>",
	DupIn:       "<&",
	DupOut:      ">&",
}

func (op RedirOp) String() string {
	return redirOpText[op]
}

// DefaultFd is the descriptor an operator applies to when no number is
// given.
func (op RedirOp) DefaultFd() int {
	if op == RedirIn || op == DupIn {
		return 0
	}
	return 1
}

// Redirect is a redirection like 2>>err.log. For DupIn and DupOut the target
// is the number of the descriptor being copied.
type Redirect struct {
	N      int
	Op     RedirOp
	Target *Word
}

func (r *Redirect) String() string {
	var sb strings.Builder
	if r.N != r.Op.DefaultFd() {
		sb.WriteString(strconv.Itoa(r.N))
	}
	sb.WriteString(r.Op.String())
	sb.WriteString(r.Target.String())
	return sb.String()
}

// SimpleCommand is a single program or builtin invocation.
type SimpleCommand struct {
	Assigns []*Assign
	Args    []*Word
	Redirs  []*Redirect
}

func (c *SimpleCommand) String() string {
	var fields []string
	for _, a := range c.Assigns {
		fields = append(fields, a.String())
	}
	for _, w := range c.Args {
		fields = append(fields, w.String())
	}
	for _, r := range c.Redirs {
		fields = append(fields, r.String())
	}
	return strings.Join(fields, " ")
}

// Name returns the literal command name, if there is one.
func (c *SimpleCommand) Name() (string, bool) {
	if len(c.Args) == 0 {
		return "", false
	}
	return c.Args[0].Literal()
}

// Empty reports whether the command has nothing to run, assign or redirect.
func (c *SimpleCommand) Empty() bool {
	return len(c.Assigns) == 0 && len(c.Args) == 0 && len(c.Redirs) == 0
}

// Pipeline is two or more simple commands connected stdout to stdin.
type Pipeline struct {
	Stages []*SimpleCommand
}

func (p *Pipeline) String() string {
	stages := make([]string, len(p.Stages))
	for i, stage := range p.Stages {
		stages[i] = stage.String()
	}
	return strings.Join(stages, " | ")
}

// Separator joins the items of a sequence.
type Separator int

const (
	SepSemi  Separator = iota // ;
	SepAnd                    // &&
	SepOr                     // ||
)

var separatorText = map[Separator]string{
	SepSemi: ";",
	SepAnd:  "&&",
	SepOr:   "||",
}

func (s Separator) String() string {
	return separatorText[s]
}

// ListItem is an element of a sequence. Op says how it joins the previous
// item and is ignored on the first one.
type ListItem struct {
	Op  Separator
	Cmd Command
}

// Sequence is a list of simple commands and pipelines run one after the other.
type Sequence struct {
	Items []*ListItem
}

func (s *Sequence) String() string {
	var sb strings.Builder
	for i, item := range s.Items {
		if i > 0 {
			sb.WriteString(" " + item.Op.String() + " ")
		}
		sb.WriteString(item.Cmd.String())
	}
	return sb.String()
}

func (*SimpleCommand) commandNode() {}
func (*Pipeline) commandNode()      {}
func (*Sequence) commandNode()      {}
