// Package interp executes parsed command trees.
package interp

import (
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/rush/core/builtins"
	"github.com/josephlewis42/rush/core/logger"
	"github.com/josephlewis42/rush/core/state"
	"github.com/josephlewis42/rush/core/syntax"
	"github.com/spf13/afero"
)

// ExitError is returned when the exit builtin asked the session to end.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// FatalError aborts the rest of the current line.
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Runner executes commands against a session state.
type Runner struct {
	State *state.State

	// Fs is used to open redirected files and to search PATH. Defaults to the
	// OS filesystem.
	Fs afero.Fs

	// Stdin reads as empty if nil. Nil writers discard.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prefix is written before error messages, builtins.DefaultPrefix if
	// empty.
	Prefix string

	// Events receives a record of every command run. May be nil.
	Events *logger.SessionLogger
}

func (r *Runner) fs() afero.Fs {
	if r.Fs == nil {
		return afero.NewOsFs()
	}
	return r.Fs
}

func (r *Runner) stdin() io.Reader {
	if r.Stdin == nil {
		return strings.NewReader("")
	}
	return r.Stdin
}

func (r *Runner) prefix() string {
	if r.Prefix == "" {
		return builtins.DefaultPrefix
	}
	return r.Prefix
}

// errorf reports a failure of a single command on w.
func (r *Runner) errorf(w io.Writer, format string, a ...interface{}) {
	if w == nil {
		w = r.Stderr
	}
	if w == nil {
		return
	}
	fmt.Fprintf(w, "%s %s\n", r.prefix(), fmt.Sprintf(format, a...))
}

func (r *Runner) record(event logger.LogType) {
	_ = r.Events.Record(event)
}

// Run executes cmd and returns its exit status, which is also stored as $?.
// A nil command leaves the status alone.
//
// The error is non-nil only for an *ExitError or a *FatalError. Everything
// else that goes wrong while running a command is reported on stderr and
// turned into a status.
func (r *Runner) Run(cmd syntax.Command) (int, error) {
	var status int
	var err error

	switch cmd := cmd.(type) {
	case nil:
		return r.State.LastStatus, nil
	case *syntax.SimpleCommand:
		status, err = r.pipeline([]*syntax.SimpleCommand{cmd})
	case *syntax.Pipeline:
		status, err = r.pipeline(cmd.Stages)
	case *syntax.Sequence:
		status, err = r.sequence(cmd)
	default:
		return 1, &FatalError{Err: fmt.Errorf("unknown command type %T", cmd)}
	}

	r.State.LastStatus = status
	return status, err
}

func (r *Runner) sequence(seq *syntax.Sequence) (int, error) {
	status := r.State.LastStatus
	for i, item := range seq.Items {
		if i > 0 {
			switch item.Op {
			case syntax.SepAnd:
				if status != 0 {
					continue
				}
			case syntax.SepOr:
				if status == 0 {
					continue
				}
			}
		}

		var err error
		status, err = r.Run(item.Cmd)
		if err != nil {
			return status, err
		}
	}
	return status, nil
}

// overlay exposes assignments made earlier in the same command.
type overlay struct {
	base syntax.Expander
	vars map[string]string
}

func (o *overlay) Param(name string) string {
	if v, ok := o.vars[name]; ok {
		return v
	}
	return o.base.Param(name)
}

type assignment struct {
	name, value string
}

// evalAssign expands the assignments of a command. Later values can refer to
// earlier ones.
func (r *Runner) evalAssign(assigns []*syntax.Assign) []assignment {
	tmp := &overlay{base: r.State, vars: make(map[string]string)}

	var out []assignment
	for _, a := range assigns {
		value := a.Value.Expand(tmp)
		tmp.vars[a.Name] = value
		out = append(out, assignment{name: a.Name, value: value})
	}
	return out
}

func (r *Runner) evalArgs(words []*syntax.Word) []string {
	var args []string
	for _, w := range words {
		args = append(args, w.Fields(r.State)...)
	}
	return args
}
