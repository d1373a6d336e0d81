// Package builtins implements the commands the shell runs in-process.
package builtins

import (
	"fmt"
	"io"
	"sort"

	"github.com/josephlewis42/rush/core/state"
	getopt "github.com/pborman/getopt/v2"
)

// DefaultPrefix starts every error message a builtin prints.
const DefaultPrefix = "rush:"

// Builtin is a command run inside the shell process. Main returns the exit
// status.
type Builtin interface {
	Main(env *Env, args []string) int
}

// BuiltinFunc adapts a function to a Builtin.
type BuiltinFunc func(env *Env, args []string) int

func (f BuiltinFunc) Main(env *Env, args []string) int {
	return f(env, args)
}

var _ Builtin = (BuiltinFunc)(nil)

// Info describes a registered builtin.
type Info struct {
	Name  string
	Use   string
	Short string

	Builtin Builtin
}

var all = make(map[string]Info)

func register(name, use, short string, f BuiltinFunc) {
	all[name] = Info{Name: name, Use: use, Short: short, Builtin: f}
}

// Lookup finds a builtin by name.
func Lookup(name string) (Builtin, bool) {
	info, ok := all[name]
	return info.Builtin, ok
}

// All lists every builtin sorted by name.
func All() []Info {
	var out []Info
	for _, info := range all {
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}

// Env is what a builtin gets to work with: the session state and the
// streams its descriptors resolved to.
type Env struct {
	State  *state.State
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Prefix is written before error messages, DefaultPrefix if empty.
	Prefix string

	exitCode  int
	exitAsked bool
}

// Exit asks the session to end with code once the builtin returns.
func (e *Env) Exit(code int) {
	e.exitCode = code
	e.exitAsked = true
}

// ExitRequested returns the code passed to Exit, if it was called.
func (e *Env) ExitRequested() (int, bool) {
	return e.exitCode, e.exitAsked
}

// Errorf writes an error message to stderr.
func (e *Env) Errorf(format string, a ...interface{}) {
	prefix := e.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	fmt.Fprintf(e.Stderr, "%s %s\n", prefix, fmt.Sprintf(format, a...))
}

// command wraps flag parsing for builtins that take options.
type command struct {
	// Use holds a one line usage string.
	Use string
	// Short holds a one line description of the command.
	Short string

	flags *getopt.Set
}

func (c *command) Flags() *getopt.Set {
	if c.flags == nil {
		c.flags = getopt.New()
	}
	return c.flags
}

// PrintHelp writes help for the command to the given writer.
func (c *command) PrintHelp(w io.Writer) {
	fmt.Fprintf(w, "usage: %s\n", c.Use)
	fmt.Fprintln(w, c.Short)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	c.Flags().PrintOptions(w)
}

// Run parses args and, if that worked, calls callback with the operands.
// Bad flags are a usage error with status 2.
func (c *command) Run(env *Env, args []string, callback func(operands []string) int) int {
	opts := c.Flags()
	showHelp := opts.BoolLong("help", 'h', "show this help and exit")
	opts.SetProgram(args[0])

	if err := opts.Getopt(args, nil); err != nil {
		env.Errorf("%s: %v", args[0], err)
		fmt.Fprintf(env.Stderr, "usage: %s\n", c.Use)
		return 2
	}

	if *showHelp {
		c.PrintHelp(env.Stdout)
		return 0
	}

	return callback(opts.Args())
}
