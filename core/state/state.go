// Package state holds everything a shell session remembers between commands.
package state

import (
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/josephlewis42/rush/core/syntax"
)

const (
	EnvHome   = "HOME"
	EnvPWD    = "PWD"
	EnvOldPWD = "OLDPWD"
	EnvPath   = "PATH"
	EnvPrompt = "PS1"
	EnvUser   = "USER"
)

// State is the shared state of one shell session. It is owned by the session
// and only touched from the goroutine running commands.
type State struct {
	// Vars are the shell variables, seeded from the process environment.
	Vars *Vars

	// Name is $0.
	Name string
	// Positional holds $1 onwards.
	Positional []string
	// LastStatus is the exit status of the most recent command, $?.
	LastStatus int
	// Interactive is set when commands are typed by a user.
	Interactive bool
	// Pid is reported as $$.
	Pid int

	// History lists the lines read in this session, oldest first.
	History []string
	// OnClearHistory, if set, is called after the history is cleared.
	OnClearHistory func()

	aliases map[string]syntax.Command
}

var _ syntax.Expander = (*State)(nil)
var _ syntax.AliasTable = (*State)(nil)

// New creates a session state with variables taken from environ.
func New(name string, environ []string) *State {
	return &State{
		Vars:    NewVarsFromList(environ),
		Name:    name,
		Pid:     os.Getpid(),
		aliases: make(map[string]syntax.Command),
	}
}

// Param returns the value of a variable or special parameter.
func (s *State) Param(name string) string {
	switch name {
	case "?":
		return strconv.Itoa(s.LastStatus)
	case "$":
		return strconv.Itoa(s.Pid)
	case "#":
		return strconv.Itoa(len(s.Positional))
	case "@", "*":
		return strings.Join(s.Positional, " ")
	case "0":
		return s.Name
	}

	if len(name) == 1 && name[0] >= '1' && name[0] <= '9' {
		if n := int(name[0] - '0'); n <= len(s.Positional) {
			return s.Positional[n-1]
		}
		return ""
	}

	return s.Vars.Get(name)
}

// Home returns the user's home directory.
func (s *State) Home() string {
	return s.Vars.Get(EnvHome)
}

// LookupAlias returns the replacement for an alias. A bound alias may have a
// nil replacement.
func (s *State) LookupAlias(name string) (syntax.Command, bool) {
	cmd, ok := s.aliases[name]
	return cmd, ok
}

// SetAlias binds name to cmd, which may be nil.
func (s *State) SetAlias(name string, cmd syntax.Command) {
	if s.aliases == nil {
		s.aliases = make(map[string]syntax.Command)
	}
	s.aliases[name] = cmd
}

// Unalias removes an alias, reporting whether it existed.
func (s *State) Unalias(name string) bool {
	_, ok := s.aliases[name]
	delete(s.aliases, name)
	return ok
}

// ClearAliases removes every alias.
func (s *State) ClearAliases() {
	s.aliases = make(map[string]syntax.Command)
}

// AliasNames returns the bound alias names in sorted order.
func (s *State) AliasNames() []string {
	names := make([]string, 0, len(s.aliases))
	for name := range s.aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AddHistory records an input line, dropping the oldest entries once more
// than limit are stored. A limit of zero keeps everything.
func (s *State) AddHistory(line string, limit int) {
	s.History = append(s.History, line)
	if limit > 0 && len(s.History) > limit {
		s.History = append([]string(nil), s.History[len(s.History)-limit:]...)
	}
}

// ClearHistory forgets all input lines.
func (s *State) ClearHistory() {
	s.History = nil
	if s.OnClearHistory != nil {
		s.OnClearHistory()
	}
}
