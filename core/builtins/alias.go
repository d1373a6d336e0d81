package builtins

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/josephlewis42/rush/core/state"
	"github.com/josephlewis42/rush/core/syntax"
)

var aliasAssign = regexp.MustCompile(`(?s)^(\w+)=(.*)$`)

// Alias defines or prints aliases.
func Alias(env *Env, args []string) int {
	if len(args) == 1 {
		for _, name := range env.State.AliasNames() {
			printAlias(env.Stdout, env.State, name)
		}
		return 0
	}

	status := 0
	for _, arg := range args[1:] {
		if m := aliasAssign.FindStringSubmatch(arg); m != nil {
			DefineAlias(env.State, m[1], m[2])
			continue
		}

		if _, ok := env.State.LookupAlias(arg); !ok {
			env.Errorf("alias: %s: not found", arg)
			status = 1
			continue
		}
		printAlias(env.Stdout, env.State, arg)
	}
	return status
}

// DefineAlias parses text and binds it to name. Text that does not parse
// leaves the alias bound to nothing.
func DefineAlias(s *state.State, name, text string) {
	cmd, err := syntax.ParseAlias(name, text, s)
	if err != nil {
		cmd = nil
	}
	s.SetAlias(name, cmd)
}

// FormatAlias prints an alias definition the way the alias builtin lists it.
func FormatAlias(name string, cmd syntax.Command) string {
	text := ""
	if cmd != nil {
		text = cmd.String()
	}
	return fmt.Sprintf("alias %s='%s'", name, strings.ReplaceAll(text, "'", `\'`))
}

func printAlias(w io.Writer, s *state.State, name string) {
	cmd, _ := s.LookupAlias(name)
	fmt.Fprintln(w, FormatAlias(name, cmd))
}

// Unalias removes aliases.
func Unalias(env *Env, args []string) int {
	cmd := &command{
		Use:   "unalias [-a] name [name ...]",
		Short: "Remove each name from the list of defined aliases.",
	}
	all := cmd.Flags().Bool('a', "remove all alias definitions")

	return cmd.Run(env, args, func(names []string) int {
		if *all {
			env.State.ClearAliases()
			return 0
		}
		if len(names) == 0 {
			fmt.Fprintf(env.Stderr, "usage: %s\n", cmd.Use)
			return 2
		}

		status := 0
		for _, name := range names {
			if !env.State.Unalias(name) {
				env.Errorf("unalias: %s: not found", name)
				status = 1
			}
		}
		return status
	})
}

func init() {
	register("alias", "alias [name[=value] ...]", "Define or display aliases.", Alias)
	register("unalias", "unalias [-a] name [name ...]", "Remove each name from the list of defined aliases.", Unalias)
}
