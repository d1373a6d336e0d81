package builtins

import (
	"fmt"
	"strings"

	"github.com/josephlewis42/rush/core/syntax"
)

// Set replaces the positional parameters. Without arguments it lists the
// shell variables.
func Set(env *Env, args []string) int {
	if len(args) == 1 {
		for _, v := range env.State.Vars.Environ() {
			fmt.Fprintln(env.Stdout, v)
		}
		return 0
	}

	params := args[1:]
	if params[0] == "--" {
		params = params[1:]
	}
	env.State.Positional = append([]string(nil), params...)
	return 0
}

// Unset removes shell variables.
func Unset(env *Env, args []string) int {
	cmd := &command{
		Use:   "unset [-v] [name ...]",
		Short: "Unset values of shell variables.",
	}
	cmd.Flags().Bool('v', "treat each name as a shell variable")
	funcs := cmd.Flags().Bool('f', "treat each name as a shell function")

	return cmd.Run(env, args, func(names []string) int {
		if *funcs {
			env.Errorf("unset: -f: functions are not supported")
			return 1
		}

		status := 0
		for _, name := range names {
			if !syntax.IsName(name) {
				env.Errorf("unset: `%s': not a valid identifier", name)
				status = 1
				continue
			}
			env.State.Vars.Unset(name)
		}
		return status
	})
}

// Export sets variables. Every shell variable is already passed to child
// processes, so naming one without a value does nothing.
func Export(env *Env, args []string) int {
	status := 0
	for _, arg := range args[1:] {
		name, value, hasValue := strings.Cut(arg, "=")
		if !syntax.IsName(name) {
			env.Errorf("export: `%s': not a valid identifier", arg)
			status = 1
			continue
		}
		if hasValue {
			env.State.Vars.Set(name, value)
		}
	}
	return status
}

func init() {
	register("set", "set [--] [arg ...]", "Set the positional parameters, or list shell variables.", Set)
	register("unset", "unset [-v] [name ...]", "Unset values of shell variables.", Unset)
	register("export", "export [name[=value] ...]", "Set shell variables passed to commands.", Export)
}
