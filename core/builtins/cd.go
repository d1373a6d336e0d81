package builtins

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/josephlewis42/rush/core/state"
)

// Cd changes the working directory of the shell, and so of every command it
// starts afterwards.
func Cd(env *Env, args []string) int {
	vars := env.State.Vars

	var (
		dir      string
		printDir bool
	)
	switch len(args) {
	case 1:
		dir = env.State.Home()
		if dir == "" {
			env.Errorf("cd: HOME not set")
			return 1
		}
	case 2:
		dir = args[1]
		if dir == "-" {
			old, ok := vars.Lookup(state.EnvOldPWD)
			if !ok || old == "" {
				env.Errorf("cd: OLDPWD not set")
				return 1
			}
			dir = old
			printDir = true
		}
	default:
		env.Errorf("cd: too many arguments")
		return 1
	}

	previous, err := os.Getwd()
	if err != nil {
		previous = vars.Get(state.EnvPWD)
	}

	if err := os.Chdir(dir); err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		env.Errorf("cd: %s: %v", dir, err)
		return 1
	}

	vars.Set(state.EnvOldPWD, previous)
	if wd, err := os.Getwd(); err == nil {
		vars.Set(state.EnvPWD, wd)
	}
	if printDir {
		fmt.Fprintln(env.Stdout, dir)
	}
	return 0
}

func init() {
	register("cd", "cd [dir | -]", "Change the shell working directory.", Cd)
}
