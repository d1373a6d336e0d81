package builtins

import (
	"strconv"
)

// Exit ends the session. Without an argument the status of the last command
// is used.
func Exit(env *Env, args []string) int {
	code := env.State.LastStatus

	switch len(args) {
	case 1:
	case 2:
		n, err := strconv.Atoi(args[1])
		if err != nil {
			env.Errorf("exit: %s: numeric argument required", args[1])
			return 2
		}
		code = n & 0xff
	default:
		env.Errorf("exit: too many arguments")
		return 1
	}

	env.Exit(code)
	return code
}

func init() {
	register("exit", "exit [n]", "Exit the shell with a status of n.", Exit)
}
