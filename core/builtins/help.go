package builtins

import (
	"fmt"
	"text/tabwriter"
)

// Help lists the builtins, or describes the ones named.
func Help(env *Env, args []string) int {
	w := env.Stdout

	if len(args) > 1 {
		status := 0
		for _, name := range args[1:] {
			info, ok := all[name]
			if !ok {
				env.Errorf("help: no help topics match `%s'", name)
				status = 1
				continue
			}
			fmt.Fprintf(w, "%s: %s\n    %s\n", info.Name, info.Use, info.Short)
		}
		return status
	}

	fmt.Fprintln(w, "These shell commands are defined internally. Type `help' to see this list.")
	fmt.Fprintln(w, "Type `help name' to find out more about the function `name'.")
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	for _, info := range All() {
		fmt.Fprintf(tw, "%s\t%s\n", info.Use, info.Short)
	}
	tw.Flush()

	return 0
}

func init() {
	register("help", "help [name ...]", "Display information about builtin commands.", Help)
}
