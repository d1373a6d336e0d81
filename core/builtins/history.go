package builtins

import (
	"fmt"
)

// History displays or clears the lines read this session.
func History(env *Env, args []string) int {
	cmd := &command{
		Use:   "history [-c]",
		Short: "Display the history list with line numbers.",
	}
	clear := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(env, args, func(_ []string) int {
		if *clear {
			env.State.ClearHistory()
			return 0
		}

		for i, line := range env.State.History {
			fmt.Fprintf(env.Stdout, "% 5d  %s\n", i+1, line)
		}
		return 0
	})
}

func init() {
	register("history", "history [-c]", "Display or clear the history list.", History)
}
