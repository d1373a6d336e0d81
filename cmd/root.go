package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/josephlewis42/rush/core"
	"github.com/josephlewis42/rush/core/config"
	"github.com/spf13/cobra"
)

var (
	cfgPath  string
	command  string
	envFiles []string
	noRC     bool
)

func defaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, "rush")
}

func loadConfig() (*config.Configuration, error) {
	configuration, err := config.Load(cfgPath)

	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// environ is the process environment overlaid with any --env-file values.
func environ() ([]string, error) {
	env := os.Environ()
	if len(envFiles) == 0 {
		return env, nil
	}

	extra, err := godotenv.Read(envFiles...)
	if err != nil {
		return nil, err
	}
	var keys []string
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+extra[k])
	}
	return env, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rush [flags] [script [args...]]",
	Short: "A small interactive shell",
	Long: `rush reads command lines from a terminal, a script or -c and runs
them as pipelines of programs and builtins.`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		cfg, err := config.LoadOrDefault(cfgPath)
		if err != nil {
			return err
		}
		if noRC {
			cfg.Aliases = nil
			cfg.Variables = nil
		}

		env, err := environ()
		if err != nil {
			return err
		}

		opts := core.Options{
			Name:    filepath.Base(os.Args[0]),
			Environ: env,
			Config:  cfg,
			Stdin:   os.Stdin,
			Stdout:  cmd.OutOrStdout(),
			Stderr:  cmd.ErrOrStderr(),
		}

		scriptMode := cmd.Flags().Changed("command")
		switch {
		case scriptMode:
			if len(args) > 0 {
				opts.Name, opts.Args = args[0], args[1:]
			}

		case len(args) > 0:
			script, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer script.Close()
			opts.Name, opts.Args = args[0], args[1:]
			opts.Input = core.NewLineReader(script)

		default:
			opts.Interactive = core.IsTerminal(os.Stdin)
		}

		if opts.Interactive {
			// Keep the shell alive on ^C; children still get the default action.
			interrupts := make(chan os.Signal, 1)
			signal.Notify(interrupts, os.Interrupt)
			defer signal.Stop(interrupts)
		}

		sh, err := core.NewShell(opts)
		if err != nil {
			return fmt.Errorf("starting shell: %w", err)
		}

		var status int
		if scriptMode {
			status = sh.RunString(command)
		} else {
			status = sh.Run()
		}
		sh.Close()

		os.Exit(status)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", defaultConfigPath(), "config path")

	rootCmd.Flags().SetInterspersed(false)
	rootCmd.Flags().StringVarP(&command, "command", "c", "", "run the commands in the string then exit")
	rootCmd.Flags().StringSliceVar(&envFiles, "env-file", nil, "read extra variables from a dotenv file")
	rootCmd.Flags().BoolVar(&noRC, "no-rc", false, "skip the aliases and variables in the config")
}
