package core

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/josephlewis42/rush/core/builtins"
	"github.com/josephlewis42/rush/core/config"
	"github.com/josephlewis42/rush/core/interp"
	"github.com/josephlewis42/rush/core/logger"
	"github.com/josephlewis42/rush/core/state"
	"github.com/josephlewis42/rush/core/syntax"
)

// Options configure a shell session.
type Options struct {
	// Name is $0.
	Name string
	// Args are the positional parameters.
	Args []string
	// Environ seeds the shell variables.
	Environ []string

	// Config defaults to the built-in configuration.
	Config *config.Configuration

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Input is where commands are read from. Interactive sessions on a
	// terminal get line editing, others read Stdin line by line.
	Input LineReader
	// Interactive sessions keep history and may use color.
	Interactive bool

	// Events records the session. If nil, the configured event log is used.
	Events *logger.Logger
}

// Shell is one session: it reads lines, parses them and runs them.
type Shell struct {
	State  *state.State
	Runner *interp.Runner
	Config *config.Configuration
	Input  LineReader

	stderr  io.Writer
	prefix  string
	events  *logger.SessionLogger
	toClose listCloser
}

// NewShell sets up a session similar to login + source ~/.bashrc.
func NewShell(opts Options) (*Shell, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = io.Discard
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	s := &Shell{
		State:  state.New(opts.Name, opts.Environ),
		Config: cfg,
		Input:  opts.Input,
		stderr: stderr,
		prefix: builtins.DefaultPrefix,
	}
	s.State.Positional = opts.Args
	s.State.Interactive = opts.Interactive
	s.init()

	if cfg.ColorEnabled(opts.Interactive) {
		c := color.New(color.FgRed, color.Bold)
		c.EnableColor()
		s.prefix = c.Sprint(builtins.DefaultPrefix)
	}

	events := opts.Events
	if events == nil && cfg.EventLogPath() != "" {
		logFile, err := cfg.OpenEventLog()
		if err != nil {
			return nil, fmt.Errorf("opening event log: %w", err)
		}
		s.toClose = append(s.toClose, logFile)
		events = logger.NewJsonLinesLogRecorder(logFile)
	}
	if events != nil {
		s.events = events.NewSession()
	}

	if s.Input == nil {
		input, err := s.defaultInput(opts)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.Input = input
	}
	if rl, ok := s.Input.(*ReadlineReader); ok {
		s.State.OnClearHistory = rl.ResetHistory
	}

	s.Runner = &interp.Runner{
		State:  s.State,
		Stdin:  opts.Stdin,
		Stdout: opts.Stdout,
		Stderr: stderr,
		Prefix: s.prefix,
		Events: s.events,
	}

	return s, nil
}

func (s *Shell) defaultInput(opts Options) (LineReader, error) {
	stdin := opts.Stdin
	if f, ok := stdin.(*os.File); ok && opts.Interactive && IsTerminal(f) {
		rl, err := NewReadlineReader(ReadlineConfig{
			Stdin:        f,
			Stdout:       opts.Stdout,
			Stderr:       s.stderr,
			HistoryFile:  s.Config.HistoryPath(),
			HistoryLimit: s.Config.HistoryLimit,
			Prompt:       s.Prompt,
		})
		if err != nil {
			return nil, err
		}
		s.toClose = append(s.toClose, rl)
		return rl, nil
	}

	return NewLineReader(stdin), nil
}

// init applies the configuration to the fresh state.
func (s *Shell) init() {
	cfg := s.Config

	if cfg.Path != "" {
		s.State.Vars.Set(state.EnvPath, cfg.Path)
	}
	if _, ok := s.State.Vars.Lookup(state.EnvPWD); !ok {
		if wd, err := os.Getwd(); err == nil {
			s.State.Vars.Set(state.EnvPWD, wd)
		}
	}

	for _, name := range sortedKeys(cfg.Variables) {
		s.State.Vars.Set(name, cfg.Variables[name])
	}
	for _, name := range sortedKeys(cfg.Aliases) {
		builtins.DefineAlias(s.State, name, cfg.Aliases[name])
	}
}

func sortedKeys(m map[string]string) []string {
	var keys []string
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *Shell) record(event logger.LogType) {
	if err := s.events.Record(event); err != nil {
		log.Printf("Error recording event: %v", err)
	}
}

func (s *Shell) errorf(format string, a ...interface{}) {
	fmt.Fprintf(s.stderr, "%s %s\n", s.prefix, fmt.Sprintf(format, a...))
}

// RunLine parses and runs one line of input command by command, so an alias
// defined early in the line applies to the rest of it. A syntax error stops
// the line with status 2. The error is non-nil only when the session should
// end, and is then an *interp.ExitError.
func (s *Shell) RunLine(line string) (int, error) {
	p := syntax.NewParser(syntax.NewLexer(line), s.State)
	for {
		cmd, err := p.ParseCommand()
		if err == io.EOF {
			return s.State.LastStatus, nil
		}
		if err != nil {
			s.errorf("%v", err)
			s.record(&logger.SyntaxError{Line: line, Error: err.Error()})
			s.State.LastStatus = 2
			return 2, nil
		}

		status, err := s.Runner.Run(cmd)
		var fatal *interp.FatalError
		switch {
		case errors.As(err, &fatal):
			return status, nil
		case err != nil:
			return status, err
		}
	}
}

// Run reads and runs lines until the input ends or exit is called, and
// returns the session's exit status.
func (s *Shell) Run() int {
	s.record(&logger.SessionStart{
		Name:        s.State.Name,
		Args:        s.State.Positional,
		Interactive: s.State.Interactive,
		Pid:         s.State.Pid,
	})

	status := s.loop()

	s.record(&logger.SessionEnd{ExitStatus: status})
	return status
}

func (s *Shell) loop() int {
	for {
		line, err := s.Input.ReadLine()

		switch {
		case err == io.EOF:
			return s.State.LastStatus // Input closed, quit.

		case errors.Is(err, ErrInterrupt):
			// Interrupt clears line.
			continue

		case err != nil:
			s.errorf("%v", err)
			return 1
		}

		if s.State.Interactive {
			s.State.AddHistory(line, s.Config.HistoryLimit)
		}

		if _, err := s.RunLine(line); err != nil {
			var exitErr *interp.ExitError
			if errors.As(err, &exitErr) {
				return exitErr.Code
			}
		}
	}
}

// RunString runs a whole script, as given to -c.
func (s *Shell) RunString(script string) int {
	s.record(&logger.SessionStart{
		Name: s.State.Name,
		Args: s.State.Positional,
		Pid:  s.State.Pid,
	})

	status, err := s.RunLine(script)
	var exitErr *interp.ExitError
	if errors.As(err, &exitErr) {
		status = exitErr.Code
	}

	s.record(&logger.SessionEnd{ExitStatus: status})
	return status
}

func (s *Shell) Close() error {
	return s.toClose.Close()
}

type listCloser []io.Closer

func (lc listCloser) Close() error {
	var lastErr error
	for _, v := range lc {
		if err := v.Close(); err != nil {
			lastErr = err
		}
	}

	return lastErr
}
