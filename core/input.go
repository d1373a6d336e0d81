package core

import (
	"bufio"
	"io"
	"math"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"golang.org/x/term"
)

// ErrInterrupt is returned by an interactive line source when the user
// presses Ctrl-C.
var ErrInterrupt = readline.ErrInterrupt

// LineReader is a source of input lines. ReadLine returns io.EOF once the
// input is exhausted.
type LineReader interface {
	ReadLine() (string, error)
}

type bufferedLineReader struct {
	r *bufio.Reader
}

// NewLineReader reads lines from r without any editing.
func NewLineReader(r io.Reader) LineReader {
	return &bufferedLineReader{r: bufio.NewReader(r)}
}

func (b *bufferedLineReader) ReadLine() (string, error) {
	line, err := b.r.ReadString('\n')
	if err == io.EOF && line != "" {
		// Last line without a trailing newline.
		err = nil
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

// ReadlineConfig configures an interactive line source.
type ReadlineConfig struct {
	Stdin  *os.File
	Stdout io.Writer
	Stderr io.Writer

	// HistoryFile persists history between sessions if set.
	HistoryFile string
	// HistoryLimit is the number of lines kept, 0 for no limit.
	HistoryLimit int

	// Prompt is called before reading each line.
	Prompt func() string
}

// ReadlineReader reads lines from a terminal with line editing and history.
type ReadlineReader struct {
	Readline *readline.Instance
	prompt   func() string
}

// NewReadlineReader creates an interactive line source.
func NewReadlineReader(conf ReadlineConfig) (*ReadlineReader, error) {
	limit := conf.HistoryLimit
	if limit == 0 {
		limit = math.MaxInt32
	}

	fd := int(conf.Stdin.Fd())
	cfg := &readline.Config{
		Stdin:        readline.NewCancelableStdin(conf.Stdin),
		Stdout:       conf.Stdout,
		Stderr:       conf.Stderr,
		HistoryFile:  conf.HistoryFile,
		HistoryLimit: limit,
		FuncGetWidth: func() int {
			width, _, err := term.GetSize(fd)
			if err != nil {
				return 80
			}
			return width
		},

		FuncIsTerminal: func() bool {
			return term.IsTerminal(fd)
		},
	}

	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}

	return &ReadlineReader{Readline: rl, prompt: conf.Prompt}, nil
}

func (r *ReadlineReader) ReadLine() (string, error) {
	if r.prompt != nil {
		r.Readline.SetPrompt(r.prompt())
	}
	return r.Readline.Readline()
}

// ResetHistory forgets the lines read so far, including saved ones.
func (r *ReadlineReader) ResetHistory() {
	r.Readline.Operation.ResetHistory()
}

func (r *ReadlineReader) Close() error {
	return r.Readline.Close()
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
