// Package fd models where each standard stream of a command is connected.
//
// A descriptor starts out as a description (a terminal stream, a pipe end or
// a file name) and is turned into a concrete stream the first time it is
// resolved. Named files are opened lazily and the opened handle replaces the
// name, so a descriptor resolved twice always yields the same handle.
package fd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/afero"
)

// Kind tags the variant held by an Fd.
type Kind int

const (
	// Stdin is the parent's standard input.
	Stdin Kind = iota
	// Stdout is the parent's standard output.
	Stdout
	// Stderr is the parent's standard error.
	Stderr
	// Inherit is whichever parent stream matches the way it is resolved.
	Inherit
	// PipeOut is the write end of an anonymous pipe.
	PipeOut
	// PipeIn is the read end of an anonymous pipe.
	PipeIn
	// FileRead is a file opened for reading on first use.
	FileRead
	// FileWrite is a file created or truncated on first use.
	FileWrite
	// FileAppend is a file created or appended to on first use.
	FileAppend
	// Opened is an already opened handle.
	Opened
)

var kindNames = map[Kind]string{
	Stdin:      "stdin",
	Stdout:     "stdout",
	Stderr:     "stderr",
	Inherit:    "inherit",
	PipeOut:    "pipe-out",
	PipeIn:     "pipe-in",
	FileRead:   "file-read",
	FileWrite:  "file-write",
	FileAppend: "file-append",
	Opened:     "opened",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// IsFile reports whether the kind names a file that has yet to be opened.
func (k Kind) IsFile() bool {
	return k == FileRead || k == FileWrite || k == FileAppend
}

// DefaultPerm is used when a redirection creates a file.
const DefaultPerm = 0644

// ErrNotReadable is returned when input is requested from a stream that can
// only be written.
var ErrNotReadable = errors.New("descriptor is not readable")

// ErrNotWritable is returned when output is requested from a stream that can
// only be read.
var ErrNotWritable = errors.New("descriptor is not writable")

// OpenError records a named file that could not be opened.
type OpenError struct {
	Name string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// Streams holds the parent's streams and the filesystem named files are
// opened on.
type Streams struct {
	Fs     afero.Fs
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Fd is one end of a command's stream.
type Fd struct {
	kind   Kind
	name   string
	file   afero.File
	closed bool
}

// New creates a descriptor for one of the parent stream kinds.
func New(kind Kind) *Fd {
	return &Fd{kind: kind}
}

// NewFile creates a descriptor for a named file that is opened when first
// resolved.
func NewFile(kind Kind, name string) *Fd {
	return &Fd{kind: kind, name: name}
}

// NewOpened wraps a handle that is already open. The descriptor takes
// ownership of the handle.
func NewOpened(f afero.File) *Fd {
	return &Fd{kind: Opened, name: f.Name(), file: f}
}

// NewPipe creates an anonymous pipe and returns its read and write ends.
func NewPipe() (r, w *Fd, err error) {
	pr, pw, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	return &Fd{kind: PipeIn, name: "pipe", file: pr}, &Fd{kind: PipeOut, name: "pipe", file: pw}, nil
}

// Kind returns the current variant.
func (f *Fd) Kind() Kind {
	return f.kind
}

// Name returns the file name of a file descriptor.
func (f *Fd) Name() string {
	return f.name
}

// Pin turns an inherited descriptor into the explicit parent stream it
// stands for on descriptor n, so a copy of it keeps pointing there after n is
// redirected. Other descriptors are returned unchanged.
func (f *Fd) Pin(n int) *Fd {
	if f.kind != Inherit {
		return f
	}
	switch n {
	case 0:
		return New(Stdin)
	case 1:
		return New(Stdout)
	case 2:
		return New(Stderr)
	}
	return f
}

type direction int

const (
	dirIn direction = iota
	dirOut
	dirErr
)

func (f *Fd) resolve(s *Streams, dir direction) (interface{}, error) {
	if f.closed {
		return nil, &OpenError{Name: f.String(), Err: fs.ErrClosed}
	}

	switch f.kind {
	case Stdin:
		return s.Stdin, nil
	case Stdout:
		return s.Stdout, nil
	case Stderr:
		return s.Stderr, nil
	case Inherit:
		switch dir {
		case dirIn:
			return s.Stdin, nil
		case dirOut:
			return s.Stdout, nil
		default:
			return s.Stderr, nil
		}
	case PipeIn, PipeOut, Opened:
		return f.file, nil
	case FileRead, FileWrite, FileAppend:
		if err := f.open(s.Fs); err != nil {
			return nil, err
		}
		return f.file, nil
	}

	return nil, fmt.Errorf("unknown descriptor kind %v", f.kind)
}

// open replaces a file name variant with the handle it names.
func (f *Fd) open(fsys afero.Fs) error {
	flag := os.O_RDONLY
	switch f.kind {
	case FileWrite:
		flag = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	case FileAppend:
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}

	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	file, err := fsys.OpenFile(f.name, flag, DefaultPerm)
	if err != nil {
		var pathErr *fs.PathError
		if errors.As(err, &pathErr) {
			err = pathErr.Err
		}
		return &OpenError{Name: f.name, Err: err}
	}

	f.kind = Opened
	f.file = file
	return nil
}

// Input resolves the descriptor to a stream the command reads from. Named
// files meant for writing are opened the same way Output opens them.
func (f *Fd) Input(s *Streams) (io.Reader, error) {
	stream, err := f.resolve(s, dirIn)
	if err != nil {
		return nil, err
	}
	r, ok := stream.(io.Reader)
	if !ok {
		return nil, &OpenError{Name: f.String(), Err: ErrNotReadable}
	}
	return r, nil
}

// Output resolves the descriptor to a stream the command writes to.
func (f *Fd) Output(s *Streams) (io.Writer, error) {
	return f.writer(s, dirOut)
}

// Error resolves the descriptor to a stream the command writes diagnostics
// to.
func (f *Fd) Error(s *Streams) (io.Writer, error) {
	return f.writer(s, dirErr)
}

func (f *Fd) writer(s *Streams, dir direction) (io.Writer, error) {
	stream, err := f.resolve(s, dir)
	if err != nil {
		return nil, err
	}
	w, ok := stream.(io.Writer)
	if !ok {
		return nil, &OpenError{Name: f.String(), Err: ErrNotWritable}
	}
	return w, nil
}

// File returns the OS file backing a pipe end or opened handle.
func (f *Fd) File() (*os.File, bool) {
	if f.closed || f.file == nil {
		return nil, false
	}
	osFile, ok := f.file.(*os.File)
	return osFile, ok
}

// Close releases a handle the descriptor owns. Parent streams are never
// closed and closing twice is a no-op.
func (f *Fd) Close() error {
	if f.closed {
		return nil
	}
	switch f.kind {
	case PipeIn, PipeOut, Opened:
		f.closed = true
		return f.file.Close()
	}
	return nil
}

// Closed reports whether Close released the descriptor's handle.
func (f *Fd) Closed() bool {
	return f.closed
}

func (f *Fd) String() string {
	if f.name != "" {
		return fmt.Sprintf("%v(%s)", f.kind, f.name)
	}
	return f.kind.String()
}
