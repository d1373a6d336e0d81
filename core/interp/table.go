package interp

import (
	"fmt"
	"strconv"

	"github.com/josephlewis42/rush/core/fd"
	"github.com/josephlewis42/rush/core/syntax"
)

// table maps descriptor numbers to where they point for one command.
type table [syntax.MaxFd + 1]*fd.Fd

func newTable() *table {
	t := &table{}
	for n := 0; n <= 2; n++ {
		t[n] = fd.New(fd.Inherit)
	}
	return t
}

// set points n at f. A descriptor nothing else refers to any more is closed
// straight away so the far end of a pipe sees EOF.
func (t *table) set(n int, f *fd.Fd) {
	old := t[n]
	t[n] = f
	if old == nil || old == f {
		return
	}
	for _, other := range t {
		if other == old {
			return
		}
	}
	old.Close()
}

// distinct returns every descriptor in the table once.
func (t *table) distinct() []*fd.Fd {
	var out []*fd.Fd
	seen := make(map[*fd.Fd]bool)
	for _, f := range t {
		if f == nil || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// closePipes releases the pipe ends once a child process holds its own copies.
func (t *table) closePipes() {
	for _, f := range t.distinct() {
		if f.Kind() == fd.PipeIn || f.Kind() == fd.PipeOut {
			f.Close()
		}
	}
}

func (t *table) close() {
	for _, f := range t.distinct() {
		f.Close()
	}
}

// BadFdError is returned for a duplication of a descriptor that isn't open.
type BadFdError struct {
	N string
}

func (e *BadFdError) Error() string {
	return fmt.Sprintf("%s: bad file descriptor", e.N)
}

var redirKinds = map[syntax.RedirOp]fd.Kind{
	syntax.RedirIn:     fd.FileRead,
	syntax.RedirOut:    fd.FileWrite,
	syntax.RedirAppend: fd.FileAppend,
}

// redirect applies one redirection. Targets are expanded against e.
func (t *table) redirect(r *syntax.Redirect, e syntax.Expander) error {
	target := r.Target.Expand(e)

	switch r.Op {
	case syntax.DupIn, syntax.DupOut:
		m, err := strconv.Atoi(target)
		if err != nil || m < 0 || m > syntax.MaxFd || t[m] == nil || t[m].Closed() {
			return &BadFdError{N: target}
		}
		t.set(r.N, t[m].Pin(m))
	default:
		if target == "" {
			return fmt.Errorf("%s: ambiguous redirect", r.Target)
		}
		t.set(r.N, fd.NewFile(redirKinds[r.Op], target))
	}
	return nil
}

// openFiles opens every named file so a redirection with no command still
// creates or truncates its target.
func (t *table) openFiles(s *fd.Streams) error {
	for _, f := range t.distinct() {
		var err error
		switch f.Kind() {
		case fd.FileRead:
			_, err = f.Input(s)
		case fd.FileWrite, fd.FileAppend:
			_, err = f.Output(s)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
