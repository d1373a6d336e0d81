package interp

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"syscall"

	"github.com/josephlewis42/rush/core/builtins"
	"github.com/josephlewis42/rush/core/fd"
	"github.com/josephlewis42/rush/core/logger"
	"github.com/josephlewis42/rush/core/state"
	"github.com/josephlewis42/rush/core/syntax"
)

// stage is one simple command of a pipeline while it runs.
type stage struct {
	cmd     *syntax.SimpleCommand
	fds     *table
	args    []string
	assigns []assignment

	status int

	// proc is set once an external program has started.
	proc *exec.Cmd
	path string

	// copied is closed once the buffered output of a builtin has been
	// written out.
	copied chan struct{}
}

// pipeline runs its commands in two phases: every stage is started in order,
// then every stage is waited for in order. The status is the last stage's.
func (r *Runner) pipeline(cmds []*syntax.SimpleCommand) (int, error) {
	stdout, stderr := lockWriters(r.Stdout, r.Stderr)
	s := &fd.Streams{Fs: r.fs(), Stdin: r.stdin(), Stdout: stdout, Stderr: stderr}

	n := len(cmds)
	readers := make([]*fd.Fd, n)
	writers := make([]*fd.Fd, n)
	for i := 0; i < n-1; i++ {
		pr, pw, err := fd.NewPipe()
		if err != nil {
			for j := 0; j < i; j++ {
				writers[j].Close()
				readers[j+1].Close()
			}
			r.errorf(stderr, "pipe: %v", err)
			return 1, &FatalError{Err: fmt.Errorf("pipe: %w", err)}
		}
		writers[i] = pw
		readers[i+1] = pr
	}

	stages := make([]*stage, n)
	for i, cmd := range cmds {
		st := &stage{cmd: cmd, fds: newTable()}
		if readers[i] != nil {
			st.fds.set(0, readers[i])
		}
		if writers[i] != nil {
			st.fds.set(1, writers[i])
		}
		stages[i] = st

		if err := r.start(st, s, n == 1); err != nil {
			return st.status, err
		}
	}

	status := 0
	for _, st := range stages {
		r.wait(st)
		status = st.status
	}
	return status, nil
}

// start applies redirections, expands words and launches the command. Only a
// builtin that asks to exit makes it return an error.
func (r *Runner) start(st *stage, s *fd.Streams, single bool) error {
	for _, redir := range st.cmd.Redirs {
		if err := st.fds.redirect(redir, r.State); err != nil {
			r.fail(st, s, 1, "%v", err)
			return nil
		}
	}

	st.args = r.evalArgs(st.cmd.Args)
	st.assigns = r.evalAssign(st.cmd.Assigns)

	if len(st.args) == 0 {
		if err := st.fds.openFiles(s); err != nil {
			r.fail(st, s, 1, "%v", err)
			return nil
		}
		// Assignments in a pipeline stage are lost like in a subshell.
		if single {
			for _, a := range st.assigns {
				r.State.Vars.Set(a.name, a.value)
			}
		}
		st.fds.close()
		return nil
	}

	if b, ok := builtins.Lookup(st.args[0]); ok {
		return r.startBuiltin(st, s, b, single)
	}

	r.startExternal(st, s)
	return nil
}

// fail reports an error on the command's own stderr, falling back to the
// shell's, and gives the stage a status.
func (r *Runner) fail(st *stage, s *fd.Streams, status int, format string, a ...interface{}) {
	w := s.Stderr
	if f := st.fds[2]; f != nil {
		if stderr, err := f.Error(s); err == nil {
			w = stderr
		}
	}
	r.errorf(w, format, a...)

	st.status = status
	st.fds.close()
}

func (st *stage) resolve(s *fd.Streams) (stdin io.Reader, stdout, stderr io.Writer, err error) {
	if stdin, err = st.fds[0].Input(s); err != nil {
		return
	}
	if stdout, err = st.fds[1].Output(s); err != nil {
		return
	}
	stderr, err = st.fds[2].Error(s)
	return
}

// setTemporarily applies prefix assignments for the duration of a builtin.
func (r *Runner) setTemporarily(assigns []assignment) (restore func()) {
	type saved struct {
		name  string
		value string
		ok    bool
	}
	var old []saved
	for _, a := range assigns {
		value, ok := r.State.Vars.Lookup(a.name)
		old = append(old, saved{name: a.name, value: value, ok: ok})
		r.State.Vars.Set(a.name, a.value)
	}

	return func() {
		for i := len(old) - 1; i >= 0; i-- {
			if old[i].ok {
				r.State.Vars.Set(old[i].name, old[i].value)
			} else {
				r.State.Vars.Unset(old[i].name)
			}
		}
	}
}

func (r *Runner) startBuiltin(st *stage, s *fd.Streams, b builtins.Builtin, single bool) error {
	stdin, stdout, stderr, err := st.resolve(s)
	if err != nil {
		r.fail(st, s, 1, "%v", err)
		return nil
	}

	env := &builtins.Env{State: r.State, Stdin: stdin, Stdout: stdout, Stderr: stderr, Prefix: r.prefix()}

	if single {
		restore := r.setTemporarily(st.assigns)
		st.status = b.Main(env, st.args)
		restore()
		st.fds.close()

		r.record(&logger.RunCommand{Command: st.args, Builtin: true, ExitStatus: st.status})
		if code, ok := env.ExitRequested(); ok {
			return &ExitError{Code: code}
		}
		return nil
	}

	// Inside a pipeline the builtin writes to memory; a copier drains that
	// into the real streams so a full pipe can't block the shell.
	outBuf := &bytes.Buffer{}
	errBuf := outBuf
	if st.fds[1] != st.fds[2] {
		errBuf = &bytes.Buffer{}
	}
	env.Stdout, env.Stderr = outBuf, errBuf

	restore := r.setTemporarily(st.assigns)
	st.status = b.Main(env, st.args)
	restore()
	r.record(&logger.RunCommand{Command: st.args, Builtin: true, ExitStatus: st.status})

	st.copied = make(chan struct{})
	go func() {
		defer close(st.copied)
		defer st.fds.close()

		outBuf.WriteTo(stdout)
		if errBuf != outBuf {
			errBuf.WriteTo(stderr)
		}
	}()
	return nil
}

func (r *Runner) startExternal(st *stage, s *fd.Streams) {
	name := st.args[0]

	path, err := LookPath(s.Fs, r.State.Vars.Get(state.EnvPath), name)
	if err != nil {
		status, reason, msg := 126, logger.StatusStartFailed, errorMessage(err)
		switch {
		case errors.Is(err, ErrNotFound):
			status, reason, msg = 127, logger.StatusNotFound, "command not found"
		case errors.Is(err, fs.ErrNotExist):
			status, reason, msg = 127, logger.StatusNotFound, "no such file or directory"
		case errors.Is(err, fs.ErrPermission):
			status, reason, msg = 126, logger.StatusPermissionDenied, "permission denied"
		}
		r.record(&logger.UnknownCommand{Command: st.args, Status: reason, ErrorMessage: msg})
		r.fail(st, s, status, "%s: %s", name, msg)
		return
	}

	stdin, stdout, stderr, err := st.resolve(s)
	if err != nil {
		r.fail(st, s, 1, "%v", err)
		return
	}
	extra, err := st.extraFiles(s)
	if err != nil {
		r.fail(st, s, 1, "%v", err)
		return
	}

	env := r.State.Vars.Clone()
	for _, a := range st.assigns {
		env.Set(a.name, a.value)
	}

	proc := &exec.Cmd{
		Path:       path,
		Args:       st.args,
		Env:        env.Environ(),
		Stdin:      stdin,
		Stdout:     stdout,
		Stderr:     stderr,
		ExtraFiles: extra,
	}
	if err := proc.Start(); err != nil {
		msg := errorMessage(err)
		r.record(&logger.UnknownCommand{Command: st.args, Status: logger.StatusStartFailed, ErrorMessage: msg})
		r.fail(st, s, 126, "%s: %s", name, msg)
		return
	}

	st.proc = proc
	st.path = path
	st.fds.closePipes()
}

// extraFiles collects descriptors 3 and up. Programs only receive them as OS
// files.
func (st *stage) extraFiles(s *fd.Streams) ([]*os.File, error) {
	var extra []*os.File
	for n := 3; n <= syntax.MaxFd; n++ {
		f := st.fds[n]
		if f == nil {
			continue
		}

		var stream interface{}
		var err error
		switch f.Kind() {
		case fd.FileRead, fd.PipeIn, fd.Stdin:
			stream, err = f.Input(s)
		case fd.Stderr:
			stream, err = f.Error(s)
		default:
			stream, err = f.Output(s)
		}
		if err != nil {
			return nil, err
		}

		file, ok := stream.(*os.File)
		if !ok {
			return nil, &BadFdError{N: strconv.Itoa(n)}
		}
		for len(extra) < n-3 {
			extra = append(extra, nil)
		}
		extra = append(extra, file)
	}
	return extra, nil
}

func (r *Runner) wait(st *stage) {
	switch {
	case st.copied != nil:
		<-st.copied
	case st.proc != nil:
		err := st.proc.Wait()
		if ps := st.proc.ProcessState; ps != nil {
			st.status = exitStatus(ps)
		} else {
			r.errorf(r.Stderr, "%s: %v", st.args[0], err)
			st.status = 1
		}
		st.fds.close()

		r.record(&logger.RunCommand{
			Command:             st.args,
			ResolvedCommandPath: st.path,
			ExitStatus:          st.status,
		})
	}
}

// exitStatus follows the shell convention of 128+n for a program killed by
// signal n.
func exitStatus(ps *os.ProcessState) int {
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ps.ExitCode()
}

func errorMessage(err error) string {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
