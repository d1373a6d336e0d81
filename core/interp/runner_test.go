package interp

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/josephlewis42/rush/core/logger"
	"github.com/josephlewis42/rush/core/state"
	"github.com/josephlewis42/rush/core/syntax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRunner struct {
	*Runner
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	dir    string
}

// newTestRunner creates a runner with $D pointing at a scratch directory.
func newTestRunner(t *testing.T, tools ...string) *testRunner {
	t.Helper()

	for _, tool := range append([]string{"sh"}, tools...) {
		if _, err := exec.LookPath(tool); err != nil {
			t.Skipf("%s not available: %v", tool, err)
		}
	}

	dir := t.TempDir()
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	st := state.New("rush", []string{"PATH=" + os.Getenv("PATH"), "D=" + dir})
	return &testRunner{
		Runner: &Runner{
			State:  st,
			Stdin:  strings.NewReader(""),
			Stdout: stdout,
			Stderr: stderr,
		},
		stdout: stdout,
		stderr: stderr,
		dir:    dir,
	}
}

func (tr *testRunner) run(t *testing.T, line string) int {
	t.Helper()

	cmd, err := syntax.Parse(line, tr.State)
	require.NoError(t, err)
	status, err := tr.Run(cmd)
	require.NoError(t, err)
	return status
}

func (tr *testRunner) readFile(t *testing.T, name string) string {
	t.Helper()

	content, err := os.ReadFile(filepath.Join(tr.dir, name))
	require.NoError(t, err)
	return string(content)
}

func TestRun_redirectRoundTrip(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	status := tr.run(t, `echo hi > "$D/x"; cat < "$D/x"`)

	assert.Equal(t, 0, status)
	assert.Equal(t, "hi\n", tr.readFile(t, "x"))
	assert.Equal(t, "hi\n", tr.stdout.String())
	assert.Empty(t, tr.stderr.String())
}

func TestRun_andOr(t *testing.T) {
	cases := map[string]struct {
		line   string
		status int
		stdout string
	}{
		"and-fails":       {line: "false && echo yes", status: 1},
		"or-runs":         {line: "false || echo yes", status: 0, stdout: "yes\n"},
		"and-runs":        {line: "true && echo yes", status: 0, stdout: "yes\n"},
		"or-skips":        {line: "true || echo yes", status: 0},
		"chain-fallback":  {line: "true && false || echo fallback", status: 0, stdout: "fallback\n"},
		"skip-keeps-fail": {line: "false && echo a && echo b", status: 1},
		"semi-always":     {line: "false; echo next", status: 0, stdout: "next\n"},
		"last-status":     {line: "false; echo $?", status: 0, stdout: "1\n"},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tr := newTestRunner(t, "echo", "true", "false")

			assert.Equal(t, tc.status, tr.run(t, tc.line))
			assert.Equal(t, tc.stdout, tr.stdout.String())
			assert.Equal(t, tc.status, tr.State.LastStatus)
		})
	}
}

func TestRun_pipeline(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat", "tr")

	status := tr.run(t, "echo hello | cat | tr a-z A-Z")

	assert.Equal(t, 0, status)
	assert.Equal(t, "HELLO\n", tr.stdout.String())
}

func TestRun_pipelineMissingStage(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	status := tr.run(t, "echo a | rush-no-such-program | cat")

	assert.Equal(t, 0, status)
	assert.Empty(t, tr.stdout.String())
	assert.Equal(t, "rush: rush-no-such-program: command not found\n", tr.stderr.String())
}

func TestRun_pipelineStatusIsLast(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat", "true", "false")

	assert.Equal(t, 127, tr.run(t, "echo a | cat | rush-no-such-program"))
	assert.Equal(t, 0, tr.run(t, "false | true"))
	assert.Equal(t, 1, tr.run(t, "true | false"))
}

func TestRun_redirectBeatsPipe(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")
	require.NoError(t, os.WriteFile(filepath.Join(tr.dir, "in"), []byte("from-file\n"), 0644))

	status := tr.run(t, `echo from-pipe | cat < "$D/in"`)

	assert.Equal(t, 0, status)
	assert.Equal(t, "from-file\n", tr.stdout.String())
}

func TestRun_redirectOutOfPipe(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	status := tr.run(t, `echo into-file > "$D/out" | cat`)

	assert.Equal(t, 0, status)
	assert.Empty(t, tr.stdout.String())
	assert.Equal(t, "into-file\n", tr.readFile(t, "out"))
}

func TestRun_duplicate(t *testing.T) {
	cases := map[string]struct {
		line   string
		stdout string
		stderr string
		file   string
	}{
		"stderr-to-stdout": {
			line:   `sh -c 'echo out; echo err >&2' 2>&1`,
			stdout: "out\nerr\n",
		},
		"both-to-file": {
			line: `sh -c 'echo out; echo err >&2' > "$D/f" 2>&1`,
			file: "out\nerr\n",
		},
		"order-matters": {
			line:   `sh -c 'echo out; echo err >&2' 2>&1 > "$D/f"`,
			stdout: "err\n",
			file:   "out\n",
		},
		"stdout-to-stderr": {
			line:   `echo oops >&2`,
			stderr: "oops\n",
		},
		"high-descriptor": {
			line: `sh -c 'echo three >&3' 3> "$D/f"`,
			file: "three\n",
		},
		"append": {
			line: `echo one > "$D/f"; echo two >> "$D/f"`,
			file: "one\ntwo\n",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			tr := newTestRunner(t, "echo")

			assert.Equal(t, 0, tr.run(t, tc.line))
			assert.Equal(t, tc.stdout, tr.stdout.String())
			assert.Equal(t, tc.stderr, tr.stderr.String())
			if tc.file != "" {
				assert.Equal(t, tc.file, tr.readFile(t, "f"))
			}
		})
	}
}

func TestRun_redirectErrors(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	status := tr.run(t, `cat < "$D/missing"; echo after`)

	assert.Equal(t, 0, status)
	assert.Equal(t, "after\n", tr.stdout.String())
	assert.Equal(t, "rush: "+filepath.Join(tr.dir, "missing")+": no such file or directory\n", tr.stderr.String())

	tr.stderr.Reset()
	assert.Equal(t, 1, tr.run(t, "echo x >&5"))
	assert.Equal(t, "rush: 5: bad file descriptor\n", tr.stderr.String())

	tr.stderr.Reset()
	assert.Equal(t, 1, tr.run(t, `echo x > $UNSET_VARIABLE`))
	assert.Equal(t, "rush: ${UNSET_VARIABLE}: ambiguous redirect\n", tr.stderr.String())
}

func TestRun_redirectOnly(t *testing.T) {
	tr := newTestRunner(t)
	require.NoError(t, os.WriteFile(filepath.Join(tr.dir, "f"), []byte("old"), 0644))

	assert.Equal(t, 0, tr.run(t, `> "$D/f"`))
	assert.Equal(t, "", tr.readFile(t, "f"))
}

func TestRun_notRunnable(t *testing.T) {
	tr := newTestRunner(t)
	require.NoError(t, os.WriteFile(filepath.Join(tr.dir, "noexec"), []byte("#!/bin/sh\n"), 0644))

	assert.Equal(t, 126, tr.run(t, `"$D/noexec"`))
	assert.Equal(t, "rush: "+filepath.Join(tr.dir, "noexec")+": permission denied\n", tr.stderr.String())

	tr.stderr.Reset()
	assert.Equal(t, 127, tr.run(t, `"$D/missing"`))
	assert.Equal(t, "rush: "+filepath.Join(tr.dir, "missing")+": no such file or directory\n", tr.stderr.String())

	tr.stderr.Reset()
	assert.Equal(t, 127, tr.run(t, "rush-no-such-program arg"))
	assert.Equal(t, "rush: rush-no-such-program: command not found\n", tr.stderr.String())
}

func TestRun_signalStatus(t *testing.T) {
	tr := newTestRunner(t)

	assert.Equal(t, 128+9, tr.run(t, `sh -c 'kill -9 $$'`))
}

func TestRun_assignments(t *testing.T) {
	tr := newTestRunner(t, "echo", "true")

	assert.Equal(t, 0, tr.run(t, "A=x"))
	assert.Equal(t, "x", tr.State.Vars.Get("A"))

	tr.run(t, `A=y sh -c 'echo $A'; echo $A`)
	assert.Equal(t, "y\nx\n", tr.stdout.String())

	tr.stdout.Reset()
	tr.run(t, `B=1 C=$B sh -c 'echo $B$C'`)
	assert.Equal(t, "11\n", tr.stdout.String())
	_, ok := tr.State.Vars.Lookup("B")
	assert.False(t, ok)

	tr.stdout.Reset()
	tr.run(t, `E=1 echo "[$E]"`)
	assert.Equal(t, "[]\n", tr.stdout.String())

	tr.run(t, "P=1 | true")
	_, ok = tr.State.Vars.Lookup("P")
	assert.False(t, ok)
}

func TestRun_builtins(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	tr.run(t, "set a b; echo $# $2")
	assert.Equal(t, "2 b\n", tr.stdout.String())

	tr.stdout.Reset()
	assert.Equal(t, 0, tr.run(t, "help exit | cat"))
	assert.Contains(t, tr.stdout.String(), "exit: exit [n]")

	tr.stdout.Reset()
	tr.run(t, "alias x='echo y' | cat; alias x")
	assert.Equal(t, "alias x='echo y'\n", tr.stdout.String())

	tr.stdout.Reset()
	tr.stderr.Reset()
	assert.Equal(t, 1, tr.run(t, "unalias nope 2>&1 | cat; false"))
	assert.Equal(t, "rush: unalias: nope: not found\n", tr.stdout.String())
	assert.Empty(t, tr.stderr.String())

	tr.stdout.Reset()
	tr.run(t, `V=temp set z; echo "[$V] $1"`)
	assert.Equal(t, "[] z\n", tr.stdout.String())

	tr.stdout.Reset()
	tr.run(t, `export SEEN=hi; sh -c 'echo $SEEN'`)
	assert.Equal(t, "hi\n", tr.stdout.String())
}

func TestRun_exit(t *testing.T) {
	tr := newTestRunner(t, "echo", "cat")

	cmd, err := syntax.Parse("exit 3; echo unreachable", tr.State)
	require.NoError(t, err)

	status, err := tr.Run(cmd)
	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, 3, status)
	assert.Empty(t, tr.stdout.String())

	assert.Equal(t, 3, tr.run(t, "cat | exit 3"))
	assert.Equal(t, 0, tr.run(t, "exit 3 | cat"))
	assert.Equal(t, 2, tr.run(t, "exit abc"))
}

func TestRun_nil(t *testing.T) {
	tr := newTestRunner(t)
	tr.State.LastStatus = 4

	status, err := tr.Run(nil)
	assert.NoError(t, err)
	assert.Equal(t, 4, status)
}

func TestRun_events(t *testing.T) {
	tr := newTestRunner(t, "true")
	buf := &bytes.Buffer{}
	tr.Events = logger.NewJsonLinesLogRecorder(buf).NewSession()

	tr.run(t, "true; rush-no-such-program; cd")

	var entries []*logger.LogEntry
	require.NoError(t, logger.ReadJSONLinesLog(buf, func(le *logger.LogEntry) {
		entries = append(entries, le)
	}))
	require.Len(t, entries, 3)

	require.NotNil(t, entries[0].RunCommand)
	assert.Equal(t, []string{"true"}, entries[0].RunCommand.Command)
	assert.NotEmpty(t, entries[0].RunCommand.ResolvedCommandPath)

	require.NotNil(t, entries[1].UnknownCommand)
	assert.Equal(t, logger.StatusNotFound, entries[1].UnknownCommand.Status)

	require.NotNil(t, entries[2].RunCommand)
	assert.True(t, entries[2].RunCommand.Builtin)
	assert.Equal(t, 1, entries[2].RunCommand.ExitStatus)
}

func TestRun_nilStdin(t *testing.T) {
	tr := newTestRunner(t, "cat")
	tr.Stdin = nil

	assert.Equal(t, 0, tr.run(t, "alias g=echo; cat"))
	assert.Equal(t, 0, tr.run(t, "cat | cat"))
	assert.Empty(t, tr.stdout.String())
	assert.Empty(t, tr.stderr.String())

	_, ok := tr.State.LookupAlias("g")
	assert.True(t, ok)
}
