package interp

import (
	"io"
	"os"
	"sync"
)

// lockedWriter serializes writes from the copy loops of concurrent stages.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// lockWriters wraps stdout and stderr unless they are OS files, which the
// kernel already serializes. Both get the same lock when they are the same
// writer.
func lockWriters(stdout, stderr io.Writer) (io.Writer, io.Writer) {
	wrap := func(w io.Writer) io.Writer {
		if w == nil {
			return io.Discard
		}
		if _, ok := w.(*os.File); ok {
			return w
		}
		return &lockedWriter{w: w}
	}

	out := wrap(stdout)
	if stderr == stdout {
		return out, out
	}
	return out, wrap(stderr)
}
