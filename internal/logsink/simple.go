package logsink

import (
	"fmt"
	"io"
	"sort"
	"time"
)

// SimpleSink is a minimal reference Sink that writes plain lines to an
// io.Writer; lines of child output are prefixed with their timestamp. It has no banners or box-drawing; a richer
// terminal renderer is expected to implement Sink itself.
type SimpleSink struct {
	w io.Writer
}

// NewSimpleSink creates a SimpleSink writing to w.
func NewSimpleSink(w io.Writer) *SimpleSink {
	return &SimpleSink{w: w}
}

func (s *SimpleSink) JobStart(name string) {
	fmt.Fprintf(s.w, "job %s: starting\n", name)
}

func (s *SimpleSink) JobEnd(status Status) {
	if status.Err != nil {
		fmt.Fprintf(s.w, "job: failed: %s\n", status.Err)
		return
	}
	fmt.Fprintf(s.w, "job: done (exit %d)\n", status.Code)
}

func (s *SimpleSink) TasksDiscovered(names []string) {
	sorted := append([]string(nil), names...)
	sort.Strings(sorted)
	fmt.Fprintf(s.w, "tasks discovered: %v\n", sorted)
}

func (s *SimpleSink) CommandStart(rec CommandRecord) {
	if rec.Name != "" {
		fmt.Fprintf(s.w, "[%d/%d] %s (task %s) env=%s\n", rec.Index+1, rec.Total, rec.Name, rec.Task, envKeys(rec.Env))
		return
	}
	fmt.Fprintf(s.w, "[%d/%d] task %s env=%s\n", rec.Index+1, rec.Total, rec.Task, envKeys(rec.Env))
}

func (s *SimpleSink) CommandSkipped(rec CommandRecord) {
	if rec.Name != "" {
		fmt.Fprintf(s.w, "[%d/%d] %s: skipped env=%s\n", rec.Index+1, rec.Total, rec.Name, envKeys(rec.Env))
		return
	}
	fmt.Fprintf(s.w, "[%d/%d] task %s: skipped env=%s\n", rec.Index+1, rec.Total, rec.Task, envKeys(rec.Env))
}

// envKeys returns rec.Env's keys, sorted, for a compact preview line —
// the values themselves (which may be unresolved placeholders during a
// dry-run preview, or literal secrets during a real run) are never logged.
func envKeys(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *SimpleSink) OutputLine(stream Stream, ts time.Time, text string) {
	fmt.Fprintf(s.w, "%s %s| %s\n", ts.Format(time.RFC3339Nano), stream, text)
}

func (s *SimpleSink) CommandEnd(exitCode int) {
	fmt.Fprintf(s.w, "exit %d\n", exitCode)
}

var _ Sink = (*SimpleSink)(nil)
