package logsink

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimpleSink_JobLifecycle(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.JobStart("release")
	sink.TasksDiscovered([]string{"test", "compile"})
	sink.JobEnd(Status{Code: 0})

	out := buf.String()
	assert.Contains(t, out, "job release: starting")
	assert.Contains(t, out, "tasks discovered: [compile test]")
	assert.Contains(t, out, "job: done (exit 0)")
}

func TestSimpleSink_JobEndWithError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.JobEnd(Status{Err: assert.AnError})

	assert.Contains(t, buf.String(), "job: failed: "+assert.AnError.Error())
}

func TestSimpleSink_CommandStartNamedAndUnnamed(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.CommandStart(CommandRecord{Index: 0, Total: 2, Name: "build", Task: "compile"})
	sink.CommandStart(CommandRecord{Index: 1, Total: 2, Task: "test"})

	out := buf.String()
	assert.Contains(t, out, "[1/2] build (task compile)")
	assert.Contains(t, out, "[2/2] task test")
}

func TestSimpleSink_CommandSkipped(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.CommandSkipped(CommandRecord{Index: 0, Total: 1, Name: "build"})
	assert.Contains(t, buf.String(), "[1/1] build: skipped")
}

func TestSimpleSink_CommandStartPreviewsEnvKeys(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.CommandStart(CommandRecord{Index: 0, Total: 1, Name: "build", Task: "compile", Env: map[string]string{"OUT": "/tmp/a", "MODE": "release"}})

	assert.Contains(t, buf.String(), "env=[MODE OUT]")
}

func TestSimpleSink_CommandSkippedPreviewsEnvKeys(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.CommandSkipped(CommandRecord{Index: 0, Total: 1, Name: "build", Env: map[string]string{"OUT": "/tmp/a"}})

	assert.Contains(t, buf.String(), "env=[OUT]")
}

func TestSimpleSink_OutputLineIncludesStream(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	ts := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	sink.OutputLine(Stdout, ts, "building...")
	sink.OutputLine(Stderr, ts, "warning: deprecated")

	out := buf.String()
	assert.Contains(t, out, "stdout| building...")
	assert.Contains(t, out, "stderr| warning: deprecated")
}

func TestSimpleSink_CommandEnd(t *testing.T) {
	var buf bytes.Buffer
	sink := NewSimpleSink(&buf)

	sink.CommandEnd(2)
	assert.Contains(t, buf.String(), "exit 2")
}

func TestStream_String(t *testing.T) {
	assert.Equal(t, "stdout", Stdout.String())
	assert.Equal(t, "stderr", Stderr.String())
}
