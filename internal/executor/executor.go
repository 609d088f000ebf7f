package executor

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/stepwise-run/stepwise/internal/logsink"
	"github.com/stepwise-run/stepwise/internal/manifest"
	"github.com/stepwise-run/stepwise/internal/placeholder"
	"github.com/stepwise-run/stepwise/internal/shellsplit"
)

// Executor runs a bound Job's commands in order, one child process at a
// time.
type Executor struct {
	Sink     logsink.Sink
	Resolver *placeholder.Resolver
	Grace    time.Duration

	sinkMu sync.Mutex
}

// New creates an Executor.
func New(sink logsink.Sink, resolver *placeholder.Resolver, grace time.Duration) *Executor {
	return &Executor{Sink: sink, Resolver: resolver, Grace: grace}
}

// Run executes job's commands in sequence. It returns nil if every command
// ran and exited zero (skipped commands count as success); otherwise it
// returns a *CommandFailed, an *EngineInterrupted, a placeholder/spawn
// error, or ctx's error if ctx is cancelled while a child runs, and halts
// without running the remaining commands.
func (e *Executor) Run(ctx context.Context, job *manifest.Job) error {
	e.Sink.JobStart(job.Name)

	total := len(job.Commands)
	runErr := e.runCommands(ctx, job, total)

	status := logsink.Status{Err: runErr}
	if cf, ok := runErr.(*CommandFailed); ok {
		status.Code = cf.ExitCode
	}
	e.Sink.JobEnd(status)

	return runErr
}

func (e *Executor) runCommands(ctx context.Context, job *manifest.Job, total int) error {
	for i, cmd := range job.Commands {
		rec := logsink.CommandRecord{Index: i, Total: total, Name: cmd.Name, Task: cmd.Task}

		if cmd.Skip {
			e.Sink.CommandSkipped(rec)
			continue
		}

		e.Resolver.BeginCommand()

		resolvedEnv, err := e.resolveCommandEnv(cmd)
		if err != nil {
			return err
		}
		rec.Env = resolvedEnv

		e.Sink.CommandStart(rec)

		exitCode, spawnErr := e.spawn(ctx, job, cmd, resolvedEnv)
		if spawnErr != nil {
			if _, ok := spawnErr.(*EngineInterrupted); !ok {
				return spawnErr
			}
			e.Sink.CommandEnd(exitCode)
			return spawnErr
		}

		e.Sink.CommandEnd(exitCode)

		e.Resolver.Complete(&placeholder.CommandResult{
			Name:       cmd.Name,
			Task:       cmd.Task,
			ReturnCode: exitCode,
			Env:        resolvedEnv,
		})

		if exitCode != 0 {
			return &CommandFailed{Index: i, Name: cmd.Name, ExitCode: exitCode}
		}
	}
	return nil
}

func (e *Executor) resolveCommandEnv(cmd *manifest.Command) (map[string]string, error) {
	resolved := make(map[string]string, len(cmd.Env))
	for k, v := range cmd.Env {
		rv, err := e.Resolver.Resolve(v)
		if err != nil {
			return nil, err
		}
		resolved[k] = rv
	}
	return resolved, nil
}

func (e *Executor) spawn(ctx context.Context, job *manifest.Job, cmd *manifest.Command, resolvedEnv map[string]string) (int, error) {
	argv, err := buildArgv(cmd.Bound)
	if err != nil {
		return 0, err
	}

	child := exec.Command(argv[0], argv[1:]...)
	child.Dir = job.Data
	child.Env = buildChildEnv(resolvedEnv)

	stdoutPipe, err := child.StdoutPipe()
	if err != nil {
		return 0, err
	}
	stderrPipe, err := child.StderrPipe()
	if err != nil {
		return 0, err
	}

	if err := child.Start(); err != nil {
		return 0, err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	waitCh := make(chan error, 1)
	go func() { waitCh <- child.Wait() }()

	var wg sync.WaitGroup
	wg.Add(2)
	go e.streamLines(&wg, stdoutPipe, logsink.Stdout)
	go e.streamLines(&wg, stderrPipe, logsink.Stderr)

	select {
	case sig := <-sigCh:
		_ = child.Process.Signal(sig)
		var waitErr error
		select {
		case waitErr = <-waitCh:
		case <-time.After(e.Grace):
			_ = child.Process.Kill()
			waitErr = <-waitCh
		}
		wg.Wait()
		return exitCodeOf(waitErr), &EngineInterrupted{Signal: sig}
	case waitErr := <-waitCh:
		wg.Wait()
		return exitCodeOf(waitErr), nil
	case <-ctx.Done():
		_ = child.Process.Signal(syscall.SIGTERM)
		var waitErr error
		select {
		case waitErr = <-waitCh:
		case <-time.After(e.Grace):
			_ = child.Process.Kill()
			waitErr = <-waitCh
		}
		wg.Wait()
		return exitCodeOf(waitErr), ctx.Err()
	}
}

func (e *Executor) streamLines(wg *sync.WaitGroup, r io.Reader, stream logsink.Stream) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		ts := time.Now()
		e.sinkMu.Lock()
		e.Sink.OutputLine(stream, ts, scanner.Text())
		e.sinkMu.Unlock()
	}
}

// buildArgv constructs the child argv from a task's run form. Inline tasks
// tokenise the interpreter line by POSIX word splitting and append the
// script as a single final argument; command tasks run under /bin/sh -c.
func buildArgv(task *manifest.Task) ([]string, error) {
	if task.Run.Inline() {
		words, err := shellsplit.Split(task.Run.Interpreter)
		if err != nil {
			return nil, err
		}
		return append(words, task.Run.Script), nil
	}
	return []string{"/bin/sh", "-c", task.Run.Command}, nil
}

// buildChildEnv overlays the resolved command env on top of the host
// environment; command env wins on conflict.
func buildChildEnv(resolved map[string]string) []string {
	env := os.Environ()
	keys := make([]string, 0, len(resolved))
	for k := range resolved {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+resolved[k])
	}
	return env
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
