// Package engine wires the manifest loader, task registry, command binder,
// and command executor together into the single operation the CLI exposes:
// load a job manifest, discover its tasks, bind its commands, and — unless
// running in dry-run mode — execute them in order.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/stepwise-run/stepwise/internal/binder"
	"github.com/stepwise-run/stepwise/internal/executor"
	"github.com/stepwise-run/stepwise/internal/logsink"
	"github.com/stepwise-run/stepwise/internal/manifest"
	"github.com/stepwise-run/stepwise/internal/placeholder"
	"github.com/stepwise-run/stepwise/internal/registry"
)

// Options configures a single run of the engine.
type Options struct {
	// DryRun performs loading, discovery, and binding but suppresses
	// execution entirely.
	DryRun bool

	// GracePeriod is how long the executor waits for a child to exit after
	// forwarding a termination signal.
	GracePeriod time.Duration

	// TmpBase is the directory under which this run's tmp-scope root is
	// created.
	TmpBase string
}

// Run loads, binds, and (unless DryRun) executes the job manifest at path,
// emitting structured events to sink.
func Run(ctx context.Context, path string, sink logsink.Sink, opts Options) error {
	job, err := manifest.LoadJob(path)
	if err != nil {
		return err
	}

	reg, err := registry.Build(job.Tasks)
	if err != nil {
		return err
	}
	sink.TasksDiscovered(reg.Names())

	if err := binder.Bind(job, reg); err != nil {
		return err
	}

	if opts.DryRun {
		previewCommands(sink, job)
		return nil
	}

	tmpRoot := filepath.Join(opts.TmpBase, "stepwise-"+uuid.NewString())
	defer func() { _ = os.RemoveAll(tmpRoot) }()

	resolver := placeholder.NewResolver(job, tmpRoot)
	exec := executor.New(sink, resolver, opts.GracePeriod)

	return exec.Run(ctx, job)
}

// previewCommands emits one diagnostic event per bound command without
// spawning anything, using the same CommandStart/CommandSkipped events the
// executor emits at run time. Env values are reported literally, as
// declared in the manifest — placeholders are not resolved, since no
// command has executed to supply the scopes they may reference.
func previewCommands(sink logsink.Sink, job *manifest.Job) {
	total := len(job.Commands)
	for i, cmd := range job.Commands {
		rec := logsink.CommandRecord{Index: i, Total: total, Name: cmd.Name, Task: cmd.Task, Env: cmd.Env}
		if cmd.Skip {
			sink.CommandSkipped(rec)
			continue
		}
		sink.CommandStart(rec)
	}
}
