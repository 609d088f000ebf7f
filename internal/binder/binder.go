package binder

import (
	"errors"
	"fmt"

	"github.com/stepwise-run/stepwise/internal/manifest"
	"github.com/stepwise-run/stepwise/internal/registry"
)

// Bind resolves and attaches a Task to every command in job, validating that
// each command's env keys exactly match its task's declared env keys.
// Binding runs for every command regardless of its Skip flag, and for every
// command before any is spawned: a failure here prevents execution entirely.
func Bind(job *manifest.Job, reg *registry.Registry) error {
	for i, cmd := range job.Commands {
		task, ok := reg.Lookup(cmd.Task)
		if !ok {
			return reg.UnknownTaskError(cmd.Task)
		}

		if err := checkEnv(label(cmd, i), cmd, task); err != nil {
			return err
		}

		cmd.Bound = task
	}
	return nil
}

func checkEnv(name string, cmd *manifest.Command, task *manifest.Task) error {
	declared := task.EnvKeys()
	supplied := make(map[string]bool, len(cmd.Env))
	for k := range cmd.Env {
		supplied[k] = true
	}

	missing := make(map[string]bool)
	for k := range declared {
		if !supplied[k] {
			missing[k] = true
		}
	}
	unexpected := make(map[string]bool)
	for k := range supplied {
		if !declared[k] {
			unexpected[k] = true
		}
	}

	var missingErr, unexpectedErr error
	if len(missing) > 0 {
		missingErr = &MissingEnv{Command: name, Keys: sortedKeys(missing)}
	}
	if len(unexpected) > 0 {
		unexpectedErr = &UnexpectedEnv{Command: name, Keys: sortedKeys(unexpected)}
	}

	switch {
	case missingErr != nil && unexpectedErr != nil:
		return errors.Join(missingErr, unexpectedErr)
	case missingErr != nil:
		return missingErr
	case unexpectedErr != nil:
		return unexpectedErr
	default:
		return nil
	}
}

func label(cmd *manifest.Command, index int) string {
	if cmd.Name != "" {
		return cmd.Name
	}
	return fmt.Sprintf("#%d (task %s)", index, cmd.Task)
}
