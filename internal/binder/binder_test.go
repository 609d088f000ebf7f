package binder

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stepwise-run/stepwise/internal/manifest"
	"github.com/stepwise-run/stepwise/internal/registry"
)

func buildRegistry(t *testing.T, tasks ...*manifest.Task) *registry.Registry {
	t.Helper()
	root := t.TempDir()
	for _, tk := range tasks {
		dir := filepath.Join(root, tk.Name)
		require.NoError(t, writeTask(dir, tk))
	}
	reg, err := registry.Build([]string{root})
	require.NoError(t, err)
	return reg
}

func TestBind_AttachesMatchingTask(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Env:  map[string]string{"TARGET": "release"},
		Run:  manifest.Run{Command: "true"},
	})

	job := &manifest.Job{
		Commands: []*manifest.Command{
			{Name: "build", Task: "compile", Env: map[string]string{"TARGET": "debug"}},
		},
	}

	require.NoError(t, Bind(job, reg))
	require.NotNil(t, job.Commands[0].Bound)
	assert.Equal(t, "compile", job.Commands[0].Bound.Name)
}

func TestBind_UnknownTaskErrors(t *testing.T) {
	reg := buildRegistry(t)
	job := &manifest.Job{
		Commands: []*manifest.Command{{Name: "build", Task: "missing"}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	var unknown *registry.UnknownTask
	require.ErrorAs(t, err, &unknown)
}

func TestBind_MissingEnvKeyErrors(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Env:  map[string]string{"TARGET": "release"},
		Run:  manifest.Run{Command: "true"},
	})
	job := &manifest.Job{
		Commands: []*manifest.Command{{Name: "build", Task: "compile"}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	var missing *MissingEnv
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"TARGET"}, missing.Keys)
}

func TestBind_UnexpectedEnvKeyErrors(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Run:  manifest.Run{Command: "true"},
	})
	job := &manifest.Job{
		Commands: []*manifest.Command{{Name: "build", Task: "compile", Env: map[string]string{"EXTRA": "1"}}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	var unexpected *UnexpectedEnv
	require.ErrorAs(t, err, &unexpected)
	assert.Equal(t, []string{"EXTRA"}, unexpected.Keys)
}

func TestBind_MissingAndUnexpectedAreJoined(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Env:  map[string]string{"TARGET": "release"},
		Run:  manifest.Run{Command: "true"},
	})
	job := &manifest.Job{
		Commands: []*manifest.Command{{Name: "build", Task: "compile", Env: map[string]string{"EXTRA": "1"}}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	var missing *MissingEnv
	var unexpected *UnexpectedEnv
	assert.True(t, errors.As(err, &missing))
	assert.True(t, errors.As(err, &unexpected))
}

func TestBind_ValidatesSkippedCommandsToo(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Env:  map[string]string{"TARGET": "release"},
		Run:  manifest.Run{Command: "true"},
	})
	job := &manifest.Job{
		Commands: []*manifest.Command{{Name: "build", Task: "compile", Skip: true}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	var missing *MissingEnv
	require.ErrorAs(t, err, &missing)
}

func TestBind_UnnamedCommandLabelUsesIndexAndTask(t *testing.T) {
	reg := buildRegistry(t, &manifest.Task{
		Name: "compile",
		Env:  map[string]string{"TARGET": "release"},
		Run:  manifest.Run{Command: "true"},
	})
	job := &manifest.Job{
		Commands: []*manifest.Command{{Task: "compile"}},
	}

	err := Bind(job, reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#0 (task compile)")
}

// writeTask writes a task manifest for tk at dir.
func writeTask(dir string, tk *manifest.Task) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	content := "name: " + tk.Name + "\n"
	if len(tk.Env) > 0 {
		content += "env:\n"
		for k, v := range tk.Env {
			content += "  " + k + ": " + v + "\n"
		}
	}
	content += "run:\n  command: \"" + tk.Run.Command + "\"\n"
	return os.WriteFile(filepath.Join(dir, manifest.TaskManifestFile), []byte(content), 0o644)
}
