package registry

import (
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/stepwise-run/stepwise/internal/manifest"
)

// Registry is a read-only, name-keyed index of tasks discovered by walking
// a job's configured search paths. It is built once per job run.
type Registry struct {
	byName map[string]*manifest.Task
	order  []string
}

// Build walks each root recursively looking for files named manifest.yml
// (case-sensitive) and loads each as a task. Roots are walked in the given
// order; within a root, directories are visited in lexicographic order,
// matching os.ReadDir's sort so discovery is deterministic across runs.
func Build(roots []string) (*Registry, error) {
	reg := &Registry{byName: make(map[string]*manifest.Task)}

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Name() != manifest.TaskManifestFile {
				return nil
			}

			task, err := manifest.LoadTask(filepath.Dir(path))
			if err != nil {
				return err
			}

			if existing, ok := reg.byName[task.Name]; ok {
				return &DuplicateTaskName{Name: task.Name, FirstPath: existing.Path, SecondPath: task.Path}
			}

			reg.byName[task.Name] = task
			reg.order = append(reg.order, task.Name)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return reg, nil
}

// Lookup returns the task registered under name, if any.
func (r *Registry) Lookup(name string) (*manifest.Task, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns all registered task names in sorted order, for diagnostics.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

// UnknownTaskError builds an UnknownTask error naming the available tasks.
func (r *Registry) UnknownTaskError(name string) error {
	return &UnknownTask{Name: name, Available: r.Names()}
}

// Len returns the number of registered tasks.
func (r *Registry) Len() int { return len(r.byName) }
