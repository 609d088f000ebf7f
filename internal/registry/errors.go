// Package registry discovers task manifests on disk and indexes them by name.
package registry

import "fmt"

// DuplicateTaskName means two task manifests under the configured search
// paths declared the same name.
type DuplicateTaskName struct {
	Name      string
	FirstPath string
	SecondPath string
}

func (e *DuplicateTaskName) Error() string {
	return fmt.Sprintf("duplicate task name %q: declared at both %s and %s", e.Name, e.FirstPath, e.SecondPath)
}

// UnknownTask means a command named a task that is not in the registry.
type UnknownTask struct {
	Name      string
	Available []string
}

func (e *UnknownTask) Error() string {
	return fmt.Sprintf("unknown task %q; available tasks: %v", e.Name, e.Available)
}
