package manifest

import (
	"fmt"
	"path/filepath"
)

// Task is a reusable executable template. Name is unique across a registry;
// Env declares the required variable names (its values are documentation,
// never defaults).
type Task struct {
	Name        string
	Path        string
	Description string
	Env         map[string]string
	Run         Run
}

// Run describes how a task's program is invoked. Exactly one of the two
// forms is populated: Interpreter+Script (inline), or Command.
type Run struct {
	Interpreter string
	Script      string
	Command     string
}

// Inline reports whether this is the interpreter+script form.
func (r Run) Inline() bool { return r.Command == "" }

type taskDoc struct {
	Name        string            `yaml:"name"`
	Description string            `yaml:"description"`
	Env         map[string]string `yaml:"env"`
	Run         runDoc            `yaml:"run"`
}

type runDoc struct {
	Interpreter string `yaml:"interpreter"`
	Script      string `yaml:"script"`
	Command     string `yaml:"command"`
}

// TaskManifestFile is the fixed filename the registry looks for while
// walking task search paths.
const TaskManifestFile = "manifest.yml"

// LoadTask reads and validates the task manifest manifest.yml inside dir.
func LoadTask(dir string) (*Task, error) {
	path := filepath.Join(dir, TaskManifestFile)

	var doc taskDoc
	if err := decodeStrict(path, &doc); err != nil {
		return nil, err
	}

	if doc.Name == "" {
		return nil, &SchemaViolation{Path: path, Field: "name", Msg: "required"}
	}

	hasInline := doc.Run.Interpreter != "" || doc.Run.Script != ""
	hasCommand := doc.Run.Command != ""

	switch {
	case hasInline && hasCommand:
		return nil, &SchemaViolation{Path: path, Field: "run", Msg: "must be exactly one of {interpreter,script} or {command}, got both"}
	case hasInline:
		if doc.Run.Interpreter == "" {
			return nil, &SchemaViolation{Path: path, Field: "run.interpreter", Msg: "required when run.script is set"}
		}
		if doc.Run.Script == "" {
			return nil, &SchemaViolation{Path: path, Field: "run.script", Msg: "required when run.interpreter is set"}
		}
	case hasCommand:
		// nothing further to check
	default:
		return nil, &SchemaViolation{Path: path, Field: "run", Msg: "must set either {interpreter,script} or {command}"}
	}

	return &Task{
		Name:        doc.Name,
		Path:        dir,
		Description: doc.Description,
		Env:         doc.Env,
		Run: Run{
			Interpreter: doc.Run.Interpreter,
			Script:      doc.Run.Script,
			Command:     doc.Run.Command,
		},
	}, nil
}

// EnvKeys returns the task's declared environment variable names.
func (t *Task) EnvKeys() map[string]bool {
	keys := make(map[string]bool, len(t.Env))
	for k := range t.Env {
		keys[k] = true
	}
	return keys
}

// String formats the task as "name (path)" for diagnostics.
func (t *Task) String() string {
	return fmt.Sprintf("%s (%s)", t.Name, t.Path)
}
