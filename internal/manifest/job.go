package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Job is an ordered, named pipeline of commands. Once LoadJob has built it,
// the only change made to a Job is the binder setting each Command's Bound
// task; execution state lives elsewhere.
type Job struct {
	Name        string
	Description string
	Data        string
	Tasks       []string
	Env         map[string]string
	Commands    []*Command

	// BaseDir is the directory containing the job manifest file, used to
	// resolve relative paths and as the default working directory.
	BaseDir string
}

// Command is a single scheduled invocation of a task within a Job.
type Command struct {
	Name        string
	Description string
	Task        string
	Env         map[string]string
	Skip        bool

	// Bound is attached by the binder once the command's task has been
	// resolved and its env validated against the task's declared keys.
	Bound *Task
}

type jobDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Data        yaml.Node      `yaml:"data"`
	Tasks       yaml.Node      `yaml:"tasks"`
	Env         map[string]any `yaml:"env"`
	Commands    []commandDoc   `yaml:"commands"`
}

type commandDoc struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Task        string         `yaml:"task"`
	Env         map[string]any `yaml:"env"`
	Skip        bool           `yaml:"skip"`
}

// LoadJob reads and validates the job manifest at path, resolving its path
// fields against the manifest's containing directory.
func LoadJob(path string) (*Job, error) {
	var doc jobDoc
	if err := decodeStrict(path, &doc); err != nil {
		return nil, err
	}

	if doc.Name == "" {
		return nil, &SchemaViolation{Path: path, Field: "name", Msg: "required"}
	}
	if len(doc.Commands) == 0 {
		return nil, &SchemaViolation{Path: path, Field: "commands", Msg: "must be non-empty"}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &PathError{Path: path, Field: "(document)", Msg: err.Error()}
	}
	baseDir := filepath.Dir(absPath)

	job := &Job{
		Name:        doc.Name,
		Description: doc.Description,
		BaseDir:     baseDir,
	}

	dataPaths, err := stringOrList(&doc.Data)
	if err != nil {
		return nil, &SchemaViolation{Path: path, Field: "data", Msg: err.Error()}
	}
	switch len(dataPaths) {
	case 0:
		job.Data = filepath.Clean(baseDir)
	case 1:
		resolved, err := expandPath(baseDir, dataPaths[0])
		if err != nil {
			return nil, &PathError{Path: path, Field: "data", Msg: err.Error()}
		}
		job.Data = resolved
	default:
		return nil, &SchemaViolation{Path: path, Field: "data", Msg: "must be a single path, not a list"}
	}

	taskPaths, err := stringOrList(&doc.Tasks)
	if err != nil {
		return nil, &SchemaViolation{Path: path, Field: "tasks", Msg: err.Error()}
	}
	job.Tasks = make([]string, 0, len(taskPaths))
	for _, raw := range taskPaths {
		resolved, err := expandPath(baseDir, raw)
		if err != nil {
			return nil, &PathError{Path: path, Field: "tasks", Msg: err.Error()}
		}
		ok, statErr := isDir(resolved)
		if statErr != nil {
			return nil, &PathError{Path: path, Field: "tasks", Msg: fmt.Sprintf("%q does not exist", resolved)}
		}
		if !ok {
			return nil, &PathError{Path: path, Field: "tasks", Msg: fmt.Sprintf("%q is not a directory", resolved)}
		}
		job.Tasks = append(job.Tasks, resolved)
	}

	job.Env, err = coerceStringMap(doc.Env)
	if err != nil {
		return nil, &SchemaViolation{Path: path, Field: "env", Msg: err.Error()}
	}

	seenNames := make(map[string]bool, len(doc.Commands))
	job.Commands = make([]*Command, 0, len(doc.Commands))
	for i, cd := range doc.Commands {
		if cd.Task == "" {
			return nil, &SchemaViolation{Path: path, Field: fmt.Sprintf("commands[%d].task", i), Msg: "required"}
		}
		if cd.Name != "" {
			if seenNames[cd.Name] {
				return nil, &SchemaViolation{Path: path, Field: fmt.Sprintf("commands[%d].name", i), Msg: fmt.Sprintf("duplicate command name %q", cd.Name)}
			}
			seenNames[cd.Name] = true
		}

		env, err := coerceStringMap(cd.Env)
		if err != nil {
			return nil, &SchemaViolation{Path: path, Field: fmt.Sprintf("commands[%d].env", i), Msg: err.Error()}
		}

		job.Commands = append(job.Commands, &Command{
			Name:        cd.Name,
			Description: cd.Description,
			Task:        cd.Task,
			Env:         env,
			Skip:        cd.Skip,
		})
	}

	return job, nil
}

// decodeStrict reads path and strictly decodes it as YAML into v, rejecting
// unknown fields. Parse failures become MalformedManifest; unknown or
// mistyped fields become SchemaViolation.
func decodeStrict(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return &MalformedManifest{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	if err := dec.Decode(v); err != nil {
		if te, ok := err.(*yaml.TypeError); ok && len(te.Errors) > 0 {
			return &SchemaViolation{Path: path, Field: "(document)", Msg: te.Errors[0]}
		}
		return &MalformedManifest{Path: path, Err: err}
	}
	return nil
}

// stringOrList decodes a YAML node that is either a single scalar string or
// a sequence of scalar strings. A nil/zero node yields an empty slice.
func stringOrList(n *yaml.Node) ([]string, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	switch n.Kind {
	case yaml.ScalarNode:
		var s string
		if err := n.Decode(&s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	case yaml.SequenceNode:
		var list []string
		if err := n.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	default:
		return nil, fmt.Errorf("must be a string or a list of strings")
	}
}

// coerceStringMap converts a map of arbitrary YAML scalars to strings,
// accepting integers and booleans as common coercions. Any other type is
// rejected.
func coerceStringMap(m map[string]any) (map[string]string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := coerceScalar(v)
		if !ok {
			return nil, fmt.Errorf("key %q: value must be a string, integer, or boolean", k)
		}
		out[k] = s
	}
	return out, nil
}

func coerceScalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case int:
		return fmt.Sprintf("%d", t), true
	case int64:
		return fmt.Sprintf("%d", t), true
	case float64:
		// YAML decodes unsuffixed integers into int already; float64 here
		// means the document actually wrote a float, which is not one of
		// the documented coercions.
		return "", false
	default:
		return "", false
	}
}
