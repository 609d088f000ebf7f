// Package binder attaches a resolved task to each job command and validates
// that the command's supplied env exactly matches the task's declared env.
package binder

import (
	"fmt"
	"sort"
)

// MissingEnv reports env keys the task declares but the command did not supply.
type MissingEnv struct {
	Command string
	Keys    []string
}

func (e *MissingEnv) Error() string {
	return fmt.Sprintf("command %q: missing required env keys: %v", e.Command, e.Keys)
}

// UnexpectedEnv reports env keys the command supplied that the task does not declare.
type UnexpectedEnv struct {
	Command string
	Keys    []string
}

func (e *UnexpectedEnv) Error() string {
	return fmt.Sprintf("command %q: unexpected env keys: %v", e.Command, e.Keys)
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
