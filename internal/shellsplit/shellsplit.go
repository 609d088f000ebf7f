// Package shellsplit tokenises a task's interpreter line using POSIX word
// splitting: quotes are respected, but no globbing and no variable
// expansion are performed (the placeholder resolver has already produced
// literal values by the time this runs).
package shellsplit

import (
	"fmt"

	"github.com/anmitsu/go-shlex"
)

// Split tokenises s as a POSIX shell word list.
func Split(s string) ([]string, error) {
	words, err := shlex.Split(s, true)
	if err != nil {
		return nil, fmt.Errorf("tokenising interpreter %q: %w", s, err)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("interpreter %q has no words", s)
	}
	return words, nil
}
