// Package params parses the `key=value;key=value` parameter strings accepted on the command line.
package params

import (
	"fmt"
	"strings"

	"github.com/funcinfra/pipelinectl/internal/errkind"
)

const (
	pairSeparator  = ";"
	valueSeparator = "="
)

// ParseError is returned when a segment of a parameter string is not a valid key=value pair.
type ParseError struct {
	Segment string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid parameter %q: expected exactly one %q", e.Segment, valueSeparator)
}

// Is reports a ParseError as a validation error.
func (e *ParseError) Is(target error) bool {
	return target == errkind.ErrValidation
}

// Parse parses s into a map. Empty segments are skipped. Values that are exactly "true" or "false" are returned as
// booleans, every other value is kept as a string.
func Parse(s string) (map[string]any, error) {
	out := map[string]any{}

	for _, segment := range strings.Split(s, pairSeparator) {
		if segment == "" {
			continue
		}

		kv := strings.Split(segment, valueSeparator)
		if len(kv) != 2 || kv[0] == "" {
			return nil, &ParseError{Segment: segment}
		}

		out[kv[0]] = coerce(kv[1])
	}

	return out, nil
}

// ParseARM is like Parse, but wraps every value into the {"value": v} envelope used by ARM template parameters.
func ParseARM(s string) (map[string]any, error) {
	pp, err := Parse(s)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(pp))
	for k, v := range pp {
		out[k] = map[string]any{"value": v}
	}

	return out, nil
}

func coerce(v string) any {
	switch v {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}
