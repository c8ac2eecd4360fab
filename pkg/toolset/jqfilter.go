package toolset

import (
	"fmt"

	"github.com/itchyny/gojq"
)

// applyJQFilter projects already-decoded JSON through a jq expression,
// the same query model gojq.Run exposes: zero or more emitted values,
// or an error value surfaced through the iterator instead of returned
// directly.
func applyJQFilter(expr string, input any) ([]any, error) {
	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jq filter: %w", err)
	}

	iter := query.Run(input)
	var out []any
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			return nil, fmt.Errorf("apply jq filter: %w", err)
		}
		out = append(out, v)
	}
	return out, nil
}
