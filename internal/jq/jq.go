// Package jq filters command output with jq expressions.
package jq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/itchyny/gojq"
)

// Query is a compiled jq expression.
type Query struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles expression.
func Compile(expression string) (*Query, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("jq compilation failed: %w", err)
	}
	return &Query{expr: expression, code: code}, nil
}

// Run evaluates the query against v and returns every result. v may be any
// JSON-marshalable value; it is converted to plain JSON types first.
func (q *Query) Run(ctx context.Context, v any) ([]any, error) {
	input, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := q.code.RunWithContext(ctx, input)
	for {
		out, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := out.(error); isErr {
			if haltErr, ok := err.(*gojq.HaltError); ok && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq %s: %w", q.expr, err)
		}
		results = append(results, out)
	}
	return results, nil
}

func toJSONValue(v any) (any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode jq input: %w", err)
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode jq input: %w", err)
	}
	return out, nil
}
