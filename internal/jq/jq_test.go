package jq

import (
	"context"
	"testing"
)

type recipe struct {
	Name string   `json:"name"`
	Tags []string `json:"tags"`
}

func TestRunOnStructs(t *testing.T) {
	q, err := Compile(".[] | .name")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}

	got, err := q.Run(context.Background(), []recipe{{Name: "Soup"}, {Name: "Pie"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(got) != 2 || got[0] != "Soup" || got[1] != "Pie" {
		t.Errorf("unexpected results: %v", got)
	}
}

func TestRunNoResults(t *testing.T) {
	q, err := Compile("empty")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	got, err := q.Run(context.Background(), map[string]any{"a": 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no results, got %v", got)
	}
}

func TestCompileError(t *testing.T) {
	if _, err := Compile(".[ | bad"); err == nil {
		t.Error("expected parse error")
	}
}

func TestRunError(t *testing.T) {
	q, err := Compile(".name | tonumber")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	if _, err := q.Run(context.Background(), recipe{Name: "not a number"}); err == nil {
		t.Error("expected runtime error")
	}
}

func TestRunCancelled(t *testing.T) {
	q, err := Compile("range(1e9)")
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := q.Run(ctx, nil); err == nil {
		t.Error("expected cancellation error")
	}
}
