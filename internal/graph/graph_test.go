package graph

import (
	"context"
	"errors"
	"testing"
)

type state struct {
	visited []string
}

func visit(name string) NodeFunc[*state] {
	return func(_ context.Context, s *state) (*state, error) {
		s.visited = append(s.visited, name)
		return s, nil
	}
}

func TestInvokeWalksLinearGraph(t *testing.T) {
	g := New[*state]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", visit("b"))
	g.AddNode("c", visit("c"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	s, err := r.Invoke(context.Background(), &state{})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := len(s.visited); got != 3 {
		t.Fatalf("visited %d nodes, want 3", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if s.visited[i] != want {
			t.Errorf("visited[%d] = %q, want %q", i, s.visited[i], want)
		}
	}
}

func TestInvokeHaltsOnNodeError(t *testing.T) {
	boom := errors.New("boom")
	g := New[*state]()
	g.AddNode("a", visit("a"))
	g.AddNode("b", func(_ context.Context, s *state) (*state, error) {
		return s, boom
	})
	g.AddNode("c", visit("c"))
	g.SetEntryPoint("a")
	g.AddEdge("a", "b")
	g.AddEdge("b", "c")
	g.AddEdge("c", End)

	r, err := g.Compile()
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	s, err := r.Invoke(context.Background(), &state{})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	// Partial state survives so callers can inspect progress.
	if len(s.visited) != 1 || s.visited[0] != "a" {
		t.Errorf("visited = %v, want [a]", s.visited)
	}
}

func TestCompileValidation(t *testing.T) {
	t.Run("missing entry point", func(t *testing.T) {
		g := New[*state]()
		g.AddNode("a", visit("a"))
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("entry point not a node", func(t *testing.T) {
		g := New[*state]()
		g.AddNode("a", visit("a"))
		g.SetEntryPoint("nope")
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})

	t.Run("edge to unknown node", func(t *testing.T) {
		g := New[*state]()
		g.AddNode("a", visit("a"))
		g.SetEntryPoint("a")
		g.AddEdge("a", "ghost")
		if _, err := g.Compile(); err == nil {
			t.Fatal("expected error")
		}
	})
}
