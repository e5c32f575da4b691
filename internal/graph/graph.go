// Package graph is a minimal state-graph runner: named nodes transform a
// shared state value and linear or conditional edges decide what runs next.
package graph

import (
	"context"
	"fmt"
)

// End is the terminal node name.
const End = "__end__"

// NodeFunc transforms the state. Returning an error halts the walk.
type NodeFunc[S any] func(ctx context.Context, state S) (S, error)

// Graph is a builder for a compiled Runnable.
type Graph[S any] struct {
	nodes map[string]NodeFunc[S]
	edges map[string]string
	entry string
}

func New[S any]() *Graph[S] {
	return &Graph[S]{
		nodes: make(map[string]NodeFunc[S]),
		edges: make(map[string]string),
	}
}

// AddNode registers a named node. Re-registering a name replaces it.
func (g *Graph[S]) AddNode(name string, fn NodeFunc[S]) *Graph[S] {
	g.nodes[name] = fn
	return g
}

// AddEdge wires from -> to. Use End as the target to terminate.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.edges[from] = to
	return g
}

// SetEntryPoint names the node where Invoke starts.
func (g *Graph[S]) SetEntryPoint(name string) *Graph[S] {
	g.entry = name
	return g
}

// Compile validates the graph and returns a Runnable.
func (g *Graph[S]) Compile() (*Runnable[S], error) {
	if g.entry == "" {
		return nil, fmt.Errorf("graph: no entry point set")
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return nil, fmt.Errorf("graph: entry point %q is not a node", g.entry)
	}
	for from, to := range g.edges {
		if _, ok := g.nodes[from]; !ok {
			return nil, fmt.Errorf("graph: edge from unknown node %q", from)
		}
		if to != End {
			if _, ok := g.nodes[to]; !ok {
				return nil, fmt.Errorf("graph: edge to unknown node %q", to)
			}
		}
	}
	return &Runnable[S]{nodes: g.nodes, edges: g.edges, entry: g.entry}, nil
}

// Runnable is a compiled graph.
type Runnable[S any] struct {
	nodes map[string]NodeFunc[S]
	edges map[string]string
	entry string
}

// Invoke walks the graph from the entry point until it reaches End or a
// node without an outgoing edge. The state returned by a failing node is
// returned alongside the error so callers can inspect partial progress.
func (r *Runnable[S]) Invoke(ctx context.Context, state S) (S, error) {
	current := r.entry
	for current != End {
		fn, ok := r.nodes[current]
		if !ok {
			return state, fmt.Errorf("graph: unknown node %q", current)
		}
		var err error
		state, err = fn(ctx, state)
		if err != nil {
			return state, err
		}
		next, ok := r.edges[current]
		if !ok {
			break
		}
		current = next
	}
	return state, nil
}
