package stepgraph

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for step-state workflows. Construct it from a
// single goroutine, then Compile() into an immutable Compiled graph that can
// be shared and run concurrently.
//
// Builder methods panic on structurally invalid input (empty identifiers,
// duplicates, nil functions). Edge targets are validated later, at compile
// time, so edges may be added in any order.
type Graph[S any] struct {
	mu      sync.RWMutex
	steps   map[string]StepFunc[S]
	edges   map[string][]string
	routers map[string]RouterFunc[S]
	entry   string
}

// NewGraph creates an empty graph builder for state type S.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		steps:   make(map[string]StepFunc[S]),
		edges:   make(map[string][]string),
		routers: make(map[string]RouterFunc[S]),
	}
}

// AddStep registers a named step. Returns the graph for chaining.
//
// Panics if id is empty, reserved (END), contains whitespace, duplicates an
// existing step, or fn is nil.
func (g *Graph[S]) AddStep(id string, fn StepFunc[S]) *Graph[S] {
	if id == "" {
		panic("stepgraph: step ID cannot be empty")
	}
	if lower := strings.ToLower(id); lower == "end" || lower == END {
		panic("stepgraph: step ID cannot be the reserved terminal 'END'")
	}
	if strings.ContainsAny(id, " \t\n\r") {
		panic("stepgraph: step ID cannot contain whitespace")
	}
	if fn == nil {
		panic("stepgraph: step function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.steps[id]; exists {
		panic(fmt.Sprintf("stepgraph: duplicate step ID: %s", id))
	}
	g.steps[id] = fn
	return g
}

// AddEdge adds a static edge. The target may be a step ID or END.
// Returns the graph for chaining.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge attaches a router to a step. At runtime the router
// picks the next step from the state. When a step has both a router and
// static edges, the router wins.
//
// Panics if router is nil.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S] {
	if router == nil {
		panic("stepgraph: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.routers[from] = router
	return g
}

// SetEntry designates the entry step. Must be called before Compile().
// Returns the graph for chaining.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entry = id
	return g
}
