package stepgraph

import (
	"errors"
	"fmt"
	"log/slog"
)

// Compile validates the graph and returns an immutable, runnable Compiled
// graph. Validation failures are joined into one error.
//
// Checks, in order:
//  1. entry step is set
//  2. entry step exists
//  3. every edge source and target references a known step (or END)
//  4. END is reachable from the entry
//
// Steps unreachable from the entry are logged as warnings but do not fail
// compilation: routers can jump to any registered step.
func (g *Graph[S]) Compile() (*Compiled[S], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error

	if g.entry == "" {
		errs = append(errs, ErrNoEntry)
	} else if _, ok := g.steps[g.entry]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entry))
	}

	for from, targets := range g.edges {
		if from != END {
			if _, ok := g.steps[from]; !ok {
				if _, routed := g.routers[from]; !routed {
					errs = append(errs, fmt.Errorf("%w: edge source %q", ErrStepNotFound, from))
				}
			}
		}
		for _, to := range targets {
			if to == END {
				continue
			}
			if _, ok := g.steps[to]; !ok {
				errs = append(errs, fmt.Errorf("%w: edge target %q", ErrStepNotFound, to))
			}
		}
	}

	for from := range g.routers {
		if _, ok := g.steps[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: conditional edge source %q", ErrStepNotFound, from))
		}
	}

	if _, ok := g.steps[g.entry]; ok && !g.endReachable() {
		errs = append(errs, ErrNoPathToEnd)
	}

	g.warnUnreachable()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return g.freeze(), nil
}

// endReachable reports whether END can be reached from the entry step.
// Steps with routers are assumed to be able to reach END, since a router
// may return it at runtime.
func (g *Graph[S]) endReachable() bool {
	canEnd := map[string]bool{END: true}
	for id := range g.routers {
		canEnd[id] = true
	}

	for changed := true; changed; {
		changed = false
		for from, targets := range g.edges {
			if canEnd[from] {
				continue
			}
			for _, to := range targets {
				if canEnd[to] {
					canEnd[from] = true
					changed = true
					break
				}
			}
		}
	}
	return canEnd[g.entry]
}

// warnUnreachable logs steps that static edges alone cannot reach. A step
// with a router counts as reaching every step, since the router's targets
// are unknown until runtime.
func (g *Graph[S]) warnUnreachable() {
	if g.entry == "" {
		return
	}

	reachable := map[string]bool{g.entry: true}
	queue := []string{g.entry}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if _, routed := g.routers[current]; routed {
			for id := range g.steps {
				if !reachable[id] {
					reachable[id] = true
					queue = append(queue, id)
				}
			}
			continue
		}
		for _, to := range g.edges[current] {
			if to != END && !reachable[to] {
				reachable[to] = true
				queue = append(queue, to)
			}
		}
	}

	for id := range g.steps {
		if !reachable[id] {
			slog.Warn("step is unreachable from entry", "step_id", id)
		}
	}
}

// freeze copies the builder contents into an immutable Compiled graph.
func (g *Graph[S]) freeze() *Compiled[S] {
	steps := make(map[string]StepFunc[S], len(g.steps))
	for id, fn := range g.steps {
		steps[id] = fn
	}

	edges := make(map[string][]string, len(g.edges))
	for from, targets := range g.edges {
		edges[from] = append([]string(nil), targets...)
	}

	routers := make(map[string]RouterFunc[S], len(g.routers))
	for from, r := range g.routers {
		routers[from] = r
	}

	return &Compiled[S]{
		steps:   steps,
		edges:   edges,
		routers: routers,
		entry:   g.entry,
	}
}
