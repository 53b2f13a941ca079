// Package stepgraph implements a small step-state workflow engine for
// LLM-driven agents.
//
// A workflow is a set of named steps connected by edges. Each step is a
// function that receives the current state value and returns the next one.
// Conditional edges attach a pure routing function that picks the next step
// from the state; everything else is a static edge. The run loop is the only
// sequencing authority: steps never invoke each other directly.
//
// Build a graph with NewGraph, compile it once, then run it any number of
// times. Each run owns its state exclusively; there is no shared mutable
// state between runs.
//
//	g := stepgraph.NewGraph[MyState]().
//	    AddStep("parse", parse).
//	    AddStep("lookup", lookup).
//	    AddEdge("parse", "lookup").
//	    AddEdge("lookup", stepgraph.END).
//	    SetEntry("parse")
//
//	compiled, err := g.Compile()
//	if err != nil {
//	    return err
//	}
//	final, err := compiled.Run(stepgraph.NewContext(ctx), initial)
package stepgraph
