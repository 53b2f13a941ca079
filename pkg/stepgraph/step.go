package stepgraph

// END is the terminal step identifier. Use it as an edge target or router
// result to finish the run.
const END = "__end__"

// StepFunc is the signature of every step. A step receives the execution
// context and the current state value, and returns the replacement state.
//
// State is passed by value: a step builds and returns a new value rather
// than mutating shared memory. This keeps exactly one logical owner of the
// state at any point in a run.
type StepFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc decides the next step identifier from the current state.
// Routers must be pure: no I/O, no side effects. Return a registered step
// identifier or END.
//
// Returning an empty string or an unknown identifier fails the run with a
// RouterError.
type RouterFunc[S any] func(ctx Context, state S) string
