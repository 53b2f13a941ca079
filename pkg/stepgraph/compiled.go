package stepgraph

// Compiled is an immutable, executable workflow graph produced by Compile().
// It is safe for concurrent use: any number of Run() calls may share one
// Compiled value, each with its own state.
type Compiled[S any] struct {
	steps   map[string]StepFunc[S]
	edges   map[string][]string
	routers map[string]RouterFunc[S]
	entry   string
}

// Entry returns the entry step identifier.
func (c *Compiled[S]) Entry() string {
	return c.entry
}

// StepIDs returns all registered step identifiers in unspecified order.
func (c *Compiled[S]) StepIDs() []string {
	ids := make([]string, 0, len(c.steps))
	for id := range c.steps {
		ids = append(ids, id)
	}
	return ids
}

// HasStep reports whether a step is registered.
func (c *Compiled[S]) HasStep(id string) bool {
	_, ok := c.steps[id]
	return ok
}

// Successors returns the static edge targets of a step. Router targets are
// runtime-determined and not included. Returns nil for END or unknown steps.
func (c *Compiled[S]) Successors(id string) []string {
	if id == END {
		return nil
	}
	return c.edges[id]
}

// IsConditional reports whether a step routes via a RouterFunc.
func (c *Compiled[S]) IsConditional(id string) bool {
	_, ok := c.routers[id]
	return ok
}

func (c *Compiled[S]) step(id string) (StepFunc[S], bool) {
	fn, ok := c.steps[id]
	return fn, ok
}

func (c *Compiled[S]) router(id string) (RouterFunc[S], bool) {
	r, ok := c.routers[id]
	return r, ok
}
