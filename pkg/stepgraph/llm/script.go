package llm

import (
	"context"
	"fmt"
	"sync"
)

// ScriptedClient replays a fixed sequence of responses. It backs the
// offline demo mode and makes workflow tests deterministic: the same seed
// conversation always visits the same steps in the same order.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []Response
	next      int

	// Requests records every request received, in order.
	Requests []Request
}

// NewScriptedClient creates a client that returns the given responses in
// order.
func NewScriptedClient(responses ...Response) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// Complete implements Client. Returns an error once the script is
// exhausted.
func (s *ScriptedClient) Complete(_ context.Context, req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Requests = append(s.Requests, req)
	if s.next >= len(s.responses) {
		return Response{}, fmt.Errorf("scripted client exhausted after %d responses", len(s.responses))
	}
	resp := s.responses[s.next]
	s.next++
	return resp, nil
}

// Remaining returns how many scripted responses are left.
func (s *ScriptedClient) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.responses) - s.next
}
