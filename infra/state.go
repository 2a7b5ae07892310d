package infra

import (
	"context"
	"sync"

	"github.com/Tsinling0525/rivulet-nautobot/model"
	"github.com/Tsinling0525/rivulet-nautobot/plugin"
)

// MemState keeps node state per execution in memory.
type MemState struct {
	mu sync.RWMutex
	m  map[string]map[model.ID]map[string]any
}

func NewMemState() *MemState { return &MemState{m: map[string]map[model.ID]map[string]any{}} }

func (s *MemState) SaveNodeState(ctx context.Context, execID string, nodeID model.ID, state map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[execID]; !ok {
		s.m[execID] = map[model.ID]map[string]any{}
	}
	s.m[execID][nodeID] = state
	return nil
}

func (s *MemState) LoadNodeState(ctx context.Context, execID string, nodeID model.ID) (map[string]any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.m[execID]; ok {
		if st, ok := e[nodeID]; ok {
			return st, nil
		}
	}
	return map[string]any{}, nil
}

// Execution returns the state of every node recorded for execID.
func (s *MemState) Execution(execID string) map[model.ID]map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[model.ID]map[string]any, len(s.m[execID]))
	for id, st := range s.m[execID] {
		out[id] = st
	}
	return out
}

var _ plugin.StateStore = (*MemState)(nil)
