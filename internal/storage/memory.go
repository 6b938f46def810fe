package storage

import (
	"context"
	"sort"
	"sync"

	"mnemon/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	brains      map[string]model.BrainSnapshot
	runs        map[string]model.TrainingRun
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.brains = make(map[string]model.BrainSnapshot)
	s.runs = make(map[string]model.TrainingRun)
	return nil
}

func (s *MemoryStore) SaveBrain(_ context.Context, snapshot model.BrainSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.brains[snapshot.ID] = copyBrain(snapshot)
	return nil
}

func (s *MemoryStore) GetBrain(_ context.Context, id string) (model.BrainSnapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.brains[id]
	if !ok {
		return model.BrainSnapshot{}, false, nil
	}
	return copyBrain(snapshot), true, nil
}

func (s *MemoryStore) SaveTrainingRun(_ context.Context, run model.TrainingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs[run.ID] = run
	return nil
}

func (s *MemoryStore) GetTrainingRun(_ context.Context, id string) (model.TrainingRun, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, ok := s.runs[id]
	return run, ok, nil
}

func (s *MemoryStore) ListTrainingRuns(_ context.Context) ([]model.TrainingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]model.TrainingRun, 0, len(s.runs))
	for _, run := range s.runs {
		runs = append(runs, run)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].StartedAt.Before(runs[j].StartedAt) })
	return runs, nil
}

func copyBrain(snapshot model.BrainSnapshot) model.BrainSnapshot {
	copied := snapshot
	copied.Nodes = append([]model.NodeRecord(nil), snapshot.Nodes...)
	copied.Edges = append([]model.EdgeRecord(nil), snapshot.Edges...)
	copied.Patterns = make([]model.PatternRecord, 0, len(snapshot.Patterns))
	for _, p := range snapshot.Patterns {
		cp := p
		cp.Template = append([]int(nil), p.Template...)
		cp.Predictions = append([]model.PredictionRecord(nil), p.Predictions...)
		cp.PatternPredictions = append([]int(nil), p.PatternPredictions...)
		copied.Patterns = append(copied.Patterns, cp)
	}
	copied.State.RecentOutputs = append([]int(nil), snapshot.State.RecentOutputs...)
	return copied
}
