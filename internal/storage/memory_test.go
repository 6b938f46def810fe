package storage

import (
	"context"
	"testing"
	"time"

	"mnemon/internal/model"
)

func TestMemoryStoreBrainRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	input := model.BrainSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "brain-1",
		State:           model.StateRecord{ErrorRate: 0.25, LoopPressure: 0.1},
		Nodes:           []model.NodeRecord{{ID: 'a', Threshold: 0.1}},
		Edges:           []model.EdgeRecord{{From: 'a', To: 'b', Weight: 0.7, UseCount: 3}},
		Patterns: []model.PatternRecord{{
			Template:    []int{'a', 't'},
			Strength:    1,
			Predictions: []model.PredictionRecord{{Node: 's', Weight: 1}},
		}},
	}
	if err := store.SaveBrain(ctx, input); err != nil {
		t.Fatalf("save brain: %v", err)
	}

	output, ok, err := store.GetBrain(ctx, "brain-1")
	if err != nil {
		t.Fatalf("get brain: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted brain")
	}
	if len(output.Edges) != 1 || output.Edges[0].Weight != 0.7 {
		t.Fatalf("unexpected brain: %+v", output)
	}

	// Stored copy must be insulated from caller mutation.
	input.Edges[0].Weight = 0
	reread, _, err := store.GetBrain(ctx, "brain-1")
	if err != nil {
		t.Fatalf("reread brain: %v", err)
	}
	if reread.Edges[0].Weight != 0.7 {
		t.Fatalf("stored brain aliased caller slice: %+v", reread.Edges)
	}
}

func TestMemoryStoreBrainAbsence(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	_, ok, err := store.GetBrain(ctx, "missing")
	if err != nil {
		t.Fatalf("get brain: %v", err)
	}
	if ok {
		t.Fatal("expected absence for unknown brain id")
	}
}

func TestMemoryStoreTrainingRunsListedInOrder(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-b", "run-a", "run-c"} {
		run := model.TrainingRun{
			VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
			ID:              id,
			Episodes:        10 * (i + 1),
			StartedAt:       base.Add(time.Duration(i) * time.Minute),
		}
		if err := store.SaveTrainingRun(ctx, run); err != nil {
			t.Fatalf("save run %s: %v", id, err)
		}
	}

	runs, err := store.ListTrainingRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	if runs[0].ID != "run-b" || runs[2].ID != "run-c" {
		t.Fatalf("runs out of start order: %+v", runs)
	}

	run, ok, err := store.GetTrainingRun(ctx, "run-a")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok || run.Episodes != 20 {
		t.Fatalf("unexpected run: ok=%t %+v", ok, run)
	}
}
