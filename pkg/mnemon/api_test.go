package mnemon

import (
	"context"
	"testing"

	"mnemon/internal/trainer"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(Options{StoreKind: "memory", BrainID: "test-brain"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	if err := client.Init(context.Background()); err != nil {
		t.Fatalf("init client: %v", err)
	}
	return client
}

func TestClientTeachAndInfer(t *testing.T) {
	client := newTestClient(t)

	summary, err := client.Teach(context.Background(), TeachRequest{
		Input:  "cat",
		Target: "cats",
		Repeat: 30,
	})
	if err != nil {
		t.Fatalf("teach: %v", err)
	}
	if summary.Episodes != 30 {
		t.Fatalf("expected 30 episodes, got %d", summary.Episodes)
	}
	if summary.Output != "cats" {
		t.Fatalf("expected converged teach output cats, got %q", summary.Output)
	}

	out, err := client.Infer(context.Background(), "cat")
	if err != nil {
		t.Fatalf("infer: %v", err)
	}
	if out != "cats" {
		t.Fatalf("expected learned completion cats, got %q", out)
	}
}

func TestClientTeachValidatesRequest(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.Teach(context.Background(), TeachRequest{Target: "cats"}); err == nil {
		t.Fatal("expected input validation error")
	}
	if _, err := client.Teach(context.Background(), TeachRequest{Input: "cat"}); err == nil {
		t.Fatal("expected target validation error")
	}
	if _, err := client.Infer(context.Background(), ""); err == nil {
		t.Fatal("expected empty input validation error")
	}
}

func TestClientTrainRecordsRun(t *testing.T) {
	client := newTestClient(t)

	run, err := client.Train(context.Background(), TrainRequest{
		Corpus: "inline",
		Pairs:  []trainer.Pair{{Input: "cat", Target: "cats"}, {Input: "dog", Target: "dogs"}},
		Epochs: 10,
	})
	if err != nil {
		t.Fatalf("train: %v", err)
	}
	if run.Episodes != 20 {
		t.Fatalf("expected 20 episodes, got %d", run.Episodes)
	}
	if run.BrainID != "test-brain" {
		t.Fatalf("unexpected brain id: %s", run.BrainID)
	}

	runs, err := client.Runs(context.Background())
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != run.ID {
		t.Fatalf("expected recorded run %s, got %+v", run.ID, runs)
	}
}

func TestClientSaveAndLoad(t *testing.T) {
	client := newTestClient(t)

	if _, err := client.Teach(context.Background(), TeachRequest{Input: "cat", Target: "cats", Repeat: 30}); err != nil {
		t.Fatalf("teach: %v", err)
	}
	if err := client.Save(context.Background()); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A second client on the same store starts empty; Load replaces its graph.
	fresh, err := New(Options{StoreKind: "memory", BrainID: "test-brain"})
	if err != nil {
		t.Fatalf("new fresh client: %v", err)
	}
	t.Cleanup(func() {
		_ = fresh.Close()
	})
	if err := fresh.Init(context.Background()); err != nil {
		t.Fatalf("init fresh client: %v", err)
	}
	if err := fresh.Load(context.Background()); err == nil {
		t.Fatal("expected load to fail on a store without the brain")
	}

	if err := client.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	out, err := client.Infer(context.Background(), "cat")
	if err != nil {
		t.Fatalf("infer after load: %v", err)
	}
	if out != "cats" {
		t.Fatalf("expected restored completion cats, got %q", out)
	}

	stats := client.Stats()
	if stats.Nodes == 0 || stats.Edges == 0 {
		t.Fatalf("expected populated stats after load, got %+v", stats)
	}
}
