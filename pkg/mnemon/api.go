// Package mnemon is the embedding API: one graph, one store, explicit
// teach/infer calls.
package mnemon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mnemon/internal/graph"
	"mnemon/internal/model"
	"mnemon/internal/storage"
	"mnemon/internal/trainer"
)

const defaultDBPath = "mnemon.db"

type Options struct {
	StoreKind string
	DBPath    string
	BrainID   string
	Config    graph.Config
}

type Client struct {
	store   storage.Store
	graph   *graph.Graph
	brainID string
}

type TeachRequest struct {
	Input  string
	Target string
	Repeat int
}

type TeachSummary struct {
	Output    string
	Episodes  int
	ErrorRate float64
}

type TrainRequest struct {
	Corpus string
	Pairs  []trainer.Pair
	Epochs int
	Seed   int64

	// Progress, when set, receives the smoothed error rate after each epoch.
	Progress func(epoch int, errorRate float64)
}

func New(opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	brainID := opts.BrainID
	if brainID == "" {
		brainID = "default"
	}

	store, err := storage.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:   store,
		graph:   graph.New(opts.Config),
		brainID: brainID,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// Teach runs supervised episodes and reports the graph's answer after the
// last one.
func (c *Client) Teach(_ context.Context, req TeachRequest) (TeachSummary, error) {
	if req.Input == "" {
		return TeachSummary{}, errors.New("input is required")
	}
	if req.Target == "" {
		return TeachSummary{}, errors.New("target is required")
	}
	repeat := req.Repeat
	if repeat < 1 {
		repeat = 1
	}

	var out []byte
	for i := 0; i < repeat; i++ {
		var err error
		out, err = c.graph.RunEpisode([]byte(req.Input), []byte(req.Target))
		if err != nil {
			return TeachSummary{}, err
		}
	}
	return TeachSummary{
		Output:    string(out),
		Episodes:  repeat,
		ErrorRate: c.graph.Stats().ErrorRate,
	}, nil
}

// Infer runs one unsupervised episode. It never changes the graph.
func (c *Client) Infer(_ context.Context, input string) (string, error) {
	if input == "" {
		return "", errors.New("input is required")
	}
	out, err := c.graph.RunEpisode([]byte(input), nil)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// Train runs the corpus for the requested epochs and persists the run record.
func (c *Client) Train(ctx context.Context, req TrainRequest) (model.TrainingRun, error) {
	if len(req.Pairs) == 0 {
		return model.TrainingRun{}, errors.New("at least one pair is required")
	}

	tr := trainer.Trainer{
		Epochs:   req.Epochs,
		BrainID:  c.brainID,
		Corpus:   req.Corpus,
		Seed:     req.Seed,
		Progress: req.Progress,
	}
	run, err := tr.Run(ctx, c.graph, req.Pairs)
	if err != nil {
		return model.TrainingRun{}, err
	}

	run.SchemaVersion = storage.CurrentSchemaVersion
	run.CodecVersion = storage.CurrentCodecVersion
	if err := c.store.SaveTrainingRun(ctx, run); err != nil {
		return model.TrainingRun{}, fmt.Errorf("save training run: %w", err)
	}
	return run, nil
}

// Save snapshots the graph under the client's brain id.
func (c *Client) Save(ctx context.Context) error {
	snap := c.graph.Snapshot()
	snap.ID = c.brainID
	snap.SavedAt = time.Now().UTC()
	snap.SchemaVersion = storage.CurrentSchemaVersion
	snap.CodecVersion = storage.CurrentCodecVersion
	return c.store.SaveBrain(ctx, snap)
}

// Load replaces the graph with the persisted snapshot for the brain id.
func (c *Client) Load(ctx context.Context) error {
	snap, ok, err := c.store.GetBrain(ctx, c.brainID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("brain not found: %s", c.brainID)
	}
	return c.graph.Restore(snap)
}

func (c *Client) Runs(ctx context.Context) ([]model.TrainingRun, error) {
	return c.store.ListTrainingRuns(ctx)
}

func (c *Client) Stats() graph.Summary {
	return c.graph.Stats()
}
