package storage

import (
	"context"

	"mnemon/internal/model"
)

// Store persists brain snapshots and training run summaries.
type Store interface {
	Init(ctx context.Context) error
	SaveBrain(ctx context.Context, snapshot model.BrainSnapshot) error
	GetBrain(ctx context.Context, id string) (model.BrainSnapshot, bool, error)
	SaveTrainingRun(ctx context.Context, run model.TrainingRun) error
	GetTrainingRun(ctx context.Context, id string) (model.TrainingRun, bool, error)
	ListTrainingRuns(ctx context.Context) ([]model.TrainingRun, error)
}
