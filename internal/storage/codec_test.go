package storage

import (
	"errors"
	"reflect"
	"testing"

	"mnemon/internal/model"
)

func TestBrainCodecRoundTrip(t *testing.T) {
	input := model.BrainSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "brain-1",
		State: model.StateRecord{
			Step:          42,
			ErrorRate:     0.125,
			LoopPressure:  0.9,
			RecentOutputs: []int{'c', 'a', 't', 's'},
		},
		Nodes: []model.NodeRecord{{ID: 'c', Threshold: 0.08}},
		Edges: []model.EdgeRecord{{From: 't', To: 's', Weight: 0.95, UseCount: 60, SuccessCount: 29}},
		Patterns: []model.PatternRecord{{
			Template:    []int{256, 'a', 't'},
			Strength:    0.5,
			ChainDepth:  1,
			Predictions: []model.PredictionRecord{{Node: 's', Weight: 1}},
		}},
	}

	encoded, err := EncodeBrain(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeBrain(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestBrainCodecVersionMismatch(t *testing.T) {
	input := model.BrainSnapshot{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion + 1},
		ID:              "brain-1",
	}
	encoded, err := EncodeBrain(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeBrain(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}

func TestTrainingRunCodecRoundTrip(t *testing.T) {
	input := model.TrainingRun{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
		BrainID:         "brain-1",
		Corpus:          "pairs.tsv",
		Pairs:           12,
		Epochs:          3,
		Episodes:        36,
		FinalErrorRate:  0.05,
	}
	encoded, err := EncodeTrainingRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTrainingRun(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(decoded, input) {
		t.Fatalf("roundtrip mismatch\nactual=%+v\nexpected=%+v", decoded, input)
	}
}

func TestTrainingRunCodecVersionMismatch(t *testing.T) {
	input := model.TrainingRun{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion + 1, CodecVersion: CurrentCodecVersion},
		ID:              "run-1",
	}
	encoded, err := EncodeTrainingRun(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err = DecodeTrainingRun(encoded)
	if !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got: %v", err)
	}
}
