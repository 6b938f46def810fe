package storage

import (
	"encoding/json"
	"errors"

	"mnemon/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeBrain(s model.BrainSnapshot) ([]byte, error) {
	return json.Marshal(s)
}

func DecodeBrain(data []byte) (model.BrainSnapshot, error) {
	var snapshot model.BrainSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return model.BrainSnapshot{}, err
	}
	if err := checkVersion(snapshot.VersionedRecord); err != nil {
		return model.BrainSnapshot{}, err
	}
	return snapshot, nil
}

func EncodeTrainingRun(r model.TrainingRun) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeTrainingRun(data []byte) (model.TrainingRun, error) {
	var run model.TrainingRun
	if err := json.Unmarshal(data, &run); err != nil {
		return model.TrainingRun{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.TrainingRun{}, err
	}
	return run, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
