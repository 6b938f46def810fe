package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// NodeRecord captures one existing node. Activation is transient and reset
// at the start of every episode, so only the adaptive threshold persists.
type NodeRecord struct {
	ID        int     `json:"id"`
	Threshold float64 `json:"threshold"`
}

// EdgeRecord captures one directed learned transition.
type EdgeRecord struct {
	From         int     `json:"from"`
	To           int     `json:"to"`
	Weight       float64 `json:"weight"`
	UseCount     int     `json:"use_count"`
	SuccessCount float64 `json:"success_count"`
}

// PredictionRecord is one pattern-to-node prediction weight.
type PredictionRecord struct {
	Node   int     `json:"node"`
	Weight float64 `json:"weight"`
}

// PatternRecord captures one sequence template and its learned predictions.
type PatternRecord struct {
	Template           []int              `json:"template"`
	Strength           float64            `json:"strength"`
	Threshold          float64            `json:"threshold"`
	ChainDepth         int                `json:"chain_depth"`
	AccumulatedMeaning float64            `json:"accumulated_meaning"`
	Predictions        []PredictionRecord `json:"predictions,omitempty"`
	PatternPredictions []int              `json:"pattern_predictions,omitempty"`
}

// StateRecord captures the adaptive coefficients the self-tuner maintains.
type StateRecord struct {
	Step              int     `json:"step"`
	AvgActivation     float64 `json:"avg_activation"`
	AvgThreshold      float64 `json:"avg_threshold"`
	LearningRate      float64 `json:"learning_rate"`
	ErrorRate         float64 `json:"error_rate"`
	LoopPressure      float64 `json:"loop_pressure"`
	OutputVariance    float64 `json:"output_variance"`
	DiversityPressure float64 `json:"diversity_pressure"`
	RecentOutputs     []int   `json:"recent_outputs,omitempty"`
}

// BrainSnapshot is the complete durable form of one graph: structure,
// learned weights, and adaptive state.
type BrainSnapshot struct {
	VersionedRecord
	ID       string          `json:"id"`
	SavedAt  time.Time       `json:"saved_at"`
	State    StateRecord     `json:"state"`
	Nodes    []NodeRecord    `json:"nodes"`
	Edges    []EdgeRecord    `json:"edges"`
	Patterns []PatternRecord `json:"patterns"`
}

// TrainingRun summarizes one pass of a trainer over a corpus.
type TrainingRun struct {
	VersionedRecord
	ID             string    `json:"id"`
	BrainID        string    `json:"brain_id"`
	Corpus         string    `json:"corpus"`
	Pairs          int       `json:"pairs"`
	Epochs         int       `json:"epochs"`
	Episodes       int       `json:"episodes"`
	FinalErrorRate float64   `json:"final_error_rate"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at"`
}
