package graph

// Config collects every tunable coefficient of the engine. Zero values are
// replaced with defaults by withDefaults, so callers can override a subset.
type Config struct {
	// Injection and thresholds.
	InjectionActivation float64 // activation assigned to input nodes at episode start
	ActivationDecay     float64 // per-step multiplicative decay of all activation
	InitialThreshold    float64 // firing threshold for freshly created nodes and patterns
	ThresholdAdaptRate  float64 // per-episode drift of thresholds toward average activation
	MinThreshold        float64 // floor below which thresholds never adapt

	// Edge learning.
	LearningRate       float64 // base delta for createOrStrengthen
	EdgeFloorWeight    float64 // weight assigned to a newly created edge
	EdgeFailureDecay   float64 // multiplicative decay of success count on a wrong outcome
	EdgeUsageWeight    float64 // contribution of log1p(use count) to the edge score
	EdgePruneFloor     float64 // weight below which PruneWeakEdges removes an edge
	MaxEdgesPerNode    int     // adjacency capacity per source node
	TransferGain       float64 // scale applied to activation moved across an edge per step

	// Patterns.
	MaxPatterns              int     // pattern table capacity
	MaxPatternLength         int     // longest template created by the learner
	MaxPredictionsPerPattern int     // prediction slots per pattern, at most 64
	PatternRefireCooldown    int     // steps before a fired prediction may fire again
	PatternGain              float64 // scale applied to prediction transfers
	PatternMatchBoost        float64 // activation granted to a pattern when it matches
	PatternPruneFloor        float64 // strength below which PrunePatterns removes a pattern
	MeaningDecay             float64 // per-failure decay factor applied to accumulated meaning
	MeaningAccrualDamp       float64 // error-rate damping of meaning accrual

	// Episode shape.
	StepsPerInputByte   int     // propagation step budget per input byte
	MinPropagationSteps int     // lower clamp of the step budget
	MaxPropagationSteps int     // upper clamp of the step budget
	OutputGrowthGain    float64 // extra output length allowed per unit of error rate
	MaxOutputSlack      int     // output bytes allowed beyond the input length

	// Selection.
	EchoBoost         float64 // score multiplier favoring the input byte at the current position
	SelectRefractory  float64 // activation retained by a node after it is emitted
	NoveltyGain       float64 // score multiplier per unit of diversity pressure
	ErrorScoreGain    float64 // edge-score selectivity per unit of error rate

	// Self-tuning.
	ErrorSmoothing    float64 // weight of the previous error rate in the smoothed update
	LoopPressureRise  float64 // loop pressure assigned when a short cycle is detected
	LoopPressureDecay float64 // multiplicative decay of loop pressure otherwise
	VarianceWindow    int     // recent outputs considered for output variance
	RecentOutputs     int     // capacity of the recent-output ring
}

// DefaultConfig returns the coefficients the engine ships with.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.InjectionActivation <= 0 {
		c.InjectionActivation = 0.8
	}
	if c.ActivationDecay <= 0 {
		c.ActivationDecay = 0.7
	}
	if c.InitialThreshold <= 0 {
		c.InitialThreshold = 0.1
	}
	if c.ThresholdAdaptRate <= 0 {
		c.ThresholdAdaptRate = 0.05
	}
	if c.MinThreshold <= 0 {
		c.MinThreshold = 0.02
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.3
	}
	if c.EdgeFloorWeight <= 0 {
		c.EdgeFloorWeight = 0.01
	}
	if c.EdgeFailureDecay <= 0 {
		c.EdgeFailureDecay = 0.7
	}
	if c.EdgeUsageWeight <= 0 {
		c.EdgeUsageWeight = 0.1
	}
	if c.EdgePruneFloor <= 0 {
		c.EdgePruneFloor = 0.001
	}
	if c.MaxEdgesPerNode <= 0 {
		c.MaxEdgesPerNode = 64
	}
	if c.TransferGain <= 0 {
		c.TransferGain = 0.5
	}
	if c.MaxPatterns <= 0 {
		c.MaxPatterns = 512
	}
	if c.MaxPatternLength <= 0 {
		c.MaxPatternLength = 8
	}
	if c.MaxPredictionsPerPattern <= 0 || c.MaxPredictionsPerPattern > 64 {
		c.MaxPredictionsPerPattern = 16
	}
	if c.PatternRefireCooldown <= 0 {
		c.PatternRefireCooldown = 4
	}
	if c.PatternGain <= 0 {
		c.PatternGain = 6.0
	}
	if c.PatternMatchBoost <= 0 {
		c.PatternMatchBoost = 0.4
	}
	if c.PatternPruneFloor <= 0 {
		c.PatternPruneFloor = 0.002
	}
	if c.MeaningDecay <= 0 {
		c.MeaningDecay = 0.1
	}
	if c.MeaningAccrualDamp <= 0 {
		c.MeaningAccrualDamp = 0.5
	}
	if c.StepsPerInputByte <= 0 {
		c.StepsPerInputByte = 3
	}
	if c.MinPropagationSteps <= 0 {
		c.MinPropagationSteps = 20
	}
	if c.MaxPropagationSteps <= 0 {
		c.MaxPropagationSteps = 200
	}
	if c.OutputGrowthGain <= 0 {
		c.OutputGrowthGain = 0.2
	}
	if c.MaxOutputSlack <= 0 {
		c.MaxOutputSlack = 5
	}
	if c.EchoBoost <= 0 {
		c.EchoBoost = 1.5
	}
	if c.SelectRefractory <= 0 {
		c.SelectRefractory = 0.05
	}
	if c.NoveltyGain <= 0 {
		c.NoveltyGain = 2.0
	}
	if c.ErrorScoreGain <= 0 {
		c.ErrorScoreGain = 2.0
	}
	if c.ErrorSmoothing <= 0 {
		c.ErrorSmoothing = 0.9
	}
	if c.LoopPressureRise <= 0 {
		c.LoopPressureRise = 0.9
	}
	if c.LoopPressureDecay <= 0 {
		c.LoopPressureDecay = 0.95
	}
	if c.VarianceWindow <= 0 {
		c.VarianceWindow = 20
	}
	if c.RecentOutputs <= 0 {
		c.RecentOutputs = 50
	}
	return c
}
