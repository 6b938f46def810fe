// Package graph implements an online byte-level sequence learner. A Graph
// holds nodes for every byte value plus reserved markers, directed weighted
// edges between them, and higher-order sequence patterns. Episodes inject an
// input, propagate activation in discrete waves, and emit an output; when a
// target is supplied the episode also performs supervised learning and
// adapts the engine's own coefficients from the observed outcome.
//
// A Graph is not safe for concurrent use. Callers exposing one as a service
// must serialize whole episode calls.
package graph

import "errors"

var (
	// ErrCapacity reports an exhausted node, edge, or pattern table. The
	// call fails but the graph is left in its last consistent state.
	ErrCapacity = errors.New("graph capacity exhausted")

	// ErrEmptyInput reports a zero-length input. Nothing is mutated.
	ErrEmptyInput = errors.New("input must not be empty")
)

// adaptiveState is the process-wide mutable state the self-tuner maintains.
// It lives on the Graph, never in package globals, so independent graphs
// tune independently.
type adaptiveState struct {
	Step              int
	AvgActivation     float64
	AvgThreshold      float64
	LearningRate      float64
	ErrorRate         float64
	LoopPressure      float64
	OutputVariance    float64
	DiversityPressure float64
}

// traceStep records how one output byte was produced, for outcome marking.
type traceStep struct {
	Prev     int
	Chosen   int
	Patterns []int
	Echoed   bool
}

// Graph owns all nodes, edges, and patterns. Cross-references are integer
// ids into the owned tables, never pointers, so growth and pruning cannot
// invalidate anything.
type Graph struct {
	cfg      Config
	nodes    [nodeTableSize]node
	edges    [nodeTableSize][]edge
	patterns []pattern
	state    adaptiveState

	input   []int
	output  []int
	trace   []traceStep
	recent  []int
	support map[int][]int
}

// New allocates an empty graph with the reserved marker nodes registered.
func New(cfg Config) *Graph {
	g := &Graph{cfg: cfg.withDefaults()}
	g.state.LearningRate = g.cfg.LearningRate
	g.getOrCreate(WildcardID)
	g.getOrCreate(EndID)
	return g
}

// Config returns the coefficients the graph runs with.
func (g *Graph) Config() Config { return g.cfg }

// RunEpisode executes one episode. With a nil or empty target it is pure
// inference and mutates nothing structural. With a target it first infers,
// then learns from the alignment against the target, retunes coefficients
// from the observed outcome, and re-runs inference so the caller sees the
// updated model's output.
func (g *Graph) RunEpisode(input, target []byte) ([]byte, error) {
	if len(input) == 0 {
		return nil, ErrEmptyInput
	}
	out := g.infer(input)
	if len(target) > 0 {
		if err := g.learn(input, target, out); err != nil {
			return nil, err
		}
		g.tune(out, target)
		g.adaptThresholds()
		out = g.infer(input)
	}
	g.output = out
	return outputBytes(out), nil
}

// Output returns the most recent output buffer as literal bytes. Marker ids
// never appear in output.
func (g *Graph) Output() []byte {
	return outputBytes(g.output)
}

func outputBytes(ids []int) []byte {
	out := make([]byte, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < ByteNodeCount {
			out = append(out, byte(id))
		}
	}
	return out
}

// infer resets transient state, injects the input, and runs the bounded
// propagation loop, emitting at most one output byte per step.
func (g *Graph) infer(input []byte) []int {
	g.resetActivation()
	g.trace = g.trace[:0]
	g.input = g.input[:0]
	for _, b := range input {
		g.input = append(g.input, int(b))
	}
	for _, id := range g.input {
		n := g.getOrCreate(id)
		n.Activation = g.cfg.InjectionActivation
		n.ActivatedBy = sourceInput
	}

	steps := clampInt(len(input)*g.cfg.StepsPerInputByte, g.cfg.MinPropagationSteps, g.cfg.MaxPropagationSteps)
	maxOut := int(float64(len(input))*(1+g.cfg.OutputGrowthGain*g.state.ErrorRate)) + g.cfg.MaxOutputSlack

	out := make([]int, 0, maxOut)
	for step := 0; step < steps; step++ {
		g.state.Step++
		firing := g.propagateStep(step, out)
		chosen, echoed, stop := g.selectOutput(out)
		if stop {
			break
		}
		if chosen >= 0 {
			prev := g.input[len(g.input)-1]
			if len(out) > 0 {
				prev = out[len(out)-1]
			}
			g.trace = append(g.trace, traceStep{
				Prev:     prev,
				Chosen:   chosen,
				Patterns: g.support[chosen],
				Echoed:   echoed,
			})
			out = append(out, chosen)
			if len(out) >= maxOut {
				break
			}
		} else if !firing && len(out) >= len(g.input) {
			break
		}
	}
	return out
}

// EdgeWeight reports the learned weight of the transition from -> to.
// Side-effect free; a missing edge is an absence, not an error.
func (g *Graph) EdgeWeight(from, to int) (float64, bool) {
	if from < 0 || from >= nodeTableSize || to < 0 || to >= nodeTableSize {
		return 0, false
	}
	if e := g.findEdge(from, to); e != nil {
		return e.Weight, true
	}
	return 0, false
}

// PatternCount returns the number of live patterns.
func (g *Graph) PatternCount() int { return len(g.patterns) }

// PatternInfo is a read-only view of one pattern for introspection and
// persistence.
type PatternInfo struct {
	Template           []int
	Strength           float64
	Threshold          float64
	ChainDepth         int
	AccumulatedMeaning float64
	Predictions        map[int]float64
	PatternPredictions []int
}

// PatternAt returns a copy of the pattern at index i.
func (g *Graph) PatternAt(i int) (PatternInfo, bool) {
	if i < 0 || i >= len(g.patterns) {
		return PatternInfo{}, false
	}
	p := &g.patterns[i]
	info := PatternInfo{
		Template:           append([]int(nil), p.Template...),
		Strength:           p.Strength,
		Threshold:          p.Threshold,
		ChainDepth:         p.ChainDepth,
		AccumulatedMeaning: p.AccumulatedMeaning,
		Predictions:        make(map[int]float64, len(p.Predictions)),
		PatternPredictions: append([]int(nil), p.PatternPredictions...),
	}
	for _, pr := range p.Predictions {
		info.Predictions[pr.Node] = pr.Weight
	}
	return info, true
}

// Summary is a point-in-time view of graph size and adaptive state.
type Summary struct {
	Nodes             int     `json:"nodes"`
	Edges             int     `json:"edges"`
	Patterns          int     `json:"patterns"`
	Step              int     `json:"step"`
	AvgActivation     float64 `json:"avg_activation"`
	ErrorRate         float64 `json:"error_rate"`
	LoopPressure      float64 `json:"loop_pressure"`
	OutputVariance    float64 `json:"output_variance"`
	DiversityPressure float64 `json:"diversity_pressure"`
}

// Stats returns a side-effect-free summary.
func (g *Graph) Stats() Summary {
	s := Summary{
		Patterns:          len(g.patterns),
		Step:              g.state.Step,
		AvgActivation:     g.state.AvgActivation,
		ErrorRate:         g.state.ErrorRate,
		LoopPressure:      g.state.LoopPressure,
		OutputVariance:    g.state.OutputVariance,
		DiversityPressure: g.state.DiversityPressure,
	}
	for i := range g.nodes {
		if g.nodes[i].Exists {
			s.Nodes++
		}
		s.Edges += len(g.edges[i])
	}
	return s
}

func clampInt(v, minV, maxV int) int {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
