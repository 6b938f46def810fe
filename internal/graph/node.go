package graph

// Node ids 0-255 are literal byte values. Two reserved ids follow: Wildcard
// matches any byte inside a pattern template, End terminates an output
// sequence. Ids are dense and stable for the lifetime of a Graph.
const (
	ByteNodeCount = 256
	WildcardID    = 256
	EndID         = 257
	nodeTableSize = 258
)

// Provenance markers for node.ActivatedBy. Non-negative values are the id of
// the source node whose edge last drove the activation.
const (
	sourceNone    = -1
	sourceInput   = -2
	sourcePattern = -3
)

type node struct {
	Exists      bool
	Activation  float64
	Threshold   float64
	ActivatedBy int
}

func (n *node) firing() bool {
	return n.Exists && n.Activation > n.Threshold
}

// getOrCreate registers id on first use. Idempotent; reserved marker ids are
// created alongside the graph so they always exist.
func (g *Graph) getOrCreate(id int) *node {
	n := &g.nodes[id]
	if !n.Exists {
		n.Exists = true
		n.Threshold = g.cfg.InitialThreshold
		n.ActivatedBy = sourceNone
	}
	return n
}

// resetActivation clears transient episode state on every node and pattern.
// Structure, weights and thresholds are retained.
func (g *Graph) resetActivation() {
	for i := range g.nodes {
		g.nodes[i].Activation = 0
		g.nodes[i].ActivatedBy = sourceNone
		for j := range g.edges[i] {
			g.edges[i][j].Active = false
		}
	}
	for i := range g.patterns {
		p := &g.patterns[i]
		p.Activation = 0
		p.firedPredictions = 0
		p.lastFiredStep = -g.cfg.PatternRefireCooldown - 1
	}
}

// adaptThresholds drifts firing thresholds toward the population's average
// activation so firing stays selective as the activation scale moves.
func (g *Graph) adaptThresholds() {
	var sum float64
	count := 0
	for i := range g.nodes {
		if g.nodes[i].Exists {
			sum += g.nodes[i].Activation
			count++
		}
	}
	if count == 0 {
		return
	}
	avg := sum / float64(count)
	g.state.AvgActivation = avg
	var thrSum float64
	for i := range g.nodes {
		n := &g.nodes[i]
		if !n.Exists {
			continue
		}
		n.Threshold += g.cfg.ThresholdAdaptRate * (avg - n.Threshold)
		if n.Threshold < g.cfg.MinThreshold {
			n.Threshold = g.cfg.MinThreshold
		}
		thrSum += n.Threshold
	}
	g.state.AvgThreshold = thrSum / float64(count)
}
