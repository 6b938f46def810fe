package graph

import "math"

// edge is a directed learned transition. Weight saturates toward 1, use and
// success counters feed the score. Active is episode-local: set when the edge
// carries transfer during propagation, cleared on episode reset, and gates
// outcome marking. Edges are addressed by (from, to) id pair;
// self-referential pairs are never stored.
type edge struct {
	To           int
	Weight       float64
	UseCount     int
	SuccessCount float64
	Active       bool
}

func (e *edge) successRate() float64 {
	use := e.UseCount
	if use < 1 {
		use = 1
	}
	rate := e.SuccessCount / float64(use)
	if rate > 1 {
		rate = 1
	}
	return rate
}

func (g *Graph) findEdge(from, to int) *edge {
	for i := range g.edges[from] {
		if g.edges[from][i].To == to {
			return &g.edges[from][i]
		}
	}
	return nil
}

// createOrStrengthen reinforces the transition from -> to. Self-loops are
// silently ignored, a hard rule: they accumulate activation without bound.
// Growth is saturating, weight moves by delta toward 1 and never past it.
func (g *Graph) createOrStrengthen(from, to int, delta float64) error {
	if from == to {
		return nil
	}
	if e := g.findEdge(from, to); e != nil {
		e.Weight += delta * (1 - e.Weight)
		if e.Weight > 1 {
			e.Weight = 1
		}
		e.UseCount++
		return nil
	}
	if len(g.edges[from]) >= g.cfg.MaxEdgesPerNode {
		return ErrCapacity
	}
	g.getOrCreate(from)
	g.getOrCreate(to)
	g.edges[from] = append(g.edges[from], edge{
		To:       to,
		Weight:   g.cfg.EdgeFloorWeight + delta*(1-g.cfg.EdgeFloorWeight),
		UseCount: 1,
	})
	return nil
}

// markOutcome records whether a traversed edge coincided with a correct
// prediction. Only edges that actually carried transfer in the traced episode
// are marked; an edge the wave never used has no outcome to record. Failures
// decay the success count multiplicatively so edges that are used but
// unreliable are forgotten rather than merely diluted.
func (g *Graph) markOutcome(from, to int, correct bool) {
	e := g.findEdge(from, to)
	if e == nil || !e.Active {
		return
	}
	e.UseCount++
	if correct {
		e.SuccessCount++
	} else {
		e.SuccessCount *= g.cfg.EdgeFailureDecay
	}
}

// weightOf returns 0 for absent edges. No caller may branch on existence
// when scoring; absence and zero weight are the same signal.
func (g *Graph) weightOf(from, to int) float64 {
	if e := g.findEdge(from, to); e != nil {
		return e.Weight
	}
	return 0
}

// edgeScore is the sole transfer strength used during propagation. Every term
// is bounded before composition and nothing is normalized by a population
// average. High error rate sharpens the score, suppressing weak edges first.
func (g *Graph) edgeScore(e *edge) float64 {
	base := e.Weight * (0.5 + 0.5*e.successRate()) * (1 + g.cfg.EdgeUsageWeight*math.Log1p(float64(e.UseCount)))
	if base > 1 {
		base = 1
	}
	if base <= 0 {
		return 0
	}
	return math.Pow(base, 1+g.state.ErrorRate*g.cfg.ErrorScoreGain)
}

// PruneWeakEdges removes edges whose weight fell to the configured floor.
// Maintenance only, never called on the episode path.
func (g *Graph) PruneWeakEdges() int {
	removed := 0
	for from := range g.edges {
		kept := g.edges[from][:0]
		for _, e := range g.edges[from] {
			if e.Weight >= g.cfg.EdgePruneFloor {
				kept = append(kept, e)
			} else {
				removed++
			}
		}
		g.edges[from] = kept
	}
	return removed
}
