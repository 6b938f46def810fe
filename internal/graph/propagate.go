package graph

// propagateStep runs one discrete wave. All transfers are computed against
// the activations present at the start of the step and applied together at
// the end, so ordering within a step carries no meaning. Returns whether any
// node fired this step.
func (g *Graph) propagateStep(step int, out []int) bool {
	g.support = make(map[int][]int)

	for i := range g.nodes {
		g.nodes[i].Activation *= g.cfg.ActivationDecay
	}
	for i := range g.patterns {
		g.patterns[i].Activation *= g.cfg.ActivationDecay
	}

	nodeGain := make([]float64, nodeTableSize)
	nodeSource := make([]int, nodeTableSize)
	nodeTop := make([]float64, nodeTableSize)
	for i := range nodeSource {
		nodeSource[i] = sourceNone
	}

	firing := false
	for from := range g.nodes {
		n := &g.nodes[from]
		if !n.firing() {
			continue
		}
		firing = true
		for i := range g.edges[from] {
			e := &g.edges[from][i]
			amount := n.Activation * g.edgeScore(e) * g.cfg.TransferGain
			if amount <= 0 {
				continue
			}
			e.Active = true
			nodeGain[e.To] += amount
			// Provenance names the strongest single contributor, not the
			// last one visited.
			if amount > nodeTop[e.To] {
				nodeTop[e.To] = amount
				nodeSource[e.To] = from
			}
		}
	}

	// Patterns match against the output emitted so far. Matching the raw
	// input would let a confident prediction preempt position zero with
	// the continuation byte; matching the output keeps predictions
	// aligned with the position being produced. A matched pattern gains
	// activation proportional to the learned weight of the transitions
	// inside its window, so edge use feeds pattern activation; a firing
	// pattern in turn feeds activation back into nodes, raising their
	// outgoing transfers on the next step.
	buf := out
	patternGain := make([]float64, len(g.patterns))
	for idx := range g.patterns {
		p := &g.patterns[idx]
		for pos := 0; pos+len(p.Template) <= len(buf); pos++ {
			if !p.matches(buf, pos) {
				continue
			}
			support := 0.0
			for i := 0; i < len(p.Template)-1; i++ {
				support += g.weightOf(buf[pos+i], buf[pos+i+1])
			}
			if len(p.Template) > 1 {
				support /= float64(len(p.Template) - 1)
			}
			p.Activation += g.cfg.PatternMatchBoost * (0.5 + support)
		}
		if p.Activation <= p.Threshold {
			continue
		}
		for predIdx := range p.Predictions {
			if !p.canFire(predIdx, step, g.cfg.PatternRefireCooldown) {
				continue
			}
			pr := p.Predictions[predIdx]
			amount := p.Activation * pr.Weight * p.Strength * g.cfg.PatternGain
			if amount <= 0 {
				continue
			}
			nodeGain[pr.Node] += amount
			if amount > nodeTop[pr.Node] {
				nodeTop[pr.Node] = amount
				nodeSource[pr.Node] = sourcePattern
			}
			g.support[pr.Node] = append(g.support[pr.Node], idx)
			p.recordFire(predIdx, step)
		}
		for _, sub := range p.PatternPredictions {
			patternGain[sub] += p.Activation * p.Strength
		}
	}

	for id, gain := range nodeGain {
		if gain == 0 {
			continue
		}
		n := g.getOrCreate(id)
		n.Activation += gain
		n.ActivatedBy = nodeSource[id]
	}
	for idx, gain := range patternGain {
		g.patterns[idx].Activation += gain
	}
	return firing
}
