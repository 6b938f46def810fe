package graph

// prediction maps a pattern to a node it expects to follow its matched
// window. Weights are kept normalized across a pattern's predictions.
type prediction struct {
	Node   int
	Weight float64
}

// pattern is a sequence template over node ids. Template positions holding
// WildcardID match any byte. Strength is a share of a population budget that
// always sums to about 1.
type pattern struct {
	Template           []int
	Strength           float64
	Activation         float64
	Threshold          float64
	Predictions        []prediction
	PatternPredictions []int
	ChainDepth         int
	AccumulatedMeaning float64

	// Episode-local firing state. A prediction may refire after the
	// cooldown elapses; a pattern matching several positions in one
	// sequence must be allowed to act at each of them.
	firedPredictions uint64
	lastFiredStep    int
}

// matches reports whether the template matches buf at position pos.
func (p *pattern) matches(buf []int, pos int) bool {
	if pos < 0 || pos+len(p.Template) > len(buf) {
		return false
	}
	for i, want := range p.Template {
		if want == WildcardID {
			continue
		}
		if buf[pos+i] != want {
			return false
		}
	}
	return true
}

func templatesEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (g *Graph) findPattern(template []int) int {
	for i := range g.patterns {
		if templatesEqual(g.patterns[i].Template, template) {
			return i
		}
	}
	return -1
}

// createFrom inserts a new template unless an equivalent one exists. The new
// pattern takes a normalized share of the population budget and every
// strength is renormalized so the budget stays at 1.
func (g *Graph) createFrom(template []int) (int, error) {
	if idx := g.findPattern(template); idx >= 0 {
		return idx, nil
	}
	if len(g.patterns) >= g.cfg.MaxPatterns {
		return -1, ErrCapacity
	}
	share := 1.0 / float64(len(g.patterns)+1)
	tpl := make([]int, len(template))
	copy(tpl, template)
	g.patterns = append(g.patterns, pattern{
		Template:      tpl,
		Strength:      share,
		Threshold:     g.cfg.InitialThreshold,
		ChainDepth:    1,
		lastFiredStep: -g.cfg.PatternRefireCooldown - 1,
	})
	g.normalizeStrengths()
	return len(g.patterns) - 1, nil
}

func (g *Graph) normalizeStrengths() {
	var sum float64
	for i := range g.patterns {
		sum += g.patterns[i].Strength
	}
	if sum <= 0 {
		return
	}
	for i := range g.patterns {
		g.patterns[i].Strength /= sum
	}
}

// learnPredictions is supervised only. A prediction produced while a target
// is present starts at full weight rather than a fractional seed, so it can
// outcompete a raw echo immediately; the per-pattern weights are then
// renormalized.
func (g *Graph) learnPredictions(idx int, target int) error {
	p := &g.patterns[idx]
	for i := range p.Predictions {
		if p.Predictions[i].Node == target {
			p.Predictions[i].Weight += g.cfg.LearningRate * (1 - p.Predictions[i].Weight)
			normalizePredictions(p)
			return nil
		}
	}
	if len(p.Predictions) >= g.cfg.MaxPredictionsPerPattern {
		return ErrCapacity
	}
	g.getOrCreate(target)
	p.Predictions = append(p.Predictions, prediction{Node: target, Weight: 1.0})
	normalizePredictions(p)
	return nil
}

func normalizePredictions(p *pattern) {
	var sum float64
	for i := range p.Predictions {
		sum += p.Predictions[i].Weight
	}
	if sum <= 0 {
		return
	}
	for i := range p.Predictions {
		p.Predictions[i].Weight /= sum
	}
}

// linkPatterns records that b tends to match right after a's window, giving
// the hierarchy its pattern-to-pattern predictions. Chain depth is one more
// than the deepest predicted sub-pattern.
func (g *Graph) linkPatterns(a, b int) {
	if a == b {
		return
	}
	p := &g.patterns[a]
	for _, t := range p.PatternPredictions {
		if t == b {
			return
		}
	}
	if len(p.PatternPredictions) >= g.cfg.MaxPredictionsPerPattern {
		return
	}
	p.PatternPredictions = append(p.PatternPredictions, b)
	if d := g.patterns[b].ChainDepth + 1; d > p.ChainDepth {
		p.ChainDepth = d
	}
}

// canFire applies the cooldown rule: a prediction bit that is set blocks
// refiring only until the cooldown elapses.
func (p *pattern) canFire(predIdx, step, cooldown int) bool {
	if p.firedPredictions&(1<<uint(predIdx)) == 0 {
		return true
	}
	return step-p.lastFiredStep > cooldown
}

func (p *pattern) recordFire(predIdx, step int) {
	p.firedPredictions |= 1 << uint(predIdx)
	p.lastFiredStep = step
}

// markPatternOutcome accrues or decays accumulated meaning after an emitted
// byte is compared against the target. Accrual slows as the error rate
// rises; failure decays meaning for every pattern implicated in the miss.
func (g *Graph) markPatternOutcome(idx int, correct bool) {
	p := &g.patterns[idx]
	if correct {
		contribution := p.Activation
		for _, sub := range p.PatternPredictions {
			if sub >= 0 && sub < len(g.patterns) {
				contribution += g.patterns[sub].AccumulatedMeaning * p.Strength
			}
		}
		p.AccumulatedMeaning += contribution * (1 - g.state.ErrorRate*g.cfg.MeaningAccrualDamp)
	} else {
		p.AccumulatedMeaning *= 1 - g.state.ErrorRate*g.cfg.MeaningDecay
	}
}

// PrunePatterns drops patterns with negligible strength, rewrites the
// pattern-to-pattern predictions of the survivors to the compacted indices,
// and renormalizes strengths. Maintenance only.
func (g *Graph) PrunePatterns() int {
	remap := make([]int, len(g.patterns))
	kept := g.patterns[:0]
	removed := 0
	for i := range g.patterns {
		if g.patterns[i].Strength >= g.cfg.PatternPruneFloor {
			remap[i] = len(kept)
			kept = append(kept, g.patterns[i])
		} else {
			remap[i] = -1
			removed++
		}
	}
	if removed == 0 {
		return 0
	}
	g.patterns = kept
	for i := range g.patterns {
		targets := g.patterns[i].PatternPredictions[:0]
		for _, t := range g.patterns[i].PatternPredictions {
			if nt := remap[t]; nt >= 0 {
				targets = append(targets, nt)
			}
		}
		g.patterns[i].PatternPredictions = targets
	}
	g.normalizeStrengths()
	return removed
}
