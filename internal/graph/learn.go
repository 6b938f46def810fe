package graph

// learn applies one supervised update. It strengthens edges along the
// realized target transitions, creates and trains sequence patterns from
// the input/target alignment, and marks outcome success or failure on every
// edge and pattern the preceding inference actually traversed. Nothing in
// this file runs without a target; there is no unsupervised mining.
func (g *Graph) learn(input, target []byte, out []int) error {
	tgt := make([]int, 0, len(target))
	for _, b := range target {
		tgt = append(tgt, int(b))
	}
	if len(tgt) == 0 {
		return nil
	}
	delta := g.state.LearningRate

	for i := 0; i+1 < len(tgt); i++ {
		if err := g.createOrStrengthen(tgt[i], tgt[i+1], delta); err != nil {
			return err
		}
	}
	if err := g.createOrStrengthen(tgt[len(tgt)-1], EndID, delta); err != nil {
		return err
	}

	// A continuation target already contains the input transitions. For a
	// mapping target, bridge from the end of the input into the target.
	continuation := hasPrefix(tgt, g.input)
	if !continuation {
		if err := g.createOrStrengthen(g.input[len(g.input)-1], tgt[0], delta); err != nil {
			return err
		}
	}

	if err := g.templateFromAlignment(tgt, continuation); err != nil {
		return err
	}
	g.markTraceOutcomes(tgt)
	return nil
}

// templateFromAlignment creates suffix window templates over the input,
// including a one-wildcard generalization, then teaches every pattern that
// matches the input which target byte follows its window. Adjacent matches
// are linked so hierarchies can form.
func (g *Graph) templateFromAlignment(tgt []int, continuation bool) error {
	in := g.input
	maxLen := clampInt(g.cfg.MaxPatternLength, 2, len(in))
	for length := 2; length <= maxLen; length++ {
		window := in[len(in)-length:]
		if _, err := g.createFrom(window); err != nil {
			return err
		}
		if length >= 3 {
			wild := append([]int{WildcardID}, window[1:]...)
			if _, err := g.createFrom(wild); err != nil {
				return err
			}
		}
	}

	for idx := range g.patterns {
		p := &g.patterns[idx]
		for pos := 0; pos+len(p.Template) <= len(in); pos++ {
			if !p.matches(in, pos) {
				continue
			}
			next := tgt[0]
			if continuation {
				if end := pos + len(p.Template); end < len(tgt) {
					next = tgt[end]
				} else {
					next = EndID
				}
			}
			if err := g.learnPredictions(idx, next); err != nil {
				return err
			}
			for other := range g.patterns {
				if other == idx {
					continue
				}
				if g.patterns[other].matches(in, pos+len(p.Template)) {
					g.linkPatterns(idx, other)
				}
			}
		}
	}
	return nil
}

// markTraceOutcomes walks the emission trace of the inference that preceded
// learning and records, per emitted byte, whether the structures that
// produced it predicted the target correctly.
func (g *Graph) markTraceOutcomes(tgt []int) {
	for i, ts := range g.trace {
		correct := i < len(tgt) && ts.Chosen == tgt[i]
		if !ts.Echoed {
			g.markOutcome(ts.Prev, ts.Chosen, correct)
		}
		for _, idx := range ts.Patterns {
			if idx >= 0 && idx < len(g.patterns) {
				g.markPatternOutcome(idx, correct)
			}
		}
	}
}

func hasPrefix(seq, prefix []int) bool {
	if len(prefix) > len(seq) {
		return false
	}
	for i := range prefix {
		if seq[i] != prefix[i] {
			return false
		}
	}
	return true
}
