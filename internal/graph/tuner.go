package graph

// tune recomputes the adaptive coefficients once per supervised episode from
// the outcome just observed. The recomputed values feed the next episode's
// edge-score selectivity, meaning accrual, loop suppression, and novelty
// boost; there is no fixed schedule anywhere.
func (g *Graph) tune(out []int, target []byte) {
	tgt := make([]int, 0, len(target))
	for _, b := range target {
		tgt = append(tgt, int(b))
	}

	span := len(out)
	if len(tgt) > span {
		span = len(tgt)
	}
	if span > 0 {
		matches := 0
		for i := 0; i < len(out) && i < len(tgt); i++ {
			if out[i] == tgt[i] {
				matches++
			}
		}
		observed := 1 - float64(matches)/float64(span)
		g.state.ErrorRate = g.cfg.ErrorSmoothing*g.state.ErrorRate + (1-g.cfg.ErrorSmoothing)*observed
	}

	for _, id := range out {
		g.recent = append(g.recent, id)
	}
	if overflow := len(g.recent) - g.cfg.RecentOutputs; overflow > 0 {
		g.recent = append(g.recent[:0], g.recent[overflow:]...)
	}

	window := g.recent
	if len(window) > g.cfg.VarianceWindow {
		window = window[len(window)-g.cfg.VarianceWindow:]
	}
	if len(window) > 0 {
		seen := make(map[int]struct{}, len(window))
		for _, id := range window {
			seen[id] = struct{}{}
		}
		g.state.OutputVariance = float64(len(seen)) / float64(len(window))
	}

	if repeatsShortCycle(g.recent) {
		g.state.LoopPressure = g.cfg.LoopPressureRise
	} else {
		g.state.LoopPressure *= g.cfg.LoopPressureDecay
	}

	g.state.DiversityPressure = (1 - g.state.OutputVariance) * g.state.ErrorRate
}

// repeatsShortCycle reports whether the most recent emissions repeat with
// period two, the a-b-a-b signature of a stuck cycle. A constant run is the
// degenerate case and counts as well.
func repeatsShortCycle(recent []int) bool {
	n := len(recent)
	if n < 4 {
		return false
	}
	return recent[n-1] == recent[n-3] && recent[n-2] == recent[n-4]
}
