package graph

// selectOutput picks the next emitted node for this step. While the output
// is still shorter than the input, the input byte at the current position is
// a standing candidate at its injection-level score regardless of its node's
// activation; a node drained by emission stays echoable, so inputs with
// repeated bytes echo in full. Echo is the designed default for completion
// tasks and loses only to a prediction that outscores the injection level.
//
// Returns chosen == -1 when nothing is emitted this step, and stop == true
// when the end marker was selected.
func (g *Graph) selectOutput(out []int) (chosen int, echoed bool, stop bool) {
	pos := len(out)
	best := -1
	bestScore := 0.0
	echo := false
	if pos < len(g.input) {
		best = g.input[pos]
		bestScore = g.cfg.InjectionActivation * (1 + g.cfg.EchoBoost)
		echo = true
	}
	for id := 0; id < nodeTableSize; id++ {
		if id == WildcardID {
			continue
		}
		n := &g.nodes[id]
		if !n.firing() {
			continue
		}
		score := n.Activation
		if pos < len(g.input) && id == g.input[pos] {
			score *= 1 + g.cfg.EchoBoost
		}
		if continuesCycle(out, id) {
			score *= 1 - g.state.LoopPressure
		}
		if isNovel(out, id) {
			score *= 1 + g.state.DiversityPressure*g.cfg.NoveltyGain
		}
		if score > bestScore {
			best, bestScore = id, score
			echo = false
		}
	}
	if best == EndID {
		return -1, false, true
	}
	if best < 0 {
		return -1, false, false
	}
	g.nodes[best].Activation *= g.cfg.SelectRefractory
	return best, echo, false
}

// continuesCycle reports whether emitting id would extend an a-b-a-b
// repetition already present at the end of the output.
func continuesCycle(out []int, id int) bool {
	n := len(out)
	if n < 3 {
		return false
	}
	return id == out[n-2] && out[n-1] == out[n-3]
}

// isNovel reports whether id has not been emitted yet this episode.
func isNovel(out []int, id int) bool {
	for _, v := range out {
		if v == id {
			return false
		}
	}
	return true
}
