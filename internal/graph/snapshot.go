package graph

import (
	"fmt"

	"mnemon/internal/model"
)

// Snapshot returns a complete copy of the graph's durable state. It is a
// side-effect-free read; transient activation is not part of the snapshot
// because every episode begins by resetting it.
func (g *Graph) Snapshot() model.BrainSnapshot {
	snap := model.BrainSnapshot{
		State: model.StateRecord{
			Step:              g.state.Step,
			AvgActivation:     g.state.AvgActivation,
			AvgThreshold:      g.state.AvgThreshold,
			LearningRate:      g.state.LearningRate,
			ErrorRate:         g.state.ErrorRate,
			LoopPressure:      g.state.LoopPressure,
			OutputVariance:    g.state.OutputVariance,
			DiversityPressure: g.state.DiversityPressure,
			RecentOutputs:     append([]int(nil), g.recent...),
		},
	}
	for id := range g.nodes {
		if !g.nodes[id].Exists {
			continue
		}
		snap.Nodes = append(snap.Nodes, model.NodeRecord{ID: id, Threshold: g.nodes[id].Threshold})
		for _, e := range g.edges[id] {
			snap.Edges = append(snap.Edges, model.EdgeRecord{
				From:         id,
				To:           e.To,
				Weight:       e.Weight,
				UseCount:     e.UseCount,
				SuccessCount: e.SuccessCount,
			})
		}
	}
	for i := range g.patterns {
		p := &g.patterns[i]
		rec := model.PatternRecord{
			Template:           append([]int(nil), p.Template...),
			Strength:           p.Strength,
			Threshold:          p.Threshold,
			ChainDepth:         p.ChainDepth,
			AccumulatedMeaning: p.AccumulatedMeaning,
			PatternPredictions: append([]int(nil), p.PatternPredictions...),
		}
		for _, pr := range p.Predictions {
			rec.Predictions = append(rec.Predictions, model.PredictionRecord{Node: pr.Node, Weight: pr.Weight})
		}
		snap.Patterns = append(snap.Patterns, rec)
	}
	return snap
}

// Restore replaces the graph's entire durable state with the snapshot.
// Records referencing ids outside the node table are rejected; an edge
// record with identical endpoints is dropped silently, matching the
// learning-time policy for self-loops.
func (g *Graph) Restore(snap model.BrainSnapshot) error {
	fresh := New(g.cfg)
	for _, n := range snap.Nodes {
		if n.ID < 0 || n.ID >= nodeTableSize {
			return fmt.Errorf("restore: node id %d out of range", n.ID)
		}
		node := fresh.getOrCreate(n.ID)
		node.Threshold = n.Threshold
	}
	for _, e := range snap.Edges {
		if e.From < 0 || e.From >= nodeTableSize || e.To < 0 || e.To >= nodeTableSize {
			return fmt.Errorf("restore: edge %d->%d out of range", e.From, e.To)
		}
		if e.From == e.To {
			continue
		}
		fresh.getOrCreate(e.From)
		fresh.getOrCreate(e.To)
		fresh.edges[e.From] = append(fresh.edges[e.From], edge{
			To:           e.To,
			Weight:       e.Weight,
			UseCount:     e.UseCount,
			SuccessCount: e.SuccessCount,
		})
	}
	for _, rec := range snap.Patterns {
		for _, id := range rec.Template {
			if id < 0 || id >= nodeTableSize {
				return fmt.Errorf("restore: pattern node id %d out of range", id)
			}
		}
		p := pattern{
			Template:           append([]int(nil), rec.Template...),
			Strength:           rec.Strength,
			Threshold:          rec.Threshold,
			ChainDepth:         rec.ChainDepth,
			AccumulatedMeaning: rec.AccumulatedMeaning,
			PatternPredictions: append([]int(nil), rec.PatternPredictions...),
			lastFiredStep:      -fresh.cfg.PatternRefireCooldown - 1,
		}
		for _, pr := range rec.Predictions {
			if pr.Node < 0 || pr.Node >= nodeTableSize {
				return fmt.Errorf("restore: prediction node id %d out of range", pr.Node)
			}
			p.Predictions = append(p.Predictions, prediction{Node: pr.Node, Weight: pr.Weight})
		}
		fresh.patterns = append(fresh.patterns, p)
	}
	for i := range fresh.patterns {
		for _, t := range fresh.patterns[i].PatternPredictions {
			if t < 0 || t >= len(fresh.patterns) {
				return fmt.Errorf("restore: pattern prediction index %d out of range", t)
			}
		}
	}

	fresh.state = adaptiveState{
		Step:              snap.State.Step,
		AvgActivation:     snap.State.AvgActivation,
		AvgThreshold:      snap.State.AvgThreshold,
		LearningRate:      snap.State.LearningRate,
		ErrorRate:         snap.State.ErrorRate,
		LoopPressure:      snap.State.LoopPressure,
		OutputVariance:    snap.State.OutputVariance,
		DiversityPressure: snap.State.DiversityPressure,
	}
	if fresh.state.LearningRate <= 0 {
		fresh.state.LearningRate = fresh.cfg.LearningRate
	}
	fresh.recent = append([]int(nil), snap.State.RecentOutputs...)

	*g = *fresh
	return nil
}
