package graph

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func trainCompletion(t *testing.T, g *Graph, input, target string, reps int) {
	t.Helper()
	for i := 0; i < reps; i++ {
		if _, err := g.RunEpisode([]byte(input), []byte(target)); err != nil {
			t.Fatalf("episode %d: %v", i, err)
		}
	}
}

func TestEmptyInputRejected(t *testing.T) {
	g := New(DefaultConfig())
	before := g.Stats()
	if _, err := g.RunEpisode(nil, []byte("abc")); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("expected ErrEmptyInput, got %v", err)
	}
	if after := g.Stats(); after != before {
		t.Fatalf("rejected input mutated the graph: %+v != %+v", after, before)
	}
}

func TestNoSelfLoopsEver(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "ca", "caa", 10)
	trainCompletion(t, g, "aa", "aaaa", 10)
	for from := range g.edges {
		for _, e := range g.edges[from] {
			if e.To == from {
				t.Fatalf("self-loop on node %d", from)
			}
		}
	}
}

func TestEdgeWeightsBounded(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 100)
	for from := range g.edges {
		for _, e := range g.edges[from] {
			if e.Weight < 0 || e.Weight > 1+1e-9 {
				t.Fatalf("edge %d->%d weight out of bounds: %v", from, e.To, e.Weight)
			}
		}
	}
}

func TestPatternStrengthsNormalized(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 10)
	trainCompletion(t, g, "dog", "dogs", 10)
	if g.PatternCount() == 0 {
		t.Fatal("expected patterns after supervised episodes")
	}
	var sum float64
	for i := range g.patterns {
		sum += g.patterns[i].Strength
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("pattern strengths sum to %v, want 1", sum)
	}
	g.PrunePatterns()
	sum = 0
	for i := range g.patterns {
		sum += g.patterns[i].Strength
	}
	if g.PatternCount() > 0 && math.Abs(sum-1) > 1e-6 {
		t.Fatalf("pattern strengths sum to %v after prune, want 1", sum)
	}
}

func TestInferenceIdempotent(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 5)
	first, err := g.RunEpisode([]byte("cat"), nil)
	if err != nil {
		t.Fatalf("first inference: %v", err)
	}
	second, err := g.RunEpisode([]byte("cat"), nil)
	if err != nil {
		t.Fatalf("second inference: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatalf("inference not deterministic: %q then %q", first, second)
	}
}

func TestCompletionConvergence(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 30)
	out, err := g.RunEpisode([]byte("cat"), nil)
	if err != nil {
		t.Fatalf("inference: %v", err)
	}
	if len(out) < 4 || out[3] != 's' {
		t.Fatalf("expected completion with 's' after training, got %q", out)
	}
	if out[len(out)-1] != 's' {
		t.Fatalf("expected output ending in 's', got %q", out)
	}
}

func TestWildcardGeneralization(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 30)
	out, err := g.RunEpisode([]byte("bat"), nil)
	if err != nil {
		t.Fatalf("inference: %v", err)
	}
	if !bytes.Contains(out, []byte{'s'}) {
		t.Fatalf("expected generalized 's' completion, got %q", out)
	}
}

func TestTwoMappingSeparation(t *testing.T) {
	g := New(DefaultConfig())
	for i := 0; i < 50; i++ {
		if _, err := g.RunEpisode([]byte("a"), []byte("cat")); err != nil {
			t.Fatalf("episode a: %v", err)
		}
		if _, err := g.RunEpisode([]byte("b"), []byte("dog")); err != nil {
			t.Fatalf("episode b: %v", err)
		}
	}
	ac, _ := g.EdgeWeight('a', 'c')
	bd, _ := g.EdgeWeight('b', 'd')
	if ac < 0.9 || bd < 0.9 {
		t.Fatalf("mapping edges weak: a->c=%v b->d=%v", ac, bd)
	}
	if ad, ok := g.EdgeWeight('a', 'd'); ok && ad > 0.05 {
		t.Fatalf("cross edge a->d learned: %v", ad)
	}
	if bc, ok := g.EdgeWeight('b', 'c'); ok && bc > 0.05 {
		t.Fatalf("cross edge b->c learned: %v", bc)
	}
}

func TestLoopPressureBreaksCycles(t *testing.T) {
	g := New(DefaultConfig())
	cycle := []int{'a', 'b', 'a', 'b'}
	for i := 0; i < 5; i++ {
		g.tune(cycle, []byte("ab"))
	}
	if lp := g.Stats().LoopPressure; lp < 0.5 {
		t.Fatalf("loop pressure did not rise on cyclic output: %v", lp)
	}

	// With pressure high, a candidate that would extend the a-b cycle must
	// lose to a weaker but non-repeating alternative.
	g.input = []int{'a'}
	g.getOrCreate('b').Activation = 0.5
	g.getOrCreate('c').Activation = 0.2
	chosen, _, stop := g.selectOutput([]int{'a', 'b', 'a'})
	if stop || chosen != 'c' {
		t.Fatalf("cycle continuation not suppressed, chose %d", chosen)
	}
}

func TestEchoFallbackOnUntrainedInput(t *testing.T) {
	// Repeated bytes share one node, so echo must not depend on that node
	// still firing after its first emission drained it.
	for _, input := range []string{"xyz", "hello", "aab", "mississippi"} {
		g := New(DefaultConfig())
		out, err := g.RunEpisode([]byte(input), nil)
		if err != nil {
			t.Fatalf("inference of %q: %v", input, err)
		}
		if !bytes.Equal(out, []byte(input)) {
			t.Fatalf("expected echo of %q, got %q", input, out)
		}
	}
}

func TestEmptyTargetIsPureInference(t *testing.T) {
	g := New(DefaultConfig())
	trainCompletion(t, g, "cat", "cats", 5)
	before := g.Stats()

	out, err := g.RunEpisode([]byte("cat"), []byte{})
	if err != nil {
		t.Fatalf("inference: %v", err)
	}
	want, err := g.RunEpisode([]byte("cat"), nil)
	if err != nil {
		t.Fatalf("nil-target inference: %v", err)
	}
	if !bytes.Equal(out, want) {
		t.Fatalf("empty target diverged from nil target: %q vs %q", out, want)
	}

	after := g.Stats()
	if after.ErrorRate != before.ErrorRate || after.LoopPressure != before.LoopPressure {
		t.Fatalf("empty target adapted coefficients: %+v -> %+v", before, after)
	}
	if after.Edges != before.Edges || after.Patterns != before.Patterns {
		t.Fatalf("empty target mutated structure: %+v -> %+v", before, after)
	}
}

func TestProvenanceNamesStrongestEdge(t *testing.T) {
	g := New(DefaultConfig())
	if err := g.createOrStrengthen('a', 'c', 0.9); err != nil {
		t.Fatalf("strong edge: %v", err)
	}
	if err := g.createOrStrengthen('b', 'c', 0.05); err != nil {
		t.Fatalf("weak edge: %v", err)
	}
	g.getOrCreate('a').Activation = 0.9
	g.getOrCreate('b').Activation = 0.9

	g.propagateStep(0, nil)
	if got := g.nodes['c'].ActivatedBy; got != 'a' {
		t.Fatalf("provenance should name the strongest contributor, got %d", got)
	}
}

func TestProvenanceNotOverwrittenByWeakerPattern(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PatternGain = 0.01
	g := New(cfg)
	idx, err := g.createFrom([]int{'a', 'b'})
	if err != nil {
		t.Fatalf("create pattern: %v", err)
	}
	if err := g.learnPredictions(idx, 'c'); err != nil {
		t.Fatalf("learn prediction: %v", err)
	}
	if err := g.createOrStrengthen('b', 'c', 0.9); err != nil {
		t.Fatalf("edge: %v", err)
	}
	g.getOrCreate('b').Activation = 0.9

	g.propagateStep(0, []int{'a', 'b'})
	if got := g.nodes['c'].ActivatedBy; got != 'b' {
		t.Fatalf("weak pattern transfer overwrote edge provenance: %d", got)
	}
}

func TestPatternCapacityIsFatalButConsistent(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxPatterns = 1
	g := New(cfg)
	_, err := g.RunEpisode([]byte("cat"), []byte("cats"))
	if !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if _, err := g.RunEpisode([]byte("cat"), nil); err != nil {
		t.Fatalf("graph unusable after capacity error: %v", err)
	}
}

func TestEdgeCapacityIsFatal(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxEdgesPerNode = 1
	g := New(cfg)
	if err := g.createOrStrengthen('a', 'b', 0.3); err != nil {
		t.Fatalf("first edge: %v", err)
	}
	if err := g.createOrStrengthen('a', 'c', 0.3); !errors.Is(err, ErrCapacity) {
		t.Fatalf("expected ErrCapacity, got %v", err)
	}
	if err := g.createOrStrengthen('a', 'b', 0.3); err != nil {
		t.Fatalf("strengthening existing edge after capacity error: %v", err)
	}
}

func TestIntrospectionAbsences(t *testing.T) {
	g := New(DefaultConfig())
	if w, ok := g.EdgeWeight('a', 'b'); ok || w != 0 {
		t.Fatalf("missing edge should read as absence, got %v %v", w, ok)
	}
	if _, ok := g.PatternAt(0); ok {
		t.Fatal("missing pattern should read as absence")
	}
	if _, ok := g.PatternAt(-1); ok {
		t.Fatal("negative index should read as absence")
	}
}
