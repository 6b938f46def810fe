// Package trainer drives supervised episodes over a corpus of input/target
// pairs and records the outcome as a training run.
package trainer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"mnemon/internal/graph"
	"mnemon/internal/model"
)

// Pair is one supervised example: present Input, reinforce Target.
type Pair struct {
	Input  string
	Target string
}

// ParseCorpus reads tab-separated pairs, one per line. Blank lines and lines
// starting with # are skipped.
func ParseCorpus(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimRight(scanner.Text(), "\r\n")
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		input, target, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("corpus line %d: expected input<TAB>target, got %q", line, text)
		}
		if input == "" || target == "" {
			return nil, fmt.Errorf("corpus line %d: input and target must be non-empty", line)
		}
		pairs = append(pairs, Pair{Input: input, Target: target})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return pairs, nil
}

// LoadCorpus parses the corpus file at path.
func LoadCorpus(path string) ([]Pair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()
	return ParseCorpus(f)
}

type Trainer struct {
	Epochs  int
	BrainID string
	Corpus  string

	// Seed enables per-epoch shuffling of the pair order when non-zero.
	Seed int64

	// Progress, when set, is called after every epoch with the smoothed
	// error rate observed so far.
	Progress func(epoch int, errorRate float64)
}

// Run presents every pair for each epoch and returns the run record. It stops
// early when the context is cancelled, keeping whatever learning has already
// happened.
func (t Trainer) Run(ctx context.Context, g *graph.Graph, pairs []Pair) (model.TrainingRun, error) {
	epochs := t.Epochs
	if epochs < 1 {
		epochs = 1
	}
	run := model.TrainingRun{
		ID:        uuid.NewString(),
		BrainID:   t.BrainID,
		Corpus:    t.Corpus,
		Pairs:     len(pairs),
		Epochs:    epochs,
		StartedAt: time.Now().UTC(),
	}

	order := make([]Pair, len(pairs))
	copy(order, pairs)
	var rng *rand.Rand
	if t.Seed != 0 {
		rng = rand.New(rand.NewSource(t.Seed))
	}

	for epoch := 0; epoch < epochs; epoch++ {
		if rng != nil {
			rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, pair := range order {
			select {
			case <-ctx.Done():
				run.FinishedAt = time.Now().UTC()
				run.FinalErrorRate = g.Stats().ErrorRate
				return run, ctx.Err()
			default:
			}
			if _, err := g.RunEpisode([]byte(pair.Input), []byte(pair.Target)); err != nil {
				run.FinishedAt = time.Now().UTC()
				run.FinalErrorRate = g.Stats().ErrorRate
				return run, fmt.Errorf("episode %q -> %q: %w", pair.Input, pair.Target, err)
			}
			run.Episodes++
		}
		if t.Progress != nil {
			t.Progress(epoch+1, g.Stats().ErrorRate)
		}
	}

	run.FinishedAt = time.Now().UTC()
	run.FinalErrorRate = g.Stats().ErrorRate
	return run, nil
}
