package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"mnemon/internal/server"
	"mnemon/internal/storage"
	"mnemon/internal/trainer"
	"mnemon/pkg/mnemon"
)

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "teach":
		return runTeach(ctx, args[1:])
	case "infer":
		return runInfer(ctx, args[1:])
	case "train":
		return runTrain(ctx, args[1:])
	case "serve":
		return runServe(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "import":
		return runImport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: mnemonctl <teach|infer|train|serve|runs|export|import> [flags]", msg)
}

type clientFlags struct {
	storeKind  *string
	dbPath     *string
	brainID    *string
	configPath *string
}

func registerClientFlags(fs *flag.FlagSet) clientFlags {
	return clientFlags{
		storeKind:  fs.String("store", "memory", "store backend: memory|sqlite"),
		dbPath:     fs.String("db-path", "mnemon.db", "sqlite database path"),
		brainID:    fs.String("brain", "default", "brain id used for persistence"),
		configPath: fs.String("config", "", "optional graph config JSON path"),
	}
}

func newClient(ctx context.Context, f clientFlags) (*mnemon.Client, error) {
	cfg, err := loadOrDefaultGraphConfig(*f.configPath)
	if err != nil {
		return nil, err
	}
	client, err := mnemon.New(mnemon.Options{
		StoreKind: *f.storeKind,
		DBPath:    *f.dbPath,
		BrainID:   *f.brainID,
		Config:    cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runTeach(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("teach", flag.ContinueOnError)
	cf := registerClientFlags(fs)
	input := fs.String("input", "", "input byte sequence")
	target := fs.String("target", "", "desired output byte sequence")
	repeat := fs.Int("repeat", 1, "supervised episode count")
	load := fs.Bool("load", false, "load the brain from the store before teaching")
	save := fs.Bool("save", false, "save the brain to the store after teaching")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, cf)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *load {
		if err := client.Load(ctx); err != nil {
			return err
		}
	}
	summary, err := client.Teach(ctx, mnemon.TeachRequest{Input: *input, Target: *target, Repeat: *repeat})
	if err != nil {
		return err
	}
	if *save {
		if err := client.Save(ctx); err != nil {
			return err
		}
	}

	fmt.Printf("episodes=%d error_rate=%.4f output=%q\n", summary.Episodes, summary.ErrorRate, summary.Output)
	return nil
}

func runInfer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("infer", flag.ContinueOnError)
	cf := registerClientFlags(fs)
	input := fs.String("input", "", "input byte sequence")
	load := fs.Bool("load", true, "load the brain from the store before inferring")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, cf)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if *load {
		if err := client.Load(ctx); err != nil {
			return err
		}
	}
	out, err := client.Infer(ctx, *input)
	if err != nil {
		return err
	}

	fmt.Println(out)
	return nil
}

func runTrain(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	cf := registerClientFlags(fs)
	corpusPath := fs.String("corpus", "", "corpus file with input<TAB>target lines")
	epochs := fs.Int("epochs", 1, "passes over the corpus")
	save := fs.Bool("save", true, "save the brain to the store after training")
	llmModel := fs.String("llm-model", "", "generate pairs from seeds via a chat-completion model")
	llmBaseURL := fs.String("llm-base-url", "", "OpenAI-compatible endpoint, e.g. http://localhost:11434/v1")
	llmAPIKey := fs.String("llm-api-key", os.Getenv("OPENAI_API_KEY"), "api key for the completion endpoint")
	seedsPath := fs.String("seeds", "", "seed inputs for llm pair generation, one per line")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var pairs []trainer.Pair
	var corpusName string
	switch {
	case *corpusPath != "":
		loaded, err := trainer.LoadCorpus(*corpusPath)
		if err != nil {
			return err
		}
		info, err := os.Stat(*corpusPath)
		if err != nil {
			return err
		}
		fmt.Printf("corpus %s (%s, %d pairs)\n", *corpusPath, humanize.Bytes(uint64(info.Size())), len(loaded))
		pairs = loaded
		corpusName = *corpusPath
	case *llmModel != "":
		seeds, err := readSeeds(*seedsPath)
		if err != nil {
			return err
		}
		source, err := trainer.NewLLMSource(trainer.LLMOptions{
			APIKey:  *llmAPIKey,
			BaseURL: *llmBaseURL,
			Model:   *llmModel,
		})
		if err != nil {
			return err
		}
		pairs, err = source.Pairs(ctx, seeds)
		if err != nil {
			return err
		}
		fmt.Printf("generated %d pairs from %d seeds via %s\n", len(pairs), len(seeds), *llmModel)
		corpusName = fmt.Sprintf("llm:%s", *llmModel)
	default:
		return usageError("train requires -corpus or -llm-model")
	}

	client, err := newClient(ctx, cf)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	start := time.Now()
	record, err := client.Train(ctx, mnemon.TrainRequest{
		Corpus: corpusName,
		Pairs:  pairs,
		Epochs: *epochs,
		Progress: func(epoch int, errorRate float64) {
			fmt.Printf("epoch %d/%d error_rate=%.4f\n", epoch, *epochs, errorRate)
		},
	})
	if err != nil {
		return err
	}
	if *save {
		if err := client.Save(ctx); err != nil {
			return err
		}
	}

	fmt.Printf("run=%s episodes=%s epochs=%d final_error_rate=%.4f elapsed=%s\n",
		record.ID, humanize.Comma(int64(record.Episodes)), record.Epochs,
		record.FinalErrorRate, time.Since(start).Round(time.Millisecond))
	return nil
}

func runServe(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", ":8080", "listen address")
	storeKind := fs.String("store", "memory", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mnemon.db", "sqlite database path")
	configPath := fs.String("config", "", "optional graph config JSON path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadOrDefaultGraphConfig(*configPath)
	if err != nil {
		return err
	}
	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	srv := server.New(server.Options{Store: store, GraphConfig: cfg})
	fmt.Printf("listening on %s store=%s\n", *addr, *storeKind)
	return srv.Run(*addr)
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	cf := registerClientFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(ctx, cf)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	runs, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no training runs recorded")
		return nil
	}
	for _, run := range runs {
		fmt.Printf("%s brain=%s corpus=%s episodes=%s error_rate=%.4f started=%s\n",
			run.ID, run.BrainID, run.Corpus, humanize.Comma(int64(run.Episodes)),
			run.FinalErrorRate, humanize.Time(run.StartedAt))
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mnemon.db", "sqlite database path")
	brainID := fs.String("brain", "default", "brain id to export")
	outPath := fs.String("out", "", "output file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *outPath == "" {
		return usageError("export requires -out")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}

	snap, ok, err := store.GetBrain(ctx, *brainID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("brain not found: %s", *brainID)
	}
	data, err := storage.EncodeBrain(snap)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, data, 0o644); err != nil {
		return err
	}

	fmt.Printf("exported %s to %s (%s)\n", *brainID, *outPath, humanize.Bytes(uint64(len(data))))
	return nil
}

func runImport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	storeKind := fs.String("store", "sqlite", "store backend: memory|sqlite")
	dbPath := fs.String("db-path", "mnemon.db", "sqlite database path")
	brainID := fs.String("brain", "", "brain id to import as (defaults to the exported id)")
	inPath := fs.String("in", "", "input file path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *inPath == "" {
		return usageError("import requires -in")
	}

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return err
	}
	snap, err := storage.DecodeBrain(data)
	if err != nil {
		return err
	}
	if *brainID != "" {
		snap.ID = *brainID
	}
	if snap.ID == "" {
		return fmt.Errorf("snapshot has no brain id; pass -brain")
	}

	store, err := storage.NewStore(*storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = storage.CloseIfSupported(store)
	}()
	if err := store.Init(ctx); err != nil {
		return err
	}
	if err := store.SaveBrain(ctx, snap); err != nil {
		return err
	}

	fmt.Printf("imported %s from %s\n", snap.ID, *inPath)
	return nil
}

func readSeeds(path string) ([]string, error) {
	if path == "" {
		return nil, usageError("llm training requires -seeds")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var seeds []string
	for _, line := range splitLines(string(data)) {
		if line == "" {
			continue
		}
		seeds = append(seeds, line)
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %s", path)
	}
	return seeds, nil
}
