// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/quorum"
	"github.com/poiesic/quorum/config"
	"github.com/poiesic/quorum/core"
	"github.com/poiesic/quorum/pipeline"
	"github.com/poiesic/quorum/reembed"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the CLI. systemOpts are passed to every quorum.NewSystem call.
func newApp(stdout, stderr io.Writer, systemOpts ...quorum.Option) *cli.App {
	cmd := &commands{systemOpts: systemOpts}
	defaults := reembed.DefaultConfig()

	return &cli.App{
		Name:      "quorum",
		Usage:     "Multi-stage question answering over a local document store",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML config file (default: ./quorum.yaml, then ~/.config/quorum/config.yaml)",
			},
			&cli.StringFlag{
				Name:  "store",
				Usage: "Override store.path",
			},
			&cli.StringFlag{
				Name:  "store-type",
				Usage: "Override store.type (file, badger)",
			},
			&cli.StringFlag{
				Name:  "generation-host",
				Usage: "Override ai.generation_host",
			},
			&cli.StringFlag{
				Name:  "generation-model",
				Usage: "Override ai.generation_model",
			},
			&cli.StringFlag{
				Name:  "embedding-url",
				Usage: "Override ai.embedding_url",
			},
			&cli.StringFlag{
				Name:  "embedding-model",
				Usage: "Override ai.embedding_model",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:      "ingest",
				Usage:     "Chunk, embed and store documents (.txt, .md, .pdf, .docx)",
				ArgsUsage: "<files...>",
				Action:    cmd.ingest,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "text",
						Usage: "Ingest a literal text instead of a file (repeatable)",
					},
					&cli.IntFlag{
						Name:  "chunk-size",
						Usage: "Override store.chunk_size (runes per chunk)",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a question through the seven-stage pipeline",
				ArgsUsage: "<question>",
				Action:    cmd.ask,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the full result as JSON",
					},
					&cli.BoolFlag{
						Name:  "show-stages",
						Usage: "Print every stage output after the answer",
					},
					&cli.BoolFlag{
						Name:  "no-retrieval",
						Usage: "Answer without consulting the document store",
					},
					&cli.StringFlag{
						Name:  "domain",
						Usage: "Override pipeline.domain",
					},
				},
			},
			{
				Name:      "retrieve",
				Usage:     "Show the best matching chunks for a query",
				ArgsUsage: "<query>",
				Action:    cmd.retrieve,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of chunks to show (default: retrieval.top_k)",
					},
				},
			},
			{
				Name:   "reset",
				Usage:  "Delete every stored chunk",
				Action: cmd.reset,
			},
			{
				Name:   "reindex",
				Usage:  "Re-embed every stored chunk with the configured embedding model",
				Action: cmd.reindex,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to embed per request",
						Value: defaults.BatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: defaults.ReportInterval,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per batch",
						Value: defaults.MaxRetries,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: defaults.RetryDelay,
					},
					&cli.BoolFlag{
						Name:  "normalize",
						Usage: "Scale new vectors to unit length",
					},
				},
			},
			{
				Name:   "stages",
				Usage:  "Print the pipeline stage table",
				Action: cmd.stages,
			},
		},
	}
}

type commands struct {
	systemOpts []quorum.Option
}

func (cmd *commands) open(c *cli.Context, extra ...quorum.Option) (*quorum.System, *config.Config, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, nil, err
	}
	if c.IsSet("domain") {
		cfg.Pipeline.Domain = c.String("domain")
	}
	if c.Bool("no-retrieval") {
		cfg.Retrieval.Disabled = true
	}
	if c.IsSet("chunk-size") {
		cfg.Store.ChunkSize = c.Int("chunk-size")
	}

	opts := append(append([]quorum.Option{}, cmd.systemOpts...), extra...)
	sys, err := quorum.NewSystem(cfg, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open system: %w", err)
	}
	return sys, cfg, nil
}

func (cmd *commands) ingest(c *cli.Context) error {
	files := c.Args().Slice()
	texts := c.StringSlice("text")
	if len(files) == 0 && len(texts) == 0 {
		return fmt.Errorf("nothing to ingest: pass files or --text")
	}

	sys, _, err := cmd.open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	out := c.App.Writer
	if len(texts) > 0 {
		result, err := sys.Ingest(c.Context, texts)
		if result != nil {
			fmt.Fprintf(out, "Texts: added %d chunks\n", result.Added)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  text %d: %v\n", e.Index, e.Err)
			}
		}
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}
	if len(files) > 0 {
		result, err := sys.IngestFiles(c.Context, files)
		if result != nil {
			fmt.Fprintf(out, "Files: added %d chunks\n", result.Added)
			for _, e := range result.Errors {
				fmt.Fprintf(out, "  %s: %v\n", files[e.Index], e.Err)
			}
		}
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
	}
	fmt.Fprintf(out, "Store now holds %d chunks\n", sys.Len())
	return nil
}

func (cmd *commands) ask(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	asJSON := c.Bool("json")

	var opts []quorum.Option
	if !asJSON {
		opts = append(opts, quorum.WithObserver(newProgressObserver(c.App.ErrWriter)))
	}
	sys, _, err := cmd.open(c, opts...)
	if err != nil {
		return err
	}
	defer sys.Close()

	result, err := sys.Ask(c.Context, question)
	if err != nil {
		return err
	}

	out := c.App.Writer
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResult(out, result, c.Bool("show-stages"))
	}

	if !result.Succeeded() {
		return cli.Exit(result.Message, 1)
	}
	return nil
}

func printResult(out io.Writer, result *pipeline.Result, showStages bool) {
	if result.Succeeded() {
		fmt.Fprintln(out, result.FinalResult)
		if result.FallbackApplied {
			fmt.Fprintln(out, "\n(note: the generated answer was a refusal and has been replaced)")
		}
	}
	if showStages {
		fmt.Fprintln(out)
		for _, entry := range result.History {
			fmt.Fprintf(out, "== %s ==\n%s\n\n", entry.Stage, entry.Output)
		}
		if len(result.UsedContext) > 0 {
			fmt.Fprintf(out, "== context (%d chunks) ==\n", len(result.UsedContext))
			for i, chunk := range result.UsedContext {
				fmt.Fprintf(out, "%d. %s\n", i+1, chunk)
			}
		}
	}
}

func (cmd *commands) retrieve(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	sys, _, err := cmd.open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	results := sys.Retrieve(c.Context, query, c.Int("top-k"))
	out := c.App.Writer
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching chunks")
		return nil
	}
	for i, r := range results {
		fmt.Fprintf(out, "%d. score %.3f (vector %.3f, lexical %.3f)\n   %s\n",
			i+1, r.Score, r.VectorScore, r.LexicalScore, r.Chunk.Text)
	}
	return nil
}

func (cmd *commands) reset(c *cli.Context) error {
	sys, cfg, err := cmd.open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	n := sys.Len()
	if err := sys.Reset(c.Context); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Removed %d chunks from %s\n", n, cfg.Store.Path)
	return nil
}

func (cmd *commands) reindex(c *cli.Context) error {
	rc := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		MaxRetryDelay:  reembed.DefaultConfig().MaxRetryDelay,
		Normalize:      c.Bool("normalize"),
	}
	if rc.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if rc.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if rc.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	sys, cfg, err := cmd.open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	fmt.Fprintf(c.App.ErrWriter, "Store: %s (%s)\n", cfg.Store.Path, cfg.Store.Type)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n\n", cfg.AI.EmbeddingModel)

	report, err := sys.Reindex(c.Context, c.App.ErrWriter, rc)
	if err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Reindexed %d chunks (dimension %d) in %v\n",
		report.Chunks, report.Dimension, report.Elapsed.Round(time.Millisecond))
	return nil
}

func (cmd *commands) stages(c *cli.Context) error {
	out := c.App.Writer
	for _, d := range core.Stages() {
		deps := "none"
		if len(d.DependsOn) > 0 {
			names := make([]string, len(d.DependsOn))
			for i, dep := range d.DependsOn {
				names[i] = string(dep)
			}
			deps = strings.Join(names, ", ")
		}
		fmt.Fprintf(out, "%d. %-22s reads: %s\n", d.Order, d.Name, deps)
	}
	return nil
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	var (
		cfg  *config.Config
		path string
		err  error
	)
	if path = c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, path, err = config.LoadDefault()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	slog.Debug("config loaded", "path", path)

	if c.IsSet("store") {
		cfg.Store.Path = c.String("store")
	}
	if c.IsSet("store-type") {
		cfg.Store.Type = c.String("store-type")
	}
	if c.IsSet("generation-host") {
		cfg.AI.GenerationHost = c.String("generation-host")
	}
	if c.IsSet("generation-model") {
		cfg.AI.GenerationModel = c.String("generation-model")
	}
	if c.IsSet("embedding-url") {
		cfg.AI.EmbeddingURL = c.String("embedding-url")
	}
	if c.IsSet("embedding-model") {
		cfg.AI.EmbeddingModel = c.String("embedding-model")
	}
	return cfg, nil
}

func setup(c *cli.Context) error {
	if err := setupLogger(c); err != nil {
		return err
	}
	return config.LoadEnv()
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
