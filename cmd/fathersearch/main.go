// Copyright 2025 Paul David Fisher
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
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	fathersearch "github.com/pauldavidfisher/church-fathers-search"
	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/corpus/jsonl"
	"github.com/pauldavidfisher/church-fathers-search/corpus/static"
	"github.com/pauldavidfisher/church-fathers-search/reindex"
	"github.com/pauldavidfisher/church-fathers-search/search"
)

func main() {
	app := &cli.App{
		Name:  "fathersearch",
		Usage: "Phrase search over the writings of the Church Fathers",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "./fathers_db",
			},
			&cli.BoolFlag{
				Name:  "in-memory",
				Usage: "Keep the database in memory; data is lost on exit",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "index",
				Usage:  "Ingest and index a JSONL corpus file",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "input",
						Aliases:  []string{"i"},
						Usage:    "Corpus file, one JSON document per line",
						Required: true,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search indexed chapters",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Search type (exact, proximity, fuzzy, boolean, combined)",
						Value:   "exact",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results per search type",
						Value:   10,
					},
					&cli.UintFlag{
						Name:  "max-distance",
						Usage: "Maximum token span for proximity matches (0 uses the configured default)",
					},
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum similarity for fuzzy matches (0 uses the configured default)",
					},
					&cli.StringFlag{
						Name:  "author",
						Usage: "Keep only results whose author name contains this string",
					},
					&cli.BoolFlag{
						Name:  "explain",
						Usage: "Log each search stage",
					},
				},
			},
			{
				Name:   "stats",
				Usage:  "Print corpus and index statistics",
				Action: statsCommand,
			},
			{
				Name:   "seed",
				Usage:  "Load the built-in demo corpus",
				Action: seedCommand,
			},
			{
				Name:   "reindex",
				Usage:  "Rebuild the phrase index for every stored chapter",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Rebuild chapters even when their index looks consistent",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chapters to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chapters",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func openDatabase(c *cli.Context) (*fathersearch.Database, error) {
	var opts []fathersearch.DatabaseOption
	if c.Bool("in-memory") {
		opts = append(opts, fathersearch.WithInMemory())
	}

	db, err := fathersearch.NewDatabase(c.String("db"), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func indexCommand(c *cli.Context) error {
	ctx := context.Background()

	inputPath := c.String("input")
	f, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("failed to open corpus file: %w", err)
	}
	defer f.Close()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Indexing %s\n", inputPath)
	start := time.Now()

	report, err := pipeline.Run(ctx, jsonl.NewSource(f))
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Printf("Indexed %d chapters (%d already indexed, %d failed) in %v\n",
		report.Ingested, report.AlreadyIndexed, report.Failed,
		time.Since(start).Round(time.Millisecond))
	if report.Err != nil {
		fmt.Fprintf(os.Stderr, "Failures:\n%v\n", report.Err)
	}

	return nil
}

func searchCommand(c *cli.Context) error {
	ctx := context.Background()

	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	method, err := parseMethod(c.String("type"))
	if err != nil {
		return err
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}

	var monitor search.SearchMonitor
	if c.Bool("explain") {
		monitor = search.NewLoggingMonitor(nil)
	}

	author := c.String("author")

	if method == core.MethodCombined {
		byMethod, err := searcher.CombinedWithMonitor(ctx, query, c.Int("limit"), monitor)
		if err != nil {
			return fmt.Errorf("search failed: %w", err)
		}
		for _, m := range []core.SearchMethod{core.MethodExact, core.MethodProximity, core.MethodFuzzy, core.MethodBoolean} {
			results, ok := byMethod[m]
			if !ok {
				continue
			}
			results = search.FilterByAuthor(results, author)
			fmt.Printf("== %s: %d hits\n", m, len(results))
			printResults(results)
		}
		return nil
	}

	req := search.Request{
		Method:      method,
		Query:       query,
		Limit:       c.Int("limit"),
		MaxDistance: uint32(c.Uint("max-distance")),
		Threshold:   c.Float64("threshold"),
	}
	results, err := searcher.SearchWithMonitor(ctx, req, monitor)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	results = search.FilterByAuthor(results, author)

	fmt.Printf("Found %d hits\n", len(results))
	printResults(results)
	return nil
}

func parseMethod(name string) (core.SearchMethod, error) {
	switch strings.ToLower(name) {
	case "exact":
		return core.MethodExact, nil
	case "proximity":
		return core.MethodProximity, nil
	case "fuzzy":
		return core.MethodFuzzy, nil
	case "boolean":
		return core.MethodBoolean, nil
	case "combined":
		return core.MethodCombined, nil
	default:
		return "", fmt.Errorf("invalid search type %q: must be one of exact, proximity, fuzzy, boolean, combined", name)
	}
}

func printResults(results []*core.SearchResult) {
	for i, hit := range results {
		fmt.Printf("%d. %s, %s", i+1, hit.Author, hit.WorkTitle)
		if hit.ChapterTitle != "" {
			fmt.Printf(", %s", hit.ChapterTitle)
		}
		fmt.Println()

		switch hit.Method {
		case core.MethodFuzzy:
			fmt.Printf("   [%s %.3f] %q\n", hit.Method, hit.Similarity, hit.Phrase)
		case core.MethodProximity:
			fmt.Printf("   [%s span=%d] %q\n", hit.Method, hit.Span, hit.Phrase)
		default:
			fmt.Printf("   [%s] %q\n", hit.Method, hit.Phrase)
		}
		if hit.Context != "" {
			fmt.Printf("   %s\n", hit.Context)
		}
	}
}

func statsCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := db.Stats(ctx)
	if err != nil {
		return fmt.Errorf("failed to gather statistics: %w", err)
	}

	fmt.Printf("Authors:          %d\n", stats.Authors)
	fmt.Printf("Works:            %d\n", stats.Works)
	fmt.Printf("Chapters:         %d\n", stats.Chapters)
	fmt.Printf("Indexed chapters: %d\n", stats.IndexedChapters)
	fmt.Printf("Tokens:           %d\n", stats.Tokens)
	fmt.Printf("Unique phrases:   %d\n", stats.UniquePhrases)
	fmt.Printf("Phrase postings:  %d\n", stats.PhrasePostings)
	fmt.Printf("Trigram postings: %d\n", stats.TrigramPostings)
	return nil
}

func seedCommand(c *cli.Context) error {
	ctx := context.Background()

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return fmt.Errorf("failed to create ingestion pipeline: %w", err)
	}
	defer pipeline.Release()

	report, err := pipeline.Run(ctx, static.NewSource())
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	fmt.Printf("Seeded %d chapters (%d already present)\n", report.Ingested, report.AlreadyIndexed)
	return report.Err
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	config := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Force:          c.Bool("force"),
	}

	// Validate config
	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reindexer := db.NewReindexer(config, os.Stderr)
	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}

	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
