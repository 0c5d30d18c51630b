package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	fathersearch "github.com/pauldavidfisher/church-fathers-search"
	"github.com/pauldavidfisher/church-fathers-search/core"
	"github.com/pauldavidfisher/church-fathers-search/corpus"
	"github.com/pauldavidfisher/church-fathers-search/corpus/jsonl"
	"github.com/pauldavidfisher/church-fathers-search/corpus/static"
	"github.com/pauldavidfisher/church-fathers-search/search"
)

var (
	dbPath     = flag.String("db", "./fathers_db", "path to the database directory")
	corpusFile = flag.String("src", "", "JSONL corpus file to seed from instead of the built-in sample")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := fathersearch.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	ingester, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer ingester.Release()

	ctx := context.Background()

	// Determine source of seed data
	var source corpus.Source
	if *corpusFile != "" {
		f, err := os.Open(*corpusFile)
		if err != nil {
			panic(err)
		}
		defer f.Close()
		source = jsonl.NewSource(f)
	} else {
		source = static.NewSource()
	}

	report, err := ingester.Run(ctx, source)
	if err != nil {
		panic(err)
	}
	fmt.Printf("Seeded %d chapters (%d already indexed, %d failed)\n\n",
		report.Ingested, report.AlreadyIndexed, report.Failed)

	searcher, err := db.NewSearcher()
	if err != nil {
		panic(err)
	}

	demo(ctx, searcher, core.MethodExact, "kingdom of Christ")
	demo(ctx, searcher, core.MethodProximity, "heart rest")
	demo(ctx, searcher, core.MethodFuzzy, "kingdom of chryst")
	demo(ctx, searcher, core.MethodBoolean, "god AND love NOT kingdom")
}

// demo runs one sample search and prints its hits.
func demo(ctx context.Context, searcher *search.Searcher, method core.SearchMethod, query string) {
	results, err := searcher.Search(ctx, search.Request{Method: method, Query: query, Limit: 5})
	if err != nil {
		panic(err)
	}

	fmt.Printf("%s %q: %d hits\n", method, query, len(results))
	for i, hit := range results {
		fmt.Printf("%d: '%s' (%s, %s)\n", i, hit.Phrase, hit.Author, hit.WorkTitle)
	}
	fmt.Println()
}
