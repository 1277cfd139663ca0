// Command checker reviews a single document from the command line and
// streams the model's critique to stdout.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/BerylCAtieno/document-compliance-api/internal/completion"
	"github.com/BerylCAtieno/document-compliance-api/internal/config"
	"github.com/BerylCAtieno/document-compliance-api/internal/criteria"
	"github.com/BerylCAtieno/document-compliance-api/internal/extractor"
	"github.com/BerylCAtieno/document-compliance-api/internal/prompt"
	"github.com/BerylCAtieno/document-compliance-api/internal/review"
	"github.com/BerylCAtieno/document-compliance-api/internal/utils"
)

func main() {
	file := flag.String("file", "", "document to review")
	mode := flag.String("mode", "", "review mode: per_criterion or batch (defaults to REVIEW_MODE)")
	checks := flag.String("checks", "", "comma-separated criterion IDs (catalog defaults if empty)")
	custom := flag.String("custom", "", "additional free-text check")
	list := flag.Bool("list", false, "list the criteria catalog and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	// Logs go to stderr so stdout carries only the review.
	logger := utils.NewLoggerTo(os.Stderr, cfg.LogLevel)

	catalog := criteria.DefaultCatalog()
	if cfg.CriteriaFile != "" {
		if catalog, err = criteria.LoadFile(cfg.CriteriaFile); err != nil {
			logger.Fatal("Failed to load criteria", "error", err, "path", cfg.CriteriaFile)
		}
	}

	if *list {
		printCatalog(catalog)
		return
	}

	if *file == "" {
		fmt.Fprintln(os.Stderr, "usage: checker -file <document> [-mode per_criterion|batch] [-checks id,id] [-custom text]")
		os.Exit(2)
	}

	runMode := *mode
	if runMode == "" {
		runMode = cfg.ReviewMode
	}
	reviewMode, err := review.ParseMode(runMode)
	if err != nil {
		logger.Fatal("Invalid review mode", "error", err)
	}

	var ids []string
	if strings.TrimSpace(*checks) != "" {
		for _, id := range strings.Split(*checks, ",") {
			ids = append(ids, strings.TrimSpace(id))
		}
	}
	selected, err := catalog.Select(ids, *custom)
	if err != nil {
		logger.Fatal("Invalid selection", "error", err)
	}

	registry, err := extractor.New(cfg.AllowedFormats...)
	if err != nil {
		logger.Fatal("Invalid document formats", "error", err)
	}
	data, err := os.ReadFile(*file)
	if err != nil {
		logger.Fatal("Failed to read document", "error", err, "path", *file)
	}
	text, err := registry.Extract(data, filepath.Base(*file))
	if err != nil {
		logger.Fatal("Failed to extract text", "error", err, "path", *file)
	}

	template, err := prompt.ParseTemplate(cfg.PromptTemplate)
	if err != nil {
		logger.Fatal("Invalid prompt template", "error", err)
	}
	streamer := completion.NewOpenAIStreamer(completion.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		Model:       cfg.LLMModel,
		Temperature: cfg.LLMTemperature,
	}, logger)
	orchestrator := review.NewOrchestrator(streamer, template, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := orchestrator.Run(ctx, review.Request{
		DocumentText: text,
		Criteria:     selected,
		Mode:         reviewMode,
	}, printEvent)
	if err != nil {
		logger.Fatal("Review failed", "error", err)
	}

	if failed := report.Failed(); len(failed) > 0 {
		logger.Error("Some checks failed", "count", len(failed))
		os.Exit(1)
	}
}

func printEvent(e review.Event) {
	switch e.Kind {
	case review.EventStart:
		fmt.Printf("## %s\n\n", strings.Join(e.Criteria, "; "))
	case review.EventFragment:
		fmt.Print(e.Text)
	case review.EventDone:
		fmt.Print("\n\n")
	case review.EventFailed:
		fmt.Fprintf(os.Stderr, "check failed: %v\n\n", e.Err)
	}
}

func printCatalog(catalog *criteria.Catalog) {
	for _, c := range catalog.All() {
		marker := " "
		if c.Default {
			marker = "*"
		}
		fmt.Printf("%s %-24s %s\n", marker, c.ID, c.Text)
	}
}
