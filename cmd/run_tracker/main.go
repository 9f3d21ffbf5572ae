// cmd/run_tracker/main.go
//
// One-shot CLI that executes a single tracking run and writes the output
// records as JSON lines to stdout (or a file).
//
// Usage:
//
//	run_tracker -category "CRM software" -brand Acme -competitors Beta,Gamma \
//	    -platforms chatgpt,claude -prompts 5 -out records.jsonl
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/models"
	"github.com/AI-Template-SDK/brand-tracker/internal/runner"
	"github.com/AI-Template-SDK/brand-tracker/internal/sink"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	category := flag.String("category", "", "product/service category to research (required)")
	brand := flag.String("brand", "", "tracked brand name (required)")
	competitors := flag.String("competitors", "", "comma-separated competitor brands")
	platforms := flag.String("platforms", "", "comma-separated platforms (default: all)")
	promptCount := flag.Int("prompts", 0, "number of prompts (default 10, capped)")
	outPath := flag.String("out", "", "write records to this file instead of stdout")
	flag.Parse()

	if *category == "" || *brand == "" {
		flag.Usage()
		log.Fatal("both -category and -brand are required")
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Note: no .env file loaded: %v", err)
	}
	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	out := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			log.Fatalf("Failed to create output file: %v", err)
		}
		out = f
	}
	recordSink := sink.NewJSONLSink(out)
	defer recordSink.Close()

	input := &models.TrackerInput{
		Category:     *category,
		TrackedBrand: *brand,
		Competitors:  splitList(*competitors),
		Platforms:    splitList(*platforms),
		PromptCount:  *promptCount,
	}

	report, err := runner.New(cfg, recordSink, logger).Run(context.Background(), input)
	if err != nil {
		var fatalErr *runner.RunFatalError
		if errors.As(err, &fatalErr) {
			log.Printf("Run failed: %v", fatalErr)
			os.Exit(1)
		}
		log.Fatalf("Run aborted: %v", err)
	}

	log.Printf("Run %s %s: %d prompts, %d responses, %d errors, %d warnings",
		report.RunID, report.Status, report.PromptsProcessed,
		report.ResponsesCollected, report.Errors, report.Warnings)
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
