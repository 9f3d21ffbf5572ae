// main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/AI-Template-SDK/brand-tracker/internal/config"
	"github.com/AI-Template-SDK/brand-tracker/internal/runner"
	"github.com/AI-Template-SDK/brand-tracker/internal/sink"
	"github.com/AI-Template-SDK/brand-tracker/workflows"
	"github.com/inngest/inngestgo"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		if err := godotenv.Load("dev.env"); err != nil {
			log.Printf("Note: No .env or dev.env file loaded: %v", err)
		} else {
			log.Printf("Loaded dev.env file for local development")
		}
	} else {
		log.Printf("Loaded .env file")
	}

	cfg := config.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	log.Printf("Environment: %s", cfg.Environment)
	log.Printf("Port: %s", cfg.Port)
	if cfg.OpenAIAPIKey == "" {
		log.Printf("WARNING: OpenAI API key not loaded!")
	}
	if cfg.AnthropicAPIKey == "" {
		log.Printf("WARNING: Anthropic API key not loaded!")
	}

	ctx := context.Background()

	// Record sink: Postgres when configured, stdout JSONL otherwise.
	var recordSink sink.RecordSink
	if cfg.DatabaseURL != "" {
		pgSink, err := sink.NewPostgresSink(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect record sink to database: %v", err)
		}
		recordSink = pgSink
		log.Printf("Postgres record sink initialized")
	} else {
		recordSink = sink.NewJSONLSink(os.Stdout)
		log.Printf("No DATABASE_URL set, writing records to stdout")
	}
	defer recordSink.Close()

	trackerRunner := runner.New(cfg, recordSink, logger)

	if cfg.Environment == "development" || cfg.Environment == "" {
		os.Unsetenv("INNGEST_SIGNING_KEY")
		cfg.InngestSigningKey = ""
		log.Printf("Running in development mode - signing key verification disabled")
	}

	client, err := inngestgo.NewClient(
		inngestgo.ClientOpts{
			AppID:    "brand-tracker",
			EventKey: inngestgo.StrPtr(cfg.InngestEventKey),
			Env:      inngestgo.StrPtr(cfg.Environment),
		},
	)
	if err != nil {
		log.Fatalf("Failed to create Inngest client: %v", err)
	}

	trackerProcessor := workflows.NewTrackerProcessor(trackerRunner)
	trackerProcessor.SetClient(client)
	trackerProcessor.ProcessTrackingRun()
	log.Printf("Tracker processor initialized and function registered")

	h := client.Serve()
	mux := http.NewServeMux()
	mux.Handle("/api/inngest", h)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"service":"brand-tracker","status":"running"}`))
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	mux.HandleFunc("/test/trigger-run", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		evt := inngestgo.Event{
			Name: "brand.tracker/run.requested",
			Data: map[string]interface{}{
				"category":      "CRM software",
				"tracked_brand": "Acme",
				"competitors":   []string{"Beta", "Gamma"},
				"platforms":     []string{"chatgpt", "claude"},
				"prompt_count":  5,
				"triggered_by":  "manual_test",
			},
		}
		result, err := client.Send(r.Context(), evt)
		if err != nil {
			log.Printf("Failed to send test event: %v", err)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(fmt.Sprintf(`{"error":"Failed to send event: %v"}`, err)))
			return
		}
		log.Printf("Test event sent successfully: %+v", result)
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(fmt.Sprintf(`{"status":"success","event_ids":["%s"]}`, result)))
	})

	log.Printf("Starting brand-tracker service on port %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		log.Fatal(err)
	}
}
