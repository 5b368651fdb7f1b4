package cmd

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"

	"github.com/kbtools/pdf-ingest/config"
	"github.com/kbtools/pdf-ingest/handler"
	"github.com/kbtools/pdf-ingest/service"
)

// serveCmd starts the HTTP shell around the pipeline: a multipart ingest
// endpoint and a websocket progress feed.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the ingestion HTTP server",
	Long:  `Starts a server exposing the ingestion pipeline over HTTP.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}

		ingest, err := buildIngestService(context.Background(), cfg)
		if err != nil {
			log.Fatalf("Failed to connect to vector index: %v", err)
		}

		hub := service.NewProgressHub()
		ingestHandler := handler.NewIngestHandler(ingest, hub)
		progressHandler := handler.NewProgressWSHandler(hub)

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Logger)
		r.Use(middleware.Recoverer)
		r.Use(middleware.Timeout(10 * time.Minute))

		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}))

		r.Post("/api/v1/ingest", ingestHandler.HandleIngest)
		r.Get("/api/v1/progress", progressHandler.HandleProgress)
		r.Method(http.MethodGet, "/healthz", progressHandler.Health())

		log.Printf("Starting server on port %s...\n", cfg.Port)
		if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
			log.Fatal("Server error:", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
