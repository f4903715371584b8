package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-sifter/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP server exposing the sifter as a REST API.

Endpoints:
  GET    /health               - Health check
  POST   /extract              - Sift a document (JSON, text or HTML body)
  POST   /extract/stream       - Same, streaming step progress over SSE
  GET    /config               - Active configuration
  POST   /config/reload        - Re-read the configuration file
  GET    /runs                 - List stored runs (needs a database)
  GET    /runs/{id}            - Run details with step timings
  GET    /runs/{id}/report     - Stored report
  GET    /runs/{id}/records    - Stored records, optionally ?section=
  GET    /runs/{id}/steps      - Step timings
  DELETE /runs/{id}            - Delete a run

Requests need a bearer token when JWT_SECRET is set.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	servePort        int
	serveDatabaseURL string
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8080, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "database-url", "", "PostgreSQL URL for run storage (defaults to DATABASE_URL)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	databaseURL := serveDatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}

	srv, err := server.New(ctx, server.Config{
		Port:        servePort,
		ConfigPath:  configPath,
		DatabaseURL: databaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return srv.Start()
}
