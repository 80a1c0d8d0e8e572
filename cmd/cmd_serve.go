// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/spf13/cobra"

	"github.com/jusomap/jusomap/batch"
	"github.com/jusomap/jusomap/geocode"
	"github.com/jusomap/jusomap/server"
)

var serveOptions = struct {
	addr       string
	apiKey     string
	dailyLimit int
	delay      time.Duration
	dbPath     string
}{}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "지오코딩 JSON API 서버 실행 (local only)",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		apiKey := serveOptions.apiKey
		if apiKey == "" {
			apiKey = os.Getenv("VWORLD_API_KEY")
		}

		if apiKey == "" {
			return &geocode.GeocodingError{
				Type:    geocode.ErrorTypeConfiguration,
				Message: "no API key: pass --api-key or set VWORLD_API_KEY",
			}
		}

		db, err := openDatabase(serveOptions.dbPath, false)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := batch.NewRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		client := geocode.NewVWorldClient(&geocode.ClientOptions{
			APIKey:     apiKey,
			DailyLimit: serveOptions.dailyLimit,
			UserAgent:  fmt.Sprintf("jusomap/%s (+https://github.com/jusomap/jusomap)", Version),
		})

		resolver := geocode.NewResolver(client, serveOptions.delay)

		fmt.Println("🗺️  Geocoding API server starting...")
		fmt.Printf("📍 Open http://%s in your browser\n", serveOptions.addr)
		fmt.Println("🔒 Local only - not exposed to internet")

		return server.NewServer(resolver, client, repo).Run(serveOptions.addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(
		&serveOptions.addr,
		"addr",
		"localhost:8080",
		"Address to listen on",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.apiKey,
		"api-key",
		"",
		"VWorld API key (defaults to the VWORLD_API_KEY environment variable)",
	)
	serveCmd.Flags().IntVar(
		&serveOptions.dailyLimit,
		"daily-limit",
		geocode.DefaultDailyLimit,
		"Maximum number of API requests for this server instance",
	)
	serveCmd.Flags().DurationVar(
		&serveOptions.delay,
		"delay",
		100*time.Millisecond,
		"Pause between consecutive API requests",
	)
	serveCmd.Flags().StringVar(
		&serveOptions.dbPath,
		"db-path",
		"db",
		"Directory holding the results database",
	)
}
