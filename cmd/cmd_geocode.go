// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register duckdb driver
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/jusomap/jusomap/batch"
	"github.com/jusomap/jusomap/geocode"
	"github.com/jusomap/jusomap/utils/textutils"
)

var geocodeOptions = struct {
	addressColumn string
	apiKey        string
	dailyLimit    int
	delay         time.Duration
	maxRows       int
	output        string
	dbPath        string
	dryRun        bool
	traceHTTP     bool
	traceHTTPBody bool
}{}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <input.csv>",
	Short: "CSV 파일의 주소를 일괄 지오코딩",
	Long: `
Reads a CSV file, resolves the address column row by row, and writes a copy
of the file with latitude, longitude and diagnostic columns appended.
Results are also stored in the local database. A run interrupted by the
daily API quota keeps everything resolved so far.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		input := args[0]

		apiKey := geocodeOptions.apiKey
		if apiKey == "" {
			apiKey = os.Getenv("VWORLD_API_KEY")
		}

		if apiKey == "" {
			return &geocode.GeocodingError{
				Type:    geocode.ErrorTypeConfiguration,
				Message: "no API key: pass --api-key or set VWORLD_API_KEY",
			}
		}

		db, err := openDatabase(geocodeOptions.dbPath, geocodeOptions.dryRun)
		if err != nil {
			return err
		}
		defer db.Close()

		repo := batch.NewRepository(db)
		if err := repo.CreateSchema(); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}

		table, err := repo.LoadCSV(input)
		if err != nil {
			return err
		}

		if geocodeOptions.maxRows > 0 && len(table.Rows) > geocodeOptions.maxRows {
			table.Rows = table.Rows[:geocodeOptions.maxRows]
		}

		log.Printf("Loaded %s rows from %s", textutils.FormatInt(int64(len(table.Rows))), input)

		client := geocode.NewVWorldClient(&geocode.ClientOptions{
			APIKey:              apiKey,
			DailyLimit:          geocodeOptions.dailyLimit,
			UserAgent:           fmt.Sprintf("jusomap/%s (+https://github.com/jusomap/jusomap)", Version),
			EnableHTTPTrace:     geocodeOptions.traceHTTP,
			EnableHTTPBodyTrace: geocodeOptions.traceHTTPBody,
		})

		resolver := geocode.NewResolver(client, geocodeOptions.delay)
		processor := batch.NewProcessor(resolver, &client.Metrics)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out, stats, runErr := processor.Run(ctx, table, geocodeOptions.addressColumn, newProgressFunc(len(table.Rows)))
		if runErr != nil {
			if geocode.IsConfigurationError(runErr) {
				return runErr
			}

			// quota exhaustion and interruption keep the partial results
			log.Printf("Run stopped early: %v", runErr)
		}

		if stats.TotalProcessed == 0 {
			return runErr
		}

		if !geocodeOptions.dryRun {
			records, err := batch.RecordsFromTable(out, geocodeOptions.addressColumn)
			if err != nil {
				return err
			}

			if err := repo.BulkInsert(records); err != nil {
				return fmt.Errorf("storing results: %w", err)
			}
		}

		output := geocodeOptions.output
		if output == "" {
			output = filepath.Join(filepath.Dir(input), "geocoded_"+filepath.Base(input))
		}

		if err := repo.ExportCSV(out, output); err != nil {
			return err
		}

		printSummary(out, stats, client, output)

		return runErr
	},
}

func openDatabase(dbPath string, dryRun bool) (*sql.DB, error) {
	// dry runs work against an in-memory database
	dsn := ""

	if !dryRun {
		if err := os.MkdirAll(dbPath, 0o750); err != nil {
			return nil, fmt.Errorf("creating db directory: %w", err)
		}

		dsn = filepath.Join(dbPath, "jusomap.duckdb")
	}

	db, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return db, nil
}

func newProgressFunc(total int) batch.ProgressFunc {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		bar := progressbar.NewOptions(total,
			progressbar.OptionSetDescription("Geocoding"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		return func(_, _ int) {
			_ = bar.Add(1)
		}
	}

	return func(processed, total int) {
		if processed%100 == 0 || processed == total {
			log.Printf("Geocoded %s/%s addresses",
				textutils.FormatInt(int64(processed)),
				textutils.FormatInt(int64(total)))
		}
	}
}

func printSummary(out *batch.Table, stats *batch.Stats, client *geocode.VWorldClient, output string) {
	fmt.Printf("✅ Processed %s addresses: %s resolved (%.1f%%), %s via fallback type\n",
		textutils.FormatInt(int64(stats.TotalProcessed)),
		textutils.FormatInt(int64(stats.SuccessCount)),
		stats.SuccessRate()*100,
		textutils.FormatInt(int64(stats.FallbackSuccessCount)))
	fmt.Printf("   API calls: %s, cache hits: %s, remaining quota: %s\n",
		textutils.FormatInt(int64(stats.APICallCount)),
		textutils.FormatInt(int64(stats.CacheHitCount)),
		textutils.FormatInt(int64(client.RemainingQuota())))
	fmt.Printf("   Output written to %s (%s rows)\n",
		output, textutils.FormatInt(int64(len(out.Rows))))

	regions := make([]string, 0, len(stats.RegionStats))
	for region := range stats.RegionStats {
		regions = append(regions, region)
	}

	sort.Slice(regions, func(i, j int) bool {
		a, b := stats.RegionStats[regions[i]], stats.RegionStats[regions[j]]
		if a.Total != b.Total {
			return a.Total > b.Total
		}

		return regions[i] < regions[j]
	})

	a, b, c := strings.Repeat("─", 12), strings.Repeat("─", 8), strings.Repeat("─", 8)
	fmt.Println("지역별 결과:")
	fmt.Printf("╭─%-12s─┬─%8s─┬─%8s─╮\n", a, b, c)
	fmt.Printf("│ %-12s │ %8s │ %8s │\n", "지역", "전체", "성공")
	fmt.Printf("├─%-12s─┼─%8s─┼─%8s─┤\n", a, b, c)

	for _, region := range regions {
		stat := stats.RegionStats[region]
		fmt.Printf("│ %-12s │ %8s │ %8s │\n",
			region,
			textutils.FormatInt(int64(stat.Total)),
			textutils.FormatInt(int64(stat.Success)))
	}

	fmt.Printf("╰─%-12s─┴─%8s─┴─%8s─╯\n", a, b, c)
}

func init() {
	rootCmd.AddCommand(geocodeCmd)
	geocodeCmd.Flags().StringVar(
		&geocodeOptions.addressColumn,
		"address-column",
		"소재지",
		"Name of the CSV column holding the address",
	)
	geocodeCmd.Flags().StringVar(
		&geocodeOptions.apiKey,
		"api-key",
		"",
		"VWorld API key (defaults to the VWORLD_API_KEY environment variable)",
	)
	geocodeCmd.Flags().IntVar(
		&geocodeOptions.dailyLimit,
		"daily-limit",
		geocode.DefaultDailyLimit,
		"Maximum number of API requests for this run",
	)
	geocodeCmd.Flags().DurationVar(
		&geocodeOptions.delay,
		"delay",
		100*time.Millisecond,
		"Pause between consecutive API requests",
	)
	geocodeCmd.Flags().IntVar(
		&geocodeOptions.maxRows,
		"max-rows",
		0,
		"Process at most this many rows (0 = all)",
	)
	geocodeCmd.Flags().StringVar(
		&geocodeOptions.output,
		"output",
		"",
		"Output CSV path (defaults to geocoded_<input> next to the input)",
	)
	geocodeCmd.Flags().StringVar(
		&geocodeOptions.dbPath,
		"db-path",
		"db",
		"Directory holding the results database",
	)
	geocodeCmd.Flags().BoolVar(
		&geocodeOptions.dryRun,
		"dry-run",
		false,
		"Do not persist results to the database",
	)
	geocodeCmd.Flags().BoolVar(
		&geocodeOptions.traceHTTP,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	geocodeCmd.Flags().BoolVar(
		&geocodeOptions.traceHTTPBody,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}
