// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "jusomap",
	Short: "한국 주소를 좌표로 변환하는 지오코딩 도구",
	Long: `
jusomap converts Korean addresses into coordinates through the VWorld
geocoding API. It classifies each address as road-name (도로명주소) or
lot-number (지번주소), retries progressively simplified variants of the
address, and keeps results in a local DuckDB database.
`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		// a .env in the working directory may carry VWORLD_API_KEY
		_ = godotenv.Load()
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
