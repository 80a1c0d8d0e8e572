// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jusomap/jusomap/geocode"
)

// we say that it isn't.
func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}

	return (info.Mode() & os.ModeCharDevice) != 0
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugClassifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "주소 유형 분류기 대화형 실행",
	Long: `Reads one address per line and prints the address followed by the
inferred address type and region.

$ echo "서울특별시 강남구 테헤란로 152" | jusomap debug classify
서울특별시 강남구 테헤란로 152		ROAD	서울
	`,
	Run: func(_ *cobra.Command, _ []string) {
		eachInputLine("분류할 주소를 입력하세요. 한 줄에 하나씩…", func(address string) {
			fmt.Printf("%s\t\t%s\t%s\n",
				address,
				geocode.ClassifyType(address),
				geocode.DetectRegion(address))
		})
	},
}

var debugVariantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "주소 변형 생성기 대화형 실행",
	Long: `Reads one address per line and prints every variant that would be
tried during geocoding, in order.
	`,
	Run: func(_ *cobra.Command, _ []string) {
		eachInputLine("변형을 생성할 주소를 입력하세요. 한 줄에 하나씩…", func(address string) {
			predicted := geocode.ClassifyType(address)
			for i, variant := range geocode.Variants(address, predicted) {
				fmt.Printf("%s\t%d\t%s\n", address, i, variant)
			}
		})
	},
}

func eachInputLine(prompt string, fn func(line string)) {
	input := os.Stdin
	if isTerminal(input) {
		fmt.Fprintln(os.Stderr, prompt)
	}

	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		fn(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.AddCommand(debugClassifyCmd)
	debugCmd.AddCommand(debugVariantsCmd)
}
