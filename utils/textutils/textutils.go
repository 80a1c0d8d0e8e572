// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

// Package textutils provides text normalization helpers for Korean input.
package textutils

import (
	"strconv"
	"strings"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// FoldWidth normalizes a string by narrowing full-width digits and letters
// (１２３ -> 123), recomposing to NFC, and trimming surrounding whitespace.
// Spreadsheet exports of Korean addresses frequently carry full-width digits.
func FoldWidth(s string) string {
	s, _, _ = transform.String(
		transform.Chain(
			width.Fold,
			norm.NFC,
		),
		strings.TrimSpace(s),
	)

	return s
}

// CollapseWhitespace replaces every run of whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// FormatInt formats an integer with commas for human readability.
func FormatInt(n int64) string {
	in := strconv.FormatInt(n, 10)

	numOfDigits := len(in)
	if n < 0 {
		numOfDigits-- // First character is the - sign (not a digit)
	}

	numOfCommas := (numOfDigits - 1) / 3

	out := make([]byte, len(in)+numOfCommas)
	if n < 0 {
		in, out[0] = in[1:], '-'
	}

	for i, j, k := len(in)-1, len(out)-1, 0; ; i, j = i-1, j-1 {
		out[j] = in[i]
		if i == 0 {
			return string(out)
		}

		if k++; k == 3 {
			j, k = j-1, 0
			out[j] = ','
		}
	}
}
