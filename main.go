// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/jusomap/jusomap/cmd"
)

var Version = "development"

func main() {
	cmd.Execute(Version)
}
