// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"

	"github.com/jusomap/jusomap/utils/textutils"
)

// DetectRegion returns the short province/metro label found in the address
// ("서울", "충남", …), or the empty string when no region name is present.
// This is a display/statistics heuristic, independent of classification:
// canonical long forms are checked before the short aliases so "서울특별시"
// never resolves through a partial alias hit.
func DetectRegion(address string) string {
	address = textutils.FoldWidth(address)
	if address == "" {
		return ""
	}

	for _, region := range regionAliases {
		if strings.Contains(address, region.canonical) {
			return regionLabel(region)
		}
	}

	// Several regions can alias-match at once ("경기 광주시 …" holds both
	// 경기 and 광주), so the earliest occurrence in the address wins, with
	// the longer alias breaking position ties.
	best := ""
	bestPos := -1
	bestLen := 0

	for _, region := range regionAliases {
		for _, alias := range region.aliases {
			pos := strings.Index(address, alias)
			if pos < 0 {
				continue
			}

			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(alias) > bestLen) {
				best = regionLabel(region)
				bestPos = pos
				bestLen = len(alias)
			}
		}
	}

	return best
}

// regionLabel is the shortest alias, used as the statistics bucket name.
func regionLabel(r regionAlias) string {
	return r.aliases[len(r.aliases)-1]
}
