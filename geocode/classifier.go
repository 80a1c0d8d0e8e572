// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"regexp"
	"strings"

	"github.com/jusomap/jusomap/utils/textutils"
)

// roadConfirmingPatterns match addresses that end in a road-name suffix
// followed by a building number, e.g. "테헤란로 152" or "으뜸길 25-3".
// First match wins.
var roadConfirmingPatterns = []*regexp.Regexp{
	// "<...>대로 110", "<...>로 152", "<...>길 25", optional hyphenated building number
	regexp.MustCompile(`(?:대로|로|길)\s*\d+(?:-\d+)?$`),
	// numbered branch roads: "테헤란로7길 12", "중앙로 109번길 5"
	regexp.MustCompile(`(?:로|길)\s*\d+번?길\s*\d+(?:-\d+)?$`),
}

// parcelConfirmingPatterns match addresses that end in an administrative
// district suffix followed by a lot number, e.g. "오관리 254" or "명동 2-1".
var parcelConfirmingPatterns = []*regexp.Regexp{
	// "<...>동 832-1", "<...>리 254", "<...>가 91", optional 산 prefix and 번지 marker
	regexp.MustCompile(`(?:동|리|가)\s*산?\s*\d+(?:-\d+)?(?:번지)?$`),
	// explicit lot marker regardless of the preceding district suffix
	regexp.MustCompile(`\d+(?:-\d+)?\s*번지$`),
	// mountain lots: "산 86-1"
	regexp.MustCompile(`산\s*\d+(?:-\d+)?$`),
}

// compoundLotPattern detects a hyphenated lot number like "123-45",
// a strong structural cue for the parcel convention.
var compoundLotPattern = regexp.MustCompile(`\d+-\d+`)

// Keyword vocabularies for the scoring fallback. Each token counts once
// per presence, not per occurrence.
var (
	roadKeywords     = []string{"대로", "로", "길", "번길"}
	districtKeywords = []string{"읍", "면", "리", "군", "동", "가", "번지", "마을"}
	ruralKeywords    = []string{"읍", "면", "리", "군"}
)

// Score bonuses applied after keyword counting. The compound-lot cue is
// structural and outweighs keyword ties; rural markers lean parcel because
// rural addressing predates the road-name system.
const (
	compoundLotBonus = 2
	bareNumberBonus  = 1
	ruralBonus       = 2
)

// ClassifyType predicts which address convention the geocoding API will
// accept for the given address. It returns TypeRoad or TypeParcel for any
// non-empty input; empty input yields TypeUnknown. Parcel wins score ties.
func ClassifyType(address string) AddressType {
	address = textutils.FoldWidth(address)
	if address == "" {
		return TypeUnknown
	}

	for _, pattern := range roadConfirmingPatterns {
		if pattern.MatchString(address) {
			return TypeRoad
		}
	}

	for _, pattern := range parcelConfirmingPatterns {
		if pattern.MatchString(address) {
			return TypeParcel
		}
	}

	roadScore, parcelScore := 0, 0

	for _, kw := range roadKeywords {
		if strings.Contains(address, kw) {
			roadScore++
		}
	}

	for _, kw := range districtKeywords {
		if strings.Contains(address, kw) {
			parcelScore++
		}
	}

	if compoundLotPattern.MatchString(address) {
		parcelScore += compoundLotBonus
	} else {
		roadScore += bareNumberBonus
	}

	for _, kw := range ruralKeywords {
		if strings.Contains(address, kw) {
			parcelScore += ruralBonus

			break
		}
	}

	if roadScore > parcelScore {
		return TypeRoad
	}

	return TypeParcel
}
