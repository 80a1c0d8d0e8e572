// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"regexp"
	"strings"

	"github.com/jusomap/jusomap/utils/textutils"
)

// regionAlias maps a canonical province/metro name to its shorter spellings.
// Aliases are ordered longest first so prefix replacement never matches a
// short form inside a longer one ("서울" inside "서울시").
type regionAlias struct {
	canonical string
	aliases   []string
}

var regionAliases = []regionAlias{
	{"서울특별시", []string{"서울시", "서울"}},
	{"부산광역시", []string{"부산시", "부산"}},
	{"대구광역시", []string{"대구시", "대구"}},
	{"인천광역시", []string{"인천시", "인천"}},
	{"광주광역시", []string{"광주시", "광주"}},
	{"대전광역시", []string{"대전시", "대전"}},
	{"울산광역시", []string{"울산시", "울산"}},
	{"세종특별자치시", []string{"세종시", "세종"}},
	{"경기도", []string{"경기"}},
	{"강원특별자치도", []string{"강원도", "강원"}},
	{"충청북도", []string{"충북"}},
	{"충청남도", []string{"충남"}},
	{"전북특별자치도", []string{"전라북도", "전북"}},
	{"전라남도", []string{"전남"}},
	{"경상북도", []string{"경북"}},
	{"경상남도", []string{"경남"}},
	{"제주특별자치도", []string{"제주도", "제주"}},
}

var (
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	floorPattern         = regexp.MustCompile(`\s*\d+층$`)
	wingUnitPattern      = regexp.MustCompile(`\s*\d+동\s*\d+호.*$`)
	buildingNamePattern  = regexp.MustCompile(`^[가-힣A-Za-z]+$`)
	lotEndingPattern     = regexp.MustCompile(`^(.*?)(산)?(\d+(?:-\d+)?)\s*(번지)?$`)
)

// adminSuffixes end tokens that are part of the address proper and must
// never be stripped as a building name.
var adminSuffixes = []string{"시", "군", "구", "동", "읍", "면", "리", "로", "길", "가", "도", "번지"}

// Variants produces an ordered, de-duplicated list of candidate renderings
// for one address, the trimmed original always first. The predicted type
// decides whether lot-marker variants are tried before or after the
// progressive simplifications. The result is never empty for non-blank input.
func Variants(address string, predicted AddressType) []string {
	original := strings.TrimSpace(address)
	if original == "" {
		return nil
	}

	var out []string

	seen := make(map[string]bool)
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}

	add(original)

	cleaned := cleanAddress(original)
	add(cleaned)

	for _, v := range regionVariants(cleaned) {
		add(v)
	}

	addLots := func(s string) {
		for _, v := range lotVariants(s, predicted == TypeParcel) {
			add(v)
		}
	}

	if predicted == TypeParcel {
		addLots(cleaned)
	}

	simplified := cleaned
	for _, strip := range []func(string) string{stripFloor, stripWingUnit, stripBuildingName} {
		if s := strip(simplified); s != simplified {
			simplified = s

			add(simplified)
		}
	}

	if predicted != TypeParcel {
		addLots(cleaned)
	}

	if simplified != cleaned {
		addLots(simplified)
	}

	return out
}

// cleanAddress folds full-width characters, drops parentheticals and
// commas, and collapses whitespace runs.
func cleanAddress(s string) string {
	s = textutils.FoldWidth(s)
	s = parentheticalPattern.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, ",", " ")

	return textutils.CollapseWhitespace(s)
}

// regionVariants rewrites the leading province/metro name into each of its
// known spellings. At most one region can match since names are prefixes.
func regionVariants(s string) []string {
	var out []string

	for _, region := range regionAliases {
		if rest, ok := strings.CutPrefix(s, region.canonical); ok {
			for _, alias := range region.aliases {
				out = append(out, alias+rest)
			}

			return out
		}

		for i, alias := range region.aliases {
			rest, ok := strings.CutPrefix(s, alias+" ")
			if !ok {
				continue
			}

			out = append(out, region.canonical+" "+rest)

			for j, other := range region.aliases {
				if j != i {
					out = append(out, other+" "+rest)
				}
			}

			return out
		}
	}

	return nil
}

func stripFloor(s string) string {
	return strings.TrimSpace(floorPattern.ReplaceAllString(s, ""))
}

func stripWingUnit(s string) string {
	return strings.TrimSpace(wingUnitPattern.ReplaceAllString(s, ""))
}

// stripBuildingName drops a trailing digit-free token unless it ends in an
// administrative or road suffix ("...구", "...동", "...로").
func stripBuildingName(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}

	last := tokens[len(tokens)-1]
	if !buildingNamePattern.MatchString(last) {
		return s
	}

	for _, suffix := range adminSuffixes {
		if strings.HasSuffix(last, suffix) {
			return s
		}
	}

	return strings.Join(tokens[:len(tokens)-1], " ")
}

// lotVariants toggles the explicit lot marker (번지) and the mountain-lot
// prefix (산) on addresses ending in a bare, optionally hyphenated number.
// The 산 prefix is only added for parcel-predicted addresses; stripping it
// is always offered.
func lotVariants(s string, addMountain bool) []string {
	m := lotEndingPattern.FindStringSubmatch(s)
	if m == nil || m[3] == "" {
		return nil
	}

	prefix, mountain, num, marker := m[1], m[2], m[3], m[4]
	if strings.TrimSpace(prefix) == "" {
		// a lone number is not an address
		return nil
	}

	var out []string

	if marker != "" {
		out = append(out, prefix+mountain+num)
	} else {
		out = append(out, prefix+mountain+num+"번지")
	}

	if mountain != "" {
		out = append(out, prefix+num+marker)
	} else if addMountain {
		out = append(out, prefix+"산"+num+marker)
	}

	return out
}
