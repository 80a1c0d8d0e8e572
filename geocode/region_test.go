// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected string
	}{
		{"long metro form", "서울특별시 강남구 테헤란로 152", "서울"},
		{"short metro form", "서울 강남구 테헤란로 152", "서울"},
		{"metro si form", "부산시 해운대구 우동 1408-5", "부산"},
		{"province long form", "충청남도 홍성군 홍성읍 오관리 254", "충남"},
		{"province short form", "충남 홍성군 홍성읍 오관리 254", "충남"},
		{"renamed province", "전북특별자치도 전주시 완산구 전동 92-1", "전북"},
		{"legacy province spelling", "전라북도 전주시 완산구 전동 92-1", "전북"},
		{"sejong", "세종특별자치시 한누리대로 2130", "세종"},
		{"jeju", "제주특별자치도 제주시 문연로 6", "제주"},
		{"gyeonggi gwangju city", "경기 광주시 오포읍 신현리 123", "경기"},
		{"gwangju metro", "광주 북구 용봉로 77", "광주"},
		{"no region", "강남구 테헤란로 152", ""},
		{"empty", "", ""},
		{"blank", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectRegion(tt.address))
		})
	}
}
