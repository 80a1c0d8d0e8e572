// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestVariantsAlwaysStartsWithOriginal(t *testing.T) {
	addresses := []string{
		"서울특별시 강남구 테헤란로 152",
		"충청남도 홍성군 홍성읍 오관리 254",
		"  경기도 성남시 분당구 판교역로 166  ",
	}

	for _, address := range addresses {
		variants := Variants(address, ClassifyType(address))
		assert.NotEmpty(t, variants)
		assert.Equal(t, strings.TrimSpace(address), variants[0])
	}
}

func TestVariantsNoDuplicates(t *testing.T) {
	variants := Variants("충청남도 홍성군 홍성읍 오관리 254", TypeParcel)

	seen := make(map[string]bool)
	for _, v := range variants {
		assert.False(t, seen[v], "duplicate variant %q", v)
		seen[v] = true
		assert.NotEmpty(t, strings.TrimSpace(v))
	}
}

func TestVariantsBlankInput(t *testing.T) {
	assert.Nil(t, Variants("", TypeParcel))
	assert.Nil(t, Variants("   ", TypeRoad))
}

func TestVariantsLotMarker(t *testing.T) {
	t.Run("appends marker to bare lot number", func(t *testing.T) {
		variants := Variants("충청남도 홍성군 홍성읍 오관리 254", TypeParcel)
		assert.Contains(t, variants, "충청남도 홍성군 홍성읍 오관리 254번지")
	})

	t.Run("strips marker when present", func(t *testing.T) {
		variants := Variants("충청남도 홍성군 홍성읍 오관리 254번지", TypeParcel)
		assert.Contains(t, variants, "충청남도 홍성군 홍성읍 오관리 254")
	})

	t.Run("strips mountain prefix", func(t *testing.T) {
		variants := Variants("전라남도 해남군 송지면 산정리 산86", TypeParcel)
		assert.Contains(t, variants, "전라남도 해남군 송지면 산정리 86")
	})

	t.Run("adds mountain prefix for parcel predictions", func(t *testing.T) {
		variants := Variants("전라남도 해남군 송지면 산정리 86", TypeParcel)
		assert.Contains(t, variants, "전라남도 해남군 송지면 산정리 산86")
	})
}

func TestVariantsRegionNormalization(t *testing.T) {
	tests := []struct {
		name     string
		address  string
		expected []string
	}{
		{
			name:    "long form expands to short forms",
			address: "서울특별시 강남구 테헤란로 152",
			expected: []string{
				"서울시 강남구 테헤란로 152",
				"서울 강남구 테헤란로 152",
			},
		},
		{
			name:    "short form expands to long form",
			address: "서울 강남구 테헤란로 152",
			expected: []string{
				"서울특별시 강남구 테헤란로 152",
				"서울시 강남구 테헤란로 152",
			},
		},
		{
			name:    "province short form",
			address: "충청남도 홍성군 홍성읍 오관리 254",
			expected: []string{
				"충남 홍성군 홍성읍 오관리 254",
			},
		},
		{
			name:    "renamed province keeps the legacy spelling",
			address: "전북특별자치도 전주시 완산구 전동 92-1",
			expected: []string{
				"전라북도 전주시 완산구 전동 92-1",
				"전북 전주시 완산구 전동 92-1",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := Variants(tt.address, ClassifyType(tt.address))
			for _, want := range tt.expected {
				assert.Contains(t, variants, want)
			}
		})
	}
}

func TestVariantsProgressiveSimplification(t *testing.T) {
	address := "서울특별시 송파구 올림픽로 300 롯데월드타워 101동 2호 15층"
	variants := Variants(address, TypeRoad)

	assert.Contains(t, variants, "서울특별시 송파구 올림픽로 300 롯데월드타워 101동 2호")
	assert.Contains(t, variants, "서울특별시 송파구 올림픽로 300 롯데월드타워")
	assert.Contains(t, variants, "서울특별시 송파구 올림픽로 300")
}

func TestVariantsCleansPunctuation(t *testing.T) {
	variants := Variants("서울특별시 강남구 테헤란로 152, (역삼동)", TypeRoad)
	assert.Contains(t, variants, "서울특별시 강남구 테헤란로 152")
}

func TestVariantsPredictedTypeShapesLotHandling(t *testing.T) {
	address := "충청남도 홍성군 홍성읍 오관리 254"

	parcel := Variants(address, TypeParcel)
	road := Variants(address, TypeRoad)

	// The mountain-lot prefix is only speculated for parcel predictions.
	assert.Contains(t, parcel, "충청남도 홍성군 홍성읍 오관리 산254")
	assert.NotContains(t, road, "충청남도 홍성군 홍성읍 오관리 산254")

	// The explicit lot marker is offered under both predictions.
	assert.Contains(t, parcel, "충청남도 홍성군 홍성읍 오관리 254번지")
	assert.Contains(t, road, "충청남도 홍성군 홍성읍 오관리 254번지")

	if diff := cmp.Diff(address, parcel[0]); diff != "" {
		t.Errorf("identity variant mismatch (-want +got):\n%s", diff)
	}
}
