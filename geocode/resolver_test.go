// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jusomap/jusomap/spatial"
)

// mockGeocoder resolves only the (address, type) pairs it was seeded with
// and records every call in order.
type mockGeocoder struct {
	answers map[cacheKey]spatial.Point
	quota   int // calls allowed before quota errors; <0 means unlimited
	calls   []cacheKey
}

func newMockGeocoder() *mockGeocoder {
	return &mockGeocoder{
		answers: make(map[cacheKey]spatial.Point),
		quota:   -1,
	}
}

func (m *mockGeocoder) allow(address string, addrType AddressType, point spatial.Point) {
	m.answers[cacheKey{address: address, addrType: addrType}] = point
}

func (m *mockGeocoder) Geocode(address string, addrType AddressType) (*Result, error) {
	if m.quota >= 0 && len(m.calls) >= m.quota {
		return nil, &GeocodingError{Type: ErrorTypeQuotaExceeded, Message: "daily limit reached"}
	}

	key := cacheKey{address: address, addrType: addrType}
	m.calls = append(m.calls, key)

	if point, ok := m.answers[key]; ok {
		return &Result{Point: &point, UsedType: addrType, Success: true}, nil
	}

	return &Result{UsedType: addrType, Success: false}, nil
}

func TestResolveBlankInput(t *testing.T) {
	mock := newMockGeocoder()
	resolver := NewResolver(mock, 0)

	for _, address := range []string{"", "   ", "\t\n"} {
		resolution, err := resolver.Resolve(address)
		require.NoError(t, err)
		assert.False(t, resolution.Success)
		assert.Equal(t, TypeUnknown, resolution.UsedType)
		assert.Equal(t, TypeUnknown, resolution.PredictedType)
		assert.Empty(t, mock.calls, "blank input must never reach the geocoder")
	}
}

func TestResolvePredictedTypeFirst(t *testing.T) {
	address := "서울특별시 강남구 테헤란로 152"

	mock := newMockGeocoder()
	mock.allow(address, TypeRoad, spatial.Point{Lat: 37.500622, Lng: 127.036508})

	resolver := NewResolver(mock, 0)

	resolution, err := resolver.Resolve(address)
	require.NoError(t, err)
	require.True(t, resolution.Success)
	assert.Equal(t, TypeRoad, resolution.PredictedType)
	assert.Equal(t, TypeRoad, resolution.UsedType)
	assert.Equal(t, address, resolution.MatchedAddress)
	assert.False(t, resolution.Fallback)

	// first success short-circuits: exactly one call, no fallback attempt
	require.Len(t, mock.calls, 1)
	assert.Equal(t, cacheKey{address: address, addrType: TypeRoad}, mock.calls[0])
}

func TestResolveFallbackType(t *testing.T) {
	address := "서울특별시 강남구 테헤란로 152"

	mock := newMockGeocoder()
	mock.allow(address, TypeParcel, spatial.Point{Lat: 37.5, Lng: 127.0})

	resolver := NewResolver(mock, 0)

	resolution, err := resolver.Resolve(address)
	require.NoError(t, err)
	require.True(t, resolution.Success)
	assert.Equal(t, TypeRoad, resolution.PredictedType)
	assert.Equal(t, TypeParcel, resolution.UsedType)
	assert.True(t, resolution.Fallback)

	// predicted type was tried first on the same variant
	require.GreaterOrEqual(t, len(mock.calls), 2)
	assert.Equal(t, TypeRoad, mock.calls[0].addrType)
	assert.Equal(t, TypeParcel, mock.calls[1].addrType)
	assert.Equal(t, mock.calls[0].address, mock.calls[1].address)
}

func TestResolveLotNumberVariant(t *testing.T) {
	address := "충청남도 홍성군 홍성읍 오관리 254"

	mock := newMockGeocoder()
	mock.allow("충청남도 홍성군 홍성읍 오관리 254번지", TypeParcel, spatial.Point{Lat: 36.6, Lng: 126.66})

	resolver := NewResolver(mock, 0)

	resolution, err := resolver.Resolve(address)
	require.NoError(t, err)
	require.True(t, resolution.Success)
	assert.Equal(t, TypeParcel, resolution.PredictedType)
	assert.Equal(t, TypeParcel, resolution.UsedType)
	assert.Equal(t, "충청남도 홍성군 홍성읍 오관리 254번지", resolution.MatchedAddress)

	// the bare original was attempted under both types before the
	// lot-suffixed variant hit
	assert.Equal(t, cacheKey{address: address, addrType: TypeParcel}, mock.calls[0])
	assert.Equal(t, cacheKey{address: address, addrType: TypeRoad}, mock.calls[1])
}

func TestResolveExhaustion(t *testing.T) {
	address := "서울특별시 강남구 테헤란로 152"

	mock := newMockGeocoder()
	resolver := NewResolver(mock, 0)

	resolution, err := resolver.Resolve(address)
	require.NoError(t, err)
	assert.False(t, resolution.Success)
	assert.Equal(t, TypeFailed, resolution.UsedType)
	assert.Equal(t, TypeRoad, resolution.PredictedType)
	assert.Nil(t, resolution.Point)

	// every variant was tried under both types
	variants := Variants(address, TypeRoad)
	assert.Len(t, mock.calls, 2*len(variants))
}

func TestResolveQuotaPropagates(t *testing.T) {
	mock := newMockGeocoder()
	mock.quota = 0

	resolver := NewResolver(mock, 0)

	_, err := resolver.Resolve("서울특별시 강남구 테헤란로 152")
	require.Error(t, err)
	assert.True(t, IsQuotaExceededError(err))
}

func TestResolveDelayIsInjectable(t *testing.T) {
	address := "서울특별시 강남구 테헤란로 152"

	mock := newMockGeocoder()
	resolver := NewResolver(mock, 50*time.Millisecond)

	var slept []time.Duration

	resolver.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}

	_, err := resolver.Resolve(address)
	require.NoError(t, err)

	// a pacing pause before every attempt except the first
	assert.Len(t, slept, len(mock.calls)-1)

	// zero delay disables pacing entirely
	slept = nil
	resolver = NewResolver(mock, 0)
	resolver.sleep = func(d time.Duration) {
		slept = append(slept, d)
	}

	_, err = resolver.Resolve(address)
	require.NoError(t, err)
	assert.Empty(t, slept)
}
