// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"github.com/jusomap/jusomap/spatial"
)

// AddressType is the address convention requested from the VWorld API.
type AddressType string

const (
	// TypeRoad is the road-name convention (도로명주소): road name + building number.
	TypeRoad AddressType = "ROAD"
	// TypeParcel is the legacy lot-number convention (지번주소): district + lot.
	TypeParcel AddressType = "PARCEL"
	// TypeUnknown marks empty or unclassifiable input. Never sent to the API.
	TypeUnknown AddressType = "UNKNOWN"
	// TypeFailed marks an address that exhausted every variant under both types.
	TypeFailed AddressType = "FAILED"
)

// Opposite returns the fallback type tried when the predicted one misses.
func (t AddressType) Opposite() AddressType {
	switch t {
	case TypeRoad:
		return TypeParcel
	case TypeParcel:
		return TypeRoad
	default:
		return t
	}
}

// Result represents the outcome of a single geocoding call.
type Result struct {
	Point    *spatial.Point
	UsedType AddressType
	Success  bool
}

// Geocoder interface for address-to-coordinate providers.
type Geocoder interface {
	Geocode(address string, addrType AddressType) (*Result, error)
}

// Metrics tracks calls made through one client instance.
type Metrics struct {
	APICalls  int
	CacheHits int
}

// Merge combines the metrics from another Metrics instance into this one.
func (m *Metrics) Merge(other *Metrics) *Metrics {
	if other == nil {
		return m
	}

	m.APICalls += other.APICalls
	m.CacheHits += other.CacheHits

	return m
}

// Resolution is the final outcome for one input address after the
// variant/type retry sequence.
type Resolution struct {
	Point          *spatial.Point `json:"point,omitempty"`
	PredictedType  AddressType    `json:"predicted_type"`
	UsedType       AddressType    `json:"used_type"`
	MatchedAddress string         `json:"matched_address,omitempty"`
	Fallback       bool           `json:"fallback"`
	Success        bool           `json:"success"`
}
