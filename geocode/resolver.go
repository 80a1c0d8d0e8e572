// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"fmt"
	"strings"
	"time"
)

// Resolver drives the retry policy for one address: classify once, then
// walk the variants in priority order trying the predicted type before the
// opposite one, stopping at the first hit.
type Resolver struct {
	geocoder Geocoder

	// Delay inserted between consecutive network attempts. Pacing only;
	// zero disables it so tests run synchronously.
	delay time.Duration

	sleep func(time.Duration)
}

// NewResolver creates a resolver over the given geocoder with the given
// inter-attempt delay.
func NewResolver(geocoder Geocoder, delay time.Duration) *Resolver {
	return &Resolver{
		geocoder: geocoder,
		delay:    delay,
		sleep:    time.Sleep,
	}
}

// Resolve runs the full variant/type retry sequence for one address.
// Blank input short-circuits to an unknown, non-success resolution without
// any network activity. Quota exhaustion from the client is the only error
// returned; every other miss just advances the sequence, and exhausting it
// yields a non-success resolution with type FAILED.
func (r *Resolver) Resolve(address string) (*Resolution, error) {
	if strings.TrimSpace(address) == "" {
		return &Resolution{
			PredictedType: TypeUnknown,
			UsedType:      TypeUnknown,
		}, nil
	}

	predicted := ClassifyType(address)
	variants := Variants(address, predicted)

	attempts := 0

	for _, variant := range variants {
		for _, addrType := range []AddressType{predicted, predicted.Opposite()} {
			if attempts > 0 && r.delay > 0 {
				r.sleep(r.delay)
			}

			attempts++

			result, err := r.geocoder.Geocode(variant, addrType)
			if err != nil {
				return nil, fmt.Errorf("geocoding %q as %s: %w", variant, addrType, err)
			}

			if result.Success {
				return &Resolution{
					Point:          result.Point,
					PredictedType:  predicted,
					UsedType:       addrType,
					MatchedAddress: variant,
					Fallback:       addrType != predicted,
					Success:        true,
				}, nil
			}
		}
	}

	return &Resolution{
		PredictedType: predicted,
		UsedType:      TypeFailed,
	}, nil
}
