// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"strconv"

	"github.com/jusomap/jusomap/geocode"
)

// Columns appended to the input table by a processing run.
var outputColumns = []string{
	"latitude",
	"longitude",
	"geocoding_success",
	"ai_predicted_type",
	"actual_used_type",
	"matched_address",
}

// otherRegionLabel buckets rows whose address names no known region.
const otherRegionLabel = "기타"

// RegionStat accumulates per-region counters for one run.
type RegionStat struct {
	Total   int `json:"total"`
	Success int `json:"success"`
}

// Stats summarizes one processing run.
type Stats struct {
	TotalProcessed       int                    `json:"total_processed"`
	SuccessCount         int                    `json:"success_count"`
	FallbackSuccessCount int                    `json:"fallback_success_count"`
	APICallCount         int                    `json:"api_call_count"`
	CacheHitCount        int                    `json:"cache_hit_count"`
	RegionStats          map[string]*RegionStat `json:"region_stats"`
}

// SuccessRate returns the fraction of processed rows that resolved.
func (s *Stats) SuccessRate() float64 {
	if s.TotalProcessed == 0 {
		return 0
	}

	return float64(s.SuccessCount) / float64(s.TotalProcessed)
}

func (s *Stats) countRegion(address string, success bool) {
	region := geocode.DetectRegion(address)
	if region == "" {
		region = otherRegionLabel
	}

	stat, ok := s.RegionStats[region]
	if !ok {
		stat = &RegionStat{}
		s.RegionStats[region] = stat
	}

	stat.Total++

	if success {
		stat.Success++
	}
}

// ProgressFunc is invoked after every processed row.
type ProgressFunc func(processed, total int)

// Processor resolves every row of a table through a resolver and collects
// run statistics. The metrics pointer is read after the run so that cache
// hits and network calls made by the shared client show up in the stats.
type Processor struct {
	resolver *geocode.Resolver
	metrics  *geocode.Metrics
}

// NewProcessor creates a processor over the given resolver. metrics may be
// nil when no client-level counters are available.
func NewProcessor(resolver *geocode.Resolver, metrics *geocode.Metrics) *Processor {
	return &Processor{resolver: resolver, metrics: metrics}
}

// Run resolves the address column of every row, returning a new table with
// the result columns appended. On quota exhaustion or cancellation the rows
// processed so far are returned together with the error, so a partial run
// is never lost.
func (p *Processor) Run(ctx context.Context, table *Table, addressColumn string, progress ProgressFunc) (*Table, *Stats, error) {
	stats := &Stats{RegionStats: make(map[string]*RegionStat)}

	addressIndex := table.ColumnIndex(addressColumn)
	if addressIndex < 0 {
		return nil, stats, &geocode.GeocodingError{
			Type:    geocode.ErrorTypeConfiguration,
			Message: "address column " + strconv.Quote(addressColumn) + " not found in input",
		}
	}

	out := &Table{
		Columns: append(append([]string{}, table.Columns...), outputColumns...),
		Rows:    make([][]string, 0, len(table.Rows)),
	}

	total := len(table.Rows)

	for _, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			p.snapshotMetrics(stats)

			return out, stats, err
		}

		address := cell(row, addressIndex)

		resolution, err := p.resolver.Resolve(address)
		if err != nil {
			p.snapshotMetrics(stats)

			return out, stats, err
		}

		out.Rows = append(out.Rows, annotateRow(row, resolution))

		stats.TotalProcessed++
		stats.countRegion(address, resolution.Success)

		if resolution.Success {
			stats.SuccessCount++

			if resolution.Fallback {
				stats.FallbackSuccessCount++
			}
		}

		if progress != nil {
			progress(stats.TotalProcessed, total)
		}
	}

	p.snapshotMetrics(stats)

	return out, stats, nil
}

func (p *Processor) snapshotMetrics(stats *Stats) {
	if p.metrics == nil {
		return
	}

	stats.APICallCount = p.metrics.APICalls
	stats.CacheHitCount = p.metrics.CacheHits
}

func annotateRow(row []string, resolution *geocode.Resolution) []string {
	annotated := append([]string{}, row...)

	var latitude, longitude, matched string

	if resolution.Success && resolution.Point != nil {
		latitude = strconv.FormatFloat(resolution.Point.Lat, 'f', 6, 64)
		longitude = strconv.FormatFloat(resolution.Point.Lng, 'f', 6, 64)
		matched = resolution.MatchedAddress
	}

	return append(annotated,
		latitude,
		longitude,
		strconv.FormatBool(resolution.Success),
		string(resolution.PredictedType),
		string(resolution.UsedType),
		matched,
	)
}
