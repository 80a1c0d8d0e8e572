// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the resolver over a small JSON API for
// interactive use and for inspecting a geocoding database.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jusomap/jusomap/batch"
	"github.com/jusomap/jusomap/geocode"
)

type Server struct {
	resolver *geocode.Resolver
	client   *geocode.VWorldClient
	repo     batch.Repository
}

// NewServer wires the API over a resolver. client and repo are optional;
// without them /api/stats only reports what it can.
func NewServer(resolver *geocode.Resolver, client *geocode.VWorldClient, repo batch.Repository) *Server {
	return &Server{
		resolver: resolver,
		client:   client,
		repo:     repo,
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/api/geocode", s.geocodeAddress)
	r.GET("/api/classify", s.classifyAddress)
	r.GET("/api/stats", s.getStats)

	return r
}

func (s *Server) Run(addr string) error {
	if addr == "" {
		addr = "localhost:8080"
	}

	return s.Router().Run(addr)
}

func (s *Server) geocodeAddress(ctx *gin.Context) {
	address := ctx.Query("address")
	if address == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})

		return
	}

	resolution, err := s.resolver.Resolve(address)
	if err != nil {
		status := http.StatusInternalServerError
		if geocode.IsQuotaExceededError(err) {
			status = http.StatusTooManyRequests
		}

		ctx.JSON(status, gin.H{"error": err.Error()})

		return
	}

	ctx.JSON(http.StatusOK, resolution)
}

type ClassifyResponse struct {
	Address       string              `json:"address"`
	PredictedType geocode.AddressType `json:"predicted_type"`
	Region        string              `json:"region"`
	Variants      []string            `json:"variants"`
}

func (s *Server) classifyAddress(ctx *gin.Context) {
	address := ctx.Query("address")
	if address == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "address query parameter is required"})

		return
	}

	predicted := geocode.ClassifyType(address)

	ctx.JSON(http.StatusOK, ClassifyResponse{
		Address:       address,
		PredictedType: predicted,
		Region:        geocode.DetectRegion(address),
		Variants:      geocode.Variants(address, predicted),
	})
}

type StatsResponse struct {
	APICalls       int                  `json:"api_calls"`
	CacheHits      int                  `json:"cache_hits"`
	RemainingQuota int                  `json:"remaining_quota"`
	DailyLimit     int                  `json:"daily_limit"`
	StoredRecords  int                  `json:"stored_records"`
	Regions        []*batch.RegionCount `json:"regions,omitempty"`
}

func (s *Server) getStats(ctx *gin.Context) {
	resp := StatsResponse{}

	if s.client != nil {
		metrics := s.client.MetricsSnapshot()
		resp.APICalls = metrics.APICalls
		resp.CacheHits = metrics.CacheHits
		resp.RemainingQuota = s.client.RemainingQuota()
		resp.DailyLimit = s.client.Calls() + s.client.RemainingQuota()
	}

	if s.repo != nil {
		count, err := s.repo.Count()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		resp.StoredRecords = count

		regions, err := s.repo.RegionSummary()
		if err != nil {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})

			return
		}

		resp.Regions = regions
	}

	ctx.JSON(http.StatusOK, resp)
}
