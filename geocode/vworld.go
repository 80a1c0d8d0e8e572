// Copyright 2026 The Jusomap Authors
// SPDX-License-Identifier: Apache-2.0

package geocode

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/jusomap/jusomap/spatial"
	"github.com/jusomap/jusomap/utils/httputils"
)

// DefaultBaseURL is the VWorld address-geocoding endpoint.
const DefaultBaseURL = "https://api.vworld.kr/req/address"

// DefaultDailyLimit is the free-tier quota of the VWorld API.
const DefaultDailyLimit = 40000

// ClientOptions configuration for VWorldClient.
type ClientOptions struct {
	// APIKey is the VWorld credential. Never logged in full.
	APIKey string

	// BaseURL overrides the endpoint, mainly for tests.
	BaseURL string

	// DailyLimit caps the number of network round trips per client lifetime.
	// Zero means DefaultDailyLimit.
	DailyLimit int

	// UserAgent is the User-Agent header to use in HTTP requests
	UserAgent string

	// Timeout bounds each network round trip. Zero means 10s.
	Timeout time.Duration

	// Enables light tracing of HTTP requests and responses
	EnableHTTPTrace bool

	// Enables full HTTP body tracing
	EnableHTTPBodyTrace bool
}

// leniencyLevels are the escalating match options tried within one call:
// strict first, then refined, then simplified output. Escalation stops as
// soon as the API returns anything other than a no-match.
var leniencyLevels = []struct {
	refine string
	simple string
}{
	{"false", "false"},
	{"true", "false"},
	{"true", "true"},
}

type cacheKey struct {
	address  string
	addrType AddressType
}

// VWorldClient geocodes Korean addresses through the VWorld API. It owns
// the daily request quota and a success-only result cache; both live for
// the lifetime of one client instance. A client may be shared across
// goroutines: quota, cache and counters are guarded by one mutex, and a
// quota slot is claimed before each round trip so concurrent callers can
// never push the count past the daily limit.
type VWorldClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	dailyLimit int

	mu    sync.Mutex
	calls int
	cache map[cacheKey]spatial.Point

	// Metrics is guarded by mu; read it through MetricsSnapshot while
	// other goroutines may be geocoding.
	Metrics Metrics
}

// NewVWorldClient creates a new client with the provided options.
func NewVWorldClient(options *ClientOptions) *VWorldClient {
	if options == nil {
		options = &ClientOptions{}
	}

	var httpLogWriter io.Writer
	if options.EnableHTTPTrace {
		httpLogWriter = os.Stderr
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		MaxConnsPerHost:       4,
		IdleConnTimeout:       30 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}

	loggingTransport := &httputils.LoggingRoundTripper{
		Writer:       httpLogWriter,
		DumpBody:     options.EnableHTTPBodyTrace,
		RedactParams: []string{"key"},
		Transport:    transport,
	}

	userAgent := "jusomap/unknown"
	if options.UserAgent != "" {
		userAgent = options.UserAgent
	}

	headerTransport := &httputils.AppendRequestHeadersRoundTripper{
		Headers: map[string]string{
			"User-Agent": userAgent,
			"Accept":     "application/json",
		},
		Transport: loggingTransport,
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	dailyLimit := options.DailyLimit
	if dailyLimit == 0 {
		dailyLimit = DefaultDailyLimit
	}

	return &VWorldClient{
		apiKey:  options.APIKey,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: headerTransport,
		},
		dailyLimit: dailyLimit,
		cache:      make(map[cacheKey]spatial.Point),
	}
}

type vworldResponse struct {
	Response struct {
		Status string `json:"status"` // OK, NOT_FOUND, ERROR
		Result struct {
			Point struct {
				X string `json:"x"` // longitude
				Y string `json:"y"` // latitude
			} `json:"point"`
		} `json:"result"`
	} `json:"response"`
}

// Calls returns the number of network round trips made so far.
func (c *VWorldClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

// RemainingQuota returns how many round trips are left before the daily
// limit cuts the client off.
func (c *VWorldClient) RemainingQuota() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.calls >= c.dailyLimit {
		return 0
	}

	return c.dailyLimit - c.calls
}

// MetricsSnapshot returns a copy of the counters, consistent even while
// other goroutines geocode.
func (c *VWorldClient) MetricsSnapshot() Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.Metrics
}

// Geocode resolves one address under one type. A cache hit returns without
// touching the network or the quota. Transient failures (no match, HTTP
// errors, malformed payloads, out-of-bounds coordinates) come back as a
// non-success Result with a nil error; only quota exhaustion is returned
// as an error.
func (c *VWorldClient) Geocode(address string, addrType AddressType) (*Result, error) {
	key := cacheKey{address: address, addrType: addrType}

	c.mu.Lock()
	if err := c.checkQuota(); err != nil {
		c.mu.Unlock()

		return nil, err
	}

	if point, ok := c.cache[key]; ok {
		c.Metrics.CacheHits++
		c.mu.Unlock()

		return &Result{Point: &point, UsedType: addrType, Success: true}, nil
	}
	c.mu.Unlock()

	for _, level := range leniencyLevels {
		if err := c.reserveCall(); err != nil {
			return nil, err
		}

		point, retriable := c.geocodeOnce(address, addrType, level.refine, level.simple)
		if point != nil {
			c.mu.Lock()
			c.cache[key] = *point
			c.mu.Unlock()

			return &Result{Point: point, UsedType: addrType, Success: true}, nil
		}

		if !retriable {
			break
		}
	}

	return &Result{UsedType: addrType, Success: false}, nil
}

// checkQuota fails fast once the daily limit is reached. Checked before
// any lookup or network activity, never after. Callers hold mu.
func (c *VWorldClient) checkQuota() error {
	if c.calls >= c.dailyLimit {
		return &GeocodingError{
			Type:    ErrorTypeQuotaExceeded,
			Message: fmt.Sprintf("daily limit of %d requests reached", c.dailyLimit),
		}
	}

	return nil
}

// reserveCall claims one quota slot and counts it before the round trip,
// so the network call itself runs outside the lock.
func (c *VWorldClient) reserveCall() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkQuota(); err != nil {
		return err
	}

	c.calls++
	c.Metrics.APICalls++

	return nil
}

// geocodeOnce performs a single round trip, already counted against the
// quota by the caller. It returns the parsed
// in-bounds point on success, and whether a miss is worth escalating to a
// more lenient matching level.
func (c *VWorldClient) geocodeOnce(address string, addrType AddressType, refine, simple string) (*spatial.Point, bool) {
	params := url.Values{}
	params.Set("service", "address")
	params.Set("request", "getcoord")
	params.Set("version", "2.0")
	params.Set("crs", "epsg:4326")
	params.Set("address", address)
	params.Set("format", "json")
	params.Set("type", string(addrType))
	params.Set("refine", refine)
	params.Set("simple", simple)
	params.Set("key", c.apiKey)

	resp, err := c.httpClient.Get(c.baseURL + "?" + params.Encode())
	if err != nil {
		return nil, false
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("vworld request for %q failed: %v", address, ClassifyHTTPError(resp.StatusCode, resp.Status))

		return nil, false
	}

	var vwResp vworldResponse
	if err := json.NewDecoder(resp.Body).Decode(&vwResp); err != nil {
		return nil, false
	}

	switch vwResp.Response.Status {
	case "OK":
		point, err := parsePoint(vwResp)
		if err != nil {
			return nil, false
		}

		if !spatial.Korea.Contains(*point) {
			// out-of-bounds is treated exactly like a no-match
			return nil, true
		}

		return point, true
	case "NOT_FOUND":
		// a stricter match found nothing; a relaxed one still might
		return nil, true
	default:
		return nil, false
	}
}

func parsePoint(vwResp vworldResponse) (*spatial.Point, error) {
	rawX := vwResp.Response.Result.Point.X
	rawY := vwResp.Response.Result.Point.Y

	if rawX == "" || rawY == "" {
		return nil, fmt.Errorf("missing coordinate fields")
	}

	lng, err := strconv.ParseFloat(rawX, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing longitude %q: %w", rawX, err)
	}

	lat, err := strconv.ParseFloat(rawY, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing latitude %q: %w", rawY, err)
	}

	return &spatial.Point{Lat: lat, Lng: lng}, nil
}
