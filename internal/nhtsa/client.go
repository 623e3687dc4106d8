// CarMatch - Vehicle Recommendation and Reliability Enrichment
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/carmatch

/*
Package nhtsa is a client for the public NHTSA complaints and recalls API.

Client issues one GET per call with a per-call timeout and no retries; the
count reported is the length of the response's results array. The
CircuitBreakerClient wrapper stops calling the API after a run of failures so
that enrichment degrades quickly while NHTSA is down.

Both types satisfy enrich.IssueSource.
*/
package nhtsa

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/carmatch/internal/config"
	"github.com/tomtom215/carmatch/internal/metrics"
)

// DefaultBaseURL is the public NHTSA API root.
const DefaultBaseURL = "https://api.nhtsa.gov"

// DefaultTimeout bounds a single API call.
const DefaultTimeout = 6 * time.Second

const (
	complaintsPath = "/complaints/complaintsByVehicle"
	recallsPath    = "/recalls/recallsByVehicle"

	// maxErrorBodySize limits how much of an error body is quoted in errors.
	maxErrorBodySize = 4 * 1024
)

// Client calls the NHTSA API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a client from cfg. Zero fields take the package defaults.
func NewClient(cfg *config.NHTSAConfig) *Client {
	baseURL := DefaultBaseURL
	timeout := DefaultTimeout
	userAgent := ""
	if cfg != nil {
		if cfg.BaseURL != "" {
			baseURL = cfg.BaseURL
		}
		if cfg.Timeout > 0 {
			timeout = cfg.Timeout
		}
		userAgent = cfg.UserAgent
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Complaints returns the number of complaints filed for a model year.
func (c *Client) Complaints(ctx context.Context, maker, model string, year int) (int, error) {
	return c.count(ctx, "complaints", complaintsPath, maker, model, year)
}

// Recalls returns the number of recall campaigns for a model year.
func (c *Client) Recalls(ctx context.Context, maker, model string, year int) (int, error) {
	return c.count(ctx, "recalls", recallsPath, maker, model, year)
}

// resultsResponse is the subset of the NHTSA envelope we read.
type resultsResponse struct {
	Count   int               `json:"Count"`
	Message string            `json:"Message"`
	Results []json.RawMessage `json:"results"`
}

func (c *Client) count(ctx context.Context, endpoint, path, maker, model string, year int) (int, error) {
	params := url.Values{}
	params.Set("make", maker)
	params.Set("model", model)
	params.Set("modelYear", strconv.Itoa(year))
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return 0, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordNHTSARequest(endpoint, "error")
		return 0, fmt.Errorf("%s request failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	metrics.RecordNHTSARequest(endpoint, strconv.Itoa(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return 0, fmt.Errorf("%s request failed with status %d: %s", endpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var out resultsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return len(out.Results), nil
}
