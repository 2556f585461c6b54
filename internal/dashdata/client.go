/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dashdata

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Summary is the aggregate shown by dashboard widgets.
type Summary struct {
	OpenVacancies      int       `json:"open_vacancies"`
	ActiveCandidates   int       `json:"active_candidates"`
	InterviewsThisWeek int       `json:"interviews_this_week"`
	HiresThisMonth     int       `json:"hires_this_month"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// Source fetches dashboard data.
type Source interface {
	Summary(ctx context.Context) (Summary, error)
}

// Client is a minimal HTTP client for the recruiting API's dashboard endpoint.
type Client struct {
	BaseURL string
	Token   string // bearer token
	client  *http.Client
}

// NewClient creates a new API client. baseURL may include a trailing slash; it will be normalized.
func NewClient(baseURL, token string, timeout time.Duration, tlsInsecure bool) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := &http.Client{Timeout: timeout}
	if tlsInsecure {
		hc.Transport = &http.Transport{TLSClientConfig: &tls.Config{InsecureSkipVerify: true}} //nolint:gosec // opt-in for self-signed dev servers
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		client:  hc,
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(dest)
}

// Summary returns the current dashboard aggregate.
func (c *Client) Summary(ctx context.Context) (Summary, error) {
	var s Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/dashboard/summary", &s); err != nil {
		return Summary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return s, nil
}
