// Copyright 2025-2026
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mfapi fetches mutual fund scheme listings and NAV histories from
// api.mfapi.in. Requests are rate limited client-side; retries are the
// caller's concern.
package mfapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/fundscope/fundscope/fund"
)

// DefaultBaseURL is the public mfapi.in endpoint.
const DefaultBaseURL = "https://api.mfapi.in/mf"

// DefaultHistoryDays limits fetched history to roughly 10 years.
const DefaultHistoryDays = 3650

const navDateFormat = "02-01-2006"

// Client talks to the mfapi.in API.
type Client struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewClient builds a client from the loaded configuration (mfapi.base_url,
// mfapi.rate_limit requests/sec, mfapi.timeout_secs).
func NewClient() *Client {
	baseURL := viper.GetString("mfapi.base_url")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	rps := viper.GetFloat64("mfapi.rate_limit")
	if rps <= 0 {
		rps = 2.0
	}

	timeout := viper.GetDuration("mfapi.timeout_secs") * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type schemeRecord struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
	ISINGrowth string `json:"isinGrowth"`
}

type historyResponse struct {
	Status string `json:"status"`
	Meta   struct {
		SchemeCode int    `json:"scheme_code"`
		SchemeName string `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		Nav  string `json:"nav"`
	} `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("mfapi returned status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}

// FetchAllFunds downloads the full scheme listing.
func (c *Client) FetchAllFunds(ctx context.Context) ([]fund.Fund, error) {
	var records []schemeRecord
	if err := c.getJSON(ctx, c.baseURL, &records); err != nil {
		return nil, err
	}

	funds := make([]fund.Fund, 0, len(records))
	for _, rec := range records {
		if rec.SchemeCode == 0 {
			continue
		}
		funds = append(funds, fund.Fund{
			SchemeCode: rec.SchemeCode,
			SchemeName: rec.SchemeName,
			ISINGrowth: rec.ISINGrowth,
		})
	}

	log.Info().Int("Count", len(funds)).Msg("fetched fund index from mfapi")
	return funds, nil
}

// FetchNavHistory downloads the NAV history for a scheme, normalized to an
// ascending series truncated to the last `days` calendar days. Rows with
// unparseable dates or NAVs are skipped.
func (c *Client) FetchNavHistory(ctx context.Context, schemeCode int, days int) (fund.NavSeries, error) {
	if days <= 0 {
		days = DefaultHistoryDays
	}

	var resp historyResponse
	url := c.baseURL + "/" + strconv.Itoa(schemeCode)
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	if resp.Status != "SUCCESS" {
		return nil, fmt.Errorf("mfapi returned status %q for scheme %d", resp.Status, schemeCode)
	}

	tz := time.UTC
	series := make(fund.NavSeries, 0, len(resp.Data))
	for _, row := range resp.Data {
		date, err := time.ParseInLocation(navDateFormat, row.Date, tz)
		if err != nil {
			log.Trace().Str("Date", row.Date).Int("SchemeCode", schemeCode).Msg("skipping row with bad date")
			continue
		}
		nav, err := strconv.ParseFloat(row.Nav, 64)
		if err != nil || nav <= 0 {
			log.Trace().Str("Nav", row.Nav).Int("SchemeCode", schemeCode).Msg("skipping row with bad nav")
			continue
		}
		series = append(series, fund.NavPoint{Date: date, Nav: fund.TruncateNav(nav)})
	}

	series = series.Normalize()

	if latest, ok := series.Latest(); ok {
		cutoff := latest.Date.AddDate(0, 0, -days)
		start := 0
		for start < len(series) && series[start].Date.Before(cutoff) {
			start++
		}
		series = series[start:]
	}

	return series, nil
}
