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

package fund

import (
	"math"
	"sort"
	"time"
)

// Fund identifies a single mutual fund scheme.
type Fund struct {
	SchemeCode int    `json:"schemeCode"`
	SchemeName string `json:"schemeName"`
	ISINGrowth string `json:"isinGrowth,omitempty"`
	Category   string `json:"category,omitempty"`
}

// NavPoint is a single published NAV observation.
type NavPoint struct {
	Date time.Time `json:"date"`
	Nav  float64   `json:"nav"`
}

// NavSeries is the NAV history of one fund, ordered ascending by date.
type NavSeries []NavPoint

// TruncateNav truncates a NAV value to two decimal places. NAVs are
// currency-like; values below one paisa are floored to 0.01.
func TruncateNav(v float64) float64 {
	v = math.Trunc(v*100) / 100
	if v < 0.01 {
		return 0.01
	}
	return v
}

// Normalize stable-sorts the series ascending by date and collapses duplicate
// dates, keeping the later entry (last write wins).
func (s NavSeries) Normalize() NavSeries {
	if len(s) == 0 {
		return s
	}

	out := make(NavSeries, len(s))
	copy(out, s)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	deduped := out[:0]
	for _, p := range out {
		if n := len(deduped); n > 0 && deduped[n-1].Date.Equal(p.Date) {
			deduped[n-1] = p
			continue
		}
		deduped = append(deduped, p)
	}
	return deduped
}

// Clone returns a copy of the series; cache reads hand these out so callers
// never share a mutable backing array.
func (s NavSeries) Clone() NavSeries {
	if s == nil {
		return nil
	}
	out := make(NavSeries, len(s))
	copy(out, s)
	return out
}

// Latest returns the most recent point of an ascending series.
func (s NavSeries) Latest() (NavPoint, bool) {
	if len(s) == 0 {
		return NavPoint{}, false
	}
	return s[len(s)-1], true
}

// PeriodicReturns computes the percentage change between consecutive points:
// (current/previous - 1) * 100. A series with fewer than 2 points yields an
// empty slice.
func (s NavSeries) PeriodicReturns() []float64 {
	if len(s) < 2 {
		return []float64{}
	}

	returns := make([]float64, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		prev := s[i-1].Nav
		if prev == 0 {
			continue
		}
		returns = append(returns, (s[i].Nav/prev-1)*100)
	}
	return returns
}

// Metrics is the flat per-fund metric set produced by the analyzer engines.
// Trailing returns are nil when the series has insufficient history; every
// other field defaults to 0.0 when a computation is infeasible.
type Metrics struct {
	SchemeCode int     `json:"schemeCode"`
	FundName   string  `json:"fundName"`
	Category   string  `json:"category"`
	Nav        float64 `json:"nav"`

	Returns1Y  *float64 `json:"returns1y"`
	Returns3Y  *float64 `json:"returns3y"`
	Returns5Y  *float64 `json:"returns5y"`
	Returns10Y *float64 `json:"returns10y"`

	SharpeRatio       float64 `json:"sharpeRatio"`
	SortinoRatio      float64 `json:"sortinoRatio"`
	StandardDeviation float64 `json:"standardDeviation"`
	MaxDrawdown       float64 `json:"maxDrawdown"`
	Beta              float64 `json:"beta"`
	RiskScore         float64 `json:"riskScore"`

	ConsistencyScore       float64 `json:"consistencyScore"`
	RollingConsistency     float64 `json:"rollingConsistency"`
	CoefficientOfVariation float64 `json:"coefficientOfVariation"`

	Alpha                   float64 `json:"alpha"`
	TrackingError           float64 `json:"trackingError"`
	BenchmarkOutperformance float64 `json:"benchmarkOutperformance"`
	BenchmarkName           string  `json:"benchmarkName"`
}

// Float64 returns a pointer to v; convenience for the nullable return fields.
func Float64(v float64) *float64 {
	return &v
}
