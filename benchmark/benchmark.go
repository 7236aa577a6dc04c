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

// Package benchmark maps funds to their benchmark index and computes
// attribution metrics against it. Index series are rarely available from free
// sources, so the engine degrades to neutral defaults plus a clearly labeled
// outperformance proxy when no benchmark series is supplied.
package benchmark

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/metrics"
)

// DefaultBenchmark is used when neither the fund name nor the category gives
// a better match.
const DefaultBenchmark = "NIFTY 50"

type lexiconEntry struct {
	keyword   string
	benchmark string
}

// Name keywords are checked in order; "nifty 50" must win over plain "nifty".
var nameLexicon = []lexiconEntry{
	{"nifty 50", "NIFTY 50"},
	{"nifty 100", "NIFTY 100"},
	{"nifty midcap", "NIFTY Midcap 100"},
	{"nifty smallcap", "NIFTY Smallcap 100"},
	{"nifty next 50", "NIFTY Next 50"},
	{"nifty", "NIFTY 50"},
	{"bse sensex", "S&P BSE SENSEX"},
	{"sensex", "S&P BSE SENSEX"},
}

var categoryBenchmarks = map[string]string{
	"largecap":    "NIFTY 50",
	"midcap":      "NIFTY Midcap 100",
	"smallcap":    "NIFTY Smallcap 100",
	"index_funds": "NIFTY 50",
	"elss":        "NIFTY 500",
	"hybrid":      "NIFTY 50 Hybrid Composite Debt 50:50",
	"debt":        "CRISIL Composite Bond Fund Index",
	"sectoral":    "NIFTY 500",
}

// Identify resolves the benchmark index for a fund. A keyword match against
// the fund name takes priority; otherwise the category lookup applies, and an
// unrecognized category falls back to NIFTY 50.
func Identify(fundName, category string) string {
	name := strings.ToLower(fundName)
	for _, entry := range nameLexicon {
		if strings.Contains(name, entry.keyword) {
			return entry.benchmark
		}
	}

	if b, ok := categoryBenchmarks[category]; ok {
		return b
	}
	return DefaultBenchmark
}

// Alpha is the annualized difference of mean excess returns over the
// risk-free rate (no beta adjustment). Zero when the series mismatch in
// length or are too short.
func Alpha(fundReturns, benchmarkReturns []float64, riskFreeRate float64) float64 {
	if len(fundReturns) != len(benchmarkReturns) || len(fundReturns) < 2 {
		return 0.0
	}

	// The rf/12 shift cancels in the difference but is kept explicit so the
	// two excess means remain individually meaningful.
	fundExcess := stat.Mean(fundReturns, nil) - riskFreeRate/metrics.PeriodsPerYear
	benchExcess := stat.Mean(benchmarkReturns, nil) - riskFreeRate/metrics.PeriodsPerYear
	return (fundExcess - benchExcess) * metrics.PeriodsPerYear
}

// TrackingError is the annualized standard deviation of the return
// difference between fund and benchmark. Zero when the series mismatch in
// length or are too short.
func TrackingError(fundReturns, benchmarkReturns []float64) float64 {
	if len(fundReturns) != len(benchmarkReturns) || len(fundReturns) < 2 {
		return 0.0
	}

	diff := make([]float64, len(fundReturns))
	for i := range fundReturns {
		diff[i] = fundReturns[i] - benchmarkReturns[i]
	}
	return stat.StdDev(diff, nil) * math.Sqrt(metrics.PeriodsPerYear)
}

// AnnualizedReturn compounds periodic percentage returns and scales them to
// an annual rate. Zero for an empty slice.
func AnnualizedReturn(returns []float64) float64 {
	if len(returns) == 0 {
		return 0.0
	}

	compound := 1.0
	for _, r := range returns {
		compound *= 1 + r/100
	}
	return (math.Pow(compound, metrics.PeriodsPerYear/float64(len(returns))) - 1) * 100
}

// SeriesLookup supplies benchmark return series by index name. Returning nil
// means no series is available for that benchmark.
type SeriesLookup func(benchmarkName string) []float64

// Engine fills the benchmark attribution fields of a fund's metric set.
//
// When Lookup yields no series (the common case without paid index data),
// alpha and tracking error are 0.0 and BenchmarkOutperformance carries the
// fund's own annualized return as a proxy - it is NOT a real comparison.
type Engine struct {
	RiskFreeRate float64
	Lookup       SeriesLookup
}

func (e *Engine) Analyze(f *fund.Fund, series fund.NavSeries, m *fund.Metrics) {
	m.BenchmarkName = Identify(f.SchemeName, f.Category)

	returns := series.PeriodicReturns()

	var benchReturns []float64
	if e.Lookup != nil {
		benchReturns = e.Lookup(m.BenchmarkName)
	}

	m.Beta = metrics.Beta(returns, benchReturns)

	if len(benchReturns) > 0 && len(benchReturns) == len(returns) && len(returns) >= 2 {
		m.Alpha = Alpha(returns, benchReturns, e.RiskFreeRate)
		m.TrackingError = TrackingError(returns, benchReturns)
		return
	}

	m.Alpha = 0.0
	m.TrackingError = 0.0
	if len(returns) >= 12 {
		m.BenchmarkOutperformance = AnnualizedReturn(returns)
	}
}
