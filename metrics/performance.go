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

// Package metrics computes return and risk statistics from a NAV series.
// Every function treats fewer than 2 data points as "metric unavailable" and
// returns 0.0 (or nil for period returns) rather than an error; insufficient
// history is the dominant input state, not a failure.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fundscope/fundscope/fund"
)

// PeriodsPerYear is the annualization basis. The scoring weights were
// calibrated against monthly-equivalent annualization (√12), so this stays
// fixed even when the underlying series is daily.
const PeriodsPerYear = 12

// DaysPerYear is the calendar-day basis used for trailing-return lookback.
const DaysPerYear = 365

// PeriodReturn computes the trailing return over the given number of years by
// comparing the latest NAV against the nearest point at or before
// latest − years×365 days. Returns nil when the series does not reach that far
// back (insufficient history, distinct from a 0% return).
func PeriodReturn(series fund.NavSeries, years int) *float64 {
	latest, ok := series.Latest()
	if !ok || years < 1 {
		return nil
	}

	target := latest.Date.AddDate(0, 0, -years*DaysPerYear)
	var past *fund.NavPoint
	for i := range series {
		if series[i].Date.After(target) {
			break
		}
		past = &series[i]
	}

	if past == nil || past.Nav <= 0 {
		return nil
	}
	return fund.Float64((latest.Nav/past.Nav - 1) * 100)
}

// TrailingReturns computes the standard 1/3/5/10 year trailing returns.
func TrailingReturns(series fund.NavSeries) (r1, r3, r5, r10 *float64) {
	return PeriodReturn(series, 1), PeriodReturn(series, 3),
		PeriodReturn(series, 5), PeriodReturn(series, 10)
}

// StdDev is the annualized sample standard deviation of periodic returns.
func StdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}
	return stat.StdDev(returns, nil) * math.Sqrt(PeriodsPerYear)
}

// SharpeRatio is the annualized excess return per unit of total volatility:
// mean(r − rf/12) / std(r) × √12. Zero when volatility is zero or there are
// too few points to estimate it.
func SharpeRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}

	sd := stat.StdDev(returns, nil)
	if sd == 0 {
		return 0.0
	}

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFreeRate/PeriodsPerYear
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(PeriodsPerYear)
}

// SortinoRatio is the Sharpe ratio with only downside volatility in the
// denominator. Zero when there are no negative returns, or too few of them to
// estimate a deviation.
func SortinoRatio(returns []float64, riskFreeRate float64) float64 {
	if len(returns) < 2 {
		return 0.0
	}

	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) < 2 {
		return 0.0
	}

	sd := stat.StdDev(downside, nil)
	if sd == 0 {
		return 0.0
	}

	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - riskFreeRate/PeriodsPerYear
	}
	return stat.Mean(excess, nil) / sd * math.Sqrt(PeriodsPerYear)
}

// Beta measures sensitivity to benchmark movements:
// cov(fund, benchmark) / var(benchmark). Defaults to 1.0 (market neutral)
// when the series mismatch in length, are too short, or the benchmark has
// zero variance.
func Beta(fundReturns, benchmarkReturns []float64) float64 {
	if len(fundReturns) != len(benchmarkReturns) || len(fundReturns) < 2 {
		return 1.0
	}

	benchVar := stat.Variance(benchmarkReturns, nil)
	if benchVar == 0 {
		return 1.0
	}
	return stat.Covariance(fundReturns, benchmarkReturns, nil) / benchVar
}

// MaxDrawdown is the largest peak-to-trough decline across the series,
// reported as a positive percentage. Zero for an empty series.
func MaxDrawdown(series fund.NavSeries) float64 {
	if len(series) == 0 {
		return 0.0
	}

	peak := series[0].Nav
	maxDD := 0.0
	for _, p := range series {
		if p.Nav > peak {
			peak = p.Nav
		}
		if peak > 0 {
			dd := (p.Nav - peak) / peak * 100
			if dd < maxDD {
				maxDD = dd
			}
		}
	}
	return math.Abs(maxDD)
}

// RiskScore blends volatility and drawdown into a 0-100 score (higher =
// riskier): min(100, 2σ + 0.5·MDD). A deliberately simple linear blend, not a
// calibrated risk model; treat it as approximate.
func RiskScore(stdDev, maxDrawdown float64) float64 {
	return math.Min(100, stdDev*2+maxDrawdown*0.5)
}

// PerformanceEngine fills the return and risk fields of a fund's metric set.
type PerformanceEngine struct {
	RiskFreeRate float64
}

func (e *PerformanceEngine) Analyze(f *fund.Fund, series fund.NavSeries, m *fund.Metrics) {
	if latest, ok := series.Latest(); ok {
		m.Nav = latest.Nav
	}

	m.Returns1Y, m.Returns3Y, m.Returns5Y, m.Returns10Y = TrailingReturns(series)

	returns := series.PeriodicReturns()
	m.StandardDeviation = StdDev(returns)
	m.SharpeRatio = SharpeRatio(returns, e.RiskFreeRate)
	m.SortinoRatio = SortinoRatio(returns, e.RiskFreeRate)
	m.MaxDrawdown = MaxDrawdown(series)
	m.RiskScore = riskScoreFor(series, m)
}

func riskScoreFor(series fund.NavSeries, m *fund.Metrics) float64 {
	if len(series) < 2 {
		return 0.0
	}
	return RiskScore(m.StandardDeviation, m.MaxDrawdown)
}
