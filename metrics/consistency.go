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

package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/fundscope/fundscope/fund"
)

// DefaultRollingWindow is the rolling-consistency window in periods.
const DefaultRollingWindow = 12

// worstCV is the coefficient of variation assigned when the mean return is
// exactly zero; dividing by zero would otherwise make the score undefined.
const worstCV = 100.0

// CoefficientOfVariation is |σ/μ| of the periodic returns, a scale-free
// dispersion measure. Worst case (100) when there are no returns or the mean
// is exactly zero.
func CoefficientOfVariation(returns []float64) float64 {
	if len(returns) < 2 {
		return worstCV
	}

	mean := stat.Mean(returns, nil)
	if mean == 0 {
		return worstCV
	}
	return math.Abs(stat.StdDev(returns, nil) / mean)
}

// ConsistencyScore maps return dispersion onto [0, 100]; lower dispersion
// yields a higher score. A CV of 0.5 is very consistent, 2.0+ is not.
// Requires at least 12 periodic returns, else 0.0.
func ConsistencyScore(returns []float64) float64 {
	if len(returns) < 12 {
		return 0.0
	}

	cv := CoefficientOfVariation(returns)
	return clampScore(100 - cv*50)
}

// RollingConsistency scores the stability of rolling annualized returns.
// Each full window of `window` periodic returns is compounded and scaled to an
// annual rate; partial windows are discarded. The score is derived from the CV
// of that rolling series. Requires at least 2×window raw data points, else 0.0.
func RollingConsistency(series fund.NavSeries, window int) float64 {
	if window < 1 {
		window = DefaultRollingWindow
	}
	if len(series) < window*2 {
		return 0.0
	}

	returns := series.PeriodicReturns()
	if len(returns) < window {
		return 0.0
	}

	rolling := rollingAnnualizedReturns(returns, window)
	if len(rolling) < 2 {
		return 0.0
	}

	mean := math.Abs(stat.Mean(rolling, nil))
	if mean == 0 {
		return 0.0
	}

	cv := stat.StdDev(rolling, nil) / mean
	return clampScore(100 - cv*30)
}

// rollingAnnualizedReturns compounds each full window of periodic returns and
// scales the compound return to an annual rate.
func rollingAnnualizedReturns(returns []float64, window int) []float64 {
	if len(returns) < window {
		return []float64{}
	}

	rolling := make([]float64, 0, len(returns)-window+1)
	for i := 0; i+window <= len(returns); i++ {
		compound := 1.0
		for _, r := range returns[i : i+window] {
			compound *= 1 + r/100
		}
		rolling = append(rolling, (compound-1)*100*(float64(PeriodsPerYear)/float64(window)))
	}
	return rolling
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0.0
	}
	if score > 100 {
		return 100.0
	}
	return score
}

// ConsistencyEngine fills the consistency fields of a fund's metric set.
type ConsistencyEngine struct {
	Window int
}

func (e *ConsistencyEngine) Analyze(f *fund.Fund, series fund.NavSeries, m *fund.Metrics) {
	window := e.Window
	if window < 1 {
		window = DefaultRollingWindow
	}

	returns := series.PeriodicReturns()
	m.ConsistencyScore = ConsistencyScore(returns)
	m.RollingConsistency = RollingConsistency(series, window)
	m.CoefficientOfVariation = CoefficientOfVariation(returns)
}
