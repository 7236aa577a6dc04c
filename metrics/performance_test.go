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

package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/metrics"
)

// monthlySeries builds a NAV history with one point per month starting at
// 2022-01-01, applying growth[i%len(growth)] percent each month.
func monthlySeries(months int, startNav float64, growth ...float64) fund.NavSeries {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	series := fund.NavSeries{{Date: start, Nav: startNav}}
	nav := startNav
	for i := 1; i <= months; i++ {
		nav *= 1 + growth[(i-1)%len(growth)]/100
		series = append(series, fund.NavPoint{Date: start.AddDate(0, i, 0), Nav: nav})
	}
	return series
}

var _ = Describe("Performance", func() {
	Describe("when calculating trailing period returns", func() {
		Context("with 3 years of steady 1% monthly growth", func() {
			var series fund.NavSeries

			BeforeEach(func() {
				series = monthlySeries(36, 100.0, 1.0)
			})

			It("should have a 1-yr return of one compounded year", func() {
				r := metrics.PeriodReturn(series, 1)
				Expect(r).ToNot(BeNil())
				Expect(*r).Should(BeNumerically("~", 12.6825, 0.001))
			})

			It("should have a 3-yr return spanning the whole series", func() {
				r := metrics.PeriodReturn(series, 3)
				Expect(r).ToNot(BeNil())
				Expect(*r).Should(BeNumerically("~", 43.0769, 0.001))
			})

			It("should be nil for a 5-yr return", func() {
				Expect(metrics.PeriodReturn(series, 5)).To(BeNil())
			})

			It("should be nil for 0 years", func() {
				Expect(metrics.PeriodReturn(series, 0)).To(BeNil())
			})
		})

		Context("with an empty series", func() {
			It("should be nil", func() {
				Expect(metrics.PeriodReturn(fund.NavSeries{}, 1)).To(BeNil())
			})
		})
	})

	Describe("when calculating annualized standard deviation", func() {
		It("should annualize the sample deviation by sqrt(12)", func() {
			Expect(metrics.StdDev([]float64{1, 3})).Should(BeNumerically("~", 4.89898, 0.0001))
		})

		It("should be 0 with fewer than 2 returns", func() {
			Expect(metrics.StdDev([]float64{5})).Should(Equal(0.0))
			Expect(metrics.StdDev(nil)).Should(Equal(0.0))
		})
	})

	Describe("when calculating the sharpe ratio", func() {
		It("should divide annualized excess return by volatility", func() {
			Expect(metrics.SharpeRatio([]float64{1, 3}, 6.0)).Should(BeNumerically("~", 3.67423, 0.0001))
		})

		It("should be 0 with zero volatility", func() {
			Expect(metrics.SharpeRatio([]float64{2, 2}, 6.0)).Should(Equal(0.0))
		})

		It("should be 0 with fewer than 2 returns", func() {
			Expect(metrics.SharpeRatio([]float64{2}, 6.0)).Should(Equal(0.0))
		})
	})

	Describe("when calculating the sortino ratio", func() {
		It("should use only downside deviation in the denominator", func() {
			Expect(metrics.SortinoRatio([]float64{-1, -3, 4, 6}, 6.0)).Should(BeNumerically("~", 2.44949, 0.0001))
		})

		It("should be 0 with fewer than 2 negative returns", func() {
			Expect(metrics.SortinoRatio([]float64{5, -1, 3}, 6.0)).Should(Equal(0.0))
			Expect(metrics.SortinoRatio([]float64{5, 1, 3}, 6.0)).Should(Equal(0.0))
		})
	})

	Describe("when calculating beta", func() {
		It("should be the ratio of covariance to benchmark variance", func() {
			Expect(metrics.Beta([]float64{2, 4, 6, 8}, []float64{1, 2, 3, 4})).Should(BeNumerically("~", 2.0, 1e-9))
		})

		It("should default to 1.0 on length mismatch", func() {
			Expect(metrics.Beta([]float64{1, 2, 3}, []float64{1, 2})).Should(Equal(1.0))
		})

		It("should default to 1.0 when the benchmark has no variance", func() {
			Expect(metrics.Beta([]float64{1, 2, 3}, []float64{5, 5, 5})).Should(Equal(1.0))
		})

		It("should default to 1.0 with too few points", func() {
			Expect(metrics.Beta([]float64{1}, []float64{1})).Should(Equal(1.0))
		})
	})

	Describe("when calculating maximum drawdown", func() {
		It("should report the worst peak-to-trough decline as a positive percentage", func() {
			series := fund.NavSeries{}
			start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
			for i, nav := range []float64{100, 110, 99, 105, 120, 108} {
				series = append(series, fund.NavPoint{Date: start.AddDate(0, i, 0), Nav: nav})
			}
			Expect(metrics.MaxDrawdown(series)).Should(BeNumerically("~", 10.0, 1e-9))
		})

		It("should be 0 for a monotonically rising series", func() {
			Expect(metrics.MaxDrawdown(monthlySeries(12, 100.0, 1.0))).Should(Equal(0.0))
		})

		It("should be 0 for an empty series", func() {
			Expect(metrics.MaxDrawdown(fund.NavSeries{})).Should(Equal(0.0))
		})
	})

	Describe("when calculating the risk score", func() {
		It("should blend volatility and drawdown", func() {
			Expect(metrics.RiskScore(10, 20)).Should(Equal(30.0))
		})

		It("should cap at 100", func() {
			Expect(metrics.RiskScore(60, 50)).Should(Equal(100.0))
		})
	})

	Describe("when running the performance engine", func() {
		var (
			engine *metrics.PerformanceEngine
			m      *fund.Metrics
		)

		BeforeEach(func() {
			engine = &metrics.PerformanceEngine{RiskFreeRate: 6.0}
			m = &fund.Metrics{}
		})

		Context("with 3 years of alternating 3%/1% monthly growth", func() {
			BeforeEach(func() {
				engine.Analyze(&fund.Fund{SchemeCode: 100001}, monthlySeries(36, 100.0, 3.0, 1.0), m)
			})

			It("should record the latest nav", func() {
				Expect(m.Nav).Should(BeNumerically("~", 203.636, 0.001))
			})

			It("should fill trailing returns", func() {
				Expect(m.Returns1Y).ToNot(BeNil())
				Expect(*m.Returns1Y).Should(BeNumerically("~", 26.751, 0.001))
				Expect(m.Returns3Y).ToNot(BeNil())
				Expect(*m.Returns3Y).Should(BeNumerically("~", 103.636, 0.001))
				Expect(m.Returns5Y).To(BeNil())
				Expect(m.Returns10Y).To(BeNil())
			})

			It("should annualize volatility", func() {
				Expect(m.StandardDeviation).Should(BeNumerically("~", 3.51324, 0.0001))
			})

			It("should have a positive sharpe ratio", func() {
				Expect(m.SharpeRatio).Should(BeNumerically("~", 5.12348, 0.0001))
			})

			It("should have no drawdown", func() {
				Expect(m.MaxDrawdown).Should(Equal(0.0))
			})

			It("should derive the risk score from volatility alone", func() {
				Expect(m.RiskScore).Should(BeNumerically("~", 2*3.51324, 0.001))
			})
		})

		Context("with 24 monthly points of near-geometric 2% growth", func() {
			// exactly constant growth has zero sample variance and trips the
			// zero-volatility guard, so the growth alternates 2.01%/1.99%
			BeforeEach(func() {
				engine.Analyze(&fund.Fund{SchemeCode: 100002}, monthlySeries(24, 100.0, 2.01, 1.99), m)
			})

			It("should have a positive sharpe ratio", func() {
				Expect(m.SharpeRatio).Should(BeNumerically(">", 0.0))
			})

			It("should have no drawdown", func() {
				Expect(m.MaxDrawdown).Should(BeNumerically("~", 0.0, 1e-9))
			})
		})

		Context("with fewer than 2 data points", func() {
			BeforeEach(func() {
				engine.Analyze(&fund.Fund{SchemeCode: 100001}, monthlySeries(0, 42.0), m)
			})

			It("should still record the nav", func() {
				Expect(m.Nav).Should(Equal(42.0))
			})

			It("should leave every statistic at its zero value", func() {
				Expect(m.Returns1Y).To(BeNil())
				Expect(m.StandardDeviation).Should(Equal(0.0))
				Expect(m.SharpeRatio).Should(Equal(0.0))
				Expect(m.SortinoRatio).Should(Equal(0.0))
				Expect(m.MaxDrawdown).Should(Equal(0.0))
				Expect(m.RiskScore).Should(Equal(0.0))
			})
		})
	})
})
