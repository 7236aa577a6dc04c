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

package report_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/ranker"
	"github.com/fundscope/fundscope/report"
)

func sampleRecommendations() []ranker.RankedFund {
	return []ranker.RankedFund{
		{
			Metrics: fund.Metrics{
				SchemeCode:        120503,
				FundName:          "Axis Small Cap Fund - Direct Plan - Growth",
				Category:          "smallcap",
				Returns1Y:         fund.Float64(22.5),
				Returns3Y:         fund.Float64(18.2),
				SharpeRatio:       1.4,
				StandardDeviation: 14.1,
				RiskScore:         35.0,
			},
			Score:  24.7,
			Rank:   1,
			Method: ranker.MethodComprehensive,
		},
		{
			Metrics: fund.Metrics{
				SchemeCode: 118825,
				FundName:   "HDFC Mid-Cap Opportunities Fund - Direct Plan - Growth",
				Category:   "midcap",
			},
			Score:  11.1,
			Rank:   1,
			Method: ranker.MethodComprehensive,
		},
	}
}

var _ = Describe("Report", func() {
	Describe("when rendering the ascii table", func() {
		It("should include every recommendation row", func() {
			var buf bytes.Buffer
			report.WriteTable(&buf, sampleRecommendations())

			out := buf.String()
			Expect(out).To(ContainSubstring("Axis Small Cap Fund"))
			Expect(out).To(ContainSubstring("smallcap"))
			Expect(out).To(ContainSubstring("midcap"))
			Expect(out).To(ContainSubstring("24.70"))
		})

		It("should format returns to two decimals", func() {
			var buf bytes.Buffer
			report.WriteTable(&buf, sampleRecommendations())
			Expect(buf.String()).To(ContainSubstring("22.50"))
		})
	})

	Describe("when building the dataframe", func() {
		It("should carry one row per recommendation with the stable columns", func() {
			df := report.ToDataFrame(sampleRecommendations())
			Expect(df.NRows()).To(Equal(2))

			names := df.Names()
			Expect(names).To(Equal(report.Columns))
		})
	})

	Describe("when exporting csv", func() {
		It("should write a parseable file with a header row", func() {
			dir, err := os.MkdirTemp("", "report")
			Expect(err).To(BeNil())
			defer os.RemoveAll(dir)

			path := filepath.Join(dir, "out", "recommendations.csv")
			Expect(report.ExportCSV(context.Background(), path, sampleRecommendations())).To(Succeed())

			raw, err := os.ReadFile(path)
			Expect(err).To(BeNil())
			Expect(string(raw)).To(ContainSubstring("scheme_code"))
			Expect(string(raw)).To(ContainSubstring("120503"))
		})
	})
})
