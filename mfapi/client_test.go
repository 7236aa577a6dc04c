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

package mfapi_test

import (
	"context"

	"github.com/jarcoal/httpmock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fundscope/fundscope/mfapi"
)

var _ = Describe("Client", func() {
	var client *mfapi.Client

	BeforeEach(func() {
		httpmock.Reset()
		client = mfapi.NewClient()
	})

	Describe("when fetching the fund listing", func() {
		BeforeEach(func() {
			httpmock.RegisterResponder("GET", "https://api.mfapi.in/mf",
				httpmock.NewStringResponder(200, `[
					{"schemeCode": 120503, "schemeName": "Axis Small Cap Fund - Direct Plan - Growth", "isinGrowth": "INF846K01K35"},
					{"schemeCode": 118825, "schemeName": "HDFC Mid-Cap Opportunities Fund - Direct Plan - Growth"},
					{"schemeCode": 0, "schemeName": "placeholder row"}
				]`))
		})

		It("should parse schemes and drop rows without a scheme code", func() {
			funds, err := client.FetchAllFunds(context.Background())
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(2))
			Expect(funds[0].SchemeCode).To(Equal(120503))
			Expect(funds[0].ISINGrowth).To(Equal("INF846K01K35"))
			Expect(funds[1].SchemeName).To(ContainSubstring("Mid-Cap"))
		})
	})

	Describe("when fetching a nav history", func() {
		Context("with a well-formed response", func() {
			BeforeEach(func() {
				// mfapi serves newest first with string navs; one bad date and
				// one bad nav row are mixed in
				httpmock.RegisterResponder("GET", "https://api.mfapi.in/mf/120503",
					httpmock.NewStringResponder(200, `{
						"meta": {"scheme_code": 120503, "scheme_name": "Axis Small Cap Fund - Direct Plan - Growth"},
						"data": [
							{"date": "03-01-2024", "nav": "102.34567"},
							{"date": "02-01-2024", "nav": "101.50"},
							{"date": "not-a-date", "nav": "99.99"},
							{"date": "01-01-2024", "nav": "N.A."},
							{"date": "01-01-2024", "nav": "100.25"}
						],
						"status": "SUCCESS"
					}`))
			})

			It("should return an ascending series with bad rows skipped", func() {
				series, err := client.FetchNavHistory(context.Background(), 120503, 0)
				Expect(err).To(BeNil())
				Expect(series).To(HaveLen(3))
				Expect(series[0].Nav).Should(Equal(100.25))
				Expect(series[0].Date.Before(series[2].Date)).To(BeTrue())
			})

			It("should truncate navs to two decimals", func() {
				series, err := client.FetchNavHistory(context.Background(), 120503, 0)
				Expect(err).To(BeNil())
				Expect(series[2].Nav).Should(Equal(102.34))
			})

			It("should trim history beyond the requested day window", func() {
				series, err := client.FetchNavHistory(context.Background(), 120503, 1)
				Expect(err).To(BeNil())
				// only points within 1 day of the latest (03-01) survive
				Expect(series).To(HaveLen(2))
				Expect(series[0].Nav).Should(Equal(101.5))
			})
		})

		Context("with a failure status", func() {
			BeforeEach(func() {
				httpmock.RegisterResponder("GET", "https://api.mfapi.in/mf/999999",
					httpmock.NewStringResponder(200, `{"status": "FAIL", "data": []}`))
			})

			It("should return an error", func() {
				_, err := client.FetchNavHistory(context.Background(), 999999, 0)
				Expect(err).ToNot(BeNil())
			})
		})

		Context("with an http error", func() {
			BeforeEach(func() {
				httpmock.RegisterResponder("GET", "https://api.mfapi.in/mf/120503",
					httpmock.NewStringResponder(500, "internal error"))
			})

			It("should return an error", func() {
				_, err := client.FetchNavHistory(context.Background(), 120503, 0)
				Expect(err).ToNot(BeNil())
			})
		})
	})
})
