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

package analyzer_test

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/fundscope/fundscope/analyzer"
	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
)

// fakeProvider serves canned data and counts upstream calls so cache
// behavior is observable.
type fakeProvider struct {
	funds      []fund.Fund
	histories  map[int]fund.NavSeries
	indexCalls int32
	navCalls   int32
	err        error
}

func (p *fakeProvider) FetchAllFunds(_ context.Context) ([]fund.Fund, error) {
	atomic.AddInt32(&p.indexCalls, 1)
	if p.err != nil {
		return nil, p.err
	}
	return p.funds, nil
}

func (p *fakeProvider) FetchNavHistory(_ context.Context, schemeCode int, _ int) (fund.NavSeries, error) {
	atomic.AddInt32(&p.navCalls, 1)
	if p.err != nil {
		return nil, p.err
	}
	series, ok := p.histories[schemeCode]
	if !ok {
		return nil, errors.New("unknown scheme")
	}
	return series, nil
}

func steadySeries(months int) fund.NavSeries {
	start := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	series := fund.NavSeries{{Date: start, Nav: 100.0}}
	nav := 100.0
	for i := 1; i <= months; i++ {
		growth := 1.01
		if i%2 == 0 {
			growth = 1.03
		}
		nav *= growth
		series = append(series, fund.NavPoint{Date: start.AddDate(0, i, 0), Nav: nav})
	}
	return series
}

var _ = Describe("Service", func() {
	var (
		dir      string
		cache    *navcache.Store
		provider *fakeProvider
		svc      *analyzer.Service
		ctx      context.Context
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "analyzer")
		Expect(err).To(BeNil())
		cache, err = navcache.NewStoreAt(dir, navcache.DefaultFreshness, 16)
		Expect(err).To(BeNil())

		provider = &fakeProvider{
			funds: []fund.Fund{
				{SchemeCode: 1, SchemeName: "Axis Small Cap Fund - Direct Plan - Growth"},
				{SchemeCode: 2, SchemeName: "HDFC Mid-Cap Opportunities Fund - Direct Plan - Growth"},
				{SchemeCode: 3, SchemeName: "Kotak Small Cap Fund - Direct Plan - Growth"},
			},
			histories: map[int]fund.NavSeries{
				1: steadySeries(36),
				2: steadySeries(36),
			},
		}

		svc = analyzer.New(provider, cache, ranker.DefaultConfig())
		ctx = context.Background()
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	Describe("when loading the fund universe", func() {
		It("should fetch once and then serve from cache", func() {
			funds, err := svc.Funds(ctx)
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(3))
			Expect(provider.indexCalls).To(Equal(int32(1)))

			funds, err = svc.Funds(ctx)
			Expect(err).To(BeNil())
			Expect(funds).To(HaveLen(3))
			Expect(provider.indexCalls).To(Equal(int32(1)))
		})

		It("should propagate fetch errors", func() {
			provider.err = errors.New("upstream down")
			_, err := svc.Funds(ctx)
			Expect(err).ToNot(BeNil())
		})
	})

	Describe("when loading a nav history", func() {
		It("should fetch once and then serve from cache", func() {
			series, err := svc.NavHistory(ctx, 1)
			Expect(err).To(BeNil())
			Expect(series).To(HaveLen(37))
			Expect(provider.navCalls).To(Equal(int32(1)))

			_, err = svc.NavHistory(ctx, 1)
			Expect(err).To(BeNil())
			Expect(provider.navCalls).To(Equal(int32(1)))
		})

		It("should degrade a fetch failure to an empty series", func() {
			series, err := svc.NavHistory(ctx, 404)
			Expect(err).To(BeNil())
			Expect(series).To(BeEmpty())
		})
	})

	Describe("when analyzing a single fund", func() {
		It("should merge every engine's fields into one metric set", func() {
			f := &fund.Fund{SchemeCode: 1, SchemeName: "Axis Small Cap Fund - Direct Plan - Growth", Category: "smallcap"}
			m := svc.AnalyzeFund(f, steadySeries(36))

			Expect(m.SchemeCode).To(Equal(1))
			Expect(m.FundName).To(Equal(f.SchemeName))
			Expect(m.Category).To(Equal("smallcap"))

			// performance engine
			Expect(m.Nav).Should(BeNumerically(">", 100.0))
			Expect(m.Returns1Y).ToNot(BeNil())
			Expect(m.SharpeRatio).Should(BeNumerically(">", 0.0))

			// consistency engine
			Expect(m.ConsistencyScore).Should(BeNumerically(">", 0.0))
			Expect(m.RollingConsistency).Should(BeNumerically(">", 0.0))

			// benchmark engine
			Expect(m.BenchmarkName).To(Equal("NIFTY Smallcap 100"))
			Expect(m.Beta).Should(Equal(1.0))
		})
	})

	Describe("when enriching a list of funds", func() {
		It("should skip funds with no history available", func() {
			enriched, err := svc.EnrichFunds(ctx, provider.funds)
			Expect(err).To(BeNil())
			// scheme 3 has no history and is omitted
			Expect(enriched).To(HaveLen(2))

			codes := []int{enriched[0].SchemeCode, enriched[1].SchemeCode}
			Expect(codes).To(ConsistOf(1, 2))
		})
	})

	Describe("when enriching by category", func() {
		It("should bucket direct plans and enrich each bucket", func() {
			byCategory, err := svc.EnrichCategories(ctx, provider.funds)
			Expect(err).To(BeNil())

			Expect(byCategory["smallcap"]).To(HaveLen(1)) // scheme 3 has no history
			Expect(byCategory["smallcap"][0].SchemeCode).To(Equal(1))
			Expect(byCategory["midcap"]).To(HaveLen(1))
			Expect(byCategory["debt"]).To(BeEmpty())
		})

		It("should exclude regular plans", func() {
			provider.funds = append(provider.funds, fund.Fund{
				SchemeCode: 4, SchemeName: "Axis Small Cap Fund - Regular Plan - Growth",
			})
			provider.histories[4] = steadySeries(36)

			byCategory, err := svc.EnrichCategories(ctx, provider.funds)
			Expect(err).To(BeNil())
			Expect(byCategory["smallcap"]).To(HaveLen(1))
		})
	})
})
