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

// Package analyzer orchestrates the metric engines over a universe of funds.
// Each engine writes its own disjoint slice of the per-fund metric set, so
// merging is a field union with no dispatch hierarchy. Fund computations are
// independent and fan out over a bounded worker pool; the cache is the only
// shared state.
package analyzer

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/benchmark"
	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/metrics"
	"github.com/fundscope/fundscope/mfapi"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
)

// NavProvider supplies scheme listings and NAV histories; mfapi.Client is the
// production implementation.
type NavProvider interface {
	FetchAllFunds(ctx context.Context) ([]fund.Fund, error)
	FetchNavHistory(ctx context.Context, schemeCode int, days int) (fund.NavSeries, error)
}

// Engine computes a slice of the metric set from a NAV series. Engines must
// not read fields another engine writes.
type Engine interface {
	Analyze(f *fund.Fund, series fund.NavSeries, m *fund.Metrics)
}

// Service wires the provider, cache, and engines together.
type Service struct {
	provider    NavProvider
	cache       *navcache.Store
	engines     []Engine
	workers     int
	historyDays int
	maxFunds    int
}

// New builds a service with the standard engine set for the given ranking
// configuration.
func New(provider NavProvider, cache *navcache.Store, cfg ranker.Config) *Service {
	workers := viper.GetInt("analyzer.workers")
	if workers < 1 {
		workers = 4
	}

	historyDays := viper.GetInt("analyzer.history_days")
	if historyDays < 1 {
		historyDays = mfapi.DefaultHistoryDays
	}

	maxFunds := viper.GetInt("analyzer.max_funds_per_category")
	if maxFunds < 1 {
		maxFunds = 100
	}

	return &Service{
		provider: provider,
		cache:    cache,
		engines: []Engine{
			&metrics.PerformanceEngine{RiskFreeRate: cfg.RiskFreeRate},
			&metrics.ConsistencyEngine{Window: metrics.DefaultRollingWindow},
			&benchmark.Engine{RiskFreeRate: cfg.RiskFreeRate},
		},
		workers:     workers,
		historyDays: historyDays,
		maxFunds:    maxFunds,
	}
}

// NewWithEngines builds a service with an explicit engine set.
func NewWithEngines(provider NavProvider, cache *navcache.Store, workers int, engines ...Engine) *Service {
	if workers < 1 {
		workers = 4
	}
	return &Service{
		provider:    provider,
		cache:       cache,
		engines:     engines,
		workers:     workers,
		historyDays: mfapi.DefaultHistoryDays,
		maxFunds:    100,
	}
}

// Funds returns the all-funds index, from cache when fresh.
func (s *Service) Funds(ctx context.Context) ([]fund.Fund, error) {
	if funds, ok := s.cache.GetIndex(); ok {
		log.Debug().Int("Count", len(funds)).Msg("fund index loaded from cache")
		return funds, nil
	}

	funds, err := s.provider.FetchAllFunds(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.PutIndex(funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// NavHistory returns a fund's NAV series, from cache when fresh. A fetch
// failure is logged and reported as an empty series; a cache write failure
// propagates.
func (s *Service) NavHistory(ctx context.Context, schemeCode int) (fund.NavSeries, error) {
	if series, ok := s.cache.GetNav(schemeCode); ok {
		return series, nil
	}

	series, err := s.provider.FetchNavHistory(ctx, schemeCode, s.historyDays)
	if err != nil {
		log.Warn().Err(err).Int("SchemeCode", schemeCode).Msg("could not fetch nav history")
		return fund.NavSeries{}, nil
	}

	if err := s.cache.PutNav(schemeCode, series); err != nil {
		return nil, err
	}
	return series, nil
}

// AnalyzeFund runs every engine over a single fund's series and merges their
// outputs by field union.
func (s *Service) AnalyzeFund(f *fund.Fund, series fund.NavSeries) *fund.Metrics {
	m := &fund.Metrics{
		SchemeCode: f.SchemeCode,
		FundName:   f.SchemeName,
		Category:   f.Category,
	}
	for _, engine := range s.engines {
		engine.Analyze(f, series, m)
	}
	return m
}

type enrichResult struct {
	metrics *fund.Metrics
	err     error
}

// EnrichFunds computes metric sets for a list of funds, fanning out over the
// worker pool. Funds with no series available are omitted from the result
// rather than reported with placeholder metrics. The first cache write error
// encountered is returned alongside whatever was computed.
func (s *Service) EnrichFunds(ctx context.Context, funds []fund.Fund) ([]*fund.Metrics, error) {
	jobs := make(chan fund.Fund)
	results := make(chan enrichResult)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range jobs {
				series, err := s.NavHistory(ctx, f.SchemeCode)
				if err != nil {
					results <- enrichResult{err: err}
					continue
				}
				if len(series) == 0 {
					log.Debug().Int("SchemeCode", f.SchemeCode).Msg("no nav history; skipping fund")
					results <- enrichResult{}
					continue
				}
				f := f
				results <- enrichResult{metrics: s.AnalyzeFund(&f, series)}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, f := range funds {
			select {
			case jobs <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	enriched := make([]*fund.Metrics, 0, len(funds))
	var firstErr error
	for res := range results {
		if res.err != nil && firstErr == nil {
			firstErr = res.err
		}
		if res.metrics != nil {
			enriched = append(enriched, res.metrics)
		}
	}
	return enriched, firstErr
}

// EnrichCategories classifies the fund universe, filters to direct plans,
// caps each category at the configured maximum, and enriches every remaining
// fund with metrics.
func (s *Service) EnrichCategories(ctx context.Context, funds []fund.Fund) (map[string][]*fund.Metrics, error) {
	byCategory := fund.Categorize(funds)

	out := make(map[string][]*fund.Metrics, len(byCategory))
	for category, categoryFunds := range byCategory {
		if len(categoryFunds) > s.maxFunds {
			categoryFunds = categoryFunds[:s.maxFunds]
		}

		enriched, err := s.EnrichFunds(ctx, categoryFunds)
		if err != nil {
			return nil, err
		}
		out[category] = enriched
		log.Info().Str("Category", category).Int("Funds", len(enriched)).Msg("enriched category")
	}
	return out, nil
}
