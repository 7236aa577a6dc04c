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

package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fundscope/fundscope/analyzer"
	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
)

var (
	service *analyzer.Service
	cache   *navcache.Store
	rankCfg ranker.Config
)

// Init wires the handlers to their collaborators; call once before routing.
func Init(svc *analyzer.Service, store *navcache.Store, cfg ranker.Config) {
	service = svc
	cache = store
	rankCfg = cfg
}

// GetRecommendations runs the ranking pipeline and returns top-N funds per
// category. Cached NAV data makes repeat calls cheap.
func GetRecommendations(c *fiber.Ctx) error {
	method := ranker.Method(c.Query("method", string(ranker.MethodComprehensive)))
	if method != ranker.MethodReturns && method != ranker.MethodComprehensive {
		return fiber.NewError(fiber.StatusBadRequest, "method must be 'returns' or 'comprehensive'")
	}

	topN := c.QueryInt("topN", rankCfg.TopN)

	funds, err := service.Funds(c.Context())
	if err != nil {
		log.Error().Err(err).Msg("could not load fund universe")
		return fiber.ErrBadGateway
	}

	byCategory, err := service.EnrichCategories(c.Context(), funds)
	if err != nil {
		log.Error().Err(err).Msg("could not enrich funds")
		return fiber.ErrInternalServerError
	}

	r := ranker.New(rankCfg)
	top := r.SelectTopFunds(byCategory, topN, method)
	return c.JSON(r.GenerateRecommendations(top))
}

// GetFundMetrics computes the full metric set for a single scheme.
func GetFundMetrics(c *fiber.Ctx) error {
	schemeCode, err := c.ParamsInt("schemeCode")
	if err != nil || schemeCode < 1 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid scheme code")
	}

	series, err := service.NavHistory(c.Context(), schemeCode)
	if err != nil {
		log.Error().Err(err).Int("SchemeCode", schemeCode).Msg("could not load nav history")
		return fiber.ErrInternalServerError
	}
	if len(series) == 0 {
		return fiber.ErrNotFound
	}

	f := fundForScheme(c, schemeCode)
	return c.JSON(service.AnalyzeFund(f, series))
}

// fundForScheme resolves name and category from the cached fund universe;
// a scheme absent from the index still gets metrics, just without them.
func fundForScheme(c *fiber.Ctx, schemeCode int) *fund.Fund {
	funds, err := service.Funds(c.Context())
	if err != nil {
		log.Warn().Err(err).Msg("could not load fund universe; metrics will lack fund name")
		return &fund.Fund{SchemeCode: schemeCode}
	}
	for idx := range funds {
		if funds[idx].SchemeCode == schemeCode {
			f := funds[idx]
			f.Category = fund.ClassifyCategory(f.SchemeName)
			return &f
		}
	}
	return &fund.Fund{SchemeCode: schemeCode}
}

// GetCacheStats reports durable cache state.
func GetCacheStats(c *fiber.Ctx) error {
	return c.JSON(cache.Stats())
}

// ClearCache removes cached entries for the given scope (all, index, nav).
func ClearCache(c *fiber.Ctx) error {
	scope := navcache.Scope(c.Params("scope"))
	if err := cache.Clear(scope); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.SendStatus(fiber.StatusNoContent)
}
