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

// Package ranker turns per-fund metric sets into ranked, top-N
// recommendations per category under two selectable scoring strategies.
package ranker

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/fund"
)

// Method selects the scoring strategy.
type Method string

const (
	// MethodReturns scores purely on trailing returns.
	MethodReturns Method = "returns"
	// MethodComprehensive blends returns with risk-adjusted metrics.
	MethodComprehensive Method = "comprehensive"
)

// Weights are the scoring coefficients. Zero-valued weights fall back to the
// documented defaults via Normalized.
type Weights struct {
	Returns1Y   float64 `mapstructure:"returns_1y"`
	Returns3Y   float64 `mapstructure:"returns_3y"`
	Returns5Y   float64 `mapstructure:"returns_5y"`
	SharpeRatio float64 `mapstructure:"sharpe_ratio"`
	Consistency float64 `mapstructure:"consistency"`
	RiskScore   float64 `mapstructure:"risk_score"`
}

// DefaultWeights returns the calibrated default coefficients.
func DefaultWeights() Weights {
	return Weights{
		Returns1Y:   0.15,
		Returns3Y:   0.20,
		Returns5Y:   0.25,
		SharpeRatio: 0.20,
		Consistency: 0.10,
		RiskScore:   0.10,
	}
}

// Normalized fills any unset (zero) weight with its default.
func (w Weights) Normalized() Weights {
	def := DefaultWeights()
	if w.Returns1Y == 0 {
		w.Returns1Y = def.Returns1Y
	}
	if w.Returns3Y == 0 {
		w.Returns3Y = def.Returns3Y
	}
	if w.Returns5Y == 0 {
		w.Returns5Y = def.Returns5Y
	}
	if w.SharpeRatio == 0 {
		w.SharpeRatio = def.SharpeRatio
	}
	if w.Consistency == 0 {
		w.Consistency = def.Consistency
	}
	if w.RiskScore == 0 {
		w.RiskScore = def.RiskScore
	}
	return w
}

// Config carries everything a scoring call needs. It is passed explicitly
// into each computation rather than read ambiently so the scoring functions
// stay referentially transparent.
type Config struct {
	Weights      Weights
	TopN         int
	RiskFreeRate float64
}

// DefaultConfig returns the built-in ranking configuration.
func DefaultConfig() Config {
	return Config{
		Weights:      DefaultWeights(),
		TopN:         3,
		RiskFreeRate: 6.0,
	}
}

// ConfigFromViper materializes the ranking configuration from the loaded
// config file; absent keys keep their defaults.
func ConfigFromViper() Config {
	cfg := DefaultConfig()

	var w Weights
	if err := viper.UnmarshalKey("ranking.weights", &w); err != nil {
		log.Warn().Err(err).Msg("could not parse ranking weights; using defaults")
	} else {
		cfg.Weights = w.Normalized()
	}

	if n := viper.GetInt("ranking.top_n"); n > 0 {
		cfg.TopN = n
	}
	if rf := viper.GetFloat64("ranking.risk_free_rate"); rf > 0 {
		cfg.RiskFreeRate = rf
	}
	return cfg
}

// RankedFund is a fund metric set with its score and category rank attached.
// Immutable once produced.
type RankedFund struct {
	fund.Metrics

	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
	Method Method  `json:"method"`
}

// Ranker scores and ranks funds under a fixed configuration.
type Ranker struct {
	cfg Config
}

func New(cfg Config) *Ranker {
	cfg.Weights = cfg.Weights.Normalized()
	if cfg.TopN < 1 {
		cfg.TopN = DefaultConfig().TopN
	}
	return &Ranker{cfg: cfg}
}

// ScoreReturns is the pure-returns score: a weighted average of the available
// trailing returns, normalized by the sum of the weights actually used so a
// fund missing a period is not penalized by the denominator. Capped at 100.
func (r *Ranker) ScoreReturns(m *fund.Metrics) float64 {
	w := r.cfg.Weights

	score := 0.0
	weightSum := 0.0
	for _, c := range []struct {
		ret    *float64
		weight float64
	}{
		{m.Returns1Y, w.Returns1Y},
		{m.Returns3Y, w.Returns3Y},
		{m.Returns5Y, w.Returns5Y},
	} {
		if c.ret == nil {
			continue
		}
		score += *c.ret * c.weight
		weightSum += c.weight
	}

	if weightSum == 0 {
		return 0.0
	}
	return math.Min(score/weightSum, 100.0)
}

// ScoreComprehensive blends returns, Sharpe, volatility, and the risk score
// into a weighted sum. Unlike ScoreReturns it is deliberately NOT normalized
// by the weight sum: a fund missing metrics scores lower, which downstream
// consumers rely on. Capped at 100.
func (r *Ranker) ScoreComprehensive(m *fund.Metrics) float64 {
	w := r.cfg.Weights

	score := 0.0
	for _, c := range []struct {
		ret    *float64
		weight float64
	}{
		{m.Returns1Y, w.Returns1Y},
		{m.Returns3Y, w.Returns3Y},
		{m.Returns5Y, w.Returns5Y},
	} {
		if c.ret == nil {
			continue
		}
		score += (*c.ret / 100) * c.weight * 100
	}

	if m.SharpeRatio != 0 {
		normalizedSharpe := math.Min(m.SharpeRatio/2.0, 1.0)
		score += normalizedSharpe * w.SharpeRatio * 100
	}

	// lower volatility scores higher
	if m.StandardDeviation != 0 {
		inverseVol := math.Max(0, 1-m.StandardDeviation/30)
		score += inverseVol * w.Consistency * 100
	}

	// lower risk scores higher
	riskFactor := 1 - m.RiskScore/100
	score += riskFactor * w.RiskScore * 100

	return math.Min(score, 100.0)
}

func (r *Ranker) score(m *fund.Metrics, method Method) float64 {
	if method == MethodReturns {
		return r.ScoreReturns(m)
	}
	return r.ScoreComprehensive(m)
}

// RankFunds scores every fund, sorts descending by score, and assigns dense
// 1-based ranks. The sort is stable: ties keep their input order.
func (r *Ranker) RankFunds(funds []*fund.Metrics, method Method) []RankedFund {
	ranked := make([]RankedFund, 0, len(funds))
	for _, m := range funds {
		ranked = append(ranked, RankedFund{
			Metrics: *m,
			Score:   r.score(m, method),
			Method:  method,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}

// SelectTopFunds ranks each category and keeps the top N. Categories with no
// funds yield an empty slice, not an error.
func (r *Ranker) SelectTopFunds(byCategory map[string][]*fund.Metrics, topN int, method Method) map[string][]RankedFund {
	if topN < 1 {
		topN = r.cfg.TopN
	}

	top := make(map[string][]RankedFund, len(byCategory))
	for category, funds := range byCategory {
		ranked := r.RankFunds(funds, method)
		if len(ranked) > topN {
			ranked = ranked[:topN]
		}
		top[category] = ranked
		log.Debug().Str("Category", category).Int("Selected", len(ranked)).
			Str("Method", string(method)).Msg("selected top funds")
	}
	return top
}

// GenerateRecommendations flattens per-category selections into one list
// ordered by category, then rank.
func (r *Ranker) GenerateRecommendations(top map[string][]RankedFund) []RankedFund {
	categories := make([]string, 0, len(top))
	for category := range top {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	recommendations := make([]RankedFund, 0)
	for _, category := range categories {
		recommendations = append(recommendations, top[category]...)
	}
	return recommendations
}
