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

package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgsql"
	"github.com/rs/zerolog/log"

	"github.com/fundscope/fundscope/ranker"
)

const createRecommendationsSQL = `
CREATE TABLE IF NOT EXISTS recommendations (
	batch_id UUID NOT NULL,
	created TIMESTAMP WITH TIME ZONE NOT NULL,
	category TEXT NOT NULL,
	scheme_code INTEGER NOT NULL,
	fund_name TEXT NOT NULL,
	rank INTEGER NOT NULL,
	score DOUBLE PRECISION NOT NULL,
	returns_1y DOUBLE PRECISION,
	returns_3y DOUBLE PRECISION,
	returns_5y DOUBLE PRECISION,
	sharpe_ratio DOUBLE PRECISION NOT NULL,
	standard_deviation DOUBLE PRECISION NOT NULL,
	max_drawdown DOUBLE PRECISION NOT NULL,
	risk_score DOUBLE PRECISION NOT NULL,
	method TEXT NOT NULL,
	PRIMARY KEY (batch_id, category, scheme_code)
)`

const insertRecommendationSQL = `
INSERT INTO recommendations (
	batch_id, created, category, scheme_code, fund_name, rank, score,
	returns_1y, returns_3y, returns_5y,
	sharpe_ratio, standard_deviation, max_drawdown, risk_score, method
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// SaveRecommendations writes a recommendation run as one batch and returns
// the batch id.
func SaveRecommendations(ctx context.Context, recommendations []ranker.RankedFund) (uuid.UUID, error) {
	batchID := uuid.New()
	if pool == nil {
		return batchID, ErrNotConnected
	}

	trx, err := pool.Begin(ctx)
	if err != nil {
		return batchID, err
	}

	if _, err := trx.Exec(ctx, createRecommendationsSQL); err != nil {
		if rbErr := trx.Rollback(ctx); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
		return batchID, err
	}

	created := time.Now()
	for _, rec := range recommendations {
		_, err := trx.Exec(ctx, insertRecommendationSQL,
			batchID, created, rec.Category, rec.SchemeCode, rec.FundName,
			rec.Rank, rec.Score,
			rec.Returns1Y, rec.Returns3Y, rec.Returns5Y,
			rec.SharpeRatio, rec.StandardDeviation, rec.MaxDrawdown,
			rec.RiskScore, string(rec.Method))
		if err != nil {
			if rbErr := trx.Rollback(ctx); rbErr != nil {
				log.Warn().Err(rbErr).Msg("rollback failed")
			}
			return batchID, err
		}
	}

	if err := trx.Commit(ctx); err != nil {
		return batchID, err
	}

	log.Info().Str("BatchID", batchID.String()).Int("Rows", len(recommendations)).
		Msg("saved recommendations")
	return batchID, nil
}

// RecommendationRow is a persisted recommendation record.
type RecommendationRow struct {
	BatchID    uuid.UUID
	Created    time.Time
	Category   string
	SchemeCode int
	FundName   string
	Rank       int
	Score      float64
	Method     string
}

// LoadRecommendations reads back a batch, optionally filtered by category,
// ordered by category then rank.
func LoadRecommendations(ctx context.Context, batchID uuid.UUID, category string) ([]RecommendationRow, error) {
	if pool == nil {
		return nil, ErrNotConnected
	}

	stmt := &pgsql.SelectStatement{}
	stmt.Select("batch_id, created, category, scheme_code, fund_name, rank, score, method")
	stmt.From("recommendations")
	stmt.Where("batch_id = ?", batchID.String())
	if category != "" {
		stmt.Where("category = ?", category)
	}
	stmt.Order("category, rank")

	sql, args := pgsql.Build(stmt)
	rows, err := pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecommendationRow
	for rows.Next() {
		var row RecommendationRow
		if err := rows.Scan(&row.BatchID, &row.Created, &row.Category, &row.SchemeCode,
			&row.FundName, &row.Rank, &row.Score, &row.Method); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
