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

// Package report renders ranked-fund recommendations for humans (ASCII
// table) and downstream tooling (CSV).
package report

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"

	"github.com/olekukonko/tablewriter"

	"github.com/fundscope/fundscope/ranker"
)

// Columns is the stable field set emitted for persistence collaborators.
var Columns = []string{
	"category", "scheme_code", "fund_name", "rank", "score",
	"returns_1y", "returns_3y", "returns_5y",
	"sharpe_ratio", "standard_deviation", "max_drawdown", "risk_score",
	"method",
}

func fmtReturn(r *float64) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", *r)
}

func returnOrZero(r *float64) float64 {
	if r == nil {
		return 0.0
	}
	return *r
}

// WriteTable renders recommendations as an ASCII table.
func WriteTable(w io.Writer, recommendations []ranker.RankedFund) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Category", "Rank", "Fund", "Score", "1Y%", "3Y%", "5Y%", "Sharpe", "Risk"})
	table.SetBorder(false)

	for _, rec := range recommendations {
		name := rec.FundName
		if len(name) > 48 {
			name = name[:45] + "..."
		}
		table.Append([]string{
			rec.Category,
			fmt.Sprintf("%d", rec.Rank),
			name,
			fmt.Sprintf("%.2f", rec.Score),
			fmtReturn(rec.Returns1Y),
			fmtReturn(rec.Returns3Y),
			fmtReturn(rec.Returns5Y),
			fmt.Sprintf("%.2f", rec.SharpeRatio),
			fmt.Sprintf("%.1f", rec.RiskScore),
		})
	}
	table.Render()
}

// ToDataFrame converts recommendations into a dataframe with the stable
// column set.
func ToDataFrame(recommendations []ranker.RankedFund) *dataframe.DataFrame {
	n := len(recommendations)

	categories := make([]interface{}, n)
	schemeCodes := make([]interface{}, n)
	fundNames := make([]interface{}, n)
	ranks := make([]interface{}, n)
	scores := make([]interface{}, n)
	returns1y := make([]interface{}, n)
	returns3y := make([]interface{}, n)
	returns5y := make([]interface{}, n)
	sharpes := make([]interface{}, n)
	stdDevs := make([]interface{}, n)
	drawdowns := make([]interface{}, n)
	riskScores := make([]interface{}, n)
	methods := make([]interface{}, n)

	for i, rec := range recommendations {
		categories[i] = rec.Category
		schemeCodes[i] = int64(rec.SchemeCode)
		fundNames[i] = rec.FundName
		ranks[i] = int64(rec.Rank)
		scores[i] = rec.Score
		returns1y[i] = returnOrZero(rec.Returns1Y)
		returns3y[i] = returnOrZero(rec.Returns3Y)
		returns5y[i] = returnOrZero(rec.Returns5Y)
		sharpes[i] = rec.SharpeRatio
		stdDevs[i] = rec.StandardDeviation
		drawdowns[i] = rec.MaxDrawdown
		riskScores[i] = rec.RiskScore
		methods[i] = string(rec.Method)
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesString(Columns[0], nil, categories...),
		dataframe.NewSeriesInt64(Columns[1], nil, schemeCodes...),
		dataframe.NewSeriesString(Columns[2], nil, fundNames...),
		dataframe.NewSeriesInt64(Columns[3], nil, ranks...),
		dataframe.NewSeriesFloat64(Columns[4], nil, scores...),
		dataframe.NewSeriesFloat64(Columns[5], nil, returns1y...),
		dataframe.NewSeriesFloat64(Columns[6], nil, returns3y...),
		dataframe.NewSeriesFloat64(Columns[7], nil, returns5y...),
		dataframe.NewSeriesFloat64(Columns[8], nil, sharpes...),
		dataframe.NewSeriesFloat64(Columns[9], nil, stdDevs...),
		dataframe.NewSeriesFloat64(Columns[10], nil, drawdowns...),
		dataframe.NewSeriesFloat64(Columns[11], nil, riskScores...),
		dataframe.NewSeriesString(Columns[12], nil, methods...),
	)
}

// ExportCSV writes recommendations to a CSV file, creating parent
// directories as needed.
func ExportCSV(ctx context.Context, path string, recommendations []ranker.RankedFund) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}

	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	defer fh.Close()

	return exports.ExportToCSV(ctx, fh, ToDataFrame(recommendations))
}
