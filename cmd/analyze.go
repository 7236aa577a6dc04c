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

package cmd

import (
	"context"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fundscope/fundscope/analyzer"
	"github.com/fundscope/fundscope/common"
	"github.com/fundscope/fundscope/fund"
	"github.com/fundscope/fundscope/mfapi"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
)

func init() {
	rootCmd.AddCommand(analyzeCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <scheme code>",
	Short: "Calculate the full metric set for a single fund (mostly useful for debugging)",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ctx := context.Background()

		common.SetupLogging()

		schemeCode, err := strconv.Atoi(args[0])
		if err != nil {
			log.Fatal().Str("Arg", args[0]).Msg("scheme code must be an integer")
		}

		cache, err := navcache.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open nav cache")
		}

		svc := analyzer.New(mfapi.NewClient(), cache, ranker.ConfigFromViper())

		series, err := svc.NavHistory(ctx, schemeCode)
		if err != nil {
			log.Fatal().Err(err).Int("SchemeCode", schemeCode).Msg("could not load nav history")
		}
		if len(series) == 0 {
			log.Fatal().Int("SchemeCode", schemeCode).Msg("no nav history available")
		}

		f := &fund.Fund{SchemeCode: schemeCode}
		if funds, err := svc.Funds(ctx); err == nil {
			for idx := range funds {
				if funds[idx].SchemeCode == schemeCode {
					*f = funds[idx]
					f.Category = fund.ClassifyCategory(f.SchemeName)
					break
				}
			}
		}

		m := svc.AnalyzeFund(f, series)
		out, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("could not marshal metrics")
		}
		fmt.Println(string(out))
	},
}
