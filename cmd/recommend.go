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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/analyzer"
	"github.com/fundscope/fundscope/common"
	"github.com/fundscope/fundscope/database"
	"github.com/fundscope/fundscope/mfapi"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
	"github.com/fundscope/fundscope/report"
)

var (
	recommendMethod string
	recommendCSV    string
	recommendSave   bool
)

func init() {
	recommendCmd.Flags().StringVarP(&recommendMethod, "method", "m", "comprehensive", "Scoring method, one of: returns, comprehensive, both")
	recommendCmd.Flags().IntP("top-n", "n", 3, "Number of funds to recommend per category")
	if err := viper.BindPFlag("ranking.top_n", recommendCmd.Flags().Lookup("top-n")); err != nil {
		log.Panic().Err(err).Msg("could not bind ranking.top_n")
	}
	recommendCmd.Flags().StringVar(&recommendCSV, "csv", "", "Write recommendations to the named CSV file")
	recommendCmd.Flags().BoolVar(&recommendSave, "save", false, "Save recommendations to the database")

	rootCmd.AddCommand(recommendCmd)
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Rank funds per category and print the top picks",
	Long:  `Download the fund universe, compute metrics for each direct-plan fund, and print the highest ranked funds per category.`,
	Run: func(_ *cobra.Command, _ []string) {
		ctx := context.Background()

		common.SetupLogging()

		methods := make([]ranker.Method, 0, 2)
		switch recommendMethod {
		case "returns":
			methods = append(methods, ranker.MethodReturns)
		case "comprehensive":
			methods = append(methods, ranker.MethodComprehensive)
		case "both":
			methods = append(methods, ranker.MethodReturns, ranker.MethodComprehensive)
		default:
			log.Fatal().Str("Method", recommendMethod).Msg("method must be one of: returns, comprehensive, both")
		}

		cache, err := navcache.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open nav cache")
		}

		cfg := ranker.ConfigFromViper()
		svc := analyzer.New(mfapi.NewClient(), cache, cfg)

		funds, err := svc.Funds(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("could not load fund universe")
		}

		byCategory, err := svc.EnrichCategories(ctx, funds)
		if err != nil {
			log.Fatal().Err(err).Msg("could not enrich funds")
		}

		r := ranker.New(cfg)
		for _, method := range methods {
			top := r.SelectTopFunds(byCategory, cfg.TopN, method)
			recs := r.GenerateRecommendations(top)

			report.WriteTable(os.Stdout, recs)

			if recommendCSV != "" {
				name := recommendCSV
				if len(methods) > 1 {
					name = string(method) + "_" + name
				}
				if err := report.ExportCSV(ctx, name, recs); err != nil {
					log.Fatal().Err(err).Str("FileName", name).Msg("could not write csv")
				}
				log.Info().Str("FileName", name).Msg("wrote recommendations")
			}

			if recommendSave {
				if !database.Configured() {
					log.Fatal().Msg("database.url is not set; cannot save recommendations")
				}
				if err := database.Connect(ctx); err != nil {
					log.Fatal().Err(err).Msg("database connection failed")
				}
				batchID, err := database.SaveRecommendations(ctx, recs)
				if err != nil {
					log.Fatal().Err(err).Msg("could not save recommendations")
				}
				log.Info().Str("BatchID", batchID.String()).Str("Method", string(method)).Msg("saved recommendations")
			}
		}
	},
}
