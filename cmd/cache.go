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
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fundscope/fundscope/common"
	"github.com/fundscope/fundscope/navcache"
)

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	rootCmd.AddCommand(cacheCmd)
}

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the durable NAV cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache statistics",
	Run: func(_ *cobra.Command, _ []string) {
		common.SetupLogging()

		cache, err := navcache.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open nav cache")
		}

		stats := cache.Stats()
		fmt.Printf("Cache directory:  %s\n", stats.Dir)
		fmt.Printf("Fund index:       cached=%t age=%d days\n", stats.IndexCached, stats.IndexAgeDays)
		fmt.Printf("NAV histories:    %d\n", stats.NavEntryCount)
	},
}

var cachePurgeCmd = &cobra.Command{
	Use:   "purge [all|index|nav]",
	Short: "Delete cached entries for the given scope",
	Args:  cobra.MaximumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		common.SetupLogging()

		scope := navcache.ScopeAll
		if len(args) > 0 {
			scope = navcache.Scope(args[0])
		}

		cache, err := navcache.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open nav cache")
		}

		if err := cache.Clear(scope); err != nil {
			log.Fatal().Err(err).Str("Scope", string(scope)).Msg("could not purge cache")
		}
		log.Info().Str("Scope", string(scope)).Msg("cache purged")
	},
}
