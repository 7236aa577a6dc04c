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
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/common"
)

var Profile bool
var Trace bool

func bindEnvFlag(key, env, flag, usage, def string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Panic().Err(err).Str("Key", key).Msg("could not bind environment variable")
	}
	rootCmd.PersistentFlags().String(flag, def, usage)
	if err := viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		log.Panic().Err(err).Str("Key", key).Msg("could not bind flag")
	}
}

func init() {
	// Database
	bindEnvFlag("database.url", "DATABASE_URL", "database-url", "PostgreSQL connection string", "")

	// MFAPI
	bindEnvFlag("mfapi.base_url", "MFAPI_BASE_URL", "mfapi-url", "Mutual fund NAV API endpoint", "")

	// Cache
	bindEnvFlag("cache.dir", "FS_CACHE_DIR", "cache-dir", "Directory for the durable NAV cache", "")
	bindEnvFlag("cache.redis_url", "REDIS_URL", "redis-url", "Redis server for the shared cache tier, if blank don't use Redis", "")

	// Logging configuration
	bindEnvFlag("log.level", "FS_LOG_LEVEL", "log-level", "Logging level", "warning")
	bindEnvFlag("log.output", "FS_LOG_OUTPUT", "log-output", "Write logs to specified output one of: file path, `stdout`, or `stderr`", "stdout")

	if err := viper.BindEnv("log.report_caller", "FS_LOG_REPORT_CALLER"); err != nil {
		log.Panic().Err(err).Msg("could not bind log.report_caller")
	}
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	if err := viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller")); err != nil {
		log.Panic().Err(err).Msg("could not bind log.report_caller")
	}

	rootCmd.PersistentFlags().BoolVar(&Profile, "cpu-profile", false, "Run pprof and save in profile.out")
	rootCmd.PersistentFlags().BoolVar(&Trace, "trace", false, "Trace program execution and save in trace.out")
}

var rootCmd = &cobra.Command{
	Use:     "fundscope",
	Version: common.CurrentVersion.String(),
	Short:   "Fundscope ranks mutual funds by risk-adjusted performance",
	Long:    `Fundscope downloads NAV histories for Indian mutual funds, computes return, risk, and consistency metrics, and recommends the top funds per category.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
