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
	"os"
	"os/signal"
	"runtime/pprof"
	"runtime/trace"

	"github.com/go-co-op/gocron"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/analyzer"
	"github.com/fundscope/fundscope/common"
	"github.com/fundscope/fundscope/handler"
	"github.com/fundscope/fundscope/mfapi"
	"github.com/fundscope/fundscope/navcache"
	"github.com/fundscope/fundscope/ranker"
	"github.com/fundscope/fundscope/router"
)

func init() {
	if err := viper.BindEnv("server.port", "PORT"); err != nil {
		log.Panic().Err(err).Msg("could not bind server.port")
	}
	serveCmd.Flags().IntP("port", "p", 3000, "Port to run application server on")
	if err := viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port")); err != nil {
		log.Panic().Err(err).Msg("could not bind server.port")
	}

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fundscope server",
	Long:  `Run HTTP server that serves fund metrics and recommendations`,
	Run: func(_ *cobra.Command, _ []string) {
		if Profile {
			f, err := os.Create("profile.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create profile output file")
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				log.Fatal().Err(err).Msg("could not start cpu profile")
			}
			defer pprof.StopCPUProfile()
		}

		if Trace {
			f, err := os.Create("trace.out")
			if err != nil {
				log.Fatal().Err(err).Msg("could not create trace output file")
			}
			defer func() {
				if err := f.Close(); err != nil {
					log.Fatal().Err(err).Msg("could not close trace file")
				}
			}()

			if err := trace.Start(f); err != nil {
				log.Fatal().Err(err).Msg("could not start trace")
			}
			defer trace.Stop()
		}

		common.SetupLogging()
		log.Info().Msg("initialized logging")

		cache, err := navcache.NewStore()
		if err != nil {
			log.Fatal().Err(err).Msg("could not open nav cache")
		}

		cfg := ranker.ConfigFromViper()
		svc := analyzer.New(mfapi.NewClient(), cache, cfg)
		handler.Init(svc, cache, cfg)

		// Create new Fiber instance
		app := fiber.New()

		// shutdown cleanly on interrupt
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt)
		go func() {
			sig := <-c // block until signal is read
			fmt.Printf("Received signal: '%s'; shutting down...\n", sig.String())
			if err := app.Shutdown(); err != nil {
				log.Fatal().Err(err).Msg("server shutdown failed")
			}
		}()

		// Setup routes
		router.SetupRoutes(app)

		// refresh the fund universe daily so the first recommendation
		// request after market close doesn't pay the download
		scheduler := gocron.NewScheduler(common.GetTimezone())
		if _, err := scheduler.Every(1).Day().At("22:00").Do(func() {
			ctx := context.Background()
			funds, err := svc.Funds(ctx)
			if err != nil {
				log.Error().Err(err).Msg("scheduled fund universe refresh failed")
				return
			}
			if _, err := svc.EnrichCategories(ctx, funds); err != nil {
				log.Error().Err(err).Msg("scheduled metric refresh failed")
			}
		}); err != nil {
			log.Fatal().Err(err).Msg("could not schedule nav refresh")
		}
		scheduler.StartAsync()

		// Start server
		if err := app.Listen(":" + viper.GetString("server.port")); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
	},
}
