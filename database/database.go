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

// Package database persists recommendation runs to PostgreSQL. It is an
// optional collaborator: when no database.url is configured, callers skip it.
package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var pool *pgxpool.Pool

// ErrNotConnected is returned when a query runs before Connect.
var ErrNotConnected = errors.New("database not connected")

// Configured reports whether a database URL is present in the configuration.
func Configured() bool {
	return viper.GetString("database.url") != ""
}

// Connect establishes the connection pool.
func Connect(ctx context.Context) error {
	url := viper.GetString("database.url")
	if url == "" {
		return errors.New("database.url is not set")
	}

	var err error
	pool, err = pgxpool.Connect(ctx, url)
	if err != nil {
		log.Error().Err(err).Msg("could not connect to database")
		return err
	}
	return nil
}

// Close tears down the connection pool.
func Close() {
	if pool != nil {
		pool.Close()
		pool = nil
	}
}
