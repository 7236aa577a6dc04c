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

// Package navcache persists fetched NAV histories and the all-funds index so
// repeated runs do not hammer the upstream API. The durable tier is the
// filesystem; an in-process LRU fronts it, and an optional redis tier sits
// between the two. Entries older than the freshness window read as absent.
//
// Read failures of any kind degrade to a cache miss (the caller refetches);
// write failures propagate because silent data loss is unacceptable.
package navcache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/common"
	"github.com/fundscope/fundscope/fund"
)

// Scope selects which entries Clear removes.
type Scope string

const (
	ScopeAll   Scope = "all"
	ScopeIndex Scope = "index"
	ScopeNav   Scope = "nav"
)

// DefaultFreshness is the window after which cached data is considered stale.
const DefaultFreshness = 30 * 24 * time.Hour

const (
	indexKey     = "index:all_funds"
	navSubdir    = "nav"
	indexSubdir  = "index"
	payloadExt   = ".lz4"
	metadataExt  = ".json"
	redisKeyBase = "fundscope:"
)

type metadata struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
	Rows      int       `json:"rows"`
}

type memoryEntry struct {
	payload []byte // lz4-compressed JSON
	stored  time.Time
}

// Store is the tiered NAV cache. Safe for concurrent readers; writes to the
// same key serialize on the filesystem with last-writer-wins semantics.
type Store struct {
	dir       string
	freshness time.Duration
	local     *lru.Cache
	rdb       *redis.Client
}

// NewStore builds a store from the loaded configuration (cache.dir,
// cache.freshness_days, cache.local_size, cache.redis, cache.redis_url).
func NewStore() (*Store, error) {
	dir := viper.GetString("cache.dir")
	if dir == "" {
		dir = "data/cache"
	}

	freshness := DefaultFreshness
	if days := viper.GetInt("cache.freshness_days"); days > 0 {
		freshness = time.Duration(days) * 24 * time.Hour
	}

	localSize := viper.GetInt("cache.local_size")
	if localSize < 1 {
		localSize = 256
	}

	store, err := NewStoreAt(dir, freshness, localSize)
	if err != nil {
		return nil, err
	}

	if viper.GetBool("cache.redis") {
		opt, err := redis.ParseURL(viper.GetString("cache.redis_url"))
		if err != nil {
			return nil, fmt.Errorf("could not parse redis URL: %w", err)
		}
		store.rdb = redis.NewClient(opt)
	}

	return store, nil
}

// NewStoreAt builds a file-backed store rooted at dir with an LRU front.
func NewStoreAt(dir string, freshness time.Duration, localSize int) (*Store, error) {
	for _, sub := range []string{navSubdir, indexSubdir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return nil, err
		}
	}

	local, err := lru.New(localSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		dir:       dir,
		freshness: freshness,
		local:     local,
	}, nil
}

func navKey(schemeCode int) string {
	return fmt.Sprintf("nav:%d", schemeCode)
}

func (s *Store) payloadPath(key string, scope Scope) string {
	sub := navSubdir
	if scope == ScopeIndex {
		sub = indexSubdir
	}
	return filepath.Join(s.dir, sub, common.HashKey(key)+payloadExt)
}

func (s *Store) metadataPath(key string, scope Scope) string {
	sub := navSubdir
	if scope == ScopeIndex {
		sub = indexSubdir
	}
	return filepath.Join(s.dir, sub, common.HashKey(key)+metadataExt)
}

func (s *Store) fresh(ts time.Time) bool {
	return time.Since(ts) < s.freshness
}

// GetNav returns the cached series for a scheme, or absent if no fresh entry
// exists. The returned series is a copy; callers may mutate it freely.
func (s *Store) GetNav(schemeCode int) (fund.NavSeries, bool) {
	payload, ok := s.get(navKey(schemeCode), ScopeNav)
	if !ok {
		return nil, false
	}

	var series fund.NavSeries
	if err := json.Unmarshal(payload, &series); err != nil {
		log.Warn().Err(err).Int("SchemeCode", schemeCode).Msg("corrupt cached nav series; treating as miss")
		return nil, false
	}
	return series, true
}

// PutNav stores a series for a scheme, overwriting any prior entry and
// resetting its timestamp.
func (s *Store) PutNav(schemeCode int, series fund.NavSeries) error {
	payload, err := json.Marshal(series)
	if err != nil {
		return err
	}
	return s.put(navKey(schemeCode), ScopeNav, payload, len(series))
}

// GetIndex returns the cached all-funds snapshot, or absent when stale.
func (s *Store) GetIndex() ([]fund.Fund, bool) {
	payload, ok := s.get(indexKey, ScopeIndex)
	if !ok {
		return nil, false
	}

	var funds []fund.Fund
	if err := json.Unmarshal(payload, &funds); err != nil {
		log.Warn().Err(err).Msg("corrupt cached fund index; treating as miss")
		return nil, false
	}
	return funds, true
}

// PutIndex stores the all-funds snapshot.
func (s *Store) PutIndex(funds []fund.Fund) error {
	payload, err := json.Marshal(funds)
	if err != nil {
		return err
	}
	return s.put(indexKey, ScopeIndex, payload, len(funds))
}

func (s *Store) get(key string, scope Scope) ([]byte, bool) {
	// tier 1: in-process LRU
	if v, ok := s.local.Get(key); ok {
		entry := v.(memoryEntry)
		if s.fresh(entry.stored) {
			if raw, err := common.Decompress(entry.payload); err == nil {
				return raw, true
			}
		}
	}

	// tier 2: redis (TTL-bounded, so a hit is always fresh)
	if s.rdb != nil {
		if compressed, err := s.rdb.Get(context.Background(), redisKeyBase+key).Bytes(); err == nil {
			if raw, err := common.Decompress(compressed); err == nil {
				return raw, true
			}
		}
	}

	// tier 3: durable file store
	metaRaw, err := os.ReadFile(s.metadataPath(key, scope))
	if err != nil {
		return nil, false
	}

	var meta metadata
	if err := json.Unmarshal(metaRaw, &meta); err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("unreadable cache metadata; treating as miss")
		return nil, false
	}

	// stale entries read as absent but stay on disk; a subsequent put
	// overwrites them
	if !s.fresh(meta.Timestamp) {
		return nil, false
	}

	compressed, err := os.ReadFile(s.payloadPath(key, scope))
	if err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("unreadable cache payload; treating as miss")
		return nil, false
	}

	raw, err := common.Decompress(compressed)
	if err != nil {
		log.Warn().Err(err).Str("Key", key).Msg("corrupt cache payload; treating as miss")
		return nil, false
	}

	s.local.Add(key, memoryEntry{payload: compressed, stored: meta.Timestamp})
	return raw, true
}

func (s *Store) put(key string, scope Scope, payload []byte, rows int) error {
	compressed, err := common.Compress(payload)
	if err != nil {
		return err
	}

	now := time.Now()
	metaRaw, err := json.Marshal(metadata{Key: key, Timestamp: now, Rows: rows})
	if err != nil {
		return err
	}

	if err := os.WriteFile(s.payloadPath(key, scope), compressed, 0640); err != nil {
		return fmt.Errorf("could not write cache payload: %w", err)
	}
	if err := os.WriteFile(s.metadataPath(key, scope), metaRaw, 0640); err != nil {
		return fmt.Errorf("could not write cache metadata: %w", err)
	}

	s.local.Add(key, memoryEntry{payload: compressed, stored: now})

	if s.rdb != nil {
		if err := s.rdb.Set(context.Background(), redisKeyBase+key, compressed, s.freshness).Err(); err != nil {
			// redis is a read accelerator, not the durable tier
			log.Warn().Err(err).Str("Key", key).Msg("could not write cache entry to redis")
		}
	}
	return nil
}

// Clear removes cached entries in the given scope. The index and per-fund
// histories invalidate independently.
func (s *Store) Clear(scope Scope) error {
	s.local.Purge()

	subdirs := []string{}
	redisPatterns := []string{}
	switch scope {
	case ScopeAll:
		subdirs = append(subdirs, navSubdir, indexSubdir)
		redisPatterns = append(redisPatterns, redisKeyBase+"*")
	case ScopeIndex:
		subdirs = append(subdirs, indexSubdir)
		redisPatterns = append(redisPatterns, redisKeyBase+"index:*")
	case ScopeNav:
		subdirs = append(subdirs, navSubdir)
		redisPatterns = append(redisPatterns, redisKeyBase+"nav:*")
	default:
		return fmt.Errorf("unrecognized cache scope: %s", scope)
	}

	for _, sub := range subdirs {
		dir := filepath.Join(s.dir, sub)
		if err := os.RemoveAll(dir); err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			return err
		}
	}

	if s.rdb != nil {
		ctx := context.Background()
		for _, pattern := range redisPatterns {
			keys, err := s.rdb.Keys(ctx, pattern).Result()
			if err != nil {
				log.Warn().Err(err).Str("Pattern", pattern).Msg("could not list redis cache keys")
				continue
			}
			if len(keys) > 0 {
				if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
					log.Warn().Err(err).Msg("could not delete redis cache keys")
				}
			}
		}
	}
	return nil
}

// Stats summarize the durable tier.
type Stats struct {
	Dir           string `json:"dir"`
	IndexCached   bool   `json:"indexCached"`
	IndexAgeDays  int    `json:"indexAgeDays"`
	NavEntryCount int    `json:"navEntryCount"`
}

// Stats inspects the on-disk cache state.
func (s *Store) Stats() Stats {
	stats := Stats{Dir: s.dir, IndexAgeDays: -1}

	if metaRaw, err := os.ReadFile(s.metadataPath(indexKey, ScopeIndex)); err == nil {
		var meta metadata
		if err := json.Unmarshal(metaRaw, &meta); err == nil {
			stats.IndexCached = s.fresh(meta.Timestamp)
			stats.IndexAgeDays = int(time.Since(meta.Timestamp).Hours() / 24)
		}
	}

	entries, err := os.ReadDir(filepath.Join(s.dir, navSubdir))
	if err == nil {
		for _, entry := range entries {
			if filepath.Ext(entry.Name()) == payloadExt {
				stats.NavEntryCount++
			}
		}
	}
	return stats
}
