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

package fund

import "strings"

// CategoryOther is assigned when no keyword matches.
const CategoryOther = "other"

type categoryKeywords struct {
	category string
	keywords []string
}

// Classification is keyword based; order matters because scheme names like
// "Nifty Smallcap 250 Index Fund" match several categories.
var categoryLexicon = []categoryKeywords{
	{"smallcap", []string{"small cap", "smallcap", "small-cap"}},
	{"midcap", []string{"mid cap", "midcap", "mid-cap"}},
	{"largecap", []string{"large cap", "largecap", "large-cap"}},
	{"index_funds", []string{"index", "nifty", "sensex", "etf", "bse"}},
	{"elss", []string{"elss", "tax saving", "tax saver"}},
	{"hybrid", []string{"hybrid", "balanced", "equity savings", "arbitrage"}},
	{"debt", []string{"debt", "liquid", "gilt", "bond", "income", "overnight"}},
	{"sectoral", []string{"sector", "banking", "pharma", "technology", "infrastructure",
		"consumption", "energy", "healthcare", "financial"}},
}

// Categories returns the known category tags in classification order.
func Categories() []string {
	cats := make([]string, 0, len(categoryLexicon))
	for _, entry := range categoryLexicon {
		cats = append(cats, entry.category)
	}
	return cats
}

// ClassifyCategory assigns a category tag based on the scheme name.
func ClassifyCategory(schemeName string) string {
	name := strings.ToLower(schemeName)
	for _, entry := range categoryLexicon {
		for _, kw := range entry.keywords {
			if strings.Contains(name, kw) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// IsDirectPlan reports whether a scheme is a direct growth plan. Only direct
// plans are comparable across fund houses; IDCW/bonus/dividend variants have
// payout-distorted NAV histories and are excluded outright.
func IsDirectPlan(schemeName string) bool {
	name := strings.ToLower(schemeName)
	if !strings.Contains(name, "direct") {
		return false
	}
	for _, excluded := range []string{"idcw", "bonus", "periodic", "dividend"} {
		if strings.Contains(name, excluded) {
			return false
		}
	}
	return true
}

// Categorize buckets funds by classified category, keeping only direct plans.
// Categories with no direct-plan funds map to an empty slice.
func Categorize(funds []Fund) map[string][]Fund {
	buckets := make(map[string][]Fund, len(categoryLexicon))
	for _, entry := range categoryLexicon {
		buckets[entry.category] = []Fund{}
	}

	for _, f := range funds {
		if !IsDirectPlan(f.SchemeName) {
			continue
		}
		cat := ClassifyCategory(f.SchemeName)
		if cat == CategoryOther {
			continue
		}
		f.Category = cat
		buckets[cat] = append(buckets[cat], f)
	}
	return buckets
}
