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

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/fundscope/fundscope/cmd"
)

func configureViper() {
	// read config file
	viper.SetConfigName("fundscope")
	viper.SetConfigType("toml")
	viper.AddConfigPath("/etc/fundscope/")
	viper.AddConfigPath("$HOME/.config/fundscope")
	viper.AddConfigPath(".")

	// defaults cover the no-config case; a malformed file is still fatal
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}
}

func main() {
	configureViper()
	cmd.Execute()
}
