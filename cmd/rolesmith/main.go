// Copyright 2026 The Rolesmith Authors
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
	"os"

	"github.com/joho/godotenv"

	"github.com/rolesmith/rolesmith/internal/cmd"
	"github.com/rolesmith/rolesmith/internal/config"
	"github.com/rolesmith/rolesmith/internal/observability/logger"
)

func main() {
	// Optional .env for subscription and catalog settings.
	_ = godotenv.Load()

	// Logging config is read here so the logger exists before the
	// CLI parses anything.
	cfg, err := config.Load()
	if err == nil {
		logger.InitLogger(logger.Config{
			Level:       cfg.Observability.LogLevel,
			Format:      cfg.Observability.LogFormat,
			ServiceName: cfg.Observability.ServiceName,
		})
	}

	os.Exit(cmd.Run(os.Args[1:]))
}
