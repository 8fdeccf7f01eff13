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

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/rolesmith/rolesmith/internal/observability/logger"
	"github.com/rolesmith/rolesmith/internal/observability/metrics"
	"github.com/rolesmith/rolesmith/internal/observability/tracing"
	transportHTTP "github.com/rolesmith/rolesmith/internal/transport/http"
)

// ServeCommand runs the role workspace as an HTTP service.
type ServeCommand struct {
	*Command
	ShutdownCh chan struct{}
}

func (c *ServeCommand) Synopsis() string {
	return "Run the role workspace as an HTTP service"
}

func (c *ServeCommand) Help() string {
	return strings.TrimSpace(`
Usage: rolesmith serve [options]

  Exposes the role workspace over a JSON API so tooling can drive
  create/merge/remove/save without the interactive CLI. The service
  holds one working role, shared across requests.

Options:

  -host  Listen host (default from SERVER_HOST).
  -port  Listen port (default from SERVER_PORT).
`)
}

func (c *ServeCommand) Run(args []string) int {
	f := c.flagSet("serve")
	host := f.String("host", c.Session.Config.Server.Host, "listen host")
	port := f.String("port", c.Session.Config.Server.Port, "listen port")
	if err := f.Parse(args); err != nil {
		return 1
	}

	cfg := c.Session.Config
	ctx := c.Context

	tracer, err := tracing.New(ctx, tracing.Config{
		Enabled:        cfg.Observability.OTELEnabled,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		SamplingRate:   1.0,
	})
	if err != nil {
		slog.Error("failed to initialize tracer", logger.Error(err))
	} else {
		defer tracer.Shutdown(context.Background())
	}

	var roleMetrics *metrics.RoleMetrics
	meter, err := metrics.New(ctx, metrics.Config{
		Enabled: cfg.Observability.OTELEnabled,
	}, cfg.Observability.ServiceName)
	if err != nil {
		slog.Error("failed to initialize meter", logger.Error(err))
	} else if roleMetrics, err = metrics.NewRoleMetrics(meter); err != nil {
		slog.Error("failed to create role metrics", logger.Error(err))
	}

	rateLimiter := transportHTTP.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	handler := transportHTTP.NewHandler(c.Session.Manager, c.Session.Files, c.Session.Audit, roleMetrics)
	router := transportHTTP.NewRouter(handler, rateLimiter)

	addr := fmt.Sprintf("%s:%s", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting http server", logger.Component("server"), logger.Operation("listen"))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	c.UI.Output("Listening on " + addr)

	select {
	case err := <-errCh:
		errorf(c.UI, "server error: %s", err)
		return 1
	case <-c.ShutdownCh:
	case <-ctx.Done():
	}

	c.UI.Output("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		errorf(c.UI, "server shutdown error: %s", err)
		return 1
	}
	return 0
}
