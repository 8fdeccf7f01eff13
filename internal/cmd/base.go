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

// Package cmd implements the rolesmith command line interface. Commands
// share one Session so that console mode can carry the working role,
// the selected subscription, and cached Azure clients across commands.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/mitchellh/cli"

	"github.com/rolesmith/rolesmith/internal/audit"
	"github.com/rolesmith/rolesmith/internal/azure"
	"github.com/rolesmith/rolesmith/internal/config"
	"github.com/rolesmith/rolesmith/internal/role"
	"github.com/rolesmith/rolesmith/internal/store"
	"github.com/rolesmith/rolesmith/internal/store/postgres"
)

// Session is the shared state behind every command.
type Session struct {
	Config  *config.Config
	Manager *role.Manager
	Files   *store.FileStore
	Audit   audit.Logger

	// SubscriptionID is the active subscription. use-subscription
	// swaps it, which also invalidates the cached ARM client.
	SubscriptionID string

	cred    azcore.TokenCredential
	client  *azure.Client
	subs    *azure.SubscriptionManager
	catalog *postgres.CatalogRepository
	db      *postgres.DB
}

// NewSession wires a session from configuration.
func NewSession(cfg *config.Config) *Session {
	return &Session{
		Config:         cfg,
		Manager:        role.NewManager(),
		Files:          store.NewFileStore(cfg.Roles.Dir),
		Audit:          audit.NewSlogLogger(),
		SubscriptionID: cfg.Azure.SubscriptionID,
	}
}

// Credential returns the cached Azure credential, building it on first use.
func (s *Session) Credential() (azcore.TokenCredential, error) {
	if s.cred != nil {
		return s.cred, nil
	}
	cred, err := azure.NewCredential()
	if err != nil {
		return nil, err
	}
	s.cred = cred
	return cred, nil
}

// AzureClient returns the cached ARM role definitions client.
func (s *Session) AzureClient() (*azure.Client, error) {
	if s.SubscriptionID == "" {
		return nil, fmt.Errorf("no subscription selected; set AZURE_SUBSCRIPTION_ID or run use-subscription")
	}
	if s.client != nil {
		return s.client, nil
	}
	cred, err := s.Credential()
	if err != nil {
		return nil, err
	}
	client, err := azure.NewClient(s.SubscriptionID, cred, s.Config.Azure.RequestsPerSecond, s.Config.Azure.Burst)
	if err != nil {
		return nil, err
	}
	s.client = client
	return client, nil
}

// Subscriptions returns the cached subscription manager.
func (s *Session) Subscriptions() (*azure.SubscriptionManager, error) {
	if s.subs != nil {
		return s.subs, nil
	}
	cred, err := s.Credential()
	if err != nil {
		return nil, err
	}
	subs, err := azure.NewSubscriptionManager(cred, s.Config.Azure.RequestsPerSecond, s.Config.Azure.Burst)
	if err != nil {
		return nil, err
	}
	s.subs = subs
	return subs, nil
}

// UseSubscription switches the active subscription and drops the
// cached ARM client so the next call targets the new scope.
func (s *Session) UseSubscription(id string) {
	if id == s.SubscriptionID {
		return
	}
	s.SubscriptionID = id
	s.client = nil
}

// Catalog returns the shared catalog repository, connecting on first use.
func (s *Session) Catalog(ctx context.Context) (*postgres.CatalogRepository, error) {
	if s.catalog != nil {
		return s.catalog, nil
	}
	if !s.Config.CatalogConfigured() {
		return nil, fmt.Errorf("catalog is not configured; set CATALOG_DB_HOST")
	}
	db, err := postgres.New(ctx, postgres.Config{
		Host:            s.Config.Catalog.Host,
		Port:            s.Config.Catalog.Port,
		User:            s.Config.Catalog.User,
		Password:        s.Config.Catalog.Password,
		Database:        s.Config.Catalog.Database,
		SSLMode:         s.Config.Catalog.SSLMode,
		MaxOpenConns:    s.Config.Catalog.MaxConns,
		MaxIdleConns:    1,
		ConnMaxLifetime: s.Config.Catalog.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to catalog: %w", err)
	}
	if err := db.Migrate(ctx, postgres.CatalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply catalog schema: %w", err)
	}
	s.db = db
	s.catalog = postgres.NewCatalogRepository(db)
	return s.catalog, nil
}

// Close releases session resources.
func (s *Session) Close() {
	if s.db != nil {
		s.db.Close()
		s.db = nil
		s.catalog = nil
	}
}

// Command is the embeddable base for all commands.
type Command struct {
	UI      cli.Ui
	Session *Session
	Context context.Context
}

func (c *Command) flagSet(name string) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)
	f.Usage = func() {}
	f.SetOutput(errWriter{c.UI})
	return f
}

type errWriter struct{ ui cli.Ui }

func (w errWriter) Write(p []byte) (int, error) {
	w.ui.Error(string(p))
	return len(p), nil
}

// MakeShutdownCh returns a channel that closes on SIGINT or SIGTERM.
func MakeShutdownCh() chan struct{} {
	resultCh := make(chan struct{})

	shutdownCh := make(chan os.Signal, 4)
	signal.Notify(shutdownCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-shutdownCh
		close(resultCh)
	}()
	return resultCh
}
