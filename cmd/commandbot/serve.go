/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package main

import (
	"context"
	"fmt"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/go-logr/logr"
	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mikelane/commandbot/internal/bot"
	"github.com/mikelane/commandbot/internal/cleanup"
	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/config"
	"github.com/mikelane/commandbot/internal/dummyjson"
	"github.com/mikelane/commandbot/internal/git"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/interceptors"
	"github.com/mikelane/commandbot/internal/logging"
	"github.com/mikelane/commandbot/internal/optic"
	"github.com/mikelane/commandbot/internal/process"
	"github.com/mikelane/commandbot/internal/webhook"
	"github.com/mikelane/commandbot/internal/workspace"
)

func serve(ctx context.Context, envFile string) error {
	cfg, err := config.Load(ctx, envFile)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	ctx = logr.NewContext(ctx, logger)

	tokens, err := ghinstallation.New(cleanhttp.DefaultPooledTransport(), cfg.AppID, cfg.InstallationID, []byte(cfg.PrivateKey))
	if err != nil {
		return fmt.Errorf("creating installation transport: %w", err)
	}

	runner := process.NewShell()
	identity := git.NewIdentityManager(runner, cfg.Identity())
	scope := workspace.NewScope(cfg.WorkspaceRoot)

	registry, err := interceptors.Default(interceptors.Dependencies{
		Optic:      optic.NewChecker(runner, cfg.OpticBinary),
		Workspaces: scope,
		SpecPath:   cfg.SpecPath,
		Todos:      dummyjson.NewClient(cfg.DummyJSONURL, nil),
	})
	if err != nil {
		return fmt.Errorf("building interceptor registry: %w", err)
	}

	handler := bot.New(
		tokens,
		github.NewClient,
		identity,
		git.NewClient(runner, identity),
		command.NewDispatcher(registry, cfg.AppName),
	)

	server := webhook.NewServer(webhook.Options{
		Addr:          cfg.Addr,
		Port:          cfg.Port,
		Path:          cfg.WebhookPath,
		Secret:        cfg.WebhookSecret,
		RatePerSecond: cfg.RateLimitPerSecond,
	}, handler)

	root, err := scope.Root()
	if err != nil {
		return fmt.Errorf("resolving workspace root: %w", err)
	}
	sweeper := cleanup.NewScheduler(root, interceptors.WorkspacePrefixes(), cfg.WorkspaceMaxAge, cfg.WorkspaceSweepInterval).
		SkipActive(scope)

	logger.Info("Starting commandbot",
		"app", cfg.AppName,
		"interceptors", registry.Names(),
		"workspaceRoot", root,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Start(gctx) })
	g.Go(func() error { return sweeper.Start(gctx) })
	return g.Wait()
}
