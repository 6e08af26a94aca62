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

package bot

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/github"
)

// TokenSource issues installation access tokens.
// *ghinstallation.Transport satisfies it.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// IdentityConfigurer installs the git identity and credential for a token.
type IdentityConfigurer interface {
	Configure(ctx context.Context, token string) error
}

// ClientFactory builds a repository API client authenticated with token.
type ClientFactory func(token string) (github.Client, error)

// Dispatcher runs the registered interceptors for an event.
type Dispatcher interface {
	Ignore(event *command.Event) (string, bool)
	Dispatch(ctx context.Context, event *command.Event, gh github.Client, gitOps command.GitOps) command.Result
}

// Bot wires the collaborators needed to handle one delivery.
type Bot struct {
	tokens     TokenSource
	newClient  ClientFactory
	identity   IdentityConfigurer
	gitOps     command.GitOps
	dispatcher Dispatcher
}

// New returns a Bot. A nil newClient defaults to github.NewClient.
func New(tokens TokenSource, newClient ClientFactory, identity IdentityConfigurer, gitOps command.GitOps, dispatcher Dispatcher) *Bot {
	if newClient == nil {
		newClient = github.NewClient
	}
	return &Bot{
		tokens:     tokens,
		newClient:  newClient,
		identity:   identity,
		gitOps:     gitOps,
		dispatcher: dispatcher,
	}
}

// HandleIssueComment authenticates and dispatches event. Events the
// dispatcher ignores return before any token is requested, so they never
// reset the git credential cache. Errors are returned only for the setup
// steps; interceptor failures are reported by the dispatcher on the pull
// request.
func (b *Bot) HandleIssueComment(ctx context.Context, event *command.Event) error {
	logger := logr.FromContextOrDiscard(ctx).WithValues("delivery", event.DeliveryID)
	ctx = logr.NewContext(ctx, logger)

	if reason, ignore := b.dispatcher.Ignore(event); ignore {
		logger.V(1).Info("Ignoring comment", "reason", reason)
		return nil
	}

	token, err := b.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("getting installation token: %w", err)
	}

	gh, err := b.newClient(token)
	if err != nil {
		return fmt.Errorf("creating github client: %w", err)
	}

	if err := b.identity.Configure(ctx, token); err != nil {
		return fmt.Errorf("configuring git identity: %w", err)
	}

	result := b.dispatcher.Dispatch(ctx, event, gh, b.gitOps)
	logger.Info("Dispatched comment", "interceptors", result.Ran, "failed", len(result.Failed))
	return nil
}
