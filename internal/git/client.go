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

package git

import (
	"context"
	"fmt"
	"strings"

	"al.essio.dev/pkg/shellescape"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/process"
)

// DefaultRemoteBase is the host repositories are cloned from.
const DefaultRemoteBase = "https://github.com"

// CloneOptions selects the repository and ref to clone into Dir.
type CloneOptions struct {
	Owner string
	Repo  string
	Ref   string
	Dir   string
}

// CommitOptions describes a commit of every change in Dir.
type CommitOptions struct {
	Message string
	Dir     string
}

// PushOptions pushes the local Ref in Dir to the same ref on origin.
type PushOptions struct {
	Ref string
	Dir string
}

// Client clones, commits and pushes with the git binary. None of its
// operations retry.
type Client struct {
	runner     process.Runner
	identity   *IdentityManager
	remoteBase string
}

// NewClient returns a Client. When identity is non-nil, Clone and Push fail
// with ErrCredentialsExpired while identity.NeedsRefresh reports true.
func NewClient(runner process.Runner, identity *IdentityManager) *Client {
	return &Client{
		runner:     runner,
		identity:   identity,
		remoteBase: DefaultRemoteBase,
	}
}

// Clone makes a shallow, single-branch clone of opts.Ref into opts.Dir.
func (c *Client) Clone(ctx context.Context, opts CloneOptions) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/%s/%s.git", strings.TrimSuffix(c.remoteBase, "/"), opts.Owner, opts.Repo)
	command := fmt.Sprintf("git clone --branch %s --single-branch --depth=1 %s %s",
		shellescape.Quote(opts.Ref), shellescape.Quote(url), shellescape.Quote(opts.Dir))
	return c.run(ctx, "clone", command)
}

// Commit stages everything in opts.Dir and commits it. It fails when there is
// nothing to commit.
func (c *Client) Commit(ctx context.Context, opts CommitOptions) error {
	command := fmt.Sprintf("cd %s && git add . && git commit -m %s",
		shellescape.Quote(opts.Dir), shellescape.Quote(opts.Message))
	return c.run(ctx, "commit", command)
}

// Push pushes opts.Ref to origin.
func (c *Client) Push(ctx context.Context, opts PushOptions) error {
	if err := c.checkCredentials(); err != nil {
		return err
	}

	command := fmt.Sprintf("cd %s && git push origin %s",
		shellescape.Quote(opts.Dir), shellescape.Quote(opts.Ref))
	return c.run(ctx, "push", command)
}

// IsClean reports whether the worktree in dir has no staged, unstaged or
// untracked changes.
func (c *Client) IsClean(dir string) (bool, error) {
	repo, err := gogit.PlainOpen(dir)
	if err != nil {
		return false, fmt.Errorf("opening repository %s: %w", dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("opening worktree %s: %w", dir, err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("reading status of %s: %w", dir, err)
	}
	return status.IsClean(), nil
}

func (c *Client) checkCredentials() error {
	if c.identity != nil && c.identity.NeedsRefresh() {
		return ErrCredentialsExpired
	}
	return nil
}

func (c *Client) run(ctx context.Context, op, command string) error {
	logr.FromContextOrDiscard(ctx).Info("Running git command", "command", command)
	if _, err := c.runner.Run(ctx, command); err != nil {
		return fmt.Errorf("git %s: %w", op, err)
	}
	return nil
}
