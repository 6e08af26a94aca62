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
	"errors"
	"fmt"
	"sync"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/process"
)

// CredentialCacheTimeout is how long git keeps the installation token.
const CredentialCacheTimeout = 300 * time.Second

// ErrCredentialsExpired is returned by network operations when the cached
// credential is older than CredentialCacheTimeout or was never stored.
var ErrCredentialsExpired = errors.New("git credentials are not configured or have expired")

// Identity is the GitHub App the bot commits and pushes as.
type Identity struct {
	AppName string
	AppID   int64
	UserID  int64
}

// UserName is the git author name, "<app>[bot]".
func (i Identity) UserName() string {
	return i.AppName + "[bot]"
}

// Email is the noreply address GitHub associates with the app's bot user.
func (i Identity) Email() string {
	return fmt.Sprintf("%d+%s[bot]@users.noreply.github.com", i.UserID, i.AppName)
}

// IdentityManager owns the global git configuration and credential cache of
// the process. Configure may be called concurrently, but it does not
// coordinate with git commands already running against the old credential.
type IdentityManager struct {
	runner   process.Runner
	identity Identity
	timeout  time.Duration
	now      func() time.Time

	mu           sync.Mutex
	configuredAt time.Time
}

// NewIdentityManager returns a manager that configures git through runner.
func NewIdentityManager(runner process.Runner, identity Identity) *IdentityManager {
	return &IdentityManager{
		runner:   runner,
		identity: identity,
		timeout:  CredentialCacheTimeout,
		now:      time.Now,
	}
}

// Identity returns the configured bot identity.
func (m *IdentityManager) Identity() Identity {
	return m.identity
}

// Configure sets the global git user, enables the credential cache helper and
// stores token for https://github.com. It is safe to call again; each call
// restarts the cache timeout.
func (m *IdentityManager) Configure(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("installation token is required")
	}

	helper := fmt.Sprintf("cache --timeout=%d", int(m.timeout/time.Second))
	commands := []string{
		"git config --global user.name " + shellescape.Quote(m.identity.UserName()),
		"git config --global user.email " + shellescape.Quote(m.identity.Email()),
		"git config --global credential.helper " + shellescape.Quote(helper),
	}
	for _, command := range commands {
		if _, err := m.runner.Run(ctx, command); err != nil {
			return fmt.Errorf("configuring git: %w", err)
		}
	}

	credential := fmt.Sprintf("protocol=https\nhost=github.com\nusername=%d\npassword=%s\n", m.identity.AppID, token)
	if _, err := m.runner.Run(ctx, "git credential-cache store", process.WithStdin(credential)); err != nil {
		return fmt.Errorf("storing git credential: %w", err)
	}

	m.mu.Lock()
	m.configuredAt = m.now()
	m.mu.Unlock()

	logr.FromContextOrDiscard(ctx).V(1).Info("Configured git identity", "user", m.identity.UserName())
	return nil
}

// NeedsRefresh reports whether Configure has to run before the next network
// operation.
func (m *IdentityManager) NeedsRefresh() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.configuredAt.IsZero() || m.now().Sub(m.configuredAt) >= m.timeout
}
