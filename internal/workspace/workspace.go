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

package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/metrics"
)

// ErrInvalidPrefix is returned for prefixes that could escape the root.
var ErrInvalidPrefix = errors.New("invalid workspace prefix")

// Func is the unit of work run inside a workspace.
type Func func(ctx context.Context, dir string) error

// Scope creates workspaces under a single root directory and remembers which
// of them are still in use.
type Scope struct {
	root string

	mu     sync.Mutex
	active map[string]struct{}
}

// NewScope returns a Scope rooted at root. An empty root means the process
// working directory at the time each workspace is created.
func NewScope(root string) *Scope {
	return &Scope{root: root}
}

// Root resolves the absolute directory workspaces are created in.
func (s *Scope) Root() (string, error) {
	if s == nil || s.root == "" {
		return os.Getwd()
	}
	return filepath.Abs(s.root)
}

// Within creates a uniquely named directory "<prefix>-<random>" under the root,
// runs fn with its absolute path and removes the tree on every exit path,
// including panics. When the directory cannot be created fn is not called.
//
// If fn fails and the removal also fails, the removal error is logged and fn's
// error is returned.
func (s *Scope) Within(ctx context.Context, prefix string, fn Func) (err error) {
	if err := validatePrefix(prefix); err != nil {
		return err
	}

	root, err := s.Root()
	if err != nil {
		return fmt.Errorf("resolving workspace root: %w", err)
	}

	dir, err := os.MkdirTemp(root, prefix+"-")
	if err != nil {
		return fmt.Errorf("creating workspace: %w", err)
	}

	logger := logr.FromContextOrDiscard(ctx).WithValues("workspace", dir)
	metrics.WorkspacesActive.Inc()
	s.track(dir)

	defer func() {
		metrics.WorkspacesActive.Dec()
		removeErr := os.RemoveAll(dir)
		s.untrack(dir)
		switch {
		case removeErr == nil:
			logger.V(1).Info("Removed workspace")
		case err != nil:
			logger.Error(removeErr, "Failed to remove workspace")
		default:
			err = fmt.Errorf("removing workspace %s: %w", dir, removeErr)
		}
	}()

	logger.V(1).Info("Created workspace")
	return fn(ctx, dir)
}

// InUse reports whether path is a workspace of this scope whose fn has not
// returned yet.
func (s *Scope) InUse(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[filepath.Clean(path)]
	return ok
}

func (s *Scope) track(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		s.active = make(map[string]struct{})
	}
	s.active[filepath.Clean(dir)] = struct{}{}
}

func (s *Scope) untrack(dir string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, filepath.Clean(dir))
}

// Within runs fn in a workspace under the process working directory.
func Within(ctx context.Context, prefix string, fn Func) error {
	return NewScope("").Within(ctx, prefix, fn)
}

func validatePrefix(prefix string) error {
	switch {
	case prefix == "":
		return fmt.Errorf("%w: empty", ErrInvalidPrefix)
	case strings.ContainsAny(prefix, `/\`):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidPrefix, prefix)
	case strings.Contains(prefix, ".."):
		return fmt.Errorf("%w: %q contains '..'", ErrInvalidPrefix, prefix)
	}
	return nil
}
