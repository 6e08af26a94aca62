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

package cleanup

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-logr/logr"
)

// ActiveSet reports workspaces that are still owned by a running handler.
// *workspace.Scope satisfies it.
type ActiveSet interface {
	InUse(path string) bool
}

// Scheduler removes stale workspace directories left behind under a root.
type Scheduler struct {
	root     string
	prefixes []string
	maxAge   time.Duration
	interval time.Duration
	now      func() time.Time
	active   ActiveSet
}

// NewScheduler creates a new cleanup scheduler.
//
// Parameters:
//   - root: directory workspaces are created in ("" means the working directory)
//   - prefixes: workspace name prefixes owned by this process
//   - maxAge: directories last modified longer ago than this are removed
//   - interval: duration between cleanup runs (e.g., 10*time.Minute)
func NewScheduler(root string, prefixes []string, maxAge, interval time.Duration) *Scheduler {
	return &Scheduler{
		root:     root,
		prefixes: append([]string(nil), prefixes...),
		maxAge:   maxAge,
		interval: interval,
		now:      time.Now,
	}
}

// SkipActive makes the scheduler leave directories reported by active alone,
// however old they are. It returns s.
func (s *Scheduler) SkipActive(active ActiveSet) *Scheduler {
	s.active = active
	return s
}

// Start runs the scheduler until the context is canceled. Failed passes are
// logged and the scheduler continues with the next tick.
//
// Returns nil on graceful shutdown.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", s.interval)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger := logr.FromContextOrDiscard(ctx).WithName("cleanup")

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			removed, err := s.cleanup(ctx)
			if err != nil {
				logger.Error(err, "cleanup pass failed")
				continue
			}
			if removed > 0 {
				logger.Info("Removed stale workspaces", "count", removed)
			}
		}
	}
}

// cleanup performs a single pass and returns the number of directories removed.
//
// The following rules apply:
//   - Only directories are considered
//   - The name must start with one of the configured prefixes followed by "-"
//   - Only directories whose modification time is older than maxAge are removed
//   - Directories still in use by a running handler are never removed
//
// Removal errors do not stop the pass; they are joined and returned.
func (s *Scheduler) cleanup(ctx context.Context) (int, error) {
	root := s.root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return 0, fmt.Errorf("resolving workspace root: %w", err)
		}
		root = wd
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", root, err)
	}

	cutoff := s.now().Add(-s.maxAge)
	logger := logr.FromContextOrDiscard(ctx)

	var (
		removed int
		errs    []error
	)
	for _, entry := range entries {
		if !entry.IsDir() || !s.owns(entry.Name()) {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			// Removed concurrently by its own scope.
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			errs = append(errs, err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(root, entry.Name())
		if s.active != nil && s.active.InUse(path) {
			logger.V(1).Info("Skipping workspace still in use", "workspace", path, "modified", info.ModTime())
			continue
		}
		if err := os.RemoveAll(path); err != nil {
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
			continue
		}
		logger.V(1).Info("Removed stale workspace", "workspace", path, "modified", info.ModTime())
		removed++
	}

	return removed, errors.Join(errs...)
}

func (s *Scheduler) owns(name string) bool {
	for _, prefix := range s.prefixes {
		if strings.HasPrefix(name, prefix+"-") && len(name) > len(prefix)+1 {
			return true
		}
	}
	return false
}
