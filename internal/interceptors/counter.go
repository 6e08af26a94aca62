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

package interceptors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/git"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/workspace"
)

const (
	// CounterFileName is the file the counter is stored in.
	CounterFileName = "counter_file.txt"
	// CounterCommitMessage skips CI on the pushed commit.
	CounterCommitMessage = "Updating counter file [skip ci]"
)

// NewUpdateCounterFile returns the interceptor that increments the counter
// file on the pull request branch.
//
// Unless the pull request is already clean or blocked, the branch is first
// updated from its base. The check run is attached to the branch head read
// after that update.
func NewUpdateCounterFile(scope *workspace.Scope) command.Interceptor {
	return command.Interceptor{
		Name: UpdateCounterFileName,
		Intercept: func(ctx context.Context, gh github.Client, gitOps command.GitOps, pr command.PRContext, event *command.Event) error {
			ok, err := accept(ctx, gh, pr, event, command.CommandUpdateCounterFile)
			if !ok || err != nil {
				return err
			}

			return scope.Within(ctx, updateCounterFilePrefix, func(ctx context.Context, dir string) error {
				logger := logr.FromContextOrDiscard(ctx).WithValues("workspace", dir)

				pull, err := gh.GetPullRequest(ctx, pr.Owner, pr.Repo, event.IssueNumber)
				if err != nil {
					return err
				}

				if pull.MergeableState != "blocked" && pull.MergeableState != "clean" {
					logger.Info("Updating pull request branch", "mergeableState", pull.MergeableState)
					if err := gh.UpdateBranch(ctx, pr.Owner, pr.Repo, pull.Number); err != nil {
						return err
					}
				}

				branch, err := gh.GetBranch(ctx, pr.Owner, pr.Repo, pull.HeadBranch)
				if err != nil {
					return err
				}

				opts := github.CheckRunOptions{Owner: pr.Owner, Repo: pr.Repo, Name: UpdateCounterFileName, HeadSHA: branch.SHA}
				return github.WithinCheckRun(ctx, gh, opts, failure.KindNone, func(ctx context.Context, run github.CheckRun) error {
					if err := gitOps.Clone(ctx, git.CloneOptions{Owner: pr.Owner, Repo: pr.Repo, Ref: branch.Name, Dir: dir}); err != nil {
						return err
					}

					message, err := bumpCounter(dir)
					if err != nil {
						return err
					}

					clean, err := gitOps.IsClean(dir)
					if err != nil {
						return err
					}
					if clean {
						logger.Info("Nothing to commit")
					} else {
						if err := gitOps.Commit(ctx, git.CommitOptions{Message: CounterCommitMessage, Dir: dir}); err != nil {
							return err
						}
						if err := gitOps.Push(ctx, git.PushOptions{Ref: branch.Name, Dir: dir}); err != nil {
							return err
						}
					}

					return gh.CreateComment(ctx, pr.Owner, pr.Repo, event.IssueNumber, message)
				})
			})
		},
	}
}

// bumpCounter creates or increments the counter file in dir and returns the
// comment describing the change. Content that is not an integer resets the
// counter to 1.
func bumpCounter(dir string) (string, error) {
	path := filepath.Join(dir, CounterFileName)

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeCounter(path, 1); err != nil {
			return "", err
		}
		return "Counter file created with counter set to: 1", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", CounterFileName, err)
	}

	current := strings.TrimSpace(string(data))
	n, err := strconv.Atoi(current)
	if err != nil {
		if err := writeCounter(path, 1); err != nil {
			return "", err
		}
		return "Counter file content is empty or does not contain a number, counter reset to 1", nil
	}

	next := n + 1
	if err := writeCounter(path, next); err != nil {
		return "", err
	}
	return fmt.Sprintf("Counter updated, previous value: %s new counter value: %d", current, next), nil
}

func writeCounter(path string, value int) error {
	if err := os.WriteFile(path, []byte(strconv.Itoa(value)), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", CounterFileName, err)
	}
	return nil
}
