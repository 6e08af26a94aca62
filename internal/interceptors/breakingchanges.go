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
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/git"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/workspace"
)

const (
	// DefaultSpecPath is where the OpenAPI document lives in the repository.
	DefaultSpecPath = "openapi/oas.yaml"
	// baseSpecFile holds the base branch copy of the document in the workspace.
	baseSpecFile = "oas.from.base.branch.yaml"

	opticResultTitle = "Optic Result"
)

// NewBreakingChanges returns the interceptor that checks the pull request's
// OpenAPI document at specPath for breaking changes against the base branch.
//
// A detected breaking change fails the check run and is reported with a
// remediation footer; it is not an interceptor error.
func NewBreakingChanges(differ Differ, scope *workspace.Scope, specPath string) command.Interceptor {
	if specPath == "" {
		specPath = DefaultSpecPath
	}

	return command.Interceptor{
		Name: BreakingChangesName,
		Intercept: func(ctx context.Context, gh github.Client, gitOps command.GitOps, pr command.PRContext, event *command.Event) error {
			ok, err := accept(ctx, gh, pr, event, command.CommandBreakingChanges)
			if !ok || err != nil {
				return err
			}

			return scope.Within(ctx, breakingChangesPrefix, func(ctx context.Context, dir string) error {
				logr.FromContextOrDiscard(ctx).Info("Checking for breaking changes", "workspace", dir)

				// Comment events carry no head or base information.
				pull, err := gh.GetPullRequest(ctx, pr.Owner, pr.Repo, event.IssueNumber)
				if err != nil {
					return err
				}

				opts := github.CheckRunOptions{Owner: pr.Owner, Repo: pr.Repo, Name: BreakingChangesName, HeadSHA: pull.HeadSHA}
				return github.WithinCheckRun(ctx, gh, opts, failure.KindBreakingChanges, func(ctx context.Context, run github.CheckRun) error {
					return checkBreakingChanges(ctx, gh, gitOps, differ, pr, event.IssueNumber, pull, dir, specPath)
				})
			})
		},
	}
}

func checkBreakingChanges(ctx context.Context, gh github.Client, gitOps command.GitOps, differ Differ, pr command.PRContext, issue int, pull *github.PullRequest, dir, specPath string) error {
	if err := gitOps.Clone(ctx, git.CloneOptions{Owner: pr.Owner, Repo: pr.Repo, Ref: pull.HeadBranch, Dir: dir}); err != nil {
		return err
	}

	base, err := gh.GetFileContent(ctx, pr.Owner, pr.Repo, specPath, pull.BaseBranch)
	if err != nil {
		return err
	}
	basePath := filepath.Join(dir, baseSpecFile)
	if err := os.WriteFile(basePath, []byte(base), 0o644); err != nil {
		return fmt.Errorf("writing base branch document: %w", err)
	}

	report, diffErr := differ.Diff(ctx, basePath, filepath.Join(dir, filepath.FromSlash(specPath)))
	switch {
	case diffErr == nil:
		return gh.CreateDetailsComment(ctx, pr.Owner, pr.Repo, issue, github.DetailsComment{
			Header: "No breaking changes detected",
			Title:  opticResultTitle,
			Body:   report,
		})
	case failure.Is(diffErr, failure.KindBreakingChanges):
		postErr := gh.CreateDetailsComment(ctx, pr.Owner, pr.Repo, issue, github.DetailsComment{
			Header: "Breaking Changes detected!",
			Title:  opticResultTitle,
			Body:   diffErr.Error(),
			Footer: "You will need to address the issues stated above before being able to merge this PR!",
		})
		if postErr != nil {
			return fmt.Errorf("reporting breaking changes: %w", postErr)
		}
		return diffErr
	default:
		return diffErr
	}
}
