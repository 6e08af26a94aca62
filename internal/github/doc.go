// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package github provides GitHub API integration for the command bot.
//
// This package implements a client for the pull request operations the
// command handlers need and a wrapper that ties a unit of work to the
// lifecycle of a check run.
//
// Key features:
//   - Fetch pull request and branch metadata
//   - Fetch decoded file content at a ref
//   - Post plain comments, collapsible details comments and reactions
//   - Request an update of a pull request branch from its base
//   - Create and complete check runs
//
// Authentication:
//
// The client is built from a GitHub App installation access token. A new
// client is created for every webhook delivery because installation tokens
// expire after one hour.
//
// Example usage:
//
//	client, err := github.NewClient(token)
//	if err != nil {
//	    return err
//	}
//
//	pr, err := client.GetPullRequest(ctx, "owner", "repo", 123)
//	if err != nil {
//	    return err
//	}
//
//	opts := github.CheckRunOptions{Owner: "owner", Repo: "repo", Name: "lint", HeadSHA: pr.HeadSHA}
//	err = github.WithinCheckRun(ctx, client, opts, failure.KindNone, func(ctx context.Context, run github.CheckRun) error {
//	    return lint(ctx)
//	})
//
// Check Runs:
//
// WithinCheckRun creates the check run in progress, runs the supplied
// function and completes the run exactly once: success when the function
// returns nil, failure otherwise. A caller can name one failure.Kind as
// expected; errors of that kind fail the check run without being returned.
//
// Retries:
//
// No request is retried. A failed call is returned to the handler that made it.
package github
