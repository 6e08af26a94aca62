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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/git"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/github/githubtest"
	"github.com/mikelane/commandbot/internal/workspace"
)

func breakingChangesFixture(t *testing.T) (*githubtest.Fake, *fakeGit, string) {
	t.Helper()
	gh := githubtest.NewFake()
	gh.PullRequests[12] = &github.PullRequest{
		Number:     12,
		HeadSHA:    "head123",
		HeadBranch: "feature/todos",
		BaseBranch: "main",
	}
	gh.Files["openapi/oas.yaml@main"] = "openapi: 3.0.0 # base"
	return gh, &fakeGit{files: map[string]string{"openapi/oas.yaml": "openapi: 3.0.0 # head"}}, t.TempDir()
}

func TestBreakingChanges_NoBreakingChanges(t *testing.T) {
	gh, gitOps, root := breakingChangesFixture(t)
	differ := &fakeDiffer{report: "No changes found"}

	ic := NewBreakingChanges(differ, workspace.NewScope(root), "")
	err := ic.Intercept(context.Background(), gh, gitOps, prContext, newEvent("command breaking-changes"))
	require.NoError(t, err)

	runs := gh.CheckRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, "breaking-changes-interceptor", runs[0].Options.Name)
	assert.Equal(t, "head123", runs[0].Options.HeadSHA)
	assert.NotEmpty(t, runs[0].ExternalID)
	assert.Equal(t, []github.Conclusion{github.ConclusionSuccess}, runs[0].Conclusions)

	require.Len(t, gitOps.clones, 1)
	clone := gitOps.clones[0]
	assert.Equal(t, git.CloneOptions{Owner: "mikelane", Repo: "commandbot", Ref: "feature/todos", Dir: clone.Dir}, clone)
	assert.Equal(t, root, filepath.Dir(clone.Dir))

	assert.Equal(t, filepath.Join(clone.Dir, "oas.from.base.branch.yaml"), differ.before)
	assert.Equal(t, filepath.Join(clone.Dir, "openapi", "oas.yaml"), differ.after)
	assert.Equal(t, "openapi: 3.0.0 # base", differ.baseContent)

	comments := gh.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, &github.DetailsComment{
		Header: "No breaking changes detected",
		Title:  "Optic Result",
		Body:   "No changes found",
	}, comments[0].Details)

	_, statErr := os.Stat(clone.Dir)
	assert.True(t, os.IsNotExist(statErr), "workspace must be removed")
}

func TestBreakingChanges_BreakingChangeDetected(t *testing.T) {
	gh, gitOps, root := breakingChangesFixture(t)
	differ := &fakeDiffer{err: failure.New(failure.KindBreakingChanges, "removed GET /todos\nThis is a breaking change")}

	ic := NewBreakingChanges(differ, workspace.NewScope(root), DefaultSpecPath)
	err := ic.Intercept(context.Background(), gh, gitOps, prContext, newEvent("command breaking-changes"))

	require.NoError(t, err, "an expected breaking change must not reach the dispatcher")

	runs := gh.CheckRuns()
	require.Len(t, runs, 1)
	assert.Equal(t, []github.Conclusion{github.ConclusionFailure}, runs[0].Conclusions)

	comments := gh.Comments()
	require.Len(t, comments, 1)
	assert.Equal(t, &github.DetailsComment{
		Header: "Breaking Changes detected!",
		Title:  "Optic Result",
		Body:   "removed GET /todos\nThis is a breaking change",
		Footer: "You will need to address the issues stated above before being able to merge this PR!",
	}, comments[0].Details)
}

func TestBreakingChanges_Failures(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(gh *githubtest.Fake, gitOps *fakeGit, differ *fakeDiffer)
		wantCheckRuns int
	}{
		{
			name: "diff tool failure",
			setup: func(_ *githubtest.Fake, _ *fakeGit, differ *fakeDiffer) {
				differ.err = errors.New("optic: command not found")
			},
			wantCheckRuns: 1,
		},
		{
			name: "clone failure",
			setup: func(_ *githubtest.Fake, gitOps *fakeGit, _ *fakeDiffer) {
				gitOps.cloneErr = errors.New("Remote branch feature/todos not found")
			},
			wantCheckRuns: 1,
		},
		{
			name: "base document missing",
			setup: func(gh *githubtest.Fake, _ *fakeGit, _ *fakeDiffer) {
				delete(gh.Files, "openapi/oas.yaml@main")
			},
			wantCheckRuns: 1,
		},
		{
			name: "report cannot be posted",
			setup: func(gh *githubtest.Fake, _ *fakeGit, differ *fakeDiffer) {
				differ.err = failure.New(failure.KindBreakingChanges, "This is a breaking change")
				gh.Errors["CreateDetailsComment"] = errors.New("502")
			},
			wantCheckRuns: 1,
		},
		{
			name: "pull request lookup failure",
			setup: func(gh *githubtest.Fake, _ *fakeGit, _ *fakeDiffer) {
				gh.Errors["GetPullRequest"] = errors.New("404")
			},
			wantCheckRuns: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gh, gitOps, root := breakingChangesFixture(t)
			differ := &fakeDiffer{report: "ok"}
			tt.setup(gh, gitOps, differ)

			ic := NewBreakingChanges(differ, workspace.NewScope(root), "")
			err := ic.Intercept(context.Background(), gh, gitOps, prContext, newEvent("command breaking-changes"))

			assert.Error(t, err)
			runs := gh.CheckRuns()
			require.Len(t, runs, tt.wantCheckRuns)
			for _, run := range runs {
				assert.Equal(t, []github.Conclusion{github.ConclusionFailure}, run.Conclusions)
			}

			entries, readErr := os.ReadDir(root)
			require.NoError(t, readErr)
			assert.Empty(t, entries, "workspace must be removed")
		})
	}
}

func TestBreakingChanges_Rejected(t *testing.T) {
	gh, gitOps, root := breakingChangesFixture(t)

	err := NewBreakingChanges(&fakeDiffer{}, workspace.NewScope(root), "").
		Intercept(context.Background(), gh, gitOps, prContext, newEvent("command breaking changes"))

	require.NoError(t, err)
	assert.Empty(t, gh.Calls())
	assert.Empty(t, gitOps.clones)
}
