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

package github

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/go-github/v66/github"
)

// ErrMissingToken is returned by NewClient when no token is supplied
var ErrMissingToken = errors.New("github token is required")

// githubClient implements the Client interface using go-github
type githubClient struct {
	client *github.Client
}

// NewClient creates a new GitHub client authenticated with an installation token
func NewClient(token string) (Client, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	return &githubClient{
		client: github.NewClient(nil).WithAuthToken(token),
	}, nil
}

// GetPullRequest retrieves metadata about a pull request
func (c *githubClient) GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error) {
	pr, _, err := c.client.PullRequests.Get(ctx, owner, repo, number)
	if err != nil {
		return nil, fmt.Errorf("failed to get pull request: %w", err)
	}

	return c.convertPullRequest(pr), nil
}

// GetBranch retrieves the name and head commit of a branch
func (c *githubClient) GetBranch(ctx context.Context, owner, repo, branch string) (*Branch, error) {
	b, _, err := c.client.Repositories.GetBranch(ctx, owner, repo, branch, 1)
	if err != nil {
		return nil, fmt.Errorf("failed to get branch %s: %w", branch, err)
	}

	result := &Branch{Name: b.GetName()}
	if b.Commit != nil {
		result.SHA = b.Commit.GetSHA()
	}
	return result, nil
}

// GetFileContent returns the decoded content of a file at ref
func (c *githubClient) GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error) {
	file, _, _, err := c.client.Repositories.GetContents(ctx, owner, repo, path, &github.RepositoryContentGetOptions{Ref: ref})
	if err != nil {
		return "", fmt.Errorf("failed to get content of %s@%s: %w", path, ref, err)
	}
	if file == nil {
		return "", fmt.Errorf("%s@%s is not a file", path, ref)
	}

	content, err := file.GetContent()
	if err != nil {
		return "", fmt.Errorf("failed to decode %s@%s: %w", path, ref, err)
	}
	return content, nil
}

// CreateComment posts a plain comment on an issue or pull request
func (c *githubClient) CreateComment(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.Issues.CreateComment(ctx, owner, repo, number, &github.IssueComment{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// CreateDetailsComment posts a comment with a collapsible details section
func (c *githubClient) CreateDetailsComment(ctx context.Context, owner, repo string, number int, comment DetailsComment) error {
	return c.CreateComment(ctx, owner, repo, number, FormatDetails(comment))
}

// CreateReaction reacts to an issue comment
func (c *githubClient) CreateReaction(ctx context.Context, owner, repo string, commentID int64, reaction Reaction) error {
	_, _, err := c.client.Reactions.CreateIssueCommentReaction(ctx, owner, repo, commentID, string(reaction))
	if err != nil {
		return fmt.Errorf("failed to create %s reaction: %w", reaction, err)
	}
	return nil
}

// UpdateBranch asks GitHub to merge the base branch into the pull request
// branch. GitHub schedules the update and answers 202, which is success here.
func (c *githubClient) UpdateBranch(ctx context.Context, owner, repo string, number int) error {
	_, _, err := c.client.PullRequests.UpdateBranch(ctx, owner, repo, number, nil)
	var accepted *github.AcceptedError
	if err != nil && !errors.As(err, &accepted) {
		return fmt.Errorf("failed to update pull request branch: %w", err)
	}
	return nil
}

// CreateCheckRun opens an in-progress check run and returns its id
func (c *githubClient) CreateCheckRun(ctx context.Context, opts CheckRunOptions, externalID string) (int64, error) {
	run, _, err := c.client.Checks.CreateCheckRun(ctx, opts.Owner, opts.Repo, github.CreateCheckRunOptions{
		Name:       opts.Name,
		HeadSHA:    opts.HeadSHA,
		ExternalID: github.String(externalID),
		Status:     github.String(checkRunStatusInProgress),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create check run %s: %w", opts.Name, err)
	}
	return run.GetID(), nil
}

// CompleteCheckRun marks a check run completed with the given conclusion
func (c *githubClient) CompleteCheckRun(ctx context.Context, opts CheckRunOptions, id int64, conclusion Conclusion) error {
	_, _, err := c.client.Checks.UpdateCheckRun(ctx, opts.Owner, opts.Repo, id, github.UpdateCheckRunOptions{
		Name:       opts.Name,
		Status:     github.String(checkRunStatusCompleted),
		Conclusion: github.String(string(conclusion)),
	})
	if err != nil {
		return fmt.Errorf("failed to complete check run %s: %w", opts.Name, err)
	}
	return nil
}

// convertPullRequest converts a GitHub PR to our domain model
func (c *githubClient) convertPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}

	result := &PullRequest{
		Number:         pr.GetNumber(),
		State:          pr.GetState(),
		MergeableState: pr.GetMergeableState(),
	}

	if pr.Head != nil {
		result.HeadSHA = pr.Head.GetSHA()
		result.HeadBranch = pr.Head.GetRef()
	}

	if pr.Base != nil {
		result.BaseSHA = pr.Base.GetSHA()
		result.BaseBranch = pr.Base.GetRef()
	}

	return result
}
