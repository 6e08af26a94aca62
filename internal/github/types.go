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
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// GetPullRequest retrieves metadata about a pull request
	GetPullRequest(ctx context.Context, owner, repo string, number int) (*PullRequest, error)
	// GetBranch retrieves the name and head commit of a branch
	GetBranch(ctx context.Context, owner, repo, branch string) (*Branch, error)
	// GetFileContent returns the decoded content of a file at ref
	GetFileContent(ctx context.Context, owner, repo, path, ref string) (string, error)
	// CreateComment posts a plain comment on an issue or pull request
	CreateComment(ctx context.Context, owner, repo string, number int, body string) error
	// CreateDetailsComment posts a comment with a collapsible details section
	CreateDetailsComment(ctx context.Context, owner, repo string, number int, comment DetailsComment) error
	// CreateReaction reacts to an issue comment
	CreateReaction(ctx context.Context, owner, repo string, commentID int64, reaction Reaction) error
	// UpdateBranch asks GitHub to merge the base branch into the pull request branch
	UpdateBranch(ctx context.Context, owner, repo string, number int) error
	// CreateCheckRun opens an in-progress check run and returns its id
	CreateCheckRun(ctx context.Context, opts CheckRunOptions, externalID string) (int64, error)
	// CompleteCheckRun marks a check run completed with the given conclusion
	CompleteCheckRun(ctx context.Context, opts CheckRunOptions, id int64, conclusion Conclusion) error
}

// PullRequest represents GitHub pull request metadata
type PullRequest struct {
	Number         int
	HeadSHA        string
	HeadBranch     string
	BaseSHA        string
	BaseBranch     string
	State          string // open, closed
	MergeableState string // clean, blocked, behind, dirty, unknown, ...
}

// Branch represents a branch and the commit it points at
type Branch struct {
	Name string
	SHA  string
}

// DetailsComment is rendered as "<header> <details>...</details> <footer>"
type DetailsComment struct {
	Header string // Text shown above the collapsed section
	Title  string // Summary label of the collapsed section
	Body   string // Code-fenced content of the collapsed section
	Footer string // Optional text after the section
}

// Reaction is the content of an emoji reaction
type Reaction string

const (
	ReactionPlusOne  Reaction = "+1"
	ReactionMinusOne Reaction = "-1"
	ReactionLaugh    Reaction = "laugh"
	ReactionConfused Reaction = "confused"
	ReactionHeart    Reaction = "heart"
	ReactionHooray   Reaction = "hooray"
	ReactionRocket   Reaction = "rocket"
	// ReactionEyes acknowledges that a command was picked up
	ReactionEyes Reaction = "eyes"
)

// CheckRunOptions identifies a check run on a commit
type CheckRunOptions struct {
	Owner   string
	Repo    string
	Name    string // Name shown in the pull request checks list
	HeadSHA string // Commit the check run is attached to
}

// CheckRun is handed to the work wrapped by WithinCheckRun
type CheckRun struct {
	ID         int64
	ExternalID string // Correlation identifier generated for this run
}

// Conclusion represents the final state of a completed check run
type Conclusion string

const (
	// ConclusionSuccess indicates that the wrapped work completed
	ConclusionSuccess Conclusion = "success"
	// ConclusionFailure indicates that the wrapped work returned an error
	ConclusionFailure Conclusion = "failure"
)

const (
	checkRunStatusInProgress = "in_progress"
	checkRunStatusCompleted  = "completed"
)
