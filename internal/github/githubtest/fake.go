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

// Package githubtest provides an in-memory github.Client for tests.
package githubtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/mikelane/commandbot/internal/github"
)

// Comment is a recorded comment. Details is set for details comments.
type Comment struct {
	Owner   string
	Repo    string
	Number  int
	Body    string
	Details *github.DetailsComment
}

// Reaction is a recorded reaction.
type Reaction struct {
	CommentID int64
	Content   github.Reaction
}

// CheckRun is a recorded check run with its completions.
type CheckRun struct {
	ID          int64
	Options     github.CheckRunOptions
	ExternalID  string
	Conclusions []github.Conclusion
}

// Fake implements github.Client over maps. Errors keyed by method name make
// that method fail. It is safe for concurrent use.
type Fake struct {
	PullRequests map[int]*github.PullRequest
	Branches     map[string]*github.Branch
	// Files is keyed by "path@ref".
	Files  map[string]string
	Errors map[string]error

	mu            sync.Mutex
	comments      []Comment
	reactions     []Reaction
	branchUpdates []int
	checkRuns     []*CheckRun
	calls         []string
}

// NewFake returns an empty Fake.
func NewFake() *Fake {
	return &Fake{
		PullRequests: map[int]*github.PullRequest{},
		Branches:     map[string]*github.Branch{},
		Files:        map[string]string{},
		Errors:       map[string]error{},
	}
}

var _ github.Client = (*Fake)(nil)

func (f *Fake) record(method string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, method)
	return f.Errors[method]
}

// GetPullRequest implements github.Client.
func (f *Fake) GetPullRequest(_ context.Context, _, _ string, number int) (*github.PullRequest, error) {
	if err := f.record("GetPullRequest"); err != nil {
		return nil, err
	}
	pr, ok := f.PullRequests[number]
	if !ok {
		return nil, fmt.Errorf("pull request %d not found", number)
	}
	copied := *pr
	return &copied, nil
}

// GetBranch implements github.Client.
func (f *Fake) GetBranch(_ context.Context, _, _, branch string) (*github.Branch, error) {
	if err := f.record("GetBranch"); err != nil {
		return nil, err
	}
	b, ok := f.Branches[branch]
	if !ok {
		return nil, fmt.Errorf("branch %s not found", branch)
	}
	copied := *b
	return &copied, nil
}

// GetFileContent implements github.Client.
func (f *Fake) GetFileContent(_ context.Context, _, _, path, ref string) (string, error) {
	if err := f.record("GetFileContent"); err != nil {
		return "", err
	}
	content, ok := f.Files[path+"@"+ref]
	if !ok {
		return "", fmt.Errorf("%s@%s not found", path, ref)
	}
	return content, nil
}

// CreateComment implements github.Client.
func (f *Fake) CreateComment(_ context.Context, owner, repo string, number int, body string) error {
	if err := f.record("CreateComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, Comment{Owner: owner, Repo: repo, Number: number, Body: body})
	return nil
}

// CreateDetailsComment implements github.Client.
func (f *Fake) CreateDetailsComment(_ context.Context, owner, repo string, number int, comment github.DetailsComment) error {
	if err := f.record("CreateDetailsComment"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, Comment{
		Owner:   owner,
		Repo:    repo,
		Number:  number,
		Body:    github.FormatDetails(comment),
		Details: &comment,
	})
	return nil
}

// CreateReaction implements github.Client.
func (f *Fake) CreateReaction(_ context.Context, _, _ string, commentID int64, reaction github.Reaction) error {
	if err := f.record("CreateReaction"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactions = append(f.reactions, Reaction{CommentID: commentID, Content: reaction})
	return nil
}

// UpdateBranch implements github.Client.
func (f *Fake) UpdateBranch(_ context.Context, _, _ string, number int) error {
	if err := f.record("UpdateBranch"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.branchUpdates = append(f.branchUpdates, number)
	return nil
}

// CreateCheckRun implements github.Client.
func (f *Fake) CreateCheckRun(_ context.Context, opts github.CheckRunOptions, externalID string) (int64, error) {
	if err := f.record("CreateCheckRun"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	run := &CheckRun{ID: int64(len(f.checkRuns) + 1), Options: opts, ExternalID: externalID}
	f.checkRuns = append(f.checkRuns, run)
	return run.ID, nil
}

// CompleteCheckRun implements github.Client.
func (f *Fake) CompleteCheckRun(_ context.Context, _ github.CheckRunOptions, id int64, conclusion github.Conclusion) error {
	if err := f.record("CompleteCheckRun"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, run := range f.checkRuns {
		if run.ID == id {
			run.Conclusions = append(run.Conclusions, conclusion)
			return nil
		}
	}
	return fmt.Errorf("check run %d not found", id)
}

// Comments returns the posted comments in order.
func (f *Fake) Comments() []Comment {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Comment(nil), f.comments...)
}

// Reactions returns the posted reactions in order.
func (f *Fake) Reactions() []Reaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Reaction(nil), f.reactions...)
}

// BranchUpdates returns the pull request numbers whose branch was updated.
func (f *Fake) BranchUpdates() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.branchUpdates...)
}

// CheckRuns returns copies of the created check runs.
func (f *Fake) CheckRuns() []CheckRun {
	f.mu.Lock()
	defer f.mu.Unlock()
	runs := make([]CheckRun, len(f.checkRuns))
	for i, run := range f.checkRuns {
		runs[i] = *run
		runs[i].Conclusions = append([]github.Conclusion(nil), run.Conclusions...)
	}
	return runs
}

// Calls returns the invoked method names in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}
