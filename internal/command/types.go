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

package command

import (
	"context"
	"strings"

	"github.com/mikelane/commandbot/internal/git"
	"github.com/mikelane/commandbot/internal/github"
)

// Command is the literal text of a recognized comment command
type Command string

const (
	// CommandPing asks the bot to confirm that it is listening
	CommandPing Command = "command ping"
	// CommandBreakingChanges runs the OpenAPI breaking change check
	CommandBreakingChanges Command = "command breaking-changes"
	// CommandUpdateCounterFile increments the counter file on the PR branch
	CommandUpdateCounterFile Command = "command update counter file"
	// CommandDummyJSON posts a random task from the dummy json service
	CommandDummyJSON Command = "command dummy json service"
)

// Event is an issue comment delivery. It is not modified during dispatch.
type Event struct {
	DeliveryID    string
	Action        string
	Owner         string
	Repo          string
	IssueNumber   int
	IsPullRequest bool
	CommentID     int64
	Body          string
	Sender        string
}

// Matches reports whether the trimmed comment body is exactly cmd
func (e *Event) Matches(cmd Command) bool {
	return strings.TrimSpace(e.Body) == string(cmd)
}

// PRContext identifies the repository of the event
type PRContext struct {
	Owner string
	Repo  string
}

// GitOps is the subset of git operations interceptors use
type GitOps interface {
	Clone(ctx context.Context, opts git.CloneOptions) error
	Commit(ctx context.Context, opts git.CommitOptions) error
	Push(ctx context.Context, opts git.PushOptions) error
	IsClean(dir string) (bool, error)
}

var _ GitOps = (*git.Client)(nil)

// InterceptFunc handles one event. It returns nil when the event does not
// carry its command.
type InterceptFunc func(ctx context.Context, gh github.Client, gitOps GitOps, pr PRContext, event *Event) error

// Interceptor is a named InterceptFunc
type Interceptor struct {
	Name      string
	Intercept InterceptFunc
}
