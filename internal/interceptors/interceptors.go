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

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/dummyjson"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/workspace"
)

// Interceptor names. The breaking changes and counter names double as check
// run names.
const (
	BreakingChangesName   = "breaking-changes-interceptor"
	PingName              = "ping-interceptor"
	UpdateCounterFileName = "update-counter-file-interceptor"
	DummyJSONName         = "dummy-json-service-interceptor"
)

// Workspace prefixes.
const (
	breakingChangesPrefix   = "breaking-changes"
	updateCounterFilePrefix = "update-counter-file"
)

// Differ compares two OpenAPI documents.
type Differ interface {
	Diff(ctx context.Context, before, after string) (string, error)
}

// TodoSource provides random sample tasks.
type TodoSource interface {
	RandomTodo(ctx context.Context) (*dummyjson.Todo, error)
}

// Dependencies are the collaborators of the default interceptors.
type Dependencies struct {
	Optic      Differ
	Workspaces *workspace.Scope
	// SpecPath is the repository-relative path of the OpenAPI document.
	SpecPath string
	Todos    TodoSource
}

// Default returns the registry of all interceptors in dispatch order.
func Default(deps Dependencies) (*command.Registry, error) {
	return command.NewRegistry(
		NewBreakingChanges(deps.Optic, deps.Workspaces, deps.SpecPath),
		Ping(),
		NewUpdateCounterFile(deps.Workspaces),
		NewDummyJSON(deps.Todos),
	)
}

// WorkspacePrefixes lists the workspace name prefixes the interceptors use.
func WorkspacePrefixes() []string {
	return []string{breakingChangesPrefix, updateCounterFilePrefix}
}

// accept logs the decision for cmd and, on a match, reacts to the comment.
// It reports whether the interceptor should proceed.
func accept(ctx context.Context, gh github.Client, pr command.PRContext, event *command.Event, cmd command.Command) (bool, error) {
	logger := logr.FromContextOrDiscard(ctx)
	if !event.Matches(cmd) {
		logger.V(1).Info("Command REJECTED", "commentID", event.CommentID)
		return false, nil
	}

	logger.Info("Command ACCEPTED", "commentID", event.CommentID, "command", string(cmd))
	if err := gh.CreateReaction(ctx, pr.Owner, pr.Repo, event.CommentID, github.ReactionEyes); err != nil {
		return false, err
	}
	return true, nil
}
