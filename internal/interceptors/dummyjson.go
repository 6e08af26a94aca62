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

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/github"
)

// NewDummyJSON returns the interceptor that posts a random task from todos.
func NewDummyJSON(todos TodoSource) command.Interceptor {
	return command.Interceptor{
		Name: DummyJSONName,
		Intercept: func(ctx context.Context, gh github.Client, _ command.GitOps, pr command.PRContext, event *command.Event) error {
			ok, err := accept(ctx, gh, pr, event, command.CommandDummyJSON)
			if !ok || err != nil {
				return err
			}

			todo, err := todos.RandomTodo(ctx)
			if err != nil {
				return fmt.Errorf("dummy json service: %w", err)
			}

			return gh.CreateDetailsComment(ctx, pr.Owner, pr.Repo, event.IssueNumber, github.DetailsComment{
				Header: "The dummy json service provided this random TODO tasks for you",
				Title:  "TODO Details",
				Body:   todo.Indented(),
				Footer: "That's it!",
			})
		},
	}
}
