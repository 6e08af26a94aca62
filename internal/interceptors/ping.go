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

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/github"
)

// PingReply is posted in answer to "command ping".
const PingReply = "Ready to accept commands!"

// Ping returns the liveness interceptor.
func Ping() command.Interceptor {
	return command.Interceptor{
		Name: PingName,
		Intercept: func(ctx context.Context, gh github.Client, _ command.GitOps, pr command.PRContext, event *command.Event) error {
			ok, err := accept(ctx, gh, pr, event, command.CommandPing)
			if !ok || err != nil {
				return err
			}
			return gh.CreateComment(ctx, pr.Owner, pr.Repo, event.IssueNumber, PingReply)
		},
	}
}
