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
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/metrics"
)

// Result summarizes one dispatch
type Result struct {
	// Ignored is true when the guard rejected the event
	Ignored bool
	// Ran counts the interceptors invoked
	Ran int
	// Failed lists the interceptors that returned an error or panicked
	Failed []string
}

// Dispatcher runs every registered interceptor for an event
type Dispatcher struct {
	registry *Registry
	botName  string
}

// NewDispatcher returns a Dispatcher. Events whose sender login contains
// botName are ignored; an empty botName disables that check.
func NewDispatcher(registry *Registry, botName string) *Dispatcher {
	return &Dispatcher{registry: registry, botName: botName}
}

// Dispatch runs the interceptors sequentially. It never returns an error:
// failures are logged, counted and reported on the pull request.
func (d *Dispatcher) Dispatch(ctx context.Context, event *Event, gh github.Client, gitOps GitOps) Result {
	logger := logr.FromContextOrDiscard(ctx).WithValues(
		"repository", event.Owner+"/"+event.Repo,
		"issue", event.IssueNumber,
		"commentID", event.CommentID,
	)

	if reason, ignore := d.Ignore(event); ignore {
		logger.V(1).Info("Ignoring comment", "reason", reason)
		return Result{Ignored: true}
	}

	pr := PRContext{Owner: event.Owner, Repo: event.Repo}
	var result Result

	for _, ic := range d.registry.interceptors {
		icLogger := logger.WithValues("interceptor", ic.Name)
		icCtx := logr.NewContext(ctx, icLogger)

		result.Ran++
		err := invoke(icCtx, ic, gh, gitOps, pr, event)
		if err == nil {
			metrics.InterceptorRuns.WithLabelValues(ic.Name, metrics.OutcomeOK).Inc()
			continue
		}

		result.Failed = append(result.Failed, ic.Name)
		metrics.InterceptorRuns.WithLabelValues(ic.Name, metrics.OutcomeFailed).Inc()
		icLogger.Error(err, "Interceptor failed")

		report := github.DetailsComment{
			Header: "Something went wrong while executing " + ic.Name,
			Title:  "Error",
			Body:   err.Error(),
		}
		if postErr := gh.CreateDetailsComment(ctx, pr.Owner, pr.Repo, event.IssueNumber, report); postErr != nil {
			icLogger.Error(postErr, "Failed to report interceptor failure")
		}
	}

	return result
}

// Ignore reports whether Dispatch would skip event, and why. Callers use it to
// avoid setup work for events that never reach an interceptor.
func (d *Dispatcher) Ignore(event *Event) (string, bool) {
	if !event.IsPullRequest {
		return "not a pull request", true
	}
	if d.botName != "" && strings.Contains(event.Sender, d.botName) {
		return "comment from the bot itself", true
	}
	return "", false
}

// invoke calls the interceptor and turns a panic into an error
func invoke(ctx context.Context, ic Interceptor, gh github.Client, gitOps GitOps, pr PRContext, event *Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logr.FromContextOrDiscard(ctx).V(1).Info("Recovered interceptor panic", "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return ic.Intercept(ctx, gh, gitOps, pr, event)
}
