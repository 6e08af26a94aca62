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
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/github"
	"github.com/mikelane/commandbot/internal/github/githubtest"
	"github.com/mikelane/commandbot/internal/metrics"
)

// recorder returns an interceptor that appends its name to calls and, when it
// matches cmd, reacts and then returns err.
func recorder(name string, cmd Command, calls *[]string, err error) Interceptor {
	return Interceptor{
		Name: name,
		Intercept: func(ctx context.Context, gh github.Client, _ GitOps, pr PRContext, event *Event) error {
			*calls = append(*calls, name)
			if !event.Matches(cmd) {
				return nil
			}
			if reactErr := gh.CreateReaction(ctx, pr.Owner, pr.Repo, event.CommentID, github.ReactionEyes); reactErr != nil {
				return reactErr
			}
			return err
		},
	}
}

var _ = Describe("Dispatcher", func() {
	var (
		ctx   context.Context
		gh    *githubtest.Fake
		calls []string
		event *Event
	)

	BeforeEach(func() {
		ctx = context.Background()
		gh = githubtest.NewFake()
		calls = nil
		event = &Event{
			Action:        "created",
			Owner:         "mikelane",
			Repo:          "commandbot",
			IssueNumber:   12,
			IsPullRequest: true,
			CommentID:     555,
			Body:          "  command ping\n",
			Sender:        "octocat",
		}
	})

	newDispatcher := func(interceptors ...Interceptor) *Dispatcher {
		registry, err := NewRegistry(interceptors...)
		Expect(err).NotTo(HaveOccurred())
		return NewDispatcher(registry, "commandbot")
	}

	Describe("Scenario: guard", func() {
		It("ignores comments on plain issues", func() {
			event.IsPullRequest = false
			result := newDispatcher(recorder("ping", CommandPing, &calls, nil)).Dispatch(ctx, event, gh, nil)

			Expect(result.Ignored).To(BeTrue())
			Expect(calls).To(BeEmpty())
			Expect(gh.Calls()).To(BeEmpty())
		})

		It("ignores comments written by the bot", func() {
			event.Sender = "commandbot[bot]"
			result := newDispatcher(recorder("ping", CommandPing, &calls, nil)).Dispatch(ctx, event, gh, nil)

			Expect(result.Ignored).To(BeTrue())
			Expect(calls).To(BeEmpty())
			Expect(gh.Calls()).To(BeEmpty())
		})

		It("does not filter senders when no bot name is configured", func() {
			registry, err := NewRegistry(recorder("ping", CommandPing, &calls, nil))
			Expect(err).NotTo(HaveOccurred())
			event.Sender = "commandbot[bot]"

			result := NewDispatcher(registry, "").Dispatch(ctx, event, gh, nil)

			Expect(result.Ignored).To(BeFalse())
			Expect(calls).To(Equal([]string{"ping"}))
		})

		It("reports the same decision through Ignore without side effects", func() {
			d := newDispatcher(recorder("ping", CommandPing, &calls, nil))

			_, ignored := d.Ignore(event)
			Expect(ignored).To(BeFalse())

			event.Sender = "commandbot[bot]"
			reason, ignored := d.Ignore(event)
			Expect(ignored).To(BeTrue())
			Expect(reason).To(Equal("comment from the bot itself"))

			event.Sender = "octocat"
			event.IsPullRequest = false
			reason, ignored = d.Ignore(event)
			Expect(ignored).To(BeTrue())
			Expect(reason).To(Equal("not a pull request"))

			Expect(calls).To(BeEmpty())
			Expect(gh.Calls()).To(BeEmpty())
		})
	})

	Describe("Scenario: sequential dispatch", func() {
		It("runs every interceptor in registry order", func() {
			d := newDispatcher(
				recorder("breaking-changes", CommandBreakingChanges, &calls, nil),
				recorder("ping", CommandPing, &calls, nil),
				recorder("update-counter-file", CommandUpdateCounterFile, &calls, nil),
				recorder("dummy-json", CommandDummyJSON, &calls, nil),
			)

			result := d.Dispatch(ctx, event, gh, nil)

			Expect(result).To(Equal(Result{Ran: 4}))
			Expect(calls).To(Equal([]string{"breaking-changes", "ping", "update-counter-file", "dummy-json"}))
			Expect(gh.Reactions()).To(Equal([]githubtest.Reaction{{CommentID: 555, Content: github.ReactionEyes}}))
			Expect(gh.Comments()).To(BeEmpty())
		})

		It("has no side effects when no command matches", func() {
			event.Body = "LGTM"
			d := newDispatcher(
				recorder("ping", CommandPing, &calls, nil),
				recorder("dummy-json", CommandDummyJSON, &calls, nil),
			)

			result := d.Dispatch(ctx, event, gh, nil)

			Expect(result.Failed).To(BeEmpty())
			Expect(gh.Calls()).To(BeEmpty())
		})
	})

	Describe("Scenario: failure isolation", func() {
		It("reports a failing interceptor and keeps going", func() {
			d := newDispatcher(
				recorder("ping", CommandPing, &calls, errors.New("secondary rate limit")),
				recorder("after-1", CommandPing, &calls, nil),
				recorder("after-2", CommandDummyJSON, &calls, nil),
			)
			before := testutil.ToFloat64(metrics.InterceptorRuns.WithLabelValues("ping", metrics.OutcomeFailed))

			result := d.Dispatch(ctx, event, gh, nil)

			Expect(result.Failed).To(Equal([]string{"ping"}))
			Expect(calls).To(Equal([]string{"ping", "after-1", "after-2"}))

			comments := gh.Comments()
			Expect(comments).To(HaveLen(1))
			Expect(comments[0].Number).To(Equal(12))
			Expect(*comments[0].Details).To(Equal(github.DetailsComment{
				Header: "Something went wrong while executing ping",
				Title:  "Error",
				Body:   "secondary rate limit",
			}))
			Expect(testutil.ToFloat64(metrics.InterceptorRuns.WithLabelValues("ping", metrics.OutcomeFailed))).To(Equal(before + 1))
		})

		It("recovers from a panicking interceptor", func() {
			panicking := Interceptor{
				Name: "panics",
				Intercept: func(context.Context, github.Client, GitOps, PRContext, *Event) error {
					panic("nil map")
				},
			}
			d := newDispatcher(panicking, recorder("ping", CommandPing, &calls, nil))

			var result Result
			Expect(func() { result = d.Dispatch(ctx, event, gh, nil) }).NotTo(Panic())

			Expect(result.Failed).To(Equal([]string{"panics"}))
			Expect(calls).To(Equal([]string{"ping"}))
			Expect(gh.Comments()).To(HaveLen(1))
			Expect(gh.Comments()[0].Details.Body).To(Equal("panic: nil map"))
		})

		It("fails the check run of an interceptor that panics inside it", func() {
			panicking := Interceptor{
				Name: "panics-in-check-run",
				Intercept: func(ctx context.Context, gh github.Client, _ GitOps, pr PRContext, _ *Event) error {
					opts := github.CheckRunOptions{Owner: pr.Owner, Repo: pr.Repo, Name: "panics-in-check-run", HeadSHA: "abc"}
					return github.WithinCheckRun(ctx, gh, opts, failure.KindNone, func(context.Context, github.CheckRun) error {
						var counts map[string]int
						counts["ping"]++
						return nil
					})
				},
			}
			d := newDispatcher(panicking, recorder("ping", CommandPing, &calls, nil))

			var result Result
			Expect(func() { result = d.Dispatch(ctx, event, gh, nil) }).NotTo(Panic())

			Expect(result.Failed).To(Equal([]string{"panics-in-check-run"}))
			Expect(calls).To(Equal([]string{"ping"}))

			runs := gh.CheckRuns()
			Expect(runs).To(HaveLen(1))
			Expect(runs[0].Conclusions).To(Equal([]github.Conclusion{github.ConclusionFailure}))
			Expect(gh.Comments()).To(HaveLen(1))
		})

		It("continues when the failure comment cannot be posted", func() {
			gh.Errors["CreateDetailsComment"] = errors.New("403 forbidden")
			d := newDispatcher(
				recorder("ping", CommandPing, &calls, errors.New("boom")),
				recorder("after", CommandPing, &calls, nil),
			)

			result := d.Dispatch(ctx, event, gh, nil)

			Expect(result.Failed).To(Equal([]string{"ping"}))
			Expect(calls).To(Equal([]string{"ping", "after"}))
		})
	})
})
