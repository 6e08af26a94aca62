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
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/metrics"
)

// recordingClient records check run calls and fails on demand
type recordingClient struct {
	Client

	createErr   error
	completeErr error

	created     []string // external ids
	completions []Conclusion
}

func (c *recordingClient) CreateCheckRun(_ context.Context, _ CheckRunOptions, externalID string) (int64, error) {
	if c.createErr != nil {
		return 0, c.createErr
	}
	c.created = append(c.created, externalID)
	return 99, nil
}

func (c *recordingClient) CompleteCheckRun(_ context.Context, _ CheckRunOptions, id int64, conclusion Conclusion) error {
	if id != 99 {
		return fmt.Errorf("unexpected check run id %d", id)
	}
	c.completions = append(c.completions, conclusion)
	return c.completeErr
}

func TestWithinCheckRun(t *testing.T) {
	breaking := failure.New(failure.KindBreakingChanges, "This is a breaking change")
	generic := errors.New("optic crashed")

	tests := []struct {
		name           string
		expected       failure.Kind
		fnErr          error
		wantErr        error
		wantConclusion Conclusion
	}{
		{
			name:           "Success completes with success",
			wantConclusion: ConclusionSuccess,
		},
		{
			name:           "Expected kind is swallowed after failing the run",
			expected:       failure.KindBreakingChanges,
			fnErr:          fmt.Errorf("diff: %w", breaking),
			wantConclusion: ConclusionFailure,
		},
		{
			name:           "Other errors are returned after failing the run",
			expected:       failure.KindBreakingChanges,
			fnErr:          generic,
			wantErr:        generic,
			wantConclusion: ConclusionFailure,
		},
		{
			name:           "Tagged error without expected kind is returned",
			expected:       failure.KindNone,
			fnErr:          breaking,
			wantErr:        breaking,
			wantConclusion: ConclusionFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &recordingClient{}
			opts := CheckRunOptions{Owner: "o", Repo: "r", Name: "within-" + tt.name, HeadSHA: "abc"}

			var seen CheckRun
			err := WithinCheckRun(context.Background(), client, opts, tt.expected, func(_ context.Context, run CheckRun) error {
				seen = run
				return tt.fnErr
			})

			if tt.wantErr == nil && err != nil {
				t.Errorf("WithinCheckRun() unexpected error: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("WithinCheckRun() error = %v, want %v", err, tt.wantErr)
			}
			if len(client.created) != 1 {
				t.Fatalf("created %d check runs, want 1", len(client.created))
			}
			if len(client.completions) != 1 || client.completions[0] != tt.wantConclusion {
				t.Errorf("completions = %v, want [%s]", client.completions, tt.wantConclusion)
			}
			if seen.ID != 99 || seen.ExternalID != client.created[0] || seen.ExternalID == "" {
				t.Errorf("fn received %+v, want id 99 and external id %q", seen, client.created[0])
			}
			if got := testutil.ToFloat64(metrics.CheckRuns.WithLabelValues(opts.Name, string(tt.wantConclusion))); got != 1 {
				t.Errorf("check run metric = %v, want 1", got)
			}
		})
	}
}

func TestWithinCheckRun_PanicFailsRunOnce(t *testing.T) {
	client := &recordingClient{}
	opts := CheckRunOptions{Owner: "o", Repo: "r", Name: "within-panics", HeadSHA: "abc"}

	func() {
		defer func() {
			if r := recover(); r != "assignment to entry in nil map" {
				t.Errorf("recovered %v, want the panic from fn", r)
			}
		}()
		_ = WithinCheckRun(context.Background(), client, opts, failure.KindNone, func(context.Context, CheckRun) error {
			panic("assignment to entry in nil map")
		})
	}()

	if len(client.completions) != 1 || client.completions[0] != ConclusionFailure {
		t.Errorf("completions = %v, want [%s]", client.completions, ConclusionFailure)
	}
	if got := testutil.ToFloat64(metrics.CheckRuns.WithLabelValues(opts.Name, string(ConclusionFailure))); got != 1 {
		t.Errorf("check run metric = %v, want 1", got)
	}
}

func TestWithinCheckRun_PanicWithFailedUpdateStillPropagates(t *testing.T) {
	client := &recordingClient{completeErr: errors.New("502 bad gateway")}

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = WithinCheckRun(context.Background(), client, CheckRunOptions{Name: "panic-update-fails"}, failure.KindNone, func(context.Context, CheckRun) error {
			panic("boom")
		})
	}()

	if len(client.completions) != 1 {
		t.Errorf("completions = %v, want exactly one update", client.completions)
	}
}

func TestWithinCheckRun_CreateFailureSkipsFn(t *testing.T) {
	createErr := errors.New("403 resource not accessible by integration")
	client := &recordingClient{createErr: createErr}

	called := false
	err := WithinCheckRun(context.Background(), client, CheckRunOptions{Name: "create-fails"}, failure.KindNone, func(context.Context, CheckRun) error {
		called = true
		return nil
	})

	if !errors.Is(err, createErr) {
		t.Errorf("WithinCheckRun() error = %v, want %v", err, createErr)
	}
	if called {
		t.Error("fn invoked although the check run was not created")
	}
	if len(client.completions) != 0 {
		t.Errorf("completions = %v, want none", client.completions)
	}
}

func TestWithinCheckRun_SuccessUpdateFailureIsNotRetriedAsFailure(t *testing.T) {
	updateErr := errors.New("502 bad gateway")
	client := &recordingClient{completeErr: updateErr}

	err := WithinCheckRun(context.Background(), client, CheckRunOptions{Name: "update-fails"}, failure.KindNone, func(context.Context, CheckRun) error {
		return nil
	})

	if !errors.Is(err, updateErr) {
		t.Errorf("WithinCheckRun() error = %v, want %v", err, updateErr)
	}
	if len(client.completions) != 1 {
		t.Errorf("completions = %v, want exactly one update", client.completions)
	}
}

func TestWithinCheckRun_FailureUpdateErrorKeepsOriginal(t *testing.T) {
	fnErr := errors.New("push rejected")
	client := &recordingClient{completeErr: errors.New("502 bad gateway")}

	err := WithinCheckRun(context.Background(), client, CheckRunOptions{Name: "both-fail"}, failure.KindNone, func(context.Context, CheckRun) error {
		return fnErr
	})

	if !errors.Is(err, fnErr) {
		t.Errorf("WithinCheckRun() error = %v, want it to wrap %v", err, fnErr)
	}
}

func TestFormatDetails(t *testing.T) {
	got := FormatDetails(DetailsComment{
		Header: "Breaking Changes detected!",
		Title:  "Optic Result",
		Body:   "removed GET /todos",
		Footer: "You will need to address the issues stated above before being able to merge this PR!",
	})
	want := "Breaking Changes detected! <details>\n<summary>Optic Result</summary>\n\n```\nremoved GET /todos\n```\n\n</details> \n\n " +
		"You will need to address the issues stated above before being able to merge this PR!"
	if got != want {
		t.Errorf("FormatDetails() = %q, want %q", got, want)
	}
}
