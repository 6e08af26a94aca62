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
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/metrics"
)

// WithinCheckRun runs fn between the creation and the completion of a check run.
//
// The check run is created in progress with a fresh correlation id. When fn
// returns nil it is completed with success, otherwise with failure. It is
// completed exactly once, including when fn panics; the panic is then
// re-raised after the failure is recorded. If creating the check run fails, fn
// is not called.
//
// An error from fn is returned to the caller unless expected is not
// failure.KindNone and the error carries that kind, in which case the check
// run fails and WithinCheckRun returns nil.
func WithinCheckRun(ctx context.Context, c Client, opts CheckRunOptions, expected failure.Kind, fn func(ctx context.Context, run CheckRun) error) error {
	logger := logr.FromContextOrDiscard(ctx).WithValues("checkRun", opts.Name, "headSHA", opts.HeadSHA)

	run := CheckRun{ExternalID: uuid.NewString()}
	id, err := c.CreateCheckRun(ctx, opts, run.ExternalID)
	if err != nil {
		return err
	}
	run.ID = id
	logger = logger.WithValues("checkRunID", id, "externalID", run.ExternalID)
	logger.V(1).Info("Check run started")

	completed := false
	defer func() {
		if completed {
			return
		}
		if r := recover(); r != nil {
			logger.Info("Check run failed", "reason", fmt.Sprintf("panic: %v", r))
			if err := c.CompleteCheckRun(ctx, opts, id, ConclusionFailure); err != nil {
				logger.Error(err, "Failed to mark check run failed")
			} else {
				metrics.CheckRuns.WithLabelValues(opts.Name, string(ConclusionFailure)).Inc()
			}
			panic(r)
		}
	}()

	fnErr := fn(ctx, run)
	completed = true
	if fnErr == nil {
		if err := c.CompleteCheckRun(ctx, opts, id, ConclusionSuccess); err != nil {
			return err
		}
		metrics.CheckRuns.WithLabelValues(opts.Name, string(ConclusionSuccess)).Inc()
		logger.V(1).Info("Check run succeeded")
		return nil
	}

	logger.Info("Check run failed", "reason", fnErr.Error())
	if err := c.CompleteCheckRun(ctx, opts, id, ConclusionFailure); err != nil {
		return fmt.Errorf("%w (marking check run failed: %v)", fnErr, err)
	}
	metrics.CheckRuns.WithLabelValues(opts.Name, string(ConclusionFailure)).Inc()

	if failure.Is(fnErr, expected) {
		return nil
	}
	return fnErr
}
