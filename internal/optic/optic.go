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

// Package optic checks OpenAPI documents for breaking changes with the optic
// CLI.
package optic

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/go-logr/logr"

	"github.com/mikelane/commandbot/internal/failure"
	"github.com/mikelane/commandbot/internal/process"
)

const (
	// DefaultBinary is the optic executable looked up on PATH.
	DefaultBinary = "optic"
	// BreakingChangeMarker appears in optic's output when --check fails on a
	// breaking change.
	BreakingChangeMarker = "This is a breaking change"
)

// rerunHint matches the trailing "Rerun this command ..." advice lines.
var rerunHint = regexp.MustCompile(`(?m)^Rerun this command.*`)

// Checker runs "optic diff <before> <after> --check".
type Checker struct {
	runner process.Runner
	binary string
}

// NewChecker returns a Checker. An empty binary means DefaultBinary.
func NewChecker(runner process.Runner, binary string) *Checker {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Checker{runner: runner, binary: binary}
}

// Diff compares two OpenAPI files. With no breaking changes it returns optic's
// report. When optic reports a breaking change it returns a failure.Error of
// kind failure.KindBreakingChanges carrying the report. Any other failure is
// returned as a plain error.
//
// optic prints its findings on stdout even when it exits non-zero, so stdout
// is the failure payload.
func (c *Checker) Diff(ctx context.Context, before, after string) (string, error) {
	command := fmt.Sprintf("%s diff %s %s --check",
		shellescape.Quote(c.binary), shellescape.Quote(before), shellescape.Quote(after))

	out, err := c.runner.Run(ctx, command, process.WithStdoutOnError())
	if err == nil {
		return clean(out), nil
	}

	var exitErr *process.ExitError
	if errors.As(err, &exitErr) && strings.Contains(exitErr.Output, BreakingChangeMarker) {
		return "", failure.New(failure.KindBreakingChanges, clean(exitErr.Output))
	}

	logr.FromContextOrDiscard(ctx).Error(err, "optic diff failed", "before", before, "after", after)
	return "", fmt.Errorf("optic diff: %w", err)
}

func clean(output string) string {
	return rerunHint.ReplaceAllString(output, "")
}
