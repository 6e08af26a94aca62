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

package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/go-logr/logr"
)

// DefaultShell is the interpreter used to run command lines.
const DefaultShell = "/bin/sh"

// Runner executes a single shell command line and returns its stdout.
type Runner interface {
	Run(ctx context.Context, command string, opts ...Option) (string, error)
}

// Option configures a single Run invocation.
type Option func(*Settings)

// Settings is the resolved form of a list of Options.
type Settings struct {
	StdoutOnError bool
	Stdin         string
	HasStdin      bool
	Dir           string
}

// Apply resolves opts in order. Runner implementations and test doubles use it
// to read the options passed to Run.
func Apply(opts ...Option) Settings {
	var s Settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithStdoutOnError makes a non-zero exit report stdout instead of stderr as the
// failure payload. Some tools print their diagnostics on stdout.
func WithStdoutOnError() Option {
	return func(s *Settings) {
		s.StdoutOnError = true
	}
}

// WithStdin feeds the given text to the child process.
func WithStdin(input string) Option {
	return func(s *Settings) {
		s.Stdin = input
		s.HasStdin = true
	}
}

// WithDir runs the command inside dir instead of the current working directory.
func WithDir(dir string) Option {
	return func(s *Settings) {
		s.Dir = dir
	}
}

// ExitError is returned when the command ran but exited with a non-zero code.
// Its message is the selected failure payload.
type ExitError struct {
	Command  string
	ExitCode int
	Output   string
}

func (e *ExitError) Error() string {
	return e.Output
}

// Shell runs command lines through a POSIX shell.
type Shell struct {
	// Path of the shell binary; DefaultShell when empty.
	Path string
	// Env is appended to the inherited environment.
	Env []string
}

// NewShell returns a Shell using DefaultShell.
func NewShell() *Shell {
	return &Shell{Path: DefaultShell}
}

// Run spawns the command and blocks until it exits. Stdout and stderr are
// accumulated independently. A zero exit resolves to stdout; a non-zero exit
// resolves to an *ExitError carrying stderr, or stdout when WithStdoutOnError
// is set. A spawn failure is returned as-is, wrapped with the shell path.
func (s *Shell) Run(ctx context.Context, command string, opts ...Option) (string, error) {
	o := Apply(opts...)

	shell := s.Path
	if shell == "" {
		shell = DefaultShell
	}

	cmd := exec.CommandContext(ctx, shell, "-c", command)
	cmd.Dir = o.Dir
	if len(s.Env) > 0 {
		cmd.Env = append(cmd.Environ(), s.Env...)
	}
	if o.HasStdin {
		cmd.Stdin = strings.NewReader(o.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("spawning %s: %w", shell, err)
	}

	err := cmd.Wait()
	if err == nil {
		return stdout.String(), nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return "", err
	}

	payload := stderr.String()
	if o.StdoutOnError {
		payload = stdout.String()
	}
	logr.FromContextOrDiscard(ctx).V(1).Info("Process exited with non-zero code", "code", exitErr.ExitCode())

	return "", &ExitError{
		Command:  command,
		ExitCode: exitErr.ExitCode(),
		Output:   payload,
	}
}
