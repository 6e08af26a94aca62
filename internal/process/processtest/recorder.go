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

// Package processtest provides a process.Runner test double.
package processtest

import (
	"context"
	"strings"
	"sync"

	"github.com/mikelane/commandbot/internal/process"
)

// Call is one recorded Run invocation.
type Call struct {
	Command string
	process.Settings
}

// RespondFunc decides the result of a recorded command.
type RespondFunc func(command string, settings process.Settings) (string, error)

// Recorder records every command instead of spawning it. It is safe for
// concurrent use.
type Recorder struct {
	// Respond returns the result of each call; nil makes every call succeed
	// with empty output.
	Respond RespondFunc

	mu    sync.Mutex
	calls []Call
}

// Run implements process.Runner.
func (r *Recorder) Run(_ context.Context, command string, opts ...process.Option) (string, error) {
	settings := process.Apply(opts...)

	r.mu.Lock()
	r.calls = append(r.calls, Call{Command: command, Settings: settings})
	respond := r.Respond
	r.mu.Unlock()

	if respond == nil {
		return "", nil
	}
	return respond(command, settings)
}

// Calls returns a copy of the recorded calls.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Commands returns the recorded command lines in order.
func (r *Recorder) Commands() []string {
	calls := r.Calls()
	commands := make([]string, len(calls))
	for i, c := range calls {
		commands[i] = c.Command
	}
	return commands
}

// FailWhen returns a RespondFunc that fails commands containing substr with err
// and lets every other command succeed.
func FailWhen(substr string, err error) RespondFunc {
	return func(command string, _ process.Settings) (string, error) {
		if strings.Contains(command, substr) {
			return "", err
		}
		return "", nil
	}
}
