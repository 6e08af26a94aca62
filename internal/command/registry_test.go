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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/mikelane/commandbot/internal/github"
)

func noop(context.Context, github.Client, GitOps, PRContext, *Event) error { return nil }

func TestNewRegistry(t *testing.T) {
	tests := []struct {
		name         string
		interceptors []Interceptor
		wantErr      bool
		wantNames    []string
	}{
		{
			name:         "keeps registration order",
			interceptors: []Interceptor{{Name: "b", Intercept: noop}, {Name: "a", Intercept: noop}},
			wantNames:    []string{"b", "a"},
		},
		{
			name:      "empty registry is valid",
			wantNames: []string{},
		},
		{
			name:         "rejects empty name",
			interceptors: []Interceptor{{Intercept: noop}},
			wantErr:      true,
		},
		{
			name:         "rejects nil function",
			interceptors: []Interceptor{{Name: "ping"}},
			wantErr:      true,
		},
		{
			name:         "rejects duplicates",
			interceptors: []Interceptor{{Name: "ping", Intercept: noop}, {Name: "ping", Intercept: noop}},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := NewRegistry(tt.interceptors...)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewRegistry() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewRegistry() unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.wantNames, registry.Names()); diff != "" {
				t.Errorf("Names() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRegistry_IsImmutable(t *testing.T) {
	interceptors := []Interceptor{{Name: "ping", Intercept: noop}}
	registry, err := NewRegistry(interceptors...)
	if err != nil {
		t.Fatalf("NewRegistry() unexpected error: %v", err)
	}

	interceptors[0].Name = "mutated"
	registry.Interceptors()[0].Name = "mutated"

	if got := registry.Names(); got[0] != "ping" {
		t.Errorf("registry changed after mutation of inputs: %v", got)
	}
}

func TestEvent_Matches(t *testing.T) {
	tests := []struct {
		body string
		want bool
	}{
		{body: "command ping", want: true},
		{body: "\n\tcommand ping  ", want: true},
		{body: "Command ping", want: false},
		{body: "command ping please", want: false},
		{body: "", want: false},
	}

	for _, tt := range tests {
		if got := (&Event{Body: tt.body}).Matches(CommandPing); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.body, got, tt.want)
		}
	}
}
