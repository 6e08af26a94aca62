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

// Package failure classifies errors that handlers anticipate.
//
// An expected failure is an *Error carrying a Kind tag. Callers ask for the tag
// with KindOf or Is instead of checking concrete types, so the classification
// survives wrapping with fmt.Errorf("...: %w", err).
package failure

import "errors"

// Kind tags an anticipated failure mode.
type Kind string

const (
	// KindNone is the zero Kind; it never matches an error.
	KindNone Kind = ""
	// KindBreakingChanges marks a diff tool run that found breaking changes.
	KindBreakingChanges Kind = "breaking_changes"
)

// Error is an anticipated failure with a human-readable payload.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New returns an *Error of the given kind.
func New(kind Kind, message string) error {
	return &Error{Kind: kind, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain, or KindNone.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindNone
}

// Is reports whether err carries the given kind. KindNone never matches.
func Is(err error, kind Kind) bool {
	return kind != KindNone && KindOf(err) == kind
}
