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
	"errors"
	"fmt"
)

// Registry is an immutable ordered list of interceptors
type Registry struct {
	interceptors []Interceptor
}

// NewRegistry validates interceptors and returns a registry that runs them in
// the given order. Names must be non-empty and unique and functions non-nil.
func NewRegistry(interceptors ...Interceptor) (*Registry, error) {
	seen := make(map[string]struct{}, len(interceptors))
	var errs []error
	for i, ic := range interceptors {
		switch {
		case ic.Name == "":
			errs = append(errs, fmt.Errorf("interceptor %d: name is required", i))
		case ic.Intercept == nil:
			errs = append(errs, fmt.Errorf("interceptor %q: function is required", ic.Name))
		}
		if ic.Name == "" {
			continue
		}
		if _, dup := seen[ic.Name]; dup {
			errs = append(errs, fmt.Errorf("interceptor %q: registered twice", ic.Name))
		}
		seen[ic.Name] = struct{}{}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return &Registry{interceptors: append([]Interceptor(nil), interceptors...)}, nil
}

// Interceptors returns a copy of the registered interceptors in order
func (r *Registry) Interceptors() []Interceptor {
	return append([]Interceptor(nil), r.interceptors...)
}

// Names returns the interceptor names in order
func (r *Registry) Names() []string {
	names := make([]string, len(r.interceptors))
	for i, ic := range r.interceptors {
		names[i] = ic.Name
	}
	return names
}
