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

package interceptors

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/dummyjson"
	"github.com/mikelane/commandbot/internal/git"
)

// fakeGit seeds cloned workspaces with files and records every operation.
type fakeGit struct {
	mu sync.Mutex

	files     map[string]string
	clean     bool
	cloneErr  error
	commitErr error
	pushErr   error

	clones  []git.CloneOptions
	commits []git.CommitOptions
	pushes  []git.PushOptions
	// committed holds the counter file content at commit time.
	committed []string
}

var _ command.GitOps = (*fakeGit)(nil)

func (f *fakeGit) Clone(_ context.Context, opts git.CloneOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clones = append(f.clones, opts)
	if f.cloneErr != nil {
		return f.cloneErr
	}
	for name, content := range f.files {
		path := filepath.Join(opts.Dir, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeGit) Commit(_ context.Context, opts git.CommitOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits = append(f.commits, opts)
	data, _ := os.ReadFile(filepath.Join(opts.Dir, CounterFileName))
	f.committed = append(f.committed, string(data))
	return f.commitErr
}

func (f *fakeGit) Push(_ context.Context, opts git.PushOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pushes = append(f.pushes, opts)
	return f.pushErr
}

func (f *fakeGit) IsClean(string) (bool, error) {
	return f.clean, nil
}

// fakeDiffer returns a canned result and captures the base document.
type fakeDiffer struct {
	report string
	err    error

	before, after string
	baseContent   string
}

func (f *fakeDiffer) Diff(_ context.Context, before, after string) (string, error) {
	f.before, f.after = before, after
	data, _ := os.ReadFile(before)
	f.baseContent = string(data)
	return f.report, f.err
}

type fakeTodos struct {
	todo *dummyjson.Todo
	err  error
}

func (f *fakeTodos) RandomTodo(context.Context) (*dummyjson.Todo, error) {
	return f.todo, f.err
}

func newEvent(body string) *command.Event {
	return &command.Event{
		Action:        "created",
		Owner:         "mikelane",
		Repo:          "commandbot",
		IssueNumber:   12,
		IsPullRequest: true,
		CommentID:     555,
		Body:          body,
		Sender:        "octocat",
	}
}

var prContext = command.PRContext{Owner: "mikelane", Repo: "commandbot"}
