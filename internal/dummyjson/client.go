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

// Package dummyjson is a client for the dummyjson.com sample data service.
package dummyjson

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/tidwall/pretty"
)

// DefaultBaseURL is the public dummyjson endpoint.
const DefaultBaseURL = "https://dummyjson.com"

// maxBody caps how much of a response is read.
const maxBody = 1 << 20

// Todo is a sample task.
type Todo struct {
	ID        int    `json:"id"`
	Todo      string `json:"todo"`
	Completed bool   `json:"completed"`
	UserID    int    `json:"userId"`

	// Raw is the response body as received.
	Raw json.RawMessage `json:"-"`
}

// Indented renders the response body with two-space indentation.
func (t *Todo) Indented() string {
	return strings.TrimRight(string(pretty.PrettyOptions(t.Raw, &pretty.Options{Indent: "  "})), "\n")
}

// Client fetches data from dummyjson.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for baseURL. An empty baseURL means
// DefaultBaseURL and a nil httpClient a pooled client with sane timeouts.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = cleanhttp.DefaultPooledClient()
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    httpClient,
	}
}

// RandomTodo fetches a random task.
func (c *Client) RandomTodo(ctx context.Context) (*Todo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/todos/random", nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching random todo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("reading random todo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching random todo: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	todo := &Todo{Raw: body}
	if err := json.Unmarshal(body, todo); err != nil {
		return nil, fmt.Errorf("decoding random todo: %w", err)
	}
	return todo, nil
}
