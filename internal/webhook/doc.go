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

// Package webhook provides GitHub webhook handling for the command bot.
//
// This package implements an HTTP server that receives GitHub issue_comment
// deliveries and hands accepted comments to an EventHandler.
//
// Key features:
//   - Validates GitHub webhook signatures using HMAC-SHA256
//   - Handles issue_comment events with action "created"
//   - Dispatches asynchronously on a context detached from the request
//   - Provides per-repository rate limiting
//   - Health check and Prometheus metrics endpoints
//
// Webhook Security:
//
// All webhook requests must include a valid X-Hub-Signature-256 header containing
// an HMAC-SHA256 signature computed with the webhook secret. Requests with invalid
// or missing signatures are rejected with HTTP 401.
//
// Responses:
//   - 202: comment accepted and queued for dispatch
//   - 200: signed delivery that is not a created issue comment
//   - 400: unreadable or malformed payload
//   - 401: invalid signature
//   - 429: repository exceeded its rate limit
//
// Rate Limiting:
//
// Requests are rate-limited per repository using a token bucket from
// golang.org/x/time/rate. Buckets are kept in a TTL cache so repositories
// that stop sending deliveries do not accumulate.
//
// Example usage:
//
//	server := webhook.NewServer(webhook.Options{
//		Port:   3000,
//		Secret: cfg.WebhookSecret,
//	}, bot)
//	if err := server.Start(ctx); err != nil {
//		return err
//	}
package webhook
