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

package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/go-github/v66/github"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mikelane/commandbot/internal/command"
	"github.com/mikelane/commandbot/internal/metrics"
)

const (
	// DefaultPath is where GitHub delivers webhooks unless configured otherwise
	DefaultPath = "/api/github/webhooks"

	eventIssueComment = "issue_comment"
	actionCreated     = "created"

	// maxPayloadBytes is GitHub's documented upper bound for a delivery
	maxPayloadBytes = 25 << 20

	shutdownTimeout = 30 * time.Second
)

// EventHandler processes an accepted issue comment delivery
type EventHandler interface {
	HandleIssueComment(ctx context.Context, event *command.Event) error
}

// Options configures a Server
type Options struct {
	Addr   string
	Port   int
	Path   string
	Secret string
	// RatePerSecond and Burst bound deliveries per repository
	RatePerSecond float64
	Burst         int
}

// Server handles GitHub webhook requests
type Server struct {
	addr          string
	port          int
	path          string
	webhookSecret string
	handler       EventHandler
	server        *http.Server
	rateLimiter   *RateLimiter

	inflight sync.WaitGroup
}

// NewServer creates a new webhook server
func NewServer(opts Options, handler EventHandler) *Server {
	path := opts.Path
	if path == "" {
		path = DefaultPath
	}
	perSecond := opts.RatePerSecond
	if perSecond <= 0 {
		perSecond = 10
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = int(perSecond)
	}

	return &Server{
		addr:          opts.Addr,
		port:          opts.Port,
		path:          path,
		webhookSecret: opts.Secret,
		handler:       handler,
		rateLimiter:   NewRateLimiter(perSecond, burst),
	}
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

// Start serves until ctx is cancelled, then shuts down gracefully. The
// logger in ctx is inherited by every request.
func (s *Server) Start(ctx context.Context) error {
	logger := logr.FromContextOrDiscard(ctx)

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.addr, strconv.Itoa(s.port)),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return logr.NewContext(context.Background(), logger)
		},
	}

	evictCtx, stopEvict := context.WithCancel(ctx)
	defer stopEvict()
	go s.rateLimiter.Run(evictCtx, time.Minute)

	errChan := make(chan error, 1)
	go func() {
		logger.Info("Starting webhook server", "addr", s.server.Addr, "path", s.path)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting requests and waits for in-flight dispatches
func (s *Server) Shutdown(ctx context.Context) error {
	logr.FromContextOrDiscard(ctx).Info("Shutting down webhook server")

	var err error
	if s.server != nil {
		err = s.server.Shutdown(ctx)
	}

	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return errors.Join(err, fmt.Errorf("waiting for dispatches: %w", ctx.Err()))
	}
	return err
}

// Wait blocks until every dispatched delivery has been handled
func (s *Server) Wait() {
	s.inflight.Wait()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleWebhook validates a delivery and dispatches accepted issue comments
// asynchronously
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	logger := logr.FromContextOrDiscard(r.Context()).WithValues("delivery", github.DeliveryID(r))

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	eventType := github.WebHookType(r)

	signature := r.Header.Get(github.SHA256SignatureHeader)
	if !ValidateSignature(payload, signature, s.webhookSecret) {
		logger.Info("Invalid webhook signature")
		metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeRejected).Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if eventType != eventIssueComment {
		logger.V(1).Info("Ignoring event", "event", eventType)
		metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeIgnored).Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	parsed, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		logger.Error(err, "Failed to parse payload")
		metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeRejected).Inc()
		http.Error(w, "Invalid JSON", http.StatusBadRequest)
		return
	}
	ev, ok := parsed.(*github.IssueCommentEvent)
	if !ok {
		http.Error(w, "Unexpected payload", http.StatusBadRequest)
		return
	}

	if ev.GetAction() != actionCreated {
		logger.V(1).Info("Ignoring comment action", "action", ev.GetAction())
		metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeIgnored).Inc()
		w.WriteHeader(http.StatusOK)
		return
	}

	repo := ev.GetRepo().GetFullName()
	if !s.rateLimiter.Allow(repo) {
		logger.Info("Rate limit exceeded", "repository", repo)
		metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeRejected).Inc()
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	event := toCommandEvent(github.DeliveryID(r), ev)
	ctx := context.WithoutCancel(r.Context())

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.handler.HandleIssueComment(ctx, event); err != nil {
			logger.Error(err, "Failed to handle issue comment", "repository", repo, "issue", event.IssueNumber)
		}
	}()

	metrics.WebhookDeliveries.WithLabelValues(eventType, metrics.OutcomeAccepted).Inc()
	w.WriteHeader(http.StatusAccepted)
}

// toCommandEvent copies the fields interceptors need out of the payload
func toCommandEvent(deliveryID string, ev *github.IssueCommentEvent) *command.Event {
	issue := ev.GetIssue()
	return &command.Event{
		DeliveryID:    deliveryID,
		Action:        ev.GetAction(),
		Owner:         ev.GetRepo().GetOwner().GetLogin(),
		Repo:          ev.GetRepo().GetName(),
		IssueNumber:   issue.GetNumber(),
		IsPullRequest: issue != nil && issue.IsPullRequest(),
		CommentID:     ev.GetComment().GetID(),
		Body:          ev.GetComment().GetBody(),
		Sender:        ev.GetSender().GetLogin(),
	}
}
