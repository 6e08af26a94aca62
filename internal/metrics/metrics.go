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

// Package metrics holds the Prometheus collectors exported by the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// OutcomeOK labels a run that completed without error.
	OutcomeOK = "ok"
	// OutcomeFailed labels a run that returned an error or panicked.
	OutcomeFailed = "failed"
	// OutcomeIgnored labels a delivery that was accepted but not processed.
	OutcomeIgnored = "ignored"
	// OutcomeRejected labels a delivery refused by the server.
	OutcomeRejected = "rejected"
	// OutcomeAccepted labels a delivery queued for dispatch.
	OutcomeAccepted = "accepted"
)

var (
	// WebhookDeliveries counts inbound webhook deliveries by event and outcome.
	WebhookDeliveries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commandbot_webhook_deliveries_total",
			Help: "Total number of webhook deliveries received",
		},
		[]string{"event", "outcome"},
	)

	// InterceptorRuns counts interceptor invocations by name and outcome.
	InterceptorRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commandbot_interceptor_runs_total",
			Help: "Total number of interceptor invocations",
		},
		[]string{"interceptor", "outcome"},
	)

	// CheckRuns counts completed check runs by name and conclusion.
	CheckRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commandbot_check_runs_total",
			Help: "Total number of check runs completed",
		},
		[]string{"name", "conclusion"},
	)

	// WorkspacesActive tracks scoped workspaces currently on disk.
	WorkspacesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "commandbot_workspaces_active",
			Help: "Number of scoped workspaces currently in use",
		},
	)
)
