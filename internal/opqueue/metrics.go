// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package opqueue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// pendingOperations tracks Stats().Pending as a gauge, so a scrape sees
// backpressure building in real time rather than only at the next
// tools/call response.
var pendingOperations = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "refactorctl_opqueue_pending_operations",
	Help: "Operations enqueued but not yet completed or failed.",
})

// operationDuration buckets how long an operation spent queued plus
// executing, split by kind and outcome so a sustained rise in
// completed-but-slow write operations is distinguishable from a rise in
// failures.
var operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "refactorctl_opqueue_operation_duration_seconds",
	Help:    "Time an operation spent queued plus executing, from Enqueue to completion.",
	Buckets: prometheus.DefBuckets,
}, []string{"kind", "outcome"})
