// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package executor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// applyDuration times a full Apply call (lock acquisition through cache
// invalidation), split by outcome, so a rising p99 on "applied" is
// distinguishable from time spent rolling back a failed one.
var applyDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Name:    "refactorctl_executor_apply_duration_seconds",
	Help:    "Time PlanExecutor.Apply spent from lock acquisition to return.",
	Buckets: prometheus.DefBuckets,
}, []string{"outcome"})

// rollbacksTotal counts how often an Apply failure triggered
// PlanExecutor.rollback, by plan type - a steady trickle is expected
// from precondition races; a spike usually means a planner is emitting
// bad preconditions. A rollback after a failed post-apply validation in
// ApplyWithValidation is not counted here.
var rollbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "refactorctl_executor_rollbacks_total",
	Help: "PlanExecutor.Apply calls that failed after journaling and were rolled back.",
}, []string{"plan_type"})
