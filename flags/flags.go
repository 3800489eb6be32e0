/**
 * Copyright (c) 2019, The Artemis Authors.
 *
 * Permission to use, copy, modify, and/or distribute this software for any
 * purpose with or without fee is hereby granted, provided that the above
 * copyright notice and this permission notice appear in all copies.
 *
 * THE SOFTWARE IS PROVIDED "AS IS" AND THE AUTHOR DISCLAIMS ALL WARRANTIES
 * WITH REGARD TO THIS SOFTWARE INCLUDING ALL IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR
 * ANY SPECIAL, DIRECT, INDIRECT, OR CONSEQUENTIAL DAMAGES OR ANY DAMAGES
 * WHATSOEVER RESULTING FROM LOSS OF USE, DATA OR PROFITS, WHETHER IN AN
 * ACTION OF CONTRACT, NEGLIGENCE OR OTHER TORTIOUS ACTION, ARISING OUT OF
 * OR IN CONNECTION WITH THE USE OR PERFORMANCE OF THIS SOFTWARE.
 */

// Package flags implements the feature-flag manager: process-wide immutable state, initialized
// once at startup and never mutated thereafter, passed by reference into every component that
// consults a flag.
package flags

// Flag enumerates the feature flags the execution core recognizes.
type Flag string

// Enumeration of Flag.
const (
	// ExecuteAccessChecks gates whether the policy check runner is consulted at all. This is the
	// single explicit policy toggle (see DESIGN.md); TemporaryBypassAccessCheck is deliberately
	// not modeled as a separate mechanism.
	ExecuteAccessChecks Flag = "EXECUTE_ACCESS_CHECKS"

	// DisableQueryPlanCache forces the selection planner to rebuild a plan on every request
	// instead of consulting rss.PlanCache.
	DisableQueryPlanCache Flag = "DISABLE_QUERY_PLAN_CACHE"

	// KillswitchNonBlockingEnqueueFlush is carried from the source system for fidelity; the core
	// doesn't yet have an enqueue-flush path that would observe it (see DESIGN.md).
	KillswitchNonBlockingEnqueueFlush Flag = "KILLSWITCH_NON_BLOCKING_ENQUEUE_FLUSH"

	// EnableSubqueryExecutionViaHandle gates whether ctx.query/ctx.mutation re-entrancy is
	// permitted at all.
	EnableSubqueryExecutionViaHandle Flag = "ENABLE_SUBQUERY_EXECUTION_VIA_HANDLE"
)

// defaults holds the default value for every recognized flag, "defaults: first
// enabled, others disabled."
var defaults = map[Flag]bool{
	ExecuteAccessChecks:               true,
	DisableQueryPlanCache:             false,
	KillswitchNonBlockingEnqueueFlush: false,
	EnableSubqueryExecutionViaHandle:  false,
}

// Manager resolves a Flag to a boolean. Embedders supply their own implementation (e.g. backed by
// a dynamic config service); it MUST be safe for concurrent use by multiple requests.
type Manager interface {
	Enabled(flag Flag) bool
}

// Static is a Manager backed by an immutable map fixed at construction, suitable for tests and for
// embedders with no dynamic config service. Unset flags resolve to their documented default.
type Static struct {
	overrides map[Flag]bool
}

var _ Manager = Static{}

// NewStatic builds a Static manager. overrides takes precedence over defaults; flags absent from
// overrides resolve to their documented default.
func NewStatic(overrides map[Flag]bool) Static {
	merged := make(map[Flag]bool, len(overrides))
	for k, v := range overrides {
		merged[k] = v
	}
	return Static{overrides: merged}
}

// Enabled implements Manager.
func (s Static) Enabled(flag Flag) bool {
	if v, ok := s.overrides[flag]; ok {
		return v
	}
	return defaults[flag]
}

// Defaults returns a Manager resolving every flag to its documented default.
func Defaults() Manager {
	return NewStatic(nil)
}
