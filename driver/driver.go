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

// Package driver implements the top-level execution driver: root selection -> plan ->
// dispatch -> assembled spec-compliant result, plus the subquery/submutation re-entry point resolvers reach
// through their contexts.
//
// Concurrency model: within a request many fields execute concurrently as goroutines --
// Go's runtime parks a goroutine on a channel receive without blocking an OS thread, so awaiting
// an OER entry, a batch tick, or a subquery never pins a platform thread. Batch tick boundaries
// are detected by a per-frame quiescence monitor: when every in-flight field of a frame is parked
// and at least one batch slot is queued, the frame's coalescers flush (one tick). A re-entrant
// subquery opens a new tick frame of its own.
package driver

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/viaduct-dev/viaduct/concurrent"
	"github.com/viaduct-dev/viaduct/dispatch"
	"github.com/viaduct-dev/viaduct/errs"
	"github.com/viaduct-dev/viaduct/flags"
	"github.com/viaduct-dev/viaduct/instrumentation"
	"github.com/viaduct-dev/viaduct/oer"
	"github.com/viaduct-dev/viaduct/policy"
	"github.com/viaduct-dev/viaduct/rss"
	"github.com/viaduct-dev/viaduct/schema"
	"github.com/viaduct-dev/viaduct/scopefilter"
)

// ResolverErrorBuilder converts a resolver-raised error into GraphQL error objects. Returning an
// empty slice applies the default mapping: message copied, path inferred from the planned field.
type ResolverErrorBuilder interface {
	BuildErrors(err error, info *instrumentation.FieldInfo) []*GraphQLError
}

// Config assembles a Driver's collaborators. Schema and Registry are required; everything else
// has a default.
type Config struct {
	// Schema is the central schema.
	Schema *schema.CentralSchema

	// Registry is the startup-populated resolver/checker dispatch table.
	Registry *dispatch.Registry

	// Provider constructs resolver instances per invocation. Defaults to dispatch.DefaultProvider.
	Provider dispatch.Provider

	// Flags resolves feature flags. Defaults to flags.Defaults().
	Flags flags.Manager

	// Instrumentations observe execution; composed into one chain.
	Instrumentations []instrumentation.Instrumentation

	// ErrorReporter receives resolver-raised errors before conversion. Defaults to a no-op.
	ErrorReporter instrumentation.ErrorReporter

	// ErrorBuilder converts resolver errors to GraphQL errors. Nil applies the default mapping.
	ErrorBuilder ResolverErrorBuilder

	// PlanCacheSize bounds the LRU plan cache; 0 picks a default. The cache is additionally gated
	// by flags.DisableQueryPlanCache per request.
	PlanCacheSize uint

	// Pool, when non-nil, is the shared executor batch-load jobs are submitted to.
	Pool concurrent.Executor
}

// Driver executes operations against one central schema.
type Driver struct {
	central  *schema.CentralSchema
	filter   *scopefilter.Filter
	planner  *rss.Planner
	registry *dispatch.Registry
	provider dispatch.Provider
	flags    flags.Manager
	instr    instrumentation.Instrumentation
	reporter instrumentation.ErrorReporter
	builder  ResolverErrorBuilder
	runner   *policy.Runner
	pool     concurrent.Executor
}

// New builds a Driver from config.
func New(config Config) (*Driver, error) {
	if config.Schema == nil {
		return nil, errs.New("driver.New", errs.KindInternal, "central schema is required")
	}
	if config.Registry == nil {
		return nil, errs.New("driver.New", errs.KindInternal, "resolver registry is required")
	}

	provider := config.Provider
	if provider == nil {
		provider = dispatch.DefaultProvider{}
	}
	flagManager := config.Flags
	if flagManager == nil {
		flagManager = flags.Defaults()
	}
	reporter := config.ErrorReporter
	if reporter == nil {
		reporter = instrumentation.NopErrorReporter{}
	}

	cacheSize := config.PlanCacheSize
	if cacheSize == 0 {
		cacheSize = 512
	}
	planCache, err := rss.NewLRUPlanCache(cacheSize)
	if err != nil {
		return nil, err
	}

	filter := scopefilter.NewFilter(config.Schema)
	return &Driver{
		central:  config.Schema,
		filter:   filter,
		planner:  rss.NewPlanner(filter, config.Registry, planCache, flagManager),
		registry: config.Registry,
		provider: provider,
		flags:    flagManager,
		instr:    instrumentation.Chain(config.Instrumentations),
		reporter: reporter,
		builder:  config.ErrorBuilder,
		runner:   policy.NewRunner(flagManager),
		pool:     config.Pool,
	}, nil
}

// Execute runs one top-level operation under the schema identified by schemaID.
func (d *Driver) Execute(goctx context.Context, input ExecutionInput, schemaID scopefilter.SchemaID) *ExecutionResult {
	if err := input.Normalize(); err != nil {
		return failedResult(err)
	}

	opInfo := &instrumentation.OperationInfo{
		OperationID: input.OperationID,
		ExecutionID: input.ExecutionID,
		SchemaID:    schemaID.String(),
	}
	endOperation := d.instr.OperationBegin(goctx, opInfo)

	endPlan := d.instr.PlanBegin(goctx, opInfo)
	plan, err := d.planner.Plan(input.OperationText, input.OperationName, schemaID)
	endPlan(err)
	if err != nil {
		endOperation(err)
		return failedResult(err)
	}
	opInfo.Operation = plan.Operation.String()

	view, err := d.filter.View(schemaID)
	if err != nil {
		endOperation(err)
		return failedResult(err)
	}

	variables, err := rss.CoerceVariableValues(view, plan.VariableDefinitions, input.Variables)
	if err != nil {
		endOperation(err)
		return failedResult(err)
	}

	req := &request{
		driver:         d,
		view:           view,
		schemaID:       schemaID,
		graph:          oer.NewGraph(plan.RootType),
		requestContext: input.RequestContext,
		rootNodes:      map[rss.OperationKind]*oer.Node{},
	}
	req.rootNodes[plan.Operation] = req.graph.Root()

	// Cancel pending work when the embedder's context is cancelled.
	if goctx.Done() != nil {
		watchDone := make(chan struct{})
		defer close(watchDone)
		go func() {
			select {
			case <-goctx.Done():
				req.graph.Cancel(goctx.Err())
			case <-watchDone:
			}
		}()
	}

	frame := req.newFrame(goctx)
	st := &execState{req: req, frame: frame, vars: variables}
	serial := plan.Operation == rss.MutationOperation
	req.runSelections(st, goctx, req.graph.Root(), plan.Selections, view.FilteredSchema(), nil, serial, serial)
	frame.wait()

	result := req.buildResult(plan)
	endOperation(nil)
	return result
}

// failedResult renders a request-level failure: null data, a single top-level error.
func failedResult(err error) *ExecutionResult {
	return &ExecutionResult{
		Errors: []*GraphQLError{{Message: err.Error()}},
	}
}

// request is the per-request execution state shared by the main operation and every re-entry.
type request struct {
	driver         *Driver
	view           *scopefilter.View
	schemaID       scopefilter.SchemaID
	graph          *oer.Graph
	requestContext interface{}

	// rootNodes hold one OER node per operation root so subqueries and submutations share
	// deduplication with the main operation.
	rootMu    sync.Mutex
	rootNodes map[rss.OperationKind]*oer.Node
}

// rootNode returns (allocating on first use) the shared OER node for an operation root.
func (r *request) rootNode(kind rss.OperationKind, typeName string) *oer.Node {
	r.rootMu.Lock()
	defer r.rootMu.Unlock()
	if node, ok := r.rootNodes[kind]; ok {
		return node
	}
	node := r.graph.NewNode(typeName)
	r.rootNodes[kind] = node
	return node
}

// execState threads the variable scope and tick frame through one selection-set execution.
type execState struct {
	req   *request
	frame *frame
	vars  schema.VariableValues
}

// frame is one tick frame: a quiescence-monitored group of field executions whose batch slots
// flush together. Subqueries open frames of their own.
type frame struct {
	req        *request
	goctx      context.Context
	coalescers *dispatch.Coalescers

	mu       sync.Mutex
	cond     *sync.Cond
	inflight int
	parked   int
	closed   bool
}

// newFrame creates a frame and starts its tick monitor.
func (r *request) newFrame(goctx context.Context) *frame {
	f := &frame{
		req:        r,
		goctx:      goctx,
		coalescers: dispatch.NewCoalescers(r.driver.provider, r.driver.pool),
	}
	f.cond = sync.NewCond(&f.mu)
	go f.monitor()
	return f
}

// monitor flushes the frame's coalescers whenever the frame quiesces: every in-flight field is
// parked and at least one batch slot is queued. That boundary is the tick: sibling resolutions
// queued before it are delivered to batchResolve together.
func (f *frame) monitor() {
	f.mu.Lock()
	for {
		for !f.closed && !(f.inflight == f.parked && f.coalescers.Parked() > 0) {
			f.cond.Wait()
		}
		if f.closed {
			f.mu.Unlock()
			return
		}
		f.mu.Unlock()
		f.coalescers.Flush(f.goctx)
		f.mu.Lock()
	}
}

// add counts a field execution into the frame.
func (f *frame) add() {
	f.mu.Lock()
	f.inflight++
	f.mu.Unlock()
}

// done retires a field execution.
func (f *frame) done() {
	f.mu.Lock()
	f.inflight--
	f.cond.Broadcast()
	f.mu.Unlock()
}

// park runs wait while marking the calling field execution as suspended, letting the monitor
// treat it as quiescent. Used around every suspension point: OER awaits, batch slots, subqueries.
func (f *frame) park(wait func() (interface{}, error)) (interface{}, error) {
	f.mu.Lock()
	f.parked++
	f.cond.Broadcast()
	f.mu.Unlock()

	value, err := wait()

	f.mu.Lock()
	f.parked--
	f.mu.Unlock()
	return value, err
}

// kick reevaluates the monitor condition; called after enqueuing a batch slot.
func (f *frame) kick() {
	f.mu.Lock()
	f.cond.Broadcast()
	f.mu.Unlock()
}

// wait blocks until every field execution of the frame retired, then stops the monitor.
func (f *frame) wait() {
	f.mu.Lock()
	for f.inflight != 0 {
		f.cond.Wait()
	}
	f.closed = true
	f.cond.Broadcast()
	f.mu.Unlock()
}

// runSelections dispatches every planned field of set against node. serial executes fields one at
// a time in textual order, awaiting each field's resolver completion before starting the next
// (mutation semantics); concurrent mode spawns one execution per field within the frame's tick.
func (r *request) runSelections(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	set *rss.PlannedSelectionSet,
	source interface{},
	path []interface{},
	serial bool,
	mutationRoot bool) {

	fields := effectiveFields(r.view, node, set)
	for _, field := range fields {
		field := field
		if serial {
			// The executing goroutine joins the frame for the duration of the dispatch so its
			// suspension points participate in tick detection.
			st.frame.add()
			handle := r.dispatchField(st, goctx, node, field, source, path, mutationRoot)
			st.frame.done()
			// Serialize: field N's resolver completes before field N+1 begins. A zero handle means
			// the field was skipped by a directive.
			if handle != (oer.Handle{}) {
				handle.Await(goctx)
			}
			continue
		}
		st.frame.add()
		go func() {
			defer st.frame.done()
			r.dispatchField(st, goctx, node, field, source, path, mutationRoot)
		}()
	}
}

// effectiveFields merges a set's unconditional fields with the conditional groups matching the
// node's concrete type, preserving textual order and response-key uniqueness.
func effectiveFields(view *scopefilter.View, node *oer.Node, set *rss.PlannedSelectionSet) []*rss.PlannedField {
	if len(set.Conditional) == 0 {
		return set.Fields
	}

	concrete := node.TypeName()
	result := make([]*rss.PlannedField, 0, len(set.Fields))
	seen := map[string]bool{}
	for _, field := range set.Fields {
		result = append(result, field)
		seen[field.Alias] = true
	}
	for _, group := range set.Conditional {
		if !conditionMatches(view, group.TypeCondition, concrete) {
			continue
		}
		for _, field := range group.Selections.Fields {
			if seen[field.Alias] {
				continue
			}
			seen[field.Alias] = true
			result = append(result, field)
		}
	}
	return result
}

// conditionMatches reports whether a fragment type condition applies to a concrete object type:
// exact match, or the condition names an abstract type the concrete type satisfies.
func conditionMatches(view *scopefilter.View, condition, concrete string) bool {
	if condition == concrete {
		return true
	}
	conditionType := view.LookupType(condition)
	abstract, ok := conditionType.(schema.AbstractType)
	if !ok {
		return false
	}
	for _, member := range view.PossibleTypes(abstract) {
		if member.Name() == concrete {
			return true
		}
	}
	return false
}

// dispatchField resolves one planned field against node, returning the entry handle. When the
// entry already exists the call attaches to it without re-invoking the resolver (deduplication).
func (r *request) dispatchField(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	field *rss.PlannedField,
	source interface{},
	path []interface{},
	mutationRoot bool) oer.Handle {

	if skipField(field, st.vars) {
		return oer.Handle{}
	}

	fieldPath := appendPath(path, field.Alias)

	args, argErr := rss.CoerceArgumentValues(r.view, field, st.vars)

	key := oer.Key{Field: field.Name, Arguments: oer.FingerprintArguments(args)}
	node.BindAlias(field.Alias, key)
	started, handle := node.GetOrStart(key)
	if !started {
		return handle
	}

	if argErr != nil {
		node.CompleteError(key, attachPath(argErr, fieldPath))
		return handle
	}

	r.resolveField(st, goctx, node, field, key, args, source, fieldPath, mutationRoot)
	return handle
}

// skipField evaluates a field's @skip / @include conditions against the request's variables. A
// skipped field binds no alias, so the snapshot omits its response key entirely.
func skipField(field *rss.PlannedField, variables schema.VariableValues) bool {
	condition := func(lit *schema.Literal) (bool, bool) {
		if lit == nil {
			return false, false
		}
		switch lit.Kind {
		case schema.LiteralBoolean:
			value, _ := lit.Raw.(bool)
			return value, true
		case schema.LiteralVariable:
			value, ok := variables.Lookup(lit.VariableName)
			if !ok {
				return false, false
			}
			flagValue, _ := value.(bool)
			return flagValue, true
		}
		return false, false
	}

	if value, ok := condition(field.SkipIf); ok && value {
		return true
	}
	if value, ok := condition(field.IncludeIf); ok && !value {
		return true
	}
	return false
}

// resolveField runs the full dispatch protocol for one started entry: policy gate, RSS
// materialization, resolver invocation (direct or batched), type checks, value completion.
func (r *request) resolveField(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	field *rss.PlannedField,
	key oer.Key,
	args schema.ArgumentValues,
	source interface{},
	path []interface{},
	mutationRoot bool) {

	d := r.driver
	info := &instrumentation.FieldInfo{TypeName: field.ParentType, FieldName: field.Name, Path: path}
	endFetch := d.instr.FieldFetchBegin(goctx, info)

	// Policy gate: field checkers run before the resolver; a denial short-circuits the field to
	// null and the resolver never runs.
	if len(field.FieldCheckers) > 0 && d.runner.Enabled() {
		endCheck := d.instr.AccessCheckBegin(goctx, info)
		result, shortCircuit := r.runCheckers(st, goctx, node, field, field.FieldCheckers, args, source, policy.FieldCheck)
		endCheck(result.Err)
		if shortCircuit {
			node.CompleteError(key, policy.DeniedError(result.Err, path))
			endFetch(result.Err)
			return
		}
	}

	value, err := r.fetchValue(st, goctx, node, field, args, source, path, mutationRoot)
	if err != nil {
		d.reporter.Report(goctx, err, info)
		node.CompleteError(key, r.buildResolverError(err, info, path))
		endFetch(err)
		return
	}
	endFetch(nil)

	// Type-level checkers gate the produced value before any downstream resolver sees it; a node
	// reference whose type checker fails renders the field null with a single error.
	if len(field.TypeCheckers) > 0 && d.runner.Enabled() {
		endCheck := d.instr.AccessCheckBegin(goctx, info)
		result, shortCircuit := r.runCheckers(st, goctx, node, field, field.TypeCheckers, args, source, policy.TypeCheck)
		endCheck(result.Err)
		if shortCircuit {
			node.CompleteError(key, policy.DeniedError(result.Err, path))
			return
		}
	}

	endComplete := d.instr.FieldCompleteBegin(goctx, info)
	stored, err := r.completeValue(st, goctx, field, field.Def.Type(), value, path)
	endComplete(err)
	if err != nil {
		node.CompleteError(key, attachPath(err, path))
		return
	}
	node.Complete(key, stored)
}

// fetchValue obtains the field's raw value: through its registered resolver (satisfying the RSS
// first), or trivially from the source value.
func (r *request) fetchValue(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	field *rss.PlannedField,
	args schema.ArgumentValues,
	source interface{},
	path []interface{},
	mutationRoot bool) (interface{}, error) {

	// __typename reflects the node's concrete runtime type, which only the OER knows.
	if field.Name == schema.TypenameMetaFieldName {
		return node.TypeName(), nil
	}

	if field.Resolver == nil {
		return r.resolveTrivial(goctx, field, args, source, path)
	}

	planned := field.Resolver
	registration := planned.Ref.(*dispatch.Registration)

	objectView, queryView, err := r.materializeRSS(st, goctx, node, source, planned.ObjectRSS, planned.QueryRSS)
	if err != nil {
		return nil, err
	}

	// Bind declared variables; a binding failure becomes a field error and the resolver never
	// runs.
	if err := r.bindVariables(planned.Bindings, args, objectView, queryView); err != nil {
		return nil, err
	}

	ctx := dispatch.NewCtx(dispatch.CtxConfig{
		Context:        goctx,
		TypeName:       field.ParentType,
		FieldName:      field.Name,
		Path:           path,
		Engine:         &engine{req: r, frame: st.frame},
		Arguments:      args,
		ObjectValue:    objectView,
		QueryValue:     queryView,
		Selections:     field.Selections,
		RequestContext: r.requestContext,
		MutationField:  mutationRoot,
	})

	if planned.Batch {
		future, err := st.frame.coalescers.Enqueue(registration, ctx)
		if err != nil {
			return nil, err
		}
		st.frame.kick()
		return st.frame.park(func() (interface{}, error) {
			return future.Await(goctx)
		})
	}

	return dispatch.Invoke(r.driver.provider, registration, ctx)
}

// materializeRSS resolves a declaration's object and query required selection sets by re-entering
// the driver against the same OER, in parallel, and wraps the results into typed views.
func (r *request) materializeRSS(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	source interface{},
	objectRSS *rss.PlannedRSS,
	queryRSS *rss.PlannedRSS) (objectView *dispatch.TypedView, queryView *dispatch.TypedView, err error) {

	type rssResult struct {
		view *dispatch.TypedView
		err  error
	}

	run := func(target *oer.Node, set *rss.PlannedRSS, runSource interface{}, out chan<- rssResult) {
		defer st.frame.done()
		inner := &execState{req: r, frame: st.frame, vars: st.vars}
		r.runSelections(inner, goctx, target, set.Selections, runSource, nil, false, false)
		if err := r.awaitSelections(st, goctx, target, set.Selections); err != nil {
			out <- rssResult{err: err}
			return
		}
		out <- rssResult{view: dispatch.NewTypedView(target, set.Selections)}
	}

	var objectCh, queryCh chan rssResult
	if objectRSS != nil {
		objectCh = make(chan rssResult, 1)
		st.frame.add()
		go run(node, objectRSS, source, objectCh)
	}
	if queryRSS != nil {
		queryCh = make(chan rssResult, 1)
		queryRoot := r.rootNode(rss.QueryOperation, queryRSS.TypeCondition)
		st.frame.add()
		go run(queryRoot, queryRSS, r.view.FilteredSchema(), queryCh)
	}

	if objectCh != nil {
		result, parkErr := st.frame.park(func() (interface{}, error) {
			res := <-objectCh
			return res.view, res.err
		})
		if parkErr != nil {
			return nil, nil, parkErr
		}
		objectView, _ = result.(*dispatch.TypedView)
	}
	if queryCh != nil {
		result, parkErr := st.frame.park(func() (interface{}, error) {
			res := <-queryCh
			return res.view, res.err
		})
		if parkErr != nil {
			return nil, nil, parkErr
		}
		queryView, _ = result.(*dispatch.TypedView)
	}

	return objectView, queryView, nil
}

// awaitSelections waits until every field of set has settled on node.
func (r *request) awaitSelections(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	set *rss.PlannedSelectionSet) error {

	for _, field := range effectiveFields(r.view, node, set) {
		if _, _, ok := node.Peek(field.Alias); ok {
			continue
		}
		key, bound := node.AliasKey(field.Alias)
		if !bound {
			continue
		}
		if _, err := st.frame.park(func() (interface{}, error) {
			return node.Await(goctx, key)
		}); err != nil {
			// Individual field errors surface when the resolver reads the view; an await error here
			// is only fatal when it is the request's cancellation.
			if errs.Cancelled(err) {
				return err
			}
		}
	}
	return nil
}

// bindVariables resolves declared variable bindings; the values feed the RSS fragments'
// argument positions. fromArgument sources walk the coerced arguments; fromObjectField and
// fromQueryField walk the materialized views.
func (r *request) bindVariables(
	bindings []rss.VariableBinding,
	args schema.ArgumentValues,
	objectView *dispatch.TypedView,
	queryView *dispatch.TypedView) error {
	const op errs.Op = "driver.bindVariables"

	for _, binding := range bindings {
		switch binding.Kind {
		case rss.FromArgument:
			value := args.Get(binding.Path[0])
			for _, step := range binding.Path[1:] {
				object, ok := value.(map[string]interface{})
				if !ok {
					return errs.New(op, errs.KindResolver, fmt.Sprintf(
						"variable %q: argument path step %q is not an input object", binding.Name, step))
				}
				value = object[step]
			}

		case rss.FromObjectField:
			if err := walkViewPath(op, binding, objectView); err != nil {
				// Wrap so the failure is attributed to the field whose variable provider failed, not
				// to the selection the path walked into.
				return errs.New(op, errs.KindResolver,
					fmt.Sprintf("binding variable %q: %s", binding.Name, err.Error()), err)
			}

		case rss.FromQueryField:
			if err := walkViewPath(op, binding, queryView); err != nil {
				return errs.New(op, errs.KindResolver,
					fmt.Sprintf("binding variable %q: %s", binding.Name, err.Error()), err)
			}
		}
	}
	return nil
}

// walkViewPath validates a view-sourced binding is readable; failures become field errors.
func walkViewPath(op errs.Op, binding rss.VariableBinding, view *dispatch.TypedView) error {
	if view == nil {
		return errs.New(op, errs.KindResolver, fmt.Sprintf(
			"variable %q: no required selection set declared for its source", binding.Name))
	}
	current := interface{}(view)
	for _, step := range binding.Path {
		typedView, ok := current.(*dispatch.TypedView)
		if !ok {
			return errs.New(op, errs.KindResolver, fmt.Sprintf(
				"variable %q: path step %q walks past a leaf", binding.Name, step))
		}
		value, err := typedView.Get(step)
		if err != nil {
			return err
		}
		current = value
	}
	return nil
}

// runCheckers materializes each checker's RSS and executes it through the policy runner. Type
// checkers run without materialized views: their selections anchor on the produced value's type,
// which has no OER node yet at gate time (see DESIGN.md).
func (r *request) runCheckers(
	st *execState,
	goctx context.Context,
	node *oer.Node,
	field *rss.PlannedField,
	checkers []*rss.PlannedChecker,
	args schema.ArgumentValues,
	source interface{},
	checkType policy.CheckType) (policy.CheckerResult, bool) {

	prepared := make([]policy.PreparedCheck, 0, len(checkers))
	for _, planned := range checkers {
		registration := planned.Ref.(*dispatch.CheckerRegistration)
		checker, ok := registration.Checker.(policy.Checker)
		if !ok {
			return policy.Denied(errs.Internalf("driver.runCheckers",
				"checker for %s.%s does not implement policy.Checker", field.ParentType, field.Name)), true
		}

		var (
			objectView *dispatch.TypedView
			queryView  *dispatch.TypedView
			err        error
		)
		if checkType == policy.FieldCheck {
			objectView, queryView, err = r.materializeRSS(st, goctx, node, source, planned.ObjectRSS, planned.QueryRSS)
			if err != nil {
				return policy.Denied(err), true
			}
		}

		prepared = append(prepared, policy.PreparedCheck{
			Checker: checker,
			Ctx: &policy.CheckCtx{
				Context:        goctx,
				Arguments:      args,
				ObjectValue:    objectView,
				QueryValue:     queryView,
				RequestContext: r.requestContext,
				CheckType:      checkType,
			},
		})
	}

	return r.driver.runner.Run(prepared)
}

// resolveTrivial resolves a field with no registered resolver: through the schema definition's
// own FieldResolver when present (introspection and meta fields), otherwise from the source value
// by name.
func (r *request) resolveTrivial(
	goctx context.Context,
	field *rss.PlannedField,
	args schema.ArgumentValues,
	source interface{},
	path []interface{}) (interface{}, error) {

	if resolver := field.Def.Resolver(); resolver != nil {
		info := &resolveInfo{req: r, field: field, args: args, path: path}
		return resolver.Resolve(goctx, source, info)
	}
	return defaultResolve(source, field)
}

// buildResolverError converts a resolver failure via the configured ResolverErrorBuilder; when
// the builder declines, the default mapping applies (message copied, path from the planned
// field).
func (r *request) buildResolverError(err error, info *instrumentation.FieldInfo, path []interface{}) error {
	if r.driver.builder != nil {
		if built := r.driver.builder.BuildErrors(err, info); len(built) > 0 {
			// Carry the first mapping as the entry error; extras are attached as extensions.
			first := built[0]
			mapped := errs.New("driver.buildResolverError", errs.KindOf(err), first.Message, err)
			if len(first.Path) > 0 {
				return mapped.WithPath(first.Path)
			}
			return mapped.WithPath(path)
		}
	}
	return attachPath(err, path)
}

// attachPath ensures err carries a response path.
func attachPath(err error, path []interface{}) error {
	if e, ok := err.(*errs.Error); ok {
		if len(e.Path) == 0 {
			return e.WithPath(path)
		}
		return e
	}
	return errs.New("driver.attachPath", errs.KindResolver, err).WithPath(path)
}

func appendPath(path []interface{}, key interface{}) []interface{} {
	next := make([]interface{}, len(path), len(path)+1)
	copy(next, path)
	return append(next, key)
}

// completeValue converts a resolver-produced value into its stored OER form, spawning child
// selection executions for object values.
func (r *request) completeValue(
	st *execState,
	goctx context.Context,
	field *rss.PlannedField,
	t schema.Type,
	value interface{},
	path []interface{}) (interface{}, error) {

	if nonNull, ok := t.(*schema.NonNull); ok {
		completed, err := r.completeValue(st, goctx, field, nonNull.InnerType(), value, path)
		if err != nil {
			return nil, err
		}
		if completed == nil {
			return nil, schema.NewError(fmt.Sprintf(
				"Cannot return null for non-nullable field %s.%s.", field.ParentType, field.Name),
				schema.ErrKindExecution)
		}
		return completed, nil
	}

	if value == nil {
		return nil, nil
	}
	if reflectValue := reflect.ValueOf(value); reflectValue.Kind() == reflect.Ptr && reflectValue.IsNil() {
		return nil, nil
	}

	switch t := t.(type) {
	case *schema.List:
		return r.completeList(st, goctx, field, t, value, path)

	case schema.LeafType:
		return t.CoerceResultValue(value)

	case *schema.Object:
		return r.completeObject(st, goctx, field, t.Name(), value, path)

	case schema.AbstractType:
		concrete, err := r.resolveConcreteType(goctx, field, t, value, path)
		if err != nil {
			return nil, err
		}
		return r.completeObject(st, goctx, field, concrete, value, path)
	}

	return nil, errs.Internalf("driver.completeValue",
		"field %s.%s has unsupported type %s", field.ParentType, field.Name, schema.Inspect(t))
}

// completeList renders a list value: Go slices, arrays, and schema.Iterable are accepted.
func (r *request) completeList(
	st *execState,
	goctx context.Context,
	field *rss.PlannedField,
	t *schema.List,
	value interface{},
	path []interface{}) (interface{}, error) {

	elemType := t.ElementType()

	appendElem := func(result []interface{}, elem interface{}, index int) []interface{} {
		elemPath := appendPath(path, index)
		completed, err := r.completeValue(st, goctx, field, elemType, elem, elemPath)
		if err != nil {
			return append(result, &oer.ElemError{Err: attachPath(err, elemPath)})
		}
		return append(result, completed)
	}

	switch value := value.(type) {
	case []interface{}:
		result := make([]interface{}, 0, len(value))
		for i, elem := range value {
			result = appendElem(result, elem, i)
		}
		return result, nil

	case schema.Iterable:
		var result []interface{}
		iter := value.Iterator()
		for i := 0; ; i++ {
			elem, err := iter.Next()
			if err != nil {
				break
			}
			result = appendElem(result, elem, i)
		}
		return result, nil
	}

	reflectValue := reflect.ValueOf(value)
	if reflectValue.Kind() == reflect.Slice || reflectValue.Kind() == reflect.Array {
		length := reflectValue.Len()
		result := make([]interface{}, 0, length)
		for i := 0; i < length; i++ {
			result = appendElem(result, reflectValue.Index(i).Interface(), i)
		}
		return result, nil
	}

	return nil, schema.NewError(fmt.Sprintf(
		"Expected Iterable, but did not find one for field %s.%s.", field.ParentType, field.Name),
		schema.ErrKindExecution)
}

// completeObject allocates the child OER node and spawns its sub-selection execution.
func (r *request) completeObject(
	st *execState,
	goctx context.Context,
	field *rss.PlannedField,
	typeName string,
	value interface{},
	path []interface{}) (interface{}, error) {

	child := r.graph.NewNode(typeName)
	child.SetConcreteType(typeName)

	source := value
	if ref, ok := value.(*dispatch.NodeReference); ok {
		if !r.driver.central.IsNode(ref.TypeName()) {
			return nil, errs.New("driver.completeObject", errs.KindResolver, fmt.Sprintf(
				"type %q referenced by a node reference does not implement Node", ref.TypeName()))
		}
		source = ref
	}

	if field.Selections != nil {
		r.runSelections(st, goctx, child, field.Selections, source, path, false, false)
	}
	return child, nil
}

// resolveConcreteType determines the runtime object type for an abstract-typed field value.
func (r *request) resolveConcreteType(
	goctx context.Context,
	field *rss.PlannedField,
	abstract schema.AbstractType,
	value interface{},
	path []interface{}) (string, error) {

	if ref, ok := value.(*dispatch.NodeReference); ok {
		return ref.TypeName(), nil
	}

	if typeResolver := abstract.TypeResolver(); typeResolver != nil {
		info := &resolveInfo{req: r, field: field, args: schema.NoArgumentValues(), path: path}
		object, err := typeResolver.Resolve(goctx, value, info)
		if err != nil {
			return "", err
		}
		if object != nil {
			return object.Name(), nil
		}
	}

	if object, ok := value.(map[string]interface{}); ok {
		if typeName, ok := object["__typename"].(string); ok {
			return typeName, nil
		}
	}

	return "", schema.NewError(fmt.Sprintf(
		"Abstract type %s must resolve to an Object type at runtime for field %s.%s.",
		abstract.Name(), field.ParentType, field.Name), schema.ErrKindExecution)
}

// buildResult snapshots the OER into the spec-compliant response, sorting errors by (path, message) and
// filtering cancellation noise that never escaped to the top level.
func (r *request) buildResult(plan *rss.Plan) *ExecutionResult {
	data, fieldErrors := r.graph.Snapshot(plan)

	cancelled := r.graph.Cancelled() != nil
	result := &ExecutionResult{Data: data}
	for _, fieldErr := range fieldErrors {
		if errs.Cancelled(fieldErr.Err) && !cancelled {
			continue
		}
		result.Errors = append(result.Errors, &GraphQLError{
			Message:    fieldErr.Message,
			Path:       fieldErr.Path,
			Extensions: fieldErr.Extensions,
		})
	}
	sortErrors(result.Errors)
	return result
}
