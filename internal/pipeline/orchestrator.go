// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline owns the current resolution job. Each submitted query
// gets a fresh token; a completion is published only if its token is
// still the latest, so a superseded or cancelled job can never overwrite
// newer state. Cancellation is advisory: in-flight requests run to
// completion and their results are discarded.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/logging"
	"github.com/pdiddy/sparos/pkg/types"
)

const unknownErrorMessage = "an unknown error occurred"

// Resolver turns a query into one account.
type Resolver interface {
	Resolve(ctx context.Context, query string) (types.ResolvedAccount, error)
}

// JobStore persists the advisory record of the current job so it can be
// replayed after a restart. Load returns nil when no job is stored.
type JobStore interface {
	Save(ctx context.Context, job types.SearchJob) error
	Load(ctx context.Context) (*types.SearchJob, error)
	Clear(ctx context.Context) error
}

// Publisher receives every state change. It is called with the
// orchestrator's lock held, in token order, and must not call back into
// the orchestrator.
type Publisher func(types.PipelineState)

// Orchestrator runs at most one logical resolution at a time.
type Orchestrator struct {
	Resolver Resolver
	Jobs     JobStore
	Publish  Publisher
	Log      logrus.FieldLogger
	Now      func() time.Time
	NewID    func() string

	// Context is the parent of every resolution. Cancel does not cancel
	// it; it only bounds the process lifetime.
	Context context.Context

	mu     sync.Mutex
	latest uint64
	state  types.PipelineState
	wg     sync.WaitGroup
}

// NewOrchestrator wires an orchestrator with wall-clock time and uuid job
// ids. jobs and publish may be nil.
func NewOrchestrator(resolver Resolver, jobs JobStore, publish Publisher, log logrus.FieldLogger) *Orchestrator {
	return &Orchestrator{
		Resolver: resolver,
		Jobs:     jobs,
		Publish:  publish,
		Log:      logging.OrDiscard(log),
		Now: func() time.Time {
			return time.Now().UTC()
		},
		NewID:   uuid.NewString,
		Context: context.Background(),
	}
}

// Submit mints a token for query, marks the pipeline running and starts
// resolution in the background. Any earlier job becomes stale.
func (o *Orchestrator) Submit(query string) types.SearchJob {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.latest++
	job := types.SearchJob{
		ID:        o.newID(),
		Query:     query,
		Token:     o.latest,
		StartedAt: o.now(),
	}

	o.state.Running = true
	o.state.Error = ""
	o.state.Job = &job
	o.saveJobLocked(job)
	o.publishLocked()

	o.log().WithFields(logrus.Fields{"query": query, "token": job.Token}).Info("job submitted")

	o.wg.Add(1)
	go o.run(job)
	return job
}

// Cancel invalidates the current job without starting another. Running
// and job state clear immediately; the in-flight resolution is left to
// finish and its result is discarded.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.latest++
	o.state.Running = false
	o.state.Job = nil
	o.clearJobLocked()
	o.publishLocked()

	o.log().WithField("token", o.latest).Info("job cancelled")
}

// RestoreJob replays a persisted job through Submit. It reports false
// when nothing was stored. Partial pipeline state is never resumed.
func (o *Orchestrator) RestoreJob(ctx context.Context) (types.SearchJob, bool, error) {
	if o.Jobs == nil {
		return types.SearchJob{}, false, nil
	}
	stored, err := o.Jobs.Load(ctx)
	if err != nil {
		return types.SearchJob{}, false, err
	}
	if stored == nil {
		return types.SearchJob{}, false, nil
	}
	o.log().WithFields(logrus.Fields{"query": stored.Query, "job_id": stored.ID}).Info("restoring job")
	return o.Submit(stored.Query), true, nil
}

// State returns a snapshot of the published state.
func (o *Orchestrator) State() types.PipelineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LatestToken returns the most recently issued token.
func (o *Orchestrator) LatestToken() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.latest
}

// Wait blocks until every launched resolution has returned, stale ones
// included, or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (o *Orchestrator) run(job types.SearchJob) {
	defer o.wg.Done()

	ctx := o.Context
	if ctx == nil {
		ctx = context.Background()
	}
	res, err := o.Resolver.Resolve(ctx, job.Query)

	o.mu.Lock()
	defer o.mu.Unlock()

	// The staleness check and the state change happen under one lock.
	if job.Token != o.latest {
		return
	}

	o.state.Running = false
	o.state.Job = nil
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = unknownErrorMessage
		}
		o.state.Error = msg
		o.state.Account = nil
		o.state.Memberships = nil
		o.log().WithFields(logrus.Fields{"query": job.Query, "token": job.Token}).WithError(err).Info("job failed")
	} else {
		account := res.Account
		memberships := res.Memberships
		o.state.Error = ""
		o.state.Account = &account
		o.state.Memberships = &memberships
		o.log().WithFields(logrus.Fields{
			"query":         job.Query,
			"token":         job.Token,
			"membership_id": account.MembershipID,
		}).Info("job resolved")
	}
	o.clearJobLocked()
	o.publishLocked()
}

func (o *Orchestrator) publishLocked() {
	if o.Publish != nil {
		o.Publish(o.state)
	}
}

// Persistence failures are logged; the job record is advisory.
func (o *Orchestrator) saveJobLocked(job types.SearchJob) {
	if o.Jobs == nil {
		return
	}
	if err := o.Jobs.Save(o.storeContext(), job); err != nil {
		o.log().WithError(err).Warn("could not persist job")
	}
}

func (o *Orchestrator) clearJobLocked() {
	if o.Jobs == nil {
		return
	}
	if err := o.Jobs.Clear(o.storeContext()); err != nil {
		o.log().WithError(err).Warn("could not clear persisted job")
	}
}

func (o *Orchestrator) storeContext() context.Context {
	if o.Context == nil {
		return context.Background()
	}
	return o.Context
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now().UTC()
	}
	return o.Now()
}

func (o *Orchestrator) newID() string {
	if o.NewID == nil {
		return uuid.NewString()
	}
	return o.NewID()
}

func (o *Orchestrator) log() logrus.FieldLogger {
	return logging.OrDiscard(o.Log)
}
