// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/sparos/internal/directory"
	"github.com/pdiddy/sparos/internal/jobstore"
	"github.com/pdiddy/sparos/internal/pipeline"
	"github.com/pdiddy/sparos/internal/resolve"
	"github.com/pdiddy/sparos/pkg/types"
)

// app wires the gateway, resolver, job store, and orchestrator for one
// command invocation.
type app struct {
	jobs     *jobstore.Store
	resolver *recordingResolver
	orch     *pipeline.Orchestrator
}

func newApp(ctx context.Context, cfg types.Config, log logrus.FieldLogger, publish pipeline.Publisher) (*app, error) {
	jobs, err := jobstore.Open(cfg.Store)
	if err != nil {
		return nil, err
	}

	gw := directory.NewClient(cfg.Directory, log)
	rec := &recordingResolver{inner: resolve.NewResolver(gw, cfg.Resolver, log)}

	orch := pipeline.NewOrchestrator(rec, jobs, publish, log)
	orch.Context = ctx

	return &app{jobs: jobs, resolver: rec, orch: orch}, nil
}

// Close waits for stale resolutions to return, then closes the store.
func (a *app) Close() error {
	a.orch.Wait(context.Background())
	return a.jobs.Close()
}

// settle waits for every launched resolution and returns the final state.
func (a *app) settle(ctx context.Context) (types.PipelineState, error) {
	if err := a.orch.Wait(ctx); err != nil {
		return types.PipelineState{}, err
	}
	return a.orch.State(), nil
}

// recordingResolver keeps the typed error of each failed query, since the
// published state carries only the message.
type recordingResolver struct {
	inner pipeline.Resolver

	mu   sync.Mutex
	errs map[string]error
}

func (r *recordingResolver) Resolve(ctx context.Context, query string) (types.ResolvedAccount, error) {
	res, err := r.inner.Resolve(ctx, query)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.errs == nil {
		r.errs = make(map[string]error)
	}
	if err != nil {
		r.errs[query] = err
	} else {
		delete(r.errs, query)
	}
	return res, err
}

func (r *recordingResolver) errFor(query string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs[query]
}
