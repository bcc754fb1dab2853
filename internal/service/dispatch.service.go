package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"levsim/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SimulationRunner executes one simulation to completion. Implemented by the
// orchestrator; redeclared here so the dispatch layer only sees an opaque
// task boundary.
type SimulationRunner interface {
	Simulate(key domain.SimulationKey, data domain.MarketData) (*domain.SimulationResult, error)
}

type dispatchRequest struct {
	key      domain.SimulationKey
	data     domain.MarketData
	response chan dispatchResponse
}

type dispatchResponse struct {
	result *domain.SimulationResult
	err    error
}

type simulationWorker struct {
	id       uuid.UUID
	requests chan dispatchRequest
}

type inflightRun struct {
	done   chan struct{}
	result *domain.SimulationResult
	err    error
}

// DispatchService guarantees at most one concurrent run per distinct key,
// memoizes completed results, and hands work to a lazily grown pool of
// workers. With pool size 0 it executes runs inline in the caller's
// goroutine.
type DispatchService struct {
	runner   SimulationRunner
	cache    ResultCache
	poolSize int

	mu       sync.Mutex
	inflight map[string]*inflightRun
	idle     chan *simulationWorker
}

func NewDispatchService(runner SimulationRunner, cache ResultCache, poolSize int) *DispatchService {
	idleCapacity := poolSize
	if idleCapacity < 0 {
		idleCapacity = 0
	}
	return &DispatchService{
		runner:   runner,
		cache:    cache,
		poolSize: poolSize,
		inflight: map[string]*inflightRun{},
		idle:     make(chan *simulationWorker, idleCapacity),
	}
}

// RunOrDedupe resolves the key against the cache and in-flight runs before
// dispatching anything: a key already computed returns the cached result, a
// key currently running joins that run's outcome, and only a novel key
// triggers a new simulation.
func (d *DispatchService) RunOrDedupe(ctx context.Context, key domain.SimulationKey, data domain.MarketData) (*domain.SimulationResult, error) {
	hash := key.Hash()

	d.mu.Lock()
	if result, ok := d.cache.Get(hash); ok {
		d.mu.Unlock()
		return result, nil
	}
	if run, ok := d.inflight[hash]; ok {
		d.mu.Unlock()
		select {
		case <-run.done:
			return run.result, run.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	run := &inflightRun{done: make(chan struct{})}
	d.inflight[hash] = run
	d.mu.Unlock()

	result, err := d.execute(ctx, key, data)

	run.result = result
	run.err = err
	d.mu.Lock()
	if err == nil {
		d.cache.Set(hash, result)
	}
	delete(d.inflight, hash)
	d.mu.Unlock()
	close(run.done)

	return result, err
}

// Cached returns a previously completed result, if any.
func (d *DispatchService) Cached(hash string) (*domain.SimulationResult, bool) {
	return d.cache.Get(hash)
}

// Evict removes a completed result from the cache. Results are never evicted
// automatically; eviction is always an explicit caller decision.
func (d *DispatchService) Evict(hash string) {
	d.cache.Delete(hash)
}

func (d *DispatchService) execute(ctx context.Context, key domain.SimulationKey, data domain.MarketData) (*domain.SimulationResult, error) {
	if d.poolSize <= 0 {
		return d.safeRun(key, data)
	}

	worker := d.getWorker()
	response := make(chan dispatchResponse, 1)
	worker.requests <- dispatchRequest{key: key, data: data, response: response}

	select {
	case r := <-response:
		return r.result, r.err
	case <-ctx.Done():
		// the worker finishes on its own and recycles itself
		return nil, ctx.Err()
	}
}

// getWorker pops an idle worker or creates a fresh one. The pool grows
// lazily with demand; recycled workers cap out at the configured size.
func (d *DispatchService) getWorker() *simulationWorker {
	select {
	case worker := <-d.idle:
		return worker
	default:
	}

	worker := &simulationWorker{
		id:       uuid.New(),
		requests: make(chan dispatchRequest),
	}
	go d.workerLoop(worker)
	return worker
}

// workerLoop serves one request at a time. A worker that hits an execution
// fault is discarded rather than returned to the idle set, so a corrupted
// worker can never serve a later request.
func (d *DispatchService) workerLoop(worker *simulationWorker) {
	for request := range worker.requests {
		result, err := d.safeRun(request.key, request.data)
		request.response <- dispatchResponse{result: result, err: err}

		var execErr ExecutionError
		if errors.As(err, &execErr) {
			zap.S().Warnw("discarding simulation worker after fault", "worker", worker.id, "error", err)
			return
		}

		select {
		case d.idle <- worker:
		default:
			// idle set full; let this worker retire
			return
		}
	}
}

// safeRun shields callers from panics inside the computation, reporting them
// as execution errors instead.
func (d *DispatchService) safeRun(key domain.SimulationKey, data domain.MarketData) (result *domain.SimulationResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = ExecutionError{Cause: fmt.Sprintf("%v", r)}
		}
	}()
	return d.runner.Simulate(key, data)
}
