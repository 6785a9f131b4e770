package translator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// BatchOutcome is the per-request result of a processed batch.
type BatchOutcome struct {
	Result Result
	Err    error
}

// BatchProcessor handles one dispatched batch and returns one outcome per
// request, in request order.
type BatchProcessor func(ctx context.Context, requests []Request) []BatchOutcome

// RequestBatcher coalesces concurrent requests into time/size-bounded
// batches. A batch is dispatched when it reaches batchSize or when
// batchTimeout elapses since the first request joined an empty batch,
// whichever comes first. Exactly one batch is in flight at a time; requests
// arriving during a dispatch accumulate into the next batch.
//
// Identical requests (equal normalized tuples) within one batch share a
// single upstream call and each waiter receives its own copy of the outcome.
type RequestBatcher struct {
	size    int
	timeout time.Duration
	process BatchProcessor

	mu       sync.Mutex
	pending  []*pendingCall
	batchGen uint64
	inFlight bool
	timedOut bool
}

type pendingCall struct {
	req  Request
	done chan BatchOutcome // buffered so a finished batch never blocks on an abandoned waiter
}

// NewRequestBatcher creates a batcher dispatching through process.
func NewRequestBatcher(size int, timeout time.Duration, process BatchProcessor) *RequestBatcher {
	return &RequestBatcher{
		size:    size,
		timeout: timeout,
		process: process,
	}
}

// Enqueue adds req to the open batch and blocks until the batch containing it
// completes. Cancelling ctx before the batch dispatches removes the request
// from the batch without affecting other members; once dispatched, the batch
// runs to completion regardless and Enqueue returns ctx.Err() immediately.
func (b *RequestBatcher) Enqueue(ctx context.Context, req Request) (Result, error) {
	pc := &pendingCall{req: req, done: make(chan BatchOutcome, 1)}

	b.mu.Lock()
	b.pending = append(b.pending, pc)
	if len(b.pending) == 1 {
		gen := b.batchGen
		time.AfterFunc(b.timeout, func() { b.onTimeout(gen) })
	}
	if len(b.pending) >= b.size && !b.inFlight {
		b.dispatchLocked()
	}
	b.mu.Unlock()

	select {
	case out := <-pc.done:
		return out.Result, out.Err
	case <-ctx.Done():
		b.remove(pc)
		return Result{}, ctx.Err()
	}
}

// onTimeout fires when the batch started in generation gen has been open for
// the full timeout.
func (b *RequestBatcher) onTimeout(gen uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if gen != b.batchGen {
		return // that batch already dispatched by size
	}
	if b.inFlight {
		b.timedOut = true
		return
	}
	b.dispatchLocked()
}

// dispatchLocked hands the open batch to the processor. Caller must hold mu.
func (b *RequestBatcher) dispatchLocked() {
	if len(b.pending) == 0 {
		b.batchGen++
		b.timedOut = false
		return
	}
	batch := b.pending
	b.pending = nil
	b.batchGen++
	b.timedOut = false
	b.inFlight = true
	go b.run(batch)
}

func (b *RequestBatcher) run(batch []*pendingCall) {
	// Coalesce identical requests into one upstream item.
	index := make(map[string]int, len(batch))
	var unique []Request
	groups := make([][]*pendingCall, 0, len(batch))
	for _, pc := range batch {
		key := pc.req.Key()
		if i, ok := index[key]; ok {
			groups[i] = append(groups[i], pc)
			continue
		}
		index[key] = len(unique)
		unique = append(unique, pc.req)
		groups = append(groups, []*pendingCall{pc})
	}

	slog.Debug("dispatching batch",
		"waiters", len(batch),
		"unique_requests", len(unique))

	// Dispatched work runs to completion regardless of caller cancellation;
	// results are still cached for future callers.
	outcomes := b.process(context.Background(), unique)

	for i := range unique {
		out := BatchOutcome{Err: errors.New("batch processor returned no outcome for request")}
		if i < len(outcomes) {
			out = outcomes[i]
		}
		for _, pc := range groups[i] {
			pc.done <- out
		}
	}

	b.mu.Lock()
	b.inFlight = false
	if len(b.pending) > 0 && (len(b.pending) >= b.size || b.timedOut) {
		b.dispatchLocked()
	}
	b.mu.Unlock()
}

// remove drops a not-yet-dispatched call from the open batch.
func (b *RequestBatcher) remove(pc *pendingCall) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, cur := range b.pending {
		if cur == pc {
			b.pending = append(b.pending[:i], b.pending[i+1:]...)
			return
		}
	}
}
