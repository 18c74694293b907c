// Package pool implements Edax's Young Brothers Wait Concept (YBWC)
// parallel search (spec.md §3, §4.6): the eldest child of a node is
// always searched first and alone; once it returns, the remaining
// ("younger") siblings may be split across idle workers, bounded by
// the pool's worker count and cut short cooperatively the moment any
// branch proves a cutoff.
package pool

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Pool bounds how many node searches may run concurrently and carries
// the cooperative stop signal every search task must observe (spec.md
// §4.6 "node_stop_slaves").
type Pool struct {
	workers int
	tickets chan struct{}
	stop    atomic.Bool
}

// New creates a pool with workers split tickets: at most workers
// younger siblings run on their own goroutines at once, besides the
// caller's goroutine, which runs the eldest brother first and then any
// sibling that finds no free ticket, matching the teacher's worker-count
// convention of leaving the split decision to the caller rather than
// hardcoding GOMAXPROCS.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{
		workers: workers,
		tickets: make(chan struct{}, workers),
	}
}

// Workers reports the pool's configured concurrency.
func (p *Pool) Workers() int { return p.workers }

// Stop raises the cooperative stop flag; every in-flight and future
// task observes Stopped() and should return as soon as convenient
// (spec.md §4.6, §6 search_stop).
func (p *Pool) Stop() { p.stop.Store(true) }

// Reset lowers the stop flag for the next search (spec.md §6
// search_cleanup).
func (p *Pool) Reset() { p.stop.Store(false) }

// Stopped reports whether a stop has been requested.
func (p *Pool) Stopped() bool { return p.stop.Load() }

// TryAcquire attempts to reserve one of the pool's concurrency
// tickets for a younger-sibling split without blocking. It returns
// false immediately if the pool is saturated or already stopped — the
// YBWC rule that a node only splits when a helper is actually idle
// (spec.md §4.6 "node_split"), never by queueing and waiting.
func (p *Pool) TryAcquire() (release func(), ok bool) {
	if p.Stopped() {
		return nil, false
	}
	select {
	case p.tickets <- struct{}{}:
		return func() { <-p.tickets }, true
	default:
		return nil, false
	}
}

// Task is one sibling branch's search, returning its negamax score.
type Task func(ctx context.Context) (int, error)

// RunSiblings runs the eldest task sequentially, then offers every
// remaining task a split: each gets its own goroutine if a ticket is
// free, otherwise it runs inline on the caller's goroutine (spec.md
// §4.6's fallback when "no helper is idle"). It returns the score of
// every task in order. Once ctx is canceled or the pool's stop flag is
// set, no further sibling is split onto a goroutine: each remaining
// task still runs inline with the caller's ctx, so a task that checks
// ctx returns at once.
func (p *Pool) RunSiblings(ctx context.Context, tasks []Task) ([]int, error) {
	scores := make([]int, len(tasks))
	if len(tasks) == 0 {
		return scores, nil
	}

	eldestScore, err := tasks[0](ctx)
	if err != nil {
		return scores, err
	}
	scores[0] = eldestScore
	if len(tasks) == 1 {
		return scores, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 1; i < len(tasks); i++ {
		i, task := i, tasks[i]
		if gctx.Err() != nil || p.Stopped() {
			score, err := task(ctx)
			scores[i] = score
			if err != nil {
				return scores, err
			}
			continue
		}
		if release, ok := p.TryAcquire(); ok {
			g.Go(func() error {
				defer release()
				score, err := task(gctx)
				scores[i] = score
				return err
			})
		} else {
			score, err := task(gctx)
			scores[i] = score
			if err != nil {
				return scores, err
			}
		}
	}
	if err := g.Wait(); err != nil {
		return scores, err
	}
	return scores, nil
}
