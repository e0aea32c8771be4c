package pool

import (
	"context"
	"sync"
)

// ParallelStarter fans out a set of start tasks, awaits every one, and
// collects per-member errors without letting one member's failure abort
// the others.
type ParallelStarter struct {
	runner TaskRunner
}

// NewParallelStarter returns a ParallelStarter that submits through runner.
func NewParallelStarter(runner TaskRunner) *ParallelStarter {
	return &ParallelStarter{runner: runner}
}

type startResult struct {
	member *Member
	err    error
}

// StartAll submits every member's start task in parallel and blocks until
// all have completed or ctx is done. The returned map has an entry for
// every member in tasks; a nil value means that member started
// successfully. ctx cancellation aborts the wait and returns ctx.Err();
// submitted tasks may continue running to completion independently.
func (p *ParallelStarter) StartAll(ctx context.Context, tasks map[*Member]Task) (map[*Member]error, error) {
	results := make(chan startResult, len(tasks))
	var wg sync.WaitGroup

	for member, task := range tasks {
		wg.Add(1)
		submitted := p.runner.Submit(ctx, task)
		go func(m *Member, t Task) {
			defer wg.Done()
			err := t.Await(ctx)
			results <- startResult{member: m, err: err}
		}(member, submitted)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	close(results)

	out := make(map[*Member]error, len(tasks))
	for r := range results {
		out[r.member] = r.err
		if r.err != nil {
			log.Errorf("start failed for member %s: %v", r.member.ID, r.err)
			log.Debugf("start failure detail for member %s: %+v", r.member.ID, r.err)
		}
	}
	return out, nil
}
