// Package testutil holds helpers shared by package tests.
package testutil

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ConcurrentResult tallies the outcomes of RunConcurrent.
type ConcurrentResult struct {
	Successes int32
	Expected  int32 // errors matching one of the expected errors
	Errors    int32 // any other error
}

// Total returns the number of calls made.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Expected + r.Errors
}

// RunConcurrent calls fn from goroutines goroutines at once and tallies the
// results. Errors matching any of expected (via errors.Is) are counted apart
// from other failures.
func RunConcurrent(goroutines int, fn func(idx int) error, expected ...error) *ConcurrentResult {
	var (
		wg                    sync.WaitGroup
		start                 = make(chan struct{})
		successes, hits, errs atomic.Int32
	)
	for i := range goroutines {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			err := fn(i)
			switch {
			case err == nil:
				successes.Add(1)
			case matchesAny(err, expected):
				hits.Add(1)
			default:
				errs.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	return &ConcurrentResult{
		Successes: successes.Load(),
		Expected:  hits.Load(),
		Errors:    errs.Load(),
	}
}

func matchesAny(err error, targets []error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
