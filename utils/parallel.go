package utils

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	viamutils "go.viam.com/utils"
)

// SimpleFunc is a unit of work for RunInParallel.
type SimpleFunc func(ctx context.Context) error

// RunInParallel runs every function concurrently, cancelling the shared
// context on the first error or panic and combining every reported error.
// This is the join primitive behind Frame's dual-extractor construction and
// the Initializer's parallel homography/fundamental RANSAC estimation: each
// function only writes to its own result, the shared context is read-only,
// and RunInParallel returns once every goroutine has joined.
func RunInParallel(ctx context.Context, fs []SimpleFunc) (time.Duration, error) {
	start := time.Now()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		if bigError == nil || !errors.Is(err, context.Canceled) {
			bigError = multierr.Combine(bigError, err)
		}
	}

	helper := func(f SimpleFunc) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				storeError(fmt.Errorf("panic running parallel work: %v", thePanic))
				cancel()
			}
			wg.Done()
		}()
		if err := f(ctx); err != nil {
			storeError(err)
			cancel()
		}
	}

	for _, f := range fs {
		wg.Add(1)
		f := f
		viamutils.PanicCapturingGo(func() { helper(f) })
	}

	wg.Wait()
	return time.Since(start), bigError
}
