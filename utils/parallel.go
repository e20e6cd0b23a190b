package utils

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate. A value of 1 runs everything on the calling goroutine.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
	quarterProcs := float64(ParallelFactor) * .25
	if quarterProcs > 8 {
		ParallelFactor = int(quarterProcs)
	}
}

// ParallelForEachRow calls f once for every row in [0, height).
// The rows are divided into at most ParallelFactor contiguous groups and each group runs on its own
// goroutine. f is called concurrently for rows of different groups, so it must only write state
// owned by the row it was given. A panic in f stops its group and is returned as an error once
// every group has finished; the work done by other groups must then be discarded.
func ParallelForEachRow(height int, f func(y int)) error {
	if height <= 0 {
		return nil
	}
	numGroups := MinInt(ParallelFactor, height)
	if numGroups <= 1 {
		return runRows(0, height, f)
	}

	groupSize := height / numGroups
	extra := height % numGroups

	var (
		wait    sync.WaitGroup
		errMu   sync.Mutex
		allErrs error
	)
	wait.Add(numGroups)
	from := 0
	for groupNum := 0; groupNum < numGroups; groupNum++ {
		to := from + groupSize
		// the first `extra` groups take one more row each
		if groupNum < extra {
			to++
		}
		start, end := from, to
		// Done is called on both exits so Wait cannot return before a panic is recorded.
		utils.PanicCapturingGoWithCallback(func() {
			for y := start; y < end; y++ {
				f(y)
			}
			wait.Done()
		}, func(err interface{}) {
			errMu.Lock()
			allErrs = multierr.Append(allErrs, rowPanicError(start, end, err))
			errMu.Unlock()
			wait.Done()
		})
		from = to
	}
	wait.Wait()
	return allErrs
}

func runRows(start, end int, f func(y int)) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = rowPanicError(start, end, r)
		}
	}()
	for y := start; y < end; y++ {
		f(y)
	}
	return nil
}

func rowPanicError(start, end int, recovered interface{}) error {
	return errors.Errorf("panic processing rows [%d, %d): %v", start, end, recovered)
}
