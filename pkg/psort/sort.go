package psort

import (
	"cmp"
	"context"
	"fmt"
	"math/bits"
	"slices"

	"github.com/fluxorio/ppqsort/pkg/core/concurrency"
	"github.com/fluxorio/ppqsort/pkg/core/failfast"
)

// Sort sorts s in ascending order
func Sort[S ~[]E, E cmp.Ordered](s S, opts ...Option) error {
	return SortFunc(s, cmp.Compare[E], opts...)
}

// SortFunc sorts s in the order defined by compare, as slices.SortFunc does
// The sort is not stable. Unless WithFaultPolicy(concurrency.FaultCrash) is
// given, a panic in compare is returned as an error; s is then left permuted
// but not sorted.
func SortFunc[S ~[]E, E any](s S, compare func(a, b E) int, opts ...Option) error {
	o := newOptions(opts)

	if len(s) <= o.threshold || o.threads == 1 {
		if o.policy == concurrency.FaultCrash {
			slices.SortFunc(s, compare)
			return nil
		}
		return sequential(s, compare)
	}

	config := concurrency.WorkerPoolConfig{
		Name:        o.name,
		Workers:     o.threads,
		FaultPolicy: o.policy,
	}
	err := concurrency.Run(context.Background(), config, func(pool concurrency.WorkerPool) {
		pool.Submit(partitionTask([]E(s), compare, o.threshold, depthLimit(len(s))))
	}, o.poolOpts...)
	if err != nil {
		return fmt.Errorf("psort: %w", err)
	}
	return nil
}

func sequential[S ~[]E, E any](s S, compare func(a, b E) int) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("psort: %w", failfast.Recovered(r))
		}
	}()
	slices.SortFunc(s, compare)
	return nil
}

// depthLimit bounds unbalanced recursion before falling back to slices.SortFunc
func depthLimit(n int) int {
	return 2 * bits.Len(uint(n))
}

// partitionTask sorts s, handing one side of every split to the pool
func partitionTask[E any](s []E, compare func(a, b E) int, threshold, limit int) concurrency.Task {
	return concurrency.NewNamedTask("psort.partition", func(ctx context.Context) {
		pool, _ := concurrency.PoolFromContext(ctx)

		for len(s) > threshold {
			if limit == 0 {
				// too many bad pivots, stop splitting this range
				break
			}
			limit--

			p := partition(s, compare)
			small, large := s[:p], s[p+1:]
			if len(small) > len(large) {
				small, large = large, small
			}

			if len(small) > threshold {
				pool.Submit(partitionTask(small, compare, threshold, limit))
			} else {
				slices.SortFunc(small, compare)
			}
			s = large
		}
		slices.SortFunc(s, compare)
	})
}

// partition places a median-of-three pivot at its final index and returns it
// Afterwards s[:p] <= s[p] <= s[p+1:]. len(s) must be at least 2.
func partition[E any](s []E, compare func(a, b E) int) int {
	n := len(s)
	medianOfThree(s, 0, n/2, n-1, compare)
	s[0], s[n/2] = s[n/2], s[0]
	pivot := s[0]

	i, j := 1, n-1
	for {
		for i <= j && compare(s[i], pivot) < 0 {
			i++
		}
		for i <= j && compare(s[j], pivot) > 0 {
			j--
		}
		if i >= j {
			break
		}
		s[i], s[j] = s[j], s[i]
		i++
		j--
	}
	s[0], s[j] = s[j], s[0]
	return j
}

// medianOfThree orders s[a] <= s[b] <= s[c]
func medianOfThree[E any](s []E, a, b, c int, compare func(a, b E) int) {
	if compare(s[b], s[a]) < 0 {
		s[a], s[b] = s[b], s[a]
	}
	if compare(s[c], s[b]) < 0 {
		s[b], s[c] = s[c], s[b]
		if compare(s[b], s[a]) < 0 {
			s[a], s[b] = s[b], s[a]
		}
	}
}
