// Package psort is a parallel quicksort built on concurrency.WorkerPool.
//
// Each call owns a pool for its duration. The root task partitions the input,
// submits one side as a new task and keeps partitioning the other, so running
// tasks keep producing work until every partition is at or below the threshold.
// Partitions at or below the threshold are sorted inline with slices.SortFunc.
// The call returns after WaitAndStop, which only completes once no task is left
// running that could still submit.
//
//	data := []int{5, 2, 9, 1}
//	if err := psort.Sort(data, psort.WithThreads(4)); err != nil {
//	    // a comparator panicked
//	}
package psort
