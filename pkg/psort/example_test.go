package psort_test

import (
	"fmt"

	"github.com/fluxorio/ppqsort/pkg/psort"
)

func ExampleSort() {
	data := []int{9, 3, 7, 1, 8, 2, 6, 4, 5, 0}
	if err := psort.Sort(data, psort.WithThreads(2), psort.WithThreshold(2)); err != nil {
		fmt.Println("sort failed:", err)
		return
	}
	fmt.Println(data)
	// Output: [0 1 2 3 4 5 6 7 8 9]
}
