package psort

import (
	"bytes"
	"cmp"
	"errors"
	"math/rand"
	"os"
	"os/exec"
	"slices"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxorio/ppqsort/pkg/core"
	"github.com/fluxorio/ppqsort/pkg/core/concurrency"
)

func randomInts(n int, seed int64, max int) []int {
	r := rand.New(rand.NewSource(seed))
	s := make([]int, n)
	for i := range s {
		s[i] = r.Intn(max)
	}
	return s
}

func TestSort_MatchesSlicesSort(t *testing.T) {
	inputs := map[string][]int{
		"empty":      {},
		"single":     {42},
		"pair":       {2, 1},
		"random":     randomInts(100_000, 1, 1<<30),
		"duplicates": randomInts(50_000, 2, 8),
		"all equal":  slices.Repeat([]int{7}, 20_000),
	}
	ascending := make([]int, 30_000)
	for i := range ascending {
		ascending[i] = i
	}
	inputs["ascending"] = ascending
	descending := slices.Clone(ascending)
	slices.Reverse(descending)
	inputs["descending"] = descending

	for name, input := range inputs {
		for _, threshold := range []int{1, 16, DefaultThreshold} {
			t.Run(name+"/"+strconv.Itoa(threshold), func(t *testing.T) {
				got := slices.Clone(input)
				want := slices.Clone(input)
				slices.Sort(want)

				err := Sort(got, WithThreads(4), WithThreshold(threshold), WithLogger(core.NopLogger()))
				require.NoError(t, err)
				assert.Equal(t, want, got)
			})
		}
	}
}

func TestSort_Threads(t *testing.T) {
	for _, threads := range []int{0, 1, 2, 8} {
		got := randomInts(20_000, int64(threads), 1000)
		require.NoError(t, Sort(got, WithThreads(threads), WithThreshold(64)))
		assert.True(t, slices.IsSorted(got), "threads=%d", threads)
	}
}

func TestSortFunc_Descending(t *testing.T) {
	words := make([]string, 10_000)
	r := rand.New(rand.NewSource(3))
	for i := range words {
		words[i] = strconv.Itoa(r.Intn(1_000_000))
	}
	desc := func(a, b string) int { return cmp.Compare(b, a) }

	require.NoError(t, SortFunc(words, desc, WithThreads(3), WithThreshold(32)))
	assert.True(t, slices.IsSortedFunc(words, desc))
}

type named []float64

func TestSort_NamedSliceType(t *testing.T) {
	s := named{3.5, -1, 2, 0, 9.25, 2}
	require.NoError(t, Sort(s, WithThreshold(1), WithThreads(2)))
	assert.Equal(t, named{-1, 0, 2, 2, 3.5, 9.25}, s)
}

func TestSortFunc_PanickingComparator(t *testing.T) {
	boom := errors.New("cannot compare")
	bad := func(a, b int) int {
		if a == 13 || b == 13 {
			panic(boom)
		}
		return cmp.Compare(a, b)
	}

	t.Run("parallel", func(t *testing.T) {
		s := randomInts(10_000, 4, 1000)
		s[len(s)/3] = 13
		err := SortFunc(s, bad, WithThreads(2), WithThreshold(16), WithLogger(core.NopLogger()))
		require.Error(t, err)
		assert.True(t, errors.Is(err, concurrency.ErrTaskPanic))
		assert.True(t, errors.Is(err, boom))
	})

	t.Run("sequential", func(t *testing.T) {
		s := []int{5, 13, 1}
		err := SortFunc(s, bad)
		require.Error(t, err)
		assert.True(t, errors.Is(err, boom))
	})
}

// splitRecorder counts executed partition tasks
type splitRecorder struct {
	executed atomic.Int64
	workers  atomic.Int64
}

func (r *splitRecorder) TaskSubmitted(string, int)   {}
func (r *splitRecorder) TaskStarted(string, int, int) {}
func (r *splitRecorder) TaskFinished(string, int, time.Duration, bool) {
	r.executed.Add(1)
}
func (r *splitRecorder) WorkersStarted(_ string, n int) { r.workers.Store(int64(n)) }
func (r *splitRecorder) WorkersStopped(string)          {}

func TestSort_SplitsIntoTasks(t *testing.T) {
	recorder := &splitRecorder{}
	s := randomInts(200_000, 5, 1<<20)

	require.NoError(t, Sort(s, WithThreads(4), WithThreshold(1024), WithMetrics(recorder), WithName("split")))
	assert.True(t, slices.IsSorted(s))
	assert.Equal(t, int64(4), recorder.workers.Load())
	assert.Greater(t, recorder.executed.Load(), int64(1), "root task should have produced more tasks")
}

func TestSort_BelowThresholdSkipsPool(t *testing.T) {
	recorder := &splitRecorder{}
	s := []int{3, 1, 2}
	require.NoError(t, Sort(s, WithMetrics(recorder)))
	assert.Equal(t, []int{1, 2, 3}, s)
	assert.Equal(t, int64(0), recorder.workers.Load())
}

func TestPartition(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		s := randomInts(2+int(seed), seed, 10)
		p := partition(s, cmp.Compare[int])
		for i := 0; i < p; i++ {
			require.LessOrEqual(t, s[i], s[p], "seed %d", seed)
		}
		for i := p + 1; i < len(s); i++ {
			require.GreaterOrEqual(t, s[i], s[p], "seed %d", seed)
		}
	}
}

func TestNewOptions_FaultPolicy(t *testing.T) {
	assert.Equal(t, concurrency.FaultCollect, newOptions(nil).policy)
	assert.Equal(t, concurrency.FaultCollect, newOptions([]Option{WithFaultPolicy("")}).policy)
	assert.Equal(t, concurrency.FaultCrash, newOptions([]Option{WithFaultPolicy(concurrency.FaultCrash)}).policy)
}

// crashChildEnv selects the sort run inside the re-executed test binary
const crashChildEnv = "PSORT_FAULT_CRASH_CHILD"

func TestSortFunc_FaultCrash(t *testing.T) {
	bad := func(a, b int) int {
		if a == 13 || b == 13 {
			panic("cannot compare 13")
		}
		return cmp.Compare(a, b)
	}

	switch os.Getenv(crashChildEnv) {
	case "parallel":
		s := randomInts(10_000, 4, 1000)
		s[len(s)/2] = 13
		_ = SortFunc(s, bad, WithThreads(2), WithThreshold(16), WithFaultPolicy(concurrency.FaultCrash))
		return
	case "sequential":
		_ = SortFunc([]int{5, 13, 1}, bad, WithFaultPolicy(concurrency.FaultCrash))
		return
	}

	for _, mode := range []string{"parallel", "sequential"} {
		t.Run(mode, func(t *testing.T) {
			cmd := exec.Command(os.Args[0], "-test.run=^TestSortFunc_FaultCrash$")
			cmd.Env = append(os.Environ(), crashChildEnv+"="+mode)
			var stderr bytes.Buffer
			cmd.Stderr = &stderr

			err := cmd.Run()
			var exitErr *exec.ExitError
			require.True(t, errors.As(err, &exitErr), "child should crash, got %v\n%s", err, stderr.String())
			assert.NotZero(t, exitErr.ExitCode())
			assert.Contains(t, stderr.String(), "panic: ")
			assert.Contains(t, stderr.String(), "cannot compare 13")
		})
	}
}
