package cli

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	obsprom "github.com/fluxorio/ppqsort/pkg/observability/prometheus"
	"github.com/fluxorio/ppqsort/pkg/observability/tracing"
	"github.com/fluxorio/ppqsort/pkg/psort"
)

type sortFlags struct {
	size        int
	threads     int
	threshold   int
	seed        int64
	metricsAddr string
	trace       string
	linger      time.Duration
}

func newSortCommand(a *app) *cobra.Command {
	f := &sortFlags{}

	cmd := &cobra.Command{
		Use:   "sort",
		Short: "Sort generated integers in parallel and verify the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a)
			return runSort(cmd.Context(), a, f.linger)
		},
	}

	cmd.Flags().IntVarP(&f.size, "size", "n", 0, "Number of integers to generate")
	cmd.Flags().IntVarP(&f.threads, "threads", "t", 0, "Worker count (-1 for GOMAXPROCS)")
	cmd.Flags().IntVar(&f.threshold, "threshold", 0, "Partition size sorted inline without splitting")
	cmd.Flags().Int64Var(&f.seed, "seed", 0, "Seed of the generator")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")
	cmd.Flags().StringVar(&f.trace, "trace", "", "Trace exporter (none, stdout, zipkin)")
	cmd.Flags().DurationVar(&f.linger, "linger", 0, "Keep the metrics endpoint up this long after sorting")

	return cmd
}

// apply overlays explicitly set flags on the loaded settings
func (f *sortFlags) apply(cmd *cobra.Command, a *app) {
	flags := cmd.Flags()
	if flags.Changed("size") {
		a.settings.Sort.Size = f.size
	}
	if flags.Changed("threads") {
		a.settings.Pool.Workers = f.threads
	}
	if flags.Changed("threshold") {
		a.settings.Sort.Threshold = f.threshold
	}
	if flags.Changed("seed") {
		a.settings.Sort.Seed = f.seed
	}
	if flags.Changed("metrics-addr") {
		a.settings.Metrics.Addr = f.metricsAddr
	}
	if flags.Changed("trace") {
		a.settings.Tracing.Exporter = f.trace
	}
}

func runSort(ctx context.Context, a *app, linger time.Duration) (err error) {
	if err := a.settings.Validate(); err != nil {
		return err
	}
	s := a.settings
	logger := a.logger.WithFields(map[string]interface{}{"pool": s.Pool.Name})

	registry := prometheus.NewRegistry()
	metrics := obsprom.NewPoolMetrics(registry)

	if s.Metrics.Addr != "" {
		srv, err := startMetricsServer(s.Metrics.Addr, registry)
		if err != nil {
			return err
		}
		logger.Infof("serving metrics on http://%s/metrics", srv.Addr())
		defer func() {
			if linger > 0 {
				logger.Infof("lingering %s for scrapes", linger)
				select {
				case <-time.After(linger):
				case <-ctx.Done():
				}
			}
			if shutdownErr := srv.Shutdown(); shutdownErr != nil {
				err = errors.Join(err, fmt.Errorf("metrics server: %w", shutdownErr))
			}
		}()
	}

	provider, err := tracing.NewTracerProvider(ctx, tracing.Config{
		Exporter:    s.Tracing.Exporter,
		Endpoint:    s.Tracing.Endpoint,
		ServiceName: s.Tracing.ServiceName,
		Writer:      a.stderr,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := provider.Shutdown(shutdownCtx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("tracer provider: %w", shutdownErr))
		}
	}()

	data := generate(s.Sort.Size, s.Sort.Seed)
	logger.Infof("sorting %d integers (seed %d, threshold %d)", len(data), s.Sort.Seed, s.Sort.Threshold)

	start := time.Now()
	err = psort.Sort(data,
		psort.WithName(s.Pool.Name),
		psort.WithThreads(s.Pool.Workers),
		psort.WithThreshold(s.Sort.Threshold),
		psort.WithFaultPolicy(s.Pool.FaultPolicy),
		psort.WithLogger(logger),
		psort.WithMetrics(metrics),
		psort.WithTracer(provider.Tracer("github.com/fluxorio/ppqsort/pkg/psort")),
	)
	elapsed := time.Since(start)
	if err != nil {
		return fmt.Errorf("sort failed: %w", err)
	}
	if !slices.IsSorted(data) {
		return fmt.Errorf("sort produced unordered output")
	}

	logger.Infof("sorted %d integers in %s", len(data), elapsed)
	return nil
}

// generate returns n pseudo-random ints; the same seed yields the same slice
func generate(n int, seed int64) []int {
	rng := rand.New(rand.NewSource(seed))
	data := make([]int, n)
	for i := range data {
		data[i] = rng.Int()
	}
	return data
}
