package config

import (
	"fmt"

	"github.com/fluxorio/ppqsort/pkg/core"
	"github.com/fluxorio/ppqsort/pkg/core/concurrency"
)

// EnvPrefix prefixes every environment override, e.g. PPQSORT_POOL_WORKERS
const EnvPrefix = "PPQSORT"

// Settings is the configuration of the ppqsort command
type Settings struct {
	Pool    concurrency.WorkerPoolConfig `yaml:"pool" json:"pool"`
	Sort    SortSettings                 `yaml:"sort" json:"sort"`
	Log     LogSettings                  `yaml:"log" json:"log"`
	Metrics MetricsSettings              `yaml:"metrics" json:"metrics"`
	Tracing TracingSettings              `yaml:"tracing" json:"tracing"`
}

// SortSettings controls the generated workload and the base-case size
type SortSettings struct {
	Threshold int   `yaml:"threshold" json:"threshold"` // Partitions at or below this size are sorted inline
	Size      int   `yaml:"size" json:"size"`           // Number of generated elements
	Seed      int64 `yaml:"seed" json:"seed"`           // Seed of the generator
}

// LogSettings controls the application logger
type LogSettings struct {
	Level string `yaml:"level" json:"level"`
}

// MetricsSettings controls the Prometheus endpoint; an empty Addr disables it
type MetricsSettings struct {
	Addr string `yaml:"addr" json:"addr"`
}

// TracingSettings selects an OpenTelemetry exporter
type TracingSettings struct {
	Exporter    string `yaml:"exporter" json:"exporter"` // none, stdout or zipkin
	Endpoint    string `yaml:"endpoint" json:"endpoint"` // zipkin collector URL
	ServiceName string `yaml:"service_name" json:"service_name"`
}

// Default returns the settings used when no file or env override is given
func Default() Settings {
	pool := concurrency.DefaultWorkerPoolConfig()
	pool.Name = "psort"
	return Settings{
		Pool: pool,
		Sort: SortSettings{
			Threshold: 2048,
			Size:      1_000_000,
			Seed:      1,
		},
		Log:     LogSettings{Level: "info"},
		Tracing: TracingSettings{Exporter: "none", ServiceName: "ppqsort"},
	}
}

// LoadSettings starts from Default, overlays path (if any) and PPQSORT_* variables, then validates
func LoadSettings(path string) (Settings, error) {
	settings := Default()
	if err := LoadWithEnv(path, EnvPrefix, &settings); err != nil {
		return Settings{}, err
	}
	if err := settings.Validate(); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// Validate checks ranges and enumerations
func (s Settings) Validate() error {
	err := Validate(&s,
		RangeValidator("Pool.Workers", concurrency.AutoWorkers, 4096),
		OneOfValidator("Pool.FaultPolicy", string(concurrency.FaultCollect), string(concurrency.FaultCrash)),
		RangeValidator("Sort.Threshold", 1, 1<<30),
		RangeValidator("Sort.Size", 0, 1<<31),
		OneOfValidator("Tracing.Exporter", "", "none", "stdout", "zipkin"),
	)
	if err != nil {
		return err
	}
	if _, err := core.ParseLevel(s.Log.Level); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if s.Tracing.Exporter == "zipkin" && s.Tracing.Endpoint == "" {
		return fmt.Errorf("validation failed: tracing.endpoint is required for the zipkin exporter")
	}
	return nil
}
