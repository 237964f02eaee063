package config

import (
	"fmt"
	"time"
)

var storageKinds = map[string]bool{
	"postgres": true,
	"sqlite":   true,
	"mssql":    true,
}

var metricsKinds = map[string]bool{
	"none":       true,
	"prometheus": true,
	"datadog":    true,
}

// Validate reports the first structural problem in the job. Option values
// inside input.options are validated later by the codec itself.
func (j *Job) Validate() error {
	if j.Input.Path == "" {
		return fmt.Errorf("config: input.path is required")
	}
	if j.Storage.Kind == "" {
		return fmt.Errorf("config: storage.kind is required")
	}
	if !storageKinds[j.Storage.Kind] {
		return fmt.Errorf("config: unknown storage.kind %q", j.Storage.Kind)
	}
	if j.Storage.DSN == "" {
		return fmt.Errorf("config: storage.dsn is required")
	}
	if j.Storage.Table == "" {
		return fmt.Errorf("config: storage.table is required")
	}
	if j.Metrics != nil && !metricsKinds[j.Metrics.Kind] {
		return fmt.Errorf("config: unknown metrics.kind %q", j.Metrics.Kind)
	}
	if j.Metrics != nil && j.Metrics.Kind != "none" && j.Metrics.Endpoint == "" {
		return fmt.Errorf("config: metrics.endpoint is required for kind %q", j.Metrics.Kind)
	}
	if j.Runtime != nil && j.Runtime.TimeZone != "" {
		if _, err := time.LoadLocation(j.Runtime.TimeZone); err != nil {
			return fmt.Errorf("config: runtime.time_zone: %w", err)
		}
	}
	return nil
}
