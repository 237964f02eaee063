// Command csvload decodes a CSV file into typed rows and bulk-loads them
// into a SQL backend. The job (input file, schema or inference, codec
// options, destination, runtime knobs) is described by an HCL config file.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"csvcodec/internal/config"
	"csvcodec/internal/metrics"
	"csvcodec/internal/metrics/datadog"
	"csvcodec/internal/metrics/prompush"

	// register all backends with the storage factory.
	_ "csvcodec/internal/storage/all"
)

func main() {
	var (
		cfgPath  string
		validate bool
	)

	flag.StringVar(&cfgPath, "config", "job.hcl", "job config HCL path")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	job, err := config.Load(cfgPath)
	if err != nil {
		fatalf("%v", err)
	}
	if validate {
		log.Printf("configuration is valid: %v", cfgPath)
		os.Exit(0)
	}

	initMetrics(job.Metrics, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Printf("metrics: flush error: %v", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()

	if *verbose {
		log.Printf("job: input=%s storage=%s table=%s workers=%d batch=%d",
			job.Input.Path, job.Storage.Kind, job.Storage.Table,
			job.Runtime.Workers, job.Runtime.BatchSize)
	}

	total, err := run(ctx, job)
	if err != nil {
		log.Fatalf("%v", err)
	}

	log.Printf("loaded %d rows in %s", total, time.Since(start).Truncate(time.Millisecond))
}

// initMetrics wires the configured metrics backend, falling back to the nop
// backend on any setup failure.
func initMetrics(mc *config.Metrics, verbose bool) {
	switch mc.Kind {
	case "prometheus":
		jobName := mc.JobName
		if jobName == "" {
			jobName = "csvload"
		}
		b, err := prompush.NewBackend(jobName, mc.Endpoint)
		if err != nil {
			log.Printf("metrics: failed to init pushgateway backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=pushgateway url=%v job=%v", mc.Endpoint, jobName)
		}

	case "datadog":
		b, err := datadog.NewBackend(datadog.Config{Addr: mc.Endpoint, Namespace: "csvload"})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
			return
		}
		metrics.SetBackend(b)
		if verbose {
			log.Printf("metrics: backend=datadog addr=%v", mc.Endpoint)
		}

	case "none":
		if verbose {
			log.Printf("metrics: disabled")
		}
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
