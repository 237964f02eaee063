// Package config defines the HCL job model for the csvload command: where
// the input file lives, how its text is decoded, which storage backend
// receives the rows, and the runtime knobs for batching and concurrency.
//
// A job file looks like:
//
//	input {
//	  path   = "events.csv"
//	  schema = "id BIGINT, name TEXT, at TIMESTAMPTZ"
//
//	  options = {
//	    header    = "true"
//	    delimiter = ","
//	    mode      = "PERMISSIVE"
//	  }
//	}
//
//	storage {
//	  kind         = "postgres"
//	  dsn          = "postgres://localhost/app"
//	  table        = "public.events"
//	  create_table = true
//	}
//
//	runtime {
//	  batch_size = 1000
//	  workers    = 4
//	}
//
// When input.schema is empty the loader infers one from a sample of the
// file. Option keys in input.options match the codec option names.
package config

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Job is the top-level object decoded from a job file.
type Job struct {
	Input   Input    `hcl:"input,block"`
	Storage Storage  `hcl:"storage,block"`
	Runtime *Runtime `hcl:"runtime,block"`
	Metrics *Metrics `hcl:"metrics,block"`
}

// Input describes the CSV file to decode.
type Input struct {
	// Path is the local filesystem path to the input file.
	Path string `hcl:"path"`

	// Schema is a column description like "id BIGINT, name TEXT".
	// Empty means infer from a sample of the file.
	Schema string `hcl:"schema,optional"`

	// SampleLines bounds how many lines feed schema inference.
	SampleLines int `hcl:"sample_lines,optional"`

	// Options is the codec option bag (header, delimiter, mode, ...).
	Options map[string]string `hcl:"options,optional"`
}

// Storage selects the destination backend.
type Storage struct {
	Kind        string `hcl:"kind"`
	DSN         string `hcl:"dsn"`
	Table       string `hcl:"table"`
	CreateTable bool   `hcl:"create_table,optional"`
}

// Runtime controls concurrency and batching.
type Runtime struct {
	BatchSize     int    `hcl:"batch_size,optional"`
	Workers       int    `hcl:"workers,optional"`
	ChannelBuffer int    `hcl:"channel_buffer,optional"`
	TimeZone      string `hcl:"time_zone,optional"`
}

// Metrics selects an optional metrics backend.
type Metrics struct {
	Kind     string `hcl:"kind"` // "prometheus", "datadog" or "none"
	Endpoint string `hcl:"endpoint,optional"`
	JobName  string `hcl:"job,optional"`
}

// Load reads and decodes a job file, applying defaults and validating.
func Load(path string) (*Job, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(content, path)
}

// Parse decodes job HCL from memory. filename is used in diagnostics only.
func Parse(src []byte, filename string) (*Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("config: parse %s: %s", filename, diags.Error())
	}

	var job Job
	if diags := gohcl.DecodeBody(file.Body, nil, &job); diags.HasErrors() {
		return nil, fmt.Errorf("config: decode %s: %s", filename, diags.Error())
	}

	job.applyDefaults()
	if err := job.Validate(); err != nil {
		return nil, err
	}
	return &job, nil
}

func (j *Job) applyDefaults() {
	if j.Runtime == nil {
		j.Runtime = &Runtime{}
	}
	if j.Runtime.BatchSize <= 0 {
		j.Runtime.BatchSize = 1000
	}
	if j.Runtime.Workers <= 0 {
		j.Runtime.Workers = 4
	}
	if j.Runtime.ChannelBuffer <= 0 {
		j.Runtime.ChannelBuffer = 256
	}
	if j.Runtime.TimeZone == "" {
		j.Runtime.TimeZone = "UTC"
	}
	if j.Input.SampleLines <= 0 {
		j.Input.SampleLines = 1000
	}
	if j.Metrics == nil {
		j.Metrics = &Metrics{Kind: "none"}
	}
}
