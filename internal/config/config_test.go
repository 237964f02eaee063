package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validJob = `
input {
  path   = "testdata/events.csv"
  schema = "id BIGINT, name TEXT"

  options = {
    header    = "true"
    delimiter = ","
  }
}

storage {
  kind         = "postgres"
  dsn          = "postgres://localhost/app"
  table        = "public.events"
  create_table = true
}

runtime {
  batch_size = 500
  workers    = 2
}
`

func TestParse_Valid(t *testing.T) {
	t.Parallel()

	job, err := Parse([]byte(validJob), "job.hcl")
	require.NoError(t, err)

	assert.Equal(t, "testdata/events.csv", job.Input.Path)
	assert.Equal(t, "id BIGINT, name TEXT", job.Input.Schema)
	assert.Equal(t, "true", job.Input.Options["header"])
	assert.Equal(t, ",", job.Input.Options["delimiter"])

	assert.Equal(t, "postgres", job.Storage.Kind)
	assert.True(t, job.Storage.CreateTable)

	assert.Equal(t, 500, job.Runtime.BatchSize)
	assert.Equal(t, 2, job.Runtime.Workers)
}

func TestParse_Defaults(t *testing.T) {
	t.Parallel()

	const minimal = `
input {
  path = "data.csv"
}

storage {
  kind  = "sqlite"
  dsn   = "out.db"
  table = "events"
}
`
	job, err := Parse([]byte(minimal), "job.hcl")
	require.NoError(t, err)

	require.NotNil(t, job.Runtime)
	assert.Equal(t, 1000, job.Runtime.BatchSize)
	assert.Equal(t, 4, job.Runtime.Workers)
	assert.Equal(t, 256, job.Runtime.ChannelBuffer)
	assert.Equal(t, "UTC", job.Runtime.TimeZone)
	assert.Equal(t, 1000, job.Input.SampleLines)

	require.NotNil(t, job.Metrics)
	assert.Equal(t, "none", job.Metrics.Kind)
}

func TestParse_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string // substring of the error
	}{
		{
			name: "syntax error",
			src:  `input {`,
			want: "parse",
		},
		{
			name: "missing path",
			src: `
input { path = "" }

storage {
  kind  = "sqlite"
  dsn   = "x.db"
  table = "t"
}
`,
			want: "input.path",
		},
		{
			name: "unknown storage kind",
			src: `
input { path = "a.csv" }

storage {
  kind  = "oracle"
  dsn   = "x"
  table = "t"
}
`,
			want: "storage.kind",
		},
		{
			name: "metrics endpoint required",
			src: `
input { path = "a.csv" }

storage {
  kind  = "sqlite"
  dsn   = "x.db"
  table = "t"
}

metrics { kind = "prometheus" }
`,
			want: "metrics.endpoint",
		},
		{
			name: "bad time zone",
			src: `
input { path = "a.csv" }

storage {
  kind  = "sqlite"
  dsn   = "x.db"
  table = "t"
}

runtime { time_zone = "Not/AZone" }
`,
			want: "time_zone",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.src), "job.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
