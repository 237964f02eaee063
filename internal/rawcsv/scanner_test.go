package rawcsv

import (
	"reflect"
	"strings"
	"testing"
)

func scanAll(t *testing.T, input string, opt Options) []string {
	t.Helper()
	sc := NewScanner(strings.NewReader(input), opt)
	var out []string
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan: %v", err)
	}
	return out
}

func TestScanner(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		opt   Options
		want  []string
	}{
		{
			name:  "plain lines",
			input: "a,b\nc,d\n",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "no trailing newline",
			input: "a,b\nc,d",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "quoted newline stays in record",
			input: "a,\"x\ny\"\nb,z\n",
			want:  []string{"a,\"x\ny\"", "b,z"},
		},
		{
			name:  "crlf input",
			input: "a,b\r\nc,d\r\n",
			want:  []string{"a,b", "c,d"},
		},
		{
			name:  "empty line preserved",
			input: "a\n\nb\n",
			want:  []string{"a", "", "b"},
		},
		{
			name:  "custom separator",
			input: "a|b;c|d;",
			opt:   Options{RecordSep: ';'},
			want:  []string{"a|b", "c|d"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := scanAll(t, tc.input, tc.opt)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("records = %q, want %q", got, tc.want)
			}
		})
	}
}
