package rawcsv

import (
	"testing"
	"time"

	"github.com/zclconf/go-cty/cty"

	"csvcodec/internal/rowtype"
	"csvcodec/internal/schema"
)

func TestWriter_Write(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{
		{Name: "n", Type: cty.Number},
		{Name: "s", Type: cty.String},
		{Name: "ok", Type: cty.Bool},
	}
	w := NewWriter(fields, Options{})

	got, err := w.Write(schema.Row{
		cty.NumberIntVal(1),
		cty.StringVal("x"),
		cty.False,
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := "1,x,false"; got != want {
		t.Fatalf("Write = %q, want %q", got, want)
	}
}

func TestWriter_QuotesDelimiters(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{
		{Name: "a", Type: cty.String},
		{Name: "b", Type: cty.String},
	}
	w := NewWriter(fields, Options{})

	got, err := w.Write(schema.Row{
		cty.StringVal("x,1"),
		cty.StringVal(`say "hi"`),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := `"x,1","say ""hi"""`; got != want {
		t.Fatalf("Write = %q, want %q", got, want)
	}
}

func TestWriter_Nulls(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{
		{Name: "a", Type: cty.String},
		{Name: "b", Type: cty.Number},
	}

	t.Run("default empty", func(t *testing.T) {
		w := NewWriter(fields, Options{})
		got, err := w.Write(schema.Row{cty.NullVal(cty.String), cty.NullVal(cty.Number)})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if want := ","; got != want {
			t.Fatalf("Write = %q, want %q", got, want)
		}
	})

	t.Run("null literal", func(t *testing.T) {
		w := NewWriter(fields, Options{NullValue: "NA"})
		got, err := w.Write(schema.Row{cty.NullVal(cty.String), cty.NumberIntVal(2)})
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if want := "NA,2"; got != want {
			t.Fatalf("Write = %q, want %q", got, want)
		}
	})
}

func TestWriter_Numbers(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{{Name: "n", Type: cty.Number}}
	w := NewWriter(fields, Options{})

	tests := []struct {
		val  cty.Value
		want string
	}{
		{cty.NumberIntVal(42), "42"},
		{cty.NumberFloatVal(0.8), "0.8"},
		{cty.NumberFloatVal(-1.5), "-1.5"},
		{cty.NumberIntVal(0), "0"},
	}
	for _, tc := range tests {
		got, err := w.Write(schema.Row{tc.val})
		if err != nil {
			t.Fatalf("Write(%#v): %v", tc.val, err)
		}
		if got != tc.want {
			t.Errorf("Write(%#v) = %q, want %q", tc.val, got, tc.want)
		}
	}
}

func TestWriter_Temporal(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{
		{Name: "d", Type: rowtype.Date},
		{Name: "at", Type: rowtype.Timestamp},
	}
	w := NewWriter(fields, Options{})

	d := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	got, err := w.Write(schema.Row{rowtype.DateVal(d), rowtype.TimestampVal(at)})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if want := "2024-03-15,2024-03-15T10:30:00Z"; got != want {
		t.Fatalf("Write = %q, want %q", got, want)
	}
}

func TestWriter_Containers(t *testing.T) {
	t.Parallel()

	fields := schema.Schema{
		{Name: "l", Type: cty.List(cty.Number)},
		{Name: "o", Type: cty.Object(map[string]cty.Type{"b": cty.Number, "a": cty.String})},
	}
	w := NewWriter(fields, Options{})

	got, err := w.Write(schema.Row{
		cty.ListVal([]cty.Value{cty.NumberIntVal(1), cty.NumberIntVal(2)}),
		cty.ObjectVal(map[string]cty.Value{"b": cty.NumberIntVal(3), "a": cty.StringVal("x")}),
	})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	// Object attributes render in sorted name order; brackets force quoting
	// only when the delimiter is embedded.
	if want := `"[1,2]","{a:x,b:3}"`; got != want {
		t.Fatalf("Write = %q, want %q", got, want)
	}
}

func TestWriter_WidthMismatch(t *testing.T) {
	t.Parallel()

	w := NewWriter(schema.Schema{{Name: "a", Type: cty.String}}, Options{})
	if _, err := w.Write(schema.Row{cty.StringVal("x"), cty.StringVal("y")}); err == nil {
		t.Fatalf("expected width error")
	}
}
