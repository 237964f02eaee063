// Command csvinfer samples a CSV file and prints the inferred column
// description, e.g. "id BIGINT, name TEXT, at TIMESTAMPTZ". The output is
// directly usable as the schema of a csvload job.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"csvcodec/internal/infer"
)

var (
	flagFile      = flag.String("file", "", "Path of the CSV file to sample ('-' for stdin)")
	flagLines     = flag.Int("lines", 1000, "Number of leading lines to sample")
	flagDelimiter = flag.String("delimiter", ",", "CSV field delimiter (single character)")
	flagHeader    = flag.Bool("header", true, "Treat the first line as a header row")
	flagNull      = flag.String("null", "", "Token to treat as null")
	flagDateFmt   = flag.String("dateformat", "", "Expected date layout in Go reference time form")
)

func main() {
	flag.Parse()

	if *flagFile == "" {
		fmt.Fprintln(os.Stderr, "csvinfer: -file is required")
		flag.Usage()
		os.Exit(2)
	}

	sample, err := readSample(*flagFile, *flagLines)
	if err != nil {
		fatalf("csvinfer: %v", err)
	}

	ev, err := infer.NewEvaluator(options())
	if err != nil {
		fatalf("csvinfer: %v", err)
	}
	desc, err := ev.Evaluate(sample)
	if err != nil {
		fatalf("csvinfer: %v", err)
	}
	fmt.Println(desc)
}

// options assembles the codec option map from the flags.
func options() map[string]string {
	raw := map[string]string{
		"delimiter": *flagDelimiter,
		"header":    fmt.Sprint(*flagHeader),
	}
	if *flagNull != "" {
		raw["nullValue"] = *flagNull
	}
	if *flagDateFmt != "" {
		raw["dateFormat"] = *flagDateFmt
	}
	return raw
}

func readSample(path string, maxLines int) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	var (
		b  strings.Builder
		br = bufio.NewReader(r)
	)
	for i := 0; i < maxLines; i++ {
		line, err := br.ReadString('\n')
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return b.String(), nil
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
