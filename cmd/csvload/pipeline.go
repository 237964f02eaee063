package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"

	"csvcodec/internal/codec"
	"csvcodec/internal/config"
	"csvcodec/internal/infer"
	"csvcodec/internal/metrics"
	"csvcodec/internal/rawcsv"
	"csvcodec/internal/schema"
	"csvcodec/internal/storage"
)

// run executes one load job end to end: resolve the schema, open the
// destination, then stream records through decode workers into the batched
// loader. Returns the inserted row count.
func run(ctx context.Context, job *config.Job) (int64, error) {
	copt, err := codec.ResolveOptions(job.Input.Options, job.Runtime.TimeZone, "")
	if err != nil {
		return 0, err
	}

	declared, err := resolveSchema(job, copt)
	if err != nil {
		return 0, err
	}

	// A prototype decoder pins down the output row shape; workers get their
	// own instances since a decoder is not safe for concurrent use.
	proto, err := newDecoder(job, declared)
	if err != nil {
		return 0, err
	}
	out := proto.Schema()

	repo, err := storage.New(ctx, storage.Config{
		Kind:    job.Storage.Kind,
		DSN:     job.Storage.DSN,
		Table:   job.Storage.Table,
		Columns: out.Names(),
	})
	if err != nil {
		return 0, err
	}
	defer repo.Close()

	if job.Storage.CreateTable {
		cfg := storage.Config{Kind: job.Storage.Kind, Table: job.Storage.Table}
		if err := storage.EnsureTable(ctx, repo, cfg, out); err != nil {
			return 0, err
		}
	}

	var (
		records = make(chan string, job.Runtime.ChannelBuffer)
		rows    = make(chan schema.Row, job.Runtime.ChannelBuffer)
		total   int64
	)

	g, ctx := errgroup.WithContext(ctx)

	// Reader: split the file into raw records, skipping the header row.
	g.Go(func() error {
		defer close(records)
		start := time.Now()

		f, err := os.Open(job.Input.Path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()

		sc := rawcsv.NewScanner(f, rawcsv.Options{
			Quote:     copt.Quote,
			RecordSep: fileRecordSep(job.Input.Options, copt),
		})
		skip := copt.Header
		for sc.Scan() {
			if skip {
				skip = false
				continue
			}
			select {
			case records <- sc.Text():
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		metrics.RecordStep("read", sc.Err(), time.Since(start))
		return sc.Err()
	})

	// Decode workers: one decoder instance each.
	workers, wctx := errgroup.WithContext(ctx)
	for i := 0; i < job.Runtime.Workers; i++ {
		workers.Go(func() error {
			dec, err := newDecoder(job, declared)
			if err != nil {
				return err
			}
			for rec := range records {
				row, err := dec.Decode(rec)
				if err != nil {
					return err
				}
				metrics.RecordRows("decoded", 1)
				select {
				case rows <- row:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(rows)
		return workers.Wait()
	})

	// Loader: batch rows into the repository.
	g.Go(func() error {
		start := time.Now()
		n, err := storage.LoadBatches(ctx, repo, out, rows, job.Runtime.BatchSize)
		total = n
		metrics.RecordStep("load", err, time.Since(start))
		return err
	})

	if err := g.Wait(); err != nil {
		return total, err
	}
	return total, nil
}

// resolveSchema parses the declared column description, or infers one from a
// sample of the input file when the job leaves it empty. A configured
// corrupt-record column is appended when the description omits it.
func resolveSchema(job *config.Job, copt codec.Options) (schema.Schema, error) {
	desc := job.Input.Schema
	if desc == "" {
		start := time.Now()
		sample, err := readSample(job.Input.Path, job.Input.SampleLines)
		if err != nil {
			return nil, err
		}
		ev, err := infer.NewEvaluator(job.Input.Options)
		if err != nil {
			return nil, err
		}
		desc, err = ev.Evaluate(sample)
		if err != nil {
			return nil, err
		}
		metrics.RecordStep("infer", nil, time.Since(start))
		log.Printf("inferred schema: %s", desc)
	}

	sch, err := schema.ParseDDL(desc)
	if err != nil {
		return nil, err
	}
	if copt.CorruptColumn != "" && sch.IndexOf(copt.CorruptColumn) < 0 {
		sch = append(sch, schema.Field{Name: copt.CorruptColumn, Type: cty.String, Nullable: true})
	}
	return sch, nil
}

func newDecoder(job *config.Job, declared schema.Schema) (*codec.Decoder, error) {
	return codec.NewDecoder(declared, nil, job.Input.Options, job.Runtime.TimeZone, "")
}

// readSample returns up to maxLines leading lines of the file.
func readSample(path string, maxLines int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	var (
		b  strings.Builder
		br = bufio.NewReader(f)
	)
	for i := 0; i < maxLines; i++ {
		line, err := br.ReadString('\n')
		b.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
	}
	return b.String(), nil
}

// fileRecordSep picks the separator used to split the input file into
// records. Decoding a single record uses a sentinel separator, so that
// default is replaced with a newline here; an explicit lineSep option wins.
func fileRecordSep(raw map[string]string, copt codec.Options) rune {
	if _, ok := raw["lineSep"]; ok {
		return copt.RecordSep
	}
	return '\n'
}
