package storage

import (
	"context"
	"fmt"
	"log"
	"time"

	"csvcodec/internal/metrics"
	"csvcodec/internal/schema"
)

// LoadBatches drains decoded rows from in, converts each to driver values,
// groups them into batches of batchSize, and writes every non-empty batch
// through repo.CopyFrom. It returns the total inserted row count and the
// first error encountered.
//
// Returns (total, ctx.Err()) when canceled. Progress is logged on each
// successful flush with running totals and rows/sec since the last flush.
func LoadBatches(
	ctx context.Context,
	repo Repository,
	sch schema.Schema,
	in <-chan schema.Row,
	batchSize int,
) (int64, error) {
	if batchSize <= 0 {
		return 0, fmt.Errorf("storage: batchSize must be > 0")
	}
	if repo == nil {
		return 0, fmt.Errorf("storage: repo must not be nil")
	}

	var (
		total       int64
		batches     int64
		columns     = sch.Names()
		batch       = make([][]any, 0, batchSize)
		start       = time.Now()
		lastFlushTS = start
		lastTotal   int64
	)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := repo.CopyFrom(ctx, columns, batch)
		total += n

		// Reuse allocated slice; keep capacity to avoid churn.
		batch = batch[:0]

		if err != nil {
			log.Printf("loader: bulk insert failed after=%d total=%d err=%v", n, total, err)

			return err
		}

		batches++
		metrics.RecordBatches(1)
		metrics.RecordRows("inserted", n)

		now := time.Now()
		sinceLast := now.Sub(lastFlushTS)
		insertedSinceLast := total - lastTotal
		rps := float64(0)
		if sinceLast > 0 {
			rps = float64(insertedSinceLast) / sinceLast.Seconds()
		}
		log.Printf(
			"batch #%d: rps=%.0f inserted=%d total_inserted=%d elapsed=%s since_last=%s",
			batches,
			rps,
			n,
			total,
			now.Sub(start).Truncate(time.Millisecond),
			sinceLast.Truncate(time.Millisecond),
		)
		lastFlushTS = now
		lastTotal = total

		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return total, ctx.Err()

		case row, ok := <-in:
			if !ok {
				// Channel closed: flush remaining rows.
				if err := flush(); err != nil {
					return total, err
				}
				log.Printf("loader: input closed total_inserted=%d batches=%d", total, batches)

				return total, nil
			}
			batch = append(batch, DriverValues(sch, row))
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
}
