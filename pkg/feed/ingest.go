package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"levelbook/pkg/obs"
	"levelbook/pkg/orderbook"
)

// Applier receives decoded quotes; *registry.Registry satisfies it.
type Applier interface {
	Apply(ctx context.Context, instrument string, price int, quantity int64, side orderbook.Side) error
}

type Stats struct {
	Lines    int
	Applied  int
	Rejected int
}

type Ingester struct {
	applier     Applier
	obs         *obs.Client
	metrics     *obs.Metrics
	stopOnError bool
}

type Option func(*Ingester)

// WithStopOnError makes Run return on the first malformed or rejected record
// instead of logging and skipping it.
func WithStopOnError(stop bool) Option {
	return func(in *Ingester) {
		in.stopOnError = stop
	}
}

func NewIngester(applier Applier, obs *obs.Client, metrics *obs.Metrics, opts ...Option) *Ingester {
	in := &Ingester{
		applier: applier,
		obs:     obs,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Run applies every record read from r until EOF, cancellation, or (with
// WithStopOnError) the first bad record.
func (in *Ingester) Run(ctx context.Context, r io.Reader) (Stats, error) {
	var stats Stats
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Lines++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if err := in.apply(ctx, line); err != nil {
			stats.Rejected++
			recordErr := withLine(err, stats.Lines)
			in.obs.LogErr(ctx, "feed.ingest.rejected line=%d err=%v", stats.Lines, err)
			if in.stopOnError {
				return stats, recordErr
			}
			continue
		}
		stats.Applied++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("read feed: %w", err)
	}

	in.obs.LogInfo(ctx, "feed.ingest.done lines=%d applied=%d rejected=%d", stats.Lines, stats.Applied, stats.Rejected)
	return stats, nil
}

// RunFile ingests a feed file; "-" reads standard input.
func (in *Ingester) RunFile(ctx context.Context, path string) (Stats, error) {
	if path == "-" {
		return in.Run(ctx, os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open feed: %w", err)
	}
	defer f.Close()

	in.obs.LogInfo(ctx, "feed.ingest.start path=%s", path)
	return in.Run(ctx, f)
}

// ApplyLine decodes and applies a single record.
func (in *Ingester) ApplyLine(ctx context.Context, line string) error {
	return in.apply(ctx, strings.TrimSpace(line))
}

func (in *Ingester) apply(ctx context.Context, line string) error {
	quote, err := ParseQuote(line)
	if err != nil {
		in.metrics.QuoteRejected("malformed")
		return err
	}
	return in.ApplyQuote(ctx, quote)
}

func (in *Ingester) ApplyQuote(ctx context.Context, quote Quote) error {
	return in.applier.Apply(ctx, quote.Instrument, quote.Price, quote.Quantity, quote.Side)
}

func withLine(err error, line int) error {
	var recordErr *RecordError
	if errors.As(err, &recordErr) {
		located := *recordErr
		located.Line = line
		return &located
	}
	return &RecordError{Line: line, Err: err}
}
