package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"levelbook/pkg/obs"
	"levelbook/pkg/orderbook"
)

const menu = `1. Print top level
2. Print all bids/asks
3. Average price
4. Total Quantity
5. Volume Weighted Price

Enter 1-5:`

var errEndOfInput = errors.New("end of input")

// BookSource looks up books without creating them; *registry.Registry satisfies it.
type BookSource interface {
	Book(instrument string) (*orderbook.Book, bool)
}

type Console struct {
	books BookSource
	in    io.Reader
	out   io.Writer
	obs   *obs.Client

	lines   <-chan string
	readErr error
}

func New(books BookSource, in io.Reader, out io.Writer, obs *obs.Client) *Console {
	return &Console{
		books: books,
		in:    in,
		out:   out,
		obs:   obs,
	}
}

// Run serves menu requests until the input is exhausted or ctx is done. A
// pending read does not hold Run once ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.lines = c.scan(ctx)
	for {
		err := c.serveOne(ctx)
		if errors.Is(err, errEndOfInput) {
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			c.obs.LogDebug(ctx, "console.request.failed err=%v", err)
			fmt.Fprintf(c.out, "Exception occurred %s\n", err)
		}
	}
}

func (c *Console) serveOne(ctx context.Context) error {
	fmt.Fprintln(c.out, menu)
	action, err := c.readInt(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, "Enter instrument:")
	instrument, err := c.readLine(ctx)
	if err != nil {
		return err
	}

	book, ok := c.books.Book(instrument)
	if !ok {
		fmt.Fprintf(c.out, "No data exists for this instrument %s\n", instrument)
		return nil
	}

	switch action {
	case 1:
		fmt.Fprintln(c.out, book.TopLevel().String())
	case 2:
		fmt.Fprintln(c.out, book.Snapshot().String())
	case 3, 4, 5:
		fmt.Fprintln(c.out, "Enter number of levels: ")
		levels, err := c.readInt(ctx)
		if err != nil {
			return err
		}
		if levels < 1 {
			return fmt.Errorf("number of levels must be positive, got %d", levels)
		}
		switch action {
		case 3:
			fmt.Fprintln(c.out, book.AveragePrice(levels).StringFixed(orderbook.PricePrecision))
		case 4:
			fmt.Fprintln(c.out, book.TotalQuantity(levels).StringFixed(orderbook.QuantityPrecision))
		case 5:
			fmt.Fprintln(c.out, book.VolumeWeightedPrice(levels).StringFixed(orderbook.PricePrecision))
		}
	default:
		fmt.Fprintln(c.out, "Invalid action choice")
	}
	fmt.Fprintln(c.out)
	return nil
}

// scan feeds input lines to the returned channel, closed at end of input.
// readErr is set before the close.
func (c *Console) scan(ctx context.Context) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		c.readErr = scanner.Err()
	}()
	return lines
}

func (c *Console) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			if c.readErr != nil {
				return "", c.readErr
			}
			return "", errEndOfInput
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *Console) readInt(ctx context.Context) (int, error) {
	line, err := c.readLine(ctx)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("For input string: %q", line)
	}
	return n, nil
}
