package feed

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"levelbook/pkg/orderbook"

	"github.com/shopspring/decimal"
)

// Quote is one decoded feed record with price and quantity scaled by 100.
type Quote struct {
	Timestamp  int64
	Instrument string
	Price      int
	Quantity   int64
	Side       orderbook.Side
}

var (
	ErrMissingField  = errors.New("missing field")
	ErrNegativeValue = errors.New("negative value")
	ErrOverflow      = errors.New("value overflows scaled integer")
)

// RecordError locates a bad feed record. Line is 0 when the record did not
// come from a stream.
type RecordError struct {
	Line  int
	Field string
	Err   error
}

func (e *RecordError) Error() string {
	var sb strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&sb, "line %d: ", e.Line)
	}
	if e.Field != "" {
		fmt.Fprintf(&sb, "field %s: ", e.Field)
	}
	sb.WriteString(e.Err.Error())
	return sb.String()
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

var maxScaled = decimal.NewFromInt(math.MaxInt64)

// ScaleDecimal converts a decimal string to a scaled integer: rounded to two
// fraction digits half-up, then multiplied by 100.
func ScaleDecimal(raw string) (int64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, err
	}
	if d.IsNegative() {
		return 0, ErrNegativeValue
	}
	scaled := d.Round(2).Shift(2)
	if scaled.GreaterThan(maxScaled) {
		return 0, ErrOverflow
	}
	return scaled.IntPart(), nil
}

// ParseQuote decodes a record shaped like
//
//	t=1638848595|i=BTCUSD|p=32.99|q=100|s=s
//
// Fields may come in any order; unknown keys are ignored.
func ParseQuote(line string) (Quote, error) {
	fields := map[string]string{}
	for _, part := range strings.Split(strings.TrimSpace(line), "|") {
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return Decode(fields)
}

// Decode builds a quote from record fields keyed t, i, p, q and s.
func Decode(fields map[string]string) (Quote, error) {
	var q Quote
	for _, key := range []string{"i", "p", "q", "s"} {
		if fields[key] == "" {
			return Quote{}, &RecordError{Field: key, Err: ErrMissingField}
		}
	}

	if ts, ok := fields["t"]; ok && ts != "" {
		parsed, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return Quote{}, &RecordError{Field: "t", Err: err}
		}
		q.Timestamp = parsed
	}
	q.Instrument = fields["i"]

	price, err := ScaleDecimal(fields["p"])
	if err != nil {
		return Quote{}, &RecordError{Field: "p", Err: err}
	}
	if price >= orderbook.MaxLevel {
		return Quote{}, &RecordError{Field: "p", Err: &orderbook.PriceRangeError{Price: int(min(price, math.MaxInt32))}}
	}
	q.Price = int(price)

	q.Quantity, err = ScaleDecimal(fields["q"])
	if err != nil {
		return Quote{}, &RecordError{Field: "q", Err: err}
	}

	q.Side, err = orderbook.ParseSide(fields["s"])
	if err != nil {
		return Quote{}, &RecordError{Field: "s", Err: err}
	}

	return q, nil
}
