package orderbook

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const emptyBidColumn = "          "

// String renders the depth row-aligned by rank:
//
//	0: 654.56 41.6 | 52.99 160.00
//	1:            | 54.2 170.80
func (d Depth) String() string {
	rows := max(len(d.Bids), len(d.Asks))

	var sb strings.Builder
	for i := 0; i < rows; i++ {
		sb.WriteString(strconv.Itoa(i))
		sb.WriteString(": ")
		if i < len(d.Bids) {
			sb.WriteString(FormatQuantity(d.Bids[i].Quantity))
			sb.WriteByte(' ')
			sb.WriteString(FormatPrice(d.Bids[i].Price))
		} else {
			sb.WriteString(emptyBidColumn)
		}
		sb.WriteString(" | ")
		if i < len(d.Asks) {
			sb.WriteString(FormatPrice(d.Asks[i].Price))
			sb.WriteByte(' ')
			sb.WriteString(FormatQuantity(d.Asks[i].Quantity))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatPrice prints a scaled price in its shortest form, keeping one fraction digit.
func FormatPrice(price int) string {
	s := decimal.New(int64(price), -2).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// FormatQuantity prints a scaled quantity with exactly two fraction digits.
func FormatQuantity(quantity int64) string {
	return decimal.New(quantity, -2).StringFixed(QuantityPrecision)
}
