/*
Package export renders calculated snapshots as CSV.

Each converter reports its header and turns one value into one row. The
header width is the row width for every converter; WriteCSV refuses to
write a row that breaks this.

COLUMNS (accounts):

	account number, account name, description, note,
	group number, group name, group type,
	balance@statusDate, credit@statusDate,
	balance@lastMonthEnd, credit@lastMonthEnd,
	balance@lastYearEnd, credit@lastYearEnd

COLUMNS (account groups):

	group number, group name, group type,
	assets@statusDate, liabilities@statusDate,
	assets@lastMonthEnd, liabilities@lastMonthEnd,
	assets@lastYearEnd, liabilities@lastYearEnd
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/warp/accounting-engine/generic"
)

// Converter turns values of T into CSV rows.
type Converter[T any] interface {
	Header() []string
	Row(v T) []string
}

// WriteCSV writes the converter's header followed by one row per item.
func WriteCSV[T any](w io.Writer, c Converter[T], items []T) error {
	header := c.Header()
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, item := range items {
		row := c.Row(item)
		if len(row) != len(header) {
			return &generic.InternalError{
				Value: fmt.Sprintf("columns in row %d (got %d, want %d)", i, len(row), len(header)),
			}
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func amount(d decimal.Decimal) string { return d.StringFixed(2) }

func number(n int) string { return strconv.Itoa(n) }
