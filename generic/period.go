package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// YEAR MONTH - Key of a period bucket
// =============================================================================

// Bounds for the year of a period bucket.
const (
	MinYear = 1900
	MaxYear = 9999
)

// YearMonth identifies one calendar month. It is the key of every bucket
// held by a PeriodAggregate.
type YearMonth struct {
	Year  int
	Month time.Month
}

// NewYearMonth validates year and month.
func NewYearMonth(year int, month time.Month) (YearMonth, error) {
	if year < MinYear || year > MaxYear {
		return YearMonth{}, &InvalidValueError{Field: "year", Reason: fmt.Sprintf("must be between %d and %d", MinYear, MaxYear)}
	}
	if month < time.January || month > time.December {
		return YearMonth{}, &InvalidValueError{Field: "month", Reason: "must be between 1 and 12"}
	}
	return YearMonth{Year: year, Month: month}, nil
}

// Compare orders keys chronologically.
func (ym YearMonth) Compare(other YearMonth) int {
	switch {
	case ym.Year < other.Year:
		return -1
	case ym.Year > other.Year:
		return 1
	case ym.Month < other.Month:
		return -1
	case ym.Month > other.Month:
		return 1
	default:
		return 0
	}
}

func (ym YearMonth) Before(other YearMonth) bool        { return ym.Compare(other) < 0 }
func (ym YearMonth) BeforeOrEqual(other YearMonth) bool { return ym.Compare(other) <= 0 }

// Previous returns the month before ym. January rolls back to December
// of the prior year.
func (ym YearMonth) Previous() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// Next returns the month after ym.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// FirstDay and LastDay bound the month.
func (ym YearMonth) FirstDay() TimePoint { return StartOfMonth(ym.Year, ym.Month) }
func (ym YearMonth) LastDay() TimePoint  { return EndOfMonth(ym.Year, ym.Month) }

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// =============================================================================
// PERIOD - Inclusive date range
// =============================================================================

// Period is the inclusive range [Start, End].
type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// MonthPeriod returns the whole of month ym.
func MonthPeriod(ym YearMonth) Period {
	return Period{Start: ym.FirstDay(), End: ym.LastDay()}
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
