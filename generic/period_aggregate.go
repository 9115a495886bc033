/*
period_aggregate.go - Per-month buckets and status-date views

PURPOSE:
  A PeriodAggregate holds one bucket of values per (year, month) for a
  single account and derives point-in-time views from them relative to
  a status date.

VIEWS (d = status date):
  ValuesForMonth(d)         bucket of d's month
  ValuesForLastMonth(d)     bucket of the month before d's month
  ValuesForYearToDate(d)    January..d's month of d's year
  ValuesForLastYear(d)      all of the prior calendar year
  ValuesAtStatusDate(d)     everything up to and including d's month
  ValuesAtEndOfLastMonth(d) everything up to the month before d's month
  ValuesAtEndOfLastYear(d)  everything up to December of the prior year

AGGREGATION:
  Buckets are folded in ascending (year, month) order with the value
  type's Accumulate, starting from the zero value. Absent months add
  nothing; missing history never errors. Storage order is irrelevant.
*/
package generic

import (
	"maps"
	"slices"
	"time"
)

// Accumulator is implemented by bucket value types. Accumulate folds a
// later bucket into the running total. The zero value of V is the
// identity.
type Accumulator[V any] interface {
	Accumulate(next V) V
}

// Bucket pairs a key with its values.
type Bucket[V any] struct {
	Key    YearMonth
	Values V
}

// PeriodView is the read side shared by sealed and unsealed aggregates.
type PeriodView[V Accumulator[V]] interface {
	Protectable
	Get(key YearMonth) (V, bool)
	Keys() []YearMonth
	Buckets() []Bucket[V]
	Len() int
	ValuesForMonth(statusDate TimePoint) V
	ValuesForLastMonth(statusDate TimePoint) V
	ValuesForYearToDate(statusDate TimePoint) V
	ValuesForLastYear(statusDate TimePoint) V
	ValuesAtStatusDate(statusDate TimePoint) V
	ValuesAtEndOfLastMonth(statusDate TimePoint) V
	ValuesAtEndOfLastYear(statusDate TimePoint) V
}

// =============================================================================
// BUCKETS - Read-only core
// =============================================================================

type buckets[V Accumulator[V]] struct {
	values map[YearMonth]V
}

func (b buckets[V]) Get(key YearMonth) (V, bool) {
	v, ok := b.values[key]
	return v, ok
}

func (b buckets[V]) Len() int { return len(b.values) }

// Keys returns the bucket keys in chronological order.
func (b buckets[V]) Keys() []YearMonth {
	keys := slices.Collect(maps.Keys(b.values))
	slices.SortFunc(keys, YearMonth.Compare)
	return keys
}

// Buckets returns every bucket in chronological order.
func (b buckets[V]) Buckets() []Bucket[V] {
	keys := b.Keys()
	out := make([]Bucket[V], 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket[V]{Key: k, Values: b.values[k]})
	}
	return out
}

func (b buckets[V]) ValuesForMonth(statusDate TimePoint) V {
	return b.single(statusDate.YearMonth())
}

func (b buckets[V]) ValuesForLastMonth(statusDate TimePoint) V {
	return b.single(statusDate.YearMonth().Previous())
}

func (b buckets[V]) ValuesForYearToDate(statusDate TimePoint) V {
	at := statusDate.YearMonth()
	return b.fold(func(k YearMonth) bool {
		return k.Year == at.Year && k.Month <= at.Month
	})
}

func (b buckets[V]) ValuesForLastYear(statusDate TimePoint) V {
	year := statusDate.Year() - 1
	return b.fold(func(k YearMonth) bool { return k.Year == year })
}

func (b buckets[V]) ValuesAtStatusDate(statusDate TimePoint) V {
	return b.upTo(statusDate.YearMonth())
}

func (b buckets[V]) ValuesAtEndOfLastMonth(statusDate TimePoint) V {
	return b.upTo(statusDate.YearMonth().Previous())
}

func (b buckets[V]) ValuesAtEndOfLastYear(statusDate TimePoint) V {
	return b.upTo(YearMonth{Year: statusDate.Year() - 1, Month: time.December})
}

func (b buckets[V]) single(key YearMonth) V {
	v, ok := b.values[key]
	if !ok {
		var zero V
		return zero
	}
	return v
}

func (b buckets[V]) upTo(last YearMonth) V {
	return b.fold(func(k YearMonth) bool { return k.BeforeOrEqual(last) })
}

func (b buckets[V]) fold(include func(YearMonth) bool) V {
	var total V
	for _, k := range b.Keys() {
		if include(k) {
			total = total.Accumulate(b.values[k])
		}
	}
	return total
}

// =============================================================================
// PERIOD AGGREGATE - Unsealed
// =============================================================================

// PeriodAggregate is the mutable bucket collection owned by an account.
type PeriodAggregate[V Accumulator[V]] struct {
	buckets[V]
	Unsealed
}

// NewPeriodAggregate returns an empty aggregate.
func NewPeriodAggregate[V Accumulator[V]]() *PeriodAggregate[V] {
	return &PeriodAggregate[V]{buckets: buckets[V]{values: make(map[YearMonth]V)}}
}

// Put stores v under key, superseding any previous bucket.
func (a *PeriodAggregate[V]) Put(key YearMonth, v V) {
	if a.values == nil {
		a.values = make(map[YearMonth]V)
	}
	a.values[key] = v
}

// Clone returns an unsealed deep copy. Bucket values are copied by value.
func (a *PeriodAggregate[V]) Clone() *PeriodAggregate[V] {
	return &PeriodAggregate[V]{
		buckets:  buckets[V]{values: maps.Clone(a.values)},
		Unsealed: a.Unsealed,
	}
}

// Seal returns a read-only copy. Later writes to a do not reach it.
func (a *PeriodAggregate[V]) Seal() SealedPeriodAggregate[V] {
	return SealedPeriodAggregate[V]{buckets: buckets[V]{values: maps.Clone(a.values)}}
}

// =============================================================================
// SEALED PERIOD AGGREGATE
// =============================================================================

// SealedPeriodAggregate exposes only the read side.
type SealedPeriodAggregate[V Accumulator[V]] struct {
	buckets[V]
	Sealed
}

// Seal is a no-op on a sealed aggregate.
func (s SealedPeriodAggregate[V]) Seal() SealedPeriodAggregate[V] { return s }
