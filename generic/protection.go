/*
protection.go - Sealing of calculated snapshots

PURPOSE:
  A calculated snapshot is either Unsealed (deletability may still be
  toggled, owned buckets and ledger may still be changed) or Sealed
  (read-only, never deletable). The transition is one-way.

MODEL:
  The two states are two types, not a flag. Sealing a composite builds
  a new value whose owned parts are sealed too; the sealed types carry
  no mutators, so writing to a sealed snapshot does not compile.

    Unsealed --Seal()--> Sealed --Seal()--> Sealed (same value)

SEE ALSO:
  - period_aggregate.go: PeriodAggregate.Seal
  - posting_ledger.go:   PostingLedger.Seal
  - accounting/*.go:     roots embed these states
*/
package generic

// Protectable is implemented by every snapshot, sealed or not.
type Protectable interface {
	IsProtected() bool
	IsDeletable() bool
}

// =============================================================================
// UNSEALED - Mutable state
// =============================================================================

// Unsealed is embedded by values that can still change.
type Unsealed struct {
	deletable bool
}

func (u *Unsealed) AllowDeletion()    { u.deletable = true }
func (u *Unsealed) DisallowDeletion() { u.deletable = false }
func (u Unsealed) IsDeletable() bool  { return u.deletable }
func (Unsealed) IsProtected() bool    { return false }

// =============================================================================
// SEALED - Read-only state
// =============================================================================

// Sealed is embedded by sealed values. Its zero value is the only value.
type Sealed struct{}

func (Sealed) IsDeletable() bool { return false }
func (Sealed) IsProtected() bool { return true }
