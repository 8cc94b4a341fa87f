package executor

import (
	"errors"
	"fmt"
)

// FaultKind classifies a fatal host error (spec.md §7).
type FaultKind uint8

const (
	// GuestTrap covers illegal instructions, misaligned fetches, and
	// out-of-range memory access. Execution halts cleanly; the record up
	// to the trap remains valid.
	GuestTrap FaultKind = iota
	// BudgetExceeded indicates the configured step cap was reached.
	BudgetExceeded
	// ProgrammerError indicates a precondition violation by the host
	// (wrong accessor, zero chunk size); always fatal.
	ProgrammerError
	// InternalInvariant indicates an implementation bug (byte-lookup
	// multiset inconsistency, nonce collision).
	InternalInvariant
)

func (k FaultKind) String() string {
	switch k {
	case GuestTrap:
		return "guest trap"
	case BudgetExceeded:
		return "budget exceeded"
	case ProgrammerError:
		return "programmer error"
	case InternalInvariant:
		return "internal invariant violation"
	default:
		return "unknown fault"
	}
}

// Fault is a fatal host error returned from Execute.
type Fault struct {
	Kind    FaultKind
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("executor: %s: %s", f.Kind, f.Message)
}

func newFault(kind FaultKind, format string, args ...any) *Fault {
	return &Fault{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// ErrEbreak is returned when the guest executes ebreak; the interpreter
// halts cleanly but surfaces the trap to the caller as a sentinel, the way
// the teacher VM distinguishes ErrHalted from ErrNotPermitted.
var ErrEbreak = errors.New("executor: ebreak trap")
