package isa

import "fmt"

// Register is a general-purpose register index in [0,31].
type Register uint32

// Named registers with ISA-defined conventions.
const (
	RegX0 Register = 0 // hardwired zero
	RegX2 Register = 2 // stack-pointer convention
)

// NumRegisters is the size of the register file.
const NumRegisters = 32

// String renders the register the way the original runtime does (%xN).
func (r Register) String() string {
	return fmt.Sprintf("%%x%d", uint32(r))
}
