// Package ops implements the small bitwise building blocks precompiles
// compose from, mirroring the add/add4/add5/fixed_rotate_right/
// fixed_shift_right parts of the original's operations module (plus a
// 64-bit rotate for Keccak) minus the AIR column population those only need
// for circuit arithmetization (out of scope here). and/or/xor/not have no
// helpers here; callers use Go's operators directly.
package ops

import "math/bits"

// Add32 returns a+b mod 2^32.
func Add32(a, b uint32) uint32 { return a + b }

// Add4 returns a+b+c+d mod 2^32, the SHA-256 extend recurrence's shape.
func Add4(a, b, c, d uint32) uint32 { return a + b + c + d }

// Add5 returns a+b+c+d+e mod 2^32, the SHA-256 compression round's shape.
func Add5(a, b, c, d, e uint32) uint32 { return a + b + c + d + e }

// RotateRight32 rotates v right by n bits (n in [0,31]).
func RotateRight32(v uint32, n uint) uint32 {
	return bits.RotateLeft32(v, -int(n&31))
}

// ShiftRight32 logically shifts v right by n bits.
func ShiftRight32(v uint32, n uint) uint32 {
	return v >> (n & 31)
}

// RotateLeft64 rotates v left by n bits, used by the Keccak permutation.
func RotateLeft64(v uint64, n uint) uint64 {
	return bits.RotateLeft64(v, int(n&63))
}
