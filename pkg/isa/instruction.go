package isa

import "fmt"

// Word is a fixed four-byte value, also liftable into field elements one
// byte at a time (see pkg/field and pkg/publicvalues).
type Word uint32

// WordBytes returns the little-endian byte expansion of w.
func WordBytes(w Word) [4]byte {
	return [4]byte{
		byte(w),
		byte(w >> 8),
		byte(w >> 16),
		byte(w >> 24),
	}
}

// Instruction is the decoded (opcode, a, b, c) tuple. Which fields are
// meaningful, and how they're reinterpreted, depends on Opcode.Variant().
type Instruction struct {
	Opcode Opcode
	A      uint32
	B      uint32
	C      uint32
}

// mustVariant panics with a ProgrammerError-shaped message if the
// instruction's opcode does not decode as want. The interpreter never calls
// the wrong accessor for a well-formed program; this guards against bugs in
// the decoder rather than guest input.
func (in Instruction) mustVariant(want Variant) {
	if in.Opcode.Variant() != want {
		panic(fmt.Sprintf("isa: %s is not variant %d", in.Opcode, want))
	}
}

// RType decodes (rd, rs1, rs2) for R-type instructions.
func (in Instruction) RType() (rd, rs1, rs2 Register) {
	in.mustVariant(VariantR)
	return Register(in.A), Register(in.B), Register(in.C)
}

// IType decodes (rd, rs1, imm) for I-type instructions.
func (in Instruction) IType() (rd, rs1 Register, imm uint32) {
	in.mustVariant(VariantI)
	return Register(in.A), Register(in.B), in.C
}

// SType decodes (rs1, rs2, imm) for S-type instructions.
func (in Instruction) SType() (rs1, rs2 Register, imm uint32) {
	in.mustVariant(VariantS)
	return Register(in.A), Register(in.B), in.C
}

// BType decodes (rs1, rs2, imm) for B-type instructions.
func (in Instruction) BType() (rs1, rs2 Register, imm uint32) {
	in.mustVariant(VariantB)
	return Register(in.A), Register(in.B), in.C
}

// UType decodes (rd, imm) for U-type instructions.
func (in Instruction) UType() (rd Register, imm uint32) {
	in.mustVariant(VariantU)
	return Register(in.A), in.B
}

// JType decodes (rd, imm) for J-type instructions.
func (in Instruction) JType() (rd Register, imm uint32) {
	in.mustVariant(VariantJ)
	return Register(in.A), in.B
}

// String renders a disassembly-style line for the instruction.
func (in Instruction) String() string {
	switch in.Opcode.Variant() {
	case VariantR:
		rd, rs1, rs2 := in.RType()
		return fmt.Sprintf("%s %s, %s, %s", in.Opcode, rd, rs1, rs2)
	case VariantI:
		rd, rs1, imm := in.IType()
		return fmt.Sprintf("%s %s, %s, %d", in.Opcode, rd, rs1, int32(imm))
	case VariantS:
		rs1, rs2, imm := in.SType()
		return fmt.Sprintf("%s %s, %d(%s)", in.Opcode, rs2, int32(imm), rs1)
	case VariantB:
		rs1, rs2, imm := in.BType()
		return fmt.Sprintf("%s %s, %s, %d", in.Opcode, rs1, rs2, int32(imm))
	case VariantU:
		rd, imm := in.UType()
		return fmt.Sprintf("%s %s, %d", in.Opcode, rd, imm)
	case VariantJ:
		rd, imm := in.JType()
		return fmt.Sprintf("%s %s, %d", in.Opcode, rd, int32(imm))
	default:
		return fmt.Sprintf("<unknown %s>", in.Opcode)
	}
}
