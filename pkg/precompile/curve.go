package precompile

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/secp256k1"

	"rv32shard/pkg/events"
	"rv32shard/pkg/memory"
	"rv32shard/pkg/record"
)

const (
	secp256k1FieldBytes = 32
	bn254FieldBytes     = 32
	bls12381FieldBytes  = 48
)

// secp256k1Add reads two uncompressed affine points (ptr a: the
// accumulator, ptr b: the operand) and writes their sum back over the
// accumulator slot.
func secp256k1Add(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	p1Bytes := readBytes(m, a, 2*secp256k1FieldBytes)
	p2Bytes := readBytes(m, b, 2*secp256k1FieldBytes)

	var p1, p2, result secp256k1.G1Affine
	if err := p1.Unmarshal(p1Bytes); err != nil {
		return err
	}
	if err := p2.Unmarshal(p2Bytes); err != nil {
		return err
	}
	result.Add(&p1, &p2)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Secp256k1AddEvents = append(rec.Secp256k1AddEvents, events.EllipticCurveAddEvent{
		Shard: shard, Clk: clk, Curve: events.CurveSecp256k1,
		P1Ptr: a, P2Ptr: b, P1: p1Bytes, P2: p2Bytes, Result: resultBytes,
	})
	return nil
}

// secp256k1Double reads one affine point at ptr a and writes its double
// back in place.
func secp256k1Double(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	pBytes := readBytes(m, a, 2*secp256k1FieldBytes)
	var p, result secp256k1.G1Affine
	if err := p.Unmarshal(pBytes); err != nil {
		return err
	}
	result.Double(&p)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Secp256k1DoubleEvents = append(rec.Secp256k1DoubleEvents, events.EllipticCurveDoubleEvent{
		Shard: shard, Clk: clk, Curve: events.CurveSecp256k1,
		PPtr: a, P: pBytes, Result: resultBytes,
	})
	return nil
}

// secp256k1Decompress reads the x-coordinate at ptr a plus a sign bit
// passed in b, and writes the recovered uncompressed point back at ptr a.
func secp256k1Decompress(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	xBytes := readBytes(m, a, secp256k1FieldBytes)
	signBit := b != 0

	compressed := make([]byte, secp256k1FieldBytes)
	copy(compressed, xBytes)
	compressed[0] |= compressedMaskBit(signBit)

	var p secp256k1.G1Affine
	if _, err := p.SetBytes(compressed); err != nil {
		return err
	}
	full := p.Marshal()
	writeBytes(m, a, full)

	rec.K256DecompressEvents = append(rec.K256DecompressEvents, events.EllipticCurveDecompressEvent{
		Shard: shard, Clk: clk, Curve: events.CurveSecp256k1,
		PtrX: a, SignBit: signBit, X: xBytes, DecompressedY: full[secp256k1FieldBytes:],
	})
	return nil
}

func bn254Add(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	p1Bytes := readBytes(m, a, 2*bn254FieldBytes)
	p2Bytes := readBytes(m, b, 2*bn254FieldBytes)

	var p1, p2, result bn254.G1Affine
	if err := p1.Unmarshal(p1Bytes); err != nil {
		return err
	}
	if err := p2.Unmarshal(p2Bytes); err != nil {
		return err
	}
	result.Add(&p1, &p2)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Bn254AddEvents = append(rec.Bn254AddEvents, events.EllipticCurveAddEvent{
		Shard: shard, Clk: clk, Curve: events.CurveBn254,
		P1Ptr: a, P2Ptr: b, P1: p1Bytes, P2: p2Bytes, Result: resultBytes,
	})
	return nil
}

func bn254Double(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	pBytes := readBytes(m, a, 2*bn254FieldBytes)
	var p, result bn254.G1Affine
	if err := p.Unmarshal(pBytes); err != nil {
		return err
	}
	result.Double(&p)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Bn254DoubleEvents = append(rec.Bn254DoubleEvents, events.EllipticCurveDoubleEvent{
		Shard: shard, Clk: clk, Curve: events.CurveBn254,
		PPtr: a, P: pBytes, Result: resultBytes,
	})
	return nil
}

func bls12381Add(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	p1Bytes := readBytes(m, a, 2*bls12381FieldBytes)
	p2Bytes := readBytes(m, b, 2*bls12381FieldBytes)

	var p1, p2, result bls12381.G1Affine
	if err := p1.Unmarshal(p1Bytes); err != nil {
		return err
	}
	if err := p2.Unmarshal(p2Bytes); err != nil {
		return err
	}
	result.Add(&p1, &p2)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Bls12381AddEvents = append(rec.Bls12381AddEvents, events.EllipticCurveAddEvent{
		Shard: shard, Clk: clk, Curve: events.CurveBls12381,
		P1Ptr: a, P2Ptr: b, P1: p1Bytes, P2: p2Bytes, Result: resultBytes,
	})
	return nil
}

func bls12381Double(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	pBytes := readBytes(m, a, 2*bls12381FieldBytes)
	var p, result bls12381.G1Affine
	if err := p.Unmarshal(pBytes); err != nil {
		return err
	}
	result.Double(&p)
	resultBytes := result.Marshal()
	writeBytes(m, a, resultBytes)

	rec.Bls12381DoubleEvents = append(rec.Bls12381DoubleEvents, events.EllipticCurveDoubleEvent{
		Shard: shard, Clk: clk, Curve: events.CurveBls12381,
		PPtr: a, P: pBytes, Result: resultBytes,
	})
	return nil
}

func bls12381Decompress(rec *record.ExecutionRecord, m *memory.Memory, shard, clk, a, b uint32) error {
	xBytes := readBytes(m, a, bls12381FieldBytes)
	signBit := b != 0

	compressed := make([]byte, bls12381FieldBytes)
	copy(compressed, xBytes)
	compressed[0] |= compressedMaskBit(signBit)

	var p bls12381.G1Affine
	if _, err := p.SetBytes(compressed); err != nil {
		return err
	}
	full := p.Marshal()
	writeBytes(m, a, full)

	rec.Bls12381DecompressEvents = append(rec.Bls12381DecompressEvents, events.EllipticCurveDecompressEvent{
		Shard: shard, Clk: clk, Curve: events.CurveBls12381,
		PtrX: a, SignBit: signBit, X: xBytes, DecompressedY: full[bls12381FieldBytes:],
	})
	return nil
}

// compressedMaskBit sets gnark-crypto's top-two compression/sign bits on
// the MSB of a compressed point encoding.
func compressedMaskBit(signBit bool) byte {
	const mCompressedSmallest = 0b10 << 6
	const mCompressedLargest = 0b11 << 6
	if signBit {
		return mCompressedLargest
	}
	return mCompressedSmallest
}
