package precompile

import (
	"testing"

	"rv32shard/pkg/memory"
	"rv32shard/pkg/program"
	"rv32shard/pkg/record"
)

func TestUint256MulNoModulus(t *testing.T) {
	m := memory.New()
	rec := record.New(program.New(0, nil, nil, nil))

	const xPtr, yPtr = 0x6000, 0x6100
	xBytes := make([]byte, 32)
	xBytes[0] = 6
	yBytes := make([]byte, 32)
	yBytes[0] = 7
	modBytes := make([]byte, 32)

	writeBytes(m, xPtr, xBytes)
	writeBytes(m, yPtr, yBytes)
	writeBytes(m, yPtr+32, modBytes)

	if err := uint256Mul(rec, m, 0, 0, xPtr, yPtr); err != nil {
		t.Fatalf("uint256Mul: %v", err)
	}
	if len(rec.Uint256MulEvents) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.Uint256MulEvents))
	}

	got := readBytes(m, xPtr, 32)
	if got[0] != 42 {
		t.Fatalf("result byte0 = %d, want 42", got[0])
	}
}

func TestUint256MulWithModulus(t *testing.T) {
	m := memory.New()
	rec := record.New(program.New(0, nil, nil, nil))

	const xPtr, yPtr = 0x7000, 0x7100
	xBytes := make([]byte, 32)
	xBytes[0] = 6
	yBytes := make([]byte, 32)
	yBytes[0] = 7
	modBytes := make([]byte, 32)
	modBytes[0] = 10

	writeBytes(m, xPtr, xBytes)
	writeBytes(m, yPtr, yBytes)
	writeBytes(m, yPtr+32, modBytes)

	if err := uint256Mul(rec, m, 0, 0, xPtr, yPtr); err != nil {
		t.Fatalf("uint256Mul: %v", err)
	}

	got := readBytes(m, xPtr, 32)
	if got[0] != 2 {
		t.Fatalf("42 mod 10: result byte0 = %d, want 2", got[0])
	}
}
