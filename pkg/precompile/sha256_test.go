package precompile

import (
	"testing"

	"rv32shard/pkg/memory"
	"rv32shard/pkg/program"
	"rv32shard/pkg/record"
)

func TestShaExtendRecurrence(t *testing.T) {
	m := memory.New()
	rec := record.New(program.New(0, nil, nil, nil))

	const wPtr = 0x1000
	w := make([]uint32, 64)
	for i := range w[:16] {
		w[i] = uint32(i + 1)
	}
	writeWords(m, wPtr, w)

	if err := shaExtend(rec, m, 0, 0, wPtr, 16); err != nil {
		t.Fatalf("shaExtend: %v", err)
	}
	if len(rec.ShaExtendEvents) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.ShaExtendEvents))
	}
	ev := rec.ShaExtendEvents[0]
	if ev.I != 16 || ev.WPtr != wPtr {
		t.Fatalf("unexpected event fields: %+v", ev)
	}

	got, _ := m.Read(wPtr + 16*4)
	if got != ev.WI {
		t.Fatalf("memory w[16] = %d, event WI = %d", got, ev.WI)
	}
}

func TestShaCompressAccumulatesState(t *testing.T) {
	m := memory.New()
	rec := record.New(program.New(0, nil, nil, nil))

	const wPtr, hPtr = 0x2000, 0x3000
	w := make([]uint32, 64)
	writeWords(m, wPtr, w)

	h0 := []uint32{0x6a09e667, 0xbb67ae85, 0x3c6ef372, 0xa54ff53a, 0x510e527f, 0x9b05688c, 0x1f83d9ab, 0x5be0cd19}
	writeWords(m, hPtr, h0)

	if err := shaCompress(rec, m, 0, 0, wPtr, hPtr); err != nil {
		t.Fatalf("shaCompress: %v", err)
	}
	if len(rec.ShaCompressEvents) != 1 {
		t.Fatalf("got %d events, want 1", len(rec.ShaCompressEvents))
	}
	ev := rec.ShaCompressEvents[0]
	for i, want := range h0 {
		if ev.HIn[i] != want {
			t.Fatalf("HIn[%d] = %#x, want %#x", i, ev.HIn[i], want)
		}
	}

	gotH := readWords(m, hPtr, 8)
	for i := range gotH {
		if gotH[i] != ev.HOut[i] {
			t.Fatalf("memory state[%d] = %#x, event HOut = %#x", i, gotH[i], ev.HOut[i])
		}
	}
}
