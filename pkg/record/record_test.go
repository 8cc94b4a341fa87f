package record

import (
	"testing"

	"rv32shard/pkg/events"
	"rv32shard/pkg/program"
)

func testProgram() *program.Program {
	return program.New(0, nil, nil, nil)
}

func TestStatsOmitsZero(t *testing.T) {
	r := New(testProgram())
	r.AddEvents = append(r.AddEvents, events.NewAluEvent(0, 0, 0, 1, 1, 2))
	stats := r.Stats()
	if stats["add_events"] != 1 {
		t.Fatalf("add_events = %d, want 1", stats["add_events"])
	}
	if _, ok := stats["mul_events"]; ok {
		t.Fatal("mul_events should be omitted when zero")
	}
}

func TestAppendConcatenatesAndMergesByteLookups(t *testing.T) {
	a := New(testProgram())
	a.AddEvents = append(a.AddEvents, events.NewAluEvent(0, 0, 0, 1, 1, 2))
	a.AddByteLookupEvent(events.ByteLookupEvent{Shard: 0, Kind: events.ByteLookupRange, Byte1: 1})

	b := New(testProgram())
	b.AddEvents = append(b.AddEvents, events.NewAluEvent(0, 1, 0, 3, 1, 4))
	b.AddByteLookupEvent(events.ByteLookupEvent{Shard: 0, Kind: events.ByteLookupRange, Byte1: 1})

	a.Append(b)

	if len(a.AddEvents) != 2 {
		t.Fatalf("len(AddEvents) = %d, want 2", len(a.AddEvents))
	}
	count := a.ByteLookups[0][events.ByteLookupEvent{Shard: 0, Kind: events.ByteLookupRange, Byte1: 1}]
	if count != 2 {
		t.Fatalf("merged byte-lookup multiplicity = %d, want 2", count)
	}
}

func TestDeferMovesDeferrableStreamsOnly(t *testing.T) {
	r := New(testProgram())
	r.AddEvents = append(r.AddEvents, events.NewAluEvent(0, 0, 0, 1, 1, 2))
	r.KeccakPermuteEvents = append(r.KeccakPermuteEvents, events.KeccakPermuteEvent{Shard: 0})

	deferred := r.Defer()

	if len(r.AddEvents) != 1 {
		t.Fatal("Defer must not touch non-deferrable streams")
	}
	if r.KeccakPermuteEvents != nil {
		t.Fatal("Defer must clear deferrable streams from the source")
	}
	if len(deferred.KeccakPermuteEvents) != 1 {
		t.Fatal("Defer must carry deferrable streams into the returned record")
	}
}

func TestRegisterNoncesAddThenSubContinuesSpace(t *testing.T) {
	r := New(testProgram())
	r.AddEvents = append(r.AddEvents,
		events.NewAluEvent(0, 0, 0, 1, 1, 2),
		events.NewAluEvent(0, 1, 0, 3, 1, 4),
	)
	r.SubEvents = append(r.SubEvents, events.NewAluEvent(0, 2, 0, 5, 6, 7))
	r.RegisterNonces()

	if got := r.NonceLookup[r.SubEvents[0].LookupID]; got != 2 {
		t.Fatalf("sub nonce = %d, want 2 (continuing past the 2 add events)", got)
	}
}

func TestPublicValuesVectorIsPadded(t *testing.T) {
	r := New(testProgram())
	vec := r.PublicValuesVector()
	if len(vec) != 64 {
		t.Fatalf("len = %d, want 64", len(vec))
	}
}

// TestSplitKeccakExactBoundary exercises the 3N+2 scenario: with chunk
// size N and last=true, splitting should yield shards of size N,N,N,2;
// with last=false it should yield 3 shards of N and retain the 2 in r.
func TestSplitKeccakExactBoundary(t *testing.T) {
	const n = 4
	mk := func(count int) *ExecutionRecord {
		r := New(testProgram())
		for i := 0; i < count; i++ {
			r.KeccakPermuteEvents = append(r.KeccakPermuteEvents, events.KeccakPermuteEvent{Shard: uint32(i)})
		}
		return r
	}

	r := mk(3*n + 2)
	shards := r.Split(true, SplitOptions{Keccak: n, Deferred: 1, ShaExtend: 1, ShaCompress: 1, Memory: 1})
	if len(shards) != 4 {
		t.Fatalf("last=true: got %d shards, want 4", len(shards))
	}
	wantSizes := []int{n, n, n, 2}
	for i, want := range wantSizes {
		if got := len(shards[i].KeccakPermuteEvents); got != want {
			t.Fatalf("shard %d size = %d, want %d", i, got, want)
		}
	}

	r2 := mk(3*n + 2)
	shards2 := r2.Split(false, SplitOptions{Keccak: n, Deferred: 1, ShaExtend: 1, ShaCompress: 1, Memory: 1})
	if len(shards2) != 3 {
		t.Fatalf("last=false: got %d shards, want 3", len(shards2))
	}
	for i, shard := range shards2 {
		if got := len(shard.KeccakPermuteEvents); got != n {
			t.Fatalf("shard %d size = %d, want %d", i, got, n)
		}
	}
	if len(r2.KeccakPermuteEvents) != 2 {
		t.Fatalf("retained remainder = %d, want 2", len(r2.KeccakPermuteEvents))
	}
}

func TestSplitMemoryStitchesAddressBoundaries(t *testing.T) {
	r := New(testProgram())
	for _, addr := range []uint32{40, 10, 30, 20} {
		r.MemoryInitializeEvents = append(r.MemoryInitializeEvents, events.MemoryInitializeFinalizeEvent{
			Addr: addr, IsInitialize: true,
		})
	}

	shards := r.Split(true, SplitOptions{Keccak: 1, Deferred: 1, ShaExtend: 1, ShaCompress: 1, Memory: 2})
	if len(shards) != 2 {
		t.Fatalf("got %d shards, want 2", len(shards))
	}

	got := make([]uint32, 0, 4)
	for _, shard := range shards {
		for _, ev := range shard.MemoryInitializeEvents {
			got = append(got, ev.Addr)
		}
	}
	want := []uint32{10, 20, 30, 40}
	for i, addr := range want {
		if got[i] != addr {
			t.Fatalf("sorted addr[%d] = %d, want %d", i, got[i], addr)
		}
	}

	if shards[0].PublicValues.LastInitAddr != 20 {
		t.Fatalf("shard 0 LastInitAddr = %d, want 20", shards[0].PublicValues.LastInitAddr)
	}
	if shards[1].PublicValues.PreviousInitAddr != shards[0].PublicValues.LastInitAddr {
		t.Fatal("shard 1 PreviousInitAddr must stitch against shard 0 LastInitAddr")
	}
	if shards[1].PublicValues.LastInitAddr != 40 {
		t.Fatalf("shard 1 LastInitAddr = %d, want 40", shards[1].PublicValues.LastInitAddr)
	}
}

func TestSplitCarriesProgramReference(t *testing.T) {
	p := testProgram()
	r := New(p)
	r.KeccakPermuteEvents = append(r.KeccakPermuteEvents, events.KeccakPermuteEvent{})
	shards := r.Split(true, SplitOptions{Keccak: 1, Deferred: 1, ShaExtend: 1, ShaCompress: 1, Memory: 1})
	if shards[0].Program != p {
		t.Fatal("split shards must reference the parent program")
	}
}
