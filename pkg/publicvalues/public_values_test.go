package publicvalues

import "testing"

func TestToFieldVectorPadded(t *testing.T) {
	var pv Ground
	vec := pv.ToFieldVector()
	if len(vec) != MaxNumPVs {
		t.Fatalf("got %d elements, want %d", len(vec), MaxNumPVs)
	}
}

func TestCommitDigestBytesRoundTrip(t *testing.T) {
	var pv Ground
	pv.CommittedValueDigest[0] = 0xDEADBEEF
	pv.CommittedValueDigest[7] = 0x01020304
	lifted := Lift(pv)
	digest := lifted.CommitDigestBytes()
	if len(digest) != 32 {
		t.Fatalf("got %d bytes, want 32", len(digest))
	}
	want := []byte{0xEF, 0xBE, 0xAD, 0xDE}
	for i, b := range want {
		if digest[i] != b {
			t.Fatalf("byte %d: got %#x want %#x", i, digest[i], b)
		}
	}
	wantTail := []byte{0x04, 0x03, 0x02, 0x01}
	for i, b := range wantTail {
		if digest[28+i] != b {
			t.Fatalf("tail byte %d: got %#x want %#x", i, digest[28+i], b)
		}
	}
}

func TestStitchingFields(t *testing.T) {
	shard0 := Ground{LastInitAddr: 100, LastFinalizeAddr: 200, NextPC: 40}
	shard1 := Ground{PreviousInitAddr: 100, PreviousFinalizeAddr: 200, StartPC: 40}
	if shard1.PreviousInitAddr != shard0.LastInitAddr {
		t.Fatal("init-addr stitching invariant violated")
	}
	if shard1.PreviousFinalizeAddr != shard0.LastFinalizeAddr {
		t.Fatal("finalize-addr stitching invariant violated")
	}
	if shard1.StartPC != shard0.NextPC {
		t.Fatal("pc stitching invariant violated")
	}
}
