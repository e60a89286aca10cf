package state

import "testing"

func TestWriteInputsReadOutputs(t *testing.T) {
	s := New(9, 0, 5)
	s.WriteInputs(0, 9, []byte{0b10110010, 0b1})
	for i, want := range []bool{false, true, false, false, true, true, false, true, true} {
		if s.GetBit(Inputs, uint32(i)) != want {
			t.Fatalf("input bit %d = %v, want %v", i, s.GetBit(Inputs, uint32(i)), want)
		}
	}

	s.ApplyWord(Outputs, 0, OpEnable, 0b10101)
	s.Finalize()
	out := s.ReadOutputs(0, 5)
	if out[0] != 0b10101 {
		t.Fatalf("ReadOutputs = %08b, want %08b", out[0], 0b10101)
	}
}

func TestApplyWordOps(t *testing.T) {
	s := New(0, 32, 0)
	s.ApplyWord(Internals, 0, OpEnable, 0b1010)
	if got := s.CurrWords(Internals)[0]; got != 0b1010 {
		t.Fatalf("after Enable: got %b want %b", got, 0b1010)
	}
	s.ApplyWord(Internals, 0, OpToggle, 0b0110)
	if got := s.CurrWords(Internals)[0]; got != 0b1100 {
		t.Fatalf("after Toggle: got %b want %b", got, 0b1100)
	}
	s.ApplyWord(Internals, 0, OpDisable, 0b1000)
	if got := s.CurrWords(Internals)[0]; got != 0b0100 {
		t.Fatalf("after Disable: got %b want %b", got, 0b0100)
	}
}

func TestPromoteInternalAndFinalize(t *testing.T) {
	s := New(1, 4, 1)
	s.ApplyWord(Internals, 0, OpEnable, 0b1)
	// Prev hasn't moved yet: PrevWords should still read zero.
	if s.PrevWords(Internals)[0] != 0 {
		t.Fatalf("Prev should be untouched before PromoteInternal")
	}
	s.PromoteInternal()
	if s.PrevWords(Internals)[0] != 0b1 {
		t.Fatalf("PromoteInternal should copy Curr into Prev")
	}

	s.WriteInputs(0, 1, []byte{1})
	s.Finalize()
	for _, sec := range []Section{Inputs, Internals, Outputs} {
		curr, prev := s.CurrWords(sec), s.PrevWords(sec)
		for i := range curr {
			if curr[i] != prev[i] {
				t.Fatalf("section %d: Prev != Curr after Finalize (word %d: %d vs %d)", sec, i, prev[i], curr[i])
			}
		}
	}
}

func TestSnapshotRestoreInternal(t *testing.T) {
	s := New(0, 8, 0)
	s.ApplyWord(Internals, 0, OpEnable, 0b1111)
	snap := s.SnapshotInternal()
	s.ApplyWord(Internals, 0, OpEnable, 0b11110000)
	if s.CurrWords(Internals)[0] != 0xFF {
		t.Fatalf("expected all 8 bits set before restore")
	}
	s.RestoreInternal(snap)
	if s.CurrWords(Internals)[0] != 0b1111 {
		t.Fatalf("RestoreInternal did not revert to the snapshot")
	}
}
