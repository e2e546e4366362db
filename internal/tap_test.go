package internal

import "testing"

func TestTapRoundTrip(t *testing.T) {
	tap := NewTap(64)
	tap.WriteLong(17)
	tap.WriteString("hello")
	tap.WriteRaw([]byte{0xde, 0xad, 0xbe, 0xef})
	if !tap.IsValid() {
		t.Fatalf("tap unexpectedly invalid after writes")
	}

	tap.Reset(tap.Bytes())
	if got := tap.ReadLong(); got != 17 {
		t.Fatalf("ReadLong() = %d, want 17", got)
	}
	if got := tap.ReadString(); got != "hello" {
		t.Fatalf("ReadString() = %q, want %q", got, "hello")
	}
	if got := tap.ReadRaw(4); string(got) != "\xde\xad\xbe\xef" {
		t.Fatalf("ReadRaw(4) = %x, want deadbeef", got)
	}
	if !tap.IsValid() {
		t.Fatalf("tap unexpectedly invalid after reads")
	}
}

func TestTapWritePastEndInvalidatesWithoutPanic(t *testing.T) {
	tap := NewTap(4)
	mark := tap.Save()
	tap.WriteRaw([]byte{1, 2, 3, 4, 5})
	if tap.IsValid() {
		t.Fatalf("expected tap to be invalid after overflowing write")
	}
	tap.Restore(mark)
	if !tap.IsValid() {
		t.Fatalf("expected Restore to clear invalid state")
	}
	if tap.Len() != mark {
		t.Fatalf("Len() = %d, want %d", tap.Len(), mark)
	}
}

func TestTapReadPastEndInvalidatesWithoutPanic(t *testing.T) {
	tap := NewTap(2)
	tap.Reset([]byte{0x01})
	if got := tap.ReadRaw(4); got != nil {
		t.Fatalf("ReadRaw past end = %v, want nil", got)
	}
	if tap.IsValid() {
		t.Fatalf("expected tap to be invalid after reading past end")
	}
}

func TestTapReadLongTruncated(t *testing.T) {
	tap := NewTap(1)
	tap.Reset([]byte{0x80}) // incomplete varint, continuation bit set with no follow-up byte
	tap.ReadLong()
	if tap.IsValid() {
		t.Fatalf("expected tap to be invalid after reading a truncated varint")
	}
}

func TestTapNegativeLengthFieldInvalidates(t *testing.T) {
	tap := NewTap(16)
	tap.WriteLong(-1)
	tap.Reset(tap.Bytes())
	tap.ReadBytesField()
	if tap.IsValid() {
		t.Fatalf("expected negative length field to invalidate the tap")
	}
}
