// Package internal holds the low-level primitives shared by the ocf
// encoder and decoder streams: the Tap buffer cursor, the OrderedQueue
// used to restore synchronous block order across asynchronous
// compression, and the BlockData type passed between them.
package internal

import "encoding/binary"

// A Tap is a cursor over a fixed byte buffer whose reads and writes
// never panic and never grow it (only Grow replaces the buffer; Bytes
// panics while the Tap is invalid). Writes and reads that would run past the end of the
// buffer leave the Tap marked invalid instead of touching memory
// outside Buf; callers speculate into a Tap, check IsValid, and either
// commit the advanced position or Restore a saved one.
type Tap struct {
	Buf []byte
	Pos int
	ok  bool
}

// NewTap returns a Tap over a freshly allocated buffer of the given
// capacity.
func NewTap(capacity int) *Tap {
	return &Tap{Buf: make([]byte, capacity), ok: true}
}

// Reset points the Tap at buf, starting at position 0 and valid.
func (t *Tap) Reset(buf []byte) {
	t.Buf = buf
	t.Pos = 0
	t.ok = true
}

// Grow replaces the Tap's buffer with a new one of the given capacity
// and resets the cursor to 0.
func (t *Tap) Grow(capacity int) {
	t.Buf = make([]byte, capacity)
	t.Pos = 0
	t.ok = true
}

// Save returns a mark that can later be passed to Restore to roll the
// Tap's position back and clear any invalid state picked up since.
func (t *Tap) Save() int { return t.Pos }

// Restore rewinds the Tap to a mark previously returned by Save and
// clears the invalid flag.
func (t *Tap) Restore(mark int) {
	t.Pos = mark
	t.ok = true
}

// IsValid reports whether every write or read since the Tap was last
// Reset or Restored has stayed within Buf.
func (t *Tap) IsValid() bool { return t.ok }

// Len returns the current cursor position, i.e. the number of bytes
// written (or consumed, when reading).
func (t *Tap) Len() int { return t.Pos }

// Remaining returns the number of bytes between the cursor and the
// end of Buf.
func (t *Tap) Remaining() int { return len(t.Buf) - t.Pos }

// Bytes returns the portion of Buf written so far.
func (t *Tap) Bytes() []byte { return t.Buf[:t.Pos] }

// ensure reports whether n more bytes can be written or read at the
// current position, and unconditionally advances Pos by n regardless
// of the answer. Pos must keep moving even on failure so that a
// multi-part write (e.g. a length prefix followed by a payload) that
// overflows partway through still leaves Pos reflecting the full size
// the write attempted — exactly the figure RawEncoder's overflow
// handling needs to size its retry buffer. Once invalid, further
// calls keep advancing Pos but never flip back to valid except via
// Restore.
func (t *Tap) ensure(n int) bool {
	fits := t.ok && n >= 0 && t.Pos+n <= len(t.Buf)
	t.Pos += n
	if !fits {
		t.ok = false
	}
	return fits
}

// WriteRaw copies b into the Tap verbatim, e.g. for magic bytes and
// sync markers.
func (t *Tap) WriteRaw(b []byte) {
	start := t.Pos
	if !t.ensure(len(b)) {
		return
	}
	copy(t.Buf[start:], b)
}

// ReadRaw consumes and returns exactly n bytes. The returned slice
// aliases Buf and is only valid until the Tap is next written.
func (t *Tap) ReadRaw(n int) []byte {
	start := t.Pos
	if !t.ensure(n) {
		return nil
	}
	return t.Buf[start : start+n]
}

// Skip advances the cursor by n bytes without returning them.
func (t *Tap) Skip(n int) {
	t.ensure(n)
}

// WriteLong writes v as a zigzag varint, the encoding Avro uses for
// the long type and that this package reuses for block counts and
// byte-length prefixes.
func (t *Tap) WriteLong(v int64) {
	var scratch [binary.MaxVarintLen64]byte
	n := binary.PutVarint(scratch[:], v)
	t.WriteRaw(scratch[:n])
}

// ReadLong reads a zigzag varint long. A truncated or over-length
// encoding marks the Tap invalid rather than panicking.
func (t *Tap) ReadLong() int64 {
	if !t.ok {
		return 0
	}
	v, n := binary.Varint(t.Buf[t.Pos:])
	if n <= 0 {
		t.ok = false
		return 0
	}
	t.Pos += n
	return v
}

// WriteBytesField writes b as a long length prefix followed by the
// bytes themselves, the framing Avro uses for bytes and string
// values.
func (t *Tap) WriteBytesField(b []byte) {
	t.WriteLong(int64(len(b)))
	t.WriteRaw(b)
}

// ReadBytesField reads a length-prefixed byte field written by
// WriteBytesField.
func (t *Tap) ReadBytesField() []byte {
	n := t.ReadLong()
	if !t.ok || n < 0 {
		t.ok = false
		return nil
	}
	return t.ReadRaw(int(n))
}

// WriteString writes s using the same framing as WriteBytesField.
func (t *Tap) WriteString(s string) {
	t.WriteBytesField([]byte(s))
}

// ReadString reads a string written by WriteString.
func (t *Tap) ReadString() string {
	b := t.ReadBytesField()
	if !t.ok {
		return ""
	}
	return string(b)
}
