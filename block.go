package ocf

import (
	"hash/crc32"

	ocferrors "github.com/ocflib/ocf/errors"
	"github.com/ocflib/ocf/internal"
)

// encodeBlock appends one Block record to tap: a zig-zag varint record
// count, a length-prefixed data payload, and the stream's 16-byte sync
// marker. When checksum is true, a trailing 4-byte IEEE CRC32 of data
// is appended as well (§4.8 of the expanded spec).
func encodeBlock(tap *internal.Tap, count int, data []byte, sync [16]byte, checksum bool) {
	tap.WriteLong(int64(count))
	tap.WriteBytesField(data)
	tap.WriteRaw(sync[:])
	if checksum {
		var sum [4]byte
		putUint32(sum[:], crc32.ChecksumIEEE(data))
		tap.WriteRaw(sum[:])
	}
}

// tryReadBlock attempts to read one Block record from tap. On
// underflow it restores tap's position and reports ok=false, err=nil
// so the caller can wait for more bytes, matching spec.md §4.7's
// try_read_block helper. A checksum mismatch is distinct from
// underflow: the bytes read were complete but invalid, so it is
// reported as ok=false with a non-nil err (BadChecksum) rather than
// retried.
func tryReadBlock(tap *internal.Tap, checksum bool) (count int, data []byte, sync [16]byte, ok bool, err error) {
	mark := tap.Save()
	n := tap.ReadLong()
	if !tap.IsValid() {
		tap.Restore(mark)
		return 0, nil, sync, false, nil
	}
	data = tap.ReadBytesField()
	if !tap.IsValid() {
		tap.Restore(mark)
		return 0, nil, sync, false, nil
	}
	syncBytes := tap.ReadRaw(16)
	if !tap.IsValid() {
		tap.Restore(mark)
		return 0, nil, sync, false, nil
	}
	copy(sync[:], syncBytes)
	if checksum {
		sumBytes := tap.ReadRaw(4)
		if !tap.IsValid() {
			tap.Restore(mark)
			return 0, nil, sync, false, nil
		}
		if crc32.ChecksumIEEE(data) != getUint32(sumBytes) {
			return 0, nil, sync, false, ocferrors.E(ocferrors.BadChecksum, "block checksum mismatch")
		}
	}
	return int(n), data, sync, true, nil
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
}

func getUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}
