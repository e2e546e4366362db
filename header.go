package ocf

import (
	"github.com/ocflib/ocf/internal"
)

// encodeHeader writes h onto tap in the wire format spec.md §3/§6
// describes: a 4-byte magic, a map<string, bytes> metadata block, and
// a 16-byte sync marker. The metadata map is framed the way Avro
// frames maps: a sequence of one or more nonzero-length blocks, each a
// long item count followed by that many key/value pairs, terminated by
// a zero-length block.
func encodeHeader(tap *internal.Tap, h Header) {
	tap.WriteRaw(h.Magic[:])
	encodeMetaMap(tap, h.Meta)
	tap.WriteRaw(h.Sync[:])
}

func encodeMetaMap(tap *internal.Tap, meta map[string][]byte) {
	if len(meta) > 0 {
		tap.WriteLong(int64(len(meta)))
		for k, v := range meta {
			tap.WriteString(k)
			tap.WriteBytesField(v)
		}
	}
	tap.WriteLong(0)
}

// decodeHeader attempts to read a Header starting at tap's current
// position. On underflow it restores tap to its entry position and
// reports ok=false so the caller can retry once more bytes arrive;
// tap is left valid either way.
func decodeHeader(tap *internal.Tap) (h Header, ok bool) {
	mark := tap.Save()
	magic := tap.ReadRaw(4)
	if !tap.IsValid() {
		tap.Restore(mark)
		return Header{}, false
	}
	copy(h.Magic[:], magic)
	h.Meta = decodeMetaMap(tap)
	if !tap.IsValid() {
		tap.Restore(mark)
		return Header{}, false
	}
	sync := tap.ReadRaw(16)
	if !tap.IsValid() {
		tap.Restore(mark)
		return Header{}, false
	}
	copy(h.Sync[:], sync)
	return h, true
}

func decodeMetaMap(tap *internal.Tap) map[string][]byte {
	meta := make(map[string][]byte)
	for {
		n := tap.ReadLong()
		if !tap.IsValid() {
			return nil
		}
		if n == 0 {
			return meta
		}
		if n < 0 {
			n = -n
			tap.ReadLong() // block byte-size, unused: we decode item by item
			if !tap.IsValid() {
				return nil
			}
		}
		for i := int64(0); i < n; i++ {
			k := tap.ReadString()
			v := tap.ReadBytesField()
			if !tap.IsValid() {
				return nil
			}
			meta[k] = v
		}
	}
}
