// Package avrotype implements a minimal reference ValueCodec for the
// handful of Avro primitive types the core's own test suite needs to
// exercise RawEncoder/RawDecoder/BlockEncoder/BlockDecoder end to end:
// long, string, bytes, and the map<string,bytes> shape Header.Meta
// itself uses. It is intentionally not a general Avro schema engine —
// a real schema-driven codec can be dropped in behind the same
// three-method interface without touching the core streams.
package avrotype

import "github.com/ocflib/ocf/internal"

// Long is a ValueCodec for Avro's long type: a zig-zag varint int64.
// Write accepts any of int, int32, or int64; Read always returns
// int64.
type Long struct{}

// Write implements ocf.ValueCodec.
func (Long) Write(tap *internal.Tap, val interface{}) {
	tap.WriteLong(toInt64(val))
}

// Read implements ocf.ValueCodec.
func (Long) Read(tap *internal.Tap) interface{} {
	return tap.ReadLong()
}

// Skip implements ocf.ValueCodec.
func (Long) Skip(tap *internal.Tap) {
	tap.ReadLong()
}

func toInt64(val interface{}) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int32:
		return int64(v)
	case int:
		return int64(v)
	default:
		panic("avrotype.Long: unsupported value type")
	}
}

// String is a ValueCodec for Avro's string type: a long length prefix
// followed by UTF-8 bytes.
type String struct{}

// Write implements ocf.ValueCodec.
func (String) Write(tap *internal.Tap, val interface{}) {
	s, ok := val.(string)
	if !ok {
		panic("avrotype.String: unsupported value type")
	}
	tap.WriteString(s)
}

// Read implements ocf.ValueCodec.
func (String) Read(tap *internal.Tap) interface{} {
	return tap.ReadString()
}

// Skip implements ocf.ValueCodec.
func (String) Skip(tap *internal.Tap) {
	tap.ReadBytesField()
}

// Bytes is a ValueCodec for Avro's bytes type: a long length prefix
// followed by raw bytes.
type Bytes struct{}

// Write implements ocf.ValueCodec.
func (Bytes) Write(tap *internal.Tap, val interface{}) {
	b, ok := val.([]byte)
	if !ok {
		panic("avrotype.Bytes: unsupported value type")
	}
	tap.WriteBytesField(b)
}

// Read implements ocf.ValueCodec.
func (Bytes) Read(tap *internal.Tap) interface{} {
	b := tap.ReadBytesField()
	cp := make([]byte, len(b))
	copy(cp, b)
	return cp
}

// Skip implements ocf.ValueCodec.
func (Bytes) Skip(tap *internal.Tap) {
	tap.ReadBytesField()
}

// StringBytesMap is a ValueCodec for Avro's map<string, bytes>, the
// shape Header.Meta is framed as: one or more nonzero-length blocks of
// key/value pairs terminated by a zero-length block.
type StringBytesMap struct{}

// Write implements ocf.ValueCodec.
func (StringBytesMap) Write(tap *internal.Tap, val interface{}) {
	m, ok := val.(map[string][]byte)
	if !ok {
		panic("avrotype.StringBytesMap: unsupported value type")
	}
	if len(m) > 0 {
		tap.WriteLong(int64(len(m)))
		for k, v := range m {
			tap.WriteString(k)
			tap.WriteBytesField(v)
		}
	}
	tap.WriteLong(0)
}

// Read implements ocf.ValueCodec.
func (StringBytesMap) Read(tap *internal.Tap) interface{} {
	m := make(map[string][]byte)
	for {
		n := tap.ReadLong()
		if !tap.IsValid() {
			return m
		}
		if n == 0 {
			return m
		}
		if n < 0 {
			n = -n
			tap.ReadLong() // block byte-size, unused
		}
		for i := int64(0); i < n; i++ {
			k := tap.ReadString()
			v := tap.ReadBytesField()
			m[k] = v
		}
	}
}

// Skip implements ocf.ValueCodec.
func (StringBytesMap) Skip(tap *internal.Tap) {
	StringBytesMap{}.Read(tap)
}
