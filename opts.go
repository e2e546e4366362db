package ocf

import (
	"sync/atomic"

	"github.com/ocflib/ocf/codec"
	"github.com/ocflib/ocf/log"
)

// syncSeedCounter seeds the deterministic sync-marker LCG for encoders
// that don't supply their own SyncMarker, so successive instances in
// the same process don't collide.
var syncSeedCounter uint32

func nextSyncSeed() uint32 {
	return atomic.AddUint32(&syncSeedCounter, 1)
}

// defaultBlockSize is the default batch/block capacity for both the
// raw and block streams' scratch Taps.
const defaultBlockSize = 65536

// EncoderOpts configures a BlockEncoder (and, where applicable, a
// RawEncoder).
type EncoderOpts struct {
	// BlockSize is the initial capacity of the encoder's scratch
	// buffer. Zero selects 65536.
	BlockSize int
	// Schema is the schema text recorded in the header's avro.schema
	// metadata. Only meaningful for BlockEncoder.
	Schema string
	// Codec names the compression codec blocks are compressed with.
	// Empty selects "null".
	Codec string
	// Codecs is the registry Codec is resolved against. Nil selects
	// codec.DefaultRegistry().
	Codecs codec.Registry
	// OmitHeader suppresses header emission, for appending blocks to
	// an existing OCF file. SyncMarker must then be supplied and must
	// match that file's sync marker.
	OmitHeader bool
	// SyncMarker is the 16-byte marker terminating every block. A zero
	// value causes one to be generated deterministically from an
	// internal counter.
	SyncMarker [16]byte
	// Checksum, when true, appends a trailing CRC32 of each block's
	// compressed payload and advertises avro.checksum in the header.
	Checksum bool
	// Observer receives metadata/error/end events. A nil Observer
	// discards them.
	Observer Observer
	// Logger receives diagnostic output. A nil Logger uses the
	// package-level ocf/log outputter.
	Logger log.Outputter
}

func (o EncoderOpts) blockSize() int {
	if o.BlockSize > 0 {
		return o.BlockSize
	}
	return defaultBlockSize
}

func (o EncoderOpts) codecName() string {
	if o.Codec == "" {
		return defaultCodecName
	}
	return o.Codec
}

func (o EncoderOpts) registry() codec.Registry {
	if o.Codecs != nil {
		return o.Codecs
	}
	return codec.DefaultRegistry()
}

func (o EncoderOpts) observer() Observer {
	if o.Observer != nil {
		return o.Observer
	}
	return nopObserver{}
}

func (o EncoderOpts) logger() log.Outputter {
	if o.Logger != nil {
		return o.Logger
	}
	return log.GetOutputter()
}

// DecoderOpts configures a BlockDecoder (and, where applicable, a
// RawDecoder).
type DecoderOpts struct {
	// Decode selects whether records are fully decoded (true, the
	// default) or merely skipped and returned as raw, re-framable
	// bytes (false). See ValueCodec.Skip.
	Decode *bool
	// Codecs is the registry codec names are resolved against. Nil
	// selects codec.DefaultRegistry().
	Codecs codec.Registry
	// ValueCodec drives per-record decoding. It is resolved by the
	// caller, typically from the schema found in the header, via a
	// schema.Loader.
	ValueCodec ValueCodec
	// Loader resolves the schema text found in a header's avro.schema
	// metadata into a ValueCodec, when ValueCodec is not supplied
	// directly.
	Loader SchemaLoader
	// Observer receives metadata/error/end events. A nil Observer
	// discards them.
	Observer Observer
	// Logger receives diagnostic output. A nil Logger uses the
	// package-level ocf/log outputter.
	Logger log.Outputter
}

func (o DecoderOpts) decode() bool {
	if o.Decode == nil {
		return true
	}
	return *o.Decode
}

func (o DecoderOpts) registry() codec.Registry {
	if o.Codecs != nil {
		return o.Codecs
	}
	return codec.DefaultRegistry()
}

func (o DecoderOpts) observer() Observer {
	if o.Observer != nil {
		return o.Observer
	}
	return nopObserver{}
}

func (o DecoderOpts) logger() log.Outputter {
	if o.Logger != nil {
		return o.Logger
	}
	return log.GetOutputter()
}

// SchemaLoader parses schema text (the bytes of a header's
// avro.schema metadata) into a ValueCodec. It is the boundary spec.md
// §1 scopes out as SchemaLoader; see the schema package for the
// interface this is modeled on and a trivial implementation.
type SchemaLoader interface {
	Load(schemaText []byte) (ValueCodec, error)
}

// lcgState is a tiny linear congruential generator used only to
// produce a deterministic, non-cryptographic sync marker when a
// caller does not supply one. Parameters are Numerical Recipes'
// 32-bit LCG.
type lcgState uint32

func newLCG(seed uint32) lcgState {
	if seed == 0 {
		seed = 1
	}
	return lcgState(seed)
}

func (s *lcgState) next() uint32 {
	*s = lcgState(uint32(*s)*1664525 + 1013904223)
	return uint32(*s)
}

// generateSyncMarker deterministically derives 16 bytes from seed,
// used when an encoder isn't given an explicit sync marker.
func generateSyncMarker(seed uint32) [16]byte {
	var marker [16]byte
	lcg := newLCG(seed)
	for i := 0; i < 4; i++ {
		v := lcg.next()
		putUint32(marker[i*4:i*4+4], v)
	}
	return marker
}
