package ocf

import "github.com/ocflib/ocf/internal"

// DoneFunc is the completion callback passed to a stream's Write method.
// It is invoked exactly once, when the stream is ready to accept more
// input; withholding the call is the stream's sole means of exerting
// backpressure on its producer.
type DoneFunc func()

// ValueCodec drives the per-type serialization of a single record. It is
// the boundary spec.md describes as an external collaborator: the core
// streams treat it as a black box driven by a schema the host application
// supplies. See the avrotype package for a minimal, directly testable
// implementation.
type ValueCodec interface {
	// Write serializes val onto tap, starting at tap's current position.
	// Write may advance tap.Pos speculatively past the buffer's capacity;
	// callers are responsible for checking tap.IsValid and rolling back
	// via tap.Restore on overflow.
	Write(tap *internal.Tap, val interface{})
	// Read deserializes and returns the next value from tap.
	Read(tap *internal.Tap) interface{}
	// Skip advances tap past the next value without decoding it.
	Skip(tap *internal.Tap)
}

// Observer receives the out-of-band events a stream produces alongside
// its record/byte output.
type Observer interface {
	// OnMetadata is invoked once, by a decoder, immediately after its
	// header has been parsed.
	OnMetadata(typeName, codecName string, header Header)
	// OnError is invoked once for every non-fatal per-value encode
	// failure, and exactly once more, as the last call before OnEnd,
	// if the stream terminates on a fatal error.
	OnError(err error)
	// OnEnd is invoked exactly once, after the stream has emitted its
	// last unit of output.
	OnEnd()
}

// nopObserver discards every event. It is the default Observer for
// streams constructed without one.
type nopObserver struct{}

func (nopObserver) OnMetadata(string, string, Header) {}
func (nopObserver) OnError(error)                     {}
func (nopObserver) OnEnd()                            {}

// Header is the wire-level OCF header: a 4-byte magic, a string-to-bytes
// metadata map, and a 16-byte sync marker shared by every block in the
// file.
type Header struct {
	Magic [4]byte
	Meta  map[string][]byte
	Sync  [16]byte
}

// ocfMagic is the 4-byte literal "Obj\x01" every OCF header must begin
// with.
var ocfMagic = [4]byte{'O', 'b', 'j', 0x01}

// Recognized Header.Meta keys.
const (
	metaSchema   = "avro.schema"
	metaCodec    = "avro.codec"
	metaChecksum = "avro.checksum"
)

// defaultCodecName is used when a header omits avro.codec.
const defaultCodecName = "null"
