// Package ocf implements a streaming codec for the object container file
// format: a self-describing binary container that frames a sequence of
// records, encoded under a caller-supplied schema, into synchronized,
// optionally compressed blocks.
//
// Four duplex streams are exposed: RawEncoder and RawDecoder move
// records to and from a continuous, frame-less byte sequence; BlockEncoder
// and BlockDecoder move records to and from a full container file, complete
// with header and sync-delimited, codec-compressed blocks. All four are
// single-threaded, backpressured state machines: a producer calls Write
// with a completion callback that is invoked once the stream is ready for
// more input, and a consumer calls Read to pull whatever output is
// currently available.
//
// The package treats schema parsing and per-value encoding as pluggable via
// the ValueCodec interface (see the avrotype and schema subpackages for a
// minimal reference implementation) and treats compression as pluggable via
// the codec subpackage's Registry.
package ocf
