// Package codec implements the compression codec registry the core
// streams treat as an external collaborator: a mapping from codec name
// to a byte-to-byte transform invoked with a completion callback. The
// registry tolerates both synchronous and asynchronous completion.
package codec

// CompletionFunc is invoked exactly once by a Codec's Compress or
// Decompress method, carrying either the transformed bytes or an
// error. Implementations must not assume the call happens on a
// different goroutine, nor that it happens after Compress/Decompress
// returns: callers increment their own pending counters before
// invoking the codec, not after, to tolerate synchronous completion.
type CompletionFunc func(output []byte, err error)

// A Codec is a registered byte-to-byte transform, paired for
// compression and decompression.
type Codec interface {
	// Compress transforms input and reports the result to done.
	Compress(input []byte, done CompletionFunc)
	// Decompress reverses Compress and reports the result to done.
	Decompress(input []byte, done CompletionFunc)
}

// Registry maps codec names, as they appear in a header's avro.codec
// metadata, to their Codec implementation.
type Registry map[string]Codec

// DefaultRegistry returns a new Registry containing every codec this
// module ships: the identity "null" codec, "deflate" (raw DEFLATE via
// klauspost/compress), and "zstd" (via the DataDog zstd binding).
func DefaultRegistry() Registry {
	return Registry{
		"null":    Null{},
		"deflate": Deflate{},
		"zstd":    Zstd{},
	}
}

// Get resolves name against the registry, falling back to "null" when
// name is empty, the convention spec.md's header §3 uses for an
// omitted avro.codec key.
func (r Registry) Get(name string) (Codec, bool) {
	if name == "" {
		name = "null"
	}
	c, ok := r[name]
	return c, ok
}
