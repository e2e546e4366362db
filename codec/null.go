package codec

// Null is the identity codec: Compress and Decompress both return
// their input unchanged. It is the default when a stream's codec is
// unset.
type Null struct{}

// Compress implements Codec.
func (Null) Compress(input []byte, done CompletionFunc) {
	done(input, nil)
}

// Decompress implements Codec.
func (Null) Decompress(input []byte, done CompletionFunc) {
	done(input, nil)
}
