package ocf

import "github.com/ocflib/ocf/internal"

// appendChunk concatenates chunk onto whatever of tap's buffer hasn't
// yet been consumed, discarding the already-read prefix and resetting
// the cursor to 0. It is the shared accumulation step RawDecoder and
// BlockDecoder both use on their write path.
func appendChunk(tap *internal.Tap, chunk []byte) {
	rest := tap.Buf[tap.Pos:]
	buf := make([]byte, len(rest)+len(chunk))
	copy(buf, rest)
	copy(buf[len(rest):], chunk)
	tap.Reset(buf)
}
