package ocf

import "github.com/ocflib/ocf/internal"

// encodeGrowing runs encode against a Tap of initial capacity,
// doubling and retrying until it fits. It exists because the wire
// helpers in this package size their scratch Tap as an estimate
// (schema text length, compressed block length, ...) rather than a
// precise byte count, and Tap.Bytes panics if called while the Tap is
// invalid.
func encodeGrowing(initial int, encode func(tap *internal.Tap)) []byte {
	if initial <= 0 {
		initial = 64
	}
	size := initial
	for {
		tap := internal.NewTap(size)
		encode(tap)
		if tap.IsValid() {
			return tap.Bytes()
		}
		size *= 2
	}
}
