package codec

import (
	"github.com/DataDog/zstd"
	"github.com/pkg/errors"
)

// Zstd is the "zstd" codec, registered in addition to the two codecs
// spec.md names directly. It wraps the teacher's CGO zstd binding.
type Zstd struct {
	// Level is the compression level passed to zstd.CompressLevel.
	// Zero selects the library's default.
	Level int
}

// Compress implements Codec.
func (z Zstd) Compress(input []byte, done CompletionFunc) {
	level := z.Level
	if level == 0 {
		level = zstd.DefaultCompression
	}
	out, err := zstd.CompressLevel(nil, input, level)
	if err != nil {
		done(nil, errors.Wrap(err, "zstd: compress"))
		return
	}
	done(out, nil)
}

// Decompress implements Codec.
func (Zstd) Decompress(input []byte, done CompletionFunc) {
	out, err := zstd.Decompress(nil, input)
	if err != nil {
		done(nil, errors.Wrap(err, "zstd: decompress"))
		return
	}
	done(out, nil)
}
