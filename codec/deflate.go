package codec

import (
	"bytes"
	"io/ioutil"

	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
)

// Deflate is the "deflate" codec: raw DEFLATE (no zlib or gzip
// envelope) via klauspost/compress/flate, the library the teacher's
// recordioflate package wraps.
type Deflate struct {
	// Level is the compression level passed to flate.NewWriter. Zero
	// selects flate.DefaultCompression.
	Level int
}

// Compress implements Codec.
func (d Deflate) Compress(input []byte, done CompletionFunc) {
	level := d.Level
	if level == 0 {
		level = flate.DefaultCompression
	}
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		done(nil, errors.Wrap(err, "deflate: new writer"))
		return
	}
	if _, err := w.Write(input); err != nil {
		done(nil, errors.Wrap(err, "deflate: write"))
		return
	}
	if err := w.Close(); err != nil {
		done(nil, errors.Wrap(err, "deflate: close"))
		return
	}
	done(buf.Bytes(), nil)
}

// Decompress implements Codec.
func (Deflate) Decompress(input []byte, done CompletionFunc) {
	r := flate.NewReader(bytes.NewReader(input))
	defer r.Close()
	out, err := ioutil.ReadAll(r)
	if err != nil {
		done(nil, errors.Wrap(err, "deflate: read"))
		return
	}
	done(out, nil)
}
