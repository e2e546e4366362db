package ocf

import (
	"fmt"

	ocferrors "github.com/ocflib/ocf/errors"
	"github.com/ocflib/ocf/internal"
	"github.com/ocflib/ocf/log"
)

// RawEncoder transforms a sequence of records into a continuous,
// frame-less byte stream: no header, no block framing, no sync
// markers. It batches writes into a growable scratch buffer and only
// emits downstream on overflow or Finish, amortizing the cost of
// whatever sits downstream of Read.
type RawEncoder struct {
	codec    ValueCodec
	tap      *internal.Tap
	observer Observer
	logger   log.Outputter

	pending  [][]byte
	finished bool
	ended    bool
}

// NewRawEncoder returns a RawEncoder that serializes values with vc.
func NewRawEncoder(vc ValueCodec, opts EncoderOpts) *RawEncoder {
	return &RawEncoder{
		codec:    vc,
		tap:      internal.NewTap(opts.blockSize()),
		observer: opts.observer(),
		logger:   opts.logger(),
	}
}

// Write encodes val into the encoder's scratch buffer and invokes
// done once the value has been accepted. RawEncoder never stalls a
// write: done is always called before Write returns.
func (e *RawEncoder) Write(val interface{}, done DoneFunc) {
	if !e.finished {
		e.writeOne(val)
	}
	if done != nil {
		done()
	}
}

func (e *RawEncoder) writeOne(val interface{}) {
	pos0 := e.tap.Save()
	e.encodeValue(val)
	if e.tap.IsValid() {
		return
	}

	if pos0 > 0 {
		chunk := make([]byte, pos0)
		copy(chunk, e.tap.Buf[:pos0])
		e.pending = append(e.pending, chunk)
	}
	need := e.tap.Pos - pos0
	if need > len(e.tap.Buf) {
		e.tap.Grow(2 * need)
	} else {
		e.tap.Reset(e.tap.Buf)
	}

	e.encodeValue(val)
	if !e.tap.IsValid() {
		// The retry is sized to guarantee success; reaching here means
		// the ValueCodec's writes are not deterministic in size. Drop
		// the value rather than emit a corrupted buffer.
		e.tap.Reset(e.tap.Buf)
		e.reportEncodeFailure(fmt.Errorf("value did not fit after buffer growth to %d bytes", len(e.tap.Buf)))
	}
}

func (e *RawEncoder) encodeValue(val interface{}) {
	defer func() {
		if r := recover(); r != nil {
			e.reportEncodeFailure(fmt.Errorf("%v", r))
		}
	}()
	e.codec.Write(e.tap, val)
}

func (e *RawEncoder) reportEncodeFailure(cause error) {
	err := ocferrors.E(ocferrors.EncodeFailure, cause)
	logErrorf(e.logger, "ocf: encode failure: %v", err)
	e.observer.OnError(err)
}

// Finish signals that no further values will be written. Bytes still
// sitting in the scratch buffer become available from the next Read.
func (e *RawEncoder) Finish() {
	if e.finished {
		return
	}
	e.finished = true
	if e.tap.Len() > 0 {
		e.pending = append(e.pending, e.tap.Bytes())
	}
}

// Read returns the next available chunk of encoded bytes, if any.
// After Finish has been called and every chunk drained, Read returns
// ok=false and Ended reports true.
func (e *RawEncoder) Read() (chunk []byte, ok bool) {
	if len(e.pending) > 0 {
		chunk, e.pending = e.pending[0], e.pending[1:]
		return chunk, true
	}
	if e.finished && !e.ended {
		e.ended = true
		e.observer.OnEnd()
	}
	return nil, false
}

// Ended reports whether the encoder has emitted its final chunk.
func (e *RawEncoder) Ended() bool { return e.ended }
