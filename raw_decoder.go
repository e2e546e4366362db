package ocf

import (
	"github.com/ocflib/ocf/internal"
	"github.com/ocflib/ocf/log"
)

// RawDecoder transforms a continuous, frame-less byte stream back
// into records. It owns a single Tap accumulating unconsumed bytes, at
// most one pending write-completion callback, and the need_push /
// finished stall flags spec.md §4.4 describes.
type RawDecoder struct {
	codec    ValueCodec
	decode   bool
	observer Observer
	logger   log.Outputter

	tap       *internal.Tap
	writeDone DoneFunc
	needPush  bool
	finished  bool
	ended     bool
}

// NewRawDecoder returns a RawDecoder that deserializes records with
// vc. When opts.Decode is false, Read returns the raw encoded bytes of
// each record instead of a decoded value.
func NewRawDecoder(vc ValueCodec, opts DecoderOpts) *RawDecoder {
	return &RawDecoder{
		codec:    vc,
		decode:   opts.decode(),
		observer: opts.observer(),
		logger:   opts.logger(),
		tap:      internal.NewTap(0),
	}
}

// Write appends chunk to the decoder's buffer and stores done without
// invoking it. The callback is released only from Read, once the
// decoder has drained every record it can extract from what's
// buffered — this is what bounds memory.
func (d *RawDecoder) Write(chunk []byte, done DoneFunc) {
	if d.finished {
		if done != nil {
			done()
		}
		return
	}
	appendChunk(d.tap, chunk)
	d.writeDone = done
	d.needPush = false
}

// Finish signals that no further bytes are coming. Once the buffer is
// exhausted, any unconsumed residual bytes are a silent truncation,
// not an error.
func (d *RawDecoder) Finish() {
	d.finished = true
}

// Read returns the next decoded record, if one is fully buffered.
func (d *RawDecoder) Read() (val interface{}, ok bool) {
	pos0 := d.tap.Save()
	val = d.readValue()
	if d.tap.IsValid() {
		return val, true
	}
	d.tap.Restore(pos0)
	if !d.finished {
		d.needPush = true
		d.releaseWriteCallback()
		return nil, false
	}
	if !d.ended {
		if d.tap.Remaining() > 0 {
			logDebugf(d.logger, "ocf: raw decoder: %d trailing bytes discarded as truncation", d.tap.Remaining())
		}
		d.ended = true
		d.observer.OnEnd()
	}
	return nil, false
}

func (d *RawDecoder) readValue() interface{} {
	if d.decode {
		return d.codec.Read(d.tap)
	}
	pos0 := d.tap.Pos
	d.codec.Skip(d.tap)
	if !d.tap.IsValid() {
		return nil
	}
	return d.tap.Buf[pos0:d.tap.Pos]
}

// releaseWriteCallback invokes the pending write callback, if any.
// It is the decoder's sole backpressure release point, reachable only
// from Read after a failed validity check.
func (d *RawDecoder) releaseWriteCallback() {
	if d.writeDone == nil {
		return
	}
	done := d.writeDone
	d.writeDone = nil
	done()
}

// Ended reports whether the decoder has emitted its final record.
func (d *RawDecoder) Ended() bool { return d.ended }
