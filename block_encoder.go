package ocf

import (
	"github.com/ocflib/ocf/codec"
	ocferrors "github.com/ocflib/ocf/errors"
	"github.com/ocflib/ocf/internal"
	"github.com/ocflib/ocf/log"
)

// BlockEncoder transforms a sequence of records into a full OCF
// container: header, then sync-delimited, codec-compressed blocks. It
// batches records exactly as RawEncoder does, but on overflow submits
// the accumulated bytes to a compression codec instead of emitting
// them directly, and reorders the codec's completions through an
// OrderedQueue so the emitted byte stream doesn't depend on how the
// codec schedules its callback.
type BlockEncoder struct {
	valueCodec ValueCodec
	registry   codec.Registry
	codecName  string
	schema     string
	omitHeader bool
	checksum   bool
	sync       [16]byte
	observer   Observer
	logger     log.Outputter

	tap      *internal.Tap
	compress codec.Codec
	started  bool

	pending      [][]byte
	blockCount   int
	nextIndex    int
	pendingCount int
	queue        *internal.OrderedQueue

	err      ocferrors.Once
	finished bool
	ended    bool
}

// NewBlockEncoder returns a BlockEncoder that serializes records with
// vc according to opts.
func NewBlockEncoder(vc ValueCodec, opts EncoderOpts) *BlockEncoder {
	sync := opts.SyncMarker
	if sync == ([16]byte{}) {
		sync = generateSyncMarker(nextSyncSeed())
	}
	return &BlockEncoder{
		valueCodec: vc,
		registry:   opts.registry(),
		codecName:  opts.codecName(),
		schema:     opts.Schema,
		omitHeader: opts.OmitHeader,
		checksum:   opts.Checksum,
		sync:       sync,
		observer:   opts.observer(),
		logger:     opts.logger(),
		tap:        internal.NewTap(opts.blockSize()),
		queue:      internal.NewOrderedQueue(),
	}
}

// Write encodes val into the current block. If encoding overflows the
// current block, the accumulated bytes are submitted for compression
// and done is attached to the resulting BlockData: it is invoked only
// once that block has been emitted by Read, giving downstream capacity
// real influence over how far the producer can run ahead. If Finish
// has been called by the time Read emits that block, done is not
// invoked; if compression fails, done is invoked at once. When no
// flush is triggered, done is invoked immediately.
func (e *BlockEncoder) Write(val interface{}, done DoneFunc) {
	if e.finished || e.err.Err() != nil {
		if done != nil {
			done()
		}
		return
	}
	if !e.started {
		e.started = true
		c, ok := e.registry.Get(e.codecName)
		if !ok {
			e.fail(ocferrors.E(ocferrors.UnknownCodec, "unknown codec: "+e.codecName))
			if done != nil {
				done()
			}
			return
		}
		e.compress = c
		if !e.omitHeader {
			e.emitHeader()
		}
	}

	pos0 := e.tap.Save()
	e.encodeValue(val)
	if e.tap.IsValid() {
		e.blockCount++
		if done != nil {
			done()
		}
		return
	}

	flushed := false
	if pos0 > 0 {
		e.flushChunk(pos0, done)
		flushed = true
	}
	need := e.tap.Pos - pos0
	if need > len(e.tap.Buf) {
		e.tap.Grow(2 * need)
	} else {
		e.tap.Reset(e.tap.Buf)
	}
	e.encodeValue(val)
	if e.tap.IsValid() {
		e.blockCount++
	} else {
		e.tap.Reset(e.tap.Buf)
		e.reportEncodeFailure("value did not fit after buffer growth")
	}
	if !flushed && done != nil {
		done()
	}
}

func (e *BlockEncoder) encodeValue(val interface{}) {
	defer func() {
		if r := recover(); r != nil {
			e.reportEncodeFailure(panicMessage(r))
		}
	}()
	e.valueCodec.Write(e.tap, val)
}

func (e *BlockEncoder) reportEncodeFailure(message string) {
	err := ocferrors.E(ocferrors.EncodeFailure, message)
	logErrorf(e.logger, "ocf: block encoder: %v", err)
	e.observer.OnError(err)
}

func panicMessage(r interface{}) string {
	if err, ok := r.(error); ok {
		return err.Error()
	}
	if s, ok := r.(string); ok {
		return s
	}
	return "encode panic"
}

func (e *BlockEncoder) emitHeader() {
	meta := map[string][]byte{metaCodec: []byte(e.codecName)}
	if e.schema != "" {
		meta[metaSchema] = []byte(e.schema)
	}
	if e.checksum {
		meta[metaChecksum] = []byte("true")
	}
	h := Header{Magic: ocfMagic, Meta: meta, Sync: e.sync}
	bytes := encodeGrowing(256+len(e.schema)*2, func(tap *internal.Tap) {
		encodeHeader(tap, h)
	})
	e.pending = append(e.pending, bytes)
}

// flushChunk submits tap.Buf[:n] for compression, tagged with a
// monotonic index that OrderedQueue uses to restore emission order
// regardless of when the codec's callback fires. done, if non-nil,
// becomes the resulting BlockData's completion callback.
func (e *BlockEncoder) flushChunk(n int, done DoneFunc) {
	data := make([]byte, n)
	copy(data, e.tap.Buf[:n])
	idx := e.nextIndex
	e.nextIndex++
	count := e.blockCount
	e.blockCount = 0
	logDebugf(e.logger, "ocf: block encoder: flushing block %d (%d records, %d bytes)", idx, count, n)

	// Increment before invoking the codec: it may complete synchronously.
	e.pendingCount++
	e.compress.Compress(data, func(out []byte, err error) {
		e.onCompressDone(idx, count, out, done, err)
	})
}

func (e *BlockEncoder) onCompressDone(idx, count int, out []byte, done DoneFunc, err error) {
	e.pendingCount--
	if err != nil {
		e.fail(ocferrors.E(ocferrors.CompressFailure, err))
		if done != nil {
			done()
		}
		return
	}
	e.queue.Push(idx, &internal.BlockData{Index: idx, Buf: out, Count: count, Completion: internal.DoneFunc(done)})
}

// Finish signals that no further records will be written. Any
// records still accumulated in the current block are flushed for
// compression; Read continues to drain compressed and queued blocks
// until every one has been emitted.
func (e *BlockEncoder) Finish() {
	if e.finished {
		return
	}
	if e.blockCount > 0 {
		e.flushChunk(e.tap.Len(), nil)
	}
	e.finished = true
}

// Read returns the next available chunk of container bytes: the
// header (once), then each block in submission order as its
// compression completes.
func (e *BlockEncoder) Read() (chunk []byte, ok bool) {
	if len(e.pending) > 0 {
		chunk, e.pending = e.pending[0], e.pending[1:]
		return chunk, true
	}
	if bd := e.queue.Pop(); bd != nil {
		bytes := encodeGrowing(len(bd.Buf)+64, func(tap *internal.Tap) {
			encodeBlock(tap, bd.Count, bd.Buf, e.sync, e.checksum)
		})
		if !e.finished {
			bd.Complete()
		}
		return bytes, true
	}
	if e.finished && e.pendingCount == 0 && e.queue.Len() == 0 && !e.ended {
		e.ended = true
		e.observer.OnEnd()
	}
	return nil, false
}

// Ended reports whether the encoder has emitted its final chunk.
func (e *BlockEncoder) Ended() bool { return e.ended }

// Err returns the fatal error that terminated the stream, if any.
func (e *BlockEncoder) Err() error { return e.err.Err() }

func (e *BlockEncoder) fail(err error) {
	if e.err.Err() != nil {
		return
	}
	e.err.Set(err)
	logErrorf(e.logger, "ocf: block encoder: %v", err)
	e.finished = true
	e.observer.OnError(err)
}
