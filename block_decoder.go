package ocf

import (
	"github.com/ocflib/ocf/codec"
	ocferrors "github.com/ocflib/ocf/errors"
	"github.com/ocflib/ocf/internal"
	"github.com/ocflib/ocf/log"
)

// BlockDecoder transforms a full OCF container — header followed by
// sync-delimited, codec-compressed blocks — back into records. It
// runs a header phase once, then a block phase: incoming bytes are
// speculatively parsed into as many full blocks as are available,
// each dispatched to the codec registry's decompressor, and the
// results reordered through an OrderedQueue so a permutation in
// decompression completion order never changes the emitted record
// order.
type BlockDecoder struct {
	registry       codec.Registry
	valueCodecOpt  ValueCodec
	loader         SchemaLoader
	decode         bool
	observer       Observer
	logger         log.Outputter

	tap       *internal.Tap
	blockTap  *internal.Tap
	queue     *internal.OrderedQueue
	nextIndex int
	pending   int // outstanding decompressions

	headerDone bool
	decompress codec.Codec
	valueCodec ValueCodec
	syncMarker [16]byte
	checksum   bool

	writeDone DoneFunc
	needPush  bool
	finished  bool
	ended     bool
	err       ocferrors.Once
}

// NewBlockDecoder returns a BlockDecoder configured by opts. Either
// opts.ValueCodec or opts.Loader must resolve a ValueCodec once the
// header's schema text is known.
func NewBlockDecoder(opts DecoderOpts) *BlockDecoder {
	return &BlockDecoder{
		registry:      opts.registry(),
		valueCodecOpt: opts.ValueCodec,
		loader:        opts.Loader,
		decode:        opts.decode(),
		observer:      opts.observer(),
		logger:        opts.logger(),
		tap:           internal.NewTap(0),
		queue:         internal.NewOrderedQueue(),
	}
}

// Write appends chunk to the decoder's input buffer. While the header
// is incomplete or fails validation, done is released immediately, so
// the writer is never left stalled waiting on header bytes; the parse
// is retried on the next Write. Once the header parses — including
// within this same chunk — done is released when every block
// dispatched from the chunk has finished decompressing, bounding
// outstanding parallel decompressions to one write-chunk's worth.
func (d *BlockDecoder) Write(chunk []byte, done DoneFunc) {
	if d.finished || d.err.Err() != nil {
		if done != nil {
			done()
		}
		return
	}
	appendChunk(d.tap, chunk)
	if !d.headerDone {
		d.tryDecodeHeader(done)
		return
	}
	d.needPush = false
	d.dispatchBlocks(done)
}

func (d *BlockDecoder) tryDecodeHeader(done DoneFunc) {
	h, ok := decodeHeader(d.tap)
	if !ok {
		// Underflow: the header isn't fully buffered yet. Release the
		// write callback immediately so the writer can send the rest.
		if done != nil {
			done()
		}
		return
	}
	if h.Magic != ocfMagic {
		d.fail(ocferrors.E(ocferrors.BadMagic, "invalid magic bytes"))
		if done != nil {
			done()
		}
		return
	}
	codecName := string(h.Meta[metaCodec])
	if codecName == "" {
		codecName = defaultCodecName
	}
	c, ok := d.registry.Get(codecName)
	if !ok {
		d.fail(ocferrors.E(ocferrors.UnknownCodec, "unknown codec: "+codecName))
		if done != nil {
			done()
		}
		return
	}
	vc, err := d.resolveValueCodec(h.Meta[metaSchema])
	if err != nil {
		d.fail(ocferrors.E(ocferrors.SchemaParse, err))
		if done != nil {
			done()
		}
		return
	}

	d.decompress = c
	d.valueCodec = vc
	d.syncMarker = h.Sync
	d.checksum = len(h.Meta[metaChecksum]) > 0
	d.headerDone = true
	d.observer.OnMetadata(string(h.Meta[metaSchema]), codecName, h)

	d.needPush = false
	d.dispatchBlocks(done)
}

func (d *BlockDecoder) resolveValueCodec(schemaText []byte) (ValueCodec, error) {
	if d.valueCodecOpt != nil {
		return d.valueCodecOpt, nil
	}
	if d.loader == nil {
		return nil, ocferrors.New("ocf: no ValueCodec or Loader configured for BlockDecoder")
	}
	return d.loader.Load(schemaText)
}

// dispatchBlocks speculatively reads every full block currently
// buffered and submits each for decompression. done is released once
// every dispatch from this call has completed — including the
// degenerate case of zero dispatched blocks, which releases
// immediately.
func (d *BlockDecoder) dispatchBlocks(done DoneFunc) {
	counter := &chunkCounter{n: 1}
	release := counter.release(done)

	for {
		count, data, sync, ok, err := tryReadBlock(d.tap, d.checksum)
		if err != nil {
			d.fail(err)
			break
		}
		if !ok {
			break
		}
		if sync != d.syncMarker {
			d.fail(ocferrors.E(ocferrors.BadSync, "invalid sync marker"))
			break
		}
		idx := d.nextIndex
		d.nextIndex++
		d.pending++
		logDebugf(d.logger, "ocf: block decoder: dispatching block %d (%d records, %d compressed bytes)", idx, count, len(data))
		counter.n++ // increment before invoking the codec: it may complete synchronously
		d.decompress.Decompress(data, func(out []byte, derr error) {
			d.onDecompressDone(idx, count, out, derr)
			release()
		})
	}
	release()
}

func (d *BlockDecoder) onDecompressDone(idx, count int, out []byte, err error) {
	d.pending--
	if err != nil {
		d.fail(ocferrors.E(ocferrors.CompressFailure, err))
		return
	}
	// Backpressure for the byte producer was already released by the
	// chunk counter in dispatchBlocks; no per-block completion is
	// needed here.
	d.queue.Push(idx, &internal.BlockData{Index: idx, Buf: out, Count: count})
}

// chunkCounter implements spec.md §4.6's self-counting backpressure
// trick: initialized to 1, incremented once per block dispatched from
// a write chunk (before the codec is invoked, to tolerate synchronous
// completion), and decremented once per completion plus once more by
// the dispatch loop itself. The write callback fires when it reaches
// zero, whether that happens because every dispatched block has
// completed or because nothing was dispatched at all.
type chunkCounter struct{ n int }

func (c *chunkCounter) release(done DoneFunc) func() {
	return func() {
		c.n--
		if c.n == 0 && done != nil {
			done()
		}
	}
}

// Finish signals that no further bytes are coming.
func (d *BlockDecoder) Finish() {
	d.finished = true
}

// Read returns the next decoded record, if one is available: either
// still sitting in the current block or in the next in-order block
// waiting in the queue.
func (d *BlockDecoder) Read() (val interface{}, ok bool) {
	for {
		if d.blockTap != nil && d.blockTap.Remaining() > 0 {
			return d.readFromBlock()
		}
		bd := d.queue.Pop()
		if bd == nil {
			break
		}
		d.blockTap = internal.NewTap(len(bd.Buf))
		d.blockTap.Reset(bd.Buf)
		bd.Complete()
	}

	if !d.headerDone && !d.finished {
		d.needPush = true
		return nil, false
	}
	if d.finished && d.pending == 0 && d.queue.Len() == 0 && (d.blockTap == nil || d.blockTap.Remaining() == 0) {
		if !d.ended {
			d.ended = true
			d.observer.OnEnd()
		}
		return nil, false
	}
	d.needPush = true
	return nil, false
}

func (d *BlockDecoder) readFromBlock() (interface{}, bool) {
	pos0 := d.blockTap.Save()
	val := d.readValue()
	if d.blockTap.IsValid() {
		return val, true
	}
	// Block-internal framing is presized by the compressed payload's own
	// length, so this read is guaranteed valid; treat underflow here as
	// truncation of that single block rather than retrying.
	d.blockTap.Restore(pos0)
	d.blockTap = nil
	return nil, false
}

func (d *BlockDecoder) readValue() interface{} {
	if d.decode {
		return d.valueCodec.Read(d.blockTap)
	}
	pos0 := d.blockTap.Pos
	d.valueCodec.Skip(d.blockTap)
	if !d.blockTap.IsValid() {
		return nil
	}
	return d.blockTap.Buf[pos0:d.blockTap.Pos]
}

// Ended reports whether the decoder has emitted its final record.
func (d *BlockDecoder) Ended() bool { return d.ended }

// Err returns the fatal error that terminated the stream, if any.
func (d *BlockDecoder) Err() error { return d.err.Err() }

func (d *BlockDecoder) fail(err error) {
	if d.err.Err() != nil {
		return
	}
	d.err.Set(err)
	logErrorf(d.logger, "ocf: block decoder: %v", err)
	d.finished = true
	d.observer.OnError(err)
}
