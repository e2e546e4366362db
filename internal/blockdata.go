package internal

// DoneFunc is invoked exactly once when the caller that attached it
// to a BlockData may proceed, i.e. the same "ready for more input"
// signal ocf.DoneFunc carries at the public Write boundary. A block's
// own compression/decompression failure is reported through the
// stream's error-reporting path instead of through this callback, so
// it carries no error.
type DoneFunc func()

// BlockData carries one block's payload between the compression
// pipeline and the OrderedQueue that restores synchronous order
// across asynchronous codec completions. Index is the block's
// position in the stream; Count is the number of records it holds,
// which the encoder writes into the block's record-count field
// (decoders set it but read records until the block's bytes run out).
type BlockData struct {
	Index      int
	Buf        []byte
	Count      int
	Completion DoneFunc

	completed bool
}

// Complete invokes the block's completion callback, if one is set,
// and is safe to call more than once: only the first call has an
// effect.
func (b *BlockData) Complete() {
	if b.completed {
		return
	}
	b.completed = true
	if b.Completion != nil {
		b.Completion()
	}
}
