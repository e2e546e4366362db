package ocf_test

import (
	"sync"
	"testing"

	"github.com/ocflib/ocf"
	"github.com/ocflib/ocf/avrotype"
	"github.com/ocflib/ocf/codec"
	"github.com/ocflib/ocf/log"
)

// captureOutputter is a log.Outputter that records every message
// accepted at its level, used to verify the block streams' Debug
// and Error logging without touching the package-level default.
type captureOutputter struct {
	level log.Level

	mu   sync.Mutex
	msgs []string
}

func (c *captureOutputter) Level() log.Level { return c.level }

func (c *captureOutputter) Output(calldepth int, level log.Level, s string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, s)
	return nil
}

func (c *captureOutputter) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestBlockEncoderLogsDebugOnFlush(t *testing.T) {
	out := &captureOutputter{level: log.Debug}
	enc := ocf.NewBlockEncoder(avrotype.Long{}, ocf.EncoderOpts{BlockSize: 8, Logger: out})
	for i := 0; i < 64; i++ {
		enc.Write(int64(i), nil)
	}
	enc.Finish()
	for {
		if _, ok := enc.Read(); !ok {
			break
		}
	}
	if out.count() == 0 {
		t.Fatalf("expected at least one Debug log line from flushChunk, got none")
	}
}

func TestBlockDecoderLogsDebugOnDispatch(t *testing.T) {
	encOut := &captureOutputter{level: log.Off}
	enc := ocf.NewBlockEncoder(avrotype.Long{}, ocf.EncoderOpts{BlockSize: 8, Logger: encOut})
	for i := 0; i < 64; i++ {
		enc.Write(int64(i), nil)
	}
	enc.Finish()
	var container []byte
	for {
		chunk, ok := enc.Read()
		if !ok {
			break
		}
		container = append(container, chunk...)
	}

	decOut := &captureOutputter{level: log.Debug}
	dec := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.Long{}, Logger: decOut})
	dec.Write(container, nil)
	dec.Finish()
	for {
		if _, ok := dec.Read(); !ok {
			break
		}
	}
	if decOut.count() == 0 {
		t.Fatalf("expected at least one Debug log line from dispatchBlocks, got none")
	}
}

func TestBlockEncoderLogsErrorOnUnknownCodec(t *testing.T) {
	out := &captureOutputter{level: log.Error}
	enc := ocf.NewBlockEncoder(avrotype.Long{}, ocf.EncoderOpts{
		Codec:  "nonexistent",
		Codecs: codec.DefaultRegistry(),
		Logger: out,
	})
	enc.Write(int64(1), nil)
	if out.count() == 0 {
		t.Fatalf("expected an Error log line from the unknown-codec failure, got none")
	}
}
