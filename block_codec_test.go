package ocf_test

import (
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/require"

	"github.com/ocflib/ocf"
	"github.com/ocflib/ocf/avrotype"
	"github.com/ocflib/ocf/codec"
)

func encodeAll(t *testing.T, e interface {
	Write(interface{}, ocf.DoneFunc)
	Finish()
	Read() ([]byte, bool)
}, values []interface{}) []byte {
	t.Helper()
	for _, v := range values {
		e.Write(v, nil)
	}
	e.Finish()
	var out []byte
	for {
		chunk, ok := e.Read()
		if !ok {
			break
		}
		out = append(out, chunk...)
	}
	return out
}

func decodeAll(t *testing.T, d interface {
	Write([]byte, ocf.DoneFunc)
	Finish()
	Read() (interface{}, bool)
}, input []byte) []interface{} {
	t.Helper()
	d.Write(input, nil)
	d.Finish()
	var got []interface{}
	for {
		v, ok := d.Read()
		if !ok {
			break
		}
		got = append(got, v)
	}
	return got
}

func TestBlockHeaderBytesMatchScenario3(t *testing.T) {
	var zero [16]byte
	e := ocf.NewBlockEncoder(avrotype.String{}, ocf.EncoderOpts{
		Schema:     `"string"`,
		Codec:      "null",
		SyncMarker: zero,
	})
	e.Write("x", nil)
	e.Finish()

	// An all-zero SyncMarker selects a generated marker, so only the
	// magic and the metadata entries of the header are checked here.
	chunk, ok := e.Read()
	require.True(t, ok)
	require.True(t, len(chunk) >= 4)
	expect.EQ(t, string(chunk[:4]), "Obj\x01")
	require.Contains(t, string(chunk), "avro.codec")
	require.Contains(t, string(chunk), "avro.schema")
}

func TestBlockEncoderDecoderRoundTrip(t *testing.T) {
	values := []interface{}{"alpha", "beta", "gamma delta", "", "the end"}
	e := ocf.NewBlockEncoder(avrotype.String{}, ocf.EncoderOpts{Schema: `"string"`, Codec: "deflate"})
	out := encodeAll(t, e, values)

	d := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.String{}})
	got := decodeAll(t, d, out)
	require.Equal(t, values, got)
}

func TestBlockEncoderDecoderRoundTripByteAtATime(t *testing.T) {
	values := []interface{}{int64(1), int64(-1), int64(1 << 40), int64(0)}
	e := ocf.NewBlockEncoder(avrotype.Long{}, ocf.EncoderOpts{Schema: `"long"`, Codec: "zstd", BlockSize: 16})
	out := encodeAll(t, e, values)

	d := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.Long{}})
	var got []interface{}
	for _, b := range out {
		d.Write([]byte{b}, nil)
		for {
			v, ok := d.Read()
			if !ok {
				break
			}
			got = append(got, v)
		}
	}
	d.Finish()
	for {
		v, ok := d.Read()
		if !ok {
			break
		}
		got = append(got, v)
	}
	require.Equal(t, values, got)
}

func TestBlockDecoderBadMagic(t *testing.T) {
	var errs []error
	obs := &collectingObserver{}
	d := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.String{}, Observer: obs})

	bad := append([]byte("Obj\x02"), make([]byte, 32)...)
	d.Write(bad, nil)
	d.Finish()
	_, ok := d.Read()
	require.False(t, ok)

	errs = obs.errors
	require.Len(t, errs, 1)
	require.Contains(t, errs[0].Error(), "invalid magic bytes")
}

func TestBlockDecoderUnknownCodec(t *testing.T) {
	e := ocf.NewBlockEncoder(avrotype.String{}, ocf.EncoderOpts{Schema: `"string"`, Codec: "null"})
	e.Write("v", nil)
	e.Finish()
	var out []byte
	for {
		chunk, ok := e.Read()
		if !ok {
			break
		}
		out = append(out, chunk...)
	}

	// Swap the header bytes to reference a codec that isn't registered.
	patched := make([]byte, len(out))
	copy(patched, out)
	require.True(t, replaceOnce(patched, []byte("null"), []byte("snap")))

	obs := &collectingObserver{}
	d := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.String{}, Observer: obs})
	d.Write(patched, nil)
	d.Finish()
	d.Read()
	require.Len(t, obs.errors, 1)
	require.Contains(t, obs.errors[0].Error(), "unknown codec")
}

func TestBlockOutOfOrderDecompressionPreservesOrder(t *testing.T) {
	// Two blocks worth of data, forced apart by a tiny block size so the
	// scratch buffer overflows between "B0" and "B1".
	e := ocf.NewBlockEncoder(avrotype.String{}, ocf.EncoderOpts{Schema: `"string"`, Codec: "null", BlockSize: 4})
	e.Write("B0-a", nil)
	e.Write("B0-b", nil)
	e.Write("B1-a", nil)
	e.Finish()
	var out []byte
	for {
		chunk, ok := e.Read()
		if !ok {
			break
		}
		out = append(out, chunk...)
	}

	reg := codec.Registry{"null": &reorderingNullCodec{}}
	d := ocf.NewBlockDecoder(ocf.DecoderOpts{ValueCodec: avrotype.String{}, Codecs: reg})
	got := decodeAll(t, d, out)
	require.Equal(t, []interface{}{"B0-a", "B0-b", "B1-a"}, got)
}

// reorderingNullCodec decompresses synchronously but defers the first
// call it sees until after the second one, simulating decompression
// callbacks that fire out of submission order.
type reorderingNullCodec struct {
	pendingDone codec.CompletionFunc
	pendingData []byte
	seen        int
}

func (c *reorderingNullCodec) Compress(input []byte, done codec.CompletionFunc) { done(input, nil) }

func (c *reorderingNullCodec) Decompress(input []byte, done codec.CompletionFunc) {
	c.seen++
	if c.seen == 1 {
		c.pendingDone, c.pendingData = done, input
		return
	}
	done(input, nil)
	if c.pendingDone != nil {
		pd, pData := c.pendingDone, c.pendingData
		c.pendingDone, c.pendingData = nil, nil
		pd(pData, nil)
	}
}

type collectingObserver struct {
	errors []error
}

func (o *collectingObserver) OnMetadata(string, string, ocf.Header) {}
func (o *collectingObserver) OnError(err error)                     { o.errors = append(o.errors, err) }
func (o *collectingObserver) OnEnd()                                {}

func replaceOnce(b, old, new []byte) bool {
	if len(old) != len(new) {
		panic("replaceOnce: length mismatch")
	}
	for i := 0; i+len(old) <= len(b); i++ {
		match := true
		for j := range old {
			if b[i+j] != old[j] {
				match = false
				break
			}
		}
		if match {
			copy(b[i:i+len(old)], new)
			return true
		}
	}
	return false
}
