package ocf_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ocflib/ocf"
	"github.com/ocflib/ocf/avrotype"
)

func TestRawDecoderEmptyStream(t *testing.T) {
	d := ocf.NewRawDecoder(avrotype.Long{}, ocf.DecoderOpts{})
	d.Finish()
	_, ok := d.Read()
	require.False(t, ok)
	require.True(t, d.Ended())
}

func TestRawDecoderSingleSmallRecord(t *testing.T) {
	d := ocf.NewRawDecoder(avrotype.Long{}, ocf.DecoderOpts{})
	d.Write([]byte{0x54}, nil)
	d.Finish()
	val, ok := d.Read()
	require.True(t, ok)
	require.Equal(t, int64(42), val)
}

func TestRawDecoderBackpressureSingleOutstandingCallback(t *testing.T) {
	d := ocf.NewRawDecoder(avrotype.String{}, ocf.DecoderOpts{})

	released := false
	d.Write([]byte{0x02}, func() { released = true }) // length prefix says 1 byte follows; none does

	_, ok := d.Read()
	require.False(t, ok, "read should stall: the length prefix is present but the payload is not")
	require.True(t, released, "the write callback must be released once the read path detects underflow")
}

func TestRawDecoderTruncationIsSilent(t *testing.T) {
	d := ocf.NewRawDecoder(avrotype.String{}, ocf.DecoderOpts{})
	d.Write([]byte{0x02}, nil) // a length-prefixed string whose payload never arrives
	d.Finish()

	_, ok := d.Read()
	require.False(t, ok)
	require.True(t, d.Ended())
}

func TestRawRoundTripAcrossArbitraryChunking(t *testing.T) {
	e := ocf.NewRawEncoder(avrotype.String{}, ocf.EncoderOpts{})
	values := []string{"alpha", "beta", "gamma delta epsilon", "", "zeta"}
	for _, v := range values {
		e.Write(v, nil)
	}
	e.Finish()

	var encoded []byte
	for {
		chunk, ok := e.Read()
		if !ok {
			break
		}
		encoded = append(encoded, chunk...)
	}

	d := ocf.NewRawDecoder(avrotype.String{}, ocf.DecoderOpts{})
	// Feed the decoder one byte at a time to exercise arbitrary chunking.
	for _, b := range encoded {
		d.Write([]byte{b}, nil)
	}
	d.Finish()

	var got []string
	for {
		val, ok := d.Read()
		if !ok {
			break
		}
		got = append(got, val.(string))
	}
	require.Equal(t, values, got)
}
