package codec_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ocflib/ocf/codec"
)

func roundTrip(t *testing.T, c codec.Codec, input []byte) {
	t.Helper()
	var compressed, decompressed []byte
	var compressErr, decompressErr error
	c.Compress(input, func(out []byte, err error) {
		compressed, compressErr = out, err
	})
	require.NoError(t, compressErr)

	c.Decompress(compressed, func(out []byte, err error) {
		decompressed, decompressErr = out, err
	})
	require.NoError(t, decompressErr)
	require.Equal(t, input, decompressed)
}

func TestNullRoundTrip(t *testing.T) {
	roundTrip(t, codec.Null{}, []byte("the quick brown fox"))
}

func TestDeflateRoundTrip(t *testing.T) {
	roundTrip(t, codec.Deflate{}, []byte("the quick brown fox jumps over the lazy dog, repeatedly, for a while"))
}

func TestZstdRoundTrip(t *testing.T) {
	roundTrip(t, codec.Zstd{}, []byte("the quick brown fox jumps over the lazy dog, repeatedly, for a while"))
}

func TestDefaultRegistryContainsCoreCodecs(t *testing.T) {
	reg := codec.DefaultRegistry()
	for _, name := range []string{"null", "deflate", "zstd"} {
		if _, ok := reg.Get(name); !ok {
			t.Fatalf("DefaultRegistry missing %q", name)
		}
	}
	if _, ok := reg.Get(""); !ok {
		t.Fatalf(`Get("") should fall back to "null"`)
	}
}
