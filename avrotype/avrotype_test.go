package avrotype_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ocflib/ocf/avrotype"
	"github.com/ocflib/ocf/internal"
)

func TestLongRoundTrip(t *testing.T) {
	tap := internal.NewTap(64)
	avrotype.Long{}.Write(tap, int64(42))
	require.True(t, tap.IsValid())
	require.Equal(t, []byte{0x54}, tap.Bytes())

	tap.Reset(tap.Bytes())
	require.Equal(t, int64(42), avrotype.Long{}.Read(tap))
}

func TestStringRoundTrip(t *testing.T) {
	tap := internal.NewTap(64)
	avrotype.String{}.Write(tap, "hello")
	tap.Reset(tap.Bytes())
	require.Equal(t, "hello", avrotype.String{}.Read(tap))
}

func TestStringBytesMapRoundTrip(t *testing.T) {
	tap := internal.NewTap(256)
	in := map[string][]byte{"avro.codec": []byte("null"), "avro.schema": []byte(`"string"`)}
	avrotype.StringBytesMap{}.Write(tap, in)
	tap.Reset(tap.Bytes())
	out := avrotype.StringBytesMap{}.Read(tap).(map[string][]byte)
	require.Equal(t, in, out)
}

func TestSkipAdvancesPastValueWithoutDecoding(t *testing.T) {
	tap := internal.NewTap(64)
	avrotype.String{}.Write(tap, "skip me")
	avrotype.Long{}.Write(tap, int64(7))
	tap.Reset(tap.Bytes())

	avrotype.String{}.Skip(tap)
	require.Equal(t, int64(7), avrotype.Long{}.Read(tap))
}
