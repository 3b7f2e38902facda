package format

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinel_Matches(t *testing.T) {
	s := SomeSentinel[float32](-9999)
	require.True(t, s.Matches(-9999))
	require.False(t, s.Matches(0))

	// Undefined sentinel never matches.
	var unset Sentinel[float32]
	require.False(t, unset.Matches(0))
}

func TestSentinel_ZeroValueSentinel(t *testing.T) {
	// A defined sentinel of 0 is literal: it masks zeros, it is not "unset".
	s := SomeSentinel[int32](0)
	require.True(t, s.Matches(0))
	require.False(t, s.Matches(1))
}

func TestSentinel_JSONRoundTrip(t *testing.T) {
	in := []Sentinel[int32]{SomeSentinel[int32](-9999), NoSentinel[int32]()}

	data, err := json.Marshal(in)
	require.NoError(t, err)
	require.JSONEq(t, `[-9999, null]`, string(data))

	var out []Sentinel[int32]
	require.NoError(t, json.Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestDataType_ElemSize(t *testing.T) {
	require.Equal(t, 4, TypeFloat32.ElemSize())
	require.Equal(t, 4, TypeInt32.ElemSize())
	require.Equal(t, 0, DataType(99).ElemSize())
}

func TestCompressionType_StringRoundTrip(t *testing.T) {
	for _, c := range []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4} {
		require.Equal(t, c, CompressionTypeFromString(c.String()))
	}
	require.Equal(t, CompressionType(0), CompressionTypeFromString("bogus"))
}
