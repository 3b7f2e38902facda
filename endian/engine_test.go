package endian

import (
	"encoding/binary"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestCheckEndianness(t *testing.T) {
	result := CheckEndianness()

	var probe uint16 = 0x0102
	bytes := (*[2]byte)(unsafe.Pointer(&probe))
	if bytes[0] == 0x01 {
		require.Equal(t, binary.BigEndian, result)
	} else {
		require.Equal(t, binary.LittleEndian, result)
	}
}

func TestIsNativeLittleEndian(t *testing.T) {
	require.Equal(t, CheckEndianness() == binary.LittleEndian, IsNativeLittleEndian())
}

func TestEngines(t *testing.T) {
	le := GetLittleEndianEngine()
	be := GetBigEndianEngine()

	buf := le.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, buf)
	require.Equal(t, uint32(0x01020304), le.Uint32(buf))

	buf = be.AppendUint32(nil, 0x01020304)
	require.Equal(t, []byte{0x01, 0x02, 0x03, 0x04}, buf)
	require.Equal(t, uint32(0x01020304), be.Uint32(buf))

	buf = le.AppendUint64(nil, 0x0102030405060708)
	require.Equal(t, uint64(0x0102030405060708), le.Uint64(buf))
}
