package format

type (
	// DataType identifies the element type of a stored array.
	DataType uint8
	// CompressionType identifies the chunk compression algorithm.
	CompressionType uint8
)

const (
	TypeFloat32 DataType = 0x1 // TypeFloat32 represents 32-bit IEEE-754 elements.
	TypeInt32   DataType = 0x2 // TypeInt32 represents signed 32-bit integer elements.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (d DataType) String() string {
	switch d {
	case TypeFloat32:
		return "float32"
	case TypeInt32:
		return "int32"
	default:
		return "unknown"
	}
}

// ElemSize returns the size of one element in bytes, or 0 for unknown types.
func (d DataType) ElemSize() int {
	switch d {
	case TypeFloat32, TypeInt32:
		return 4
	default:
		return 0
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionS2:
		return "s2"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

// CompressionTypeFromString maps a codec name back to its CompressionType.
// Returns CompressionType(0) for unknown names.
func CompressionTypeFromString(name string) CompressionType {
	switch name {
	case "none":
		return CompressionNone
	case "zstd":
		return CompressionZstd
	case "s2":
		return CompressionS2
	case "lz4":
		return CompressionLZ4
	default:
		return CompressionType(0)
	}
}
