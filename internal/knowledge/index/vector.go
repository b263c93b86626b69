package index

import (
	"bytes"
	"encoding/binary"
)

// EncodeVector serializes a float32 vector to a little-endian byte blob for
// storage in the chunk table.
func EncodeVector(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}

// DecodeVector deserializes a blob produced by EncodeVector. Nil or
// malformed input yields an empty vector, which matches nothing.
func DecodeVector(b []byte) []float32 {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil
	}
	out := make([]float32, len(b)/4)
	_ = binary.Read(bytes.NewReader(b), binary.LittleEndian, &out)
	return out
}
