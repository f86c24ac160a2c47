package stream

import (
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeFrame packs values as little-endian float32 words.
func EncodeFrame(values []float64) []byte {
	out := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(float32(v)))
	}
	return out
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(data []byte) ([]float64, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("frame length %d is not a multiple of 4", len(data))
	}
	out := make([]float64, len(data)/4)
	for i := range out {
		out[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:])))
	}
	return out, nil
}
