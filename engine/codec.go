package engine

import (
	"encoding/binary"
	"fmt"
	"math"
)

// decodeEmbedding mirrors vector.DecodeEmbedding. It is kept local to avoid
// an import cycle with the vector package tests, which open databases here.
func decodeEmbedding(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vec: invalid embedding blob length %d", len(b))
	}
	n := len(b) / 4
	v := make([]float32, n)
	for i := 0; i < n; i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
