// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	if x > 1 {
		x = 1
	} else if x < -1 {
		x = -1
	}

	// Use 32767 for positive max to avoid overflow
	return int16(x * 32767.0)
}

// Int16ToFloat32 normalizes a 16-bit PCM sample to [-1, 1).
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// FloatsToInts converts normalized samples to 16-bit values stored as int,
// the layout go-audio buffers use. dst must be at least len(src) long.
func FloatsToInts(dst []int, src []float32) {
	for i, x := range src {
		dst[i] = int(Float32ToInt16(x))
	}
}
