// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audplay/formats/wav"
	"github.com/ik5/audplay/utils"
)

// WriteWAV renders src into a 16-bit WAV file under t.TempDir and returns
// its path.
func WriteWAV(t testing.TB, name string, src *MockSource) string {
	t.Helper()

	samples := make([]int16, 0, src.totalFrames*src.channels)
	buf := make([]float32, 4096*src.channels)
	for {
		n, err := src.ReadSamples(buf)
		for _, v := range buf[:n] {
			samples = append(samples, utils.Float32ToInt16(v))
		}
		if err != nil {
			break
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", name, err)
	}
	defer f.Close()

	if err := wav.WriteWAV16(f, src.sampleRate, src.channels, samples); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}

	return path
}
