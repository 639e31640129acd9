// SPDX-License-Identifier: EPL-2.0

package engine

import "github.com/ik5/audplay/audio"

// Node is a unit of the render graph. ReadSamples is only ever called from
// the render pass, with the engine's render lock held.
type Node interface {
	audio.Source

	// Reset drops internal history such as filter state and buffered audio.
	Reset()
}

// Processor is a node fed by exactly one upstream source.
type Processor interface {
	Node

	// SetInput replaces the upstream source; nil renders silence.
	SetInput(src audio.Source)
}

// Buffering is implemented by nodes that hold audio between render passes.
type Buffering interface {
	// Pending converts upstream, the frames still held before this node in
	// its input's frame rate, into output frames and adds what the node
	// itself holds.
	Pending(upstream float64) float64
}

// fill reads from src until dst is full or src ends, then zero-fills the
// rest. It returns how many samples came from src.
func fill(src audio.Source, dst []float32) int {
	if src == nil {
		clear(dst)
		return 0
	}

	filled := 0
	for filled < len(dst) {
		n, err := src.ReadSamples(dst[filled:])
		filled += n
		if err != nil || n == 0 {
			break
		}
	}
	clear(dst[filled:])

	return filled
}
