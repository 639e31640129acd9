// SPDX-License-Identifier: EPL-2.0

package engine

// Buffer is a block of interleaved PCM frames handed to a PlayerNode.
type Buffer struct {
	Data       []float32
	Frames     int // valid frames in Data
	SampleRate int
	Channels   int
}

// NewBuffer allocates a buffer that holds up to capacity frames.
func NewBuffer(sampleRate, channels, capacity int) *Buffer {
	return &Buffer{
		Data:       make([]float32, capacity*channels),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Capacity is the number of frames Data can hold.
func (b *Buffer) Capacity() int { return len(b.Data) / b.Channels }

// Samples returns the valid part of Data.
func (b *Buffer) Samples() []float32 { return b.Data[:b.Frames*b.Channels] }
