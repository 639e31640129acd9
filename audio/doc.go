// SPDX-License-Identifier: EPL-2.0

// Package audio provides low-level audio processing primitives.
//
// This package contains the core audio processing building blocks:
//   - Source interface for audio input
//   - FrameCounter and FrameSeeker capabilities for random access
//   - Resampler for sample rate conversion
//   - MonoMixer for channel mixing
//   - Format registry for decoder registration
//
// # Source Interface
//
// The Source interface is the foundation of audio processing:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Decoders, graph nodes and processors all implement it, so they can be
// chained together. A source that also implements FrameCounter reports its
// length up front; one that implements FrameSeeker can jump to any frame.
// Callers discover both with a type assertion:
//
//	if fs, ok := src.(audio.FrameSeeker); ok {
//	    err = fs.SeekFrame(44100) // one second in at 44.1kHz
//	}
//
// # Resampling
//
// The Resampler changes the sample rate of audio using cubic interpolation:
//
//	resampler := audio.NewResampler(source, 16000)
//	buf := make([]float32, 4096)
//	n, err := resampler.ReadSamples(buf)
//
// It reads its input in small blocks, which keeps it usable on top of live
// sources that never end. Reset drops its history after the input jumps.
//
// # Channel Mixing
//
// The MonoMixer converts multi-channel audio to mono by averaging:
//
//	mono := audio.NewMonoMixer(source)
//
// # Format Registry
//
// The registry maps format keys (file extensions) to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, format, ok := registry.ForPath("/music/take.wav")
//
// # Sample Format
//
// Audio samples are represented as float32 in the range [-1.0, 1.0].
//
// # Error Handling
//
// Audio processing functions return io.EOF when no more data is available.
// Other errors indicate problems with the source or processing:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    if err == io.EOF {
//	        break // Normal end of stream
//	    }
//	    if err != nil {
//	        return err // Processing error
//	    }
//	    // Process n samples from buf
//	}
package audio
