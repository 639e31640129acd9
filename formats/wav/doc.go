// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes 16-bit PCM WAV files.
//
// The decoder walks the RIFF chunk list, so files carrying LIST, fact or
// other metadata chunks ahead of the audio data are accepted. Any channel
// count and sample rate is supported; the bit depth must be 16.
//
//	f, _ := os.Open("take.wav")
//	src, err := wav.Decoder{}.Decode(f)
//
// The returned source implements audio.FrameCounter, and audio.FrameSeeker
// when the reader given to Decode is an io.Seeker:
//
//	frames := src.(audio.FrameCounter).Frames()
//	err = src.(audio.FrameSeeker).SeekFrame(frames / 2)
//
// WriteWAV16 produces a canonical 44 byte header followed by interleaved
// samples, and works on any io.Writer:
//
//	err := wav.WriteWAV16(buf, 44100, 2, samples)
package wav
