// SPDX-License-Identifier: EPL-2.0

// Package track opens audio files for streaming playback.
//
// A Track couples a decoded audio.Source with a frame cursor, the total
// length and the file's tags:
//
//	reg := audio.NewRegistry()
//	reg.Register("wav", wav.Decoder{})
//
//	t, err := track.Open("take.wav", reg)
//	if err != nil {
//	    return err
//	}
//	defer t.Close()
//
//	buf := make([]float32, 4096*t.Channels())
//	frames, err := t.Read(buf)
//
// Length and Seek use the decoder's audio.FrameCounter and audio.FrameSeeker
// when it has them. Otherwise the file is scanned once on open, and seeking
// decodes again from the start.
//
// A Track is not safe for concurrent use; the player owning it serializes
// access.
package track
