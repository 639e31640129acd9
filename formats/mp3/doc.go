// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// The decoder always yields interleaved stereo at the stream's sample rate:
//
//	f, _ := os.Open("song.mp3")
//	src, err := mp3.Decoder{}.Decode(f)
//
// When the input is an io.Seeker the source also reports its length through
// audio.FrameCounter and jumps with audio.FrameSeeker. Over a plain
// io.Reader, Frames returns -1 and SeekFrame fails with audio.ErrNotSeekable.
package mp3
