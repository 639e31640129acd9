// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes 16-bit PCM AIFF files through github.com/go-audio/aiff.
//
//	f, _ := os.Open("take.aiff")
//	src, err := aiff.Decoder{}.Decode(f)
//
// go-audio seeks between chunks, so a reader that is not an io.ReadSeeker is
// buffered in memory first. The source reports its length from the COMM
// chunk through audio.FrameCounter but does not seek; callers needing a
// position re-decode and skip.
package aiff
