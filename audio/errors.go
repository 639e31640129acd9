// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrNotSeekable is returned by FrameSeeker implementations whose
	// underlying reader cannot be repositioned.
	ErrNotSeekable = errors.New("source is not seekable")

	// ErrSeekOutOfRange is returned when a seek targets a negative frame.
	ErrSeekOutOfRange = errors.New("seek position out of range")
)
