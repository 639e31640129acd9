// SPDX-License-Identifier: EPL-2.0

package track

import "errors"

var (
	// ErrUnsupportedFormat indicates no decoder is registered for the file extension.
	ErrUnsupportedFormat = errors.New("unsupported audio format")

	// ErrInvalidFormat indicates the decoder rejected the file contents.
	ErrInvalidFormat = errors.New("invalid audio data")

	// ErrEmptyTrack indicates the file decoded to zero frames.
	ErrEmptyTrack = errors.New("track has no audio frames")

	// ErrClosed is returned by operations on a closed track.
	ErrClosed = errors.New("track is closed")
)
