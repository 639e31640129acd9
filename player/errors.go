// SPDX-License-Identifier: EPL-2.0

package player

import "errors"

var (
	// ErrNoTrack indicates an operation that needs a track was called before
	// one was set.
	ErrNoTrack = errors.New("player has no track")

	// ErrClosed is returned by a closed player.
	ErrClosed = errors.New("player is closed")

	// ErrBandIndex indicates an equalizer band index out of range.
	ErrBandIndex = errors.New("equalizer band index out of range")
)
