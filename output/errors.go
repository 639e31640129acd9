// SPDX-License-Identifier: EPL-2.0

package output

import "errors"

var (
	// ErrClosed is returned when starting a closed sink.
	ErrClosed = errors.New("output is closed")

	// ErrRateMismatch is returned when a process wide device was already
	// opened at another sample rate.
	ErrRateMismatch = errors.New("audio device already opened at another sample rate")
)
