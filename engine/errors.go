// SPDX-License-Identifier: EPL-2.0

package engine

import "errors"

var (
	// ErrFormatMismatch indicates a buffer does not match the node's format.
	ErrFormatMismatch = errors.New("buffer format does not match node format")

	// ErrNoFormat indicates a player node was used before SetFormat.
	ErrNoFormat = errors.New("player node has no format")

	// ErrEngineStart wraps the sink error when the engine fails to start.
	ErrEngineStart = errors.New("audio engine failed to start")

	// ErrNotAttached indicates a node was connected without being attached.
	ErrNotAttached = errors.New("node is not attached to the engine")

	// ErrClosed is returned by a closed engine.
	ErrClosed = errors.New("audio engine is closed")
)
