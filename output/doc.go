// SPDX-License-Identifier: EPL-2.0

// Package output provides engine.Sink implementations.
//
// A sink owns the audio thread: it calls engine.Renderer.Render from its own
// goroutine and delivers the samples.
//
//   - Manual renders only when the caller asks, which makes tests exact.
//   - Clock renders one quantum per quantum period and discards the audio.
//   - File bounces the output into a 16-bit WAV file.
//   - Oto and Speaker play through the sound card. They are left out of
//     builds tagged headless.
//
// The engine starts and stops the sink itself:
//
//	sink := output.NewClock()
//	eng := engine.New(sink, engine.DefaultConfig())
package output
