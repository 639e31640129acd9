// SPDX-License-Identifier: EPL-2.0

// Package player streams a track through an engine graph.
//
// A Player keeps a small ring of buffers in flight on an engine.PlayerNode.
// Every time the node finishes one buffer the player refills it from the
// track, so only a few seconds of audio are ever decoded ahead of the
// speaker. When the track runs dry and the last buffer has played, the
// player stops itself and reports a completed track.
//
// The transport is a three-state machine:
//
//	Stopped --Play--> Playing --Pause--> Paused --Play--> Playing
//	Playing/Paused --Stop--> Stopped
//
// Seeking while playing restarts playback from the new position; seeking
// while stopped only moves the starting point of the next Play.
//
// # Observers
//
// Transitions are reported to an Observer. Notifications for one player are
// delivered in order on a single goroutine owned by that player, never on
// the audio thread, so observers may call back into the player:
//
//	obs := player.NewChanObserver(16)
//	p := player.New(eng, player.Config{Observer: obs})
//	go func() {
//	    for ev := range obs.C {
//	        fmt.Println(ev.Kind)
//	    }
//	}()
//
// # Effects
//
// FXPlayer inserts a time stretcher, a four band equalizer and an output
// routing stage between the player node and the engine's main mixer.
//
// # Interruptions
//
// An interruption (another application taking the output device, a phone
// call, SIGUSR1 in the example CLI) tears playback down and leaves the player
// paused at the exact frame it reached. Ending the interruption resumes from
// that frame if the player was playing when it began.
package player
