// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"os"
	"sync"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/ik5/audplay/engine"
	"github.com/ik5/audplay/utils"
)

const (
	fileBitDepth = 16
	wavFormatPCM = 1
)

// File bounces the engine output into a 16-bit stereo WAV file. Offline
// files render as fast as the disk allows, including any paused stretch as
// silence; real-time files keep wall clock pace.
type File struct {
	path     string
	realtime bool

	mu     sync.Mutex
	f      *os.File
	enc    *wav.Encoder
	ib     *goaudio.IntBuffer
	frames int64
	closed bool

	p pump
}

// NewFile creates or truncates path.
func NewFile(path string, realtime bool) (*File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	return &File{path: path, realtime: realtime, f: f}, nil
}

func (o *File) Start(r engine.Renderer) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return ErrClosed
	}
	if o.enc == nil {
		o.enc = wav.NewEncoder(o.f, r.SampleRate(), fileBitDepth, engine.Channels, wavFormatPCM)
		o.ib = &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: engine.Channels, SampleRate: r.SampleRate()},
			SourceBitDepth: fileBitDepth,
		}
	}
	o.mu.Unlock()

	period := quantumPeriod(r)
	if !o.realtime {
		period = 0
	}
	o.p.start(r, period, o.write)

	return nil
}

func (o *File) write(buf []float32) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if cap(o.ib.Data) < len(buf) {
		o.ib.Data = make([]int, len(buf))
	}
	o.ib.Data = o.ib.Data[:len(buf)]
	utils.FloatsToInts(o.ib.Data, buf)

	if err := o.enc.Write(o.ib); err != nil {
		return fmt.Errorf("write %s: %w", o.path, err)
	}
	o.frames += int64(len(buf) / engine.Channels)

	return nil
}

// Frames is the number of frames written so far.
func (o *File) Frames() int64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.frames
}

func (o *File) Stop() error { return o.p.stop() }

// Close finishes the WAV header and closes the file.
func (o *File) Close() error {
	stopErr := o.p.stop()

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return stopErr
	}
	o.closed = true

	if o.enc != nil {
		if err := o.enc.Close(); err != nil {
			o.f.Close()
			return fmt.Errorf("finish %s: %w", o.path, err)
		}
	}
	if err := o.f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", o.path, err)
	}

	return stopErr
}
