// SPDX-License-Identifier: EPL-2.0

package track

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/ik5/audplay/audio"
)

const scanFrames = 8192

// Metadata holds the tags found in the file. Title falls back to the file
// name when the file has none.
type Metadata struct {
	Title       string
	Artist      string
	Album       string
	Genre       string
	Year        int
	TrackNumber int
}

type Track struct {
	path    string
	format  string
	decoder audio.Decoder

	file *os.File
	src  audio.Source

	sampleRate int
	channels   int
	length     int64
	position   int64

	meta    Metadata
	scratch []float32
}

// Open decodes the file at path with the decoder registered for its
// extension. Errors leave nothing open.
func Open(path string, reg *audio.Registry) (*Track, error) {
	dec, format, ok := reg.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	t := &Track{
		path:    path,
		format:  format,
		decoder: dec,
	}

	if err := t.open(true); err != nil {
		return nil, err
	}

	if err := t.measure(); err != nil {
		t.Close()
		return nil, err
	}

	return t, nil
}

// open (re)opens the file and decodes it from the start. Tags are only read
// the first time.
func (t *Track) open(readTags bool) error {
	f, err := os.Open(t.path)
	if err != nil {
		return fmt.Errorf("open track: %w", err)
	}

	if readTags {
		t.meta = readMetadata(f, t.path)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			f.Close()
			return fmt.Errorf("rewind track: %w", err)
		}
	}

	src, err := t.decoder.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrInvalidFormat, t.format, err)
	}
	if src.SampleRate() <= 0 || src.Channels() <= 0 {
		f.Close()
		return fmt.Errorf("%w: %s: %d Hz, %d channels", ErrInvalidFormat, t.format,
			src.SampleRate(), src.Channels())
	}

	t.file = f
	t.src = src
	t.sampleRate = src.SampleRate()
	t.channels = src.Channels()
	t.position = 0

	return nil
}

func (t *Track) closeSource() {
	if t.src != nil {
		t.src.Close()
		t.src = nil
	}
	if t.file != nil {
		t.file.Close()
		t.file = nil
	}
}

// measure finds the length in frames, scanning the stream when the decoder
// cannot tell.
func (t *Track) measure() error {
	if fc, ok := t.src.(audio.FrameCounter); ok {
		if n := fc.Frames(); n >= 0 {
			t.length = n
			if n == 0 {
				return ErrEmptyTrack
			}
			return nil
		}
	}

	t.length = -1
	n, err := t.skip(-1)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmptyTrack
	}

	t.closeSource()
	if err := t.open(false); err != nil {
		return err
	}
	t.length = n

	return nil
}

// skip decodes and discards up to frames frames (all when negative) and
// returns how many were consumed.
func (t *Track) skip(frames int64) (int64, error) {
	if t.scratch == nil {
		t.scratch = make([]float32, scanFrames*t.channels)
	}

	var done int64
	for frames < 0 || done < frames {
		buf := t.scratch
		if frames >= 0 {
			buf = buf[:min(int64(len(buf)), (frames-done)*int64(t.channels))]
		}

		n, err := t.src.ReadSamples(buf)
		done += int64(n / t.channels)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return done, fmt.Errorf("read track: %w", err)
		}
	}
	t.position += done

	return done, nil
}

func readMetadata(rs io.ReadSeeker, path string) Metadata {
	var meta Metadata

	if m, err := tag.ReadFrom(rs); err == nil {
		meta.Title = m.Title()
		meta.Artist = m.Artist()
		meta.Album = m.Album()
		meta.Genre = m.Genre()
		meta.Year = m.Year()
		meta.TrackNumber, _ = m.Track()
	}

	if meta.Title == "" {
		meta.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return meta
}

func (t *Track) Path() string       { return t.path }
func (t *Track) Format() string     { return t.format }
func (t *Track) SampleRate() int    { return t.sampleRate }
func (t *Track) Channels() int      { return t.channels }
func (t *Track) Metadata() Metadata { return t.meta }

// Length is the total number of frames.
func (t *Track) Length() int64 { return t.length }

// Position is the read cursor in frames.
func (t *Track) Position() int64 { return t.position }

func (t *Track) Duration() time.Duration { return t.DurationOf(t.length) }

// DurationOf converts a frame count at the track's rate to a duration.
func (t *Track) DurationOf(frames int64) time.Duration {
	return time.Duration(float64(frames) / float64(t.sampleRate) * float64(time.Second))
}

// FrameAt converts d to a frame offset, rounded to the nearest frame.
func (t *Track) FrameAt(d time.Duration) int64 {
	return int64(d.Seconds()*float64(t.sampleRate) + 0.5)
}

// Read fills dst with whole interleaved frames from the cursor and returns
// the number of frames read. It returns io.EOF once the cursor is at the end.
func (t *Track) Read(dst []float32) (int, error) {
	if t.src == nil {
		return 0, ErrClosed
	}

	remaining := t.length - t.position
	if remaining <= 0 {
		return 0, io.EOF
	}

	want := min(int64(len(dst)/t.channels), remaining) * int64(t.channels)
	dst = dst[:want]

	filled := 0
	for filled < len(dst) {
		n, err := t.src.ReadSamples(dst[filled:])
		filled += n
		if errors.Is(err, io.EOF) {
			// Decoders may report more frames than they deliver.
			if filled < len(dst) {
				t.length = t.position + int64(filled/t.channels)
			}
			break
		}
		if err != nil {
			frames := filled / t.channels
			t.position += int64(frames)
			return frames, fmt.Errorf("read track: %w", err)
		}
		if n == 0 {
			break
		}
	}

	frames := filled / t.channels
	t.position += int64(frames)
	if frames == 0 {
		return 0, io.EOF
	}

	return frames, nil
}

// Seek moves the read cursor to frame, clamped to [0, Length].
func (t *Track) Seek(frame int64) error {
	if t.src == nil {
		return ErrClosed
	}

	frame = max(0, min(frame, t.length))
	if frame == t.position {
		return nil
	}

	if fs, ok := t.src.(audio.FrameSeeker); ok {
		err := fs.SeekFrame(frame)
		if err == nil {
			t.position = frame
			return nil
		}
		if !errors.Is(err, audio.ErrNotSeekable) {
			return fmt.Errorf("seek track: %w", err)
		}
	}

	if frame < t.position {
		t.closeSource()
		if err := t.open(false); err != nil {
			return err
		}
	}

	if _, err := t.skip(frame - t.position); err != nil {
		return err
	}

	return nil
}

// Close releases the decoder and the file. It is safe to call twice.
func (t *Track) Close() error {
	t.closeSource()
	return nil
}
