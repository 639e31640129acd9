// SPDX-License-Identifier: EPL-2.0

package output

import (
	"context"
	"sync"
	"time"

	"github.com/ik5/audplay/engine"
)

// pump renders quantum-sized blocks on its own goroutine until stopped.
// With a zero period it renders as fast as write accepts the data.
type pump struct {
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

func quantumPeriod(r engine.Renderer) time.Duration {
	return time.Duration(float64(r.Quantum()) / float64(r.SampleRate()) * float64(time.Second))
}

func (p *pump) start(r engine.Renderer, period time.Duration, write func([]float32) error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	p.err = nil

	go p.run(ctx, r, period, write)
}

func (p *pump) run(ctx context.Context, r engine.Renderer, period time.Duration, write func([]float32) error) {
	defer close(p.done)

	buf := make([]float32, r.Quantum()*engine.Channels)

	var tick <-chan time.Time
	if period > 0 {
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return
		}

		if r.Render(buf) == 0 {
			continue
		}
		if write == nil {
			continue
		}
		if err := write(buf); err != nil {
			p.mu.Lock()
			p.err = err
			p.mu.Unlock()
			return
		}
	}
}

// stop cancels the goroutine and waits for it. It returns the first write
// error, if any.
func (p *pump) stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	<-done

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}
