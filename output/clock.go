// SPDX-License-Identifier: EPL-2.0

package output

import "github.com/ik5/audplay/engine"

// Clock renders in real time without a device. It suits headless servers
// and smoke tests where only the timing matters.
type Clock struct {
	p pump
}

func NewClock() *Clock { return &Clock{} }

func (c *Clock) Start(r engine.Renderer) error {
	c.p.start(r, quantumPeriod(r), nil)
	return nil
}

func (c *Clock) Stop() error  { return c.p.stop() }
func (c *Clock) Close() error { return c.p.stop() }
