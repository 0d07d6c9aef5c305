// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package xo

import (
	"sync/atomic"
	"time"
)

// Type Ctl carries the cooperative cancellation and resource limits
// shared by the orchestrator, the searcher and the simplifiers.  The
// interrupt flag may be set from any goroutine; everything else is
// owned by the solving goroutine and polled at token and iteration
// boundaries.
type Ctl struct {
	interrupt atomic.Bool

	start    time.Time
	MaxTime  time.Duration
	MaxConfl int64
}

func NewCtl() *Ctl {
	return &Ctl{
		start:    time.Now(),
		MaxTime:  time.Duration(1<<62 - 1),
		MaxConfl: 1<<63 - 1}
}

// Interrupt requests a prompt, graceful stop of the current solve.
func (c *Ctl) Interrupt() {
	c.interrupt.Store(true)
}

// ClearInterrupt resets the flag for the next solve.
func (c *Ctl) ClearInterrupt() {
	c.interrupt.Store(false)
}

// Interrupted polls the interrupt flag.
func (c *Ctl) Interrupted() bool {
	return c.interrupt.Load()
}

// ResetClock restarts the wall clock used for MaxTime.
func (c *Ctl) ResetClock() {
	c.start = time.Now()
}

// Expired says whether a resource limit was hit given the cumulative
// conflict count.
func (c *Ctl) Expired(sumConfl int64) bool {
	if c.Interrupted() {
		return true
	}
	if sumConfl >= c.MaxConfl {
		return true
	}
	return time.Since(c.start) > c.MaxTime
}
