package banksdk

import (
	"context"
	"sync/atomic"
)

type schedulerState int32

const (
	schedulerIdle schedulerState = iota
	schedulerScheduled
	schedulerRefreshing
	schedulerStopped
)

// refreshScheduler is the handle for one run of the background refresh
// loop. A stopped scheduler is terminal; a later Authenticate starts a
// fresh one.
type refreshScheduler struct {
	cancel context.CancelFunc
	done   chan struct{}
	state  atomic.Int32
}

func (s *refreshScheduler) setState(st schedulerState) {
	s.state.Store(int32(st))
}

func (s *refreshScheduler) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// startScheduler launches the background refresh loop unless one is
// already running. Called after every successful Authenticate, including
// the short-circuit path, so repeated logins never stack loops.
func (c *Client) startScheduler() {
	c.schedMu.Lock()
	defer c.schedMu.Unlock()

	if c.sched != nil && !c.sched.stopped() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &refreshScheduler{cancel: cancel, done: make(chan struct{})}
	c.sched = s
	go c.runScheduler(ctx, s)

	c.log.Debug("refresh scheduler started")
}

// stopScheduler cancels the loop and waits for it to wind down.
func (c *Client) stopScheduler() {
	c.schedMu.Lock()
	s := c.sched
	c.schedMu.Unlock()

	if s == nil {
		return
	}
	s.cancel()
	<-s.done
}

// runScheduler sleeps until RefreshThreshold before each expiry, then
// rotates. A failed rotation clears the credential and notifies the
// reauth callback (inside rotate), and the loop terminates; recovery
// requires a fresh Authenticate.
func (c *Client) runScheduler(ctx context.Context, s *refreshScheduler) {
	defer close(s.done)
	defer s.setState(schedulerStopped)

	for {
		exp, ok := c.store.expiry()
		if !ok {
			c.log.Debug("refresh scheduler exiting, no credential")
			return
		}

		wake := exp.Add(-c.cfg.RefreshThreshold)
		if delay := wake.Sub(c.clock.Now()); delay > 0 {
			s.setState(schedulerScheduled)
			c.log.Debug("proactive refresh scheduled", "in", delay)

			select {
			case <-ctx.Done():
				return
			case <-c.clock.After(delay):
			}
		}

		_, version, ok := c.store.get()
		if !ok {
			return
		}

		s.setState(schedulerRefreshing)
		if err := c.rotate(ctx, version, ReauthAutomaticRefreshFailed); err != nil {
			c.log.Error("proactive refresh failed", "error", err)
			return
		}
	}
}
