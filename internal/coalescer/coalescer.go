// Package coalescer decides which track reaches the encoder and when.
// Only the most recent submission matters: a new track unconditionally
// replaces a pending one, and ingestion never blocks on the device.
package coalescer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genricoloni/rdsrelay/internal/domain"
	"github.com/genricoloni/rdsrelay/internal/rtplus"
	"go.uber.org/zap"
)

// displayTextLimit is the encoder's TEXT value bound. The feed already
// truncates; this is a final guard before the wire.
const displayTextLimit = 64

// Options tunes the dispatch worker
type Options struct {
	// IdlePoll bounds the wait for a new submission so shutdown checks
	// run even when the feed is silent
	IdlePoll time.Duration
	// ConnectWait bounds one wait for the encoder link before the
	// freshness of the pending track is re-checked
	ConnectWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.IdlePoll == 0 {
		o.IdlePoll = 5 * time.Second
	}
	if o.ConnectWait == 0 {
		o.ConnectWait = 30 * time.Second
	}
	return o
}

// Coalescer holds at most one pending track and drives a background
// worker that waits for link readiness and dispatches encoder commands.
type Coalescer struct {
	logger   *zap.Logger
	link     domain.DeviceLink
	notifier domain.Notifier
	opts     Options

	mu      sync.Mutex
	pending *domain.TrackInfo
	running bool

	wake   chan struct{}
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a coalescer dispatching through the given link. The
// notifier may be a no-op but must not be nil.
func New(logger *zap.Logger, link domain.DeviceLink, notifier domain.Notifier, opts Options) *Coalescer {
	return &Coalescer{
		logger:   logger,
		link:     link,
		notifier: notifier,
		opts:     opts.withDefaults(),
		wake:     make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// Start launches the dispatch worker. Calling Start on a running
// coalescer is a no-op.
func (c *Coalescer) Start() {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return
	}
	c.running = true
	c.stopCh = make(chan struct{})
	c.mu.Unlock()

	c.wg.Add(1)
	go c.worker()

	c.logger.Info("Track coalescer started")
}

// Stop signals the worker and waits for it. A dispatch in progress
// finishes its TEXT/RT+TAG pair; one not yet begun is abandoned.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	close(c.stopCh)
	c.mu.Unlock()

	c.wg.Wait()
	c.logger.Info("Track coalescer stopped")
}

// Submit atomically replaces the pending track and wakes the worker.
// It always returns immediately and never waits on the device.
func (c *Coalescer) Submit(track domain.TrackInfo) {
	c.mu.Lock()
	if c.pending != nil {
		c.logger.Warn("Discarding superseded track",
			zap.String("artist", c.pending.Artist),
			zap.String("title", c.pending.Title))
	}
	t := track
	c.pending = &t
	c.mu.Unlock()

	select {
	case c.wake <- struct{}{}:
	default:
	}
}

// worker is the single long-running dispatch loop
func (c *Coalescer) worker() {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		default:
		}

		observed := c.current()
		if observed == nil {
			select {
			case <-c.stopCh:
				return
			case <-c.wake:
			case <-time.After(c.opts.IdlePoll):
			}
			continue
		}

		if !c.link.IsConnected() {
			connected, stopped := c.awaitLink()
			if stopped {
				return
			}

			// Never send stale data: if a newer track arrived while we
			// waited, abandon this attempt and start over with it.
			if c.current() != observed {
				c.logger.Debug("Pending track replaced while waiting for encoder link")
				continue
			}
			if !connected {
				c.logger.Warn("Encoder link still down, keeping track pending",
					zap.String("artist", observed.Artist),
					zap.String("title", observed.Title))
				continue
			}
		}

		c.mu.Lock()
		if c.pending != observed {
			// Replaced while we were waiting; restart with the newer one
			c.mu.Unlock()
			continue
		}
		select {
		case <-c.stopCh:
			// Abandon before the first byte rather than risk a half-sent pair
			c.mu.Unlock()
			return
		default:
		}
		// Clear the slot so submissions during dispatch are captured
		// for the next cycle instead of being clobbered.
		c.pending = nil
		c.mu.Unlock()

		c.dispatch(*observed)
	}
}

// connectWaitSlice bounds one individual link wait so a Stop is noticed
// between slices instead of riding out the full ConnectWait window.
const connectWaitSlice = 250 * time.Millisecond

// awaitLink waits up to ConnectWait for the encoder link, in short
// slices with a stop check between them.
func (c *Coalescer) awaitLink() (connected, stopped bool) {
	deadline := time.Now().Add(c.opts.ConnectWait)
	for {
		select {
		case <-c.stopCh:
			return false, true
		default:
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return false, false
		}
		slice := connectWaitSlice
		if remaining < slice {
			slice = remaining
		}
		if c.link.WaitForConnection(slice) {
			return true, false
		}
	}
}

// dispatch sends one track's TEXT and RT+TAG commands. TEXT is never
// rolled back: if the RT+ payload cannot be built, the display text
// still updates and only the positional tag is skipped.
func (c *Coalescer) dispatch(track domain.TrackInfo) {
	text := track.DisplayText()
	if len(text) > displayTextLimit {
		c.logger.Warn("Display text exceeds encoder limit, truncating",
			zap.String("text", text))
		text = text[:displayTextLimit]
	}

	if err := c.link.SendCommand("TEXT", text); err != nil {
		c.handleSendFailure(track, text, err)
		return
	}

	payload, err := rtplus.Encode(text, track.Artist, track.Title, track.DurationSeconds/60)
	if err != nil {
		c.logger.Error("Failed to build RT+ payload, skipping RT+TAG",
			zap.String("text", text),
			zap.Error(err))
	} else if err := c.link.SendCommand("RT+TAG", payload); err != nil {
		c.handleSendFailure(track, text, err)
		return
	}

	c.logger.Info("Track dispatched to encoder",
		zap.String("artist", track.Artist),
		zap.String("title", track.Title))
	c.notify(domain.NotifyEvent{
		Kind:  domain.NotifyTrackSent,
		Track: track,
		Text:  text,
	})
}

// handleSendFailure applies the per-kind retry policy: transport
// failures re-queue the track unless a newer one is already pending;
// protocol rejections presume the payload is the problem and drop it.
func (c *Coalescer) handleSendFailure(track domain.TrackInfo, text string, err error) {
	if errors.Is(err, domain.ErrTransport) {
		c.mu.Lock()
		if c.pending == nil {
			t := track
			c.pending = &t
			c.mu.Unlock()
			c.logger.Warn("Transport failure, track re-queued",
				zap.String("artist", track.Artist),
				zap.String("title", track.Title),
				zap.Error(err))
			select {
			case c.wake <- struct{}{}:
			default:
			}
			return
		}
		c.mu.Unlock()
		c.logger.Warn("Transport failure, newer track already pending, dropping",
			zap.String("artist", track.Artist),
			zap.String("title", track.Title),
			zap.Error(err))
		return
	}

	c.logger.Error("Encoder rejected command, dropping track",
		zap.String("artist", track.Artist),
		zap.String("title", track.Title),
		zap.Error(err))
	c.notify(domain.NotifyEvent{
		Kind:   domain.NotifyRejected,
		Track:  track,
		Text:   text,
		Detail: fmt.Sprintf("encoder rejected command: %v", err),
	})
}

// notify hands the event off in the background. Delivery is
// best-effort and must not stall the dispatch path.
func (c *Coalescer) notify(event domain.NotifyEvent) {
	go c.notifier.Notify(context.Background(), event)
}

// current returns the pending slot snapshot
func (c *Coalescer) current() *domain.TrackInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}
