package domain

import (
	"context"
	"time"
)

// DeviceLink owns the single TCP connection to the RDS encoder.
// Implementations keep the link alive in the background and serialize
// command/response exchanges so only one is in flight at a time.
//
//go:generate mockgen -destination=mocks/domain_mocks.go -package=mocks github.com/genricoloni/rdsrelay/internal/domain DeviceLink,TrackProcessor,Notifier
type DeviceLink interface {
	// Start launches the background reconnect loop. Calling Start on a
	// running link is a no-op; there is never more than one loop.
	Start()

	// Stop signals the loop to exit, aborts in-flight waits and reads,
	// and closes the socket. It blocks until the loop has terminated.
	Stop()

	// IsConnected reports whether the link is currently up (non-blocking)
	IsConnected() bool

	// WaitForConnection blocks the caller until the link is up or the
	// timeout elapses. It returns false on timeout with no side effects.
	WaitForConnection(timeout time.Duration) bool

	// SendCommand performs one command/response exchange with the encoder.
	// A returned error unwraps to ErrTransport or ErrRejected; either way
	// the connection has already been torn down for rebuilding.
	SendCommand(name, value string) error
}

// TrackProcessor accepts tracks from the feed and ensures the encoder
// eventually reflects the most recent one. Submit never blocks on I/O.
type TrackProcessor interface {
	// Start launches the background dispatch worker
	Start()

	// Stop signals the worker to exit and waits for it
	Stop()

	// Submit replaces any pending track with this one and wakes the
	// worker. Consumption is at-most-once: once Submit returns there is
	// no redelivery path.
	Submit(track TrackInfo)
}

// Feed is the upstream collaborator delivering now-playing events.
// Implementations parse and sanitize messages at the boundary and hand
// strict TrackInfo records to a TrackProcessor.
type Feed interface {
	// Start begins consuming events in the background
	Start(ctx context.Context) error

	// Stop gracefully stops the feed
	Stop(ctx context.Context) error
}

// Notifier reports dispatch outcomes to an external channel (webhook).
// Delivery is best-effort: the dispatch path hands events off in the
// background, and implementations swallow their own failures.
type Notifier interface {
	Notify(ctx context.Context, event NotifyEvent)
}
