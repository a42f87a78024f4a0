// Package feed consumes now-playing events from the spin feed and hands
// validated tracks to the processor. Messages are acknowledged by the
// transport as soon as they are read: delivery is at-most-once, and a
// track that fails validation is rejected outright rather than
// partially accepted.
package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/genricoloni/rdsrelay/internal/domain"
	"github.com/genricoloni/rdsrelay/internal/sanitize"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	handshakeTimeout = 10 * time.Second
	initialBackoff   = time.Second
	maxBackoff       = 60 * time.Second
)

// spinMessage is the feed's wire format for one play event
type spinMessage struct {
	Artist   string `json:"artist"`
	Song     string `json:"song"`
	Duration int    `json:"duration"`
}

// WSFeed subscribes to the spin feed over a WebSocket and keeps the
// subscription alive with exponential backoff.
type WSFeed struct {
	logger    *zap.Logger
	processor domain.TrackProcessor
	url       string
	dialer    *websocket.Dialer

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewWSFeed creates a feed subscriber for the given WebSocket URL
func NewWSFeed(logger *zap.Logger, url string, processor domain.TrackProcessor) *WSFeed {
	return &WSFeed{
		logger:    logger,
		processor: processor,
		url:       url,
		dialer:    &websocket.Dialer{HandshakeTimeout: handshakeTimeout},
	}
}

// Start begins consuming events in the background. The passed context
// only bounds startup; the feed manages its own lifetime until Stop.
func (f *WSFeed) Start(_ context.Context) error {
	f.mu.Lock()
	if f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = true

	runCtx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(runCtx)

	f.logger.Info("Spin feed started", zap.String("url", f.url))
	return nil
}

// Stop gracefully stops the feed and waits for the consumer goroutine
func (f *WSFeed) Stop(_ context.Context) error {
	f.mu.Lock()
	if !f.running {
		f.mu.Unlock()
		return nil
	}
	f.running = false
	f.cancel()
	f.mu.Unlock()

	f.wg.Wait()
	f.logger.Info("Spin feed stopped")
	return nil
}

// run keeps the subscription alive until the context is cancelled
func (f *WSFeed) run(ctx context.Context) {
	defer f.wg.Done()

	backoff := initialBackoff
	for {
		conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			f.logger.Error("Failed to connect to spin feed",
				zap.String("url", f.url),
				zap.Duration("retry_in", backoff),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff *= 2; backoff > maxBackoff {
				backoff = maxBackoff
			}
			continue
		}

		f.logger.Info("Connected to spin feed", zap.String("url", f.url))
		backoff = initialBackoff
		f.readLoop(ctx, conn)

		if ctx.Err() != nil {
			return
		}
		f.logger.Warn("Spin feed connection lost, reconnecting")
	}
}

// readLoop consumes messages from one connection until it fails or the
// context is cancelled.
func (f *WSFeed) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// ReadMessage has no context support; close the connection to
	// unblock it on cancellation.
	readerDone := make(chan struct{})
	defer close(readerDone)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-readerDone:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				f.logger.Warn("Spin feed read failed", zap.Error(err))
			}
			return
		}
		f.handleMessage(data)
	}
}

// handleMessage parses one feed payload into a strict TrackInfo and
// submits it. Malformed or incomplete payloads are dropped here and
// never reach the coalescer.
func (f *WSFeed) handleMessage(data []byte) {
	var msg spinMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		f.logger.Error("Failed to parse track payload",
			zap.ByteString("payload", data),
			zap.Error(err))
		return
	}

	track := domain.TrackInfo{
		Artist:          sanitize.Truncate(sanitize.Field(msg.Artist), sanitize.DisplayTextLimit),
		Title:           sanitize.Truncate(sanitize.Field(msg.Song), sanitize.DisplayTextLimit),
		DurationSeconds: msg.Duration,
	}
	if track.Artist == "" || track.Title == "" {
		f.logger.Error("Rejecting track payload with missing fields",
			zap.String("artist", msg.Artist),
			zap.String("song", msg.Song),
			zap.Error(domain.ErrValidation))
		return
	}

	f.logger.Info("Track received",
		zap.String("artist", track.Artist),
		zap.String("title", track.Title),
		zap.Int("duration_seconds", track.DurationSeconds))
	f.processor.Submit(track)
}
