package domain

import "fmt"

// ConnectionState represents the state of the link to the RDS encoder
type ConnectionState int

const (
	// StateDisconnected indicates there is no usable socket to the encoder
	StateDisconnected ConnectionState = iota
	// StateConnecting indicates a connect attempt is in progress
	StateConnecting
	// StateConnected indicates the link is up and commands may be sent
	StateConnected
)

// String returns a human-readable representation of the ConnectionState
func (s ConnectionState) String() string {
	switch s {
	case StateDisconnected:
		return "Disconnected"
	case StateConnecting:
		return "Connecting"
	case StateConnected:
		return "Connected"
	default:
		return fmt.Sprintf("ConnectionState(%d)", int(s))
	}
}

// TrackInfo describes one "now playing" track as delivered by the feed.
// It is immutable once constructed; the coalescer holds at most one at a time.
type TrackInfo struct {
	// Artist name, already sanitized to printable ASCII
	Artist string
	// Title of the track, already sanitized to printable ASCII
	Title string
	// DurationSeconds is the track length as reported by the feed
	DurationSeconds int
}

// DisplayText returns the "ARTIST - TITLE" string shown on receivers
func (t TrackInfo) DisplayText() string {
	return fmt.Sprintf("%s - %s", t.Artist, t.Title)
}

// Command is one encoder command, constructed per send and never reused
type Command struct {
	// Name of the command, e.g. "TEXT" or "RT+TAG"
	Name string
	// Value is the raw command argument
	Value string
}

// Line renders the command in the encoder's wire format
func (c Command) Line() string {
	return fmt.Sprintf("%s=%s\r\n", c.Name, c.Value)
}

// NotifyKind classifies an outbound notification event
type NotifyKind string

const (
	// NotifyTrackSent is emitted after a track's commands were accepted
	NotifyTrackSent NotifyKind = "track_sent"
	// NotifyRejected is emitted when the encoder rejected a command
	NotifyRejected NotifyKind = "command_rejected"
)

// NotifyEvent is the payload handed to the Notifier collaborator
type NotifyEvent struct {
	Kind  NotifyKind
	Track TrackInfo
	// Text is the display text that was (or would have been) sent
	Text string
	// Detail carries extra context, e.g. the failure description
	Detail string
}
