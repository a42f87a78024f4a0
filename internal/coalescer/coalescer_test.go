package coalescer

import (
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/genricoloni/rdsrelay/internal/domain"
	"github.com/genricoloni/rdsrelay/internal/domain/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func fastOptions() Options {
	return Options{
		IdlePoll:    10 * time.Millisecond,
		ConnectWait: 50 * time.Millisecond,
	}
}

// alwaysConnected wires the link mock as permanently up
func alwaysConnected(link *mocks.MockDeviceLink) {
	link.EXPECT().IsConnected().Return(true).AnyTimes()
	link.EXPECT().WaitForConnection(gomock.Any()).Return(true).AnyTimes()
}

// waitDone fails the test if done is not closed promptly
func waitDone(t *testing.T, done chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not complete in time")
	}
}

// TestDispatchSequence verifies a single track produces TEXT followed by
// RT+TAG built against the same display text.
func TestDispatchSequence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	alwaysConnected(link)

	done := make(chan struct{})
	gomock.InOrder(
		link.EXPECT().SendCommand("TEXT", "QUEEN - RADIO GAGA").Return(nil),
		link.EXPECT().SendCommand("RT+TAG", "04,0,5,01,8,10,1,3").Return(nil),
	)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(_ any, event domain.NotifyEvent) {
			if event.Kind != domain.NotifyTrackSent {
				t.Errorf("expected track_sent event, got %s", event.Kind)
			}
			if event.Text != "QUEEN - RADIO GAGA" {
				t.Errorf("unexpected event text %q", event.Text)
			}
			close(done)
		})

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: "QUEEN", Title: "RADIO GAGA", DurationSeconds: 180})
	waitDone(t, done)
}

// TestCoalescing_LatestWins submits three tracks while the link is down
// and verifies only the newest ever reaches the encoder.
func TestCoalescing_LatestWins(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	connected := make(chan struct{})
	link.EXPECT().IsConnected().DoAndReturn(func() bool {
		select {
		case <-connected:
			return true
		default:
			return false
		}
	}).AnyTimes()
	link.EXPECT().WaitForConnection(gomock.Any()).DoAndReturn(func(time.Duration) bool {
		<-connected
		return true
	}).AnyTimes()

	done := make(chan struct{})
	link.EXPECT().SendCommand("TEXT", "ARTIST3 - TITLE3").Return(nil)
	link.EXPECT().SendCommand("RT+TAG", gomock.Any()).Return(nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(any, domain.NotifyEvent) { close(done) })

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: "ARTIST1", Title: "TITLE1"})
	c.Submit(domain.TrackInfo{Artist: "ARTIST2", Title: "TITLE2"})
	c.Submit(domain.TrackInfo{Artist: "ARTIST3", Title: "TITLE3"})

	// Bring the link up only after all three submissions coalesced
	close(connected)
	waitDone(t, done)
}

// TestTransportFailure_Requeues verifies a transport failure re-queues
// the same track and the next cycle completes it.
func TestTransportFailure_Requeues(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	alwaysConnected(link)

	done := make(chan struct{})
	transportErr := domain.NewCommandError("TEXT", domain.ErrTransport,
		&timeoutError{})
	gomock.InOrder(
		link.EXPECT().SendCommand("TEXT", "QUEEN - RADIO GAGA").Return(transportErr),
		link.EXPECT().SendCommand("TEXT", "QUEEN - RADIO GAGA").Return(nil),
		link.EXPECT().SendCommand("RT+TAG", gomock.Any()).Return(nil),
	)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(any, domain.NotifyEvent) { close(done) })

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: "QUEEN", Title: "RADIO GAGA"})
	waitDone(t, done)
}

// TestRejection_Drops verifies a protocol rejection is never retried
func TestRejection_Drops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	alwaysConnected(link)

	done := make(chan struct{})
	rejection := domain.NewCommandError("TEXT", domain.ErrRejected, nil)
	link.EXPECT().SendCommand("TEXT", "QUEEN - RADIO GAGA").Return(rejection)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(_ any, event domain.NotifyEvent) {
			if event.Kind != domain.NotifyRejected {
				t.Errorf("expected command_rejected event, got %s", event.Kind)
			}
			close(done)
		})

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: "QUEEN", Title: "RADIO GAGA"})
	waitDone(t, done)

	// Give a retry a chance to surface; gomock would fail on a second
	// SendCommand expectation.
	time.Sleep(50 * time.Millisecond)
	if c.current() != nil {
		t.Error("rejected track must not be re-queued")
	}
}

// TestEncodeFailure_SkipsTag verifies that when the RT+ payload cannot
// be built, TEXT is still sent and nothing is retried.
func TestEncodeFailure_SkipsTag(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	alwaysConnected(link)

	// An artist longer than the display limit cannot appear in the
	// truncated text, so neither field matches and encoding fails.
	artist := strings.Repeat("A", 70)
	truncated := strings.Repeat("A", 64)

	done := make(chan struct{})
	link.EXPECT().SendCommand("TEXT", truncated).Return(nil)
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(_ any, event domain.NotifyEvent) {
			if event.Kind != domain.NotifyTrackSent {
				t.Errorf("expected track_sent event, got %s", event.Kind)
			}
			close(done)
		})

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: artist, Title: "X"})
	waitDone(t, done)
}

// TestConnectWaitTimeout_KeepsPending verifies that a connection-wait
// timeout retries on the next iteration instead of dropping the track.
func TestConnectWaitTimeout_KeepsPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)

	var waits atomic.Int32
	link.EXPECT().IsConnected().Return(false).AnyTimes()
	link.EXPECT().WaitForConnection(gomock.Any()).DoAndReturn(func(time.Duration) bool {
		waits.Add(1)
		time.Sleep(5 * time.Millisecond)
		return false
	}).AnyTimes()

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()

	c.Submit(domain.TrackInfo{Artist: "QUEEN", Title: "RADIO GAGA"})

	deadline := time.Now().Add(2 * time.Second)
	for waits.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if waits.Load() < 3 {
		t.Fatal("worker stopped retrying after connection-wait timeout")
	}
	if c.current() == nil {
		t.Error("track must stay pending across wait timeouts")
	}
}

// TestSubmit_NeverBlocks verifies Submit returns immediately even when
// the worker is stuck waiting for the link, and that Stop still aborts
// the worker promptly afterwards.
func TestSubmit_NeverBlocks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	link.EXPECT().IsConnected().Return(false).AnyTimes()
	link.EXPECT().WaitForConnection(gomock.Any()).DoAndReturn(func(d time.Duration) bool {
		time.Sleep(d)
		return false
	}).AnyTimes()

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()

	start := time.Now()
	for i := 0; i < 100; i++ {
		c.Submit(domain.TrackInfo{Artist: "A", Title: "B"})
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Submit blocked for %v", elapsed)
	}

	start = time.Now()
	c.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop blocked for %v with the link down", elapsed)
	}
}

// TestStop_AbortsConnectionWait verifies Stop does not ride out a long
// connection wait while the encoder is unreachable.
func TestStop_AbortsConnectionWait(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	link.EXPECT().IsConnected().Return(false).AnyTimes()
	link.EXPECT().WaitForConnection(gomock.Any()).DoAndReturn(func(d time.Duration) bool {
		time.Sleep(d)
		return false
	}).AnyTimes()

	c := New(zap.NewNop(), link, notifier, Options{
		IdlePoll:    10 * time.Millisecond,
		ConnectWait: 2 * time.Second,
	})
	c.Start()

	c.Submit(domain.TrackInfo{Artist: "QUEEN", Title: "RADIO GAGA"})
	// Let the worker enter the connection wait before stopping
	time.Sleep(50 * time.Millisecond)

	start := time.Now()
	c.Stop()
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Stop took %v waiting out the connection wait", elapsed)
	}
}

// TestSlowNotifierDoesNotStallDispatch verifies that a notifier stuck
// in delivery never holds up the next track.
func TestSlowNotifierDoesNotStallDispatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	link := mocks.NewMockDeviceLink(ctrl)
	notifier := mocks.NewMockNotifier(ctrl)
	alwaysConnected(link)

	release := make(chan struct{})
	notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Do(
		func(any, domain.NotifyEvent) { <-release }).AnyTimes()

	firstDone := make(chan struct{})
	secondDone := make(chan struct{})
	gomock.InOrder(
		link.EXPECT().SendCommand("TEXT", "A - B").Return(nil),
		link.EXPECT().SendCommand("RT+TAG", gomock.Any()).DoAndReturn(func(string, string) error {
			close(firstDone)
			return nil
		}),
		link.EXPECT().SendCommand("TEXT", "C - D").Return(nil),
		link.EXPECT().SendCommand("RT+TAG", gomock.Any()).DoAndReturn(func(string, string) error {
			close(secondDone)
			return nil
		}),
	)

	c := New(zap.NewNop(), link, notifier, fastOptions())
	c.Start()
	defer c.Stop()
	defer close(release)

	c.Submit(domain.TrackInfo{Artist: "A", Title: "B"})
	waitDone(t, firstDone)

	c.Submit(domain.TrackInfo{Artist: "C", Title: "D"})
	waitDone(t, secondDone)
}

// timeoutError is a minimal net.Error-ish cause for transport failures
type timeoutError struct{}

func (*timeoutError) Error() string { return "i/o timeout" }
