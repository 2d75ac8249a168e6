// Package notify carries transient user-facing notifications from the
// application services to the one view that displays them.
package notify

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Level is the severity of a notification
type Level string

const (
	LevelSuccess Level = "success"
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// IsValid reports whether l is a known level
func (l Level) IsValid() bool {
	switch l {
	case LevelSuccess, LevelInfo, LevelWarning, LevelError:
		return true
	}
	return false
}

// Notification is one transient message
type Notification struct {
	Level     Level
	Message   string
	CreatedAt time.Time
}

// DefaultBuffer is the buffer size used when none is configured
const DefaultBuffer = 16

var (
	// ErrAlreadySubscribed is returned by a second Subscribe call
	ErrAlreadySubscribed = errors.New("notify: channel already has a subscriber")
	// ErrClosed is returned by Subscribe after Close
	ErrClosed = errors.New("notify: notifier closed")
)

// Notifier is a single-subscriber notification channel.
// Publish never blocks: when the buffer is full the oldest notification is dropped.
type Notifier struct {
	mu         sync.Mutex
	ch         chan Notification
	subscribed bool
	closed     bool
	dropped    uint64
	logger     *zap.Logger
}

// New creates a notifier buffering up to size notifications
func New(size int, logger *zap.Logger) *Notifier {
	if size <= 0 {
		size = DefaultBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		ch:     make(chan Notification, size),
		logger: logger.Named("notify"),
	}
}

// Subscribe returns the receive side of the channel. Only one subscriber is allowed.
func (n *Notifier) Subscribe() (<-chan Notification, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil, ErrClosed
	}
	if n.subscribed {
		return nil, ErrAlreadySubscribed
	}
	n.subscribed = true
	return n.ch, nil
}

// Publish enqueues a notification. Calls after Close are ignored.
func (n *Notifier) Publish(level Level, message string) {
	if !level.IsValid() {
		level = LevelInfo
	}
	note := Notification{Level: level, Message: message, CreatedAt: time.Now()}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for {
		select {
		case n.ch <- note:
			return
		default:
		}
		// full: drop the oldest and try again
		select {
		case old := <-n.ch:
			n.dropped++
			n.logger.Debug("Notification dropped", zap.String("level", string(old.Level)), zap.String("message", old.Message))
		default:
		}
	}
}

// Success publishes a success notification
func (n *Notifier) Success(message string) { n.Publish(LevelSuccess, message) }

// Info publishes an info notification
func (n *Notifier) Info(message string) { n.Publish(LevelInfo, message) }

// Warning publishes a warning notification
func (n *Notifier) Warning(message string) { n.Publish(LevelWarning, message) }

// Error publishes an error notification
func (n *Notifier) Error(message string) { n.Publish(LevelError, message) }

// Dropped returns how many notifications were discarded because the buffer was full
func (n *Notifier) Dropped() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.dropped
}

// Close closes the channel. Buffered notifications can still be received.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
}
