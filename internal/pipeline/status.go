package pipeline

import (
	"sync"
	"time"
)

// Status is the terminal signal of one save attempt.
type Status int

const (
	StatusNone      Status = iota // no save in flight / badge cleared
	StatusSaved                   // bookmark committed
	StatusDuplicate               // same (url, category) already stored, no-op
	StatusError                   // read/write failure, nothing committed
)

func (s Status) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusDuplicate:
		return "duplicate"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// Badge holds the transient save status. Every Set schedules a reset back
// to StatusNone, so the indicator never outlives its delay.
type Badge struct {
	mu         sync.Mutex
	status     Status
	clearDelay time.Duration
	timer      *time.Timer
	onChange   func(Status)
}

// NewBadge creates a Badge that clears itself after clearDelay. onChange
// is invoked on every transition, including the clear; it may be nil.
func NewBadge(clearDelay time.Duration, onChange func(Status)) *Badge {
	return &Badge{clearDelay: clearDelay, onChange: onChange}
}

// Set replaces the current status and restarts the clear countdown.
func (b *Badge) Set(status Status) {
	b.mu.Lock()
	b.status = status
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if status != StatusNone {
		b.timer = time.AfterFunc(b.clearDelay, b.clear)
	}
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange(status)
	}
}

// Current returns the status currently displayed.
func (b *Badge) Current() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.status
}

func (b *Badge) clear() {
	b.mu.Lock()
	b.status = StatusNone
	b.timer = nil
	onChange := b.onChange
	b.mu.Unlock()

	if onChange != nil {
		onChange(StatusNone)
	}
}
