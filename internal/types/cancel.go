package types

import "sync"

// CancelSignal is a single-shot cancellation flag. Cancel may be called any
// number of times from any goroutine; only the first call has an effect.
type CancelSignal struct {
	once sync.Once
	done chan struct{}
}

// NewCancelSignal returns an untriggered signal
func NewCancelSignal() *CancelSignal {
	return &CancelSignal{done: make(chan struct{})}
}

// Cancel triggers the signal
func (c *CancelSignal) Cancel() {
	c.once.Do(func() { close(c.done) })
}

// Done is closed once the signal is triggered
func (c *CancelSignal) Done() <-chan struct{} {
	return c.done
}

// Canceled reports whether the signal was triggered
func (c *CancelSignal) Canceled() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
