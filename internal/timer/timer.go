package timer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Resolution is the frequency at which time is updated. It's precise enough for setting I/O
// deadlines, while saving a syscall on every read and accept.
const Resolution = 100 * time.Millisecond

var (
	millis = new(atomic.Int64)
	once   sync.Once
)

func start() {
	millis.Store(time.Now().UnixMilli())

	go func() {
		for {
			time.Sleep(Resolution)
			millis.Store(time.Now().UnixMilli())
		}
	}()
}

// Now returns the current time lagging behind the real one by at most Resolution.
func Now() time.Time {
	once.Do(start)
	m := millis.Load()
	return time.Unix(m/1000, (m%1000)*1e6)
}

// Deadline returns a point in time roughly between the real now+d and now+d+Resolution.
// Compensating the lag means a deadline is practically never earlier than requested.
func Deadline(d time.Duration) time.Time {
	return Now().Add(d + Resolution)
}
