package mcp2003a

import (
	"time"

	"github.com/arloliu/go-lin/internal/pool"
)

// DefaultSpinThreshold is the tail of a PrecisionDelay that is busy-waited.
// OS timers commonly overshoot by tens of microseconds, which is more than
// one bit period at 20 kbps.
const DefaultSpinThreshold = 200 * time.Microsecond

// SleepDelay is a Delayer backed by pooled runtime timers. It never returns
// early but may overshoot by the scheduler latency of the host.
type SleepDelay struct{}

var _ Delayer = SleepDelay{}

// DelayNs sleeps for ns nanoseconds.
func (SleepDelay) DelayNs(ns uint32) {
	pool.Sleep(time.Duration(ns))
}

// PrecisionDelay sleeps on a timer for all but the last SpinThreshold of the
// duration and busy-waits the rest against the monotonic clock.
type PrecisionDelay struct {
	// SpinThreshold is the busy-waited tail. Zero means DefaultSpinThreshold.
	SpinThreshold time.Duration
}

var _ Delayer = PrecisionDelay{}

// DelayNs waits until ns nanoseconds have elapsed since the call.
func (d PrecisionDelay) DelayNs(ns uint32) {
	if ns == 0 {
		return
	}

	start := time.Now()
	total := time.Duration(ns)

	spin := d.SpinThreshold
	if spin <= 0 {
		spin = DefaultSpinThreshold
	}

	if total > spin {
		pool.Sleep(total - spin)
	}

	for time.Since(start) < total {
	}
}
