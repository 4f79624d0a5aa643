package mcp2003a

import (
	"fmt"

	"github.com/arloliu/go-lin/lin"
)

// SendBreak asserts the output line for the configured break duration, then
// holds it released for one bit period as the break delimiter.
//
// Both the break and the wakeup assert with SetHigh.
func (tr *Transceiver) SendBreak() error {
	bitPeriodNs := tr.profile.BitPeriodNs()

	if err := tr.pulse(tr.profile.BreakDurationNs(bitPeriodNs), bitPeriodNs); err != nil {
		return fmt.Errorf("%w: break: %w", ErrOutputLine, err)
	}
	tr.metrics.incBreakCount()

	return nil
}

// SendWakeup asserts the output line for the configured wakeup duration, then
// holds it released for the same duration so slaves can settle.
//
// SendWakeup panics if the wakeup duration exceeds 5 ms: such a profile is a
// configuration error, not a bus condition.
func (tr *Transceiver) SendWakeup() error {
	wakeupNs := tr.profile.WakeupDurationNs()
	mustWakeupDuration(wakeupNs)

	if err := tr.pulse(wakeupNs, wakeupNs); err != nil {
		return fmt.Errorf("%w: wakeup: %w", ErrOutputLine, err)
	}
	tr.metrics.incWakeupCount()
	tr.logger.Debug("mcp2003a: wakeup sent", "durationNs", wakeupNs)

	return nil
}

// pulse asserts the line for holdNs and keeps it released for idleNs.
func (tr *Transceiver) pulse(holdNs, idleNs uint32) error {
	if err := tr.line.SetHigh(); err != nil {
		tr.metrics.incTransportErrCount()
		return err
	}

	tr.delay.DelayNs(holdNs)

	if err := tr.line.SetLow(); err != nil {
		tr.metrics.incTransportErrCount()
		return err
	}

	tr.delay.DelayNs(idleNs)

	return nil
}

func mustWakeupDuration(ns uint32) {
	if ns > lin.MaxWakeupDurationNs {
		panic(fmt.Sprintf("mcp2003a: wakeup duration %dns exceeds the %dns limit", ns, lin.MaxWakeupDurationNs))
	}
}
