package core

import (
	"context"
	"fmt"
	"net/netip"
	"time"
)

// Monitor probes the destination once per interval until ctx is cancelled, using interval
// as the timeout of every attempt. Cancellation is only observed between attempts, an
// attempt in flight always runs to completion. The first probe error stops the loop and
// is returned.
func (p *Prober) Monitor(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", interval)
	}

	p.logger.Infof("Monitoring %s every %s", p.dst, interval)

	for ctx.Err() == nil {
		start := time.Now()
		if err := p.Probe(interval); err != nil {
			p.logger.Infof("Monitor stopped: %s", err)
			return err
		}

		if remaining := interval - time.Since(start); remaining > 0 {
			p.logger.Debugf("Waiting %s before the next probe", remaining)
			timer := time.NewTimer(remaining)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}

	p.logger.Info("Monitor cancelled")
	return nil
}

// Monitor opens a Prober for dst and runs its monitor loop until ctx is cancelled or a probe fails.
func Monitor(ctx context.Context, dst netip.Addr, interval time.Duration, settings *Settings) error {
	p, err := NewProber(dst, settings)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.Monitor(ctx, interval)
}

// Ping opens a Prober for dst and makes a single probing attempt.
func Ping(dst netip.Addr, timeout time.Duration, settings *Settings) error {
	p, err := NewProber(dst, settings)
	if err != nil {
		return err
	}
	defer p.Close()

	return p.Probe(timeout)
}
