package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mikaelmello/pingmon/core"
)

// Runner is the struct that is responsible for running the monitor
type Runner struct {
	prober           *core.Prober
	printer          *printer
	interval         time.Duration
	tolerateTimeouts bool

	sigch  chan os.Signal
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
}

// newRunner creates a runner with the initialized values
func newRunner(addr string, settings *core.Settings, interval time.Duration, tolerateTimeouts bool,
	out io.Writer) (*Runner, error) {
	dst, err := core.ParseIPv4(addr)
	if err != nil {
		return nil, err
	}

	prober, err := newProber(dst, settings)
	if err != nil {
		return nil, err
	}

	pr := newPrinter(out)
	prober.AddOnProbe(pr.printOnProbe)

	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)

	return &Runner{
		prober:           prober,
		printer:          pr,
		interval:         interval,
		tolerateTimeouts: tolerateTimeouts,
		sigch:            make(chan os.Signal, 1),
		ctx:              ctx,
		cancel:           cancel,
		group:            group,
	}, nil
}

// Start starts the runner
func (r *Runner) Start() {
	r.printer.printOnStart(r.prober)
	r.handleSignals()
	r.group.Go(r.run)
}

// RequestStop requests the stop of the monitor, the attempt in flight is completed first
func (r *Runner) RequestStop() {
	r.cancel()
}

// Wait blocks the caller until the runner finishes
func (r *Runner) Wait() error {
	err := r.group.Wait()
	signal.Stop(r.sigch)

	r.printer.printOnEnd(r.prober)
	if cerr := r.prober.Close(); err == nil {
		err = cerr
	}
	return err
}

// run monitors the destination, restarting the monitor after a timeout when those are tolerated
func (r *Runner) run() error {
	defer r.cancel()

	for {
		err := r.prober.Monitor(r.ctx, r.interval)
		if r.tolerateTimeouts && errors.Is(err, core.ErrTimeout) {
			continue
		}
		return err
	}
}

// handleSignals registers the runner to be stopped on an interrupt or termination signal
func (r *Runner) handleSignals() {
	signal.Notify(r.sigch, os.Interrupt, syscall.SIGTERM)
	r.group.Go(func() error {
		select {
		case <-r.sigch:
			r.RequestStop()
		case <-r.ctx.Done():
		}
		return nil
	})
}
