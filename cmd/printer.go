package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mikaelmello/pingmon/core"
)

// printer writes a human readable line for every event of a prober.
type printer struct {
	out io.Writer
}

func newPrinter(out io.Writer) *printer {
	return &printer{out: out}
}

func (pr *printer) printOnStart(p *core.Prober) {
	fmt.Fprintf(pr.out, "PROBE %s id=%d %d data bytes\n", p.Destination(), p.Identifier(), p.PayloadSize())
}

func (pr *printer) printOnProbe(p *core.Prober, res *core.ProbeResult) {
	switch {
	case res.Err == nil:
		fmt.Fprintf(pr.out, "%s reachable: icmp_seq=%d matched=%d/%d rtt=%s time=%s\n",
			p.Destination(), res.FirstSeq, res.Matched, res.Sent,
			res.RTT.Truncate(time.Microsecond), res.Elapsed.Truncate(time.Millisecond))
	case errors.Is(res.Err, core.ErrTimeout):
		fmt.Fprintf(pr.out, "%s unreachable: icmp_seq=%d no reply after %s, %d datagrams discarded\n",
			p.Destination(), res.FirstSeq, res.Elapsed.Truncate(time.Millisecond), res.Discarded)
	default:
		fmt.Fprintf(pr.out, "%s error: icmp_seq=%d %s\n", p.Destination(), res.FirstSeq, res.Err)
	}
}

func (pr *printer) printOnEnd(p *core.Prober) {
	stats := p.Stats

	var total time.Duration
	if st, ok := stats.GetStartTime(); ok {
		total = time.Since(st).Truncate(time.Millisecond)
	}

	rttMin := float64(stats.GetRTTMin()) / float64(time.Millisecond)
	rttAvg := float64(stats.GetRTTAvg()) / float64(time.Millisecond)
	rttMax := float64(stats.GetRTTMax()) / float64(time.Millisecond)
	rttMDev := float64(stats.GetRTTMDev()) / float64(time.Millisecond)

	fmt.Fprintln(pr.out)
	fmt.Fprintf(pr.out, "--- %s probe statistics ---\n", p.Destination())
	fmt.Fprintf(pr.out, "%d attempts, %d reachable, %d timed out, %d failed, %.0f%% failure, time %s\n",
		stats.GetTotalAttempts(), stats.GetTotalSucceeded(), stats.GetTotalTimedOut(), stats.GetTotalFailed(),
		stats.GetFailureRate()*100, total)
	fmt.Fprintf(pr.out, "%d requests sent, %d replies matched, %d datagrams discarded\n",
		stats.GetTotalSent(), stats.GetTotalMatched(), stats.GetTotalDiscarded())
	fmt.Fprintf(pr.out, "rtt min/avg/max/mdev = %.3f/%.3f/%.3f/%.3f ms\n", rttMin, rttAvg, rttMax, rttMDev)
}
