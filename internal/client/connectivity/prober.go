package connectivity

import (
	"context"
	"time"

	"github.com/NikhilKartha5/ai-journal/internal/logging"
)

// Pinger is the probe used to decide reachability, satisfied by the API
// client's Ping method.
type Pinger interface {
	Ping(ctx context.Context) error
}

const probeTimeout = 3 * time.Second

// Prober is a Monitor that polls the server health endpoint on a fixed
// interval and fires transition callbacks when reachability flips.
type Prober struct {
	state
	pinger   Pinger
	interval time.Duration
	logger   logging.Logger
}

// NewProber builds a Prober checking every interval. The monitor starts
// offline until the first successful probe.
func NewProber(pinger Pinger, interval time.Duration, logger logging.Logger) *Prober {
	return &Prober{pinger: pinger, interval: interval, logger: logger}
}

func (p *Prober) IsOnline() bool         { return p.isOnline() }
func (p *Prober) OnChange(fn func(bool)) { p.onChange(fn) }

// Run probes until ctx is cancelled. It performs one immediate probe before
// settling into the ticker loop.
func (p *Prober) Run(ctx context.Context) {
	p.probe(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Prober) probe(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	err := p.pinger.Ping(probeCtx)
	online := err == nil
	if online != p.isOnline() {
		p.logger.Info(ctx, "connectivity changed", "online", online)
	}
	p.set(online)
}
