// Package notify delivers the run digest. Channels are independent and
// additive: the first configured channel is primary and its verdict decides
// whether the orchestrator may mark listings notified; secondary channels
// are best-effort.
package notify

import (
	"context"
	"log/slog"

	"jobradar/internal/model"
)

// Channel is one delivery target. Deliver must not panic; missing
// credentials are a false verdict, not a crash. In dry-run mode a channel
// performs no external delivery but still reports success.
type Channel interface {
	Name() string
	Deliver(ctx context.Context, listings []model.Listing, dryRun bool) bool
}

// Ensure Dispatcher implements model.Dispatcher.
var _ model.Dispatcher = (*Dispatcher)(nil)

// Dispatcher fans the digest out to the primary channel and any secondary
// channels. Only the primary verdict is reported.
type Dispatcher struct {
	primary   Channel
	secondary []Channel
	logger    *slog.Logger
}

// NewDispatcher wires the channels. primary must not be nil.
func NewDispatcher(primary Channel, secondary []Channel, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{primary: primary, secondary: secondary, logger: logger}
}

// Deliver sends to all channels and returns the primary channel's verdict.
// A secondary failure is logged and otherwise ignored.
func (d *Dispatcher) Deliver(ctx context.Context, listings []model.Listing, dryRun bool) bool {
	ok := d.primary.Deliver(ctx, listings, dryRun)
	if !ok {
		d.logger.Warn("primary channel failed", "channel", d.primary.Name())
	}

	for _, ch := range d.secondary {
		if !ch.Deliver(ctx, listings, dryRun) {
			d.logger.Warn("secondary channel failed", "channel", ch.Name())
		}
	}
	return ok
}
