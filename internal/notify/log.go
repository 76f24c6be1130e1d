package notify

import (
	"context"
	"log/slog"

	"jobradar/internal/model"
)

var _ Channel = (*LogChannel)(nil)

// LogChannel writes each listing to the logger. Used as the primary channel
// when no real channel is configured; it cannot fail.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel returns a channel that logs each listing via slog.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (n *LogChannel) Name() string { return "log" }

func (n *LogChannel) Deliver(_ context.Context, listings []model.Listing, dryRun bool) bool {
	for _, l := range listings {
		n.logger.Info("new listing",
			"title", l.Title,
			"company", l.Company,
			"location", l.Location,
			"score", l.Score,
			"source", l.Source,
			"url", l.URL,
			"dry_run", dryRun,
		)
	}
	return true
}
